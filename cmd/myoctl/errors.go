package main

import (
	"context"
	"errors"

	"github.com/srg/myolink/internal/goble"
	"github.com/srg/myolink/pkg/myo"
)

// Command-level errors
var (
	// ErrConnectionLost indicates the BLE connection dropped mid-operation.
	// Distinct from myo.ErrNotConnected, which indicates an attempt to use
	// a device that was never connected or was already disconnected.
	ErrConnectionLost = errors.New("connection lost")
)

// FormatUserError rewrites well-known failures into actionable messages;
// everything else is printed verbatim.
func FormatUserError(err error) string {
	switch {
	case errors.Is(err, goble.ErrBluetoothOff):
		return "Bluetooth is turned off. Turn it on and try again."
	case errors.Is(err, myo.ErrNotConnected), errors.Is(err, ErrConnectionLost):
		return "Lost connection to the armband. Check that it is charged and in range, then retry."
	case errors.Is(err, context.DeadlineExceeded):
		return "Timed out talking to the armband. Is it awake and in range?"
	default:
		return err.Error()
	}
}
