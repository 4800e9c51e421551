package goble

import (
	"errors"
	"fmt"
	"strings"

	"github.com/srg/myolink/pkg/myo"
)

// ----------------------------
// Errors
// ----------------------------

var (
	// ErrAlreadyConnected is returned when Connect is called on a live transport.
	ErrAlreadyConnected = errors.New("already connected")

	// ErrBluetoothOff is returned when the host adapter is powered down.
	ErrBluetoothOff = errors.New("bluetooth is turned off")
)

// NotFoundError is returned when a characteristic the protocol requires was
// not present in the discovered GATT profile.
type NotFoundError struct {
	UUID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("characteristic %q not found in discovered profile", e.UUID)
}

// NormalizeError maps known go-ble error strings to structured error types.
// It ensures consistent handling even if the upstream library changes messages
// slightly. Returns wrapped errors to preserve original context.
func NormalizeError(err error) error {
	if err == nil {
		return nil
	}

	msg := err.Error()
	switch {
	case msg == "central manager has invalid state: have=4 want=5: is Bluetooth turned on?":
		return fmt.Errorf("%w: %v", ErrBluetoothOff, err)
	case containsIgnoreCase(msg, "bluetooth is turned off"):
		return fmt.Errorf("%w: %v", ErrBluetoothOff, err)
	case containsIgnoreCase(msg, "device not connected"):
		return fmt.Errorf("%w: %v", myo.ErrNotConnected, err)
	case containsIgnoreCase(msg, "disconnected"):
		return fmt.Errorf("%w: %v", myo.ErrNotConnected, err)
	case containsIgnoreCase(msg, "device already connected"):
		return fmt.Errorf("%w: %v", ErrAlreadyConnected, err)
	default:
		return err
	}
}

// containsIgnoreCase checks the substring case-insensitively
func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
