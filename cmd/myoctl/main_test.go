package main

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/srg/myolink/internal/goble"
	"github.com/srg/myolink/pkg/myo"
	"github.com/srg/myolink/pkg/protocol"
)

func TestFormatVersion(t *testing.T) {
	assert.Equal(t, "v1.2.3", formatVersion("1.2.3"))
	assert.Equal(t, "dev", formatVersion("dev"))
	assert.Equal(t, "", formatVersion(""))
}

func TestFormatUserError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "bluetooth off",
			err:      fmt.Errorf("connect: %w", goble.ErrBluetoothOff),
			expected: "Bluetooth is turned off. Turn it on and try again.",
		},
		{
			name:     "not connected",
			err:      fmt.Errorf("read: %w", myo.ErrNotConnected),
			expected: "Lost connection to the armband. Check that it is charged and in range, then retry.",
		},
		{
			name:     "timeout",
			err:      fmt.Errorf("dial: %w", context.DeadlineExceeded),
			expected: "Timed out talking to the armband. Is it awake and in range?",
		},
		{
			name:     "unknown errors pass through",
			err:      errors.New("some other failure"),
			expected: "some other failure",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatUserError(tt.err))
		})
	}
}

func TestFormatSerial(t *testing.T) {
	serial := [6]byte{0xC9, 0x5D, 0x00, 0x12, 0xAB, 0xFF}
	assert.Equal(t, "c9:5d:00:12:ab:ff", formatSerial(serial))
}

func TestFormatSKU(t *testing.T) {
	assert.Equal(t, "black", formatSKU(protocol.SKUBlack))
	assert.Equal(t, "white", formatSKU(protocol.SKUWhite))
	assert.Equal(t, "unknown", formatSKU(protocol.SKUUnknown))
}

func TestParseSleepMode(t *testing.T) {
	mode, err := parseSleepMode("never")
	assert.NoError(t, err)
	assert.Equal(t, protocol.SleepModeNeverSleep, mode)

	mode, err = parseSleepMode("normal")
	assert.NoError(t, err)
	assert.Equal(t, protocol.SleepModeNormal, mode)

	_, err = parseSleepMode("later")
	assert.Error(t, err)
}
