package goble

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/srg/myolink/pkg/myo"
	"github.com/srg/myolink/pkg/protocol"
)

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestNewTransportStartsDisconnected(t *testing.T) {
	tr := NewTransport("aa:bb:cc:dd:ee:ff", newTestLogger())

	assert.False(t, tr.IsConnected(), "MUST report disconnected before Connect")
	assert.NoError(t, tr.Disconnect(), "MUST tolerate Disconnect before Connect")
}

func TestConnectRejectsEmptyAddress(t *testing.T) {
	tr := NewTransport("   ", newTestLogger())

	err := tr.Connect(context.Background())
	assert.Error(t, err)
	assert.False(t, tr.IsConnected())
}

func TestOperationsRequireConnection(t *testing.T) {
	tr := NewTransport("aa:bb:cc:dd:ee:ff", newTestLogger())
	ctx := context.Background()

	_, err := tr.Read(ctx, protocol.CharBattery)
	assert.ErrorIs(t, err, myo.ErrNotConnected, "Read MUST fail with ErrNotConnected")

	err = tr.Write(ctx, protocol.CharCommand, []byte{0x04, 0x00}, true)
	assert.ErrorIs(t, err, myo.ErrNotConnected, "Write MUST fail with ErrNotConnected")

	err = tr.Subscribe(protocol.CharIMU, func([]byte) {})
	assert.ErrorIs(t, err, myo.ErrNotConnected, "Subscribe MUST fail with ErrNotConnected")

	err = tr.Unsubscribe(protocol.CharIMU)
	assert.ErrorIs(t, err, myo.ErrNotConnected, "Unsubscribe MUST fail with ErrNotConnected")
}

func TestNormalizeError(t *testing.T) {
	tests := []struct {
		name     string
		input    error
		expected error
	}{
		{
			name:     "nil passes through",
			input:    nil,
			expected: nil,
		},
		{
			name:     "darwin power state maps to bluetooth off",
			input:    errors.New("central manager has invalid state: have=4 want=5: is Bluetooth turned on?"),
			expected: ErrBluetoothOff,
		},
		{
			name:     "bluetooth off message maps to bluetooth off",
			input:    errors.New("Bluetooth is turned OFF"),
			expected: ErrBluetoothOff,
		},
		{
			name:     "disconnected maps to not connected",
			input:    errors.New("peripheral disconnected"),
			expected: myo.ErrNotConnected,
		},
		{
			name:     "already connected maps to sentinel",
			input:    errors.New("device already connected"),
			expected: ErrAlreadyConnected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeError(tt.input)
			if tt.expected == nil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tt.expected)
		})
	}
}

func TestNormalizeErrorPreservesUnknownErrors(t *testing.T) {
	original := fmt.Errorf("some transient GATT failure")
	assert.Equal(t, original, NormalizeError(original), "unknown errors MUST pass through unwrapped")
}

func TestNotFoundErrorMessage(t *testing.T) {
	err := &NotFoundError{UUID: string(protocol.CharEMG0)}
	assert.Contains(t, err.Error(), string(protocol.CharEMG0))
}
