// Package myo provides the device session: mode management, notification
// routing and the command/query surface of a Myo armband, composed over an
// abstract transport Link.
package myo

import (
	"context"

	"github.com/srg/myolink/pkg/protocol"
)

// NotifyFunc receives the raw bytes of one notification frame. The slice
// is only valid for the duration of the call; implementations that retain
// it must copy.
type NotifyFunc func(data []byte)

// Link is the transport capability consumed by a Session. Implementations
// wrap a BLE stack (see internal/goble) or a test double. Every operation
// either completes or fails; a Link must not hang silently. Timeout policy
// belongs to the Link and the caller's context, not to the session.
type Link interface {
	// Connect establishes the transport. After a successful return, Read,
	// Write and Subscribe must be usable.
	Connect(ctx context.Context) error

	// Disconnect tears the transport down. Repeated calls are no-ops.
	Disconnect() error

	// IsConnected reports the current transport state.
	IsConnected() bool

	// Read reads the current value of a characteristic.
	Read(ctx context.Context, char protocol.Characteristic) ([]byte, error)

	// Write writes data to a characteristic. When withResponse is set the
	// call returns only after the device acknowledges the write.
	Write(ctx context.Context, char protocol.Characteristic, data []byte, withResponse bool) error

	// Subscribe registers fn for notifications on a characteristic.
	// fn is invoked on the link's delivery goroutine and must not block.
	Subscribe(char protocol.Characteristic, fn NotifyFunc) error

	// Unsubscribe stops notifications for a characteristic.
	Unsubscribe(char protocol.Characteristic) error
}
