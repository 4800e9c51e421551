package event

import "sync/atomic"

// RingChannel is a bounded channel-like buffer with overwrite-oldest
// semantics. Producers never block: when the buffer is full the oldest
// element is discarded to make room. It decouples notification delivery
// from consumers that cannot keep up with the device's stream rate.
type RingChannel[T any] struct {
	ch      chan T
	dropped atomic.Int64
}

// NewRingChannel creates a RingChannel with the given capacity.
func NewRingChannel[T any](capacity int) *RingChannel[T] {
	if capacity <= 0 {
		panic("event: ring channel capacity must be > 0")
	}
	return &RingChannel[T]{ch: make(chan T, capacity)}
}

// Send inserts v, discarding the oldest buffered element if the buffer is
// full. It never blocks indefinitely.
func (rc *RingChannel[T]) Send(v T) {
	for {
		select {
		case rc.ch <- v:
			return
		default:
		}
		select {
		case <-rc.ch:
			rc.dropped.Add(1)
		default:
		}
	}
}

// C returns the underlying receive channel. Consumers can range over it
// until Close.
func (rc *RingChannel[T]) C() <-chan T {
	return rc.ch
}

// TryReceive attempts a non-blocking receive.
func (rc *RingChannel[T]) TryReceive() (T, bool) {
	select {
	case v, ok := <-rc.ch:
		return v, ok
	default:
		var zero T
		return zero, false
	}
}

// Len returns the number of buffered elements.
func (rc *RingChannel[T]) Len() int { return len(rc.ch) }

// Cap returns the buffer capacity.
func (rc *RingChannel[T]) Cap() int { return cap(rc.ch) }

// Dropped returns how many elements were discarded to admit newer ones.
func (rc *RingChannel[T]) Dropped() int64 { return rc.dropped.Load() }

// Close closes the buffer. Send panics after Close.
func (rc *RingChannel[T]) Close() { close(rc.ch) }
