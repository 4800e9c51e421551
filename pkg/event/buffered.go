package event

import "sync"

// Buffered decouples a slow listener from the dispatch path. The listener
// returned by Listener enqueues into a RingChannel and returns immediately;
// a dedicated goroutine drains the buffer and invokes the wrapped function.
// When the consumer falls behind, the oldest buffered payloads are dropped
// rather than stalling notification delivery.
type Buffered[T any] struct {
	rc        *RingChannel[T]
	done      chan struct{}
	closeOnce sync.Once
}

// NewBuffered starts the drain goroutine and returns the wrapper.
// capacity bounds how many payloads may be queued ahead of fn.
func NewBuffered[T any](capacity int, fn func(T)) *Buffered[T] {
	b := &Buffered[T]{
		rc:   NewRingChannel[T](capacity),
		done: make(chan struct{}),
	}
	go func() {
		defer close(b.done)
		for v := range b.rc.C() {
			fn(v)
		}
	}()
	return b
}

// Listener returns the non-blocking listener to register on an Event.
func (b *Buffered[T]) Listener() func(T) {
	return b.rc.Send
}

// Dropped returns how many payloads were discarded because the consumer
// fell behind.
func (b *Buffered[T]) Dropped() int64 {
	return b.rc.Dropped()
}

// Close stops the drain goroutine after the buffer is exhausted and waits
// for it to exit. The listener must not be invoked after Close; unregister
// it first.
func (b *Buffered[T]) Close() {
	b.closeOnce.Do(func() {
		b.rc.Close()
	})
	<-b.done
}
