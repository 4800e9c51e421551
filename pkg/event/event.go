// Package event provides the typed listener registries and fan-out
// mechanism used to dispatch decoded device notifications.
//
// Dispatch is synchronous and ordered: Notify invokes every registered
// listener on the calling goroutine, in registration order. A listener
// that panics is isolated and reported through the fault handler; it never
// prevents the remaining listeners from running and never unwinds into
// the notification delivery path.
package event

import (
	"sync"

	"github.com/sirupsen/logrus"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Token identifies a single registration and is used to remove it later.
// Tokens are unique per Event, including across categories of one Bus.
type Token uint64

// FaultHandler receives panics recovered from listeners. It runs on the
// dispatching goroutine, so it must be fast and must not panic itself.
type FaultHandler func(category string, token Token, recovered interface{})

// LogFaults returns a FaultHandler that reports listener panics to logger.
func LogFaults(logger *logrus.Logger) FaultHandler {
	return func(category string, token Token, recovered interface{}) {
		if logger == nil {
			return
		}
		logger.WithFields(logrus.Fields{
			"category": category,
			"token":    token,
			"panic":    recovered,
		}).Error("Event listener panicked during dispatch")
	}
}

// Event is an ordered registry of listeners for one category of payload.
// The ordered map keeps registration order for dispatch while still giving
// O(1) removal by token. Duplicate listeners are allowed; each registration
// is invoked independently.
type Event[T any] struct {
	category string
	onFault  FaultHandler

	mu        sync.Mutex
	listeners *orderedmap.OrderedMap[Token, func(T)]
	nextToken Token
}

// NewEvent creates an empty registry. onFault may be nil, in which case
// listener panics are swallowed after recovery.
func NewEvent[T any](category string, onFault FaultHandler) *Event[T] {
	return &Event[T]{
		category:  category,
		onFault:   onFault,
		listeners: orderedmap.New[Token, func(T)](),
	}
}

// Register appends fn to the registry and returns its removal token.
func (e *Event[T]) Register(fn func(T)) Token {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.nextToken++
	token := e.nextToken
	e.listeners.Set(token, fn)
	return token
}

// Unregister removes the registration identified by token. It reports
// whether a registration was actually removed.
func (e *Event[T]) Unregister(token Token) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, present := e.listeners.Delete(token)
	return present
}

// Len returns the number of registered listeners.
func (e *Event[T]) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.listeners.Len()
}

// Notify invokes every registered listener with v, in registration order,
// synchronously on the calling goroutine. Listeners registered or removed
// by a listener during dispatch take effect from the next Notify call.
func (e *Event[T]) Notify(v T) {
	e.mu.Lock()
	snapshot := make([]struct {
		token Token
		fn    func(T)
	}, 0, e.listeners.Len())
	for pair := e.listeners.Oldest(); pair != nil; pair = pair.Next() {
		snapshot = append(snapshot, struct {
			token Token
			fn    func(T)
		}{pair.Key, pair.Value})
	}
	e.mu.Unlock()

	for _, l := range snapshot {
		e.invoke(l.token, l.fn, v)
	}
}

func (e *Event[T]) invoke(token Token, fn func(T), v T) {
	defer func() {
		if r := recover(); r != nil && e.onFault != nil {
			e.onFault(e.category, token, r)
		}
	}()
	fn(v)
}
