package bus

import (
	"errors"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// Event is anything with a kind to route on.
type Event interface {
	EventKind() string
}

type Handler[E Event] func(E) error

// Subscription is a registered handler. Cancel is idempotent.
type Subscription struct {
	id     string
	kind   string
	cancel func()
}

func (s *Subscription) ID() string   { return s.id }
func (s *Subscription) Kind() string { return s.kind }
func (s *Subscription) Cancel()      { s.cancel() }

type subscriber[E Event] struct {
	id      string
	handler Handler[E]
}

// Bus is a synchronous in-memory event bus. It is safe for concurrent use;
// handlers run on the publishing goroutine in subscription order and may be
// called concurrently when several goroutines publish.
type Bus[E Event] struct {
	mu       sync.RWMutex
	handlers map[string][]subscriber[E]
}

func New[E Event]() *Bus[E] {
	return &Bus[E]{handlers: make(map[string][]subscriber[E])}
}

// Subscribe registers handler for events of kind. An empty kind receives
// every event.
func (b *Bus[E]) Subscribe(kind string, handler Handler[E]) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := uuid.NewString()
	b.handlers[kind] = append(b.handlers[kind], subscriber[E]{id: id, handler: handler})

	var once sync.Once
	return &Subscription{id: id, kind: kind, cancel: func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			b.handlers[kind] = slices.DeleteFunc(b.handlers[kind], func(s subscriber[E]) bool {
				return s.id == id
			})
		})
	}}
}

// Publish delivers e to every matching handler and joins their errors.
func (b *Bus[E]) Publish(e E) error {
	b.mu.RLock()
	subs := slices.Concat(b.handlers[e.EventKind()], b.handlers[""])
	b.mu.RUnlock()

	var all error
	for _, s := range subs {
		if err := s.handler(e); err != nil {
			all = errors.Join(all, err)
		}
	}
	return all
}

// Len returns the number of live subscriptions.
func (b *Bus[E]) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n := 0
	for _, subs := range b.handlers {
		n += len(subs)
	}
	return n
}
