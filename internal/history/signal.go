package history

import (
	"sync"
)

// Handler is called with the record affected by a container operation.
type Handler func(r Record)

// Subscription represents a handler registered on a Signal.
type Subscription struct {
	handler Handler
	signal  *Signal
}

// Unsubscribe removes this subscription from its signal.
// Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	if s != nil && s.signal != nil {
		s.signal.Remove(s)
	}
}

// Signal is an ordered list of handlers notified after a container
// operation completes. Handlers run synchronously in registration order.
type Signal struct {
	mu   sync.Mutex
	name string
	subs []*Subscription
}

func newSignal(name string) *Signal {
	return &Signal{name: name}
}

// Name returns the signal name.
func (s *Signal) Name() string {
	return s.name
}

// Add registers a handler and returns its subscription.
// A nil handler is ignored and yields a nil subscription.
func (s *Signal) Add(h Handler) *Subscription {
	if h == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sub := &Subscription{handler: h, signal: s}
	s.subs = append(s.subs, sub)
	return sub
}

// Remove unregisters a subscription. Subscriptions of other signals and
// unknown subscriptions are ignored.
func (s *Signal) Remove(sub *Subscription) {
	if sub == nil || sub.signal != s {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, existing := range s.subs {
		if existing == sub {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			return
		}
	}
}

// Reset removes every subscription.
func (s *Signal) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.subs = nil
}

// Len returns the number of registered handlers.
func (s *Signal) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// emit calls every handler with r. The handler list is copied first so
// handlers may add or remove subscriptions while being notified.
// Panics from handlers propagate to the caller.
func (s *Signal) emit(r Record) {
	s.mu.Lock()
	subs := make([]*Subscription, len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.handler(r)
	}
}
