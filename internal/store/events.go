package store

import (
	"fmt"
	"sync"
	"time"

	"github.com/preston-bernstein/screen-inventory-service/internal/domain/screens"
	"github.com/preston-bernstein/screen-inventory-service/internal/logging"
)

// EventKind names the mutation that produced an Event.
type EventKind string

const (
	EventAdded   EventKind = "added"
	EventLocal   EventKind = "local"
	EventRemoved EventKind = "removed"
	EventCleared EventKind = "cleared"
	EventSwept   EventKind = "swept"
)

// Event carries the full inventory after a mutation. Each listener gets its own copy of
// Snapshot. Seq increases by one per mutation and At is the time Snapshot was taken.
type Event struct {
	Kind     EventKind
	Seq      uint64
	Snapshot []screens.Screen
	At       time.Time
}

// Listener receives store events in mutation order. Delivery happens on a mutating
// goroutine; a mutation made while another goroutine is delivering is handed to that one.
type Listener func(Event)

// SubscriptionID identifies a registered listener for Unsubscribe.
type SubscriptionID uint64

type subscription struct {
	id       SubscriptionID
	listener Listener
	ch       *chanSubscription
}

// Subscribe registers l and returns its id. A nil listener is ignored and yields 0.
func (s *Store) Subscribe(l Listener) SubscriptionID {
	if l == nil {
		return 0
	}
	return s.addSubscription(subscription{listener: l})
}

// Unsubscribe removes the listener registered under id and reports whether it existed.
func (s *Store) Unsubscribe(id SubscriptionID) bool {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for i, sub := range s.subs {
		if sub.id == id {
			s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
			if sub.ch != nil {
				sub.ch.close()
			}
			return true
		}
	}
	return false
}

// SubscribeChan delivers events on a buffered channel. Events that do not fit the buffer are
// dropped. The returned cancel func unsubscribes and closes the channel; it is safe to call
// more than once.
func (s *Store) SubscribeChan(buffer int) (<-chan Event, func()) {
	if buffer < 1 {
		buffer = 1
	}
	cs := &chanSubscription{ch: make(chan Event, buffer)}
	id := s.addSubscription(subscription{listener: cs.send, ch: cs})
	return cs.ch, func() {
		if !s.Unsubscribe(id) {
			cs.close()
		}
	}
}

func (s *Store) addSubscription(sub subscription) SubscriptionID {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	if s.closed.Load() {
		if sub.ch != nil {
			sub.ch.close()
		}
		return 0
	}
	s.nextSub++
	sub.id = s.nextSub
	s.subs = append(s.subs, sub)
	return sub.id
}

// queueLocked captures the current inventory as the next event. Callers hold s.mu for
// writing, so queue order is mutation order.
func (s *Store) queueLocked(kind EventKind) {
	s.seq++
	e := Event{Kind: kind, Seq: s.seq, Snapshot: cloneScreens(s.screens), At: s.now().UTC()}
	s.pendingMu.Lock()
	s.pending = append(s.pending, e)
	s.pendingMu.Unlock()
}

// flush delivers queued events in order. One goroutine drains at a time; the others
// return and leave their events to it.
func (s *Store) flush() {
	s.pendingMu.Lock()
	if s.draining {
		s.pendingMu.Unlock()
		return
	}
	s.draining = true
	for len(s.pending) > 0 {
		e := s.pending[0]
		s.pending[0] = Event{}
		s.pending = s.pending[1:]
		s.pendingMu.Unlock()
		s.notify(e)
		s.pendingMu.Lock()
	}
	s.pending = nil
	s.draining = false
	s.pendingMu.Unlock()
}

// notify invokes every listener with its own copy of the snapshot. A panicking listener is
// logged and counted; the rest are still notified and the mutation stands.
func (s *Store) notify(e Event) {
	s.subMu.Lock()
	subs := append([]subscription(nil), s.subs...)
	s.subMu.Unlock()

	for _, sub := range subs {
		copied := e
		copied.Snapshot = cloneScreens(e.Snapshot)
		s.deliver(sub, copied)
	}
}

func (s *Store) deliver(sub subscription, e Event) {
	defer func() {
		if r := recover(); r != nil {
			s.metrics.RecordSubscriberError()
			logging.Error(s.logger, "subscriber failed", fmt.Errorf("panic: %v", r),
				"subscription", uint64(sub.id),
				logging.FieldEvent, string(e.Kind),
			)
		}
	}()
	sub.listener(e)
}

func (s *Store) closeSubscriptions() {
	s.subMu.Lock()
	subs := s.subs
	s.subs = nil
	s.subMu.Unlock()
	for _, sub := range subs {
		if sub.ch != nil {
			sub.ch.close()
		}
	}
}

type chanSubscription struct {
	mu     sync.Mutex
	ch     chan Event
	closed bool
}

func (c *chanSubscription) send(e Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.ch <- e:
	default:
	}
}

func (c *chanSubscription) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.ch)
	}
}

func cloneScreens(in []screens.Screen) []screens.Screen {
	if in == nil {
		return []screens.Screen{}
	}
	return append([]screens.Screen(nil), in...)
}
