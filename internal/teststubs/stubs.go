package teststubs

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/preston-bernstein/screen-inventory-service/internal/providers/ssp"
)

// StubSource is a test double for providers.FeedSource.
type StubSource struct {
	SourceName string
	Records    []ssp.Record
	Err        error
	Calls      atomic.Int32
	Notify     chan struct{}

	mu sync.Mutex
}

// Name returns the configured source name.
func (s *StubSource) Name() string {
	return s.SourceName
}

// FetchBatch returns the configured records and error while tracking calls.
func (s *StubSource) FetchBatch(ctx context.Context) ([]ssp.Record, error) {
	_ = ctx
	s.mu.Lock()
	records, err := s.Records, s.Err
	s.mu.Unlock()
	if s.Notify != nil {
		select {
		case <-s.Notify:
		default:
			close(s.Notify)
		}
	}
	s.Calls.Add(1)
	return records, err
}

// Set swaps the returned records and error between fetches.
func (s *StubSource) Set(records []ssp.Record, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Records = records
	s.Err = err
}

// Listener records store notifications for assertions.
type Listener[E any] struct {
	mu     sync.Mutex
	events []E
}

// Notify appends the event.
func (l *Listener[E]) Notify(e E) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

// Events returns a copy of the received events.
func (l *Listener[E]) Events() []E {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]E(nil), l.events...)
}
