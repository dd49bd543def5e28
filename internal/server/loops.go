package server

import (
	"context"

	"github.com/preston-bernstein/screen-inventory-service/internal/store"
)

// loop is a background worker with an idempotent Start/Stop lifecycle.
type loop interface {
	Start(ctx context.Context)
	Stop(ctx context.Context) error
}

// notifier forwards store events to a broker until the event channel closes.
type notifier interface {
	Run(ctx context.Context, events <-chan store.Event)
	Close() error
}

// closer is implemented by rate-limited feeds that own a ticker.
type closer interface {
	Close()
}
