package providers

import (
	"context"
	"log/slog"
	"time"

	"github.com/preston-bernstein/screen-inventory-service/internal/providers/ssp"
)

// rateLimitedSource wraps a FeedSource and enforces a minimum interval between fetches.
type rateLimitedSource struct {
	next     FeedSource
	name     string
	interval time.Duration
	ticker   *time.Ticker
	logger   *slog.Logger
}

// NewRateLimitedSource returns a FeedSource that spaces fetches by at least interval.
// Calls block until the interval elapses to stay within upstream quotas.
func NewRateLimitedSource(next FeedSource, interval time.Duration, logger *slog.Logger) FeedSource {
	if interval <= 0 {
		interval = time.Minute
	}
	name := "rate-limited"
	if next != nil {
		name = next.Name()
	}
	return &rateLimitedSource{
		next:     next,
		name:     name,
		interval: interval,
		ticker:   time.NewTicker(interval),
		logger:   logger,
	}
}

func (p *rateLimitedSource) Name() string {
	return p.name
}

func (p *rateLimitedSource) FetchBatch(ctx context.Context) ([]ssp.Record, error) {
	if p.next == nil {
		logWithSource(ctx, p.logger, slog.LevelWarn, p.name, "source unavailable")
		return nil, &FetchError{Source: p.name, Err: ErrSourceUnavailable}
	}
	select {
	case <-ctx.Done():
		logWithSource(ctx, p.logger, slog.LevelWarn, p.name, "rate-limited fetch canceled")
		return nil, ctx.Err()
	case <-p.ticker.C:
	}
	logWithSource(ctx, p.logger, slog.LevelDebug, p.name, "rate-limited source fetch")
	return p.next.FetchBatch(ctx)
}

// Close stops the underlying ticker.
func (p *rateLimitedSource) Close() {
	p.ticker.Stop()
}
