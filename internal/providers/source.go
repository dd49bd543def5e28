package providers

import (
	"context"

	"github.com/preston-bernstein/screen-inventory-service/internal/providers/ssp"
)

// FeedSource yields already-decoded batches of external inventory records for one source.
// Implementations report failures as *FetchError or *RateLimitError so callers can Classify them.
type FeedSource interface {
	Name() string
	FetchBatch(ctx context.Context) ([]ssp.Record, error)
}
