package sources

import (
	"log/slog"
	"net/http"

	"github.com/preston-bernstein/screen-inventory-service/internal/providers"
	"github.com/preston-bernstein/screen-inventory-service/internal/providers/fixture"
	"github.com/preston-bernstein/screen-inventory-service/internal/providers/httpfeed"
)

// BuildFeeds constructs a FeedSource for every enabled entry.
// Entries with a MinInterval are wrapped so fetches stay within upstream quotas.
func BuildFeeds(r *Registry, client *http.Client, logger *slog.Logger) ([]providers.FeedSource, error) {
	enabled := r.Enabled()
	feeds := make([]providers.FeedSource, 0, len(enabled))
	for _, src := range enabled {
		var feed providers.FeedSource
		switch src.Kind {
		case KindFixture:
			feed = fixture.New(src.ID)
		default:
			c, err := httpfeed.NewClient(httpfeed.Config{
				Name:       src.ID,
				URL:        src.URL,
				APIKey:     src.APIKey,
				HTTPClient: client,
				Logger:     logger,
			})
			if err != nil {
				return nil, err
			}
			feed = c
		}
		if src.MinInterval > 0 {
			feed = providers.NewRateLimitedSource(feed, src.MinInterval, logger)
		}
		feeds = append(feeds, feed)
	}
	return feeds, nil
}
