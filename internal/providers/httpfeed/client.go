package httpfeed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/preston-bernstein/screen-inventory-service/internal/logging"
	"github.com/preston-bernstein/screen-inventory-service/internal/providers"
	"github.com/preston-bernstein/screen-inventory-service/internal/providers/ssp"
)

// ErrMissingURL is returned by NewClient when no feed URL is configured.
var ErrMissingURL = errors.New("httpfeed: url is required")

// Config controls how the client reaches one upstream feed.
type Config struct {
	Name       string
	URL        string
	APIKey     string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client fetches inventory batches over HTTP and decodes them into ssp records.
type Client struct {
	name       string
	url        string
	apiKey     string
	httpClient httpDoer
	logger     *slog.Logger
	now        func() time.Time
}

// NewClient constructs a feed client with the provided configuration.
func NewClient(cfg Config) (*Client, error) {
	url := normalizeURL(cfg.URL)
	if url == "" {
		return nil, ErrMissingURL
	}
	name := cfg.Name
	if name == "" {
		name = url
	}
	return &Client{
		name:       name,
		url:        url,
		apiKey:     cfg.APIKey,
		httpClient: resolveHTTPClient(cfg.HTTPClient),
		logger:     cfg.Logger,
		now:        time.Now,
	}, nil
}

// Name returns the configured source id.
func (c *Client) Name() string {
	return c.name
}

// FetchBatch performs one GET against the feed URL.
// Non-200 responses become *providers.FetchError, 429 becomes *providers.RateLimitError.
func (c *Client) FetchBatch(ctx context.Context) ([]ssp.Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, &providers.FetchError{Source: c.name, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &providers.FetchError{Source: c.name, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.statusError(resp)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &providers.FetchError{Source: c.name, Err: err}
	}
	records, err := ssp.DecodeBatch(body)
	if err != nil {
		return nil, err
	}
	for i := range records {
		if records[i].SourceID == "" {
			records[i].SourceID = c.name
		}
	}

	log := logging.FromContext(ctx, c.logger)
	logging.Info(log, "feed fetched",
		logging.FieldSource, c.name,
		logging.FieldBatchSize, len(records),
		logging.FieldDurationMS, time.Since(start).Milliseconds(),
	)
	return records, nil
}

func (c *Client) statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyBytes))
	msg := strings.TrimSpace(string(body))
	retryAfter := parseRetryAfter(resp.Header.Get(headerRetryAfter), c.now())

	if resp.StatusCode == http.StatusTooManyRequests {
		if msg == "" {
			msg = "source rate limited"
		}
		return &providers.RateLimitError{
			Source:     c.name,
			StatusCode: resp.StatusCode,
			RetryAfter: retryAfter,
			Remaining:  resp.Header.Get(headerRemaining),
			Message:    msg,
		}
	}

	detail := fmt.Sprintf("unexpected status %d", resp.StatusCode)
	if msg != "" {
		detail += ": " + msg
	}
	return &providers.FetchError{
		Source:     c.name,
		StatusCode: resp.StatusCode,
		RetryAfter: retryAfter,
		Err:        errors.New(detail),
	}
}
