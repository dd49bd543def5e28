package httpfeed

import "time"

const (
	defaultHTTPTimeout = 10 * time.Second
	maxBodyBytes       = 8 << 20
	errorBodyBytes     = 512
	headerRetryAfter   = "Retry-After"
	headerRemaining    = "X-RateLimit-Remaining"
)
