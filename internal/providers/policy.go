package providers

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"time"
)

// Fallback is what the caller should do with its cached data after a failed refresh.
type Fallback string

const (
	FallbackIgnore        Fallback = "ignore"
	FallbackUseCached     Fallback = "use_cached"
	FallbackDisableSource Fallback = "disable_source"
)

// FailureClass names the bucket a source failure fell into.
type FailureClass string

const (
	ClassNone        FailureClass = "none"
	ClassNetwork     FailureClass = "network"
	ClassTimeout     FailureClass = "timeout"
	ClassAuth        FailureClass = "auth"
	ClassRateLimited FailureClass = "rate_limited"
	ClassServer      FailureClass = "server"
	ClassClient      FailureClass = "client"
	ClassUnknown     FailureClass = "unknown"
)

const (
	NetworkRetryAfter   = 30 * time.Second
	RateLimitRetryAfter = 60 * time.Second
	ServerRetryAfter    = 60 * time.Second
	UnknownRetryAfter   = 30 * time.Second

	defaultMaxRetries = 3
)

// Decision is the classified outcome of a source-level failure. Retrying is left to the caller.
type Decision struct {
	Class       FailureClass  `json:"class,omitempty"`
	ShouldRetry bool          `json:"shouldRetry"`
	RetryAfter  time.Duration `json:"retryAfter"`
	MaxRetries  int           `json:"maxRetries"`
	Fallback    Fallback      `json:"fallback,omitempty"`
}

// Classify maps a refresh error to a retry/fallback decision.
func Classify(err error) Decision {
	if err == nil {
		return Decision{Class: ClassNone, Fallback: FallbackIgnore}
	}

	if rl, ok := AsRateLimitError(err); ok {
		return rateLimited(rl.RetryAfter)
	}
	if fe, ok := AsFetchError(err); ok && fe.StatusCode > 0 {
		return classifyStatus(fe.StatusCode, fe.RetryAfter)
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return transient(ClassTimeout)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return transient(ClassTimeout)
		}
		return transient(ClassNetwork)
	}
	if errors.Is(err, ErrSourceUnavailable) {
		return transient(ClassNetwork)
	}

	return Decision{
		Class:       ClassUnknown,
		ShouldRetry: true,
		RetryAfter:  UnknownRetryAfter,
		MaxRetries:  1,
		Fallback:    FallbackIgnore,
	}
}

func classifyStatus(status int, retryAfter time.Duration) Decision {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return Decision{Class: ClassAuth, Fallback: FallbackDisableSource}
	case status == http.StatusTooManyRequests:
		return rateLimited(retryAfter)
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return transient(ClassTimeout)
	case status >= 500:
		return Decision{
			Class:       ClassServer,
			ShouldRetry: true,
			RetryAfter:  ServerRetryAfter,
			MaxRetries:  defaultMaxRetries,
			Fallback:    FallbackUseCached,
		}
	case status >= 400:
		return Decision{Class: ClassClient, Fallback: FallbackIgnore}
	default:
		return Decision{
			Class:       ClassUnknown,
			ShouldRetry: true,
			RetryAfter:  UnknownRetryAfter,
			MaxRetries:  1,
			Fallback:    FallbackIgnore,
		}
	}
}

func rateLimited(retryAfter time.Duration) Decision {
	if retryAfter <= 0 {
		retryAfter = RateLimitRetryAfter
	}
	return Decision{
		Class:       ClassRateLimited,
		ShouldRetry: true,
		RetryAfter:  retryAfter,
		MaxRetries:  defaultMaxRetries,
		Fallback:    FallbackUseCached,
	}
}

func transient(class FailureClass) Decision {
	return Decision{
		Class:       class,
		ShouldRetry: true,
		RetryAfter:  NetworkRetryAfter,
		MaxRetries:  defaultMaxRetries,
		Fallback:    FallbackUseCached,
	}
}
