package notifier

import (
	"errors"
	"fmt"
	"time"
)

// contextKey keeps the request-id context value off the string keyspace.
type contextKey string

const requestIDKey contextKey = "request_id"

// RateLimitError is a 429 from a webhook host, carrying the Retry-After
// the sender must honor before the next attempt.
type RateLimitError struct {
	RetryAfter time.Duration
	Message    string
}

func (e *RateLimitError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "rate limit exceeded"
	}
	return fmt.Sprintf("%s (retry after %v)", msg, e.RetryAfter)
}

// ClientError is a non-429 4xx from a webhook host. A bad payload or a
// revoked webhook URL does not get better on retry.
type ClientError struct {
	StatusCode int
	Message    string
}

func (e *ClientError) Error() string { return e.Message }

// ServerError is a 5xx from a webhook host.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string { return e.Message }

// is429Error unwraps err to the rate-limit error, if that is what it is.
func is429Error(err error) (*RateLimitError, bool) {
	var rl *RateLimitError
	ok := errors.As(err, &rl)
	return rl, ok
}

// isRetryableError reports whether another attempt can help. Server and
// transport errors qualify; client errors do not, and 429 is paced by
// Retry-After instead of the backoff loop.
func isRetryableError(err error) bool {
	var server *ServerError
	if errors.As(err, &server) {
		return true
	}
	var client *ClientError
	if errors.As(err, &client) {
		return false
	}
	var rl *RateLimitError
	if errors.As(err, &rl) {
		return false
	}
	return true
}

// truncateText caps text at maxLength, replacing the tail with suffix
// when it has to cut. Webhook field limits are byte-oriented, so the cut
// is byte-indexed as well.
func truncateText(text string, maxLength int, suffix string) string {
	if len(text) <= maxLength {
		return text
	}
	cut := maxLength - len(suffix)
	if cut < 0 {
		cut = 0
	}
	return text[:cut] + suffix
}
