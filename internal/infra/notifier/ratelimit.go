package notifier

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimiter paces outgoing webhook calls with a token bucket so the
// senders stay under the documented Discord and Slack rates instead of
// provoking 429 responses.
type RateLimiter struct {
	rate    rate.Limit
	burst   int
	limiter *rate.Limiter
}

// NewRateLimiter builds a limiter that sustains requestsPerSecond and
// lets up to burst calls through at once.
func NewRateLimiter(requestsPerSecond float64, burst int) *RateLimiter {
	limit := rate.Limit(requestsPerSecond)
	return &RateLimiter{
		rate:    limit,
		burst:   burst,
		limiter: rate.NewLimiter(limit, burst),
	}
}

// Allow blocks until a token is available. It returns the context error
// when ctx is canceled or its deadline cannot fit the wait.
func (r *RateLimiter) Allow(ctx context.Context) error {
	return r.limiter.Wait(ctx)
}
