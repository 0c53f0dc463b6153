package notifier

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNewRateLimiter(t *testing.T) {
	limiter := NewRateLimiter(2.0, 5)

	if limiter.limiter == nil {
		t.Fatal("internal limiter not initialized")
	}
	if limiter.burst != 5 {
		t.Errorf("burst = %d, want 5", limiter.burst)
	}
	if float64(limiter.rate) != 2.0 {
		t.Errorf("rate = %v, want 2.0", float64(limiter.rate))
	}
}

func TestRateLimiter_AllowWithinBudget(t *testing.T) {
	limiter := NewRateLimiter(10.0, 5)

	if err := limiter.Allow(context.Background()); err != nil {
		t.Fatalf("Allow: %v", err)
	}
}

func TestRateLimiter_BurstThenBlock(t *testing.T) {
	// 2 announcements per second with room for a burst of 5.
	limiter := NewRateLimiter(2.0, 5)

	start := time.Now()
	for i := 0; i < 5; i++ {
		if err := limiter.Allow(context.Background()); err != nil {
			t.Fatalf("burst call %d: %v", i+1, err)
		}
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("burst took %v, want immediate", elapsed)
	}

	// The sixth call needs a refill the deadline cannot cover.
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if err := limiter.Allow(ctx); err == nil {
		t.Error("expected the call after the burst to be held back")
	}
}

func TestRateLimiter_DeadlineTooShortForRefill(t *testing.T) {
	limiter := NewRateLimiter(1.0, 1)

	if err := limiter.Allow(context.Background()); err != nil {
		t.Fatalf("first call: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := limiter.Allow(ctx)
	if err == nil {
		t.Fatal("expected an error while waiting for the next token")
	}
	// rate.Wait reports either the context error or its own deadline message.
	if !errors.Is(err, context.DeadlineExceeded) &&
		err.Error() != "rate: Wait(n=1) would exceed context deadline" {
		t.Errorf("err = %v, want a deadline error", err)
	}
}

func TestRateLimiter_CanceledWhileWaiting(t *testing.T) {
	limiter := NewRateLimiter(1.0, 1)

	if err := limiter.Allow(context.Background()); err != nil {
		t.Fatalf("first call: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- limiter.Allow(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
