package http

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// Timeout returns middleware that cancels the request context after the
// given duration and answers 504 if the handler has not produced a
// response by then. The mutex guarantees exactly one writer: either the
// handler or the timeout path, never both.
func Timeout(duration time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), duration)
			defer cancel()

			guard := &writeGuard{ResponseWriter: w}
			done := make(chan struct{})

			go func() {
				next.ServeHTTP(guard, r.WithContext(ctx))
				close(done)
			}()

			select {
			case <-done:
			case <-ctx.Done():
				guard.mu.Lock()
				guard.expired = true
				if !guard.wrote {
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusGatewayTimeout)
					_, _ = w.Write([]byte(`{"error":"request timeout"}`))
				}
				guard.mu.Unlock()
			}
		})
	}
}

// writeGuard suppresses handler writes that arrive after the timeout
// response has gone out.
type writeGuard struct {
	http.ResponseWriter
	mu      sync.Mutex
	expired bool
	wrote   bool
}

func (g *writeGuard) WriteHeader(statusCode int) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.expired || g.wrote {
		return
	}
	g.wrote = true
	g.ResponseWriter.WriteHeader(statusCode)
}

func (g *writeGuard) Write(data []byte) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.expired {
		return 0, http.ErrHandlerTimeout
	}
	if !g.wrote {
		g.wrote = true
		g.ResponseWriter.WriteHeader(http.StatusOK)
	}
	return g.ResponseWriter.Write(data)
}
