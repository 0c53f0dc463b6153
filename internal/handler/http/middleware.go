package http

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"engjobs/internal/handler/http/requestid"
	"engjobs/internal/handler/http/respond"
	"engjobs/internal/handler/http/responsewriter"
)

// Logging returns middleware that emits one structured log line per request
// with the status, size, and duration recorded by the wrapped writer.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := responsewriter.Wrap(w)

			next.ServeHTTP(wrapped, r)

			logger.Info("request completed",
				slog.String("request_id", requestid.FromContext(r.Context())),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("query", r.URL.RawQuery),
				slog.String("remote_addr", r.RemoteAddr),
				slog.String("user_agent", r.Header.Get("User-Agent")),
				slog.Int("status", wrapped.StatusCode()),
				slog.Int("bytes", wrapped.BytesWritten()),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

// Recover returns middleware that turns a handler panic into a 500 response
// and logs the stack instead of letting the server die.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}

				respond.SafeError(w, http.StatusInternalServerError, fmt.Errorf("internal error"))

				logger.Error("panic recovered",
					slog.String("request_id", requestid.FromContext(r.Context())),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.Any("panic", rec),
					slog.String("stack", string(debug.Stack())),
				)
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// LimitRequestBody returns middleware that caps request bodies at maxBytes.
func LimitRequestBody(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

// ipWindow holds the recent request timestamps for one client IP.
type ipWindow struct {
	mu    sync.Mutex
	hits  []time.Time
}

// RateLimiter is sliding-window rate limiting keyed by client IP. The manual
// ingest trigger sits behind it so one client cannot hammer the upstream
// source hosts through the admin API.
type RateLimiter struct {
	windows   sync.Map // map[string]*ipWindow
	limit     int
	window    time.Duration
	sweepMu   sync.Mutex
	lastSweep time.Time
}

// NewRateLimiter allows limit requests per client within window.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:     limit,
		window:    window,
		lastSweep: time.Now(),
	}
}

// Limit rejects requests over the per-IP budget with 429.
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rl.sweep()

		if !rl.take(extractIP(r)) {
			respond.SafeError(w, http.StatusTooManyRequests, fmt.Errorf("rate limit exceeded"))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// take records one request for ip if the window still has room.
func (rl *RateLimiter) take(ip string) bool {
	val, _ := rl.windows.LoadOrStore(ip, &ipWindow{hits: make([]time.Time, 0, rl.limit)})
	win := val.(*ipWindow)

	win.mu.Lock()
	defer win.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-rl.window)

	kept := win.hits[:0]
	for _, ts := range win.hits {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	win.hits = kept

	if len(win.hits) >= rl.limit {
		return false
	}
	win.hits = append(win.hits, now)
	return true
}

// sweep drops idle IP entries so the map does not grow without bound.
// 10分に1回だけ走る
func (rl *RateLimiter) sweep() {
	rl.sweepMu.Lock()
	defer rl.sweepMu.Unlock()

	if time.Since(rl.lastSweep) < 10*time.Minute {
		return
	}
	rl.lastSweep = time.Now()

	cutoff := time.Now().Add(-rl.window * 2)
	rl.windows.Range(func(key, value interface{}) bool {
		win := value.(*ipWindow)
		win.mu.Lock()
		idle := true
		for _, ts := range win.hits {
			if ts.After(cutoff) {
				idle = false
				break
			}
		}
		win.mu.Unlock()
		if idle {
			rl.windows.Delete(key)
		}
		return true
	})
}

// extractIP resolves the client address, preferring the proxy headers
// X-Forwarded-For and X-Real-IP over RemoteAddr.
func extractIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first := xff
		if i := strings.IndexByte(xff, ','); i >= 0 {
			first = xff[:i]
		}
		if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
			return ip.String()
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		if ip := net.ParseIP(xri); ip != nil {
			return ip.String()
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
