// Package requestid tags every HTTP request with an ID so a request can
// be traced through the logs.
package requestid

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// contextKey keeps the context value private to this package.
type contextKey string

const (
	// RequestIDKey is the context key holding the request ID.
	RequestIDKey contextKey = "request_id"
	// RequestIDHeader is the header used to propagate the ID.
	RequestIDHeader = "X-Request-ID"
)

// FromContext returns the request ID stored in ctx, or "" when absent.
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}

// WithRequestID returns a context carrying the given request ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

// Middleware reuses the caller-supplied X-Request-ID when present and
// generates a UUID otherwise. The ID goes into the request context and
// is echoed on the response header.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}

		// レスポンスヘッダーにも追加（クライアントが追跡可能に）
		w.Header().Set(RequestIDHeader, id)

		next.ServeHTTP(w, r.WithContext(WithRequestID(r.Context(), id)))
	})
}
