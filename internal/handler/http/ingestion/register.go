package ingestion

import (
	"net/http"
)

// Middleware wraps the run handler, typically with rate limiting so a
// misbehaving client cannot hammer the upstream sources.
type Middleware interface {
	Limit(next http.Handler) http.Handler
}

// Register registers the manual ingest trigger with the given mux.
func Register(mux *http.ServeMux, runner Runner, publisher Publisher, limiter Middleware) {
	var handler http.Handler = RunHandler{Runner: runner, Publisher: publisher}
	if limiter != nil {
		handler = limiter.Limit(handler)
	}
	mux.Handle("POST /ingest/run", handler)
}
