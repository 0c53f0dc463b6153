// Package pathutil provides URL path helpers for HTTP handlers, primarily
// path normalization for metrics labels.
package pathutil

import (
	"regexp"
	"strings"
)

// PathPattern represents a regex pattern and its corresponding normalized template.
type PathPattern struct {
	Pattern  *regexp.Regexp
	Template string
}

// pathPatterns defines the list of patterns for dynamic routes.
// Patterns are evaluated in order from most specific to least specific.
// Pre-compiled at initialization to keep normalization cheap per request.
var pathPatterns = []*PathPattern{
	// Posting routes with IDs
	{Pattern: regexp.MustCompile(`^/postings/\d+$`), Template: "/postings/:id"},

	// Source routes with keys
	{Pattern: regexp.MustCompile(`^/sources/[a-z0-9_]+$`), Template: "/sources/:key"},
}

// NormalizePath normalizes dynamic URL paths to prevent metrics label cardinality
// explosion. It converts paths with IDs (e.g., /postings/123) to template format
// (e.g., /postings/:id). Static paths remain unchanged.
//
// Query parameters and trailing slashes are stripped before matching:
//
//	NormalizePath("/postings/123?source=x")  // "/postings/:id"
//	NormalizePath("/postings/")              // "/postings"
//	NormalizePath("/health")                 // "/health" (unchanged)
func NormalizePath(path string) string {
	// Strip query parameters if present
	if idx := strings.IndexByte(path, '?'); idx != -1 {
		path = path[:idx]
	}

	// Strip trailing slash if present (except for root path)
	if len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}

	for _, p := range pathPatterns {
		if p.Pattern.MatchString(path) {
			return p.Template
		}
	}

	// No match found. Static paths like /health, /metrics, /stats and
	// /ingest/run pass through unchanged.
	return path
}
