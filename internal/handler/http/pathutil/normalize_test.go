package pathutil

import (
	"testing"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected string
	}{
		// Posting routes with IDs (should be normalized)
		{
			name:     "posting with ID",
			path:     "/postings/123",
			expected: "/postings/:id",
		},
		{
			name:     "posting with ID and trailing slash",
			path:     "/postings/123/",
			expected: "/postings/:id",
		},
		{
			name:     "posting with ID and query params",
			path:     "/postings/123?source=x",
			expected: "/postings/:id",
		},

		// Source routes with keys (should be normalized)
		{
			name:     "source with key",
			path:     "/sources/newgrad_swe_simplify",
			expected: "/sources/:key",
		},
		{
			name:     "source with numeric key",
			path:     "/sources/42",
			expected: "/sources/:key",
		},

		// Static endpoints (should remain unchanged)
		{
			name:     "health endpoint",
			path:     "/health",
			expected: "/health",
		},
		{
			name:     "health with query params",
			path:     "/health?format=json",
			expected: "/health",
		},
		{
			name:     "metrics endpoint",
			path:     "/metrics",
			expected: "/metrics",
		},
		{
			name:     "ingest trigger",
			path:     "/ingest/run",
			expected: "/ingest/run",
		},
		{
			name:     "stats endpoint",
			path:     "/stats",
			expected: "/stats",
		},

		// List endpoints (should remain unchanged)
		{
			name:     "postings list",
			path:     "/postings",
			expected: "/postings",
		},
		{
			name:     "postings list with query params",
			path:     "/postings?source=x&limit=10",
			expected: "/postings",
		},
		{
			name:     "sources list",
			path:     "/sources",
			expected: "/sources",
		},

		// Unknown/unmatched paths (should remain unchanged)
		{
			name:     "unknown path with ID",
			path:     "/unknown/path/123",
			expected: "/unknown/path/123",
		},
		{
			name:     "posting with non-numeric ID",
			path:     "/postings/abc-DEF",
			expected: "/postings/abc-DEF",
		},

		// Edge cases
		{
			name:     "root path",
			path:     "/",
			expected: "/",
		},
		{
			name:     "empty path",
			path:     "",
			expected: "",
		},
		{
			name:     "path with only query params",
			path:     "/?page=1",
			expected: "/",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NormalizePath(tt.path)
			if result != tt.expected {
				t.Errorf("NormalizePath(%q) = %q, want %q", tt.path, result, tt.expected)
			}
		})
	}
}

func TestNormalizePath_Cardinality(t *testing.T) {
	// Different IDs must produce the same normalized path
	paths := []string{
		"/postings/1",
		"/postings/2",
		"/postings/123",
		"/postings/999999",
	}

	uniqueResults := make(map[string]bool)
	for _, path := range paths {
		result := NormalizePath(path)
		if result != "/postings/:id" {
			t.Errorf("NormalizePath(%q) = %q, want %q", path, result, "/postings/:id")
		}
		uniqueResults[result] = true
	}

	if len(uniqueResults) != 1 {
		t.Errorf("Expected cardinality of 1, got %d unique paths: %v", len(uniqueResults), uniqueResults)
	}
}
