// Package feed provides transport implementations for fetching listing
// sources. Each transport wraps its HTTP calls with retry and circuit
// breaker logic so a misbehaving source cannot stall an ingest run.
package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"engjobs/internal/resilience/retry"
)

const (
	userAgent = "engjobs-ingest/1.0"

	// maxBodyBytes bounds how much of a source document is read. The
	// largest README sources are well under 5MB.
	maxBodyBytes = 10 << 20
)

// fetchBody performs a single GET and returns the response body.
// Non-2xx responses become retry.HTTPError so the retry layer can decide
// whether the status is transient.
func fetchBody(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &retry.HTTPError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return body, nil
}
