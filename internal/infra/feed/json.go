package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"engjobs/internal/domain/entity"
	"engjobs/internal/resilience/circuitbreaker"
	"engjobs/internal/resilience/retry"
	"engjobs/internal/usecase/ingest"

	"github.com/sony/gobreaker"
)

// JSONFetcher retrieves sources that publish their listings as a JSON array.
type JSONFetcher struct {
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
}

// NewJSONFetcher creates a JSONFetcher backed by the given HTTP client.
func NewJSONFetcher(client *http.Client) *JSONFetcher {
	return &JSONFetcher{
		client:         client,
		circuitBreaker: circuitbreaker.New(circuitbreaker.SourceFetchConfig()),
		retryConfig:    retry.SourceFetchConfig(),
	}
}

// Fetch retrieves and decodes the JSON listing feed for the given source.
func (f *JSONFetcher) Fetch(ctx context.Context, src *entity.Source) ([]ingest.RawPosting, error) {
	var records []ingest.RawPosting

	retryErr := retry.WithBackoff(ctx, f.retryConfig, func() error {
		cbResult, err := f.circuitBreaker.Execute(func() (interface{}, error) {
			return f.doFetch(ctx, src.URL)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("source fetch circuit breaker open, request rejected",
					slog.String("source", src.Key),
					slog.String("url", src.URL),
					slog.String("state", f.circuitBreaker.State().String()))
			}
			return err
		}

		records = cbResult.([]ingest.RawPosting)
		return nil
	})

	if retryErr != nil {
		return nil, retryErr
	}
	return records, nil
}

// doFetch performs the actual fetch without retry or circuit breaker.
func (f *JSONFetcher) doFetch(ctx context.Context, url string) ([]ingest.RawPosting, error) {
	body, err := fetchBody(ctx, f.client, url)
	if err != nil {
		return nil, err
	}

	var records []ingest.RawPosting
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("decode listing feed: %w", err)
	}
	return records, nil
}
