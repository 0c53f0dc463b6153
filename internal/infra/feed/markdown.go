package feed

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"engjobs/internal/domain/entity"
	"engjobs/internal/parse/mdtable"
	"engjobs/internal/resilience/circuitbreaker"
	"engjobs/internal/resilience/retry"
	"engjobs/internal/usecase/ingest"

	"github.com/sony/gobreaker"
)

// MarkdownFetcher retrieves sources that publish their listings as a
// markdown table inside a README document. The table is parsed with the
// dialect named on the source.
type MarkdownFetcher struct {
	client         *http.Client
	parser         *mdtable.Parser
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
}

// NewMarkdownFetcher creates a MarkdownFetcher using the given client and
// table parser.
func NewMarkdownFetcher(client *http.Client, parser *mdtable.Parser) *MarkdownFetcher {
	return &MarkdownFetcher{
		client:         client,
		parser:         parser,
		circuitBreaker: circuitbreaker.New(circuitbreaker.SourceFetchConfig()),
		retryConfig:    retry.SourceFetchConfig(),
	}
}

// Fetch retrieves the source document and extracts its table rows.
func (f *MarkdownFetcher) Fetch(ctx context.Context, src *entity.Source) ([]ingest.RawPosting, error) {
	var records []ingest.RawPosting

	retryErr := retry.WithBackoff(ctx, f.retryConfig, func() error {
		cbResult, err := f.circuitBreaker.Execute(func() (interface{}, error) {
			return fetchBody(ctx, f.client, src.URL)
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

		records = f.parser.Parse(string(cbResult.([]byte)), src.Dialect)
		return nil
	})

	if retryErr != nil {
		return nil, retryErr
	}
	return records, nil
}
