package feed

import (
	"net/http"

	"engjobs/internal/domain/entity"
	"engjobs/internal/parse/mdtable"
	"engjobs/internal/usecase/ingest"
)

// FetcherFactory builds the fetchers for the supported transports.
type FetcherFactory struct {
	client *http.Client
	parser *mdtable.Parser
}

// NewFetcherFactory creates a FetcherFactory. The HTTP client is shared by
// every fetcher, so its timeout applies to all source requests.
func NewFetcherFactory(client *http.Client, parser *mdtable.Parser) *FetcherFactory {
	return &FetcherFactory{client: client, parser: parser}
}

// CreateFetchers returns one fetcher per transport, keyed for routing.
func (f *FetcherFactory) CreateFetchers() map[entity.Transport]ingest.Fetcher {
	return map[entity.Transport]ingest.Fetcher{
		entity.TransportJSON:     NewJSONFetcher(f.client),
		entity.TransportMarkdown: NewMarkdownFetcher(f.client, f.parser),
	}
}
