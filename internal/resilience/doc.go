// Package resilience holds the fault tolerance building blocks shared
// by the fetchers, the notifiers, and the database layer: gobreaker
// circuit breakers and retry with exponential backoff plus jitter.
//
//	cb := circuitbreaker.New(circuitbreaker.SourceFetchConfig())
//	body, err := cb.Execute(fetchListing)
//
//	err := retry.WithBackoff(ctx, retry.DefaultConfig(), send)
package resilience
