package metrics

import (
	"time"
)

// RecordSourceIngest records a completed source ingest: how long it took
// and how many raw records were found.
func RecordSourceIngest(sourceKey string, duration time.Duration, found int) {
	SourceIngestDuration.WithLabelValues(sourceKey).Observe(duration.Seconds())
	if found > 0 {
		PostingsFetchedTotal.WithLabelValues(sourceKey).Add(float64(found))
	}
}

// RecordSourceIngestError records a per-source failure during an ingest run.
func RecordSourceIngestError(sourceKey, errorType string) {
	SourceIngestErrors.WithLabelValues(sourceKey, errorType).Inc()
}

// RecordIngestRun records the outcome of a full ingest run.
func RecordIngestRun(duration time.Duration, postings int) {
	IngestRunDuration.Observe(duration.Seconds())
	IngestRunPostings.Set(float64(postings))
}

// RecordPostingPublished records the result of publishing one posting.
// Status is one of "inserted", "duplicate" or "failed".
func RecordPostingPublished(status string) {
	PostingsPublishedTotal.WithLabelValues(status).Inc()
}

// UpdatePostingsTotal updates the total count of postings in the database.
// This gauge should be updated periodically to reflect the current state.
func UpdatePostingsTotal(count int) {
	PostingsTotal.Set(float64(count))
}

// UpdateSourcesTotal updates the number of active sources in the catalog.
func UpdateSourcesTotal(count int) {
	SourcesTotal.Set(float64(count))
}

// RecordDBQuery records the duration of a database query operation.
// Operation should describe the query type (e.g., "select_postings", "insert_posting").
func RecordDBQuery(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// UpdateDBConnectionStats updates database connection pool statistics.
func UpdateDBConnectionStats(active, idle int) {
	DBConnectionsActive.Set(float64(active))
	DBConnectionsIdle.Set(float64(idle))
}
