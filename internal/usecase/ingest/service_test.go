package ingest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"engjobs/internal/domain/entity"
	"engjobs/internal/parse/dateparse"
)

type stubCatalog struct {
	sources []*entity.Source
	err     error
}

func (c *stubCatalog) Active(_ context.Context) ([]*entity.Source, error) {
	return c.sources, c.err
}

// stubFetcher serves canned records keyed by source, with optional per-source
// failures.
type stubFetcher struct {
	records map[string][]RawPosting
	fail    map[string]error
}

func (f *stubFetcher) Fetch(_ context.Context, src *entity.Source) ([]RawPosting, error) {
	if err := f.fail[src.Key]; err != nil {
		return nil, err
	}
	return f.records[src.Key], nil
}

func newTestService(catalog SourceCatalog, fetcher Fetcher, now time.Time, maxPostings int) *Service {
	interp := dateparse.New(dateparse.DefaultFallbackDays)
	interp.Now = func() time.Time { return now }

	svc := NewService(
		catalog,
		map[entity.Transport]Fetcher{
			entity.TransportJSON:     fetcher,
			entity.TransportMarkdown: fetcher,
		},
		NewNormalizer(interp),
		maxPostings,
	)
	svc.Now = func() time.Time { return now }
	return svc
}

func rawAt(title, company, url string, date time.Time) RawPosting {
	return RawPosting{
		Title:       title,
		CompanyName: company,
		URL:         url,
		DatePosted:  EpochOf(date.Unix()),
	}
}

func TestService_RunDeduplicatesAcrossSources(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

	catalog := &stubCatalog{sources: []*entity.Source{
		{Key: "src_a", Name: "Internships-A", URL: "https://a.example", Transport: entity.TransportJSON, Active: true},
		{Key: "src_b", Name: "Internships-B", URL: "https://b.example", Transport: entity.TransportJSON, Active: true},
	}}
	fetcher := &stubFetcher{records: map[string][]RawPosting{
		"src_a": {rawAt("Backend Intern", "Acme", "https://jobs.example/1", now.AddDate(0, 0, -1))},
		"src_b": {
			rawAt("Backend Intern (mirror)", "Acme", "https://jobs.example/1", now.AddDate(0, 0, -2)),
			rawAt("Data Intern", "Globex", "https://jobs.example/2", now.AddDate(0, 0, -3)),
		},
	}}

	svc := newTestService(catalog, fetcher, now, 0)
	postings, stats, err := svc.Run(context.Background(), 14)
	require.NoError(t, err)

	// The shared URL collapses to the first source's record; output is
	// oldest first.
	require.Len(t, postings, 2)
	assert.Equal(t, "Data Intern", postings[0].Title)
	assert.Equal(t, "Backend Intern", postings[1].Title)
	assert.Equal(t, "src_a", postings[1].Source)

	assert.Equal(t, 2, stats.Sources)
	assert.Equal(t, int64(3), stats.RawItems)
	assert.Equal(t, int64(1), stats.Duplicated)
	assert.Zero(t, stats.SourcesFailed)
}

func TestService_RunToleratesFailingSource(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

	catalog := &stubCatalog{sources: []*entity.Source{
		{Key: "broken", Name: "Internships-Broken", URL: "https://broken.example", Transport: entity.TransportJSON, Active: true},
		{Key: "healthy", Name: "Internships-Healthy", URL: "https://healthy.example", Transport: entity.TransportJSON, Active: true},
	}}
	fetcher := &stubFetcher{
		records: map[string][]RawPosting{
			"healthy": {rawAt("SWE Intern", "Acme", "https://jobs.example/1", now.AddDate(0, 0, -1))},
		},
		fail: map[string]error{
			"broken": errors.New("http 500"),
		},
	}

	svc := newTestService(catalog, fetcher, now, 0)
	postings, stats, err := svc.Run(context.Background(), 14)
	require.NoError(t, err)

	require.Len(t, postings, 1)
	assert.Equal(t, "healthy", postings[0].Source)
	assert.Equal(t, int64(1), stats.SourcesFailed)
}

func TestService_RunFiltersAndCaps(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

	records := []RawPosting{
		rawAt("Stale Intern", "Old Co", "https://jobs.example/stale", now.AddDate(0, 0, -30)),
	}
	for i := 0; i < 5; i++ {
		records = append(records, rawAt(
			"Intern", "Acme",
			"https://jobs.example/"+string(rune('a'+i)),
			now.AddDate(0, 0, -(i+1)),
		))
	}

	catalog := &stubCatalog{sources: []*entity.Source{
		{Key: "src", Name: "Internships", URL: "https://src.example", Transport: entity.TransportJSON, Active: true},
	}}
	fetcher := &stubFetcher{records: map[string][]RawPosting{"src": records}}

	svc := newTestService(catalog, fetcher, now, 3)
	postings, stats, err := svc.Run(context.Background(), 14)
	require.NoError(t, err)

	// The 30-day-old record falls outside the window; the cap keeps the
	// three most recent of the rest.
	require.Len(t, postings, 3)
	assert.Equal(t, int64(1), stats.TooOld)
	assert.Equal(t, int64(2), stats.Capped)
	for i := 1; i < len(postings); i++ {
		assert.False(t, postings[i].DatePosted.Before(postings[i-1].DatePosted))
	}
	assert.Equal(t, now.AddDate(0, 0, -1), postings[2].DatePosted)
}

func TestService_RunMissingTransportCountsAsFailure(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

	catalog := &stubCatalog{sources: []*entity.Source{
		{Key: "src", Name: "Internships", URL: "https://src.example", Transport: entity.TransportJSON, Active: true},
	}}

	interp := dateparse.New(dateparse.DefaultFallbackDays)
	interp.Now = func() time.Time { return now }
	svc := NewService(catalog, map[entity.Transport]Fetcher{}, NewNormalizer(interp), 0)
	svc.Now = func() time.Time { return now }

	postings, stats, err := svc.Run(context.Background(), 14)
	require.NoError(t, err)
	assert.Empty(t, postings)
	assert.Equal(t, int64(1), stats.SourcesFailed)
}

func TestService_RunCatalogErrorAborts(t *testing.T) {
	catalog := &stubCatalog{err: errors.New("catalog unavailable")}
	svc := newTestService(catalog, &stubFetcher{}, time.Now(), 0)

	_, _, err := svc.Run(context.Background(), 14)
	assert.Error(t, err)
}

func TestService_RunSkipsInvalidRecords(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

	catalog := &stubCatalog{sources: []*entity.Source{
		{Key: "src", Name: "Internships", URL: "https://src.example", Transport: entity.TransportJSON, Active: true},
	}}
	fetcher := &stubFetcher{records: map[string][]RawPosting{
		"src": {
			{Title: "", CompanyName: "Acme"}, // unusable
			rawAt("Real Intern", "Acme", "https://jobs.example/1", now.AddDate(0, 0, -1)),
		},
	}}

	svc := newTestService(catalog, fetcher, now, 0)
	postings, stats, err := svc.Run(context.Background(), 14)
	require.NoError(t, err)

	require.Len(t, postings, 1)
	assert.Equal(t, "Real Intern", postings[0].Title)
	assert.Equal(t, int64(1), stats.Invalid)
}
