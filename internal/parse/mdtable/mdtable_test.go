package mdtable

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"engjobs/internal/domain/entity"
	"engjobs/internal/parse/dateparse"
)

func pinnedParser(now time.Time) *Parser {
	interp := dateparse.New(dateparse.DefaultFallbackDays)
	interp.Now = func() time.Time { return now }
	return NewParser(interp)
}

func TestParser_DefaultDialect(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	p := pinnedParser(now)

	doc := `
# Software Internships

Some intro text with | pipes | that is not a table.

| Company | Position | Location | Application | Date |
|---------|----------|----------|-------------|------|
| Acme | Backend Intern | NYC | [Apply](https://acme.example/jobs/1) | Jun 1 |
| Globex | SWE Intern | Remote | no link yet | 2 days ago |
| Initech | Platform Intern | Austin |
`

	got := p.Parse(doc, entity.DialectDefault)
	require.Len(t, got, 3)

	assert.Equal(t, "Backend Intern", got[0].Title)
	assert.Equal(t, "Acme", got[0].CompanyName)
	assert.Equal(t, []string{"NYC"}, got[0].Locations)
	assert.Equal(t, "https://acme.example/jobs/1", got[0].URL)
	require.NotNil(t, got[0].DatePosted.Epoch)
	assert.Equal(t,
		time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC).Unix(),
		*got[0].DatePosted.Epoch)

	// "no link yet" contains "link", so the whole cell stands in for a URL.
	assert.Equal(t, "no link yet", got[1].URL)
	assert.Empty(t, got[1].Locations)
	require.NotNil(t, got[1].DatePosted.Epoch)
	assert.Equal(t, now.AddDate(0, 0, -2).Unix(), *got[1].DatePosted.Epoch)

	// Short rows keep their empty URL; identity falls back downstream.
	assert.Equal(t, "", got[2].URL)
	require.NotNil(t, got[2].DatePosted.Epoch)
	assert.Equal(t, now.Unix(), *got[2].DatePosted.Epoch)
}

func TestParser_JobrightContinuationRows(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	p := pinnedParser(now)

	doc := `
| Company | Job Title | Location | Work Model | Date Posted |
|---------|-----------|----------|------------|-------------|
| **CompanyA** | [Backend Intern](https://jobs.example/a1) | Seattle, WA | Onsite | Jun 2 |
| ↳ | [Frontend Intern](https://jobs.example/a2) | Remote | Remote | Jun 3 |
| CompanyB | [Data Intern](https://jobs.example/b1) | n/a | Hybrid | Jun 4 |
`

	got := p.Parse(doc, entity.DialectJobright)
	require.Len(t, got, 3)

	assert.Equal(t, "CompanyA", got[0].CompanyName)
	assert.Equal(t, "Backend Intern", got[0].Title)
	assert.Equal(t, "https://jobs.example/a1", got[0].URL)
	assert.Equal(t, []string{"Seattle, WA"}, got[0].Locations)
	assert.Equal(t, "Onsite", got[0].WorkModel)

	// Continuation glyph resolves to the previous literal company.
	assert.Equal(t, "CompanyA", got[1].CompanyName)
	assert.Equal(t, "https://jobs.example/a2", got[1].URL)
	assert.Empty(t, got[1].Locations)
	assert.Equal(t, "no location specified", got[1].Location)

	assert.Equal(t, "CompanyB", got[2].CompanyName)
	assert.Equal(t, "no location specified", got[2].Location)
}

func TestParser_JobrightSkipsMalformedRows(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	p := pinnedParser(now)

	doc := `
| Company | Job Title | Location | Work Model | Date Posted |
|---------|-----------|----------|------------|-------------|
| OnlyFour | [Intern](https://jobs.example/x) | NYC | Jun 2 |
| NoURL | Plain Title Intern | NYC | Onsite | Jun 2 |
| Kept | [Real Intern](https://jobs.example/y) | NYC | Onsite | Jun 2 |
`

	got := p.Parse(doc, entity.DialectJobright)
	require.Len(t, got, 1)
	assert.Equal(t, "Kept", got[0].CompanyName)
}

func TestParser_IgnoresEverythingBeforeHeader(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	p := pinnedParser(now)

	doc := `
| Badge1 | Badge2 | Badge3 |
| Acme | Not A Posting | NYC |
| Company | Position | Location |
|---------|----------|----------|
| Acme | Real Intern | NYC |
`

	got := p.Parse(doc, entity.DialectDefault)
	require.Len(t, got, 1)
	assert.Equal(t, "Real Intern", got[0].Title)
}

func TestParser_SkipsRepeatedHeaderRows(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	p := pinnedParser(now)

	doc := `
| Company | Position | Location |
|---------|----------|----------|
| Company | Position | Location |
| Acme | Real Intern | NYC |
`

	got := p.Parse(doc, entity.DialectDefault)
	require.Len(t, got, 1)
	assert.Equal(t, "Acme", got[0].CompanyName)
}

func TestParser_UnknownDialect(t *testing.T) {
	p := pinnedParser(time.Now())
	assert.Nil(t, p.Parse("| Company | Position | Location |", "levels_fyi"))
}

func TestExtractURL(t *testing.T) {
	tests := []struct {
		name string
		cell string
		want string
	}{
		{"markdown link", "[Apply here](https://jobs.example/1)", "https://jobs.example/1"},
		{"markdown link wins over bare url", "[Apply](https://a.example) https://b.example", "https://a.example"},
		{"bare url", "see https://jobs.example/2 for details", "https://jobs.example/2"},
		{"html anchor href", `<a href="https://jobs.example/3"><img src="x"></a>`, "https://jobs.example/3"},
		{"hint word fallback", "Apply via portal", "Apply via portal"},
		{"no url at all", "Closed", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractURL(tt.cell))
		})
	}
}

func TestCleanCell(t *testing.T) {
	tests := []struct {
		name string
		cell string
		want string
	}{
		{"markdown link keeps text", "[Backend Intern](https://jobs.example/1)", "Backend Intern"},
		{"bold markdown", "**Acme Corp**", "Acme Corp"},
		{"html anchor", `<a href="https://x.example">Acme Corp</a>`, "Acme Corp"},
		{"line break becomes comma", "Acme<br>Labs", "Acme, Labs"},
		{"self closing break", "Acme<br/>Labs", "Acme, Labs"},
		{"plain text untouched", "Acme Corp", "Acme Corp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanCell(tt.cell))
		})
	}
}
