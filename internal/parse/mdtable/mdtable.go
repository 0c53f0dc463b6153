// Package mdtable extracts job listing rows from markdown tables embedded in
// upstream README documents. Each source repository formats its table
// differently, so parsing is dialect-driven: a dialect binds a minimum column
// count to a row-mapping function, and new layouts register a new dialect
// instead of growing string comparisons inside the scanner.
package mdtable

import (
	"log/slog"
	"strings"

	"engjobs/internal/domain/entity"
	"engjobs/internal/parse/dateparse"
	"engjobs/internal/usecase/ingest"
)

// companyContinuationGlyph marks a row that belongs to the same company as
// the row above it. The jobright tables render consecutive postings from one
// company with this arrow in the company cell.
const companyContinuationGlyph = "↳"

// noLocation replaces placeholder location cells ("n/a", "remote", ...) so
// downstream consumers see one canonical value instead of vendor spellings.
const noLocation = "no location specified"

// headerKeywords identify a table header row. The first pipe row containing
// any of these (joined, case-insensitive) flips the scanner into data mode.
var headerKeywords = []string{"company", "position", "location", "application", "job title"}

// locationPlaceholders are cell values that mean "no usable location".
var locationPlaceholders = map[string]bool{
	"n/a":     true,
	"":        true,
	"remote":  true,
	"various": true,
}

// rowMapper converts the cells of one data row into a raw posting.
// Returning (nil, nil) skips the row silently; an error skips it with a log.
type rowMapper func(p *Parser, cells []string, st *scanState) (*ingest.RawPosting, error)

// dialect binds a column-count contract to a row mapping.
type dialect struct {
	minColumns int
	mapRow     rowMapper
}

// dialects is the registry of known table layouts.
var dialects = map[entity.Dialect]dialect{
	entity.DialectDefault:  {minColumns: 3, mapRow: (*Parser).mapDefaultRow},
	entity.DialectJobright: {minColumns: 5, mapRow: (*Parser).mapJobrightRow},
}

// scanState is the fold accumulator threaded through the line scan.
// Two facts survive between rows: whether the header has been seen, and the
// last literal company name (for continuation rows).
type scanState struct {
	headerFound bool
	lastCompany string
}

// Parser extracts raw postings from markdown documents.
type Parser struct {
	dates *dateparse.Interpreter
}

// NewParser creates a Parser using the given date interpreter for the
// embedded date columns.
func NewParser(dates *dateparse.Interpreter) *Parser {
	return &Parser{dates: dates}
}

// Parse scans a markdown document for table rows and maps them through the
// named dialect. A bad row is logged and skipped; the rest of the document is
// always processed. Unknown dialects yield no rows.
func (p *Parser) Parse(doc string, d entity.Dialect) []ingest.RawPosting {
	layout, ok := dialects[d]
	if !ok {
		slog.Warn("unknown markdown table dialect, skipping document",
			slog.String("dialect", string(d)))
		return nil
	}

	var postings []ingest.RawPosting
	st := scanState{}

	for _, line := range strings.Split(doc, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "|") || !strings.HasSuffix(line, "|") {
			continue
		}

		cells := splitRow(line)

		if !st.headerFound {
			if isHeaderRow(cells) {
				st.headerFound = true
			}
			// Pre-header pipe rows (badges, notes) are not data.
			continue
		}

		if isSeparatorRow(cells) {
			continue
		}
		if len(cells) < 3 {
			continue
		}

		if len(cells) < layout.minColumns {
			slog.Warn("skipping row with too few columns",
				slog.String("dialect", string(d)),
				slog.Int("columns", len(cells)),
				slog.Int("required", layout.minColumns))
			continue
		}

		raw, err := layout.mapRow(p, cells, &st)
		if err != nil {
			slog.Warn("failed to parse table row, skipping",
				slog.String("dialect", string(d)),
				slog.String("row", line),
				slog.Any("error", err))
			continue
		}
		if raw != nil {
			postings = append(postings, *raw)
		}
	}

	return postings
}

// mapDefaultRow handles the common layout:
// company | position | location | application info | date (optional).
// The URL lives in the application cell. Rows without a URL are kept; the
// aggregator falls back to a synthetic identity downstream.
func (p *Parser) mapDefaultRow(cells []string, _ *scanState) (*ingest.RawPosting, error) {
	company := strings.TrimSpace(cells[0])
	position := strings.TrimSpace(cells[1])
	location := strings.TrimSpace(cells[2])

	applicationInfo := ""
	if len(cells) > 3 {
		applicationInfo = strings.TrimSpace(cells[3])
	}
	datePosted := ""
	if len(cells) > 4 {
		datePosted = strings.TrimSpace(cells[4])
	}

	if skipCompanyRow(company, position) {
		return nil, nil
	}

	return &ingest.RawPosting{
		Title:       position,
		CompanyName: company,
		Locations:   locationList(location),
		URL:         ExtractURL(applicationInfo),
		DatePosted:  p.resolveDate(datePosted),
	}, nil
}

// mapJobrightRow handles the jobright layout:
// company | position | location | work model | date.
// The URL lives in the position cell, company cells use the continuation
// glyph, and both name cells need markdown and HTML stripped.
func (p *Parser) mapJobrightRow(cells []string, st *scanState) (*ingest.RawPosting, error) {
	company := strings.TrimSpace(cells[0])
	position := strings.TrimSpace(cells[1])
	location := strings.TrimSpace(cells[2])
	workModel := strings.TrimSpace(cells[3])
	datePosted := strings.TrimSpace(cells[4])

	if company == companyContinuationGlyph {
		if st.lastCompany != "" {
			company = st.lastCompany
		}
	} else if company != "" {
		st.lastCompany = company
	}

	url := ExtractURL(position)
	position = CleanCell(position)
	company = CleanCell(company)

	if skipCompanyRow(company, position) {
		return nil, nil
	}

	// No URL means no identity in this dialect; drop the row.
	if url == "" {
		return nil, nil
	}

	return &ingest.RawPosting{
		Title:       position,
		CompanyName: company,
		Locations:   locationList(location),
		Location:    placeholderLocation(location),
		URL:         url,
		DatePosted:  p.resolveDate(datePosted),
		WorkModel:   workModel,
	}, nil
}

// resolveDate interprets a date cell, defaulting to now when the cell is
// empty. Emitted as epoch seconds to match the JSON feed schema.
func (p *Parser) resolveDate(cell string) ingest.RawDate {
	if cell == "" {
		return ingest.EpochOf(p.dates.Now().Unix())
	}
	return ingest.EpochOf(p.dates.Parse(cell).Unix())
}

// skipCompanyRow filters rows that are not real listings: blank names, or a
// repeated header leaking through as data ("Company", "Name").
func skipCompanyRow(company, position string) bool {
	if company == "" || position == "" {
		return true
	}
	switch strings.ToLower(company) {
	case "company", "name":
		return true
	}
	return false
}

// locationList wraps a usable location in a single-element list, mirroring
// the upstream JSON schema. Placeholder values produce an empty list.
func locationList(location string) []string {
	if locationPlaceholders[strings.ToLower(location)] {
		return nil
	}
	return []string{location}
}

// placeholderLocation returns the canonical no-location value for
// placeholder cells, empty otherwise (the list form carries real values).
func placeholderLocation(location string) string {
	if locationPlaceholders[strings.ToLower(location)] {
		return noLocation
	}
	return ""
}

// splitRow splits "| a | b |" into trimmed cells.
func splitRow(line string) []string {
	inner := strings.TrimSuffix(strings.TrimPrefix(line, "|"), "|")
	parts := strings.Split(inner, "|")
	cells := make([]string, len(parts))
	for i, part := range parts {
		cells[i] = strings.TrimSpace(part)
	}
	return cells
}

// isHeaderRow reports whether a row looks like a table header.
func isHeaderRow(cells []string) bool {
	joined := strings.ToLower(strings.Join(cells, " "))
	for _, kw := range headerKeywords {
		if strings.Contains(joined, kw) {
			return true
		}
	}
	return false
}

// isSeparatorRow reports whether every cell is empty or made of dashes
// (the |---|---| row under a header).
func isSeparatorRow(cells []string) bool {
	for _, cell := range cells {
		if cell == "" {
			continue
		}
		if strings.Trim(cell, "-") != "" {
			return false
		}
	}
	return true
}
