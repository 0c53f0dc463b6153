package ingest

import (
	"strings"
	"time"

	"engjobs/internal/domain/entity"
	"engjobs/internal/parse/dateparse"
)

// Normalizer converts raw source records into domain postings. The source
// catalog entry supplies everything the record itself cannot: the role type
// and the source key.
type Normalizer struct {
	dates *dateparse.Interpreter
}

// NewNormalizer creates a Normalizer using the given date interpreter.
func NewNormalizer(dates *dateparse.Interpreter) *Normalizer {
	return &Normalizer{dates: dates}
}

// Normalize maps one raw record to a posting. It returns a validation error
// for records missing required fields; callers skip those records.
func (n *Normalizer) Normalize(raw RawPosting, src *entity.Source) (*entity.Posting, error) {
	company := strings.TrimSpace(raw.CompanyName)
	if company == "" {
		company = strings.TrimSpace(raw.Company)
	}

	location := strings.Join(raw.Locations, ", ")
	if location == "" {
		location = strings.TrimSpace(raw.Location)
	}

	p := &entity.Posting{
		Title:      strings.TrimSpace(raw.Title),
		Company:    company,
		Location:   location,
		URL:        strings.TrimSpace(raw.URL),
		DatePosted: n.resolveTime(raw.DatePosted),
		RoleType:   entity.RoleTypeFromLabel(src.Name),
		Source:     src.Key,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// resolveTime turns a wire date into a timestamp. Epoch seconds are taken as
// is; everything else, including the empty string, goes through the date
// interpreter, which never fails.
func (n *Normalizer) resolveTime(d RawDate) time.Time {
	if d.Epoch != nil {
		return time.Unix(*d.Epoch, 0).UTC()
	}
	return n.dates.Parse(d.Text)
}
