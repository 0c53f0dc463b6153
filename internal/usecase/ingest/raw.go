package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"engjobs/internal/domain/entity"
)

// Fetcher retrieves raw listing records from a source endpoint.
// One implementation exists per transport (JSON feed, markdown document).
type Fetcher interface {
	Fetch(ctx context.Context, src *entity.Source) ([]RawPosting, error)
}

// RawPosting is a listing record as parsed from a source, before
// normalization. Field names mirror the upstream JSON feed schema; the
// markdown table parser fills the same shape.
type RawPosting struct {
	Title       string   `json:"title"`
	CompanyName string   `json:"company_name"`
	Company     string   `json:"company"`
	Locations   []string `json:"locations"`
	Location    string   `json:"location"`
	URL         string   `json:"url"`
	DatePosted  RawDate  `json:"date_posted"`
	WorkModel   string   `json:"work_model"`
}

// RawDate is a listing date as it appears on the wire: either epoch seconds
// (the JSON feeds), a free-form string, or absent.
type RawDate struct {
	Epoch *int64
	Text  string
}

// EpochOf builds a RawDate from epoch seconds. Used by parsers that resolve
// dates themselves.
func EpochOf(sec int64) RawDate {
	return RawDate{Epoch: &sec}
}

// UnmarshalJSON accepts a JSON number (epoch seconds), a string, or null.
func (d *RawDate) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*d = RawDate{}
		return nil
	}

	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("unmarshal date string: %w", err)
		}
		*d = RawDate{Text: s}
		return nil
	}

	var sec int64
	if err := json.Unmarshal(b, &sec); err != nil {
		return fmt.Errorf("unmarshal date epoch: %w", err)
	}
	*d = RawDate{Epoch: &sec}
	return nil
}

// IsZero reports whether no date information was present at all.
func (d RawDate) IsZero() bool {
	return d.Epoch == nil && d.Text == ""
}
