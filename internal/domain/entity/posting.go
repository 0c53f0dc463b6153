// Package entity defines the core domain entities and validation logic for the application.
// It contains the fundamental business objects such as Posting and Source, along with
// their validation rules and domain-specific errors.
package entity

import (
	"strings"
	"time"
)

// RoleType classifies a posting as an internship or a new-grad position.
// It is inferred from the source label, never from the posting content itself.
type RoleType string

const (
	RoleTypeInternship RoleType = "Internship"
	RoleTypeNewGrad    RoleType = "New Grad"
)

// newGradMarkers are the label substrings that mark a source as carrying
// new-grad positions. The check is case-sensitive: these are the exact spellings
// used by the upstream repositories.
var newGradMarkers = []string{"New-Grad", "Newgrad"}

// RoleTypeFromLabel infers the role type from a source label.
func RoleTypeFromLabel(label string) RoleType {
	for _, marker := range newGradMarkers {
		if strings.Contains(label, marker) {
			return RoleTypeNewGrad
		}
	}
	return RoleTypeInternship
}

// Posting represents a normalized job posting in the system.
// Postings are value objects built fresh on every pipeline run; only the
// persistence layer assigns ID and CreatedAt and flips Posted.
type Posting struct {
	ID         int64
	Title      string
	Company    string
	Location   string
	URL        string
	DatePosted time.Time
	RoleType   RoleType
	Source     string
	Posted     bool
	CreatedAt  time.Time
}

// IdentityKey returns the value used to detect duplicate postings.
// The URL is the primary identity. Postings without a URL fall back to a
// synthetic company_title key; two distinct blank-URL postings with the same
// company and title therefore collapse into one. Blank-URL rows are rare
// and usually are the same listing, so that precision loss is accepted.
func (p *Posting) IdentityKey() string {
	if p.URL != "" {
		return p.URL
	}
	return p.Company + "_" + p.Title
}

// Validate checks that the posting carries the fields required for
// persistence and deduplication.
func (p *Posting) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return &ValidationError{Field: "title", Message: "title is required"}
	}
	if strings.TrimSpace(p.Company) == "" {
		return &ValidationError{Field: "company", Message: "company is required"}
	}
	if p.DatePosted.IsZero() {
		return &ValidationError{Field: "date_posted", Message: "date_posted must be set"}
	}
	return nil
}
