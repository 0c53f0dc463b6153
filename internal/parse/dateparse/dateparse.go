// Package dateparse interprets the free-form date strings found in job listing
// feeds. Upstream repositories mix absolute dates, partial month/day dates and
// relative "N days ago" phrases, so parsing is a total function: every input
// resolves to a usable timestamp, falling back to a recency assumption when
// nothing matches.
package dateparse

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultFallbackDays is the recency assumption applied to unparseable date
// strings. A listing whose date cannot be read is treated as roughly a week
// old rather than discarded.
const DefaultFallbackDays = 7

var (
	prefixPattern   = regexp.MustCompile(`(?i)^(posted|updated|added):\s*`)
	suffixPattern   = regexp.MustCompile(`(?i)\s*(ago|old)$`)
	relativePattern = regexp.MustCompile(`(?i)^(\d+)\s*(day|week|month)s?(?:\s+ago)?$`)
)

// absoluteLayouts are tried in order; the first successful parse wins.
// Numeric dates are ambiguous across dialects (01/02/2024), so the order is a
// fixed convention, not a best-match search. Unpadded layouts accept both
// "6/1/2024" and "06/01/2024".
var absoluteLayouts = []string{
	"Jan 2, 2006",
	"January 2, 2006",
	"1/2/2006",
	"2006-1-2",
	"2-1-2006",
	"1-2-2006",
	"2006/1/2",
	"2/1/2006",
}

// Interpreter parses listing date strings relative to an injectable clock.
type Interpreter struct {
	// Now supplies the current time. Defaults to time.Now; tests pin it.
	Now func() time.Time

	// FallbackDays is the age assumed for date strings that match nothing.
	FallbackDays int
}

// New creates an Interpreter with the given fallback window in days.
func New(fallbackDays int) *Interpreter {
	if fallbackDays <= 0 {
		fallbackDays = DefaultFallbackDays
	}
	return &Interpreter{
		Now:          time.Now,
		FallbackDays: fallbackDays,
	}
}

// Parse resolves a raw date string to a timestamp. It never fails: strings
// that match no known form resolve to now minus the fallback window.
func (i *Interpreter) Parse(raw string) time.Time {
	now := i.Now()

	s := strings.TrimSpace(raw)
	s = prefixPattern.ReplaceAllString(s, "")
	s = suffixPattern.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)

	if t, ok := i.parseRelative(s, now); ok {
		return t
	}
	if t, ok := parsePartial(s, now); ok {
		return t
	}
	for _, layout := range absoluteLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}

	return now.AddDate(0, 0, -i.FallbackDays)
}

// parseRelative handles "N day/week/month(s) ago" phrases.
// A month counts as exactly 30 days.
func (i *Interpreter) parseRelative(s string, now time.Time) (time.Time, bool) {
	m := relativePattern.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}

	n, err := strconv.Atoi(m[1])
	if err != nil {
		return time.Time{}, false
	}

	switch strings.ToLower(m[2]) {
	case "day":
		return now.AddDate(0, 0, -n), true
	case "week":
		return now.AddDate(0, 0, -7*n), true
	case "month":
		return now.AddDate(0, 0, -30*n), true
	}
	return time.Time{}, false
}

// parsePartial handles "Jun 19" style dates without a year. The current year
// is assumed; a result in the future rolls back one year, which keeps
// postings listed in late December sane when read in January.
func parsePartial(s string, now time.Time) (time.Time, bool) {
	t, err := time.Parse("Jan 2", s)
	if err != nil {
		return time.Time{}, false
	}

	dated := time.Date(now.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	if dated.After(now) {
		dated = time.Date(now.Year()-1, t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	}
	return dated, true
}
