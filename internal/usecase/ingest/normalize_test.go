package ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"engjobs/internal/domain/entity"
	"engjobs/internal/parse/dateparse"
)

func pinnedNormalizer(now time.Time) *Normalizer {
	interp := dateparse.New(dateparse.DefaultFallbackDays)
	interp.Now = func() time.Time { return now }
	return NewNormalizer(interp)
}

func TestNormalizer_Normalize(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	n := pinnedNormalizer(now)

	internshipSrc := &entity.Source{
		Key:  "vanshb_swe_internship",
		Name: "Summer2026-Internships-Vanshb",
	}
	newGradSrc := &entity.Source{
		Key:  "vanshb_swe_newgrad",
		Name: "Software-Engineering-New-Grad-Vanshb",
	}

	epoch := time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC).Unix()

	tests := []struct {
		name string
		raw  RawPosting
		src  *entity.Source
		want entity.Posting
	}{
		{
			name: "json feed record",
			raw: RawPosting{
				Title:       "Backend Intern",
				CompanyName: "Acme",
				Locations:   []string{"NYC", "Remote"},
				URL:         "https://jobs.example/1",
				DatePosted:  EpochOf(epoch),
			},
			src: internshipSrc,
			want: entity.Posting{
				Title:      "Backend Intern",
				Company:    "Acme",
				Location:   "NYC, Remote",
				URL:        "https://jobs.example/1",
				DatePosted: time.Unix(epoch, 0).UTC(),
				RoleType:   entity.RoleTypeInternship,
				Source:     "vanshb_swe_internship",
			},
		},
		{
			name: "company field fallback",
			raw: RawPosting{
				Title:      "SWE",
				Company:    "Globex",
				Location:   "Austin",
				URL:        "https://jobs.example/2",
				DatePosted: EpochOf(epoch),
			},
			src: newGradSrc,
			want: entity.Posting{
				Title:      "SWE",
				Company:    "Globex",
				Location:   "Austin",
				URL:        "https://jobs.example/2",
				DatePosted: time.Unix(epoch, 0).UTC(),
				RoleType:   entity.RoleTypeNewGrad,
				Source:     "vanshb_swe_newgrad",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := n.Normalize(tt.raw, tt.src)
			require.NoError(t, err)
			assert.Equal(t, &tt.want, got)
		})
	}
}

func TestNormalizer_NormalizeDates(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	n := pinnedNormalizer(now)
	src := &entity.Source{Key: "k", Name: "Internships"}

	base := RawPosting{Title: "Intern", CompanyName: "Acme", URL: "https://jobs.example/1"}

	t.Run("text date goes through the interpreter", func(t *testing.T) {
		raw := base
		raw.DatePosted = RawDate{Text: "3 days ago"}
		got, err := n.Normalize(raw, src)
		require.NoError(t, err)
		assert.WithinDuration(t, now.AddDate(0, 0, -3), got.DatePosted, time.Second)
	})

	t.Run("absent date falls back to the recency assumption", func(t *testing.T) {
		got, err := n.Normalize(base, src)
		require.NoError(t, err)
		assert.WithinDuration(t, now.AddDate(0, 0, -dateparse.DefaultFallbackDays), got.DatePosted, time.Second)
	})
}

func TestNormalizer_NormalizeRejectsIncompleteRecords(t *testing.T) {
	n := pinnedNormalizer(time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC))
	src := &entity.Source{Key: "k", Name: "Internships"}

	tests := []struct {
		name string
		raw  RawPosting
	}{
		{"missing title", RawPosting{CompanyName: "Acme"}},
		{"missing company", RawPosting{Title: "Intern"}},
		{"whitespace only", RawPosting{Title: "  ", CompanyName: "  "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := n.Normalize(tt.raw, src)
			assert.Error(t, err)
		})
	}
}
