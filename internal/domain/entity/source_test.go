package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSource_Validate(t *testing.T) {
	tests := []struct {
		name    string
		source  Source
		wantErr bool
	}{
		{
			name: "valid json source",
			source: Source{
				Key:       "vanshb_swe_internship",
				Name:      "Summer2026-Internships-Vanshb",
				URL:       "https://example.com/listings.json",
				Transport: TransportJSON,
				Active:    true,
			},
		},
		{
			name: "valid jobright markdown source",
			source: Source{
				Key:       "jobright_swe",
				Name:      "JobRight-AI-Software-Internship",
				URL:       "https://example.com/README.md",
				Transport: TransportMarkdown,
				Dialect:   DialectJobright,
				Active:    true,
			},
		},
		{
			name: "json source must not carry a dialect",
			source: Source{
				Key:       "k",
				Name:      "n",
				URL:       "https://example.com",
				Transport: TransportJSON,
				Dialect:   DialectJobright,
			},
			wantErr: true,
		},
		{
			name: "unknown transport",
			source: Source{
				Key:       "k",
				Name:      "n",
				URL:       "https://example.com",
				Transport: "rss",
			},
			wantErr: true,
		},
		{
			name: "unknown dialect",
			source: Source{
				Key:       "k",
				Name:      "n",
				URL:       "https://example.com",
				Transport: TransportMarkdown,
				Dialect:   "levels_fyi",
			},
			wantErr: true,
		},
		{
			name: "missing key",
			source: Source{
				Name:      "n",
				URL:       "https://example.com",
				Transport: TransportJSON,
			},
			wantErr: true,
		},
		{
			name: "missing url",
			source: Source{
				Key:       "k",
				Name:      "n",
				Transport: TransportJSON,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.source.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSource_ValidateDefaultsMarkdownDialect(t *testing.T) {
	s := Source{
		Key:       "k",
		Name:      "n",
		URL:       "https://example.com/README.md",
		Transport: TransportMarkdown,
	}
	assert.NoError(t, s.Validate())
	assert.Equal(t, DialectDefault, s.Dialect)
}

func TestSource_RoleType(t *testing.T) {
	internship := Source{Name: "JobRight-AI-Engineering-Internship"}
	newGrad := Source{Name: "JobRight-AI-Engineering-New-Grad"}

	assert.Equal(t, RoleTypeInternship, internship.RoleType())
	assert.Equal(t, RoleTypeNewGrad, newGrad.RoleType())
}
