package entity

import "fmt"

// Transport identifies how a source's endpoint is fetched and decoded.
type Transport string

const (
	// TransportJSON is a raw JSON endpoint returning an array of listing objects.
	TransportJSON Transport = "json"
	// TransportMarkdown is an endpoint returning a markdown document with
	// embedded listing tables.
	TransportMarkdown Transport = "markdown_table"
)

// Dialect names a column-layout convention for markdown listing tables.
type Dialect string

const (
	// DialectDefault is the common 4–5 column layout
	// (company, position, location, application info, optional date).
	DialectDefault Dialect = "default"
	// DialectJobright is the jobright-ai 5 column layout
	// (company, position, location, work model, date) with the "↳"
	// company-continuation glyph.
	DialectJobright Dialect = "jobright"
)

// Source is the static descriptor of one upstream listing feed.
// Sources are loaded at startup and immutable during a run.
type Source struct {
	Key       string    `yaml:"key"`
	Name      string    `yaml:"name"`
	URL       string    `yaml:"url"`
	Transport Transport `yaml:"transport"`
	Dialect   Dialect   `yaml:"dialect,omitempty"`
	Active    bool      `yaml:"active"`
}

// RoleType returns the role classification applied to every posting from
// this source, inferred from the source name.
func (s *Source) RoleType() RoleType {
	return RoleTypeFromLabel(s.Name)
}

// Validate checks transport/dialect combinations.
// Markdown sources without an explicit dialect fall back to the default layout.
func (s *Source) Validate() error {
	if s.Key == "" {
		return &ValidationError{Field: "key", Message: "source key is required"}
	}
	if s.Name == "" {
		return &ValidationError{Field: "name", Message: "source name is required"}
	}
	if s.URL == "" {
		return &ValidationError{Field: "url", Message: "source url is required"}
	}

	switch s.Transport {
	case TransportJSON:
		if s.Dialect != "" {
			return &ValidationError{Field: "dialect", Message: "dialect is only valid for markdown_table sources"}
		}
	case TransportMarkdown:
		if s.Dialect == "" {
			s.Dialect = DialectDefault
		}
		if s.Dialect != DialectDefault && s.Dialect != DialectJobright {
			return fmt.Errorf("invalid dialect: %s (must be default or jobright)", s.Dialect)
		}
	default:
		return fmt.Errorf("invalid transport: %s (must be json or markdown_table)", s.Transport)
	}

	return nil
}
