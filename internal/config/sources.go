// Package config loads the source registry: the static list of upstream
// listing feeds a run ingests. The registry ships with embedded defaults and
// can be overridden with a YAML file via SOURCES_PATH.
package config

import (
	"context"
	_ "embed"
	"fmt"
	"os"

	"engjobs/internal/domain/entity"

	"gopkg.in/yaml.v3"
)

//go:embed sources.yaml
var defaultSources []byte

// sourcesFile is the on-disk YAML shape of the registry.
type sourcesFile struct {
	Sources []*entity.Source `yaml:"sources"`
}

// Registry holds the configured sources for the lifetime of the process.
// It is immutable after loading and safe for concurrent reads.
type Registry struct {
	sources []*entity.Source
}

// LoadSources builds a Registry from the YAML file at path. An empty path
// loads the embedded default registry.
func LoadSources(path string) (*Registry, error) {
	data := defaultSources
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read sources file: %w", err)
		}
		data = b
	}
	return parseSources(data)
}

func parseSources(data []byte) (*Registry, error) {
	var file sourcesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse sources yaml: %w", err)
	}
	if len(file.Sources) == 0 {
		return nil, fmt.Errorf("sources file defines no sources")
	}

	seen := make(map[string]bool, len(file.Sources))
	for _, src := range file.Sources {
		if err := src.Validate(); err != nil {
			return nil, fmt.Errorf("source %q: %w", src.Key, err)
		}
		if seen[src.Key] {
			return nil, fmt.Errorf("duplicate source key %q", src.Key)
		}
		seen[src.Key] = true
	}

	return &Registry{sources: file.Sources}, nil
}

// All returns every configured source, active or not.
func (r *Registry) All() []*entity.Source {
	return r.sources
}

// Active returns the sources enabled for ingestion. It implements
// ingest.SourceCatalog.
func (r *Registry) Active(ctx context.Context) ([]*entity.Source, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	active := make([]*entity.Source, 0, len(r.sources))
	for _, src := range r.sources {
		if src.Active {
			active = append(active, src)
		}
	}
	return active, nil
}
