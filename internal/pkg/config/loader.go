// Package config holds the environment loaders, validators, and
// configuration metrics shared by the api and worker entrypoints. Loaders
// follow a warn-and-fallback contract: a malformed value never stops the
// process, it is replaced by the default and surfaced as a warning.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// ConfigLoadResult is the outcome of loading one configuration value.
// When FallbackApplied is true, Value holds the default and Warnings
// carries one message per problem found.
type ConfigLoadResult struct {
	Value           interface{}
	Warnings        []string
	FallbackApplied bool
}

func loaded(v interface{}) ConfigLoadResult {
	return ConfigLoadResult{Value: v}
}

func fellBack(envKey, raw string, cause error, def interface{}) ConfigLoadResult {
	warning := fmt.Sprintf("Invalid %s='%s': %v, falling back to default '%v'",
		envKey, raw, cause, def)
	return ConfigLoadResult{
		Value:           def,
		Warnings:        []string{warning},
		FallbackApplied: true,
	}
}

// LoadEnvString returns the value of envKey, or def when the variable is
// unset or empty. No validation is applied.
func LoadEnvString(envKey, def string) string {
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	return def
}

// LoadEnvWithFallback reads envKey as a string and checks it with validate
// (nil skips the check). A value that fails validation falls back to def
// with a warning; an unset variable yields def silently.
func LoadEnvWithFallback(envKey, def string, validate func(string) error) ConfigLoadResult {
	raw := os.Getenv(envKey)
	if raw == "" {
		return loaded(def)
	}
	if validate != nil {
		if err := validate(raw); err != nil {
			return fellBack(envKey, raw, err, def)
		}
	}
	return loaded(raw)
}

// LoadEnvDuration reads envKey as a Go duration string such as "90s" or
// "30m". Parse and validation failures fall back to def with a warning.
func LoadEnvDuration(envKey string, def time.Duration, validate func(time.Duration) error) ConfigLoadResult {
	raw := os.Getenv(envKey)
	if raw == "" {
		return loaded(def)
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fellBack(envKey, raw, err, def)
	}
	if validate != nil {
		if err := validate(d); err != nil {
			return fellBack(envKey, raw, err, def)
		}
	}
	return loaded(d)
}

// LoadEnvInt reads envKey as a decimal integer. Parse and validation
// failures fall back to def with a warning.
func LoadEnvInt(envKey string, def int, validate func(int) error) ConfigLoadResult {
	raw := os.Getenv(envKey)
	if raw == "" {
		return loaded(def)
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fellBack(envKey, raw, fmt.Errorf("invalid integer format"), def)
	}
	if validate != nil {
		if err := validate(n); err != nil {
			return fellBack(envKey, raw, err, def)
		}
	}
	return loaded(n)
}
