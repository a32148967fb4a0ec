// Package fixer defines the capability interface every style rule
// implements and the registry that turns a resolved rule map into the
// ordered list of fixers to run.
package fixer

import (
	"fmt"
	"maps"
	"slices"

	"github.com/oxhq/stylefx/internal/token"
)

// Fixer is one style rule.
//
// Implementations must be stateless: the same Fixer value is applied to
// many streams from many goroutines at once.
type Fixer interface {
	// Name is the rule name used in configuration.
	Name() string
	// Priority orders fixers; higher runs first.
	Priority() int
	// Risky fixers may change behavior of the code and only run when the
	// caller allows it.
	Risky() bool
	// IsCandidate is a cheap check that the stream contains anything the
	// fixer would touch.
	IsCandidate(s *token.Stream) bool
	// Apply edits the stream in place and reports whether it changed it.
	Apply(s *token.Stream, cfg Config) (bool, error)
}

// Configurable fixers validate their options when the active list is built.
type Configurable interface {
	ValidateConfig(cfg Config) error
}

// Described fixers provide a one line summary for listings.
type Described interface {
	Summary() string
}

// Scoped fixers only apply to some languages.
type Scoped interface {
	Languages() []string
}

// Supports reports whether f applies to streams of the given language.
// Unscoped fixers and streams without a language always match.
func Supports(f Fixer, language string) bool {
	scoped, ok := f.(Scoped)
	if !ok || language == "" {
		return true
	}
	return slices.Contains(scoped.Languages(), language)
}

// Summary returns the description of f, or an empty string.
func Summary(f Fixer) string {
	if d, ok := f.(Described); ok {
		return d.Summary()
	}
	return ""
}

// Config holds the options of one enabled rule. A nil Config means the
// rule's defaults.
type Config map[string]any

// String returns the string option key, or def when unset.
func (c Config) String(key, def string) (string, error) {
	v, ok := c[key]
	if !ok {
		return def, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("option %q must be a string, got %T", key, v)
	}
	return s, nil
}

// Int returns the integer option key, or def when unset.
func (c Config) Int(key string, def int) (int, error) {
	v, ok := c[key]
	if !ok {
		return def, nil
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n == float64(int(n)) {
			return int(n), nil
		}
	}
	return 0, fmt.Errorf("option %q must be an integer, got %v", key, v)
}

// Bool returns the boolean option key, or def when unset.
func (c Config) Bool(key string, def bool) (bool, error) {
	v, ok := c[key]
	if !ok {
		return def, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("option %q must be a boolean, got %T", key, v)
	}
	return b, nil
}

// Only returns an error naming the first option outside allowed.
func (c Config) Only(allowed ...string) error {
	for _, key := range slices.Sorted(maps.Keys(c)) {
		if !slices.Contains(allowed, key) {
			return fmt.Errorf("unknown option %q", key)
		}
	}
	return nil
}
