package ruleset

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// PresetMarker prefixes preset references in a fragment.
const PresetMarker = "@"

// Value is the requested state of one rule: disabled, enabled with default
// options, or enabled with explicit options.
type Value struct {
	Enabled bool
	Options map[string]any
}

// Disabled turns a rule off.
func Disabled() Value { return Value{} }

// Enabled turns a rule on with its default options.
func Enabled() Value { return Value{Enabled: true} }

// WithOptions turns a rule on with explicit options.
func WithOptions(options map[string]any) Value {
	return Value{Enabled: true, Options: options}
}

// HasOptions reports whether explicit options were given.
func (v Value) HasOptions() bool {
	return len(v.Options) > 0
}

// MarshalJSON encodes the value the way it is written in configuration:
// true, false or an options object.
func (v Value) MarshalJSON() ([]byte, error) {
	switch {
	case !v.Enabled:
		return []byte("false"), nil
	case !v.HasOptions():
		return []byte("true"), nil
	}
	return json.Marshal(v.Options)
}

func (v Value) String() string {
	data, err := v.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("%v", v.Options)
	}
	return string(data)
}

// Entry is one key of a rule set: a rule name or a preset reference.
type Entry struct {
	Name  string
	Value Value
}

// IsPreset reports whether the entry references a preset.
func (e Entry) IsPreset() bool {
	return IsPreset(e.Name)
}

// IsPreset reports whether name is a preset reference.
func IsPreset(name string) bool {
	return strings.HasPrefix(name, PresetMarker)
}

// Fragment is an unresolved rule set. Entry order is the order of the
// configuration source.
type Fragment []Entry

// Set appends an entry and returns the fragment, for building literals.
func (f Fragment) Set(name string, v Value) Fragment {
	return append(f, Entry{Name: name, Value: v})
}

// Resolved maps concrete rule names to their final state. It never holds
// preset references.
type Resolved map[string]Value

// Names returns every rule name, sorted.
func (r Resolved) Names() []string {
	return slices.Sorted(maps.Keys(r))
}

// EnabledNames returns the names of enabled rules, sorted.
func (r Resolved) EnabledNames() []string {
	var names []string
	for _, name := range r.Names() {
		if r[name].Enabled {
			names = append(names, name)
		}
	}
	return names
}

// Fingerprint is a stable sha256 over the canonical JSON form of the map.
// Equal maps always share a fingerprint.
func (r Resolved) Fingerprint() string {
	data, err := json.Marshal(r)
	if err != nil {
		data = fmt.Appendf(nil, "%v", map[string]Value(r))
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func (r Resolved) clone() Resolved {
	out := make(Resolved, len(r))
	maps.Copy(out, r)
	return out
}
