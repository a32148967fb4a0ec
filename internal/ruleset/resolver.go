package ruleset

import (
	"regexp"
	"slices"
	"strings"
	"sync"

	"github.com/oxhq/stylefx/internal/model"
)

var presetName = regexp.MustCompile(`^@[A-Za-z][A-Za-z0-9_/:.\-]*$`)

// ValidPresetName reports whether name is usable as a preset name.
func ValidPresetName(name string) bool {
	return presetName.MatchString(name)
}

// Resolver expands rule set fragments into a Resolved map.
//
// Presets are registered up front and never change afterwards, so each one
// is flattened at most once and the result is memoised by name. A Resolver
// is safe for concurrent use.
type Resolver struct {
	mu      sync.Mutex
	presets map[string]Fragment
	order   []string
	memo    map[string]Resolved
}

// NewResolver returns a resolver without any presets.
func NewResolver() *Resolver {
	return &Resolver{
		presets: make(map[string]Fragment),
		memo:    make(map[string]Resolved),
	}
}

// Register adds a preset. The definition is copied.
func (r *Resolver) Register(name string, def Fragment) error {
	if !ValidPresetName(name) {
		return model.Errorf(model.ErrInvalidName, "", "%q", name)
	}
	for _, e := range def {
		if e.Name == "" || e.Name == PresetMarker {
			return model.Errorf(model.ErrInvalidConfig, "", "preset %s has an entry without a name", name)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.presets[name]; exists {
		return model.Errorf(model.ErrDuplicateRuleSet, "", "%s", name)
	}
	r.presets[name] = slices.Clone(def)
	r.order = append(r.order, name)
	return nil
}

// Presets lists preset names in registration order.
func (r *Resolver) Presets() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.order)
}

// Definition returns the fragment a preset was registered with.
func (r *Resolver) Definition(name string) (Fragment, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	def, ok := r.presets[name]
	return slices.Clone(def), ok
}

// Expand returns the flat rule map of a single preset.
func (r *Resolver) Expand(name string) (Resolved, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, err := r.expand(name, nil)
	if err != nil {
		return nil, err
	}
	return res.clone(), nil
}

// Resolve folds fragments left to right into one flat rule map.
//
// Inside a fragment, preset references expand first, in order of
// appearance, and plain rule entries are applied on top. A preset set to
// false disables every rule it defines. Across fragments, a later entry for
// a rule fully replaces an earlier one; options are never merged.
func (r *Resolver) Resolve(fragments ...Fragment) (Resolved, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(Resolved)
	for _, frag := range fragments {
		part, err := r.flatten(frag, nil)
		if err != nil {
			return nil, err
		}
		for name, v := range part {
			out[name] = v
		}
	}
	return out, nil
}

func (r *Resolver) expand(name string, stack []string) (Resolved, error) {
	if res, ok := r.memo[name]; ok {
		return res, nil
	}
	if i := slices.Index(stack, name); i >= 0 {
		chain := append(slices.Clone(stack[i:]), name)
		return nil, model.Errorf(model.ErrRuleSetCycle, "", "%s", strings.Join(chain, " -> "))
	}
	def, ok := r.presets[name]
	if !ok {
		return nil, model.Errorf(model.ErrUnknownRuleSet, "", "%s", name)
	}

	res, err := r.flatten(def, append(stack, name))
	if err != nil {
		return nil, err
	}
	r.memo[name] = res
	return res, nil
}

func (r *Resolver) flatten(frag Fragment, stack []string) (Resolved, error) {
	out := make(Resolved)
	for _, e := range frag {
		if !e.IsPreset() {
			continue
		}
		if e.Value.HasOptions() {
			return nil, model.Errorf(model.ErrInvalidConfig, "", "preset %s takes true or false, not options", e.Name)
		}
		sub, err := r.expand(e.Name, stack)
		if err != nil {
			return nil, err
		}
		for name, v := range sub {
			if !e.Value.Enabled {
				v = Disabled()
			}
			out[name] = v
		}
	}
	for _, e := range frag {
		if !e.IsPreset() {
			out[e.Name] = e.Value
		}
	}
	return out, nil
}
