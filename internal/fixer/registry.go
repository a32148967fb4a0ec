package fixer

import (
	"cmp"
	"errors"
	"slices"

	"github.com/oxhq/stylefx/internal/model"
	"github.com/oxhq/stylefx/internal/ruleset"
)

// Active is a fixer selected for a run together with its options.
type Active struct {
	Fixer
	Config Config
	// Order is the registration index, used to break priority ties.
	Order int
}

// Policy is the caller's gate on which fixers may run.
type Policy struct {
	AllowRisky bool
}

// Registry holds every known fixer in registration order.
//
// Select sorts by priority, highest first. Fixers of equal priority keep
// the order in which they were passed to NewRegistry, so the active list
// is identical across runs.
type Registry struct {
	fixers []Fixer
	byName map[string]int
}

// NewRegistry records fixers in the given order.
func NewRegistry(fixers ...Fixer) (*Registry, error) {
	r := &Registry{byName: make(map[string]int, len(fixers))}
	for _, f := range fixers {
		name := f.Name()
		if _, exists := r.byName[name]; exists {
			return nil, model.Errorf(model.ErrDuplicateRule, "", "%s", name)
		}
		r.byName[name] = len(r.fixers)
		r.fixers = append(r.fixers, f)
	}
	return r, nil
}

// Names lists fixer names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.fixers))
	for i, f := range r.fixers {
		names[i] = f.Name()
	}
	return names
}

// All returns the fixers in registration order.
func (r *Registry) All() []Fixer {
	return slices.Clone(r.fixers)
}

// Get looks up a fixer by name.
func (r *Registry) Get(name string) (Fixer, bool) {
	i, ok := r.byName[name]
	if !ok {
		return nil, false
	}
	return r.fixers[i], true
}

// Select builds the ordered active list for a resolved rule map.
//
// Every name in resolved must be known, enabled or not. Disabled rules are
// skipped, and risky rules are skipped without error unless the policy
// allows them. All configuration problems are reported together.
func (r *Registry) Select(resolved ruleset.Resolved, policy Policy) ([]Active, error) {
	var (
		active []Active
		errs   []error
	)
	for _, name := range resolved.Names() {
		i, ok := r.byName[name]
		if !ok {
			errs = append(errs, model.Errorf(model.ErrUnknownRule, "", "%s", name))
			continue
		}
		v := resolved[name]
		if !v.Enabled {
			continue
		}
		f := r.fixers[i]
		cfg := Config(v.Options)
		if c, ok := f.(Configurable); ok {
			if err := c.ValidateConfig(cfg); err != nil {
				errs = append(errs, model.Wrap(model.ErrInvalidConfig, "", name, err))
				continue
			}
		}
		if f.Risky() && !policy.AllowRisky {
			continue
		}
		active = append(active, Active{Fixer: f, Config: cfg, Order: i})
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	slices.SortFunc(active, func(a, b Active) int {
		return cmp.Or(
			cmp.Compare(b.Priority(), a.Priority()),
			cmp.Compare(a.Order, b.Order),
		)
	})
	return active, nil
}
