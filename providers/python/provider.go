package python

import "github.com/oxhq/stylefx/providers/base"

// This package provides Python language support for stylefx using the base provider.
// All the heavy lifting is done by the base provider with Python-specific configuration.

// New creates a Python tokenizer.
func New() *base.Provider {
	return base.New(&Config{})
}
