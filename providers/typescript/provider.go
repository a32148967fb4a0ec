package typescript

import "github.com/oxhq/stylefx/providers/base"

// This package provides TypeScript language support for stylefx using the base provider.
// All the heavy lifting is done by the base provider with TypeScript-specific configuration.

// New creates a TypeScript tokenizer.
func New() *base.Provider {
	return base.New(&Config{})
}
