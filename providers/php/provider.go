package php

import "github.com/oxhq/stylefx/providers/base"

// This package provides PHP language support for stylefx using the base provider.
// All the heavy lifting is done by the base provider with PHP-specific configuration.

// New creates a PHP tokenizer.
func New() *base.Provider {
	return base.New(&Config{})
}
