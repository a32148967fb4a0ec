package golang

import "github.com/oxhq/stylefx/providers/base"

// New creates a Go tokenizer.
func New() *base.Provider {
	return base.New(&Config{})
}
