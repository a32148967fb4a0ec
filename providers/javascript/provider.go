package javascript

import "github.com/oxhq/stylefx/providers/base"

// New creates a JavaScript tokenizer.
func New() *base.Provider {
	return base.New(&Config{})
}
