// Package rules holds the built-in fixers. They are token level and
// language agnostic unless they declare the languages they serve.
package rules

import (
	"github.com/oxhq/stylefx/internal/fixer"
)

// Catalogue lists the built-in fixers in registration order. Fixers of
// equal priority run in this order.
func Catalogue() []fixer.Fixer {
	return []fixer.Fixer{
		IndentationType{},
		LineEnding{},
		NoEmptyComment{},
		LowercaseKeywords{},
		SingleQuote{},
		StrictComparison{},
		NoTrailingWhitespace{},
		NoExtraBlankLines{},
		SingleBlankLineAtEOF{},
	}
}

// NewRegistry returns a registry over Catalogue.
func NewRegistry() *fixer.Registry {
	r, err := fixer.NewRegistry(Catalogue()...)
	if err != nil {
		panic(err)
	}
	return r
}
