package rules

import (
	"strings"

	"github.com/oxhq/stylefx/internal/fixer"
	"github.com/oxhq/stylefx/internal/token"
)

// SingleQuote turns simple double quoted strings into single quoted ones.
// A string qualifies only when both quote styles mean the same thing: no
// escapes, no interpolation and no single quote inside.
type SingleQuote struct{}

func (SingleQuote) Name() string    { return "single_quote" }
func (SingleQuote) Priority() int   { return 0 }
func (SingleQuote) Risky() bool     { return false }
func (SingleQuote) Summary() string { return "Simple strings use single quotes." }

func (SingleQuote) Languages() []string {
	return []string{"php", "python", "javascript", "typescript"}
}

func (SingleQuote) IsCandidate(s *token.Stream) bool {
	return hasKind(s, token.String)
}

func (SingleQuote) Apply(s *token.Stream, _ fixer.Config) (bool, error) {
	changed := false
	for i := 0; i < s.Len(); i++ {
		t := s.At(i)
		if t.Kind != token.String || !convertible(t.Content) {
			continue
		}
		s.SetContent(i, "'"+t.Content[1:len(t.Content)-1]+"'")
		changed = true
	}
	return changed, nil
}

func convertible(lit string) bool {
	if len(lit) < 2 || lit[0] != '"' || lit[len(lit)-1] != '"' || strings.HasPrefix(lit, `"""`) {
		return false
	}
	return !strings.ContainsAny(lit[1:len(lit)-1], "'\\$\"\n")
}
