package rules

import (
	"github.com/oxhq/stylefx/internal/fixer"
	"github.com/oxhq/stylefx/internal/token"
)

var strictOperators = map[string]string{
	"==": "===",
	"!=": "!==",
	"<>": "!==",
}

// StrictComparison replaces loose equality operators with strict ones. It
// is risky: loose and strict comparison differ for mixed types.
type StrictComparison struct{}

func (StrictComparison) Name() string    { return "strict_comparison" }
func (StrictComparison) Priority() int   { return 0 }
func (StrictComparison) Risky() bool     { return true }
func (StrictComparison) Summary() string { return "Comparisons are strict." }

func (StrictComparison) Languages() []string {
	return []string{"php", "javascript", "typescript"}
}

func (StrictComparison) IsCandidate(s *token.Stream) bool {
	return hasKind(s, token.Punctuation)
}

func (StrictComparison) Apply(s *token.Stream, _ fixer.Config) (bool, error) {
	changed := false
	for i := 0; i < s.Len(); i++ {
		t := s.At(i)
		if t.Kind != token.Punctuation {
			continue
		}
		if strict, ok := strictOperators[t.Content]; ok {
			s.SetContent(i, strict)
			changed = true
		}
	}
	return changed, nil
}
