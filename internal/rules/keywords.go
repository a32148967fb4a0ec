package rules

import (
	"strings"

	"github.com/oxhq/stylefx/internal/fixer"
	"github.com/oxhq/stylefx/internal/token"
)

// LowercaseKeywords writes keywords and the true, false and null constants
// in lower case. Only languages with case-insensitive keywords qualify.
type LowercaseKeywords struct{}

func (LowercaseKeywords) Name() string        { return "lowercase_keywords" }
func (LowercaseKeywords) Priority() int       { return 0 }
func (LowercaseKeywords) Risky() bool         { return false }
func (LowercaseKeywords) Languages() []string { return []string{"php"} }
func (LowercaseKeywords) Summary() string     { return "Keywords are written in lower case." }

func (LowercaseKeywords) IsCandidate(s *token.Stream) bool {
	return hasKind(s, token.Keyword)
}

func (LowercaseKeywords) Apply(s *token.Stream, _ fixer.Config) (bool, error) {
	changed := false
	for i := 0; i < s.Len(); i++ {
		t := s.At(i)
		if t.Kind != token.Keyword {
			continue
		}
		if lower := strings.ToLower(t.Content); lower != t.Content {
			s.SetContent(i, lower)
			changed = true
		}
	}
	return changed, nil
}
