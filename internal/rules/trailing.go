package rules

import (
	"strings"

	"github.com/oxhq/stylefx/internal/fixer"
	"github.com/oxhq/stylefx/internal/token"
)

// NoTrailingWhitespace removes blanks at the end of lines, including those
// at the end of line comments.
type NoTrailingWhitespace struct{}

func (NoTrailingWhitespace) Name() string    { return "no_trailing_whitespace" }
func (NoTrailingWhitespace) Priority() int   { return 0 }
func (NoTrailingWhitespace) Risky() bool     { return false }
func (NoTrailingWhitespace) Summary() string { return "No blanks at the end of any line." }

func (NoTrailingWhitespace) IsCandidate(s *token.Stream) bool {
	return hasKind(s, token.Whitespace, token.Comment)
}

func (NoTrailingWhitespace) Apply(s *token.Stream, _ fixer.Config) (bool, error) {
	changed := false
	for i := 0; i < s.Len(); i++ {
		t := s.At(i)
		if t.Kind != token.Comment || !isLineComment(t.Content) || !endsLine(s, i) {
			continue
		}
		if trimmed := trimLine(t.Content); trimmed != t.Content {
			s.SetContent(i, trimmed)
			changed = true
		}
	}

	if rewriteRuns(s, func(r run) string {
		lines := strings.Split(r.content, "\n")
		last := len(lines) - 1
		for j := range last {
			lines[j] = trimLine(lines[j])
		}
		if r.end == s.Len() {
			lines[last] = trimLine(lines[last])
		}
		return strings.Join(lines, "\n")
	}) {
		changed = true
	}
	return changed, nil
}

// endsLine reports whether token i is followed by a line break or the end
// of the stream, with nothing but blanks in between.
func endsLine(s *token.Stream, i int) bool {
	for j := i + 1; j < s.Len(); j++ {
		t := s.At(j)
		if t.Kind != token.Whitespace {
			return false
		}
		if rest := strings.TrimLeft(t.Content, " \t\f\v\r"); rest != "" {
			return strings.HasPrefix(rest, "\n")
		}
	}
	return true
}

func isLineComment(content string) bool {
	return (strings.HasPrefix(content, "//") || strings.HasPrefix(content, "#")) &&
		!strings.Contains(strings.TrimSuffix(content, "\r"), "\n")
}
