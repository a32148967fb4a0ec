package rules

import (
	"strings"

	"github.com/oxhq/stylefx/internal/fixer"
	"github.com/oxhq/stylefx/internal/token"
)

// SingleBlankLineAtEOF makes a file end with exactly one line break.
type SingleBlankLineAtEOF struct{}

func (SingleBlankLineAtEOF) Name() string    { return "single_blank_line_at_eof" }
func (SingleBlankLineAtEOF) Priority() int   { return -50 }
func (SingleBlankLineAtEOF) Risky() bool     { return false }
func (SingleBlankLineAtEOF) Summary() string { return "A file ends with a single line break." }

func (SingleBlankLineAtEOF) IsCandidate(s *token.Stream) bool {
	return s.Len() > 0
}

func (SingleBlankLineAtEOF) Apply(s *token.Stream, _ fixer.Config) (bool, error) {
	tail := run{start: s.Len(), end: s.Len()}
	if all := runs(s); len(all) > 0 && all[len(all)-1].end == s.Len() {
		tail = all[len(all)-1]
	}

	want := detectEOL(s)
	if tail.start > 0 && strings.HasSuffix(s.At(tail.start-1).Content, "\n") {
		// Inline text or a string already ends the last line.
		want = ""
	}
	return setRun(s, tail, want), nil
}
