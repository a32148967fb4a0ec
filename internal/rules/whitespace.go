package rules

import (
	"strings"

	"github.com/oxhq/stylefx/internal/token"
)

// run is a maximal sequence of whitespace tokens [start, end).
type run struct {
	start, end int
	content    string
}

// runs returns the whitespace runs of s in order.
func runs(s *token.Stream) []run {
	var out []run
	for i := 0; i < s.Len(); {
		if s.At(i).Kind != token.Whitespace {
			i++
			continue
		}
		r := run{start: i}
		var b strings.Builder
		for i < s.Len() && s.At(i).Kind == token.Whitespace {
			b.WriteString(s.At(i).Content)
			i++
		}
		r.end = i
		r.content = b.String()
		out = append(out, r)
	}
	return out
}

// rewriteRuns calls fn for every run, last to first so earlier indices stay
// valid, and writes back the runs whose content changed.
func rewriteRuns(s *token.Stream, fn func(r run) string) bool {
	all := runs(s)
	changed := false
	for i := len(all) - 1; i >= 0; i-- {
		if setRun(s, all[i], fn(all[i])) {
			changed = true
		}
	}
	return changed
}

// setRun replaces a run with a single whitespace token, or removes it when
// content is empty.
func setRun(s *token.Stream, r run, content string) bool {
	if content == r.content {
		return false
	}
	if r.end-r.start == 1 && content != "" {
		s.SetContent(r.start, content)
		return true
	}
	s.RemoveRange(r.start, r.end)
	if content != "" {
		s.InsertAt(r.start, token.New(token.Whitespace, content))
	}
	return true
}

func hasKind(s *token.Stream, kinds ...token.Kind) bool {
	_, ok := s.NextOfKind(-1, kinds...)
	return ok
}

// trimLine strips trailing blanks from one line, keeping a carriage return
// that belongs to a CRLF.
func trimLine(line string) string {
	cr := strings.HasSuffix(line, "\r")
	line = strings.TrimRight(strings.TrimSuffix(line, "\r"), " \t\f\v")
	if cr {
		line += "\r"
	}
	return line
}

// detectEOL returns the first line ending used by s, "\n" by default.
func detectEOL(s *token.Stream) string {
	for i := 0; i < s.Len(); i++ {
		t := s.At(i)
		if t.Kind != token.Whitespace {
			continue
		}
		if j := strings.IndexByte(t.Content, '\n'); j >= 0 {
			if j > 0 && t.Content[j-1] == '\r' ||
				j == 0 && i > 0 && strings.HasSuffix(s.At(i-1).Content, "\r") {
				return "\r\n"
			}
			return "\n"
		}
	}
	return "\n"
}
