package rules

import (
	"strings"

	"github.com/oxhq/stylefx/internal/fixer"
	"github.com/oxhq/stylefx/internal/token"
)

// NoEmptyComment removes comments without any text. A comment alone on its
// line takes the line with it.
type NoEmptyComment struct{}

func (NoEmptyComment) Name() string    { return "no_empty_comment" }
func (NoEmptyComment) Priority() int   { return 2 }
func (NoEmptyComment) Risky() bool     { return false }
func (NoEmptyComment) Summary() string { return "There are no empty comments." }

func (NoEmptyComment) IsCandidate(s *token.Stream) bool {
	return hasKind(s, token.Comment)
}

func (NoEmptyComment) Apply(s *token.Stream, _ fixer.Config) (bool, error) {
	changed := false
	for i := s.Len() - 1; i >= 0; i-- {
		t := s.At(i)
		if t.Kind != token.Comment || !isEmptyComment(t.Content) {
			continue
		}
		i = removeComment(s, i)
		changed = true
	}
	return changed, nil
}

func isEmptyComment(content string) bool {
	body := strings.TrimSuffix(content, "\r")
	switch {
	case strings.HasPrefix(body, "/*") && strings.HasSuffix(body, "*/") && len(body) >= 4:
		body = body[2 : len(body)-2]
	case strings.HasPrefix(body, "//"):
		body = body[2:]
	case strings.HasPrefix(body, "#") && !strings.HasPrefix(body, "#!"):
		body = body[1:]
	default:
		return false
	}
	return strings.TrimSpace(body) == ""
}

// removeComment drops the comment at i and merges the whitespace around it
// into one run. It returns the index where the run starts.
func removeComment(s *token.Stream, i int) int {
	start := i
	for start > 0 && s.At(start-1).Kind == token.Whitespace {
		start--
	}
	end := i + 1
	for end < s.Len() && s.At(end).Kind == token.Whitespace {
		end++
	}

	var before, after strings.Builder
	for j := start; j < i; j++ {
		before.WriteString(s.At(j).Content)
	}
	for j := i + 1; j < end; j++ {
		after.WriteString(s.At(j).Content)
	}
	pre, post := before.String(), after.String()

	var joined string
	ownLine := start == 0 || strings.Contains(pre, "\n")
	switch {
	case ownLine && (end == s.Len() || strings.HasPrefix(strings.TrimLeft(post, " \t\r"), "\n")):
		// Drop the indentation before the comment and the break after it.
		pre = pre[:strings.LastIndexByte(pre, '\n')+1]
		post = post[strings.IndexByte(post, '\n')+1:]
		if start == 0 {
			pre = ""
		}
		joined = pre + post
	case pre == "" && post == "" && start > 0 && end < s.Len() && glues(s.At(start-1), s.At(end)):
		joined = " "
	default:
		joined = strings.TrimRight(pre, " \t") + post
	}

	s.RemoveRange(start, end)
	if joined != "" {
		s.InsertAt(start, token.New(token.Whitespace, joined))
	}
	return start
}

// glues reports whether two tokens would merge into one word if nothing
// separated them.
func glues(a, b token.Token) bool {
	word := func(t token.Token) bool {
		return t.IsGivenKind(token.Identifier, token.Keyword, token.Numeric)
	}
	return word(a) && word(b)
}
