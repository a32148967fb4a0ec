package rules

import (
	"fmt"
	"strings"

	"github.com/oxhq/stylefx/internal/fixer"
	"github.com/oxhq/stylefx/internal/token"
)

// LineEnding makes every line break use the configured sequence.
type LineEnding struct{}

func (LineEnding) Name() string    { return "line_ending" }
func (LineEnding) Priority() int   { return 40 }
func (LineEnding) Risky() bool     { return false }
func (LineEnding) Summary() string { return "All line breaks use the same sequence." }

func (LineEnding) IsCandidate(s *token.Stream) bool {
	return hasKind(s, token.Whitespace, token.Comment)
}

func (LineEnding) ValidateConfig(cfg fixer.Config) error {
	if err := cfg.Only("line_ending"); err != nil {
		return err
	}
	_, err := lineEnding(cfg)
	return err
}

func lineEnding(cfg fixer.Config) (string, error) {
	eol, err := cfg.String("line_ending", "\n")
	if err != nil {
		return "", err
	}
	if eol != "\n" && eol != "\r\n" {
		return "", fmt.Errorf("line_ending must be \"\\n\" or \"\\r\\n\", got %q", eol)
	}
	return eol, nil
}

func (LineEnding) Apply(s *token.Stream, cfg fixer.Config) (bool, error) {
	eol, err := lineEnding(cfg)
	if err != nil {
		return false, err
	}

	changed := rewriteRuns(s, func(r run) string {
		return normalizeEOL(r.content, eol)
	})
	for i := 0; i < s.Len(); i++ {
		t := s.At(i)
		if t.Kind != token.Comment {
			continue
		}
		content := t.Content
		// A line comment may swallow the CR of a CRLF; the break itself
		// lives in the next token.
		if strings.HasSuffix(content, "\r") && i+1 < s.Len() {
			if next := s.At(i + 1).Content; strings.HasPrefix(next, "\n") || strings.HasPrefix(next, "\r\n") {
				content = strings.TrimSuffix(content, "\r")
			}
		}
		if fixed := normalizeEOL(content, eol); fixed != t.Content {
			s.SetContent(i, fixed)
			changed = true
		}
	}
	return changed, nil
}

func normalizeEOL(text, eol string) string {
	if !strings.ContainsAny(text, "\r\n") {
		return text
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	if eol != "\n" {
		text = strings.ReplaceAll(text, "\n", eol)
	}
	return text
}
