package rules

import (
	"fmt"
	"strings"

	"github.com/oxhq/stylefx/internal/fixer"
	"github.com/oxhq/stylefx/internal/token"
)

// NoExtraBlankLines collapses consecutive blank lines.
type NoExtraBlankLines struct{}

func (NoExtraBlankLines) Name() string    { return "no_extra_blank_lines" }
func (NoExtraBlankLines) Priority() int   { return -20 }
func (NoExtraBlankLines) Risky() bool     { return false }
func (NoExtraBlankLines) Summary() string { return "At most max consecutive blank lines." }

func (NoExtraBlankLines) IsCandidate(s *token.Stream) bool {
	return hasKind(s, token.Whitespace)
}

func maxBlankLines(cfg fixer.Config) (int, error) {
	n, err := cfg.Int("max", 1)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("max must not be negative, got %d", n)
	}
	return n, nil
}

func (NoExtraBlankLines) ValidateConfig(cfg fixer.Config) error {
	if err := cfg.Only("max"); err != nil {
		return err
	}
	_, err := maxBlankLines(cfg)
	return err
}

func (NoExtraBlankLines) Apply(s *token.Stream, cfg fixer.Config) (bool, error) {
	limit, err := maxBlankLines(cfg)
	if err != nil {
		return false, err
	}

	return rewriteRuns(s, func(r run) string {
		lines := strings.Split(r.content, "\n")
		keep := limit + 1
		if len(lines)-1 <= keep {
			return r.content
		}
		// Keep the text before the first break and the last keep lines,
		// which end with the indentation of the next line.
		return lines[0] + "\n" + strings.Join(lines[len(lines)-keep:], "\n")
	}), nil
}
