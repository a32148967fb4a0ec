package rules

import (
	"fmt"
	"strings"

	"github.com/oxhq/stylefx/internal/fixer"
	"github.com/oxhq/stylefx/internal/token"
)

// IndentationType converts leading indentation to spaces or tabs.
// Alignment that is not a whole indent level is kept as spaces.
type IndentationType struct{}

func (IndentationType) Name() string    { return "indentation_type" }
func (IndentationType) Priority() int   { return 50 }
func (IndentationType) Risky() bool     { return false }
func (IndentationType) Summary() string { return "Code is indented with spaces or tabs, not a mix." }

func (IndentationType) IsCandidate(s *token.Stream) bool {
	return hasKind(s, token.Whitespace)
}

type indentStyle struct {
	tabs  bool
	width int
}

func indentOptions(cfg fixer.Config) (indentStyle, error) {
	kind, err := cfg.String("indent", "spaces")
	if err != nil {
		return indentStyle{}, err
	}
	width, err := cfg.Int("width", 4)
	if err != nil {
		return indentStyle{}, err
	}
	if kind != "spaces" && kind != "tabs" {
		return indentStyle{}, fmt.Errorf("indent must be \"spaces\" or \"tabs\", got %q", kind)
	}
	if width < 1 || width > 16 {
		return indentStyle{}, fmt.Errorf("width must be between 1 and 16, got %d", width)
	}
	return indentStyle{tabs: kind == "tabs", width: width}, nil
}

func (IndentationType) ValidateConfig(cfg fixer.Config) error {
	if err := cfg.Only("indent", "width"); err != nil {
		return err
	}
	_, err := indentOptions(cfg)
	return err
}

func (IndentationType) Apply(s *token.Stream, cfg fixer.Config) (bool, error) {
	style, err := indentOptions(cfg)
	if err != nil {
		return false, err
	}

	return rewriteRuns(s, func(r run) string {
		// Only the part after the last break indents a line; a run at the
		// very start indents the first line. Runs at the end indent nothing.
		if r.end == s.Len() {
			return r.content
		}
		cut := strings.LastIndexByte(r.content, '\n') + 1
		if cut == 0 && r.start != 0 {
			return r.content
		}
		return r.content[:cut] + style.convert(r.content[cut:])
	}), nil
}

// convert rewrites one indentation prefix.
func (st indentStyle) convert(indent string) string {
	if !strings.Contains(indent, "\t") && (!st.tabs || len(indent) < st.width) {
		return indent
	}

	columns := 0
	for _, r := range indent {
		if r == '\t' {
			columns += st.width - columns%st.width
		} else {
			columns++
		}
	}
	if !st.tabs {
		return strings.Repeat(" ", columns)
	}
	return strings.Repeat("\t", columns/st.width) + strings.Repeat(" ", columns%st.width)
}
