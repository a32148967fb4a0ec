package golang

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"

	"github.com/oxhq/stylefx/internal/token"
)

// Config implements LanguageConfig for Go
type Config struct{}

// Language identifier
func (c *Config) Language() string {
	return "go"
}

// Extensions supported
func (c *Config) Extensions() []string {
	return []string{".go"}
}

// GetLanguage returns tree-sitter language for Go
func (c *Config) GetLanguage() *sitter.Language {
	return golang.GetLanguage()
}

// AtomicNodes keeps literals with escape sequences in one piece.
func (c *Config) AtomicNodes() map[string]token.Kind {
	return map[string]token.Kind{
		"interpreted_string_literal": token.String,
		"raw_string_literal":         token.String,
		"rune_literal":               token.String,
	}
}

// ClassifyLeaf handles the newline terminator, which the grammar exposes
// as an anonymous node.
func (c *Config) ClassifyLeaf(nodeType string, named bool, content string) (token.Kind, bool) {
	if !named && nodeType == "\n" {
		return token.Whitespace, true
	}
	return 0, false
}
