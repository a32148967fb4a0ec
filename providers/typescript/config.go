package typescript

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/oxhq/stylefx/internal/token"
)

// Config implements LanguageConfig for TypeScript
type Config struct{}

// Language identifier
func (c *Config) Language() string {
	return "typescript"
}

// Extensions supported. TSX needs its own grammar and is not handled.
func (c *Config) Extensions() []string {
	return []string{".ts", ".mts", ".cts"}
}

// GetLanguage returns tree-sitter language for TypeScript
func (c *Config) GetLanguage() *sitter.Language {
	return typescript.GetLanguage()
}

// AtomicNodes returns literal node types that must not be split.
func (c *Config) AtomicNodes() map[string]token.Kind {
	return map[string]token.Kind{
		"string":          token.String,
		"template_string": token.String,
		"regex":           token.String,
	}
}

// ClassifyLeaf maps predefined types (string, number, ...) to keywords.
func (c *Config) ClassifyLeaf(nodeType string, named bool, content string) (token.Kind, bool) {
	if nodeType == "predefined_type" {
		return token.Keyword, true
	}
	return 0, false
}
