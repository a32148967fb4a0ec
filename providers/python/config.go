package python

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/oxhq/stylefx/internal/token"
)

// Config implements LanguageConfig for Python
type Config struct{}

// Language identifier
func (c *Config) Language() string {
	return "python"
}

// Extensions supported
func (c *Config) Extensions() []string {
	return []string{".py", ".pyw", ".pyi"}
}

// GetLanguage returns tree-sitter language for Python
func (c *Config) GetLanguage() *sitter.Language {
	return python.GetLanguage()
}

// AtomicNodes keeps f-strings and their interpolations in one token.
func (c *Config) AtomicNodes() map[string]token.Kind {
	return map[string]token.Kind{
		"string": token.String,
	}
}

// ClassifyLeaf maps the literal constants.
func (c *Config) ClassifyLeaf(nodeType string, named bool, content string) (token.Kind, bool) {
	switch nodeType {
	case "true", "false", "none":
		return token.Keyword, true
	}
	return 0, false
}
