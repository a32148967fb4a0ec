package javascript

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"

	"github.com/oxhq/stylefx/internal/token"
)

// Config implements LanguageConfig for JavaScript
type Config struct{}

// Language identifier
func (c *Config) Language() string {
	return "javascript"
}

// Extensions supported
func (c *Config) Extensions() []string {
	return []string{".js", ".jsx", ".mjs", ".cjs"}
}

// GetLanguage returns tree-sitter language for JavaScript
func (c *Config) GetLanguage() *sitter.Language {
	return javascript.GetLanguage()
}

// AtomicNodes returns literal node types that must not be split.
func (c *Config) AtomicNodes() map[string]token.Kind {
	return atomicNodes()
}

// ClassifyLeaf defers to the generic classification except for JSX text.
func (c *Config) ClassifyLeaf(nodeType string, named bool, content string) (token.Kind, bool) {
	if nodeType == "jsx_text" {
		return token.Text, true
	}
	return 0, false
}

func atomicNodes() map[string]token.Kind {
	return map[string]token.Kind{
		"string":          token.String,
		"template_string": token.String,
		"regex":           token.String,
	}
}
