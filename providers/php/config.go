package php

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/php"

	"github.com/oxhq/stylefx/internal/token"
)

// Config implements LanguageConfig for PHP
type Config struct{}

// Language identifier
func (c *Config) Language() string {
	return "php"
}

// Extensions supported
func (c *Config) Extensions() []string {
	return []string{".php", ".phtml", ".php4", ".php5", ".phps"}
}

// GetLanguage returns tree-sitter language for PHP
func (c *Config) GetLanguage() *sitter.Language {
	return php.GetLanguage()
}

// AtomicNodes keeps variables and every string flavour in one token.
func (c *Config) AtomicNodes() map[string]token.Kind {
	return map[string]token.Kind{
		"variable_name":   token.Identifier,
		"string":          token.String,
		"encapsed_string": token.String,
		"heredoc":         token.String,
		"nowdoc":          token.String,
		"shell_command":   token.String,
		"php_tag":         token.Text,
		"text":            token.Text,
	}
}

// ClassifyLeaf maps PHP constants spelled as keywords (true, NULL, ...).
func (c *Config) ClassifyLeaf(nodeType string, named bool, content string) (token.Kind, bool) {
	switch nodeType {
	case "boolean", "null":
		return token.Keyword, true
	case "?>":
		return token.Text, true
	}
	return 0, false
}
