package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/oxhq/stylefx/internal/token"
)

// Tokenizer turns source text of one language into a token stream.
type Tokenizer interface {
	Language() string
	Extensions() []string
	Tokenize(ctx context.Context, source []byte) (*token.Stream, error)
}

// LanguageInfo captures metadata about a registered tokenizer.
type LanguageInfo struct {
	ID         string
	Extensions []string
}

// Catalog maps languages and file extensions to tokenizers. It is built once
// per run and then only read.
type Catalog struct {
	mu     sync.RWMutex
	byLang map[string]Tokenizer
	byExt  map[string]Tokenizer
}

// New creates an empty catalog.
func New() *Catalog {
	return &Catalog{
		byLang: make(map[string]Tokenizer),
		byExt:  make(map[string]Tokenizer),
	}
}

// Register adds a tokenizer. Language IDs and extensions must be unique.
func (c *Catalog) Register(t Tokenizer) error {
	id := strings.ToLower(t.Language())
	if id == "" {
		return fmt.Errorf("tokenizer must have a non-empty language name")
	}
	exts := uniqueExtensions(t.Extensions())

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.byLang[id]; exists {
		return fmt.Errorf("tokenizer for language '%s' already registered", id)
	}
	for _, ext := range exts {
		if other, exists := c.byExt[ext]; exists {
			return fmt.Errorf("extension '%s' already mapped to '%s'", ext, other.Language())
		}
	}

	c.byLang[id] = t
	for _, ext := range exts {
		c.byExt[ext] = t
	}
	return nil
}

// Get returns the tokenizer for a language ID.
func (c *Catalog) Get(language string) (Tokenizer, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.byLang[strings.ToLower(language)]
	return t, ok
}

// LookupByExtension returns the tokenizer associated with a file extension.
func (c *Catalog) LookupByExtension(ext string) (Tokenizer, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.byExt[normalizeExtension(ext)]
	return t, ok
}

// ForPath picks the tokenizer for a file path by its extension.
func (c *Catalog) ForPath(path string) (Tokenizer, bool) {
	return c.LookupByExtension(filepath.Ext(path))
}

// LanguageFor returns the language ID that handles path.
func (c *Catalog) LanguageFor(path string) (string, bool) {
	t, ok := c.ForPath(path)
	if !ok {
		return "", false
	}
	return strings.ToLower(t.Language()), true
}

// Supports reports whether any tokenizer handles path.
func (c *Catalog) Supports(path string) bool {
	_, ok := c.ForPath(path)
	return ok
}

// Languages returns all registered languages sorted by ID.
func (c *Catalog) Languages() []LanguageInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()

	infos := make([]LanguageInfo, 0, len(c.byLang))
	for id, t := range c.byLang {
		infos = append(infos, LanguageInfo{ID: id, Extensions: uniqueExtensions(t.Extensions())})
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].ID < infos[j].ID
	})
	return infos
}

func normalizeExtension(ext string) string {
	normalized := strings.ToLower(strings.TrimSpace(ext))
	if normalized != "" && !strings.HasPrefix(normalized, ".") {
		normalized = "." + normalized
	}
	return normalized
}

func uniqueExtensions(exts []string) []string {
	seen := make(map[string]struct{})
	result := make([]string, 0, len(exts))
	for _, ext := range exts {
		normalized := normalizeExtension(ext)
		if normalized == "" {
			continue
		}
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		result = append(result, normalized)
	}
	return result
}
