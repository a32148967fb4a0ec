package engine

import (
	"context"
	"errors"
	"maps"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oxhq/stylefx/core"
	"github.com/oxhq/stylefx/internal/fixer"
	"github.com/oxhq/stylefx/internal/model"
	"github.com/oxhq/stylefx/internal/token"
	"github.com/oxhq/stylefx/providers/catalog"
)

// funcFixer is a fixer built from closures.
type funcFixer struct {
	name      string
	priority  int
	languages []string
	candidate func(*token.Stream) bool
	apply     func(*token.Stream) (bool, error)
}

func (f funcFixer) Name() string  { return f.name }
func (f funcFixer) Priority() int { return f.priority }
func (f funcFixer) Risky() bool   { return false }

func (f funcFixer) IsCandidate(s *token.Stream) bool {
	return f.candidate == nil || f.candidate(s)
}

func (f funcFixer) Apply(s *token.Stream, _ fixer.Config) (bool, error) {
	return f.apply(s)
}

// scopedFixer restricts a funcFixer to some languages.
type scopedFixer struct{ funcFixer }

func (f scopedFixer) Languages() []string { return f.languages }

func active(fixers ...fixer.Fixer) []fixer.Active {
	out := make([]fixer.Active, len(fixers))
	for i, f := range fixers {
		out[i] = fixer.Active{Fixer: f, Order: i}
	}
	return out
}

// upper uppercases identifiers.
func upper() funcFixer {
	return funcFixer{name: "upper", apply: func(s *token.Stream) (bool, error) {
		changed := false
		for i := 0; i < s.Len(); i++ {
			t := s.At(i)
			if t.Kind == token.Identifier && t.Content != strings.ToUpper(t.Content) {
				s.SetContent(i, strings.ToUpper(t.Content))
				changed = true
			}
		}
		return changed, nil
	}}
}

// retype turns every token of kind from into kind to.
func retype(name string, from, to token.Kind) funcFixer {
	return funcFixer{name: name, apply: func(s *token.Stream) (bool, error) {
		changed := false
		for i := 0; i < s.Len(); i++ {
			if t := s.At(i); t.Kind == from {
				s.ReplaceAt(i, token.New(to, t.Content))
				changed = true
			}
		}
		return changed, nil
	}}
}

// wordTokenizer splits source into whitespace and word tokens. Source
// containing "!!" is rejected.
type wordTokenizer struct {
	calls atomic.Int64
}

func (*wordTokenizer) Language() string     { return "words" }
func (*wordTokenizer) Extensions() []string { return []string{".txt"} }

func (w *wordTokenizer) Tokenize(_ context.Context, source []byte) (*token.Stream, error) {
	w.calls.Add(1)
	src := string(source)
	if strings.Contains(src, "!!") {
		return nil, model.Wrap(model.ErrUnparsableSource, "", "words syntax error", nil)
	}

	var toks []token.Token
	for src != "" {
		blank := token.IsBlank(src[:1])
		n := 1
		for n < len(src) && token.IsBlank(src[n:n+1]) == blank {
			n++
		}
		kind := token.Identifier
		if blank {
			kind = token.Whitespace
		}
		toks = append(toks, token.New(kind, src[:n]))
		src = src[n:]
	}
	s := token.NewStream(toks)
	s.SetLanguage("words")
	return s, nil
}

func newWordCatalog(t *testing.T) (*catalog.Catalog, *wordTokenizer) {
	t.Helper()
	tok := &wordTokenizer{}
	c := catalog.New()
	require.NoError(t, c.Register(tok))
	return c, tok
}

// memFS is an in-memory file system acting as reader and writer.
type memFS struct {
	mu     sync.Mutex
	files  map[string]string
	writes []string
}

func newMemFS(files map[string]string) *memFS {
	return &memFS{files: maps.Clone(files)}
}

func (m *memFS) ReadFile(path string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	content, ok := m.files[path]
	if !ok {
		return nil, os.ErrNotExist
	}
	return []byte(content), nil
}

func (m *memFS) WriteFileIfUnchanged(path string, content []byte, _ core.FileStamp) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if strings.Contains(path, "readonly") {
		return errors.New("permission denied")
	}
	m.files[path] = string(content)
	m.writes = append(m.writes, path)
	return nil
}

func (m *memFS) get(path string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.files[path]
}

func (m *memFS) written() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.writes...)
}
