package base

import (
	"context"
	"sync"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/stylefx/internal/model"
	"github.com/oxhq/stylefx/internal/token"
)

// mockConfig implements LanguageConfig for testing
type mockConfig struct {
	language   string
	extensions []string
}

func (m *mockConfig) Language() string {
	return m.language
}

func (m *mockConfig) Extensions() []string {
	return m.extensions
}

func (m *mockConfig) GetLanguage() *sitter.Language {
	return golang.GetLanguage()
}

func (m *mockConfig) AtomicNodes() map[string]token.Kind {
	return map[string]token.Kind{
		"interpreted_string_literal": token.String,
	}
}

func (m *mockConfig) ClassifyLeaf(nodeType string, named bool, content string) (token.Kind, bool) {
	return 0, false
}

func newTestProvider() *Provider {
	config := &mockConfig{
		language:   "go",
		extensions: []string{".go"},
	}
	return New(config)
}

const goSource = `package main

import "fmt"

func main() {
	s := "{not a block}"
	fmt.Println(s, 42)
}
`

func findToken(t *testing.T, s *token.Stream, content string) token.Token {
	t.Helper()
	for _, tok := range s.Tokens() {
		if tok.Content == content {
			return tok
		}
	}
	t.Fatalf("token %q not found", content)
	return token.Token{}
}

func TestProviderMetadata(t *testing.T) {
	p := newTestProvider()
	assert.Equal(t, "go", p.Language())
	assert.Equal(t, []string{".go"}, p.Extensions())
}

func TestTokenizeRoundTrip(t *testing.T) {
	p := newTestProvider()

	stream, err := p.Tokenize(context.Background(), []byte(goSource))
	require.NoError(t, err)
	assert.Equal(t, goSource, stream.Render())
	assert.False(t, stream.Changed())
	assert.Equal(t, "go", stream.Language())
}

func TestTokenizeKinds(t *testing.T) {
	p := newTestProvider()

	stream, err := p.Tokenize(context.Background(), []byte(goSource))
	require.NoError(t, err)

	assert.Equal(t, token.Keyword, findToken(t, stream, "package").Kind)
	assert.Equal(t, token.Keyword, findToken(t, stream, "func").Kind)
	assert.Equal(t, token.Identifier, findToken(t, stream, "Println").Kind)
	assert.Equal(t, token.String, findToken(t, stream, `"{not a block}"`).Kind)
	assert.Equal(t, token.Numeric, findToken(t, stream, "42").Kind)
	assert.Equal(t, token.OpenBrace, findToken(t, stream, "{").Kind)
	assert.Equal(t, token.Punctuation, findToken(t, stream, ":=").Kind)

	main := findToken(t, stream, "func")
	assert.Equal(t, 5, main.Line)
	assert.Equal(t, 1, main.Column)
}

func TestTokenizeBlocksIgnoreStrings(t *testing.T) {
	p := newTestProvider()

	stream, err := p.Tokenize(context.Background(), []byte(goSource))
	require.NoError(t, err)
	assert.True(t, stream.Balanced())

	open, ok := stream.NextOfKind(-1, token.OpenBrace)
	require.True(t, ok)
	end, err := stream.FindBlockEnd(open)
	require.NoError(t, err)
	assert.Equal(t, "}", stream.At(end).Content)
	assert.Equal(t, 8, stream.At(end).Line)
}

func TestTokenizeSyntaxError(t *testing.T) {
	p := newTestProvider()

	_, err := p.Tokenize(context.Background(), []byte("package main\n\nfunc main( {\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrUnparsableSource)
	assert.Contains(t, err.Error(), "line")
}

func TestTokenizeEmptySource(t *testing.T) {
	p := newTestProvider()

	stream, err := p.Tokenize(context.Background(), []byte(""))
	require.NoError(t, err)
	assert.Equal(t, 0, stream.Len())
	assert.Equal(t, "", stream.Render())
}

func TestTokenizeConcurrent(t *testing.T) {
	p := newTestProvider()

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			stream, err := p.Tokenize(context.Background(), []byte(goSource))
			if err != nil {
				errs <- err
				return
			}
			if stream.Render() != goSource {
				errs <- assert.AnError
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent tokenize failed: %v", err)
	}
}

func TestGapSplitting(t *testing.T) {
	w := walker{source: []byte("  abc\n\tdef ")}
	w.gap(len(w.source))

	require.Len(t, w.tokens, 5)
	assert.Equal(t, token.Whitespace, w.tokens[0].Kind)
	assert.Equal(t, token.Text, w.tokens[1].Kind)
	assert.Equal(t, "abc", w.tokens[1].Content)
	assert.Equal(t, "\n\t", w.tokens[2].Content)
	assert.Equal(t, "def", w.tokens[3].Content)
	assert.Equal(t, " ", w.tokens[4].Content)
}
