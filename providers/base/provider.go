package base

import (
	"context"
	"fmt"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/oxhq/stylefx/internal/model"
	"github.com/oxhq/stylefx/internal/token"
)

// LanguageConfig defines language-specific behavior that must be implemented
type LanguageConfig interface {
	// Metadata
	Language() string
	Extensions() []string
	GetLanguage() *sitter.Language

	// AtomicNodes lists node types whose whole source span becomes a single
	// token of the given kind, regardless of their children.
	AtomicNodes() map[string]token.Kind

	// ClassifyLeaf lets a language override the kind of a leaf node. ok is
	// false to fall back to the generic classification.
	ClassifyLeaf(nodeType string, named bool, content string) (token.Kind, bool)
}

// Provider tokenizes source text of one language with tree-sitter.
// It is safe for concurrent use: parsers are pooled, never shared.
type Provider struct {
	config  LanguageConfig
	atomic  map[string]token.Kind
	parsers sync.Pool
}

// New creates a base provider with language-specific config
func New(config LanguageConfig) *Provider {
	lang := config.GetLanguage()
	if lang == nil {
		panic(fmt.Sprintf("Failed to load %s language for tree-sitter", config.Language()))
	}

	p := &Provider{
		config: config,
		atomic: config.AtomicNodes(),
	}
	p.parsers.New = func() any {
		parser := sitter.NewParser()
		parser.SetLanguage(lang)
		return parser
	}
	return p
}

// Language returns language identifier
func (p *Provider) Language() string {
	return p.config.Language()
}

// Extensions returns supported file extensions
func (p *Provider) Extensions() []string {
	return p.config.Extensions()
}

// Tokenize parses source and returns its token stream. Source the grammar
// rejects fails with model.ErrUnparsableSource; nothing is partially
// tokenized.
func (p *Provider) Tokenize(ctx context.Context, source []byte) (*token.Stream, error) {
	parser := p.parsers.Get().(*sitter.Parser)
	defer p.parsers.Put(parser)

	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil || tree == nil {
		return nil, model.Wrap(model.ErrUnparsableSource, "", p.Language(), err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		msg := p.Language() + " syntax error"
		if bad := findError(root); bad != nil {
			pt := bad.StartPoint()
			msg = fmt.Sprintf("%s at line %d, column %d", msg, pt.Row+1, pt.Column+1)
		}
		return nil, model.Wrap(model.ErrUnparsableSource, "", msg, nil)
	}

	w := walker{provider: p, source: source}
	w.collect(root)
	if w.offset < len(source) {
		w.gap(len(source))
	}
	stream := token.NewStream(w.tokens)
	stream.SetLanguage(p.Language())
	return stream, nil
}

// walker turns the leaves of a syntax tree into tokens. Bytes between
// leaves become whitespace or text tokens, so rendering the tokens yields
// the source byte for byte.
type walker struct {
	provider *Provider
	source   []byte
	offset   int
	tokens   []token.Token
}

func (w *walker) collect(node *sitter.Node) {
	start, end := int(node.StartByte()), int(node.EndByte())
	if end <= start || end <= w.offset {
		return
	}

	kind, atomic := w.provider.atomic[node.Type()]
	if !atomic && node.ChildCount() > 0 {
		for i := 0; i < int(node.ChildCount()); i++ {
			w.collect(node.Child(i))
		}
		return
	}

	if start < w.offset {
		start = w.offset
	}
	if start > w.offset {
		w.gap(start)
	}
	content := string(w.source[start:end])
	if !atomic {
		kind = w.provider.classify(node.Type(), node.IsNamed(), content)
	}
	w.tokens = append(w.tokens, token.New(kind, content))
	w.offset = end
}

// gap emits the bytes between the current offset and end, split into
// whitespace and text runs.
func (w *walker) gap(end int) {
	text := string(w.source[w.offset:end])
	w.offset = end
	for len(text) > 0 {
		n := blankPrefix(text)
		if n > 0 {
			w.tokens = append(w.tokens, token.New(token.Whitespace, text[:n]))
			text = text[n:]
			continue
		}
		n = strings.IndexAny(text, " \t\r\n\f\v")
		if n < 0 {
			n = len(text)
		}
		w.tokens = append(w.tokens, token.New(token.Text, text[:n]))
		text = text[n:]
	}
}

func blankPrefix(s string) int {
	for i := 0; i < len(s); i++ {
		if !token.IsBlank(s[i : i+1]) {
			return i
		}
	}
	return len(s)
}

// classify maps a leaf node onto a token kind.
func (p *Provider) classify(nodeType string, named bool, content string) token.Kind {
	if kind, ok := p.config.ClassifyLeaf(nodeType, named, content); ok {
		return kind
	}
	if token.IsBlank(content) {
		return token.Whitespace
	}
	if !named {
		if kind, ok := token.KindForDelimiter(nodeType); ok {
			return kind
		}
		if isWord(nodeType) {
			return token.Keyword
		}
		return token.Punctuation
	}

	switch {
	case strings.Contains(nodeType, "comment"):
		return token.Comment
	case strings.Contains(nodeType, "string"), strings.Contains(nodeType, "heredoc"),
		strings.Contains(nodeType, "nowdoc"):
		return token.String
	case strings.Contains(nodeType, "number"), strings.Contains(nodeType, "integer"),
		strings.Contains(nodeType, "float"), strings.HasSuffix(nodeType, "int_literal"),
		strings.HasSuffix(nodeType, "imaginary_literal"):
		return token.Numeric
	case strings.Contains(nodeType, "identifier"), nodeType == "name":
		return token.Identifier
	case nodeType == content && isWord(content):
		// true, false, nil, null and friends
		return token.Keyword
	}
	return token.Text
}

func isWord(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r != '_' && (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}

// findError returns the first ERROR or MISSING node in document order.
func findError(node *sitter.Node) *sitter.Node {
	if node.IsMissing() || node.Type() == "ERROR" {
		return node
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.IsMissing() || child.HasError() {
			if bad := findError(child); bad != nil {
				return bad
			}
		}
	}
	return nil
}
