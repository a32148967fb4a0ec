package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleStream() *Stream {
	// if (a) { b["}"]; }
	return NewStream([]Token{
		New(Keyword, "if"),
		New(Whitespace, " "),
		New(OpenParen, "("),
		New(Identifier, "a"),
		New(CloseParen, ")"),
		New(Whitespace, " "),
		New(OpenBrace, "{"),
		New(Whitespace, "\n\t"),
		New(Identifier, "b"),
		New(OpenBracket, "["),
		New(String, `"}"`),
		New(CloseBracket, "]"),
		New(Punctuation, ";"),
		New(Whitespace, "\n"),
		New(CloseBrace, "}"),
	})
}

func TestRenderRoundTrip(t *testing.T) {
	s := sampleStream()
	assert.Equal(t, "if (a) {\n\tb[\"}\"];\n}", s.Render())
	assert.False(t, s.Changed())
}

func TestThreeTokenStream(t *testing.T) {
	s := NewStream([]Token{
		New(Identifier, "x"),
		New(Punctuation, "="),
		New(Numeric, "1"),
	})
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, "x=1", s.Render())
	assert.Equal(t, 3, s.At(2).Column)
}

func TestPositions(t *testing.T) {
	s := sampleStream()

	b := s.At(8)
	assert.Equal(t, 2, b.Line)
	assert.Equal(t, 2, b.Column)

	closing := s.At(14)
	assert.Equal(t, 3, closing.Line)
	assert.Equal(t, 1, closing.Column)
}

func TestInsertRepositions(t *testing.T) {
	s := sampleStream()
	s.InsertAt(0, New(Comment, "// lead"), New(Whitespace, "\n"))

	assert.True(t, s.Changed())
	assert.Equal(t, 17, s.Len())
	assert.Equal(t, "if", s.At(2).Content)
	assert.Equal(t, 2, s.At(2).Line)
	assert.Equal(t, 4, s.At(16).Line)
}

func TestRemoveRange(t *testing.T) {
	s := sampleStream()
	s.RemoveRange(0, 2)
	assert.Equal(t, "(a) {\n\tb[\"}\"];\n}", s.Render())
	assert.Equal(t, 1, s.At(0).Column)

	s.RemoveRange(3, 3)
	assert.Equal(t, 13, s.Len())
}

func TestReplaceAtSameTokenIsNoChange(t *testing.T) {
	s := sampleStream()
	s.ReplaceAt(0, New(Keyword, "if"))
	assert.False(t, s.Changed())

	s.SetContent(0, "IF")
	assert.True(t, s.Changed())
	assert.Equal(t, Keyword, s.At(0).Kind)

	s.ResetChanged()
	assert.False(t, s.Changed())
}

func TestEnsureWhitespaceAt(t *testing.T) {
	s := NewStream([]Token{New(Identifier, "a"), New(Punctuation, "=")})
	s.EnsureWhitespaceAt(1, " ")
	assert.Equal(t, "a =", s.Render())

	s.EnsureWhitespaceAt(1, "  ")
	assert.Equal(t, "a  =", s.Render())

	s.EnsureWhitespaceAt(1, "")
	assert.Equal(t, "a=", s.Render())
}

func TestOutOfRangePanics(t *testing.T) {
	s := sampleStream()
	assert.Panics(t, func() { s.InsertAt(99, New(Text, "x")) })
	assert.Panics(t, func() { s.RemoveRange(4, 2) })
	assert.Panics(t, func() { s.At(-1) })
}

func TestNavigation(t *testing.T) {
	s := sampleStream()

	i, ok := s.NextOfKind(0, OpenBrace)
	require.True(t, ok)
	assert.Equal(t, 6, i)

	_, ok = s.NextOfKind(14, Identifier)
	assert.False(t, ok)

	i, ok = s.PrevOfKind(14, Identifier)
	require.True(t, ok)
	assert.Equal(t, 8, i)

	i, ok = s.NextMeaningful(6)
	require.True(t, ok)
	assert.Equal(t, 8, i)

	i, ok = s.PrevMeaningful(14)
	require.True(t, ok)
	assert.Equal(t, 12, i)

	assert.True(t, s.IsWhitespaceOnly(7))
	assert.False(t, s.IsWhitespaceOnly(8))
}

func TestTokensReturnsCopy(t *testing.T) {
	s := sampleStream()
	toks := s.Tokens()
	toks[0].Content = "while"
	assert.Equal(t, "if", s.At(0).Content)
}
