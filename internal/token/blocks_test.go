package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindBlockEnd(t *testing.T) {
	s := sampleStream()

	end, err := s.FindBlockEnd(6)
	require.NoError(t, err)
	assert.Equal(t, 14, end, "brace inside the string must not close the block")

	end, err = s.FindBlockEnd(2)
	require.NoError(t, err)
	assert.Equal(t, 4, end)

	start, err := s.FindBlockStart(11)
	require.NoError(t, err)
	assert.Equal(t, 9, start)
}

func TestFindBlockNested(t *testing.T) {
	s := NewStream([]Token{
		New(OpenParen, "("),
		New(OpenParen, "("),
		New(CloseParen, ")"),
		New(OpenBrace, "{"),
		New(CloseBrace, "}"),
		New(CloseParen, ")"),
	})
	end, err := s.FindBlockEnd(0)
	require.NoError(t, err)
	assert.Equal(t, 5, end)

	start, err := s.FindBlockStart(5)
	require.NoError(t, err)
	assert.Equal(t, 0, start)
	assert.True(t, s.Balanced())
}

func TestFindBlockErrors(t *testing.T) {
	s := NewStream([]Token{
		New(OpenBrace, "{"),
		New(Identifier, "a"),
	})

	_, err := s.FindBlockEnd(1)
	assert.ErrorIs(t, err, ErrNotABlock)

	_, err = s.FindBlockEnd(0)
	assert.ErrorIs(t, err, ErrUnbalancedBlock)
	assert.False(t, s.Balanced())

	_, err = s.FindBlockStart(0)
	assert.ErrorIs(t, err, ErrNotABlock)
}

func TestBlockIndexInvalidatedByMutation(t *testing.T) {
	s := sampleStream()

	end, err := s.FindBlockEnd(6)
	require.NoError(t, err)
	require.Equal(t, 14, end)

	// Drop the indentation inside the block: the closing brace moves.
	s.RemoveAt(7)
	end, err = s.FindBlockEnd(6)
	require.NoError(t, err)
	assert.Equal(t, 13, end)
	assert.Equal(t, CloseBrace, s.At(end).Kind)

	// A mutation after the block leaves earlier pairs usable.
	paren, err := s.FindBlockEnd(2)
	require.NoError(t, err)
	s.InsertAt(s.Len(), New(Whitespace, "\n"))
	again, err := s.FindBlockEnd(2)
	require.NoError(t, err)
	assert.Equal(t, paren, again)
}

func TestKindCounterpart(t *testing.T) {
	k, ok := OpenBracket.Counterpart()
	assert.True(t, ok)
	assert.Equal(t, CloseBracket, k)

	_, ok = Identifier.Counterpart()
	assert.False(t, ok)

	k, ok = KindForDelimiter("}")
	assert.True(t, ok)
	assert.Equal(t, CloseBrace, k)
	assert.Equal(t, "open_paren", OpenParen.String())
}
