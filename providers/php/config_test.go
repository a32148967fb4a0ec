package php

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/stylefx/internal/token"
)

func kindOf(t *testing.T, s *token.Stream, content string) token.Kind {
	t.Helper()
	for _, tok := range s.Tokens() {
		if tok.Content == content {
			return tok.Kind
		}
	}
	t.Fatalf("token %q not found", content)
	return token.Text
}

func TestTokenize(t *testing.T) {
	source := "<?php\n$x = 'a';\nif ($x === \"b\") { echo TRUE; }\n"

	stream, err := New().Tokenize(context.Background(), []byte(source))
	require.NoError(t, err)
	assert.Equal(t, source, stream.Render())
	assert.True(t, stream.Balanced())
	assert.Equal(t, token.Identifier, kindOf(t, stream, "$x"))
	assert.Equal(t, token.String, kindOf(t, stream, "'a'"))
	assert.Equal(t, token.Keyword, kindOf(t, stream, "TRUE"))
	assert.Equal(t, token.Keyword, kindOf(t, stream, "echo"))
	assert.Equal(t, token.Punctuation, kindOf(t, stream, "==="))
}
