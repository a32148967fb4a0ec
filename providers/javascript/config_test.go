package javascript

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
	source := "const a = `t${x}`;\nlet b = [1, 2];\n"

	stream, err := New().Tokenize(context.Background(), []byte(source))
	require.NoError(t, err)
	assert.Equal(t, source, stream.Render())
	assert.True(t, stream.Balanced())
	assert.Equal(t, token.Keyword, kindOf(t, stream, "const"))
	assert.Equal(t, token.String, kindOf(t, stream, "`t${x}`"))
	assert.Equal(t, token.OpenBracket, kindOf(t, stream, "["))
	assert.Equal(t, token.Numeric, kindOf(t, stream, "2"))
}
