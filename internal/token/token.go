package token

import "strings"

// Token is one lexical unit of a file. Line and Column are 1-based and
// describe the token's place in the stream that owns it; they are rewritten
// whenever the stream is edited in front of the token.
type Token struct {
	Kind    Kind   `json:"kind"`
	Content string `json:"content"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
}

// New creates a token without position. Streams assign positions on insert.
func New(kind Kind, content string) Token {
	return Token{Kind: kind, Content: content}
}

// Equals compares kind and content, ignoring position.
func (t Token) Equals(other Token) bool {
	return t.Kind == other.Kind && t.Content == other.Content
}

// IsWhitespace reports whether the token is whitespace.
func (t Token) IsWhitespace() bool {
	return t.Kind == Whitespace
}

// IsComment reports whether the token is a comment.
func (t Token) IsComment() bool {
	return t.Kind == Comment
}

// IsMeaningful is false for whitespace and comments.
func (t Token) IsMeaningful() bool {
	return t.Kind != Whitespace && t.Kind != Comment
}

// IsGivenKind reports whether the token has one of kinds.
func (t Token) IsGivenKind(kinds ...Kind) bool {
	for _, k := range kinds {
		if t.Kind == k {
			return true
		}
	}
	return false
}

// advance returns the position right after content starting at line:col.
func advance(line, col int, content string) (int, int) {
	n := strings.Count(content, "\n")
	if n == 0 {
		return line, col + len(content)
	}
	return line + n, len(content) - strings.LastIndexByte(content, '\n')
}

// IsBlank reports whether s consists only of ASCII whitespace.
func IsBlank(s string) bool {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case ' ', '\t', '\n', '\r', '\f', '\v':
		default:
			return false
		}
	}
	return true
}
