package rules

import (
	"strings"

	"github.com/oxhq/stylefx/internal/token"
)

var testKeywords = map[string]bool{
	"if": true, "else": true, "echo": true, "return": true, "function": true,
	"true": true, "false": true, "null": true,
}

// lex is a small C-like lexer for rule tests, so expectations do not
// depend on a grammar.
func lex(language, src string) *token.Stream {
	var toks []token.Token
	emit := func(kind token.Kind, n int) {
		toks = append(toks, token.New(kind, src[:n]))
		src = src[n:]
	}

	for src != "" {
		c := src[0]
		switch {
		case strings.ContainsRune(" \t\r\n", rune(c)):
			n := 0
			for n < len(src) && strings.ContainsRune(" \t\r\n", rune(src[n])) {
				n++
			}
			emit(token.Whitespace, n)
		case strings.HasPrefix(src, "//") || c == '#':
			n := strings.IndexByte(src, '\n')
			if n < 0 {
				n = len(src)
			}
			emit(token.Comment, n)
		case strings.HasPrefix(src, "/*"):
			n := strings.Index(src[2:], "*/")
			if n < 0 {
				n = len(src) - 4
			}
			emit(token.Comment, n+4)
		case c == '"' || c == '\'':
			n := 1
			for n < len(src) && src[n] != c {
				if src[n] == '\\' {
					n++
				}
				n++
			}
			emit(token.String, min(n+1, len(src)))
		case c >= '0' && c <= '9':
			n := 0
			for n < len(src) && src[n] >= '0' && src[n] <= '9' {
				n++
			}
			emit(token.Numeric, n)
		case isWordByte(c):
			n := 0
			for n < len(src) && isWordByte(src[n]) {
				n++
			}
			kind := token.Identifier
			if testKeywords[strings.ToLower(src[:n])] {
				kind = token.Keyword
			}
			emit(kind, n)
		default:
			if kind, ok := token.KindForDelimiter(src[:1]); ok {
				emit(kind, 1)
				continue
			}
			n := 1
			for _, op := range []string{"===", "!==", "==", "!=", "<>"} {
				if strings.HasPrefix(src, op) {
					n = len(op)
					break
				}
			}
			emit(token.Punctuation, n)
		}
	}

	s := token.NewStream(toks)
	s.SetLanguage(language)
	return s
}

func isWordByte(c byte) bool {
	return c == '_' || c == '$' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}
