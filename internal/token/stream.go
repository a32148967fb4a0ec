package token

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotABlock is returned when block matching starts on a token that
	// neither opens nor closes a block.
	ErrNotABlock = errors.New("token does not delimit a block")
	// ErrUnbalancedBlock is returned when no matching delimiter exists.
	ErrUnbalancedBlock = errors.New("unbalanced block delimiters")
)

// Stream is the mutable token sequence of one file.
//
// Indices are positions in the sequence. Out-of-range indices panic, the
// same way slice indexing does. Every mutation re-derives line and column
// for the tokens from the mutation point on and drops cached block pairs
// that touch those indices; pairs are recomputed on the next query.
//
// A Stream is not safe for concurrent use.
type Stream struct {
	tokens   []Token
	pairs    map[int]int
	changed  bool
	language string
}

// NewStream creates a stream from tokens. The slice is copied.
func NewStream(tokens []Token) *Stream {
	s := &Stream{
		tokens: make([]Token, len(tokens)),
		pairs:  make(map[int]int),
	}
	copy(s.tokens, tokens)
	s.reposition(0)
	return s
}

// Language returns the language the stream was tokenized as, empty for
// streams built from explicit tokens.
func (s *Stream) Language() string {
	return s.language
}

// SetLanguage records the source language. It is not a mutation.
func (s *Stream) SetLanguage(language string) {
	s.language = language
}

// Len returns the number of tokens.
func (s *Stream) Len() int {
	return len(s.tokens)
}

// At returns the token at index i.
func (s *Stream) At(i int) Token {
	return s.tokens[i]
}

// Tokens returns a copy of the token sequence.
func (s *Stream) Tokens() []Token {
	out := make([]Token, len(s.tokens))
	copy(out, s.tokens)
	return out
}

// Render concatenates the token contents back into source text.
func (s *Stream) Render() string {
	var b strings.Builder
	size := 0
	for _, t := range s.tokens {
		size += len(t.Content)
	}
	b.Grow(size)
	for _, t := range s.tokens {
		b.WriteString(t.Content)
	}
	return b.String()
}

// Changed reports whether any mutation altered the stream since creation or
// the last ResetChanged.
func (s *Stream) Changed() bool {
	return s.changed
}

// ResetChanged clears the change flag.
func (s *Stream) ResetChanged() {
	s.changed = false
}

// InsertAt inserts tokens before index i. i may equal Len to append.
func (s *Stream) InsertAt(i int, tokens ...Token) {
	if i < 0 || i > len(s.tokens) {
		panic(fmt.Sprintf("token: insert index %d out of range [0:%d]", i, len(s.tokens)))
	}
	if len(tokens) == 0 {
		return
	}
	s.tokens = append(s.tokens, tokens...)
	copy(s.tokens[i+len(tokens):], s.tokens[i:])
	copy(s.tokens[i:], tokens)
	s.touched(i)
}

// RemoveRange removes the tokens in [start, end).
func (s *Stream) RemoveRange(start, end int) {
	if start < 0 || end > len(s.tokens) || start > end {
		panic(fmt.Sprintf("token: remove range [%d:%d] out of range [0:%d]", start, end, len(s.tokens)))
	}
	if start == end {
		return
	}
	s.tokens = append(s.tokens[:start], s.tokens[end:]...)
	s.touched(start)
}

// RemoveAt removes the token at index i.
func (s *Stream) RemoveAt(i int) {
	s.RemoveRange(i, i+1)
}

// ReplaceAt overwrites the token at index i. Replacing a token with an
// equal one is not a change.
func (s *Stream) ReplaceAt(i int, t Token) {
	if s.tokens[i].Equals(t) {
		return
	}
	s.tokens[i] = t
	s.touched(i)
}

// SetContent replaces the content of token i, keeping its kind.
func (s *Stream) SetContent(i int, content string) {
	s.ReplaceAt(i, New(s.tokens[i].Kind, content))
}

// EnsureWhitespaceAt makes index i hold whitespace with the given content:
// an existing whitespace token is rewritten, otherwise a new token is
// inserted at i. An empty content removes existing whitespace.
func (s *Stream) EnsureWhitespaceAt(i int, content string) {
	if i < len(s.tokens) && s.tokens[i].Kind == Whitespace {
		if content == "" {
			s.RemoveAt(i)
			return
		}
		s.SetContent(i, content)
		return
	}
	if content != "" {
		s.InsertAt(i, New(Whitespace, content))
	}
}

// IsWhitespaceOnly reports whether token i is whitespace.
func (s *Stream) IsWhitespaceOnly(i int) bool {
	t := s.tokens[i]
	return t.Kind == Whitespace && IsBlank(t.Content)
}

// NextOfKind returns the first index after from holding one of kinds.
func (s *Stream) NextOfKind(from int, kinds ...Kind) (int, bool) {
	for i := from + 1; i < len(s.tokens); i++ {
		if s.tokens[i].IsGivenKind(kinds...) {
			return i, true
		}
	}
	return -1, false
}

// PrevOfKind returns the last index before from holding one of kinds.
func (s *Stream) PrevOfKind(from int, kinds ...Kind) (int, bool) {
	if from > len(s.tokens) {
		from = len(s.tokens)
	}
	for i := from - 1; i >= 0; i-- {
		if s.tokens[i].IsGivenKind(kinds...) {
			return i, true
		}
	}
	return -1, false
}

// NextMeaningful returns the first index after from that is neither
// whitespace nor a comment.
func (s *Stream) NextMeaningful(from int) (int, bool) {
	for i := from + 1; i < len(s.tokens); i++ {
		if s.tokens[i].IsMeaningful() {
			return i, true
		}
	}
	return -1, false
}

// PrevMeaningful returns the last index before from that is neither
// whitespace nor a comment.
func (s *Stream) PrevMeaningful(from int) (int, bool) {
	if from > len(s.tokens) {
		from = len(s.tokens)
	}
	for i := from - 1; i >= 0; i-- {
		if s.tokens[i].IsMeaningful() {
			return i, true
		}
	}
	return -1, false
}

// touched records a mutation at index i.
func (s *Stream) touched(i int) {
	s.changed = true
	s.reposition(i)
	for open, closing := range s.pairs {
		if open >= i || closing >= i {
			delete(s.pairs, open)
		}
	}
}

// reposition recomputes line and column for tokens from index i on.
func (s *Stream) reposition(i int) {
	line, col := 1, 1
	if i > 0 {
		prev := s.tokens[i-1]
		line, col = advance(prev.Line, prev.Column, prev.Content)
	}
	for ; i < len(s.tokens); i++ {
		s.tokens[i].Line = line
		s.tokens[i].Column = col
		line, col = advance(line, col, s.tokens[i].Content)
	}
}
