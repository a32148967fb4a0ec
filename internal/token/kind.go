package token

// Kind classifies a token. The set is closed: tokenizers map every leaf of
// a syntax tree onto one of these.
type Kind uint8

const (
	Text Kind = iota
	Identifier
	Keyword
	String
	Numeric
	Comment
	Whitespace
	Punctuation
	OpenBrace
	CloseBrace
	OpenParen
	CloseParen
	OpenBracket
	CloseBracket
)

var kindNames = [...]string{
	Text:         "text",
	Identifier:   "identifier",
	Keyword:      "keyword",
	String:       "string",
	Numeric:      "numeric",
	Comment:      "comment",
	Whitespace:   "whitespace",
	Punctuation:  "punctuation",
	OpenBrace:    "open_brace",
	CloseBrace:   "close_brace",
	OpenParen:    "open_paren",
	CloseParen:   "close_paren",
	OpenBracket:  "open_bracket",
	CloseBracket: "close_bracket",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// IsOpening reports whether k starts a block.
func (k Kind) IsOpening() bool {
	return k == OpenBrace || k == OpenParen || k == OpenBracket
}

// IsClosing reports whether k ends a block.
func (k Kind) IsClosing() bool {
	return k == CloseBrace || k == CloseParen || k == CloseBracket
}

// Counterpart returns the kind that closes (or opens) a block started (or
// ended) by k. ok is false for non-structural kinds.
func (k Kind) Counterpart() (Kind, bool) {
	switch k {
	case OpenBrace:
		return CloseBrace, true
	case CloseBrace:
		return OpenBrace, true
	case OpenParen:
		return CloseParen, true
	case CloseParen:
		return OpenParen, true
	case OpenBracket:
		return CloseBracket, true
	case CloseBracket:
		return OpenBracket, true
	}
	return k, false
}

// KindForDelimiter maps a literal delimiter to its structural kind.
func KindForDelimiter(s string) (Kind, bool) {
	switch s {
	case "{":
		return OpenBrace, true
	case "}":
		return CloseBrace, true
	case "(":
		return OpenParen, true
	case ")":
		return CloseParen, true
	case "[":
		return OpenBracket, true
	case "]":
		return CloseBracket, true
	}
	return Text, false
}
