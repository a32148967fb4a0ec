package token

import "fmt"

// FindBlockEnd returns the index of the token closing the block opened at
// open. Only tokens of the matching structural kind are counted, so
// delimiters inside strings or comments never take part.
func (s *Stream) FindBlockEnd(open int) (int, error) {
	t := s.tokens[open]
	if !t.Kind.IsOpening() {
		return -1, fmt.Errorf("index %d (%s): %w", open, t.Kind, ErrNotABlock)
	}
	if closing, ok := s.pairs[open]; ok {
		return closing, nil
	}

	closeKind, _ := t.Kind.Counterpart()
	depth := 0
	for i := open; i < len(s.tokens); i++ {
		switch s.tokens[i].Kind {
		case t.Kind:
			depth++
		case closeKind:
			depth--
			if depth == 0 {
				s.remember(open, i)
				return i, nil
			}
		}
	}
	return -1, fmt.Errorf("index %d (%s): %w", open, t.Kind, ErrUnbalancedBlock)
}

// FindBlockStart returns the index of the token opening the block closed at
// closing.
func (s *Stream) FindBlockStart(closing int) (int, error) {
	t := s.tokens[closing]
	if !t.Kind.IsClosing() {
		return -1, fmt.Errorf("index %d (%s): %w", closing, t.Kind, ErrNotABlock)
	}
	if open, ok := s.pairs[closing]; ok {
		return open, nil
	}

	openKind, _ := t.Kind.Counterpart()
	depth := 0
	for i := closing; i >= 0; i-- {
		switch s.tokens[i].Kind {
		case t.Kind:
			depth++
		case openKind:
			depth--
			if depth == 0 {
				s.remember(i, closing)
				return i, nil
			}
		}
	}
	return -1, fmt.Errorf("index %d (%s): %w", closing, t.Kind, ErrUnbalancedBlock)
}

// Balanced reports whether every structural delimiter has a partner of the
// matching kind, nested properly.
func (s *Stream) Balanced() bool {
	var stack []Kind
	for _, t := range s.tokens {
		switch {
		case t.Kind.IsOpening():
			stack = append(stack, t.Kind)
		case t.Kind.IsClosing():
			want, _ := t.Kind.Counterpart()
			if len(stack) == 0 || stack[len(stack)-1] != want {
				return false
			}
			stack = stack[:len(stack)-1]
		}
	}
	return len(stack) == 0
}

// remember caches a pair in both directions. Keys are unique because a
// token is either an opener or a closer.
func (s *Stream) remember(open, closing int) {
	s.pairs[open] = closing
	s.pairs[closing] = open
}
