package token

// Stream is an ordered, destructively consumed sequence of tokens.
// Reading past the end yields EOF tokens instead of failing.
type Stream struct {
	tokens []Token
	pos    int
}

func NewStream(tokens ...Token) *Stream {
	return &Stream{tokens: tokens}
}

// Peek returns the front token without consuming it.
func (s *Stream) Peek() Token {
	if s.pos >= len(s.tokens) {
		return s.eof()
	}
	return s.tokens[s.pos]
}

// Pop consumes and returns the front token.
func (s *Stream) Pop() Token {
	tok := s.Peek()
	if s.pos < len(s.tokens) {
		s.pos++
	}
	return tok
}

func (s *Stream) Empty() bool {
	return s.pos >= len(s.tokens)
}

// Len reports the number of tokens not yet consumed.
func (s *Stream) Len() int {
	return len(s.tokens) - s.pos
}

func (s *Stream) eof() Token {
	if len(s.tokens) == 0 {
		return Token{Kind: EOF, Pos: Pos{Line: 1, Column: 1}}
	}
	last := s.tokens[len(s.tokens)-1]
	pos := last.Pos
	if pos.Line != 0 {
		pos.Column += len(last.Literal)
		if last.Literal == "" {
			pos.Column += len(last.Kind)
		}
	}
	return Token{Kind: EOF, Pos: pos}
}
