package token

import (
	"testing"

	"github.com/nalgeon/be"
)

func TestStream(t *testing.T) {
	s := NewStream(
		Token{Kind: Let, Pos: Pos{1, 1}},
		Token{Kind: Name, Literal: "x", Pos: Pos{1, 5}},
	)

	be.Equal(t, s.Len(), 2)
	be.Equal(t, s.Peek().Kind, Let)
	be.Equal(t, s.Peek().Kind, Let)
	be.Equal(t, s.Pop().Kind, Let)
	be.Equal(t, s.Pop().Literal, "x")
	be.True(t, s.Empty())
	be.Equal(t, s.Len(), 0)
}

func TestStreamPastEnd(t *testing.T) {
	tests := []struct {
		tokens   []Token
		expected Pos
	}{
		{nil, Pos{1, 1}},
		{[]Token{{Kind: Name, Literal: "main", Pos: Pos{2, 3}}}, Pos{2, 7}},
		{[]Token{{Kind: Semicolon, Pos: Pos{1, 10}}}, Pos{1, 11}},
		{[]Token{{Kind: Equals, Pos: Pos{4, 1}}}, Pos{4, 3}},
	}

	for _, test := range tests {
		s := NewStream(test.tokens...)
		for range test.tokens {
			s.Pop()
		}
		for range 2 {
			tok := s.Pop()
			be.Equal(t, tok.Kind, EOF)
			be.Equal(t, tok.Pos, test.expected)
		}
		be.True(t, s.Empty())
	}
}

func TestTokenString(t *testing.T) {
	tests := []struct {
		tok      Token
		expected string
	}{
		{Token{Kind: Name, Literal: "x"}, "name [x]"},
		{Token{Kind: LiteralInteger, Literal: "12"}, "integer [12]"},
		{Token{Kind: LiteralString, Literal: "a\nb"}, `string "a\nb"`},
		{Token{Kind: EOF}, "end of input"},
		{Token{Kind: Semicolon}, "`;`"},
		{Token{Kind: While}, "`while`"},
	}

	for _, test := range tests {
		be.Equal(t, test.tok.String(), test.expected)
	}
}

func TestPosString(t *testing.T) {
	be.Equal(t, Pos{3, 14}.String(), "3:14")
	be.Equal(t, Pos{}.String(), "?")
}

func TestTokenInt(t *testing.T) {
	v, err := Token{Kind: LiteralInteger, Literal: "18446744073709551615"}.Int()
	be.Err(t, err, nil)
	be.Equal(t, v, uint64(18446744073709551615))

	_, err = Token{Kind: LiteralInteger, Literal: "18446744073709551616"}.Int()
	be.Err(t, err, "out of range")
}

func TestKeywords(t *testing.T) {
	be.Equal(t, Keywords["function"], Function)
	be.Equal(t, Keywords["fun"], Function)
	_, ok := Keywords["main"]
	be.True(t, !ok)
}
