package lexer

import (
	"errors"
	"testing"

	"github.com/nalgeon/be"

	"github.com/baffl-lang/baffl/token"
)

func kinds(t *testing.T, input string) []token.Kind {
	t.Helper()
	stream, err := Tokenize([]byte(input))
	be.Err(t, err, nil)

	var result []token.Kind
	for !stream.Empty() {
		result = append(result, stream.Pop().Kind)
	}
	return result
}

func TestIntLiteral(t *testing.T) {
	stream, err := Tokenize([]byte("12345"))
	be.Err(t, err, nil)

	tok := stream.Pop()
	be.Equal(t, tok.Kind, token.LiteralInteger)
	be.Equal(t, tok.Literal, "12345")

	v, err := tok.Int()
	be.Err(t, err, nil)
	be.Equal(t, v, uint64(12345))
}

func TestIdentifier(t *testing.T) {
	stream, err := Tokenize([]byte("foo_bar2"))
	be.Err(t, err, nil)

	tok := stream.Pop()
	be.Equal(t, tok.Kind, token.Name)
	be.Equal(t, tok.Literal, "foo_bar2")
	be.True(t, stream.Empty())
}

func TestStringLiteral(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`"hello"`, "hello"},
		{`""`, ""},
		{`"a\nb"`, "a\nb"},
		{`"say \"hi\""`, `say "hi"`},
		{`"nul\0"`, "nul\x00"},
	}

	for _, test := range tests {
		stream, err := Tokenize([]byte(test.input))
		be.Err(t, err, nil)

		tok := stream.Pop()
		be.Equal(t, tok.Kind, token.LiteralString)
		be.Equal(t, tok.Literal, test.expected)
	}
}

func TestKeywords(t *testing.T) {
	tests := []struct {
		input string
		kind  token.Kind
	}{
		{"function", token.Function},
		{"fun", token.Function},
		{"let", token.Let},
		{"var", token.Var},
		{"return", token.Return},
		{"if", token.If},
		{"while", token.While},
		{"true", token.True},
		{"false", token.False},
		{"import", token.Import},
		{"functional", token.Name},
	}

	for _, test := range tests {
		be.Equal(t, kinds(t, test.input), []token.Kind{test.kind})
	}
}

func TestOperatorsAndDelimiters(t *testing.T) {
	got := kinds(t, "( ) { } : ; , = + - / % == < <=")
	be.Equal(t, got, []token.Kind{
		token.LParen, token.RParen, token.LBrace, token.RBrace,
		token.Colon, token.Semicolon, token.Comma, token.Assign,
		token.Plus, token.Minus, token.Slash, token.Percent,
		token.Equals, token.Less, token.LessEqual,
	})
}

func TestComments(t *testing.T) {
	got := kinds(t, "let // trailing comment\n/* block\ncomment */ x")
	be.Equal(t, got, []token.Kind{token.Let, token.Name})
}

func TestPositions(t *testing.T) {
	stream, err := Tokenize([]byte("function main()\n  return"))
	be.Err(t, err, nil)

	be.Equal(t, stream.Pop().Pos, token.Pos{Line: 1, Column: 1})
	be.Equal(t, stream.Pop().Pos, token.Pos{Line: 1, Column: 10})
	stream.Pop()
	stream.Pop()
	be.Equal(t, stream.Pop().Pos, token.Pos{Line: 2, Column: 3})
}

func TestFunctionSource(t *testing.T) {
	got := kinds(t, "import print; function main(): i32 { return 0; }")
	be.Equal(t, got, []token.Kind{
		token.Import, token.Name, token.Semicolon,
		token.Function, token.Name, token.LParen, token.RParen,
		token.Colon, token.Name, token.LBrace,
		token.Return, token.LiteralInteger, token.Semicolon,
		token.RBrace,
	})
}

func TestErrors(t *testing.T) {
	tests := []struct {
		input string
		text  string
	}{
		{"let x = @;", "unexpected character '@'"},
		{`"abc`, "unterminated string literal"},
		{`"a\q"`, `unknown escape sequence \q`},
		{"/* open", "unterminated block comment"},
	}

	for _, test := range tests {
		_, err := Tokenize([]byte(test.input))
		be.Err(t, err, test.text)

		var lexErr *Error
		be.True(t, errors.As(err, &lexErr))
	}
}

func TestErrorPosition(t *testing.T) {
	_, err := Tokenize([]byte("let x = 1;\nlet y = #;"))
	be.Err(t, err, "lex error at 2:9")
}
