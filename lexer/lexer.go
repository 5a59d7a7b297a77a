// Package lexer turns source text into a token.Stream.
package lexer

import (
	"fmt"
	"strings"

	"github.com/baffl-lang/baffl/token"
)

// Error is reported for character sequences the lexer cannot classify.
type Error struct {
	Pos  token.Pos
	Text string
}

func (e *Error) Error() string {
	return fmt.Sprintf("lex error at %s: %s", e.Pos, e.Text)
}

// Lexer scans one source buffer. The zero value is not usable; use New.
type Lexer struct {
	input []byte
	pos   int // current reading position in input
	line  int
	col   int
}

func New(input []byte) *Lexer {
	return &Lexer{input: input, line: 1, col: 1}
}

// Tokenize scans the whole input and returns the resulting stream.
func Tokenize(input []byte) (*token.Stream, error) {
	l := New(input)
	var tokens []token.Token
	for {
		tok, err := l.Next()
		if err != nil {
			return nil, err
		}
		if tok.Kind == token.EOF {
			return token.NewStream(tokens...), nil
		}
		tokens = append(tokens, tok)
	}
}

// Next scans the next token. At the end of input it returns an EOF token.
func (l *Lexer) Next() (token.Token, error) {
	if err := l.skipWhitespaceAndComments(); err != nil {
		return token.Token{}, err
	}

	start := l.position()
	if l.pos >= len(l.input) {
		return token.Token{Kind: token.EOF, Pos: start}, nil
	}

	c := l.input[l.pos]
	switch {
	case isLetter(c):
		lit := l.readIdentifier()
		if kind, ok := token.Keywords[lit]; ok {
			return token.Token{Kind: kind, Pos: start}, nil
		}
		return token.Token{Kind: token.Name, Literal: lit, Pos: start}, nil

	case isDigit(c):
		return token.Token{Kind: token.LiteralInteger, Literal: l.readNumber(), Pos: start}, nil

	case c == '"':
		lit, err := l.readString()
		if err != nil {
			return token.Token{}, err
		}
		return token.Token{Kind: token.LiteralString, Literal: lit, Pos: start}, nil
	}

	var kind token.Kind
	switch c {
	case '(':
		kind = token.LParen
	case ')':
		kind = token.RParen
	case '{':
		kind = token.LBrace
	case '}':
		kind = token.RBrace
	case ':':
		kind = token.Colon
	case ';':
		kind = token.Semicolon
	case ',':
		kind = token.Comma
	case '+':
		kind = token.Plus
	case '-':
		kind = token.Minus
	case '/':
		kind = token.Slash
	case '%':
		kind = token.Percent
	case '=':
		kind = token.Assign
		if l.peek(1) == '=' {
			kind = token.Equals
		}
	case '<':
		kind = token.Less
		if l.peek(1) == '=' {
			kind = token.LessEqual
		}
	default:
		return token.Token{}, &Error{Pos: start, Text: fmt.Sprintf("unexpected character %q", c)}
	}
	l.advance(len(kind))
	return token.Token{Kind: kind, Pos: start}, nil
}

func (l *Lexer) position() token.Pos {
	return token.Pos{Line: l.line, Column: l.col}
}

func (l *Lexer) peek(offset int) byte {
	if l.pos+offset >= len(l.input) {
		return 0
	}
	return l.input[l.pos+offset]
}

func (l *Lexer) advance(n int) {
	for i := 0; i < n && l.pos < len(l.input); i++ {
		if l.input[l.pos] == '\n' {
			l.line++
			l.col = 1
		} else {
			l.col++
		}
		l.pos++
	}
}

func (l *Lexer) skipWhitespaceAndComments() error {
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			l.advance(1)
		case c == '/' && l.peek(1) == '/':
			for l.pos < len(l.input) && l.input[l.pos] != '\n' {
				l.advance(1)
			}
		case c == '/' && l.peek(1) == '*':
			start := l.position()
			l.advance(2) // skip /*
			for !(l.peek(0) == '*' && l.peek(1) == '/') {
				if l.pos >= len(l.input) {
					return &Error{Pos: start, Text: "unterminated block comment"}
				}
				l.advance(1)
			}
			l.advance(2) // skip */
		default:
			return nil
		}
	}
	return nil
}

func isLetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || c == '_'
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func (l *Lexer) readIdentifier() string {
	start := l.pos
	for l.pos < len(l.input) && (isLetter(l.input[l.pos]) || isDigit(l.input[l.pos])) {
		l.advance(1)
	}
	return string(l.input[start:l.pos])
}

func (l *Lexer) readNumber() string {
	start := l.pos
	for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
		l.advance(1)
	}
	return string(l.input[start:l.pos])
}

func (l *Lexer) readString() (string, error) {
	start := l.position()
	l.advance(1) // skip opening "

	var sb strings.Builder
	for {
		if l.pos >= len(l.input) || l.input[l.pos] == '\n' {
			return "", &Error{Pos: start, Text: "unterminated string literal"}
		}
		c := l.input[l.pos]
		if c == '"' {
			l.advance(1)
			return sb.String(), nil
		}
		if c != '\\' {
			sb.WriteByte(c)
			l.advance(1)
			continue
		}

		escPos := l.position()
		switch l.peek(1) {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'r':
			sb.WriteByte('\r')
		case '0':
			sb.WriteByte(0)
		case '\\':
			sb.WriteByte('\\')
		case '"':
			sb.WriteByte('"')
		default:
			return "", &Error{Pos: escPos, Text: fmt.Sprintf("unknown escape sequence \\%c", l.peek(1))}
		}
		l.advance(2)
	}
}
