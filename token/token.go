// Package token defines the tokens consumed by the parser and the
// pull-based cursor over them.
package token

import (
	"fmt"
	"strconv"
)

// Kind is the type of token (identifier, operator, literal, etc.).
type Kind string

const (
	// Special tokens
	EOF     Kind = "EOF"
	Illegal Kind = "ILLEGAL"

	// Identifiers + literals
	Name           Kind = "name"            // main, foo, _bar
	LiteralInteger Kind = "literal_integer" // 12345
	LiteralString  Kind = "literal_string"  // "hello"

	// Operators
	Assign    Kind = "="
	Plus      Kind = "+"
	Minus     Kind = "-"
	Slash     Kind = "/"
	Percent   Kind = "%"
	Equals    Kind = "=="
	Less      Kind = "<"
	LessEqual Kind = "<="

	// Delimiters
	LParen    Kind = "("
	RParen    Kind = ")"
	LBrace    Kind = "{"
	RBrace    Kind = "}"
	Colon     Kind = ":"
	Semicolon Kind = ";"
	Comma     Kind = ","

	// Keywords
	Function Kind = "function"
	Let      Kind = "let"
	Var      Kind = "var"
	Return   Kind = "return"
	If       Kind = "if"
	While    Kind = "while"
	True     Kind = "true"
	False    Kind = "false"
	Import   Kind = "import"
)

// Keywords maps reserved spellings to their kinds. "fun" is kept as an
// alias of "function".
var Keywords = map[string]Kind{
	"function": Function,
	"fun":      Function,
	"let":      Let,
	"var":      Var,
	"return":   Return,
	"if":       If,
	"while":    While,
	"true":     True,
	"false":    False,
	"import":   Import,
}

// Pos is a 1-based line/column position in the source.
type Pos struct {
	Line   int
	Column int
}

func (p Pos) String() string {
	if p.Line == 0 {
		return "?"
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Token is a single lexical token. Literal holds the payload of names,
// integer literals and string literals.
type Token struct {
	Kind    Kind
	Literal string
	Pos     Pos
}

func (t Token) String() string {
	switch t.Kind {
	case Name:
		return "name [" + t.Literal + "]"
	case LiteralInteger:
		return "integer [" + t.Literal + "]"
	case LiteralString:
		return "string " + strconv.Quote(t.Literal)
	case EOF:
		return "end of input"
	default:
		return "`" + string(t.Kind) + "`"
	}
}

// Int decodes the payload of an integer literal.
func (t Token) Int() (uint64, error) {
	return strconv.ParseUint(t.Literal, 10, 64)
}
