// Package parser is a recursive-descent parser from a token.Stream to an
// ast.Program. There is no error recovery: the first error aborts the unit.
package parser

import (
	"fmt"
	"strings"

	"github.com/baffl-lang/baffl/ast"
	"github.com/baffl-lang/baffl/token"
)

// Error is a ParseError: the token at Actual.Pos was not acceptable.
type Error struct {
	Expected []token.Kind
	Actual   token.Token
	Reason   string
}

func (e *Error) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "parse error at %s: ", e.Actual.Pos)
	if e.Reason != "" {
		sb.WriteString(e.Reason)
	} else {
		sb.WriteString("unexpected token")
	}
	if len(e.Expected) > 0 {
		expected := make([]string, len(e.Expected))
		for i, k := range e.Expected {
			expected[i] = "`" + string(k) + "`"
		}
		fmt.Fprintf(&sb, ": expected %s", strings.Join(expected, " or "))
	}
	fmt.Fprintf(&sb, ", got %s", e.Actual)
	return sb.String()
}

// binaryOps maps operator tokens to AST operators. All operators share one
// precedence level and fold left to right.
var binaryOps = map[token.Kind]ast.BinaryOpKind{
	token.Plus:      ast.Plus,
	token.Minus:     ast.Minus,
	token.Slash:     ast.Div,
	token.Percent:   ast.Mod,
	token.Equals:    ast.Eq,
	token.Less:      ast.Lt,
	token.LessEqual: ast.Le,
}

type parser struct {
	tokens *token.Stream
}

// Parse consumes the whole stream and returns the top-level items in order.
func Parse(tokens *token.Stream) (prog ast.Program, err error) {
	p := &parser{tokens: tokens}
	defer p.recover(&err)

	prog = ast.Program{}
	for !tokens.Empty() {
		prog = append(prog, p.parseTopLevel())
	}
	return prog, nil
}

// ParseExpression parses a single expression. Trailing tokens are left in
// the stream.
func ParseExpression(tokens *token.Stream) (expr ast.Expr, err error) {
	p := &parser{tokens: tokens}
	defer p.recover(&err)
	return p.parseExpression(), nil
}

// ParseStatement parses a single statement. Trailing tokens are left in
// the stream.
func ParseStatement(tokens *token.Stream) (stmt ast.Stmt, err error) {
	p := &parser{tokens: tokens}
	defer p.recover(&err)
	return p.parseStatement(), nil
}

// recover converts a panicking *Error into a returned error. Other panics
// are bugs and propagate.
func (p *parser) recover(err *error) {
	if r := recover(); r != nil {
		perr, ok := r.(*Error)
		if !ok {
			panic(r)
		}
		*err = perr
	}
}

func (p *parser) fail(reason string, expected ...token.Kind) {
	panic(&Error{Expected: expected, Actual: p.tokens.Peek(), Reason: reason})
}

func (p *parser) peekIs(kind token.Kind) bool {
	return p.tokens.Peek().Kind == kind
}

// expect pops the front token, which must be of the given kind.
func (p *parser) expect(kind token.Kind) token.Token {
	if !p.peekIs(kind) {
		p.fail("", kind)
	}
	return p.tokens.Pop()
}

func (p *parser) expectName() string {
	return p.expect(token.Name).Literal
}

func (p *parser) parseTopLevel() ast.TopLevel {
	switch p.tokens.Peek().Kind {
	case token.Import:
		p.tokens.Pop()
		name := p.expectName()
		p.expect(token.Semicolon)
		return &ast.Import{Name: name}
	case token.Function:
		return p.parseFunction()
	default:
		p.fail("expected top-level item", token.Import, token.Function)
		return nil
	}
}

func (p *parser) parseFunction() *ast.FunctionDecl {
	p.expect(token.Function)
	fn := &ast.FunctionDecl{Name: p.expectName(), ReturnType: "void"}

	p.expect(token.LParen)
	if !p.peekIs(token.RParen) {
		for {
			name := p.expectName()
			p.expect(token.Colon)
			fn.Params = append(fn.Params, ast.Param{Name: name, Type: p.expectName()})
			if !p.peekIs(token.Comma) {
				break
			}
			p.tokens.Pop()
		}
	}
	p.expect(token.RParen)

	if p.peekIs(token.Colon) {
		p.tokens.Pop()
		fn.ReturnType = p.expectName()
	}

	fn.Body = p.parseBlock()
	return fn
}

func (p *parser) parseBlock() []ast.Stmt {
	p.expect(token.LBrace)
	stmts := []ast.Stmt{}
	for !p.peekIs(token.RBrace) {
		if p.peekIs(token.EOF) {
			p.fail("unterminated block", token.RBrace)
		}
		stmts = append(stmts, p.parseStatement())
	}
	p.tokens.Pop()
	return stmts
}

func (p *parser) parseStatement() ast.Stmt {
	switch tok := p.tokens.Peek(); tok.Kind {
	case token.Return:
		p.tokens.Pop()
		ret := &ast.Return{}
		if !p.peekIs(token.Semicolon) {
			ret.Value = p.parseExpression()
		}
		p.expect(token.Semicolon)
		return ret

	case token.Let, token.Var:
		p.tokens.Pop()
		decl := &ast.VarDecl{Name: p.expectName(), Mutable: tok.Kind == token.Var}
		p.expect(token.Assign)
		decl.Init = p.parseExpression()
		p.expect(token.Semicolon)
		return decl

	case token.Name:
		p.tokens.Pop()
		var stmt ast.Stmt
		switch p.tokens.Peek().Kind {
		case token.Assign:
			p.tokens.Pop()
			stmt = &ast.VarAssign{Name: tok.Literal, Value: p.parseExpression()}
		case token.LParen:
			stmt = p.parseCall(tok.Literal)
		default:
			p.fail("expected assignment or call", token.Assign, token.LParen)
		}
		p.expect(token.Semicolon)
		return stmt

	case token.If:
		p.tokens.Pop()
		p.expect(token.LParen)
		cond := p.parseExpression()
		p.expect(token.RParen)
		return &ast.If{Cond: cond, Then: p.parseBlock()}

	case token.While:
		p.tokens.Pop()
		p.expect(token.LParen)
		cond := p.parseExpression()
		p.expect(token.RParen)
		return &ast.While{Cond: cond, Body: p.parseBlock()}

	default:
		p.fail("unsupported statement",
			token.Return, token.Let, token.Var, token.Name, token.If, token.While)
		return nil
	}
}

// parseExpression parses Primary (BinOp Primary)*, folding to the left.
func (p *parser) parseExpression() ast.Expr {
	left := p.parsePrimary()
	for {
		op, ok := binaryOps[p.tokens.Peek().Kind]
		if !ok {
			return left
		}
		p.tokens.Pop()
		left = &ast.BinaryOp{Op: op, Left: left, Right: p.parsePrimary()}
	}
}

func (p *parser) parsePrimary() ast.Expr {
	switch tok := p.tokens.Peek(); tok.Kind {
	case token.LiteralInteger:
		v, err := tok.Int()
		if err != nil {
			p.fail("integer literal out of range")
		}
		p.tokens.Pop()
		return ast.Int(v)
	case token.True, token.False:
		p.tokens.Pop()
		return &ast.LiteralBool{Value: tok.Kind == token.True}
	case token.LiteralString:
		p.tokens.Pop()
		return &ast.LiteralString{Value: tok.Literal}
	case token.Name:
		p.tokens.Pop()
		if p.peekIs(token.LParen) {
			return p.parseCall(tok.Literal)
		}
		return &ast.VarRef{Name: tok.Literal}
	default:
		p.fail("expected expression",
			token.LiteralInteger, token.True, token.False, token.LiteralString, token.Name)
		return nil
	}
}

// parseCall parses `( Args )` after the callee name has been consumed.
func (p *parser) parseCall(name string) *ast.FunctionCall {
	p.expect(token.LParen)
	call := &ast.FunctionCall{Name: name}
	if !p.peekIs(token.RParen) {
		for {
			call.Args = append(call.Args, p.parseExpression())
			if !p.peekIs(token.Comma) {
				break
			}
			p.tokens.Pop()
		}
	}
	p.expect(token.RParen)
	return call
}
