// Package ast defines the program tree produced by the parser.
//
// The node set is closed: Node, Expr, Stmt and TopLevel are sealed with
// unexported marker methods, so every switch over nodes in this module
// can be exhaustive.
package ast

// Node is any program tree node.
type Node interface {
	node()
}

// Expr is a node that produces a value.
type Expr interface {
	Node
	expr()
}

// Stmt is a node that may appear in a function body.
type Stmt interface {
	Node
	stmt()
}

// TopLevel is a node that may appear at the top of a program.
type TopLevel interface {
	Node
	topLevel()
}

// Program is the ordered list of top-level items of one compilation unit.
type Program []TopLevel

type LiteralBool struct {
	Value bool
}

// LiteralInt is an integer immediate. Bits is the IR width of the
// constant; source literals are always 32 bits wide.
type LiteralInt struct {
	Value uint64
	Bits  uint8
}

// DefaultIntBits is the width of integer literals written in source.
const DefaultIntBits = 32

// Int returns a 32-bit integer literal.
func Int(v uint64) *LiteralInt {
	return &LiteralInt{Value: v, Bits: DefaultIntBits}
}

type LiteralString struct {
	Value string
}

// VarDecl declares a new binding in the current scope. `let` bindings are
// immutable, `var` bindings are mutable.
type VarDecl struct {
	Name    string
	Init    Expr
	Mutable bool
}

type VarAssign struct {
	Name  string
	Value Expr
}

type VarRef struct {
	Name string
}

type Param struct {
	Name string
	Type string
}

// Attribute marks a function with a property for the backend.
type Attribute string

const (
	AttrIntrinsic Attribute = "intrinsic"
	AttrNoUnwind  Attribute = "nounwind"
)

// FunctionDecl is a function definition. ReturnType is "void" when the
// source omits it.
type FunctionDecl struct {
	Name       string
	ReturnType string
	Params     []Param
	Body       []Stmt
	Attributes []Attribute
}

// HasAttribute reports whether attr is set on the function.
func (f *FunctionDecl) HasAttribute(attr Attribute) bool {
	for _, a := range f.Attributes {
		if a == attr {
			return true
		}
	}
	return false
}

// FunctionCall is usable both as an expression and as a statement.
type FunctionCall struct {
	Name string
	Args []Expr
}

type Import struct {
	Name string
}

// If has no else branch and produces no value.
type If struct {
	Cond Expr
	Then []Stmt
}

type While struct {
	Cond Expr
	Body []Stmt
}

// Return leaves the enclosing function. Value is nil for a bare `return;`.
type Return struct {
	Value Expr
}

// BinaryOpKind identifies a binary operator.
type BinaryOpKind int

const (
	Plus BinaryOpKind = iota
	Minus
	Div
	Mod
	Eq
	Lt
	Le
)

func (k BinaryOpKind) String() string {
	switch k {
	case Plus:
		return "+"
	case Minus:
		return "-"
	case Div:
		return "/"
	case Mod:
		return "%"
	case Eq:
		return "=="
	case Lt:
		return "<"
	case Le:
		return "<="
	default:
		return "?"
	}
}

// IsComparison reports whether the operator yields a boolean.
func (k BinaryOpKind) IsComparison() bool {
	return k == Eq || k == Lt || k == Le
}

type BinaryOp struct {
	Op    BinaryOpKind
	Left  Expr
	Right Expr
}

func (*LiteralBool) node()   {}
func (*LiteralInt) node()    {}
func (*LiteralString) node() {}
func (*VarDecl) node()       {}
func (*VarAssign) node()     {}
func (*VarRef) node()        {}
func (*FunctionDecl) node()  {}
func (*FunctionCall) node()  {}
func (*Import) node()        {}
func (*If) node()            {}
func (*While) node()         {}
func (*Return) node()        {}
func (*BinaryOp) node()      {}

func (*LiteralBool) expr()   {}
func (*LiteralInt) expr()    {}
func (*LiteralString) expr() {}
func (*VarRef) expr()        {}
func (*FunctionCall) expr()  {}
func (*BinaryOp) expr()      {}

func (*VarDecl) stmt()      {}
func (*VarAssign) stmt()    {}
func (*FunctionCall) stmt() {}
func (*If) stmt()           {}
func (*While) stmt()        {}
func (*Return) stmt()       {}

func (*FunctionDecl) topLevel() {}
func (*Import) topLevel()       {}

// IsTerminator reports whether s unconditionally ends control flow in its
// block. Only Return qualifies: an If has no else branch and a While may
// run zero times, so neither can guarantee termination.
func IsTerminator(s Stmt) bool {
	_, ok := s.(*Return)
	return ok
}

// EndsInTerminator reports whether the last statement of body is a
// terminator.
func EndsInTerminator(body []Stmt) bool {
	return len(body) > 0 && IsTerminator(body[len(body)-1])
}
