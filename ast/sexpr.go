package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// ToSExpr renders a node as an s-expression. The output is stable and is
// what the markdown test documents assert against.
func ToSExpr(node Node) string {
	if isNil(node) {
		return "nil"
	}

	switch n := node.(type) {
	case *LiteralBool:
		return "(boolean " + strconv.FormatBool(n.Value) + ")"
	case *LiteralInt:
		if n.Bits != DefaultIntBits {
			return fmt.Sprintf("(integer %d i%d)", n.Value, n.Bits)
		}
		return "(integer " + strconv.FormatUint(n.Value, 10) + ")"
	case *LiteralString:
		return "(string " + strconv.Quote(n.Value) + ")"
	case *VarDecl:
		keyword := "let"
		if n.Mutable {
			keyword = "var"
		}
		return "(" + keyword + " " + strconv.Quote(n.Name) + " " + ToSExpr(n.Init) + ")"
	case *VarAssign:
		return "(assign " + strconv.Quote(n.Name) + " " + ToSExpr(n.Value) + ")"
	case *VarRef:
		return "(ident " + strconv.Quote(n.Name) + ")"
	case *FunctionDecl:
		var params []string
		for _, p := range n.Params {
			params = append(params, "(param "+strconv.Quote(p.Name)+" "+strconv.Quote(p.Type)+")")
		}
		return "(function " + strconv.Quote(n.Name) +
			" (" + strings.Join(params, " ") + ") " +
			strconv.Quote(n.ReturnType) + " " + blockSExpr(n.Body) + ")"
	case *FunctionCall:
		result := "(call " + strconv.Quote(n.Name)
		for _, arg := range n.Args {
			result += " " + ToSExpr(arg)
		}
		return result + ")"
	case *Import:
		return "(import " + strconv.Quote(n.Name) + ")"
	case *If:
		return "(if " + ToSExpr(n.Cond) + " " + blockSExpr(n.Then) + ")"
	case *While:
		return "(while " + ToSExpr(n.Cond) + " " + blockSExpr(n.Body) + ")"
	case *Return:
		if isNil(n.Value) {
			return "(return)"
		}
		return "(return " + ToSExpr(n.Value) + ")"
	case *BinaryOp:
		return "(binary " + strconv.Quote(n.Op.String()) + " " + ToSExpr(n.Left) + " " + ToSExpr(n.Right) + ")"
	default:
		panic(fmt.Sprintf("ast.ToSExpr: unhandled node %T", node))
	}
}

// ProgramSExpr renders a whole program as (program item...).
func ProgramSExpr(p Program) string {
	result := "(program"
	for _, item := range p {
		result += " " + ToSExpr(item)
	}
	return result + ")"
}

func blockSExpr(stmts []Stmt) string {
	result := "(block"
	for _, s := range stmts {
		result += " " + ToSExpr(s)
	}
	return result + ")"
}
