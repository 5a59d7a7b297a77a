package ast

import "fmt"

// Equal reports whether a and b are structurally equal: same node kinds,
// same field values, and pairwise equal children. Node identity is never
// consulted. Function attributes compare as sets.
func Equal(a, b Node) bool {
	if isNil(a) || isNil(b) {
		return isNil(a) && isNil(b)
	}

	switch a := a.(type) {
	case *LiteralBool:
		b, ok := b.(*LiteralBool)
		return ok && a.Value == b.Value
	case *LiteralInt:
		b, ok := b.(*LiteralInt)
		return ok && a.Value == b.Value && a.Bits == b.Bits
	case *LiteralString:
		b, ok := b.(*LiteralString)
		return ok && a.Value == b.Value
	case *VarDecl:
		b, ok := b.(*VarDecl)
		return ok && a.Name == b.Name && a.Mutable == b.Mutable && Equal(a.Init, b.Init)
	case *VarAssign:
		b, ok := b.(*VarAssign)
		return ok && a.Name == b.Name && Equal(a.Value, b.Value)
	case *VarRef:
		b, ok := b.(*VarRef)
		return ok && a.Name == b.Name
	case *FunctionDecl:
		b, ok := b.(*FunctionDecl)
		if !ok || a.Name != b.Name || a.ReturnType != b.ReturnType {
			return false
		}
		if len(a.Params) != len(b.Params) {
			return false
		}
		for i := range a.Params {
			if a.Params[i] != b.Params[i] {
				return false
			}
		}
		return equalAttributes(a.Attributes, b.Attributes) && equalStmts(a.Body, b.Body)
	case *FunctionCall:
		b, ok := b.(*FunctionCall)
		if !ok || a.Name != b.Name || len(a.Args) != len(b.Args) {
			return false
		}
		for i := range a.Args {
			if !Equal(a.Args[i], b.Args[i]) {
				return false
			}
		}
		return true
	case *Import:
		b, ok := b.(*Import)
		return ok && a.Name == b.Name
	case *If:
		b, ok := b.(*If)
		return ok && Equal(a.Cond, b.Cond) && equalStmts(a.Then, b.Then)
	case *While:
		b, ok := b.(*While)
		return ok && Equal(a.Cond, b.Cond) && equalStmts(a.Body, b.Body)
	case *Return:
		b, ok := b.(*Return)
		return ok && Equal(a.Value, b.Value)
	case *BinaryOp:
		b, ok := b.(*BinaryOp)
		return ok && a.Op == b.Op && Equal(a.Left, b.Left) && Equal(a.Right, b.Right)
	default:
		panic(fmt.Sprintf("ast.Equal: unhandled node %T", a))
	}
}

// EqualPrograms compares two programs item by item.
func EqualPrograms(a, b Program) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

// isNil treats typed nil pointers stored in an interface as nil, so that
// Return{Value: nil} and Return{Value: (*VarRef)(nil)} are not told apart.
// Every node kind is covered.
func isNil(n Node) bool {
	if n == nil {
		return true
	}
	switch n := n.(type) {
	case *LiteralBool:
		return n == nil
	case *LiteralInt:
		return n == nil
	case *LiteralString:
		return n == nil
	case *VarRef:
		return n == nil
	case *FunctionCall:
		return n == nil
	case *BinaryOp:
		return n == nil
	case *VarDecl:
		return n == nil
	case *VarAssign:
		return n == nil
	case *FunctionDecl:
		return n == nil
	case *Import:
		return n == nil
	case *If:
		return n == nil
	case *While:
		return n == nil
	case *Return:
		return n == nil
	}
	return false
}

func equalStmts(a, b []Stmt) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func equalAttributes(a, b []Attribute) bool {
	set := make(map[Attribute]bool, len(a))
	for _, attr := range a {
		set[attr] = true
	}
	other := make(map[Attribute]bool, len(b))
	for _, attr := range b {
		if !set[attr] {
			return false
		}
		other[attr] = true
	}
	return len(set) == len(other)
}
