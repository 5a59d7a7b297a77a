package lower

import (
	"testing"

	"github.com/nalgeon/be"

	"github.com/baffl-lang/baffl/ir"
)

func TestScopeDefineAndLookup(t *testing.T) {
	s := NewScope(nil)
	cell := &ir.Temp{ID: 0, Name: "x", Ty: ir.Ptr(ir.I32)}

	_, ok := s.Lookup("x")
	be.True(t, !ok)

	err := s.Define("x", Binding{Cell: cell, Type: ir.I32})
	be.Err(t, err, nil)

	b, ok := s.Lookup("x")
	be.True(t, ok)
	be.Equal(t, b.Cell, ir.Value(cell))
	be.Equal(t, b.Type, ir.Type(ir.I32))
	be.True(t, !b.Mutable)
}

func TestScopeDuplicateInSameFrame(t *testing.T) {
	s := NewScope(nil)
	be.Err(t, s.Define("x", Binding{Type: ir.I32}), nil)
	be.Err(t, s.Define("x", Binding{Type: ir.I1}), ErrDuplicateDeclaration)
}

func TestScopeShadowing(t *testing.T) {
	outer := NewScope(nil)
	be.Err(t, outer.Define("x", Binding{Type: ir.I32}), nil)
	be.Err(t, outer.Define("y", Binding{Type: ir.I64}), nil)

	inner := NewScope(outer)
	be.Err(t, inner.Define("x", Binding{Type: ir.I1, Mutable: true}), nil)

	b, _ := inner.Lookup("x")
	be.Equal(t, b.Type, ir.Type(ir.I1))
	be.True(t, b.Mutable)

	// Outer names stay visible through the inner frame.
	b, ok := inner.Lookup("y")
	be.True(t, ok)
	be.Equal(t, b.Type, ir.Type(ir.I64))

	// The outer frame is untouched.
	b, _ = outer.Lookup("x")
	be.Equal(t, b.Type, ir.Type(ir.I32))
	be.True(t, inner.Parent() == outer)
}

func TestPushScopeNesting(t *testing.T) {
	c := newContext(Config{})
	be.True(t, c.scope == nil)

	popOuter := c.pushScope()
	outer := c.scope
	popInner := c.pushScope()
	be.True(t, c.scope.Parent() == outer)

	popInner()
	be.True(t, c.scope == outer)
	popOuter()
	be.True(t, c.scope == nil)
}

func TestPushScopeOutOfOrderPanics(t *testing.T) {
	c := newContext(Config{})
	popOuter := c.pushScope()
	c.pushScope()

	defer func() {
		be.True(t, recover() != nil)
	}()
	popOuter()
}

func TestFunctionTable(t *testing.T) {
	ft := NewFunctionTable()
	f := ir.NewFunction("f", ir.Void)
	g := ir.NewFunction("g", ir.I32)

	be.Err(t, ft.Add(f), nil)
	be.Err(t, ft.Add(g), nil)
	be.Err(t, ft.Add(ir.NewFunction("f", ir.I32)), ErrDuplicateFunction)

	got, ok := ft.Lookup("f")
	be.True(t, ok)
	be.True(t, got == f)
	_, ok = ft.Lookup("h")
	be.True(t, !ok)
	be.Equal(t, ft.Names(), []string{"f", "g"})
}

func TestTypes(t *testing.T) {
	types := NewTypes()
	tests := []struct {
		name     string
		expected ir.Type
	}{
		{"i32", ir.I32},
		{"i64", ir.I64},
		{"bool", ir.I1},
		{"char", ir.I8},
		{"string", ir.Ptr(ir.I8)},
		{"void", ir.Void},
	}
	for _, test := range tests {
		ty, err := types.Lookup(test.name)
		be.Err(t, err, nil)
		be.Equal(t, ty, test.expected)
	}

	_, err := types.Lookup("float")
	be.Err(t, err, ErrUnknownType)
	be.Err(t, err, `unknown type "float"`)

	be.Equal(t, types.StringBuffer(5), ir.ArrayType{Elem: ir.I8, Len: 6})
	be.Equal(t, types.Int(8), ir.I8)

	char, err := types.Lookup("char")
	be.Err(t, err, nil)
	be.Equal(t, char, ir.Type(types.Char()))
}
