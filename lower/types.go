package lower

import "github.com/baffl-lang/baffl/ir"

// Types is the catalog of type names usable in source. It is built once
// per compilation unit and only read afterwards.
type Types struct {
	byName map[string]ir.Type
}

func NewTypes() *Types {
	return &Types{byName: map[string]ir.Type{
		"bool":   ir.I1,
		"char":   ir.I8,
		"i32":    ir.I32,
		"i64":    ir.I64,
		"string": ir.Ptr(ir.I8),
		"void":   ir.Void,
	}}
}

// Lookup resolves a source type name.
func (t *Types) Lookup(name string) (ir.Type, error) {
	ty, ok := t.byName[name]
	if !ok {
		return nil, &ResolutionError{Err: ErrUnknownType, Name: name}
	}
	return ty, nil
}

// Int is the type of integer literals of the given width.
func (t *Types) Int(bits uint8) ir.IntType { return ir.IntType{Bits: int(bits)} }

// Char is the element type of strings.
func (t *Types) Char() ir.IntType { return ir.I8 }

// StringBuffer is the backing array for a string literal of n bytes plus
// its terminator.
func (t *Types) StringBuffer(n int) ir.ArrayType {
	return ir.ArrayType{Elem: ir.I8, Len: n + 1}
}
