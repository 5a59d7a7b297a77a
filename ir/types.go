// Package ir is a small backend-agnostic intermediate representation:
// modules of functions made of basic blocks, each ending in exactly one
// terminator.
package ir

import "fmt"

// Type is an IR type. Types are plain values and compare with ==.
type Type interface {
	String() string
	isType()
}

// IntType is a two's-complement integer of Bits width. Signedness is a
// property of the operations, not of the type.
type IntType struct {
	Bits int
}

type PointerType struct {
	Elem Type
}

type ArrayType struct {
	Elem Type
	Len  int
}

type VoidType struct{}

var (
	I1   = IntType{Bits: 1}
	I8   = IntType{Bits: 8}
	I32  = IntType{Bits: 32}
	I64  = IntType{Bits: 64}
	Void = VoidType{}
)

// Ptr returns the pointer type to elem.
func Ptr(elem Type) PointerType {
	return PointerType{Elem: elem}
}

func (t IntType) String() string     { return fmt.Sprintf("i%d", t.Bits) }
func (t PointerType) String() string { return t.Elem.String() + "*" }
func (t ArrayType) String() string   { return fmt.Sprintf("[%d x %s]", t.Len, t.Elem) }
func (VoidType) String() string      { return "void" }

func (IntType) isType()     {}
func (PointerType) isType() {}
func (ArrayType) isType()   {}
func (VoidType) isType()    {}

// SizeOf reports the storage size of t in bytes on a 64-bit target.
func SizeOf(t Type) int {
	switch t := t.(type) {
	case IntType:
		if t.Bits <= 8 {
			return 1
		}
		return t.Bits / 8
	case PointerType:
		return 8
	case ArrayType:
		return t.Len * SizeOf(t.Elem)
	default:
		return 0
	}
}

// IsInt reports whether t is an integer type.
func IsInt(t Type) bool {
	_, ok := t.(IntType)
	return ok
}

// IsPointer reports whether t is a pointer type.
func IsPointer(t Type) bool {
	_, ok := t.(PointerType)
	return ok
}
