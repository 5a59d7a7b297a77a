package ir

import (
	"fmt"
	"strconv"
)

// Value is an operand of an instruction.
type Value interface {
	Type() Type
	String() string
}

// Const is an integer immediate. Value always holds the sign-extended
// contents of the low Ty.Bits bits.
type Const struct {
	Ty    IntType
	Value int64
}

// ConstInt returns an immediate of type ty, truncating v to the width of
// ty the same way a hardware register would.
func ConstInt(ty IntType, v int64) *Const {
	if ty.Bits < 64 {
		shift := 64 - ty.Bits
		v = v << shift >> shift
	}
	return &Const{Ty: ty, Value: v}
}

// ConstBool returns an i1 immediate.
func ConstBool(b bool) *Const {
	if b {
		return &Const{Ty: I1, Value: -1}
	}
	return &Const{Ty: I1, Value: 0}
}

func (c *Const) Type() Type { return c.Ty }

func (c *Const) String() string {
	if c.Ty == I1 {
		return strconv.FormatBool(c.Value != 0)
	}
	return strconv.FormatInt(c.Value, 10)
}

// Temp is the result of an instruction or an incoming parameter. Each temp
// is assigned exactly once.
type Temp struct {
	ID   int
	Name string
	Ty   Type
}

func (t *Temp) Type() Type { return t.Ty }

func (t *Temp) String() string {
	if t.Name == "" {
		return fmt.Sprintf("%%%d", t.ID)
	}
	return fmt.Sprintf("%%%s.%d", t.Name, t.ID)
}

// Global is a module-level read-only byte buffer.
type Global struct {
	Name        string
	Ty          ArrayType
	Data        []byte
	Private     bool
	ReadOnly    bool
	UnnamedAddr bool
	Align       int
}

// GlobalPtr is a pointer to the first element of a global buffer.
type GlobalPtr struct {
	Global *Global
}

func (g *GlobalPtr) Type() Type     { return Ptr(g.Global.Ty.Elem) }
func (g *GlobalPtr) String() string { return "@" + g.Global.Name }

// Undef is the result of calling a void function.
type Undef struct {
	Ty Type
}

func (u *Undef) Type() Type     { return u.Ty }
func (u *Undef) String() string { return "undef" }

func typed(v Value) string {
	return v.Type().String() + " " + v.String()
}
