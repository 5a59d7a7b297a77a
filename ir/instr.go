package ir

import (
	"fmt"
	"strings"
)

// Instr is a single IR instruction.
type Instr interface {
	String() string
	isInstr()
}

// Terminator is an instruction that ends a basic block.
type Terminator interface {
	Instr
	Successors() []*Block
}

// Alloca reserves a stack cell for one value of type Elem. Dst has type
// Elem*.
type Alloca struct {
	Dst  *Temp
	Elem Type
}

type Store struct {
	Val Value
	Ptr Value
}

type Load struct {
	Dst *Temp
	Ptr Value
}

type ArithOp string

const (
	Add  ArithOp = "add"
	Sub  ArithOp = "sub"
	SDiv ArithOp = "sdiv"
	SRem ArithOp = "srem"
)

type Arith struct {
	Dst  *Temp
	Op   ArithOp
	X, Y Value
}

// CmpPred is an integer comparison predicate. Ordered predicates are
// signed.
type CmpPred string

const (
	EQ  CmpPred = "eq"
	NE  CmpPred = "ne"
	SLT CmpPred = "slt"
	SLE CmpPred = "sle"
)

// Cmp compares two integers of the same type; Dst is i1.
type Cmp struct {
	Dst  *Temp
	Pred CmpPred
	X, Y Value
}

// ElemPtr offsets Base by Index elements of Base's element type.
type ElemPtr struct {
	Dst   *Temp
	Base  Value
	Index Value
}

// Call invokes Callee. Dst is nil when the callee returns void.
type Call struct {
	Dst    *Temp
	Callee *Function
	Args   []Value
}

// Syscall issues raw system call Num with Args and yields the kernel's
// return value in Dst.
type Syscall struct {
	Dst  *Temp
	Num  int64
	Args []Value
}

type Jump struct {
	Target *Block
}

// Branch transfers control to Then if Cond (an i1) is true, else to Else.
type Branch struct {
	Cond       Value
	Then, Else *Block
}

// Return leaves the function. Value is nil for a void return.
type Return struct {
	Value Value
}

func (i *Alloca) String() string {
	return fmt.Sprintf("%s = alloca %s", i.Dst, i.Elem)
}

func (i *Store) String() string {
	return fmt.Sprintf("store %s, %s", typed(i.Val), typed(i.Ptr))
}

func (i *Load) String() string {
	return fmt.Sprintf("%s = load %s, %s", i.Dst, i.Dst.Ty, typed(i.Ptr))
}

func (i *Arith) String() string {
	return fmt.Sprintf("%s = %s %s, %s", i.Dst, i.Op, typed(i.X), i.Y)
}

func (i *Cmp) String() string {
	return fmt.Sprintf("%s = icmp %s %s, %s", i.Dst, i.Pred, typed(i.X), i.Y)
}

func (i *ElemPtr) String() string {
	return fmt.Sprintf("%s = elemptr %s, %s", i.Dst, typed(i.Base), typed(i.Index))
}

func (i *Call) String() string {
	args := make([]string, len(i.Args))
	for n, a := range i.Args {
		args[n] = typed(a)
	}
	call := fmt.Sprintf("call %s @%s(%s)", i.Callee.Ret, i.Callee.Name, strings.Join(args, ", "))
	if i.Dst == nil {
		return call
	}
	return fmt.Sprintf("%s = %s", i.Dst, call)
}

func (i *Syscall) String() string {
	args := make([]string, len(i.Args))
	for n, a := range i.Args {
		args[n] = typed(a)
	}
	return fmt.Sprintf("%s = syscall %s %d(%s)", i.Dst, i.Dst.Ty, i.Num, strings.Join(args, ", "))
}

func (i *Jump) String() string {
	return "br label %" + i.Target.Label
}

func (i *Branch) String() string {
	return fmt.Sprintf("br %s, label %%%s, label %%%s", typed(i.Cond), i.Then.Label, i.Else.Label)
}

func (i *Return) String() string {
	if i.Value == nil {
		return "ret void"
	}
	return "ret " + typed(i.Value)
}

func (i *Jump) Successors() []*Block   { return []*Block{i.Target} }
func (i *Branch) Successors() []*Block { return []*Block{i.Then, i.Else} }
func (i *Return) Successors() []*Block { return nil }

func (*Alloca) isInstr()  {}
func (*Store) isInstr()   {}
func (*Load) isInstr()    {}
func (*Arith) isInstr()   {}
func (*Cmp) isInstr()     {}
func (*ElemPtr) isInstr() {}
func (*Call) isInstr()    {}
func (*Syscall) isInstr() {}
func (*Jump) isInstr()    {}
func (*Branch) isInstr()  {}
func (*Return) isInstr()  {}
