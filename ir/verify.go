package ir

import (
	"fmt"
	"strings"
)

// VerificationError lists every structural problem found in a module.
type VerificationError struct {
	Problems []string
}

func (e *VerificationError) Error() string {
	return "module verification failed:\n  " + strings.Join(e.Problems, "\n  ")
}

// Verify checks that m is structurally well formed and well typed. It
// returns nil or a *VerificationError.
func Verify(m *Module) error {
	v := &verifier{}

	globals := map[string]bool{}
	for _, g := range m.Globals {
		if globals[g.Name] {
			v.problem("global @%s defined twice", g.Name)
		}
		globals[g.Name] = true
		if len(g.Data) != g.Ty.Len {
			v.problem("global @%s: %d bytes of data for type %s", g.Name, len(g.Data), g.Ty)
		}
	}

	funcs := map[string]bool{}
	for _, f := range m.Functions {
		if funcs[f.Name] {
			v.problem("function @%s defined twice", f.Name)
		}
		funcs[f.Name] = true
		v.function(f)
	}

	if len(v.problems) > 0 {
		return &VerificationError{Problems: v.problems}
	}
	return nil
}

type verifier struct {
	fn       *Function
	block    *Block
	problems []string
}

func (v *verifier) problem(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if v.block != nil {
		msg = fmt.Sprintf("@%s, block %s: %s", v.fn.Name, v.block.Label, msg)
	} else if v.fn != nil {
		msg = fmt.Sprintf("@%s: %s", v.fn.Name, msg)
	}
	v.problems = append(v.problems, msg)
}

func (v *verifier) function(f *Function) {
	v.fn, v.block = f, nil
	defer func() { v.fn, v.block = nil, nil }()

	if len(f.Blocks) == 0 {
		v.problem("function has no body")
		return
	}

	owned := map[*Block]bool{}
	labels := map[string]bool{}
	for _, b := range f.Blocks {
		if labels[b.Label] {
			v.problem("block label %s used twice", b.Label)
		}
		labels[b.Label] = true
		owned[b] = true
	}

	for _, b := range f.Blocks {
		v.block = b
		if len(b.Instrs) == 0 {
			v.problem("empty block")
			continue
		}
		for i, instr := range b.Instrs {
			_, isTerm := instr.(Terminator)
			last := i == len(b.Instrs)-1
			if isTerm && !last {
				v.problem("terminator %q is followed by more instructions", instr)
			}
			if !isTerm && last {
				v.problem("block does not end in a terminator")
			}
			v.instr(instr, owned)
		}
	}
}

func (v *verifier) instr(instr Instr, owned map[*Block]bool) {
	switch i := instr.(type) {
	case *Alloca:
		if SizeOf(i.Elem) == 0 {
			v.problem("alloca of unsized type %s", i.Elem)
		}
	case *Store:
		pt, ok := i.Ptr.Type().(PointerType)
		if !ok {
			v.problem("store to non-pointer %s", typed(i.Ptr))
		} else if pt.Elem != i.Val.Type() {
			v.problem("store of %s into %s", typed(i.Val), typed(i.Ptr))
		}
	case *Load:
		pt, ok := i.Ptr.Type().(PointerType)
		if !ok {
			v.problem("load from non-pointer %s", typed(i.Ptr))
		} else if pt.Elem != i.Dst.Ty {
			v.problem("load of %s from %s", i.Dst.Ty, typed(i.Ptr))
		}
	case *Arith:
		v.sameInt(i.Op, i.X, i.Y)
	case *Cmp:
		v.sameInt("icmp "+string(i.Pred), i.X, i.Y)
	case *ElemPtr:
		if !IsPointer(i.Base.Type()) {
			v.problem("elemptr base %s is not a pointer", typed(i.Base))
		}
		if !IsInt(i.Index.Type()) {
			v.problem("elemptr index %s is not an integer", typed(i.Index))
		}
	case *Call:
		callee := i.Callee
		if len(i.Args) != len(callee.Params) {
			v.problem("call to @%s with %d arguments, want %d", callee.Name, len(i.Args), len(callee.Params))
			return
		}
		for n, arg := range i.Args {
			if want := callee.Params[n].Ty; arg.Type() != want {
				v.problem("argument %d of call to @%s is %s, want %s", n+1, callee.Name, typed(arg), want)
			}
		}
	case *Syscall:
		for n, arg := range i.Args {
			if !IsInt(arg.Type()) && !IsPointer(arg.Type()) {
				v.problem("syscall argument %d is %s", n+1, typed(arg))
			}
		}
	case *Jump:
		v.target(i.Target, owned)
	case *Branch:
		if i.Cond.Type() != I1 {
			v.problem("branch condition %s is not i1", typed(i.Cond))
		}
		v.target(i.Then, owned)
		v.target(i.Else, owned)
	case *Return:
		switch {
		case i.Value == nil && v.fn.Ret != Void:
			v.problem("ret void in function returning %s", v.fn.Ret)
		case i.Value != nil && v.fn.Ret == Void:
			v.problem("ret %s in void function", typed(i.Value))
		case i.Value != nil && i.Value.Type() != v.fn.Ret:
			v.problem("ret %s in function returning %s", typed(i.Value), v.fn.Ret)
		}
	default:
		v.problem("unknown instruction %T", instr)
	}
}

func (v *verifier) sameInt(op any, x, y Value) {
	if !IsInt(x.Type()) || x.Type() != y.Type() {
		v.problem("%s operands %s and %s must be integers of one type", op, typed(x), typed(y))
	}
}

func (v *verifier) target(b *Block, owned map[*Block]bool) {
	if b == nil || !owned[b] {
		label := "<nil>"
		if b != nil {
			label = b.Label
		}
		v.problem("branch to block %s outside the function", label)
	}
}
