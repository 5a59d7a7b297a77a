package backend

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/baffl-lang/baffl/ir"
)

// EmitQBE writes m as QBE intermediate language. Every function is
// exported; string globals become private data definitions.
func EmitQBE(w io.Writer, m *ir.Module) error {
	q := &qbeWriter{w: w}
	q.writef("# module %s\n", m.Name)
	for _, g := range m.Globals {
		q.data(g)
	}
	for _, f := range m.Functions {
		q.writef("\n")
		q.function(f)
	}
	return q.err
}

type qbeWriter struct {
	w    io.Writer
	err  error
	temp int
}

func (q *qbeWriter) writef(format string, args ...any) {
	if q.err != nil {
		return
	}
	_, q.err = fmt.Fprintf(q.w, format, args...)
}

// insn writes one instruction. dst may be empty for instructions without
// a result.
func (q *qbeWriter) insn(dst string, ty byte, opcode string, operands ...string) {
	ops := strings.Join(operands, ", ")
	if ops != "" {
		ops = " " + ops
	}
	if dst == "" {
		q.writef("\t%s%s\n", opcode, ops)
	} else {
		q.writef("\t%s =%c %s%s\n", dst, ty, opcode, ops)
	}
}

// scratch returns a fresh temporary that cannot clash with IR temps.
func (q *qbeWriter) scratch() string {
	q.temp++
	return fmt.Sprintf("%%_q%d", q.temp)
}

// qbeTemp names an IR temp. QBE identifiers may not start with a digit.
func qbeTemp(t *ir.Temp) string {
	if t.Name == "" {
		return fmt.Sprintf("%%t%d", t.ID)
	}
	return fmt.Sprintf("%%%s.%d", t.Name, t.ID)
}

// baseType maps an IR type to a QBE base type: w for values that fit in
// 32 bits, l for 64-bit integers and pointers.
func baseType(t ir.Type) byte {
	switch t := t.(type) {
	case ir.IntType:
		if t.Bits > 32 {
			return 'l'
		}
		return 'w'
	case ir.PointerType:
		return 'l'
	default:
		panic(fmt.Sprintf("backend: no QBE base type for %s", t))
	}
}

// memSuffix is the suffix of load and store opcodes for t.
func memSuffix(t ir.Type) string {
	if it, ok := t.(ir.IntType); ok && it.Bits <= 8 {
		return "b"
	}
	return string(baseType(t))
}

// SyscallSymbol is the C library routine raw system calls go through. No
// function in a module may take this name.
const SyscallSymbol = "syscall"

// symbol names a global. Names are kept as they are: QBE accepts '.' in
// identifiers, and the compiler's own globals (.str, .str.1, ...) use it
// so that they never collide with source-level names.
func symbol(name string) string {
	return "$" + name
}

func operand(v ir.Value) string {
	switch v := v.(type) {
	case *ir.Const:
		if v.Ty == ir.I1 {
			if v.Value != 0 {
				return "1"
			}
			return "0"
		}
		return strconv.FormatInt(v.Value, 10)
	case *ir.Temp:
		return qbeTemp(v)
	case *ir.GlobalPtr:
		return symbol(v.Global.Name)
	case *ir.Undef:
		return "0"
	default:
		panic(fmt.Sprintf("backend: unhandled value %T", v))
	}
}

func (q *qbeWriter) data(g *ir.Global) {
	linkage := "export "
	if g.Private {
		linkage = ""
	}
	q.writef("%sdata %s = align %d { %s }\n", linkage, symbol(g.Name), max(g.Align, 1), dataItems(g.Data))
}

// dataItems encodes bytes as QBE data items, grouping printable runs into
// string literals.
func dataItems(data []byte) string {
	var items []string
	var run strings.Builder
	flush := func() {
		if run.Len() > 0 {
			items = append(items, `b "`+run.String()+`"`)
			run.Reset()
		}
	}
	for _, ch := range data {
		if ' ' <= ch && ch <= '~' && ch != '"' && ch != '\\' {
			run.WriteByte(ch)
			continue
		}
		flush()
		items = append(items, fmt.Sprintf("b %d", ch))
	}
	flush()
	return strings.Join(items, ", ")
}

func (q *qbeWriter) function(f *ir.Function) {
	q.temp = 0

	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = fmt.Sprintf("%c %s", baseType(p.Ty), qbeTemp(p))
	}
	ret := ""
	if f.Ret != ir.Void {
		ret = string(baseType(f.Ret)) + " "
	}
	q.writef("export function %s%s(%s) {\n", ret, symbol(f.Name), strings.Join(params, ", "))
	for _, b := range f.Blocks {
		q.writef("@%s\n", b.Label)
		for _, instr := range b.Instrs {
			q.instr(instr)
		}
	}
	q.writef("}\n")
}

func (q *qbeWriter) instr(instr ir.Instr) {
	switch i := instr.(type) {
	case *ir.Alloca:
		size := ir.SizeOf(i.Elem)
		op := "alloc4"
		if size > 4 {
			op = "alloc8"
		}
		q.insn(qbeTemp(i.Dst), 'l', op, strconv.Itoa(size))
	case *ir.Store:
		q.insn("", 0, "store"+memSuffix(i.Val.Type()), operand(i.Val), operand(i.Ptr))
	case *ir.Load:
		op := "load" + memSuffix(i.Dst.Ty)
		if op == "loadb" {
			op = "loadsb"
		}
		q.insn(qbeTemp(i.Dst), baseType(i.Dst.Ty), op, operand(i.Ptr))
	case *ir.Arith:
		op := map[ir.ArithOp]string{ir.Add: "add", ir.Sub: "sub", ir.SDiv: "div", ir.SRem: "rem"}[i.Op]
		q.insn(qbeTemp(i.Dst), baseType(i.Dst.Ty), op, operand(i.X), operand(i.Y))
	case *ir.Cmp:
		op := "c" + map[ir.CmpPred]string{ir.EQ: "eq", ir.NE: "ne", ir.SLT: "slt", ir.SLE: "sle"}[i.Pred]
		op += string(baseType(i.X.Type()))
		q.insn(qbeTemp(i.Dst), 'w', op, operand(i.X), operand(i.Y))
	case *ir.ElemPtr:
		q.elemPtr(i)
	case *ir.Call:
		args := make([]string, len(i.Args))
		for n, a := range i.Args {
			args[n] = fmt.Sprintf("%c %s", baseType(a.Type()), operand(a))
		}
		call := fmt.Sprintf("%s(%s)", symbol(i.Callee.Name), strings.Join(args, ", "))
		if i.Dst == nil {
			q.insn("", 0, "call", call)
		} else {
			q.insn(qbeTemp(i.Dst), baseType(i.Dst.Ty), "call", call)
		}
	case *ir.Syscall:
		// libc syscall(long number, ...): every argument travels as a long.
		args := []string{"l " + strconv.FormatInt(i.Num, 10), "..."}
		for _, a := range i.Args {
			args = append(args, "l "+q.widen(a))
		}
		q.insn(qbeTemp(i.Dst), baseType(i.Dst.Ty), "call", symbol(SyscallSymbol)+"("+strings.Join(args, ", ")+")")
	case *ir.Jump:
		q.insn("", 0, "jmp", "@"+i.Target.Label)
	case *ir.Branch:
		q.insn("", 0, "jnz", operand(i.Cond), "@"+i.Then.Label, "@"+i.Else.Label)
	case *ir.Return:
		if i.Value == nil {
			q.insn("", 0, "ret")
		} else {
			q.insn("", 0, "ret", operand(i.Value))
		}
	default:
		panic(fmt.Sprintf("backend: unhandled instruction %T", instr))
	}
}

// widen sign-extends w operands to l.
func (q *qbeWriter) widen(v ir.Value) string {
	if baseType(v.Type()) == 'l' {
		return operand(v)
	}
	if _, ok := v.(*ir.Const); ok {
		return operand(v)
	}
	t := q.scratch()
	q.insn(t, 'l', "extsw", operand(v))
	return t
}

func (q *qbeWriter) elemPtr(i *ir.ElemPtr) {
	elem := i.Base.Type().(ir.PointerType).Elem
	offset := q.widen(i.Index)
	if size := ir.SizeOf(elem); size != 1 {
		scaled := q.scratch()
		q.insn(scaled, 'l', "mul", offset, strconv.Itoa(size))
		offset = scaled
	}
	q.insn(qbeTemp(i.Dst), 'l', "add", operand(i.Base), offset)
}
