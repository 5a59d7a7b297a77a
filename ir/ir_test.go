package ir

import (
	"errors"
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

// newMain returns a module with an empty i32 @main whose entry block is the
// builder's insertion point.
func newMain() (*Module, *Function, *Builder) {
	m := NewModule("test")
	fn := NewFunction("main", I32)
	m.AddFunction(fn)
	b := NewBuilder()
	b.SetInsertPoint(fn, fn.AddBlock("entry"))
	return m, fn, b
}

func TestConstInt(t *testing.T) {
	tests := []struct {
		ty       IntType
		in       int64
		expected string
	}{
		{I32, 42, "42"},
		{I32, 1 << 32, "0"},
		{I32, 0xFFFFFFFF, "-1"},
		{I8, 255, "-1"},
		{I8, 0, "0"},
		{I64, -7, "-7"},
		{I1, 1, "true"},
		{I1, 0, "false"},
	}

	for _, test := range tests {
		be.Equal(t, ConstInt(test.ty, test.in).String(), test.expected)
	}
	be.Equal(t, ConstBool(true).String(), "true")
	be.Equal(t, ConstBool(true).Type(), Type(I1))
}

func TestTypes(t *testing.T) {
	be.Equal(t, Ptr(I8).String(), "i8*")
	be.Equal(t, ArrayType{Elem: I8, Len: 3}.String(), "[3 x i8]")
	be.True(t, Type(Ptr(I8)) == Type(Ptr(I8)))
	be.True(t, Type(Ptr(I8)) != Type(Ptr(I32)))
	be.Equal(t, SizeOf(I1), 1)
	be.Equal(t, SizeOf(I32), 4)
	be.Equal(t, SizeOf(Ptr(I8)), 8)
	be.Equal(t, SizeOf(ArrayType{Elem: I8, Len: 12}), 12)
	be.Equal(t, SizeOf(Void), 0)
}

func TestAddString(t *testing.T) {
	m := NewModule("test")
	a := m.AddString("hi")
	b := m.AddString("")

	be.Equal(t, a.Name, ".str")
	be.Equal(t, b.Name, ".str.1")
	be.Equal(t, a.Data, []byte{'h', 'i', 0})
	be.Equal(t, a.Ty, ArrayType{Elem: I8, Len: 3})
	be.True(t, a.Private && a.ReadOnly && a.UnnamedAddr)
	be.Equal(t, a.Align, 1)

	ptr := &GlobalPtr{Global: a}
	be.Equal(t, ptr.Type(), Type(Ptr(I8)))
	be.Equal(t, ptr.String(), "@.str")
}

func TestBlockLabelsAreUnique(t *testing.T) {
	fn := NewFunction("f", Void)
	be.Equal(t, fn.AddBlock("then").Label, "then")
	be.Equal(t, fn.NewBlock("then").Label, "then.1")
	be.Equal(t, fn.AddBlock("merge").Label, "merge")
	be.Equal(t, len(fn.Blocks), 2)
}

func TestAllocaGoesToEntryHead(t *testing.T) {
	_, fn, b := newMain()
	x := b.Alloca("x", I32)
	b.Store(ConstInt(I32, 1), x)

	body := fn.AddBlock("body")
	b.SetInsertPoint(fn, body)
	y := b.Alloca("y", I32)
	b.Store(ConstInt(I32, 2), y)

	entry := fn.Entry()
	be.Equal(t, len(entry.Instrs), 3)
	be.Equal(t, entry.Instrs[0].(*Alloca).Dst, x)
	be.Equal(t, entry.Instrs[1].(*Alloca).Dst, y)
	_, isStore := entry.Instrs[2].(*Store)
	be.True(t, isStore)
	be.Equal(t, len(body.Instrs), 1)
}

func TestPrint(t *testing.T) {
	m, fn, b := newMain()
	m.Metadata["source"] = "main.baffl"
	str := m.AddString("hi\n")

	x := b.Alloca("x", I32)
	b.Store(ConstInt(I32, 40), x)
	v := b.Load("x", x)
	sum := b.Arith(Add, v, ConstInt(I32, 2))
	cond := b.Cmp(SLT, sum, ConstInt(I32, 50))
	then := fn.AddBlock("then")
	merge := fn.NewBlock("merge")
	b.Branch(cond, then, merge)

	b.SetInsertPoint(fn, then)
	b.Ret(sum)

	fn.Append(merge)
	b.SetInsertPoint(fn, merge)
	p := b.ElemPtr(&GlobalPtr{Global: str}, ConstInt(I32, 1))
	b.Syscall(1, I32, ConstInt(I32, 1), p, ConstInt(I32, 2))
	b.Ret(ConstInt(I32, 0))

	expected := `; module test (ir 1.0.0)
!source = "main.baffl"
@.str = private unnamed_addr constant [4 x i8] c"hi\0A\00", align 1

define i32 @main() {
entry:
  %x.0 = alloca i32
  store i32 40, i32* %x.0
  %x.1 = load i32, i32* %x.0
  %2 = add i32 %x.1, 2
  %3 = icmp slt i32 %2, 50
  br i1 %3, label %then, label %merge
then:
  ret i32 %2
merge:
  %4 = elemptr i8* @.str, i32 1
  %5 = syscall i32 1(i32 1, i8* %4, i32 2)
  ret i32 0
}
`
	be.Equal(t, m.String(), expected)
	be.Err(t, Verify(m), nil)
}

func TestPrintCalls(t *testing.T) {
	m := NewModule("test")
	callee := NewFunction("f", Void)
	callee.AddParam("a", I32)
	callee.Attributes = []string{"nounwind"}
	b := NewBuilder()
	b.SetInsertPoint(callee, callee.AddBlock("entry"))
	b.Ret(nil)
	m.AddFunction(callee)

	caller := NewFunction("g", I64)
	b.SetInsertPoint(caller, caller.AddBlock("entry"))
	res := b.Call(callee, ConstInt(I32, 3))
	be.Equal(t, res.Type(), Type(Void))
	b.Ret(ConstInt(I64, 0))
	m.AddFunction(caller)

	be.Equal(t, callee.String(), "define void @f(i32 %a.0) nounwind {\nentry:\n  ret void\n}\n")
	be.True(t, strings.Contains(caller.String(), "  call void @f(i32 3)\n"))
	be.Err(t, Verify(m), nil)
}

func TestVerifyProblems(t *testing.T) {
	tests := []struct {
		name  string
		build func(m *Module, fn *Function, b *Builder)
		msg   string
	}{
		{
			"missing terminator",
			func(m *Module, fn *Function, b *Builder) {
				b.Alloca("x", I32)
			},
			"block does not end in a terminator",
		},
		{
			"code after return",
			func(m *Module, fn *Function, b *Builder) {
				b.Ret(ConstInt(I32, 0))
				b.Ret(ConstInt(I32, 1))
			},
			"is followed by more instructions",
		},
		{
			"empty block",
			func(m *Module, fn *Function, b *Builder) {
				b.Ret(ConstInt(I32, 0))
				fn.AddBlock("dangling")
			},
			"block dangling: empty block",
		},
		{
			"detached branch target",
			func(m *Module, fn *Function, b *Builder) {
				b.Jump(fn.NewBlock("nowhere"))
			},
			"branch to block nowhere outside the function",
		},
		{
			"wrong return type",
			func(m *Module, fn *Function, b *Builder) {
				b.Ret(ConstBool(true))
			},
			"ret i1 true in function returning i32",
		},
		{
			"void return in i32 function",
			func(m *Module, fn *Function, b *Builder) {
				b.Ret(nil)
			},
			"ret void in function returning i32",
		},
		{
			"mixed operand types",
			func(m *Module, fn *Function, b *Builder) {
				sum := b.Arith(Add, ConstBool(true), ConstInt(I32, 1))
				b.Ret(sum)
			},
			"add operands i1 true and i32 1 must be integers of one type",
		},
		{
			"non-boolean condition",
			func(m *Module, fn *Function, b *Builder) {
				exit := fn.NewBlock("exit")
				b.Branch(ConstInt(I32, 1), exit, exit)
				fn.Append(exit)
				b.SetInsertPoint(fn, exit)
				b.Ret(ConstInt(I32, 0))
			},
			"branch condition i32 1 is not i1",
		},
		{
			"store type mismatch",
			func(m *Module, fn *Function, b *Builder) {
				x := b.Alloca("x", I32)
				b.Store(ConstBool(false), x)
				b.Ret(ConstInt(I32, 0))
			},
			"store of i1 false into i32* %x.0",
		},
		{
			"load from non-pointer",
			func(m *Module, fn *Function, b *Builder) {
				b.Load("x", ConstInt(I32, 0))
				b.Ret(ConstInt(I32, 0))
			},
			"load from non-pointer i32 0",
		},
		{
			"void alloca",
			func(m *Module, fn *Function, b *Builder) {
				b.Alloca("x", Void)
				b.Ret(ConstInt(I32, 0))
			},
			"alloca of unsized type void",
		},
		{
			"call arity",
			func(m *Module, fn *Function, b *Builder) {
				b.Call(fn, ConstInt(I32, 1))
				b.Ret(ConstInt(I32, 0))
			},
			"call to @main with 1 arguments, want 0",
		},
		{
			"duplicate function",
			func(m *Module, fn *Function, b *Builder) {
				b.Ret(ConstInt(I32, 0))
				m.AddFunction(fn)
			},
			"function @main defined twice",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			m, fn, b := newMain()
			test.build(m, fn, b)
			err := Verify(m)
			be.Err(t, err, test.msg)

			var verr *VerificationError
			be.True(t, errors.As(err, &verr))
		})
	}
}

func TestVerifyCallArgumentTypes(t *testing.T) {
	m, _, b := newMain()
	callee := NewFunction("takesString", Void)
	callee.AddParam("s", Ptr(I8))
	cb := NewBuilder()
	cb.SetInsertPoint(callee, callee.AddBlock("entry"))
	cb.Ret(nil)
	m.AddFunction(callee)

	b.Call(callee, ConstInt(I32, 1))
	b.Ret(ConstInt(I32, 0))

	be.Err(t, Verify(m), "argument 1 of call to @takesString is i32 1, want i8*")
}
