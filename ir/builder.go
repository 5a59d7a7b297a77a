package ir

// Builder appends instructions at an explicit insertion point.
type Builder struct {
	fn    *Function
	block *Block
}

func NewBuilder() *Builder {
	return &Builder{}
}

// SetInsertPoint makes subsequent instructions append to block, which
// belongs to fn.
func (b *Builder) SetInsertPoint(fn *Function, block *Block) {
	b.fn = fn
	b.block = block
}

func (b *Builder) Function() *Function { return b.fn }
func (b *Builder) Block() *Block       { return b.block }

func (b *Builder) emit(i Instr) {
	b.block.Instrs = append(b.block.Instrs, i)
}

// Alloca reserves a cell of type elem. Cells always live at the head of the
// entry block, after any cells already there, whatever the insertion point.
func (b *Builder) Alloca(name string, elem Type) *Temp {
	dst := b.fn.NewTemp(name, Ptr(elem))
	entry := b.fn.Entry()

	n := 0
	for n < len(entry.Instrs) {
		if _, ok := entry.Instrs[n].(*Alloca); !ok {
			break
		}
		n++
	}
	entry.Instrs = append(entry.Instrs, nil)
	copy(entry.Instrs[n+1:], entry.Instrs[n:])
	entry.Instrs[n] = &Alloca{Dst: dst, Elem: elem}
	return dst
}

func (b *Builder) Store(val, ptr Value) {
	b.emit(&Store{Val: val, Ptr: ptr})
}

// Load reads the cell at ptr. A non-pointer operand yields a void temp,
// which the verifier reports.
func (b *Builder) Load(name string, ptr Value) *Temp {
	var elem Type = Void
	if pt, ok := ptr.Type().(PointerType); ok {
		elem = pt.Elem
	}
	dst := b.fn.NewTemp(name, elem)
	b.emit(&Load{Dst: dst, Ptr: ptr})
	return dst
}

func (b *Builder) Arith(op ArithOp, x, y Value) *Temp {
	dst := b.fn.NewTemp("", x.Type())
	b.emit(&Arith{Dst: dst, Op: op, X: x, Y: y})
	return dst
}

func (b *Builder) Cmp(pred CmpPred, x, y Value) *Temp {
	dst := b.fn.NewTemp("", I1)
	b.emit(&Cmp{Dst: dst, Pred: pred, X: x, Y: y})
	return dst
}

func (b *Builder) ElemPtr(base, index Value) *Temp {
	dst := b.fn.NewTemp("", base.Type())
	b.emit(&ElemPtr{Dst: dst, Base: base, Index: index})
	return dst
}

// Call emits a call to callee. Calls to void functions yield Undef.
func (b *Builder) Call(callee *Function, args ...Value) Value {
	call := &Call{Callee: callee, Args: args}
	b.emit(call)
	if callee.Ret == Void {
		return &Undef{Ty: Void}
	}
	call.Dst = b.fn.NewTemp("", callee.Ret)
	return call.Dst
}

func (b *Builder) Syscall(num int64, ret IntType, args ...Value) *Temp {
	dst := b.fn.NewTemp("", ret)
	b.emit(&Syscall{Dst: dst, Num: num, Args: args})
	return dst
}

func (b *Builder) Jump(target *Block) {
	b.emit(&Jump{Target: target})
}

func (b *Builder) Branch(cond Value, then, els *Block) {
	b.emit(&Branch{Cond: cond, Then: then, Else: els})
}

// Ret emits a return; v is nil for a void return.
func (b *Builder) Ret(v Value) {
	b.emit(&Return{Value: v})
}
