package ir

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// FormatVersion is the version of the IR produced by this package.
// Backends check it against the range they accept.
const FormatVersion = "1.0.0"

// Block is a basic block: straight-line instructions ending in one
// terminator.
type Block struct {
	Label  string
	Instrs []Instr
}

// Terminator returns the block's final instruction if it is a terminator.
func (b *Block) Terminator() Terminator {
	if len(b.Instrs) == 0 {
		return nil
	}
	t, _ := b.Instrs[len(b.Instrs)-1].(Terminator)
	return t
}

// Terminated reports whether the block already ends in a terminator.
func (b *Block) Terminated() bool {
	return b.Terminator() != nil
}

type Function struct {
	Name       string
	Ret        Type
	Params     []*Temp
	Blocks     []*Block
	Attributes []string

	nextTemp int
	labels   map[string]int
}

func NewFunction(name string, ret Type) *Function {
	return &Function{Name: name, Ret: ret, labels: map[string]int{}}
}

// AddParam appends an incoming parameter.
func (f *Function) AddParam(name string, ty Type) *Temp {
	p := f.NewTemp(name, ty)
	f.Params = append(f.Params, p)
	return p
}

// NewTemp allocates a fresh temporary. Name may be empty.
func (f *Function) NewTemp(name string, ty Type) *Temp {
	t := &Temp{ID: f.nextTemp, Name: name, Ty: ty}
	f.nextTemp++
	return t
}

// NewBlock creates a block with a label unique within f without adding it
// to the function's layout. Use Append to place it.
func (f *Function) NewBlock(name string) *Block {
	label := name
	if n := f.labels[name]; n > 0 {
		label = fmt.Sprintf("%s.%d", name, n)
	}
	f.labels[name]++
	return &Block{Label: label}
}

// Append places b at the end of the function's block layout.
func (f *Function) Append(b *Block) {
	f.Blocks = append(f.Blocks, b)
}

// AddBlock creates a block and appends it.
func (f *Function) AddBlock(name string) *Block {
	b := f.NewBlock(name)
	f.Append(b)
	return b
}

// Entry returns the first block, or nil for a function with no body.
func (f *Function) Entry() *Block {
	if len(f.Blocks) == 0 {
		return nil
	}
	return f.Blocks[0]
}

// ParamTypes lists the parameter types in order.
func (f *Function) ParamTypes() []Type {
	types := make([]Type, len(f.Params))
	for i, p := range f.Params {
		types[i] = p.Ty
	}
	return types
}

// HasAttribute reports whether attr is set on f.
func (f *Function) HasAttribute(attr string) bool {
	for _, a := range f.Attributes {
		if a == attr {
			return true
		}
	}
	return false
}

type Module struct {
	Name      string
	Version   *semver.Version
	Globals   []*Global
	Functions []*Function
	Metadata  map[string]string
}

func NewModule(name string) *Module {
	return &Module{
		Name:     name,
		Version:  semver.MustParse(FormatVersion),
		Metadata: map[string]string{},
	}
}

// AddFunction appends f to the module.
func (m *Module) AddFunction(f *Function) {
	m.Functions = append(m.Functions, f)
}

// Function returns the function named name, or nil.
func (m *Module) Function(name string) *Function {
	for _, f := range m.Functions {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// AddString adds a private, read-only, zero-terminated byte buffer holding
// s and returns it. Globals are named .str, .str.1, .str.2, ...
func (m *Module) AddString(s string) *Global {
	name := ".str"
	if n := len(m.Globals); n > 0 {
		name = fmt.Sprintf(".str.%d", n)
	}
	data := append([]byte(s), 0)
	g := &Global{
		Name:        name,
		Ty:          ArrayType{Elem: I8, Len: len(data)},
		Data:        data,
		Private:     true,
		ReadOnly:    true,
		UnnamedAddr: true,
		Align:       1,
	}
	m.Globals = append(m.Globals, g)
	return g
}
