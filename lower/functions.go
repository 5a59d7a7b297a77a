package lower

import "github.com/baffl-lang/baffl/ir"

// reservedNames are link-level symbols the generated code depends on.
// Only intrinsics may be declared under them.
var reservedNames = map[string]bool{
	"syscall": true,
}

// FunctionTable is the flat, module-wide map from function name to its
// lowered handle. Entries are never replaced.
type FunctionTable struct {
	funcs map[string]*ir.Function
	order []string
}

func NewFunctionTable() *FunctionTable {
	return &FunctionTable{funcs: map[string]*ir.Function{}}
}

// Add registers fn under its name.
func (t *FunctionTable) Add(fn *ir.Function) error {
	if _, exists := t.funcs[fn.Name]; exists {
		return &ResolutionError{Err: ErrDuplicateFunction, Name: fn.Name}
	}
	t.funcs[fn.Name] = fn
	t.order = append(t.order, fn.Name)
	return nil
}

func (t *FunctionTable) Lookup(name string) (*ir.Function, bool) {
	fn, ok := t.funcs[name]
	return fn, ok
}

// Names lists registered functions in registration order.
func (t *FunctionTable) Names() []string {
	return append([]string(nil), t.order...)
}
