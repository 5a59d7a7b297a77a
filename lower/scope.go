package lower

import "github.com/baffl-lang/baffl/ir"

// Binding is what a variable name resolves to: the storage cell holding
// its value, the type of that value, and whether it may be reassigned.
type Binding struct {
	Cell    ir.Value
	Type    ir.Type
	Mutable bool
}

// Scope is one frame of the lexical scope chain.
type Scope struct {
	parent *Scope
	vars   map[string]Binding
}

func NewScope(parent *Scope) *Scope {
	return &Scope{parent: parent, vars: map[string]Binding{}}
}

func (s *Scope) Parent() *Scope { return s.parent }

// Lookup walks outward from s to the first frame that binds name.
func (s *Scope) Lookup(name string) (Binding, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if b, ok := cur.vars[name]; ok {
			return b, true
		}
	}
	return Binding{}, false
}

// Define binds name in this frame. Shadowing a name bound in an outer
// frame is allowed; rebinding one in this frame is ErrDuplicateDeclaration.
func (s *Scope) Define(name string, b Binding) error {
	if _, exists := s.vars[name]; exists {
		return ErrDuplicateDeclaration
	}
	s.vars[name] = b
	return nil
}
