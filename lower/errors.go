package lower

import (
	"errors"
	"fmt"
)

// Scope errors.
var (
	ErrUnknownVariable      = errors.New("unknown variable")
	ErrDuplicateDeclaration = errors.New("duplicate declaration")
	ErrImmutableAssignment  = errors.New("assignment to immutable variable")
)

// Resolution errors.
var (
	ErrUnknownFunction   = errors.New("unknown function")
	ErrDuplicateFunction = errors.New("duplicate function")
	ErrUnknownType       = errors.New("unknown type")
	ErrUnknownImport     = errors.New("unknown import")
	ErrInvalidMain       = errors.New("main must return void or i32")
	ErrReservedName      = errors.New("reserved function name")
)

// ErrUnsupportedHost is returned when an intrinsic needs system call
// numbers that the host platform does not define.
var ErrUnsupportedHost = errors.New("intrinsics are not supported on this host")

// ScopeError reports a failed variable lookup, declaration or assignment.
type ScopeError struct {
	Err      error
	Name     string
	Function string
}

func (e *ScopeError) Error() string {
	return fmt.Sprintf("%v %q in function %s", e.Err, e.Name, e.Function)
}

func (e *ScopeError) Unwrap() error { return e.Err }

// ResolutionError reports a function, type or import name that does not
// resolve.
type ResolutionError struct {
	Err  error
	Name string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("%v %q", e.Err, e.Name)
}

func (e *ResolutionError) Unwrap() error { return e.Err }
