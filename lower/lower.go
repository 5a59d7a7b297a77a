// Package lower translates a parsed program into an ir.Module.
//
// Lowering is a single pass over the top-level items in source order. A
// Context threads the insertion point, the scope chain, the function
// table and the type catalog through every step; there is no global
// state, so independent programs may be lowered concurrently.
package lower

import (
	"fmt"
	"io"
	"log"

	"github.com/baffl-lang/baffl/ast"
	"github.com/baffl-lang/baffl/ir"
)

// DefaultModuleName names modules when Config.ModuleName is empty.
const DefaultModuleName = "baffl_main"

type Config struct {
	// ModuleName is the name of the produced module.
	ModuleName string

	// Predeclare registers every top-level function signature before any
	// body is lowered, allowing calls to functions declared later in the
	// file and mutual recursion. When false a function may only call
	// itself and functions declared above it.
	Predeclare bool

	// Logger receives one line per lowered function. Nil discards.
	Logger *log.Logger
}

// Context is the state of one lowering run.
type Context struct {
	b      *ir.Builder
	scope  *Scope
	funcs  *FunctionTable
	types  *Types
	module *ir.Module
	log    *log.Logger

	// decl is the function whose body is being lowered.
	decl *ast.FunctionDecl
}

func newContext(cfg Config) *Context {
	name := cfg.ModuleName
	if name == "" {
		name = DefaultModuleName
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Context{
		b:      ir.NewBuilder(),
		funcs:  NewFunctionTable(),
		types:  NewTypes(),
		module: ir.NewModule(name),
		log:    logger,
	}
}

// Lower translates prog into a module. The first error aborts lowering and
// no module is returned.
func Lower(prog ast.Program, cfg Config) (*ir.Module, error) {
	c := newContext(cfg)

	if cfg.Predeclare {
		for _, item := range prog {
			var err error
			switch item := item.(type) {
			case *ast.Import:
				err = c.lowerImport(item)
			case *ast.FunctionDecl:
				_, err = c.declareFunction(item)
			}
			if err != nil {
				return nil, err
			}
		}
		for _, item := range prog {
			decl, ok := item.(*ast.FunctionDecl)
			if !ok {
				continue
			}
			fn, _ := c.funcs.Lookup(decl.Name)
			if err := c.defineFunction(decl, fn, c.lowerFunctionBody); err != nil {
				return nil, err
			}
		}
		return c.module, nil
	}

	for _, item := range prog {
		if err := c.lowerTopLevel(item); err != nil {
			return nil, err
		}
	}
	return c.module, nil
}

func (c *Context) lowerTopLevel(item ast.TopLevel) error {
	switch item := item.(type) {
	case *ast.Import:
		return c.lowerImport(item)
	case *ast.FunctionDecl:
		fn, err := c.declareFunction(item)
		if err != nil {
			return err
		}
		return c.defineFunction(item, fn, c.lowerFunctionBody)
	default:
		panic(fmt.Sprintf("lower: unhandled top-level node %T", item))
	}
}

// pushScope opens a new innermost frame and returns the function that
// closes it. Frames must be closed in reverse order of opening:
//
//	defer c.pushScope()()
func (c *Context) pushScope() (pop func()) {
	frame := NewScope(c.scope)
	c.scope = frame
	return func() {
		if c.scope != frame {
			panic("lower: scope frames closed out of order")
		}
		c.scope = frame.Parent()
	}
}

func (c *Context) scopeError(err error, name string) error {
	fn := "<none>"
	if c.decl != nil {
		fn = c.decl.Name
	}
	return &ScopeError{Err: err, Name: name, Function: fn}
}

func isMain(decl *ast.FunctionDecl) bool {
	return decl.Name == "main"
}

func returnTypeName(decl *ast.FunctionDecl) string {
	if decl.ReturnType == "" {
		return "void"
	}
	return decl.ReturnType
}

// declareFunction lowers the signature of decl and registers it in the
// function table. The body is lowered separately by defineFunction, so a
// function is always callable from its own body.
func (c *Context) declareFunction(decl *ast.FunctionDecl) (*ir.Function, error) {
	if reservedNames[decl.Name] && !decl.HasAttribute(ast.AttrIntrinsic) {
		return nil, &ResolutionError{Err: ErrReservedName, Name: decl.Name}
	}
	retName := returnTypeName(decl)
	if isMain(decl) && retName != "void" && retName != "i32" {
		return nil, &ResolutionError{Err: ErrInvalidMain, Name: retName}
	}

	ret, err := c.types.Lookup(retName)
	if err != nil {
		return nil, err
	}
	if isMain(decl) {
		// The process exit code.
		ret = ir.I32
	}

	fn := ir.NewFunction(decl.Name, ret)
	for _, p := range decl.Params {
		ty, err := c.types.Lookup(p.Type)
		if err != nil {
			return nil, err
		}
		fn.AddParam(p.Name, ty)
	}
	for _, attr := range decl.Attributes {
		fn.Attributes = append(fn.Attributes, string(attr))
	}

	if err := c.funcs.Add(fn); err != nil {
		return nil, err
	}
	c.module.AddFunction(fn)
	return fn, nil
}

// defineFunction emits the body of a declared function. Parameters are
// copied into immutable cells in a fresh scope frame, then body emits the
// statements. Void functions that do not end in a return get an implicit
// one; main returns 0.
func (c *Context) defineFunction(decl *ast.FunctionDecl, fn *ir.Function, body func([]ast.Stmt) error) error {
	c.decl = decl
	defer func() { c.decl = nil }()
	defer c.pushScope()()

	c.b.SetInsertPoint(fn, fn.AddBlock("entry"))
	for _, param := range fn.Params {
		cell := c.b.Alloca(param.Name, param.Ty)
		c.b.Store(param, cell)
		if err := c.scope.Define(param.Name, Binding{Cell: cell, Type: param.Ty}); err != nil {
			return c.scopeError(err, param.Name)
		}
	}

	if err := body(decl.Body); err != nil {
		return err
	}

	if returnTypeName(decl) == "void" && !ast.EndsInTerminator(decl.Body) {
		c.emitReturn(nil)
	}

	c.log.Printf("lowered function %s: %d blocks", fn.Name, len(fn.Blocks))
	return nil
}

func (c *Context) lowerFunctionBody(stmts []ast.Stmt) error {
	for _, s := range stmts {
		if err := c.lowerStmt(s); err != nil {
			return err
		}
	}
	return nil
}

// lowerBlock lowers a nested statement list in its own scope frame.
func (c *Context) lowerBlock(stmts []ast.Stmt) error {
	defer c.pushScope()()
	return c.lowerFunctionBody(stmts)
}

func (c *Context) lowerStmt(s ast.Stmt) error {
	switch s := s.(type) {
	case *ast.VarDecl:
		_, err := c.lowerVarDecl(s)
		return err
	case *ast.VarAssign:
		return c.lowerVarAssign(s)
	case *ast.FunctionCall:
		_, err := c.lowerCall(s)
		return err
	case *ast.If:
		return c.lowerIf(s)
	case *ast.While:
		return c.lowerWhile(s)
	case *ast.Return:
		var v ir.Value
		if s.Value != nil {
			var err error
			if v, err = c.lowerExpr(s.Value); err != nil {
				return err
			}
		}
		c.emitReturn(v)
		return nil
	default:
		panic(fmt.Sprintf("lower: unhandled statement %T", s))
	}
}

// emitReturn returns v, or nothing for nil. A valueless return from main
// exits with status 0.
func (c *Context) emitReturn(v ir.Value) {
	if v == nil && c.decl != nil && isMain(c.decl) {
		v = ir.ConstInt(ir.I32, 0)
	}
	c.b.Ret(v)
}

// lowerVarDecl stores the initializer in a fresh cell bound in the
// innermost frame and returns the cell.
func (c *Context) lowerVarDecl(s *ast.VarDecl) (ir.Value, error) {
	init, err := c.lowerExpr(s.Init)
	if err != nil {
		return nil, err
	}
	ty := init.Type()
	cell := c.b.Alloca(s.Name, ty)
	if err := c.scope.Define(s.Name, Binding{Cell: cell, Type: ty, Mutable: s.Mutable}); err != nil {
		return nil, c.scopeError(err, s.Name)
	}
	c.b.Store(init, cell)
	return cell, nil
}

func (c *Context) lowerVarAssign(s *ast.VarAssign) error {
	binding, ok := c.scope.Lookup(s.Name)
	if !ok {
		return c.scopeError(ErrUnknownVariable, s.Name)
	}
	if !binding.Mutable {
		return c.scopeError(ErrImmutableAssignment, s.Name)
	}
	v, err := c.lowerExpr(s.Value)
	if err != nil {
		return err
	}
	c.b.Store(v, binding.Cell)
	return nil
}

// lowerIf emits
//
//	  br cond, then, merge
//	then:
//	  ...
//	  br merge          ; omitted when the body ends in a return
//	merge:
func (c *Context) lowerIf(s *ast.If) error {
	cond, err := c.lowerExpr(s.Cond)
	if err != nil {
		return err
	}

	fn := c.b.Function()
	then := fn.AddBlock("then")
	merge := fn.NewBlock("merge")
	c.b.Branch(cond, then, merge)

	c.b.SetInsertPoint(fn, then)
	if err := c.lowerBlock(s.Then); err != nil {
		return err
	}
	if !ast.EndsInTerminator(s.Then) {
		c.b.Jump(merge)
	}

	fn.Append(merge)
	c.b.SetInsertPoint(fn, merge)
	return nil
}

func (c *Context) lowerWhile(s *ast.While) error {
	return c.emitLoop(
		func() (ir.Value, error) { return c.lowerExpr(s.Cond) },
		func() (bool, error) {
			if err := c.lowerBlock(s.Body); err != nil {
				return false, err
			}
			return ast.EndsInTerminator(s.Body), nil
		},
	)
}

// emitLoop emits
//
//	  br loop.condition
//	loop.condition:
//	  <cond>
//	  br c, loop.body, loop.exit
//	loop.body:
//	  <body>
//	  br loop.condition  ; omitted when body reports it terminated
//	loop.exit:
//
// and leaves the insertion point in loop.exit.
func (c *Context) emitLoop(cond func() (ir.Value, error), body func() (terminated bool, err error)) error {
	fn := c.b.Function()
	condBlock := fn.AddBlock("loop.condition")
	bodyBlock := fn.NewBlock("loop.body")
	exitBlock := fn.NewBlock("loop.exit")

	c.b.Jump(condBlock)
	c.b.SetInsertPoint(fn, condBlock)
	v, err := cond()
	if err != nil {
		return err
	}
	c.b.Branch(v, bodyBlock, exitBlock)

	fn.Append(bodyBlock)
	c.b.SetInsertPoint(fn, bodyBlock)
	terminated, err := body()
	if err != nil {
		return err
	}
	if !terminated {
		c.b.Jump(condBlock)
	}

	fn.Append(exitBlock)
	c.b.SetInsertPoint(fn, exitBlock)
	return nil
}

func (c *Context) lowerExpr(e ast.Expr) (ir.Value, error) {
	switch e := e.(type) {
	case *ast.LiteralBool:
		return ir.ConstBool(e.Value), nil
	case *ast.LiteralInt:
		bits := e.Bits
		if bits == 0 {
			bits = ast.DefaultIntBits
		}
		return ir.ConstInt(c.types.Int(bits), int64(e.Value)), nil
	case *ast.LiteralString:
		return c.lowerString(e.Value), nil
	case *ast.VarRef:
		binding, ok := c.scope.Lookup(e.Name)
		if !ok {
			return nil, c.scopeError(ErrUnknownVariable, e.Name)
		}
		return c.b.Load(e.Name, binding.Cell), nil
	case *ast.FunctionCall:
		return c.lowerCall(e)
	case *ast.BinaryOp:
		return c.lowerBinaryOp(e)
	default:
		panic(fmt.Sprintf("lower: unhandled expression %T", e))
	}
}

// lowerString places s in a global buffer and yields a pointer to its
// first byte.
func (c *Context) lowerString(s string) ir.Value {
	g := c.module.AddString(s)
	if g.Ty != c.types.StringBuffer(len(s)) {
		panic("lower: string buffer does not match the type catalog")
	}
	return &ir.GlobalPtr{Global: g}
}

func (c *Context) lowerCall(call *ast.FunctionCall) (ir.Value, error) {
	fn, ok := c.funcs.Lookup(call.Name)
	if !ok {
		return nil, &ResolutionError{Err: ErrUnknownFunction, Name: call.Name}
	}
	args := make([]ir.Value, len(call.Args))
	for i, arg := range call.Args {
		v, err := c.lowerExpr(arg)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return c.b.Call(fn, args...), nil
}

func (c *Context) lowerBinaryOp(e *ast.BinaryOp) (ir.Value, error) {
	x, err := c.lowerExpr(e.Left)
	if err != nil {
		return nil, err
	}
	y, err := c.lowerExpr(e.Right)
	if err != nil {
		return nil, err
	}

	switch e.Op {
	case ast.Plus:
		return c.b.Arith(ir.Add, x, y), nil
	case ast.Minus:
		return c.b.Arith(ir.Sub, x, y), nil
	case ast.Div:
		return c.b.Arith(ir.SDiv, x, y), nil
	case ast.Mod:
		return c.b.Arith(ir.SRem, x, y), nil
	case ast.Eq:
		return c.b.Cmp(ir.EQ, x, y), nil
	case ast.Lt:
		return c.b.Cmp(ir.SLT, x, y), nil
	case ast.Le:
		return c.b.Cmp(ir.SLE, x, y), nil
	default:
		panic(fmt.Sprintf("lower: unhandled operator %v", e.Op))
	}
}
