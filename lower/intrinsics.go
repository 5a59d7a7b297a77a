package lower

import (
	"fmt"
	"strings"

	"github.com/baffl-lang/baffl/ast"
	"github.com/baffl-lang/baffl/ir"
)

// intrinsic is a function whose body is emitted by the compiler instead of
// being parsed. Its signature is an ordinary declaration.
type intrinsic struct {
	decl *ast.FunctionDecl
	body func(c *Context) error
}

// toStringPlaceholder is what toString currently returns for any input.
const toStringPlaceholder = "<int>"

// toStringBufferSize fits the decimal form of any i32 plus its sign.
const toStringBufferSize = 11

var intrinsics = map[string]intrinsic{
	"print": {
		decl: &ast.FunctionDecl{
			Name:       "print",
			ReturnType: "i32",
			Params:     []ast.Param{{Name: "text", Type: "string"}},
			Attributes: []ast.Attribute{ast.AttrIntrinsic, ast.AttrNoUnwind},
		},
		body: emitPrint,
	},
	"toString": {
		decl: &ast.FunctionDecl{
			Name:       "toString",
			ReturnType: "string",
			Params:     []ast.Param{{Name: "value", Type: "i32"}},
			Attributes: []ast.Attribute{ast.AttrIntrinsic, ast.AttrNoUnwind},
		},
		body: emitToString,
	},
}

// IntrinsicNames lists the names accepted by import.
func IntrinsicNames() []string {
	return []string{"print", "toString"}
}

func (c *Context) lowerImport(imp *ast.Import) error {
	in, ok := intrinsics[imp.Name]
	if !ok {
		err := &ResolutionError{Err: ErrUnknownImport, Name: imp.Name}
		return fmt.Errorf("%w (known: %s)", err, strings.Join(IntrinsicNames(), ", "))
	}
	if hostSyscalls == nil {
		return ErrUnsupportedHost
	}

	fn, err := c.declareFunction(in.decl)
	if err != nil {
		return err
	}
	return c.defineFunction(in.decl, fn, func([]ast.Stmt) error {
		return in.body(c)
	})
}

// emitPrint emits
//
//	var counter = 0;
//	while (text[counter] != 0) { counter = counter + 1; }
//	return write(stdout, text, counter);
//
// The whole string goes out in a single write.
func emitPrint(c *Context) error {
	counter := &ast.VarDecl{Name: "counter", Init: ast.Int(0), Mutable: true}
	if _, err := c.lowerVarDecl(counter); err != nil {
		return err
	}
	text, _ := c.scope.Lookup("text")
	count, _ := c.scope.Lookup("counter")

	err := c.emitLoop(
		func() (ir.Value, error) {
			base := c.b.Load("text", text.Cell)
			index := c.b.Load("counter", count.Cell)
			char := c.b.Load("char", c.b.ElemPtr(base, index))
			return c.b.Cmp(ir.NE, char, ir.ConstInt(c.types.Char(), 0)), nil
		},
		func() (bool, error) {
			step := &ast.VarAssign{
				Name:  "counter",
				Value: &ast.BinaryOp{Op: ast.Plus, Left: &ast.VarRef{Name: "counter"}, Right: ast.Int(1)},
			}
			return false, c.lowerStmt(step)
		},
	)
	if err != nil {
		return err
	}

	base := c.b.Load("text", text.Cell)
	n := c.b.Load("counter", count.Cell)
	written := c.b.Syscall(hostSyscalls.write, ir.I32,
		ir.ConstInt(ir.I32, hostSyscalls.stdout), base, n)
	c.b.Ret(written)
	return nil
}

// emitToString maps a scratch buffer and returns a fixed placeholder. The
// argument is not formatted yet.
func emitToString(c *Context) error {
	sc := hostSyscalls
	c.b.Syscall(sc.mmap, ir.I64,
		ir.ConstInt(ir.I64, 0),
		ir.ConstInt(ir.I64, toStringBufferSize),
		ir.ConstInt(ir.I32, sc.protReadWrite),
		ir.ConstInt(ir.I32, sc.mapPrivateAnon),
		ir.ConstInt(ir.I32, -1),
		ir.ConstInt(ir.I64, 0),
	)
	placeholder, err := c.lowerExpr(&ast.LiteralString{Value: toStringPlaceholder})
	if err != nil {
		return err
	}
	c.b.Ret(placeholder)
	return nil
}
