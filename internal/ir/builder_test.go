package ir

import (
	"testing"

	"github.com/lattisc/jitvm/internal/ast"
	"github.com/lattisc/jitvm/internal/execframe"
	"github.com/lattisc/jitvm/internal/runtime"
	"github.com/lattisc/jitvm/internal/types"
	"github.com/lattisc/jitvm/pkg/token"
)

func intLit(v int32) *ast.Literal {
	return &ast.Literal{Node: ast.Node{Type: types.TInteger}, Kind: token.INT, IVal: v}
}

func intBinary(op token.Kind, left, right ast.Expr) *ast.Binary {
	return &ast.Binary{
		Node:        ast.Node{Type: types.TInteger},
		Op:          op,
		Left:        left,
		Right:       right,
		OperandType: types.TInteger,
		Dispatch:    ast.DispatchInteger,
	}
}

// TestBuildFunctionArithmeticPrecedence builds `return 2 + 3 * 4` as an
// already-precedence-resolved tree (2 + (3 * 4)) and confirms the lowered
// Item computes 14, exercising compileBinary's DispatchInteger path and
// BuildFunction's trailing implicit OpReturnVoid-after-explicit-return shape.
func TestBuildFunctionArithmeticPrecedence(t *testing.T) {
	mul := intBinary(token.STAR, intLit(3), intLit(4))
	add := intBinary(token.PLUS, intLit(2), mul)
	fn := &ast.FuncDecl{
		Name:      "f",
		Signature: "f()->int",
		Return:    types.TInteger,
		Body:      &ast.Block{Stmts: []ast.Stmt{&ast.Return{Value: add}}},
	}

	item := BuildFunction(fn)
	m := NewModule()
	m.AddItem(item)
	Generate(m)

	env := NewEnv(types.NewRegistry(), runtime.NewBox(), runtime.NewLogSink(nil))
	result, err := item.Compiled(env, execframe.NewFrame(item.Name, item.NumLocals, nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := runtime.UnpackInt(result); got != 14 {
		t.Errorf("2 + 3*4 = %d, want 14", got)
	}
}

// TestBuildFunctionIfElse builds `if 1 < 2 { return 10 } else { return 20 }`
// and confirms the then-branch is taken, exercising compileIf's two-target
// patch (jf to else, jend past it).
func TestBuildFunctionIfElse(t *testing.T) {
	cond := intBinary(token.LT, intLit(1), intLit(2))
	fn := &ast.FuncDecl{
		Name:      "f",
		Signature: "f()->int",
		Return:    types.TInteger,
		Body: &ast.Block{Stmts: []ast.Stmt{&ast.If{
			Cond: cond,
			Then: &ast.Block{Stmts: []ast.Stmt{&ast.Return{Value: intLit(10)}}},
			Else: &ast.Block{Stmts: []ast.Stmt{&ast.Return{Value: intLit(20)}}},
		}}},
	}

	item := BuildFunction(fn)
	m := NewModule()
	m.AddItem(item)
	Generate(m)

	env := NewEnv(types.NewRegistry(), runtime.NewBox(), runtime.NewLogSink(nil))
	result, err := item.Compiled(env, execframe.NewFrame(item.Name, item.NumLocals, nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := runtime.UnpackInt(result); got != 10 {
		t.Errorf("expected the then-branch (1<2), got %d want 10", got)
	}
}

// TestBuildFunctionWhileLoop builds a counting while loop summing 0..4 and
// confirms compileWhile's condPC/endPC patch wiring produces the expected
// total.
func TestBuildFunctionWhileLoop(t *testing.T) {
	i := &ast.Variable{Name: "i", Declared: types.TInteger, Index: 0}
	sum := &ast.Variable{Name: "sum", Declared: types.TInteger, Index: 1}

	body := &ast.Block{Stmts: []ast.Stmt{
		&ast.ExprStmt{X: &ast.Assign{Target: &ast.VarRead{Name: "sum", Decl: sum}, Value: intBinary(token.PLUS, &ast.VarRead{Name: "sum", Decl: sum}, &ast.VarRead{Name: "i", Decl: i})}},
		&ast.ExprStmt{X: &ast.Assign{Target: &ast.VarRead{Name: "i", Decl: i}, Value: intBinary(token.PLUS, &ast.VarRead{Name: "i", Decl: i}, intLit(1))}},
	}}
	loop := &ast.While{
		Cond: intBinary(token.LT, &ast.VarRead{Name: "i", Decl: i}, intLit(5)),
		Body: body,
	}
	fn := &ast.FuncDecl{
		Name:      "f",
		Signature: "f()->int",
		Return:    types.TInteger,
		Params:    nil,
		Locals:    []*ast.Variable{i, sum},
		Body: &ast.Block{Stmts: []ast.Stmt{
			loop,
			&ast.Return{Value: &ast.VarRead{Name: "sum", Decl: sum}},
		}},
	}

	item := BuildFunction(fn)
	m := NewModule()
	m.AddItem(item)
	Generate(m)

	env := NewEnv(types.NewRegistry(), runtime.NewBox(), runtime.NewLogSink(nil))
	result, err := item.Compiled(env, execframe.NewFrame(item.Name, item.NumLocals, nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := runtime.UnpackInt(result); got != 10 {
		t.Errorf("sum of 0..4 = %d, want 10", got)
	}
}
