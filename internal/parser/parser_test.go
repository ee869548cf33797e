package parser

import (
	"testing"

	"github.com/lattisc/jitvm/internal/ast"
	"github.com/lattisc/jitvm/pkg/arena"
	"github.com/lattisc/jitvm/pkg/token"
)

type collectErrs struct{ msgs []string }

func (c *collectErrs) LexError(span token.Span, msg string)   { c.msgs = append(c.msgs, "lex: "+msg) }
func (c *collectErrs) ParseError(span token.Span, msg string) { c.msgs = append(c.msgs, "parse: "+msg) }

func parse(t *testing.T, src string) (*ast.Program, *collectErrs) {
	t.Helper()
	errs := &collectErrs{}
	p := New([]byte(src), arena.New(0), errs, errs)
	prog := p.Parse()
	return prog, errs
}

func TestParseVarDeclAndExprStatement(t *testing.T) {
	prog, errs := parse(t, "x: int = 1\nlog(x + 2)\n")
	if len(errs.msgs) != 0 {
		t.Fatalf("unexpected errors: %v", errs.msgs)
	}
	if len(prog.Stmts) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(prog.Stmts))
	}
	vd, ok := prog.Stmts[0].(*ast.VarDecl)
	if !ok {
		t.Fatalf("expected VarDecl, got %T", prog.Stmts[0])
	}
	if vd.Var.Name != "x" {
		t.Fatalf("expected variable named x, got %s", vd.Var.Name)
	}
}

func TestParseIfElse(t *testing.T) {
	src := "if x > 0:\n  log(1)\nelse:\n  log(2)\n"
	prog, errs := parse(t, src)
	if len(errs.msgs) != 0 {
		t.Fatalf("unexpected errors: %v", errs.msgs)
	}
	ifs, ok := prog.Stmts[0].(*ast.If)
	if !ok {
		t.Fatalf("expected If, got %T", prog.Stmts[0])
	}
	if ifs.Else == nil {
		t.Fatalf("expected an else-block")
	}
}

func TestParseWhileLoopWithBreakContinue(t *testing.T) {
	src := "while true:\n  break\n  continue\n"
	_, errs := parse(t, src)
	if len(errs.msgs) != 0 {
		t.Fatalf("unexpected errors: %v", errs.msgs)
	}
}

func TestBreakOutsideLoopIsError(t *testing.T) {
	_, errs := parse(t, "break\n")
	if len(errs.msgs) == 0 {
		t.Fatalf("expected an error for break outside a loop")
	}
}

func TestParseFunctionDecl(t *testing.T) {
	src := "add: (a: int, b: int) -> int:\n  return a + b\n"
	prog, errs := parse(t, src)
	if len(errs.msgs) != 0 {
		t.Fatalf("unexpected errors: %v", errs.msgs)
	}
	fn, ok := prog.Stmts[0].(*ast.FuncDecl)
	if !ok {
		t.Fatalf("expected FuncDecl, got %T", prog.Stmts[0])
	}
	if len(fn.Params) != 2 {
		t.Fatalf("expected 2 params, got %d", len(fn.Params))
	}
}

func TestParseClassDecl(t *testing.T) {
	src := "class Point:\n  x: int\n  y: int\n  sum: () -> int:\n    return this.x + this.y\n"
	prog, errs := parse(t, src)
	if len(errs.msgs) != 0 {
		t.Fatalf("unexpected errors: %v", errs.msgs)
	}
	cd, ok := prog.Stmts[0].(*ast.ClassDecl)
	if !ok {
		t.Fatalf("expected ClassDecl, got %T", prog.Stmts[0])
	}
	if len(cd.Fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(cd.Fields))
	}
	if len(cd.Functions) != 1 {
		t.Fatalf("expected 1 method, got %d", len(cd.Functions))
	}
}

func TestParseArrayLiteralAndIndex(t *testing.T) {
	src := "a: array<int> = [1, 2, 3]\nlog(a[0])\n"
	prog, errs := parse(t, src)
	if len(errs.msgs) != 0 {
		t.Fatalf("unexpected errors: %v", errs.msgs)
	}
	vd := prog.Stmts[0].(*ast.VarDecl)
	lit, ok := vd.Var.Init.(*ast.ArrayLit)
	if !ok {
		t.Fatalf("expected ArrayLit init, got %T", vd.Var.Init)
	}
	if len(lit.Elements) != 3 {
		t.Fatalf("expected 3 elements, got %d", len(lit.Elements))
	}
}

func TestParseCastAndIsTest(t *testing.T) {
	prog, errs := parse(t, "log(x as int)\nlog(x is int)\n")
	if len(errs.msgs) != 0 {
		t.Fatalf("unexpected errors: %v", errs.msgs)
	}
	if len(prog.Stmts) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(prog.Stmts))
	}
}

func TestParseRecovery(t *testing.T) {
	src := "x: int = )\ny: int = 1\n"
	prog, errs := parse(t, src)
	if len(errs.msgs) == 0 {
		t.Fatalf("expected a parse error")
	}
	if len(prog.Stmts) == 0 {
		t.Fatalf("expected parser to recover and keep producing statements")
	}
}
