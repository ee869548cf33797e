package ast

import (
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/lattisc/jitvm/pkg/token"
)

func tok(k token.Kind, lexeme string) token.Token {
	return token.Token{Kind: k, Lexeme: lexeme}
}

// TestPrintArithmeticExpression snapshots the printed tree for
// `x = 1 + 2 * 3`, grounded on go-dws's pkg/printer golden-dump tests.
func TestPrintArithmeticExpression(t *testing.T) {
	mul := &Binary{Op: token.STAR, Left: &Literal{Node: Node{Tok: tok(token.INT, "2")}, Kind: token.INT, IVal: 2}, Right: &Literal{Node: Node{Tok: tok(token.INT, "3")}, Kind: token.INT, IVal: 3}}
	add := &Binary{Op: token.PLUS, Left: &Literal{Node: Node{Tok: tok(token.INT, "1")}, Kind: token.INT, IVal: 1}, Right: mul}
	assign := &Assign{Target: &VarRead{Name: "x"}, Value: add}
	prog := &Program{Stmts: []Stmt{&ExprStmt{X: assign}}}

	snaps.MatchSnapshot(t, "arithmetic_assign_tree", Print(prog))
}

// TestPrintControlFlow snapshots an if/while/return tree.
func TestPrintControlFlow(t *testing.T) {
	prog := &Program{Stmts: []Stmt{
		&If{
			Cond: &VarRead{Name: "ok"},
			Then: &Block{Stmts: []Stmt{&Return{Value: &Literal{Node: Node{Tok: tok(token.INT, "1")}, Kind: token.INT, IVal: 1}}}},
			Else: &Block{Stmts: []Stmt{&Return{Value: &Literal{Node: Node{Tok: tok(token.INT, "0")}, Kind: token.INT, IVal: 0}}}},
		},
		&While{
			Cond: &VarRead{Name: "running"},
			Body: &Block{Stmts: []Stmt{&Break{}}},
		},
	}}

	snaps.MatchSnapshot(t, "control_flow_tree", Print(prog))
}

func TestPrintFuncAndClassDecl(t *testing.T) {
	method := &FuncDecl{Name: "area", Body: &Block{Stmts: []Stmt{&Return{}}}}
	cls := &ClassDecl{Name: "Shape", Functions: []*FuncDecl{method}}
	fn := &FuncDecl{Name: "main", Body: &Block{Stmts: []Stmt{&ExprStmt{X: &VarRead{Name: "noop"}}}}}
	prog := &Program{Stmts: []Stmt{cls, fn}}

	got := Print(prog)
	if got == "" {
		t.Fatal("expected a non-empty printed tree")
	}
}
