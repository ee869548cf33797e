package semantic

import (
	"testing"

	"github.com/lattisc/jitvm/internal/ast"
)

// TestGenericFunctionTemplateIsNotCallable documents DESIGN.md's Open
// Question 6 decision: FuncTemplate/ClassTemplate nodes are never
// instantiated, so declarationPass never registers their names and a call
// referencing one fails exactly like any other undefined name. There is no
// surface syntax for a template (the parser never constructs one — see
// DESIGN.md), so this test builds the AST by hand, the way internal/ir's
// builder tests exercise Builder without going through the parser.
func TestGenericFunctionTemplateIsNotCallable(t *testing.T) {
	tmpl := &ast.FuncTemplate{
		Name:       "identity",
		TypeParams: []string{"T"},
		Params:     []*ast.ParamSpec{{Name: "x", Type: &ast.TypeExpr{Name: "T"}}},
		Return:     &ast.TypeExpr{Name: "T"},
		Body:       &ast.Block{},
	}
	call := &ast.Call{Callee: &ast.VarRead{Name: "identity"}, Args: []ast.Expr{&ast.Literal{}}}
	prog := &ast.Program{Stmts: []ast.Stmt{tmpl, &ast.ExprStmt{X: call}}}

	errs := &collectedErrors{}
	_, ok := Analyze(prog, errs)

	if ok {
		t.Fatal("expected analysis to fail: identity is a template, not a callable function")
	}
	found := false
	for _, m := range errs.msgs {
		if containsUndefined(m, "identity") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected an undefined-function error naming identity, got: %v", errs.msgs)
	}
}

// TestGenericClassTemplateFieldsNotRegistered documents the same decision
// for ClassTemplate: declarationPass only walks *ast.ClassDecl, so a
// ClassTemplate never becomes a lookup-able class name.
func TestGenericClassTemplateFieldsNotRegistered(t *testing.T) {
	tmpl := &ast.ClassTemplate{
		Name:       "Box",
		TypeParams: []string{"T"},
		Fields:     []*ast.ParamSpec{{Name: "value", Type: &ast.TypeExpr{Name: "T"}}},
	}
	construct := &ast.Call{Callee: &ast.VarRead{Name: "Box"}}
	prog := &ast.Program{Stmts: []ast.Stmt{tmpl, &ast.ExprStmt{X: construct}}}

	errs := &collectedErrors{}
	_, ok := Analyze(prog, errs)

	if ok {
		t.Fatal("expected analysis to fail: Box is a template, not a constructible class")
	}
}

func containsUndefined(msg, name string) bool {
	return len(msg) > 0 && (indexOf(msg, "undefined function "+name) >= 0)
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}
