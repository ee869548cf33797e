package semantic

import (
	"github.com/lattisc/jitvm/internal/ast"
	"github.com/lattisc/jitvm/internal/types"
)

// declarationPass registers every top-level class and function name before
// any body is resolved, so mutually- and forward-referencing declarations
// (a function calling one declared later, a class referencing itself)
// resolve correctly in the following pass.
func declarationPass(ctx *Context, prog *ast.Program) {
	registerBuiltins(ctx)
	for _, s := range prog.Stmts {
		switch d := s.(type) {
		case *ast.ClassDecl:
			ctx.Env.DefineClass(d)
		}
	}
	for _, s := range prog.Stmts {
		switch d := s.(type) {
		case *ast.ClassDecl:
			for _, fn := range d.Functions {
				fn.Of = d
			}
			if d.DefaultCtor != nil {
				d.DefaultCtor.Of = d
				d.DefaultCtor.IsMethod = true
			}
		case *ast.FuncDecl:
			ctx.Env.DefineFunc(d)
		case *ast.VarDecl:
			d.Var.Scope = ast.ScopeGlobal
			ctx.Env.Define(d.Var)
		}
	}
}

// registerBuiltins pre-installs the fixed native table spec.md §4.5.4
// requires to always be present: one `log` overload per primitive type,
// so `log(...)` resolves and type-checks like any other call without the
// embedder having to RegisterExternal it first. Each overload already
// carries resolved types (never its own TypeExpr/body), so it skips
// typeResolutionPass entirely — only Signature is computed here, the way
// that pass computes it for an ordinary declaration.
func registerBuiltins(ctx *Context) {
	for _, t := range []*types.DataType{types.TBool, types.TInteger, types.TFloat, types.TChar, types.TString} {
		fn := &ast.FuncDecl{
			Name:     "log",
			IsNative: true,
			Params:   []*ast.Variable{{Name: "value", Declared: t, Scope: ast.ScopeLocal}},
			Return:   types.TVoid,
		}
		fn.Signature = canonicalSignature(fn)
		ctx.Env.DefineFunc(fn)
	}
}
