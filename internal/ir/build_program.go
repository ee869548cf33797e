package ir

import "github.com/lattisc/jitvm/internal/ast"

// StartItemName is the canonical name of the synthesized entry point Item
// lowered from a program's top-level statements, spec.md §4.5.2/§9's
// "Start function".
const StartItemName = "<start>"

// BuildModule lowers an analyzed program into an unlinked Module: one Item
// per free function, one per class method, one per global initializer, and
// a final <start> Item for the program's top-level executable statements
// (those not themselves a declaration).
func BuildModule(prog *ast.Program) *Module {
	m := NewModule()
	startFn := &ast.FuncDecl{Name: StartItemName, Signature: StartItemName}

	for _, s := range prog.Stmts {
		switch st := s.(type) {
		case *ast.FuncDecl:
			m.AddItem(BuildFunction(st))
		case *ast.ClassDecl:
			for _, fn := range st.Functions {
				m.AddItem(BuildFunction(fn))
			}
			if st.DefaultCtor != nil {
				m.AddItem(BuildFunction(st.DefaultCtor))
			}
		case *ast.VarDecl:
			m.AddItem(BuildGlobalInit(st.Var))
		default:
			startFn.Body = appendStmt(startFn.Body, s)
		}
	}
	m.AddItem(BuildFunction(startFn))
	return m
}

func appendStmt(b *ast.Block, s ast.Stmt) *ast.Block {
	if b == nil {
		b = &ast.Block{}
	}
	if s != nil {
		b.Stmts = append(b.Stmts, s)
	}
	return b
}
