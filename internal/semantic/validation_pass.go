package semantic

import (
	"github.com/lattisc/jitvm/internal/ast"
	"github.com/lattisc/jitvm/internal/types"
)

// validationPass checks the control-flow properties spec.md §4.4 requires
// but the resolution pass cannot verify locally: every path through a
// non-void function must return a value.
func validationPass(ctx *Context, prog *ast.Program) {
	for _, s := range prog.Stmts {
		switch d := s.(type) {
		case *ast.FuncDecl:
			checkReturns(ctx, d)
		case *ast.ClassDecl:
			for _, fn := range d.Functions {
				checkReturns(ctx, fn)
			}
		}
	}
}

func checkReturns(ctx *Context, fn *ast.FuncDecl) {
	if fn.Return == nil || fn.Return.Kind == types.Void {
		return
	}
	if !blockAlwaysReturns(fn.Body) {
		ctx.error(fn.Position(), "function "+fn.Name+" does not return a value on all paths")
	}
}

// blockAlwaysReturns reports whether every control-flow path through b ends
// in a Return: b's last statement is a Return, or an If whose Then and Else
// blocks both always return. A While, Continue or Break never counts.
func blockAlwaysReturns(b *ast.Block) bool {
	if b == nil || len(b.Stmts) == 0 {
		return false
	}
	last := b.Stmts[len(b.Stmts)-1]
	return stmtAlwaysReturns(last)
}

func stmtAlwaysReturns(s ast.Stmt) bool {
	switch st := s.(type) {
	case *ast.Return:
		return true
	case *ast.If:
		if st.Else == nil {
			return false
		}
		return blockAlwaysReturns(st.Then) && blockAlwaysReturns(st.Else)
	case *ast.While:
		// A while loop only guarantees completion of the function if it is
		// an unconditional infinite loop; spec.md's While has no literal
		// `true` marker distinct from a general condition, so a loop body
		// is conservatively never treated as exhaustive here.
		return false
	default:
		return false
	}
}
