package semantic

import (
	"github.com/lattisc/jitvm/internal/ast"
	"github.com/lattisc/jitvm/internal/types"
)

// Analyze runs the three-pass semantic analysis spec.md §4.4 describes —
// declare, resolve, validate — over prog, reporting every error found to
// errs. It returns the populated Context (for the backend's lowering pass
// to read resolved types, overload selections, and class layouts from) and
// whether analysis completed with no fatal errors.
func Analyze(prog *ast.Program, errs ErrorSink) (*Context, bool) {
	return AnalyzeWithRegistry(prog, errs, types.NewRegistry())
}

// AnalyzeWithRegistry is Analyze against a caller-supplied type registry,
// so the ids it assigns match the ones internal/runtime uses to pack
// values at execution time.
func AnalyzeWithRegistry(prog *ast.Program, errs ErrorSink, reg *types.Registry) (*Context, bool) {
	ctx := NewContextWithRegistry(errs, reg)
	declarationPass(ctx, prog)
	typeResolutionPass(ctx, prog)
	if !ctx.Fatal {
		validationPass(ctx, prog)
	}
	return ctx, !ctx.Fatal
}
