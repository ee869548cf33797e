package semantic

import (
	"github.com/lattisc/jitvm/internal/ast"
	"github.com/lattisc/jitvm/internal/types"
	"github.com/lattisc/jitvm/pkg/token"
)

// ErrorSink receives semantic errors as they are discovered. Every error is
// reported: errorOnce, which keeps only a statement's first error, is not
// called by any pass. validationPass is skipped once any error is reported.
type ErrorSink interface {
	SemanticError(span token.Span, message string)
}

// Context threads the shared environment, type registry, and error/fatal
// state through all three passes (declare, resolve, validate), mirroring
// go-dws's internal/semantic/passes.PassContext.
type Context struct {
	Env   *Environment
	Types *types.Registry
	Errs  ErrorSink
	Fatal bool

	// instantiations is allocated but never read or written: no pass
	// instantiates FuncTemplate or ClassTemplate nodes.
	instantiations map[string]*ast.FuncDecl

	// erroredStmt latches "first error per statement wins".
	erroredStmt map[ast.Stmt]bool

	currentFunc *ast.FuncDecl // for `return` type checking
	loopDepth   int
}

// NewContext builds a Context with its own private type registry, for
// callers (tests, mainly) that don't need the registry to outlive analysis.
func NewContext(errs ErrorSink) *Context {
	return NewContextWithRegistry(errs, types.NewRegistry())
}

// NewContextWithRegistry builds a Context against a caller-supplied
// registry, so type ids assigned during analysis (spec.md §4.3's TypeID)
// stay consistent with the ids internal/runtime packs values under at
// execution time — pkg/jitvm.VM threads its single registry through this
// way rather than letting analysis mint its own.
func NewContextWithRegistry(errs ErrorSink, reg *types.Registry) *Context {
	return &Context{
		Env:            NewEnvironment(),
		Types:          reg,
		Errs:           errs,
		instantiations: map[string]*ast.FuncDecl{},
		erroredStmt:    map[ast.Stmt]bool{},
	}
}

func (c *Context) error(span token.Span, msg string) {
	c.Fatal = true
	if c.Errs != nil {
		c.Errs.SemanticError(span, msg)
	}
}

// errorOnce reports msg for stmt only the first time it is called for that
// statement, per spec.md §4.4's cascading-reduction rule.
func (c *Context) errorOnce(stmt ast.Stmt, span token.Span, msg string) {
	if c.erroredStmt[stmt] {
		return
	}
	c.erroredStmt[stmt] = true
	c.error(span, msg)
}
