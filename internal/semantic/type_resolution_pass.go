package semantic

import (
	"github.com/lattisc/jitvm/internal/ast"
	"github.com/lattisc/jitvm/internal/types"
	"github.com/lattisc/jitvm/pkg/token"
)

func resolveTypeExpr(ctx *Context, te *ast.TypeExpr) *types.DataType {
	if te == nil {
		return types.TVoid
	}
	if te.Resolved != nil {
		return te.Resolved
	}
	var t *types.DataType
	switch te.Name {
	case "int":
		t = types.TInteger
	case "float":
		t = types.TFloat
	case "bool":
		t = types.TBool
	case "char":
		t = types.TChar
	case "string":
		t = types.TString
	case "void":
		t = types.TVoid
	case "any":
		t = types.TAny
	case "array":
		t = types.NewArray(-1, resolveTypeExpr(ctx, te.ArrayOf))
	default:
		if c, ok := ctx.Env.LookupClass(te.Name); ok {
			t = types.NewObject(c)
		} else {
			ctx.error(te.Span, "undefined type "+te.Name)
			t = types.TVoid
		}
	}
	te.Resolved = t
	return t
}

// typeResolutionPass resolves every declaration's signature, lays out
// class fields, then walks every function/global-initializer body
// assigning types and inserting casts.
func typeResolutionPass(ctx *Context, prog *ast.Program) {
	for _, s := range prog.Stmts {
		if c, ok := s.(*ast.ClassDecl); ok {
			resolveClassFields(ctx, c)
		}
	}
	for _, s := range prog.Stmts {
		switch d := s.(type) {
		case *ast.FuncDecl:
			resolveFuncSignature(ctx, d)
		case *ast.ClassDecl:
			for _, fn := range d.Functions {
				resolveFuncSignature(ctx, fn)
			}
			if d.DefaultCtor != nil {
				resolveFuncSignature(ctx, d.DefaultCtor)
			}
		}
	}
	for _, s := range prog.Stmts {
		switch d := s.(type) {
		case *ast.FuncDecl:
			resolveFuncBody(ctx, d)
		case *ast.ClassDecl:
			for _, fn := range d.Functions {
				resolveFuncBody(ctx, fn)
			}
			if d.DefaultCtor != nil {
				resolveFuncBody(ctx, d.DefaultCtor)
			}
		case *ast.VarDecl:
			resolveGlobalVarDecl(ctx, d)
		default:
			resolveTopLevelStmt(ctx, d)
		}
	}
}

func resolveClassFields(ctx *Context, c *ast.ClassDecl) {
	for _, f := range c.Fields {
		f.Declared = resolveTypeExpr(ctx, f.TypeExpr)
	}
	c.Layout(func(v *ast.Variable) int { return types.SizeOf(v.Declared) })
}

func resolveFuncSignature(ctx *Context, fn *ast.FuncDecl) {
	for _, p := range fn.Params {
		if p.Name == "this" && fn.IsMethod {
			p.Declared = types.NewObject(fn.Of)
			continue
		}
		p.Declared = resolveTypeExpr(ctx, p.TypeExpr)
	}
	fn.Return = resolveTypeExpr(ctx, fn.ReturnExpr)
	fn.Signature = canonicalSignature(fn)
}

func canonicalSignature(fn *ast.FuncDecl) string {
	s := fn.Name + "("
	for i, p := range fn.Params {
		if i > 0 {
			s += ","
		}
		s += types.CanonicalName(p.Declared)
	}
	s += ")->" + types.CanonicalName(fn.Return)
	return s
}

func resolveFuncBody(ctx *Context, fn *ast.FuncDecl) {
	prev := ctx.currentFunc
	ctx.currentFunc = fn
	ctx.Env.Push()
	for _, p := range fn.Params {
		ctx.Env.Define(p)
	}
	resolveBlock(ctx, fn.Body)
	ctx.Env.Pop()
	ctx.currentFunc = prev
}

func resolveGlobalVarDecl(ctx *Context, d *ast.VarDecl) {
	v := d.Var
	v.Declared = resolveTypeExpr(ctx, v.TypeExpr)
	if v.Init != nil {
		v.Init = resolveExpr(ctx, v.Init)
		v.Init = coerceAssignable(ctx, v.Declared, v.Init, v.DeclaredAt)
	}
}

func resolveTopLevelStmt(ctx *Context, s ast.Stmt) {
	resolveStmt(ctx, s)
}

func resolveBlock(ctx *Context, b *ast.Block) {
	if b == nil {
		return
	}
	unreachableFrom := -1
	for i, s := range b.Stmts {
		if unreachableFrom >= 0 {
			ctx.error(s.Position(), "unreachable code")
			unreachableFrom = -2 // only report once
		}
		resolveStmt(ctx, s)
		switch s.(type) {
		case *ast.Return, *ast.Continue, *ast.Break:
			if unreachableFrom == -1 && i < len(b.Stmts)-1 {
				unreachableFrom = i
			}
		}
	}
}

func resolveStmt(ctx *Context, s ast.Stmt) {
	switch st := s.(type) {
	case *ast.VarDecl:
		v := st.Var
		if v.TypeExpr != nil {
			v.Declared = resolveTypeExpr(ctx, v.TypeExpr)
		}
		if v.Init != nil {
			v.Init = resolveExpr(ctx, v.Init)
			if v.Declared == nil {
				v.Declared = v.Init.DataType()
			} else {
				v.Init = coerceAssignable(ctx, v.Declared, v.Init, v.DeclaredAt)
			}
		}
		if v.Declared == nil {
			v.Declared = types.TVoid
		}
		ctx.Env.Define(v)
	case *ast.ExprStmt:
		st.X = resolveExpr(ctx, st.X)
	case *ast.If:
		st.Cond = resolveExpr(ctx, st.Cond)
		expectBool(ctx, st.Cond)
		ctx.Env.Push()
		resolveBlock(ctx, st.Then)
		ctx.Env.Pop()
		if st.Else != nil {
			ctx.Env.Push()
			resolveBlock(ctx, st.Else)
			ctx.Env.Pop()
		}
	case *ast.While:
		ctx.Env.Push()
		if st.Init != nil {
			resolveStmt(ctx, *st.Init)
		}
		st.Cond = resolveExpr(ctx, st.Cond)
		expectBool(ctx, st.Cond)
		if st.Post != nil {
			resolveStmt(ctx, st.Post)
		}
		ctx.loopDepth++
		resolveBlock(ctx, st.Body)
		ctx.loopDepth--
		ctx.Env.Pop()
	case *ast.Return:
		if ctx.currentFunc == nil {
			ctx.error(st.Position(), "return outside of a function")
			return
		}
		want := ctx.currentFunc.Return
		if st.Value == nil {
			if types.Resolve(want) != nil && want.Kind != types.Void {
				ctx.error(st.Position(), "missing return value for non-void function")
			}
			return
		}
		st.Value = resolveExpr(ctx, st.Value)
		st.Value = coerceAssignable(ctx, want, st.Value, st.Position())
	case *ast.Continue, *ast.Break, *ast.Import:
		// nothing to resolve
	case *ast.FuncDecl, *ast.ClassDecl:
		// top-level declarations handled by their own passes
	}
}

func expectBool(ctx *Context, e ast.Expr) {
	if e.DataType() == nil || e.DataType().Kind != types.Bool {
		ctx.error(e.Position(), "condition must be of type bool")
	}
}

// coerceAssignable checks value's type against want, inserting an implicit
// int->float widening cast, or reporting a type mismatch.
func coerceAssignable(ctx *Context, want *types.DataType, value ast.Expr, span token.Span) ast.Expr {
	if want == nil || value == nil || value.DataType() == nil {
		return value
	}
	got := value.DataType()
	if types.Equal(want, got) {
		return value
	}
	if want.Kind == types.Float && got.Kind == types.Integer {
		return wrapCast(value, got, want)
	}
	if want.Kind == types.Any && got.Kind != types.Any {
		return wrapCast(value, got, want)
	}
	if want.Kind == types.String && got.Kind != types.String {
		return wrapCast(value, got, want)
	}
	if got.Kind == types.Null && (want.Kind == types.Object || want.Kind == types.FunctionPointer || want.Kind == types.String || want.Kind == types.Array) {
		return value
	}
	// An empty array literal (`[]`) has no elements to infer an element
	// type from, so resolveArrayLit types it array<any,0>; retype it to
	// whatever array type it's assigned into rather than reporting a
	// spurious mismatch.
	if want.Kind == types.Array && got.Kind == types.Array && got.Element.Kind == types.Any && got.Count == 0 {
		if lit, ok := value.(*ast.ArrayLit); ok {
			lit.Type = want
		}
		return value
	}
	ctx.error(span, "type mismatch: cannot assign "+types.CanonicalName(got)+" to "+types.CanonicalName(want))
	return value
}

func wrapCast(value ast.Expr, from, to *types.DataType) ast.Expr {
	c := &ast.Cast{From: from, To: to, Operand: value}
	c.Span = value.Position()
	c.Type = to
	return c
}
