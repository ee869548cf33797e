package semantic

import (
	"github.com/lattisc/jitvm/internal/ast"
	"github.com/lattisc/jitvm/internal/types"
	"github.com/lattisc/jitvm/pkg/token"
)

// resolveExpr assigns a DataType to e (and every subexpression), returning
// the (possibly cast-wrapped) replacement to install in the caller's slot.
func resolveExpr(ctx *Context, e ast.Expr) ast.Expr {
	switch x := e.(type) {
	case *ast.Literal:
		return resolveLiteral(x)
	case *ast.Group:
		x.Inner = resolveExpr(ctx, x.Inner)
		x.Type = x.Inner.DataType()
		return x
	case *ast.Unary:
		return resolveUnary(ctx, x)
	case *ast.Binary:
		return resolveBinary(ctx, x)
	case *ast.VarRead:
		return resolveVarRead(ctx, x)
	case *ast.Assign:
		return resolveAssign(ctx, x)
	case *ast.Call:
		return resolveCall(ctx, x)
	case *ast.Cast:
		return resolveCast(ctx, x)
	case *ast.Field:
		return resolveField(ctx, x)
	case *ast.Index:
		return resolveIndex(ctx, x)
	case *ast.ArrayLit:
		return resolveArrayLit(ctx, x)
	case *ast.Conditional:
		return resolveConditional(ctx, x)
	case *ast.IsTest:
		return resolveIsTest(ctx, x)
	default:
		return e
	}
}

func resolveLiteral(l *ast.Literal) ast.Expr {
	switch l.Kind {
	case token.INT:
		l.Type = types.TInteger
	case token.FLOAT:
		l.Type = types.TFloat
	case token.STRING:
		l.Type = types.TString
	case token.TRUE, token.FALSE:
		l.Type = types.TBool
	case token.NULL:
		l.Type = types.TNull
	}
	return l
}

func resolveUnary(ctx *Context, u *ast.Unary) ast.Expr {
	u.Operand = resolveExpr(ctx, u.Operand)
	t := u.Operand.DataType()
	switch u.Op {
	case token.MINUS:
		if t == nil || (t.Kind != types.Integer && t.Kind != types.Float) {
			ctx.error(u.Position(), "unary - requires a numeric operand")
			u.Type = types.TInteger
		} else {
			u.Type = t
		}
	case token.TILDE:
		if t == nil || t.Kind != types.Integer {
			ctx.error(u.Position(), "~ requires an integer operand")
		}
		u.Type = types.TInteger
	case token.NOT:
		if t == nil || t.Kind != types.Bool {
			ctx.error(u.Position(), "not requires a bool operand")
		}
		u.Type = types.TBool
	}
	return u
}

func resolveVarRead(ctx *Context, v *ast.VarRead) ast.Expr {
	decl, ok := ctx.Env.Lookup(v.Name)
	if !ok {
		if v.Name == "this" {
			ctx.error(v.Position(), "'this' used outside of a method")
			v.Type = types.TVoid
			return v
		}
		ctx.error(v.Position(), "undefined name "+v.Name)
		v.Type = types.TVoid
		return v
	}
	v.Decl = decl
	v.Type = decl.Declared
	return v
}

func resolveAssign(ctx *Context, a *ast.Assign) ast.Expr {
	a.Target = resolveExpr(ctx, a.Target)
	a.Value = resolveExpr(ctx, a.Value)
	a.Value = coerceAssignable(ctx, a.Target.DataType(), a.Value, a.Position())
	a.Type = a.Target.DataType()
	return a
}

func resolveField(ctx *Context, f *ast.Field) ast.Expr {
	f.Object = resolveExpr(ctx, f.Object)
	ot := f.Object.DataType()
	if ot == nil || ot.Kind != types.Object {
		ctx.error(f.Position(), "field access requires an object operand")
		f.Type = types.TVoid
		return f
	}
	cls, _ := ot.Class.(*ast.ClassDecl)
	if cls == nil {
		f.Type = types.TVoid
		return f
	}
	member, ok := cls.Member(f.Name)
	if !ok {
		ctx.error(f.Position(), "undefined field "+f.Name+" on class "+cls.Name)
		f.Type = types.TVoid
		return f
	}
	f.Member = member
	f.Type = member.Declared
	return f
}

func resolveIndex(ctx *Context, ix *ast.Index) ast.Expr {
	ix.Collection = resolveExpr(ctx, ix.Collection)
	ix.Subscript = resolveExpr(ctx, ix.Subscript)
	if ix.Subscript.DataType() == nil || ix.Subscript.DataType().Kind != types.Integer {
		ctx.error(ix.Position(), "array index must be an int")
	}
	ct := ix.Collection.DataType()
	if ct == nil {
		ix.Type = types.TVoid
		return ix
	}
	switch ct.Kind {
	case types.Array:
		ix.Type = ct.Element
	case types.String:
		ix.Type = types.TChar
	default:
		ctx.error(ix.Position(), "indexing requires an array or string operand")
		ix.Type = types.TVoid
	}
	return ix
}

func resolveArrayLit(ctx *Context, a *ast.ArrayLit) ast.Expr {
	var elem *types.DataType
	for i, e := range a.Elements {
		a.Elements[i] = resolveExpr(ctx, e)
		if elem == nil {
			elem = a.Elements[i].DataType()
		} else if !types.Equal(elem, a.Elements[i].DataType()) {
			if elem.Kind == types.Integer && a.Elements[i].DataType().Kind == types.Float {
				elem = types.TFloat
			}
		}
	}
	if elem == nil {
		elem = types.TAny
	}
	a.Type = types.NewArray(len(a.Elements), elem)
	return a
}

func resolveConditional(ctx *Context, c *ast.Conditional) ast.Expr {
	c.Cond = resolveExpr(ctx, c.Cond)
	expectBool(ctx, c.Cond)
	c.Then = resolveExpr(ctx, c.Then)
	c.Else = resolveExpr(ctx, c.Else)
	if types.Equal(c.Then.DataType(), c.Else.DataType()) {
		c.Type = c.Then.DataType()
	} else if c.Then.DataType().Kind == types.Integer && c.Else.DataType().Kind == types.Float {
		c.Then = wrapCast(c.Then, c.Then.DataType(), types.TFloat)
		c.Type = types.TFloat
	} else if c.Then.DataType().Kind == types.Float && c.Else.DataType().Kind == types.Integer {
		c.Else = wrapCast(c.Else, c.Else.DataType(), types.TFloat)
		c.Type = types.TFloat
	} else {
		ctx.error(c.Position(), "conditional branches have incompatible types")
		c.Type = c.Then.DataType()
	}
	return c
}

func resolveIsTest(ctx *Context, t *ast.IsTest) ast.Expr {
	t.Operand = resolveExpr(ctx, t.Operand)
	t.Check = resolveTypeExpr(ctx, t.CheckExpr)
	if t.Operand.DataType() == nil || t.Operand.DataType().Kind != types.Any {
		ctx.error(t.Position(), "is-test requires an operand of type any")
	}
	t.Type = types.TBool
	return t
}

func resolveCast(ctx *Context, c *ast.Cast) ast.Expr {
	c.Operand = resolveExpr(ctx, c.Operand)
	c.From = c.Operand.DataType()
	c.To = resolveTypeExpr(ctx, c.ToExpr)
	if !castAllowed(c.From, c.To) {
		ctx.error(c.Position(), "invalid cast from "+types.CanonicalName(c.From)+" to "+types.CanonicalName(c.To))
	}
	c.Type = c.To
	return c
}

// castAllowed enumerates the transitions spec.md §4.4 names: int<->float,
// anything->string, any->concrete (checked at runtime), concrete->any,
// function reference->function pointer, plus identity and any widening
// already reachable through coerceAssignable.
func castAllowed(from, to *types.DataType) bool {
	if from == nil || to == nil {
		return false
	}
	if types.Equal(from, to) {
		return true
	}
	switch {
	case to.Kind == types.String:
		return true // every primitive/structural type has a stringification helper
	case to.Kind == types.Any:
		return true // concrete -> any always succeeds (tag injection)
	case from.Kind == types.Any:
		return true // any -> concrete always type-checks syntactically; may panic at runtime
	case from.Kind == types.Integer && to.Kind == types.Float:
		return true
	case from.Kind == types.Float && to.Kind == types.Integer:
		return true
	case from.Kind == types.Integer && to.Kind == types.Char:
		return true
	case from.Kind == types.Char && to.Kind == types.Integer:
		return true
	case from.Kind == types.Function && to.Kind == types.FunctionPointer:
		return true
	default:
		return false
	}
}
