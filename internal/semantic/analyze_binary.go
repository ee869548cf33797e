package semantic

import (
	"github.com/lattisc/jitvm/internal/ast"
	"github.com/lattisc/jitvm/internal/types"
	"github.com/lattisc/jitvm/pkg/token"
)

// resolveBinary assigns exactly one BinaryDispatch family per spec.md
// §4.5.1 / §8's "no fallthrough" invariant: integer, float, string, a
// class operator override, or (for and/or) the short-circuit logical form
// already tagged by the parser.
func resolveBinary(ctx *Context, b *ast.Binary) ast.Expr {
	if b.Dispatch == ast.DispatchLogical {
		b.Left = resolveExpr(ctx, b.Left)
		b.Right = resolveExpr(ctx, b.Right)
		expectBool(ctx, b.Left)
		expectBool(ctx, b.Right)
		b.Type = types.TBool
		return b
	}

	b.Left = resolveExpr(ctx, b.Left)
	b.Right = resolveExpr(ctx, b.Right)
	lt, rt := b.Left.DataType(), b.Right.DataType()
	if lt == nil || rt == nil {
		b.Type = types.TVoid
		return b
	}

	if isComparison(b.Op) {
		return resolveComparison(ctx, b, lt, rt)
	}

	switch {
	case lt.Kind == types.Object || rt.Kind == types.Object:
		return resolveObjectOverride(ctx, b, lt, rt)
	case lt.Kind == types.String || rt.Kind == types.String:
		return resolveStringBinary(ctx, b, lt, rt)
	case lt.Kind == types.Float || rt.Kind == types.Float:
		return resolveNumericBinary(ctx, b, lt, rt, types.TFloat, ast.DispatchFloat)
	case lt.Kind == types.Integer && rt.Kind == types.Integer:
		return resolveNumericBinary(ctx, b, lt, rt, types.TInteger, ast.DispatchInteger)
	default:
		ctx.error(b.Position(), "operator "+b.Op.String()+" is not defined for "+types.CanonicalName(lt)+" and "+types.CanonicalName(rt))
		b.Dispatch = ast.DispatchInteger
		b.Type = types.TInteger
		return b
	}
}

func isComparison(op token.Kind) bool {
	switch op {
	case token.EQ, token.NEQ, token.LT, token.LTE, token.GT, token.GTE:
		return true
	}
	return false
}

func resolveComparison(ctx *Context, b *ast.Binary, lt, rt *types.DataType) ast.Expr {
	switch {
	case lt.Kind == types.Object || rt.Kind == types.Object:
		b.Dispatch = ast.DispatchObjectOverride
		b.OperandType = lt
	case lt.Kind == types.String && rt.Kind == types.String:
		b.Dispatch = ast.DispatchString
		b.OperandType = types.TString
	case lt.Kind == types.Float || rt.Kind == types.Float:
		b.Left = coerceNumeric(b.Left, lt, types.TFloat)
		b.Right = coerceNumeric(b.Right, rt, types.TFloat)
		b.Dispatch = ast.DispatchFloat
		b.OperandType = types.TFloat
	case lt.Kind == types.Integer && rt.Kind == types.Integer:
		b.Dispatch = ast.DispatchInteger
		b.OperandType = types.TInteger
	case lt.Kind == rt.Kind:
		b.Dispatch = ast.DispatchInteger
		b.OperandType = lt
	default:
		ctx.error(b.Position(), "cannot compare "+types.CanonicalName(lt)+" and "+types.CanonicalName(rt))
		b.Dispatch = ast.DispatchInteger
	}
	b.Type = types.TBool
	return b
}

func resolveNumericBinary(ctx *Context, b *ast.Binary, lt, rt, result *types.DataType, d ast.BinaryDispatch) ast.Expr {
	requiresInt := isBitwise(b.Op)
	if requiresInt && d != ast.DispatchInteger {
		ctx.error(b.Position(), "bitwise operator "+b.Op.String()+" requires int operands")
		b.Dispatch = ast.DispatchInteger
		b.Type = types.TInteger
		return b
	}
	b.Left = coerceNumeric(b.Left, lt, result)
	b.Right = coerceNumeric(b.Right, rt, result)
	b.Dispatch = d
	b.OperandType = result
	b.Type = result
	return b
}

func isBitwise(op token.Kind) bool {
	switch op {
	case token.AMP, token.PIPE, token.CARET, token.SHL, token.SHR:
		return true
	}
	return false
}

func coerceNumeric(e ast.Expr, from, to *types.DataType) ast.Expr {
	if types.Equal(from, to) {
		return e
	}
	return wrapCast(e, from, to)
}

func resolveStringBinary(ctx *Context, b *ast.Binary, lt, rt *types.DataType) ast.Expr {
	if b.Op != token.PLUS {
		ctx.error(b.Position(), "operator "+b.Op.String()+" is not defined for strings")
	}
	if lt.Kind != types.String {
		b.Left = wrapCast(b.Left, lt, types.TString)
	}
	if rt.Kind != types.String {
		b.Right = wrapCast(b.Right, rt, types.TString)
	}
	b.Dispatch = ast.DispatchString
	b.OperandType = types.TString
	b.Type = types.TString
	return b
}

// resolveObjectOverride looks for a matching `operator` method on the
// object operand's class (spec.md §4.5.1's override table); an operand
// class lacking the override is a resolution error, never a silent
// fallback to a primitive dispatch.
func resolveObjectOverride(ctx *Context, b *ast.Binary, lt, rt *types.DataType) ast.Expr {
	var cls *ast.ClassDecl
	if lt.Kind == types.Object {
		cls, _ = lt.Class.(*ast.ClassDecl)
	}
	if cls == nil && rt.Kind == types.Object {
		cls, _ = rt.Class.(*ast.ClassDecl)
	}
	if cls == nil {
		ctx.error(b.Position(), "operator "+b.Op.String()+" is not defined for these operand types")
		b.Dispatch = ast.DispatchInteger
		b.Type = types.TInteger
		return b
	}
	name := "operator" + b.Op.String()
	group, ok := cls.Method(name)
	if !ok || len(group.Overloads) == 0 {
		ctx.error(b.Position(), "class "+cls.Name+" does not override operator "+b.Op.String())
		b.Dispatch = ast.DispatchInteger
		b.Type = types.TInteger
		return b
	}
	fn := group.Overloads[0]
	b.Dispatch = ast.DispatchObjectOverride
	b.OverrideFn = fn
	b.OperandType = lt
	b.Type = fn.Return
	return b
}
