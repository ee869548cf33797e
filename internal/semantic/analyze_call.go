package semantic

import (
	"github.com/lattisc/jitvm/internal/ast"
	"github.com/lattisc/jitvm/internal/types"
)

// resolveCall type-checks arguments, then dispatches to free-function
// overload resolution, method overload resolution (via a Field callee), or
// a function-pointer-value call, per spec.md §4.4.
func resolveCall(ctx *Context, c *ast.Call) ast.Expr {
	argTypes := make([]*types.DataType, len(c.Args))
	for i, a := range c.Args {
		c.Args[i] = resolveExpr(ctx, a)
		argTypes[i] = c.Args[i].DataType()
	}

	switch callee := c.Callee.(type) {
	case *ast.VarRead:
		if group, ok := ctx.Env.LookupFunc(callee.Name); ok {
			return finishCall(ctx, c, group, argTypes)
		}
		if v, ok := ctx.Env.Lookup(callee.Name); ok && v.Declared != nil && v.Declared.Kind == types.FunctionPointer {
			callee.Decl = v
			callee.Type = v.Declared
			return finishPointerCall(ctx, c, v.Declared, argTypes)
		}
		if cls, ok := ctx.Env.LookupClass(callee.Name); ok {
			return finishConstruct(ctx, c, cls, argTypes)
		}
		ctx.error(c.Position(), "undefined function "+callee.Name)
		c.Type = types.TVoid
		return c
	case *ast.Field:
		callee.Object = resolveExpr(ctx, callee.Object)
		ot := callee.Object.DataType()
		if ot == nil || ot.Kind != types.Object {
			ctx.error(c.Position(), "method call requires an object operand")
			c.Type = types.TVoid
			return c
		}
		cls, _ := ot.Class.(*ast.ClassDecl)
		if cls == nil {
			c.Type = types.TVoid
			return c
		}
		group, ok := cls.Method(callee.Name)
		if !ok {
			ctx.error(c.Position(), "class "+cls.Name+" has no method "+callee.Name)
			c.Type = types.TVoid
			return c
		}
		c.Callee = callee
		return finishCall(ctx, c, group, argTypes)
	default:
		c.Callee = resolveExpr(ctx, c.Callee)
		ct := c.Callee.DataType()
		if ct == nil || ct.Kind != types.FunctionPointer {
			ctx.error(c.Position(), "expression is not callable")
			c.Type = types.TVoid
			return c
		}
		return finishPointerCall(ctx, c, ct, argTypes)
	}
}

func finishCall(ctx *Context, c *ast.Call, group *ast.FuncGroup, argTypes []*types.DataType) ast.Expr {
	fn := resolveOverload(ctx, group, argTypes, c)
	if fn == nil {
		c.Type = types.TVoid
		return c
	}
	c.Resolved = fn
	c.Return = fn.Return
	c.Type = fn.Return
	for i, p := range fn.Params {
		c.Args[i] = coerceAssignable(ctx, p.Declared, c.Args[i], c.Args[i].Position())
	}
	return c
}

// finishConstruct type-checks a `ClassName(args)` construction call against
// the class's DefaultCtor, if declared, and types the result as an Object
// reference to cls (spec.md §3.6's (ItemCtor, ProtoCtor) handle pair).
func finishConstruct(ctx *Context, c *ast.Call, cls *ast.ClassDecl, argTypes []*types.DataType) ast.Expr {
	c.Construct = cls
	objType := types.NewObject(cls)
	if cls.DefaultCtor == nil {
		if len(argTypes) != 0 {
			ctx.error(c.Position(), "class "+cls.Name+" has no constructor accepting arguments")
		}
		c.Type = objType
		c.Return = objType
		return c
	}
	fn := cls.DefaultCtor
	if len(fn.Params) != len(argTypes) {
		ctx.error(c.Position(), "wrong number of arguments to "+cls.Name+" constructor")
		c.Type = objType
		c.Return = objType
		return c
	}
	c.Resolved = fn
	for i, p := range fn.Params {
		c.Args[i] = coerceAssignable(ctx, p.Declared, c.Args[i], c.Args[i].Position())
	}
	c.Type = objType
	c.Return = objType
	return c
}

func finishPointerCall(ctx *Context, c *ast.Call, fnType *types.DataType, argTypes []*types.DataType) ast.Expr {
	if len(fnType.Sig.Params) != len(argTypes) {
		ctx.error(c.Position(), "function pointer expects a different number of arguments")
		c.Type = types.TVoid
		return c
	}
	for i, p := range fnType.Sig.Params {
		if rankParam(p, argTypes[i]) == rankNone {
			ctx.error(c.Position(), "argument type mismatch in function-pointer call")
		}
		c.Args[i] = coerceAssignable(ctx, p, c.Args[i], c.Args[i].Position())
	}
	c.Return = fnType.Sig.Return
	c.Type = fnType.Sig.Return
	return c
}
