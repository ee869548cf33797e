package ir

import (
	"github.com/lattisc/jitvm/internal/ast"
	"github.com/lattisc/jitvm/internal/types"
	"github.com/lattisc/jitvm/pkg/token"
)

// compileExpr lowers e into zero or more instructions and returns the
// register holding its value.
func (b *Builder) compileExpr(e ast.Expr) Reg {
	switch x := e.(type) {
	case *ast.Literal:
		return b.compileLiteral(x)
	case *ast.Group:
		return b.compileExpr(x.Inner)
	case *ast.Unary:
		return b.compileUnary(x)
	case *ast.Binary:
		return b.compileBinary(x)
	case *ast.VarRead:
		return b.compileVarRead(x)
	case *ast.Assign:
		return b.compileAssign(x)
	case *ast.Call:
		return b.compileCall(x)
	case *ast.Cast:
		return b.compileCast(x)
	case *ast.Field:
		return b.compileField(x)
	case *ast.Index:
		return b.compileIndex(x)
	case *ast.ArrayLit:
		return b.compileArrayLit(x)
	case *ast.Conditional:
		return b.compileConditional(x)
	case *ast.IsTest:
		return b.compileIsTest(x)
	default:
		return b.newTemp()
	}
}

func (b *Builder) compileLiteral(l *ast.Literal) Reg {
	dst := b.newTemp()
	switch l.Kind {
	case token.INT:
		b.emit(Instr{Op: OpLoadConstInt, Dst: dst, ConstInt: l.IVal})
	case token.FLOAT:
		b.emit(Instr{Op: OpLoadConstFloat, Dst: dst, ConstFloat: l.FVal})
	case token.STRING:
		b.emit(Instr{Op: OpLoadConstString, Dst: dst, ConstString: l.SVal})
	case token.TRUE, token.FALSE:
		b.emit(Instr{Op: OpLoadConstBool, Dst: dst, ConstBool: l.BVal})
	case token.NULL:
		b.emit(Instr{Op: OpLoadConstNull, Dst: dst})
	}
	return dst
}

func (b *Builder) compileUnary(u *ast.Unary) Reg {
	a := b.compileExpr(u.Operand)
	dst := b.newTemp()
	switch u.Op {
	case token.MINUS:
		if u.Operand.DataType() != nil && u.Operand.DataType().Kind == types.Float {
			b.emit(Instr{Op: OpNegFloat, Dst: dst, A: a})
		} else {
			b.emit(Instr{Op: OpNegInt, Dst: dst, A: a})
		}
	case token.TILDE:
		b.emit(Instr{Op: OpBitNot, Dst: dst, A: a})
	case token.NOT:
		b.emit(Instr{Op: OpNot, Dst: dst, A: a})
	}
	return dst
}

var intCmp = map[token.Kind]Op{
	token.EQ: OpCmpEqInt, token.LT: OpCmpLtInt, token.LTE: OpCmpLeInt,
	token.GT: OpCmpGtInt, token.GTE: OpCmpGeInt,
}
var floatCmp = map[token.Kind]Op{
	token.EQ: OpCmpEqFloat, token.LT: OpCmpLtFloat, token.LTE: OpCmpLeFloat,
	token.GT: OpCmpGtFloat, token.GTE: OpCmpGeFloat,
}
var intArith = map[token.Kind]Op{
	token.PLUS: OpAddInt, token.MINUS: OpSubInt, token.STAR: OpMulInt, token.SLASH: OpDivInt,
	token.PERCENT: OpModInt, token.AMP: OpBitAnd, token.PIPE: OpBitOr, token.CARET: OpBitXor,
	token.SHL: OpShl, token.SHR: OpShr,
}
var floatArith = map[token.Kind]Op{
	token.PLUS: OpAddFloat, token.MINUS: OpSubFloat, token.STAR: OpMulFloat, token.SLASH: OpDivFloat,
}

func (b *Builder) compileBinary(bin *ast.Binary) Reg {
	if bin.Dispatch == ast.DispatchLogical {
		return b.compileLogical(bin)
	}
	left := b.compileExpr(bin.Left)
	right := b.compileExpr(bin.Right)
	dst := b.newTemp()

	if bin.Op == token.NEQ {
		eq := b.compileEquality(bin, left, right)
		b.emit(Instr{Op: OpNot, Dst: dst, A: eq})
		return dst
	}

	switch bin.Dispatch {
	case ast.DispatchInteger:
		if op, ok := intCmp[bin.Op]; ok {
			b.emit(Instr{Op: op, Dst: dst, A: left, B: right})
		} else {
			b.emit(Instr{Op: intArith[bin.Op], Dst: dst, A: left, B: right})
		}
	case ast.DispatchFloat:
		if op, ok := floatCmp[bin.Op]; ok {
			b.emit(Instr{Op: op, Dst: dst, A: left, B: right})
		} else {
			b.emit(Instr{Op: floatArith[bin.Op], Dst: dst, A: left, B: right})
		}
	case ast.DispatchString:
		if bin.Op == token.EQ {
			b.emit(Instr{Op: OpCmpEqString, Dst: dst, A: left, B: right})
		} else {
			b.emit(Instr{Op: OpConcatString, Dst: dst, A: left, B: right})
		}
	case ast.DispatchObjectOverride:
		b.emit(Instr{Op: OpCallMethod, Dst: dst, A: left, CallTarget: itemOf(bin.OverrideFn), CallArgs: []Reg{right}})
	}
	return dst
}

func (b *Builder) compileEquality(bin *ast.Binary, left, right Reg) Reg {
	dst := b.newTemp()
	switch bin.Dispatch {
	case ast.DispatchFloat:
		b.emit(Instr{Op: OpCmpEqFloat, Dst: dst, A: left, B: right})
	case ast.DispatchString:
		b.emit(Instr{Op: OpCmpEqString, Dst: dst, A: left, B: right})
	default:
		b.emit(Instr{Op: OpCmpEqInt, Dst: dst, A: left, B: right})
	}
	return dst
}

// compileLogical lowers short-circuit and/or to branches rather than an
// opcode, per ast.DispatchLogical's doc comment.
func (b *Builder) compileLogical(bin *ast.Binary) Reg {
	dst := b.newTemp()
	left := b.compileExpr(bin.Left)
	b.emit(Instr{Op: OpMove, Dst: dst, A: left})
	var skip int
	if bin.Op == token.AND {
		skip = b.emit(Instr{Op: OpJumpIfFalse, A: dst, Target: -1})
	} else {
		notLeft := b.newTemp()
		b.emit(Instr{Op: OpNot, Dst: notLeft, A: dst})
		skip = b.emit(Instr{Op: OpJumpIfFalse, A: notLeft, Target: -1})
	}
	right := b.compileExpr(bin.Right)
	b.emit(Instr{Op: OpMove, Dst: dst, A: right})
	b.item.Instrs[skip].Target = len(b.item.Instrs)
	return dst
}

func (b *Builder) compileVarRead(v *ast.VarRead) Reg {
	if v.Decl == nil {
		return b.newTemp()
	}
	if v.Decl.Scope == ast.ScopeGlobal {
		dst := b.newTemp()
		b.emit(Instr{Op: OpGetGlobal, Dst: dst, GlobalName: v.Decl.Name})
		return dst
	}
	return b.localReg(v.Decl)
}

func (b *Builder) compileAssign(a *ast.Assign) Reg {
	value := b.compileExpr(a.Value)
	switch t := a.Target.(type) {
	case *ast.VarRead:
		if t.Decl != nil && t.Decl.Scope == ast.ScopeGlobal {
			b.emit(Instr{Op: OpSetGlobal, A: value, GlobalName: t.Decl.Name})
			return value
		}
		dst := b.localReg(t.Decl)
		b.emit(Instr{Op: OpMove, Dst: dst, A: value})
		return value
	case *ast.Field:
		obj := b.compileExpr(t.Object)
		b.emit(Instr{Op: OpFieldSet, A: obj, B: value, FieldOffs: t.Member.Offset, FieldType: t.Member.Declared})
		return value
	case *ast.Index:
		coll := b.compileExpr(t.Collection)
		idx := b.compileExpr(t.Subscript)
		b.emit(Instr{Op: OpArraySet, A: coll, B: idx, Dst: value})
		return value
	}
	return value
}

func (b *Builder) compileCast(c *ast.Cast) Reg {
	src := b.compileExpr(c.Operand)
	dst := b.newTemp()
	switch {
	case c.From.Kind == types.Integer && c.To.Kind == types.Float:
		b.emit(Instr{Op: OpCastIntToFloat, Dst: dst, A: src})
	case c.From.Kind == types.Float && c.To.Kind == types.Integer:
		b.emit(Instr{Op: OpCastFloatToInt, Dst: dst, A: src})
	case c.From.Kind == types.Integer && c.To.Kind == types.Char:
		b.emit(Instr{Op: OpCastIntToChar, Dst: dst, A: src})
	case c.From.Kind == types.Char && c.To.Kind == types.Integer:
		b.emit(Instr{Op: OpCastCharToInt, Dst: dst, A: src})
	case c.To.Kind == types.Any:
		b.emit(Instr{Op: OpCastToAny, Dst: dst, A: src, OperandTy: c.From})
	case c.From.Kind == types.Any:
		// any->concrete is always a checked unboxing (spec.md §4.5.1), even
		// when the target is string: this is not the "anything->string"
		// stringify conversion, so it must come before that case below.
		b.emit(Instr{Op: OpCastFromAny, Dst: dst, A: src, OperandTy: c.To})
	case c.To.Kind == types.String:
		b.emit(Instr{Op: OpCastToString, Dst: dst, A: src, OperandTy: c.From})
	default:
		b.emit(Instr{Op: OpMove, Dst: dst, A: src})
	}
	return dst
}

func (b *Builder) compileField(f *ast.Field) Reg {
	obj := b.compileExpr(f.Object)
	dst := b.newTemp()
	b.emit(Instr{Op: OpFieldGet, Dst: dst, A: obj, FieldOffs: f.Member.Offset, FieldType: f.Member.Declared})
	return dst
}

func (b *Builder) compileIndex(ix *ast.Index) Reg {
	coll := b.compileExpr(ix.Collection)
	idx := b.compileExpr(ix.Subscript)
	dst := b.newTemp()
	b.emit(Instr{Op: OpArrayGet, Dst: dst, A: coll, B: idx})
	return dst
}

func (b *Builder) compileArrayLit(a *ast.ArrayLit) Reg {
	elem := types.TAny
	if at := a.DataType(); at != nil {
		elem = at.Element
	}
	elems := make([]Reg, len(a.Elements))
	for i, el := range a.Elements {
		elems[i] = b.compileExpr(el)
	}
	dst := b.newTemp()
	b.emit(Instr{Op: OpNewArray, Dst: dst, OperandTy: elem, Elements: elems})
	return dst
}

func (b *Builder) compileConditional(c *ast.Conditional) Reg {
	dst := b.newTemp()
	cond := b.compileExpr(c.Cond)
	jf := b.emit(Instr{Op: OpJumpIfFalse, A: cond, Target: -1})
	thenReg := b.compileExpr(c.Then)
	b.emit(Instr{Op: OpMove, Dst: dst, A: thenReg})
	jend := b.emit(Instr{Op: OpJump, Target: -1})
	b.item.Instrs[jf].Target = len(b.item.Instrs)
	elseReg := b.compileExpr(c.Else)
	b.emit(Instr{Op: OpMove, Dst: dst, A: elseReg})
	b.item.Instrs[jend].Target = len(b.item.Instrs)
	return dst
}

func (b *Builder) compileIsTest(t *ast.IsTest) Reg {
	operand := b.compileExpr(t.Operand)
	dst := b.newTemp()
	b.emit(Instr{Op: OpIsTest, Dst: dst, A: operand, OperandTy: t.Check})
	return dst
}

func (b *Builder) compileCall(c *ast.Call) Reg {
	if c.Construct != nil {
		return b.compileConstruct(c)
	}
	dst := b.newTemp()
	args := make([]Reg, len(c.Args))
	for i, a := range c.Args {
		args[i] = b.compileExpr(a)
	}
	if c.Resolved != nil && c.Resolved.IsNative {
		b.emit(Instr{Op: OpLog, Dst: dst, A: args[0], OperandTy: c.Resolved.Params[0].Declared})
		return dst
	}
	switch callee := c.Callee.(type) {
	case *ast.Field:
		obj := b.compileExpr(callee.Object)
		b.emit(Instr{Op: OpCallMethod, Dst: dst, A: obj, CallTarget: itemOf(c.Resolved), CallArgs: args})
	case *ast.VarRead:
		if callee.Decl != nil && callee.Decl.Declared != nil && callee.Decl.Declared.Kind == types.FunctionPointer {
			ptr := b.compileVarRead(callee)
			b.emit(Instr{Op: OpCallPtr, Dst: dst, A: ptr, CallArgs: args})
		} else {
			b.emit(Instr{Op: OpCall, Dst: dst, CallTarget: itemOf(c.Resolved), CallArgs: args})
		}
	default:
		ptr := b.compileExpr(c.Callee)
		b.emit(Instr{Op: OpCallPtr, Dst: dst, A: ptr, CallArgs: args})
	}
	return dst
}

// compileConstruct lowers `ClassName(args)` to an OpNewObject allocation
// followed by an OpCallMethod into DefaultCtor (params[0] is `this`), if the
// class declares one. The new object register is the expression's result.
func (b *Builder) compileConstruct(c *ast.Call) Reg {
	dst := b.newTemp()
	b.emit(Instr{Op: OpNewObject, Dst: dst, OperandTy: c.Type})
	if c.Resolved != nil {
		args := make([]Reg, len(c.Args))
		for i, a := range c.Args {
			args[i] = b.compileExpr(a)
		}
		ctorDst := b.newTemp()
		b.emit(Instr{Op: OpCallMethod, Dst: ctorDst, A: dst, CallTarget: itemOf(c.Resolved), CallArgs: args})
	}
	return dst
}

// itemOf is a forward reference placeholder: the builder runs before
// linking, so a call site records the *ast.FuncDecl's canonical signature
// and Link fills CallTarget in afterward. See link.go.
func itemOf(fn *ast.FuncDecl) *Item {
	if fn == nil {
		return nil
	}
	return &Item{Name: fn.Signature}
}
