package ir

import (
	"github.com/lattisc/jitvm/internal/ast"
	"github.com/lattisc/jitvm/internal/types"
)

// Builder lowers one *ast.FuncDecl (or global initializer) at a time into
// an *Item's instruction list, grounded on go-dws's internal/bytecode
// compiler_core.go/compiler_expressions.go/compiler_statements.go split —
// this file folds all three concerns together since the language's
// expression and statement grammar is much smaller than DWScript's.
type Builder struct {
	item     *Item
	nextReg  Reg
	loopExit []int // indices of jump instrs to patch to the loop's exit, per nesting level
	loopNext []int // indices of jump instrs to patch to the loop's post/cond re-check
}

// newTemp allocates a fresh scratch register above the function's
// parameter/local registers.
func (b *Builder) newTemp() Reg {
	r := b.nextReg
	b.nextReg++
	if int(b.nextReg) > b.item.NumLocals {
		b.item.NumLocals = int(b.nextReg)
	}
	return r
}

func (b *Builder) emit(i Instr) int {
	b.item.Instrs = append(b.item.Instrs, i)
	return len(b.item.Instrs) - 1
}

// BuildFunction lowers fn's body into a ready-to-link Item. Register 0 is
// the return-value slot; registers 1..len(fn.Locals) are parameters and
// declared locals at their parser-assigned Index+1; anything above that is
// a compiler-introduced temporary.
func BuildFunction(fn *ast.FuncDecl) *Item {
	params := make([]*types.DataType, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = p.Declared
	}
	item := &Item{
		Name:      fn.Signature,
		Proto:     Proto{Params: params, Return: fn.Return},
		NumLocals: len(fn.Locals) + 1,
	}
	b := &Builder{item: item, nextReg: Reg(len(fn.Locals) + 1)}
	b.compileBlock(fn.Body)
	b.emit(Instr{Op: OpReturnVoid})
	return item
}

// BuildGlobalInit lowers a global variable's initializer into a zero-arg
// Item whose single logical "statement" is `return init`; pkg/jitvm runs
// every global Item once, in declaration order, before <start>.
func BuildGlobalInit(v *ast.Variable) *Item {
	item := &Item{
		Name:      "$global$" + v.Name,
		Proto:     Proto{Return: v.Declared},
		NumLocals: 1,
		IsGlobal:  true,
	}
	b := &Builder{item: item, nextReg: 1}
	if v.Init != nil {
		r := b.compileExpr(v.Init)
		b.emit(Instr{Op: OpMove, Dst: ReturnReg, A: r})
	}
	b.emit(Instr{Op: OpReturn})
	return item
}

func (b *Builder) localReg(v *ast.Variable) Reg { return Reg(v.Index + 1) }

func (b *Builder) compileBlock(blk *ast.Block) {
	if blk == nil {
		return
	}
	for _, s := range blk.Stmts {
		b.compileStmt(s)
	}
}

func (b *Builder) compileStmt(s ast.Stmt) {
	switch st := s.(type) {
	case *ast.VarDecl:
		dst := b.localReg(st.Var)
		if st.Var.Init != nil {
			r := b.compileExpr(st.Var.Init)
			b.emit(Instr{Op: OpMove, Dst: dst, A: r})
		}
	case *ast.ExprStmt:
		b.compileExpr(st.X)
	case *ast.If:
		b.compileIf(st)
	case *ast.While:
		b.compileWhile(st)
	case *ast.Return:
		if st.Value != nil {
			r := b.compileExpr(st.Value)
			b.emit(Instr{Op: OpMove, Dst: ReturnReg, A: r})
		}
		b.emit(Instr{Op: OpReturn})
	case *ast.Continue:
		idx := b.emit(Instr{Op: OpJump, Target: -1})
		b.loopNext = append(b.loopNext, idx)
	case *ast.Break:
		idx := b.emit(Instr{Op: OpJump, Target: -1})
		b.loopExit = append(b.loopExit, idx)
	case *ast.Import:
		// resolved by pkg/jitvm's loader, nothing to lower
	case *ast.FuncDecl, *ast.ClassDecl:
		// nested declarations are compiled as their own top-level Items
	}
}

func (b *Builder) compileIf(st *ast.If) {
	cond := b.compileExpr(st.Cond)
	jf := b.emit(Instr{Op: OpJumpIfFalse, A: cond, Target: -1})
	b.compileBlock(st.Then)
	if st.Else == nil {
		b.item.Instrs[jf].Target = len(b.item.Instrs)
		return
	}
	jend := b.emit(Instr{Op: OpJump, Target: -1})
	b.item.Instrs[jf].Target = len(b.item.Instrs)
	b.compileBlock(st.Else)
	b.item.Instrs[jend].Target = len(b.item.Instrs)
}

func (b *Builder) compileWhile(st *ast.While) {
	savedExit, savedNext := b.loopExit, b.loopNext
	b.loopExit, b.loopNext = nil, nil

	if st.Init != nil {
		b.compileStmt(*st.Init)
	}
	condPC := len(b.item.Instrs)
	cond := b.compileExpr(st.Cond)
	jf := b.emit(Instr{Op: OpJumpIfFalse, A: cond, Target: -1})
	b.compileBlock(st.Body)
	postPC := len(b.item.Instrs)
	if st.Post != nil {
		b.compileStmt(st.Post)
	}
	b.emit(Instr{Op: OpJump, Target: condPC})
	endPC := len(b.item.Instrs)
	b.item.Instrs[jf].Target = endPC

	for _, idx := range b.loopNext {
		b.item.Instrs[idx].Target = postPC
	}
	for _, idx := range b.loopExit {
		b.item.Instrs[idx].Target = endPC
	}
	b.loopExit, b.loopNext = savedExit, savedNext
}
