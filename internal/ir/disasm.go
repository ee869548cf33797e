package ir

import (
	"fmt"
	"io"
	"strings"
)

// Disassembler prints a human-readable listing of a Module, grounded on
// go-dws's bytecode.Disassembler: one line per instruction, operands
// rendered by category rather than raw register numbers.
type Disassembler struct {
	w io.Writer
	m *Module
}

func NewDisassembler(m *Module, w io.Writer) *Disassembler {
	return &Disassembler{w: w, m: m}
}

// Disassemble prints every Item in the module, in declaration order.
func (d *Disassembler) Disassemble() {
	for _, name := range d.m.Order {
		d.DisassembleItem(d.m.Items[name])
	}
}

func (d *Disassembler) DisassembleItem(it *Item) {
	fmt.Fprintf(d.w, "== %s ==\n", it.Name)
	if it.IsExternal {
		fmt.Fprintf(d.w, "  (external)\n\n")
		return
	}
	if it.Native {
		fmt.Fprintf(d.w, "  (native x86-64, %d instrs)\n\n", len(it.Instrs))
		return
	}
	fmt.Fprintf(d.w, "locals=%d instrs=%d\n", it.NumLocals, len(it.Instrs))
	for pc := range it.Instrs {
		d.DisassembleInstruction(it, pc)
	}
	fmt.Fprintf(d.w, "\n")
}

func (d *Disassembler) DisassembleInstruction(it *Item, pc int) {
	ins := it.Instrs[pc]
	fmt.Fprintf(d.w, "%04d %s\n", pc, d.render(ins))
}

func (d *Disassembler) render(ins Instr) string {
	name := opNames[ins.Op]
	switch ins.Op {
	case OpLoadConstInt:
		return fmt.Sprintf("%-16s r%d <- %d", name, ins.Dst, ins.ConstInt)
	case OpLoadConstFloat:
		return fmt.Sprintf("%-16s r%d <- %g", name, ins.Dst, ins.ConstFloat)
	case OpLoadConstBool:
		return fmt.Sprintf("%-16s r%d <- %t", name, ins.Dst, ins.ConstBool)
	case OpLoadConstChar:
		return fmt.Sprintf("%-16s r%d <- %q", name, ins.Dst, ins.ConstChar)
	case OpLoadConstString:
		return fmt.Sprintf("%-16s r%d <- %q", name, ins.Dst, ins.ConstString)
	case OpLoadConstNull, OpReturn, OpReturnVoid:
		return fmt.Sprintf("%-16s r%d", name, ins.Dst)
	case OpMove, OpNegInt, OpBitNot, OpNegFloat, OpNot,
		OpCastIntToFloat, OpCastFloatToInt, OpCastIntToChar, OpCastCharToInt,
		OpCastToString, OpCastToAny, OpCastFromAny, OpIsTest, OpArrayLen:
		return fmt.Sprintf("%-16s r%d <- r%d", name, ins.Dst, ins.A)
	case OpJump:
		return fmt.Sprintf("%-16s -> %04d", name, ins.Target)
	case OpJumpIfFalse:
		return fmt.Sprintf("%-16s r%d -> %04d", name, ins.A, ins.Target)
	case OpGetGlobal:
		return fmt.Sprintf("%-16s r%d <- %s", name, ins.Dst, ins.GlobalName)
	case OpSetGlobal:
		return fmt.Sprintf("%-16s %s <- r%d", name, ins.GlobalName, ins.A)
	case OpCall:
		return fmt.Sprintf("%-16s r%d <- %s(%s)", name, ins.Dst, callTargetName(ins), regList(ins.CallArgs))
	case OpCallMethod:
		return fmt.Sprintf("%-16s r%d <- r%d.%s(%s)", name, ins.Dst, ins.A, callTargetName(ins), regList(ins.CallArgs))
	case OpCallPtr:
		return fmt.Sprintf("%-16s r%d <- r%d(%s)", name, ins.Dst, ins.A, regList(ins.CallArgs))
	case OpNewArray:
		return fmt.Sprintf("%-16s r%d <- [%s]", name, ins.Dst, regList(ins.Elements))
	case OpFieldGet:
		return fmt.Sprintf("%-16s r%d <- r%d.field[%d]", name, ins.Dst, ins.A, ins.FieldOffs)
	case OpFieldSet:
		return fmt.Sprintf("%-16s r%d.field[%d] <- r%d", name, ins.A, ins.FieldOffs, ins.B)
	case OpNewObject:
		return fmt.Sprintf("%-16s r%d <- new", name, ins.Dst)
	case OpPanic:
		return fmt.Sprintf("%-16s %q", name, ins.ConstString)
	case OpLog:
		return fmt.Sprintf("%-16s r%d", name, ins.A)
	default:
		return fmt.Sprintf("%-16s r%d <- r%d, r%d", name, ins.Dst, ins.A, ins.B)
	}
}

func callTargetName(ins Instr) string {
	if ins.CallTarget == nil {
		return "<unresolved>"
	}
	return ins.CallTarget.Name
}

func regList(rs []Reg) string {
	parts := make([]string, len(rs))
	for i, r := range rs {
		parts[i] = fmt.Sprintf("r%d", r)
	}
	return strings.Join(parts, ", ")
}

var opNames = map[Op]string{
	OpLoadConstInt: "loadconst.i", OpLoadConstFloat: "loadconst.f", OpLoadConstBool: "loadconst.b",
	OpLoadConstChar: "loadconst.c", OpLoadConstString: "loadconst.s", OpLoadConstNull: "loadconst.null",
	OpMove: "move",
	OpAddInt: "add.i", OpSubInt: "sub.i", OpMulInt: "mul.i", OpDivInt: "div.i", OpModInt: "mod.i",
	OpBitAnd: "and", OpBitOr: "or", OpBitXor: "xor", OpShl: "shl", OpShr: "shr",
	OpNegInt: "neg.i", OpBitNot: "not.bit",
	OpAddFloat: "add.f", OpSubFloat: "sub.f", OpMulFloat: "mul.f", OpDivFloat: "div.f", OpNegFloat: "neg.f",
	OpConcatString: "concat",
	OpCmpEqInt: "eq.i", OpCmpLtInt: "lt.i", OpCmpLeInt: "le.i", OpCmpGtInt: "gt.i", OpCmpGeInt: "ge.i",
	OpCmpEqFloat: "eq.f", OpCmpLtFloat: "lt.f", OpCmpLeFloat: "le.f", OpCmpGtFloat: "gt.f", OpCmpGeFloat: "ge.f",
	OpCmpEqString: "eq.s", OpNot: "not",
	OpCastIntToFloat: "cast.i2f", OpCastFloatToInt: "cast.f2i", OpCastIntToChar: "cast.i2c",
	OpCastCharToInt: "cast.c2i", OpCastToString: "cast.str", OpCastToAny: "cast.any",
	OpCastFromAny: "cast.fromany", OpIsTest: "istest",
	OpNewArray: "newarray", OpArrayGet: "arrget", OpArraySet: "arrset", OpArrayLen: "arrlen",
	OpFieldGet: "fieldget", OpFieldSet: "fieldset", OpNewObject: "newobject",
	OpCall: "call", OpCallMethod: "callmethod", OpCallPtr: "callptr",
	OpJump: "jump", OpJumpIfFalse: "jumpiffalse",
	OpGetGlobal: "getglobal", OpSetGlobal: "setglobal",
	OpReturn: "return", OpReturnVoid: "return.void", OpPanic: "panic",
	OpLog: "log",
}

// DisassembleToString renders a module's full listing, for golden-file tests.
func DisassembleToString(m *Module) string {
	var sb strings.Builder
	NewDisassembler(m, &sb).Disassemble()
	return sb.String()
}
