// Package ir is the backend spec.md §4.5 names: a module of lowered
// functions ("Items"), a per-function builder producing typed
// three-address instructions, a linker resolving call targets, and a
// generator that compiles the linked module two ways: a narrow native
// tier assembling real x86-64 machine code for the arithmetic-leaf shape
// it recognizes (native_amd64.go), and a closure-chain interpreter
// covering everything else (generate.go). See DESIGN.md's Open Question
// 1 for the scope of each tier.
package ir

import "github.com/lattisc/jitvm/internal/types"

// Reg is a register index into a Frame's Locals slice. Register 0 is
// reserved by convention as the function's live return value.
type Reg int

const ReturnReg Reg = 0

// Op is the closed instruction set this backend lowers to.
type Op int

const (
	OpLoadConstInt Op = iota
	OpLoadConstFloat
	OpLoadConstBool
	OpLoadConstChar
	OpLoadConstString
	OpLoadConstNull
	OpMove

	OpAddInt
	OpSubInt
	OpMulInt
	OpDivInt
	OpModInt
	OpBitAnd
	OpBitOr
	OpBitXor
	OpShl
	OpShr
	OpNegInt
	OpBitNot

	OpAddFloat
	OpSubFloat
	OpMulFloat
	OpDivFloat
	OpNegFloat

	OpConcatString

	OpCmpEqInt
	OpCmpLtInt
	OpCmpLeInt
	OpCmpGtInt
	OpCmpGeInt
	OpCmpEqFloat
	OpCmpLtFloat
	OpCmpLeFloat
	OpCmpGtFloat
	OpCmpGeFloat
	OpCmpEqString
	OpNot

	OpCastIntToFloat
	OpCastFloatToInt
	OpCastIntToChar
	OpCastCharToInt
	OpCastToString // stringifies the tagged operand; OperandTy records its static DataType
	OpCastToAny
	OpCastFromAny
	OpIsTest

	OpNewArray
	OpArrayGet
	OpArraySet
	OpArrayLen

	OpFieldGet
	OpFieldSet
	OpNewObject

	OpCall       // call a free function Item, args already moved into callee regs
	OpCallMethod // call a resolved method on an object register
	OpCallPtr    // call through a function-pointer register

	OpJump
	OpJumpIfFalse

	OpGetGlobal
	OpSetGlobal

	OpReturn
	OpReturnVoid
	OpPanic // raise a runtime panic with a fixed reason string (e.g. array index out of range)

	OpLog // call the pre-installed log(value) builtin; OperandTy selects the per-primitive sink
)

// Instr is one three-address instruction: Dst := A op B, plus whatever
// auxiliary fields a given Op needs (constant payloads, jump targets,
// call targets). Only the fields relevant to Op are populated, following
// the same tagged-struct convention internal/types uses for DataType.
type Instr struct {
	Op  Op
	Dst Reg
	A   Reg
	B   Reg

	ConstInt    int32
	ConstFloat  float32
	ConstBool   bool
	ConstChar   rune
	ConstString string

	Target int // absolute instruction index, resolved by the builder's label pass

	CallTarget *Item    // resolved by Link for OpCall/OpCallMethod
	CallArgs   []Reg    // argument registers, in order, Reg 0 excluded (reserved)
	Elements   []Reg    // element-value registers for OpNewArray, in order
	FieldType  *types.DataType
	FieldOffs  int
	OperandTy  *types.DataType // static type driving OpCastToString / OpIsTest / OpNewArray element kind
	GlobalName string
}
