package ir

import (
	"testing"

	"github.com/lattisc/jitvm/internal/execframe"
	"github.com/lattisc/jitvm/internal/runtime"
	"github.com/lattisc/jitvm/internal/types"
)

func newTestEnv() *Env {
	return NewEnv(types.NewRegistry(), runtime.NewBox(), runtime.NewLogSink(nil))
}

// TestGenerateArithmetic builds a single Item computing (2 + 3) * 4 with no
// builder involved, exercising compileOp's fallthrough chaining directly.
func TestGenerateArithmetic(t *testing.T) {
	it := &Item{
		Name:      "arith",
		NumLocals: 4,
		Instrs: []Instr{
			{Op: OpLoadConstInt, Dst: 1, ConstInt: 2},
			{Op: OpLoadConstInt, Dst: 2, ConstInt: 3},
			{Op: OpAddInt, Dst: 3, A: 1, B: 2},
			{Op: OpLoadConstInt, Dst: 1, ConstInt: 4},
			{Op: OpMulInt, Dst: ReturnReg, A: 3, B: 1},
			{Op: OpReturn},
		},
	}
	m := NewModule()
	m.AddItem(it)
	Generate(m)

	env := newTestEnv()
	frame := execframe.NewFrame(it.Name, it.NumLocals, nil)
	result, err := it.Compiled(env, frame)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := runtime.UnpackInt(result); got != 20 {
		t.Errorf("(2+3)*4 = %d, want 20", got)
	}
}

// TestGenerateJumpIfFalseSkipsBranch builds `if false { dst = 1 } else { dst
// = 2 }` by hand, confirming Target patches compile to a taken branch.
func TestGenerateJumpIfFalseSkipsBranch(t *testing.T) {
	it := &Item{
		Name:      "branch",
		NumLocals: 2,
		Instrs: []Instr{
			{Op: OpLoadConstBool, Dst: 1, ConstBool: false}, // 0
			{Op: OpJumpIfFalse, A: 1, Target: 4},            // 1: false -> jump to else at 4
			{Op: OpLoadConstInt, Dst: ReturnReg, ConstInt: 1}, // 2: then
			{Op: OpJump, Target: 5},                         // 3
			{Op: OpLoadConstInt, Dst: ReturnReg, ConstInt: 2}, // 4: else
			{Op: OpReturn},                                  // 5
		},
	}
	m := NewModule()
	m.AddItem(it)
	Generate(m)

	env := newTestEnv()
	frame := execframe.NewFrame(it.Name, it.NumLocals, nil)
	result, err := it.Compiled(env, frame)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := runtime.UnpackInt(result); got != 2 {
		t.Errorf("expected the else branch to run, got %d want 2", got)
	}
}

// TestGenerateCallChain builds a caller Item invoking a callee Item via
// OpCall, exercising callItem/callItemArgs's frame linking.
func TestGenerateCallChain(t *testing.T) {
	callee := &Item{
		Name:      "double",
		NumLocals: 2, // reg0 = return, reg1 = param
		Instrs: []Instr{
			{Op: OpAddInt, Dst: ReturnReg, A: 1, B: 1},
			{Op: OpReturn},
		},
	}
	caller := &Item{
		Name:      "<start>",
		NumLocals: 2,
		Instrs: []Instr{
			{Op: OpLoadConstInt, Dst: 1, ConstInt: 21},
			{Op: OpCall, Dst: ReturnReg, CallTarget: callee, CallArgs: []Reg{1}},
			{Op: OpReturn},
		},
	}
	m := NewModule()
	m.AddItem(callee)
	m.AddItem(caller)
	Generate(m)

	env := newTestEnv()
	frame := execframe.NewFrame(caller.Name, caller.NumLocals, nil)
	result, err := caller.Compiled(env, frame)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := runtime.UnpackInt(result); got != 42 {
		t.Errorf("double(21) = %d, want 42", got)
	}
}

// TestGenerateDivisionByZeroRaises confirms OpDivInt raises a runtime panic
// rather than a Go divide-by-zero fault, converted to an error by Run.
func TestGenerateDivisionByZeroRaises(t *testing.T) {
	it := &Item{
		Name:      "div0",
		NumLocals: 3,
		Instrs: []Instr{
			{Op: OpLoadConstInt, Dst: 1, ConstInt: 10},
			{Op: OpLoadConstInt, Dst: 2, ConstInt: 0},
			{Op: OpDivInt, Dst: ReturnReg, A: 1, B: 2},
			{Op: OpReturn},
		},
	}
	m := NewModule()
	m.AddItem(it)
	Generate(m)

	env := newTestEnv()
	frame := execframe.NewFrame(it.Name, it.NumLocals, nil)
	_, err := it.Compiled(env, frame)
	if err == nil {
		t.Fatal("expected division by zero to raise a runtime panic")
	}
}

// TestGenerateGlobalsSharedAcrossFrames confirms OpSetGlobal/OpGetGlobal
// read and write through Env.Global's stable per-name slot.
func TestGenerateGlobalsSharedAcrossFrames(t *testing.T) {
	setter := &Item{
		Name:      "setter",
		NumLocals: 2,
		Instrs: []Instr{
			{Op: OpLoadConstInt, Dst: 1, ConstInt: 7},
			{Op: OpSetGlobal, A: 1, GlobalName: "counter"},
			{Op: OpReturnVoid},
		},
	}
	getter := &Item{
		Name:      "getter",
		NumLocals: 1,
		Instrs: []Instr{
			{Op: OpGetGlobal, Dst: ReturnReg, GlobalName: "counter"},
			{Op: OpReturn},
		},
	}
	m := NewModule()
	m.AddItem(setter)
	m.AddItem(getter)
	Generate(m)

	env := newTestEnv()
	if _, err := setter.Compiled(env, execframe.NewFrame(setter.Name, setter.NumLocals, nil)); err != nil {
		t.Fatalf("setter: unexpected error: %v", err)
	}
	result, err := getter.Compiled(env, execframe.NewFrame(getter.Name, getter.NumLocals, nil))
	if err != nil {
		t.Fatalf("getter: unexpected error: %v", err)
	}
	if got := runtime.UnpackInt(result); got != 7 {
		t.Errorf("global counter = %d, want 7", got)
	}
}
