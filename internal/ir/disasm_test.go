package ir

import (
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
)

// TestDisassembleToStringArithmetic snapshots the listing of a small
// hand-built Item, grounded on go-dws's internal/bytecode disasm_test.go
// golden-dump style.
func TestDisassembleToStringArithmetic(t *testing.T) {
	it := &Item{
		Name:      "sum3",
		NumLocals: 4,
		Instrs: []Instr{
			{Op: OpLoadConstInt, Dst: 1, ConstInt: 2},
			{Op: OpLoadConstInt, Dst: 2, ConstInt: 3},
			{Op: OpAddInt, Dst: 3, A: 1, B: 2},
			{Op: OpMove, Dst: ReturnReg, A: 3},
			{Op: OpReturn, Dst: ReturnReg},
		},
	}
	m := NewModule()
	m.AddItem(it)

	snaps.MatchSnapshot(t, "sum3_listing", DisassembleToString(m))
}

// TestDisassembleToStringCallAndBranch covers the call/branch render paths
// (OpCall, OpJump, OpJumpIfFalse) in one listing.
func TestDisassembleToStringCallAndBranch(t *testing.T) {
	callee := &Item{Name: "helper", NumLocals: 1, Instrs: []Instr{{Op: OpReturnVoid}}}
	caller := &Item{
		Name:      "<start>",
		NumLocals: 2,
		Instrs: []Instr{
			{Op: OpLoadConstBool, Dst: 1, ConstBool: true},
			{Op: OpJumpIfFalse, A: 1, Target: 4},
			{Op: OpCall, Dst: ReturnReg, CallTarget: callee, CallArgs: nil},
			{Op: OpJump, Target: 5},
			{Op: OpLoadConstNull, Dst: ReturnReg},
			{Op: OpReturn, Dst: ReturnReg},
		},
	}
	m := NewModule()
	m.AddItem(callee)
	m.AddItem(caller)

	snaps.MatchSnapshot(t, "call_and_branch_listing", DisassembleToString(m))
}

func TestDisassembleExternalItemShowsNoBody(t *testing.T) {
	m := NewModule()
	m.AddItem(&Item{Name: "host_log(string)->void", IsExternal: true})

	got := DisassembleToString(m)
	if got == "" {
		t.Fatal("expected a non-empty listing for an external item")
	}
}
