//go:build amd64

package ir

import (
	"syscall"
	"unsafe"

	"github.com/lattisc/jitvm/internal/types"
)

// The native tier hand-assembles real x86-64 machine code for the single
// narrowest shape worth the trouble: a two-int-parameter function whose
// entire body is one arithmetic op on those two parameters, returned
// immediately (`add: (a: int, b: int) -> int: return a + b` and friends).
// Grounded on launix-de/memcp's scm-jit (jitCompileProc/jitReturnLiteral,
// allocExec/makeRX): raw opcode bytes written into an mmap'd buffer, made
// executable with mprotect, then cast to a typed Go func value the same
// way memcp turns a machine-code pointer into a callable `func(...Scmer)
// Scmer` — a func value is a pointer to a struct whose first word is the
// entry PC, so a one-field struct holding that PC, reinterpreted as the
// func type, calls straight into the assembled bytes. Like memcp's own
// jitCompileProc, anything outside this shape returns nil and the caller
// falls back to the closure interpreter; this is not a general-purpose
// code generator.
type nativeBinaryFunc func(a, b int64) int64

// tryAssembleNativeBinary returns an executable nativeBinaryFunc for it,
// or nil if it isn't in the native tier's eligible shape: exactly
// [op Dst=t A=1 B=2, OpMove Dst=ReturnReg A=t, OpReturn] (optionally
// followed by BuildFunction's trailing OpReturnVoid) over two int
// parameters returning int, matching the register layout BuildFunction
// assigns params (builder.go's localReg: index+1).
func tryAssembleNativeBinary(it *Item) nativeBinaryFunc {
	if len(it.Proto.Params) != 2 || it.Proto.Return == nil {
		return nil
	}
	if it.Proto.Params[0].Kind != types.Integer || it.Proto.Params[1].Kind != types.Integer {
		return nil
	}
	if it.Proto.Return.Kind != types.Integer {
		return nil
	}
	instrs := it.Instrs
	// BuildFunction always appends an unreachable OpReturnVoid after the
	// body's explicit return; it carries no behavior here.
	if len(instrs) == 4 && instrs[3].Op == OpReturnVoid {
		instrs = instrs[:3]
	}
	if len(instrs) != 3 {
		return nil
	}
	op, move, ret := instrs[0], instrs[1], instrs[2]
	if op.A != 1 || op.B != 2 {
		return nil
	}
	if move.Op != OpMove || move.Dst != ReturnReg || move.A != op.Dst {
		return nil
	}
	if ret.Op != OpReturn {
		return nil
	}
	code, ok := assembleBinaryOp(op.Op)
	if !ok {
		return nil
	}
	mem, err := allocExecutable(code)
	if err != nil {
		return nil
	}
	// Reinterpret the mmap'd code pointer as a Go func value: a func
	// value is itself a pointer to a funcval struct whose first word is
	// the entry PC, so a single-field struct holding that address, cast
	// to nativeBinaryFunc, is callable directly (same trick as memcp's
	// `*(*func(...Scmer) Scmer)(unsafe.Pointer(&fn2))`).
	funcval := &struct{ pc uintptr }{pc: uintptr(mem)}
	return *(*nativeBinaryFunc)(unsafe.Pointer(&funcval))
}

// assembleBinaryOp emits the SysV-AMD64 three-instruction body for op:
// the two arguments already sit in RDI/RSI per the calling convention,
// the result is returned in RAX.
func assembleBinaryOp(op Op) ([]byte, bool) {
	movRaxRdi := []byte{0x48, 0x89, 0xf8} // mov rax, rdi
	ret := byte(0xc3)
	switch op {
	case OpAddInt:
		return append(append(movRaxRdi, 0x48, 0x01, 0xf0), ret), true // add rax, rsi
	case OpSubInt:
		return append(append(movRaxRdi, 0x48, 0x29, 0xf0), ret), true // sub rax, rsi
	case OpMulInt:
		return append(append(movRaxRdi, 0x48, 0x0f, 0xaf, 0xc6), ret), true // imul rax, rsi
	default:
		return nil, false
	}
}

// allocExecutable copies code into a fresh RW-then-RX mmap'd page,
// mirroring memcp's allocExec/makeRX split (write first, then flip to
// read+execute — never RWX simultaneously).
func allocExecutable(code []byte) (unsafe.Pointer, error) {
	page := syscall.Getpagesize()
	n := (len(code) + page - 1) &^ (page - 1)
	buf, err := syscall.Mmap(-1, 0, n, syscall.PROT_READ|syscall.PROT_WRITE, syscall.MAP_PRIVATE|syscall.MAP_ANON)
	if err != nil {
		return nil, err
	}
	copy(buf, code)
	if err := syscall.Mprotect(buf, syscall.PROT_READ|syscall.PROT_EXEC); err != nil {
		syscall.Munmap(buf)
		return nil, err
	}
	return unsafe.Pointer(&buf[0]), nil
}
