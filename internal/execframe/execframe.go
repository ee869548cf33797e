// Package execframe is the execution frame spec.md §4.6 describes: a
// per-call stack used both for ordinary local storage and for unwinding on
// a runtime panic, grounded on go-dws's internal/errors stack-trace
// frame-walking. The original's C backend uses setjmp/longjmp as its
// nonlocal-jump substrate; Go has neither, so this package uses
// panic/recover instead — the idiomatic substitution documented in
// DESIGN.md's Open Question list. recover() composes correctly with
// deferred cleanup, which a hand-rolled jump-buffer struct would not get
// for free.
package execframe

import (
	"github.com/lattisc/jitvm/internal/runtime"
)

// Frame is one call's activation record: its locals (by register index,
// populated by internal/ir's lowering), the function name for stack
// traces, and a link to the caller for unwinding.
type Frame struct {
	FuncName string
	Locals   []runtime.Any
	Caller   *Frame
	Line     int // source position reported in stack traces; internal/ir's generated code never sets it
	Col      int
}

// NewFrame allocates a frame with nLocals register slots, linked to caller
// (nil for the top-level <start> frame).
func NewFrame(funcName string, nLocals int, caller *Frame) *Frame {
	return &Frame{FuncName: funcName, Locals: make([]runtime.Any, nLocals), Caller: caller}
}

// Trace walks f and its callers through the Caller links, producing
// innermost-first stack frames (function name, line, column) for a
// *runtime.PanicError. No code-address matching is involved.
func Trace(f *Frame) []runtime.Frame {
	var frames []runtime.Frame
	for cur := f; cur != nil; cur = cur.Caller {
		frames = append(frames, runtime.Frame{FuncName: cur.FuncName, Line: cur.Line, Col: cur.Col})
	}
	return frames
}

// Raise panics with a *runtime.PanicError carrying reason and f's captured
// trace; the single recover point is Run's deferred handler below.
func Raise(f *Frame, reason string) {
	pe := runtime.NewPanic(reason)
	pe.Frames = Trace(f)
	panic(pe)
}

// Run invokes body (a compiled function closure from internal/ir) and
// converts any runtime panic raised through Raise into a returned error,
// mirroring go-dws's top-level interpreter/VM entry point's
// recover-and-report wrapper. internal/ir runs every compiled function
// body inside its own Run; a caller that gets the error back re-panics it
// (internal/ir's callItemArgs), so it reaches the outermost Run.
func Run(body func() (runtime.Any, error)) (result runtime.Any, err error) {
	defer func() {
		if r := recover(); r != nil {
			if pe, ok := r.(*runtime.PanicError); ok {
				err = pe
				return
			}
			panic(r) // not ours: a genuine Go bug, never swallow it
		}
	}()
	return body()
}
