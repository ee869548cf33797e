package runtime

import "fmt"

// PanicError is a runtime fault (out-of-bounds index, failed `as` cast,
// division by zero, nil dereference): distinct from a pkg/jitvm
// *CompilerError found during compilation, never conflated with one (spec.md §7).
type PanicError struct {
	Reason string
	Frames []Frame // innermost first, populated by internal/execframe
}

// Frame is one entry of a captured stack trace: the function name and
// Line/Col copied from one execframe.Frame of the Caller chain. No Item or
// address-range matching is involved.
type Frame struct {
	FuncName string
	Line     int
	Col      int
}

func (e *PanicError) Error() string {
	msg := "panic: " + e.Reason
	for _, f := range e.Frames {
		msg += fmt.Sprintf("\n  at %s (%d:%d)", f.FuncName, f.Line, f.Col)
	}
	return msg
}

// NewPanic constructs a PanicError with no frames attached; execframe.Raise
// fills Frames in one step from the Caller chain when it raises.
func NewPanic(reason string) *PanicError {
	return &PanicError{Reason: reason}
}
