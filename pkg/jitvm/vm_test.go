package jitvm

import (
	"bytes"
	"testing"

	"github.com/lattisc/jitvm/internal/runtime"
	"github.com/lattisc/jitvm/pkg/token"
)

// collectingErrors records every diagnostic callback invocation, grounded on
// go-dws's cmd test helpers that capture compiler output for assertions.
type collectingErrors struct {
	msgs []string
}

func (c *collectingErrors) record(span token.Span, msg string) {
	c.msgs = append(c.msgs, msg)
}

func TestVMCompileAndRunGlobalInitializer(t *testing.T) {
	vm := New(Options{})
	errs := &collectingErrors{}
	vm.SetErrorCallback(errs.record)

	if err := vm.LoadSource([]byte("total: int = 40 + 2\n")); err != nil {
		t.Fatalf("LoadSource: %v (errors: %v)", err, errs.msgs)
	}
	if err := vm.Compile(); err != nil {
		t.Fatalf("Compile: %v (errors: %v)", err, errs.msgs)
	}
	if err := vm.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	slot, err := vm.ResolveGlobal("total")
	if err != nil {
		t.Fatalf("ResolveGlobal: %v", err)
	}
	got := (*runtime.Any)(slot)
	if v := runtime.UnpackInt(*got); v != 42 {
		t.Errorf("total = %d, want 42", v)
	}
}

func TestVMResolveFunctionCallsUserDefinedAdd(t *testing.T) {
	vm := New(Options{})
	src := "add: (a: int, b: int) -> int:\n    return a + b\n"
	if err := vm.LoadSource([]byte(src)); err != nil {
		t.Fatalf("LoadSource: %v", err)
	}
	if err := vm.Compile(); err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if err := vm.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	fn, err := vm.ResolveFunction("add(int,int)->int")
	if err != nil {
		t.Fatalf("ResolveFunction: %v", err)
	}

	result, err := fn([]runtime.Any{
		runtime.PackInt(vm.reg, 19),
		runtime.PackInt(vm.reg, 23),
	})
	if err != nil {
		t.Fatalf("call failed: %v", err)
	}
	if got := runtime.UnpackInt(result); got != 42 {
		t.Errorf("add(19,23) = %d, want 42", got)
	}
}

func TestVMResolveFunctionUnknownSignatureErrors(t *testing.T) {
	vm := New(Options{})
	if err := vm.LoadSource([]byte("x: int = 1\n")); err != nil {
		t.Fatalf("LoadSource: %v", err)
	}
	if err := vm.Compile(); err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if _, err := vm.ResolveFunction("missing()->void"); err == nil {
		t.Fatal("expected an error resolving an undeclared function")
	}
}

func TestVMCompileReportsSemanticErrors(t *testing.T) {
	vm := New(Options{})
	errs := &collectingErrors{}
	vm.SetErrorCallback(errs.record)

	if err := vm.LoadSource([]byte("x: int = y\n")); err != nil {
		t.Fatalf("LoadSource: %v", err)
	}
	if err := vm.Compile(); err == nil {
		t.Fatal("expected Compile to fail on an undefined name")
	}
	if len(errs.msgs) == 0 {
		t.Error("expected at least one error callback invocation")
	}
}

func TestVMRunBeforeCompileFails(t *testing.T) {
	vm := New(Options{})
	if err := vm.Run(); err == nil {
		t.Fatal("expected Run to fail before Compile")
	}
}

func TestVMCompileWithoutSourceFails(t *testing.T) {
	vm := New(Options{})
	if err := vm.Compile(); err == nil {
		t.Fatal("expected Compile to fail with no source loaded")
	}
}

func TestVMPanicCallbackReceivesReasonThenFrames(t *testing.T) {
	vm := New(Options{})
	src := "divide: (a: int, b: int) -> int:\n    return a / b\n" +
		"x: int = divide(1, 0)\n"
	if err := vm.LoadSource([]byte(src)); err != nil {
		t.Fatalf("LoadSource: %v", err)
	}
	if err := vm.Compile(); err != nil {
		t.Fatalf("Compile: %v", err)
	}

	var reasons []string
	var frames []string
	vm.SetPanicCallback(func(reason, funcName string, line, col int) {
		if funcName == "" {
			reasons = append(reasons, reason)
			return
		}
		frames = append(frames, funcName)
	})

	if err := vm.Run(); err == nil {
		t.Fatal("expected Run to fail on a division by zero")
	}
	if len(reasons) != 1 {
		t.Errorf("expected exactly one reason callback, got %d", len(reasons))
	}
}

func TestVMDumpModuleJSONAndQueryModule(t *testing.T) {
	vm := New(Options{})
	if err := vm.LoadSource([]byte("add: (a: int, b: int) -> int:\n    return a + b\n")); err != nil {
		t.Fatalf("LoadSource: %v", err)
	}
	if err := vm.Compile(); err != nil {
		t.Fatalf("Compile: %v", err)
	}
	doc, err := vm.DumpModuleJSON()
	if err != nil {
		t.Fatalf("DumpModuleJSON: %v", err)
	}
	if doc == "" {
		t.Fatal("expected a non-empty module dump")
	}
}

// TestVMLogPrintsArithmeticResult is spec.md §8 scenario 1: `log(1 + 2 *
// 3)` compiles and prints 7 on run.
func TestVMLogPrintsArithmeticResult(t *testing.T) {
	var out bytes.Buffer
	vm := New(Options{LogWriter: &out})
	if err := vm.LoadSource([]byte("log(1 + 2 * 3)\n")); err != nil {
		t.Fatalf("LoadSource: %v", err)
	}
	if err := vm.Compile(); err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if err := vm.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := out.String(); got != "7\n" {
		t.Errorf("log output = %q, want %q", got, "7\n")
	}
}

// TestVMLogPrintsArrayElementSum is spec.md §8 scenario 2.
func TestVMLogPrintsArrayElementSum(t *testing.T) {
	var out bytes.Buffer
	vm := New(Options{LogWriter: &out})
	src := "a: array<int> = [10, 20]\nlog(a[0] + a[1])\n"
	if err := vm.LoadSource([]byte(src)); err != nil {
		t.Fatalf("LoadSource: %v", err)
	}
	if err := vm.Compile(); err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if err := vm.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := out.String(); got != "30\n" {
		t.Errorf("log output = %q, want %q", got, "30\n")
	}
}

// TestVMPanicCallbackReportsInvalidTypeCast is spec.md §8 scenario 4's
// failure path: `x as string` where x actually holds an int panics with
// the exact reason "Invalid type cast".
func TestVMPanicCallbackReportsInvalidTypeCast(t *testing.T) {
	vm := New(Options{})
	src := "x: any = 3\nlog(x as string)\n"
	if err := vm.LoadSource([]byte(src)); err != nil {
		t.Fatalf("LoadSource: %v", err)
	}
	if err := vm.Compile(); err != nil {
		t.Fatalf("Compile: %v", err)
	}
	var reason string
	vm.SetPanicCallback(func(r, funcName string, line, col int) {
		if funcName == "" {
			reason = r
		}
	})
	if err := vm.Run(); err == nil {
		t.Fatal("expected Run to fail casting an int-holding any to string")
	}
	if reason != "Invalid type cast" {
		t.Errorf("panic reason = %q, want %q", reason, "Invalid type cast")
	}
}

// TestVMPanicCallbackReportsOutOfBoundsAccess is spec.md §8 scenario 5.
func TestVMPanicCallbackReportsOutOfBoundsAccess(t *testing.T) {
	vm := New(Options{})
	src := "a: array<int> = []\nlog(a[0])\n"
	if err := vm.LoadSource([]byte(src)); err != nil {
		t.Fatalf("LoadSource: %v", err)
	}
	if err := vm.Compile(); err != nil {
		t.Fatalf("Compile: %v", err)
	}
	var reason string
	vm.SetPanicCallback(func(r, funcName string, line, col int) {
		if funcName == "" {
			reason = r
		}
	})
	if err := vm.Run(); err == nil {
		t.Fatal("expected Run to fail indexing an empty array")
	}
	if reason != "Out of bounds access" {
		t.Errorf("panic reason = %q, want %q", reason, "Out of bounds access")
	}
}

func TestVMDestroyClearsState(t *testing.T) {
	vm := New(Options{})
	if err := vm.LoadSource([]byte("x: int = 1\n")); err != nil {
		t.Fatalf("LoadSource: %v", err)
	}
	if err := vm.Compile(); err != nil {
		t.Fatalf("Compile: %v", err)
	}
	vm.Destroy()
	if err := vm.Run(); err == nil {
		t.Fatal("expected Run to fail after Destroy")
	}
}
