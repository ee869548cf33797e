// Package jitvm is the embedding API spec.md §6 describes: a VM handle a
// host program creates, feeds source and external registrations into, then
// compiles and runs, grounded on go-dws's pkg/dwscript FFI surface
// (ffi_registration_test.go's signature-string + raw-pointer registration
// shape) generalized to this language's simpler, non-OOP-interface type
// system.
package jitvm

import (
	"fmt"
	"io"
	"os"
	"unsafe"

	"github.com/lattisc/jitvm/internal/ast"
	"github.com/lattisc/jitvm/internal/execframe"
	"github.com/lattisc/jitvm/internal/ir"
	"github.com/lattisc/jitvm/internal/parser"
	"github.com/lattisc/jitvm/internal/runtime"
	"github.com/lattisc/jitvm/internal/semantic"
	"github.com/lattisc/jitvm/internal/types"
	"github.com/lattisc/jitvm/pkg/arena"
	"github.com/lattisc/jitvm/pkg/token"
	"github.com/tidwall/gjson"
)

// Options configures a VM at construction time (spec.md §6, named fields per
// SPEC_FULL.md's VMConfig/Options pairing).
type Options struct {
	OptimizationLevel int
	EnableLogging     bool
	MaxCallDepth      int
	MaxArenaBucket    int
	// LogWriter is where the `log(...)` builtin writes; nil selects
	// os.Stdout, matching go-dws's VM.Stdout default.
	LogWriter io.Writer
}

// ErrorCallback receives every lex/parse/semantic diagnostic as it is
// found: a half-open span and a message, per spec.md §6.
type ErrorCallback func(span token.Span, message string)

// PanicCallback receives a runtime panic's reason first (with funcName
// empty and line/col zero), then one call per unwound stack frame
// (reason empty, funcName/line/col populated) — spec.md §6's "invoked once
// with reason and zero spans and once per stack frame" callback contract.
type PanicCallback func(reason, funcName string, line, col int)

// Callable is a resolved compiled function, ready to invoke with argument
// values already encoded as runtime.Any (spec.md §6's "resolve a compiled
// function ... returning a callable address", specialized from a raw
// address to a Go closure since this backend has no machine-code address
// space — see DESIGN.md).
type Callable func(args []runtime.Any) (runtime.Any, error)

// VM is one compilation+execution session: owns the arena, the parsed
// program, and (after Compile) the linked, generated ir.Module.
type VM struct {
	opts Options

	arena *arena.Arena
	prog  *ast.Program
	errCb ErrorCallback
	panicCb PanicCallback

	reg     *types.Registry
	box     *runtime.Box
	log     *runtime.LogSink
	env     *ir.Env
	module  *ir.Module

	externals map[string]unsafe.Pointer

	fatal    bool
	compiled bool
}

// New creates a VM with a fresh arena sized per opts.MaxArenaBucket (0
// selects pkg/arena's default).
func New(opts Options) *VM {
	reg := types.NewRegistry()
	box := runtime.NewBox()
	w := opts.LogWriter
	if w == nil {
		w = os.Stdout
	}
	return &VM{
		opts:      opts,
		arena:     arena.New(opts.MaxArenaBucket),
		reg:       reg,
		box:       box,
		log:       runtime.NewLogSink(w),
		externals: map[string]unsafe.Pointer{},
	}
}

func (vm *VM) SetErrorCallback(cb ErrorCallback) { vm.errCb = cb }
func (vm *VM) SetPanicCallback(cb PanicCallback) { vm.panicCb = cb }

// EnableLogging turns on the pre-codegen module dump spec.md §6 describes.
func (vm *VM) EnableLogging(on bool) { vm.opts.EnableLogging = on }

// errSink adapts VM's single ErrorCallback into lexer.ErrorSink,
// parser.ErrorSink and semantic.ErrorSink at once, latching Fatal the way
// spec.md §4.4/§7 requires ("set a fatal flag, and never abort").
type errSink struct{ vm *VM }

func (s errSink) LexError(span token.Span, msg string)      { s.vm.report(span, msg) }
func (s errSink) ParseError(span token.Span, msg string)    { s.vm.report(span, msg) }
func (s errSink) SemanticError(span token.Span, msg string) { s.vm.report(span, msg) }

func (vm *VM) report(span token.Span, msg string) {
	vm.fatal = true
	if vm.errCb != nil {
		vm.errCb(span, msg)
	}
}

// LoadSource lexes and parses all of src, reporting every error through the
// error callback, and returns an error if any was reported (parsing never
// aborts mid-pass).
func (vm *VM) LoadSource(src []byte) error {
	sink := errSink{vm}
	p := parser.New(src, vm.arena, sink, sink)
	vm.prog = p.Parse()
	if vm.fatal {
		return fmt.Errorf("parsing failed")
	}
	return nil
}

// LoadFile reads path and calls LoadSource; the loader itself is an
// external collaborator per spec.md §1/§6, so no virtual filesystem or
// import resolution lives here.
func (vm *VM) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return vm.LoadSource(data)
}

// RegisterExternal records a host-supplied native function under its
// canonical signature string (`<return_type> <name>(<param_types>)`,
// spec.md §6), for externals a host program declares beyond the fixed
// table. The fixed table itself (malloc/memcpy/realloc/panic, the
// per-primitive string casts, string equality, and log's five overloads)
// never goes through this path: log is pre-installed as a real callable
// builtin by internal/semantic.registerBuiltins and lowered directly to
// OpLog, so it resolves and runs with no host registration at all. The
// pointer passed here is retained for ResolveFunction/ABI bookkeeping;
// actually invoking an arbitrary unsafe.Pointer as a function requires a
// platform-specific cgo trampoline this pack does not ship (see
// DESIGN.md's Open Question), so a script call to a host external whose
// body never got linked to a Go implementation raises a runtime panic
// identifying the unresolved symbol, same failure class as spec.md §7's
// "unresolved external" link error.
func (vm *VM) RegisterExternal(signature string, fn unsafe.Pointer) {
	vm.externals[signature] = fn
}

// Compile runs semantic analysis, lowering, linking, and codegen in that
// order, matching spec.md §6's "lex, parse, analyze, lower, link, codegen."
// Lex/parse already ran in LoadSource; Compile starts from analysis.
func (vm *VM) Compile() error {
	if vm.prog == nil {
		return fmt.Errorf("no source loaded")
	}
	sink := errSink{vm}
	ctx, ok := semantic.AnalyzeWithRegistry(vm.prog, sink, vm.reg)
	_ = ctx
	if !ok || vm.fatal {
		return fmt.Errorf("compilation failed: semantic errors present")
	}

	vm.module = ir.BuildModule(vm.prog)
	for sig := range vm.externals {
		vm.module.AddItem(&ir.Item{Name: sig, IsExternal: true})
	}
	if err := ir.Link(vm.module); err != nil {
		return err
	}

	if vm.opts.EnableLogging {
		ir.NewDisassembler(vm.module, os.Stdout).Disassemble()
	}

	ir.Generate(vm.module)
	vm.env = ir.NewEnv(vm.reg, vm.box, vm.log)
	vm.compiled = true
	return nil
}

// Run evaluates every global initializer in declaration order, then invokes
// the program's <start> function, matching internal/ir.BuildGlobalInit's
// doc comment contract (globals must be live before <start> runs).
func (vm *VM) Run() error {
	if !vm.compiled {
		return fmt.Errorf("VM not compiled")
	}
	for _, name := range vm.module.Order {
		it := vm.module.Items[name]
		if !it.IsGlobal {
			continue
		}
		frame := execframe.NewFrame(it.Name, it.NumLocals, nil)
		result, err := it.Compiled(vm.env, frame)
		if err != nil {
			vm.reportPanic(err)
			return err
		}
		globalName := name[len("$global$"):]
		*vm.env.Global(globalName) = result
	}

	start, ok := vm.module.Lookup(ir.StartItemName)
	if !ok {
		return fmt.Errorf("no start function compiled")
	}
	frame := execframe.NewFrame(ir.StartItemName, start.NumLocals, nil)
	_, err := start.Compiled(vm.env, frame)
	if err != nil {
		vm.reportPanic(err)
		return err
	}
	return nil
}

func (vm *VM) reportPanic(err error) {
	if vm.panicCb == nil {
		return
	}
	pe, ok := err.(*runtime.PanicError)
	if !ok {
		vm.panicCb(err.Error(), "", 0, 0)
		return
	}
	vm.panicCb(pe.Reason, "", 0, 0)
	for _, f := range pe.Frames {
		vm.panicCb("", f.FuncName, f.Line, f.Col)
	}
}

// ResolveFunction looks up a compiled function by its canonical
// `name.signature` string (spec.md §6) and returns a Callable bound to this
// VM's Env.
func (vm *VM) ResolveFunction(signature string) (Callable, error) {
	if !vm.compiled {
		return nil, fmt.Errorf("VM not compiled")
	}
	item, ok := vm.module.Lookup(signature)
	if !ok || item.Compiled == nil {
		return nil, fmt.Errorf("unresolved function %q", signature)
	}
	return func(args []runtime.Any) (runtime.Any, error) {
		f := execframe.NewFrame(item.Name, item.NumLocals, nil)
		for i, a := range args {
			f.Locals[i+1] = a
		}
		return item.Compiled(vm.env, f)
	}, nil
}

// ResolveGlobal returns a pointer to a global variable's storage slot,
// spec.md §6's "resolve a global variable ... returning an address to its
// storage." The returned pointer stays valid for the VM's lifetime; writes
// through it are visible to compiled code and vice versa.
func (vm *VM) ResolveGlobal(signature string) (unsafe.Pointer, error) {
	if !vm.compiled {
		return nil, fmt.Errorf("VM not compiled")
	}
	slot := vm.env.Global(signature)
	return unsafe.Pointer(slot), nil
}

// DumpModuleJSON renders the compiled module's function table as JSON
// (internal/ir.Module.DumpJSON; externals are flagged per entry), for a
// host tool to archive or diff.
func (vm *VM) DumpModuleJSON() (string, error) {
	if !vm.compiled {
		return "", fmt.Errorf("VM not compiled")
	}
	return vm.module.DumpJSON()
}

// QueryModule runs a gjson path query against the module's JSON dump —
// cmd/jitvm's `--show <json-path>` flag uses this directly.
func (vm *VM) QueryModule(path string) (string, error) {
	doc, err := vm.DumpModuleJSON()
	if err != nil {
		return "", err
	}
	return gjson.Get(doc, path).String(), nil
}

// Destroy releases the VM's arena and IR module. The VM must not be used
// afterward.
func (vm *VM) Destroy() {
	vm.arena = nil
	vm.module = nil
	vm.env = nil
	vm.prog = nil
	vm.compiled = false
}
