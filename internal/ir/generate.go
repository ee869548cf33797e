package ir

import (
	"github.com/lattisc/jitvm/internal/execframe"
	"github.com/lattisc/jitvm/internal/runtime"
	"github.com/lattisc/jitvm/internal/types"
)

// Env is the shared runtime environment every generated closure captures:
// the type-id registry, the pointer-shaped-value box, the log sink, and
// the current values of every global (keyed by name, since globals have
// no register home of their own — they live for the whole program, not
// one call's Frame). Each slot is heap-allocated separately (rather than a
// plain map[string]runtime.Any) so pkg/jitvm.ResolveGlobal can hand the
// host a stable address into it.
type Env struct {
	Reg     *types.Registry
	Box     *runtime.Box
	Log     *runtime.LogSink
	Globals map[string]*runtime.Any
}

func NewEnv(reg *types.Registry, box *runtime.Box, log *runtime.LogSink) *Env {
	return &Env{Reg: reg, Box: box, Log: log, Globals: map[string]*runtime.Any{}}
}

// Global returns the storage slot for name, allocating it on first use.
func (e *Env) Global(name string) *runtime.Any {
	slot, ok := e.Globals[name]
	if !ok {
		slot = new(runtime.Any)
		e.Globals[name] = slot
	}
	return slot
}

// OpFunc is one compiled instruction: given the environment and the
// current call's frame, it performs its effect and returns the next
// program counter, or a negative value once the function has returned
// (the return value is already in f.Locals[ReturnReg] by then). This is
// the interpreter tier's unit of dispatch — the fallback path for
// anything Generate's native tier doesn't recognize (see
// tryAssembleNativeBinary in native_amd64.go, and DESIGN.md's Open
// Question 1).
type OpFunc func(env *Env, f *execframe.Frame) int

// Compiled is a whole function body, ready to run given its argument
// registers already populated into f.
type Compiled func(env *Env, f *execframe.Frame) (runtime.Any, error)

// Generate compiles every Item in a linked Module into its Compiled form.
// Call Generate once, after Link. Each Item first gets one shot at the
// native tier (tryAssembleNativeBinary): real assembled x86-64 machine
// code for the narrow arithmetic-leaf shape it recognizes. Everything
// else — which is most of the language: calls, branches, loops, casts,
// arrays, strings, objects, panics — falls back to the closure-chain
// interpreter generateItem builds, the same way memcp's OptimizeForValues
// returns the original Go function whenever its pattern match fails.
func Generate(m *Module) {
	for _, name := range m.Order {
		it := m.Items[name]
		if it.IsExternal {
			continue
		}
		if native := tryAssembleNativeBinary(it); native != nil {
			it.Native = true
			it.Compiled = wrapNativeBinary(native)
			continue
		}
		it.Compiled = generateItem(it)
	}
}

// wrapNativeBinary adapts a raw two-int64-argument native function to
// Compiled's tagged-Any calling convention: unbox both parameters,
// invoke the assembled code, box the result back up. The Frame itself
// still exists (ResolveFunction/execframe bookkeeping need it uniformly)
// but its Locals are never touched by the native call itself.
func wrapNativeBinary(native nativeBinaryFunc) Compiled {
	return func(env *Env, f *execframe.Frame) (runtime.Any, error) {
		a := int64(runtime.UnpackInt(f.Locals[1]))
		b := int64(runtime.UnpackInt(f.Locals[2]))
		return runtime.PackInt(env.Reg, int32(native(a, b))), nil
	}
}

func generateItem(it *Item) Compiled {
	ops := make([]OpFunc, len(it.Instrs))
	for i, ins := range it.Instrs {
		ops[i] = compileOp(ins, i)
	}
	return func(env *Env, f *execframe.Frame) (runtime.Any, error) {
		return execframe.Run(func() (runtime.Any, error) {
			pc := 0
			for pc >= 0 && pc < len(ops) {
				pc = ops[pc](env, f)
			}
			return f.Locals[ReturnReg], nil
		})
	}
}

// compileOp compiles instruction ins, found at index self within its
// Item's instruction list, into one OpFunc. Ops without an explicit
// control-flow effect fall through to self+1.
func compileOp(ins Instr, self int) OpFunc {
	fall := self + 1
	switch ins.Op {
	case OpLoadConstInt:
		return func(env *Env, f *execframe.Frame) int {
			f.Locals[ins.Dst] = runtime.PackInt(env.Reg, ins.ConstInt)
			return fall
		}
	case OpLoadConstFloat:
		return func(env *Env, f *execframe.Frame) int {
			f.Locals[ins.Dst] = runtime.PackFloat(env.Reg, ins.ConstFloat)
			return fall
		}
	case OpLoadConstBool:
		return func(env *Env, f *execframe.Frame) int {
			f.Locals[ins.Dst] = runtime.PackBool(env.Reg, ins.ConstBool)
			return fall
		}
	case OpLoadConstChar:
		return func(env *Env, f *execframe.Frame) int {
			f.Locals[ins.Dst] = runtime.PackChar(env.Reg, ins.ConstChar)
			return fall
		}
	case OpLoadConstString:
		return func(env *Env, f *execframe.Frame) int {
			f.Locals[ins.Dst] = runtime.PackString(env.Reg, env.Box, ins.ConstString)
			return fall
		}
	case OpLoadConstNull:
		return func(env *Env, f *execframe.Frame) int {
			f.Locals[ins.Dst] = runtime.Any(0)
			return fall
		}
	case OpMove:
		return func(env *Env, f *execframe.Frame) int {
			f.Locals[ins.Dst] = f.Locals[ins.A]
			return fall
		}

	case OpAddInt:
		return intBinOp(ins, fall, func(a, b int32) int32 { return a + b })
	case OpSubInt:
		return intBinOp(ins, fall, func(a, b int32) int32 { return a - b })
	case OpMulInt:
		return intBinOp(ins, fall, func(a, b int32) int32 { return a * b })
	case OpDivInt:
		return func(env *Env, f *execframe.Frame) int {
			a, b := runtime.UnpackInt(f.Locals[ins.A]), runtime.UnpackInt(f.Locals[ins.B])
			if b == 0 {
				execframe.Raise(f, "integer division by zero")
			}
			f.Locals[ins.Dst] = runtime.PackInt(env.Reg, a/b)
			return fall
		}
	case OpModInt:
		return func(env *Env, f *execframe.Frame) int {
			a, b := runtime.UnpackInt(f.Locals[ins.A]), runtime.UnpackInt(f.Locals[ins.B])
			if b == 0 {
				execframe.Raise(f, "integer division by zero")
			}
			f.Locals[ins.Dst] = runtime.PackInt(env.Reg, a%b)
			return fall
		}
	case OpBitAnd:
		return intBinOp(ins, fall, func(a, b int32) int32 { return a & b })
	case OpBitOr:
		return intBinOp(ins, fall, func(a, b int32) int32 { return a | b })
	case OpBitXor:
		return intBinOp(ins, fall, func(a, b int32) int32 { return a ^ b })
	case OpShl:
		return intBinOp(ins, fall, func(a, b int32) int32 { return a << uint32(b) })
	case OpShr:
		return intBinOp(ins, fall, func(a, b int32) int32 { return a >> uint32(b) })
	case OpNegInt:
		return func(env *Env, f *execframe.Frame) int {
			f.Locals[ins.Dst] = runtime.PackInt(env.Reg, -runtime.UnpackInt(f.Locals[ins.A]))
			return fall
		}
	case OpBitNot:
		return func(env *Env, f *execframe.Frame) int {
			f.Locals[ins.Dst] = runtime.PackInt(env.Reg, ^runtime.UnpackInt(f.Locals[ins.A]))
			return fall
		}

	case OpAddFloat:
		return floatBinOp(ins, fall, func(a, b float32) float32 { return a + b })
	case OpSubFloat:
		return floatBinOp(ins, fall, func(a, b float32) float32 { return a - b })
	case OpMulFloat:
		return floatBinOp(ins, fall, func(a, b float32) float32 { return a * b })
	case OpDivFloat:
		return func(env *Env, f *execframe.Frame) int {
			a, b := runtime.UnpackFloat(f.Locals[ins.A]), runtime.UnpackFloat(f.Locals[ins.B])
			if b == 0 {
				execframe.Raise(f, "float division by zero")
			}
			f.Locals[ins.Dst] = runtime.PackFloat(env.Reg, a/b)
			return fall
		}
	case OpNegFloat:
		return func(env *Env, f *execframe.Frame) int {
			f.Locals[ins.Dst] = runtime.PackFloat(env.Reg, -runtime.UnpackFloat(f.Locals[ins.A]))
			return fall
		}

	case OpConcatString:
		return func(env *Env, f *execframe.Frame) int {
			a := stringOf(env, f.Locals[ins.A])
			b := stringOf(env, f.Locals[ins.B])
			f.Locals[ins.Dst] = runtime.PackString(env.Reg, env.Box, runtime.StringConcat(a, b))
			return fall
		}

	case OpCmpEqInt:
		return intCmpOp(ins, fall, func(a, b int32) bool { return a == b })
	case OpCmpLtInt:
		return intCmpOp(ins, fall, func(a, b int32) bool { return a < b })
	case OpCmpLeInt:
		return intCmpOp(ins, fall, func(a, b int32) bool { return a <= b })
	case OpCmpGtInt:
		return intCmpOp(ins, fall, func(a, b int32) bool { return a > b })
	case OpCmpGeInt:
		return intCmpOp(ins, fall, func(a, b int32) bool { return a >= b })
	case OpCmpEqFloat:
		return floatCmpOp(ins, fall, func(a, b float32) bool { return a == b })
	case OpCmpLtFloat:
		return floatCmpOp(ins, fall, func(a, b float32) bool { return a < b })
	case OpCmpLeFloat:
		return floatCmpOp(ins, fall, func(a, b float32) bool { return a <= b })
	case OpCmpGtFloat:
		return floatCmpOp(ins, fall, func(a, b float32) bool { return a > b })
	case OpCmpGeFloat:
		return floatCmpOp(ins, fall, func(a, b float32) bool { return a >= b })
	case OpCmpEqString:
		return func(env *Env, f *execframe.Frame) int {
			eq := runtime.StringEqual(runtime.UnpackString(f.Locals[ins.A], env.Box), runtime.UnpackString(f.Locals[ins.B], env.Box))
			f.Locals[ins.Dst] = runtime.PackBool(env.Reg, eq)
			return fall
		}
	case OpNot:
		return func(env *Env, f *execframe.Frame) int {
			f.Locals[ins.Dst] = runtime.PackBool(env.Reg, !runtime.UnpackBool(f.Locals[ins.A]))
			return fall
		}

	case OpCastIntToFloat:
		return func(env *Env, f *execframe.Frame) int {
			f.Locals[ins.Dst] = runtime.PackFloat(env.Reg, float32(runtime.UnpackInt(f.Locals[ins.A])))
			return fall
		}
	case OpCastFloatToInt:
		return func(env *Env, f *execframe.Frame) int {
			f.Locals[ins.Dst] = runtime.PackInt(env.Reg, int32(runtime.UnpackFloat(f.Locals[ins.A])))
			return fall
		}
	case OpCastIntToChar:
		return func(env *Env, f *execframe.Frame) int {
			f.Locals[ins.Dst] = runtime.PackChar(env.Reg, rune(runtime.UnpackInt(f.Locals[ins.A])))
			return fall
		}
	case OpCastCharToInt:
		return func(env *Env, f *execframe.Frame) int {
			f.Locals[ins.Dst] = runtime.PackInt(env.Reg, int32(runtime.UnpackChar(f.Locals[ins.A])))
			return fall
		}
	case OpCastToString:
		return func(env *Env, f *execframe.Frame) int {
			f.Locals[ins.Dst] = runtime.PackString(env.Reg, env.Box, stringOf(env, f.Locals[ins.A]))
			return fall
		}
	case OpCastToAny:
		return func(env *Env, f *execframe.Frame) int {
			f.Locals[ins.Dst] = f.Locals[ins.A] // already tagged; the any slot just carries the same word
			return fall
		}
	case OpCastFromAny:
		return func(env *Env, f *execframe.Frame) int {
			v := f.Locals[ins.A]
			if v.TypeID() != env.Reg.TypeID(ins.OperandTy) {
				execframe.Raise(f, "Invalid type cast")
			}
			f.Locals[ins.Dst] = v
			return fall
		}
	case OpIsTest:
		return func(env *Env, f *execframe.Frame) int {
			ok := f.Locals[ins.A].TypeID() == env.Reg.TypeID(ins.OperandTy)
			f.Locals[ins.Dst] = runtime.PackBool(env.Reg, ok)
			return fall
		}

	case OpNewArray:
		return func(env *Env, f *execframe.Frame) int {
			elems := make([]runtime.Any, len(ins.Elements))
			for i, r := range ins.Elements {
				elems[i] = f.Locals[r]
			}
			f.Locals[ins.Dst] = runtime.PackArray(env.Reg, env.Box, ins.OperandTy, elems)
			return fall
		}
	case OpArrayGet:
		return func(env *Env, f *execframe.Frame) int {
			arr := runtime.UnpackArray(f.Locals[ins.A], env.Box)
			idx := runtime.UnpackInt(f.Locals[ins.B])
			if idx < 0 || int(idx) >= len(arr) {
				execframe.Raise(f, "Out of bounds access")
			}
			f.Locals[ins.Dst] = arr[idx]
			return fall
		}
	case OpArraySet:
		return func(env *Env, f *execframe.Frame) int {
			arr := runtime.UnpackArray(f.Locals[ins.A], env.Box)
			idx := runtime.UnpackInt(f.Locals[ins.B])
			if idx < 0 || int(idx) >= len(arr) {
				execframe.Raise(f, "Out of bounds access")
			}
			arr[idx] = f.Locals[ins.Dst]
			return fall
		}
	case OpArrayLen:
		return func(env *Env, f *execframe.Frame) int {
			arr := runtime.UnpackArray(f.Locals[ins.A], env.Box)
			f.Locals[ins.Dst] = runtime.PackInt(env.Reg, int32(len(arr)))
			return fall
		}

	case OpFieldGet:
		return func(env *Env, f *execframe.Frame) int {
			obj, _ := runtime.UnpackObject(f.Locals[ins.A], env.Box).(*ObjectData)
			if obj == nil {
				execframe.Raise(f, "field access on null object")
			}
			f.Locals[ins.Dst] = obj.Fields[ins.FieldOffs]
			return fall
		}
	case OpFieldSet:
		return func(env *Env, f *execframe.Frame) int {
			obj, _ := runtime.UnpackObject(f.Locals[ins.A], env.Box).(*ObjectData)
			if obj == nil {
				execframe.Raise(f, "field access on null object")
			}
			obj.Fields[ins.FieldOffs] = f.Locals[ins.B]
			return fall
		}
	case OpNewObject:
		return func(env *Env, f *execframe.Frame) int {
			obj := &ObjectData{Class: ins.OperandTy.Class, Fields: make(map[int]runtime.Any)}
			f.Locals[ins.Dst] = runtime.PackObject(env.Reg, env.Box, ins.OperandTy.Class, obj)
			return fall
		}

	case OpCall:
		return func(env *Env, f *execframe.Frame) int {
			f.Locals[ins.Dst] = callItem(env, f, ins.CallTarget, ins.CallArgs, f.Locals)
			return fall
		}
	case OpCallMethod:
		return func(env *Env, f *execframe.Frame) int {
			args := append([]runtime.Any{f.Locals[ins.A]}, regsOf(ins.CallArgs, f.Locals)...)
			f.Locals[ins.Dst] = callItemArgs(env, f, ins.CallTarget, args)
			return fall
		}
	case OpCallPtr:
		return func(env *Env, f *execframe.Frame) int {
			target, _ := runtime.UnpackPointer(f.Locals[ins.A], env.Box).(*Item)
			if target == nil {
				execframe.Raise(f, "call through a null function pointer")
			}
			f.Locals[ins.Dst] = callItem(env, f, target, ins.CallArgs, f.Locals)
			return fall
		}

	case OpJump:
		return func(env *Env, f *execframe.Frame) int { return ins.Target }
	case OpJumpIfFalse:
		return func(env *Env, f *execframe.Frame) int {
			if !runtime.UnpackBool(f.Locals[ins.A]) {
				return ins.Target
			}
			return fall
		}

	case OpGetGlobal:
		return func(env *Env, f *execframe.Frame) int {
			f.Locals[ins.Dst] = *env.Global(ins.GlobalName)
			return fall
		}
	case OpSetGlobal:
		return func(env *Env, f *execframe.Frame) int {
			*env.Global(ins.GlobalName) = f.Locals[ins.A]
			return fall
		}

	case OpReturn:
		return func(env *Env, f *execframe.Frame) int { return -1 }
	case OpReturnVoid:
		return func(env *Env, f *execframe.Frame) int { return -1 }
	case OpPanic:
		return func(env *Env, f *execframe.Frame) int {
			execframe.Raise(f, ins.ConstString)
			return -1
		}

	case OpLog:
		return func(env *Env, f *execframe.Frame) int {
			v := f.Locals[ins.A]
			switch ins.OperandTy.Kind {
			case types.Bool:
				env.Log.LogBool(runtime.UnpackBool(v))
			case types.Integer:
				env.Log.LogInt(runtime.UnpackInt(v))
			case types.Float:
				env.Log.LogFloat(runtime.UnpackFloat(v))
			case types.Char:
				env.Log.LogChar(runtime.UnpackChar(v))
			default:
				env.Log.LogString(runtime.UnpackString(v, env.Box))
			}
			return fall
		}
	}
	return func(env *Env, f *execframe.Frame) int { return fall }
}

// ObjectData is the heap-allocated instance backing an Object-kind Any:
// its declaring class plus a field-offset-keyed value map (a real backend
// would use a flat byte buffer per spec.md's arena layout; a map keeps
// this reference implementation simple while the offsets are still the
// ones internal/ast.ClassDecl.Layout assigned, so a future dense-buffer
// swap is purely an internal/ir change).
type ObjectData struct {
	Class  types.ClassInfo
	Fields map[int]runtime.Any
}

func regsOf(rs []Reg, locals []runtime.Any) []runtime.Any {
	out := make([]runtime.Any, len(rs))
	for i, r := range rs {
		out[i] = locals[r]
	}
	return out
}

func callItem(env *Env, caller *execframe.Frame, target *Item, argRegs []Reg, locals []runtime.Any) runtime.Any {
	return callItemArgs(env, caller, target, regsOf(argRegs, locals))
}

func callItemArgs(env *Env, caller *execframe.Frame, target *Item, args []runtime.Any) runtime.Any {
	if target == nil || target.Compiled == nil {
		execframe.Raise(caller, "call to an unresolved function")
	}
	callee := execframe.NewFrame(target.Name, target.NumLocals, caller)
	for i, a := range args {
		callee.Locals[i+1] = a
	}
	result, err := target.Compiled(env, callee)
	if err != nil {
		panic(err) // already a *runtime.PanicError; let it keep unwinding to the top Run
	}
	return result
}

func stringOf(env *Env, a runtime.Any) string {
	return runtime.StringifyValue(env.Reg, env.Box, a, nil)
}

func intBinOp(ins Instr, fall int, f func(a, b int32) int32) OpFunc {
	return func(env *Env, fr *execframe.Frame) int {
		a, b := runtime.UnpackInt(fr.Locals[ins.A]), runtime.UnpackInt(fr.Locals[ins.B])
		fr.Locals[ins.Dst] = runtime.PackInt(env.Reg, f(a, b))
		return fall
	}
}

func floatBinOp(ins Instr, fall int, f func(a, b float32) float32) OpFunc {
	return func(env *Env, fr *execframe.Frame) int {
		a, b := runtime.UnpackFloat(fr.Locals[ins.A]), runtime.UnpackFloat(fr.Locals[ins.B])
		fr.Locals[ins.Dst] = runtime.PackFloat(env.Reg, f(a, b))
		return fall
	}
}

func intCmpOp(ins Instr, fall int, f func(a, b int32) bool) OpFunc {
	return func(env *Env, fr *execframe.Frame) int {
		a, b := runtime.UnpackInt(fr.Locals[ins.A]), runtime.UnpackInt(fr.Locals[ins.B])
		fr.Locals[ins.Dst] = runtime.PackBool(env.Reg, f(a, b))
		return fall
	}
}

func floatCmpOp(ins Instr, fall int, f func(a, b float32) bool) OpFunc {
	return func(env *Env, fr *execframe.Frame) int {
		a, b := runtime.UnpackFloat(fr.Locals[ins.A]), runtime.UnpackFloat(fr.Locals[ins.B])
		fr.Locals[ins.Dst] = runtime.PackBool(env.Reg, f(a, b))
		return fall
	}
}
