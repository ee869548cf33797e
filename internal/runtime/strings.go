package runtime

import (
	"fmt"
	"hash/fnv"
	"reflect"
	"strconv"
	"strings"

	"github.com/lattisc/jitvm/internal/types"
)

// The per-primitive string-cast helpers spec.md §4.5.1 names for the `as
// string` cast family and for default class stringification.
func IntToString(v int32) string     { return strconv.FormatInt(int64(v), 10) }
func FloatToString(v float32) string { return strconv.FormatFloat(float64(v), 'g', -1, 32) }
func BoolToString(v bool) string     { return strconv.FormatBool(v) }
func CharToString(v rune) string     { return string(v) }

// StringEqual is the runtime string-equality routine the backend calls for
// `==`/`!=` on two boxed strings (string dispatch never falls back to
// pointer identity).
func StringEqual(a, b string) bool { return a == b }

// StringHash backs any hashing the generated routines need (e.g. a future
// map type); fnv-1a matches the teacher's choice for go-dws's identifier
// interning table.
func StringHash(s string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return h.Sum64()
}

// Stringify renders v (already unboxed into a plain Go value by the
// caller) the way the default, non-overridden class-to-string conversion
// or `log()` builtin does, with cycle detection for self-referential
// object graphs (recovered from original_source/'s src/jit.c stringifier,
// per SPEC_FULL.md §9).
func Stringify(reg *types.Registry, box *Box, v any, seen map[uintptr]bool) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case int32:
		return IntToString(x)
	case float32:
		return FloatToString(x)
	case bool:
		return BoolToString(x)
	case string:
		return x
	case []Any:
		if len(x) == 0 {
			return "[]"
		}
		if seen == nil {
			seen = map[uintptr]bool{}
		}
		ptr := reflect.ValueOf(x).Pointer()
		if seen[ptr] {
			return "[...]"
		}
		seen[ptr] = true
		parts := make([]string, len(x))
		for i, e := range x {
			parts[i] = StringifyValue(reg, box, e, seen)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprintf("%v", x)
	}
}

// StringifyValue unboxes a tagged Any per its registered type and renders
// the underlying value the way Stringify renders an already-unboxed one,
// recursing into nested arrays/objects rather than printing the raw
// packed word (spec.md §4.5.1's array-to-string helper).
func StringifyValue(reg *types.Registry, box *Box, a Any, seen map[uintptr]bool) string {
	switch reg.NameOf(a.TypeID()) {
	case "int":
		return IntToString(UnpackInt(a))
	case "float":
		return FloatToString(UnpackFloat(a))
	case "bool":
		return BoolToString(UnpackBool(a))
	case "char":
		return CharToString(UnpackChar(a))
	case "string":
		return UnpackString(a, box)
	default:
		if strings.HasPrefix(reg.NameOf(a.TypeID()), "array<") {
			return Stringify(reg, box, UnpackArray(a, box), seen)
		}
		return Stringify(reg, box, UnpackObject(a, box), seen)
	}
}
