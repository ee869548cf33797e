// Package runtime is the native support library spec.md §4.5.3–4.5.4
// names: malloc/memcpy/realloc, the tagged "any" encoding, per-primitive
// string casts, string equality, logging sinks, and the on-demand array/
// string routine table internal/ir generates calls to.
package runtime

import "github.com/lattisc/jitvm/internal/types"

// Any is the tagged-value encoding from spec.md §3.7: the low 48 bits carry
// a payload, the high 16 bits a type id from the shared types.Registry.
//
// A real 48-bit pointer payload is not GC-safe in Go — the garbage
// collector cannot see a pointer hidden inside a uint64, so a pointer
// smuggled that way can be collected out from under a still-live Any.
// This package keeps spec.md's bit layout (so TypeID() / Payload() split
// the word exactly as documented) but, for pointer-shaped kinds, the
// 48-bit payload is an index into Box, a growable slab of ordinary Go
// values the garbage collector does track; primitives are packed
// directly, unboxed.
type Any uint64

const (
	payloadBits = 48
	payloadMask = (uint64(1) << payloadBits) - 1
)

func pack(typeID uint16, payload uint64) Any {
	return Any(uint64(typeID)<<payloadBits | (payload & payloadMask))
}

// TypeID returns the high 16 bits: the type tag.
func (a Any) TypeID() uint16 { return uint16(uint64(a) >> payloadBits) }

// Payload returns the low 48 bits, unmodified.
func (a Any) Payload() uint64 { return uint64(a) & payloadMask }

// Box is the pointer-shaped-value slab. Index 0 is reserved so a zero Any
// payload never aliases a live box entry.
type Box struct {
	slots []any
}

func NewBox() *Box { return &Box{slots: []any{nil}} }

func (b *Box) put(v any) uint64 {
	b.slots = append(b.slots, v)
	return uint64(len(b.slots) - 1)
}

func (b *Box) get(idx uint64) any {
	if idx == 0 || int(idx) >= len(b.slots) {
		return nil
	}
	return b.slots[idx]
}

// PackInt/PackFloat/PackBool/PackChar box a primitive directly into the
// payload, no Box slab entry needed.
func PackInt(reg *types.Registry, v int32) Any {
	return pack(reg.TypeID(types.TInteger), uint64(uint32(v)))
}

func PackFloat(reg *types.Registry, v float32) Any {
	bits := floatBits(v)
	return pack(reg.TypeID(types.TFloat), uint64(bits))
}

func PackBool(reg *types.Registry, v bool) Any {
	var p uint64
	if v {
		p = 1
	}
	return pack(reg.TypeID(types.TBool), p)
}

func PackChar(reg *types.Registry, v rune) Any {
	return pack(reg.TypeID(types.TChar), uint64(uint32(v)))
}

// PackString/PackArray/PackObject/PackFuncPtr box a pointer-shaped value in
// b and pack the slab index as the payload.
func PackString(reg *types.Registry, b *Box, v string) Any {
	return pack(reg.TypeID(types.TString), b.put(v))
}

func PackArray(reg *types.Registry, b *Box, elem *types.DataType, v []Any) Any {
	return pack(reg.TypeID(types.NewArray(len(v), elem)), b.put(v))
}

func PackObject(reg *types.Registry, b *Box, class types.ClassInfo, v any) Any {
	return pack(reg.TypeID(types.NewObject(class)), b.put(v))
}

// PackPointer/UnpackPointer are the general form PackString/PackObject
// specialize: box any Go value under t's type id. internal/ir uses this
// directly for function-pointer values, boxing a *ir.Item (this package
// cannot name that type without an import cycle).
func PackPointer(reg *types.Registry, b *Box, t *types.DataType, v any) Any {
	return pack(reg.TypeID(t), b.put(v))
}

func UnpackPointer(a Any, b *Box) any { return b.get(a.Payload()) }

// UnpackInt/UnpackFloat/UnpackBool/UnpackChar read a primitive payload back
// out; the caller is responsible for having checked TypeID first (IsTest).
func UnpackInt(a Any) int32     { return int32(uint32(a.Payload())) }
func UnpackBool(a Any) bool     { return a.Payload() != 0 }
func UnpackChar(a Any) rune     { return rune(uint32(a.Payload())) }
func UnpackFloat(a Any) float32 { return floatFromBits(uint32(a.Payload())) }

// UnpackString/UnpackArray/UnpackObject read a boxed payload back out of b.
func UnpackString(a Any, b *Box) string {
	v, _ := b.get(a.Payload()).(string)
	return v
}

func UnpackArray(a Any, b *Box) []Any {
	v, _ := b.get(a.Payload()).([]Any)
	return v
}

func UnpackObject(a Any, b *Box) any {
	return b.get(a.Payload())
}

// DefaultValue is the zero value spec.md §4.5.3's "default-initialize"
// array/field semantics require: correctly type-tagged so a later IsTest
// or arithmetic op sees the right TypeID, even though the payload points
// at Box's reserved nil slot for every pointer-shaped kind (empty string,
// nil array, null object all fall out of that slot for free).
func DefaultValue(reg *types.Registry, t *types.DataType) Any {
	if t == nil {
		return Any(0)
	}
	switch t.Kind {
	case types.Integer:
		return PackInt(reg, 0)
	case types.Float:
		return PackFloat(reg, 0)
	case types.Bool:
		return PackBool(reg, false)
	case types.Char:
		return PackChar(reg, 0)
	default:
		return pack(reg.TypeID(t), 0)
	}
}
