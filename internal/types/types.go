// Package types implements the data-type system: a closed tagged-union
// DataType, canonical naming, size-of, and a monotonic type-id registry
// used by the "any" encoding and is-tests.
package types

import (
	"fmt"
	"strings"
)

// Kind is the closed set of DataType variants.
type Kind int

const (
	Void Kind = iota
	Null
	Any
	Bool
	Char
	Integer
	Float
	String
	Array
	Object
	Alias
	Prototype
	PrototypeTemplate
	Function
	FunctionMember
	FunctionInternal
	FunctionPointer
	FunctionTemplate
	FunctionGroup
)

// ClassInfo is the minimal shape a class declaration must expose to the
// type system; internal/ast.ClassDecl satisfies it.
type ClassInfo interface {
	ClassName() string
}

// FuncSig describes a function-shaped type's parameter and return types.
type FuncSig struct {
	Params []*DataType
	Return *DataType
}

// DataType is a structurally-compared tagged union. Only the fields
// relevant to Kind are populated; callers use the Kind-specific
// constructors below rather than building DataType literals directly.
type DataType struct {
	Kind Kind

	// Array
	Count   int // -1 for an unbound/dynamic array
	Element *DataType

	// Object
	Class ClassInfo

	// Alias
	Target *DataType

	// Function, FunctionPointer, FunctionTemplate, FunctionGroup
	Sig FuncSig

	// FunctionMember
	MemberOf *DataType

	// FunctionInternal
	InternalName string
}

func Prim(k Kind) *DataType { return &DataType{Kind: k} }

var (
	TVoid    = Prim(Void)
	TNull    = Prim(Null)
	TAny     = Prim(Any)
	TBool    = Prim(Bool)
	TChar    = Prim(Char)
	TInteger = Prim(Integer)
	TFloat   = Prim(Float)
	TString  = Prim(String)
)

// NewArray builds an array-of-element type; count < 0 denotes a dynamic
// (growable) array.
func NewArray(count int, elem *DataType) *DataType {
	return &DataType{Kind: Array, Count: count, Element: elem}
}

// NewObject builds a reference to a declared class.
func NewObject(c ClassInfo) *DataType { return &DataType{Kind: Object, Class: c} }

// NewAlias builds a named alias for target.
func NewAlias(target *DataType) *DataType { return &DataType{Kind: Alias, Target: target} }

// NewFunction builds a function-value type.
func NewFunction(params []*DataType, ret *DataType) *DataType {
	return &DataType{Kind: Function, Sig: FuncSig{Params: params, Return: ret}}
}

// NewFunctionPointer builds a function-pointer type (used for callbacks and
// stored method references).
func NewFunctionPointer(params []*DataType, ret *DataType) *DataType {
	return &DataType{Kind: FunctionPointer, Sig: FuncSig{Params: params, Return: ret}}
}

// Equal reports structural equality between a and b, resolving aliases to
// their targets.
func Equal(a, b *DataType) bool {
	a, b = Resolve(a), Resolve(b)
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case Array:
		// Count -1 marks a dynamically-sized array type (a `array<T>`
		// declaration); it accepts a literal or value of any concrete
		// length, so only two fixed counts must actually agree.
		if a.Count >= 0 && b.Count >= 0 && a.Count != b.Count {
			return false
		}
		return Equal(a.Element, b.Element)
	case Object:
		return a.Class == b.Class
	case Function, FunctionPointer, FunctionTemplate, FunctionGroup:
		if len(a.Sig.Params) != len(b.Sig.Params) {
			return false
		}
		for i := range a.Sig.Params {
			if !Equal(a.Sig.Params[i], b.Sig.Params[i]) {
				return false
			}
		}
		return Equal(a.Sig.Return, b.Sig.Return)
	default:
		return true
	}
}

// Resolve follows Alias chains down to a non-alias type.
func Resolve(t *DataType) *DataType {
	for t != nil && t.Kind == Alias {
		t = t.Target
	}
	return t
}

// CanonicalName produces the injective textual key used by the IR's symbol
// tables and the typeid registry.
func CanonicalName(t *DataType) string {
	if t == nil {
		return "void"
	}
	switch t.Kind {
	case Void:
		return "void"
	case Null:
		return "null"
	case Any:
		return "any"
	case Bool:
		return "bool"
	case Char:
		return "char"
	case Integer:
		return "int"
	case Float:
		return "float"
	case String:
		return "string"
	case Array:
		if t.Count >= 0 {
			return fmt.Sprintf("array<%s,%d>", CanonicalName(t.Element), t.Count)
		}
		return fmt.Sprintf("array<%s>", CanonicalName(t.Element))
	case Object:
		return "class:" + t.Class.ClassName()
	case Alias:
		return "alias->" + CanonicalName(t.Target)
	case Prototype:
		return "prototype"
	case PrototypeTemplate:
		return "prototype_template"
	case Function, FunctionTemplate, FunctionGroup, FunctionPointer:
		var b strings.Builder
		switch t.Kind {
		case FunctionPointer:
			b.WriteString("funcptr(")
		case FunctionTemplate:
			b.WriteString("functemplate(")
		case FunctionGroup:
			b.WriteString("funcgroup(")
		default:
			b.WriteString("func(")
		}
		for i, p := range t.Sig.Params {
			if i > 0 {
				b.WriteString(",")
			}
			b.WriteString(CanonicalName(p))
		}
		b.WriteString(")->")
		b.WriteString(CanonicalName(t.Sig.Return))
		return b.String()
	case FunctionMember:
		return "member->" + CanonicalName(t.MemberOf)
	case FunctionInternal:
		return "internal:" + t.InternalName
	default:
		return fmt.Sprintf("<unknown kind %d>", t.Kind)
	}
}

// SizeOf returns the byte size of t when stored in a field or array
// element. It is undefined (returns 0) for non-storable kinds (void,
// function value types that aren't pointer-shaped, templates).
func SizeOf(t *DataType) int {
	t = Resolve(t)
	if t == nil {
		return 0
	}
	switch t.Kind {
	case Bool, Char:
		return 1
	case Integer, Float:
		return 4
	case String, Array, Object, FunctionPointer, Any:
		return 8
	default:
		return 0
	}
}

// ElementOf returns the first positional element type of an array type;
// multi-dimensional arrays nest (array<array<int>> -> array<int> -> int).
func ElementOf(t *DataType) *DataType {
	t = Resolve(t)
	if t == nil || t.Kind != Array {
		return nil
	}
	return t.Element
}

// Registry assigns monotonic type ids to canonical type names, lazily, for
// the "any" tagged-value encoding and is-tests. Id zero is reserved; the
// first registered type yields id 1.
type Registry struct {
	byName map[string]uint16
	names  []string
}

// NewRegistry creates an empty type-id registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]uint16), names: []string{""}}
}

// TypeID returns the id for t's canonical name, registering it if this is
// the first time it has been seen.
func (r *Registry) TypeID(t *DataType) uint16 {
	name := CanonicalName(t)
	if id, ok := r.byName[name]; ok {
		return id
	}
	id := uint16(len(r.names))
	r.byName[name] = id
	r.names = append(r.names, name)
	return id
}

// NameOf returns the canonical name registered under id, or "" if unknown.
func (r *Registry) NameOf(id uint16) string {
	if int(id) >= len(r.names) {
		return ""
	}
	return r.names[id]
}
