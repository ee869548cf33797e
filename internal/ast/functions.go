package ast

import (
	"github.com/lattisc/jitvm/internal/types"
	"github.com/lattisc/jitvm/pkg/token"
)

// FuncDecl owns a function's parameters, body, and the backend handle
// pairs spec.md §3.6 names: (Item, Proto) for the callable itself and
// (ItemCtor, ProtoCtor) for a class's constructor-style entry that returns
// an object pointer. Instance methods carry `this` as parameter 0.
type FuncDecl struct {
	Node
	Name        string
	Params      []*Variable
	ReturnExpr  *TypeExpr // unresolved annotation from the parser; nil means void
	Return      *types.DataType
	Body       *Block
	Locals     []*Variable // union of params + body-introduced locals, pre-declared as IR registers
	IsMethod   bool
	Of         *ClassDecl // non-nil when IsMethod
	IsGeneric  bool
	TypeParams []string // names of generic type parameters, empty when !IsGeneric

	// IsNative marks a pre-installed builtin (spec.md §4.5.4's fixed
	// native table, e.g. log's five per-primitive overloads): no Body, no
	// Item/Proto — the backend lowers a call to one directly to a
	// dedicated opcode instead of OpCall.
	IsNative bool

	// Backend handles (see internal/ir); any so this package has no
	// dependency on internal/ir (which depends on ast).
	Item, Proto         any
	ItemCtor, ProtoCtor any

	// Overload/generic bookkeeping.
	Signature string // canonical "Name(paramTypes)->ret", used as the symbol key
}

func (*FuncDecl) stmtNode() {}

// FuncGroup collects same-named function declarations with distinct
// signatures, resolved by overload matching during analysis.
type FuncGroup struct {
	Name       string
	Overloads  []*FuncDecl
}

// FuncTemplate is a generic function declaration node. The parser never
// builds one and the analyzer does not instantiate it: declarationPass
// skips it, so its name stays undefined.
type FuncTemplate struct {
	Node
	Name       string
	TypeParams []string
	Params     []*ParamSpec
	Return     *TypeExpr
	Body       *Block
}

func (*FuncTemplate) stmtNode() {}

// ParamSpec is a not-yet-resolved parameter: a name plus an unresolved
// TypeExpr (which may reference a template type parameter).
type ParamSpec struct {
	Name string
	Type *TypeExpr
}

// TypeExpr is the parser's unresolved syntax for a type annotation; the
// analyzer resolves it to a concrete *types.DataType. No template is
// instantiated, so a type-parameter name is reported as an undefined type.
type TypeExpr struct {
	Span     token.Span
	Name     string      // primitive name, class name, or a type-parameter name
	ArrayOf  *TypeExpr   // non-nil for `array<T>` annotations
	Resolved *types.DataType
}
