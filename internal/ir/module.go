package ir

import "github.com/lattisc/jitvm/internal/types"

// Proto is a callable's compiled signature: parameter and return types
// (spec.md §4.5.2's "Item, Proto" pair). The register count a call needs
// is Item.NumLocals, not part of Proto.
type Proto struct {
	Params []*types.DataType
	Return *types.DataType
}

// Item is one compiled unit: a function body's instructions, or an
// external declaration with no body (Instrs is nil, Name resolves through
// pkg/jitvm.RegisterExternal instead). Globals are represented the same
// way, as a zero-argument Item whose single OpReturn computes the
// initializer.
type Item struct {
	Name       string
	Proto      Proto
	Instrs     []Instr
	NumLocals  int // Locals slice size a Frame needs to run this Item
	IsExternal bool
	IsGlobal   bool

	Compiled Compiled // populated by Generate
	// Native reports whether Compiled dispatches into real assembled
	// machine code (see native_amd64.go) rather than the closure-chain
	// interpreter. Always false on non-amd64 builds or for any Item
	// outside the native tier's narrow eligible shape.
	Native bool
}

// Module is the unit BuildModule lowers an analyzed program into: every
// function and global the program declares, keyed by its canonical
// signature so overloads of the same name coexist (spec.md §4.4's
// canonical-name convention, reused here as the symbol-table key).
type Module struct {
	Items   map[string]*Item
	Order   []string // insertion order, for deterministic disassembly/dump output
	Externals map[string]*Item
}

func NewModule() *Module {
	return &Module{Items: map[string]*Item{}, Externals: map[string]*Item{}}
}

func (m *Module) AddItem(it *Item) {
	if _, exists := m.Items[it.Name]; !exists {
		m.Order = append(m.Order, it.Name)
	}
	m.Items[it.Name] = it
	if it.IsExternal {
		m.Externals[it.Name] = it
	}
}

func (m *Module) Lookup(name string) (*Item, bool) {
	it, ok := m.Items[name]
	return it, ok
}
