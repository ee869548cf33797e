package ir

// Link resolves every call-site placeholder Builder left behind (an Item
// with only Name populated, standing in for "the function with this
// canonical signature") into the real *Item owned by m. It does nothing
// about global-initializer ordering. It must run once, after every function in
// the program has been built and added to m, and before Generate.
func Link(m *Module) error {
	for _, name := range m.Order {
		it := m.Items[name]
		for i := range it.Instrs {
			resolveCallTarget(m, &it.Instrs[i])
		}
	}
	return nil
}

func resolveCallTarget(m *Module, instr *Instr) {
	if instr.CallTarget == nil {
		return
	}
	if real, ok := m.Items[instr.CallTarget.Name]; ok {
		instr.CallTarget = real
	}
	// an unresolved placeholder (no matching Item) is left as-is; Generate's
	// OpCall/OpCallMethod handler raises a runtime panic for it, since a
	// dangling call target can only mean an external the host never
	// registered via pkg/jitvm.RegisterExternal.
}
