package ir

import (
	"strconv"

	"github.com/tidwall/sjson"
)

// DumpJSON renders the module's function table as a JSON document (one
// "functions" entry per Item, externals included and flagged by their
// "external" field; there is no separate type or external table) — the
// structured counterpart to
// Disassemble's text listing, per SPEC_FULL.md's domain-stack wiring for
// tidwall/sjson (construction) and tidwall/gjson (the CLI's query side, see
// cmd/jitvm's --show flag).
func (m *Module) DumpJSON() (string, error) {
	doc := "{}"
	var err error
	for i, name := range m.Order {
		it := m.Items[name]
		base := "functions." + strconv.Itoa(i)
		if doc, err = sjson.Set(doc, base+".name", it.Name); err != nil {
			return "", err
		}
		if doc, err = sjson.Set(doc, base+".external", it.IsExternal); err != nil {
			return "", err
		}
		if doc, err = sjson.Set(doc, base+".global", it.IsGlobal); err != nil {
			return "", err
		}
		if doc, err = sjson.Set(doc, base+".numLocals", it.NumLocals); err != nil {
			return "", err
		}
		if doc, err = sjson.Set(doc, base+".instructionCount", len(it.Instrs)); err != nil {
			return "", err
		}
		if doc, err = sjson.Set(doc, base+".native", it.Native); err != nil {
			return "", err
		}
	}
	return doc, nil
}
