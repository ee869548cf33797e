package ast

// ClassDecl owns a class's member layout (spec.md §3.6, §4.4's offset
// layout rule: field n+1 starts at offset_n + size_of(field_n), no packing
// beyond natural alignment for pointer-shaped fields).
type ClassDecl struct {
	Node
	Name           string
	Fields         []*Variable // ScopeClass variables, Offset populated by analysis
	Functions      []*FuncDecl
	FuncTemplates  []*FuncTemplate
	DefaultCtor    *FuncDecl
	Size           int // total instance size in bytes
	membersByName  map[string]*Variable
	methodsByName  map[string]*FuncGroup
}

func (*ClassDecl) stmtNode() {}

// ClassName implements internal/types.ClassInfo.
func (c *ClassDecl) ClassName() string { return c.Name }

// Layout assigns sequential byte offsets to fields in declaration order and
// sets Size to the total. It is idempotent; the analyzer calls it once
// after all fields are known.
func (c *ClassDecl) Layout(sizeOf func(*Variable) int) {
	offset := 0
	for _, f := range c.Fields {
		f.Offset = offset
		offset += sizeOf(f)
	}
	c.Size = offset
}

// Member looks up a declared field by name.
func (c *ClassDecl) Member(name string) (*Variable, bool) {
	if c.membersByName == nil {
		c.membersByName = make(map[string]*Variable, len(c.Fields))
		for _, f := range c.Fields {
			c.membersByName[f.Name] = f
		}
	}
	v, ok := c.membersByName[name]
	return v, ok
}

// Method looks up the overload group for a declared method name.
func (c *ClassDecl) Method(name string) (*FuncGroup, bool) {
	if c.methodsByName == nil {
		c.methodsByName = make(map[string]*FuncGroup)
		for _, fn := range c.Functions {
			g := c.methodsByName[fn.Name]
			if g == nil {
				g = &FuncGroup{Name: fn.Name}
				c.methodsByName[fn.Name] = g
			}
			g.Overloads = append(g.Overloads, fn)
		}
	}
	g, ok := c.methodsByName[name]
	return g, ok
}

// AddFunction registers fn and invalidates the method-name cache.
func (c *ClassDecl) AddFunction(fn *FuncDecl) {
	c.Functions = append(c.Functions, fn)
	c.methodsByName = nil
}

// ClassTemplate is a generic class declaration node. The parser never
// builds one and the analyzer does not instantiate it into a ClassDecl;
// declarationPass skips it.
type ClassTemplate struct {
	Node
	Name       string
	TypeParams []string
	Fields     []*ParamSpec
	Methods    []*FuncTemplate
}

func (*ClassTemplate) stmtNode() {}
