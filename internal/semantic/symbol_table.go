// Package semantic walks the parsed AST to assign data types, resolve
// names, insert implicit casts, and verify operator applicability and
// control flow (spec.md §4.4). Generic templates are not instantiated.
package semantic

import (
	"github.com/lattisc/jitvm/internal/ast"
)

// scope is one level of lexical nesting: block, function, or global.
type scope struct {
	vars   map[string]*ast.Variable
	funcs  map[string]*ast.FuncGroup
	parent *scope
}

func newScope(parent *scope) *scope {
	return &scope{vars: map[string]*ast.Variable{}, funcs: map[string]*ast.FuncGroup{}, parent: parent}
}

func (s *scope) define(v *ast.Variable) { s.vars[v.Name] = v }

func (s *scope) lookup(name string) (*ast.Variable, bool) {
	for sc := s; sc != nil; sc = sc.parent {
		if v, ok := sc.vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

func (s *scope) defineFunc(fn *ast.FuncDecl) {
	g := s.funcs[fn.Name]
	if g == nil {
		g = &ast.FuncGroup{Name: fn.Name}
		s.funcs[fn.Name] = g
	}
	g.Overloads = append(g.Overloads, fn)
}

func (s *scope) lookupFuncGroup(name string) (*ast.FuncGroup, bool) {
	for sc := s; sc != nil; sc = sc.parent {
		if g, ok := sc.funcs[name]; ok {
			return g, true
		}
	}
	return nil, false
}

// Environment is the nested lexical-scope stack the analyzer walks the
// program with.
type Environment struct {
	current *scope
	classes map[string]*ast.ClassDecl
}

func NewEnvironment() *Environment {
	return &Environment{current: newScope(nil), classes: map[string]*ast.ClassDecl{}}
}

func (e *Environment) Push()        { e.current = newScope(e.current) }
func (e *Environment) Pop()         { e.current = e.current.parent }
func (e *Environment) Define(v *ast.Variable) { e.current.define(v) }
func (e *Environment) Lookup(name string) (*ast.Variable, bool) { return e.current.lookup(name) }
func (e *Environment) DefineFunc(fn *ast.FuncDecl)              { e.current.defineFunc(fn) }
func (e *Environment) LookupFunc(name string) (*ast.FuncGroup, bool) {
	return e.current.lookupFuncGroup(name)
}
func (e *Environment) DefineClass(c *ast.ClassDecl) { e.classes[c.Name] = c }
func (e *Environment) LookupClass(name string) (*ast.ClassDecl, bool) {
	c, ok := e.classes[name]
	return c, ok
}
