package ast

// Program is the root of a compiled unit: the ordered top-level statements
// (variable declarations, function/class declarations, imports, and
// top-level executable statements, which the backend lowers into the
// module's <start> function per spec.md §4.5.2/§9's "Start function").
type Program struct {
	Stmts []Stmt
}
