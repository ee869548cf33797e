package ast

import "fmt"

// Print renders prog as an indented textual tree, grounded on go-dws's
// pkg/printer style (one node per line, children indented two spaces)
// generalized to this AST's flatter, struct-per-node shape. It exists for
// the CLI's parse subcommand and golden-file tests, not for round-tripping source.
func Print(prog *Program) string {
	var out string
	for _, s := range prog.Stmts {
		out += printStmt(s, 0)
	}
	return out
}

func indent(n int) string {
	s := ""
	for i := 0; i < n; i++ {
		s += "  "
	}
	return s
}

func printStmt(s Stmt, depth int) string {
	pad := indent(depth)
	switch st := s.(type) {
	case *VarDecl:
		return fmt.Sprintf("%sVarDecl %s\n", pad, st.Var.Name)
	case *ExprStmt:
		return fmt.Sprintf("%sExprStmt\n%s", pad, printExpr(st.X, depth+1))
	case *Block:
		out := fmt.Sprintf("%sBlock\n", pad)
		for _, inner := range st.Stmts {
			out += printStmt(inner, depth+1)
		}
		return out
	case *If:
		out := fmt.Sprintf("%sIf\n%s", pad, printExpr(st.Cond, depth+1))
		out += printStmt(st.Then, depth+1)
		if st.Else != nil {
			out += printStmt(st.Else, depth+1)
		}
		return out
	case *While:
		out := fmt.Sprintf("%sWhile\n%s", pad, printExpr(st.Cond, depth+1))
		out += printStmt(st.Body, depth+1)
		return out
	case *Return:
		out := fmt.Sprintf("%sReturn\n", pad)
		if st.Value != nil {
			out += printExpr(st.Value, depth+1)
		}
		return out
	case *Continue:
		return fmt.Sprintf("%sContinue\n", pad)
	case *Break:
		return fmt.Sprintf("%sBreak\n", pad)
	case *Import:
		return fmt.Sprintf("%sImport %q\n", pad, st.Path)
	case *FuncDecl:
		out := fmt.Sprintf("%sFuncDecl %s\n", pad, st.Name)
		out += printStmt(st.Body, depth+1)
		return out
	case *ClassDecl:
		out := fmt.Sprintf("%sClassDecl %s\n", pad, st.Name)
		for _, fn := range st.Functions {
			out += printStmt(fn, depth+1)
		}
		return out
	default:
		return fmt.Sprintf("%s<unknown stmt>\n", pad)
	}
}

func printExpr(e Expr, depth int) string {
	pad := indent(depth)
	switch x := e.(type) {
	case *Literal:
		return fmt.Sprintf("%sLiteral %s\n", pad, x.Tok.String())
	case *Group:
		return fmt.Sprintf("%sGroup\n%s", pad, printExpr(x.Inner, depth+1))
	case *Unary:
		return fmt.Sprintf("%sUnary %s\n%s", pad, x.Op.String(), printExpr(x.Operand, depth+1))
	case *Binary:
		out := fmt.Sprintf("%sBinary %s\n", pad, x.Op.String())
		out += printExpr(x.Left, depth+1)
		out += printExpr(x.Right, depth+1)
		return out
	case *VarRead:
		return fmt.Sprintf("%sVarRead %s\n", pad, x.Name)
	case *Assign:
		out := fmt.Sprintf("%sAssign\n", pad)
		out += printExpr(x.Target, depth+1)
		out += printExpr(x.Value, depth+1)
		return out
	case *Call:
		out := fmt.Sprintf("%sCall\n", pad)
		out += printExpr(x.Callee, depth+1)
		for _, a := range x.Args {
			out += printExpr(a, depth+1)
		}
		return out
	case *Cast:
		return fmt.Sprintf("%sCast\n%s", pad, printExpr(x.Operand, depth+1))
	case *Field:
		return fmt.Sprintf("%sField .%s\n%s", pad, x.Name, printExpr(x.Object, depth+1))
	case *Index:
		out := fmt.Sprintf("%sIndex\n", pad)
		out += printExpr(x.Collection, depth+1)
		out += printExpr(x.Subscript, depth+1)
		return out
	case *ArrayLit:
		out := fmt.Sprintf("%sArrayLit\n", pad)
		for _, el := range x.Elements {
			out += printExpr(el, depth+1)
		}
		return out
	case *Conditional:
		out := fmt.Sprintf("%sConditional\n", pad)
		out += printExpr(x.Cond, depth+1)
		out += printExpr(x.Then, depth+1)
		out += printExpr(x.Else, depth+1)
		return out
	case *IsTest:
		return fmt.Sprintf("%sIsTest\n%s", pad, printExpr(x.Operand, depth+1))
	default:
		return fmt.Sprintf("%s<unknown expr>\n", pad)
	}
}
