package parser

import (
	"github.com/lattisc/jitvm/internal/ast"
	"github.com/lattisc/jitvm/pkg/token"
)

func (p *Parser) parseStatement() ast.Stmt {
	switch p.cur().Kind {
	case token.IF:
		return p.parseIf()
	case token.WHILE:
		return p.parseWhile()
	case token.FOR:
		return p.parseFor()
	case token.RETURN:
		return p.parseReturn()
	case token.CONTINUE:
		return p.parseLoopJump(true)
	case token.BREAK:
		return p.parseLoopJump(false)
	case token.IMPORT:
		return p.parseImport()
	case token.CLASS:
		return p.parseClassDecl()
	case token.IDENT:
		if p.isFuncDeclAhead() {
			return p.parseFuncDecl(nil)
		}
		if p.isVarDeclAhead() {
			return p.parseVarDecl(ast.ScopeLocal)
		}
		return p.parseExprStatement()
	default:
		return p.parseExprStatement()
	}
}

// isVarDeclAhead recognizes `name : type = expr` / `name : type`.
func (p *Parser) isVarDeclAhead() bool {
	return p.cur().Kind == token.IDENT && p.peek(1).Kind == token.COLON
}

// isFuncDeclAhead recognizes `name : (params) -> type` used for a function
// declaration (distinguished from a variable of function-pointer type by
// the `(` immediately after `:`).
func (p *Parser) isFuncDeclAhead() bool {
	return p.cur().Kind == token.IDENT && p.peek(1).Kind == token.COLON && p.peek(2).Kind == token.LPAREN
}

func (p *Parser) parseBlock() *ast.Block {
	start := p.cur()
	blk := &ast.Block{Node: p.newNode(start)}
	p.expect(token.COLON)
	p.skipNewlines()
	p.expect(token.INDENT)
	p.skipNewlines()
	for !p.at(token.DEDENT) && !p.at(token.EOF) {
		s := p.parseStatement()
		if s != nil {
			blk.Stmts = append(blk.Stmts, s)
		}
		p.skipNewlines()
	}
	p.expect(token.DEDENT)
	p.closeSpan(&blk.Node)
	return blk
}

func (p *Parser) parseIf() ast.Stmt {
	start := p.advance() // consume 'if'
	n := &ast.If{Node: p.newNode(start)}
	n.Cond = p.parseExpr()
	n.Then = p.parseBlock()
	p.skipNewlines()
	if p.at(token.ELSE) {
		p.advance()
		if p.at(token.IF) {
			nested := p.parseIf()
			n.Else = &ast.Block{Stmts: []ast.Stmt{nested}}
		} else {
			n.Else = p.parseBlock()
		}
	}
	p.closeSpan(&n.Node)
	return n
}

func (p *Parser) parseWhile() ast.Stmt {
	start := p.advance() // consume 'while'
	n := &ast.While{Node: p.newNode(start)}
	n.Cond = p.parseExpr()
	p.loopDepth++
	n.Body = p.parseBlock()
	p.loopDepth--
	p.closeSpan(&n.Node)
	return n
}

// parseFor desugars `for init; cond; post: body` into the While node's
// explicit initializer/incrementer sections per spec.md §3.4, and the
// simpler `for x in collection: body` form into an index-counted while
// loop over the collection's length.
func (p *Parser) parseFor() ast.Stmt {
	start := p.advance() // consume 'for'
	n := &ast.While{Node: p.newNode(start)}

	if p.cur().Kind == token.IDENT && p.peek(1).Kind == token.IN {
		return p.desugarForIn(start, n)
	}

	var initStmt ast.Stmt
	if !p.at(token.SEMICOLON) {
		initStmt = p.parseSimpleAssignOrDecl()
	}
	p.expect(token.SEMICOLON)
	n.Init = &initStmt
	n.Cond = p.parseExpr()
	p.expect(token.SEMICOLON)
	postExpr := p.parseExpr()
	n.Post = &ast.ExprStmt{X: postExpr}

	p.loopDepth++
	n.Body = p.parseBlock()
	p.loopDepth--
	p.closeSpan(&n.Node)
	return n
}

// desugarForIn turns `for x in expr: body` into:
//
//	__idx := 0
//	while __idx < len(expr):
//	    x := expr[__idx]
//	    body
//	    __idx += 1
//
// grounded on the same desugaring strategy spec.md §3.4 prescribes for the
// C-style for loop: reuse the While node's Init/Post sections rather than
// inventing a dedicated ForIn AST node.
func (p *Parser) desugarForIn(start token.Token, n *ast.While) ast.Stmt {
	elemName := p.advance().Lexeme // IDENT
	p.advance()                    // consume 'in'
	collection := p.parseExpr()

	idxVar := &ast.Variable{Name: "$idx", Scope: ast.ScopeLocal, Init: &ast.Literal{Kind: token.INT, IVal: 0}}
	initStmt := ast.Stmt(&ast.VarDecl{Var: idxVar})
	n.Init = &initStmt

	lenCall := &ast.Call{Callee: &ast.VarRead{Name: "length"}, Args: []ast.Expr{collection}}
	n.Cond = &ast.Binary{Op: token.LT, Left: &ast.VarRead{Name: "$idx", Decl: idxVar}, Right: lenCall}

	postTarget := &ast.VarRead{Name: "$idx", Decl: idxVar}
	n.Post = &ast.ExprStmt{X: &ast.Assign{
		Target: postTarget,
		Value:  &ast.Binary{Op: token.PLUS, Left: postTarget, Right: &ast.Literal{Kind: token.INT, IVal: 1}},
	}}

	elemVar := &ast.Variable{Name: elemName, Scope: ast.ScopeLocal}
	bodyBlock := p.parseBlock()
	elemDecl := ast.Stmt(&ast.VarDecl{Var: elemVar, Node: ast.Node{}})
	elemVar.Init = &ast.Index{Collection: collection, Subscript: &ast.VarRead{Name: "$idx", Decl: idxVar}}
	bodyBlock.Stmts = append([]ast.Stmt{elemDecl}, bodyBlock.Stmts...)
	n.Body = bodyBlock
	n.Tok = start
	p.closeSpan(&n.Node)
	return n
}

func (p *Parser) parseSimpleAssignOrDecl() ast.Stmt {
	if p.isVarDeclAhead() {
		return p.parseVarDecl(ast.ScopeLocal)
	}
	return p.parseExprStatement()
}

func (p *Parser) parseReturn() ast.Stmt {
	start := p.advance()
	n := &ast.Return{Node: p.newNode(start)}
	if !p.at(token.NEWLINE) && !p.at(token.DEDENT) && !p.at(token.EOF) {
		n.Value = p.parseExpr()
	}
	p.closeSpan(&n.Node)
	return n
}

func (p *Parser) parseLoopJump(isContinue bool) ast.Stmt {
	start := p.advance()
	if p.loopDepth == 0 {
		kw := "break"
		if isContinue {
			kw = "continue"
		}
		p.errorf("%s outside of a loop", kw)
	}
	if isContinue {
		return &ast.Continue{Node: p.newNode(start)}
	}
	return &ast.Break{Node: p.newNode(start)}
}

func (p *Parser) parseImport() ast.Stmt {
	start := p.advance()
	n := &ast.Import{Node: p.newNode(start)}
	if p.at(token.STRING) {
		n.Path = p.advance().Lexeme
	} else if p.at(token.IDENT) {
		n.Path = p.advance().Lexeme
	} else {
		p.error("expected module path after import")
	}
	p.closeSpan(&n.Node)
	return n
}

func (p *Parser) parseExprStatement() ast.Stmt {
	start := p.cur()
	expr := p.parseExpr()
	n := &ast.ExprStmt{Node: p.newNode(start), X: expr}
	p.closeSpan(&n.Node)
	return n
}
