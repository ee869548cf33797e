package parser

import (
	"github.com/lattisc/jitvm/internal/ast"
	"github.com/lattisc/jitvm/pkg/token"
)

// parseTypeExpr parses a type annotation: a primitive keyword, a class
// name, or `array<T>`. It does not resolve the annotation to a concrete
// *types.DataType — that is internal/semantic's job.
func (p *Parser) parseTypeExpr() *ast.TypeExpr {
	start := p.cur()
	te := &ast.TypeExpr{Span: start.Span}
	if start.Kind == token.IDENT && start.Lexeme == "array" && p.peek(1).Kind == token.LT {
		p.advance() // 'array'
		p.advance() // '<'
		te.ArrayOf = p.parseTypeExpr()
		if p.at(token.GT) {
			p.advance()
		} else {
			p.error("expected '>' to close array type")
		}
		te.Name = "array"
		return te
	}
	te.Name = p.advance().Lexeme
	return te
}

func (p *Parser) parseVarDecl(scope ast.Scope) ast.Stmt {
	start := p.cur()
	name := p.advance().Lexeme // IDENT
	p.expect(token.COLON)
	typeExpr := p.parseTypeExpr()
	v := &ast.Variable{Name: name, Scope: scope, DeclaredAt: start.Span, TypeExpr: typeExpr}
	n := &ast.VarDecl{Node: p.newNode(start), Var: v}
	if p.at(token.ASSIGN) {
		p.advance()
		v.Init = p.parseExpr()
	}
	p.closeSpan(&n.Node)
	return n
}

// parseFuncDecl parses `name : (p1: T1, p2: T2) -> RetType: body`. If owner
// is non-nil, parameter 0 is implicitly `this` of the owner's type.
func (p *Parser) parseFuncDecl(owner *ast.ClassDecl) *ast.FuncDecl {
	start := p.cur()
	name := p.advance().Lexeme
	p.expect(token.COLON)
	p.expect(token.LPAREN)

	fn := &ast.FuncDecl{Node: p.newNode(start), Name: name, IsMethod: owner != nil, Of: owner}
	if owner != nil {
		this := &ast.Variable{Name: "this", Scope: ast.ScopeLocal, Index: 0}
		fn.Params = append(fn.Params, this)
	}
	for !p.at(token.RPAREN) && !p.at(token.EOF) {
		pname := p.expect(token.IDENT).Lexeme
		p.expect(token.COLON)
		pte := p.parseTypeExpr()
		fn.Params = append(fn.Params, &ast.Variable{Name: pname, Scope: ast.ScopeLocal, Index: len(fn.Params), TypeExpr: pte})
		if p.at(token.COMMA) {
			p.advance()
		}
	}
	p.expect(token.RPAREN)
	if p.at(token.MINUS) && p.peek(1).Kind == token.GT {
		p.advance()
		p.advance()
		fn.ReturnExpr = p.parseTypeExpr()
	}
	fn.Locals = append([]*ast.Variable{}, fn.Params...)
	p.loopDepth = 0
	fn.Body = p.parseBlockCollectingLocals(fn)
	p.closeSpan(&fn.Node)
	return fn
}

// parseBlockCollectingLocals parses a function body block and appends every
// VarDecl it introduces to fn.Locals, per spec.md §3.6 (declared locals are
// the union of parameters and body-introduced variables, pre-declared so
// the backend can allocate IR registers for all of them up front).
func (p *Parser) parseBlockCollectingLocals(fn *ast.FuncDecl) *ast.Block {
	blk := p.parseBlock()
	collectLocals(blk, fn)
	return blk
}

func collectLocals(b *ast.Block, fn *ast.FuncDecl) {
	for _, s := range b.Stmts {
		switch st := s.(type) {
		case *ast.VarDecl:
			st.Var.Index = len(fn.Locals)
			fn.Locals = append(fn.Locals, st.Var)
		case *ast.If:
			collectLocals(st.Then, fn)
			if st.Else != nil {
				collectLocals(st.Else, fn)
			}
		case *ast.While:
			if st.Init != nil {
				if vd, ok := (*st.Init).(*ast.VarDecl); ok {
					vd.Var.Index = len(fn.Locals)
					fn.Locals = append(fn.Locals, vd.Var)
				}
			}
			collectLocals(st.Body, fn)
		}
	}
}

func (p *Parser) parseClassDecl() ast.Stmt {
	start := p.advance() // 'class'
	name := p.expect(token.IDENT).Lexeme
	c := &ast.ClassDecl{Node: p.newNode(start), Name: name}
	p.expect(token.COLON)
	p.skipNewlines()
	p.expect(token.INDENT)
	p.skipNewlines()
	for !p.at(token.DEDENT) && !p.at(token.EOF) {
		if p.isFuncDeclAhead() {
			c.AddFunction(p.parseFuncDecl(c))
		} else if p.isVarDeclAhead() {
			vd := p.parseVarDecl(ast.ScopeClass).(*ast.VarDecl)
			c.Fields = append(c.Fields, vd.Var)
		} else {
			p.error("expected a field or method declaration in class body")
			p.syncToStatementBoundary()
		}
		p.skipNewlines()
	}
	p.expect(token.DEDENT)
	p.closeSpan(&c.Node)
	return c
}
