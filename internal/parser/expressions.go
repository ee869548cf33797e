package parser

import (
	"strconv"

	"github.com/lattisc/jitvm/internal/ast"
	"github.com/lattisc/jitvm/pkg/token"
)

// parseExpr is the entry point: assignment is the lowest-precedence level,
// per spec.md §4.2's chain (... logical-and/or, assignment ...).
func (p *Parser) parseExpr() ast.Expr {
	return p.parseAssignment()
}

var compoundOps = map[token.Kind]token.Kind{
	token.PLUS_ASSIGN:  token.PLUS,
	token.MINUS_ASSIGN: token.MINUS,
	token.STAR_ASSIGN:  token.STAR,
	token.SLASH_ASSIGN: token.SLASH,
}

// parseAssignment is right-associative; a compound assignment `x += e`
// desugars to `x = x + e` here, matching spec.md §4.2's note.
func (p *Parser) parseAssignment() ast.Expr {
	left := p.parseConditional()
	switch p.cur().Kind {
	case token.ASSIGN:
		start := p.cur()
		p.advance()
		value := p.parseAssignment()
		return &ast.Assign{Node: p.newNode(start), Target: left, Value: value}
	case token.PLUS_ASSIGN, token.MINUS_ASSIGN, token.STAR_ASSIGN, token.SLASH_ASSIGN:
		start := p.cur()
		op := compoundOps[p.cur().Kind]
		p.advance()
		value := p.parseAssignment()
		return &ast.Assign{Node: p.newNode(start), Target: left, Value: &ast.Binary{Op: op, Left: left, Right: value}}
	}
	return left
}

func (p *Parser) parseConditional() ast.Expr {
	cond := p.parseLogicalOr()
	if p.at(token.QUESTION) {
		start := p.advance()
		then := p.parseExpr()
		p.expect(token.COLON)
		els := p.parseExpr()
		return &ast.Conditional{Node: p.newNode(start), Cond: cond, Then: then, Else: els}
	}
	return cond
}

func (p *Parser) parseLogicalOr() ast.Expr {
	left := p.parseLogicalAnd()
	for p.at(token.OR) {
		start := p.advance()
		right := p.parseLogicalAnd()
		left = &ast.Binary{Node: p.newNode(start), Op: token.OR, Left: left, Right: right, Dispatch: ast.DispatchLogical}
	}
	return left
}

func (p *Parser) parseLogicalAnd() ast.Expr {
	left := p.parseEquality()
	for p.at(token.AND) {
		start := p.advance()
		right := p.parseEquality()
		left = &ast.Binary{Node: p.newNode(start), Op: token.AND, Left: left, Right: right, Dispatch: ast.DispatchLogical}
	}
	return left
}

func (p *Parser) parseEquality() ast.Expr {
	left := p.parseComparison()
	for p.at(token.EQ) || p.at(token.NEQ) {
		start := p.cur()
		op := p.advance().Kind
		right := p.parseComparison()
		left = &ast.Binary{Node: p.newNode(start), Op: op, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseComparison() ast.Expr {
	left := p.parseIsAs()
	for p.at(token.LT) || p.at(token.LTE) || p.at(token.GT) || p.at(token.GTE) {
		start := p.cur()
		op := p.advance().Kind
		right := p.parseIsAs()
		left = &ast.Binary{Node: p.newNode(start), Op: op, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseIsAs() ast.Expr {
	left := p.parseBitwise()
	for p.at(token.IS) || p.at(token.AS) {
		start := p.cur()
		isTest := p.cur().Kind == token.IS
		p.advance()
		te := p.parseTypeExpr()
		if isTest {
			left = &ast.IsTest{Node: p.newNode(start), Operand: left, Check: nil, CheckExpr: te}
		} else {
			left = &ast.Cast{Node: p.newNode(start), Operand: left, To: nil, ToExpr: te}
		}
	}
	return left
}

func (p *Parser) parseBitwise() ast.Expr {
	left := p.parseAdditive()
	for p.at(token.AMP) || p.at(token.PIPE) || p.at(token.CARET) || p.at(token.SHL) || p.at(token.SHR) {
		start := p.cur()
		op := p.advance().Kind
		right := p.parseAdditive()
		left = &ast.Binary{Node: p.newNode(start), Op: op, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseAdditive() ast.Expr {
	left := p.parseMultiplicative()
	for p.at(token.PLUS) || p.at(token.MINUS) {
		start := p.cur()
		op := p.advance().Kind
		right := p.parseMultiplicative()
		left = &ast.Binary{Node: p.newNode(start), Op: op, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseMultiplicative() ast.Expr {
	left := p.parseUnary()
	for p.at(token.STAR) || p.at(token.SLASH) || p.at(token.PERCENT) {
		start := p.cur()
		op := p.advance().Kind
		right := p.parseUnary()
		left = &ast.Binary{Node: p.newNode(start), Op: op, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseUnary() ast.Expr {
	switch p.cur().Kind {
	case token.MINUS, token.TILDE, token.NOT:
		start := p.cur()
		op := p.advance().Kind
		operand := p.parseUnary()
		return &ast.Unary{Node: p.newNode(start), Op: op, Operand: operand}
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() ast.Expr {
	expr := p.parsePrimary()
	for {
		switch p.cur().Kind {
		case token.DOT:
			start := p.advance()
			name := p.expect(token.IDENT).Lexeme
			expr = &ast.Field{Node: p.newNode(start), Object: expr, Name: name}
		case token.LBRACKET:
			start := p.advance()
			sub := p.parseExpr()
			p.expect(token.RBRACKET)
			expr = &ast.Index{Node: p.newNode(start), Collection: expr, Subscript: sub}
		case token.LPAREN:
			start := p.advance()
			var args []ast.Expr
			for !p.at(token.RPAREN) && !p.at(token.EOF) {
				args = append(args, p.parseExpr())
				if p.at(token.COMMA) {
					p.advance()
				}
			}
			p.expect(token.RPAREN)
			expr = &ast.Call{Node: p.newNode(start), Callee: expr, Args: args}
		default:
			return expr
		}
	}
}

func (p *Parser) parsePrimary() ast.Expr {
	start := p.cur()
	switch start.Kind {
	case token.INT:
		p.advance()
		return &ast.Literal{Node: p.newNode(start), Kind: token.INT, IVal: parseInt32(start.Lexeme)}
	case token.FLOAT:
		p.advance()
		return &ast.Literal{Node: p.newNode(start), Kind: token.FLOAT, FVal: parseFloat32(start.Lexeme)}
	case token.STRING:
		p.advance()
		return &ast.Literal{Node: p.newNode(start), Kind: token.STRING, SVal: start.Lexeme}
	case token.TRUE, token.FALSE:
		p.advance()
		return &ast.Literal{Node: p.newNode(start), Kind: start.Kind, BVal: start.Kind == token.TRUE}
	case token.NULL:
		p.advance()
		return &ast.Literal{Node: p.newNode(start), Kind: token.NULL}
	case token.THIS:
		p.advance()
		return &ast.VarRead{Node: p.newNode(start), Name: "this"}
	case token.IDENT:
		p.advance()
		return &ast.VarRead{Node: p.newNode(start), Name: start.Lexeme}
	case token.LPAREN:
		p.advance()
		inner := p.parseExpr()
		p.expect(token.RPAREN)
		return &ast.Group{Node: p.newNode(start), Inner: inner}
	case token.LBRACKET:
		p.advance()
		lit := &ast.ArrayLit{Node: p.newNode(start)}
		for !p.at(token.RBRACKET) && !p.at(token.EOF) {
			lit.Elements = append(lit.Elements, p.parseExpr())
			if p.at(token.COMMA) {
				p.advance()
			}
		}
		p.expect(token.RBRACKET)
		p.closeSpan(&lit.Node)
		return lit
	default:
		p.errorf("expected expression, found %s", start.Kind)
		p.advance()
		return &ast.Literal{Node: p.newNode(start), Kind: token.NULL}
	}
}

// parseInt32 and parseFloat32 delegate to the host's decimal parser per
// spec.md §9 ("the lexer parses decimal literals via the host's decimal
// parser"); the lexer already validated the lexeme's shape.
func parseInt32(lexeme string) int32 {
	v, _ := strconv.ParseInt(lexeme, 10, 32)
	return int32(v)
}

func parseFloat32(lexeme string) float32 {
	v, _ := strconv.ParseFloat(lexeme, 32)
	return float32(v)
}
