// Package parser builds a typed AST from a token stream via recursive
// descent. The parser never performs type inference; every node starts
// with a void DataType, resolved later by internal/semantic.
package parser

import (
	"fmt"

	"github.com/lattisc/jitvm/internal/ast"
	"github.com/lattisc/jitvm/internal/lexer"
	"github.com/lattisc/jitvm/pkg/arena"
	"github.com/lattisc/jitvm/pkg/token"
)

// ErrorSink receives parse errors as they are discovered; parsing recovers
// to the next statement boundary and continues.
type ErrorSink interface {
	ParseError(span token.Span, message string)
}

// Parser is a single-pass recursive-descent parser over a buffered token
// cursor.
type Parser struct {
	arena  *arena.Arena
	errs   ErrorSink
	toks   []token.Token
	pos    int
	loopDepth int
}

// New lexes the whole of src eagerly (the off-side rule needs no
// unbounded lookahead once INDENT/DEDENT are synthesized, so buffering the
// full stream up front keeps the parser itself simple) and returns a
// Parser ready to call Parse.
func New(src []byte, a *arena.Arena, lexErrs lexer.ErrorSink, parseErrs ErrorSink) *Parser {
	l := lexer.New(src, a, lexErrs)
	var toks []token.Token
	for {
		t := l.NextToken()
		toks = append(toks, t)
		if t.Kind == token.EOF {
			break
		}
	}
	return &Parser{arena: a, errs: parseErrs, toks: toks}
}

func (p *Parser) cur() token.Token  { return p.toks[p.pos] }
func (p *Parser) peek(n int) token.Token {
	i := p.pos + n
	if i >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[i]
}
func (p *Parser) at(k token.Kind) bool { return p.cur().Kind == k }
func (p *Parser) advance() token.Token {
	t := p.cur()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) error(msg string) {
	if p.errs != nil {
		p.errs.ParseError(p.cur().Span, msg)
	}
}

func (p *Parser) errorf(format string, args ...any) {
	p.error(fmt.Sprintf(format, args...))
}

// expect consumes the current token if it matches k, else records an error
// and leaves the cursor in place so recovery can proceed.
func (p *Parser) expect(k token.Kind) token.Token {
	if p.at(k) {
		return p.advance()
	}
	p.errorf("expected %s, found %s", k, p.cur().Kind)
	return p.cur()
}

func (p *Parser) skipNewlines() {
	for p.at(token.NEWLINE) {
		p.advance()
	}
}

// syncToStatementBoundary recovers from a parse error by consuming tokens
// until a NEWLINE, DEDENT, or EOF, matching spec.md §7's recovery rule.
func (p *Parser) syncToStatementBoundary() {
	for !p.at(token.NEWLINE) && !p.at(token.DEDENT) && !p.at(token.EOF) {
		p.advance()
	}
	if p.at(token.NEWLINE) {
		p.advance()
	}
}

func (p *Parser) newNode(start token.Token) ast.Node {
	return ast.Node{Tok: start, Span: token.Span{Start: start.Span.Start}}
}

func (p *Parser) closeSpan(n *ast.Node) {
	n.Span.End = p.toks[max(0, p.pos-1)].Span.End
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Parse consumes the whole token stream and returns the program root.
func (p *Parser) Parse() *ast.Program {
	prog := &ast.Program{}
	p.skipNewlines()
	for !p.at(token.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			prog.Stmts = append(prog.Stmts, stmt)
		}
		p.skipNewlines()
	}
	return prog
}
