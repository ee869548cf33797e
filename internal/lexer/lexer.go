// Package lexer converts source text into a token stream, synthesizing
// INDENT/DEDENT/NEWLINE tokens from the off-side (indentation) rule.
package lexer

import (
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode/utf32"

	"github.com/lattisc/jitvm/pkg/arena"
	"github.com/lattisc/jitvm/pkg/token"
)

// ErrorSink receives lex errors as they are discovered. Lexing never stops
// on error; it records and continues, per spec.
type ErrorSink interface {
	LexError(span token.Span, message string)
}

// Lexer scans DWScript-like, indentation-structured source into tokens.
type Lexer struct {
	arena *arena.Arena
	errs  ErrorSink

	input string

	pos, readPos int
	ch           rune
	line, col    int

	// indentStack tracks currently open indentation widths; initialized to
	// [0]. bracketDepth suppresses NEWLINE/indentation while positive.
	indentStack  []int
	bracketDepth int
	atLineStart  bool

	// pending holds synthesized tokens (INDENT/DEDENT/NEWLINE/EOF) queued
	// ahead of the next real scan, so NextToken always returns exactly one.
	pending []token.Token

	sawTab, sawSpace bool
}

// New creates a Lexer over src, stripping a UTF-8 BOM if present exactly as
// a conforming text-mode file reader would.
func New(src []byte, a *arena.Arena, errs ErrorSink) *Lexer {
	src = stripBOM(src)
	l := &Lexer{
		arena:       a,
		errs:        errs,
		input:       string(src),
		line:        1,
		col:         0,
		indentStack: []int{0},
		atLineStart: true,
	}
	l.readChar()
	return l
}

func stripBOM(b []byte) []byte {
	// The utf32 encoding value is constructed and discarded; no non-UTF-8
	// decoding is performed. Only a UTF-8 BOM is recognized, by the byte
	// check below.
	_ = utf32.UTF32(utf32.BigEndian, utf32.IgnoreBOM)
	if len(b) >= 3 && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		return b[3:]
	}
	return b
}

func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0
		l.pos = l.readPos
		l.col++
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.readPos:])
	l.ch = r
	l.pos = l.readPos
	l.readPos += size
	l.col++
	if r == utf8.RuneError && size == 1 {
		l.error("invalid UTF-8 encoding")
	}
}

func (l *Lexer) peekChar() rune {
	if l.readPos >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPos:])
	return r
}

func (l *Lexer) here() token.Position { return token.Position{Line: l.line, Col: l.col} }

func (l *Lexer) error(msg string) {
	if l.errs != nil {
		l.errs.LexError(token.Span{Start: l.here(), End: l.here()}, msg)
	}
}

func (l *Lexer) newline() {
	l.line++
	l.col = 0
}

// NextToken returns the next token in the stream, including any synthesized
// INDENT/DEDENT/NEWLINE/EOF tokens.
func (l *Lexer) NextToken() token.Token {
	if len(l.pending) > 0 {
		t := l.pending[0]
		l.pending = l.pending[1:]
		return t
	}
	if l.atLineStart && l.bracketDepth == 0 {
		if t, ok := l.scanIndentation(); ok {
			return t
		}
	}
	return l.scanToken()
}

// scanIndentation consumes leading whitespace of a logical line, emits
// INDENT/DEDENT tokens as needed, and returns ok=false once the lexer is
// positioned at the first significant token of the line (or EOF is hit
// mid-scan, which the caller handles via scanToken).
func (l *Lexer) scanIndentation() (token.Token, bool) {
	width := 0
	for {
		switch l.ch {
		case ' ':
			l.sawSpace = true
			width++
			l.readChar()
			continue
		case '\t':
			l.sawTab = true
			width += 4
			l.readChar()
			continue
		case '#':
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
			continue
		case '\n':
			l.readChar()
			l.newline()
			width = 0
			continue
		case 0:
			l.atLineStart = false
			return l.closeIndentation(), true
		}
		break
	}
	if l.sawTab && l.sawSpace {
		l.error("mixed tabs and spaces in indentation")
	}
	l.atLineStart = false
	top := l.indentStack[len(l.indentStack)-1]
	switch {
	case width > top:
		l.indentStack = append(l.indentStack, width)
		return token.Token{Kind: token.INDENT, Span: token.Span{Start: l.here(), End: l.here()}}, true
	case width < top:
		start := l.here()
		for len(l.indentStack) > 1 && l.indentStack[len(l.indentStack)-1] > width {
			l.indentStack = l.indentStack[:len(l.indentStack)-1]
			l.pending = append(l.pending, token.Token{Kind: token.DEDENT, Span: token.Span{Start: start, End: start}})
		}
		if l.indentStack[len(l.indentStack)-1] != width {
			l.error("unindent does not match any outer indentation level")
		}
		t := l.pending[0]
		l.pending = l.pending[1:]
		return t, true
	default:
		return token.Token{}, false
	}
}

// closeIndentation is called at EOF: pop every outstanding indentation
// level, then EOF. For input that lacks a final newline, scanToken has
// already emitted the trailing NEWLINE before this runs.
func (l *Lexer) closeIndentation() token.Token {
	pos := l.here()
	for len(l.indentStack) > 1 {
		l.indentStack = l.indentStack[:len(l.indentStack)-1]
		l.pending = append(l.pending, token.Token{Kind: token.DEDENT, Span: token.Span{Start: pos, End: pos}})
	}
	l.pending = append(l.pending, token.Token{Kind: token.EOF, Span: token.Span{Start: pos, End: pos}})
	t := l.pending[0]
	l.pending = l.pending[1:]
	return t
}

func (l *Lexer) skipInlineSpace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' {
		l.readChar()
	}
}

func (l *Lexer) scanToken() token.Token {
	l.skipInlineSpace()

	if l.ch == '#' {
		for l.ch != '\n' && l.ch != 0 {
			l.readChar()
		}
	}

	start := l.here()

	if l.ch == 0 {
		if l.bracketDepth > 0 {
			return l.closeIndentation()
		}
		// Input ended without a final newline: emit one, and let
		// scanIndentation close the open levels and emit EOF next.
		l.atLineStart = true
		return token.Token{Kind: token.NEWLINE, Span: token.Span{Start: start, End: start}}
	}

	if l.ch == '\n' {
		l.readChar()
		l.newline()
		if l.bracketDepth > 0 {
			return l.scanToken()
		}
		l.atLineStart = true
		return token.Token{Kind: token.NEWLINE, Span: token.Span{Start: start, End: l.here()}}
	}

	switch {
	case isIdentStart(l.ch):
		return l.scanIdent(start)
	case unicode.IsDigit(l.ch):
		return l.scanNumber(start)
	case l.ch == '"':
		return l.scanString(start)
	}

	return l.scanOperator(start)
}

func isIdentStart(r rune) bool { return unicode.IsLetter(r) || r == '_' }
func isIdentCont(r rune) bool  { return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' }

func (l *Lexer) scanIdent(start token.Position) token.Token {
	from := l.pos
	for isIdentCont(l.ch) {
		l.readChar()
	}
	lexeme := l.input[from:l.pos]
	kind := token.LookupIdent(lexeme)
	return token.Token{Kind: kind, Lexeme: l.arena.AllocString(lexeme), Span: token.Span{Start: start, End: l.here()}}
}

func (l *Lexer) scanNumber(start token.Position) token.Token {
	from := l.pos
	isFloat := false
	for unicode.IsDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && unicode.IsDigit(l.peekChar()) {
		isFloat = true
		l.readChar()
		for unicode.IsDigit(l.ch) {
			l.readChar()
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		isFloat = true
		l.readChar()
		if l.ch == '+' || l.ch == '-' {
			l.readChar()
		}
		for unicode.IsDigit(l.ch) {
			l.readChar()
		}
	}
	lexeme := l.input[from:l.pos]
	kind := token.INT
	if isFloat {
		kind = token.FLOAT
	}
	return token.Token{Kind: kind, Lexeme: l.arena.AllocString(lexeme), Span: token.Span{Start: start, End: l.here()}}
}

func (l *Lexer) scanString(start token.Position) token.Token {
	l.readChar() // consume opening quote
	from := l.pos
	for l.ch != '"' && l.ch != 0 && l.ch != '\n' {
		if l.ch == '\\' {
			l.readChar()
		}
		l.readChar()
	}
	lexeme := l.input[from:l.pos]
	if l.ch != '"' {
		l.error("unterminated string literal")
	} else {
		l.readChar() // consume closing quote
	}
	return token.Token{Kind: token.STRING, Lexeme: l.arena.AllocString(unescape(lexeme)), Span: token.Span{Start: start, End: l.here()}}
}

func unescape(s string) string {
	if indexByte(s, '\\') < 0 {
		return s
	}
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\\' && i+1 < len(s) {
			i++
			switch s[i] {
			case 'n':
				out = append(out, '\n')
			case 't':
				out = append(out, '\t')
			case '"':
				out = append(out, '"')
			case '\\':
				out = append(out, '\\')
			default:
				out = append(out, s[i])
			}
			continue
		}
		out = append(out, c)
	}
	return string(out)
}

func indexByte(s string, b byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return i
		}
	}
	return -1
}

type opEntry struct {
	text string
	kind token.Kind
}

// two/three-char operators, longest first within a shared prefix.
var multiCharOps = []opEntry{
	{"<<", token.SHL}, {">>", token.SHR},
	{"==", token.EQ}, {"!=", token.NEQ}, {"<=", token.LTE}, {">=", token.GTE},
	{"+=", token.PLUS_ASSIGN}, {"-=", token.MINUS_ASSIGN}, {"*=", token.STAR_ASSIGN}, {"/=", token.SLASH_ASSIGN},
	{"++", token.INC}, {"--", token.DEC},
}

var singleCharOps = map[rune]token.Kind{
	'(': token.LPAREN, ')': token.RPAREN, '[': token.LBRACKET, ']': token.RBRACKET,
	'{': token.LBRACE, '}': token.RBRACE, ',': token.COMMA, '.': token.DOT,
	':': token.COLON, ';': token.SEMICOLON,
	'+': token.PLUS, '-': token.MINUS, '*': token.STAR, '/': token.SLASH, '%': token.PERCENT,
	'&': token.AMP, '|': token.PIPE, '^': token.CARET, '~': token.TILDE,
	'<': token.LT, '>': token.GT, '=': token.ASSIGN, '?': token.QUESTION,
}

func (l *Lexer) scanOperator(start token.Position) token.Token {
	for _, op := range multiCharOps {
		if l.ch == rune(op.text[0]) && l.peekChar() == rune(op.text[1]) {
			l.readChar()
			l.readChar()
			return token.Token{Kind: op.kind, Lexeme: op.text, Span: token.Span{Start: start, End: l.here()}}
		}
	}
	ch := l.ch
	switch ch {
	case '(', '[', '{':
		l.bracketDepth++
	case ')', ']', '}':
		if l.bracketDepth > 0 {
			l.bracketDepth--
		}
	}
	if kind, ok := singleCharOps[ch]; ok {
		l.readChar()
		return token.Token{Kind: kind, Lexeme: string(ch), Span: token.Span{Start: start, End: l.here()}}
	}
	l.error("unexpected character " + string(ch))
	l.readChar()
	return token.Token{Kind: token.ILLEGAL, Lexeme: string(ch), Span: token.Span{Start: start, End: l.here()}}
}
