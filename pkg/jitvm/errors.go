package jitvm

import (
	"fmt"
	"strings"

	"github.com/lattisc/jitvm/pkg/token"
)

// CompilerError is a single lex/parse/semantic diagnostic with source
// context, grounded on go-dws's internal/errors.CompilerError: a span
// (rather than a single position, since this frontend already tracks
// half-open spans throughout), the offending source line, and a
// caret-underlined Format renderer for terminal output.
type CompilerError struct {
	Span    token.Span
	Message string
	Source  string
	File    string
}

func (e *CompilerError) Error() string { return e.Format(false) }

// Format renders a line/column header, the offending source line, and a
// caret indicator underneath the span's start column.
func (e *CompilerError) Format(color bool) string {
	var sb strings.Builder
	if e.File != "" {
		fmt.Fprintf(&sb, "%s:%d:%d: %s\n", e.File, e.Span.Start.Line, e.Span.Start.Col, e.Message)
	} else {
		fmt.Fprintf(&sb, "%d:%d: %s\n", e.Span.Start.Line, e.Span.Start.Col, e.Message)
	}
	line := sourceLine(e.Source, e.Span.Start.Line)
	if line == "" {
		return sb.String()
	}
	prefix := fmt.Sprintf("%4d | ", e.Span.Start.Line)
	sb.WriteString(prefix)
	sb.WriteString(line)
	sb.WriteByte('\n')
	sb.WriteString(strings.Repeat(" ", len(prefix)+e.Span.Start.Col-1))
	if color {
		sb.WriteString("\033[1;31m^\033[0m")
	} else {
		sb.WriteByte('^')
	}
	return sb.String()
}

func sourceLine(src string, line int) string {
	if line <= 0 {
		return ""
	}
	lines := strings.Split(src, "\n")
	if line > len(lines) {
		return ""
	}
	return lines[line-1]
}
