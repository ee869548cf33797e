package semantic

import (
	"fmt"
	"testing"

	"github.com/lattisc/jitvm/internal/parser"
	"github.com/lattisc/jitvm/pkg/arena"
	"github.com/lattisc/jitvm/pkg/token"
)

// collectedErrors implements both lexer.ErrorSink, parser.ErrorSink, and
// semantic.ErrorSink so a single sink can ride along the whole pipeline in
// tests, mirroring how cmd/jitvm wires its diagnostics.
type collectedErrors struct {
	msgs []string
}

func (c *collectedErrors) LexError(span token.Span, message string)      { c.add(span, message) }
func (c *collectedErrors) ParseError(span token.Span, message string)    { c.add(span, message) }
func (c *collectedErrors) SemanticError(span token.Span, message string) { c.add(span, message) }
func (c *collectedErrors) add(span token.Span, message string) {
	c.msgs = append(c.msgs, fmt.Sprintf("%d:%d: %s", span.Start.Line, span.Start.Col, message))
}

func analyzeSource(t *testing.T, src string) (*Context, *collectedErrors) {
	t.Helper()
	a := arena.New(4096)
	errs := &collectedErrors{}
	p := parser.New([]byte(src), a, errs, errs)
	prog := p.Parse()
	ctx, _ := Analyze(prog, errs)
	return ctx, errs
}

func TestAnalyzeIntegerLiteralGlobal(t *testing.T) {
	_, errs := analyzeSource(t, "x: int = 42\n")
	if len(errs.msgs) != 0 {
		t.Fatalf("unexpected errors: %v", errs.msgs)
	}
}

func TestAnalyzeImplicitIntToFloatWidening(t *testing.T) {
	_, errs := analyzeSource(t, "x: float = 1\n")
	if len(errs.msgs) != 0 {
		t.Fatalf("unexpected errors: %v", errs.msgs)
	}
}

func TestAnalyzeTypeMismatchReported(t *testing.T) {
	_, errs := analyzeSource(t, "x: int = \"hi\"\n")
	if len(errs.msgs) == 0 {
		t.Fatalf("expected a type mismatch error")
	}
}

func TestAnalyzeUndefinedNameReported(t *testing.T) {
	_, errs := analyzeSource(t, "x: int = y\n")
	if len(errs.msgs) == 0 {
		t.Fatalf("expected an undefined-name error")
	}
}

func TestAnalyzeFunctionReturnTypeChecked(t *testing.T) {
	src := "add: (a: int, b: int) -> int:\n    return a + b\n"
	_, errs := analyzeSource(t, src)
	if len(errs.msgs) != 0 {
		t.Fatalf("unexpected errors: %v", errs.msgs)
	}
}

func TestAnalyzeMissingReturnReported(t *testing.T) {
	src := "add: (a: int, b: int) -> int:\n    c: int = a + b\n"
	_, errs := analyzeSource(t, src)
	if len(errs.msgs) == 0 {
		t.Fatalf("expected a missing-return error")
	}
}

func TestAnalyzeIfElseBothReturnSatisfiesReturnCheck(t *testing.T) {
	src := "pick: (a: int) -> int:\n    if a > 0:\n        return a\n    else:\n        return -a\n"
	_, errs := analyzeSource(t, src)
	if len(errs.msgs) != 0 {
		t.Fatalf("unexpected errors: %v", errs.msgs)
	}
}

func TestAnalyzeStringConcatWithInt(t *testing.T) {
	ctx, errs := analyzeSource(t, "s: string = \"n=\" + 1\n")
	if len(errs.msgs) != 0 {
		t.Fatalf("unexpected errors: %v", errs.msgs)
	}
	_ = ctx
}

func TestAnalyzeArrayLiteralElementUnification(t *testing.T) {
	_, errs := analyzeSource(t, "[1, 2.5, 3]\n")
	if len(errs.msgs) != 0 {
		t.Fatalf("unexpected errors: %v", errs.msgs)
	}
}

func TestAnalyzeClassFieldAccess(t *testing.T) {
	src := "class Point:\n    x: int\n    y: int\n" +
		"sumXY: (p: Point) -> int:\n    return p.x + p.y\n"
	_, errs := analyzeSource(t, src)
	if len(errs.msgs) != 0 {
		t.Fatalf("unexpected errors: %v", errs.msgs)
	}
}

func TestAnalyzeClassFieldLayout(t *testing.T) {
	src := "class Point:\n    x: int\n    y: float\n"
	ctx, errs := analyzeSource(t, src)
	if len(errs.msgs) != 0 {
		t.Fatalf("unexpected errors: %v", errs.msgs)
	}
	cls, ok := ctx.Env.LookupClass("Point")
	if !ok {
		t.Fatalf("class Point not registered")
	}
	if cls.Fields[0].Offset != 0 || cls.Fields[1].Offset != 4 {
		t.Fatalf("unexpected field offsets: %d, %d", cls.Fields[0].Offset, cls.Fields[1].Offset)
	}
	if cls.Size != 8 {
		t.Fatalf("expected size 8, got %d", cls.Size)
	}
}

func TestAnalyzeOverloadResolutionPrefersExactMatch(t *testing.T) {
	src := "f: (a: int) -> int:\n    return a\n" +
		"f: (a: float) -> int:\n    return 0\n" +
		"r: int = f(1)\n"
	_, errs := analyzeSource(t, src)
	if len(errs.msgs) != 0 {
		t.Fatalf("unexpected errors: %v", errs.msgs)
	}
}

func TestAnalyzeNoMatchingOverloadReported(t *testing.T) {
	src := "f: (a: int) -> int:\n    return a\n" +
		"r: int = f(\"x\")\n"
	_, errs := analyzeSource(t, src)
	if len(errs.msgs) == 0 {
		t.Fatalf("expected a no-matching-overload error")
	}
}

func TestAnalyzeCastIntToString(t *testing.T) {
	_, errs := analyzeSource(t, "s: string = 1 as string\n")
	if len(errs.msgs) != 0 {
		t.Fatalf("unexpected errors: %v", errs.msgs)
	}
}

func TestAnalyzeIsTestRequiresAny(t *testing.T) {
	_, errs := analyzeSource(t, "b: bool = 1 is int\n")
	if len(errs.msgs) == 0 {
		t.Fatalf("expected an is-test operand error")
	}
}

func TestAnalyzeWhileLoopCondMustBeBool(t *testing.T) {
	_, errs := analyzeSource(t, "f: () -> void:\n    while 1:\n        break\n")
	if len(errs.msgs) == 0 {
		t.Fatalf("expected a non-bool condition error")
	}
}
