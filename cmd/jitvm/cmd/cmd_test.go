package cmd

import (
	"os"
	"path/filepath"
	"testing"
)

// writeTempSource writes src to a temp file and returns its path, grounded
// on go-dws's cmd/dwscript CLI tests that round-trip through real files on
// disk rather than faking the filesystem.
func writeTempSource(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prog.jit")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("write temp source: %v", err)
	}
	return path
}

func TestRunLexTokenizesInlineExpression(t *testing.T) {
	lexEval = "1 + 2"
	lexShowSpan = false
	defer func() { lexEval = "" }()

	if err := runLex(nil, nil); err != nil {
		t.Fatalf("runLex: %v", err)
	}
}

func TestRunLexRequiresFileOrEval(t *testing.T) {
	lexEval = ""
	if err := runLex(nil, nil); err == nil {
		t.Fatal("expected an error with neither a file nor -e")
	}
}

func TestRunParseInlineExpression(t *testing.T) {
	parseEval = "x: int = 1\n"
	defer func() { parseEval = "" }()

	if err := runParse(nil, nil); err != nil {
		t.Fatalf("runParse: %v", err)
	}
}

func TestRunParseReportsSyntaxErrors(t *testing.T) {
	parseEval = "x: int = )\n"
	defer func() { parseEval = "" }()

	if err := runParse(nil, nil); err == nil {
		t.Fatal("expected a parse error for an incomplete expression")
	}
}

func TestRunCompileFromFile(t *testing.T) {
	path := writeTempSource(t, "add: (a: int, b: int) -> int:\n    return a + b\n")
	compileDisasm = false
	compileShow = ""

	if err := runCompile(nil, []string{path}); err != nil {
		t.Fatalf("runCompile: %v", err)
	}
}

func TestRunCompileWithShowQuery(t *testing.T) {
	path := writeTempSource(t, "add: (a: int, b: int) -> int:\n    return a + b\n")
	compileDisasm = false
	compileShow = "items"
	defer func() { compileShow = "" }()

	if err := runCompile(nil, []string{path}); err != nil {
		t.Fatalf("runCompile with --show: %v", err)
	}
}

func TestRunCompileFailsOnMissingFile(t *testing.T) {
	compileShow = ""
	if err := runCompile(nil, []string{filepath.Join(t.TempDir(), "missing.jit")}); err == nil {
		t.Fatal("expected an error for a nonexistent file")
	}
}

func TestRunRunExecutesProgram(t *testing.T) {
	path := writeTempSource(t, "total: int = 1 + 2\n")
	runDisasm = false

	if err := runRun(nil, []string{path}); err != nil {
		t.Fatalf("runRun: %v", err)
	}
}

func TestRunRunReportsCompileFailure(t *testing.T) {
	path := writeTempSource(t, "x: int = y\n")
	runDisasm = false

	if err := runRun(nil, []string{path}); err == nil {
		t.Fatal("expected an error compiling a program with an undefined name")
	}
}
