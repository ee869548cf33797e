package cmd

import (
	"fmt"
	"os"

	"github.com/lattisc/jitvm/internal/ast"
	"github.com/lattisc/jitvm/internal/parser"
	"github.com/lattisc/jitvm/pkg/arena"
	"github.com/lattisc/jitvm/pkg/token"
	"github.com/spf13/cobra"
)

var parseEval string

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse a source file or expression and print its AST",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().StringVarP(&parseEval, "eval", "e", "", "parse inline source instead of reading a file")
}

type collectingSink struct{ errs []string }

func (s *collectingSink) LexError(span token.Span, msg string) {
	s.errs = append(s.errs, fmt.Sprintf("%s: %s", span.Start, msg))
}
func (s *collectingSink) ParseError(span token.Span, msg string) {
	s.errs = append(s.errs, fmt.Sprintf("%s: %s", span.Start, msg))
}

func runParse(_ *cobra.Command, args []string) error {
	src, err := readInput(parseEval, args)
	if err != nil {
		return err
	}
	a := arena.New(0)
	sink := &collectingSink{}
	p := parser.New(src, a, sink, sink)
	prog := p.Parse()
	if len(sink.errs) > 0 {
		for _, e := range sink.errs {
			fmt.Fprintln(os.Stderr, e)
		}
		return fmt.Errorf("parsing failed with %d error(s)", len(sink.errs))
	}
	fmt.Print(ast.Print(prog))
	return nil
}
