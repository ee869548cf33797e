package cmd

import (
	"fmt"
	"os"

	"github.com/lattisc/jitvm/internal/lexer"
	"github.com/lattisc/jitvm/pkg/arena"
	"github.com/lattisc/jitvm/pkg/token"
	"github.com/spf13/cobra"
)

var (
	lexEval     string
	lexShowSpan bool
)

var lexCmd = &cobra.Command{
	Use:   "lex [file]",
	Short: "Tokenize a source file or expression",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runLex,
}

func init() {
	rootCmd.AddCommand(lexCmd)
	lexCmd.Flags().StringVarP(&lexEval, "eval", "e", "", "tokenize inline source instead of reading a file")
	lexCmd.Flags().BoolVar(&lexShowSpan, "show-span", false, "show each token's source span")
}

type lexErrSink struct{}

func (lexErrSink) LexError(span token.Span, msg string) {
	fmt.Fprintf(os.Stderr, "lex error at %s: %s\n", span.Start, msg)
}

func runLex(_ *cobra.Command, args []string) error {
	src, err := readInput(lexEval, args)
	if err != nil {
		return err
	}
	a := arena.New(0)
	l := lexer.New(src, a, lexErrSink{})
	for {
		t := l.NextToken()
		if lexShowSpan {
			fmt.Printf("%-12s %-20q %s\n", t.Kind, t.Lexeme, t.Span.Start)
		} else {
			fmt.Printf("%-12s %q\n", t.Kind, t.Lexeme)
		}
		if t.Kind == token.EOF {
			break
		}
	}
	return nil
}

func readInput(eval string, args []string) ([]byte, error) {
	if eval != "" {
		return []byte(eval), nil
	}
	if len(args) == 1 {
		return os.ReadFile(args[0])
	}
	return nil, fmt.Errorf("either provide a file path or use -e for inline source")
}
