package cmd

import (
	"fmt"

	"github.com/lattisc/jitvm/pkg/jitvm"
	"github.com/lattisc/jitvm/pkg/token"
	"github.com/spf13/cobra"
)

var runDisasm bool

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Compile and run a source file",
	Args:  cobra.ExactArgs(1),
	RunE:  runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().BoolVar(&runDisasm, "disassemble", false, "dump the linked module before codegen")
}

func runRun(_ *cobra.Command, args []string) error {
	vm := jitvm.New(jitvm.Options{EnableLogging: runDisasm})
	vm.SetErrorCallback(func(span token.Span, msg string) {
		fmt.Printf("%s: %s\n", span.Start, msg)
	})
	vm.SetPanicCallback(func(reason, funcName string, line, col int) {
		if funcName == "" {
			fmt.Printf("panic: %s\n", reason)
			return
		}
		fmt.Printf("  at %s (%d:%d)\n", funcName, line, col)
	})

	if err := vm.LoadFile(args[0]); err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	if err := vm.Compile(); err != nil {
		return fmt.Errorf("compilation failed: %w", err)
	}
	if err := vm.Run(); err != nil {
		return fmt.Errorf("execution failed: %w", err)
	}
	return nil
}
