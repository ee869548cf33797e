package cmd

import (
	"fmt"

	"github.com/lattisc/jitvm/pkg/jitvm"
	"github.com/lattisc/jitvm/pkg/token"
	"github.com/spf13/cobra"
)

var (
	compileDisasm bool
	compileShow   string
)

var compileCmd = &cobra.Command{
	Use:   "compile [file]",
	Short: "Compile a source file and report success or failure",
	Args:  cobra.ExactArgs(1),
	RunE:  runCompile,
}

func init() {
	rootCmd.AddCommand(compileCmd)
	compileCmd.Flags().BoolVar(&compileDisasm, "disassemble", false, "dump the linked module before codegen")
	compileCmd.Flags().StringVar(&compileShow, "show", "", "print a gjson path query against the compiled module's JSON dump")
}

func runCompile(_ *cobra.Command, args []string) error {
	vm := jitvm.New(jitvm.Options{EnableLogging: compileDisasm})
	vm.SetErrorCallback(func(span token.Span, msg string) {
		fmt.Printf("%s: %s\n", span.Start, msg)
	})
	if err := vm.LoadFile(args[0]); err != nil {
		return err
	}
	if err := vm.Compile(); err != nil {
		return err
	}
	if compileShow != "" {
		result, err := vm.QueryModule(compileShow)
		if err != nil {
			return err
		}
		fmt.Println(result)
	}
	fmt.Println("compiled ok")
	return nil
}
