package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	Version = "0.1.0-dev"
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "jitvm",
	Short: "jitvm compiler and runtime CLI",
	Long: `jitvm is a closure-based JIT compiler core for a small
indentation-structured, statically-typed scripting language.

This command wraps pkg/jitvm's embedding API for ad hoc script execution,
lexer/parser debugging, and module inspection.`,
	Version: Version,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func exitWithError(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+msg+"\n", args...)
	os.Exit(1)
}
