// Command jitvm is a thin CLI over pkg/jitvm, mirroring go-dws's
// cmd/dwscript entry point. It exists only to exercise the embedding API
// end to end; spec.md §1 puts the CLI itself out of scope.
package main

import (
	"os"

	"github.com/lattisc/jitvm/cmd/jitvm/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
