// Command eartrain is the adaptive ear-training scheduler CLI.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/eartrain/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
