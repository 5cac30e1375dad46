// Command uncalc is an integer arithmetic calculator.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/uncalc/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "uncalc:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
