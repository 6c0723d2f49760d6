// Command strand renders templates with list directives and runs render
// scenarios against golden traces.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/strand/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
