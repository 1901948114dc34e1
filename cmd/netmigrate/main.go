// Package main provides the CLI entrypoint for netmigrate.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/netmigrate/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		// Commands with formatted output already reported the error.
		if _, ok := err.(*cli.ExitError); !ok {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
