// Package main provides the chimera CLI tool: a parser, formatter, and test
// runner for ChimeraScript test files.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

var version = "dev"

func main() {
	app := &cli.Command{
		Name:    "chimera",
		Version: version,
		Usage:   "ChimeraScript test runner and formatter",
		Commands: []*cli.Command{
			runCommand(),
			fmtCommand(),
		},
	}

	err := app.Run(context.Background(), os.Args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
