// Package main provides the wdlc CLI tool.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

var appVersion = "dev"

func main() {
	app := &cli.Command{
		Name:    "wdlc",
		Version: appVersion,
		Usage:   "Workflow Description Language toolchain",
		Commands: []*cli.Command{
			validateCommand(),
			parseCommand(),
			watchCommand(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
