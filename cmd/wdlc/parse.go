package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/wdltools/wdl/diag"
	"github.com/wdltools/wdl/position"
	"github.com/wdltools/wdl/syntax"
)

func parseCommand() *cli.Command {
	return &cli.Command{
		Name:      "parse",
		Usage:     "Parse a WDL document and report syntax diagnostics",
		ArgsUsage: "<file>",
		Action:    runParse,
	}
}

func runParse(_ context.Context, cmd *cli.Command) error {
	args := cmd.Args().Slice()
	if len(args) != 1 {
		return cli.Exit("parse: expected exactly one file", 2)
	}

	path := args[0]

	data, err := os.ReadFile(path) //#nosec G304 -- path comes from CLI argument
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}

	result := syntax.Parse("file://"+path, string(data))

	idx := position.NewLineIndex(string(data))
	renderDiagnostics(os.Stdout, path, idx, result.Diags)

	for _, d := range result.Diags {
		if d.Severity == diag.SeverityError {
			return cli.Exit("", 1)
		}
	}

	return nil
}
