package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/wdltools/wdl/workspace"
)

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "Parse, resolve, and type-check WDL documents",
		ArgsUsage: "[files...]",
		Action:    runValidate,
	}
}

func runValidate(ctx context.Context, cmd *cli.Command) error {
	paths := cmd.Args().Slice()
	if len(paths) == 0 {
		return cli.Exit("validate: no files given", 2)
	}

	ws := workspace.New()
	loader := workspace.NewLoader(ws)

	for _, p := range paths {
		if err := loader.LoadFile(p); err != nil {
			return fmt.Errorf("validate: %s: %w", p, err)
		}
	}

	if err := ws.AnalyzeAll(ctx); err != nil {
		return fmt.Errorf("validate: %w", err)
	}

	return reportWorkspace(ws, paths)
}
