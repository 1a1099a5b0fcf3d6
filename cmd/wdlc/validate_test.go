package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

const validDoc = `version 1.2

task greet {
  input {
    String name
  }
  command <<<
    echo "hello ~{name}"
  >>>
  output {
    String greeting = read_string(stdout())
  }
}
`

func TestRunValidateSucceedsOnValidDocument(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "greet.wdl")
	require.NoError(t, os.WriteFile(path, []byte(validDoc), 0o600))

	app := &cli.Command{
		Name:     "wdlc",
		Commands: []*cli.Command{validateCommand()},
	}

	err := app.Run(context.Background(), []string{"wdlc", "validate", path})
	require.NoError(t, err)
}

func TestRunValidateRequiresArgs(t *testing.T) {
	t.Parallel()

	app := &cli.Command{
		Name:     "wdlc",
		Commands: []*cli.Command{validateCommand()},
	}

	err := app.Run(context.Background(), []string{"wdlc", "validate"})
	require.Error(t, err)
}
