package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/wdltools/wdl/diag"
	"github.com/wdltools/wdl/position"
	"github.com/wdltools/wdl/workspace"
)

// reportWorkspace renders every document's diagnostics to stdout and
// returns a cli.ExitCoder with exit code 1 if any document has an error
// severity diagnostic or failed to analyze.
func reportWorkspace(ws *workspace.Workspace, _ []string) error {
	hasError := false

	for _, uri := range ws.URIs() {
		doc, ok := ws.Get(uri)
		if !ok {
			continue
		}

		path := strings.TrimPrefix(uri, "file://")
		idx := position.NewLineIndex(doc.Source)

		renderDiagnostics(os.Stdout, path, idx, doc.Diagnostics)

		for _, d := range doc.Diagnostics {
			if d.Severity == diag.SeverityError {
				hasError = true
			}
		}

		if doc.Err != nil {
			hasError = true
		}
	}

	if cycles := ws.Cycles(); len(cycles) > 0 {
		hasError = true
		styles := stylesFor(os.Stdout)

		for _, cycle := range cycles {
			fmt.Fprintf(os.Stdout, "%s %s\n", styles.Error.Render("import cycle:"), strings.Join(cycle, " -> "))
		}
	}

	if hasError {
		return cli.Exit("", 1)
	}

	return nil
}
