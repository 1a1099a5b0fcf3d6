package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/wdltools/wdl/diag"
	"github.com/wdltools/wdl/position"
)

func stylesFor(w io.Writer) *Styles {
	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		return DefaultStyles()
	}

	return PlainStyles()
}

// renderDiagnostics prints one line per diagnostic as
// "path:line:col: SEVERITY [code] message", colored by severity.
func renderDiagnostics(w io.Writer, path string, idx *position.LineIndex, diags []diag.Diagnostic) {
	styles := stylesFor(w)

	for _, d := range diags {
		sym, style := severitySymbol(styles, d.Severity)

		start := idx.Position(d.Span.Start.Offset)
		loc := styles.Path.Render(fmt.Sprintf("%s:%d:%d", path, start.Line, start.Column))

		fmt.Fprintf(w, "%s %s %s [%s] %s\n", loc, style.Render(sym), style.Render(d.Severity.String()), d.Code, d.Message)

		for _, rel := range d.Related {
			relStart := idx.Position(rel.Span.Start.Offset)
			fmt.Fprintf(w, "    %s %s\n",
				styles.Dim.Render(fmt.Sprintf("%s:%d:%d:", path, relStart.Line, relStart.Column)), rel.Label)
		}
	}
}

func severitySymbol(s *Styles, sev diag.Severity) (string, lipgloss.Style) {
	switch sev {
	case diag.SeverityError:
		return s.SymbolError, s.Error
	case diag.SeverityWarning:
		return s.SymbolWarn, s.Warn
	default:
		return s.SymbolNote, s.Note
	}
}
