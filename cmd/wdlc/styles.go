package main

import "github.com/charmbracelet/lipgloss"

var (
	colorError = lipgloss.Color("#ef4444") // red-500
	colorWarn  = lipgloss.Color("#eab308") // yellow-500
	colorNote  = lipgloss.Color("#06b6d4") // cyan-500
	colorDim   = lipgloss.Color("#6b7280") // gray-500
	colorPath  = lipgloss.Color("#3b82f6") // blue-500
	colorOK    = lipgloss.Color("#10b981") // green-500
)

// Styles holds the lipgloss styles for rendering diagnostics and the
// watch-mode dashboard.
type Styles struct {
	Error lipgloss.Style
	Warn  lipgloss.Style
	Note  lipgloss.Style
	Dim   lipgloss.Style
	Path  lipgloss.Style
	Bold  lipgloss.Style
	OK    lipgloss.Style

	SymbolError string
	SymbolWarn  string
	SymbolNote  string
	SymbolOK    string
}

// DefaultStyles returns the default CLI styles.
func DefaultStyles() *Styles {
	return &Styles{
		Error: lipgloss.NewStyle().Foreground(colorError).Bold(true),
		Warn:  lipgloss.NewStyle().Foreground(colorWarn).Bold(true),
		Note:  lipgloss.NewStyle().Foreground(colorNote),
		Dim:   lipgloss.NewStyle().Foreground(colorDim),
		Path:  lipgloss.NewStyle().Foreground(colorPath),
		Bold:  lipgloss.NewStyle().Bold(true),
		OK:    lipgloss.NewStyle().Foreground(colorOK).Bold(true),

		SymbolError: "✗",
		SymbolWarn:  "⚠",
		SymbolNote:  "ℹ",
		SymbolOK:    "✓",
	}
}

// PlainStyles returns styles with no ANSI output, used when stdout isn't
// a TTY (redirected to a file, piped into another tool).
func PlainStyles() *Styles {
	plain := lipgloss.NewStyle()

	return &Styles{
		Error: plain, Warn: plain, Note: plain, Dim: plain, Path: plain, Bold: plain, OK: plain,
		SymbolError: "ERROR", SymbolWarn: "WARN", SymbolNote: "NOTE", SymbolOK: "OK",
	}
}
