package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fsnotify/fsnotify"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v3"

	"github.com/wdltools/wdl/diag"
	"github.com/wdltools/wdl/workspace"
)

func watchCommand() *cli.Command {
	return &cli.Command{
		Name:      "watch",
		Usage:     "Re-analyze WDL documents under a directory on every save",
		ArgsUsage: "<dir>",
		Action:    runWatch,
	}
}

func runWatch(ctx context.Context, cmd *cli.Command) error {
	args := cmd.Args().Slice()

	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}

	ws := workspace.New()
	loader := workspace.NewLoader(ws)

	if err := loadTree(loader, dir); err != nil {
		return fmt.Errorf("watch: %w", err)
	}

	if err := ws.AnalyzeAll(ctx); err != nil {
		return fmt.Errorf("watch: %w", err)
	}

	fswatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer fswatcher.Close()

	if err := addWatchDirs(fswatcher, dir); err != nil {
		return fmt.Errorf("watch: %w", err)
	}

	model := newWatchModel(ws)

	var opts []tea.ProgramOption
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		opts = append(opts, tea.WithInput(nil))
	}

	program := tea.NewProgram(model, opts...)

	go pumpFSEvents(ctx, program, fswatcher, ws, loader)

	_, err = program.Run()

	return err
}

func loadTree(loader *workspace.Loader, dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() || !strings.HasSuffix(path, ".wdl") {
			return nil
		}

		return loader.LoadFile(path)
	})
}

func addWatchDirs(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			return w.Add(path)
		}

		return nil
	})
}

// reloadOrAdd updates an already-open document's content in place, or
// loads it (and any new imports it pulls in) for the first time.
// Loader.LoadFile is a no-op for a URI already in the workspace, so a
// changed file needs the explicit Update path to pick up new content.
func reloadOrAdd(loader *workspace.Loader, ws *workspace.Workspace, path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return
	}

	uri := "file://" + filepath.ToSlash(abs)

	if _, ok := ws.Get(uri); !ok {
		_ = loader.LoadFile(path)

		return
	}

	data, err := os.ReadFile(abs) //nolint:gosec // path comes from a watched local directory
	if err != nil {
		return
	}

	ws.Update(uri, string(data))
}

// pumpFSEvents debounces filesystem events, reloads changed documents
// into ws, re-analyzes, and pushes the result into the bubbletea program.
func pumpFSEvents(ctx context.Context, p *tea.Program, fswatcher *fsnotify.Watcher, ws *workspace.Workspace, loader *workspace.Loader) {
	const debounce = 200 * time.Millisecond

	var (
		mu      sync.Mutex
		pending = map[string]struct{}{}
		timer   *time.Timer
	)

	flush := func() {
		mu.Lock()
		paths := make([]string, 0, len(pending))
		for path := range pending {
			paths = append(paths, path)
		}

		pending = map[string]struct{}{}
		mu.Unlock()

		for _, path := range paths {
			reloadOrAdd(loader, ws, path)
		}

		p.Send(reanalyzeMsg{})

		if err := ws.AnalyzeAll(ctx); err != nil {
			p.Send(analyzeErrMsg{err: err})

			return
		}

		p.Send(refreshMsg{})
	}

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fswatcher.Events:
			if !ok {
				return
			}

			if !strings.HasSuffix(event.Name, ".wdl") {
				continue
			}

			mu.Lock()
			pending[event.Name] = struct{}{}
			mu.Unlock()

			if timer != nil {
				timer.Stop()
			}

			timer = time.AfterFunc(debounce, flush)

		case _, ok := <-fswatcher.Errors:
			if !ok {
				return
			}
		}
	}
}

// --- bubbletea model ---

type reanalyzeMsg struct{}
type refreshMsg struct{}
type analyzeErrMsg struct{ err error }

type watchModel struct {
	ws       *workspace.Workspace
	spinner  spinner.Model
	busy     bool
	lastErr  error
	quitting bool
}

func newWatchModel(ws *workspace.Workspace) watchModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return watchModel{ws: ws, spinner: sp}
}

func (m watchModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true

			return m, tea.Quit
		}
	case reanalyzeMsg:
		m.busy = true

		return m, nil
	case refreshMsg:
		m.busy = false
		m.lastErr = nil

		return m, nil
	case analyzeErrMsg:
		m.busy = false
		m.lastErr = msg.err

		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	}

	return m, nil
}

func (m watchModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	header := lipgloss.NewStyle().Bold(true).Render("wdlc watch")
	if m.busy {
		fmt.Fprintf(&b, "%s %s analyzing...\n\n", header, m.spinner.View())
	} else {
		fmt.Fprintf(&b, "%s\n\n", header)
	}

	if m.lastErr != nil {
		fmt.Fprintf(&b, "%s\n\n", lipgloss.NewStyle().Foreground(colorError).Render(m.lastErr.Error()))
	}

	uris := m.ws.URIs()
	sort.Strings(uris)

	for _, uri := range uris {
		doc, ok := m.ws.Get(uri)
		if !ok {
			continue
		}

		path := strings.TrimPrefix(uri, "file://")
		b.WriteString(renderDocLine(path, doc))
	}

	b.WriteString("\npress q to quit\n")

	return b.String()
}

func renderDocLine(path string, doc *workspace.Document) string {
	errCount, warnCount := countSeverities(doc.Diagnostics)

	style := lipgloss.NewStyle().Foreground(colorOK)
	symbol := "✓"

	switch {
	case doc.State == workspace.StateFailed || errCount > 0:
		style = lipgloss.NewStyle().Foreground(colorError)
		symbol = "✗"
	case warnCount > 0:
		style = lipgloss.NewStyle().Foreground(colorWarn)
		symbol = "⚠"
	}

	return fmt.Sprintf("  %s %s  %s\n", style.Render(symbol), path, style.Render(summaryText(doc.State, errCount, warnCount)))
}

func summaryText(state workspace.State, errCount, warnCount int) string {
	switch {
	case errCount > 0:
		return fmt.Sprintf("%d error(s)", errCount)
	case warnCount > 0:
		return fmt.Sprintf("%d warning(s)", warnCount)
	default:
		return state.String()
	}
}

func countSeverities(diags []diag.Diagnostic) (errs, warns int) {
	for _, d := range diags {
		switch d.Severity {
		case diag.SeverityError:
			errs++
		case diag.SeverityWarning:
			warns++
		}
	}

	return
}

