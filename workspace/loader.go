package workspace

import (
	"os"
	"path/filepath"
	"strings"
)

// Loader populates a Workspace from disk, resolving relative import paths
// against the importing file's directory the way a module loader
// resolves relative imports against the importing module's path.
type Loader struct {
	ws *Workspace
}

// NewLoader creates a Loader that opens documents into ws.
func NewLoader(ws *Workspace) *Loader {
	return &Loader{ws: ws}
}

// LoadFile reads path and every transitive import reachable from it that
// resolves to a local filesystem path, opening each into the workspace.
// http(s) imports are left unopened; a document referencing one gets an
// unresolved-import diagnostic once analysis runs, since fetching remote
// imports is a network concern outside this package.
func (l *Loader) LoadFile(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return &LoadError{URI: path, Cause: err}
	}

	return l.loadAbsolute(abs, "")
}

func (l *Loader) loadAbsolute(abs, importedFrom string) error {
	uri := "file://" + filepath.ToSlash(abs)
	if _, ok := l.ws.Get(uri); ok {
		return nil
	}

	data, err := os.ReadFile(abs) //nolint:gosec // path is resolved from a trusted CLI/LSP root, not raw user input
	if err != nil {
		return &LoadError{URI: uri, ImportedFrom: importedFrom, Cause: err}
	}

	l.ws.Open(uri, string(data))

	if err := l.ws.parseOnly(uri); err != nil {
		return err
	}

	d, _ := l.ws.Get(uri)

	for _, imp := range d.Imports {
		if isRemoteURI(imp) {
			continue
		}

		depAbs := filepath.FromSlash(strings.TrimPrefix(imp, "file://"))

		if err := l.loadAbsolute(depAbs, abs); err != nil {
			return err
		}
	}

	return nil
}

func isRemoteURI(s string) bool {
	return len(s) >= 7 && (s[:7] == "http://" || (len(s) >= 8 && s[:8] == "https://"))
}

// parseOnly runs just the parse step for uri synchronously, used by the
// loader to discover imports before the full AnalyzeAll pass runs.
func (w *Workspace) parseOnly(uri string) error {
	sh := w.shardFor(uri)

	sh.mu.Lock()
	d, ok := sh.docs[uri]
	if !ok {
		sh.mu.Unlock()

		return ErrDocumentNotFound
	}
	source := d.Source
	sh.mu.Unlock()

	parseOneDocument(d, source)

	sh.mu.Lock()
	sh.docs[uri] = d
	sh.mu.Unlock()

	return nil
}
