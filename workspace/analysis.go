package workspace

import (
	"context"
	"fmt"
	"hash/fnv"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/wdltools/wdl/ast"
	"github.com/wdltools/wdl/diag"
	"github.com/wdltools/wdl/scope"
	"github.com/wdltools/wdl/syntax"
	"github.com/wdltools/wdl/validate"
	"github.com/wdltools/wdl/version"
)

// AnalyzeAll runs parse and analysis over every document currently in
// StatePending, respecting import ordering: a document's analysis only
// starts once every document it imports has finished analysis. Parsing
// runs concurrently across all pending documents; analysis handles one
// SCC at a time, so documents in different SCCs are never analyzed
// concurrently, while members of one import cycle (one SCC) run
// concurrently against each other since no ordering between them is
// well-defined.
func (w *Workspace) AnalyzeAll(ctx context.Context) error {
	pending := w.pendingURIs()
	if len(pending) == 0 {
		return nil
	}

	if err := w.parseBatch(ctx, pending); err != nil {
		return err
	}

	w.rebuildEdges(pending)

	edges := w.snapshotEdges()

	cycles := map[string]bool{}

	for _, comp := range tarjan(edges) {
		if isCycle(comp, edges) {
			for _, u := range comp {
				cycles[u] = true
			}
		}
	}

	for _, comp := range tarjan(edges) {
		if err := w.analyzeComponent(ctx, comp, cycles); err != nil {
			return err
		}
	}

	return nil
}

func (w *Workspace) pendingURIs() []string {
	var out []string

	for _, sh := range w.shards {
		sh.mu.RLock()

		for uri, d := range sh.docs {
			if d.State == StatePending {
				out = append(out, uri)
			}
		}

		sh.mu.RUnlock()
	}

	sort.Strings(out)

	return out
}

func (w *Workspace) parseBatch(ctx context.Context, uris []string) error {
	g, _ := errgroup.WithContext(ctx)

	for _, uri := range uris {
		uri := uri

		g.Go(func() error {
			sh := w.shardFor(uri)

			sh.mu.Lock()
			d, ok := sh.docs[uri]
			if !ok {
				sh.mu.Unlock()

				return nil
			}
			d.State = StateParsing
			source := d.Source
			sh.mu.Unlock()

			parseOneDocument(d, source)

			sh.mu.Lock()
			sh.docs[uri] = d
			sh.mu.Unlock()

			return nil
		})
	}

	return g.Wait()
}

func parseOneDocument(d *Document, source string) {
	res := syntax.Parse(d.URI, source)
	d.Syntax = res
	d.AST = ast.WrapDocument(res.Root)
	d.Diagnostics = append([]diag.Diagnostic{}, res.Diags...)

	raw, ok := d.AST.Version()
	if !ok {
		d.State = StateFailed
		d.Err = fmt.Errorf("wdl/workspace: %s: missing version statement", d.URI)

		return
	}

	dialect, err := version.Resolve(raw)
	if err != nil {
		d.State = StateFailed
		d.Err = err

		return
	}

	d.Dialect = dialect

	imports := d.AST.Imports()
	d.Imports = make([]string, 0, len(imports))

	for _, imp := range imports {
		d.Imports = append(d.Imports, ResolveImportURI(d.URI, imp.URI()))
	}

	d.State = StateParsed
}

func (w *Workspace) rebuildEdges(uris []string) {
	for _, uri := range uris {
		d, ok := w.Get(uri)
		if !ok || d.State != StateParsed {
			continue
		}

		w.setEdges(uri, d.Imports)
	}
}

func (w *Workspace) analyzeComponent(ctx context.Context, comp []string, cycles map[string]bool) error {
	g, _ := errgroup.WithContext(ctx)

	for _, uri := range comp {
		uri := uri

		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			sh := w.shardFor(uri)

			sh.mu.Lock()
			d, ok := sh.docs[uri]
			if !ok || d.State != StateParsed {
				sh.mu.Unlock()

				return nil
			}
			d.State = StateAnalyzing
			sh.mu.Unlock()

			analyzeOneDocument(w, d)

			if cycles[uri] {
				d.Diagnostics = append(d.Diagnostics, diag.Diagnostic{
					Code:     "workspace/import-cycle",
					Severity: diag.SeverityError,
					Message:  (&CycleError{Members: comp}).Error(),
				})
			}

			sh.mu.Lock()
			sh.docs[uri] = d
			sh.mu.Unlock()

			return nil
		})
	}

	return g.Wait()
}

func analyzeOneDocument(w *Workspace, d *Document) {
	resolved := scope.ResolveDocument(d.AST)
	d.Scope = resolved
	d.Diagnostics = append(d.Diagnostics, resolved.Diags...)

	if d.Dialect != nil {
		d.Diagnostics = append(d.Diagnostics, validate.Run(d.AST, d.Dialect)...)
	}

	d.Diagnostics = append(d.Diagnostics, unresolvedImportDiagnostics(w, d)...)

	d.Signature = signatureOf(resolved)
	d.State = StateAnalyzed
}

// unresolvedImportDiagnostics reports one diagnostic per import statement
// whose target never became an opened document: an http(s) URI (never
// fetched, per the loader's doc comment) or a local path the loader never
// reached. One diagnostic per statement, not per reference, since the
// whole imported namespace collapses to a single error placeholder.
func unresolvedImportDiagnostics(w *Workspace, d *Document) []diag.Diagnostic {
	imports := d.AST.Imports()
	if len(imports) != len(d.Imports) {
		return nil
	}

	var diags []diag.Diagnostic

	for i, imp := range imports {
		uri := d.Imports[i]

		if isRemoteURI(uri) {
			diags = append(diags, diag.Diagnostic{
				Code:     "workspace/unresolved-import",
				Severity: diag.SeverityError,
				Message:  fmt.Sprintf("unresolved import %q: remote imports are not fetched", imp.URI()),
			})

			continue
		}

		if _, ok := w.Get(uri); !ok {
			diags = append(diags, diag.Diagnostic{
				Code:     "workspace/unresolved-import",
				Severity: diag.SeverityError,
				Message:  fmt.Sprintf("unresolved import %q: document was never opened", imp.URI()),
			})
		}
	}

	return diags
}

// signatureOf digests the exported symbol shapes of a resolved document:
// every document-level name, plus each task/workflow's output names and
// rendered types, sorted for determinism. The result is stored on
// Document.Signature; Invalidate does not compare it, so every importer
// of an edited document is re-analyzed even when the exported shape is
// unchanged.
func signatureOf(resolved *scope.Document) string {
	var names []string

	for _, n := range resolved.Root.Names() {
		b, _, _ := resolved.Root.Resolve(n)
		names = append(names, n+":"+b.Type.String())
	}

	for taskName, t := range resolved.Tasks {
		var outNames []string
		for n, ty := range t.Outputs {
			outNames = append(outNames, n+"="+ty.String())
		}

		sort.Strings(outNames)
		names = append(names, "task "+taskName+"("+joinComma(outNames)+")")
	}

	if resolved.Workflow != nil {
		var outNames []string
		for n, ty := range resolved.Workflow.Outputs {
			outNames = append(outNames, n+"="+ty.String())
		}

		sort.Strings(outNames)
		names = append(names, "workflow "+resolved.Workflow.Name+"("+joinComma(outNames)+")")
	}

	sort.Strings(names)

	h := fnv.New64a()
	for _, n := range names {
		_, _ = h.Write([]byte(n))
		_, _ = h.Write([]byte{0})
	}

	return fmt.Sprintf("%x", h.Sum64())
}

func joinComma(ss []string) string {
	out := ""

	for i, s := range ss {
		if i > 0 {
			out += ","
		}

		out += s
	}

	return out
}
