// Package workspace owns the incremental, multi-document WDL graph: a
// revision-tracked document cache, an import dependency graph with
// strongly-connected-component cycle detection, and concurrent
// per-document analysis over a sharded, mutex-protected map.
package workspace

import (
	"hash/fnv"
	"sync"

	"github.com/wdltools/wdl/ast"
	"github.com/wdltools/wdl/diag"
	"github.com/wdltools/wdl/scope"
	"github.com/wdltools/wdl/syntax"
	"github.com/wdltools/wdl/version"
)

// State is a document's position in the per-document state machine:
// Pending -> Parsing -> Parsed -> Analyzing -> Analyzed, with Failed
// reachable from Parsing or Analyzing. An edit or a reverse-dependency
// invalidation resets a document to Pending.
type State int

const (
	StatePending State = iota
	StateParsing
	StateParsed
	StateAnalyzing
	StateAnalyzed
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateParsing:
		return "parsing"
	case StateParsed:
		return "parsed"
	case StateAnalyzing:
		return "analyzing"
	case StateAnalyzed:
		return "analyzed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Document is one entry in the workspace graph. Fields set by parsing are
// valid once State >= StateParsed; fields set by analysis are valid once
// State == StateAnalyzed. A reader must copy what it needs while holding
// the workspace's read lock — Document is not safe to mutate in place by
// callers outside this package.
type Document struct {
	URI      string
	Revision int
	State    State
	Source   string

	Syntax  syntax.Result
	AST     ast.Document
	Dialect version.Dialect

	Imports []string // canonical URIs this document imports, in source order

	Scope *scope.Document

	// Signature is a stable digest of this document's exported symbol
	// types (document-level names and task/workflow output shapes).
	// Invalidation of reverse-dependents does not consult it.
	Signature string

	Diagnostics []diag.Diagnostic
	Err         error
}

const shardCount = 16

type shard struct {
	mu   sync.RWMutex
	docs map[string]*Document
}

// Workspace is the thread-safe, multi-document store. Its map is split
// across fixed shards keyed by URI hash so independent documents can be
// read and written concurrently; a single document's own state is always
// read and written under its one shard's lock.
type Workspace struct {
	shards [shardCount]*shard

	mu    sync.Mutex // protects the edges graph below
	edges map[string][]string
}

// New creates an empty workspace.
func New() *Workspace {
	w := &Workspace{edges: map[string][]string{}}
	for i := range w.shards {
		w.shards[i] = &shard{docs: map[string]*Document{}}
	}

	return w
}

func (w *Workspace) shardFor(uri string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(uri))

	return w.shards[h.Sum32()%shardCount]
}

// Get returns a snapshot of the document at uri, if open.
func (w *Workspace) Get(uri string) (*Document, bool) {
	sh := w.shardFor(uri)

	sh.mu.RLock()
	defer sh.mu.RUnlock()

	d, ok := sh.docs[uri]

	return d, ok
}

// Open registers a new document (or replaces a closed one) at revision 1
// in StatePending, ready to be parsed.
func (w *Workspace) Open(uri, source string) {
	sh := w.shardFor(uri)

	sh.mu.Lock()
	defer sh.mu.Unlock()

	sh.docs[uri] = &Document{URI: uri, Revision: 1, State: StatePending, Source: source}
}

// Update replaces a document's source with a new revision, moving it back
// to StatePending. The caller is responsible for triggering re-analysis
// (Workspace.AnalyzeAll or a targeted re-parse) and for invalidating
// reverse-dependents once the new signature is known.
func (w *Workspace) Update(uri, source string) {
	sh := w.shardFor(uri)

	sh.mu.Lock()
	defer sh.mu.Unlock()

	d, ok := sh.docs[uri]
	if !ok {
		sh.docs[uri] = &Document{URI: uri, Revision: 1, State: StatePending, Source: source}

		return
	}

	d.Revision++
	d.Source = source
	d.State = StatePending
	d.Diagnostics = nil
	d.Err = nil
}

// Close removes a document from the workspace.
func (w *Workspace) Close(uri string) {
	sh := w.shardFor(uri)

	sh.mu.Lock()
	defer sh.mu.Unlock()

	delete(sh.docs, uri)

	w.mu.Lock()
	delete(w.edges, uri)
	w.mu.Unlock()
}

// URIs returns every open document's URI.
func (w *Workspace) URIs() []string {
	var out []string

	for _, sh := range w.shards {
		sh.mu.RLock()

		for uri := range sh.docs {
			out = append(out, uri)
		}

		sh.mu.RUnlock()
	}

	return out
}

func (w *Workspace) setDoc(d *Document) {
	sh := w.shardFor(d.URI)

	sh.mu.Lock()
	sh.docs[d.URI] = d
	sh.mu.Unlock()
}

// setEdges replaces uri's outgoing import edges for SCC/reverse-dependency
// computation.
func (w *Workspace) setEdges(uri string, imports []string) {
	w.mu.Lock()
	w.edges[uri] = imports
	w.mu.Unlock()
}

func (w *Workspace) snapshotEdges() map[string][]string {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make(map[string][]string, len(w.edges))
	for k, v := range w.edges {
		cp := make([]string, len(v))
		copy(cp, v)
		out[k] = cp
	}

	return out
}

// Diagnostics returns the most recently published diagnostics for uri.
func (w *Workspace) Diagnostics(uri string) []diag.Diagnostic {
	d, ok := w.Get(uri)
	if !ok {
		return nil
	}

	return d.Diagnostics
}
