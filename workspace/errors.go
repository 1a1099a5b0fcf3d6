package workspace

import (
	"errors"
	"fmt"
)

// Sentinel errors for expected, matchable failure modes, mirroring the
// module loader's LoadError/CycleError/ResolveError pattern.
var (
	ErrDocumentNotFound = errors.New("wdl/workspace: document not found")
	ErrImportNotFound   = errors.New("wdl/workspace: import not found")
)

// LoadError wraps a failure to read or parse a document from disk.
type LoadError struct {
	URI          string
	ImportedFrom string
	Cause        error
}

func (e *LoadError) Error() string {
	if e.ImportedFrom == "" {
		return fmt.Sprintf("wdl/workspace: load %s: %v", e.URI, e.Cause)
	}

	return fmt.Sprintf("wdl/workspace: load %s (imported from %s): %v", e.URI, e.ImportedFrom, e.Cause)
}

func (e *LoadError) Unwrap() error { return e.Cause }

// CycleError reports an import cycle discovered during SCC analysis.
type CycleError struct{ Members []string }

func (e *CycleError) Error() string {
	msg := "wdl/workspace: import cycle:"
	for _, m := range e.Members {
		msg += " " + m
	}

	return msg
}
