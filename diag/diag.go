// Package diag defines the spanned diagnostic shape shared by every
// analysis phase, plus the suppression-directive side table.
package diag

import "github.com/wdltools/wdl/position"

// Severity classifies a diagnostic's importance.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityNote
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityNote:
		return "note"
	default:
		return "unknown"
	}
}

// RelatedSpan is a secondary span attached to a diagnostic, with a label
// explaining its relevance ("first defined here", "imported from here").
type RelatedSpan struct {
	Span  position.Span
	Label string
}

// Fix is a suggested textual replacement for a span, offered alongside a
// diagnostic. The core never applies fixes itself; it only proposes them.
type Fix struct {
	Span        position.Span
	Replacement string
	Description string
}

// Diagnostic is a single rule violation: a stable rule identifier, a
// severity, a primary span, optional secondary spans, an optional fix, and
// a message. Code is the stable identifier used by suppression directives
// and by editors to deep-link to rule documentation.
type Diagnostic struct {
	Code     string
	Severity Severity
	Span     position.Span
	Message  string
	Related  []RelatedSpan
	Fix      *Fix
	Source   string // originating document URI
}

// Taxonomy categorises a diagnostic by the phase that raised it, per the
// error handling design: lexical, syntactic, structural, semantic,
// version, or lint (the last is an external collaborator's category; the
// core only ever emits the first five).
type Taxonomy string

const (
	Lexical   Taxonomy = "lexical"
	Syntactic Taxonomy = "syntactic"
	Structural Taxonomy = "structural"
	Semantic  Taxonomy = "semantic"
	Version   Taxonomy = "version"
)

// Suppressions is a side table mapping a CST node id (assigned at parse
// time by the syntax builder) to the set of rule codes suppressed for
// that node and its descendants, populated from `#@ except: <rule>[,
// <rule>]*` directive comments. Lookups during diagnostic emission are a
// map probe per ancestor, not a tree walk.
type Suppressions struct {
	byNode map[int]map[string]bool
	// documentWide holds rule codes suppressed for the entire document,
	// set by SuppressDocument for a directive comment detached from any
	// following node.
	documentWide map[string]bool
}

// NewSuppressions creates an empty suppression table.
func NewSuppressions() *Suppressions {
	return &Suppressions{byNode: make(map[int]map[string]bool)}
}

// Suppress records that nodeID and its descendants should not report the
// given rule codes.
func (s *Suppressions) Suppress(nodeID int, codes []string) {
	set := s.byNode[nodeID]
	if set == nil {
		set = make(map[string]bool, len(codes))
		s.byNode[nodeID] = set
	}

	for _, c := range codes {
		set[c] = true
	}
}

// SuppressDocument records a document-wide suppression, used for a
// directive comment detached from any following node.
func (s *Suppressions) SuppressDocument(codes []string) {
	if s.documentWide == nil {
		s.documentWide = make(map[string]bool, len(codes))
	}

	for _, c := range codes {
		s.documentWide[c] = true
	}
}

// IsSuppressed reports whether code is suppressed for any node id in
// ancestorChain (caller supplies the node and its ancestors, innermost
// first) or document-wide.
func (s *Suppressions) IsSuppressed(code string, ancestorChain []int) bool {
	if s.documentWide[code] {
		return true
	}

	for _, id := range ancestorChain {
		if set, ok := s.byNode[id]; ok && set[code] {
			return true
		}
	}

	return false
}

// Filter returns diags with any suppressed entries removed, given a
// lookup function from a diagnostic's span to the owning node's ancestor
// chain (innermost first). resolve may return nil for a span the table
// can't place, in which case the diagnostic is never suppressed.
func Filter(diags []Diagnostic, s *Suppressions, resolve func(position.Span) []int) []Diagnostic {
	if s == nil {
		return diags
	}

	out := diags[:0]

	for _, d := range diags {
		chain := resolve(d.Span)
		if s.IsSuppressed(d.Code, chain) {
			continue
		}

		out = append(out, d)
	}

	return out
}
