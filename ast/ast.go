// Package ast provides typed wrappers over the green CST (package syntax).
// Each wrapper is a thin view: no new storage, just kind-checked child
// accessors, one struct per node kind.
package ast

import (
	"strings"

	"github.com/wdltools/wdl/position"
	"github.com/wdltools/wdl/syntax"
)

// Node is satisfied by every typed wrapper: it can report its span.
type Node interface {
	Span(lines *position.LineIndex) position.Span
	Green() *syntax.Node
}

type base struct{ green *syntax.Node }

func (b base) Green() *syntax.Node { return b.green }

func (b base) Span(lines *position.LineIndex) position.Span {
	return position.Span{Start: lines.Position(b.green.Start), End: lines.Position(b.green.End)}
}

// Document is the typed root: a version header, imports, and top-level
// declarations (structs, enums, tasks, workflows).
type Document struct {
	base
}

// WrapDocument verifies the tag and wraps a green document node. Panics if
// green.Kind is not NodeDocument — reaching this from parsed input would
// only happen from a programming error, per the typed-AST contract.
func WrapDocument(green *syntax.Node) Document {
	if green.Kind != syntax.NodeDocument {
		panic("ast: WrapDocument called on non-document node")
	}

	return Document{base{green}}
}

// Version returns the parsed `version <num>` header, or ("", false) if the
// document failed to parse one (recovered as a missing-version error).
func (d Document) Version() (string, bool) {
	h := d.green.FirstChildOfKind(syntax.NodeVersionHeader)
	if h == nil {
		return "", false
	}

	toks := h.Tokens()
	if len(toks) < 2 {
		return "", false
	}

	return toks[1].Text, true
}

// Imports returns every import statement, in source order.
func (d Document) Imports() []Import {
	var out []Import

	for _, n := range d.green.ChildrenOfKind(syntax.NodeImport) {
		out = append(out, Import{base{n}})
	}

	return out
}

// Structs returns every top-level struct declaration.
func (d Document) Structs() []StructDecl {
	var out []StructDecl

	for _, n := range d.green.ChildrenOfKind(syntax.NodeStructDecl) {
		out = append(out, StructDecl{base{n}})
	}

	return out
}

// Enums returns every top-level enum declaration.
func (d Document) Enums() []EnumDecl {
	var out []EnumDecl

	for _, n := range d.green.ChildrenOfKind(syntax.NodeEnumDecl) {
		out = append(out, EnumDecl{base{n}})
	}

	return out
}

// Tasks returns every top-level task declaration.
func (d Document) Tasks() []TaskDecl {
	var out []TaskDecl

	for _, n := range d.green.ChildrenOfKind(syntax.NodeTaskDecl) {
		out = append(out, TaskDecl{base{n}})
	}

	return out
}

// Workflows returns every top-level workflow declaration (WDL permits at
// most one per document; a second is not rejected here, and the resolver
// resolves only the first without reporting the others).
func (d Document) Workflows() []WorkflowDecl {
	var out []WorkflowDecl

	for _, n := range d.green.ChildrenOfKind(syntax.NodeWorkflowDecl) {
		out = append(out, WorkflowDecl{base{n}})
	}

	return out
}

// Import wraps an `import "<uri>" as <ns> [alias X as Y]*` statement.
type Import struct{ base }

// URI returns the raw (un-escaped) URI text between the quotes.
func (i Import) URI() string {
	lit := i.green.FirstChildOfKind(syntax.NodeStringLiteral)
	if lit == nil {
		return ""
	}

	var sb strings.Builder

	for _, c := range lit.Children {
		if c.Token != nil && c.Token.Kind == syntax.KindStringPart {
			sb.WriteString(c.Token.Text)
		}
	}

	return sb.String()
}

// Namespace returns the `as <ns>` alias, or the URI-derived default (the
// basename without extension) when absent.
func (i Import) Namespace() (string, bool) {
	toks := i.green.Tokens()

	for idx, t := range toks {
		if t.Kind == syntax.KindKwAs && idx+1 < len(toks) {
			// Find the next significant (non-trivia) token.
			for j := idx + 1; j < len(toks); j++ {
				if !toks[j].Kind.IsTrivia() {
					return toks[j].Text, true
				}
			}
		}
	}

	return "", false
}

// Aliases returns each `alias X as Y` clause.
func (i Import) Aliases() []ImportAlias {
	var out []ImportAlias

	for _, n := range i.green.ChildrenOfKind(syntax.NodeImportAlias) {
		out = append(out, ImportAlias{base{n}})
	}

	return out
}

// ImportAlias wraps `alias X as Y`.
type ImportAlias struct{ base }

func (a ImportAlias) Names() (from, to string) {
	toks := significant(a.green)
	if len(toks) >= 4 {
		return toks[1].Text, toks[3].Text
	}

	return "", ""
}

// StructDecl wraps `struct Name { <type> <name> ... }`.
type StructDecl struct{ base }

func (s StructDecl) Name() string {
	toks := significant(s.green)
	if len(toks) >= 2 {
		return toks[1].Text
	}

	return ""
}

func (s StructDecl) Members() []StructMember {
	var out []StructMember

	for _, n := range s.green.ChildrenOfKind(syntax.NodeStructMember) {
		out = append(out, StructMember{base{n}})
	}

	return out
}

// StructMember wraps `<type> <name>` inside a struct body.
type StructMember struct{ base }

func (m StructMember) Type() TypeExpr {
	return TypeExpr{base{m.green.FirstChildOfKind(syntax.NodeTypeExpr)}}
}

func (m StructMember) Name() string {
	toks := significant(m.green)

	for _, t := range toks {
		if t.Kind == syntax.KindIdent {
			return t.Text
		}
	}

	return ""
}

// EnumDecl wraps `enum Name { Variant [= expr], ... }` (≥1.3).
type EnumDecl struct{ base }

func (e EnumDecl) Name() string {
	toks := significant(e.green)
	if len(toks) >= 2 {
		return toks[1].Text
	}

	return ""
}

func (e EnumDecl) Variants() []EnumVariant {
	var out []EnumVariant

	for _, n := range e.green.ChildrenOfKind(syntax.NodeEnumVariant) {
		out = append(out, EnumVariant{base{n}})
	}

	return out
}

// EnumVariant wraps a single enum member.
type EnumVariant struct{ base }

func (v EnumVariant) Name() string {
	toks := significant(v.green)
	if len(toks) >= 1 {
		return toks[0].Text
	}

	return ""
}

func (v EnumVariant) Value() (Expr, bool) {
	for _, c := range v.green.Children {
		if c.Node != nil && isExprKind(c.Node.Kind) {
			return Expr{base{c.Node}}, true
		}
	}

	return Expr{}, false
}

// TaskDecl wraps a `task Name { ... }` declaration.
type TaskDecl struct{ base }

func (t TaskDecl) Name() string {
	toks := significant(t.green)
	if len(toks) >= 2 {
		return toks[1].Text
	}

	return ""
}

func (t TaskDecl) Input() (InputSection, bool) {
	n := t.green.FirstChildOfKind(syntax.NodeInputSection)
	if n == nil {
		return InputSection{}, false
	}

	return InputSection{base{n}}, true
}

func (t TaskDecl) Output() (OutputSection, bool) {
	n := t.green.FirstChildOfKind(syntax.NodeOutputSection)
	if n == nil {
		return OutputSection{}, false
	}

	return OutputSection{base{n}}, true
}

func (t TaskDecl) Command() (CommandSection, bool) {
	n := t.green.FirstChildOfKind(syntax.NodeCommandSection)
	if n == nil {
		return CommandSection{}, false
	}

	return CommandSection{base{n}}, true
}

func (t TaskDecl) Runtime() (RuntimeSection, bool) {
	n := t.green.FirstChildOfKind(syntax.NodeRuntimeSection)
	if n == nil {
		return RuntimeSection{}, false
	}

	return RuntimeSection{base{n}}, true
}

func (t TaskDecl) Requirements() (RuntimeSection, bool) {
	n := t.green.FirstChildOfKind(syntax.NodeRequirementsSection)
	if n == nil {
		return RuntimeSection{}, false
	}

	return RuntimeSection{base{n}}, true
}

func (t TaskDecl) Hints() (HintsSection, bool) {
	n := t.green.FirstChildOfKind(syntax.NodeHintsSection)
	if n == nil {
		return HintsSection{}, false
	}

	return HintsSection{base{n}}, true
}

// Declarations returns the private (non-input/output) declarations
// directly in the task body.
func (t TaskDecl) Declarations() []Declaration {
	var out []Declaration

	for _, n := range t.green.ChildrenOfKind(syntax.NodeDeclaration) {
		out = append(out, Declaration{base{n}})
	}

	return out
}

// WorkflowDecl wraps a `workflow Name { ... }` declaration.
type WorkflowDecl struct{ base }

func (w WorkflowDecl) Name() string {
	toks := significant(w.green)
	if len(toks) >= 2 {
		return toks[1].Text
	}

	return ""
}

func (w WorkflowDecl) Input() (InputSection, bool) {
	n := w.green.FirstChildOfKind(syntax.NodeInputSection)
	if n == nil {
		return InputSection{}, false
	}

	return InputSection{base{n}}, true
}

func (w WorkflowDecl) Output() (OutputSection, bool) {
	n := w.green.FirstChildOfKind(syntax.NodeOutputSection)
	if n == nil {
		return OutputSection{}, false
	}

	return OutputSection{base{n}}, true
}

func (w WorkflowDecl) Declarations() []Declaration {
	var out []Declaration

	for _, n := range w.green.ChildrenOfKind(syntax.NodeDeclaration) {
		out = append(out, Declaration{base{n}})
	}

	return out
}

func (w WorkflowDecl) Calls() []CallStmt {
	var out []CallStmt

	for _, n := range w.green.ChildrenOfKind(syntax.NodeCallStmt) {
		out = append(out, CallStmt{base{n}})
	}

	return out
}

func (w WorkflowDecl) Scatters() []ScatterStmt {
	var out []ScatterStmt

	for _, n := range w.green.ChildrenOfKind(syntax.NodeScatterStmt) {
		out = append(out, ScatterStmt{base{n}})
	}

	return out
}

func (w WorkflowDecl) Conditionals() []IfStmt {
	var out []IfStmt

	for _, n := range w.green.ChildrenOfKind(syntax.NodeIfStmt) {
		out = append(out, IfStmt{base{n}})
	}

	return out
}

// InputSection / OutputSection wrap `input { ... }` / `output { ... }`.
type InputSection struct{ base }

func (s InputSection) Declarations() []Declaration {
	var out []Declaration

	for _, n := range s.green.ChildrenOfKind(syntax.NodeDeclaration) {
		out = append(out, Declaration{base{n}})
	}

	return out
}

type OutputSection struct{ base }

func (s OutputSection) Declarations() []Declaration {
	var out []Declaration

	for _, n := range s.green.ChildrenOfKind(syntax.NodeDeclaration) {
		out = append(out, Declaration{base{n}})
	}

	return out
}

// Declaration wraps `[env] <type> <name> [= <expr>]`.
type Declaration struct{ base }

func (d Declaration) Env() bool {
	toks := significant(d.green)

	return len(toks) > 0 && toks[0].Kind == syntax.KindIdent && toks[0].Text == "env"
}

func (d Declaration) Type() TypeExpr {
	return TypeExpr{base{d.green.FirstChildOfKind(syntax.NodeTypeExpr)}}
}

func (d Declaration) Name() string {
	toks := significant(d.green)
	seenType := false

	for _, t := range toks {
		if t.Kind == syntax.KindIdent {
			if !seenType && d.Type().green != nil {
				seenType = true

				continue
			}

			return t.Text
		}
	}

	return ""
}

func (d Declaration) Initializer() (Expr, bool) {
	for _, c := range d.green.Children {
		if c.Node != nil && isExprKind(c.Node.Kind) {
			return Expr{base{c.Node}}, true
		}
	}

	return Expr{}, false
}

// TypeExpr wraps a type expression node.
type TypeExpr struct{ base }

func (t TypeExpr) Name() string {
	if t.green == nil {
		return ""
	}

	toks := significant(t.green)
	if len(toks) == 0 {
		return ""
	}

	return toks[0].Text
}

func (t TypeExpr) Params() []TypeExpr {
	var out []TypeExpr

	for _, n := range t.green.ChildrenOfKind(syntax.NodeTypeExpr) {
		out = append(out, TypeExpr{base{n}})
	}

	return out
}

func (t TypeExpr) NonEmpty() bool {
	return t.green.FirstToken(syntax.KindPlus) != nil
}

func (t TypeExpr) Optional() bool {
	return t.green.FirstToken(syntax.KindQuestion) != nil
}

// CommandSection wraps a `command { ... }` / `command <<< ... >>>` block.
type CommandSection struct{ base }

// Parts returns the literal text runs and placeholders in source order.
func (c CommandSection) Parts() []any {
	var out []any

	for _, el := range c.green.Children {
		if el.Token != nil && el.Token.Kind == syntax.KindStringPart {
			out = append(out, el.Token.Text)
		}

		if el.Node != nil && el.Node.Kind == syntax.NodePlaceholder {
			out = append(out, Placeholder{base{el.Node}})
		}
	}

	return out
}

// Placeholder wraps a `~{expr}` / `${expr}` interpolation, possibly with
// legacy options (sep=/default=/true=/false=).
type Placeholder struct{ base }

func (p Placeholder) Options() []PlaceholderOption {
	var out []PlaceholderOption

	for _, n := range p.green.ChildrenOfKind(syntax.NodePlaceholderOption) {
		out = append(out, PlaceholderOption{base{n}})
	}

	return out
}

func (p Placeholder) Expr() Expr {
	for _, c := range p.green.Children {
		if c.Node != nil && isExprKind(c.Node.Kind) {
			return Expr{base{c.Node}}
		}
	}

	return Expr{}
}

type PlaceholderOption struct{ base }

func (o PlaceholderOption) Name() string {
	toks := significant(o.green)
	if len(toks) > 0 {
		return toks[0].Text
	}

	return ""
}

func (o PlaceholderOption) Value() Expr {
	for _, c := range o.green.Children {
		if c.Node != nil && isExprKind(c.Node.Kind) {
			return Expr{base{c.Node}}
		}
	}

	return Expr{}
}

// RuntimeSection wraps `runtime { ... }`/`requirements { ... }`.
type RuntimeSection struct{ base }

func (r RuntimeSection) Attrs() []RuntimeAttr {
	var out []RuntimeAttr

	for _, n := range r.green.ChildrenOfKind(syntax.NodeRuntimeAttr) {
		out = append(out, RuntimeAttr{base{n}})
	}

	return out
}

type RuntimeAttr struct{ base }

func (a RuntimeAttr) Name() string {
	toks := significant(a.green)
	if len(toks) > 0 {
		return toks[0].Text
	}

	return ""
}

func (a RuntimeAttr) Value() Expr {
	for _, c := range a.green.Children {
		if c.Node != nil && isExprKind(c.Node.Kind) {
			return Expr{base{c.Node}}
		}
	}

	return Expr{}
}

// HintsSection wraps `hints { ... }` (≥1.2).
type HintsSection struct{ base }

func (h HintsSection) Entries() []RuntimeAttr {
	var out []RuntimeAttr

	for _, n := range h.green.ChildrenOfKind(syntax.NodeHintsEntry) {
		out = append(out, RuntimeAttr{base{n}})
	}

	return out
}

// CallStmt wraps `call Name [as alias] { input: ... }`.
type CallStmt struct{ base }

func (c CallStmt) Target() string {
	var parts []string

	for _, t := range significant(c.green) {
		if t.Kind == syntax.KindIdent {
			parts = append(parts, t.Text)

			continue
		}

		if t.Kind == syntax.KindKwAs {
			break
		}

		if t.Kind != syntax.KindDot && len(parts) > 0 {
			break
		}
	}

	return strings.Join(parts, ".")
}

func (c CallStmt) Alias() (string, bool) {
	toks := significant(c.green)

	for i, t := range toks {
		if t.Kind == syntax.KindKwAs && i+1 < len(toks) {
			return toks[i+1].Text, true
		}
	}

	return "", false
}

func (c CallStmt) Inputs() []CallInput {
	var out []CallInput

	for _, n := range c.green.ChildrenOfKind(syntax.NodeCallInput) {
		out = append(out, CallInput{base{n}})
	}

	return out
}

type CallInput struct{ base }

func (i CallInput) Name() string {
	toks := significant(i.green)
	if len(toks) > 0 {
		return toks[0].Text
	}

	return ""
}

func (i CallInput) Value() (Expr, bool) {
	for _, c := range i.green.Children {
		if c.Node != nil && isExprKind(c.Node.Kind) {
			return Expr{base{c.Node}}, true
		}
	}

	return Expr{}, false
}

// IfStmt wraps a workflow conditional.
type IfStmt struct{ base }

func (s IfStmt) Condition() Expr {
	for _, c := range s.green.Children {
		if c.Node != nil && isExprKind(c.Node.Kind) {
			return Expr{base{c.Node}}
		}
	}

	return Expr{}
}

func (s IfStmt) Calls() []CallStmt {
	var out []CallStmt

	for _, n := range s.green.ChildrenOfKind(syntax.NodeCallStmt) {
		out = append(out, CallStmt{base{n}})
	}

	return out
}

func (s IfStmt) Declarations() []Declaration {
	var out []Declaration

	for _, n := range s.green.ChildrenOfKind(syntax.NodeDeclaration) {
		out = append(out, Declaration{base{n}})
	}

	return out
}

func (s IfStmt) Scatters() []ScatterStmt {
	var out []ScatterStmt

	for _, n := range s.green.ChildrenOfKind(syntax.NodeScatterStmt) {
		out = append(out, ScatterStmt{base{n}})
	}

	return out
}

func (s IfStmt) Else() (IfStmt, bool) {
	nested := s.green.ChildrenOfKind(syntax.NodeIfStmt)
	if len(nested) == 0 {
		return IfStmt{}, false
	}

	return IfStmt{base{nested[0]}}, true
}

// ScatterStmt wraps `scatter (v in expr) { ... }`.
type ScatterStmt struct{ base }

func (s ScatterStmt) Variable() string {
	toks := significant(s.green)
	if len(toks) >= 3 {
		return toks[2].Text // `scatter` `(` `<ident>`
	}

	return ""
}

func (s ScatterStmt) Source() Expr {
	for _, c := range s.green.Children {
		if c.Node != nil && isExprKind(c.Node.Kind) {
			return Expr{base{c.Node}}
		}
	}

	return Expr{}
}

func (s ScatterStmt) Calls() []CallStmt {
	var out []CallStmt

	for _, n := range s.green.ChildrenOfKind(syntax.NodeCallStmt) {
		out = append(out, CallStmt{base{n}})
	}

	return out
}

func (s ScatterStmt) Declarations() []Declaration {
	var out []Declaration

	for _, n := range s.green.ChildrenOfKind(syntax.NodeDeclaration) {
		out = append(out, Declaration{base{n}})
	}

	return out
}

func (s ScatterStmt) Conditionals() []IfStmt {
	var out []IfStmt

	for _, n := range s.green.ChildrenOfKind(syntax.NodeIfStmt) {
		out = append(out, IfStmt{base{n}})
	}

	return out
}

func (s ScatterStmt) Scatters() []ScatterStmt {
	var out []ScatterStmt

	for _, n := range s.green.ChildrenOfKind(syntax.NodeScatterStmt) {
		out = append(out, ScatterStmt{base{n}})
	}

	return out
}

// Expr is a generic typed wrapper over any expression node kind; callers
// switch on Green().Kind for kind-specific handling (mirroring the
// sealed-tagged-variant note in the design notes).
type Expr struct{ base }

func (e Expr) IsZero() bool { return e.green == nil }

func isExprKind(k syntax.NodeKind) bool {
	switch k {
	case syntax.NodeExprBinary, syntax.NodeExprUnary, syntax.NodeExprTernary,
		syntax.NodeExprCall, syntax.NodeExprIndex, syntax.NodeExprMember,
		syntax.NodeExprIdent, syntax.NodeExprLiteral, syntax.NodeExprArray,
		syntax.NodeExprMap, syntax.NodeExprPair, syntax.NodeExprObject,
		syntax.NodeExprParen, syntax.NodeStringLiteral:
		return true
	default:
		return false
	}
}

func significant(n *syntax.Node) []syntax.Token {
	var out []syntax.Token

	for _, t := range n.Tokens() {
		if !t.Kind.IsTrivia() {
			out = append(out, t)
		}
	}

	return out
}
