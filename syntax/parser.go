package syntax

import (
	"fmt"

	"github.com/wdltools/wdl/diag"
	"github.com/wdltools/wdl/position"
)

// syncKinds are the statement-synchronising token kinds the parser
// resumes at after an error, mirroring the sync set a recursive-descent
// recovery strategy needs: section/declaration keywords and the braces
// that delimit them.
var syncKinds = map[Kind]bool{
	KindKwTask:      true,
	KindKwWorkflow:  true,
	KindKwStruct:    true,
	KindKwEnum:      true,
	KindKwInput:     true,
	KindKwOutput:    true,
	KindKwCommand:   true,
	KindKwRuntime:   true,
	KindKwCall:      true,
	KindKwIf:        true,
	KindKwScatter:   true,
	KindLBrace:      true,
	KindRBrace:      true,
	KindEOF:         true,
}

const maxRecoveryErrors = 50

// Parser is a recursive-descent, error-recovering parser that builds the
// green CST. It never fails outright: on an unexpected token it emits a
// diagnostic, synthesises an error node holding the skipped tokens, and
// resumes at the next synchronising token, so the tree always covers the
// full input (the lossless-CST property).
type Parser struct {
	lex    *Lexer
	tok    Token
	trivia []Token
	diags  []diag.Diagnostic
	lines  *position.LineIndex
	uri    string
	nodeID int
	errors int
}

// Result is everything a parse produces: the document root, the
// diagnostics raised while building it, and a node-id side table (Ids)
// mapping a *Node pointer to the stable integer id assigned at
// construction, the node ids diag.Suppressions is keyed by.
type Result struct {
	Root  *Node
	Diags []diag.Diagnostic
	Ids   map[*Node]int
}

// Parse builds the green CST for a single document's source text. uri is
// used only to stamp diagnostics' Source field.
func Parse(uri, src string) Result {
	p := &Parser{
		lex:   NewLexer(src),
		lines: position.NewLineIndex(src),
		uri:   uri,
	}
	p.advance()

	ids := make(map[*Node]int)
	root := p.parseDocument(ids)

	return Result{Root: root, Diags: p.diags, Ids: ids}
}

func (p *Parser) advance() Token {
	prev := p.tok

	for {
		t := p.lex.Next()
		if t.Kind.IsTrivia() {
			p.trivia = append(p.trivia, t)

			continue
		}

		p.tok = t

		break
	}

	return prev
}

func (p *Parser) span(start int) position.Span {
	return position.Span{Start: p.lines.Position(start), End: p.lines.Position(p.tok.Start)}
}

func (p *Parser) pos(offset int) position.Position {
	return p.lines.Position(offset)
}

// bump consumes the current significant token (plus any trivia that
// preceded it) as Elements, in source order.
func (p *Parser) bump() []Element {
	els := make([]Element, 0, len(p.trivia)+1)

	for i := range p.trivia {
		t := p.trivia[i]
		els = append(els, Element{Token: &t})
	}

	p.trivia = nil

	cur := p.tok
	els = append(els, Element{Token: &cur})
	p.advance()

	return els
}

func (p *Parser) errorf(span position.Span, code, format string, args ...any) {
	if p.errors >= maxRecoveryErrors {
		return
	}

	p.errors++
	p.diags = append(p.diags, diag.Diagnostic{
		Code:     code,
		Severity: diag.SeverityError,
		Span:     span,
		Message:  fmt.Sprintf(format, args...),
		Source:   p.uri,
	})
}

// expect consumes the current token if it matches kind, otherwise records
// a diagnostic and returns nil without consuming anything (the caller
// decides whether to synchronise).
func (p *Parser) expect(kind Kind) []Element {
	if p.tok.Kind == kind {
		return p.bump()
	}

	p.errorf(p.span(p.tok.Start), "syntax/expected-token",
		"expected %s, found %s %q", kind, p.tok.Kind, p.tok.Text)

	return nil
}

// recover skips tokens (collecting them, plus their trivia, as the error
// node's Skipped list and as its children, so the tree stays lossless) until a synchronising token is reached, then
// produces a partial node marked Recovered so the rest of the document
// still parses.
func (p *Parser) recover(start int, extra map[Kind]bool) *Node {
	var skipped []Token

	for !syncKinds[p.tok.Kind] && !(extra != nil && extra[p.tok.Kind]) {
		skipped = append(skipped, p.trivia...)
		p.trivia = nil
		skipped = append(skipped, p.tok)

		if p.tok.Kind == KindEOF {
			break
		}

		p.advance()
	}

	children := make([]Element, 0, len(skipped))
	for i := range skipped {
		children = append(children, Element{Token: &skipped[i]})
	}

	return &Node{
		Kind:      NodeErrorNode,
		Start:     start,
		End:       p.tok.Start,
		Children:  children,
		Recovered: true,
		Skipped:   skipped,
	}
}

func (p *Parser) newNode(kind NodeKind, start int, children []Element, ids map[*Node]int) *Node {
	n := &Node{Kind: kind, Start: start, End: p.tok.Start, Children: children}

	p.nodeID++
	if ids != nil {
		ids[n] = p.nodeID
	}

	return n
}

func elNode(n *Node) Element { return Element{Node: n} }

// parseDocument parses the whole file: an optional preamble, the mandatory
// version header, then a sequence of imports and top-level declarations.
func (p *Parser) parseDocument(ids map[*Node]int) *Node {
	start := p.tok.Start

	var children []Element

	if p.tok.Kind == KindKwVersion {
		children = append(children, elNode(p.parseVersionHeader(ids)))
	} else {
		p.errorf(p.span(p.tok.Start), "syntax/missing-version",
			"document must begin with a version statement")
	}

	for p.tok.Kind == KindKwImport {
		children = append(children, elNode(p.parseImport(ids)))
	}

	for p.tok.Kind != KindEOF {
		switch p.tok.Kind {
		case KindKwStruct:
			children = append(children, elNode(p.parseStructDecl(ids)))
		case KindKwEnum:
			children = append(children, elNode(p.parseEnumDecl(ids)))
		case KindKwTask:
			children = append(children, elNode(p.parseTaskDecl(ids)))
		case KindKwWorkflow:
			children = append(children, elNode(p.parseWorkflowDecl(ids)))
		default:
			errStart := p.tok.Start
			n := p.recover(errStart, nil)
			p.errorf(p.span(errStart), "syntax/unexpected-top-level",
				"unexpected token %q at top level", p.tok.Text)
			children = append(children, elNode(n))
		}
	}

	// Trailing trivia (e.g. a final comment with no following node)
	// still belongs to the document so the tree stays lossless.
	for i := range p.trivia {
		t := p.trivia[i]
		children = append(children, Element{Token: &t})
	}

	p.trivia = nil

	return p.newNode(NodeDocument, start, children, ids)
}

func (p *Parser) parseVersionHeader(ids map[*Node]int) *Node {
	start := p.tok.Start

	var children []Element

	children = append(children, p.bump()...) // `version`

	if p.tok.Kind == KindFloatLiteral || p.tok.Kind == KindIntLiteral || p.tok.Kind == KindIdent {
		children = append(children, p.bump()...)
	} else {
		p.errorf(p.span(p.tok.Start), "syntax/expected-version-number", "expected a version number")
	}

	return p.newNode(NodeVersionHeader, start, children, ids)
}

func (p *Parser) parseImport(ids map[*Node]int) *Node {
	start := p.tok.Start

	var children []Element

	children = append(children, p.bump()...) // `import`

	if p.tok.Kind == KindDQuote || p.tok.Kind == KindSQuote {
		children = append(children, elNode(p.parseStringLiteral(ids)))
	} else {
		p.errorf(p.span(p.tok.Start), "syntax/expected-import-uri", "expected a quoted import URI")
	}

	if p.tok.Kind == KindKwAs {
		children = append(children, p.bump()...)
		children = append(children, p.expect(KindIdent)...)
	}

	for p.tok.Kind == KindKwAlias {
		aliasStart := p.tok.Start

		var aliasChildren []Element
		aliasChildren = append(aliasChildren, p.bump()...)
		aliasChildren = append(aliasChildren, p.expect(KindIdent)...)
		aliasChildren = append(aliasChildren, p.expect(KindKwAs)...)
		aliasChildren = append(aliasChildren, p.expect(KindIdent)...)

		children = append(children, elNode(p.newNode(NodeImportAlias, aliasStart, aliasChildren, ids)))
	}

	return p.newNode(NodeImport, start, children, ids)
}

func (p *Parser) parseStructDecl(ids map[*Node]int) *Node {
	start := p.tok.Start

	var children []Element
	children = append(children, p.bump()...) // `struct`
	children = append(children, p.expect(KindIdent)...)
	children = append(children, p.expect(KindLBrace)...)

	for p.tok.Kind != KindRBrace && p.tok.Kind != KindEOF {
		memberStart := p.tok.Start

		var memberChildren []Element
		memberChildren = append(memberChildren, elNode(p.parseTypeExpr(ids)))
		memberChildren = append(memberChildren, p.expect(KindIdent)...)

		children = append(children, elNode(p.newNode(NodeStructMember, memberStart, memberChildren, ids)))
	}

	children = append(children, p.expect(KindRBrace)...)

	return p.newNode(NodeStructDecl, start, children, ids)
}

func (p *Parser) parseEnumDecl(ids map[*Node]int) *Node {
	start := p.tok.Start

	var children []Element
	children = append(children, p.bump()...) // `enum`
	children = append(children, p.expect(KindIdent)...)
	children = append(children, p.expect(KindLBrace)...)

	for p.tok.Kind != KindRBrace && p.tok.Kind != KindEOF {
		variantStart := p.tok.Start

		var variantChildren []Element
		variantChildren = append(variantChildren, p.expect(KindIdent)...)

		if p.tok.Kind == KindEquals {
			variantChildren = append(variantChildren, p.bump()...)
			variantChildren = append(variantChildren, elNode(p.parseExpr(ids, 0)))
		}

		children = append(children, elNode(p.newNode(NodeEnumVariant, variantStart, variantChildren, ids)))

		if p.tok.Kind == KindComma {
			children = append(children, p.bump()...)
		}
	}

	children = append(children, p.expect(KindRBrace)...)

	return p.newNode(NodeEnumDecl, start, children, ids)
}

func (p *Parser) parseTaskDecl(ids map[*Node]int) *Node {
	start := p.tok.Start

	var children []Element
	children = append(children, p.bump()...) // `task`
	children = append(children, p.expect(KindIdent)...)
	children = append(children, p.expect(KindLBrace)...)

	for p.tok.Kind != KindRBrace && p.tok.Kind != KindEOF {
		switch p.tok.Kind {
		case KindKwInput:
			children = append(children, elNode(p.parseInputSection(ids)))
		case KindKwOutput:
			children = append(children, elNode(p.parseOutputSection(ids)))
		case KindKwCommand:
			children = append(children, elNode(p.parseCommandSection(ids)))
		case KindKwRuntime:
			children = append(children, elNode(p.parseRuntimeSection(ids)))
		case KindKwRequirements:
			children = append(children, elNode(p.parseRequirementsSection(ids)))
		case KindKwHints:
			children = append(children, elNode(p.parseHintsSection(ids)))
		case KindKwMeta:
			children = append(children, elNode(p.parseMetaSection(ids, NodeMetaSection)))
		case KindKwParameterMeta:
			children = append(children, elNode(p.parseMetaSection(ids, NodeParameterMetaSection)))
		case KindIdent:
			children = append(children, elNode(p.parseDeclaration(ids)))
		default:
			errStart := p.tok.Start
			n := p.recover(errStart, map[Kind]bool{KindRBrace: true})
			p.errorf(p.span(errStart), "syntax/unexpected-in-task",
				"unexpected token %q inside task", p.tok.Text)
			children = append(children, elNode(n))
		}
	}

	children = append(children, p.expect(KindRBrace)...)

	return p.newNode(NodeTaskDecl, start, children, ids)
}

func (p *Parser) parseWorkflowDecl(ids map[*Node]int) *Node {
	start := p.tok.Start

	var children []Element
	children = append(children, p.bump()...) // `workflow`
	children = append(children, p.expect(KindIdent)...)
	children = append(children, p.expect(KindLBrace)...)
	children = append(children, p.parseWorkflowBody(ids)...)
	children = append(children, p.expect(KindRBrace)...)

	return p.newNode(NodeWorkflowDecl, start, children, ids)
}

// parseWorkflowBody parses the statements shared by a workflow body and a
// scatter/conditional body: sections, calls, control-flow, and private
// declarations.
func (p *Parser) parseWorkflowBody(ids map[*Node]int) []Element {
	var children []Element

	for p.tok.Kind != KindRBrace && p.tok.Kind != KindEOF {
		switch p.tok.Kind {
		case KindKwInput:
			children = append(children, elNode(p.parseInputSection(ids)))
		case KindKwOutput:
			children = append(children, elNode(p.parseOutputSection(ids)))
		case KindKwMeta:
			children = append(children, elNode(p.parseMetaSection(ids, NodeMetaSection)))
		case KindKwParameterMeta:
			children = append(children, elNode(p.parseMetaSection(ids, NodeParameterMetaSection)))
		case KindKwCall:
			children = append(children, elNode(p.parseCallStmt(ids)))
		case KindKwIf:
			children = append(children, elNode(p.parseIfStmt(ids)))
		case KindKwScatter:
			children = append(children, elNode(p.parseScatterStmt(ids)))
		case KindIdent:
			children = append(children, elNode(p.parseDeclaration(ids)))
		default:
			errStart := p.tok.Start
			n := p.recover(errStart, map[Kind]bool{KindRBrace: true})
			p.errorf(p.span(errStart), "syntax/unexpected-in-workflow",
				"unexpected token %q inside workflow", p.tok.Text)
			children = append(children, elNode(n))
		}
	}

	return children
}

func (p *Parser) parseInputSection(ids map[*Node]int) *Node {
	start := p.tok.Start

	var children []Element
	children = append(children, p.bump()...) // `input`
	children = append(children, p.expect(KindLBrace)...)

	for p.tok.Kind == KindIdent || p.tok.Kind == KindKwObject {
		children = append(children, elNode(p.parseDeclaration(ids)))
	}

	children = append(children, p.expect(KindRBrace)...)

	return p.newNode(NodeInputSection, start, children, ids)
}

func (p *Parser) parseOutputSection(ids map[*Node]int) *Node {
	start := p.tok.Start

	var children []Element
	children = append(children, p.bump()...) // `output`
	children = append(children, p.expect(KindLBrace)...)

	for p.tok.Kind == KindIdent || p.tok.Kind == KindKwObject {
		children = append(children, elNode(p.parseDeclaration(ids)))
	}

	children = append(children, p.expect(KindRBrace)...)

	return p.newNode(NodeOutputSection, start, children, ids)
}

// parseDeclaration parses `<type> <name> [= <expr>]`, also accepting the
// `env` modifier (≥1.2, primitive-typed inputs only — enforced in the
// version validation phase, not here).
func (p *Parser) parseDeclaration(ids map[*Node]int) *Node {
	start := p.tok.Start

	var children []Element

	if p.tok.Kind == KindIdent && p.tok.Text == "env" {
		children = append(children, p.bump()...)
	}

	children = append(children, elNode(p.parseTypeExpr(ids)))
	children = append(children, p.expect(KindIdent)...)

	if p.tok.Kind == KindEquals {
		children = append(children, p.bump()...)
		children = append(children, elNode(p.parseExpr(ids, 0)))
	}

	return p.newNode(NodeDeclaration, start, children, ids)
}

var typeKeywords = map[string]bool{
	"Boolean": true, "Int": true, "Float": true, "String": true,
	"File": true, "Directory": true, "Array": true, "Map": true,
	"Pair": true, "Object": true,
}

// parseTypeExpr parses a WDL type: a primitive/compound/named type,
// optional bracketed parameters, a non-empty marker `+`, and an optional
// marker `?`.
func (p *Parser) parseTypeExpr(ids map[*Node]int) *Node {
	start := p.tok.Start

	var children []Element
	children = append(children, p.expect(KindIdent)...)

	if p.tok.Kind == KindLBracket {
		children = append(children, p.bump()...)
		children = append(children, elNode(p.parseTypeExpr(ids)))

		for p.tok.Kind == KindComma {
			children = append(children, p.bump()...)
			children = append(children, elNode(p.parseTypeExpr(ids)))
		}

		children = append(children, p.expect(KindRBracket)...)
	}

	if p.tok.Kind == KindPlus {
		children = append(children, p.bump()...)
	}

	if p.tok.Kind == KindQuestion {
		children = append(children, p.bump()...)
	}

	return p.newNode(NodeTypeExpr, start, children, ids)
}

func (p *Parser) parseCommandSection(ids map[*Node]int) *Node {
	start := p.tok.Start

	var children []Element
	children = append(children, p.bump()...) // `command`

	switch p.tok.Kind {
	case KindHeredocOpen:
		children = append(children, p.bump()...)
		children = append(children, p.parseCommandBody(ids, true)...)
		children = append(children, p.expect(KindHeredocClose)...)
	case KindLBrace:
		// Switch modes before bump lexes the first body token.
		p.lex.EnterBracedCommandBody()
		children = append(children, p.bump()...)
		children = append(children, p.parseCommandBody(ids, false)...)
		children = append(children, p.expect(KindRBrace)...)
	default:
		p.errorf(p.span(p.tok.Start), "syntax/expected-command-open",
			"expected <<< or { to start a command section")
	}

	return p.newNode(NodeCommandSection, start, children, ids)
}

func (p *Parser) parseCommandBody(ids map[*Node]int, heredoc bool) []Element {
	var children []Element

	for {
		switch p.tok.Kind {
		case KindStringPart:
			children = append(children, p.bump()...)
		case KindTildeBrace, KindDollarBrace:
			children = append(children, elNode(p.parsePlaceholder(ids)))
		case KindHeredocClose:
			if heredoc {
				return children
			}

			children = append(children, p.bump()...)
		case KindRBrace:
			if !heredoc {
				return children
			}

			children = append(children, p.bump()...)
		case KindEOF:
			return children
		default:
			children = append(children, p.bump()...)
		}
	}
}

// parsePlaceholder parses `~{expr}` / `${expr}`, including the legacy
// placeholder options `sep=` and `default=` that precede the expression
// in versions before they were removed — accepted here unconditionally;
// version validation flags their use on newer dialects. `true=`/`false=`
// options are not recognised: `true`/`false` lex as boolean literals, so
// a placeholder using them reports a syntax error.
func (p *Parser) parsePlaceholder(ids map[*Node]int) *Node {
	start := p.tok.Start

	var children []Element
	children = append(children, p.bump()...) // `~{` or `${`

	for p.tok.Kind == KindIdent && (p.tok.Text == "sep" || p.tok.Text == "default" ||
		p.tok.Text == "true" || p.tok.Text == "false") {
		optStart := p.tok.Start

		var optChildren []Element
		optChildren = append(optChildren, p.bump()...)
		optChildren = append(optChildren, p.expect(KindEquals)...)
		optChildren = append(optChildren, elNode(p.parseExpr(ids, 0)))

		children = append(children, elNode(p.newNode(NodePlaceholderOption, optStart, optChildren, ids)))
	}

	children = append(children, elNode(p.parseExpr(ids, 0)))
	children = append(children, p.expect(KindRBrace)...)

	return p.newNode(NodePlaceholder, start, children, ids)
}

func (p *Parser) parseRuntimeSection(ids map[*Node]int) *Node {
	start := p.tok.Start

	var children []Element
	children = append(children, p.bump()...) // `runtime`
	children = append(children, p.expect(KindLBrace)...)

	for p.tok.Kind == KindIdent {
		attrStart := p.tok.Start

		var attrChildren []Element
		attrChildren = append(attrChildren, p.bump()...)
		attrChildren = append(attrChildren, p.expect(KindColon)...)
		attrChildren = append(attrChildren, elNode(p.parseExpr(ids, 0)))

		children = append(children, elNode(p.newNode(NodeRuntimeAttr, attrStart, attrChildren, ids)))
	}

	children = append(children, p.expect(KindRBrace)...)

	return p.newNode(NodeRuntimeSection, start, children, ids)
}

func (p *Parser) parseRequirementsSection(ids map[*Node]int) *Node {
	start := p.tok.Start

	var children []Element
	children = append(children, p.bump()...) // `requirements`
	children = append(children, p.expect(KindLBrace)...)

	for p.tok.Kind == KindIdent {
		attrStart := p.tok.Start

		var attrChildren []Element
		attrChildren = append(attrChildren, p.bump()...)
		attrChildren = append(attrChildren, p.expect(KindColon)...)
		attrChildren = append(attrChildren, elNode(p.parseExpr(ids, 0)))

		children = append(children, elNode(p.newNode(NodeRuntimeAttr, attrStart, attrChildren, ids)))
	}

	children = append(children, p.expect(KindRBrace)...)

	return p.newNode(NodeRequirementsSection, start, children, ids)
}

func (p *Parser) parseHintsSection(ids map[*Node]int) *Node {
	start := p.tok.Start

	var children []Element
	children = append(children, p.bump()...) // `hints`
	children = append(children, p.expect(KindLBrace)...)

	for p.tok.Kind == KindIdent {
		entryStart := p.tok.Start

		var entryChildren []Element
		entryChildren = append(entryChildren, p.bump()...)
		entryChildren = append(entryChildren, p.expect(KindColon)...)
		entryChildren = append(entryChildren, elNode(p.parseExpr(ids, 0)))

		children = append(children, elNode(p.newNode(NodeHintsEntry, entryStart, entryChildren, ids)))
	}

	children = append(children, p.expect(KindRBrace)...)

	return p.newNode(NodeHintsSection, start, children, ids)
}

func (p *Parser) parseMetaSection(ids map[*Node]int, kind NodeKind) *Node {
	start := p.tok.Start

	var children []Element
	children = append(children, p.bump()...) // `meta`/`parameter_meta`
	children = append(children, p.expect(KindLBrace)...)

	for p.tok.Kind == KindIdent {
		entryStart := p.tok.Start

		var entryChildren []Element
		entryChildren = append(entryChildren, p.bump()...)
		entryChildren = append(entryChildren, p.expect(KindColon)...)
		entryChildren = append(entryChildren, elNode(p.parseExpr(ids, 0)))

		entryKind := NodeMetaEntry
		children = append(children, elNode(p.newNode(entryKind, entryStart, entryChildren, ids)))
	}

	children = append(children, p.expect(KindRBrace)...)

	return p.newNode(kind, start, children, ids)
}

func (p *Parser) parseCallStmt(ids map[*Node]int) *Node {
	start := p.tok.Start

	var children []Element
	children = append(children, p.bump()...) // `call`
	children = append(children, p.expect(KindIdent)...)

	for p.tok.Kind == KindDot {
		children = append(children, p.bump()...)
		children = append(children, p.expect(KindIdent)...)
	}

	if p.tok.Kind == KindKwAs {
		children = append(children, p.bump()...)
		children = append(children, p.expect(KindIdent)...)
	}

	if p.tok.Kind == KindLBrace {
		children = append(children, p.bump()...)

		if p.tok.Kind == KindKwInput {
			children = append(children, p.bump()...)
			children = append(children, p.expect(KindColon)...)
		}

		for p.tok.Kind == KindIdent {
			inputStart := p.tok.Start

			var inputChildren []Element
			inputChildren = append(inputChildren, p.bump()...)

			if p.tok.Kind == KindEquals {
				inputChildren = append(inputChildren, p.bump()...)
				inputChildren = append(inputChildren, elNode(p.parseExpr(ids, 0)))
			}

			children = append(children, elNode(p.newNode(NodeCallInput, inputStart, inputChildren, ids)))

			if p.tok.Kind == KindComma {
				children = append(children, p.bump()...)
			}
		}

		children = append(children, p.expect(KindRBrace)...)
	}

	return p.newNode(NodeCallStmt, start, children, ids)
}

func (p *Parser) parseIfStmt(ids map[*Node]int) *Node {
	start := p.tok.Start

	var children []Element
	children = append(children, p.bump()...) // `if`
	children = append(children, p.expect(KindLParen)...)
	children = append(children, elNode(p.parseExpr(ids, 0)))
	children = append(children, p.expect(KindRParen)...)
	children = append(children, p.expect(KindLBrace)...)
	children = append(children, p.parseWorkflowBody(ids)...)
	children = append(children, p.expect(KindRBrace)...)

	// `else if` / `else` chains (≥1.3; accepted structurally, version
	// validation gates usage on older dialects).
	for p.tok.Kind == KindKwElse {
		elseStart := p.tok.Start

		var elseChildren []Element
		elseChildren = append(elseChildren, p.bump()...)

		if p.tok.Kind == KindKwIf {
			elseChildren = append(elseChildren, p.bump()...)
			elseChildren = append(elseChildren, p.expect(KindLParen)...)
			elseChildren = append(elseChildren, elNode(p.parseExpr(ids, 0)))
			elseChildren = append(elseChildren, p.expect(KindRParen)...)
			elseChildren = append(elseChildren, p.expect(KindLBrace)...)
			elseChildren = append(elseChildren, p.parseWorkflowBody(ids)...)
			elseChildren = append(elseChildren, p.expect(KindRBrace)...)
			children = append(children, elNode(p.newNode(NodeIfStmt, elseStart, elseChildren, ids)))

			continue
		}

		elseChildren = append(elseChildren, p.expect(KindLBrace)...)
		elseChildren = append(elseChildren, p.parseWorkflowBody(ids)...)
		elseChildren = append(elseChildren, p.expect(KindRBrace)...)
		children = append(children, elNode(p.newNode(NodeIfStmt, elseStart, elseChildren, ids)))

		break
	}

	return p.newNode(NodeIfStmt, start, children, ids)
}

func (p *Parser) parseScatterStmt(ids map[*Node]int) *Node {
	start := p.tok.Start

	var children []Element
	children = append(children, p.bump()...) // `scatter`
	children = append(children, p.expect(KindLParen)...)
	children = append(children, p.expect(KindIdent)...)
	children = append(children, p.expect(KindKwIn)...)
	children = append(children, elNode(p.parseExpr(ids, 0)))
	children = append(children, p.expect(KindRParen)...)
	children = append(children, p.expect(KindLBrace)...)
	children = append(children, p.parseWorkflowBody(ids)...)
	children = append(children, p.expect(KindRBrace)...)

	return p.newNode(NodeScatterStmt, start, children, ids)
}

// Expression grammar, precedence-climbing, loosest to tightest matching
// the external interface's operator table: `||` < `&&` < equality <
// relational < additive < multiplicative < `**` (right-assoc) < unary <
// postfix < atom.
var binaryPrec = map[Kind]int{
	KindOrOr:     1,
	KindAndAnd:   2,
	KindEqEq:     3,
	KindNotEq:    3,
	KindLt:       4,
	KindLe:       4,
	KindGt:       4,
	KindGe:       4,
	KindPlus:     5,
	KindMinus:    5,
	KindStar:     6,
	KindSlash:    6,
	KindPercent:  6,
	KindStarStar: 7,
}

func (p *Parser) parseExpr(ids map[*Node]int, minPrec int) *Node {
	left := p.parseUnary(ids)

	for {
		prec, ok := binaryPrec[p.tok.Kind]
		if !ok || prec < minPrec {
			return left
		}

		start := left.Start

		var children []Element
		children = append(children, elNode(left))
		children = append(children, p.bump()...)

		nextMin := prec + 1
		if prec == 7 {
			nextMin = prec // `**` is right-associative
		}

		right := p.parseExpr(ids, nextMin)
		children = append(children, elNode(right))

		left = p.newNode(NodeExprBinary, start, children, ids)
	}
}

func (p *Parser) parseUnary(ids map[*Node]int) *Node {
	if p.tok.Kind == KindBang || p.tok.Kind == KindMinus || p.tok.Kind == KindPlus {
		start := p.tok.Start

		var children []Element
		children = append(children, p.bump()...)
		children = append(children, elNode(p.parseUnary(ids)))

		return p.newNode(NodeExprUnary, start, children, ids)
	}

	if p.tok.Kind == KindKwIf {
		return p.parseTernary(ids)
	}

	return p.parsePostfix(ids)
}

func (p *Parser) parseTernary(ids map[*Node]int) *Node {
	start := p.tok.Start

	var children []Element
	children = append(children, p.bump()...) // `if`
	children = append(children, elNode(p.parseExpr(ids, 0)))
	children = append(children, p.expect(KindKwThen)...)
	children = append(children, elNode(p.parseExpr(ids, 0)))
	children = append(children, p.expect(KindKwElse)...)
	children = append(children, elNode(p.parseExpr(ids, 0)))

	return p.newNode(NodeExprTernary, start, children, ids)
}

func (p *Parser) parsePostfix(ids map[*Node]int) *Node {
	expr := p.parseAtom(ids)

	for {
		switch p.tok.Kind {
		case KindDot:
			start := expr.Start

			var children []Element
			children = append(children, elNode(expr))
			children = append(children, p.bump()...)
			children = append(children, p.expect(KindIdent)...)
			expr = p.newNode(NodeExprMember, start, children, ids)
		case KindLBracket:
			start := expr.Start

			var children []Element
			children = append(children, elNode(expr))
			children = append(children, p.bump()...)
			children = append(children, elNode(p.parseExpr(ids, 0)))
			children = append(children, p.expect(KindRBracket)...)
			expr = p.newNode(NodeExprIndex, start, children, ids)
		case KindLParen:
			if expr.Kind != NodeExprIdent {
				return expr
			}

			start := expr.Start

			var children []Element
			children = append(children, elNode(expr))
			children = append(children, p.bump()...)

			for p.tok.Kind != KindRParen && p.tok.Kind != KindEOF {
				children = append(children, elNode(p.parseExpr(ids, 0)))

				if p.tok.Kind == KindComma {
					children = append(children, p.bump()...)
				}
			}

			children = append(children, p.expect(KindRParen)...)
			expr = p.newNode(NodeExprCall, start, children, ids)
		default:
			return expr
		}
	}
}

func (p *Parser) parseAtom(ids map[*Node]int) *Node {
	start := p.tok.Start

	switch p.tok.Kind {
	case KindIntLiteral, KindFloatLiteral, KindBoolLiteral, KindKwNone:
		var children []Element
		children = append(children, p.bump()...)

		return p.newNode(NodeExprLiteral, start, children, ids)
	case KindIdent, KindKwTask:
		// `task` is a keyword at declaration level but names the task
		// handle inside an expression.
		p.tok.Kind = KindIdent

		var children []Element
		children = append(children, p.bump()...)

		return p.newNode(NodeExprIdent, start, children, ids)
	case KindDQuote, KindSQuote:
		return p.parseStringLiteral(ids)
	case KindLParen:
		var children []Element
		children = append(children, p.bump()...)
		first := p.parseExpr(ids, 0)
		children = append(children, elNode(first))

		if p.tok.Kind == KindComma {
			children = append(children, p.bump()...)
			children = append(children, elNode(p.parseExpr(ids, 0)))
			children = append(children, p.expect(KindRParen)...)

			return p.newNode(NodeExprPair, start, children, ids)
		}

		children = append(children, p.expect(KindRParen)...)

		return p.newNode(NodeExprParen, start, children, ids)
	case KindLBracket:
		return p.parseArrayLiteral(ids)
	case KindLBrace:
		return p.parseMapLiteral(ids)
	case KindKwObject:
		return p.parseObjectLiteral(ids)
	default:
		errStart := p.tok.Start
		p.errorf(p.span(errStart), "syntax/unexpected-expr-token",
			"unexpected token %q in expression", p.tok.Text)

		return p.recover(errStart, map[Kind]bool{
			KindRParen: true, KindRBracket: true, KindComma: true, KindRBrace: true,
		})
	}
}

func (p *Parser) parseStringLiteral(ids map[*Node]int) *Node {
	start := p.tok.Start
	closeKind := KindDQuote

	if p.tok.Kind == KindSQuote {
		closeKind = KindSQuote
	}

	var children []Element
	children = append(children, p.bump()...) // opening quote

	for p.tok.Kind == KindStringPart || p.tok.Kind == KindTildeBrace || p.tok.Kind == KindDollarBrace {
		if p.tok.Kind == KindStringPart {
			children = append(children, p.bump()...)
		} else {
			children = append(children, elNode(p.parsePlaceholder(ids)))
		}
	}

	children = append(children, p.expect(closeKind)...)

	return p.newNode(NodeStringLiteral, start, children, ids)
}

func (p *Parser) parseArrayLiteral(ids map[*Node]int) *Node {
	start := p.tok.Start

	var children []Element
	children = append(children, p.bump()...) // `[`

	for p.tok.Kind != KindRBracket && p.tok.Kind != KindEOF {
		children = append(children, elNode(p.parseExpr(ids, 0)))

		if p.tok.Kind == KindComma {
			children = append(children, p.bump()...)
		}
	}

	children = append(children, p.expect(KindRBracket)...)

	return p.newNode(NodeExprArray, start, children, ids)
}

func (p *Parser) parseMapLiteral(ids map[*Node]int) *Node {
	start := p.tok.Start

	var children []Element
	children = append(children, p.bump()...) // `{`

	for p.tok.Kind != KindRBrace && p.tok.Kind != KindEOF {
		entryStart := p.tok.Start

		var entryChildren []Element
		entryChildren = append(entryChildren, elNode(p.parseExpr(ids, 0)))
		entryChildren = append(entryChildren, p.expect(KindColon)...)
		entryChildren = append(entryChildren, elNode(p.parseExpr(ids, 0)))

		children = append(children, elNode(p.newNode(NodeExprMapEntry, entryStart, entryChildren, ids)))

		if p.tok.Kind == KindComma {
			children = append(children, p.bump()...)
		}
	}

	children = append(children, p.expect(KindRBrace)...)

	return p.newNode(NodeExprMap, start, children, ids)
}

func (p *Parser) parseObjectLiteral(ids map[*Node]int) *Node {
	start := p.tok.Start

	var children []Element
	children = append(children, p.bump()...) // `object`
	children = append(children, p.expect(KindLBrace)...)

	for p.tok.Kind == KindIdent {
		memberStart := p.tok.Start

		var memberChildren []Element
		memberChildren = append(memberChildren, p.bump()...)
		memberChildren = append(memberChildren, p.expect(KindColon)...)
		memberChildren = append(memberChildren, elNode(p.parseExpr(ids, 0)))

		children = append(children, elNode(p.newNode(NodeExprObjectMember, memberStart, memberChildren, ids)))

		if p.tok.Kind == KindComma {
			children = append(children, p.bump()...)
		}
	}

	children = append(children, p.expect(KindRBrace)...)

	return p.newNode(NodeExprObject, start, children, ids)
}
