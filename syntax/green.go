package syntax

// NodeKind tags every green tree node. One tag per node kind, per the
// sealed-tagged-variant design: typed wrappers elsewhere verify the tag
// before exposing kind-specific accessors.
type NodeKind int16

const (
	NodeInvalid NodeKind = iota
	NodeDocument
	NodeVersionHeader
	NodeImport
	NodeImportAlias
	NodeStructDecl
	NodeStructMember
	NodeEnumDecl
	NodeEnumVariant
	NodeTaskDecl
	NodeWorkflowDecl
	NodeInputSection
	NodeOutputSection
	NodeDeclaration
	NodeCommandSection
	NodeRuntimeSection
	NodeRuntimeAttr
	NodeRequirementsSection
	NodeHintsSection
	NodeHintsEntry
	NodeMetaSection
	NodeMetaEntry
	NodeParameterMetaSection
	NodeCallStmt
	NodeCallInput
	NodeIfStmt
	NodeScatterStmt
	NodeTypeExpr
	NodeExprBinary
	NodeExprUnary
	NodeExprTernary
	NodeExprCall
	NodeExprIndex
	NodeExprMember
	NodeExprIdent
	NodeExprLiteral
	NodeExprArray
	NodeExprMap
	NodeExprMapEntry
	NodeExprPair
	NodeExprObject
	NodeExprObjectMember
	NodeExprParen
	NodeStringLiteral
	NodeCommandText
	NodePlaceholder
	NodePlaceholderOption
	NodeErrorNode // a recovered, malformed span
)

// Element is either a Token (a leaf) or a *Node (an interior node). The
// green tree's children slice is ordered and exhaustive: walking every
// Element of every Node in order and concatenating token text reproduces
// the source exactly, including trivia.
type Element struct {
	Token *Token
	Node  *Node
}

// Node is an untyped, immutable green tree node: a kind, a byte range, and
// an ordered list of children. No parent pointers live here, keeping
// green nodes shareable across document revisions.
type Node struct {
	Kind     NodeKind
	Start    int
	End      int
	Children []Element

	// Recovered marks a node synthesised by error recovery rather than a
	// clean parse; Skipped holds the tokens the parser discarded to
	// resynchronise.
	Recovered bool
	Skipped   []Token
}

// Span returns the node's byte range.
func (n *Node) Span() (start, end int) {
	return n.Start, n.End
}

// Tokens returns every token directly or transitively under n, in order,
// including trivia — the basis for the losslessness property.
func (n *Node) Tokens() []Token {
	var out []Token

	var walk func(*Node)

	walk = func(node *Node) {
		for _, el := range node.Children {
			if el.Token != nil {
				out = append(out, *el.Token)
			} else if el.Node != nil {
				walk(el.Node)
			}
		}
	}

	walk(n)

	return out
}

// Text reconstructs the exact source text spanned by n from its token
// stream (requires the caller to have built the tree with trivia tokens
// included, which the parser always does).
func (n *Node) Text() string {
	var sb []byte

	for _, t := range n.Tokens() {
		sb = append(sb, t.Text...)
	}

	return string(sb)
}

// ChildNodes returns the interior-node children of n, in order.
func (n *Node) ChildNodes() []*Node {
	var out []*Node

	for _, el := range n.Children {
		if el.Node != nil {
			out = append(out, el.Node)
		}
	}

	return out
}

// ChildrenOfKind returns the direct node children matching kind, in order.
func (n *Node) ChildrenOfKind(kind NodeKind) []*Node {
	var out []*Node

	for _, c := range n.ChildNodes() {
		if c.Kind == kind {
			out = append(out, c)
		}
	}

	return out
}

// FirstChildOfKind returns the first direct node child matching kind, or
// nil if there is none.
func (n *Node) FirstChildOfKind(kind NodeKind) *Node {
	for _, c := range n.ChildNodes() {
		if c.Kind == kind {
			return c
		}
	}

	return nil
}

// FirstToken returns the first token of the given kind directly under n,
// or nil.
func (n *Node) FirstToken(kind Kind) *Token {
	for _, el := range n.Children {
		if el.Token != nil && el.Token.Kind == kind {
			t := *el.Token

			return &t
		}
	}

	return nil
}
