package lsp

import (
	"go.lsp.dev/protocol"

	"github.com/wdltools/wdl/ast"
	"github.com/wdltools/wdl/position"
	"github.com/wdltools/wdl/scope"
	"github.com/wdltools/wdl/syntax"
	"github.com/wdltools/wdl/workspace"
)

func offsetAt(idx *position.LineIndex, pos protocol.Position) int {
	return idx.OffsetForUTF16(position.UTF16Position{Line: int(pos.Line), Character: int(pos.Character)})
}

// identAt returns the innermost NodeExprIdent green node containing
// offset, or nil if the position isn't on an identifier.
func identAt(n *syntax.Node, offset int) *syntax.Node {
	if offset < n.Start || offset > n.End {
		return nil
	}

	for _, child := range n.ChildNodes() {
		if found := identAt(child, offset); found != nil {
			return found
		}
	}

	if n.Kind == syntax.NodeExprIdent {
		return n
	}

	return nil
}

// scopeAt returns the innermost resolved scope covering offset: a task's
// body scope when offset falls inside that task, the workflow's scope
// when inside the workflow, otherwise the document root.
func scopeAt(doc *workspace.Document, offset int) *scope.Scope {
	if doc.Scope == nil {
		return nil
	}

	for _, td := range doc.AST.Tasks() {
		start, end := td.Green().Span()
		if offset >= start && offset <= end {
			if tr, ok := doc.Scope.Tasks[td.Name()]; ok {
				return tr.Body
			}
		}
	}

	for _, wf := range doc.AST.Workflows() {
		start, end := wf.Green().Span()
		if offset >= start && offset <= end {
			if doc.Scope.Workflow != nil {
				return doc.Scope.Workflow.Scope
			}
		}
	}

	return doc.Scope.Root
}

// declarationSpan returns the span of whatever AST node a binding's
// Source points at, for "go to definition".
func declarationSpan(b *scope.Binding, idx *position.LineIndex) (position.Span, bool) {
	node, ok := b.Source.(ast.Node)
	if !ok {
		return position.Span{}, false
	}

	return node.Span(idx), true
}
