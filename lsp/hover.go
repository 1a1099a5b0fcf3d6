package lsp

import (
	"context"
	"fmt"
	"strings"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/wdltools/wdl/position"
	"github.com/wdltools/wdl/scope"
)

// Hover handles textDocument/hover.
func (s *Server) Hover(_ context.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	s.logger.Debug("Hover",
		zap.String("uri", string(params.TextDocument.URI)),
		zap.Uint32("line", params.Position.Line),
		zap.Uint32("character", params.Position.Character))

	doc, ok := s.getWorkspaceDoc(params.TextDocument.URI)
	if !ok || doc.Scope == nil {
		return nil, nil //nolint:nilnil
	}

	idx := position.NewLineIndex(doc.Source)
	offset := offsetAt(idx, params.Position)

	ident := identAt(doc.AST.Green(), offset)
	if ident == nil {
		return nil, nil //nolint:nilnil
	}

	name := ident.Text()

	sc := scopeAt(doc, offset)
	if sc == nil {
		return nil, nil //nolint:nilnil
	}

	b, _, found := sc.Resolve(name)
	if !found {
		return nil, nil //nolint:nilnil
	}

	content := hoverContent(name, b)

	rng := spanToRange(position.Span{Start: idx.Position(ident.Start), End: idx.Position(ident.End)}, idx)

	return &protocol.Hover{
		Contents: protocol.MarkupContent{Kind: protocol.Markdown, Value: content},
		Range:    &rng,
	}, nil
}

func hoverContent(name string, b *scope.Binding) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("**%s**: `%s`\n\n", name, b.Type.String()))
	sb.WriteString(fmt.Sprintf("_%s_", bindingKindLabel(b.Kind)))

	return sb.String()
}

func bindingKindLabel(k scope.BindingKind) string {
	switch k {
	case scope.BindingInput:
		return "input"
	case scope.BindingPrivateDecl:
		return "private declaration"
	case scope.BindingOutput:
		return "output"
	case scope.BindingCallOutput:
		return "call output"
	case scope.BindingScatterVar:
		return "scatter variable"
	case scope.BindingTaskHandle:
		return "task handle"
	case scope.BindingStructOrWorkflowName:
		return "struct or workflow name"
	default:
		return "binding"
	}
}
