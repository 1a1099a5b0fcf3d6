package lsp

import (
	"context"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/wdltools/wdl/position"
)

// Definition handles textDocument/definition.
func (s *Server) Definition(_ context.Context, params *protocol.DefinitionParams) ([]protocol.Location, error) {
	s.logger.Debug("Definition",
		zap.String("uri", string(params.TextDocument.URI)),
		zap.Uint32("line", params.Position.Line),
		zap.Uint32("character", params.Position.Character))

	doc, ok := s.getWorkspaceDoc(params.TextDocument.URI)
	if !ok || doc.Scope == nil {
		return nil, nil
	}

	idx := position.NewLineIndex(doc.Source)
	offset := offsetAt(idx, params.Position)

	ident := identAt(doc.AST.Green(), offset)
	if ident == nil {
		return nil, nil
	}

	name := ident.Text()

	sc := scopeAt(doc, offset)
	if sc == nil {
		return nil, nil
	}

	b, _, found := sc.Resolve(name)
	if !found {
		return nil, nil
	}

	span, ok := declarationSpan(b, idx)
	if !ok {
		return nil, nil
	}

	return []protocol.Location{{
		URI:   params.TextDocument.URI,
		Range: spanToRange(span, idx),
	}}, nil
}
