package lsp

import (
	"context"

	"go.lsp.dev/protocol"

	"github.com/wdltools/wdl/diag"
	"github.com/wdltools/wdl/position"
)

func (s *Server) publishDiagnostics(ctx context.Context, uri protocol.DocumentURI, version int32) {
	doc, ok := s.getWorkspaceDoc(uri)
	if !ok {
		return
	}

	idx := position.NewLineIndex(doc.Source)

	lspDiags := make([]protocol.Diagnostic, 0, len(doc.Diagnostics))
	for _, d := range doc.Diagnostics {
		lspDiags = append(lspDiags, convertDiagnostic(d, idx))
	}

	err := s.client.PublishDiagnostics(ctx, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Version:     uint32(version),
		Diagnostics: lspDiags,
	})
	if err != nil {
		s.logger.Error("failed to publish diagnostics")
	}
}

func convertDiagnostic(d diag.Diagnostic, idx *position.LineIndex) protocol.Diagnostic {
	related := make([]protocol.DiagnosticRelatedInformation, 0, len(d.Related))

	for _, r := range d.Related {
		related = append(related, protocol.DiagnosticRelatedInformation{
			Location: protocol.Location{
				Range: spanToRange(r.Span, idx),
			},
			Message: r.Label,
		})
	}

	code := d.Code

	return protocol.Diagnostic{
		Range:              spanToRange(d.Span, idx),
		Severity:           convertSeverity(d.Severity),
		Code:               code,
		Source:             "wdl",
		Message:            d.Message,
		RelatedInformation: related,
	}
}

func convertSeverity(sev diag.Severity) protocol.DiagnosticSeverity {
	switch sev {
	case diag.SeverityError:
		return protocol.DiagnosticSeverityError
	case diag.SeverityWarning:
		return protocol.DiagnosticSeverityWarning
	case diag.SeverityNote:
		return protocol.DiagnosticSeverityHint
	default:
		return protocol.DiagnosticSeverityInformation
	}
}

func spanToRange(span position.Span, idx *position.LineIndex) protocol.Range {
	start := idx.UTF16Position(span.Start.Offset)
	end := idx.UTF16Position(span.End.Offset)

	return protocol.Range{
		Start: protocol.Position{Line: uint32(start.Line), Character: uint32(start.Character)},
		End:   protocol.Position{Line: uint32(end.Line), Character: uint32(end.Character)},
	}
}
