package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wdltools/wdl/diag"
	"github.com/wdltools/wdl/position"
)

func TestRenderDiagnosticsPlain(t *testing.T) {
	t.Parallel()

	src := "version 1.2\ntask t {\n}\n"
	idx := position.NewLineIndex(src)

	diags := []diag.Diagnostic{
		{
			Code:     "semantic/undefined-name",
			Severity: diag.SeverityError,
			Message:  "undefined name `x`",
			Span:     position.Span{Start: position.Position{Offset: 12}, End: position.Position{Offset: 16}},
		},
	}

	var buf bytes.Buffer
	renderDiagnostics(&buf, "t.wdl", idx, diags)

	out := buf.String()
	assert.Contains(t, out, "t.wdl:2:1")
	assert.Contains(t, out, "semantic/undefined-name")
	assert.Contains(t, out, "undefined name")
}

func TestRenderDiagnosticsEmpty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	renderDiagnostics(&buf, "t.wdl", position.NewLineIndex(""), nil)

	assert.Empty(t, strings.TrimSpace(buf.String()))
}
