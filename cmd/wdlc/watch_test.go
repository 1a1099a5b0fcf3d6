package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wdltools/wdl/diag"
	"github.com/wdltools/wdl/workspace"
)

func TestCountSeverities(t *testing.T) {
	t.Parallel()

	diags := []diag.Diagnostic{
		{Severity: diag.SeverityError},
		{Severity: diag.SeverityWarning},
		{Severity: diag.SeverityWarning},
		{Severity: diag.SeverityNote},
	}

	errs, warns := countSeverities(diags)
	assert.Equal(t, 1, errs)
	assert.Equal(t, 2, warns)
}

func TestSummaryTextPrefersErrorsThenWarningsThenState(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "1 error(s)", summaryText(workspace.StateAnalyzed, 1, 2))
	assert.Equal(t, "2 warning(s)", summaryText(workspace.StateAnalyzed, 0, 2))
	assert.Equal(t, workspace.StateAnalyzed.String(), summaryText(workspace.StateAnalyzed, 0, 0))
}
