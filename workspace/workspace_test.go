package workspace_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wdltools/wdl/workspace"
)

const taskDoc = `version 1.2

task greet {
  input {
    String name
  }

  command <<< >>>

  output {
    String greeting = "hi " + name
  }
}
`

func TestOpenParseAnalyze(t *testing.T) {
	t.Parallel()

	ws := workspace.New()
	ws.Open("file:///a.wdl", taskDoc)

	err := ws.AnalyzeAll(context.Background())
	require.NoError(t, err)

	d, ok := ws.Get("file:///a.wdl")
	require.True(t, ok)
	assert.Equal(t, workspace.StateAnalyzed, d.State)
	assert.Empty(t, d.Diagnostics)
	assert.NotEmpty(t, d.Signature)
}

func TestUpdateResetsToPending(t *testing.T) {
	t.Parallel()

	ws := workspace.New()
	ws.Open("file:///a.wdl", taskDoc)
	require.NoError(t, ws.AnalyzeAll(context.Background()))

	ws.Update("file:///a.wdl", taskDoc)

	d, ok := ws.Get("file:///a.wdl")
	require.True(t, ok)
	assert.Equal(t, workspace.StatePending, d.State)
	assert.Equal(t, 2, d.Revision)
}

func TestMissingVersionFails(t *testing.T) {
	t.Parallel()

	ws := workspace.New()
	ws.Open("file:///bad.wdl", "task t { command <<< >>> }")

	require.NoError(t, ws.AnalyzeAll(context.Background()))

	d, ok := ws.Get("file:///bad.wdl")
	require.True(t, ok)
	assert.Equal(t, workspace.StateFailed, d.State)
	assert.Error(t, d.Err)
}

func TestImportCycleDetected(t *testing.T) {
	t.Parallel()

	ws := workspace.New()
	ws.Open("file:///a.wdl", "version 1.2\nimport \"b.wdl\"\n")
	ws.Open("file:///b.wdl", "version 1.2\nimport \"a.wdl\"\n")

	require.NoError(t, ws.AnalyzeAll(context.Background()))

	cycles := ws.Cycles()
	require.NotEmpty(t, cycles)
}

func TestUnresolvedImportReported(t *testing.T) {
	t.Parallel()

	ws := workspace.New()
	ws.Open("file:///a.wdl", "version 1.2\nimport \"missing.wdl\"\n")

	require.NoError(t, ws.AnalyzeAll(context.Background()))

	d, ok := ws.Get("file:///a.wdl")
	require.True(t, ok)

	var found bool

	for _, diag := range d.Diagnostics {
		if diag.Code == "workspace/unresolved-import" {
			found = true
		}
	}

	assert.True(t, found, "importing a never-opened document should report workspace/unresolved-import")
}

func TestRemoteImportReportedUnresolved(t *testing.T) {
	t.Parallel()

	ws := workspace.New()
	ws.Open("file:///a.wdl", "version 1.2\nimport \"https://example.com/lib.wdl\"\n")

	require.NoError(t, ws.AnalyzeAll(context.Background()))

	d, ok := ws.Get("file:///a.wdl")
	require.True(t, ok)
	require.NotEmpty(t, d.Diagnostics)
	assert.Equal(t, "workspace/unresolved-import", d.Diagnostics[0].Code)
}

func TestCloseRemovesDocument(t *testing.T) {
	t.Parallel()

	ws := workspace.New()
	ws.Open("file:///a.wdl", taskDoc)
	ws.Close("file:///a.wdl")

	_, ok := ws.Get("file:///a.wdl")
	assert.False(t, ok)
}
