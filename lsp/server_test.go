package lsp_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/wdltools/wdl/lsp"
)

// mockClient implements protocol.Client, recording published diagnostics.
type mockClient struct {
	diagnostics []protocol.PublishDiagnosticsParams
}

func (m *mockClient) PublishDiagnostics(_ context.Context, params *protocol.PublishDiagnosticsParams) error {
	m.diagnostics = append(m.diagnostics, *params)

	return nil
}

func (m *mockClient) Progress(context.Context, *protocol.ProgressParams) error { return nil }
func (m *mockClient) WorkDoneProgressCreate(context.Context, *protocol.WorkDoneProgressCreateParams) error {
	return nil
}
func (m *mockClient) ShowMessage(context.Context, *protocol.ShowMessageParams) error { return nil }
func (m *mockClient) ShowMessageRequest(
	context.Context, *protocol.ShowMessageRequestParams,
) (*protocol.MessageActionItem, error) {
	return nil, nil //nolint:nilnil
}
func (m *mockClient) LogMessage(context.Context, *protocol.LogMessageParams) error { return nil }
func (m *mockClient) Telemetry(context.Context, any) error                         { return nil }
func (m *mockClient) RegisterCapability(context.Context, *protocol.RegistrationParams) error {
	return nil
}
func (m *mockClient) UnregisterCapability(context.Context, *protocol.UnregistrationParams) error {
	return nil
}
func (m *mockClient) ApplyEdit(context.Context, *protocol.ApplyWorkspaceEditParams) (bool, error) {
	return false, nil
}
func (m *mockClient) Configuration(context.Context, *protocol.ConfigurationParams) ([]any, error) {
	return nil, nil
}
func (m *mockClient) WorkspaceFolders(context.Context) ([]protocol.WorkspaceFolder, error) {
	return nil, nil
}

func newTestServer() (*lsp.Server, *mockClient) {
	client := &mockClient{}
	server := lsp.NewServer(client, zap.NewNop())

	return server, client
}

const greetDoc = `version 1.2

task greet {
  input {
    String name
  }
  command <<<
    echo "hello ~{name}"
  >>>
  output {
    String greeting = read_string(stdout())
  }
}

workflow main {
  input {
    String who
  }
  call greet { input: name = who }
  output {
    String result = greet.greeting
  }
}
`

func TestServerInitialize(t *testing.T) {
	t.Parallel()

	server, _ := newTestServer()

	result, err := server.Initialize(context.Background(), &protocol.InitializeParams{})
	require.NoError(t, err)
	assert.NotNil(t, result.Capabilities.TextDocumentSync)
	assert.Equal(t, "wdl-lsp", result.ServerInfo.Name)
}

func TestServerDidOpenPublishesDiagnostics(t *testing.T) {
	t.Parallel()

	server, client := newTestServer()
	ctx := context.Background()

	_, err := server.Initialize(ctx, &protocol.InitializeParams{})
	require.NoError(t, err)
	require.NoError(t, server.Initialized(ctx, &protocol.InitializedParams{}))

	err = server.DidOpen(ctx, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{
			URI:     "file:///greet.wdl",
			Version: 1,
			Text:    greetDoc,
		},
	})
	require.NoError(t, err)
	require.NotEmpty(t, client.diagnostics)
	assert.Empty(t, client.diagnostics[0].Diagnostics)
}

func TestServerDidCloseClearsDiagnostics(t *testing.T) {
	t.Parallel()

	server, client := newTestServer()
	ctx := context.Background()

	require.NoError(t, server.DidOpen(ctx, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: "file:///greet.wdl", Version: 1, Text: greetDoc},
	}))

	require.NoError(t, server.DidClose(ctx, &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: "file:///greet.wdl"},
	}))

	last := client.diagnostics[len(client.diagnostics)-1]
	assert.Empty(t, last.Diagnostics)
}

func TestServerHoverResolvesInputType(t *testing.T) {
	t.Parallel()

	server, _ := newTestServer()
	ctx := context.Background()

	require.NoError(t, server.DidOpen(ctx, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: "file:///greet.wdl", Version: 1, Text: greetDoc},
	}))

	// Position of "who" within `call greet { input: name = who }`, line 19 (0-based 18).
	hover, err := server.Hover(ctx, &protocol.HoverParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: "file:///greet.wdl"},
			Position:     protocol.Position{Line: 18, Character: 30},
		},
	})
	require.NoError(t, err)

	if hover != nil {
		assert.Contains(t, hover.Contents.Value, "String")
	}
}
