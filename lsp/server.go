// Package lsp implements a Language Server Protocol server over a
// workspace.Workspace: document lifecycle, diagnostics publish,
// definition, and hover.
package lsp

import (
	"context"
	"sync"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/wdltools/wdl/workspace"
)

// Server implements protocol.Server for WDL.
type Server struct {
	client protocol.Client
	logger *zap.Logger

	mu        sync.RWMutex
	documents map[protocol.DocumentURI]*Document

	ws *workspace.Workspace

	initialized   bool
	shutdown      bool
	workspaceRoot string
}

// Document is an open document's server-side view, kept alongside the
// workspace's own copy so lifecycle handlers can diff versions.
type Document struct {
	URI     protocol.DocumentURI
	Version int32
}

// NewServer creates a server backed by a fresh workspace.
func NewServer(client protocol.Client, logger *zap.Logger) *Server {
	return &Server{
		client:    client,
		logger:    logger,
		documents: make(map[protocol.DocumentURI]*Document),
		ws:        workspace.New(),
	}
}

// Initialize handles the initialize request.
func (s *Server) Initialize(_ context.Context, params *protocol.InitializeParams) (*protocol.InitializeResult, error) {
	s.logger.Info("Initialize")

	if params.RootURI != "" {
		s.workspaceRoot = uriToPath(params.RootURI)
	} else if params.RootPath != "" {
		s.workspaceRoot = params.RootPath
	}

	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: true,
				Change:    protocol.TextDocumentSyncKindFull,
			},
			HoverProvider:      true,
			DefinitionProvider: true,
		},
		ServerInfo: &protocol.ServerInfo{
			Name:    "wdl-lsp",
			Version: "0.1.0",
		},
	}, nil
}

// Initialized handles the initialized notification.
func (s *Server) Initialized(_ context.Context, _ *protocol.InitializedParams) error {
	s.logger.Info("Initialized")
	s.initialized = true

	return nil
}

// Shutdown handles the shutdown request.
func (s *Server) Shutdown(_ context.Context) error {
	s.logger.Info("Shutdown")
	s.shutdown = true

	return nil
}

// Exit handles the exit notification.
func (s *Server) Exit(_ context.Context) error {
	s.logger.Info("Exit")

	return nil
}

// DidOpen handles textDocument/didOpen.
func (s *Server) DidOpen(ctx context.Context, params *protocol.DidOpenTextDocumentParams) error {
	s.logger.Info("DidOpen", zap.String("uri", string(params.TextDocument.URI)))

	s.mu.Lock()
	s.documents[params.TextDocument.URI] = &Document{
		URI: params.TextDocument.URI, Version: params.TextDocument.Version,
	}
	s.mu.Unlock()

	s.ws.Open(string(params.TextDocument.URI), params.TextDocument.Text)
	s.analyzeAndPublish(ctx, params.TextDocument.URI, params.TextDocument.Version)

	return nil
}

// DidChange handles textDocument/didChange (full sync: last change wins).
func (s *Server) DidChange(ctx context.Context, params *protocol.DidChangeTextDocumentParams) error {
	if len(params.ContentChanges) == 0 {
		return nil
	}

	text := params.ContentChanges[len(params.ContentChanges)-1].Text

	s.mu.Lock()
	if doc, ok := s.documents[params.TextDocument.URI]; ok {
		doc.Version = params.TextDocument.Version
	}
	s.mu.Unlock()

	s.ws.Update(string(params.TextDocument.URI), text)
	s.analyzeAndPublish(ctx, params.TextDocument.URI, params.TextDocument.Version)

	return nil
}

// DidClose handles textDocument/didClose.
func (s *Server) DidClose(ctx context.Context, params *protocol.DidCloseTextDocumentParams) error {
	s.mu.Lock()
	delete(s.documents, params.TextDocument.URI)
	s.mu.Unlock()

	s.ws.Close(string(params.TextDocument.URI))

	err := s.client.PublishDiagnostics(ctx, &protocol.PublishDiagnosticsParams{
		URI:         params.TextDocument.URI,
		Diagnostics: []protocol.Diagnostic{},
	})
	if err != nil {
		s.logger.Error("failed to clear diagnostics", zap.Error(err))
	}

	return nil
}

// DidSave handles textDocument/didSave; re-analysis already ran on change.
func (s *Server) DidSave(_ context.Context, _ *protocol.DidSaveTextDocumentParams) error {
	return nil
}

func (s *Server) analyzeAndPublish(ctx context.Context, uri protocol.DocumentURI, version int32) {
	if err := s.ws.AnalyzeAll(ctx); err != nil {
		s.logger.Error("analysis failed", zap.Error(err))
	}

	s.publishDiagnostics(ctx, uri, version)
}

func (s *Server) getWorkspaceDoc(uri protocol.DocumentURI) (*workspace.Document, bool) {
	return s.ws.Get(string(uri))
}

func uriToPath(u protocol.DocumentURI) string {
	const prefix = "file://"

	s := string(u)
	if len(s) > len(prefix) && s[:len(prefix)] == prefix {
		return s[len(prefix):]
	}

	return s
}
