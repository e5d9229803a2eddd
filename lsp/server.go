// Copyright © 2024 The dotlint authors

// Package lsp implements a Language Server Protocol server for dotlint.
// It publishes dots diagnostics as files are edited and provides hover,
// go-to-definition, document and workspace symbols, and quick fixes.
package lsp

import (
	"os"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/luthersystems/dotlint/analysis"
	"github.com/luthersystems/dotlint/lint"
	"github.com/tliron/glsp"
	glspserver "github.com/tliron/glsp/server"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

const serverName = "dotlint-lsp"

// Server is the dotlint language server.
type Server struct {
	handler  protocol.Handler
	glspSrv  *glspserver.Server
	docs     *DocumentStore
	rootURI  string
	rootPath string

	// Top-level definitions found under the workspace root.  Open
	// documents replace the definitions of their file.
	workspaceMu   sync.RWMutex
	workspaceSigs []*analysis.Signature
	indexOnce     sync.Once

	// Linter shared across diagnostics runs.
	linter *lint.Linter
	log    hclog.Logger

	// Debouncer for didChange notifications.
	debounceMu sync.Mutex
	debounce   map[string]*time.Timer

	// Notification function captured from the latest request.
	notifyMu sync.Mutex
	notify   glsp.NotifyFunc

	// exitFn is called on the LSP exit notification.  Defaults to os.Exit.
	exitFn func(int)
}

// Option configures the LSP server.
type Option func(*Server)

// WithLinter replaces the default linter, e.g. with one built from a
// configuration file.
func WithLinter(l *lint.Linter) Option {
	return func(s *Server) { s.linter = l }
}

// WithLogger sets the server log.  The default discards everything.
func WithLogger(log hclog.Logger) Option {
	return func(s *Server) { s.log = log }
}

// New creates a new dotlint LSP server.
func New(opts ...Option) *Server {
	s := &Server{
		docs:     NewDocumentStore(),
		linter:   &lint.Linter{Analyzers: lint.DefaultAnalyzers()},
		log:      hclog.NewNullLogger(),
		debounce: make(map[string]*time.Timer),
		exitFn:   os.Exit,
	}
	for _, o := range opts {
		o(s)
	}

	s.handler = protocol.Handler{
		Initialize: s.initialize,
		Shutdown:   s.shutdown,
		Exit:       s.exit,
		SetTrace:   s.setTrace,

		TextDocumentDidOpen:   s.textDocumentDidOpen,
		TextDocumentDidChange: s.textDocumentDidChange,
		TextDocumentDidSave:   s.textDocumentDidSave,
		TextDocumentDidClose:  s.textDocumentDidClose,

		TextDocumentHover:          s.textDocumentHover,
		TextDocumentDefinition:     s.textDocumentDefinition,
		TextDocumentDocumentSymbol: s.textDocumentDocumentSymbol,
		TextDocumentCodeAction:     s.textDocumentCodeAction,
		WorkspaceSymbol:            s.workspaceSymbol,
	}

	s.glspSrv = glspserver.NewServer(&s.handler, serverName, false)
	return s
}

// RunStdio starts the server using stdio transport.
func (s *Server) RunStdio() error {
	return s.glspSrv.RunStdio()
}

// RunTCP starts the server listening on the given address.
func (s *Server) RunTCP(addr string) error {
	return s.glspSrv.RunTCP(addr)
}

func (s *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	s.captureNotify(ctx)

	if params.RootURI != nil {
		s.rootURI = *params.RootURI
		s.rootPath = uriToPath(s.rootURI)
	} else if params.RootPath != nil {
		s.rootPath = *params.RootPath
		s.rootURI = pathToURI(s.rootPath)
	}
	s.log.Info("initialize", "root", s.rootPath)

	capabilities := s.handler.CreateServerCapabilities()

	syncKind := protocol.TextDocumentSyncKindFull
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    &syncKind,
		Save:      &protocol.SaveOptions{IncludeText: boolPtr(false)},
	}
	capabilities.CodeActionProvider = &protocol.CodeActionOptions{
		CodeActionKinds: []protocol.CodeActionKind{protocol.CodeActionKindQuickFix},
	}

	version := "0.1.0"
	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    serverName,
			Version: &version,
		},
	}, nil
}

func (s *Server) shutdown(_ *glsp.Context) error {
	s.debounceMu.Lock()
	for _, t := range s.debounce {
		t.Stop()
	}
	s.debounce = make(map[string]*time.Timer)
	s.debounceMu.Unlock()
	s.log.Info("shutdown")
	return nil
}

// exit terminates the process.  Shutdown is always handled gracefully so
// the exit code is 0.
func (s *Server) exit(_ *glsp.Context) error {
	s.exitFn(0)
	return nil
}

// setTrace handles $/setTrace, which some clients send unconditionally.
func (s *Server) setTrace(_ *glsp.Context, _ *protocol.SetTraceParams) error {
	return nil
}

// ensureWorkspaceIndex scans the workspace root once, on first demand.
// Cached analysis of open documents is dropped afterwards so calls are
// re-resolved against the workspace.
func (s *Server) ensureWorkspaceIndex() {
	s.indexOnce.Do(func() {
		s.buildWorkspaceIndex()
		s.docs.invalidateAll()
	})
}

func (s *Server) buildWorkspaceIndex() {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("workspace scan panicked", "panic", r)
		}
	}()
	if s.rootPath == "" {
		return
	}
	sigs, err := analysis.ScanWorkspace(s.rootPath)
	if err != nil {
		s.log.Warn("workspace scan failed", "root", s.rootPath, "error", err)
		return
	}
	s.log.Debug("indexed workspace", "root", s.rootPath, "definitions", len(sigs))
	s.workspaceMu.Lock()
	s.workspaceSigs = sigs
	s.workspaceMu.Unlock()
}

// updateFileDefinitions replaces the indexed definitions of a saved file.
func (s *Server) updateFileDefinitions(uri string) {
	path := uriToPath(uri)
	src, err := os.ReadFile(path) //nolint:gosec // path comes from the client
	if err != nil {
		return
	}
	file, _ := analysis.ParseSource(src, path)
	defs := analysis.TopLevelSignatures(analysis.Signatures(file))

	s.workspaceMu.Lock()
	kept := withoutFile(s.workspaceSigs, path)
	s.workspaceSigs = append(kept, defs...)
	s.workspaceMu.Unlock()
}

// workspaceDefinitions returns the top-level definitions visible to every
// file: those on disk, with the definitions of open documents taking the
// place of their file's.
func (s *Server) workspaceDefinitions() []*analysis.Signature {
	s.workspaceMu.RLock()
	sigs := s.workspaceSigs
	s.workspaceMu.RUnlock()

	open := s.docs.All()
	for _, doc := range open {
		sigs = withoutFile(sigs, uriToPath(doc.URI))
	}
	for _, doc := range open {
		doc.mu.Lock()
		if doc.file != nil {
			sigs = append(sigs, analysis.TopLevelSignatures(analysis.Signatures(doc.file))...)
		}
		doc.mu.Unlock()
	}
	return sigs
}

func withoutFile(sigs []*analysis.Signature, path string) []*analysis.Signature {
	out := make([]*analysis.Signature, 0, len(sigs))
	for _, sig := range sigs {
		if sig.File != path {
			out = append(out, sig)
		}
	}
	return out
}

func (s *Server) index() *analysis.Index {
	return analysis.NewIndex(s.workspaceDefinitions())
}

func (s *Server) analysisConfig() *analysis.Config {
	if s.linter.Config != nil {
		return s.linter.Config
	}
	return analysis.DefaultConfig()
}

// ensureAnalysis ensures the document has a current analysis result.
func (s *Server) ensureAnalysis(doc *Document) {
	// The index reads every open document, so build it before locking doc.
	s.ensureWorkspaceIndex()
	doc.mu.Lock()
	stale := doc.analysis == nil
	doc.mu.Unlock()
	if !stale {
		return
	}
	idx := s.index()

	doc.mu.Lock()
	defer doc.mu.Unlock()
	if doc.analysis == nil {
		doc.analyze(idx, s.analysisConfig())
	}
}

// captureNotify stores the notification function from the context for
// async use, e.g. publishing diagnostics after a debounce.
func (s *Server) captureNotify(ctx *glsp.Context) {
	s.notifyMu.Lock()
	s.notify = ctx.Notify
	s.notifyMu.Unlock()
}

func (s *Server) sendNotification(method string, params any) {
	s.notifyMu.Lock()
	fn := s.notify
	s.notifyMu.Unlock()
	if fn != nil {
		fn(method, params)
	}
}

func boolPtr(b bool) *bool {
	return &b
}
