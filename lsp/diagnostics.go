// Copyright © 2024 The dotlint authors

package lsp

import (
	"context"
	"strings"
	"time"

	"github.com/luthersystems/dotlint/lint"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

const (
	debounceDelay = 300 * time.Millisecond
	diagSource    = "dotlint"
)

func (s *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	s.captureNotify(ctx)
	s.docs.Open(
		params.TextDocument.URI,
		int32(params.TextDocument.Version), // #nosec G115 -- document versions are small
		params.TextDocument.Text,
	)
	// Definitions in the new document may resolve calls in the others.
	s.publishAll()
	return nil
}

func (s *Server) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	s.captureNotify(ctx)
	// With full sync, the last content change is the complete document.
	var content string
	for _, change := range params.ContentChanges {
		switch c := change.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			content = c.Text
		case protocol.TextDocumentContentChangeEvent:
			content = c.Text
		}
	}

	doc := s.docs.Change(
		params.TextDocument.URI,
		int32(params.TextDocument.Version), // #nosec G115 -- document versions are small
		content,
	)

	// Debounce to avoid thrashing during rapid edits.
	s.debounceMu.Lock()
	if t, ok := s.debounce[doc.URI]; ok {
		t.Stop()
	}
	s.debounce[doc.URI] = time.AfterFunc(debounceDelay, func() {
		defer s.recoverPanic("debounced analysis")
		s.publishAll()
	})
	s.debounceMu.Unlock()
	return nil
}

func (s *Server) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	s.captureNotify(ctx)
	s.cancelDebounce(params.TextDocument.URI)
	s.ensureWorkspaceIndex()
	s.updateFileDefinitions(params.TextDocument.URI)
	s.publishAll()
	return nil
}

func (s *Server) textDocumentDidClose(_ *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	s.cancelDebounce(params.TextDocument.URI)

	// Clear diagnostics for the closed file.
	s.sendNotification(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         params.TextDocument.URI,
		Diagnostics: []protocol.Diagnostic{},
	})

	s.docs.Close(params.TextDocument.URI)
	s.docs.invalidateAll()
	return nil
}

func (s *Server) cancelDebounce(uri string) {
	s.debounceMu.Lock()
	if t, ok := s.debounce[uri]; ok {
		t.Stop()
		delete(s.debounce, uri)
	}
	s.debounceMu.Unlock()
}

func (s *Server) recoverPanic(what string) {
	if r := recover(); r != nil {
		s.log.Error("recovered panic", "in", what, "panic", r)
	}
}

// publishAll re-lints every open document.
func (s *Server) publishAll() {
	s.ensureWorkspaceIndex()
	s.docs.invalidateAll()
	for _, doc := range s.docs.All() {
		s.analyzeAndPublish(doc)
	}
}

// analyzeAndPublish lints a document and publishes the resulting
// diagnostics to the client.  Parse errors are reported by the parse-error
// analyzer along with everything else.
func (s *Server) analyzeAndPublish(doc *Document) {
	s.ensureAnalysis(doc)

	doc.mu.Lock()
	content := doc.Content
	uri := doc.URI
	doc.mu.Unlock()

	lintDiags, err := s.linter.LintFileWithContext(
		context.Background(),
		[]byte(content),
		uriToPath(uri),
		s.index(),
	)
	if err != nil {
		s.log.Warn("lint failed", "uri", uri, "error", err)
	}

	diags := make([]protocol.Diagnostic, 0, len(lintDiags))
	published := make([]publishedDiagnostic, 0, len(lintDiags))
	for _, d := range lintDiags {
		pd := convertLintDiagnostic(d, content)
		diags = append(diags, pd)
		published = append(published, publishedDiagnostic{analyzer: d.Analyzer, diag: pd})
	}
	doc.mu.Lock()
	doc.published = published
	doc.mu.Unlock()
	s.log.Debug("publishing diagnostics", "uri", uri, "count", len(diags))

	s.sendNotification(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diags,
	})
}

// convertLintDiagnostic converts a lint.Diagnostic to an LSP Diagnostic.
// The range covers the word starting at the diagnostic, or the whole line
// when the diagnostic has no column.
func convertLintDiagnostic(d lint.Diagnostic, content string) protocol.Diagnostic {
	line := max(d.Pos.Line-1, 0)
	lineText := lineAt(content, line)
	var start, end int
	if d.Pos.Col > 0 {
		start = d.Pos.Col - 1
		end = start + len(wordFrom(lineText, start))
	} else {
		end = len(lineText)
	}
	sev := mapLintSeverity(d.Severity)
	msg := d.Message
	if len(d.Notes) > 0 {
		msg += "\n" + strings.Join(d.Notes, "\n")
	}
	return protocol.Diagnostic{
		Range: protocol.Range{
			Start: protocol.Position{Line: safeUint(line), Character: safeUint(start)},
			End:   protocol.Position{Line: safeUint(line), Character: safeUint(end)},
		},
		Severity: &sev,
		Source:   strPtr(diagSource),
		Code:     &protocol.IntegerOrString{Value: d.Analyzer},
		Message:  msg,
	}
}

func mapLintSeverity(sev lint.Severity) protocol.DiagnosticSeverity {
	switch sev {
	case lint.SeverityError:
		return protocol.DiagnosticSeverityError
	case lint.SeverityWarning:
		return protocol.DiagnosticSeverityWarning
	case lint.SeverityInfo:
		return protocol.DiagnosticSeverityInformation
	case lint.SeverityUnknown:
		return protocol.DiagnosticSeverityHint
	default:
		return protocol.DiagnosticSeverityWarning
	}
}

func strPtr(s string) *string {
	return &s
}
