// Copyright © 2024 The dotlint authors

package lsp

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/luthersystems/dotlint/lint"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// trailingNolint matches a nolint comment naming analyzers at the end of a
// line, which a new name can be appended to.
var trailingNolint = regexp.MustCompile(`#\s*nolint:[\w.,-]+\s*$`)

// textDocumentCodeAction returns quick fixes for the dotlint diagnostics
// in the request: renaming a misspelled argument and suppressing a
// finding with a nolint comment.
func (s *Server) textDocumentCodeAction(_ *glsp.Context, params *protocol.CodeActionParams) (any, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	if len(params.Context.Only) > 0 && !slices.Contains(params.Context.Only, protocol.CodeActionKindQuickFix) {
		return nil, nil
	}

	doc.mu.Lock()
	content := doc.Content
	doc.mu.Unlock()

	var actions []protocol.CodeAction
	for _, diag := range params.Context.Diagnostics {
		if diag.Source == nil || *diag.Source != diagSource {
			continue
		}
		analyzer := doc.analyzerFor(diag)
		switch analyzer {
		case lint.AnalyzerDotsNamedArg.Name:
			if fix := renameArgAction(params.TextDocument.URI, diag); fix != nil {
				actions = append(actions, *fix)
			}
			actions = append(actions, suppressLintAction(params.TextDocument.URI, diag, analyzer, content))
		case lint.AnalyzerParseError.Name, lint.AnalyzerUnusedNolint.Name, "":
			// Nothing to offer.
		default:
			actions = append(actions, suppressLintAction(params.TextDocument.URI, diag, analyzer, content))
		}
	}
	if len(actions) == 0 {
		return nil, nil
	}
	return actions, nil
}

// renameArgAction replaces a misspelled argument name with the suggestion
// carried in the diagnostic message.
func renameArgAction(uri string, diag protocol.Diagnostic) *protocol.CodeAction {
	fix := extractSuggestion(diag.Message)
	if fix == "" || diag.Range.Start == diag.Range.End {
		return nil
	}
	kind := protocol.CodeActionKindQuickFix
	return &protocol.CodeAction{
		Title:       fmt.Sprintf("Rename argument to %s", fix),
		Kind:        &kind,
		Diagnostics: []protocol.Diagnostic{diag},
		IsPreferred: boolPtr(true),
		Edit: &protocol.WorkspaceEdit{
			Changes: map[string][]protocol.TextEdit{
				uri: {{Range: diag.Range, NewText: fix}},
			},
		},
	}
}

// suppressLintAction adds a nolint comment for analyzer to the end of the
// diagnostic's line, extending an existing one when present.
func suppressLintAction(uri string, diag protocol.Diagnostic, analyzer, content string) protocol.CodeAction {
	ln := lineAt(content, int(diag.Range.Start.Line))
	trimmed := strings.TrimRight(ln, " \t")
	text := " # nolint:" + analyzer
	if trailingNolint.MatchString(trimmed) {
		text = "," + analyzer
	}

	kind := protocol.CodeActionKindQuickFix
	insertPos := protocol.Position{Line: diag.Range.Start.Line, Character: safeUint(len(trimmed))}
	return protocol.CodeAction{
		Title:       fmt.Sprintf("Suppress with # nolint:%s", analyzer),
		Kind:        &kind,
		Diagnostics: []protocol.Diagnostic{diag},
		Edit: &protocol.WorkspaceEdit{
			Changes: map[string][]protocol.TextEdit{
				uri: {{
					Range:   protocol.Range{Start: insertPos, End: insertPos},
					NewText: text,
				}},
			},
		},
	}
}

// extractSuggestion returns X from a message ending in "(did you mean X?)".
func extractSuggestion(msg string) string {
	_, after, found := strings.Cut(msg, "(did you mean ")
	if !found {
		return ""
	}
	name, _, found := strings.Cut(after, "?)")
	if !found {
		return ""
	}
	return strings.TrimSpace(name)
}
