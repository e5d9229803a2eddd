// Copyright © 2024 The dotlint authors

package lsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func codeActions(t *testing.T, s *Server, uri string, only []protocol.CodeActionKind, diags ...protocol.Diagnostic) []protocol.CodeAction {
	t.Helper()
	result, err := s.textDocumentCodeAction(mockContext(), &protocol.CodeActionParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
		Context: protocol.CodeActionContext{
			Diagnostics: diags,
			Only:        only,
		},
	})
	require.NoError(t, err)
	if result == nil {
		return nil
	}
	actions, ok := result.([]protocol.CodeAction)
	require.True(t, ok, "code actions should be []CodeAction, got %T", result)
	return actions
}

func findAction(actions []protocol.CodeAction, title string) *protocol.CodeAction {
	for i := range actions {
		if actions[i].Title == title {
			return &actions[i]
		}
	}
	return nil
}

// publishedDiagnostics opens uri and returns what the server published.
func publishedDiagnostics(t *testing.T, s *Server, uri, text string) []protocol.Diagnostic {
	t.Helper()
	ctx, captured := capturingContext()
	didOpen(t, s, ctx, uri, text)
	return latest(t, *captured, uri)
}

func TestCodeActionRenameArgument(t *testing.T) {
	s := testServer(t)
	uri := "file:///test/sum.R"
	diags := publishedDiagnostics(t, s, uri, "s <- sum(1, NA, na.omit = TRUE)\n")
	require.Len(t, diags, 1)

	actions := codeActions(t, s, uri, nil, diags...)
	rename := findAction(actions, "Rename argument to na.rm")
	require.NotNil(t, rename)
	assert.True(t, *rename.IsPreferred)
	edits := rename.Edit.Changes[uri]
	require.Len(t, edits, 1)
	assert.Equal(t, "na.rm", edits[0].NewText)
	assert.Equal(t, protocol.Position{Line: 0, Character: 16}, edits[0].Range.Start)
	assert.Equal(t, protocol.Position{Line: 0, Character: 23}, edits[0].Range.End)

	assert.NotNil(t, findAction(actions, "Suppress with # nolint:dots-named-arg"))
}

func TestCodeActionDiagnosticWithoutCode(t *testing.T) {
	s := testServer(t)
	uri := "file:///test/sum.R"
	diags := publishedDiagnostics(t, s, uri, "s <- sum(1, NA, na.omit = TRUE)\n")
	require.Len(t, diags, 1)

	// Diagnostics echoed back by a client arrive with an empty code.
	echoed := diags[0]
	echoed.Code = &protocol.IntegerOrString{}
	actions := codeActions(t, s, uri, nil, echoed)
	assert.NotNil(t, findAction(actions, "Rename argument to na.rm"))
	assert.NotNil(t, findAction(actions, "Suppress with # nolint:dots-named-arg"))

	echoed.Code = nil
	assert.Len(t, codeActions(t, s, uri, nil, echoed), 2)

	unknown := protocol.Diagnostic{
		Range:   echoed.Range,
		Source:  strPtr(diagSource),
		Code:    &protocol.IntegerOrString{},
		Message: "not published",
	}
	assert.Empty(t, codeActions(t, s, uri, nil, unknown))
}

func TestCodeActionSuppressLint(t *testing.T) {
	s := testServer(t)
	uri := "file:///test/total.R"
	diags := publishedDiagnostics(t, s, uri, coercedSource)
	require.Len(t, diags, 1)

	actions := codeActions(t, s, uri, nil, diags...)
	require.Len(t, actions, 1)
	a := actions[0]
	assert.Equal(t, "Suppress with # nolint:dots-coercion", a.Title)
	require.NotNil(t, a.Edit)
	edits := a.Edit.Changes[uri]
	require.Len(t, edits, 1)
	assert.Equal(t, " # nolint:dots-coercion", edits[0].NewText)
	end := protocol.Position{Line: 0, Character: 34}
	assert.Equal(t, protocol.Range{Start: end, End: end}, edits[0].Range)
}

func TestCodeActionExtendsExistingNolint(t *testing.T) {
	s := testServer(t)
	uri := "file:///test/both.R"
	src := "f <- function(scale = 1, ...) sum(c(...)) # nolint:dots-after-required  \n"
	diags := publishedDiagnostics(t, s, uri, src)
	require.Len(t, diags, 1)
	require.Equal(t, "dots-coercion", diags[0].Code.Value)

	actions := codeActions(t, s, uri, nil, diags...)
	require.Len(t, actions, 1)
	edit := actions[0].Edit.Changes[uri][0]
	assert.Equal(t, ",dots-coercion", edit.NewText)
	assert.Equal(t, protocol.UInteger(70), edit.Range.Start.Character, "inserted before trailing blanks")
}

func TestCodeActionNoFixForParseErrors(t *testing.T) {
	s := testServer(t)
	uri := "file:///test/broken.R"
	diags := publishedDiagnostics(t, s, uri, "f <- function(x {\n")
	require.NotEmpty(t, diags)
	assert.Empty(t, codeActions(t, s, uri, nil, diags...))
}

func TestCodeActionIgnoresOtherSources(t *testing.T) {
	s := testServer(t)
	uri := "file:///test/other.R"
	openDoc(s, uri, coercedSource)
	diag := protocol.Diagnostic{
		Source:  strPtr("other-linter"),
		Code:    &protocol.IntegerOrString{Value: "dots-coercion"},
		Message: "not ours",
	}
	assert.Empty(t, codeActions(t, s, uri, nil, diag))
}

func TestCodeActionOnlyFilter(t *testing.T) {
	s := testServer(t)
	uri := "file:///test/total.R"
	diags := publishedDiagnostics(t, s, uri, coercedSource)
	assert.Empty(t, codeActions(t, s, uri, []protocol.CodeActionKind{protocol.CodeActionKindRefactor}, diags...))
	assert.NotEmpty(t, codeActions(t, s, uri, []protocol.CodeActionKind{protocol.CodeActionKindQuickFix}, diags...))
}

func TestCodeActionUnknownDocument(t *testing.T) {
	s := testServer(t)
	assert.Empty(t, codeActions(t, s, "file:///nope.R", nil))
}

func TestExtractSuggestion(t *testing.T) {
	tests := []struct {
		msg  string
		want string
	}{
		{"argument na.omit matches no parameter of sum(..., na.rm = FALSE) and lands in ... (did you mean na.rm?)", "na.rm"},
		{"argument zzz matches no parameter of f(x, ...) and lands in ...", ""},
		{"(did you mean", ""},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, extractSuggestion(tc.msg), tc.msg)
	}
}

func TestTrailingNolint(t *testing.T) {
	assert.True(t, trailingNolint.MatchString("x # nolint:dots-coercion"))
	assert.True(t, trailingNolint.MatchString("x #nolint:a,b"))
	assert.False(t, trailingNolint.MatchString("x # nolint"))
	assert.False(t, trailingNolint.MatchString("x # nolint:a because"))
}
