// Copyright © 2024 The dotlint authors

package lsp

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func TestWorkspaceSymbol(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "R"), 0750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "R", "handlers.R"), []byte(
		"my_handler <- function(req, ...) route(req, ...)\nprocess_request <- function(req) req\nmax_retries <- 3\n"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "R", "active.R"), []byte(
		"stale_fn <- function() NULL\n"), 0600))

	s := testServer(t)
	s.rootPath = dir

	query := func(t *testing.T, q string) []protocol.SymbolInformation {
		t.Helper()
		result, err := s.workspaceSymbol(mockContext(), &protocol.WorkspaceSymbolParams{Query: q})
		require.NoError(t, err)
		return result
	}

	t.Run("empty query returns all functions", func(t *testing.T) {
		names := symbolNames(query(t, ""))
		assert.ElementsMatch(t, []string{"my_handler", "process_request", "stale_fn"}, names)
	})

	t.Run("query filters by substring", func(t *testing.T) {
		names := symbolNames(query(t, "handler"))
		assert.Equal(t, []string{"my_handler"}, names)
	})

	t.Run("query is case-insensitive", func(t *testing.T) {
		assert.Equal(t, []string{"my_handler"}, symbolNames(query(t, "HANDLER")))
	})

	t.Run("location points at the definition", func(t *testing.T) {
		result := query(t, "process_request")
		require.Len(t, result, 1)
		assert.Equal(t, protocol.SymbolKindFunction, result[0].Kind)
		assert.Equal(t, pathToURI(filepath.Join(dir, "R", "handlers.R")), result[0].Location.URI)
		assert.Equal(t, protocol.Position{Line: 1, Character: 19}, result[0].Location.Range.Start)
	})

	t.Run("no results for non-matching query", func(t *testing.T) {
		assert.Empty(t, query(t, "zzz_nonexistent"))
	})

	t.Run("open documents replace their file", func(t *testing.T) {
		openDoc(s, pathToURI(filepath.Join(dir, "R", "active.R")), "active_fn <- function(x) x\n")
		names := symbolNames(query(t, ""))
		assert.Contains(t, names, "active_fn")
		assert.NotContains(t, names, "stale_fn")
	})
}

func TestMatchesQuery(t *testing.T) {
	assert.True(t, matchesQuery("vapply", ""))
	assert.True(t, matchesQuery("my_handler", "handler"))
	assert.True(t, matchesQuery("MY_HANDLER", "handler"))
	// matchesQuery expects lowerQuery to already be lowered (caller does this).
	assert.False(t, matchesQuery("my_handler", "HANDLER"), "upper query not pre-lowered → no match")
	assert.False(t, matchesQuery("my_handler", "zzz"))
}

func symbolNames(syms []protocol.SymbolInformation) []string {
	names := make([]string, len(syms))
	for i, s := range syms {
		names[i] = s.Name
	}
	return names
}
