// Copyright © 2024 The dotlint authors

package lsp

import (
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// workspaceSymbol returns the top-level functions across the workspace
// whose names match the query.  An empty query returns all of them.
func (s *Server) workspaceSymbol(_ *glsp.Context, params *protocol.WorkspaceSymbolParams) ([]protocol.SymbolInformation, error) {
	s.ensureWorkspaceIndex()

	query := strings.ToLower(params.Query)
	seen := make(map[string]bool)
	var results []protocol.SymbolInformation
	for _, sig := range s.workspaceDefinitions() {
		if sig.Pos == nil || sig.Pos.Line == 0 || !matchesQuery(sig.Name, query) {
			continue
		}
		uri := pathToURI(sig.File)
		key := sig.Name + "|" + uri
		if seen[key] {
			continue
		}
		seen[key] = true
		results = append(results, protocol.SymbolInformation{
			Name:     sig.Name,
			Kind:     protocol.SymbolKindFunction,
			Location: protocol.Location{URI: uri, Range: locToLSPRange(sig.Pos, funcWidth(sig))},
		})
	}
	return results, nil
}

// matchesQuery performs case-insensitive substring matching.  An empty
// query matches everything.
func matchesQuery(name, lowerQuery string) bool {
	if lowerQuery == "" {
		return true
	}
	return strings.Contains(strings.ToLower(name), lowerQuery)
}
