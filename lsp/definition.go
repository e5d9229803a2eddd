// Copyright © 2024 The dotlint authors

package lsp

import (
	"path/filepath"

	"github.com/luthersystems/dotlint/ast"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// textDocumentDefinition jumps from a function name, or from the dots or
// a named argument of a call, to the called function's definition.
func (s *Server) textDocumentDefinition(_ *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	s.ensureAnalysis(doc)

	doc.mu.Lock()
	res := doc.analysis
	doc.mu.Unlock()
	if res == nil {
		return nil, nil
	}

	line := int(params.Position.Line)
	col := int(params.Position.Character)

	var name string
	if site, _, ok := namedArgAt(res, line, col); ok {
		name = site.Target.Name
	} else if id := identAt(res.File, line, col); id != nil && id.Name != ast.Dots {
		name = id.Name
	}
	if name == "" {
		return nil, nil
	}
	sig := s.lookupFunction(res, name)
	// Builtins have no navigable source.
	if sig == nil || sig.Builtin || sig.Pos == nil || sig.Pos.Line == 0 {
		return nil, nil
	}

	defURI := params.TextDocument.URI
	if sig.File != "" && sig.File != uriToPath(params.TextDocument.URI) {
		defPath := sig.File
		if !filepath.IsAbs(defPath) && s.rootPath != "" {
			defPath = filepath.Join(s.rootPath, defPath)
		}
		defURI = pathToURI(defPath)
	}

	return protocol.Location{
		URI:   defURI,
		Range: locToLSPRange(sig.Pos, funcWidth(sig)),
	}, nil
}
