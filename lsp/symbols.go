// Copyright © 2024 The dotlint authors

package lsp

import (
	"github.com/luthersystems/dotlint/analysis"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// textDocumentDocumentSymbol lists the named functions of a document.
func (s *Server) textDocumentDocumentSymbol(_ *glsp.Context, params *protocol.DocumentSymbolParams) (any, error) {
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

	symbols := []protocol.DocumentSymbol{}
	for _, sig := range res.Signatures {
		if sig.Name == analysis.Anonymous || sig.Pos == nil || sig.Pos.Line == 0 {
			continue
		}
		r := locToLSPRange(sig.Pos, funcWidth(sig))
		detail := sig.String()
		symbols = append(symbols, protocol.DocumentSymbol{
			Name:           sig.Name,
			Detail:         &detail,
			Kind:           protocol.SymbolKindFunction,
			Range:          r,
			SelectionRange: r,
		})
	}
	return symbols, nil
}

// funcWidth is the length of the keyword that opens a function literal.
func funcWidth(sig *analysis.Signature) int {
	if sig.Func != nil && sig.Func.Lambda {
		return 1
	}
	return len("function")
}
