// Copyright © 2024 The dotlint authors

package lsp

import (
	"sort"
	"strings"
	"sync"

	"github.com/luthersystems/dotlint/analysis"
	"github.com/luthersystems/dotlint/ast"
	"github.com/luthersystems/dotlint/parser"
	"github.com/luthersystems/dotlint/parser/rdparser"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Document represents an open text document tracked by the LSP server.
type Document struct {
	mu          sync.Mutex
	URI         string
	Version     int32
	Content     string
	file        *ast.File
	parseErrors []*rdparser.ParseError
	analysis    *analysis.Result
	published   []publishedDiagnostic
}

// publishedDiagnostic remembers which analyzer produced a diagnostic sent
// to the client.  Clients echo diagnostics back in code action requests,
// but the code does not survive decoding.
type publishedDiagnostic struct {
	analyzer string
	diag     protocol.Diagnostic
}

// analyzerFor returns the analyzer that produced diag, or "" when diag is
// not one the server published for this document.
func (d *Document) analyzerFor(diag protocol.Diagnostic) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, p := range d.published {
		if p.diag.Range == diag.Range && p.diag.Message == diag.Message {
			return p.analyzer
		}
	}
	if diag.Code != nil {
		if name, ok := diag.Code.Value.(string); ok {
			return name
		}
	}
	return ""
}

// parse parses the document content.  Expressions that fail to parse are
// dropped and the rest of the document is kept.
func (d *Document) parse() {
	path := uriToPath(d.URI)
	d.file, d.parseErrors = parser.Parse(path, strings.NewReader(d.Content))
}

func (d *Document) analyze(idx *analysis.Index, cfg *analysis.Config) {
	if d.file == nil {
		return
	}
	d.analysis = analysis.Analyze(d.file, idx, cfg)
}

// DocumentStore manages open documents with thread-safe access.
type DocumentStore struct {
	mu   sync.RWMutex
	docs map[string]*Document
}

// NewDocumentStore creates an empty document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{docs: make(map[string]*Document)}
}

// Open adds a document to the store and parses it.
func (s *DocumentStore) Open(uri string, version int32, content string) *Document {
	doc := &Document{
		URI:     uri,
		Version: version,
		Content: content,
	}
	doc.parse()
	s.mu.Lock()
	s.docs[uri] = doc
	s.mu.Unlock()
	return doc
}

// Change replaces a document's content (full sync) and re-parses it.
func (s *DocumentStore) Change(uri string, version int32, content string) *Document {
	s.mu.Lock()
	doc, ok := s.docs[uri]
	if !ok {
		doc = &Document{URI: uri}
		s.docs[uri] = doc
	}
	s.mu.Unlock()

	doc.mu.Lock()
	doc.Version = version
	doc.Content = content
	doc.parse()
	doc.analysis = nil
	doc.mu.Unlock()
	return doc
}

// Close removes a document from the store.
func (s *DocumentStore) Close(uri string) {
	s.mu.Lock()
	delete(s.docs, uri)
	s.mu.Unlock()
}

// Get retrieves a document by URI.  Returns nil if not found.
func (s *DocumentStore) Get(uri string) *Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.docs[uri]
}

// All returns the open documents ordered by URI.
func (s *DocumentStore) All() []*Document {
	s.mu.RLock()
	docs := make([]*Document, 0, len(s.docs))
	for _, doc := range s.docs {
		docs = append(docs, doc)
	}
	s.mu.RUnlock()
	sort.Slice(docs, func(i, j int) bool { return docs[i].URI < docs[j].URI })
	return docs
}

// invalidateAll drops the cached analysis of every open document.  Calls
// in one document resolve against definitions in the others, so an edit
// anywhere can change them.
func (s *DocumentStore) invalidateAll() {
	for _, doc := range s.All() {
		doc.mu.Lock()
		doc.analysis = nil
		doc.mu.Unlock()
	}
}
