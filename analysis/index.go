// Copyright © 2024 The dotlint authors

package analysis

// Index resolves called names to signatures across files.  Definitions in
// the workspace shadow builtins.  Definitions in the file being scanned
// shadow the workspace; those are layered on by ScanCalls.
type Index struct {
	builtins  *Scope
	workspace *Scope
}

// NewIndex returns an index of the builtins and the top-level named
// signatures in sigs.  When several files define the same name the last
// definition in sigs wins.
func NewIndex(sigs []*Signature) *Index {
	idx := &Index{
		builtins: NewScope(ScopeBuiltin, nil, nil),
	}
	populateBuiltins(idx.builtins)
	idx.workspace = NewScope(ScopeWorkspace, idx.builtins, nil)
	for _, sig := range sigs {
		if !sig.TopLevel || sig.Name == Anonymous {
			continue
		}
		idx.workspace.Define(&Symbol{
			Name:      sig.Name,
			Kind:      SymFunction,
			Source:    sig.Pos,
			Signature: sig,
		})
	}
	return idx
}

// Lookup returns the signature bound to name in the workspace or the
// builtins, or nil.
func (idx *Index) Lookup(name string) *Signature {
	if sym := idx.workspace.Lookup(name); sym != nil {
		return sym.Signature
	}
	return nil
}

// Scope returns the workspace scope, the parent of every file scope.
func (idx *Index) Scope() *Scope {
	return idx.workspace
}
