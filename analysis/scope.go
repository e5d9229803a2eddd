// Copyright © 2024 The dotlint authors

package analysis

import "github.com/luthersystems/dotlint/ast"

// ScopeKind classifies the kind of scope.
type ScopeKind int

const (
	ScopeBuiltin   ScopeKind = iota // base R functions
	ScopeWorkspace                  // top-level definitions of every scanned file
	ScopeFile                       // top-level definitions of one file
	ScopeFunction                   // function body
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeBuiltin:
		return "builtin"
	case ScopeWorkspace:
		return "workspace"
	case ScopeFile:
		return "file"
	case ScopeFunction:
		return "function"
	default:
		return "unknown"
	}
}

// Scope represents a lexical scope in the source.  R resolves a called name
// through the enclosing function environments, then the file's top level,
// then other files sourced into the same environment and finally base R.
type Scope struct {
	Kind    ScopeKind
	Parent  *Scope
	Symbols map[string]*Symbol
	Node    ast.Node // the function literal that introduced this scope
}

// NewScope creates a new scope of the given kind with the given parent.
func NewScope(kind ScopeKind, parent *Scope, node ast.Node) *Scope {
	return &Scope{
		Kind:    kind,
		Parent:  parent,
		Symbols: make(map[string]*Symbol),
		Node:    node,
	}
}

// Define adds a symbol to this scope, replacing any earlier definition of
// the same name.
func (s *Scope) Define(sym *Symbol) {
	sym.Scope = s
	s.Symbols[sym.Name] = sym
}

// Lookup resolves a symbol by walking the parent chain.
// Returns nil if the symbol is not found.
func (s *Scope) Lookup(name string) *Symbol {
	for scope := s; scope != nil; scope = scope.Parent {
		if sym, ok := scope.Symbols[name]; ok {
			return sym
		}
	}
	return nil
}

// LookupFunction resolves a called name the way R does, skipping bindings
// known to hold something other than a function.  Parameters are not
// skipped since their values are unknown.
func (s *Scope) LookupFunction(name string) *Symbol {
	for scope := s; scope != nil; scope = scope.Parent {
		if sym, ok := scope.Symbols[name]; ok && sym.Kind != SymVariable {
			return sym
		}
	}
	return nil
}

// LookupLocal resolves a symbol only in this scope (not parents).
func (s *Scope) LookupLocal(name string) *Symbol {
	return s.Symbols[name]
}
