// Copyright © 2024 The dotlint authors

package analysis

import "github.com/luthersystems/dotlint/parser/token"

// SymbolKind classifies a symbol definition.
type SymbolKind int

const (
	SymVariable  SymbolKind = iota // assignment of a non-function value
	SymFunction                    // assignment of a function literal
	SymParameter                   // function parameter
	SymBuiltin                     // base R function
)

func (k SymbolKind) String() string {
	switch k {
	case SymVariable:
		return "variable"
	case SymFunction:
		return "function"
	case SymParameter:
		return "parameter"
	case SymBuiltin:
		return "builtin"
	default:
		return "unknown"
	}
}

// Symbol represents a defined name in a scope.
type Symbol struct {
	Name      string
	Kind      SymbolKind
	Source    *token.Location // nil for builtins
	Scope     *Scope
	Signature *Signature // non-nil for functions and builtins
}
