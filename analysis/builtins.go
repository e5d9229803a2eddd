// Copyright © 2024 The dotlint authors

package analysis

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"
)

// builtinFile is the file name reported for builtin signatures.
const builtinFile = "<base>"

// swallowMarker flags a base definition that ignores its dots.
const swallowMarker = "ignores ..."

//go:embed base.R
var baseSource []byte

var loadBuiltins = sync.OnceValue(func() []*Signature {
	file, errs := ParseSource(baseSource, builtinFile)
	if len(errs) > 0 {
		panic(fmt.Sprintf("invalid builtin definitions: %v", errs[0]))
	}
	swallows := make(map[int]bool)
	for _, c := range file.Comments {
		if strings.Contains(c.Text, swallowMarker) {
			swallows[c.Source.Line] = true
		}
	}
	var sigs []*Signature
	for _, sig := range Signatures(file) {
		sig.Builtin = true
		sig.TopLevel = false
		sig.Swallows = swallows[sig.Pos.Line]
		sigs = append(sigs, sig)
	}
	return sigs
})

// Builtins returns the signatures of the known base R functions.  The
// signatures are shared and must not be modified.
func Builtins() []*Signature {
	return append([]*Signature(nil), loadBuiltins()...)
}

// populateBuiltins adds all known builtin functions to the given scope.
func populateBuiltins(scope *Scope) {
	for _, sig := range Builtins() {
		scope.Define(&Symbol{
			Name:      sig.Name,
			Kind:      SymBuiltin,
			Signature: sig,
		})
	}
}
