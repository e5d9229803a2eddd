// Copyright © 2024 The dotlint authors

// Package astutil provides shared AST walking utilities for parsed R source.
//
// These helpers are used by both the lint and analysis packages for
// traversing parsed R expressions.
package astutil

import (
	"github.com/luthersystems/dotlint/ast"
	"github.com/luthersystems/dotlint/parser/token"
)

// QuotingFuncs are calls whose arguments are captured as unevaluated
// expressions rather than evaluated.
var QuotingFuncs = map[string]bool{
	"quote":      true,
	"bquote":     true,
	"expression": true,
	"substitute": true,
}

// Walk calls fn for every node in the tree, depth-first.
// parent is nil for top-level expressions.
func Walk(exprs []ast.Node, fn func(node ast.Node, parent ast.Node, depth int)) {
	for _, expr := range exprs {
		walkNode(expr, nil, 0, fn)
	}
}

func walkNode(node ast.Node, parent ast.Node, depth int, fn func(ast.Node, ast.Node, int)) {
	if node == nil {
		return
	}
	fn(node, parent, depth)
	// Arguments of quote() and friends are data, so calls and definitions
	// written inside them never run as written.
	if call, ok := node.(*ast.Call); ok && QuotingFuncs[CallName(call)] {
		return
	}
	for _, child := range ast.Children(node) {
		walkNode(child, node, depth+1, fn)
	}
}

// WalkCalls calls fn for every evaluated call in the tree.
func WalkCalls(exprs []ast.Node, fn func(call *ast.Call, depth int)) {
	Walk(exprs, func(node ast.Node, _ ast.Node, depth int) {
		if call, ok := node.(*ast.Call); ok {
			fn(call, depth)
		}
	})
}

// CallName returns the name of the function called by call.  Plain names
// are returned as is and namespaced names as pkg::name.  CallName returns ""
// when the function is computed, e.g. f()(x) or x$f(y).
func CallName(call *ast.Call) string {
	switch fun := call.Fun.(type) {
	case *ast.Ident:
		return fun.Name
	case *ast.Binary:
		if fun.Op != "::" && fun.Op != ":::" {
			return ""
		}
		pkg, ok1 := fun.X.(*ast.Ident)
		name, ok2 := fun.Y.(*ast.Ident)
		if ok1 && ok2 {
			return pkg.Name + "::" + name.Name
		}
	}
	return ""
}

// HeadIdent returns the identifier naming the called function when it is a
// plain name, or nil.
func HeadIdent(call *ast.Call) *ast.Ident {
	id, _ := call.Fun.(*ast.Ident)
	return id
}

// ArgCount returns the number of arguments in a call, including empty ones.
func ArgCount(call *ast.Call) int {
	return len(call.Args)
}

// AssignTarget returns the name bound by an assignment expression and the
// assigned value.  Both x <- v and v -> x forms are recognized, and the
// target may be a quoted name.  ok is false when n is not an assignment to a
// plain name.
func AssignTarget(n ast.Node) (name string, value ast.Node, ok bool) {
	bin, isBin := n.(*ast.Binary)
	if !isBin || !ast.IsAssign(bin.Op) {
		return "", nil, false
	}
	target, value := bin.X, bin.Y
	if bin.Op == "->" || bin.Op == "->>" {
		target, value = bin.Y, bin.X
	}
	switch t := target.(type) {
	case *ast.Ident:
		return t.Name, value, true
	case *ast.Literal:
		if t.Kind == token.STRING {
			return ast.Unquote(t.Value), value, true
		}
	}
	return "", nil, false
}

// UserDefined returns the set of names bound anywhere in the source.  This
// includes:
//   - Assignment targets at any depth
//   - Parameter names of function literals
//   - for loop variables
//
// The result is file-global (not scope-aware), which is conservative: it may
// suppress a valid finding but will never produce a false positive.
func UserDefined(exprs []ast.Node) map[string]bool {
	defs := make(map[string]bool)
	Walk(exprs, func(node ast.Node, _ ast.Node, _ int) {
		switch x := node.(type) {
		case *ast.Binary:
			if name, _, ok := AssignTarget(x); ok {
				defs[name] = true
			}
		case *ast.FuncLit:
			CollectFormals(x, defs)
		case *ast.For:
			if x.Var != nil {
				defs[x.Var.Name] = true
			}
		}
	})
	return defs
}

// CollectFormals adds the parameter names of fn to defs, skipping "...".
func CollectFormals(fn *ast.FuncLit, defs map[string]bool) {
	if fn == nil {
		return
	}
	for _, p := range fn.Params {
		if p.Name == ast.Dots {
			continue
		}
		defs[p.Name] = true
	}
}

// SourceOf returns the best source location for a node.
// Prefers the node's own source, falls back to its first child's source.
func SourceOf(n ast.Node) *token.Location {
	if loc := n.Pos(); loc != nil && loc.Line > 0 {
		return loc
	}
	for _, c := range ast.Children(n) {
		if loc := c.Pos(); loc != nil {
			return loc
		}
	}
	return n.Pos()
}
