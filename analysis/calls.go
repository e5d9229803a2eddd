// Copyright © 2024 The dotlint authors

package analysis

import (
	"sort"
	"strings"

	"github.com/luthersystems/dotlint/ast"
	"github.com/luthersystems/dotlint/astutil"
	"github.com/luthersystems/dotlint/parser/token"
)

// TopLevel is the caller name of calls made outside any function.
const TopLevel = "<toplevel>"

// CallArg is one actual argument of a call site.
type CallArg struct {
	Name  string // empty for positional arguments
	Pos   *token.Location
	Value ast.Node // nil for an empty argument

	// Implicit is set for the left-hand side of a pipe, which is passed
	// as the first argument without appearing in the argument list.
	Implicit bool
}

// IsDots reports whether the argument forwards the caller's own dots.
func (a CallArg) IsDots() bool {
	return a.Name == "" && ast.IsDots(a.Value)
}

// CallSite is a call to a function that declares dots.
type CallSite struct {
	Pos    *token.Location
	Caller string // enclosing function name or TopLevel
	Target *Signature
	Call   *ast.Call
	Args   []CallArg

	// Matched maps formal names to the argument bound to them.
	Matched map[string]CallArg
	// Dots holds the arguments that land in the target's dots, in call
	// order.
	Dots []CallArg
}

// NamedDots returns the named arguments that land in the target's dots.
func (cs *CallSite) NamedDots() []CallArg {
	var named []CallArg
	for _, a := range cs.Dots {
		if a.Name != "" {
			named = append(named, a)
		}
	}
	return named
}

// ForwardsDots reports whether the call passes on the caller's own dots,
// whose contents are unknown.
func (cs *CallSite) ForwardsDots() bool {
	for _, a := range cs.Args {
		if a.IsDots() {
			return true
		}
	}
	return false
}

// ScanCalls returns the call sites in file whose head names a known
// function with dots, in source order.
func ScanCalls(file *ast.File, index *Index) []*CallSite {
	if index == nil {
		index = NewIndex(nil)
	}
	return scanCalls(file, Signatures(file), index)
}

// ResolveCall matches args against the formals of sig the way R does:
//  1. exact name match against every formal;
//  2. unique partial (prefix) match against the formals before ...;
//  3. positional fill of the remaining formals before ...;
//  4. everything else lands in ....
//
// Forwarded dots (a bare ... argument) are never matched positionally
// because their length is unknown; they land in ....  For functions
// without dots the leftovers are the unused arguments.
func ResolveCall(sig *Signature, args []CallArg) (matched map[string]CallArg, dots []CallArg) {
	matched = make(map[string]CallArg)
	used := make([]bool, len(args))

	for i, a := range args {
		if a.Name == "" || a.Name == ast.Dots {
			continue
		}
		if _, ok := sig.Formal(a.Name); !ok {
			continue
		}
		if _, dup := matched[a.Name]; dup {
			continue
		}
		matched[a.Name] = a
		used[i] = true
	}

	before := sig.BeforeDots()
	for i, a := range args {
		if used[i] || a.Name == "" {
			continue
		}
		var candidate string
		count := 0
		for _, p := range before {
			if _, done := matched[p.Name]; done {
				continue
			}
			if strings.HasPrefix(p.Name, a.Name) {
				candidate = p.Name
				count++
			}
		}
		if count == 1 {
			matched[candidate] = a
			used[i] = true
		}
	}

	next := 0
	for i, a := range args {
		if used[i] || a.Name != "" || a.IsDots() {
			continue
		}
		for next < len(before) {
			if _, done := matched[before[next].Name]; !done {
				break
			}
			next++
		}
		if next >= len(before) {
			break
		}
		matched[before[next].Name] = a
		used[i] = true
		next++
	}

	for i, a := range args {
		if !used[i] {
			dots = append(dots, a)
		}
	}
	return matched, dots
}

type callScanner struct {
	sigs  map[*ast.FuncLit]*Signature
	pipes map[*ast.Call]pipeInput
	sites []*CallSite
}

type pipeInput struct {
	lhs ast.Node
	op  string
}

func scanCalls(file *ast.File, sigs []*Signature, index *Index) []*CallSite {
	s := &callScanner{
		sigs:  make(map[*ast.FuncLit]*Signature, len(sigs)),
		pipes: make(map[*ast.Call]pipeInput),
	}
	for _, sig := range sigs {
		s.sigs[sig.Func] = sig
	}
	astutil.Walk(file.Exprs, func(node ast.Node, _ ast.Node, _ int) {
		bin, ok := node.(*ast.Binary)
		if !ok || (bin.Op != "|>" && bin.Op != "%>%") {
			return
		}
		if call, ok := bin.Y.(*ast.Call); ok {
			s.pipes[call] = pipeInput{lhs: bin.X, op: bin.Op}
		}
	})

	scope := NewScope(ScopeFile, index.Scope(), nil)
	s.define(file.Exprs, scope)
	for _, expr := range file.Exprs {
		s.walk(expr, scope, TopLevel)
	}
	sort.SliceStable(s.sites, func(i, j int) bool {
		return lessLoc(s.sites[i].Pos, s.sites[j].Pos)
	})
	return s.sites
}

// define adds every name assigned in body to scope, without descending
// into nested functions.  Definitions are hoisted so calls made before a
// local definition still see it.
func (s *callScanner) define(body []ast.Node, scope *Scope) {
	var visit func(n ast.Node)
	visit = func(n ast.Node) {
		switch x := n.(type) {
		case *ast.FuncLit:
			return
		case *ast.Call:
			if astutil.QuotingFuncs[astutil.CallName(x)] {
				return
			}
		case *ast.For:
			if x.Var != nil {
				scope.Define(&Symbol{Name: x.Var.Name, Kind: SymVariable, Source: x.Var.Pos()})
			}
		case *ast.Binary:
			if name, value, ok := astutil.AssignTarget(x); ok && x.Op != "<<-" && x.Op != "->>" {
				sym := &Symbol{Name: name, Kind: SymVariable, Source: x.Pos()}
				if fn, ok := value.(*ast.FuncLit); ok {
					sym.Kind = SymFunction
					sym.Signature = s.sigs[fn]
				}
				scope.Define(sym)
			}
		}
		for _, c := range ast.Children(n) {
			visit(c)
		}
	}
	for _, n := range body {
		visit(n)
	}
}

func (s *callScanner) walk(n ast.Node, scope *Scope, caller string) {
	switch x := n.(type) {
	case nil:
		return
	case *ast.FuncLit:
		inner := NewScope(ScopeFunction, scope, x)
		for _, p := range x.Params {
			if p.Name == ast.Dots {
				continue
			}
			inner.Define(&Symbol{Name: p.Name, Kind: SymParameter, Source: p.NamePos})
		}
		s.define([]ast.Node{x.Body}, inner)
		if sig := s.sigs[x]; sig != nil {
			caller = sig.Name
		}
		for _, c := range ast.Children(x) {
			s.walk(c, inner, caller)
		}
		return
	case *ast.Call:
		if astutil.QuotingFuncs[astutil.CallName(x)] {
			return
		}
		s.visitCall(x, scope, caller)
	}
	for _, c := range ast.Children(n) {
		s.walk(c, scope, caller)
	}
}

func (s *callScanner) visitCall(call *ast.Call, scope *Scope, caller string) {
	head := astutil.HeadIdent(call)
	if head == nil {
		return
	}
	sym := scope.LookupFunction(head.Name)
	if sym == nil || !sym.Signature.HasDots() {
		return
	}
	site := &CallSite{
		Pos:    head.Pos(),
		Caller: caller,
		Target: sym.Signature,
		Call:   call,
	}
	if in, ok := s.pipes[call]; ok && !(in.op == "%>%" && hasPlaceholder(call)) {
		site.Args = append(site.Args, CallArg{Pos: in.lhs.Pos(), Value: in.lhs, Implicit: true})
	}
	for _, a := range call.Args {
		site.Args = append(site.Args, CallArg{Name: a.Name, Pos: a.Pos(), Value: a.Value})
	}
	site.Matched, site.Dots = ResolveCall(site.Target, site.Args)
	s.sites = append(s.sites, site)
}

// hasPlaceholder reports whether a magrittr pipe call names its input
// explicitly with the . placeholder.
func hasPlaceholder(call *ast.Call) bool {
	for _, a := range call.Args {
		if id, ok := a.Value.(*ast.Ident); ok && id.Name == "." {
			return true
		}
	}
	return false
}
