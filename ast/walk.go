// Copyright © 2024 The dotlint authors

package ast

// Children returns the direct child nodes of n in source order.  Argument
// and parameter wrappers are skipped; their values are returned directly.
func Children(n Node) []Node {
	var out []Node
	add := func(c Node) {
		if c != nil {
			out = append(out, c)
		}
	}
	switch x := n.(type) {
	case *Call:
		add(x.Fun)
		for _, a := range x.Args {
			add(a.Value)
		}
	case *Index:
		add(x.X)
		for _, a := range x.Args {
			add(a.Value)
		}
	case *FuncLit:
		for _, p := range x.Params {
			add(p.Default)
		}
		add(x.Body)
	case *Binary:
		add(x.X)
		add(x.Y)
	case *Unary:
		add(x.X)
	case *Block:
		for _, s := range x.Stmts {
			add(s)
		}
	case *Paren:
		add(x.X)
	case *If:
		add(x.Cond)
		add(x.Then)
		add(x.Else)
	case *For:
		add(x.Var)
		add(x.Seq)
		add(x.Body)
	case *While:
		add(x.Cond)
		add(x.Body)
	case *Repeat:
		add(x.Body)
	}
	return out
}

// Inspect traverses the tree rooted at n depth-first, calling f for each
// node.  Children are skipped when f returns false.
func Inspect(n Node, f func(Node) bool) {
	if n == nil || !f(n) {
		return
	}
	for _, c := range Children(n) {
		Inspect(c, f)
	}
}
