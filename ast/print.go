// Copyright © 2024 The dotlint authors

package ast

import (
	"strings"
)

// String renders n as a fully parenthesized prefix expression.  Calls are
// rendered (fun args...), operators (op x y) and special forms with their
// keyword at the head.  Empty arguments render as _.
func String(n Node) string {
	var b strings.Builder
	write(&b, n)
	return b.String()
}

func write(b *strings.Builder, n Node) {
	switch x := n.(type) {
	case nil:
		b.WriteString("<nil>")
	case *Ident:
		b.WriteString(x.Name)
	case *Literal:
		b.WriteString(x.Value)
	case *Call:
		b.WriteString("(")
		write(b, x.Fun)
		writeArgs(b, x.Args)
		b.WriteString(")")
	case *Index:
		if x.Double {
			b.WriteString("([[ ")
		} else {
			b.WriteString("([ ")
		}
		write(b, x.X)
		writeArgs(b, x.Args)
		b.WriteString(")")
	case *FuncLit:
		b.WriteString("(function (")
		for i, p := range x.Params {
			if i > 0 {
				b.WriteString(" ")
			}
			b.WriteString(p.Name)
			if p.Default != nil {
				b.WriteString("=")
				write(b, p.Default)
			}
		}
		b.WriteString(") ")
		write(b, x.Body)
		b.WriteString(")")
	case *Binary:
		b.WriteString("(")
		b.WriteString(x.Op)
		b.WriteString(" ")
		write(b, x.X)
		b.WriteString(" ")
		write(b, x.Y)
		b.WriteString(")")
	case *Unary:
		b.WriteString("(")
		b.WriteString(x.Op)
		b.WriteString(" ")
		write(b, x.X)
		b.WriteString(")")
	case *Block:
		b.WriteString("({")
		for _, s := range x.Stmts {
			b.WriteString(" ")
			write(b, s)
		}
		b.WriteString(")")
	case *Paren:
		b.WriteString("(( ")
		write(b, x.X)
		b.WriteString(")")
	case *If:
		b.WriteString("(if ")
		write(b, x.Cond)
		b.WriteString(" ")
		write(b, x.Then)
		if x.Else != nil {
			b.WriteString(" ")
			write(b, x.Else)
		}
		b.WriteString(")")
	case *For:
		b.WriteString("(for ")
		write(b, x.Var)
		b.WriteString(" ")
		write(b, x.Seq)
		b.WriteString(" ")
		write(b, x.Body)
		b.WriteString(")")
	case *While:
		b.WriteString("(while ")
		write(b, x.Cond)
		b.WriteString(" ")
		write(b, x.Body)
		b.WriteString(")")
	case *Repeat:
		b.WriteString("(repeat ")
		write(b, x.Body)
		b.WriteString(")")
	case *Keyword:
		b.WriteString(x.Name)
	case *Bad:
		b.WriteString("<bad>")
	}
}

func writeArgs(b *strings.Builder, args []*Arg) {
	for _, a := range args {
		b.WriteString(" ")
		if a.Name != "" {
			b.WriteString(a.Name)
			b.WriteString("=")
			if a.Value == nil {
				continue
			}
		} else if a.Value == nil {
			b.WriteString("_")
			continue
		}
		write(b, a.Value)
	}
}
