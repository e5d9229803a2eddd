// Copyright © 2024 The dotlint authors

// Package ast declares the syntax tree produced by the R parser.
package ast

import (
	"strings"

	"github.com/luthersystems/dotlint/parser/token"
)

// Node is implemented by every syntax tree node.
type Node interface {
	// Pos returns the location of the first token of the node.
	Pos() *token.Location
}

// Dots is the name of the variadic parameter.
const Dots = "..."

type (
	// Ident is a name.  Backticks are stripped from quoted names.
	Ident struct {
		NamePos *token.Location
		Name    string
	}

	// Literal is a number, string or reserved constant (TRUE, NULL, NA, ...).
	Literal struct {
		ValuePos *token.Location
		Kind     token.Type
		Value    string
	}

	// Arg is a single argument of a call or index expression.  Name is empty
	// for positional arguments and Value is nil for empty arguments such as
	// the first argument of x[, 1].
	Arg struct {
		NamePos *token.Location
		Name    string
		Value   Node
	}

	// Call is a function call fun(args).
	Call struct {
		Fun    Node
		Lparen *token.Location
		Args   []*Arg
	}

	// Index is x[args] or, when Double is set, x[[args]].
	Index struct {
		X      Node
		Lbrack *token.Location
		Args   []*Arg
		Double bool
	}

	// Param is one formal parameter of a function literal.
	Param struct {
		NamePos *token.Location
		Name    string
		Default Node // nil when the parameter has no default
	}

	// FuncLit is function(params) body or the \(params) shorthand.
	FuncLit struct {
		Func   *token.Location
		Lambda bool
		Params []*Param
		Body   Node
	}

	// Binary is x op y, including assignment, namespace access (::),
	// component access ($ and @) and pipes.
	Binary struct {
		X     Node
		OpPos *token.Location
		Op    string
		Y     Node
	}

	// Unary is op x.
	Unary struct {
		OpPos *token.Location
		Op    string
		X     Node
	}

	// Block is { stmts }.
	Block struct {
		Lbrace *token.Location
		Stmts  []Node
	}

	// Paren is ( x ).
	Paren struct {
		Lparen *token.Location
		X      Node
	}

	If struct {
		If   *token.Location
		Cond Node
		Then Node
		Else Node // may be nil
	}

	For struct {
		For  *token.Location
		Var  *Ident
		Seq  Node
		Body Node
	}

	While struct {
		While *token.Location
		Cond  Node
		Body  Node
	}

	Repeat struct {
		Repeat *token.Location
		Body   Node
	}

	// Keyword is break or next.
	Keyword struct {
		KwPos *token.Location
		Name  string
	}

	// Bad is a placeholder for source that failed to parse.
	Bad struct {
		From *token.Location
	}
)

func (x *Ident) Pos() *token.Location   { return x.NamePos }
func (x *Literal) Pos() *token.Location { return x.ValuePos }
func (x *Call) Pos() *token.Location    { return x.Fun.Pos() }
func (x *Index) Pos() *token.Location   { return x.X.Pos() }
func (x *FuncLit) Pos() *token.Location { return x.Func }
func (x *Binary) Pos() *token.Location  { return x.X.Pos() }
func (x *Unary) Pos() *token.Location   { return x.OpPos }
func (x *Block) Pos() *token.Location   { return x.Lbrace }
func (x *Paren) Pos() *token.Location   { return x.Lparen }
func (x *If) Pos() *token.Location      { return x.If }
func (x *For) Pos() *token.Location     { return x.For }
func (x *While) Pos() *token.Location   { return x.While }
func (x *Repeat) Pos() *token.Location  { return x.Repeat }
func (x *Keyword) Pos() *token.Location { return x.KwPos }
func (x *Bad) Pos() *token.Location     { return x.From }

func (x *Arg) Pos() *token.Location {
	if x.NamePos != nil {
		return x.NamePos
	}
	if x.Value != nil {
		return x.Value.Pos()
	}
	return nil
}

func (x *Param) Pos() *token.Location { return x.NamePos }

// File is a parsed source file.
type File struct {
	Name     string
	Exprs    []Node
	Comments []*token.Token
}

// IsDots reports whether n is the bare identifier "...".
func IsDots(n Node) bool {
	id, ok := n.(*Ident)
	return ok && id.Name == Dots
}

// IsDotDotN reports whether name is one of ..1, ..2, ...
func IsDotDotN(name string) bool {
	if len(name) < 3 || !strings.HasPrefix(name, "..") {
		return false
	}
	for _, c := range name[2:] {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// IsAssign reports whether op assigns to its left (or, for -> and ->>, right)
// operand.
func IsAssign(op string) bool {
	switch op {
	case "<-", "<<-", "=", "->", "->>", ":=":
		return true
	}
	return false
}

// HasDots reports whether the function literal declares a ... parameter.
func (x *FuncLit) HasDots() bool {
	return x.DotsIndex() >= 0
}

// DotsIndex returns the index of the ... parameter or -1.
func (x *FuncLit) DotsIndex() int {
	for i, p := range x.Params {
		if p.Name == Dots {
			return i
		}
	}
	return -1
}

// Unquote strips surrounding backticks or quotes from a name token.
func Unquote(text string) string {
	if len(text) >= 2 {
		first, last := text[0], text[len(text)-1]
		if first == last && (first == '`' || first == '"' || first == '\'') {
			return text[1 : len(text)-1]
		}
	}
	return text
}
