// Copyright © 2024 The dotlint authors

package analysis

import (
	"fmt"
	"strings"

	"github.com/luthersystems/dotlint/ast"
	"github.com/luthersystems/dotlint/astutil"
	"github.com/luthersystems/dotlint/parser/rdparser"
	"github.com/luthersystems/dotlint/parser/token"
)

// Anonymous is the name of a function literal that is not bound to a name.
const Anonymous = "<anonymous>"

// Param is one formal parameter of a function.
type Param struct {
	Name    string
	Default ast.Node // nil when the parameter has no default
	Pos     *token.Location
}

// HasDefault reports whether the parameter declares a default value.
func (p Param) HasDefault() bool {
	return p.Default != nil
}

// Signature describes a function definition.
type Signature struct {
	Name      string
	Params    []Param
	DotsIndex int // index of ... in Params or -1
	File      string
	Pos       *token.Location
	Body      ast.Node
	Func      *ast.FuncLit

	// TopLevel is set for named functions assigned at the top level of
	// a file.  Only those are visible to other files.
	TopLevel bool

	// Builtin is set for signatures from the base R table.
	Builtin bool

	// Swallows is set for builtins that accept dots and silently ignore
	// them.
	Swallows bool
}

// HasDots reports whether the function declares a ... parameter.
func (sig *Signature) HasDots() bool {
	return sig != nil && sig.DotsIndex >= 0
}

// BeforeDots returns the formals declared before ..., which are the only
// ones R matches partially and positionally.  All formals are returned when
// the function has no dots.
func (sig *Signature) BeforeDots() []Param {
	if sig.DotsIndex < 0 {
		return sig.Params
	}
	return sig.Params[:sig.DotsIndex]
}

// Formal returns the parameter with the given name.
func (sig *Signature) Formal(name string) (Param, bool) {
	for _, p := range sig.Params {
		if p.Name == name {
			return p, true
		}
	}
	return Param{}, false
}

// String renders the signature as name(params).
func (sig *Signature) String() string {
	var b strings.Builder
	b.WriteString(sig.Name)
	b.WriteString("(")
	for i, p := range sig.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.Name)
		if p.Default != nil {
			b.WriteString(" = ")
			b.WriteString(ast.String(p.Default))
		}
	}
	b.WriteString(")")
	return b.String()
}

// NewSignature returns the signature of a function literal.
func NewSignature(name string, fn *ast.FuncLit) *Signature {
	sig := &Signature{
		Name:      name,
		DotsIndex: fn.DotsIndex(),
		Pos:       fn.Pos(),
		Body:      fn.Body,
		Func:      fn,
	}
	if sig.Pos != nil {
		sig.File = sig.Pos.File
	}
	for _, p := range fn.Params {
		sig.Params = append(sig.Params, Param{Name: p.Name, Default: p.Default, Pos: p.NamePos})
	}
	return sig
}

// ExtractSignature parses the text of a single function definition, either
// a bare function literal or an assignment of one to a name.  It returns a
// *rdparser.ParseError when src is not a syntactically valid function
// definition.
func ExtractSignature(src, filename string) (*Signature, error) {
	p := rdparser.New(filename, token.NewScanner(filename, strings.NewReader(src)))
	file, errs := p.ParseFile()
	if len(errs) > 0 {
		return nil, errs[0]
	}
	if len(file.Exprs) != 1 {
		return nil, &rdparser.ParseError{
			Source: &token.Location{File: filename, Line: 1, Col: 1},
			Msg:    fmt.Sprintf("expected a single function definition, found %d expressions", len(file.Exprs)),
		}
	}
	expr := file.Exprs[0]
	name := Anonymous
	if target, value, ok := astutil.AssignTarget(expr); ok {
		name, expr = target, value
	}
	fn, ok := expr.(*ast.FuncLit)
	if !ok {
		return nil, &rdparser.ParseError{
			Source: expr.Pos(),
			Msg:    "not a function definition",
		}
	}
	sig := NewSignature(name, fn)
	sig.TopLevel = name != Anonymous
	return sig, nil
}

// Signatures returns the signature of every function literal in file, in
// source order.  Nested and anonymous functions are included.  A function
// is named after the variable it is assigned to or the argument name it is
// passed under, e.g. list(f = function(x) x).
func Signatures(file *ast.File) []*Signature {
	names := make(map[*ast.FuncLit]string)
	topLevel := make(map[*ast.FuncLit]bool)
	for _, expr := range file.Exprs {
		if _, value, ok := astutil.AssignTarget(expr); ok {
			if fn, ok := value.(*ast.FuncLit); ok {
				topLevel[fn] = true
			}
		}
	}
	var sigs []*Signature
	astutil.Walk(file.Exprs, func(node ast.Node, _ ast.Node, _ int) {
		switch x := node.(type) {
		case *ast.Binary:
			if name, value, ok := astutil.AssignTarget(x); ok {
				if fn, ok := value.(*ast.FuncLit); ok {
					names[fn] = name
				}
			}
		case *ast.Call:
			for _, arg := range x.Args {
				if fn, ok := arg.Value.(*ast.FuncLit); ok && arg.Name != "" {
					names[fn] = arg.Name
				}
			}
		case *ast.FuncLit:
			name, ok := names[x]
			if !ok {
				name = Anonymous
			}
			sig := NewSignature(name, x)
			sig.TopLevel = topLevel[x]
			if sig.File == "" {
				sig.File = file.Name
			}
			sigs = append(sigs, sig)
		}
	})
	return sigs
}

func lessLoc(a, b *token.Location) bool {
	switch {
	case a == nil || b == nil:
		return b != nil
	case a.File != b.File:
		return a.File < b.File
	case a.Line != b.Line:
		return a.Line < b.Line
	default:
		return a.Col < b.Col
	}
}
