// Copyright © 2024 The dotlint authors

package rdparser

import (
	"fmt"
	"strings"
	"testing"

	"github.com/luthersystems/dotlint/ast"
	"github.com/luthersystems/dotlint/parser/lexer"
	"github.com/luthersystems/dotlint/parser/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParser(t *testing.T) {
	tests := []struct {
		source string
		output string
	}{
		{`0`, `0`},
		{`-1`, `(- 1)`},
		{`"xyz"`, `"xyz"`},
		{`x <- 1`, `(<- x 1)`},
		{`a <- b <- 3`, `(<- a (<- b 3))`},
		{`1 -> a`, `(-> 1 a)`},
		{`1 + 2 * 3`, `(+ 1 (* 2 3))`},
		{`-2^2`, `(- (^ 2 2))`},
		{`-2:3`, `(: (- 2) 3)`},
		{`!a && b`, `(&& (! a) b)`},
		{`y ~ x + z`, `(~ y (+ x z))`},
		{`f(...)`, `(f ...)`},
		{`f <- function(x, ...) sum(c(...))`, `(<- f (function (x ...) (sum (c ...))))`},
		{`function(x = 1, ...) NULL`, `(function (x=1 ...) NULL)`},
		{`\(x) x + 1`, `(function (x) (+ x 1))`},
		{`x |> f(y)`, `(|> x (f y))`},
		{`x %>% f()`, `(%>% x (f))`},
		{`stats::median(x, na.rm = TRUE)`, `((:: stats median) x na.rm=TRUE)`},
		{`x$y$z`, `($ ($ x y) z)`},
		{`x[1, ]`, `([ x 1 _)`},
		{`x[[1]]`, `([[ x 1)`},
		{`f(x = )`, `(f x=)`},
		{`f("a b" = 1)`, `(f a b=1)`},
		{"f(a,\n  b)", `(f a b)`},
		{"x +\n  y", `(+ x y)`},
		{`if (a) b else c`, `(if a b c)`},
		{"{\n  if (a) b\n  else c\n}", `({ (if a b c))`},
		{"function(x) {\n  y <- x\n  y\n}", `(function (x) ({ (<- y x) y))`},
		{`for (i in 1:10) print(i)`, `(for i (: 1 10) (print i))`},
		{`while (TRUE) break`, `(while TRUE break)`},
		{`repeat { next }`, `(repeat ({ next))`},
		{`(a + b) * c`, `(* (( (+ a b)) c)`},
	}

	for i, test := range tests {
		name := fmt.Sprintf("test%d", i)
		p := New(name, token.NewScanner(name, strings.NewReader(test.source)))
		file, errs := p.ParseFile()
		if !assert.Empty(t, errs, "test %d", i) {
			continue
		}
		if !assert.Len(t, file.Exprs, 1, "test %d", i) {
			continue
		}
		testNodeLocation(t, file.Exprs[0])
		assert.Equal(t, test.output, ast.String(file.Exprs[0]), "test %d", i)
	}
}

func TestMultipleExpressions(t *testing.T) {
	src := "x <- 1; y <- 2\n\nz # trailing\n"
	p := New("test", token.NewScanner("test", strings.NewReader(src)))
	file, errs := p.ParseFile()
	require.Empty(t, errs)
	require.Len(t, file.Exprs, 3)
	assert.Equal(t, "(<- x 1)", ast.String(file.Exprs[0]))
	assert.Equal(t, "(<- y 2)", ast.String(file.Exprs[1]))
	assert.Equal(t, "z", ast.String(file.Exprs[2]))
	require.Len(t, file.Comments, 1)
	assert.Equal(t, "# trailing", file.Comments[0].Text)
	assert.Equal(t, 3, file.Comments[0].Source.Line)
}

func TestLocations(t *testing.T) {
	src := "f <- function(x, ...) {\n  g(x, ...)\n}\n"
	p := New("test.R", token.NewScanner("test.R", strings.NewReader(src)))
	file, errs := p.ParseFile()
	require.Empty(t, errs)
	require.Len(t, file.Exprs, 1)

	assign := file.Exprs[0].(*ast.Binary)
	assert.Equal(t, "test.R:1:1", assign.Pos().String())
	fn := assign.Y.(*ast.FuncLit)
	assert.Equal(t, "test.R:1:6", fn.Pos().String())
	assert.Equal(t, 1, fn.DotsIndex())
	assert.Equal(t, "test.R:1:18", fn.Params[1].Pos().String())
	call := fn.Body.(*ast.Block).Stmts[0].(*ast.Call)
	assert.Equal(t, "test.R:2:3", call.Pos().String())
	assert.Equal(t, "test.R:2:8", call.Args[1].Pos().String())
}

func TestErrors(t *testing.T) {
	tests := []struct {
		source string
		errmsg string
	}{
		{`f(1, 2`, `test0:1:2: unmatched (`},
		{`x <- )`, `test1:1:6: unexpected ")"`},
		{`"abc`, `test2:1:1: unterminated string literal`},
		{"f <- function(x) {\n  x\n", `test3:1:18: unterminated block: missing }`},
		{`a b`, `test4:1:3: unexpected identifier "b"`},
	}

	for i, test := range tests {
		name := fmt.Sprintf("test%d", i)
		p := New(name, token.NewScanner(name, strings.NewReader(test.source)))
		_, errs := p.ParseFile()
		if !assert.Len(t, errs, 1, "test %d", i) {
			continue
		}
		assert.Equal(t, test.errmsg, errs[0].Error())
	}
}

func TestRecovery(t *testing.T) {
	src := `f <- function(...) {
  sum(c(...))

g <- function(...) h(...)
k <- 1
`
	p := New("test", token.NewScanner("test", strings.NewReader(src)))
	file, errs := p.ParseFile()
	require.Len(t, errs, 1)
	assert.Equal(t, "test:1:20: unterminated block: missing }", errs[0].Error())
	require.Len(t, file.Exprs, 2)
	assert.Equal(t, "(<- g (function (...) (h ...)))", ast.String(file.Exprs[0]))
	assert.Equal(t, "(<- k 1)", ast.String(file.Exprs[1]))
}

func TestParseSingle(t *testing.T) {
	p := New("test", token.NewScanner("test", strings.NewReader("\n\nf(x)\n")))
	x, err := p.Parse()
	require.NoError(t, err)
	assert.Equal(t, "(f x)", ast.String(x))
}

func testNodeLocation(t *testing.T, n ast.Node) {
	ast.Inspect(n, func(n ast.Node) bool {
		if n.Pos() == nil {
			t.Errorf("node missing source location: %s", ast.String(n))
		}
		return true
	})
}

func TestParser_TokenGenerator(t *testing.T) {
	lex := lexer.New(token.NewScanner("gen.R", strings.NewReader("f(x, ...) # trailing\n")))
	var pending []*token.Token
	gen := TokenGenerator(func() []*token.Token {
		if len(pending) == 0 {
			pending = lex.ReadToken()
		}
		tok := pending[0]
		pending = pending[1:]
		return []*token.Token{tok}
	})
	src := NewTokenStreamSource(gen)
	require.Len(t, src.Comments, 1)
	file, errs := NewFromSource("gen.R", src).ParseFile()
	require.Empty(t, errs)
	require.Len(t, file.Exprs, 1)
	assert.Equal(t, "(f x ...)", ast.String(file.Exprs[0]))
}
