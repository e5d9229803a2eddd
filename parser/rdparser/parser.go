// Copyright © 2024 The dotlint authors

// Package rdparser is a recursive descent parser for R source text.
//
// The parser is fault tolerant at the top level: a top-level expression that
// fails to parse is reported as a *ParseError and parsing resumes at the next
// line that starts in column 1, so a single unterminated definition does not
// hide the definitions that follow it.
package rdparser

import (
	"fmt"
	"io"

	"github.com/luthersystems/dotlint/ast"
	"github.com/luthersystems/dotlint/parser/token"
)

// ParseError reports source text that is not valid R.
type ParseError struct {
	Source *token.Location
	Msg    string
}

func (err *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", err.Source, err.Msg)
}

// binary operator precedence, lowest first
const (
	precLowest = iota
	precHelp
	precEqAssign
	precLeftAssign
	precRightAssign
	precTilde
	precOr
	precAnd
	precNot
	precCompare
	precAdd
	precMul
	precSpecial
	precRange
	precUnary
	precPower
)

type opInfo struct {
	prec  int
	right bool
}

var binaryOps = map[string]opInfo{
	"?":   {precHelp, false},
	"=":   {precEqAssign, true},
	"<-":  {precLeftAssign, true},
	"<<-": {precLeftAssign, true},
	":=":  {precLeftAssign, true},
	"->":  {precRightAssign, false},
	"->>": {precRightAssign, false},
	"~":   {precTilde, false},
	"|":   {precOr, false},
	"||":  {precOr, false},
	"&":   {precAnd, false},
	"&&":  {precAnd, false},
	"==":  {precCompare, false},
	"!=":  {precCompare, false},
	"<":   {precCompare, false},
	">":   {precCompare, false},
	"<=":  {precCompare, false},
	">=":  {precCompare, false},
	"+":   {precAdd, false},
	"-":   {precAdd, false},
	"*":   {precMul, false},
	"/":   {precMul, false},
	"|>":  {precSpecial, false},
	":":   {precRange, false},
	"^":   {precPower, true},
	"**":  {precPower, true},
}

// Parser is an R parser.
type Parser struct {
	src  *TokenSource
	name string

	// nesting records whether each open delimiter makes newlines
	// insignificant: true for ( and [, false for {.
	nesting []bool
	err     *ParseError
}

// NewFromSource initializes and returns a Parser that reads tokens from src.
func NewFromSource(name string, src *TokenSource) *Parser {
	p := &Parser{
		src:  src,
		name: name,
	}
	src.skipNewlines = p.newlinesInsignificant
	return p
}

// New initializes and returns a new Parser that reads tokens from scanner.
func New(name string, scanner *token.Scanner) *Parser {
	return NewFromSource(name, NewTokenSource(scanner))
}

// ParseFile parses every top-level expression in the source.  Expressions
// that fail to parse are omitted from the returned file and reported in the
// returned slice instead.
func (p *Parser) ParseFile() (*ast.File, []*ParseError) {
	file := &ast.File{Name: p.name}
	var errs []*ParseError
	for {
		p.nesting = nil
		p.err = nil
		for p.src.AcceptType(token.NEWLINE, token.SEMICOLON) {
		}
		if p.src.IsEOF() {
			break
		}
		mark := p.src.Mark()
		x := p.parseExpr(precLowest)
		if p.err == nil {
			p.expectEnd()
		}
		if p.err != nil {
			errs = append(errs, p.err)
			p.src.SkipToLineStart(mark)
			continue
		}
		file.Exprs = append(file.Exprs, x)
	}
	file.Comments = p.src.Comments
	return file, errs
}

// Parse parses a single top-level expression.  It returns io.EOF when the
// source holds no expression.
func (p *Parser) Parse() (ast.Node, error) {
	for p.src.AcceptType(token.NEWLINE, token.SEMICOLON) {
	}
	if p.src.IsEOF() {
		return nil, io.EOF
	}
	x := p.parseExpr(precLowest)
	if p.err == nil {
		p.expectEnd()
	}
	if p.err != nil {
		return nil, p.err
	}
	return x, nil
}

func (p *Parser) expectEnd() {
	switch tok := p.src.PeekRaw(); tok.Type {
	case token.NEWLINE, token.SEMICOLON, token.EOF:
	default:
		p.errorf(tok.Source, "unexpected %s", describe(tok))
	}
}

func (p *Parser) newlinesInsignificant() bool {
	return len(p.nesting) > 0 && p.nesting[len(p.nesting)-1]
}

func (p *Parser) push(skipNewlines bool) {
	p.nesting = append(p.nesting, skipNewlines)
}

func (p *Parser) pop() {
	p.nesting = p.nesting[:len(p.nesting)-1]
}

func (p *Parser) skipNewlines() {
	for p.src.PeekRaw().Type == token.NEWLINE {
		p.src.Scan()
	}
}

func (p *Parser) parseExpr(minPrec int) ast.Node {
	x := p.parseUnary()
	for p.err == nil {
		tok := p.src.Peek()
		var op string
		switch tok.Type {
		case token.OPERATOR:
			op = tok.Text
		case token.EQ_ASSIGN:
			op = "="
		default:
			return x
		}
		info, ok := binaryOps[op]
		if !ok {
			if len(op) >= 2 && op[0] == '%' {
				info = opInfo{precSpecial, false}
			} else {
				return x
			}
		}
		if info.prec < minPrec {
			return x
		}
		p.src.Scan()
		p.skipNewlines()
		next := info.prec + 1
		if info.right {
			next = info.prec
		}
		y := p.parseExpr(next)
		x = &ast.Binary{X: x, OpPos: tok.Source, Op: op, Y: y}
	}
	return x
}

func (p *Parser) parseUnary() ast.Node {
	tok := p.src.Peek()
	if tok.Type != token.OPERATOR {
		return p.parsePostfix(p.parsePrimary())
	}
	var operandPrec int
	switch tok.Text {
	case "-", "+":
		operandPrec = precPower
	case "!":
		operandPrec = precCompare
	case "~":
		operandPrec = precOr
	case "?":
		operandPrec = precEqAssign
	default:
		p.src.Scan()
		return p.errorf(tok.Source, "unexpected %s", describe(tok))
	}
	p.src.Scan()
	p.skipNewlines()
	x := p.parseExpr(operandPrec)
	return &ast.Unary{OpPos: tok.Source, Op: tok.Text, X: x}
}

func (p *Parser) parsePrimary() ast.Node {
	tok := p.src.Peek()
	switch tok.Type {
	case token.IDENT:
		p.src.Scan()
		return &ast.Ident{NamePos: tok.Source, Name: ast.Unquote(tok.Text)}
	case token.NUMBER, token.STRING, token.CONST:
		p.src.Scan()
		return &ast.Literal{ValuePos: tok.Source, Kind: tok.Type, Value: tok.Text}
	case token.FUNCTION, token.LAMBDA:
		return p.parseFunction()
	case token.PAREN_L:
		p.src.Scan()
		p.push(true)
		x := p.parseExpr(precLowest)
		p.expect(token.PAREN_R, tok)
		p.pop()
		return &ast.Paren{Lparen: tok.Source, X: x}
	case token.BRACE_L:
		return p.parseBlock()
	case token.IF:
		return p.parseIf()
	case token.FOR:
		return p.parseFor()
	case token.WHILE:
		p.src.Scan()
		cond := p.parseCondition()
		p.skipNewlines()
		body := p.parseExpr(precLowest)
		return &ast.While{While: tok.Source, Cond: cond, Body: body}
	case token.REPEAT:
		p.src.Scan()
		p.skipNewlines()
		body := p.parseExpr(precLowest)
		return &ast.Repeat{Repeat: tok.Source, Body: body}
	case token.BREAK, token.NEXT:
		p.src.Scan()
		return &ast.Keyword{KwPos: tok.Source, Name: tok.Text}
	case token.ERROR, token.INVALID:
		p.src.Scan()
		return p.errorf(tok.Source, "%s", tok.Text)
	case token.EOF:
		return p.errorf(tok.Source, "unexpected EOF")
	default:
		p.src.Scan()
		return p.errorf(tok.Source, "unexpected %s", describe(tok))
	}
}

// parsePostfix parses calls, indexing, namespace and component access.  A
// postfix operator must appear on the same line as its operand unless
// newlines are currently insignificant.
func (p *Parser) parsePostfix(x ast.Node) ast.Node {
	for p.err == nil {
		tok := p.src.Peek()
		switch {
		case tok.Type == token.PAREN_L:
			p.src.Scan()
			args := p.parseArgs(tok, token.PAREN_R)
			x = &ast.Call{Fun: x, Lparen: tok.Source, Args: args}
		case tok.Type == token.BRACKET_L:
			p.src.Scan()
			args := p.parseArgs(tok, token.BRACKET_R)
			x = &ast.Index{X: x, Lbrack: tok.Source, Args: args}
		case tok.Type == token.DBRACKET_L:
			p.src.Scan()
			args := p.parseArgs(tok, token.BRACKET_R)
			p.expect(token.BRACKET_R, tok)
			x = &ast.Index{X: x, Lbrack: tok.Source, Args: args, Double: true}
		case tok.Type == token.OPERATOR && isAccessOp(tok.Text):
			p.src.Scan()
			p.skipNewlines()
			name := p.src.Peek()
			var y ast.Node
			switch {
			case name.Type == token.IDENT || name.Type == token.STRING:
				p.src.Scan()
				y = &ast.Ident{NamePos: name.Source, Name: ast.Unquote(name.Text)}
			case name.Type == token.PAREN_L && (tok.Text == "$" || tok.Text == "@"):
				y = p.parsePrimary()
			case isKeyword(name):
				// x$if and x$TRUE name components
				p.src.Scan()
				y = &ast.Ident{NamePos: name.Source, Name: name.Text}
			default:
				p.src.Scan()
				return p.errorf(name.Source, "unexpected %s after %s", describe(name), tok.Text)
			}
			x = &ast.Binary{X: x, OpPos: tok.Source, Op: tok.Text, Y: y}
		default:
			return x
		}
	}
	return x
}

func isKeyword(tok *token.Token) bool {
	typ, ok := token.Keywords[tok.Text]
	return ok && typ == tok.Type
}

func isAccessOp(op string) bool {
	switch op {
	case "::", ":::", "$", "@":
		return true
	}
	return false
}

// parseArgs parses a comma separated argument list.  The opening delimiter
// has already been consumed.
func (p *Parser) parseArgs(open *token.Token, closing token.Type) []*ast.Arg {
	p.push(true)
	defer p.pop()
	var args []*ast.Arg
	if p.src.AcceptType(closing) {
		return nil
	}
	for p.err == nil {
		args = append(args, p.parseArg(closing))
		if p.err != nil {
			break
		}
		if p.src.AcceptType(token.COMMA) {
			if p.src.Peek().Type == closing {
				// trailing empty argument, e.g. x[1, ]
				args = append(args, &ast.Arg{})
				p.src.Scan()
				break
			}
			continue
		}
		p.expect(closing, open)
		break
	}
	return args
}

func (p *Parser) parseArg(closing token.Type) *ast.Arg {
	tok := p.src.Peek()
	if tok.Type == token.COMMA || tok.Type == closing {
		return &ast.Arg{}
	}
	mark := p.src.Mark()
	switch tok.Type {
	case token.IDENT, token.STRING, token.CONST:
		p.src.Scan()
		if p.src.AcceptType(token.EQ_ASSIGN) {
			arg := &ast.Arg{NamePos: tok.Source, Name: ast.Unquote(tok.Text)}
			if next := p.src.Peek().Type; next != token.COMMA && next != closing {
				arg.Value = p.parseExpr(precEqAssign + 1)
			}
			return arg
		}
		p.src.Reset(mark)
	}
	return &ast.Arg{Value: p.parseExpr(precEqAssign + 1)}
}

func (p *Parser) parseFunction() ast.Node {
	tok := p.src.Peek()
	p.src.Scan()
	fn := &ast.FuncLit{Func: tok.Source, Lambda: tok.Type == token.LAMBDA}
	open := p.src.Peek()
	if !p.src.AcceptType(token.PAREN_L) {
		return p.errorf(open.Source, "expected ( after %s, found %s", tok.Text, describe(open))
	}
	p.push(true)
	if !p.src.AcceptType(token.PAREN_R) {
		for p.err == nil {
			name := p.src.Peek()
			if name.Type != token.IDENT {
				p.src.Scan()
				p.errorf(name.Source, "expected parameter name, found %s", describe(name))
				break
			}
			p.src.Scan()
			param := &ast.Param{NamePos: name.Source, Name: ast.Unquote(name.Text)}
			if p.src.AcceptType(token.EQ_ASSIGN) {
				if next := p.src.Peek().Type; next != token.COMMA && next != token.PAREN_R {
					param.Default = p.parseExpr(precEqAssign + 1)
				}
			}
			fn.Params = append(fn.Params, param)
			if p.src.AcceptType(token.COMMA) {
				continue
			}
			p.expect(token.PAREN_R, open)
			break
		}
	}
	p.pop()
	if p.err != nil {
		return &ast.Bad{From: tok.Source}
	}
	p.skipNewlines()
	fn.Body = p.parseExpr(precLowest)
	return fn
}

func (p *Parser) parseBlock() ast.Node {
	open := p.src.Peek()
	p.src.Scan()
	block := &ast.Block{Lbrace: open.Source}
	p.push(false)
	defer p.pop()
	for p.err == nil {
		for p.src.AcceptType(token.NEWLINE, token.SEMICOLON) {
		}
		if p.src.AcceptType(token.BRACE_R) {
			return block
		}
		if p.src.IsEOF() {
			return p.errorf(open.Source, "unterminated block: missing }")
		}
		block.Stmts = append(block.Stmts, p.parseExpr(precLowest))
		if p.err != nil {
			break
		}
		switch tok := p.src.PeekRaw(); tok.Type {
		case token.NEWLINE, token.SEMICOLON, token.BRACE_R:
		case token.EOF:
			return p.errorf(open.Source, "unterminated block: missing }")
		default:
			return p.errorf(tok.Source, "unexpected %s", describe(tok))
		}
	}
	return block
}

// parseCondition parses the parenthesized condition of if and while.
func (p *Parser) parseCondition() ast.Node {
	open := p.src.Peek()
	if !p.src.AcceptType(token.PAREN_L) {
		return p.errorf(open.Source, "expected (, found %s", describe(open))
	}
	p.push(true)
	cond := p.parseExpr(precLowest)
	p.expect(token.PAREN_R, open)
	p.pop()
	return cond
}

func (p *Parser) parseIf() ast.Node {
	tok := p.src.Peek()
	p.src.Scan()
	x := &ast.If{If: tok.Source}
	x.Cond = p.parseCondition()
	p.skipNewlines()
	x.Then = p.parseExpr(precLowest)
	if p.err != nil {
		return x
	}
	// At the top level a newline terminates the if; inside a block or
	// parentheses else may start on a following line.
	mark := p.src.Mark()
	if len(p.nesting) > 0 {
		p.skipNewlines()
	}
	if p.src.AcceptType(token.ELSE) {
		p.skipNewlines()
		x.Else = p.parseExpr(precLowest)
		return x
	}
	p.src.Reset(mark)
	return x
}

func (p *Parser) parseFor() ast.Node {
	tok := p.src.Peek()
	p.src.Scan()
	x := &ast.For{For: tok.Source}
	open := p.src.Peek()
	if !p.src.AcceptType(token.PAREN_L) {
		return p.errorf(open.Source, "expected ( after for, found %s", describe(open))
	}
	p.push(true)
	name := p.src.Peek()
	if name.Type != token.IDENT {
		p.pop()
		return p.errorf(name.Source, "expected loop variable, found %s", describe(name))
	}
	p.src.Scan()
	x.Var = &ast.Ident{NamePos: name.Source, Name: ast.Unquote(name.Text)}
	in := p.src.Peek()
	if !p.src.AcceptType(token.IN) {
		p.pop()
		return p.errorf(in.Source, "expected in, found %s", describe(in))
	}
	x.Seq = p.parseExpr(precLowest)
	p.expect(token.PAREN_R, open)
	p.pop()
	p.skipNewlines()
	x.Body = p.parseExpr(precLowest)
	return x
}

func (p *Parser) expect(typ token.Type, open *token.Token) {
	if p.err != nil {
		return
	}
	if p.src.AcceptType(typ) {
		return
	}
	tok := p.src.Peek()
	if tok.Type == token.EOF {
		p.errorf(open.Source, "unmatched %s", open.Text)
		return
	}
	p.errorf(tok.Source, "expected %s, found %s", typ, describe(tok))
}

// errorf records the first error of the current top-level expression and
// returns a placeholder node.
func (p *Parser) errorf(loc *token.Location, format string, v ...interface{}) ast.Node {
	if p.err == nil {
		p.err = &ParseError{Source: loc, Msg: fmt.Sprintf(format, v...)}
	}
	return &ast.Bad{From: loc}
}

func describe(tok *token.Token) string {
	switch tok.Type {
	case token.EOF:
		return "EOF"
	case token.NEWLINE:
		return "newline"
	case token.IDENT, token.NUMBER, token.STRING, token.CONST, token.OPERATOR:
		return fmt.Sprintf("%s %q", tok.Type, tok.Text)
	default:
		return fmt.Sprintf("%q", tok.Type.String())
	}
}
