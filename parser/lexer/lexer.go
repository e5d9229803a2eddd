// Copyright © 2024 The dotlint authors

// Package lexer turns R source text into tokens.
package lexer

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/luthersystems/dotlint/parser/token"
)

type LexFn func(*Lexer) []*token.Token

const (
	miscWordRunes = "0123456789._"
	hexDigits     = "0123456789abcdefABCDEF"
)

type Lexer struct {
	scanner *token.Scanner
	lex     LexFn
}

func New(s *token.Scanner) *Lexer {
	lex := &Lexer{
		scanner: s,
		lex:     (*Lexer).readToken,
	}
	return lex
}

// ReadToken returns the next tokens in the stream.  ReadToken never returns
// an empty slice and returns a token of type token.EOF once the input is
// exhausted.
func (lex *Lexer) ReadToken() []*token.Token {
	return lex.lex(lex)
}

func (lex *Lexer) readToken() []*token.Token {
	lex.skipWhitespace()
	if !lex.scanner.Accept(func(c rune) bool { return true }) {
		if lex.scanner.EOF() {
			return lex.emit(token.EOF, "")
		}
		err := lex.scanner.Err()
		if err != nil {
			lex.lex = (*Lexer).readEOF
			return lex.emitError(err, false)
		}
		return lex.emit(token.EOF, "")
	}
	switch c := lex.scanner.Rune(); c {
	case '\n':
		return lex.emitText(token.NEWLINE)
	case '#':
		lex.scanner.AcceptSeq(func(c rune) bool { return c != '\n' })
		return lex.emitText(token.COMMENT)
	case '(':
		return lex.emitText(token.PAREN_L)
	case ')':
		return lex.emitText(token.PAREN_R)
	case '{':
		return lex.emitText(token.BRACE_L)
	case '}':
		return lex.emitText(token.BRACE_R)
	case '[':
		if lex.scanner.AcceptRune('[') {
			return lex.emitText(token.DBRACKET_L)
		}
		return lex.emitText(token.BRACKET_L)
	case ']':
		return lex.emitText(token.BRACKET_R)
	case ',':
		return lex.emitText(token.COMMA)
	case ';':
		return lex.emitText(token.SEMICOLON)
	case '\\':
		return lex.emitText(token.LAMBDA)
	case '"', '\'':
		return lex.readString(c)
	case '`':
		return lex.readBacktick()
	case '%':
		return lex.readSpecialOperator()
	case '<':
		switch {
		case lex.scanner.AcceptRune('-'):
		case lex.scanner.AcceptRune('='):
		case lex.scanner.AcceptRune('<'):
			if !lex.scanner.AcceptRune('-') {
				return lex.errorf("unexpected operator %q", lex.scanner.Text())
			}
		}
		return lex.emitText(token.OPERATOR)
	case '-':
		if lex.scanner.AcceptRune('>') {
			lex.scanner.AcceptRune('>')
		}
		return lex.emitText(token.OPERATOR)
	case '=':
		if lex.scanner.AcceptRune('=') {
			return lex.emitText(token.OPERATOR)
		}
		return lex.emitText(token.EQ_ASSIGN)
	case '!', '>':
		lex.scanner.AcceptRune('=')
		return lex.emitText(token.OPERATOR)
	case '&':
		lex.scanner.AcceptRune('&')
		return lex.emitText(token.OPERATOR)
	case '|':
		lex.scanner.AcceptAny("|>")
		return lex.emitText(token.OPERATOR)
	case ':':
		if lex.scanner.AcceptRune(':') {
			lex.scanner.AcceptRune(':')
		} else {
			lex.scanner.AcceptRune('=')
		}
		return lex.emitText(token.OPERATOR)
	case '*':
		lex.scanner.AcceptRune('*')
		return lex.emitText(token.OPERATOR)
	case '+', '/', '^', '~', '?', '$', '@':
		return lex.emitText(token.OPERATOR)
	case '.':
		if isDigit(lex.peekRune()) {
			return lex.readNumber()
		}
		return lex.readIdent()
	default:
		if isDigit(c) {
			return lex.readNumber()
		}
		if isWordStart(c) {
			return lex.readIdent()
		}
		return lex.emit(token.INVALID, fmt.Sprintf("unexpected text starting with %q", c))
	}
}

func (lex *Lexer) emit(typ token.Type, text string) []*token.Token {
	tok := []*token.Token{{
		Type:   typ,
		Text:   text,
		Source: lex.scanner.LocStart(),
	}}
	lex.scanner.Ignore()
	return tok
}

// readEOF terminates the stream after an unrecoverable read failure.
func (lex *Lexer) readEOF() []*token.Token {
	return lex.emit(token.EOF, "")
}

func (lex *Lexer) emitText(typ token.Type) []*token.Token {
	return []*token.Token{lex.scanner.EmitToken(typ)}
}

func (lex *Lexer) emitError(err error, expectEOF bool) []*token.Token {
	if err == io.EOF {
		if expectEOF {
			return lex.emit(token.EOF, "")
		}
		return lex.emit(token.ERROR, "unexpected EOF")
	}
	return lex.emit(token.ERROR, err.Error())
}

func (lex *Lexer) errorf(format string, v ...interface{}) []*token.Token {
	return lex.emitError(fmt.Errorf(format, v...), false)
}

func (lex *Lexer) readIdent() []*token.Token {
	lex.scanner.AcceptSeq(isWord)
	text := lex.scanner.Text()
	if (text == "r" || text == "R") && strings.ContainsRune(`"'`, lex.peekRune()) {
		return lex.readRawString()
	}
	if typ, ok := token.Keywords[text]; ok {
		return lex.emitText(typ)
	}
	return lex.emitText(token.IDENT)
}

func (lex *Lexer) readBacktick() []*token.Token {
	if !lex.scanner.AcceptClosing('`') {
		return lex.errorf("unterminated backtick name")
	}
	return lex.emitText(token.IDENT)
}

// readString scans a single or double quoted string.  R strings may span
// lines.
func (lex *Lexer) readString(quote rune) []*token.Token {
	if !lex.scanner.AcceptQuoted(quote) {
		if err := lex.scanner.Err(); err != nil {
			return lex.errorf("scan failure: %v", err)
		}
		return lex.errorf("unterminated string literal")
	}
	return lex.emitText(token.STRING)
}

// readRawString scans r"(...)", r"[...]", r"{...}" with any number of
// dashes between the quote and the opening bracket.
func (lex *Lexer) readRawString() []*token.Token {
	quote, _ := lex.peekRuneOK()
	lex.scanner.AcceptRune(quote)
	dashes := lex.scanner.AcceptSeqRune('-')
	var closing rune
	switch {
	case lex.scanner.AcceptRune('('):
		closing = ')'
	case lex.scanner.AcceptRune('['):
		closing = ']'
	case lex.scanner.AcceptRune('{'):
		closing = '}'
	default:
		return lex.errorf("malformed raw string literal")
	}
	terminator := string(closing) + strings.Repeat("-", dashes) + string(quote)
	if !lex.scanner.AcceptThrough(terminator) {
		return lex.errorf("unterminated raw string literal")
	}
	return lex.emitText(token.STRING)
}

func (lex *Lexer) readSpecialOperator() []*token.Token {
	if !lex.scanner.AcceptClosing('%') {
		return lex.errorf("unterminated special operator %s", lex.scanner.Text())
	}
	return lex.emitText(token.OPERATOR)
}

func (lex *Lexer) readNumber() []*token.Token {
	if lex.scanner.Rune() == '0' && lex.scanner.AcceptAny("xX") {
		if lex.scanner.AcceptSeqAny(hexDigits) == 0 {
			return lex.errorf("invalid hexadecimal literal: %v", lex.scanner.Text())
		}
		return lex.readNumberSuffix()
	}
	if lex.scanner.Rune() == '.' {
		// leading decimal point, e.g. .5
		lex.scanner.AcceptSeqDigit()
	} else {
		lex.scanner.AcceptSeqDigit()
		if lex.scanner.AcceptRune('.') {
			lex.scanner.AcceptSeqDigit()
		}
	}
	if lex.scanner.AcceptAny("eE") {
		lex.scanner.AcceptAny("+-")
		if lex.scanner.AcceptSeqDigit() == 0 {
			return lex.errorf("invalid floating point literal: %v", lex.scanner.Text())
		}
	}
	return lex.readNumberSuffix()
}

func (lex *Lexer) readNumberSuffix() []*token.Token {
	lex.scanner.AcceptAny("Li")
	if isWord(lex.peekRune()) && lex.peekRune() != '.' {
		lex.scanner.AcceptSeq(isWord)
		return lex.errorf("invalid numeric literal: %v", lex.scanner.Text())
	}
	return lex.emitText(token.NUMBER)
}

// skipWhitespace consumes whitespace other than newlines, which are
// significant in R.
func (lex *Lexer) skipWhitespace() {
	if lex.scanner.AcceptSeq(func(c rune) bool { return c != '\n' && unicode.IsSpace(c) }) > 0 {
		lex.scanner.Ignore()
	}
}

func (lex *Lexer) peekRune() rune {
	r, _ := lex.scanner.Peek()
	return r
}

func (lex *Lexer) peekRuneOK() (rune, bool) {
	return lex.scanner.Peek()
}

func isWordStart(c rune) bool {
	return unicode.IsLetter(c) || c == '.'
}

func isWord(c rune) bool {
	return unicode.IsLetter(c) || strings.ContainsRune(miscWordRunes, c)
}

func isDigit(c rune) bool {
	return '0' <= c && c <= '9'
}
