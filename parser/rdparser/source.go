// Copyright © 2024 The dotlint authors

package rdparser

import (
	"github.com/luthersystems/dotlint/parser/lexer"
	"github.com/luthersystems/dotlint/parser/token"
)

// TokenStream is an arbitrary sequence of tokens.  Typically, a TokenStream
// will be a *lexer.Lexer.
type TokenStream interface {
	// ReadToken returns a set of token from an input source.  When no more
	// tokens can be generated ReadToken returns a token with type token.EOF.
	// ReadToken never returns an empty slice.
	ReadToken() []*token.Token
}

// TokenGenerator implements TokenStream.  The function will be called any time
// a TokenSource wants a token.
type TokenGenerator func() []*token.Token

// ReadToken implements TokenStream.
func (fn TokenGenerator) ReadToken() []*token.Token {
	return fn()
}

// TokenSource buffers an entire token stream so the parser can look ahead
// arbitrarily and resynchronize after errors.  Comments are split off into
// Comments and never returned by Peek.
type TokenSource struct {
	Token    *token.Token
	Comments []*token.Token

	toks []*token.Token
	pos  int

	// skipNewlines reports whether newline tokens are currently
	// insignificant (inside parentheses or brackets).
	skipNewlines func() bool
}

func NewTokenStreamSource(stream TokenStream) *TokenSource {
	s := &TokenSource{}
	for {
		toks := stream.ReadToken()
		done := false
		for _, tok := range toks {
			if tok.Type == token.COMMENT {
				s.Comments = append(s.Comments, tok)
				continue
			}
			s.toks = append(s.toks, tok)
			if tok.Type == token.EOF {
				done = true
			}
		}
		if done {
			return s
		}
	}
}

// NewTokenSource initializes and returns a new TokenSource that scans tokens
// from scanner.
func NewTokenSource(scanner *token.Scanner) *TokenSource {
	return NewTokenStreamSource(lexer.New(scanner))
}

// Peek returns the next significant token without consuming it.
func (s *TokenSource) Peek() *token.Token {
	s.skip()
	return s.toks[s.pos]
}

// PeekRaw returns the next token including newlines.
func (s *TokenSource) PeekRaw() *token.Token {
	return s.toks[s.pos]
}

func (s *TokenSource) AcceptType(typ ...token.Type) bool {
	next := s.Peek()
	for _, typ := range typ {
		if next.Type == typ {
			s.scan()
			return true
		}
	}
	return false
}

func (s *TokenSource) Scan() bool {
	if s.IsEOF() {
		s.Token = s.Peek()
		return false
	}
	s.scan()
	return true
}

func (s *TokenSource) IsEOF() bool {
	return s.Peek().Type == token.EOF
}

// Mark returns the current position so that it can be restored with Reset.
func (s *TokenSource) Mark() int {
	return s.pos
}

// Reset rewinds the source to a position returned by Mark.
func (s *TokenSource) Reset(mark int) {
	s.pos = mark
}

// SkipToLineStart advances the source to the first token after mark that
// starts a line in column 1 on a later line, skipping closing delimiters.
// It is used to resynchronize after a parse error.
func (s *TokenSource) SkipToLineStart(mark int) {
	line := s.toks[mark].Source.Line
	for i := mark + 1; i < len(s.toks); i++ {
		tok := s.toks[i]
		if tok.Type == token.EOF {
			s.pos = i
			return
		}
		if tok.Source.Line <= line || tok.Source.Col != 1 {
			continue
		}
		switch tok.Type {
		case token.NEWLINE, token.PAREN_R, token.BRACE_R, token.BRACKET_R:
			continue
		}
		if i > 0 && s.toks[i-1].Type != token.NEWLINE {
			continue
		}
		s.pos = i
		return
	}
	s.pos = len(s.toks) - 1
}

func (s *TokenSource) skip() {
	if s.skipNewlines == nil || !s.skipNewlines() {
		return
	}
	for s.toks[s.pos].Type == token.NEWLINE {
		s.pos++
	}
}

func (s *TokenSource) scan() {
	s.Token = s.Peek()
	if s.Token.Type != token.EOF {
		s.pos++
	}
}
