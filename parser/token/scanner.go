// Copyright © 2024 The dotlint authors

package token

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// maxSourceSize bounds the number of bytes a Scanner reads from its input.
var maxSourceSize = 64 << 20

// Scanner reads runes from R source text and groups them into tokens.  The
// whole input is read up front; R files are small and the lexer looks
// ahead freely.
type Scanner struct {
	file string
	path string
	src  []byte
	err  error // read failure, reported once src is consumed

	start int  // offset of the first byte of the current token
	pos   int  // offset of cur
	next  int  // offset of the rune following cur
	cur   rune // last rune scanned, 0 before the first

	line         int // line of cur
	lineStart    int // offset of the first byte of line
	tokLine      int // line of the token start
	tokLineStart int // offset of the first byte of tokLine
}

// NewScanner reads r and returns a Scanner positioned before its first
// rune.  A read failure is reported by Err after the bytes read before the
// failure have been scanned.
func NewScanner(file string, r io.Reader) *Scanner {
	src, err := io.ReadAll(io.LimitReader(r, int64(maxSourceSize)+1))
	if err == nil && len(src) > maxSourceSize {
		src = src[:maxSourceSize]
		err = fmt.Errorf("source exceeds %d bytes", maxSourceSize)
	}
	return &Scanner{
		file:    file,
		src:     src,
		err:     err,
		line:    1,
		tokLine: 1,
	}
}

// SetPath associates a physical location (e.g. filesystem path) with s.
func (s *Scanner) SetPath(path string) {
	s.path = path
}

// EmitToken returns a token containing the text scanned since the last call to
// either EmitToken or Ignore.
func (s *Scanner) EmitToken(typ Type) *Token {
	tok := &Token{
		Type:   typ,
		Text:   s.Text(),
		Source: s.LocStart(),
	}
	s.Ignore()
	return tok
}

// Ignore discards the text scanned since the last call to either EmitToken
// or Ignore.
func (s *Scanner) Ignore() {
	s.start = s.next
	s.tokLine = s.line
	s.tokLineStart = s.lineStart
	if s.cur == '\n' {
		s.tokLine++
		s.tokLineStart = s.next
	}
}

// Text returns the text scanned since the last call to either EmitToken or
// Ignore.
func (s *Scanner) Text() string {
	return string(s.src[s.start:s.next])
}

// Rune returns the last rune scanned.
func (s *Scanner) Rune() rune {
	return s.cur
}

// Peek returns the next rune without scanning it.  The second value is
// false at the end of the input or when the next bytes are not valid
// utf-8.
func (s *Scanner) Peek() (rune, bool) {
	if s.next >= len(s.src) {
		return 0, false
	}
	c, n := utf8.DecodeRune(s.src[s.next:])
	if c == utf8.RuneError && n == 1 {
		return utf8.RuneError, false
	}
	return c, true
}

// ScanRune adds the next rune to the current token.  It returns io.EOF at
// the end of the input, or the error that prevents a rune from being read.
func (s *Scanner) ScanRune() error {
	if s.next >= len(s.src) {
		if s.err != nil {
			return s.err
		}
		return io.EOF
	}
	c, n := utf8.DecodeRune(s.src[s.next:])
	if c == utf8.RuneError && n == 1 {
		return s.invalidUTF8()
	}
	if s.cur == '\n' {
		s.line++
		s.lineStart = s.next
	}
	s.pos = s.next
	s.next += n
	s.cur = c
	return nil
}

// Err returns the error that stops scanning at the current position: a
// read failure once all bytes read have been scanned, or an invalid utf-8
// sequence.  Err is nil while runes remain and at a clean end of input.
func (s *Scanner) Err() error {
	if s.next >= len(s.src) {
		return s.err
	}
	if _, ok := s.Peek(); !ok {
		return s.invalidUTF8()
	}
	return nil
}

// EOF reports whether the whole input has been scanned without error.
func (s *Scanner) EOF() bool {
	return s.next >= len(s.src) && s.err == nil
}

func (s *Scanner) invalidUTF8() error {
	return fmt.Errorf("invalid utf-8 sequence in source text starting with byte %q", s.src[s.next])
}

// Accept scans the next rune if fn returns true for it.
func (s *Scanner) Accept(fn func(rune) bool) bool {
	c, ok := s.Peek()
	if !ok || !fn(c) {
		return false
	}
	return s.ScanRune() == nil
}

// AcceptRune scans the next rune if it is c.
func (s *Scanner) AcceptRune(c rune) bool {
	return s.Accept(func(r rune) bool { return r == c })
}

// AcceptAny scans the next rune if it is in charset.
func (s *Scanner) AcceptAny(charset string) bool {
	return s.Accept(func(r rune) bool { return strings.ContainsRune(charset, r) })
}

// AcceptSeq scans runes while fn returns true and returns their number.
func (s *Scanner) AcceptSeq(fn func(rune) bool) int {
	var n int
	for s.Accept(fn) {
		n++
	}
	return n
}

func (s *Scanner) AcceptSeqRune(c rune) int {
	return s.AcceptSeq(func(r rune) bool { return r == c })
}

func (s *Scanner) AcceptSeqAny(charset string) int {
	return s.AcceptSeq(func(r rune) bool { return strings.ContainsRune(charset, r) })
}

func (s *Scanner) AcceptSeqDigit() int {
	return s.AcceptSeq(func(r rune) bool { return '0' <= r && r <= '9' })
}

// AcceptClosing scans the rest of a name delimited on one line, such as
// `name` or %op%, through the closing rune.  It returns false when a newline
// or the end of input comes first.
func (s *Scanner) AcceptClosing(closing rune) bool {
	s.AcceptSeq(func(r rune) bool { return r != closing && r != '\n' })
	return s.AcceptRune(closing)
}

// AcceptQuoted scans the body of a string literal through the closing
// quote.  A backslash escapes the rune after it.  Strings may span lines.
// It returns false when the input ends first.
func (s *Scanner) AcceptQuoted(quote rune) bool {
	for {
		if s.ScanRune() != nil {
			return false
		}
		switch s.cur {
		case quote:
			return true
		case '\\':
			if s.ScanRune() != nil {
				return false
			}
		}
	}
}

// AcceptThrough scans runes until the token text ends with terminator, as
// in the body of a raw string r"(...)".  It returns false when the input
// ends first.
func (s *Scanner) AcceptThrough(terminator string) bool {
	term := []byte(terminator)
	for {
		if s.ScanRune() != nil {
			return false
		}
		if bytes.HasSuffix(s.src[s.start:s.next], term) {
			return true
		}
	}
}

// LocStart returns the Location of the first rune of the current token.
func (s *Scanner) LocStart() *Location {
	return &Location{
		File: s.file,
		Path: s.path,
		Line: s.tokLine,
		Col:  s.start - s.tokLineStart + 1,
		Pos:  s.start,
	}
}

// Loc returns the Location of the last rune scanned.
func (s *Scanner) Loc() *Location {
	return &Location{
		File: s.file,
		Path: s.path,
		Line: s.line,
		Col:  s.pos - s.lineStart + 1,
		Pos:  s.pos,
	}
}
