// Copyright © 2024 The dotlint authors

package token

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scanN(t *testing.T, s *Scanner, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, s.ScanRune(), "rune %d", i)
	}
}

func TestScanner(t *testing.T) {
	s := NewScanner("", strings.NewReader(strings.Repeat("x", 27)))
	var tokens []*Token
	scanN(t, s, 10)
	tokens = append(tokens, s.EmitToken(0))
	scanN(t, s, 7)
	tokens = append(tokens, s.EmitToken(1))
	scanN(t, s, 10)
	tokens = append(tokens, s.EmitToken(2))

	assert.Equal(t, 26, s.Loc().Pos)
	assert.Equal(t, "xxxxxxxxxx", tokens[0].Text)
	assert.Equal(t, 0, tokens[0].Source.Pos)
	assert.Equal(t, "xxxxxxx", tokens[1].Text)
	assert.Equal(t, 10, tokens[1].Source.Pos)
	assert.Equal(t, "xxxxxxxxxx", tokens[2].Text)
	assert.Equal(t, 17, tokens[2].Source.Pos)
}

func TestScannerLoc(t *testing.T) {
	s := NewScanner("test", strings.NewReader(strings.Repeat("123456789\n", 3)))
	var tokens []*Token
	for _, n := range []int{10, 10, 5, 5} {
		scanN(t, s, n)
		tokens = append(tokens, s.EmitToken(0))
	}

	assert.Equal(t, 29, s.Loc().Pos)
	assert.Equal(t, "test:3:10", s.Loc().String())
	assert.Equal(t, 0, tokens[0].Source.Pos)
	assert.Equal(t, 10, tokens[1].Source.Pos)
	assert.Equal(t, 20, tokens[2].Source.Pos)
	assert.Equal(t, 25, tokens[3].Source.Pos)
	assert.Equal(t, "test:1:1", tokens[0].Source.String())
	assert.Equal(t, "test:2:1", tokens[1].Source.String())
	assert.Equal(t, "test:3:1", tokens[2].Source.String())
	assert.Equal(t, "test:3:6", tokens[3].Source.String())
}

func TestScannerColumns(t *testing.T) {
	s := NewScanner("f.R", strings.NewReader("ab\n\ncd ef"))
	s.AcceptSeq(func(r rune) bool { return r != '\n' })
	assert.Equal(t, "f.R:1:1", s.EmitToken(0).Source.String())

	s.AcceptRune('\n')
	nl := s.EmitToken(0)
	assert.Equal(t, "f.R:1:3", nl.Source.String())
	s.AcceptRune('\n')
	assert.Equal(t, "f.R:2:1", s.EmitToken(0).Source.String())

	s.AcceptSeqAny("cd")
	assert.Equal(t, "f.R:3:2", s.Loc().String())
	assert.Equal(t, "cd", s.EmitToken(0).Text)
	s.AcceptRune(' ')
	s.Ignore()
	s.AcceptSeqAny("ef")
	tok := s.EmitToken(0)
	assert.Equal(t, "ef", tok.Text)
	assert.Equal(t, "f.R:3:4", tok.Source.String())
	assert.Equal(t, 7, tok.Source.Pos)
}

func TestScannerEOF(t *testing.T) {
	s := NewScanner("", strings.NewReader("xyz"))
	assert.False(t, s.EOF())
	assert.Equal(t, 3, s.AcceptSeq(func(rune) bool { return true }))
	assert.Equal(t, "xyz", s.EmitToken(0).Text)
	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, s.ScanRune(), io.EOF)
		assert.True(t, s.EOF())
		assert.NoError(t, s.Err())
		assert.Equal(t, "", s.EmitToken(0).Text)
	}
	assert.False(t, s.Accept(func(rune) bool { return true }))
}

func TestScannerEmptyInput(t *testing.T) {
	s := NewScanner("", strings.NewReader(""))
	assert.True(t, s.EOF())
	_, ok := s.Peek()
	assert.False(t, ok)
	assert.NoError(t, s.Err())
}

func TestScannerInvalidUTF8(t *testing.T) {
	s := NewScanner("", strings.NewReader("a\xffb"))
	assert.True(t, s.AcceptRune('a'))
	assert.False(t, s.Accept(func(rune) bool { return true }))
	assert.False(t, s.EOF())
	assert.ErrorContains(t, s.Err(), "invalid utf-8")
	assert.ErrorContains(t, s.ScanRune(), "invalid utf-8")
	assert.Equal(t, 'a', s.Rune())
}

type failingReader struct{ data string }

var errRead = errors.New("disk on fire")

func (r *failingReader) Read(b []byte) (int, error) {
	if r.data == "" {
		return 0, errRead
	}
	n := copy(b, r.data)
	r.data = r.data[n:]
	return n, nil
}

func TestScannerReadError(t *testing.T) {
	s := NewScanner("", &failingReader{data: "ab"})
	assert.NoError(t, s.Err(), "buffered runes come first")
	assert.Equal(t, 2, s.AcceptSeq(func(rune) bool { return true }))
	assert.False(t, s.EOF())
	assert.ErrorIs(t, s.Err(), errRead)
	assert.ErrorIs(t, s.ScanRune(), errRead)
}

func TestScannerPeek(t *testing.T) {
	s := NewScanner("", strings.NewReader("é!"))
	c, ok := s.Peek()
	require.True(t, ok)
	assert.Equal(t, 'é', c)
	assert.True(t, s.AcceptRune('é'))
	assert.False(t, s.AcceptAny("?."))
	assert.True(t, s.AcceptAny("?!"))
	assert.Equal(t, 3, s.Loc().Col, "columns count bytes")
}

func TestScannerAcceptSeqDigit(t *testing.T) {
	s := NewScanner("", strings.NewReader("0123x"))
	assert.Equal(t, 4, s.AcceptSeqDigit())
	assert.Equal(t, "0123", s.Text())
	assert.Equal(t, 0, s.AcceptSeqDigit())
}

func TestScannerAcceptClosing(t *testing.T) {
	s := NewScanner("", strings.NewReader("%in% y"))
	require.True(t, s.AcceptRune('%'))
	assert.True(t, s.AcceptClosing('%'))
	assert.Equal(t, "%in%", s.Text())

	s = NewScanner("", strings.NewReader("`my\nname`"))
	require.True(t, s.AcceptRune('`'))
	assert.False(t, s.AcceptClosing('`'), "names do not span lines")
	assert.Equal(t, "`my", s.Text())

	s = NewScanner("", strings.NewReader("%op"))
	require.True(t, s.AcceptRune('%'))
	assert.False(t, s.AcceptClosing('%'))
}

func TestScannerAcceptQuoted(t *testing.T) {
	tests := []struct {
		input string
		ok    bool
		text  string
	}{
		{`"abc" x`, true, `"abc"`},
		{`"a\"b" x`, true, `"a\"b"`},
		{`'it''s'`, true, `'it'`},
		{"\"two\nlines\"", true, "\"two\nlines\""},
		{`"abc`, false, `"abc`},
		{`"ends in \`, false, `"ends in \`},
	}
	for _, test := range tests {
		s := NewScanner("", strings.NewReader(test.input))
		quote, _ := s.Peek()
		require.NoError(t, s.ScanRune())
		assert.Equal(t, test.ok, s.AcceptQuoted(quote), test.input)
		assert.Equal(t, test.text, s.Text(), test.input)
	}
}

func TestScannerAcceptThrough(t *testing.T) {
	s := NewScanner("", strings.NewReader(`r"-(a)"b)-" tail`))
	s.AcceptSeqAny(`r"-(`)
	assert.True(t, s.AcceptThrough(`)-"`))
	assert.Equal(t, `r"-(a)"b)-"`, s.Text())

	s = NewScanner("", strings.NewReader(`r"(never closed`))
	s.AcceptSeqAny(`r"(`)
	assert.False(t, s.AcceptThrough(`)"`))
}

func TestScannerMaxSize(t *testing.T) {
	defer func(n int) { maxSourceSize = n }(maxSourceSize)
	maxSourceSize = 16
	s := NewScanner("", byteFiller('x'))
	assert.Equal(t, 16, len(s.src))
	assert.NoError(t, s.Err())
	s.next = len(s.src)
	assert.ErrorContains(t, s.Err(), "exceeds")
}

type byteFiller byte

func (r byteFiller) Read(b []byte) (int, error) {
	for i := range b {
		b[i] = byte(r)
	}
	return len(b), nil
}
