// Copyright © 2024 The dotlint authors

package diagnostic

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testRenderer returns a Renderer with colors disabled and a fake source reader.
func testRenderer(sources map[string]string) *Renderer {
	return &Renderer{
		Color: ColorNever,
		SourceReader: func(name string) ([]byte, error) {
			s, ok := sources[name]
			if !ok {
				return nil, &fakeErr{name}
			}
			return []byte(s), nil
		},
	}
}

type fakeErr struct{ name string }

func (e *fakeErr) Error() string { return "not found: " + e.name }

func render(t *testing.T, r *Renderer, d Diagnostic) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, d))
	return buf.String()
}

func TestRenderError(t *testing.T) {
	r := testRenderer(map[string]string{
		"test.R": "f <- function(...) sum(c(...))",
	})
	got := render(t, r, Diagnostic{
		Severity: SeverityError,
		Code:     "dots-coercion",
		Message:  "f: ... is coerced-to-container by c()",
		Spans: []Span{
			{File: "test.R", Line: 1, Col: 26, EndCol: 28, Label: "collapsed into one vector"},
		},
	})

	assert.Contains(t, got, "error[dots-coercion]: f: ... is coerced-to-container by c()")
	assert.Contains(t, got, "--> test.R:1:26")
	assert.Contains(t, got, "f <- function(...) sum(c(...))")
	assert.Contains(t, got, strings.Repeat(" ", 25)+"^^^ collapsed into one vector")
}

func TestRenderWarning(t *testing.T) {
	r := testRenderer(map[string]string{
		"test.R": "x <- 1\ng <- function(x, ...) x",
	})
	got := render(t, r, Diagnostic{
		Severity: SeverityWarning,
		Message:  "g declares ... but never uses it",
		Spans:    []Span{{File: "test.R", Line: 2, Col: 18}},
	})
	assert.Contains(t, got, "warning: g declares ... but never uses it")
	assert.Contains(t, got, "--> test.R:2:18")
	assert.Contains(t, got, " 2 |  g <- function(x, ...) x")
}

func TestRenderSeverityHeaders(t *testing.T) {
	r := testRenderer(nil)
	for sev, want := range map[Severity]string{
		SeverityInfo:    "info: m",
		SeverityNote:    "note: m",
		SeverityUnknown: "unknown: m",
	} {
		assert.Contains(t, render(t, r, Diagnostic{Severity: sev, Message: "m"}), want)
	}
}

func TestRenderNoSource(t *testing.T) {
	r := testRenderer(nil)
	got := render(t, r, Diagnostic{
		Severity: SeverityError,
		Message:  "some error",
		Spans:    []Span{{File: "<stdin>", Line: 5, Col: 3}},
	})
	assert.Contains(t, got, "error: some error")
	assert.Contains(t, got, "--> <stdin>:5:3")
	// Should have a gutter but no source line
	assert.Contains(t, got, "|")
	assert.NotContains(t, got, "^")
}

func TestRenderLineOutOfRange(t *testing.T) {
	r := testRenderer(map[string]string{"test.R": "x <- 1\n"})
	got := render(t, r, Diagnostic{
		Severity: SeverityWarning,
		Message:  "past the end",
		Spans:    []Span{{File: "test.R", Line: 9, Col: 1}},
	})
	assert.NotContains(t, got, "^")
}

func TestRenderNotes(t *testing.T) {
	r := testRenderer(map[string]string{
		"test.R": "f(1, na.omit = TRUE)",
	})
	got := render(t, r, Diagnostic{
		Severity: SeverityError,
		Message:  "argument na.omit matches no parameter of f(...)",
		Spans:    []Span{{File: "test.R", Line: 1, Col: 6}},
		Notes: []string{
			"f is defined at lib.R:3:6",
			"did you mean na.rm?",
		},
	})
	assert.Contains(t, got, "= note: f is defined at lib.R:3:6")
	assert.Contains(t, got, "= note: did you mean na.rm?")
}

func TestRenderAutoDetectEndCol(t *testing.T) {
	r := testRenderer(map[string]string{
		"test.R": "f(1, na.omit = TRUE)",
	})
	got := render(t, r, Diagnostic{
		Severity: SeverityError,
		Message:  "argument na.omit lands in ...",
		Spans:    []Span{{File: "test.R", Line: 1, Col: 6}}, // EndCol=0 → auto-detect
	})
	// "na.omit" starts at col 6 and is 7 chars
	assert.Contains(t, got, "     ^^^^^^^\n")
}

func TestDetectEndCol(t *testing.T) {
	r := &Renderer{}
	assert.Equal(t, 28, r.detectEndCol("f <- function(...) sum(c(...))", 26))
	assert.Equal(t, 3, r.detectEndCol("abc,d", 1))
	assert.Equal(t, 2, r.detectEndCol("(x)", 2))
	assert.Equal(t, 9, r.detectEndCol("short", 9))
}

func TestRenderMultipleDiagnostics(t *testing.T) {
	r := testRenderer(map[string]string{
		"test.R": "f <- function(...) sum(c(...))\ng <- function(x, ...) x\n",
	})
	diags := []Diagnostic{
		{
			Severity: SeverityError,
			Message:  "f: ... is coerced-to-container by c()",
			Spans:    []Span{{File: "test.R", Line: 1, Col: 26}},
		},
		{
			Severity: SeverityWarning,
			Message:  "g declares ... but never uses it",
			Spans:    []Span{{File: "test.R", Line: 2, Col: 18}},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, r.RenderAll(&buf, diags))
	got := buf.String()
	// Should have both diagnostics separated by blank line
	assert.GreaterOrEqual(t, len(strings.Split(got, "\n\n")), 2, got)
	assert.Contains(t, got, "coerced-to-container")
	assert.Contains(t, got, "never uses it")
}

func TestRenderSourceReadOnce(t *testing.T) {
	reads := 0
	r := &Renderer{
		Color: ColorNever,
		SourceReader: func(string) ([]byte, error) {
			reads++
			return []byte("a\nb\n"), nil
		},
	}
	for line := 1; line <= 2; line++ {
		render(t, r, Diagnostic{Message: "m", Spans: []Span{{File: "x.R", Line: line}}})
	}
	assert.Equal(t, 1, reads)
}

func TestRenderNoSpans(t *testing.T) {
	r := testRenderer(nil)
	got := render(t, r, Diagnostic{
		Severity: SeverityError,
		Message:  "cannot read file: missing.R",
	})
	assert.Contains(t, got, "error: cannot read file: missing.R")
	// Should be just the header, no arrows or source
	assert.NotContains(t, got, "-->")
}

func TestRenderColor(t *testing.T) {
	r := testRenderer(nil)
	r.Color = ColorAlways
	got := render(t, r, Diagnostic{Severity: SeverityError, Message: "m"})
	assert.Contains(t, got, "\033[1;31m")
}

func TestParseColorMode(t *testing.T) {
	for in, want := range map[string]ColorMode{"": ColorAuto, "auto": ColorAuto, "Always": ColorAlways, "never": ColorNever} {
		got, err := ParseColorMode(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseColorMode("sometimes")
	assert.Error(t, err)
}

func TestChoosePalette(t *testing.T) {
	assert.Equal(t, noPalette, choosePalette(ColorAuto, nil))
	assert.Equal(t, ansiPalette, choosePalette(ColorAlways, nil))
	t.Setenv("NO_COLOR", "1")
	assert.Equal(t, noPalette, choosePalette(ColorAuto, nil))
}
