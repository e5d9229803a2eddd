// Copyright © 2024 The dotlint authors

// Package dotlinttest runs lint checks over annotated R sources in tests.
//
// A comment of the form
//
//	# want "regexp" "regexp"
//
// on a source line expects one diagnostic per pattern on that line, each
// with a message matching its pattern.  Diagnostics without a matching
// expectation, and expectations without a matching diagnostic, fail the
// test.
package dotlinttest

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/luthersystems/dotlint/analysis"
	"github.com/luthersystems/dotlint/lint"
)

const wantMarker = "# want "

// Runner lints annotated sources.
type Runner struct {
	// Analyzers are the checks to run.  When nil lint.DefaultAnalyzers is
	// used.
	Analyzers []*lint.Analyzer

	// Config configures dots classification.  When nil the defaults are
	// used.
	Config *analysis.Config
}

func (r *Runner) linter(t testing.TB) (*lint.Linter, *Logger) {
	analyzers := r.Analyzers
	if analyzers == nil {
		analyzers = lint.DefaultAnalyzers()
	}
	log, w := NewHCLogger(t)
	return &lint.Linter{Analyzers: analyzers, Config: r.Config, Logger: log}, w
}

// RunTestFile lints the file at path on its own and checks its
// expectations.
func (r *Runner) RunTestFile(t *testing.T, path string) {
	source, err := os.ReadFile(path) //#nosec G304
	if err != nil {
		t.Errorf("Unable to read test file: %v", err)
		return
	}
	l, w := r.linter(t)
	defer w.Flush()
	diags, err := l.LintFile(source, path)
	if err != nil {
		t.Error(err)
		return
	}
	check(t, diags, map[string][]byte{path: source})
}

// RunTestDir lints every R file under dir as one workspace, so calls may
// resolve to functions defined in other files, and checks the expectations
// of every file.
func (r *Runner) RunTestDir(t *testing.T, dir string) {
	paths, err := analysis.SourceFiles(dir)
	if err != nil {
		t.Errorf("Unable to list test files: %v", err)
		return
	}
	sources := make(map[string][]byte, len(paths))
	for _, path := range paths {
		source, err := os.ReadFile(path) //#nosec G304
		if err != nil {
			t.Errorf("Unable to read test file: %v", err)
			return
		}
		sources[path] = source
	}
	l, w := r.linter(t)
	defer w.Flush()
	diags, err := l.LintPaths(context.Background(), paths)
	if err != nil {
		t.Error(err)
		return
	}
	check(t, diags, sources)
}

// BenchmarkLint returns a benchmark that lints the file at path.
func (r *Runner) BenchmarkLint(path string) func(*testing.B) {
	return func(b *testing.B) {
		source, err := os.ReadFile(path) //#nosec G304
		if err != nil {
			b.Fatalf("Unable to read source file %v: %v", path, err)
		}
		l, w := r.linter(b)
		defer w.Flush()
		b.SetBytes(int64(len(source)))
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if _, err := l.LintFile(source, path); err != nil {
				b.Fatal(err)
			}
		}
	}
}

type lineKey struct {
	file string
	line int
}

func check(t *testing.T, diags []lint.Diagnostic, sources map[string][]byte) {
	t.Helper()
	want := make(map[lineKey][]*regexp.Regexp)
	for file, src := range sources {
		exp, err := Expectations(src)
		if err != nil {
			t.Errorf("%s: %v", file, err)
			return
		}
		for line, patterns := range exp {
			want[lineKey{file, line}] = patterns
		}
	}
	for _, d := range diags {
		key := lineKey{d.Pos.File, d.Pos.Line}
		patterns := want[key]
		matched := -1
		for i, re := range patterns {
			if re.MatchString(d.Message) {
				matched = i
				break
			}
		}
		if matched < 0 {
			t.Errorf("%s: unexpected diagnostic: %s [%s]", d.Pos, d.Message, d.Analyzer)
			continue
		}
		want[key] = append(patterns[:matched:matched], patterns[matched+1:]...)
	}
	for key, patterns := range want {
		for _, re := range patterns {
			t.Errorf("%s:%d: no diagnostic was reported matching %q", key.file, key.line, re)
		}
	}
}

// Expectations returns the patterns of the want comments in src by line.
func Expectations(src []byte) (map[int][]*regexp.Regexp, error) {
	out := make(map[int][]*regexp.Regexp)
	sc := bufio.NewScanner(bytes.NewReader(src))
	for line := 1; sc.Scan(); line++ {
		_, rest, ok := strings.Cut(sc.Text(), wantMarker)
		if !ok {
			continue
		}
		patterns, err := parsePatterns(rest)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out[line] = patterns
	}
	return out, sc.Err()
}

func parsePatterns(s string) ([]*regexp.Regexp, error) {
	var out []*regexp.Regexp
	for s = strings.TrimSpace(s); s != ""; s = strings.TrimSpace(s) {
		quoted, err := strconv.QuotedPrefix(s)
		if err != nil {
			return nil, fmt.Errorf("malformed want pattern: %s", s)
		}
		s = s[len(quoted):]
		pat, err := strconv.Unquote(quoted)
		if err != nil {
			return nil, err
		}
		re, err := regexp.Compile(pat)
		if err != nil {
			return nil, err
		}
		out = append(out, re)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("want comment without patterns")
	}
	return out, nil
}

// TestSuite is a set of named sources and the diagnostics expected from
// each, formatted as by lint.Diagnostic.String.
type TestSuite []struct {
	Name   string
	Source string
	Want   []string
}

// RunTestSuite lints each source of tests as a file named test.R.
func RunTestSuite(t *testing.T, analyzers []*lint.Analyzer, tests TestSuite) {
	r := &Runner{Analyzers: analyzers}
	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			l, w := r.linter(t)
			defer w.Flush()
			diags, err := l.LintFile([]byte(test.Source), "test.R")
			if err != nil {
				t.Fatal(err)
			}
			var got []string
			for _, d := range diags {
				got = append(got, d.String())
			}
			if strings.Join(got, "\n") != strings.Join(test.Want, "\n") {
				t.Errorf("diagnostics:\n%s\nwant:\n%s", strings.Join(got, "\n"), strings.Join(test.Want, "\n"))
			}
		})
	}
}

// Testdata returns the absolute path of the testdata directory named by
// elem, relative to the calling test's package.
func Testdata(t testing.TB, elem ...string) string {
	dir, err := filepath.Abs(filepath.Join(append([]string{"testdata"}, elem...)...))
	if err != nil {
		t.Fatal(err)
	}
	return dir
}
