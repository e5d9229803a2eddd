// Copyright © 2024 The dotlint authors

package lint_test

import (
	"path/filepath"
	"testing"

	"github.com/luthersystems/dotlint/dotlinttest"
)

func TestTestdata(t *testing.T) {
	r := &dotlinttest.Runner{}
	for _, name := range []string{"dots.R", "calls.R"} {
		t.Run(name, func(t *testing.T) {
			r.RunTestFile(t, dotlinttest.Testdata(t, name))
		})
	}
	t.Run("workspace", func(t *testing.T) {
		r.RunTestDir(t, dotlinttest.Testdata(t, "workspace"))
	})
}

func TestDiagnosticLines(t *testing.T) {
	dotlinttest.RunTestSuite(t, nil, dotlinttest.TestSuite{
		{
			Name:   "no dots",
			Source: "add <- function(x, y) x + y\nadd(1, 2)\n",
		},
		{
			Name:   "coerced",
			Source: "total <- function(...) sum(c(...))\n",
			Want: []string{
				"test.R:1: error: total: ... is coerced-to-container by c(); promote it to a named parameter",
			},
		},
		{
			Name:   "forwarded and destructured",
			Source: "f <- function(x, ...) g(x, ...)\ng <- function(...) list(...)\n",
		},
		{
			Name:   "severity order",
			Source: "keep <- function(x, ...) x\ntotal <- function(...) sum(c(...))\n",
			Want: []string{
				"test.R:2: error: total: ... is coerced-to-container by c(); promote it to a named parameter",
				"test.R:1: warning: keep declares ... but never uses it",
			},
		},
	})
}

func BenchmarkLint(b *testing.B) {
	r := &dotlinttest.Runner{}
	b.Run("dots.R", r.BenchmarkLint(filepath.Join("testdata", "dots.R")))
}
