// Copyright © 2024 The dotlint authors

package rdparser_test

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/luthersystems/dotlint/parser/rdparser"
	"github.com/luthersystems/dotlint/parser/token"
)

func benchSource(n int) []byte {
	var buf bytes.Buffer
	for i := 0; i < n; i++ {
		fmt.Fprintf(&buf, "f%d <- function(x, ..., na.rm = FALSE) {\n", i)
		fmt.Fprintf(&buf, "  y <- sum(c(...), na.rm = na.rm)\n")
		fmt.Fprintf(&buf, "  if (y > %d) g(x, ...) else x |> h()\n", i)
		fmt.Fprintf(&buf, "}\n\n")
	}
	return buf.Bytes()
}

func BenchmarkParser(b *testing.B) {
	for _, n := range []int{10, 100, 1000} {
		buf := benchSource(n)
		b.Run(fmt.Sprintf("defs=%d", n), func(b *testing.B) {
			b.SetBytes(int64(len(buf)))
			for i := 0; i < b.N; i++ {
				s := token.NewScanner("bench.R", bytes.NewReader(buf))
				_, errs := rdparser.New("bench.R", s).ParseFile()
				if len(errs) > 0 {
					b.Fatalf("Parse failure: %v", errs[0])
				}
			}
		})
	}
}

func BenchmarkParserFaultTolerant(b *testing.B) {
	buf := append([]byte("broken <- function(...) {\n  c(...\n\n"), benchSource(100)...)
	b.SetBytes(int64(len(buf)))
	for i := 0; i < b.N; i++ {
		s := token.NewScanner("bench.R", bytes.NewReader(buf))
		file, errs := rdparser.New("bench.R", s).ParseFile()
		if len(errs) != 1 {
			b.Fatalf("expected a single parse error, got %d", len(errs))
		}
		if len(file.Exprs) != 100 {
			b.Fatalf("expected 100 definitions, got %d", len(file.Exprs))
		}
	}
}
