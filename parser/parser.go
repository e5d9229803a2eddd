// Copyright © 2024 The dotlint authors

// Package parser reads R source into syntax trees.
package parser

import (
	"bytes"
	"io"

	"github.com/luthersystems/dotlint/ast"
	"github.com/luthersystems/dotlint/parser/rdparser"
	"github.com/luthersystems/dotlint/parser/token"
)

// Option configures Parse.
type Option func(*config)

type config struct {
	path string
}

// WithPath records the physical location of the source when it differs
// from the name it is reported under.
func WithPath(path string) Option {
	return func(c *config) { c.path = path }
}

// Parse reads every top-level expression from r.  Expressions that fail to
// parse are left out of the file and returned as errors; parsing resumes
// with the next expression.
func Parse(name string, r io.Reader, opts ...Option) (*ast.File, []*rdparser.ParseError) {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}
	s := token.NewScanner(name, r)
	if cfg.path != "" {
		s.SetPath(cfg.path)
	}
	return rdparser.New(name, s).ParseFile()
}

// ParseBytes is Parse for source held in memory.
func ParseBytes(name string, src []byte, opts ...Option) (*ast.File, []*rdparser.ParseError) {
	return Parse(name, bytes.NewReader(src), opts...)
}
