// Copyright © 2024 The dotlint authors

package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/luthersystems/dotlint/analysis"
	"github.com/luthersystems/dotlint/ast"
	"github.com/luthersystems/dotlint/lint"
	"github.com/luthersystems/dotlint/parser/rdparser"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

type inspectFile struct {
	File        string            `json:"file"`
	Functions   []inspectFunction `json:"functions"`
	Calls       []inspectCall     `json:"calls"`
	ParseErrors []inspectError    `json:"parse_errors,omitempty"`
}

type inspectFunction struct {
	Name      string         `json:"name"`
	Signature string         `json:"signature"`
	Pos       lint.Position  `json:"pos"`
	TopLevel  bool           `json:"top_level"`
	Dots      bool           `json:"dots"`
	Usage     []inspectUsage `json:"usage,omitempty"`
}

type inspectUsage struct {
	Kind   analysis.UsageKind `json:"kind"`
	Callee string             `json:"callee,omitempty"`
	Reason string             `json:"reason,omitempty"`
	Pos    lint.Position      `json:"pos"`
}

type inspectCall struct {
	Target string        `json:"target"`
	Caller string        `json:"caller"`
	Pos    lint.Position `json:"pos"`
	Dots   []inspectArg  `json:"dots"`
}

type inspectArg struct {
	Name string        `json:"name,omitempty"`
	Pos  lint.Position `json:"pos"`
}

type inspectError struct {
	Pos     lint.Position `json:"pos"`
	Message string        `json:"message"`
}

func newInspectCommand(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "inspect [flags] paths...",
		Short: "Show function signatures and how they use ...",
		Long: `Show what dotlint sees in R source files.

For every function definition, prints its signature and each place its
... is used, classified as coerced-to-container, forwarded, destructured,
or unknown.  For every call that passes arguments into a function's ...,
prints the arguments that land there.

Paths are expanded the same way as for "dotlint lint".

Examples:
  dotlint inspect R/summary.R
  dotlint inspect --json R/`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := expandArgs(args, nil)
			if err != nil {
				return &exitError{code: ExitUsage, err: err}
			}
			files, readErr := inspectPaths(paths, a.cfg.viper.GetStringSlice("containers"), a.cfg.viper.GetStringSlice("collectors"))
			out := bufio.NewWriter(cmd.OutOrStdout())
			if asJSON {
				err = writeInspectJSON(out, files)
			} else {
				err = writeInspectText(out, files)
			}
			if err == nil {
				err = out.Flush()
			}
			if err != nil {
				return err
			}
			if readErr != nil {
				for _, e := range multierr.Errors(readErr) {
					fmt.Fprintln(cmd.ErrOrStderr(), "dotlint:", e) //nolint:errcheck // best-effort output to stderr
				}
				return &exitError{code: ExitUsage}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON.")
	return cmd
}

// inspectPaths analyzes paths as one workspace.  Files that cannot be read
// are skipped and their errors combined.
func inspectPaths(paths []string, containers, collectors []string) ([]inspectFile, error) {
	type parsed struct {
		name string
		file *ast.File
		errs []*rdparser.ParseError
	}
	var (
		errs   error
		files  []parsed
		global []*analysis.Signature
	)
	for _, path := range paths {
		src, err := os.ReadFile(path) //nolint:gosec // reads user-specified source files
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		f, perrs := analysis.ParseSource(src, path)
		files = append(files, parsed{name: path, file: f, errs: perrs})
		global = append(global, analysis.TopLevelSignatures(analysis.Signatures(f))...)
	}
	index := analysis.NewIndex(global)
	cfg := analysis.NewConfig(containers, collectors)

	out := make([]inspectFile, 0, len(files))
	for _, p := range files {
		res := analysis.Analyze(p.file, index, cfg)
		info := inspectFile{
			File:      p.name,
			Functions: []inspectFunction{},
			Calls:     []inspectCall{},
		}
		for _, sig := range res.Signatures {
			fn := inspectFunction{
				Name:      sig.Name,
				Signature: sig.String(),
				Pos:       lint.PositionOf(sig.Pos),
				TopLevel:  sig.TopLevel,
				Dots:      sig.HasDots(),
			}
			for _, site := range res.Usage[sig] {
				fn.Usage = append(fn.Usage, inspectUsage{
					Kind:   site.Kind,
					Callee: site.Callee,
					Reason: site.Reason,
					Pos:    lint.PositionOf(site.Pos),
				})
			}
			info.Functions = append(info.Functions, fn)
		}
		for _, call := range res.Calls {
			if len(call.Dots) == 0 {
				continue
			}
			c := inspectCall{
				Target: call.Target.Name,
				Caller: call.Caller,
				Pos:    lint.PositionOf(call.Pos),
			}
			for _, arg := range call.Dots {
				c.Dots = append(c.Dots, inspectArg{Name: arg.Name, Pos: lint.PositionOf(arg.Pos)})
			}
			info.Calls = append(info.Calls, c)
		}
		for _, perr := range p.errs {
			info.ParseErrors = append(info.ParseErrors, inspectError{
				Pos:     lint.PositionOf(perr.Source),
				Message: perr.Msg,
			})
		}
		out = append(out, info)
	}
	return out, errs
}

func writeInspectJSON(w io.Writer, files []inspectFile) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(files)
}

func writeInspectText(w io.Writer, files []inspectFile) error {
	ew := &printer{w: w}
	for i, f := range files {
		if i > 0 {
			ew.printf("\n")
		}
		ew.printf("%s\n", f.File)
		for _, fn := range f.Functions {
			ew.printf("  %s: function %s\n", fn.Pos, fn.Signature)
			if fn.Dots && len(fn.Usage) == 0 {
				ew.printf("      ... is never used\n")
			}
			for _, u := range fn.Usage {
				switch {
				case u.Callee != "":
					ew.printf("      %s: %s by %s()\n", u.Pos, u.Kind, u.Callee)
				case u.Reason != "":
					ew.printf("      %s: %s: %s\n", u.Pos, u.Kind, u.Reason)
				default:
					ew.printf("      %s: %s\n", u.Pos, u.Kind)
				}
			}
		}
		for _, c := range f.Calls {
			ew.printf("  %s: call %s() from %s\n", c.Pos, c.Target, c.Caller)
			for _, arg := range c.Dots {
				name := arg.Name
				if name == "" {
					name = "<positional>"
				}
				ew.printf("      %s: %s lands in ...\n", arg.Pos, name)
			}
		}
		for _, perr := range f.ParseErrors {
			ew.printf("  %s: parse error: %s\n", perr.Pos, perr.Message)
		}
	}
	return ew.err
}

// printer captures the first write error so output can be written without
// checking every call.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...interface{}) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}
