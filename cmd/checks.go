// Copyright © 2024 The dotlint authors

package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/luthersystems/dotlint/lint"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
	"github.com/spf13/cobra"
)

func newChecksCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "checks [CHECK]",
		Short: "Show documentation for the available checks",
		Long: `Show documentation for the checks run by "dotlint lint".

With no arguments, lists every check with its default severity and a
one-line summary.  With the name of a check, prints its full description.

Examples:
  dotlint checks                  List all checks
  dotlint checks dots-coercion    Describe the dots-coercion check`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := bufio.NewWriter(cmd.OutOrStdout())
			pool := a.analyzerPool()
			var err error
			if len(args) == 0 {
				err = renderCheckList(out, pool)
			} else {
				an := findAnalyzer(pool, args[0])
				if an == nil {
					return usageError("unknown check: %s", args[0])
				}
				err = renderCheck(out, an)
			}
			if err != nil {
				return err
			}
			return out.Flush()
		},
	}
}

func findAnalyzer(pool []*lint.Analyzer, name string) *lint.Analyzer {
	for _, an := range pool {
		if an.Name == name {
			return an
		}
	}
	return nil
}

func renderCheckList(w io.Writer, pool []*lint.Analyzer) error {
	width := 0
	for _, an := range pool {
		if len(an.Name) > width {
			width = len(an.Name)
		}
	}
	for _, an := range pool {
		summary, _, _ := strings.Cut(an.Doc, "\n")
		_, err := fmt.Fprintf(w, "%-*s  %-8s %s\n", width, an.Name, an.Severity, summary)
		if err != nil {
			return err
		}
	}
	return nil
}

func renderCheck(w io.Writer, an *lint.Analyzer) error {
	_, err := fmt.Fprintf(w, "%s (default severity: %s)\n\n%s\n", an.Name, an.Severity,
		indent.String(wordwrap.String(strings.TrimSpace(an.Doc), 72), 2))
	return err
}
