// Copyright © 2024 The dotlint authors

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/luthersystems/dotlint/lint"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

// stdinName is the file name reported for source read from stdin.
const stdinName = "<stdin>"

func newLintCommand(a *app) *cobra.Command {
	var listAll bool
	cmd := &cobra.Command{
		Use:   "lint [flags] [paths...]",
		Short: "Check R source files for misuse of ...",
		Long: `Check R source files for misuse of the variadic parameter "...".

Paths may be files or directories.  Directories, and patterns ending in
"/...", are searched recursively for .R and .r files, skipping hidden
directories and renv/packrat libraries.  With no paths, or the path "-",
source is read from stdin.

Top-level function definitions in every checked file are visible to calls
in every other file, so a call in one file is checked against a signature
defined in another.

Each finding is printed as one line:
  <file>:<line>: <severity>: <message>

Findings are ordered by severity (error, warning, info, unknown), then by
file and line.  A file that fails to parse is reported with a warning and
the rest of it, and every other file, is still checked.

Exit codes:
  0  No findings at or above the --fail-on severity (default: error)
  1  One or more findings at or above the --fail-on severity
  2  Bad invocation, unreadable file or config, or an internal check failure

To suppress a specific finding, add a comment on the same line:
  total <- function(...) sum(c(...))  # nolint:dots-coercion

To suppress all checks on a line:
  total <- function(...) sum(c(...))  # nolint

Available checks (use --checks to select specific ones):
` + lint.AnalyzerDoc() + `
Examples:
  dotlint lint R/                                  # Check a package
  dotlint lint --format=json R/ tests/             # Output findings as JSON
  dotlint lint --format=sarif ./... > dots.sarif   # SARIF for code scanning
  dotlint lint --checks=dots-coercion file.R       # Run only specific checks
  dotlint lint --severity dots-unused=info R/      # Change a check's severity
  dotlint lint --container=vec_c2 R/               # Treat vec_c2 like c()
  dotlint lint --exclude='data-raw' .              # Exclude a directory
  cat file.R | dotlint lint                        # Check stdin`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if listAll {
				for _, an := range a.analyzerPool() {
					fmt.Fprintln(cmd.OutOrStdout(), an.Name) //nolint:errcheck // best-effort output
				}
				return nil
			}
			return a.runLint(cmd, args)
		},
	}

	flags := cmd.Flags()
	flags.String("format", "text", `Output format: "text", "json", "sarif", or "pretty".`)
	flags.StringSlice("checks", nil, "Comma-separated list of checks to run (default: all).")
	flags.StringSlice("disable", nil, "Comma-separated list of checks to skip.")
	flags.StringArray("exclude", nil, "Glob pattern for files to exclude (may be repeated).")
	flags.String("fail-on", "error", `Lowest severity that makes the exit code 1: "error", "warning", "info", or "unknown".`)
	flags.Int("jobs", 0, "Number of files to analyze concurrently (default: unlimited).")
	flags.StringToString("severity", nil, "Override the severity of a check, e.g. dots-unused=info.")
	flags.StringSlice("container", nil, "Additional functions that coerce their arguments into one vector, like c().")
	flags.StringSlice("collector", nil, "Additional functions that collect ... into a list, like list().")
	flags.BoolVar(&listAll, "list", false, "List available checks and exit.")

	v := a.cfg.viper
	for key, name := range map[string]string{
		"format":     "format",
		"checks":     "checks",
		"disable":    "disable",
		"exclude":    "exclude",
		"fail_on":    "fail-on",
		"jobs":       "jobs",
		"severity":   "severity",
		"containers": "container",
		"collectors": "collector",
	} {
		_ = v.BindPFlag(key, flags.Lookup(name))
	}
	return cmd
}

// analyzerPool returns the built-in checks plus any registered by options.
func (a *app) analyzerPool() []*lint.Analyzer {
	return append(lint.DefaultAnalyzers(), a.cfg.analyzers...)
}

func (a *app) runLint(cmd *cobra.Command, args []string) error {
	settings, err := readLintSettings(a.cfg.viper)
	if err != nil {
		return &exitError{code: ExitUsage, err: err}
	}
	l, failOn, err := settings.linter(a.analyzerPool())
	if err != nil {
		return &exitError{code: ExitUsage, err: err}
	}
	l.Logger = a.log

	var (
		diags   []lint.Diagnostic
		runErr  error
		sources = map[string][]byte{}
	)
	if len(args) == 0 || (len(args) == 1 && args[0] == "-") {
		src, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return usageError("reading stdin: %w", err)
		}
		sources[stdinName] = src
		diags, runErr = l.LintSources(cmd.Context(), []lint.Source{{Name: stdinName, Data: src}})
	} else {
		paths, err := expandArgs(args, settings.Exclude)
		if err != nil {
			return &exitError{code: ExitUsage, err: err}
		}
		a.log.Debug("linting", "files", len(paths), "checks", len(l.Analyzers))
		diags, runErr = l.LintPaths(cmd.Context(), paths)
	}

	out := cmd.OutOrStdout()
	switch settings.Format {
	case "json":
		err = lint.FormatJSON(out, diags)
	case "sarif":
		err = lint.FormatSARIF(out, diags, l.Analyzers)
	case "pretty":
		err = renderLintDiagnostics(out, diags, a.colorMode(), sources)
	default:
		err = lint.FormatText(out, diags)
	}
	if err != nil {
		runErr = multierr.Append(runErr, fmt.Errorf("writing output: %w", err))
	}

	if runErr != nil {
		for _, e := range multierr.Errors(runErr) {
			fmt.Fprintln(cmd.ErrOrStderr(), "dotlint:", e) //nolint:errcheck // best-effort output to stderr
		}
		return &exitError{code: ExitUsage}
	}
	if lint.HasFailures(diags, failOn) {
		return &exitError{code: ExitFindings}
	}
	return nil
}

// readFile reads source for display.  Source read from stdin is served
// from sources.
func readFile(sources map[string][]byte) func(string) ([]byte, error) {
	return func(name string) ([]byte, error) {
		if src, ok := sources[name]; ok {
			return src, nil
		}
		return os.ReadFile(name) //nolint:gosec // reads user-specified source files for display
	}
}
