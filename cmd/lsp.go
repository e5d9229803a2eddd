// Copyright © 2024 The dotlint authors

package cmd

import (
	"fmt"

	"github.com/luthersystems/dotlint/lsp"
	"github.com/spf13/cobra"
)

func newLSPCommand(a *app) *cobra.Command {
	var (
		stdio bool
		port  int
	)

	cmd := &cobra.Command{
		Use:   "lsp [flags]",
		Short: "Start the dotlint Language Server Protocol server",
		Long: `Start an LSP server that checks R files as they are edited.

The language server publishes dotlint findings as diagnostics and provides
hover (signatures, dots usage and where a named argument lands),
go-to-definition, document and workspace symbols, and quick fixes that
rename a misspelled argument or add a nolint comment.

Checks, severities, containers and collectors are read from the same
configuration file and DOTLINT_ environment variables as "dotlint lint".
Logs are written to stderr.

Transport modes:
  --stdio      Use stdin/stdout for LSP communication (default)
  --port N     Listen for an LSP client on TCP port N

Examples:
  dotlint lsp                  Start with stdio transport
  dotlint lsp --port 7998      Start with TCP on port 7998`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if stdio && port > 0 {
				return usageError("--stdio and --port are mutually exclusive")
			}
			settings, err := readLintSettings(a.cfg.viper)
			if err != nil {
				return &exitError{code: ExitUsage, err: err}
			}
			l, _, err := settings.linter(a.analyzerPool())
			if err != nil {
				return &exitError{code: ExitUsage, err: err}
			}
			log := a.log.Named("lsp")
			l.Logger = log
			srv := lsp.New(lsp.WithLinter(l), lsp.WithLogger(log))

			if port > 0 {
				addr := fmt.Sprintf("localhost:%d", port)
				log.Info("listening", "addr", addr)
				err = srv.RunTCP(addr)
			} else {
				err = srv.RunStdio()
			}
			if err != nil {
				return fmt.Errorf("lsp server: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&stdio, "stdio", false,
		"Use stdin/stdout for LSP communication (default behavior)")
	cmd.Flags().IntVar(&port, "port", 0,
		"TCP port for LSP server (use instead of --stdio)")

	return cmd
}
