// Copyright © 2024 The dotlint authors

package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/luthersystems/dotlint/diagnostic"
	"github.com/luthersystems/dotlint/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Exit codes returned by Execute.
const (
	ExitOK       = 0 // no failing findings
	ExitFindings = 1 // findings at or above the --fail-on severity
	ExitUsage    = 2 // bad invocation, unreadable input or analyzer failure
)

// exitError carries a process exit code out of a command.  A nil err means
// the command already reported everything it had to say.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

func usageError(format string, args ...interface{}) error {
	return &exitError{code: ExitUsage, err: fmt.Errorf(format, args...)}
}

// app holds the state shared by all subcommands of one root command.
type app struct {
	cfg      *cmdConfig
	cfgFile  string
	color    string
	logLevel string
	log      hclog.Logger
}

// NewRootCommand returns the dotlint command tree.
func NewRootCommand(opts ...Option) *cobra.Command {
	a := &app{cfg: newCmdConfig(opts)}
	root := &cobra.Command{
		Use:   "dotlint",
		Short: "dotlint: find misuse of ... in R code",
		Long: `dotlint is a static checker for the R variadic parameter "...".

It finds functions that collapse their dots into a single vector, where a
misspelled named argument such as na.omit = TRUE is silently treated as
data, and calls that pass such arguments into ....

Getting started:
  dotlint lint R/                 Check every R file under R/
  dotlint lint --format=json .    Report findings as JSON
  dotlint checks                  List the available checks
  dotlint inspect file.R          Show signatures and dots usage
  dotlint lsp                     Run the language server for editors

Configuration is read from .dotlint.yaml in the working directory or your
home directory, or from the file named by --config.  Every setting can also
be given as an environment variable with the DOTLINT_ prefix.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "",
		"config file (default is ./.dotlint.yaml or $HOME/.dotlint.yaml)")
	root.PersistentFlags().StringVar(&a.color, "color", "auto",
		`Control colored output: "auto", "always", or "never".`)
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "",
		"Log level for diagnostics on stderr (trace, debug, info, warn, error).")

	root.AddCommand(newLintCommand(a))
	root.AddCommand(newChecksCommand(a))
	root.AddCommand(newInspectCommand(a))
	root.AddCommand(newLSPCommand(a))
	return root
}

// init reads the configuration file and builds the logger.
func (a *app) init(cmd *cobra.Command) error {
	if err := loadConfig(a.cfg.viper, a.cfgFile); err != nil {
		return &exitError{code: ExitUsage, err: err}
	}
	var logCfg logger.Config
	if err := a.cfg.viper.UnmarshalKey("log", &logCfg); err != nil {
		return usageError("invalid log configuration: %w", err)
	}
	if a.logLevel != "" {
		logCfg.Level = a.logLevel
	}
	a.log = a.cfg.logger
	if a.log == nil {
		a.log = logger.New(&logCfg, "dotlint", cmd.ErrOrStderr())
	}
	if used := a.cfg.viper.ConfigFileUsed(); used != "" {
		a.log.Debug("using config file", "path", used)
	}
	if _, err := diagnostic.ParseColorMode(a.color); err != nil {
		return &exitError{code: ExitUsage, err: err}
	}
	return nil
}

func (a *app) colorMode() diagnostic.ColorMode {
	mode, _ := diagnostic.ParseColorMode(a.color)
	return mode
}

// Execute runs the command tree with the process arguments and returns the
// exit code.  This is called by main.main().
func Execute() int {
	return run(NewRootCommand(), os.Args[1:], os.Stderr)
}

func run(root *cobra.Command, args []string, stderr io.Writer) int {
	root.SetArgs(args)
	err := root.Execute()
	if err == nil {
		return ExitOK
	}
	var exit *exitError
	if errors.As(err, &exit) {
		if exit.err != nil {
			fmt.Fprintln(stderr, "dotlint:", exit.err) //nolint:errcheck // best-effort output to stderr
		}
		return exit.code
	}
	fmt.Fprintln(stderr, "dotlint:", err) //nolint:errcheck // best-effort output to stderr
	return ExitUsage
}

// newViper returns a viper instance set up to read dotlint configuration.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("format", "text")
	v.SetDefault("fail_on", "error")
	return v
}
