// Copyright © 2024 The dotlint authors

package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/luthersystems/dotlint/analysis"
	"github.com/luthersystems/dotlint/lint"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables that override
// configuration keys, e.g. DOTLINT_FAIL_ON.
const EnvPrefix = "DOTLINT"

// loadConfig reads the configuration file into v.  Without an explicit
// file, .dotlint.yaml is searched in the working directory and then the
// home directory; a missing file is not an error.
func loadConfig(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(".dotlint")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}
	return nil
}

// lintSettings is the lint configuration after flags, environment and the
// config file have been merged.
type lintSettings struct {
	Format     string            `mapstructure:"format"`
	Checks     []string          `mapstructure:"checks"`
	Disable    []string          `mapstructure:"disable"`
	Exclude    []string          `mapstructure:"exclude"`
	FailOn     string            `mapstructure:"fail_on"`
	Jobs       int               `mapstructure:"jobs"`
	Severity   map[string]string `mapstructure:"severity"`
	Containers []string          `mapstructure:"containers"`
	Collectors []string          `mapstructure:"collectors"`
}

func readLintSettings(v *viper.Viper) (*lintSettings, error) {
	s := &lintSettings{
		Format:     v.GetString("format"),
		Checks:     splitList(v.GetStringSlice("checks")),
		Disable:    splitList(v.GetStringSlice("disable")),
		Exclude:    v.GetStringSlice("exclude"),
		FailOn:     v.GetString("fail_on"),
		Jobs:       v.GetInt("jobs"),
		Severity:   v.GetStringMapString("severity"),
		Containers: splitList(v.GetStringSlice("containers")),
		Collectors: splitList(v.GetStringSlice("collectors")),
	}
	switch s.Format {
	case "text", "json", "sarif", "pretty":
	default:
		return nil, fmt.Errorf("invalid format %q (want text, json, sarif or pretty)", s.Format)
	}
	return s, nil
}

// splitList flattens comma separated entries, as given by --checks=a,b or
// DOTLINT_CHECKS="a b".
func splitList(items []string) []string {
	var out []string
	for _, item := range items {
		for _, part := range strings.FieldsFunc(item, func(r rune) bool { return r == ',' || r == ' ' }) {
			out = append(out, part)
		}
	}
	return out
}

// linter builds a Linter from the settings.  A nil pool means
// lint.DefaultAnalyzers.
func (s *lintSettings) linter(pool []*lint.Analyzer) (*lint.Linter, lint.Severity, error) {
	if pool == nil {
		pool = lint.DefaultAnalyzers()
	}
	analyzers, err := lint.SelectAnalyzers(pool, s.Checks, s.Disable)
	if err != nil {
		return nil, 0, err
	}
	failOn, err := lint.ParseSeverity(s.FailOn)
	if err != nil {
		return nil, 0, fmt.Errorf("invalid --fail-on: %w", err)
	}
	known := make(map[string]bool)
	for _, a := range pool {
		known[a.Name] = true
	}
	severities := make(map[string]lint.Severity)
	for name, level := range s.Severity {
		if !known[name] {
			return nil, 0, fmt.Errorf("severity set for unknown check: %s", name)
		}
		sev, err := lint.ParseSeverity(level)
		if err != nil {
			return nil, 0, fmt.Errorf("check %s: %w", name, err)
		}
		severities[name] = sev
	}
	return &lint.Linter{
		Analyzers:  analyzers,
		Config:     analysis.NewConfig(s.Containers, s.Collectors),
		Severities: severities,
		Jobs:       s.Jobs,
	}, failOn, nil
}
