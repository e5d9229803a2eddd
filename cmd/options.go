// Copyright © 2024 The dotlint authors

package cmd

import (
	"github.com/hashicorp/go-hclog"
	"github.com/luthersystems/dotlint/lint"
	"github.com/spf13/viper"
)

// Option configures a command tree built by NewRootCommand.
type Option func(*cmdConfig)

type cmdConfig struct {
	viper     *viper.Viper
	logger    hclog.Logger
	analyzers []*lint.Analyzer
}

func newCmdConfig(opts []Option) *cmdConfig {
	c := &cmdConfig{}
	for _, opt := range opts {
		opt(c)
	}
	if c.viper == nil {
		c.viper = newViper()
	}
	return c
}

// WithViper injects the viper instance that holds configuration.  Values
// already set on it take part in lookups alongside the config file.
func WithViper(v *viper.Viper) Option {
	return func(c *cmdConfig) { c.viper = v }
}

// WithLogger injects a logger in place of the one built from the
// configuration.
func WithLogger(l hclog.Logger) Option {
	return func(c *cmdConfig) { c.logger = l }
}

// WithAnalyzers registers checks in addition to the built-in set.  They can
// be selected with --checks and suppressed with nolint comments like any
// other check.
func WithAnalyzers(analyzers ...*lint.Analyzer) Option {
	return func(c *cmdConfig) { c.analyzers = append(c.analyzers, analyzers...) }
}
