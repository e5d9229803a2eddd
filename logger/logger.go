// Copyright © 2024 The dotlint authors

// Package logger builds the hclog loggers used by the dotlint commands.
// Logs go to stderr so they never mix with findings on stdout.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// EnvLogLevel overrides the configured log level when set.
const EnvLogLevel = "DOTLINT_LOG_LEVEL"

// Config holds the logger settings read from the config file.
type Config struct {
	Level           string `mapstructure:"level"`
	JSONFormat      bool   `mapstructure:"json"`
	IncludeLocation bool   `mapstructure:"include_location"`
}

// New creates a logger named name.  The level comes from EnvLogLevel, then
// cfg, and defaults to WARN.  A nil output writes to stderr.
func New(cfg *Config, name string, output io.Writer) hclog.Logger {
	if cfg == nil {
		cfg = &Config{}
	}
	if output == nil {
		output = os.Stderr
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:            name,
		DisableTime:     true,
		JSONFormat:      cfg.JSONFormat,
		IncludeLocation: cfg.IncludeLocation,
		Output:          output,
		Level:           determineLogLevel(cfg),
	})
}

// determineLogLevel returns the level from the environment if set, else
// from the configuration.
func determineLogLevel(cfg *Config) hclog.Level {
	if env := os.Getenv(EnvLogLevel); env != "" {
		return ParseLevel(env)
	}
	return ParseLevel(cfg.Level)
}

// ParseLevel converts a level name to hclog.Level.  Unrecognized names map
// to WARN.
func ParseLevel(level string) hclog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "TRACE":
		return hclog.Trace
	case "DEBUG":
		return hclog.Debug
	case "INFO":
		return hclog.Info
	case "ERROR":
		return hclog.Error
	case "OFF":
		return hclog.Off
	default:
		return hclog.Warn
	}
}
