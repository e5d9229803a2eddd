// Copyright © 2024 The dotlint authors

package logger

import (
	"bytes"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]hclog.Level{
		"trace":   hclog.Trace,
		"DEBUG":   hclog.Debug,
		" info ":  hclog.Info,
		"warn":    hclog.Warn,
		"error":   hclog.Error,
		"off":     hclog.Off,
		"":        hclog.Warn,
		"verbose": hclog.Warn,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestNew_ConfigLevel(t *testing.T) {
	t.Setenv(EnvLogLevel, "")
	var buf bytes.Buffer
	log := New(&Config{Level: "debug"}, "dotlint", &buf)
	log.Debug("scanning", "files", 3)
	log.Trace("hidden")
	out := buf.String()
	assert.Contains(t, out, "[DEBUG] dotlint: scanning: files=3")
	assert.NotContains(t, out, "hidden")
}

func TestNew_EnvOverridesConfig(t *testing.T) {
	t.Setenv(EnvLogLevel, "error")
	var buf bytes.Buffer
	log := New(&Config{Level: "debug"}, "dotlint", &buf)
	log.Warn("quiet")
	log.Error("loud")
	assert.NotContains(t, buf.String(), "quiet")
	assert.Contains(t, buf.String(), "loud")
}

func TestNew_JSON(t *testing.T) {
	t.Setenv(EnvLogLevel, "")
	var buf bytes.Buffer
	log := New(&Config{Level: "info", JSONFormat: true}, "dotlint", &buf)
	log.Info("done", "diagnostics", 2)
	assert.Contains(t, buf.String(), `"@message":"done"`)
	assert.Contains(t, buf.String(), `"diagnostics":2`)
}

func TestNew_NilConfig(t *testing.T) {
	t.Setenv(EnvLogLevel, "")
	var buf bytes.Buffer
	log := New(nil, "dotlint", &buf)
	log.Info("hidden")
	log.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}
