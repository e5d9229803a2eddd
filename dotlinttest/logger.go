// Copyright © 2024 The dotlint authors

package dotlinttest

import (
	"bytes"
	"io"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/luthersystems/dotlint/logger"
)

// Logger is an io.Writer that sends each complete line to t.Log.
type Logger struct {
	t   testing.TB
	buf []byte
}

var _ io.Writer = (*Logger)(nil)

func NewLogger(t testing.TB) *Logger {
	return &Logger{
		t: t,
	}
}

func (log *Logger) Write(b []byte) (int, error) {
	log.buf = append(log.buf, b...)
	for {
		i := bytes.IndexByte(log.buf, '\n')
		if i < 0 {
			return len(b), nil
		}
		log.t.Log(string(log.buf[:i])) // slice does not include \n
		log.buf = log.buf[i+1:]
	}
}

func (log *Logger) Flush() {
	if len(log.buf) == 0 {
		return
	}
	log.t.Log(string(log.buf))
	log.buf = nil
}

// NewHCLogger returns a trace level logger whose output goes to t.Log.  The
// returned Logger should be flushed when the test ends.
func NewHCLogger(t testing.TB) (hclog.Logger, *Logger) {
	w := NewLogger(t)
	return logger.New(&logger.Config{Level: "TRACE"}, "test", w), w
}
