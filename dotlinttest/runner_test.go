// Copyright © 2024 The dotlint authors

package dotlinttest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpectations(t *testing.T) {
	src := []byte(`f <- function(...) c(...) # want "coerced" "second"
x <- 1
g(na.omit = TRUE) # want ` + "`na\\.omit`" + `
`)
	exp, err := Expectations(src)
	require.NoError(t, err)
	require.Len(t, exp, 2)
	require.Len(t, exp[1], 2)
	assert.Equal(t, "coerced", exp[1][0].String())
	assert.Equal(t, "second", exp[1][1].String())
	require.Len(t, exp[3], 1)
	assert.True(t, exp[3][0].MatchString("argument na.omit matches"))
}

func TestExpectations_Malformed(t *testing.T) {
	_, err := Expectations([]byte("x <- 1 # want unquoted\n"))
	assert.Error(t, err)

	_, err = Expectations([]byte("x <- 1 # want \"(\"\n"))
	assert.Error(t, err)
}

func TestLogger(t *testing.T) {
	log := NewLogger(t)
	n, err := log.Write([]byte("one\ntwo\nthr"))
	require.NoError(t, err)
	assert.Equal(t, 11, n)
	assert.Equal(t, "thr", string(log.buf))
	log.Flush()
	assert.Empty(t, log.buf)
}
