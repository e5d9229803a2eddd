// Copyright © 2024 The dotlint authors

package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterExcludes_ByName(t *testing.T) {
	paths := []string{
		"R/summary.R",
		"R/zzz.R",
		"tests/helpers.R",
	}
	result := filterExcludes(paths, []string{"zzz.R"})
	assert.Equal(t, []string{"R/summary.R", "tests/helpers.R"}, result)
}

func TestFilterExcludes_ByDirectory(t *testing.T) {
	paths := []string{
		"R/summary.R",
		"data-raw/build.R",
		"data-raw/sub/deep.R",
		"tests/helpers.R",
	}
	result := filterExcludes(paths, []string{"data-raw"})
	assert.Equal(t, []string{"R/summary.R", "tests/helpers.R"}, result)
}

func TestFilterExcludes_GlobPattern(t *testing.T) {
	paths := []string{
		"R/summary.R",
		"R/RcppExports.R",
		"R/RcppExports_extra.R",
		"tests/helpers.R",
	}
	result := filterExcludes(paths, []string{"RcppExports*"})
	assert.Equal(t, []string{"R/summary.R", "tests/helpers.R"}, result)
}

func TestFilterExcludes_MultiplePatterns(t *testing.T) {
	paths := []string{
		"R/summary.R",
		"data-raw/build.R",
		"R/zzz.R",
		"tests/helpers.R",
	}
	result := filterExcludes(paths, []string{"data-raw", "zzz.R"})
	assert.Equal(t, []string{"R/summary.R", "tests/helpers.R"}, result)
}

func TestFilterExcludes_NoMatches(t *testing.T) {
	paths := []string{
		"R/summary.R",
		"tests/helpers.R",
	}
	result := filterExcludes(paths, []string{"nonexistent"})
	assert.Equal(t, []string{"R/summary.R", "tests/helpers.R"}, result)
}

func TestFilterExcludes_EmptyExcludes(t *testing.T) {
	paths := []string{"R/summary.R"}
	result := filterExcludes(paths, nil)
	assert.Equal(t, []string{"R/summary.R"}, result)
}

func TestMatchesAny_FullPath(t *testing.T) {
	assert.True(t, matchesAny("R/summary.R", []string{"R/*.R"}))
	assert.False(t, matchesAny("tests/summary.R", []string{"R/*.R"}))
}

func TestMatchesAny_BaseName(t *testing.T) {
	assert.True(t, matchesAny("deep/nested/zzz.R", []string{"zzz.R"}))
}

func TestMatchesAny_Component(t *testing.T) {
	assert.True(t, matchesAny("pkg/data-raw/build.R", []string{"data-raw"}))
	assert.False(t, matchesAny("pkg/R/build.R", []string{"data-raw"}))
}

func TestSplitPath(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c.R"}, splitPath("a/b/c.R"))
	assert.Equal(t, []string{"a", "c.R"}, splitPath("./a//c.R"))
}

func TestExpandArgs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "R"), 0750))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "data-raw"), 0750))
	for _, name := range []string{"R/a.R", "R/b.r", "R/notes.txt", "data-raw/build.R"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x <- 1\n"), 0600))
	}

	t.Run("directory", func(t *testing.T) {
		paths, err := expandArgs([]string{filepath.Join(dir, "R")}, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{
			filepath.Join(dir, "R", "a.R"),
			filepath.Join(dir, "R", "b.r"),
		}, paths)
	})

	t.Run("recursive pattern with exclude", func(t *testing.T) {
		paths, err := expandArgs([]string{dir + "/..."}, []string{"data-raw"})
		require.NoError(t, err)
		assert.Equal(t, []string{
			filepath.Join(dir, "R", "a.R"),
			filepath.Join(dir, "R", "b.r"),
		}, paths)
	})

	t.Run("files pass through and dedupe", func(t *testing.T) {
		a := filepath.Join(dir, "R", "a.R")
		missing := filepath.Join(dir, "missing.R")
		paths, err := expandArgs([]string{a, missing, filepath.Join(dir, "R")}, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{a, missing, filepath.Join(dir, "R", "b.r")}, paths)
	})

	t.Run("missing recursive root", func(t *testing.T) {
		_, err := expandArgs([]string{filepath.Join(dir, "nope") + "/..."}, nil)
		assert.Error(t, err)
	})
}
