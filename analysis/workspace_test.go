// Copyright © 2024 The dotlint authors

package analysis

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signatureNames(sigs []*Signature) map[string]bool {
	names := make(map[string]bool)
	for _, s := range sigs {
		names[s.Name] = true
	}
	return names
}

func TestScanWorkspace_Basic(t *testing.T) {
	dir := t.TempDir()

	// Only named top-level definitions are visible to other files
	err := os.WriteFile(filepath.Join(dir, "lib.R"), []byte(`
public_fn <- function(a, ...) {
  helper <- function(x) x
  helper(a)
}
lapply(1:3, function(i) i)
my_var <- 42
`), 0600)
	require.NoError(t, err)

	sigs, err := ScanWorkspace(dir)
	require.NoError(t, err)

	names := signatureNames(sigs)
	assert.True(t, names["public_fn"], "top-level function should be included")
	assert.False(t, names["helper"], "nested function should be excluded")
	assert.False(t, names[Anonymous], "anonymous function should be excluded")
	assert.False(t, names["my_var"], "variables are not signatures")
}

func TestScanWorkspace_MultipleFiles(t *testing.T) {
	dir := t.TempDir()

	err := os.WriteFile(filepath.Join(dir, "a.R"), []byte("fn_a <- function() 1\n"), 0600)
	require.NoError(t, err)
	err = os.WriteFile(filepath.Join(dir, "b.r"), []byte("fn_b <- function() 2\n"), 0600)
	require.NoError(t, err)

	sigs, err := ScanWorkspace(dir)
	require.NoError(t, err)

	names := signatureNames(sigs)
	assert.True(t, names["fn_a"])
	assert.True(t, names["fn_b"])
}

func TestScanWorkspace_SkipsParseErrors(t *testing.T) {
	dir := t.TempDir()

	// The unterminated definition is dropped, the one after it survives
	err := os.WriteFile(filepath.Join(dir, "bad.R"), []byte(`broken <- function(...) {
  c(...)

good_fn <- function(...) list(...)
`), 0600)
	require.NoError(t, err)

	sigs, err := ScanWorkspace(dir)
	require.NoError(t, err)

	names := signatureNames(sigs)
	assert.True(t, names["good_fn"], "definitions after a parse error should still be scanned")
	assert.False(t, names["broken"])
}

func TestScanWorkspace_SkipsNonR(t *testing.T) {
	dir := t.TempDir()

	err := os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("f <- function(...) 1"), 0600)
	require.NoError(t, err)

	sigs, err := ScanWorkspace(dir)
	require.NoError(t, err)
	assert.Empty(t, sigs)
}

func TestScanWorkspace_Subdirectories(t *testing.T) {
	dir := t.TempDir()
	subdir := filepath.Join(dir, "R")
	require.NoError(t, os.MkdirAll(subdir, 0750))
	hidden := filepath.Join(dir, ".Rproj.user")
	require.NoError(t, os.MkdirAll(hidden, 0750))

	err := os.WriteFile(filepath.Join(subdir, "deep.R"), []byte("deep_fn <- function(...) NULL\n"), 0600)
	require.NoError(t, err)
	err = os.WriteFile(filepath.Join(hidden, "cache.R"), []byte("cached_fn <- function(...) NULL\n"), 0600)
	require.NoError(t, err)

	sigs, err := ScanWorkspace(dir)
	require.NoError(t, err)

	names := signatureNames(sigs)
	assert.True(t, names["deep_fn"], "files in subdirectories should be scanned")
	assert.False(t, names["cached_fn"], "hidden directories should be skipped")
}

func TestScanWorkspace_SignaturePreserved(t *testing.T) {
	dir := t.TempDir()

	err := os.WriteFile(filepath.Join(dir, "lib.R"), []byte("add <- function(a, b = 1, ...) a + b\n"), 0600)
	require.NoError(t, err)

	sigs, err := ScanWorkspace(dir)
	require.NoError(t, err)

	require.Len(t, sigs, 1)
	assert.Equal(t, "add", sigs[0].Name)
	assert.Equal(t, 2, sigs[0].DotsIndex)
	assert.Equal(t, filepath.Join(dir, "lib.R"), sigs[0].File)
}

func TestShouldSkipDir(t *testing.T) {
	assert.False(t, shouldSkipDir("."))
	assert.False(t, shouldSkipDir(".."))
	assert.True(t, shouldSkipDir(".git"))
	assert.True(t, shouldSkipDir("renv"))
	assert.False(t, shouldSkipDir("R"))
}

func TestIsSourceFile(t *testing.T) {
	assert.True(t, IsSourceFile("a/b.R"))
	assert.True(t, IsSourceFile("b.r"))
	assert.False(t, IsSourceFile("b.Rmd"))
	assert.False(t, IsSourceFile("R"))
}

func TestSourceFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "R"), 0750))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "renv", "library"), 0750))
	for _, name := range []string{"R/b.R", "R/a.r", "renv/library/x.R", "notes.md", "z.R"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x <- 1\n"), 0600))
	}

	paths, err := SourceFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "R", "a.r"),
		filepath.Join(dir, "R", "b.R"),
		filepath.Join(dir, "z.R"),
	}, paths)
}

func TestSourceFiles_MissingRoot(t *testing.T) {
	_, err := SourceFiles(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
