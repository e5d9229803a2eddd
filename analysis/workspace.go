// Copyright © 2024 The dotlint authors

package analysis

import (
	"os"
	"path/filepath"

	"github.com/luthersystems/dotlint/ast"
	"github.com/luthersystems/dotlint/parser"
	"github.com/luthersystems/dotlint/parser/rdparser"
)

// IsSourceFile reports whether path names an R source file.
func IsSourceFile(path string) bool {
	switch filepath.Ext(path) {
	case ".R", ".r":
		return true
	}
	return false
}

// ParseSource parses R source text.  Expressions that fail to parse are
// omitted from the file and returned as errors (fault tolerant).
func ParseSource(source []byte, filename string) (*ast.File, []*rdparser.ParseError) {
	return parser.ParseBytes(filename, source)
}

// ScanWorkspace walks a directory tree, parsing all R files and extracting
// their top-level named function definitions.  The result can be passed to
// NewIndex for cross-file call resolution.
//
// Files that cannot be read are silently skipped, and definitions that
// fail to parse are omitted (fault tolerant).
func ScanWorkspace(root string) ([]*Signature, error) {
	paths, err := SourceFiles(root)
	if err != nil {
		return nil, err
	}
	var sigs []*Signature
	for _, path := range paths {
		fileSrc, readErr := os.ReadFile(path) //nolint:gosec // CLI tool reads user-specified files
		if readErr != nil {
			continue // skip unreadable files
		}
		file, _ := ParseSource(fileSrc, path)
		sigs = append(sigs, TopLevelSignatures(Signatures(file))...)
	}
	return sigs, nil
}

// SourceFiles returns the R source files under root in lexical order.  It
// skips hidden directories (names starting with '.') and renv/packrat
// libraries.  Unreadable directories are skipped.
func SourceFiles(root string) ([]string, error) {
	var paths []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil // skip unreadable dirs
		}
		if info.IsDir() {
			if path != root && shouldSkipDir(info.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if IsSourceFile(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}

// TopLevelSignatures filters sigs to the named top-level definitions, the
// only ones visible from other files.
func TopLevelSignatures(sigs []*Signature) []*Signature {
	var out []*Signature
	for _, sig := range sigs {
		if sig.TopLevel && sig.Name != Anonymous {
			out = append(out, sig)
		}
	}
	return out
}

// shouldSkipDir returns true for directories that should not be walked.
// It skips hidden directories (e.g. .git, .Rproj.user) and vendored
// package libraries, but not "." or ".." which represent the
// current/parent directory.
func shouldSkipDir(name string) bool {
	if name == "." || name == ".." {
		return false
	}
	if len(name) > 0 && name[0] == '.' {
		return true
	}
	switch name {
	case "renv", "packrat":
		return true
	}
	return false
}
