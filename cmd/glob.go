// Copyright © 2024 The dotlint authors

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/luthersystems/dotlint/analysis"
)

// expandArgs resolves command line paths to the R files to check.
// Directories, and patterns ending with "/...", expand to every R source
// file found recursively beneath them.  Other arguments pass through
// unchanged so that a missing file is reported when it is read.  Paths
// matching an exclude pattern are dropped.
func expandArgs(args []string, excludes []string) ([]string, error) {
	var out []string
	for _, arg := range args {
		dir, recursive := strings.CutSuffix(arg, "/...")
		if recursive && dir == "" {
			dir = "."
		}
		if arg == "..." {
			dir, recursive = ".", true
		}
		if !recursive {
			if info, err := os.Stat(arg); err == nil && info.IsDir() {
				dir, recursive = arg, true
			}
		}
		if !recursive {
			out = append(out, arg)
			continue
		}
		files, err := analysis.SourceFiles(dir)
		if err != nil {
			return nil, fmt.Errorf("expanding %s: %w", arg, err)
		}
		out = append(out, files...)
	}
	return dedupe(filterExcludes(out, excludes)), nil
}

// dedupe removes repeated paths, keeping the first occurrence.
func dedupe(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	out := paths[:0]
	for _, p := range paths {
		key := filepath.Clean(p)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, p)
	}
	return out
}

// filterExcludes removes paths matching any of the exclude patterns.
func filterExcludes(paths []string, excludes []string) []string {
	if len(excludes) == 0 {
		return paths
	}
	var out []string
	for _, p := range paths {
		if !matchesAny(p, excludes) {
			out = append(out, p)
		}
	}
	return out
}

// matchesAny reports whether path matches a pattern as a whole, by its base
// name, or by any of its directory components.
func matchesAny(path string, patterns []string) bool {
	path = filepath.ToSlash(path)
	for _, pat := range patterns {
		if ok, _ := filepath.Match(pat, path); ok {
			return true
		}
		for _, part := range splitPath(path) {
			if ok, _ := filepath.Match(pat, part); ok {
				return true
			}
		}
	}
	return false
}

// splitPath returns the components of a slash separated path.
func splitPath(path string) []string {
	var parts []string
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part != "" && part != "." {
			parts = append(parts, part)
		}
	}
	return parts
}
