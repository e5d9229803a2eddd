// Copyright © 2024 The dotlint authors

package lsp

import (
	"strings"

	"github.com/luthersystems/dotlint/ast"
	"github.com/luthersystems/dotlint/parser/token"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// locToLSPPosition converts a 1-based source location to a 0-based LSP
// position.
func locToLSPPosition(loc *token.Location) protocol.Position {
	return protocol.Position{
		Line:      safeUint(loc.Line - 1),
		Character: safeUint(loc.Col - 1),
	}
}

// safeUint converts an int to protocol.UInteger, clamping negative values
// to zero.
func safeUint(n int) protocol.UInteger {
	if n < 0 {
		return 0
	}
	return protocol.UInteger(n) // #nosec G115 -- line/col are always small positive ints
}

// locToLSPRange returns the range of a token of width n starting at loc.
func locToLSPRange(loc *token.Location, n int) protocol.Range {
	start := locToLSPPosition(loc)
	end := start
	end.Character += safeUint(n)
	return protocol.Range{Start: start, End: end}
}

// lineAt returns the 0-based line of content, or "".
func lineAt(content string, line int) string {
	lines := strings.Split(content, "\n")
	if line < 0 || line >= len(lines) {
		return ""
	}
	return strings.TrimRight(lines[line], "\r")
}

// wordFrom returns the name starting at byte offset col of ln.
func wordFrom(ln string, col int) string {
	if col < 0 || col >= len(ln) {
		return ""
	}
	end := col
	for end < len(ln) && isNameChar(ln[end]) {
		end++
	}
	return ln[col:end]
}

// wordAtPosition extracts the name at the given 0-based LSP position.  The
// cursor can be inside or at the end of a name.
func wordAtPosition(content string, line, col int) string {
	ln := lineAt(content, line)
	if col < 0 || col > len(ln) {
		return ""
	}
	start := col
	for start > 0 && isNameChar(ln[start-1]) {
		start--
	}
	end := col
	for end < len(ln) && isNameChar(ln[end]) {
		end++
	}
	return ln[start:end]
}

// isNameChar reports whether c can appear in an unquoted R name.
func isNameChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '.' || c == '_':
		return true
	}
	return c >= 0x80
}

// identAt returns the identifier covering the 0-based LSP position.
func identAt(file *ast.File, line, col int) *ast.Ident {
	if file == nil {
		return nil
	}
	line, col = line+1, col+1
	var found *ast.Ident
	for _, expr := range file.Exprs {
		ast.Inspect(expr, func(n ast.Node) bool {
			if found != nil {
				return false
			}
			id, ok := n.(*ast.Ident)
			if ok && covers(id.NamePos, len(id.Name), line, col) {
				found = id
			}
			return found == nil
		})
	}
	return found
}

// covers reports whether the 1-based line and col fall within the token
// of width n at loc.  The position just past the token counts, so a cursor
// at the end of a name still finds it.
func covers(loc *token.Location, n, line, col int) bool {
	if loc == nil || loc.Line != line || loc.Col == 0 {
		return false
	}
	return col >= loc.Col && col <= loc.Col+n
}

// uriToPath converts a file:// URI to a filesystem path.
func uriToPath(uri string) string {
	if path, ok := strings.CutPrefix(uri, "file://"); ok {
		return path
	}
	return uri
}

// pathToURI converts a filesystem path to a file:// URI.
func pathToURI(path string) string {
	if strings.HasPrefix(path, "/") {
		return "file://" + path
	}
	return path
}
