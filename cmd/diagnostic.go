// Copyright © 2024 The dotlint authors

package cmd

import (
	"io"

	"github.com/luthersystems/dotlint/diagnostic"
	"github.com/luthersystems/dotlint/lint"
)

func newRenderer(color diagnostic.ColorMode, sources map[string][]byte) *diagnostic.Renderer {
	return &diagnostic.Renderer{Color: color, SourceReader: readFile(sources)}
}

// lintDiagToDiagnostic converts a lint.Diagnostic to a diagnostic.Diagnostic.
func lintDiagToDiagnostic(ld lint.Diagnostic) diagnostic.Diagnostic {
	d := diagnostic.Diagnostic{
		Severity: diagnosticSeverity(ld.Severity),
		Code:     ld.Analyzer,
		Message:  ld.Message,
	}
	if ld.Pos.Line > 0 {
		d.Spans = append(d.Spans, diagnostic.Span{
			File: ld.Pos.File,
			Line: ld.Pos.Line,
			Col:  ld.Pos.Col,
		})
	}
	d.Notes = append(d.Notes, ld.Notes...)
	if ld.Analyzer != "" {
		d.Notes = append(d.Notes, "to suppress: add \"# nolint:"+ld.Analyzer+"\" as a comment on this line")
	}
	return d
}

func diagnosticSeverity(sev lint.Severity) diagnostic.Severity {
	switch sev {
	case lint.SeverityError:
		return diagnostic.SeverityError
	case lint.SeverityInfo:
		return diagnostic.SeverityInfo
	case lint.SeverityUnknown:
		return diagnostic.SeverityUnknown
	default:
		return diagnostic.SeverityWarning
	}
}

// renderLintDiagnostics renders lint diagnostics as annotated source
// snippets.
func renderLintDiagnostics(w io.Writer, diags []lint.Diagnostic, color diagnostic.ColorMode, sources map[string][]byte) error {
	ds := make([]diagnostic.Diagnostic, 0, len(diags))
	for _, ld := range diags {
		ds = append(ds, lintDiagToDiagnostic(ld))
	}
	return newRenderer(color, sources).RenderAll(w, ds)
}
