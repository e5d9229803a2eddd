// Copyright © 2024 The dotlint authors

// Package diagnostic provides Rust-style annotated rendering of findings
// for dotlint CLI output.  It does not depend on the lint package so that
// any command can render its own messages.
package diagnostic

// Severity indicates the severity level of a diagnostic.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
	SeverityNote
	SeverityUnknown
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	case SeverityNote:
		return "note"
	default:
		return "unknown"
	}
}

// Span identifies a region of source code to highlight in the diagnostic.
type Span struct {
	File   string // path for reading source; display name if unreadable
	Line   int    // 1-based line number
	Col    int    // 1-based start column
	EndCol int    // 1-based end column (0 = auto-detect from source)
	Label  string // text shown under the underline
}

// Diagnostic represents a single finding with optional source annotations
// and trailing notes.
type Diagnostic struct {
	Severity Severity
	Code     string // analyzer name shown as error[code]
	Message  string
	Spans    []Span
	Notes    []string // "= note:" lines
}
