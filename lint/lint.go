// Copyright © 2024 The dotlint authors

// Package lint reports misuse of the R variadic parameter "..." in source
// files.
//
// The linter is modeled after go vet: each check is an independent Analyzer
// that receives a parsed file together with its dots analysis and reports
// diagnostics.  The framework handles parsing, running analyzers,
// suppression comments, ordering and output formats.
//
// Parse errors never stop a run.  An expression that fails to parse is
// reported by the parse-error analyzer and the rest of the file is still
// checked.
package lint

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/luthersystems/dotlint/analysis"
	"github.com/luthersystems/dotlint/ast"
	"github.com/luthersystems/dotlint/parser/rdparser"
	"github.com/luthersystems/dotlint/parser/token"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

const tracerName = "github.com/luthersystems/dotlint/lint"

// Severity indicates the severity level of a lint diagnostic.
type Severity int

const (
	severityUnset Severity = iota // unexported zero sentinel for default detection
	SeverityError
	SeverityWarning
	SeverityInfo
	// SeverityUnknown marks findings the linter could not decide either
	// way.  They are shown but never fail a run.
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
	default:
		return "unknown"
	}
}

// ParseSeverity returns the severity named s.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error":
		return SeverityError, nil
	case "warning", "warn":
		return SeverityWarning, nil
	case "info":
		return SeverityInfo, nil
	case "unknown":
		return SeverityUnknown, nil
	}
	return severityUnset, fmt.Errorf("unknown severity: %q", s)
}

// AtLeast reports whether s is as severe as threshold or more.
func (s Severity) AtLeast(threshold Severity) bool {
	return s.rank() <= threshold.rank()
}

func (s Severity) rank() int {
	switch s {
	case SeverityError:
		return 0
	case SeverityWarning, severityUnset:
		return 1
	case SeverityInfo:
		return 2
	default:
		return 3
	}
}

// MarshalJSON serializes the severity as a JSON string.
// An unset severity (zero value) is marshaled as "warning".
func (s Severity) MarshalJSON() ([]byte, error) {
	if s == severityUnset {
		return json.Marshal("warning")
	}
	return json.Marshal(s.String())
}

// UnmarshalJSON deserializes a severity from a JSON string.
func (s *Severity) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	switch str {
	case "error":
		*s = SeverityError
	case "warning":
		*s = SeverityWarning
	case "info":
		*s = SeverityInfo
	case "unknown":
		*s = SeverityUnknown
	default:
		return fmt.Errorf("unknown severity: %q", str)
	}
	return nil
}

// Analyzer defines a single lint check.
type Analyzer struct {
	// Name is a short identifier for this check (e.g. "dots-coercion").
	Name string

	// Doc is a human-readable description. The first line is a short summary.
	Doc string

	// Severity is the default severity for diagnostics from this analyzer.
	Severity Severity

	// Run executes the check. It should call pass.Report() for each finding.
	Run func(pass *Pass) error
}

// Pass provides context to a running analyzer.
type Pass struct {
	// Analyzer is the currently running check.
	Analyzer *Analyzer

	// Filename is the source file being analyzed.
	Filename string

	// File holds the expressions that parsed successfully.
	File *ast.File

	// Semantics holds the dots analysis of File.
	Semantics *analysis.Result

	// ParseErrors are the expressions of the file that failed to parse.
	ParseErrors []*rdparser.ParseError

	// Config is the classifier configuration the file was analyzed with.
	Config *analysis.Config

	// diagnostics collects reported findings.
	diagnostics []Diagnostic
}

// Report records a diagnostic finding.
func (p *Pass) Report(d Diagnostic) {
	d.Analyzer = p.Analyzer.Name
	if d.Severity == severityUnset {
		d.Severity = p.Analyzer.Severity
	}
	p.diagnostics = append(p.diagnostics, d)
}

// ReportWithNotes records a diagnostic with additional hint text.
func (p *Pass) ReportWithNotes(d Diagnostic, notes ...string) {
	d.Notes = append(d.Notes, notes...)
	p.Report(d)
}

// Reportf is a convenience for reporting a diagnostic at a position.
func (p *Pass) Reportf(source *token.Location, format string, args ...interface{}) {
	p.Report(Diagnostic{
		Pos:     PositionOf(source),
		Message: fmt.Sprintf(format, args...),
	})
}

// Diagnostic is a single reported problem.
type Diagnostic struct {
	// Pos is the source location of the problem.
	Pos Position `json:"pos"`

	// Message is a human-readable description of the problem.
	Message string `json:"message"`

	// Analyzer is the name of the check that found this problem.
	Analyzer string `json:"analyzer"`

	// Severity is the severity level of the diagnostic.
	Severity Severity `json:"severity"`

	// Notes are optional hint text lines for the user.
	Notes []string `json:"notes,omitempty"`
}

// Position identifies a location in source code.
type Position struct {
	File string `json:"file"`
	Line int    `json:"line"`
	Col  int    `json:"col,omitempty"`
}

// PositionOf converts a token location.  A nil location yields the zero
// Position.
func PositionOf(loc *token.Location) Position {
	if loc == nil {
		return Position{}
	}
	return Position{File: loc.File, Line: loc.Line, Col: loc.Col}
}

// String returns the position in file:line:col format.
func (p Position) String() string {
	if p.Line == 0 {
		return p.File
	}
	if p.Col > 0 {
		return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Col)
	}
	return fmt.Sprintf("%s:%d", p.File, p.Line)
}

// String returns the diagnostic as a single report line:
// file:line: severity: message
func (d Diagnostic) String() string {
	pos := d.Pos.File
	if d.Pos.Line > 0 {
		pos = fmt.Sprintf("%s:%d", d.Pos.File, d.Pos.Line)
	}
	return fmt.Sprintf("%s: %s: %s", pos, d.Severity, d.Message)
}

// Source is a named chunk of R source text.
type Source struct {
	Name string
	Data []byte
}

// Linter runs a set of analyzers over source files.
type Linter struct {
	Analyzers []*Analyzer

	// Config controls the dots usage classifier.  DefaultConfig is used
	// when nil.
	Config *analysis.Config

	// Severities overrides the default severity of analyzers by name.
	Severities map[string]Severity

	// Jobs bounds the number of files processed concurrently.  Values
	// below one mean no limit.
	Jobs int

	// Logger receives debug output.  A null logger is used when nil.
	Logger hclog.Logger
}

func (l *Linter) logger() hclog.Logger {
	if l.Logger == nil {
		return hclog.NewNullLogger()
	}
	return l.Logger
}

func (l *Linter) config() *analysis.Config {
	if l.Config == nil {
		return analysis.DefaultConfig()
	}
	return l.Config
}

func tracer() trace.Tracer {
	return otel.GetTracerProvider().Tracer(tracerName)
}

// LintFile analyzes a single source file and returns all diagnostics.  Calls
// are resolved against the file's own definitions and the builtins.
func (l *Linter) LintFile(source []byte, filename string) ([]Diagnostic, error) {
	return l.LintFileWithContext(context.Background(), source, filename, nil)
}

// LintFileWithContext analyzes a source file, resolving calls against index
// when it is non-nil.  An error is returned only when an analyzer fails.
func (l *Linter) LintFileWithContext(ctx context.Context, source []byte, filename string, index *analysis.Index) ([]Diagnostic, error) {
	file, perrs := analysis.ParseSource(source, filename)
	all, err := l.lintParsed(ctx, &parsedFile{file: file, errs: perrs}, index)
	if err != nil {
		return nil, err
	}
	sortDiagnostics(all)
	return all, nil
}

// LintPaths reads and analyzes the named files.  Top-level definitions in
// every file are visible to calls in every other file.  Files that cannot be
// read are skipped and their errors combined into the returned error, which
// does not invalidate the returned diagnostics.
func (l *Linter) LintPaths(ctx context.Context, paths []string) ([]Diagnostic, error) {
	srcs := make([]Source, len(paths))
	readErrs := make([]error, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	l.limit(g)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(path) //nolint:gosec // CLI tool reads user-specified files
			if err != nil {
				readErrs[i] = err
				return nil
			}
			srcs[i] = Source{Name: path, Data: data}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var readable []Source
	for i := range srcs {
		if readErrs[i] == nil {
			readable = append(readable, srcs[i])
		}
	}
	diags, err := l.LintSources(ctx, readable)
	return diags, multierr.Combine(append(readErrs, err)...)
}

// LintSources analyzes srcs as one workspace.  Analyzer failures are
// combined into the returned error and the diagnostics of every other file
// are still returned.  When ctx is done before every file is analyzed, no
// diagnostics are returned and the error is ctx.Err().
func (l *Linter) LintSources(ctx context.Context, srcs []Source) ([]Diagnostic, error) {
	ctx, span := tracer().Start(ctx, "lint workspace",
		trace.WithAttributes(attribute.Int("dotlint.files", len(srcs))))
	defer span.End()
	canceled := func(err error) ([]Diagnostic, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, "canceled")
		return nil, err
	}

	parsed := make([]*parsedFile, len(srcs))
	g, gctx := errgroup.WithContext(ctx)
	l.limit(g)
	for i, src := range srcs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			file, perrs := analysis.ParseSource(src.Data, src.Name)
			parsed[i] = &parsedFile{file: file, errs: perrs}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return canceled(err)
	}
	if err := ctx.Err(); err != nil {
		return canceled(err)
	}

	var defs []*analysis.Signature
	for _, p := range parsed {
		defs = append(defs, analysis.TopLevelSignatures(analysis.Signatures(p.file))...)
	}
	index := analysis.NewIndex(defs)
	l.logger().Debug("built workspace index", "files", len(srcs), "definitions", len(defs))

	results := make([][]Diagnostic, len(parsed))
	errs := make([]error, len(parsed))
	g, gctx = errgroup.WithContext(ctx)
	l.limit(g)
	for i, p := range parsed {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i], errs[i] = l.lintParsed(gctx, p, index)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return canceled(err)
	}

	var all []Diagnostic
	for _, diags := range results {
		all = append(all, diags...)
	}
	sortDiagnostics(all)
	err := multierr.Combine(errs...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "analyzer failure")
	}
	return all, err
}

func (l *Linter) limit(g *errgroup.Group) {
	if l.Jobs > 0 {
		g.SetLimit(l.Jobs)
	}
}

type parsedFile struct {
	file *ast.File
	errs []*rdparser.ParseError
}

func (l *Linter) lintParsed(ctx context.Context, p *parsedFile, index *analysis.Index) ([]Diagnostic, error) {
	filename := p.file.Name
	ctx, span := tracer().Start(ctx, "lint "+filename,
		trace.WithAttributes(semconv.CodeFilepath(filename)))
	defer span.End()

	cfg := l.config()
	result := analysis.Analyze(p.file, index, cfg)

	var all []Diagnostic
	var errs error
	for _, analyzer := range l.Analyzers {
		if analyzer.Run == nil {
			continue
		}
		diags, err := l.runAnalyzer(ctx, analyzer, &Pass{
			Analyzer:    analyzer,
			Filename:    filename,
			File:        p.file,
			Semantics:   result,
			ParseErrors: p.errs,
			Config:      cfg,
		})
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: analyzer %s: %w", filename, analyzer.Name, err))
			continue
		}
		all = append(all, diags...)
	}

	// Filter suppressed diagnostics (# nolint comments)
	directives := nolintDirectives(p.file.Comments)
	all = filterSuppressed(all, directives)
	if l.enabled(AnalyzerUnusedNolint.Name) {
		all = append(all, l.unusedNolint(filename, directives)...)
	}
	l.applySeverities(all)

	span.SetAttributes(attribute.Int("dotlint.diagnostics", len(all)))
	if errs != nil {
		span.RecordError(errs)
		span.SetStatus(codes.Error, "analyzer failure")
	}
	l.logger().Debug("linted file", "file", filename,
		"parse_errors", len(p.errs), "diagnostics", len(all))
	return all, errs
}

func (l *Linter) runAnalyzer(ctx context.Context, analyzer *Analyzer, pass *Pass) ([]Diagnostic, error) {
	_, span := tracer().Start(ctx, "analyzer "+analyzer.Name,
		trace.WithAttributes(semconv.CodeFunction(analyzer.Name)))
	defer span.End()
	if err := analyzer.Run(pass); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	// Set file on diagnostics that don't have one
	for i := range pass.diagnostics {
		if pass.diagnostics[i].Pos.File == "" {
			pass.diagnostics[i].Pos.File = pass.Filename
		}
	}
	return pass.diagnostics, nil
}

func (l *Linter) enabled(name string) bool {
	for _, a := range l.Analyzers {
		if a.Name == name {
			return true
		}
	}
	return false
}

func (l *Linter) applySeverities(diags []Diagnostic) {
	for i := range diags {
		if sev, ok := l.Severities[diags[i].Analyzer]; ok {
			diags[i].Severity = sev
		}
	}
}

// sortDiagnostics orders diagnostics by severity, then position.  Ties are
// broken by analyzer and message so output is stable across runs.
func sortDiagnostics(diags []Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool {
		a, b := diags[i], diags[j]
		if a.Severity.rank() != b.Severity.rank() {
			return a.Severity.rank() < b.Severity.rank()
		}
		if a.Pos.File != b.Pos.File {
			return a.Pos.File < b.Pos.File
		}
		if a.Pos.Line != b.Pos.Line {
			return a.Pos.Line < b.Pos.Line
		}
		if a.Pos.Col != b.Pos.Col {
			return a.Pos.Col < b.Pos.Col
		}
		if a.Analyzer != b.Analyzer {
			return a.Analyzer < b.Analyzer
		}
		return a.Message < b.Message
	})
}

// nolintDirective is a suppression comment.  An empty Names suppresses
// every analyzer on the line.
type nolintDirective struct {
	Pos   *token.Location
	Names []string
	used  map[string]bool
}

func (d *nolintDirective) suppresses(analyzer string) bool {
	if len(d.Names) == 0 {
		return true
	}
	for _, name := range d.Names {
		if name == analyzer {
			return true
		}
	}
	return false
}

// nolintDirectives maps lines to the nolint comments on them.
func nolintDirectives(comments []*token.Token) map[int]*nolintDirective {
	lines := make(map[int]*nolintDirective)
	for _, tok := range comments {
		if d := parseNolint(tok); d != nil {
			lines[tok.Source.Line] = d
		}
	}
	return lines
}

func parseNolint(tok *token.Token) *nolintDirective {
	if tok == nil || tok.Source == nil {
		return nil
	}
	// Strip comment prefix
	text := strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(tok.Text), "#'"))
	if !strings.HasPrefix(text, "nolint") {
		return nil
	}
	rest := strings.TrimPrefix(text, "nolint")
	d := &nolintDirective{Pos: tok.Source, used: make(map[string]bool)}
	if rest == "" || rest[0] == ' ' || rest[0] == '\t' {
		return d
	}
	if rest[0] != ':' {
		return nil
	}
	for _, name := range strings.Split(rest[1:], ",") {
		name = strings.TrimSpace(name)
		if i := strings.IndexAny(name, " \t"); i >= 0 {
			name = name[:i]
		}
		if name != "" {
			d.Names = append(d.Names, name)
		}
	}
	return d
}

// filterSuppressed removes diagnostics on lines with nolint comments and
// records which directives were used.
func filterSuppressed(diags []Diagnostic, directives map[int]*nolintDirective) []Diagnostic {
	var filtered []Diagnostic
	for _, d := range diags {
		directive, ok := directives[d.Pos.Line]
		if !ok || !directive.suppresses(d.Analyzer) {
			filtered = append(filtered, d)
			continue
		}
		directive.used[d.Analyzer] = true
	}
	return filtered
}

// unusedNolint reports directives that suppressed nothing or name analyzers
// that do not exist.
func (l *Linter) unusedNolint(filename string, directives map[int]*nolintDirective) []Diagnostic {
	known := make(map[string]bool)
	for _, name := range AnalyzerNames() {
		known[name] = true
	}
	for _, a := range l.Analyzers {
		known[a.Name] = true
	}
	pass := &Pass{Analyzer: AnalyzerUnusedNolint, Filename: filename}
	notes := []string{
		"remove the nolint comment",
		"or silence this check with # nolint:" + AnalyzerUnusedNolint.Name,
	}
	report := func(d *nolintDirective, format string, args ...interface{}) {
		pass.ReportWithNotes(Diagnostic{
			Pos:     PositionOf(d.Pos),
			Message: fmt.Sprintf(format, args...),
		}, notes...)
	}

	lines := make([]int, 0, len(directives))
	for line := range directives {
		lines = append(lines, line)
	}
	sort.Ints(lines)
	for _, line := range lines {
		d := directives[line]
		// A directive that suppressed anything is in use, even when it
		// also names checks that did not fire.
		if len(d.used) > 0 || (len(d.Names) > 0 && d.suppresses(AnalyzerUnusedNolint.Name)) {
			continue
		}
		var unknown []string
		running := len(d.Names) == 0
		for _, name := range d.Names {
			if !known[name] {
				unknown = append(unknown, name)
			} else if l.enabled(name) {
				running = true
			}
		}
		switch {
		case len(unknown) == 1:
			report(d, "nolint directive references unknown analyzer %s", unknown[0])
		case len(unknown) > 1:
			report(d, "nolint directive references unknown analyzers %s", strings.Join(unknown, ", "))
		case running:
			report(d, "nolint directive does not suppress any diagnostic")
		}
	}
	for i := range pass.diagnostics {
		if pass.diagnostics[i].Pos.File == "" {
			pass.diagnostics[i].Pos.File = filename
		}
	}
	return pass.diagnostics
}

// HasFailures reports whether any diagnostic is at least as severe as
// threshold.
func HasFailures(diags []Diagnostic, threshold Severity) bool {
	for _, d := range diags {
		if d.Severity.AtLeast(threshold) {
			return true
		}
	}
	return false
}

// FormatText writes one line per diagnostic in the form
// file:line: severity: message.
func FormatText(w io.Writer, diags []Diagnostic) error {
	for _, d := range diags {
		if _, err := fmt.Fprintln(w, d.String()); err != nil {
			return err
		}
	}
	return nil
}

// FormatJSON writes diagnostics as JSON.
func FormatJSON(w io.Writer, diags []Diagnostic) error {
	if diags == nil {
		diags = []Diagnostic{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(diags)
}
