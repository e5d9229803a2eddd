// Copyright © 2024 The dotlint authors

package lint

import (
	"io"
	"strings"

	"github.com/owenrumney/go-sarif/v2/sarif"
)

const (
	toolName = "dotlint"
	toolURI  = "https://github.com/luthersystems/dotlint"
)

// FormatSARIF writes diagnostics as a SARIF 2.1.0 log.  Every analyzer in
// analyzers is declared as a rule even when it reported nothing.
func FormatSARIF(w io.Writer, diags []Diagnostic, analyzers []*Analyzer) error {
	report, err := sarif.New(sarif.Version210)
	if err != nil {
		return err
	}
	run := sarif.NewRunWithInformationURI(toolName, toolURI)
	for _, a := range analyzers {
		addRule(run, a.Name, firstLine(a.Doc), a.Severity)
	}
	for _, d := range diags {
		rule := addRule(run, d.Analyzer, "", d.Severity)
		region := sarif.NewRegion().WithStartLine(d.Pos.Line)
		if d.Pos.Col > 0 {
			region = region.WithStartColumn(d.Pos.Col)
		}
		location := sarif.NewLocation().WithPhysicalLocation(
			sarif.NewPhysicalLocation().
				WithArtifactLocation(sarif.NewArtifactLocation().WithUri(d.Pos.File)).
				WithRegion(region),
		)
		msg := d.Message
		if len(d.Notes) > 0 {
			msg += "\n" + strings.Join(d.Notes, "\n")
		}
		result := sarif.NewRuleResult(rule.ID).
			WithMessage(sarif.NewTextMessage(msg)).
			WithLevel(sarifLevel(d.Severity)).
			WithLocations([]*sarif.Location{location})
		run.AddResult(result)
	}
	report.AddRun(run)
	return report.PrettyWrite(w)
}

func addRule(run *sarif.Run, id, desc string, sev Severity) *sarif.ReportingDescriptor {
	for _, r := range run.Tool.Driver.Rules {
		if r.ID == id {
			return r
		}
	}
	rule := run.AddRule(id).
		WithDefaultConfiguration(&sarif.ReportingConfiguration{
			Level: sarifLevel(sev),
		})
	if desc != "" {
		rule.WithDescription(desc)
	}
	return rule
}

func sarifLevel(sev Severity) string {
	switch sev {
	case SeverityError:
		return "error"
	case SeverityWarning, severityUnset:
		return "warning"
	case SeverityInfo:
		return "note"
	default:
		return "none"
	}
}

func firstLine(doc string) string {
	line, _, _ := strings.Cut(doc, "\n")
	return line
}
