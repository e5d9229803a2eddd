// Copyright © 2024 The dotlint authors

package lint

import (
	"fmt"
	"sort"
	"strings"

	"github.com/luthersystems/dotlint/analysis"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
)

// AnalyzerParseError reports expressions that could not be parsed.  The
// rest of the file is still analyzed.
var AnalyzerParseError = &Analyzer{
	Name:     "parse-error",
	Severity: SeverityWarning,
	Doc:      "Report source that could not be parsed.\n\nThe parser recovers at the start of the next line, so a malformed definition only hides itself. Every later definition in the file is still checked.",
	Run: func(pass *Pass) error {
		for _, err := range pass.ParseErrors {
			pass.ReportWithNotes(Diagnostic{
				Pos:     PositionOf(err.Source),
				Message: "parse error: " + err.Msg,
			}, "the expression was skipped; the rest of the file was still checked")
		}
		return nil
	},
}

// AnalyzerDotsCoercion flags functions that collapse their dots into a
// single vector, where a misspelled named argument such as na.omit = TRUE
// silently becomes a data element.
var AnalyzerDotsCoercion = &Analyzer{
	Name:     "dots-coercion",
	Severity: SeverityError,
	Doc:      "Flag functions that coerce ... into a single container.\n\nA body such as sum(c(...)) treats every extra argument as data. A caller that writes na.omit = TRUE instead of na.rm = TRUE gets TRUE added to the sum instead of an error. Accept the values through a named parameter instead.",
	Run: func(pass *Pass) error {
		for _, site := range pass.Semantics.UsageSites() {
			if site.Kind != analysis.UsageCoerced {
				continue
			}
			sig := site.Signature
			pass.ReportWithNotes(Diagnostic{
				Pos: PositionOf(site.Pos),
				Message: fmt.Sprintf("%s: ... is %s by %s(); promote it to a named parameter",
					sig.Name, site.Kind, site.Callee),
			},
				fmt.Sprintf("named arguments passed to %s() are added to the vector instead of being rejected", sig.Name),
				fmt.Sprintf("declare the values explicitly, e.g. function(x) and %s(x)", site.Callee))
		}
		return nil
	},
}

// AnalyzerDotsNamedArg flags named arguments that no formal parameter
// accepts, so R places them in the callee's dots.
var AnalyzerDotsNamedArg = &Analyzer{
	Name:     "dots-named-arg",
	Severity: SeverityError,
	Doc:      "Flag named arguments that land in ... instead of a parameter.\n\nR matches named arguments exactly, then by unique prefix, against the formals before ..., and only exactly against those after it. A name that matches nothing is swallowed by ... without complaint, which hides typos like na.omit for na.rm.",
	Run: func(pass *Pass) error {
		for _, site := range pass.Semantics.Calls {
			for _, arg := range site.NamedDots() {
				msg := fmt.Sprintf("argument %s matches no parameter of %s and lands in ...", arg.Name, site.Target)
				var notes []string
				if s := analysis.Suggest(arg.Name, site.Target); s != "" {
					msg += fmt.Sprintf(" (did you mean %s?)", s)
				}
				if site.Target.Builtin {
					notes = append(notes, fmt.Sprintf("%s is a base R function", site.Target.Name))
				} else if site.Target.Pos != nil {
					notes = append(notes, fmt.Sprintf("%s is defined at %s", site.Target.Name, PositionOf(site.Target.Pos)))
				}
				pass.ReportWithNotes(Diagnostic{
					Pos:     PositionOf(arg.Pos),
					Message: msg,
				}, notes...)
			}
		}
		return nil
	},
}

// AnalyzerDotsUnresolved surfaces dots usage the classifier could not
// categorize.
var AnalyzerDotsUnresolved = &Analyzer{
	Name:     "dots-unresolved",
	Severity: SeverityUnknown,
	Doc:      "Surface uses of ... that could not be classified.\n\nDots that are quoted, stored in a variable, passed by name, or forwarded to several different calls cannot be followed statically. They are reported so a reviewer can check them, but never fail a run.",
	Run: func(pass *Pass) error {
		for _, site := range pass.Semantics.UsageSites() {
			if site.Kind != analysis.UsageUnknown {
				continue
			}
			reason := site.Reason
			if reason == "" {
				reason = "unrecognized use"
			}
			pass.Reportf(site.Pos, "%s: use of ... could not be classified: %s", site.Signature.Name, reason)
		}
		return nil
	},
}

// AnalyzerDotsUnused flags named functions that declare dots and never
// refer to them.
var AnalyzerDotsUnused = &Analyzer{
	Name:     "dots-unused",
	Severity: SeverityWarning,
	Doc:      "Flag functions that declare ... but never use it.\n\nEvery extra argument, named or not, is silently discarded. Anonymous functions and S3 methods (names containing a dot) are skipped because they often accept ... only to match a generic.",
	Run: func(pass *Pass) error {
		for _, sig := range pass.Semantics.Signatures {
			if !sig.HasDots() || sig.Name == analysis.Anonymous || strings.Contains(sig.Name, ".") {
				continue
			}
			if len(pass.Semantics.Usage[sig]) > 0 {
				continue
			}
			pass.ReportWithNotes(Diagnostic{
				Pos:     PositionOf(sig.Params[sig.DotsIndex].Pos),
				Message: fmt.Sprintf("%s declares ... but never uses it", sig.Name),
			}, "extra arguments passed to "+sig.Name+" are silently ignored")
		}
		return nil
	},
}

// AnalyzerDotsSwallowed flags positional arguments passed into dots that
// the callee ignores.
var AnalyzerDotsSwallowed = &Analyzer{
	Name:     "dots-swallowed",
	Severity: SeverityWarning,
	Doc:      "Flag extra positional arguments passed to a function that ignores its ...\n\nBase functions such as median(x, na.rm = FALSE, ...) accept ... only for method dispatch, so median(1, FALSE, 3) silently drops the 3. Calls that forward their own ... are not checked.",
	Run: func(pass *Pass) error {
		unused := make(map[*analysis.Signature]bool)
		for _, site := range pass.Semantics.Calls {
			if site.ForwardsDots() || !swallows(site.Target, pass.Config, unused) {
				continue
			}
			var extra []analysis.CallArg
			for _, arg := range site.Dots {
				if arg.Name == "" {
					extra = append(extra, arg)
				}
			}
			if len(extra) == 0 {
				continue
			}
			pass.ReportWithNotes(Diagnostic{
				Pos:     PositionOf(extra[0].Pos),
				Message: fmt.Sprintf("%s ignores its ...; %s passed to it %s discarded", site.Target.Name, plural(len(extra), "extra argument"), isAre(len(extra))),
			}, fmt.Sprintf("%s accepts %s", site.Target.Name, site.Target))
		}
		return nil
	},
}

func swallows(sig *analysis.Signature, cfg *analysis.Config, cache map[*analysis.Signature]bool) bool {
	if sig.Builtin {
		return sig.Swallows
	}
	if v, ok := cache[sig]; ok {
		return v
	}
	v := len(analysis.ClassifyUsage(sig, cfg)) == 0
	cache[sig] = v
	return v
}

// AnalyzerDotsAfterRequired notes defaulted parameters declared before
// dots, which extra positional arguments fill by accident.
var AnalyzerDotsAfterRequired = &Analyzer{
	Name:     "dots-after-required",
	Severity: SeverityInfo,
	Doc:      "Note optional parameters declared before ...\n\nA parameter with a default that precedes ... is filled by the first extra positional argument and is matched by any unique prefix of its name. Declaring it after ... makes it settable only by its full name.",
	Run: func(pass *Pass) error {
		for _, sig := range pass.Semantics.Signatures {
			if !sig.HasDots() || sig.Name == analysis.Anonymous {
				continue
			}
			for _, p := range sig.BeforeDots() {
				if !p.HasDefault() {
					continue
				}
				pass.ReportWithNotes(Diagnostic{
					Pos:     PositionOf(p.Pos),
					Message: fmt.Sprintf("%s: optional parameter %s precedes ... and can be filled positionally", sig.Name, p.Name),
				}, fmt.Sprintf("declare %s after ... so callers must name it", p.Name))
			}
		}
		return nil
	},
}

// AnalyzerUnusedNolint reports nolint comments that suppress nothing.  The
// check itself runs inside the Linter after suppression is applied.
var AnalyzerUnusedNolint = &Analyzer{
	Name:     "unused-nolint",
	Severity: SeverityWarning,
	Doc:      "Report nolint comments that do not suppress any diagnostic.\n\nA stale suppression hides future findings on its line. Comments naming an analyzer that does not exist are reported too.",
	Run:      func(pass *Pass) error { return nil },
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

func isAre(n int) string {
	if n == 1 {
		return "is"
	}
	return "are"
}

// DefaultAnalyzers returns the built-in set of lint checks.
func DefaultAnalyzers() []*Analyzer {
	return []*Analyzer{
		AnalyzerParseError,
		AnalyzerDotsCoercion,
		AnalyzerDotsNamedArg,
		AnalyzerDotsUnresolved,
		AnalyzerDotsUnused,
		AnalyzerDotsSwallowed,
		AnalyzerDotsAfterRequired,
		AnalyzerUnusedNolint,
	}
}

// AnalyzerNames returns a sorted list of all default analyzer names.
func AnalyzerNames() []string {
	analyzers := DefaultAnalyzers()
	names := make([]string, len(analyzers))
	for i, a := range analyzers {
		names[i] = a.Name
	}
	sort.Strings(names)
	return names
}

// SelectAnalyzers returns the analyzers of pool named in enable, or all of
// them when enable is empty, minus those named in disable.  A nil pool
// means DefaultAnalyzers.
func SelectAnalyzers(pool []*Analyzer, enable, disable []string) ([]*Analyzer, error) {
	if pool == nil {
		pool = DefaultAnalyzers()
	}
	byName := make(map[string]*Analyzer)
	for _, a := range pool {
		byName[a.Name] = a
	}
	for _, name := range append(append([]string{}, enable...), disable...) {
		if _, ok := byName[name]; !ok {
			return nil, fmt.Errorf("unknown check: %s", name)
		}
	}
	skip := make(map[string]bool)
	for _, name := range disable {
		skip[name] = true
	}
	want := make(map[string]bool)
	for _, name := range enable {
		want[name] = true
	}
	var out []*Analyzer
	for _, a := range pool {
		if skip[a.Name] || (len(want) > 0 && !want[a.Name]) {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

// AnalyzerDoc returns a formatted documentation string for all analyzers.
func AnalyzerDoc() string {
	var b strings.Builder
	for _, a := range DefaultAnalyzers() {
		fmt.Fprintf(&b, "  %s (%s)\n", a.Name, a.Severity)
		fmt.Fprintf(&b, "%s\n\n", indent.String(wordwrap.String(firstLine(a.Doc), 68), 4))
	}
	return b.String()
}
