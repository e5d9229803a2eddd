// Copyright © 2024 The dotlint authors

package lsp

import (
	"fmt"
	"strings"

	"github.com/luthersystems/dotlint/analysis"
	"github.com/luthersystems/dotlint/ast"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func (s *Server) textDocumentHover(_ *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	s.ensureAnalysis(doc)

	doc.mu.Lock()
	res := doc.analysis
	doc.mu.Unlock()
	if res == nil {
		return nil, nil
	}

	content := s.hoverContent(res, int(params.Position.Line), int(params.Position.Character))
	if content == "" {
		return nil, nil
	}
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: content,
		},
	}, nil
}

// hoverContent builds Markdown for the 0-based position: where a named
// argument lands, how a function uses its dots, or the signature of a
// called or defined function.
func (s *Server) hoverContent(res *analysis.Result, line, col int) string {
	if site, arg, ok := namedArgAt(res, line, col); ok {
		return argHover(site, arg)
	}
	for _, sig := range res.Signatures {
		if !sig.HasDots() {
			continue
		}
		if covers(sig.Params[sig.DotsIndex].Pos, len(ast.Dots), line+1, col+1) {
			return s.signatureHover(sig)
		}
	}
	id := identAt(res.File, line, col)
	if id == nil {
		return ""
	}
	for _, site := range res.UsageSites() {
		if site.Pos == id.NamePos {
			return usageHover(site)
		}
	}
	if id.Name == ast.Dots || ast.IsDotDotN(id.Name) {
		return ""
	}
	if sig := s.lookupFunction(res, id.Name); sig != nil {
		return s.signatureHover(sig)
	}
	return ""
}

// namedArgAt returns the named argument whose name covers the position.
func namedArgAt(res *analysis.Result, line, col int) (*analysis.CallSite, analysis.CallArg, bool) {
	for _, site := range res.Calls {
		for _, arg := range site.Args {
			if arg.Name != "" && covers(arg.Pos, len(arg.Name), line+1, col+1) {
				return site, arg, true
			}
		}
	}
	return nil, analysis.CallArg{}, false
}

// lookupFunction resolves name to a function defined in the file, in the
// workspace, or in base R.
func (s *Server) lookupFunction(res *analysis.Result, name string) *analysis.Signature {
	var local *analysis.Signature
	for _, sig := range res.Signatures {
		if sig.Name != name {
			continue
		}
		if sig.TopLevel {
			return sig
		}
		if local == nil {
			local = sig
		}
	}
	if local != nil {
		return local
	}
	return s.index().Lookup(name)
}

func argHover(site *analysis.CallSite, arg analysis.CallArg) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "**argument** `%s` of `%s`\n\n", arg.Name, site.Target)
	for formal, a := range site.Matched {
		if a.Pos == arg.Pos {
			if formal == arg.Name {
				fmt.Fprintf(&sb, "Matches parameter `%s`.", formal)
			} else {
				fmt.Fprintf(&sb, "Partially matches parameter `%s`.", formal)
			}
			return sb.String()
		}
	}
	if site.Target.HasDots() {
		sb.WriteString("Matches no parameter and lands in `...`.")
	} else {
		sb.WriteString("Matches no parameter.")
	}
	if fix := analysis.Suggest(arg.Name, site.Target); fix != "" {
		fmt.Fprintf(&sb, " Did you mean `%s`?", fix)
	}
	return sb.String()
}

func usageHover(site analysis.UsageSite) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "**dots** of `%s`\n\n", site.Signature.Name)
	sb.WriteString(describeUsage(site))
	return sb.String()
}

// signatureHover shows the signature of sig and a summary of how it uses
// its dots.
func (s *Server) signatureHover(sig *analysis.Signature) string {
	var sb strings.Builder
	kind := "function"
	if sig.Builtin {
		kind = "builtin"
	}
	fmt.Fprintf(&sb, "**%s** `%s`\n\n```r\n%s\n```", kind, sig.Name, sig)

	if sig.HasDots() {
		sb.WriteString("\n\n")
		switch {
		case sig.Builtin && sig.Swallows:
			sb.WriteString("Ignores `...`: extra arguments are silently dropped.")
		case sig.Builtin:
			sb.WriteString("Passes `...` on to its methods.")
		default:
			sites := analysis.ClassifyUsage(sig, s.analysisConfig())
			if len(sites) == 0 {
				sb.WriteString("`...` is never used.")
			}
			for i, site := range sites {
				if i > 0 {
					sb.WriteString("\n")
				}
				fmt.Fprintf(&sb, "- line %d: %s", site.Pos.Line, describeUsage(site))
			}
		}
	}

	if sig.Pos != nil && sig.File != "" && !sig.Builtin {
		fmt.Fprintf(&sb, "\n\n*Defined in %s:%d*", sig.File, sig.Pos.Line)
	}
	return sb.String()
}

func describeUsage(site analysis.UsageSite) string {
	switch site.Kind {
	case analysis.UsageUnknown:
		if site.Reason != "" {
			return "`...` could not be classified: " + site.Reason
		}
		return "`...` could not be classified"
	case analysis.UsageForwarded:
		return fmt.Sprintf("`...` is forwarded to `%s()`", site.Callee)
	default:
		if site.Callee != "" {
			return fmt.Sprintf("`...` is %s by `%s()`", site.Kind, site.Callee)
		}
		return fmt.Sprintf("`...` is %s", site.Kind)
	}
}
