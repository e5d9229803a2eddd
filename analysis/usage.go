// Copyright © 2024 The dotlint authors

package analysis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/luthersystems/dotlint/ast"
	"github.com/luthersystems/dotlint/astutil"
	"github.com/luthersystems/dotlint/parser/token"
)

// UsageKind classifies how a function consumes its dots at one site.
type UsageKind int

const (
	// UsageCoerced means the dots are collapsed into a single vector by a
	// container constructor, e.g. sum(c(...)).
	UsageCoerced UsageKind = iota
	// UsageForwarded means the dots are passed on verbatim to exactly one
	// other function.
	UsageForwarded
	// UsageDestructured means individual dots elements are accessed, e.g.
	// list(...), ..1 or ...length().
	UsageDestructured
	// UsageUnknown means the usage could not be classified.
	UsageUnknown
)

func (k UsageKind) String() string {
	switch k {
	case UsageCoerced:
		return "coerced-to-container"
	case UsageForwarded:
		return "forwarded"
	case UsageDestructured:
		return "destructured"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k UsageKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UsageSite is one place in a function body where the function's dots are
// used.
type UsageSite struct {
	Signature *Signature
	Pos       *token.Location
	Kind      UsageKind
	Callee    string // function receiving the dots, if any
	Reason    string // why the site could not be classified
}

// dots accessors that destructure the dots without naming them
var dotsAccessors = map[string]bool{
	"...length": true,
	"...elt":    true,
	"...names":  true,
}

// ClassifyUsage returns the usage sites of the dots declared by sig, in
// source order.  Signatures without dots have no usage sites.  Nested
// functions that declare their own dots are not searched; nested closures
// without dots refer to the outer dots and are.
func ClassifyUsage(sig *Signature, cfg *Config) []UsageSite {
	if !sig.HasDots() || sig.Body == nil {
		return nil
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	c := &classifier{sig: sig, cfg: cfg}
	c.walk(sig.Body)
	c.resolveForwarding()
	sort.SliceStable(c.sites, func(i, j int) bool {
		return lessLoc(c.sites[i].Pos, c.sites[j].Pos)
	})
	return c.sites
}

type classifier struct {
	sig *Signature
	cfg *Config

	// ancestors of the node being visited, outermost first
	stack  []ast.Node
	quoted string

	sites []UsageSite
	// forward holds the indices of sites passing dots verbatim to a call
	// and the call receiving them
	forward []forwardSite
}

type forwardSite struct {
	site int
	call ast.Node
}

func (c *classifier) walk(n ast.Node) {
	if n == nil {
		return
	}
	switch x := n.(type) {
	case *ast.FuncLit:
		if x.HasDots() {
			return
		}
	case *ast.Ident:
		if x.Name == ast.Dots {
			c.classifyDots(x)
		} else if ast.IsDotDotN(x.Name) {
			c.add(x.Pos(), UsageDestructured, x.Name, "")
		}
		return
	case *ast.Call:
		name := astutil.CallName(x)
		if dotsAccessors[name] {
			c.add(x.Pos(), UsageDestructured, name, "")
		}
		if c.quoted == "" && c.cfg.Quoting[name] {
			c.quoted = name
			defer func() { c.quoted = "" }()
		}
	}
	c.stack = append(c.stack, n)
	for _, child := range ast.Children(n) {
		c.walk(child)
	}
	c.stack = c.stack[:len(c.stack)-1]
}

func (c *classifier) add(pos *token.Location, kind UsageKind, callee, reason string) int {
	if c.quoted != "" {
		kind = UsageUnknown
		reason = fmt.Sprintf("captured unevaluated by %s()", c.quoted)
	}
	c.sites = append(c.sites, UsageSite{
		Signature: c.sig,
		Pos:       pos,
		Kind:      kind,
		Callee:    callee,
		Reason:    reason,
	})
	return len(c.sites) - 1
}

func (c *classifier) parent(depth int) ast.Node {
	i := len(c.stack) - depth
	if i < 0 {
		return nil
	}
	return c.stack[i]
}

func (c *classifier) classifyDots(id *ast.Ident) {
	switch parent := c.parent(1).(type) {
	case *ast.Call:
		c.classifyDotsArg(id, parent)
	case *ast.Index:
		arg := findArg(parent.Args, id)
		if arg == nil || arg.Name != "" {
			c.add(id.Pos(), UsageUnknown, "", "passed to an indexing expression under a name")
			return
		}
		callee := "["
		if parent.Double {
			callee = "[["
		}
		i := c.add(id.Pos(), UsageForwarded, callee, "")
		c.forward = append(c.forward, forwardSite{site: i, call: parent})
	default:
		c.add(id.Pos(), UsageUnknown, "", "used outside of a function call")
	}
}

func (c *classifier) classifyDotsArg(id *ast.Ident, call *ast.Call) {
	arg := findArg(call.Args, id)
	name := astutil.CallName(call)
	callee := name
	if callee == "" {
		callee = ast.String(call.Fun)
	}
	switch {
	case arg == nil:
		// ... is the called function itself
		c.add(id.Pos(), UsageUnknown, "", "called as a function")
	case arg.Name != "":
		c.add(id.Pos(), UsageUnknown, callee, fmt.Sprintf("passed to %s() as argument %s", callee, arg.Name))
	case c.cfg.Containers[name] && len(call.Args) == 1:
		c.add(id.Pos(), UsageCoerced, name, "")
	case name == "list" && c.isUnlisted(call):
		c.add(id.Pos(), UsageCoerced, "unlist", "")
	case c.cfg.Collectors[name], name == "missing", name == "length":
		c.add(id.Pos(), UsageDestructured, name, "")
	default:
		i := c.add(id.Pos(), UsageForwarded, callee, "")
		c.forward = append(c.forward, forwardSite{site: i, call: call})
	}
}

// isUnlisted reports whether call is the sole argument of unlist().
func (c *classifier) isUnlisted(call *ast.Call) bool {
	outer, ok := c.parent(2).(*ast.Call)
	if !ok || astutil.CallName(outer) != "unlist" || len(outer.Args) == 0 {
		return false
	}
	return outer.Args[0].Value == ast.Node(call) && outer.Args[0].Name == ""
}

// resolveForwarding downgrades forwarding sites to unknown when the dots
// are forwarded to more than one call, because the arguments are then
// matched against several signatures.
func (c *classifier) resolveForwarding() {
	calls := make(map[ast.Node]bool)
	var callees []string
	for _, f := range c.forward {
		if c.sites[f.site].Kind != UsageForwarded {
			continue
		}
		if !calls[f.call] {
			calls[f.call] = true
			callees = append(callees, c.sites[f.site].Callee)
		}
	}
	if len(calls) <= 1 {
		return
	}
	reason := fmt.Sprintf("forwarded to %d calls: %s", len(calls), strings.Join(callees, ", "))
	for _, f := range c.forward {
		site := &c.sites[f.site]
		if site.Kind == UsageForwarded {
			site.Kind = UsageUnknown
			site.Reason = reason
		}
	}
}

func findArg(args []*ast.Arg, value ast.Node) *ast.Arg {
	for _, arg := range args {
		if arg.Value == value {
			return arg
		}
	}
	return nil
}
