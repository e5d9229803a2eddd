// Copyright © 2024 The dotlint authors

// Package analysis provides semantic analysis of the variadic parameter
// "..." in parsed R source.
//
// The package extracts function signatures, classifies how each function
// consumes its dots, and resolves call sites against known signatures using
// R's argument matching rules.  It is designed to be used by lint analyzers
// for checks like dots-coercion and dots-named-arg.
package analysis

import (
	"sort"

	"github.com/luthersystems/dotlint/ast"
)

// Config controls the behavior of the usage classifier.
type Config struct {
	// Containers are functions that coerce their arguments into a single
	// vector.  Passing ... as their only argument is the
	// coercion-to-container anti-pattern.
	Containers map[string]bool

	// Collectors are functions that capture dots as a list whose elements
	// are then accessed individually.
	Collectors map[string]bool

	// Quoting are functions that capture their arguments unevaluated.
	// Dots used inside them are not classified.
	Quoting map[string]bool
}

var (
	defaultContainers = []string{"c", "cbind", "rbind", "vctrs::vec_c"}
	defaultCollectors = []string{"list", "rlang::list2", "list2", "dots_list", "rlang::dots_list", "alist", "data.frame"}
	defaultQuoting    = []string{
		"quote", "bquote", "substitute", "expression",
		"enquos", "rlang::enquos", "quos", "rlang::quos",
		"exprs", "rlang::exprs", "enexprs", "rlang::enexprs",
		"ensyms", "rlang::ensyms", "match.call",
	}
)

// DefaultConfig returns the classifier configuration used when none is
// given.
func DefaultConfig() *Config {
	return NewConfig(nil, nil)
}

// NewConfig returns the default configuration extended with additional
// container and collector function names.
func NewConfig(containers, collectors []string) *Config {
	return &Config{
		Containers: nameSet(defaultContainers, containers),
		Collectors: nameSet(defaultCollectors, collectors),
		Quoting:    nameSet(defaultQuoting),
	}
}

func nameSet(lists ...[]string) map[string]bool {
	set := make(map[string]bool)
	for _, names := range lists {
		for _, name := range names {
			set[name] = true
		}
	}
	return set
}

// Result holds the output of analyzing one file.
type Result struct {
	File       *ast.File
	Signatures []*Signature
	Usage      map[*Signature][]UsageSite
	Calls      []*CallSite
}

// Analyze extracts the signatures of file, classifies their dots usage and
// resolves call sites against index.  A nil index resolves calls against
// the file and the builtins only.
func Analyze(file *ast.File, index *Index, cfg *Config) *Result {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if index == nil {
		index = NewIndex(nil)
	}
	sigs := Signatures(file)
	res := &Result{
		File:       file,
		Signatures: sigs,
		Usage:      make(map[*Signature][]UsageSite, len(sigs)),
	}
	for _, sig := range sigs {
		if sites := ClassifyUsage(sig, cfg); len(sites) > 0 {
			res.Usage[sig] = sites
		}
	}
	res.Calls = scanCalls(file, sigs, index)
	return res
}

// UsageSites returns every usage site in the file ordered by position.
func (r *Result) UsageSites() []UsageSite {
	var all []UsageSite
	for _, sig := range r.Signatures {
		all = append(all, r.Usage[sig]...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		return lessLoc(all[i].Pos, all[j].Pos)
	})
	return all
}
