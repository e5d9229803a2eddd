// Copyright © 2024 The dotlint authors

package analysis

import "github.com/luthersystems/dotlint/ast"

// maxSuggestDistance is the largest edit distance at which a formal is
// offered as a correction for a misspelled argument name.
const maxSuggestDistance = 2

// wellKnownArgs are argument names accepted by many base R functions.
var wellKnownArgs = []string{
	"na.rm", "trim", "sep", "collapse", "recursive", "use.names",
	"drop", "simplify", "USE.NAMES", "stringsAsFactors", "digits",
}

// commonMistakes maps argument names that are often written in place of a
// well-known one, but are too far from it to be caught by edit distance.
var commonMistakes = map[string]string{
	"na.omit":   "na.rm",
	"na.remove": "na.rm",
	"rm.na":     "na.rm",
	"narm":      "na.rm",
	"na_rm":     "na.rm",
	"remove.na": "na.rm",
}

// Suggest returns the argument name most likely intended when name landed
// in the dots of sig, or "" when nothing is close.  The formals of sig are
// preferred over well-known names.
func Suggest(name string, sig *Signature) string {
	var candidates []string
	if sig != nil {
		for _, p := range sig.Params {
			if p.Name != ast.Dots {
				candidates = append(candidates, p.Name)
			}
		}
	}
	candidates = append(candidates, wellKnownArgs...)
	if fix, ok := commonMistakes[name]; ok {
		return fix
	}
	best, bestDist := "", maxSuggestDistance+1
	for _, c := range candidates {
		if c == name {
			continue
		}
		if d := levenshtein(name, c); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

// levenshtein returns the edit distance between a and b counted in runes.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}
