// Package enzyme provides the proteolytic cleavage-rule table and the
// digestion filter that decides whether a peptide/protein match is a valid
// digestion product for a configured enzyme and specificity.
package enzyme

import (
	"fmt"
	"sort"
	"strings"
)

// Enzyme describes one proteolytic cleavage rule. CutAfter lists residues
// the enzyme cleaves after, unless the following residue is in NoCutBefore.
// CutBefore lists residues the enzyme cleaves in front of (e.g. Asp-N).
type Enzyme struct {
	Name        string
	CutAfter    string
	NoCutBefore string
	CutBefore   string
}

// DB is the built-in cleavage-rule table, keyed by enzyme name.
var DB = map[string]Enzyme{
	"Trypsin":        {Name: "Trypsin", CutAfter: "KR", NoCutBefore: "P"},
	"Trypsin/P":      {Name: "Trypsin/P", CutAfter: "KR"},
	"Lys-C":          {Name: "Lys-C", CutAfter: "K", NoCutBefore: "P"},
	"Lys-C/P":        {Name: "Lys-C/P", CutAfter: "K"},
	"Arg-C":          {Name: "Arg-C", CutAfter: "R", NoCutBefore: "P"},
	"Asp-N":          {Name: "Asp-N", CutBefore: "D"},
	"Chymotrypsin":   {Name: "Chymotrypsin", CutAfter: "FYWL", NoCutBefore: "P"},
	"PepsinA":        {Name: "PepsinA", CutAfter: "FL"},
	"glutamyl endopeptidase": {Name: "glutamyl endopeptidase", CutAfter: "DE"},
	"no cleavage":    {Name: "no cleavage"},
}

// Get looks up an enzyme by name.
func Get(name string) (Enzyme, bool) {
	e, ok := DB[name]
	return e, ok
}

// Names returns all known enzyme names, sorted.
func Names() []string {
	names := make([]string, 0, len(DB))
	for n := range DB {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// CleavesBetween reports whether the enzyme cleaves the bond between two
// adjacent residues prev and next.
func (e Enzyme) CleavesBetween(prev, next byte) bool {
	if e.CutBefore != "" && strings.IndexByte(e.CutBefore, next) >= 0 {
		return true
	}
	if e.CutAfter == "" {
		return false
	}
	if strings.IndexByte(e.CutAfter, prev) < 0 {
		return false
	}
	return strings.IndexByte(e.NoCutBefore, next) < 0
}

// Rule renders the cleavage rule for display, e.g. "after [KR] except before [P]".
func (e Enzyme) Rule() string {
	var parts []string
	if e.CutAfter != "" {
		s := fmt.Sprintf("after [%s]", e.CutAfter)
		if e.NoCutBefore != "" {
			s += fmt.Sprintf(" except before [%s]", e.NoCutBefore)
		}
		parts = append(parts, s)
	}
	if e.CutBefore != "" {
		parts = append(parts, fmt.Sprintf("before [%s]", e.CutBefore))
	}
	if len(parts) == 0 {
		return "no cleavage"
	}
	return strings.Join(parts, ", ")
}
