package enzyme

import (
	"fmt"

	"pepidx/pkg/core"
)

// Specificity states how strictly a peptide's boundaries must match the
// enzyme's cleavage rule.
type Specificity int

const (
	// Full requires both flanking cut sites to be consistent with the
	// enzyme's cleavage rule; peptide termini at protein termini are
	// always consistent.
	Full Specificity = iota
	// Semi requires at least one consistent flanking site.
	Semi
	// None accepts every occurrence unconditionally.
	None
)

func (s Specificity) String() string {
	switch s {
	case Full:
		return "full"
	case Semi:
		return "semi"
	default:
		return "none"
	}
}

// ParseSpecificity parses "full", "semi" or "none".
func ParseSpecificity(s string) (Specificity, error) {
	switch s {
	case "full":
		return Full, nil
	case "semi":
		return Semi, nil
	case "none":
		return None, nil
	}
	return Full, fmt.Errorf("invalid enzyme specificity %q (must be full, semi or none)", s)
}

// Digestion validates peptide occurrences against one enzyme and
// specificity. It is a value type; copies share no state and are safe for
// concurrent use.
type Digestion struct {
	Enzyme      Enzyme
	Specificity Specificity
}

// NewDigestion resolves the enzyme name against the rule table.
func NewDigestion(enzymeName string, spec Specificity) (Digestion, error) {
	e, ok := Get(enzymeName)
	if !ok {
		return Digestion{}, fmt.Errorf("unknown enzyme %q", enzymeName)
	}
	return Digestion{Enzyme: e, Specificity: spec}, nil
}

// IsValidProduct decides whether protein[pos:pos+length] is a valid
// digestion product. On accept it also returns the flanking residues, with
// the terminal sentinels where the peptide abuts a true protein terminus.
func (d Digestion) IsValidProduct(protein string, pos, length int) (ok bool, aaBefore, aaAfter byte) {
	if pos < 0 || length <= 0 || pos+length > len(protein) {
		return false, 0, 0
	}

	frontTerm := pos == 0
	backTerm := pos+length == len(protein)

	aaBefore = core.NTerminalAA
	if !frontTerm {
		aaBefore = protein[pos-1]
	}
	aaAfter = core.CTerminalAA
	if !backTerm {
		aaAfter = protein[pos+length]
	}

	if d.Specificity == None {
		return true, aaBefore, aaAfter
	}

	frontOK := frontTerm || d.Enzyme.CleavesBetween(protein[pos-1], protein[pos])
	backOK := backTerm || d.Enzyme.CleavesBetween(protein[pos+length-1], protein[pos+length])

	switch d.Specificity {
	case Semi:
		ok = frontOK || backOK
	default:
		ok = frontOK && backOK
	}
	if !ok {
		return false, 0, 0
	}
	return true, aaBefore, aaAfter
}
