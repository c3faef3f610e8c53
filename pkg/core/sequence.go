package core

import (
	"fmt"
	"strings"
)

// Ambiguous amino acid codes: each stands for an unresolved set of residues.
//
//	B = Asp/Asn (D/N), Z = Glu/Gln (E/Q), X = any residue
const AmbiguousAA = "BZX"

// Normalize canonicalizes a protein or peptide sequence for matching: stop
// codon markers ('*') are removed and, when ilEquivalent is set, every 'L' is
// folded into 'I' (isoleucine and leucine are isobaric and indistinguishable
// to most search engines). Normalize must be applied identically to protein
// and peptide strings so matches remain valid. It is idempotent.
func Normalize(seq string, ilEquivalent bool) string {
	seq = strings.ReplaceAll(seq, "*", "")
	if ilEquivalent {
		seq = strings.ReplaceAll(seq, "L", "I")
	}
	return seq
}

// CheckPeptide rejects peptide sequences the matcher cannot index.
// Selenocysteine ('U') has no emission rule in the automaton; callers skip
// the single offending peptide and continue the run.
func CheckPeptide(seq string) error {
	if i := strings.IndexByte(seq, 'U'); i >= 0 {
		return fmt.Errorf("peptide %q contains invalid 'U' at position %d", seq, i)
	}
	return nil
}

// IsAmbiguousAA reports whether b is one of the ambiguity codes B, Z or X.
func IsAmbiguousAA(b byte) bool {
	return b == 'B' || b == 'Z' || b == 'X'
}

// AmbiguityMatches reports whether a peptide residue may stand for an
// ambiguous code found in the protein text. The literal code matches itself
// exactly and is not counted as an ambiguous alignment by callers.
func AmbiguityMatches(proteinAA, peptideAA byte) bool {
	switch proteinAA {
	case 'B':
		return peptideAA == 'D' || peptideAA == 'N'
	case 'Z':
		return peptideAA == 'E' || peptideAA == 'Q'
	case 'X':
		return peptideAA >= 'A' && peptideAA <= 'Z'
	}
	return false
}
