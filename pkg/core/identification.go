// Package core provides the intermediate representation (IR) models and
// sequence handling used by pepidx: protein database entries, peptide and
// protein identification records, and peptide evidence.
package core

import (
	"fmt"
	"sort"
	"strings"
)

// Flanking-residue sentinels used when a peptide abuts a protein terminus.
const (
	NTerminalAA byte = '['
	CTerminalAA byte = ']'
)

// ProteinEntry is one entry of the protein sequence database (FASTA record).
type ProteinEntry struct {
	Accession   string
	Sequence    string
	Description string
}

// PeptideEvidence is one concrete (protein, position) justification for a
// peptide identification. Start and End are 0-based inclusive offsets in the
// protein sequence. AABefore/AAAfter hold the flanking residues, or the
// terminal sentinels at true protein termini.
type PeptideEvidence struct {
	Accession string
	Start     int
	End       int
	AABefore  byte
	AAAfter   byte
}

// TargetDecoy classifies a hit by the decoy status of its evidence proteins.
type TargetDecoy int

const (
	TargetDecoyUnset TargetDecoy = iota // no evidence
	Target
	Decoy
	TargetAndDecoy
)

func (td TargetDecoy) String() string {
	switch td {
	case Target:
		return "target"
	case Decoy:
		return "decoy"
	case TargetAndDecoy:
		return "target+decoy"
	default:
		return ""
	}
}

// Uniqueness classifies a peptide hit by how many proteins it maps to.
type Uniqueness int

const (
	Unmatched Uniqueness = iota // zero evidences
	Unique                      // exactly one
	NonUnique                   // more than one
)

func (u Uniqueness) String() string {
	switch u {
	case Unique:
		return "unique"
	case NonUnique:
		return "non-unique"
	default:
		return "unmatched"
	}
}

// PeptideHit is a single identified peptide with its protein evidence.
type PeptideHit struct {
	Sequence    string // unmodified peptide sequence
	Score       float64
	Evidences   []PeptideEvidence
	TargetDecoy TargetDecoy
	References  Uniqueness
}

// ProteinAccessions returns the sorted set of distinct accessions referenced
// by the hit's evidences.
func (h *PeptideHit) ProteinAccessions() []string {
	if len(h.Evidences) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(h.Evidences))
	var accs []string
	for _, ev := range h.Evidences {
		if _, ok := seen[ev.Accession]; ok {
			continue
		}
		seen[ev.Accession] = struct{}{}
		accs = append(accs, ev.Accession)
	}
	sort.Strings(accs)
	return accs
}

// PeptideIdentification groups the peptide hits of one identification run.
type PeptideIdentification struct {
	Identifier string // links the record to a ProteinIdentification run
	Hits       []PeptideHit
}

// ProteinHit is a single protein in a run's protein hit list. Score and any
// other caller-owned metadata survive reconciliation untouched.
type ProteinHit struct {
	Accession   string
	Sequence    string
	Description string
	Score       float64
	TargetDecoy TargetDecoy
}

// ProteinIdentification holds the protein hit list of one identification run.
type ProteinIdentification struct {
	Identifier string
	Hits       []ProteinHit
}

// ValidationError reports a malformed input record.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", e.Field, e.Message)
}

// Validate checks that a peptide identification is usable for indexing.
func (id *PeptideIdentification) Validate() error {
	var errs []string
	if id.Identifier == "" {
		errs = append(errs, "run identifier is required")
	}
	for i, h := range id.Hits {
		if h.Sequence == "" {
			errs = append(errs, fmt.Sprintf("hit %d has an empty sequence", i))
		}
	}
	if len(errs) > 0 {
		return &ValidationError{
			Field:   "PeptideIdentification",
			Message: strings.Join(errs, "; "),
		}
	}
	return nil
}
