// Package indexer maps identified peptide sequences onto a protein sequence
// database, validates every occurrence against enzymatic-digestion rules,
// classifies peptides and proteins as target or decoy, and reconciles the
// per-run protein hit lists with the mapping.
package indexer

import (
	"fmt"

	"pepidx/pkg/enzyme"
)

// Decoy marker positions.
const (
	DecoyPrefix = "prefix"
	DecoySuffix = "suffix"
)

// Actions for the missing-decoy postcondition.
const (
	MissingDecoyError = "error"
	MissingDecoyWarn  = "warn"
)

// Options configures an indexing run.
type Options struct {
	// DecoyString is the marker identifying decoy accessions.
	DecoyString string
	// DecoyPosition says whether DecoyString is a prefix or suffix of the
	// accession.
	DecoyPosition string
	// MissingDecoyAction chooses error or warn when no peptide maps to a
	// decoy protein.
	MissingDecoyAction string

	// Enzyme names the cleavage rule used to validate occurrences.
	Enzyme string
	// Specificity is full, semi or none.
	Specificity string

	// WriteProteinSequence copies protein sequences into updated/new hits.
	WriteProteinSequence bool
	// WriteProteinDescription copies protein descriptions likewise.
	WriteProteinDescription bool
	// KeepUnreferencedProteins retains protein hits no peptide references.
	KeepUnreferencedProteins bool
	// AllowUnmatched accepts peptides without any protein match; when false
	// their presence turns the completion status into UnexpectedResult.
	AllowUnmatched bool

	// AAAMax is the maximal number of ambiguous amino acids (B, Z, X) a
	// single peptide match may span in the protein text.
	AAAMax int
	// ILEquivalent folds leucine into isoleucine before matching.
	ILEquivalent bool

	// Threads is the scan worker count; 0 or less means NumCPU.
	Threads int

	// Logf receives warnings and run diagnostics; nil discards them.
	Logf func(format string, v ...interface{})
	// Progress is called once per scanned protein; nil disables progress
	// reporting. It may be called from multiple goroutines.
	Progress func(scanned int)
}

// DefaultOptions mirrors the tool's CLI defaults.
func DefaultOptions() Options {
	return Options{
		DecoyString:        "DECOY_",
		DecoyPosition:      DecoyPrefix,
		MissingDecoyAction: MissingDecoyError,
		Enzyme:             "Trypsin",
		Specificity:        "full",
		AAAMax:             4,
	}
}

// Validate reports the first bad option combination.
func (o *Options) Validate() error {
	if o.DecoyPosition != DecoyPrefix && o.DecoyPosition != DecoySuffix {
		return fmt.Errorf("decoy position must be %q or %q, got %q", DecoyPrefix, DecoySuffix, o.DecoyPosition)
	}
	if o.MissingDecoyAction != MissingDecoyError && o.MissingDecoyAction != MissingDecoyWarn {
		return fmt.Errorf("missing-decoy action must be %q or %q, got %q", MissingDecoyError, MissingDecoyWarn, o.MissingDecoyAction)
	}
	if o.AAAMax < 0 {
		return fmt.Errorf("ambiguity budget must be >= 0, got %d", o.AAAMax)
	}
	if _, ok := enzyme.Get(o.Enzyme); !ok {
		return fmt.Errorf("unknown enzyme %q", o.Enzyme)
	}
	if _, err := enzyme.ParseSpecificity(o.Specificity); err != nil {
		return err
	}
	return nil
}

func (o *Options) logf(format string, v ...interface{}) {
	if o.Logf != nil {
		o.Logf(format, v...)
	}
}

func (o *Options) isDecoy(accession string) bool {
	if o.DecoyPosition == DecoyPrefix {
		return len(accession) >= len(o.DecoyString) && accession[:len(o.DecoyString)] == o.DecoyString
	}
	return len(accession) >= len(o.DecoyString) && accession[len(accession)-len(o.DecoyString):] == o.DecoyString
}
