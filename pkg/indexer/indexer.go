package indexer

import (
	"sort"
	"strings"

	"pepidx/pkg/automaton"
	"pepidx/pkg/core"
	"pepidx/pkg/enzyme"
)

// unmatched peptides are logged individually only up to this many
const unmatchedDisplayCap = 15

// Stats carries the counters of one indexing run.
type Stats struct {
	Proteins         int // corpus size after deduplication
	PeptideHits      int // total peptide hits across all runs
	DistinctPeptides int // deduplicated pattern count

	DuplicateAccessions []string // dropped duplicate database entries
	SkippedPeptides     []string // peptides rejected before matching

	FilterPassed   int // occurrences accepted by the enzyme filter
	FilterRejected int // occurrences rejected by the enzyme filter

	MatchedTarget int
	MatchedDecoy  int
	MatchedBoth   int

	Unique    int
	NonUnique int
	Unmatched int

	NewProteins      int
	OrphanedProteins int
}

// Indexer runs peptide/protein mapping with a fixed configuration.
type Indexer struct {
	opts      Options
	digestion enzyme.Digestion
}

// New validates the options and resolves the enzyme configuration.
func New(opts Options) (*Indexer, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	spec, err := enzyme.ParseSpecificity(opts.Specificity)
	if err != nil {
		return nil, err
	}
	d, err := enzyme.NewDigestion(opts.Enzyme, spec)
	if err != nil {
		return nil, err
	}
	return &Indexer{opts: opts, digestion: d}, nil
}

// Run maps every peptide hit in pepIDs onto the protein database, rewrites
// each hit's evidence list and classification in place, and reconciles the
// protein hit lists of protIDs. The proteins slice is compacted in place
// when duplicate entries are dropped, so after Run the corpus index is 1:1
// with the slice. The returned Stats are valid for every exit code except
// DatabaseContainsMultiples.
func (ix *Indexer) Run(proteins *[]core.ProteinEntry, protIDs []core.ProteinIdentification, pepIDs []core.PeptideIdentification) (ExitCode, *Stats) {
	opts := &ix.opts
	stats := &Stats{}

	if len(*proteins) == 0 {
		opts.logf("Error: an empty protein database was provided; mapping makes no sense")
		return DatabaseEmpty, stats
	}

	totalHits := 0
	for i := range pepIDs {
		totalHits += len(pepIDs[i].Hits)
	}
	if totalHits == 0 {
		opts.logf("Warning: an empty set of peptide identifications was provided; output will be empty as well")
		if !opts.KeepUnreferencedProteins {
			// drop only the protein hits, not whole runs incl. metadata
			for i := range protIDs {
				protIDs[i].Hits = nil
			}
		}
		return PeptideIDsEmpty, stats
	}
	stats.PeptideHits = totalHits

	// ---- protein corpus: normalize, deduplicate ----
	corpus, accToProt, code := ix.buildCorpus(proteins, stats)
	if code != ExecutionOK {
		return code, stats
	}
	stats.Proteins = len(corpus)

	// ---- peptide patterns: normalize, validate, deduplicate by text ----
	patterns, patOf := ix.collectPeptides(pepIDs, stats)
	stats.DistinctPeptides = len(patterns)

	opts.logf("Mapping %d peptides (%d distinct) to %d proteins", totalHits, len(patterns), len(corpus))

	a, err := automaton.Build(patterns, opts.AAAMax)
	if err != nil {
		// collectPeptides already filtered every residue the automaton
		// rejects, so this indicates a programming error upstream
		opts.logf("Error: %v", err)
		return IllegalParameters, stats
	}

	// ---- parallel scan ----
	mm, passed, rejected := searchParallel(a, ix.digestion, corpus, opts.Threads, opts.Progress)
	stats.FilterPassed = passed
	stats.FilterRejected = rejected
	opts.logf("Peptide hits passing enzyme filter: %d, rejected: %d", passed, rejected)

	// ---- evidence aggregation and classification ----
	runIdx := make(map[string]int, len(protIDs))
	for i := range protIDs {
		runIdx[protIDs[i].Identifier] = i
	}
	proteinIsDecoy := make(map[string]bool)
	runProteins := make(map[int]map[int]struct{}) // run index -> protein indices
	ix.aggregate(*proteins, pepIDs, patterns, patOf, mm, runIdx, proteinIsDecoy, runProteins, stats)

	if stats.MatchedDecoy+stats.MatchedBoth == 0 {
		msg := "no peptides were matched to the decoy portion of the database; " +
			"check the decoy string (=" + opts.DecoyString + ") and decoy position (=" + opts.DecoyPosition + ") settings"
		if opts.MissingDecoyAction == MissingDecoyError {
			opts.logf("Error: %s", msg)
			return UnexpectedResult, stats
		}
		opts.logf("Warning: %s", msg)
	}

	// ---- protein hit reconciliation ----
	ix.reconcile(*proteins, protIDs, accToProt, runProteins, proteinIsDecoy, stats)

	if !opts.AllowUnmatched && stats.Unmatched > 0 {
		opts.logf("Warning: %d unmatched peptide(s) could not be associated to a protein; "+
			"results are written, but the run is reported as incomplete", stats.Unmatched)
		return UnexpectedResult, stats
	}
	return ExecutionOK, stats
}

// buildCorpus normalizes every database sequence and enforces the
// accession/sequence bijection. Duplicate entries with an identical
// normalized sequence are dropped from the caller's slice; divergent
// sequences abort the run.
func (ix *Indexer) buildCorpus(proteins *[]core.ProteinEntry, stats *Stats) ([]string, map[string]int, ExitCode) {
	opts := &ix.opts
	entries := *proteins

	corpus := make([]string, 0, len(entries))
	accToProt := make(map[string]int, len(entries))

	kept := entries[:0]
	for _, p := range entries {
		seq := core.Normalize(p.Sequence, opts.ILEquivalent)
		prev, dup := accToProt[p.Accession]
		if dup {
			stats.DuplicateAccessions = append(stats.DuplicateAccessions, p.Accession)
			if corpus[prev] != seq {
				opts.logf("Error: protein identifier %q found multiple times with different sequences:\n%s\nvs.\n%s",
					p.Accession, corpus[prev], seq)
				return nil, nil, DatabaseContainsMultiples
			}
			continue // identical duplicate: drop to keep the 1:1 mapping
		}
		accToProt[p.Accession] = len(corpus)
		corpus = append(corpus, seq)
		kept = append(kept, p)
	}
	*proteins = kept

	if len(stats.DuplicateAccessions) > 0 {
		opts.logf("Warning: duplicate database entries were dropped for: %s",
			strings.Join(stats.DuplicateAccessions, ", "))
	}
	return corpus, accToProt, ExecutionOK
}

// collectPeptides normalizes every peptide hit and assigns each one a
// pattern index. Patterns are deduplicated by sequence text; hits whose
// sequence cannot be indexed get pattern index -1 and are skipped with a
// warning. patOf is aligned with run-major, hit-minor iteration order.
func (ix *Indexer) collectPeptides(pepIDs []core.PeptideIdentification, stats *Stats) ([]string, []int) {
	opts := &ix.opts

	var patterns []string
	patIdx := make(map[string]int)
	var patOf []int

	for i := range pepIDs {
		for j := range pepIDs[i].Hits {
			seq := core.Normalize(pepIDs[i].Hits[j].Sequence, opts.ILEquivalent)
			if err := indexable(seq); err != nil {
				opts.logf("Warning: skipping peptide: %v", err)
				stats.SkippedPeptides = append(stats.SkippedPeptides, seq)
				patOf = append(patOf, -1)
				continue
			}
			idx, ok := patIdx[seq]
			if !ok {
				idx = len(patterns)
				patIdx[seq] = idx
				patterns = append(patterns, seq)
			}
			patOf = append(patOf, idx)
		}
	}
	return patterns, patOf
}

// indexable rejects peptide sequences the automaton has no emission rule
// for: selenocysteine and anything outside the A-Z residue alphabet.
func indexable(seq string) error {
	if seq == "" {
		return &core.ValidationError{Field: "PeptideHit", Message: "empty sequence"}
	}
	if err := core.CheckPeptide(seq); err != nil {
		return err
	}
	for i := 0; i < len(seq); i++ {
		if seq[i] < 'A' || seq[i] > 'Z' {
			return &core.ValidationError{
				Field:   "PeptideHit",
				Message: "sequence " + seq + " contains invalid residue " + string(seq[i]),
			}
		}
	}
	return nil
}

// aggregate replaces every hit's evidence list from the match map and
// classifies target/decoy status and uniqueness. It also fills the lazy
// decoy cache and the per-run protein index sets consumed by reconcile.
func (ix *Indexer) aggregate(
	proteins []core.ProteinEntry,
	pepIDs []core.PeptideIdentification,
	patterns []string,
	patOf []int,
	mm matchMap,
	runIdx map[string]int,
	proteinIsDecoy map[string]bool,
	runProteins map[int]map[int]struct{},
	stats *Stats,
) {
	opts := &ix.opts

	k := 0 // flat hit cursor, aligned with patOf
	for i := range pepIDs {
		run, runKnown := runIdx[pepIDs[i].Identifier]
		if !runKnown {
			opts.logf("Warning: peptide identification references unknown run %q; its proteins will not be reconciled",
				pepIDs[i].Identifier)
		}

		for j := range pepIDs[i].Hits {
			hit := &pepIDs[i].Hits[j]
			pat := patOf[k]
			k++

			hit.Evidences = nil
			if pat >= 0 {
				for _, o := range mm[pat] {
					acc := proteins[o.Protein].Accession
					hit.Evidences = append(hit.Evidences, core.PeptideEvidence{
						Accession: acc,
						Start:     o.Position,
						End:       o.Position + len(patterns[pat]) - 1,
						AABefore:  o.AABefore,
						AAAfter:   o.AAAfter,
					})
					if runKnown {
						set, ok := runProteins[run]
						if !ok {
							set = make(map[int]struct{})
							runProteins[run] = set
						}
						set[o.Protein] = struct{}{}
					}
					if _, cached := proteinIsDecoy[acc]; !cached {
						proteinIsDecoy[acc] = opts.isDecoy(acc)
					}
				}
			}

			// full scan over all evidence accessions, no short-circuit
			matchesTarget, matchesDecoy := false, false
			accs := hit.ProteinAccessions()
			for _, acc := range accs {
				if proteinIsDecoy[acc] {
					matchesDecoy = true
				} else {
					matchesTarget = true
				}
			}
			switch {
			case matchesTarget && matchesDecoy:
				hit.TargetDecoy = core.TargetAndDecoy
				stats.MatchedBoth++
			case matchesTarget:
				hit.TargetDecoy = core.Target
				stats.MatchedTarget++
			case matchesDecoy:
				hit.TargetDecoy = core.Decoy
				stats.MatchedDecoy++
			default:
				hit.TargetDecoy = core.TargetDecoyUnset
			}

			switch {
			case len(accs) == 1:
				hit.References = core.Unique
				stats.Unique++
			case len(accs) > 1:
				hit.References = core.NonUnique
				stats.NonUnique++
			default:
				hit.References = core.Unmatched
				stats.Unmatched++
				if stats.Unmatched < unmatchedDisplayCap {
					opts.logf("Unmatched peptide: %s", hit.Sequence)
				} else if stats.Unmatched == unmatchedDisplayCap {
					opts.logf("Unmatched peptide: ...")
				}
			}
		}
	}
}

// reconcile rewrites every run's protein hit list: existing hits still
// referenced by peptides of that run are retained (optionally refreshing
// sequence/description), unreferenced hits are orphaned, and proteins newly
// referenced by peptides are appended. Finally every surviving hit gets its
// decoy flag annotated.
func (ix *Indexer) reconcile(
	proteins []core.ProteinEntry,
	protIDs []core.ProteinIdentification,
	accToProt map[string]int,
	runProteins map[int]map[int]struct{},
	proteinIsDecoy map[string]bool,
	stats *Stats,
) {
	opts := &ix.opts

	for run := range protIDs {
		master := make(map[int]struct{}, len(runProteins[run]))
		for p := range runProteins[run] {
			master[p] = struct{}{}
		}

		var newHits []core.ProteinHit
		for _, hit := range protIDs[run].Hits {
			prot, inDB := accToProt[hit.Accession]
			if inDB {
				_, referenced := master[prot]
				if referenced {
					if opts.WriteProteinSequence {
						hit.Sequence = proteins[prot].Sequence
					} else {
						hit.Sequence = ""
					}
					if opts.WriteProteinDescription {
						hit.Description = proteins[prot].Description
					}
					newHits = append(newHits, hit)
					delete(master, prot) // only new proteins remain at the end
					continue
				}
			}
			stats.OrphanedProteins++
			if opts.KeepUnreferencedProteins {
				newHits = append(newHits, hit)
			}
		}

		// deterministic append order for the brand-new hits
		remaining := make([]int, 0, len(master))
		for p := range master {
			remaining = append(remaining, p)
		}
		sort.Ints(remaining)
		for _, p := range remaining {
			hit := core.ProteinHit{Accession: proteins[p].Accession}
			if opts.WriteProteinSequence {
				hit.Sequence = proteins[p].Sequence
			}
			if opts.WriteProteinDescription {
				hit.Description = proteins[p].Description
			}
			newHits = append(newHits, hit)
			stats.NewProteins++
		}

		protIDs[run].Hits = newHits
	}

	for run := range protIDs {
		for i := range protIDs[run].Hits {
			hit := &protIDs[run].Hits[i]
			if proteinIsDecoy[hit.Accession] {
				hit.TargetDecoy = core.Decoy
			} else {
				hit.TargetDecoy = core.Target
			}
		}
	}

	opts.logf("Protein statistics: %d new, %d orphaned (%s)",
		stats.NewProteins, stats.OrphanedProteins,
		map[bool]string{true: "all kept", false: "all removed"}[opts.KeepUnreferencedProteins])
}
