package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"pepidx/pkg/core"
	"pepidx/pkg/indexer"
	"pepidx/pkg/reader/fasta"
	"pepidx/pkg/reader/idtsv"
	"pepidx/pkg/writer/sqlite"
)

func runIndex(cmd *cobra.Command, args []string) error {
	// Read protein database
	ff, err := fasta.Open(fastaFile)
	if err != nil {
		return fmt.Errorf("failed to open FASTA file: %w", err)
	}
	proteins, err := fasta.ReadAll(ff.Reader)
	ff.Close()
	if err != nil {
		return fmt.Errorf("failed to read FASTA file: %w", err)
	}
	fmt.Printf("Read %s protein entries from %s\n", humanize.Comma(int64(len(proteins))), fastaFile)

	// Read peptide identifications
	pf, err := idtsv.Open(peptideFile)
	if err != nil {
		return fmt.Errorf("failed to open peptide file: %w", err)
	}
	protIDs, pepIDs, err := idtsv.Load(pf.Reader)
	pf.Close()
	if err != nil {
		return fmt.Errorf("failed to read peptide file: %w", err)
	}
	totalHits := 0
	for i := range pepIDs {
		totalHits += len(pepIDs[i].Hits)
	}
	fmt.Printf("Read %s peptide identifications in %d run(s) from %s\n",
		humanize.Comma(int64(totalHits)), len(pepIDs), peptideFile)

	opts := indexer.Options{
		DecoyString:              decoyString,
		DecoyPosition:            decoyPosition,
		MissingDecoyAction:       missingDecoyAction,
		Enzyme:                   enzymeName,
		Specificity:              specificity,
		AAAMax:                   aaaMax,
		ILEquivalent:             ilEquivalent,
		AllowUnmatched:           allowUnmatched,
		KeepUnreferencedProteins: keepUnreferenced,
		WriteProteinSequence:     writeProtSequence,
		WriteProteinDescription:  writeProtDesc,
		Threads:                  threads,
		Logf: func(format string, v ...interface{}) {
			fmt.Fprintf(os.Stderr, format+"\n", v...)
		},
	}

	var progress *mpb.Progress
	var bar *mpb.Bar
	if !noProgress {
		progress = mpb.New(mpb.WithOutput(os.Stderr), mpb.WithWidth(64))
		bar = progress.New(int64(len(proteins)),
			mpb.BarStyle(),
			mpb.PrependDecorators(
				decor.Name("mapping "),
				decor.CountersNoUnit("%d / %d"),
			),
			mpb.AppendDecorators(decor.Percentage()),
		)
		opts.Progress = func(n int) { bar.IncrBy(n) }
	}

	ix, err := indexer.New(opts)
	if err != nil {
		return err
	}
	code, stats := ix.Run(&proteins, protIDs, pepIDs)

	if bar != nil {
		// deduplication can shrink the corpus below the initial total
		bar.SetTotal(bar.Current(), true)
		progress.Wait()
	}

	switch code {
	case indexer.ExecutionOK, indexer.PeptideIDsEmpty, indexer.UnexpectedResult:
		// results are written even when the run is reported as incomplete
	default:
		return fmt.Errorf("indexing failed: %s", code)
	}

	if err := writeReport(protIDs, pepIDs); err != nil {
		return err
	}
	printStats(stats)
	fmt.Printf("Output: %s\n", outputFile)

	if code != indexer.ExecutionOK && code != indexer.PeptideIDsEmpty {
		return fmt.Errorf("indexing finished with an unexpected result: %s", code)
	}
	return nil
}

func writeReport(protIDs []core.ProteinIdentification, pepIDs []core.PeptideIdentification) error {
	w, err := sqlite.NewWriter(outputFile)
	if err != nil {
		return fmt.Errorf("failed to create output database: %w", err)
	}

	protByRun := make(map[string]*core.ProteinIdentification, len(protIDs))
	for i := range protIDs {
		protByRun[protIDs[i].Identifier] = &protIDs[i]
	}
	for i := range pepIDs {
		if err := w.WriteRun(protByRun[pepIDs[i].Identifier], &pepIDs[i]); err != nil {
			w.Close()
			return err
		}
	}

	meta := [][2]string{
		{"tool", "pepidx " + rootCmd.Version},
		{"fasta", fastaFile},
		{"enzyme", enzymeName},
		{"specificity", specificity},
		{"decoy_string", decoyString},
		{"decoy_position", decoyPosition},
		{"aaa_max", strconv.Itoa(aaaMax)},
		{"IL_equivalent", strconv.FormatBool(ilEquivalent)},
	}
	for _, kv := range meta {
		if err := w.WriteMeta(kv[0], kv[1]); err != nil {
			w.Close()
			return err
		}
	}

	if err := w.Finalize(); err != nil {
		return fmt.Errorf("failed to finalize database: %w", err)
	}
	return nil
}

func printStats(stats *indexer.Stats) {
	comma := func(n int) string { return humanize.Comma(int64(n)) }

	fmt.Printf("\nIndexing complete!\n")
	fmt.Printf("Proteins: %s", comma(stats.Proteins))
	if len(stats.DuplicateAccessions) > 0 {
		fmt.Printf(" (%s duplicates dropped)", comma(len(stats.DuplicateAccessions)))
	}
	fmt.Println()
	fmt.Printf("Peptide hits: %s (%s distinct sequences)\n",
		comma(stats.PeptideHits), comma(stats.DistinctPeptides))
	if len(stats.SkippedPeptides) > 0 {
		fmt.Printf("Skipped peptides: %s\n", comma(len(stats.SkippedPeptides)))
	}
	fmt.Printf("Enzyme filter: %s passed, %s rejected\n",
		comma(stats.FilterPassed), comma(stats.FilterRejected))
	fmt.Printf("Target/decoy: %s target, %s decoy, %s both\n",
		comma(stats.MatchedTarget), comma(stats.MatchedDecoy), comma(stats.MatchedBoth))
	fmt.Printf("Uniqueness: %s unique, %s shared, %s unmatched\n",
		comma(stats.Unique), comma(stats.NonUnique), comma(stats.Unmatched))
	fmt.Printf("Protein hits: %s new, %s orphaned\n",
		comma(stats.NewProteins), comma(stats.OrphanedProteins))
}
