// Package cmd provides CLI command implementations
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"pepidx/pkg/enzyme"
)

var (
	// Flags for index command
	fastaFile          string
	peptideFile        string
	outputFile         string
	decoyString        string
	decoyPosition      string
	missingDecoyAction string
	enzymeName         string
	specificity        string
	aaaMax             int
	ilEquivalent       bool
	allowUnmatched     bool
	keepUnreferenced   bool
	writeProtSequence  bool
	writeProtDesc      bool
	threads            int
	noProgress         bool
)

var rootCmd = &cobra.Command{
	Use:   "pepidx",
	Short: "pepidx - Peptide to protein database indexing tool",
	Long: `pepidx maps peptide identifications onto a protein FASTA database and
writes the annotated results to a SQLite report.

Each peptide is located in the database with an ambiguity-aware exact
search, checked against the configured enzymatic digestion, and
classified as target or decoy and unique or shared. Protein hit lists
are rebuilt from the peptide evidence.`,
	Version: "1.0.0",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(enzymesCmd)

	// Index command flags
	indexCmd.Flags().StringVarP(&fastaFile, "fasta", "d", "", "Protein database in FASTA format, .gz and .zst supported (required)")
	indexCmd.Flags().StringVarP(&peptideFile, "in", "i", "", "Peptide identifications as TSV: run, sequence, optional score (required)")
	indexCmd.Flags().StringVarP(&outputFile, "out", "o", "", "Output SQLite report file (required)")
	indexCmd.Flags().StringVar(&decoyString, "decoy-string", "DECOY_", "Accession substring that marks decoy proteins")
	indexCmd.Flags().StringVar(&decoyPosition, "decoy-position", "prefix", "Where the decoy string sits in the accession: prefix or suffix")
	indexCmd.Flags().StringVar(&missingDecoyAction, "missing-decoy-action", "error", "Reaction when no decoy protein is matched: error or warn")
	indexCmd.Flags().StringVar(&enzymeName, "enzyme", "Trypsin", "Digestion enzyme (see 'pepidx enzymes')")
	indexCmd.Flags().StringVar(&specificity, "specificity", "full", "Required cleavage specificity: full, semi, or none")
	indexCmd.Flags().IntVar(&aaaMax, "aaa-max", 4, "Maximum number of ambiguous residues (B, Z, X) matched per peptide")
	indexCmd.Flags().BoolVar(&ilEquivalent, "IL-equivalent", false, "Treat isoleucine and leucine as interchangeable")
	indexCmd.Flags().BoolVar(&allowUnmatched, "allow-unmatched", false, "Do not fail when peptides remain unmatched")
	indexCmd.Flags().BoolVar(&keepUnreferenced, "keep-unreferenced-proteins", false, "Keep protein hits no peptide refers to")
	indexCmd.Flags().BoolVar(&writeProtSequence, "write-protein-sequence", false, "Copy protein sequences into the report")
	indexCmd.Flags().BoolVar(&writeProtDesc, "write-protein-description", false, "Copy protein descriptions into the report")
	indexCmd.Flags().IntVar(&threads, "threads", 0, "Number of worker threads (0 = all CPUs)")
	indexCmd.Flags().BoolVar(&noProgress, "no-progress", false, "Disable the progress bar")

	indexCmd.MarkFlagRequired("fasta")
	indexCmd.MarkFlagRequired("in")
	indexCmd.MarkFlagRequired("out")
}

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Map peptide identifications onto a protein database",
	Long: `Map peptide identifications onto a protein FASTA database and write an
annotated SQLite report.

Examples:
  # Index with default tryptic digestion
  pepidx index --fasta proteome.fasta --in peptides.tsv --out report.db

  # Unspecific search with I/L folding against a compressed database
  pepidx index --fasta proteome.fasta.gz --in peptides.tsv --out report.db \
    --specificity none --IL-equivalent

  # Suffix-style decoys, tolerate unmatched peptides
  pepidx index --fasta proteome.fasta --in peptides.tsv --out report.db \
    --decoy-string _rev --decoy-position suffix --allow-unmatched`,
	RunE: runIndex,
}

var enzymesCmd = &cobra.Command{
	Use:   "enzymes",
	Short: "List the supported digestion enzymes",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, name := range enzyme.Names() {
			e, _ := enzyme.Get(name)
			fmt.Printf("%-28s %s\n", name, e.Rule())
		}
		return nil
	},
}
