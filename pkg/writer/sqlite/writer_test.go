package sqlite

import (
	"database/sql"
	"path/filepath"
	"testing"

	"pepidx/pkg/core"
)

func TestWriteRunRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.db")

	w, err := NewWriter(path)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}

	pepID := core.PeptideIdentification{
		Identifier: "run1",
		Hits: []core.PeptideHit{
			{
				Sequence:    "CDE",
				Score:       12.5,
				TargetDecoy: core.TargetAndDecoy,
				References:  core.NonUnique,
				Evidences: []core.PeptideEvidence{
					{Accession: "P1", Start: 2, End: 4, AABefore: 'B', AAAfter: 'F'},
					{Accession: "DECOY_P1", Start: 2, End: 4, AABefore: 'B', AAAfter: 'F'},
				},
			},
			{Sequence: "YYY", References: core.Unmatched},
		},
	}
	protID := core.ProteinIdentification{
		Identifier: "run1",
		Hits: []core.ProteinHit{
			{Accession: "P1", TargetDecoy: core.Target},
			{Accession: "DECOY_P1", TargetDecoy: core.Decoy},
		},
	}

	if err := w.WriteRun(&protID, &pepID); err != nil {
		t.Fatalf("WriteRun: %v", err)
	}
	if err := w.WriteMeta("enzyme", "Trypsin"); err != nil {
		t.Fatalf("WriteMeta: %v", err)
	}
	if err := w.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()

	count := func(query string, args ...interface{}) int {
		t.Helper()
		var n int
		if err := db.QueryRow(query, args...).Scan(&n); err != nil {
			t.Fatalf("%s: %v", query, err)
		}
		return n
	}

	if n := count("SELECT COUNT(*) FROM RunTable WHERE Identifier = ?", "run1"); n != 1 {
		t.Errorf("runs = %d, want 1", n)
	}
	if n := count("SELECT COUNT(*) FROM PeptideTable"); n != 2 {
		t.Errorf("peptides = %d, want 2", n)
	}
	if n := count("SELECT COUNT(*) FROM EvidenceTable"); n != 2 {
		t.Errorf("evidences = %d, want 2", n)
	}
	if n := count("SELECT COUNT(*) FROM ProteinTable"); n != 2 {
		t.Errorf("proteins = %d, want 2", n)
	}

	var td, uniq string
	var mass float64
	err = db.QueryRow(`SELECT TargetDecoy, Uniqueness, NeutralMass FROM PeptideTable WHERE Sequence = ?`, "CDE").
		Scan(&td, &uniq, &mass)
	if err != nil {
		t.Fatalf("peptide row: %v", err)
	}
	if td != "target+decoy" || uniq != "non-unique" {
		t.Errorf("peptide row = %q/%q", td, uniq)
	}
	if mass <= 0 {
		t.Errorf("neutral mass = %v, want > 0", mass)
	}

	var before, after string
	err = db.QueryRow(`SELECT AABefore, AAAfter FROM EvidenceTable WHERE Accession = ?`, "P1").
		Scan(&before, &after)
	if err != nil {
		t.Fatalf("evidence row: %v", err)
	}
	if before != "B" || after != "F" {
		t.Errorf("flanks = %q/%q", before, after)
	}

	var enzyme string
	if err := db.QueryRow(`SELECT Value FROM MetaTable WHERE Key = ?`, "enzyme").Scan(&enzyme); err != nil {
		t.Fatalf("meta row: %v", err)
	}
	if enzyme != "Trypsin" {
		t.Errorf("meta enzyme = %q", enzyme)
	}
	if n := count("SELECT COUNT(*) FROM MetaTable WHERE Key = 'creation_date'"); n != 1 {
		t.Errorf("creation_date rows = %d, want 1", n)
	}
}
