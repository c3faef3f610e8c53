// Package sqlite writes peptide indexing reports to SQLite database files
package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"pepidx/pkg/core"
)

// Date format for MetaTable (ISO 8601)
const metaDateFormat = "2006-01-02"

// Writer handles writing indexing results to a SQLite report file
type Writer struct {
	db           *sql.DB
	outputPath   string
	runStmt      *sql.Stmt
	peptideStmt  *sql.Stmt
	evidenceStmt *sql.Stmt
	proteinStmt  *sql.Stmt
	metaStmt     *sql.Stmt
	runID        int
	peptideID    int
	evidenceID   int
	proteinID    int
}

// NewWriter creates a new SQLite report writer
func NewWriter(outputPath string) (*Writer, error) {
	db, err := sql.Open("sqlite3", outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	w := &Writer{
		db:         db,
		outputPath: outputPath,
		runID:      1,
		peptideID:  1,
		evidenceID: 1,
		proteinID:  1,
	}

	if err := w.createTables(); err != nil {
		db.Close()
		return nil, err
	}

	if err := w.prepareStatements(); err != nil {
		db.Close()
		return nil, err
	}

	return w, nil
}

// createTables creates the required database schema
func (w *Writer) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS RunTable (
		RunId INTEGER PRIMARY KEY,
		Identifier TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS PeptideTable (
		PeptideId INTEGER PRIMARY KEY,
		RunId INTEGER REFERENCES RunTable(RunId),
		Sequence TEXT NOT NULL,
		NeutralMass DOUBLE,
		Score DOUBLE,
		TargetDecoy TEXT,
		Uniqueness TEXT
	);

	CREATE TABLE IF NOT EXISTS EvidenceTable (
		EvidenceId INTEGER PRIMARY KEY,
		PeptideId INTEGER REFERENCES PeptideTable(PeptideId),
		Accession TEXT NOT NULL,
		StartPos INTEGER,
		EndPos INTEGER,
		AABefore TEXT,
		AAAfter TEXT
	);

	CREATE TABLE IF NOT EXISTS ProteinTable (
		ProteinId INTEGER PRIMARY KEY,
		RunId INTEGER REFERENCES RunTable(RunId),
		Accession TEXT NOT NULL,
		Sequence TEXT,
		Description TEXT,
		Score DOUBLE,
		TargetDecoy TEXT
	);

	CREATE TABLE IF NOT EXISTS MetaTable (
		Key TEXT NOT NULL,
		Value TEXT
	);
	`

	_, err := w.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	return nil
}

// prepareStatements prepares SQL statements for batch insertion
func (w *Writer) prepareStatements() error {
	var err error

	w.runStmt, err = w.db.Prepare(`
		INSERT INTO RunTable (RunId, Identifier) VALUES (?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare run statement: %w", err)
	}

	w.peptideStmt, err = w.db.Prepare(`
		INSERT INTO PeptideTable (
			PeptideId, RunId, Sequence, NeutralMass, Score, TargetDecoy, Uniqueness
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare peptide statement: %w", err)
	}

	w.evidenceStmt, err = w.db.Prepare(`
		INSERT INTO EvidenceTable (
			EvidenceId, PeptideId, Accession, StartPos, EndPos, AABefore, AAAfter
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare evidence statement: %w", err)
	}

	w.proteinStmt, err = w.db.Prepare(`
		INSERT INTO ProteinTable (
			ProteinId, RunId, Accession, Sequence, Description, Score, TargetDecoy
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare protein statement: %w", err)
	}

	w.metaStmt, err = w.db.Prepare(`
		INSERT INTO MetaTable (Key, Value) VALUES (?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare meta statement: %w", err)
	}

	return nil
}

// WriteRun writes one run: its peptide hits with their evidences and its
// reconciled protein hits.
func (w *Writer) WriteRun(protID *core.ProteinIdentification, pepID *core.PeptideIdentification) error {
	runID := w.runID
	if _, err := w.runStmt.Exec(runID, pepID.Identifier); err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	w.runID++

	for i := range pepID.Hits {
		hit := &pepID.Hits[i]

		_, err := w.peptideStmt.Exec(
			w.peptideID,
			runID,
			hit.Sequence,
			core.CalculateNeutralMass(hit.Sequence),
			hit.Score,
			hit.TargetDecoy.String(),
			hit.References.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert peptide %s: %w", hit.Sequence, err)
		}

		for _, ev := range hit.Evidences {
			_, err := w.evidenceStmt.Exec(
				w.evidenceID,
				w.peptideID,
				ev.Accession,
				ev.Start,
				ev.End,
				string(ev.AABefore),
				string(ev.AAAfter),
			)
			if err != nil {
				return fmt.Errorf("failed to insert evidence for %s: %w", hit.Sequence, err)
			}
			w.evidenceID++
		}
		w.peptideID++
	}

	if protID == nil {
		return nil
	}
	for i := range protID.Hits {
		hit := &protID.Hits[i]

		_, err := w.proteinStmt.Exec(
			w.proteinID,
			runID,
			hit.Accession,
			hit.Sequence,
			hit.Description,
			hit.Score,
			hit.TargetDecoy.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert protein %s: %w", hit.Accession, err)
		}
		w.proteinID++
	}

	return nil
}

// WriteMeta records one key/value pair in the meta table.
func (w *Writer) WriteMeta(key, value string) error {
	if _, err := w.metaStmt.Exec(key, value); err != nil {
		return fmt.Errorf("failed to insert meta %s: %w", key, err)
	}
	return nil
}

// Finalize stamps the creation date and closes the database
func (w *Writer) Finalize() error {
	if err := w.WriteMeta("creation_date", time.Now().Format(metaDateFormat)); err != nil {
		return err
	}

	for _, stmt := range []*sql.Stmt{w.runStmt, w.peptideStmt, w.evidenceStmt, w.proteinStmt, w.metaStmt} {
		if stmt != nil {
			stmt.Close()
		}
	}

	if err := w.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	return nil
}

// Close closes the database connection (alias for Finalize)
func (w *Writer) Close() error {
	return w.Finalize()
}
