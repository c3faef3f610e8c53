// Package idtsv provides a streaming reader for tab-separated peptide
// identification lists (run_id, peptide sequence, optional score).
package idtsv

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"pepidx/pkg/core"
)

// Record is one identification line.
type Record struct {
	Run      string
	Sequence string
	Score    float64
	HasScore bool
}

// Reader provides streaming access to identification TSV files
type Reader struct {
	scanner *bufio.Scanner
	lineNum int
	current *Record
	err     error
}

// NewReader creates a new TSV reader
func NewReader(r io.Reader) *Reader {
	return &Reader{scanner: bufio.NewScanner(r)}
}

// File wraps an open TSV file, transparently decompressing
// gzip and zstandard input based on the file extension.
type File struct {
	*Reader
	closers []io.Closer
}

// Open opens path for reading. Files ending in .gz or .zst are
// decompressed on the fly.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	var r io.Reader = f
	closers := []io.Closer{f}
	switch filepath.Ext(path) {
	case ".gz":
		gz, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("opening gzip stream %s: %w", path, err)
		}
		r = gz
		closers = append(closers, gz)
	case ".zst":
		zr, err := zstd.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("opening zstd stream %s: %w", path, err)
		}
		rc := zr.IOReadCloser()
		r = rc
		closers = append(closers, rc)
	}

	return &File{Reader: NewReader(r), closers: closers}, nil
}

// Close closes the underlying file and any decompressor.
func (f *File) Close() error {
	var first error
	for i := len(f.closers) - 1; i >= 0; i-- {
		if err := f.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Next advances to the next record. Returns false when no more records or error.
func (r *Reader) Next() bool {
	r.current = nil

	for r.scanner.Scan() {
		r.lineNum++
		line := strings.TrimRight(r.scanner.Text(), "\r\n")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		rec, err := parseLine(line)
		if err != nil {
			r.err = fmt.Errorf("line %d: %w", r.lineNum, err)
			return false
		}
		r.current = rec
		return true
	}
	if err := r.scanner.Err(); err != nil {
		r.err = err
	}
	return false
}

// Record returns the current record
func (r *Reader) Record() *Record {
	return r.current
}

// Err returns any error encountered during reading
func (r *Reader) Err() error {
	return r.err
}

func parseLine(line string) (*Record, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < 2 {
		return nil, fmt.Errorf("expected at least 2 tab-separated fields, got %d", len(fields))
	}
	rec := &Record{
		Run:      strings.TrimSpace(fields[0]),
		Sequence: strings.TrimSpace(fields[1]),
	}
	if rec.Run == "" {
		return nil, fmt.Errorf("empty run identifier")
	}
	if rec.Sequence == "" {
		return nil, fmt.Errorf("empty peptide sequence")
	}
	if len(fields) >= 3 && strings.TrimSpace(fields[2]) != "" {
		score, err := strconv.ParseFloat(strings.TrimSpace(fields[2]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid score: %w", err)
		}
		rec.Score = score
		rec.HasScore = true
	}
	return rec, nil
}

// Load drains the reader and groups the records into per-run peptide
// identifications, preserving first-seen run order. One empty protein
// identification is synthesized per run so downstream reconciliation
// has a hit list to fill.
func Load(r *Reader) ([]core.ProteinIdentification, []core.PeptideIdentification, error) {
	var pepIDs []core.PeptideIdentification
	runIdx := make(map[string]int)

	for r.Next() {
		rec := r.Record()
		i, ok := runIdx[rec.Run]
		if !ok {
			i = len(pepIDs)
			runIdx[rec.Run] = i
			pepIDs = append(pepIDs, core.PeptideIdentification{Identifier: rec.Run})
		}
		pepIDs[i].Hits = append(pepIDs[i].Hits, core.PeptideHit{
			Sequence: rec.Sequence,
			Score:    rec.Score,
		})
	}
	if err := r.Err(); err != nil {
		return nil, nil, err
	}

	protIDs := make([]core.ProteinIdentification, len(pepIDs))
	for i := range pepIDs {
		protIDs[i].Identifier = pepIDs[i].Identifier
	}
	return protIDs, pepIDs, nil
}
