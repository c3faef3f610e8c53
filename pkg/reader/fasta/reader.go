// Package fasta provides a streaming reader for protein FASTA databases
package fasta

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"pepidx/pkg/core"
)

// Reader provides streaming access to FASTA files
type Reader struct {
	scanner *bufio.Scanner
	lineNum int
	header  string // lookahead: the '>' line of the next entry
	current *core.ProteinEntry
	err     error
}

// NewReader creates a new FASTA reader
func NewReader(r io.Reader) *Reader {
	sc := bufio.NewScanner(r)
	// protein records can exceed the default scanner token size
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	return &Reader{scanner: sc}
}

// File wraps an open FASTA file, transparently decompressing
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

// Next advances to the next entry. Returns false when no more entries or error.
func (r *Reader) Next() bool {
	r.current = nil

	entry, err := r.readEntry()
	if err != nil {
		if err != io.EOF {
			r.err = err
		}
		return false
	}

	r.current = entry
	return true
}

// Entry returns the current protein entry
func (r *Reader) Entry() *core.ProteinEntry {
	return r.current
}

// Err returns any error encountered during reading
func (r *Reader) Err() error {
	return r.err
}

// readEntry reads a single FASTA record: one header line followed by
// sequence lines up to the next header or EOF.
func (r *Reader) readEntry() (*core.ProteinEntry, error) {
	header := r.header
	r.header = ""

	// find the first header line of the file
	for header == "" {
		if !r.scanner.Scan() {
			if err := r.scanner.Err(); err != nil {
				return nil, err
			}
			return nil, io.EOF
		}
		r.lineNum++
		line := strings.TrimSpace(r.scanner.Text())
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, ">") {
			return nil, fmt.Errorf("line %d: expected '>' header, got %q", r.lineNum, line)
		}
		header = line
	}

	entry, err := parseHeader(header)
	if err != nil {
		return nil, fmt.Errorf("line %d: %w", r.lineNum, err)
	}

	var seq strings.Builder
	for r.scanner.Scan() {
		r.lineNum++
		line := strings.TrimSpace(r.scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, ">") {
			r.header = line
			break
		}
		seq.WriteString(line)
	}
	if err := r.scanner.Err(); err != nil {
		return nil, err
	}

	entry.Sequence = strings.ToUpper(seq.String())
	return entry, nil
}

// parseHeader splits a '>' line into accession (first token) and
// description (the rest, if any).
func parseHeader(line string) (*core.ProteinEntry, error) {
	text := strings.TrimSpace(strings.TrimPrefix(line, ">"))
	if text == "" {
		return nil, fmt.Errorf("empty FASTA header")
	}
	entry := &core.ProteinEntry{}
	if i := strings.IndexAny(text, " \t"); i >= 0 {
		entry.Accession = text[:i]
		entry.Description = strings.TrimSpace(text[i+1:])
	} else {
		entry.Accession = text
	}
	return entry, nil
}

// ReadAll drains the reader into a slice, for callers that want the
// whole database in memory.
func ReadAll(r *Reader) ([]core.ProteinEntry, error) {
	var entries []core.ProteinEntry
	for r.Next() {
		entries = append(entries, *r.Entry())
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
