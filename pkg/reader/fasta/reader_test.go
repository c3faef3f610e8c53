package fasta

import (
	"strings"
	"testing"
)

func TestReadEntries(t *testing.T) {
	input := `>P1 first protein
MKAAAR
TIDK
>DECOY_P1
mkaaar

>P2 second  protein  with spaces
PEPTIDE
`

	r := NewReader(strings.NewReader(input))

	var got []struct{ acc, desc, seq string }
	for r.Next() {
		e := r.Entry()
		got = append(got, struct{ acc, desc, seq string }{e.Accession, e.Description, e.Sequence})
	}
	if err := r.Err(); err != nil {
		t.Fatalf("Err() = %v", err)
	}

	want := []struct{ acc, desc, seq string }{
		{"P1", "first protein", "MKAAARTIDK"},
		{"DECOY_P1", "", "MKAAAR"},
		{"P2", "second  protein  with spaces", "PEPTIDE"},
	}
	if len(got) != len(want) {
		t.Fatalf("read %d entries, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestMultilineAndCaseFolding(t *testing.T) {
	input := ">P1\nmk\naa\nAR\n"
	r := NewReader(strings.NewReader(input))
	if !r.Next() {
		t.Fatalf("Next() = false, err = %v", r.Err())
	}
	if r.Entry().Sequence != "MKAAR" {
		t.Errorf("sequence = %q, want MKAAR", r.Entry().Sequence)
	}
	if r.Next() {
		t.Error("expected a single entry")
	}
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"sequence before header", "MKAAAR\n>P1\nAAA\n"},
		{"empty header", ">   \nAAA\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReader(strings.NewReader(tt.input))
			for r.Next() {
			}
			if r.Err() == nil {
				t.Error("expected a parse error")
			}
		})
	}
}

func TestEmptyInput(t *testing.T) {
	r := NewReader(strings.NewReader(""))
	if r.Next() {
		t.Error("Next() on empty input should be false")
	}
	if r.Err() != nil {
		t.Errorf("Err() = %v, want nil", r.Err())
	}
}

func TestReadAll(t *testing.T) {
	r := NewReader(strings.NewReader(">A\nAAA\n>B\nCCC\n"))
	entries, err := ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(entries) != 2 || entries[0].Accession != "A" || entries[1].Sequence != "CCC" {
		t.Errorf("entries = %+v", entries)
	}
}
