package idtsv

import (
	"strings"
	"testing"
)

func TestReadRecords(t *testing.T) {
	input := "# comment line\n" +
		"run1\tPEPTIDEK\t42.5\n" +
		"\n" +
		"run1\tAAAR\n" +
		"run2\tCDEK\t-1\n"

	r := NewReader(strings.NewReader(input))

	var got []Record
	for r.Next() {
		got = append(got, *r.Record())
	}
	if err := r.Err(); err != nil {
		t.Fatalf("Err() = %v", err)
	}

	want := []Record{
		{Run: "run1", Sequence: "PEPTIDEK", Score: 42.5, HasScore: true},
		{Run: "run1", Sequence: "AAAR"},
		{Run: "run2", Sequence: "CDEK", Score: -1, HasScore: true},
	}
	if len(got) != len(want) {
		t.Fatalf("read %d records, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("record %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"single field", "run1\n"},
		{"empty run", "\tPEP\n"},
		{"empty sequence", "run1\t\t3.0\n"},
		{"bad score", "run1\tPEP\tabc\n"},
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

func TestLoadGroupsByRun(t *testing.T) {
	input := "run1\tAAA\nrun2\tBBB\nrun1\tCCC\n"
	protIDs, pepIDs, err := Load(NewReader(strings.NewReader(input)))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(pepIDs) != 2 {
		t.Fatalf("runs = %d, want 2", len(pepIDs))
	}
	if pepIDs[0].Identifier != "run1" || pepIDs[1].Identifier != "run2" {
		t.Errorf("run order = %q, %q", pepIDs[0].Identifier, pepIDs[1].Identifier)
	}
	if len(pepIDs[0].Hits) != 2 || pepIDs[0].Hits[1].Sequence != "CCC" {
		t.Errorf("run1 hits = %+v", pepIDs[0].Hits)
	}
	if len(protIDs) != 2 || protIDs[0].Identifier != "run1" || len(protIDs[0].Hits) != 0 {
		t.Errorf("protIDs = %+v", protIDs)
	}
}
