package enzyme

import (
	"testing"

	"pepidx/pkg/core"
)

func TestCleavesBetween(t *testing.T) {
	trypsin := DB["Trypsin"]
	tests := []struct {
		prev, next byte
		want       bool
	}{
		{'K', 'A', true},
		{'R', 'G', true},
		{'K', 'P', false}, // proline blocks tryptic cleavage
		{'R', 'P', false},
		{'A', 'K', false},
	}
	for _, tt := range tests {
		if got := trypsin.CleavesBetween(tt.prev, tt.next); got != tt.want {
			t.Errorf("Trypsin.CleavesBetween(%c, %c) = %v, want %v", tt.prev, tt.next, got, tt.want)
		}
	}

	trypsinP := DB["Trypsin/P"]
	if !trypsinP.CleavesBetween('K', 'P') {
		t.Error("Trypsin/P should cleave K|P")
	}

	aspN := DB["Asp-N"]
	if !aspN.CleavesBetween('A', 'D') {
		t.Error("Asp-N should cleave before D")
	}
	if aspN.CleavesBetween('D', 'A') {
		t.Error("Asp-N should not cleave after D")
	}

	none := DB["no cleavage"]
	if none.CleavesBetween('K', 'A') {
		t.Error("'no cleavage' should never cleave")
	}
}

func TestIsValidProduct(t *testing.T) {
	//            0123456789
	const prot = "MKAAARTIDK"
	tests := []struct {
		name       string
		spec       Specificity
		pos, n     int
		wantOK     bool
		wantBefore byte
		wantAfter  byte
	}{
		{
			name: "fully tryptic internal",
			spec: Full, pos: 2, n: 4, // AAAR, after K, before T
			wantOK: true, wantBefore: 'K', wantAfter: 'T',
		},
		{
			name: "protein N-terminus counts as cut site",
			spec: Full, pos: 0, n: 2, // MK, C-flank after K
			wantOK: true, wantBefore: core.NTerminalAA, wantAfter: 'A',
		},
		{
			name: "protein C-terminus counts as cut site",
			spec: Full, pos: 6, n: 4, // TIDK, N-flank after R
			wantOK: true, wantBefore: 'R', wantAfter: core.CTerminalAA,
		},
		{
			name: "whole protein",
			spec: Full, pos: 0, n: len(prot),
			wantOK: true, wantBefore: core.NTerminalAA, wantAfter: core.CTerminalAA,
		},
		{
			name: "non-tryptic rejected under full",
			spec: Full, pos: 3, n: 3, // AAR: N-flank A|A is no cut site
			wantOK: false,
		},
		{
			name: "semi accepts one consistent flank",
			spec: Semi, pos: 2, n: 3, // AAA: after K, before R -> front ok
			wantOK: true, wantBefore: 'K', wantAfter: 'R',
		},
		{
			name: "semi rejects zero consistent flanks",
			spec: Semi, pos: 3, n: 2, // AA inside the A run
			wantOK: false,
		},
		{
			name: "none accepts anything",
			spec: None, pos: 3, n: 2,
			wantOK: true, wantBefore: 'A', wantAfter: 'R',
		},
		{
			name: "out of range",
			spec: None, pos: 8, n: 5,
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := NewDigestion("Trypsin", tt.spec)
			if err != nil {
				t.Fatalf("NewDigestion: %v", err)
			}
			ok, before, after := d.IsValidProduct(prot, tt.pos, tt.n)
			if ok != tt.wantOK {
				t.Fatalf("IsValidProduct(%d, %d) ok = %v, want %v", tt.pos, tt.n, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if before != tt.wantBefore || after != tt.wantAfter {
				t.Errorf("flanks = %c/%c, want %c/%c", before, after, tt.wantBefore, tt.wantAfter)
			}
		})
	}
}

func TestNewDigestionUnknownEnzyme(t *testing.T) {
	if _, err := NewDigestion("Imaginase", Full); err == nil {
		t.Error("NewDigestion with unknown enzyme should fail")
	}
}

func TestParseSpecificity(t *testing.T) {
	for _, s := range []string{"full", "semi", "none"} {
		spec, err := ParseSpecificity(s)
		if err != nil {
			t.Errorf("ParseSpecificity(%q) error: %v", s, err)
		}
		if spec.String() != s {
			t.Errorf("ParseSpecificity(%q).String() = %q", s, spec.String())
		}
	}
	if _, err := ParseSpecificity("partial"); err == nil {
		t.Error("ParseSpecificity(partial) should fail")
	}
}
