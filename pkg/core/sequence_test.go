package core

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name         string
		seq          string
		ilEquivalent bool
		want         string
	}{
		{
			name: "plain sequence unchanged",
			seq:  "PEPTIDEK",
			want: "PEPTIDEK",
		},
		{
			name: "stop marker stripped",
			seq:  "PEPTIDEK*",
			want: "PEPTIDEK",
		},
		{
			name: "internal stop marker stripped",
			seq:  "PEP*TIDEK",
			want: "PEPTIDEK",
		},
		{
			name:         "IL folding",
			seq:          "LEVELLING",
			ilEquivalent: true,
			want:         "IEVEIIING",
		},
		{
			name:         "IL folding with stop marker",
			seq:          "KLM*",
			ilEquivalent: true,
			want:         "KIM",
		},
		{
			name: "empty",
			seq:  "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.seq, tt.ilEquivalent)
			if got != tt.want {
				t.Errorf("Normalize(%q, %v) = %q, want %q", tt.seq, tt.ilEquivalent, got, tt.want)
			}
			// Normalization must be idempotent.
			again := Normalize(got, tt.ilEquivalent)
			if again != got {
				t.Errorf("Normalize not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestCheckPeptide(t *testing.T) {
	if err := CheckPeptide("PEPTIDEK"); err != nil {
		t.Errorf("CheckPeptide(PEPTIDEK) = %v, want nil", err)
	}
	if err := CheckPeptide("PEPUTIDE"); err == nil {
		t.Error("CheckPeptide(PEPUTIDE) = nil, want error for 'U'")
	}
}

func TestAmbiguityMatches(t *testing.T) {
	tests := []struct {
		proteinAA byte
		peptideAA byte
		want      bool
	}{
		{'B', 'D', true},
		{'B', 'N', true},
		{'B', 'E', false},
		{'Z', 'E', true},
		{'Z', 'Q', true},
		{'Z', 'D', false},
		{'X', 'A', true},
		{'X', 'W', true},
		{'K', 'K', false}, // plain residues are not ambiguity matches
	}
	for _, tt := range tests {
		if got := AmbiguityMatches(tt.proteinAA, tt.peptideAA); got != tt.want {
			t.Errorf("AmbiguityMatches(%c, %c) = %v, want %v", tt.proteinAA, tt.peptideAA, got, tt.want)
		}
	}
}

func TestProteinAccessions(t *testing.T) {
	hit := PeptideHit{
		Sequence: "CDE",
		Evidences: []PeptideEvidence{
			{Accession: "P2", Start: 2, End: 4},
			{Accession: "P1", Start: 2, End: 4},
			{Accession: "P2", Start: 9, End: 11},
		},
	}
	got := hit.ProteinAccessions()
	want := []string{"P1", "P2"}
	if len(got) != len(want) {
		t.Fatalf("ProteinAccessions() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ProteinAccessions()[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	var empty PeptideHit
	if accs := empty.ProteinAccessions(); accs != nil {
		t.Errorf("ProteinAccessions() on empty hit = %v, want nil", accs)
	}
}

func TestTargetDecoyString(t *testing.T) {
	tests := []struct {
		td   TargetDecoy
		want string
	}{
		{Target, "target"},
		{Decoy, "decoy"},
		{TargetAndDecoy, "target+decoy"},
		{TargetDecoyUnset, ""},
	}
	for _, tt := range tests {
		if got := tt.td.String(); got != tt.want {
			t.Errorf("TargetDecoy(%d).String() = %q, want %q", tt.td, got, tt.want)
		}
	}
}

func TestCalculateNeutralMass(t *testing.T) {
	// Glycine: C2H3NO residue + water = C2H5NO2, 75.03203 Da.
	got := RoundFloat(CalculateNeutralMass("G"), 4)
	if got != 75.0320 {
		t.Errorf("CalculateNeutralMass(G) = %v, want 75.0320", got)
	}
	if CalculateNeutralMass("") != 2*MassH+MassO {
		t.Errorf("CalculateNeutralMass(\"\") should be the mass of water")
	}
}
