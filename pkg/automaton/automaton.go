// Package automaton implements a multi-pattern matcher for short amino-acid
// strings: an Aho-Corasick automaton over the peptide set, scanned linearly
// against each protein sequence, tolerating a bounded number of ambiguous
// residues (B, Z, X) in the protein text per matched peptide.
//
// The automaton is an arena of trie nodes addressed by integer index, with
// BFS-derived failure links. Once built it is read-only and safe to share
// across concurrent scanners.
package automaton

import (
	"fmt"

	"pepidx/pkg/core"
)

const alphabet = 26 // 'A'..'Z'

// node is one state in the automaton.
type node struct {
	next [alphabet]int32 // 0 => absent (root is state 0)
	fail int32
	out  []int32 // pattern indexes that end at this state
}

// Automaton is the immutable multi-pattern matcher.
type Automaton struct {
	nodes    []node
	patterns []string
	maxAmb   int
	// expansions of each ambiguity code, including the literal letter
	expand map[byte][]byte
}

// Build constructs the automaton for the given peptide patterns. maxAmb is
// the ambiguity budget: the maximum number of ambiguous protein residues a
// single peptide occurrence may span. Patterns must consist of the letters
// 'A'..'Z' only.
func Build(patterns []string, maxAmb int) (*Automaton, error) {
	if maxAmb < 0 {
		return nil, fmt.Errorf("ambiguity budget must be >= 0, got %d", maxAmb)
	}
	nodes := make([]node, 1) // state 0 = root

	// 1) Build trie edges
	for i, p := range patterns {
		if p == "" {
			return nil, fmt.Errorf("pattern %d is empty", i)
		}
		cur := int32(0)
		for j := 0; j < len(p); j++ {
			c := p[j]
			if c < 'A' || c > 'Z' {
				return nil, fmt.Errorf("pattern %q contains invalid residue %q", p, c)
			}
			b := c - 'A'
			if nodes[cur].next[b] == 0 {
				nodes = append(nodes, node{})
				nodes[cur].next[b] = int32(len(nodes) - 1)
			}
			cur = nodes[cur].next[b]
		}
		nodes[cur].out = append(nodes[cur].out, int32(i))
	}

	// 2) BFS to set fail links and propagate outputs
	queue := make([]int32, 0, len(nodes))
	for c := 0; c < alphabet; c++ {
		if child := nodes[0].next[c]; child != 0 {
			nodes[child].fail = 0
			queue = append(queue, child)
		}
	}
	for len(queue) > 0 {
		r := queue[0]
		queue = queue[1:]
		for c := 0; c < alphabet; c++ {
			s := nodes[r].next[c]
			if s == 0 {
				continue
			}
			queue = append(queue, s)
			f := nodes[r].fail
			for f > 0 && nodes[f].next[c] == 0 {
				f = nodes[f].fail
			}
			if nodes[f].next[c] != 0 {
				f = nodes[f].next[c]
			}
			nodes[s].fail = f
			if len(nodes[f].out) > 0 {
				nodes[s].out = append(nodes[s].out, nodes[f].out...)
			}
		}
	}

	a := &Automaton{
		nodes:    nodes,
		patterns: patterns,
		maxAmb:   maxAmb,
		expand:   make(map[byte][]byte, 3),
	}
	if maxAmb > 0 {
		all := make([]byte, 0, alphabet)
		for c := byte('A'); c <= 'Z'; c++ {
			all = append(all, c)
		}
		a.expand['B'] = []byte{'B', 'D', 'N'}
		a.expand['Z'] = []byte{'Z', 'E', 'Q'}
		a.expand['X'] = all
	}
	return a, nil
}

// Patterns returns the pattern set the automaton was built from.
func (a *Automaton) Patterns() []string { return a.patterns }

// step advances one state by one residue, following failure links.
func (a *Automaton) step(state int32, b byte) int32 {
	c := b - 'A'
	for state > 0 && a.nodes[state].next[c] == 0 {
		state = a.nodes[state].fail
	}
	if next := a.nodes[state].next[c]; next != 0 {
		return next
	}
	return 0
}

// Scan runs the automaton over seq and calls emit(patternIndex, pos) for
// every verified occurrence, where pos is the 0-based start offset of the
// pattern in seq. The same occurrence may be emitted more than once when
// ambiguity branching keeps overlapping states alive; callers collapse
// duplicates.
//
// The scan degenerates to classic single-state Aho-Corasick while the
// protein text is unambiguous; an ambiguous residue forks the active-state
// set into every compatible edge. Each candidate is re-verified against the
// exact window, which enforces the ambiguity budget per occurrence.
func (a *Automaton) Scan(seq string, emit func(pattern, pos int)) {
	states := make([]int32, 1, 8)
	states[0] = 0
	var scratch []int32
	var single [1]byte

	for i := 0; i < len(seq); i++ {
		c := seq[i]
		if c < 'A' || c > 'Z' {
			// unknown residue: no pattern can span it
			states = states[:1]
			states[0] = 0
			continue
		}

		exp := a.expand[c] // nil unless c is ambiguous and the budget allows it
		if exp == nil {
			single[0] = c
			exp = single[:]
		}
		scratch = scratch[:0]
		for _, s := range states {
			for _, e := range exp {
				scratch = appendState(scratch, a.step(s, e))
			}
		}
		states, scratch = scratch, states

		for _, s := range states {
			for _, pat := range a.nodes[s].out {
				p := a.patterns[pat]
				start := i - len(p) + 1
				if a.verify(seq, start, p) {
					emit(int(pat), start)
				}
			}
		}
	}
}

// verify re-checks a candidate occurrence against the exact protein window,
// counting ambiguity-spanning residues against the budget. Literal equality
// (including a literal B/Z/X in the peptide) costs nothing.
func (a *Automaton) verify(seq string, start int, pattern string) bool {
	if start < 0 || start+len(pattern) > len(seq) {
		return false
	}
	amb := 0
	for j := 0; j < len(pattern); j++ {
		pc := seq[start+j]
		qc := pattern[j]
		if pc == qc {
			continue
		}
		if !core.AmbiguityMatches(pc, qc) {
			return false
		}
		amb++
		if amb > a.maxAmb {
			return false
		}
	}
	return true
}

// appendState adds a state to the active set, keeping it duplicate-free.
// Active sets stay tiny (one state in unambiguous text), so a linear scan
// beats a map here.
func appendState(set []int32, s int32) []int32 {
	for _, v := range set {
		if v == s {
			return set
		}
	}
	return append(set, s)
}
