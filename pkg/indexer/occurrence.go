package indexer

import (
	"runtime"
	"sort"

	"pepidx/pkg/automaton"
	"pepidx/pkg/enzyme"
)

// occurrence is one accepted peptide/protein match. Protein is the corpus
// index, Position the 0-based start offset. The field order defines the
// total order used to collapse duplicate evidence.
type occurrence struct {
	Protein  int
	Position int
	AABefore byte
	AAAfter  byte
}

func (o occurrence) less(p occurrence) bool {
	if o.Protein != p.Protein {
		return o.Protein < p.Protein
	}
	if o.Position != p.Position {
		return o.Position < p.Position
	}
	if o.AABefore != p.AABefore {
		return o.AABefore < p.AABefore
	}
	return o.AAAfter < p.AAAfter
}

// shardAccumulator collects one worker's matches and filter counters. Each
// worker owns exactly one; nothing in it is shared until the merge.
type shardAccumulator struct {
	hits     map[int]map[occurrence]struct{} // peptide index -> occurrence set
	passed   int
	rejected int
}

func newShardAccumulator() *shardAccumulator {
	return &shardAccumulator{hits: make(map[int]map[occurrence]struct{})}
}

func (s *shardAccumulator) add(pep int, o occurrence) {
	set, ok := s.hits[pep]
	if !ok {
		set = make(map[occurrence]struct{})
		s.hits[pep] = set
	}
	set[o] = struct{}{}
}

// scanProtein runs the shared automaton over one corpus sequence and feeds
// every raw occurrence through the digestion filter. Raw (peptide, position)
// pairs are deduplicated first so the filter counters stay deterministic.
func scanProtein(a *automaton.Automaton, d enzyme.Digestion, seq string, protein int, acc *shardAccumulator) {
	type raw struct{ pep, pos int }
	seen := make(map[raw]struct{})
	patterns := a.Patterns()

	a.Scan(seq, func(pep, pos int) {
		r := raw{pep, pos}
		if _, dup := seen[r]; dup {
			return
		}
		seen[r] = struct{}{}

		ok, before, after := d.IsValidProduct(seq, pos, len(patterns[pep]))
		if !ok {
			acc.rejected++
			return
		}
		acc.passed++
		acc.add(pep, occurrence{Protein: protein, Position: pos, AABefore: before, AAAfter: after})
	})
}

// matchMap is the merged result of all shards: peptide index -> ordered set
// of distinct occurrences.
type matchMap map[int][]occurrence

// searchParallel scans the whole corpus with a fixed worker pool. Workers
// hold private accumulators and hand them over once on completion; the
// single-threaded merge below is the only synchronization point, so the
// final matchMap is independent of scheduling order.
func searchParallel(a *automaton.Automaton, d enzyme.Digestion, corpus []string, threads int, progress func(int)) (matchMap, int, int) {
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	if threads > len(corpus) && len(corpus) > 0 {
		threads = len(corpus)
	}

	jobs := make(chan int, threads*2)
	results := make(chan *shardAccumulator, threads)

	for w := 0; w < threads; w++ {
		go func() {
			acc := newShardAccumulator()
			for i := range jobs {
				scanProtein(a, d, corpus[i], i, acc)
				if progress != nil {
					progress(1)
				}
			}
			results <- acc
		}()
	}

	for i := range corpus {
		jobs <- i
	}
	close(jobs)

	merged := make(map[int]map[occurrence]struct{})
	passed, rejected := 0, 0
	for w := 0; w < threads; w++ {
		acc := <-results
		passed += acc.passed
		rejected += acc.rejected
		for pep, set := range acc.hits {
			dst, ok := merged[pep]
			if !ok {
				merged[pep] = set
				continue
			}
			for o := range set {
				dst[o] = struct{}{}
			}
		}
	}

	mm := make(matchMap, len(merged))
	for pep, set := range merged {
		occs := make([]occurrence, 0, len(set))
		for o := range set {
			occs = append(occs, o)
		}
		sort.Slice(occs, func(i, j int) bool { return occs[i].less(occs[j]) })
		mm[pep] = occs
	}
	return mm, passed, rejected
}
