package incr

import "sync/atomic"

type counters struct {
	hits       atomic.Uint64
	misses     atomic.Uint64
	recomputes atomic.Uint64
	cutoffs    atomic.Uint64
	forgotten  atomic.Uint64
}

// Stats is a snapshot of a graph's cache counters.
type Stats struct {
	Hits       uint64 // values reused without running their query
	Misses     uint64 // first computations
	Recomputes uint64 // query function runs, first computations included
	Cutoffs    uint64 // recomputations whose value did not change
	Forgotten  uint64 // entries dropped by Forget
	Entries    int
	Revision   Revision
}

func (g *Graph) Stats() Stats {
	return Stats{
		Hits:       g.stats.hits.Load(),
		Misses:     g.stats.misses.Load(),
		Recomputes: g.stats.recomputes.Load(),
		Cutoffs:    g.stats.cutoffs.Load(),
		Forgotten:  g.stats.forgotten.Load(),
		Entries:    g.Len(),
		Revision:   g.Revision(),
	}
}

// Runs reports how many times the query function of key has run.
func (g *Graph) Runs(key Key) uint64 {
	e := g.lookup(key)
	if e == nil {
		return 0
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.runs
}
