package incr

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"kymera/internal/trace"
)

// Revision counts input changes of one graph. Revision 0 means "never".
type Revision uint64

// Key identifies one memoized computation: a query name and its argument.
type Key struct {
	Query string
	Arg   uint32
}

func (k Key) String() string {
	return fmt.Sprintf("%s#%d", k.Query, k.Arg)
}

type dep struct {
	key   Key
	entry *entry
	stamp Revision // changedAt of the dependency when it was read
}

type entry struct {
	mu         sync.Mutex
	key        Key
	input      bool
	computed   bool
	value      any
	deps       []dep
	changedAt  Revision
	verifiedAt Revision
	runs       uint64
	compute    func(*Ctx, uint32) (any, error)
	equal      func(a, b any) bool
}

// Graph is a demand-driven memo table for one document. Inputs are set
// with SetInput; derived values are computed on demand by Get and reused
// while every dependency they read is unchanged.
//
// The entry table takes its RWMutex only for lookup and insertion. Each
// entry has its own mutex, so recomputing one entry never blocks reads of
// an unrelated one.
type Graph struct {
	name    string
	mu      sync.RWMutex
	entries map[Key]*entry
	rev     atomic.Uint64
	stats   counters
	tracer  trace.Tracer
}

// NewGraph creates an empty graph. name labels trace events.
func NewGraph(name string, tracer trace.Tracer) *Graph {
	if tracer == nil {
		tracer = trace.Nop
	}
	return &Graph{
		name:    name,
		entries: make(map[Key]*entry),
		tracer:  tracer,
	}
}

func (g *Graph) Name() string { return g.name }

// Revision returns the current revision.
func (g *Graph) Revision() Revision {
	return Revision(g.rev.Load())
}

// Len reports the number of cached entries, inputs included.
func (g *Graph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.entries)
}

// Forget drops every derived entry whose key matches drop and returns how
// many were removed. Inputs are kept. A computation that already holds a
// dropped entry as a dependency keeps using it; the next Get of that key
// starts from scratch.
func (g *Graph) Forget(drop func(Key) bool) int {
	g.mu.RLock()
	var stale []Key
	for k, e := range g.entries {
		if !e.input && drop(k) {
			stale = append(stale, k)
		}
	}
	g.mu.RUnlock()
	if len(stale) == 0 {
		return 0
	}

	g.mu.Lock()
	n := 0
	for _, k := range stale {
		if e := g.entries[k]; e != nil && !e.input {
			delete(g.entries, k)
			n++
		}
	}
	g.mu.Unlock()
	g.stats.forgotten.Add(uint64(n)) // #nosec G115 -- n is non-negative
	trace.Point(g.tracer, trace.ScopeQuery, "incr:forget", fmt.Sprintf("%d entries", n), trace.Where{URI: g.name, Revision: g.rev.Load()})
	return n
}

func (g *Graph) lookup(key Key) *entry {
	g.mu.RLock()
	e := g.entries[key]
	g.mu.RUnlock()
	return e
}

func (g *Graph) entryFor(key Key, init func(*entry)) *entry {
	if e := g.lookup(key); e != nil {
		return e
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if e := g.entries[key]; e != nil {
		return e
	}
	e := &entry{key: key}
	init(e)
	g.entries[key] = e
	return e
}

// SetInput stores an input value and advances the revision. When equal
// reports the new value equal to the stored one nothing changes and the
// current revision is returned.
func SetInput[T any](g *Graph, key Key, value T, equal func(a, b T) bool) Revision {
	e := g.entryFor(key, func(e *entry) { e.input = true })
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.input {
		panic(&InvariantError{Path: []Key{key}, Msg: "input key already used by a derived query"})
	}
	if e.computed && equal != nil && equal(e.value.(T), value) {
		return g.Revision()
	}
	// the revision moves under the entry lock, so a reader that saw the
	// new value also sees the new revision
	rev := Revision(g.rev.Add(1))
	e.value = value
	e.computed = true
	e.changedAt = rev
	e.verifiedAt = rev
	trace.Point(g.tracer, trace.ScopeQuery, "incr:input", "", trace.Where{URI: g.name, Revision: uint64(rev), Key: key.String()})
	return rev
}

// Snapshot binds a context to the current revision. Every Get through the
// returned Ctx fails with ErrCancelled once ctx is done or the graph moves
// past that revision.
func (g *Graph) Snapshot(ctx context.Context) *Ctx {
	return &Ctx{ctx: ctx, graph: g, rev: g.Revision()}
}

// Ctx is a query context bound to one revision. It also collects the
// dependencies of the computation it belongs to, so it must not be shared
// between goroutines.
type Ctx struct {
	ctx   context.Context
	graph *Graph
	rev   Revision
	frame *frame
	stack []Key
}

type frame struct {
	deps []dep
}

func (q *Ctx) Context() context.Context { return q.ctx }

func (q *Ctx) Revision() Revision { return q.rev }

func (q *Ctx) Graph() *Graph { return q.graph }

// Err reports whether the context can no longer produce results.
func (q *Ctx) Err() error {
	if err := q.ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrCancelled, err)
	}
	if q.graph.Revision() != q.rev {
		return fmt.Errorf("%w: revision %d superseded by %d", ErrCancelled, q.rev, q.graph.Revision())
	}
	return nil
}

func (q *Ctx) child(key Key) *Ctx {
	stack := make([]Key, len(q.stack), len(q.stack)+1)
	copy(stack, q.stack)
	return &Ctx{
		ctx:   q.ctx,
		graph: q.graph,
		rev:   q.rev,
		frame: &frame{},
		stack: append(stack, key),
	}
}

func (q *Ctx) checkCycle(key Key) {
	for i, k := range q.stack {
		if k == key {
			path := append(append([]Key(nil), q.stack[i:]...), key)
			panic(&InvariantError{Path: path, Msg: "dependency cycle"})
		}
	}
}

func (q *Ctx) record(e *entry, stamp Revision) {
	if q.frame != nil {
		q.frame.deps = append(q.frame.deps, dep{key: e.key, entry: e, stamp: stamp})
	}
}

// fetch brings e up to date for q's revision and returns its value and
// changedAt stamp. It holds e's lock while verifying or recomputing.
func (g *Graph) fetch(q *Ctx, e *entry) (any, Revision, error) {
	if err := q.Err(); err != nil {
		return nil, 0, err
	}
	q.checkCycle(e.key)

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.input {
		if !e.computed {
			return nil, 0, fmt.Errorf("%w: %s", ErrNoInput, e.key)
		}
		value, changed := e.value, e.changedAt
		if err := q.Err(); err != nil {
			return nil, 0, err
		}
		return value, changed, nil
	}

	if e.computed && e.verifiedAt == q.rev {
		g.stats.hits.Add(1)
		return e.value, e.changedAt, nil
	}

	if e.computed {
		valid, err := g.verify(q, e)
		if err != nil {
			return nil, 0, err
		}
		if valid {
			e.verifiedAt = q.rev
			g.stats.hits.Add(1)
			return e.value, e.changedAt, nil
		}
	} else {
		g.stats.misses.Add(1)
	}

	return g.recompute(q, e)
}

// verify reports whether every dependency of e still has the stamp it had
// when e was computed. Dependencies are brought up to date in recorded
// order; the walk stops at the first change.
func (g *Graph) verify(q *Ctx, e *entry) (bool, error) {
	inner := q.child(e.key)
	for _, d := range e.deps {
		_, changed, err := g.fetch(inner, d.entry)
		if err != nil {
			return false, err
		}
		if changed != d.stamp {
			return false, nil
		}
	}
	return true, nil
}

func (g *Graph) recompute(q *Ctx, e *entry) (any, Revision, error) {
	span := trace.BeginAt(g.tracer, trace.ScopeQuery, "incr:"+e.key.String(), trace.CurrentSpan(q.ctx).SpanID,
		trace.Where{URI: g.name, Revision: uint64(q.rev), Key: e.key.String()})
	inner := q.child(e.key)
	if span.ID() != 0 {
		// work done by compute nests under this recomputation
		inner.ctx = trace.WithTracer(span.Bind(inner.ctx), g.tracer)
	}
	value, err := e.compute(inner, e.key.Arg)
	if err == nil {
		err = q.Err()
	}
	if err != nil {
		span.End("cancelled")
		return nil, 0, err
	}
	g.stats.recomputes.Add(1)
	e.runs++

	detail := "changed"
	if e.computed && e.equal != nil && e.equal(e.value, value) {
		// early cutoff: dependents keep seeing the old stamp
		g.stats.cutoffs.Add(1)
		detail = "unchanged"
	} else {
		e.value = value
		e.changedAt = q.rev
	}
	e.computed = true
	e.deps = inner.frame.deps
	e.verifiedAt = q.rev
	span.WithExtra("deps", fmt.Sprint(len(e.deps))).End(detail)
	return e.value, e.changedAt, nil
}
