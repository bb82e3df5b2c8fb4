package docstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"kymera/internal/incr"
	"kymera/internal/source"
	"kymera/internal/trace"
)

// Text is the input slot holding a document's current text. It is the only
// input of a document graph; every derived artifact depends on it.
var Text = &incr.Input[*source.File]{Name: "text"}

// Options configures a Store.
type Options struct {
	MaxDocuments   int           // 0 means unlimited
	RequestTimeout time.Duration // deadline applied to every Acquire; 0 disables it
	Tracer         trace.Tracer
}

// Store owns the open documents. Its lock guards only the uri map; each
// document serializes its own edits.
type Store struct {
	mu   sync.RWMutex
	docs map[string]*document
	opts Options
}

type document struct {
	uri   string
	gate  sync.Mutex // one edit at a time
	mu    sync.RWMutex
	file  *source.File
	ver   int32
	graph *incr.Graph

	qmu     sync.Mutex
	nextQ   uint64
	queries map[uint64]inflight
}

type inflight struct {
	rev    incr.Revision
	cancel context.CancelFunc
}

func New(opts Options) *Store {
	if opts.Tracer == nil {
		opts.Tracer = trace.Nop
	}
	return &Store{docs: make(map[string]*document), opts: opts}
}

// Open registers a document with its initial text.
func (s *Store) Open(ctx context.Context, uri, text string, version int32) error {
	uri = canonicalURI(uri)
	return s.open(ctx, uri, source.NewFile(uri, []byte(text), source.FileVirtual), version)
}

// OpenFile registers a document read from path.
func (s *Store) OpenFile(ctx context.Context, uri, path string) error {
	file, err := source.LoadFile(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", uri, err)
	}
	return s.open(ctx, canonicalURI(uri), file, 0)
}

func (s *Store) open(ctx context.Context, uri string, file *source.File, version int32) error {
	span := trace.BeginAt(trace.FromContext(ctx), trace.ScopeEngine, "docstore:open", trace.CurrentSpan(ctx).SpanID,
		trace.Where{URI: uri})
	defer span.End("")

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[uri]; ok {
		return fmt.Errorf("%s: %w", uri, ErrAlreadyOpen)
	}
	if s.opts.MaxDocuments > 0 && len(s.docs) >= s.opts.MaxDocuments {
		return fmt.Errorf("%s: limit %d: %w", uri, s.opts.MaxDocuments, ErrTooManyDocuments)
	}
	d := &document{
		uri:     uri,
		file:    file,
		ver:     version,
		graph:   incr.NewGraph(uri, s.opts.Tracer),
		queries: make(map[uint64]inflight),
	}
	Text.Set(d.graph, 0, file)
	s.docs[uri] = d
	return nil
}

// Change applies edits in order and publishes one new revision. version
// must be greater than the document's current editor version.
func (s *Store) Change(ctx context.Context, uri string, edits []Edit, version int32) (incr.Revision, error) {
	uri = canonicalURI(uri)
	d, err := s.lookup(uri)
	if err != nil {
		return 0, err
	}
	span := trace.BeginAt(trace.FromContext(ctx), trace.ScopeEngine, "docstore:change", trace.CurrentSpan(ctx).SpanID,
		trace.Where{URI: uri})
	defer span.End(fmt.Sprintf("%d edits", len(edits)))

	d.gate.Lock()
	defer d.gate.Unlock()

	d.mu.RLock()
	cur, curVer := d.file, d.ver
	d.mu.RUnlock()
	if version <= curVer {
		return 0, fmt.Errorf("%s: version %d after %d: %w", uri, version, curVer, ErrStaleVersion)
	}
	next, err := applyEdits(uri, cur, edits)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", uri, err)
	}

	d.mu.Lock()
	rev := Text.Set(d.graph, 0, next)
	d.file, d.ver = next, version
	d.mu.Unlock()

	d.cancelBefore(rev)
	span.At(uint64(rev))
	return rev, nil
}

// Close drops a document together with its graph and cancels its queries.
func (s *Store) Close(uri string) error {
	uri = canonicalURI(uri)
	s.mu.Lock()
	d, ok := s.docs[uri]
	delete(s.docs, uri)
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%s: %w", uri, ErrNotOpen)
	}
	d.cancelBefore(^incr.Revision(0))
	return nil
}

// URIs lists the open documents in sorted order.
func (s *Store) URIs() []string {
	s.mu.RLock()
	out := make([]string, 0, len(s.docs))
	for uri := range s.docs {
		out = append(out, uri)
	}
	s.mu.RUnlock()
	sort.Strings(out)
	return out
}

func (s *Store) lookup(uri string) (*document, error) {
	s.mu.RLock()
	d, ok := s.docs[uri]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%s: %w", uri, ErrNotOpen)
	}
	return d, nil
}

// Snapshot is a consistent view of one document revision. Q runs graph
// queries bound to that revision.
type Snapshot struct {
	URI      string
	Version  int32
	Revision incr.Revision
	File     *source.File
	Q        *incr.Ctx

	release func()
}

// Release ends the snapshot's registration. It is safe to call twice.
func (s *Snapshot) Release() {
	if s.release != nil {
		s.release()
		s.release = nil
	}
}

// Acquire binds a query to the document's current revision. The returned
// snapshot's context is cancelled when an edit supersedes that revision,
// when the document closes or when the request timeout expires. Callers
// must Release it.
func (s *Store) Acquire(ctx context.Context, uri string) (*Snapshot, error) {
	uri = canonicalURI(uri)
	d, err := s.lookup(uri)
	if err != nil {
		return nil, err
	}
	var cancel context.CancelFunc
	if s.opts.RequestTimeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, s.opts.RequestTimeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}

	d.mu.RLock()
	snap := &Snapshot{URI: uri, Version: d.ver, File: d.file, Q: d.graph.Snapshot(ctx)}
	d.mu.RUnlock()
	snap.Revision = snap.Q.Revision()

	id := d.register(snap.Revision, cancel)
	snap.release = func() {
		d.unregister(id)
		cancel()
	}
	return snap, nil
}

// Graph exposes the document's graph for statistics.
func (s *Store) Graph(uri string) (*incr.Graph, error) {
	d, err := s.lookup(canonicalURI(uri))
	if err != nil {
		return nil, err
	}
	return d.graph, nil
}

func (d *document) register(rev incr.Revision, cancel context.CancelFunc) uint64 {
	d.qmu.Lock()
	defer d.qmu.Unlock()
	d.nextQ++
	d.queries[d.nextQ] = inflight{rev: rev, cancel: cancel}
	return d.nextQ
}

func (d *document) unregister(id uint64) {
	d.qmu.Lock()
	delete(d.queries, id)
	d.qmu.Unlock()
}

// cancelBefore cancels every in-flight query bound to a revision older
// than rev. It never waits for them.
func (d *document) cancelBefore(rev incr.Revision) {
	d.qmu.Lock()
	defer d.qmu.Unlock()
	for id, q := range d.queries {
		if q.rev < rev {
			q.cancel()
			delete(d.queries, id)
		}
	}
}
