package query

import (
	"context"
	"fmt"
	"slices"

	"kymera/internal/diag"
	"kymera/internal/docstore"
	"kymera/internal/incr"
	"kymera/internal/source"
	"kymera/internal/symbols"
	"kymera/internal/trace"
)

// ErrCancelled is returned by every operation whose revision was superseded
// by an edit, or whose context ended, before it finished.
var ErrCancelled = incr.ErrCancelled

type Options struct {
	MaxDiagnostics int  // 0 is unlimited
	MaxCompletions int  // 0 is unlimited
	Keywords       bool // offer keywords after symbols in completion
}

// Engine answers editor queries against the documents of a store. Every
// operation is bound to the revision current when it starts.
type Engine struct {
	store *docstore.Store
	opts  Options
}

func NewEngine(store *docstore.Store, opts Options) *Engine {
	return &Engine{store: store, opts: opts}
}

func (e *Engine) Store() *docstore.Store { return e.store }

// Location is a span in a document with its resolved positions. Decl and
// DeclRange cover the whole declaration and are set only by Definition.
type Location struct {
	URI       string
	Span      source.Span
	Range     docstore.Range
	Decl      source.Span
	DeclRange docstore.Range
}

func location(snap *docstore.Snapshot, sp source.Span) Location {
	start, end := snap.File.Resolve(sp)
	return Location{URI: snap.URI, Span: sp, Range: docstore.Range{Start: start, End: end}}
}

// analysis is the resolved state of one snapshot.
type analysis struct {
	snap   *docstore.Snapshot
	parsed *Parsed
	res    symbols.Resolution
}

// begin acquires a snapshot of uri and traces the operation. The caller
// must call the returned done func.
func (e *Engine) begin(ctx context.Context, op, uri string) (*docstore.Snapshot, func(error), error) {
	span := trace.BeginAt(trace.FromContext(ctx), trace.ScopeQuery, "query:"+op, trace.CurrentSpan(ctx).SpanID,
		trace.Where{URI: uri})
	snap, err := e.store.Acquire(span.Bind(ctx), uri)
	if err != nil {
		span.End(err.Error())
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	done := func(err error) {
		snap.Release()
		if err != nil {
			span.End(err.Error())
			return
		}
		span.At(uint64(snap.Revision)).End("")
	}
	return snap, done, nil
}

func (e *Engine) analyze(snap *docstore.Snapshot) (*analysis, error) {
	parsed, err := incr.Get(snap.Q, Parse, 0)
	if err != nil {
		return nil, err
	}
	res, err := incr.Get(snap.Q, Symbols, 0)
	if err != nil {
		return nil, err
	}
	return &analysis{snap: snap, parsed: parsed, res: res}, nil
}

// offset maps pos into the snapshot, reporting false for positions past
// the last line.
func (a *analysis) offset(pos source.LineCol) (uint32, bool) {
	return a.snap.File.Offset(pos)
}

// Diagnostics returns syntax then semantic diagnostics of the latest
// revision, each group sorted, without duplicates.
func (e *Engine) Diagnostics(ctx context.Context, uri string) (_ []diag.Diagnostic, err error) {
	snap, done, err := e.begin(ctx, "diagnostics", uri)
	if err != nil {
		return nil, err
	}
	defer func() { done(err) }()

	ds, err := incr.Get(snap.Q, Diagnostics, 0)
	if err != nil {
		return nil, err
	}
	if e.opts.MaxDiagnostics > 0 && len(ds) > e.opts.MaxDiagnostics {
		ds = ds[:e.opts.MaxDiagnostics]
	}
	return slices.Clone(ds), nil
}

// Analysis is the complete result of one revision, for batch tools. Every
// field is immutable once published.
type Analysis struct {
	URI      string
	Version  int32
	Revision incr.Revision
	File     *source.File
	Parsed   *Parsed
	Table    *symbols.Table
	Diags    []diag.Diagnostic
	Stats    incr.Stats
}

// Analyze runs the whole pipeline for uri and returns its results.
func (e *Engine) Analyze(ctx context.Context, uri string) (_ *Analysis, err error) {
	snap, done, err := e.begin(ctx, "analyze", uri)
	if err != nil {
		return nil, err
	}
	defer func() { done(err) }()

	a, err := e.analyze(snap)
	if err != nil {
		return nil, err
	}
	ds, err := incr.Get(snap.Q, Diagnostics, 0)
	if err != nil {
		return nil, err
	}
	if e.opts.MaxDiagnostics > 0 && len(ds) > e.opts.MaxDiagnostics {
		ds = ds[:e.opts.MaxDiagnostics]
	}
	return &Analysis{
		URI:      snap.URI,
		Version:  snap.Version,
		Revision: snap.Revision,
		File:     snap.File,
		Parsed:   a.parsed,
		Table:    a.res.Table,
		Diags:    slices.Clone(ds),
		Stats:    snap.Q.Graph().Stats(),
	}, nil
}
