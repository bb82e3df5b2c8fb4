// Package check analyzes many files in parallel on top of a document store
// and the query engine.
package check

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"kymera/internal/diag"
	"kymera/internal/docstore"
	"kymera/internal/observ"
	"kymera/internal/query"
	"kymera/internal/trace"
)

type Options struct {
	Jobs           int  // 0 uses GOMAXPROCS
	MaxDiagnostics int  // per file, 0 is unlimited
	Timings        bool // collect a phase report per file
	Outline        bool // also compute document symbols
	Progress       ProgressSink
	Heartbeat      time.Duration // emit trace heartbeats while running, 0 disables
}

// FileResult is the outcome for one path. Err is set when the file could
// not be loaded or analyzed; Bag is then empty.
type FileResult struct {
	Path     string
	URI      string
	Analysis *query.Analysis
	Outline  []query.Outline
	Bag      *diag.Bag
	Timing   *observ.Report
	Err      error
}

// Summary aggregates a run.
type Summary struct {
	Files    int
	Failed   int // files that could not be loaded or analyzed
	Errors   int
	Warnings int
}

func Summarize(results []FileResult) Summary {
	s := Summary{Files: len(results)}
	for i := range results {
		r := &results[i]
		if r.Err != nil {
			s.Failed++
			continue
		}
		if r.Bag == nil {
			continue
		}
		for _, d := range r.Bag.Items() {
			switch d.Severity {
			case diag.SevError:
				s.Errors++
			case diag.SevWarning:
				s.Warnings++
			}
		}
	}
	return s
}

func (s Summary) String() string {
	return fmt.Sprintf("%d files: %d errors, %d warnings, %d failed", s.Files, s.Errors, s.Warnings, s.Failed)
}

// Checker runs batch checks. Files stay open in the store between runs, so
// a second run over unchanged files reuses the cached analysis.
type Checker struct {
	eng   *query.Engine
	opts  Options
	loads singleflight.Group
	// loaded counts files actually read from disk
	loaded atomic.Int64
}

func New(eng *query.Engine, opts Options) *Checker {
	if opts.Progress == nil {
		opts.Progress = nopSink{}
	}
	return &Checker{eng: eng, opts: opts}
}

// Loaded reports how many files were read from disk so far.
func (c *Checker) Loaded() int64 { return c.loaded.Load() }

// Run checks paths concurrently. Results are in the order of paths. The
// error is non-nil only when ctx ends; per-file failures are reported in
// the results.
func (c *Checker) Run(ctx context.Context, paths []string) ([]FileResult, error) {
	results := make([]FileResult, len(paths))
	if len(paths) == 0 {
		return results, nil
	}
	tracer := trace.FromContext(ctx)
	span := trace.BeginIn(ctx, trace.ScopeEngine, "check")
	ctx = span.Bind(ctx)
	hb := trace.StartHeartbeat(tracer, c.opts.Heartbeat)
	defer hb.Stop()

	for _, p := range paths {
		c.opts.Progress.OnEvent(Event{File: p, Stage: StageLoad, Status: StatusQueued})
	}

	jobs := c.opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(paths)))
	for i, path := range paths {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				results[i] = FileResult{Path: path, URI: docstore.PathToURI(path), Err: gctx.Err()}
				return gctx.Err()
			default:
			}
			results[i] = c.checkFile(gctx, path)
			return nil
		})
	}
	err := g.Wait()
	sum := Summarize(results)
	span.WithExtra("files", fmt.Sprint(sum.Files)).End(sum.String())
	if err != nil {
		return results, err
	}
	c.opts.Progress.OnEvent(Event{Status: StatusDone})
	return results, nil
}

func (c *Checker) checkFile(ctx context.Context, path string) (res FileResult) {
	res = FileResult{Path: path, URI: docstore.PathToURI(path)}
	var timer *observ.Timer
	if c.opts.Timings {
		timer = observ.NewTimer()
		ctx = observ.WithTimer(ctx, timer)
		defer func() {
			report := timer.Report()
			res.Timing = &report
		}()
	}
	start := time.Now()
	fail := func(stage Stage, err error) FileResult {
		res.Err = err
		c.opts.Progress.OnEvent(Event{File: path, Stage: stage, Status: StatusError, Err: err, Elapsed: time.Since(start)})
		return res
	}

	c.opts.Progress.OnEvent(Event{File: path, Stage: StageLoad, Status: StatusWorking})
	stop := timer.Track("load")
	err := c.load(ctx, res.URI, path)
	stop()
	if err != nil {
		return fail(StageLoad, err)
	}

	c.opts.Progress.OnEvent(Event{File: path, Stage: StageAnalyze, Status: StatusWorking})
	a, err := c.eng.Analyze(ctx, res.URI)
	if err != nil {
		return fail(StageAnalyze, err)
	}
	res.Analysis = a
	res.Bag = diag.NewBag(c.opts.MaxDiagnostics)
	res.Bag.AddAll(a.Diags)

	if c.opts.Outline {
		c.opts.Progress.OnEvent(Event{File: path, Stage: StageOutline, Status: StatusWorking})
		if res.Outline, err = c.eng.DocumentSymbols(ctx, res.URI); err != nil {
			return fail(StageOutline, err)
		}
	}

	status := StatusDone
	if res.Bag.HasErrors() {
		status = StatusError
	}
	c.opts.Progress.OnEvent(Event{File: path, Stage: StageAnalyze, Status: status, Elapsed: time.Since(start)})
	return res
}

// load opens path in the store unless it is already open. Concurrent loads
// of the same uri share one read.
func (c *Checker) load(ctx context.Context, uri, path string) error {
	_, err, _ := c.loads.Do(uri, func() (any, error) {
		err := c.eng.Store().OpenFile(ctx, uri, path)
		if errors.Is(err, docstore.ErrAlreadyOpen) {
			return nil, nil
		}
		if err == nil {
			c.loaded.Add(1)
		}
		return nil, err
	})
	return err
}
