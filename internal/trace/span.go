package trace

import (
	"context"
	"sync/atomic"
	"time"
)

var (
	seq     atomic.Uint64
	spanIDs atomic.Uint64
)

// NextSeq returns the next global event sequence number.
func NextSeq() uint64 { return seq.Add(1) }

// Span is an open begin/end pair. Spans on a disabled tracer are inert and
// all their methods are safe to call.
type Span struct {
	tracer  Tracer
	id      uint64
	parent  uint64
	scope   Scope
	name    string
	where   Where
	started time.Time
	extra   map[string]string
}

var inert = &Span{tracer: Nop}

// Begin starts a root or child span with no document attached.
func Begin(t Tracer, scope Scope, name string, parent uint64) *Span {
	return BeginAt(t, scope, name, parent, Where{})
}

// BeginAt starts a span tied to where.
func BeginAt(t Tracer, scope Scope, name string, parent uint64, where Where) *Span {
	if t == nil || !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return inert
	}
	s := &Span{
		tracer:  t,
		id:      spanIDs.Add(1),
		parent:  parent,
		scope:   scope,
		name:    name,
		where:   where,
		started: time.Now(),
	}
	t.Emit(&Event{
		Time:     s.started,
		Kind:     KindSpanBegin,
		Scope:    scope,
		SpanID:   s.id,
		ParentID: parent,
		Name:     name,
		Where:    where,
	})
	return s
}

// BeginIn starts a span under the span bound to ctx, inheriting its
// document, revision and query key.
func BeginIn(ctx context.Context, scope Scope, name string) *Span {
	sc := CurrentSpan(ctx)
	return BeginAt(FromContext(ctx), scope, name, sc.SpanID, sc.Where)
}

// Bind returns ctx with s as the parent of spans begun through BeginIn.
// An inert span returns ctx unchanged.
func (s *Span) Bind(ctx context.Context) context.Context {
	if s == nil || s.id == 0 {
		return ctx
	}
	return WithSpanContext(ctx, SpanContext{SpanID: s.id, Where: s.where.merge(CurrentSpan(ctx).Where)})
}

// At records the revision the span's work produced or ran against; it is
// reported on the end event.
func (s *Span) At(rev uint64) *Span {
	if s != nil && s.id != 0 {
		s.where.Revision = rev
	}
	return s
}

// WithExtra adds a key-value pair to the end event.
func (s *Span) WithExtra(key, value string) *Span {
	if s == nil || s.id == 0 {
		return s
	}
	if s.extra == nil {
		s.extra = make(map[string]string)
	}
	s.extra[key] = value
	return s
}

// End emits the end event and returns the span's duration.
func (s *Span) End(detail string) time.Duration {
	if s == nil || s.id == 0 {
		return 0
	}
	elapsed := time.Since(s.started)
	s.tracer.Emit(&Event{
		Time:     time.Now(),
		Kind:     KindSpanEnd,
		Scope:    s.scope,
		SpanID:   s.id,
		ParentID: s.parent,
		Name:     s.name,
		Detail:   detail,
		Where:    s.where,
		Elapsed:  elapsed,
		Extra:    s.extra,
	})
	return elapsed
}

func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}

// Point emits an instant event.
func Point(t Tracer, scope Scope, name, detail string, where Where) {
	if t == nil || !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return
	}
	t.Emit(&Event{
		Time:   time.Now(),
		Kind:   KindPoint,
		Scope:  scope,
		Name:   name,
		Detail: detail,
		Where:  where,
	})
}
