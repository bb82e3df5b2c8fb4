// Package trace records what the analysis engine did and for which
// document revision.
//
// Every event carries a Where: the document uri, the graph revision the
// work was bound to and, for recomputations, the incremental query key.
// The incr graph opens an "incr:<key>" span around each recomputation and
// binds it into the context handed to the query, so spans begun with
// BeginIn (parse, resolve-decl, assemble) nest under the recomputation that
// caused them and inherit its Where. A trace of one edit therefore lists
// exactly the keys it invalidated.
//
//	kymera diag --trace=- --trace-level=detail main.ky
//
// Sinks: StreamTracer (text or NDJSON as events happen), RingTracer (the
// last N events, dumped on exit or filtered per document) and Fanout over
// several. Nop is used when tracing is off.
//
// Levels pick scopes: phase emits engine and document spans, detail adds
// recomputations and editor queries, debug adds per-declaration work.
package trace
