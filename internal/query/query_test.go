package query

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"kymera/internal/diag"
	"kymera/internal/docstore"
	"kymera/internal/incr"
	"kymera/internal/parser"
	"kymera/internal/source"
	"kymera/internal/symbols"
)

const testURI = "file:///work/main.ky"

func TestMain(m *testing.M) {
	source.InitNames()
	code := m.Run()
	source.ShutdownNames()
	os.Exit(code)
}

func openEngine(t *testing.T, src string, opts Options) *Engine {
	t.Helper()
	s := docstore.New(docstore.Options{})
	if err := s.Open(context.Background(), testURI, src, 1); err != nil {
		t.Fatalf("Open: %v", err)
	}
	return NewEngine(s, opts)
}

func change(t *testing.T, e *Engine, version int32, edits ...docstore.Edit) {
	t.Helper()
	if _, err := e.Store().Change(context.Background(), testURI, edits, version); err != nil {
		t.Fatalf("Change: %v", err)
	}
}

func replace(line, startCol, endCol uint32, text string) docstore.Edit {
	return docstore.Edit{
		Range: &docstore.Range{
			Start: source.LineCol{Line: line, Col: startCol},
			End:   source.LineCol{Line: line, Col: endCol},
		},
		Text: text,
	}
}

func pos(line, col uint32) source.LineCol { return source.LineCol{Line: line, Col: col} }

func labels(cs []Completion) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.Label)
	}
	return out
}

func TestDefinitionAtCallSite(t *testing.T) {
	e := openEngine(t, "fnc add(a, b) { ret a + b; }\nfnc main() { add(1, 2); }\n", Options{})
	loc, err := e.Definition(context.Background(), testURI, pos(2, 14))
	if err != nil {
		t.Fatalf("Definition: %v", err)
	}
	if loc == nil {
		t.Fatal("no definition found")
	}
	if loc.Span != (source.Span{Start: 4, End: 7}) {
		t.Fatalf("span = %s, want 4-7", loc.Span)
	}
	if loc.Range.Start != pos(1, 5) || loc.URI != testURI {
		t.Fatalf("location = %+v", loc)
	}
	// the declaration covers the whole function
	if loc.Decl != (source.Span{Start: 0, End: 28}) {
		t.Fatalf("decl span = %s, want 0-28", loc.Decl)
	}
	if loc.DeclRange != (docstore.Range{Start: pos(1, 1), End: pos(1, 29)}) {
		t.Fatalf("decl range = %+v", loc.DeclRange)
	}

	// whitespace has no definition
	loc, err = e.Definition(context.Background(), testURI, pos(2, 13))
	if err != nil || loc != nil {
		t.Fatalf("Definition on whitespace = %+v, %v", loc, err)
	}
	// neither has a line past the end
	loc, err = e.Definition(context.Background(), testURI, pos(40, 1))
	if err != nil || loc != nil {
		t.Fatalf("Definition past the end = %+v, %v", loc, err)
	}
}

func TestUnmatchedBraceKeepsCompletion(t *testing.T) {
	src := "fnc add(a, b) { ret a + b; }\nfnc main() {\n\tdjq x = add(1, 2);\n"
	e := openEngine(t, src, Options{})
	ds, err := e.Diagnostics(context.Background(), testURI)
	if err != nil {
		t.Fatalf("Diagnostics: %v", err)
	}
	if len(ds) != 1 || ds[0].Code != diag.SynUnclosedBrace {
		t.Fatalf("diagnostics = %+v, want one unclosed brace", ds)
	}

	cs, err := e.Complete(context.Background(), testURI, pos(4, 1))
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if diff := cmp.Diff([]string{"x", "add", "main"}, labels(cs)); diff != "" {
		t.Fatalf("completion mismatch (-want +got):\n%s", diff)
	}
	if cs[1].Detail != "fnc add(a, b)" || cs[1].Kind != "function" {
		t.Fatalf("add candidate = %+v", cs[1])
	}
}

func TestDuplicateFunctionDiagnostic(t *testing.T) {
	src := "fnc add() {}\nfnc add() {}\n"
	e := openEngine(t, src, Options{})
	ds, err := e.Diagnostics(context.Background(), testURI)
	if err != nil {
		t.Fatalf("Diagnostics: %v", err)
	}
	if len(ds) != 1 || ds[0].Code != diag.SemaDuplicateSymbol {
		t.Fatalf("diagnostics = %+v, want one duplicate", ds)
	}
	if ds[0].Primary.Start != uint32(strings.LastIndex(src, "add")) {
		t.Fatalf("reported at %s, want the second add", ds[0].Primary)
	}
}

func TestCompletionRanking(t *testing.T) {
	src := "djq Total = 1;\nfnc f(tally) {\n\tdjq tx = tally;\n\tret t;\n}\n"
	e := openEngine(t, src, Options{})
	cs, err := e.Complete(context.Background(), testURI, pos(4, 7))
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if diff := cmp.Diff([]string{"tx", "tally", "Total"}, labels(cs)); diff != "" {
		t.Fatalf("completion mismatch (-want +got):\n%s", diff)
	}

	limited := NewEngine(e.Store(), Options{MaxCompletions: 2})
	cs, err = limited.Complete(context.Background(), testURI, pos(4, 7))
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if len(cs) != 2 {
		t.Fatalf("got %d candidates, want the limit of 2", len(cs))
	}
}

func TestCompletionKeywordsAndSelf(t *testing.T) {
	e := openEngine(t, "fnc f(rest) { re }\n", Options{Keywords: true})
	cs, err := e.Complete(context.Background(), testURI, pos(1, 17))
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if diff := cmp.Diff([]string{"rest", "ret", "rev"}, labels(cs)); diff != "" {
		t.Fatalf("completion mismatch (-want +got):\n%s", diff)
	}
	if cs[1].Kind != "keyword" {
		t.Fatalf("ret kind = %q", cs[1].Kind)
	}

	// the binding being named is not offered
	e = openEngine(t, "fnc f(alpha) { djq al = 1; }\n", Options{})
	cs, err = e.Complete(context.Background(), testURI, pos(1, 22))
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if diff := cmp.Diff([]string{"alpha"}, labels(cs)); diff != "" {
		t.Fatalf("completion mismatch (-want +got):\n%s", diff)
	}
}

func TestHoverShowsSignatureAndDoc(t *testing.T) {
	src := "/// Adds two numbers.\nfnc add(a: i32, b: i32) -> i32 { ret a + b; }\nfnc main() { add(1, 2); }\n"
	e := openEngine(t, src, Options{})
	h, err := e.Hover(context.Background(), testURI, pos(3, 15))
	if err != nil {
		t.Fatalf("Hover: %v", err)
	}
	if h == nil {
		t.Fatal("no hover")
	}
	want := Hover{
		Name:      "add",
		Kind:      symbols.SymbolFunction,
		Signature: "fnc add(a: i32, b: i32) -> i32",
		Doc:       "Adds two numbers.",
	}
	got := Hover{Name: h.Name, Kind: h.Kind, Signature: h.Signature, Doc: h.Doc}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("hover mismatch (-want +got):\n%s", diff)
	}
	if h.Range.Start != pos(3, 14) {
		t.Fatalf("hover range starts at %+v, want the call site", h.Range.Start)
	}
}

func TestReferencesInSourceOrder(t *testing.T) {
	src := "fnc add(a, b) { ret a + b; }\nfnc main() { add(1, 2); add(3, 4); }\n"
	e := openEngine(t, src, Options{})
	want := []uint32{4, uint32(strings.Index(src, "add(1")), uint32(strings.Index(src, "add(3"))}
	for _, at := range []source.LineCol{pos(1, 5), pos(2, 26)} {
		locs, err := e.References(context.Background(), testURI, at)
		if err != nil {
			t.Fatalf("References: %v", err)
		}
		var got []uint32
		for _, l := range locs {
			got = append(got, l.Span.Start)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("references from %+v mismatch (-want +got):\n%s", at, diff)
		}
	}
}

func TestDocumentSymbols(t *testing.T) {
	src := "des P { x: i32 }\nimp P { fnc get() -> i32 { ret soy.x; } }\nenum C { A }\n"
	e := openEngine(t, src, Options{})
	out, err := e.DocumentSymbols(context.Background(), testURI)
	if err != nil {
		t.Fatalf("DocumentSymbols: %v", err)
	}
	type flat struct{ Name, Kind, Signature string }
	var got []flat
	var walk func([]Outline)
	walk = func(nodes []Outline) {
		for _, o := range nodes {
			got = append(got, flat{o.Name, o.Kind, o.Signature})
			walk(o.Children)
		}
	}
	walk(out)
	want := []flat{
		{"P", "struct", "des P"},
		{"x", "field", "x: i32"},
		{"P", "impl", "imp P"},
		{"get", "method", "fnc P::get() -> i32"},
		{"C", "enum", "enum C"},
		{"A", "variant", "C::A"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("outline mismatch (-want +got):\n%s", diff)
	}
}

func TestBodyEditReusesOtherDeclarations(t *testing.T) {
	src := "fnc a() { ret 1; }\nfnc b() { ret 2; }\nfnc c() { ret a(); }\n"
	e := openEngine(t, src, Options{})
	ctx := context.Background()
	if _, err := e.Diagnostics(ctx, testURI); err != nil {
		t.Fatalf("Diagnostics: %v", err)
	}
	g, err := e.Store().Graph(testURI)
	if err != nil {
		t.Fatal(err)
	}
	runs := func() []uint64 {
		return []uint64{
			g.Runs(ResolveDecl.Key(0)),
			g.Runs(ResolveDecl.Key(1)),
			g.Runs(ResolveDecl.Key(2)),
		}
	}
	if diff := cmp.Diff([]uint64{1, 1, 1}, runs()); diff != "" {
		t.Fatalf("initial runs mismatch (-want +got):\n%s", diff)
	}

	// grow the body of b, which also moves c
	change(t, e, 2, replace(2, 15, 16, "20 + 22"))
	ds, err := e.Diagnostics(ctx, testURI)
	if err != nil {
		t.Fatalf("Diagnostics: %v", err)
	}
	if len(ds) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", ds)
	}
	if diff := cmp.Diff([]uint64{1, 2, 1}, runs()); diff != "" {
		t.Fatalf("runs after body edit mismatch (-want +got):\n%s", diff)
	}

	// the reused declaration still resolves at its new position
	loc, err := e.Definition(ctx, testURI, pos(3, 15))
	if err != nil || loc == nil || loc.Span.Start != 4 {
		t.Fatalf("Definition after edit = %+v, %v", loc, err)
	}

	// no edit, no work
	before := g.Stats().Recomputes
	if _, err := e.Diagnostics(ctx, testURI); err != nil {
		t.Fatal(err)
	}
	if after := g.Stats().Recomputes; after != before {
		t.Fatalf("repeated query recomputed %d entries", after-before)
	}
}

func TestShrinkingDocumentForgetsRemovedDeclarations(t *testing.T) {
	src := "fnc a() { ret 1; }\nfnc b() { ret 2; }\nfnc c() { ret 3; }\nfnc d() { ret a(); }\n"
	e := openEngine(t, src, Options{})
	ctx := context.Background()
	if _, err := e.Diagnostics(ctx, testURI); err != nil {
		t.Fatalf("Diagnostics: %v", err)
	}
	g, err := e.Store().Graph(testURI)
	if err != nil {
		t.Fatal(err)
	}
	before := g.Len()

	change(t, e, 2, docstore.Edit{Text: "fnc a() { ret 1; }\n"})
	if _, err := e.Diagnostics(ctx, testURI); err != nil {
		t.Fatalf("Diagnostics: %v", err)
	}
	if got := before - g.Len(); got != 6 {
		t.Fatalf("cache shrank by %d entries, want 6", got)
	}
	for i := uint32(1); i < 4; i++ {
		if g.Runs(ResolveDecl.Key(i)) != 0 || g.Runs(DeclFingerprint.Key(i)) != 0 {
			t.Fatalf("declaration %d is still cached", i)
		}
	}
	if g.Runs(ResolveDecl.Key(0)) == 0 {
		t.Fatal("the surviving declaration was forgotten")
	}
}

func TestIncrementalMatchesFullResolution(t *testing.T) {
	e := openEngine(t, "/// first\nfnc a(x) { ret x; }\nfnc b() { ret a(1); }\n", Options{})
	steps := []docstore.Edit{
		replace(3, 5, 6, "beta"),
		{Range: &docstore.Range{Start: pos(1, 1), End: pos(1, 1)}, Text: "des P { v: i32 }\n"},
		replace(3, 12, 18, "djq y = x; ret y;"),
		replace(4, 1, 25, "imp P { fnc get() -> i32 { ret soy.v; } }"),
		replace(3, 20, 20, " {"),
		{Text: "enum C { A, B }\nfnc f(c: C) { ret C::A; }\nfnc f() {}\n"},
	}
	ctx := context.Background()
	for i, edit := range steps {
		change(t, e, int32(i+2), edit) // #nosec G115 -- small test loop
		a, err := e.Analyze(ctx, testURI)
		if err != nil {
			t.Fatalf("step %d: Analyze: %v", i, err)
		}
		full := symbols.ResolveFile(parser.Parse(a.File, parser.Options{}).AST)
		opts := cmp.AllowUnexported(symbols.Scopes{}, symbols.Symbols{})
		if diff := cmp.Diff(full.Table, a.Table, opts); diff != "" {
			t.Fatalf("step %d: incremental table differs (-full +incremental):\n%s", i, diff)
		}
	}
}

func TestQueriesAreCancelledByEdits(t *testing.T) {
	e := openEngine(t, "fnc a() { ret 1; }\n", Options{})
	ctx := context.Background()
	snap, err := e.Store().Acquire(ctx, testURI)
	if err != nil {
		t.Fatal(err)
	}
	defer snap.Release()

	change(t, e, 2, replace(1, 15, 16, "2"))
	if _, err := incr.Get(snap.Q, Symbols, 0); !errors.Is(err, ErrCancelled) {
		t.Fatalf("stale query returned %v, want ErrCancelled", err)
	}
	if snap.Q.Context().Err() == nil {
		t.Fatal("edit did not cancel the stale snapshot's context")
	}

	// the current revision still answers
	if _, err := e.Diagnostics(ctx, testURI); err != nil {
		t.Fatalf("Diagnostics: %v", err)
	}

	done, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := e.Hover(done, testURI, pos(1, 5)); !errors.Is(err, ErrCancelled) {
		t.Fatalf("Hover with a cancelled context returned %v", err)
	}
	if _, err := e.Hover(ctx, "file:///missing.ky", pos(1, 1)); !errors.Is(err, docstore.ErrNotOpen) {
		t.Fatalf("Hover on unknown document returned %v", err)
	}
}

func TestDiagnosticsLimit(t *testing.T) {
	src := "fnc f() { ret a + b + c; }\n"
	e := NewEngine(openEngine(t, src, Options{}).Store(), Options{MaxDiagnostics: 2})
	ds, err := e.Diagnostics(context.Background(), testURI)
	if err != nil {
		t.Fatalf("Diagnostics: %v", err)
	}
	if len(ds) != 2 || ds[0].Code != diag.SemaUnresolvedSymbol {
		t.Fatalf("diagnostics = %+v, want the first two unresolved names", ds)
	}
}
