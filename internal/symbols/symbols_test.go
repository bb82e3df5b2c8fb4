package symbols

import (
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"kymera/internal/diag"
	"kymera/internal/parser"
	"kymera/internal/source"
)

func TestMain(m *testing.M) {
	source.InitNames()
	code := m.Run()
	source.ShutdownNames()
	os.Exit(code)
}

func parseClean(t *testing.T, src string) parser.Result {
	t.Helper()
	res := parser.Parse(source.NewFile("test.ky", []byte(src), source.FileVirtual), parser.Options{})
	if len(res.Diags) != 0 {
		t.Fatalf("unexpected syntax diagnostics: %v", codes(res.Diags))
	}
	return res
}

func resolve(t *testing.T, src string) Resolution {
	t.Helper()
	res := ResolveFile(parseClean(t, src).AST)
	if err := res.Table.Validate(); err != nil {
		t.Fatalf("table invariants broken: %v", err)
	}
	return res
}

func codes(ds []diag.Diagnostic) []diag.Code {
	out := make([]diag.Code, 0, len(ds))
	for _, d := range ds {
		out = append(out, d.Code)
	}
	return out
}

// offset returns the byte offset of the n-th (0-based) occurrence of needle.
func offset(t *testing.T, src, needle string, n int) uint32 {
	t.Helper()
	base := 0
	for i := 0; ; i++ {
		idx := strings.Index(src[base:], needle)
		if idx < 0 {
			t.Fatalf("occurrence %d of %q not found", n, needle)
		}
		if i == n {
			return uint32(base + idx)
		}
		base += idx + len(needle)
	}
}

func symbolAt(t *testing.T, tab *Table, off uint32) *Symbol {
	t.Helper()
	id, ok := tab.SymbolAt(off)
	if !ok {
		t.Fatalf("no symbol at offset %d", off)
	}
	return tab.Symbols.Get(id)
}

func TestForwardReferenceToFunction(t *testing.T) {
	src := "fnc main() { add(1, 2); }\nfnc add(a, b) { ret a + b; }\n"
	res := resolve(t, src)
	if len(res.Diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", codes(res.Diags))
	}

	sym := symbolAt(t, res.Table, offset(t, src, "add", 0))
	if sym.Kind != SymbolFunction || source.Name(sym.Name) != "add" {
		t.Fatalf("got %s %q, want function add", sym.Kind, source.Name(sym.Name))
	}
	declAt := offset(t, src, "add", 1)
	if sym.Span != (source.Span{Start: declAt, End: declAt + 3}) {
		t.Fatalf("definition span = %s, want %d-%d", sym.Span, declAt, declAt+3)
	}
	if sym.Signature != "fnc add(a, b)" {
		t.Fatalf("signature = %q", sym.Signature)
	}

	a := symbolAt(t, res.Table, offset(t, src, "a +", 0))
	if a.Kind != SymbolParam || source.Name(a.Name) != "a" {
		t.Fatalf("got %s %q, want param a", a.Kind, source.Name(a.Name))
	}
}

func TestDuplicateDefinition(t *testing.T) {
	src := "fnc add() {}\nfnc add() {}\n"
	res := resolve(t, src)
	if diff := cmp.Diff([]diag.Code{diag.SemaDuplicateSymbol}, codes(res.Diags)); diff != "" {
		t.Fatalf("diagnostics mismatch (-want +got):\n%s", diff)
	}
	d := res.Diags[0]
	second := offset(t, src, "add", 1)
	if d.Primary.Start != second {
		t.Fatalf("duplicate reported at %s, want second declaration at %d", d.Primary, second)
	}
	if len(d.Notes) != 1 || d.Notes[0].Span.Start != offset(t, src, "add", 0) {
		t.Fatalf("expected a note at the first declaration, got %+v", d.Notes)
	}

	// references resolve to the first declaration
	src = "fnc add() {}\nfnc add() {}\nfnc main() { add(); }\n"
	res = resolve(t, src)
	sym := symbolAt(t, res.Table, offset(t, src, "add", 2))
	if sym.Span.Start != offset(t, src, "add", 0) {
		t.Fatalf("call resolved to %s, want the first add", sym.Span)
	}
}

func TestDuplicatesAcrossKindsAreAllowed(t *testing.T) {
	res := resolve(t, "des P { x: i32 }\nfnc P() {}\n")
	if len(res.Diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", codes(res.Diags))
	}
}

func TestShadowingAndSequentialLocals(t *testing.T) {
	src := "fnc f(x: i32) { djq x = 1; ret x; }\n"
	res := resolve(t, src)
	if len(res.Diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", codes(res.Diags))
	}
	sym := symbolAt(t, res.Table, offset(t, src, "x;", 0))
	if sym.Kind != SymbolVariable {
		t.Fatalf("ret x resolved to %s, want the shadowing local", sym.Kind)
	}

	res = resolve(t, "fnc f() { djq a = b; djq b = 1; }\n")
	if diff := cmp.Diff([]diag.Code{diag.SemaUnresolvedSymbol}, codes(res.Diags)); diff != "" {
		t.Fatalf("diagnostics mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(res.Diags[0].Message, "'b'") {
		t.Fatalf("message %q does not name b", res.Diags[0].Message)
	}

	// the initializer does not see its own binding
	res = resolve(t, "fnc f() { djq c = c; }\n")
	if diff := cmp.Diff([]diag.Code{diag.SemaUnresolvedSymbol}, codes(res.Diags)); diff != "" {
		t.Fatalf("diagnostics mismatch (-want +got):\n%s", diff)
	}
}

func TestSelfAndMembers(t *testing.T) {
	src := `des P { x: i32 }
imp P {
	fnc get() -> i32 { ret soy.x; }
	fnc twice() -> i32 { ret soy.get() * 2; }
	fnc bad() -> i32 { ret soy.y; }
}
fnc g() { soy; }
`
	res := resolve(t, src)
	want := []diag.Code{diag.SemaUnknownMember, diag.SemaSelfOutsideImpl}
	if diff := cmp.Diff(want, codes(res.Diags)); diff != "" {
		t.Fatalf("diagnostics mismatch (-want +got):\n%s", diff)
	}

	field := symbolAt(t, res.Table, offset(t, src, "x;", 0))
	if field.Kind != SymbolField || field.Span.Start != offset(t, src, "x", 0) {
		t.Fatalf("soy.x resolved to %s at %s", field.Kind, field.Span)
	}
	method := symbolAt(t, res.Table, offset(t, src, "get()", 1))
	if method.Kind != SymbolMethod || method.Signature != "fnc P::get() -> i32" {
		t.Fatalf("soy.get resolved to %s %q", method.Kind, method.Signature)
	}
}

func TestTypesAndPaths(t *testing.T) {
	src := `enum Color { Red, Green }
djq limit = 3;
fnc f(c: Color, n: limit) -> Shape { ret Color::Red; }
`
	res := resolve(t, src)
	want := []diag.Code{diag.SemaNotAType, diag.SemaUnresolvedType}
	if diff := cmp.Diff(want, codes(res.Diags)); diff != "" {
		t.Fatalf("diagnostics mismatch (-want +got):\n%s", diff)
	}

	variant := symbolAt(t, res.Table, offset(t, src, "Red", 1))
	if variant.Kind != SymbolVariant || variant.Signature != "Color::Red" {
		t.Fatalf("Color::Red resolved to %s %q", variant.Kind, variant.Signature)
	}
	enum := symbolAt(t, res.Table, offset(t, src, "Color", 1))
	if enum.Kind != SymbolEnum {
		t.Fatalf("param type resolved to %s, want enum", enum.Kind)
	}
}

func TestAssignToImmutable(t *testing.T) {
	src := `djq LIMIT = 1;
fnc f(muta a, b) {
	idit c = 0;
	djq d = 0;
	a = 1;
	b = 2;
	c += 1;
	d = 3;
	LIMIT = 4;
}
`
	res := resolve(t, src)
	var got []string
	for _, d := range res.Diags {
		if d.Code != diag.SemaAssignImmutable || d.Severity != diag.SevWarning {
			t.Fatalf("unexpected diagnostic %s: %s", d.Code.ID(), d.Message)
		}
		got = append(got, d.Message)
	}
	want := []string{
		"cannot assign to immutable binding 'b'",
		"cannot assign to immutable binding 'd'",
		"cannot assign to immutable binding 'LIMIT'",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("warnings mismatch (-want +got):\n%s", diff)
	}
}

func TestCallArity(t *testing.T) {
	src := `des P { x: i32 }
imp P {
	fnc get() -> i32 { ret soy.x; }
	fnc scale(k) -> i32 { ret soy.get(1) * k; }
}
fnc add(a, b) { ret a + b; }
fnc main(f) {
	add(1);
	add(1, 2);
	add(1, 2, 3);
	P::scale();
	P::scale(2);
	f(1, 2, 3);
}
`
	res := resolve(t, src)
	var got []string
	for _, d := range res.Diags {
		if d.Code != diag.SemaArityMismatch || d.Severity != diag.SevError {
			t.Fatalf("unexpected diagnostic %s: %s", d.Code.ID(), d.Message)
		}
		got = append(got, d.Message)
	}
	want := []string{
		"method 'P::get' expects 0 arguments but got 1",
		"function 'add' expects 2 arguments but got 1",
		"function 'add' expects 2 arguments but got 3",
		"method 'P::scale' expects 1 argument but got 0",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("arity errors mismatch (-want +got):\n%s", diff)
	}
	call := offset(t, src, "add(1);", 0)
	if sp := res.Diags[1].Primary; sp != (source.Span{Start: call, End: call + 6}) {
		t.Fatalf("arity error at %s, want the call at %d-%d", sp, call, call+6)
	}
}

func TestArityChangeChangesIndex(t *testing.T) {
	before := parseClean(t, "fnc add(a, b) { ret a + b; }\n").AST
	after := parseClean(t, "fnc add(a, b, c) { ret a + b; }\n").AST
	if BuildIndex(before).Equal(BuildIndex(after)) {
		t.Fatal("adding a parameter left the module index equal")
	}
	before = parseClean(t, "des P {}\nimp P { fnc m() {} }\n").AST
	after = parseClean(t, "des P {}\nimp P { fnc m(x) {} }\n").AST
	if BuildIndex(before).Equal(BuildIndex(after)) {
		t.Fatal("adding a method parameter left the module index equal")
	}
}

func TestLiteralAgainstAnnotation(t *testing.T) {
	src := `rudes serde;
des P { x: i32 }
djq LIMIT: i32 = "ten";
fnc f() -> strng {
	djq a: f64 = 1;
	djq b: optn i32 = nil;
	djq c: i32 = -2.5;
	djq d: P = 3;
	djq e: serde = 4;
	djq g: u8 = (7);
	djq h: [i32] = nil;
	djq k: i32 = a;
	ret 0;
}
fnc g() { ret 1; }
`
	res := resolve(t, src)
	var got []string
	for _, d := range res.Diags {
		if d.Code != diag.SemaTypeMismatch {
			t.Fatalf("unexpected diagnostic %s: %s", d.Code.ID(), d.Message)
		}
		got = append(got, d.Message)
	}
	want := []string{
		"mismatched types: expected i32, found string literal",
		"mismatched types: expected i32, found float literal",
		"mismatched types: expected P, found integer literal",
		"mismatched types: expected [i32], found nil",
		"mismatched types: expected strng, found integer literal",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("type errors mismatch (-want +got):\n%s", diff)
	}
	lit := offset(t, src, "-2.5", 0)
	if sp := res.Diags[1].Primary; sp != (source.Span{Start: lit, End: lit + 4}) {
		t.Fatalf("mismatch reported at %s, want the literal at %d-%d", sp, lit, lit+4)
	}
}

func TestVisibleAt(t *testing.T) {
	src := "djq g = 1;\nfnc f(p) { djq a = 1; djq b = 2; }\n"
	res := resolve(t, src)
	var got []string
	var depths []int
	for _, v := range res.Table.VisibleAt(offset(t, src, "djq b", 0)) {
		got = append(got, source.Name(res.Table.Symbols.Get(v.Symbol).Name))
		depths = append(depths, v.Depth)
	}
	if diff := cmp.Diff([]string{"a", "p", "f", "g"}, got); diff != "" {
		t.Fatalf("visible names mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{0, 1, 2, 2}, depths); diff != "" {
		t.Fatalf("depths mismatch (-want +got):\n%s", diff)
	}
}

func TestDeclResultIsPositionIndependent(t *testing.T) {
	body := "fnc b(y: i32) { djq z = y; ret z + LIMIT; }\n"
	before := parseClean(t, "djq LIMIT = 1;\nfnc a() {}\n"+body).AST
	after := parseClean(t, "djq LIMIT = 1;\nfnc a() { djq pad = 10; prnt(pad); }\n"+body).AST

	got := ResolveDecl(after, BuildIndex(after), 2)
	want := ResolveDecl(before, BuildIndex(before), 2)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("moved declaration resolved differently (-want +got):\n%s", diff)
	}
	if !BuildIndex(before).Equal(BuildIndex(after)) {
		t.Fatal("body edit changed the module index")
	}
}

func TestValidateReportsBrokenTree(t *testing.T) {
	res := resolve(t, "fnc f() { djq a = 1; ret a; }\n")
	tab := res.Table
	tab.Scopes.data[2].Parent = 2
	tab.Refs = append(tab.Refs, Ref{Span: source.Span{Start: 0, End: 1}, Symbol: SymbolID(99)})
	err := tab.Validate()
	if err == nil {
		t.Fatal("expected invariant violations")
	}
	for _, want := range []string{"invalid parent", "missing symbol 99", "out of order"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err, want)
		}
	}
}
