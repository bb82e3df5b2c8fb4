package parser

import (
	"os"
	"reflect"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"kymera/internal/ast"
	"kymera/internal/diag"
	"kymera/internal/source"
	"kymera/internal/token"
)

func TestMain(m *testing.M) {
	source.InitNames()
	code := m.Run()
	source.ShutdownNames()
	os.Exit(code)
}

func parseSource(t *testing.T, src string) Result {
	t.Helper()
	return Parse(source.NewFile("test.ky", []byte(src), source.FileVirtual), Options{})
}

func diagnosticsSummary(ds []diag.Diagnostic) string {
	if len(ds) == 0 {
		return "<none>"
	}
	out := ""
	for i, d := range ds {
		if i > 0 {
			out += "; "
		}
		out += "[" + d.Code.ID() + "] " + d.Message
	}
	return out
}

func itemKinds(res Result) []ast.ItemKind {
	out := make([]ast.ItemKind, 0, len(res.AST.File.Items))
	for _, id := range res.AST.File.Items {
		out = append(out, res.AST.Items.Get(id).Kind)
	}
	return out
}

func TestParseItems(t *testing.T) {
	src := `pydes std::io as sio;
rudes serde;

/// A point.
des Point { x: i32, y: optn [f64] }
forma Empty {}
enum Color { Red, Green, }
ifz Shape { fnc area() -> f64; }
imp Point {
	fnc len() -> f64 { ret soy.x as f64; }
}
djq LIMIT: i32 = 10;
fnc add(a: i32, muta b) -> i32 { ret a + b; }
`
	res := parseSource(t, src)
	if len(res.Diags) != 0 {
		t.Fatalf("unexpected diagnostics: %s", diagnosticsSummary(res.Diags))
	}
	want := []ast.ItemKind{
		ast.ItemImport, ast.ItemImport, ast.ItemStruct, ast.ItemStruct, ast.ItemEnum,
		ast.ItemInterface, ast.ItemImpl, ast.ItemLet, ast.ItemFn,
	}
	if diff := cmp.Diff(want, itemKinds(res)); diff != "" {
		t.Fatalf("item kinds mismatch (-want +got):\n%s", diff)
	}

	items := res.AST.Items
	imp := items.Get(res.AST.File.Items[0])
	if source.Name(imp.Name) != "sio" {
		t.Fatalf("import name = %q, want alias sio", source.Name(imp.Name))
	}
	if data, _ := items.Import(res.AST.File.Items[0]); len(data.Path) != 2 || data.Rust {
		t.Fatalf("import path = %v", data.Path)
	}
	if data, _ := items.Import(res.AST.File.Items[1]); !data.Rust {
		t.Fatal("rudes import must be marked Rust")
	}

	point := items.Get(res.AST.File.Items[2])
	if point.Doc != "A point." {
		t.Fatalf("doc = %q", point.Doc)
	}
	st, _ := items.Struct(res.AST.File.Items[2])
	if len(st.Fields) != 2 || res.AST.Types.Format(st.Fields[1].Type) != "optn [f64]" {
		t.Fatalf("fields = %+v", st.Fields)
	}
	if st, _ := items.Struct(res.AST.File.Items[3]); !st.Forma || len(st.Fields) != 0 {
		t.Fatal("forma struct not parsed")
	}
	if en, _ := items.Enum(res.AST.File.Items[4]); len(en.Variants) != 2 {
		t.Fatalf("variants = %d, want 2 (trailing comma)", len(en.Variants))
	}
	ifz, _ := items.Interface(res.AST.File.Items[5])
	if sig, _ := items.Fn(ifz.Methods[0]); sig.Body.IsValid() {
		t.Fatal("interface signature must have no body")
	}
	impl, _ := items.Impl(res.AST.File.Items[6])
	if len(impl.Methods) != 1 || source.Name(items.Get(res.AST.File.Items[6]).Name) != "Point" {
		t.Fatal("impl block not parsed")
	}
	fn, _ := items.Fn(res.AST.File.Items[8])
	if len(fn.Params) != 2 || !fn.Params[1].Mutable || fn.Params[1].Type.IsValid() {
		t.Fatalf("params = %+v", fn.Params)
	}
}

func TestExpressionPrecedence(t *testing.T) {
	res := parseSource(t, "fnc f() { a = b = 1 + 2 * -3 == 4 && ok; }")
	if len(res.Diags) != 0 {
		t.Fatalf("unexpected diagnostics: %s", diagnosticsSummary(res.Diags))
	}
	exprs := res.AST.Exprs
	fn, _ := res.AST.Items.Fn(res.AST.File.Items[0])
	block, _ := res.AST.Stmts.Block(fn.Body)
	es, _ := res.AST.Stmts.Expr(block.Stmts[0])

	outer, ok := exprs.Assign(es.Expr)
	if !ok {
		t.Fatal("top expression is not an assignment")
	}
	inner, ok := exprs.Assign(outer.Value)
	if !ok {
		t.Fatal("assignment must be right associative")
	}
	and, ok := exprs.Binary(inner.Value)
	if !ok || and.Op != token.AndAnd {
		t.Fatalf("expected && at the top of the value")
	}
	eq, _ := exprs.Binary(and.Left)
	if eq.Op != token.EqEq {
		t.Fatalf("expected == under &&, got %v", eq.Op)
	}
	sum, _ := exprs.Binary(eq.Left)
	if sum.Op != token.Plus {
		t.Fatalf("expected + under ==, got %v", sum.Op)
	}
	mul, _ := exprs.Binary(sum.Right)
	if mul.Op != token.Star {
		t.Fatalf("expected * on the right of +, got %v", mul.Op)
	}
	if _, ok := exprs.Unary(mul.Right); !ok {
		t.Fatal("expected unary minus operand")
	}
}

func TestStatements(t *testing.T) {
	src := `fnc f(xs) {
	idit muta n: i32 = 0;
	spa x : xs { n += x; }
	wyo n > 0 { n -= 1; }
	ate n == 0 { prnt("zero"); } rev ate n < 0 { prnt("neg", n); } rev { ret; }
	mth n {
		0 => show("a"),
		_ => { ret n; }
	}
	djq c = Color::Red;
	djq v = [1, 2][0];
	obj.field.call(1)(2);
}`
	res := parseSource(t, src)
	if len(res.Diags) != 0 {
		t.Fatalf("unexpected diagnostics: %s", diagnosticsSummary(res.Diags))
	}
	fn, _ := res.AST.Items.Fn(res.AST.File.Items[0])
	block, _ := res.AST.Stmts.Block(fn.Body)
	var got []ast.StmtKind
	for _, id := range block.Stmts {
		got = append(got, res.AST.Stmts.Get(id).Kind)
	}
	want := []ast.StmtKind{
		ast.StmtLet, ast.StmtFor, ast.StmtWhile, ast.StmtIf, ast.StmtMatch,
		ast.StmtLet, ast.StmtLet, ast.StmtExpr,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("statement kinds mismatch (-want +got):\n%s", diff)
	}
	let, _ := res.AST.Stmts.Let(block.Stmts[0])
	if !let.Mutable {
		t.Fatal("idit muta must be mutable")
	}
	ifs, _ := res.AST.Stmts.If(block.Stmts[3])
	if elif, ok := res.AST.Stmts.If(ifs.Else); !ok || !elif.Else.IsValid() {
		t.Fatal("rev ate chain not parsed")
	}
	m, _ := res.AST.Stmts.Match(block.Stmts[4])
	if len(m.Arms) != 2 || m.Arms[1].Pattern.IsValid() || !m.Arms[1].Block.IsValid() {
		t.Fatalf("arms = %+v", m.Arms)
	}
	path, _ := res.AST.Stmts.Let(block.Stmts[5])
	if _, ok := res.AST.Exprs.Path(path.Value); !ok {
		t.Fatal("Color::Red must be a path")
	}
}

func TestRecoveryContainment(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code diag.Code
	}{
		{"missing expression", "fnc f() { djq x = ; djq y = 2; }", diag.SynExpectExpression},
		{"missing semicolon", "fnc f() { djq x = 1 djq y = 2; }", diag.SynExpectSemicolon},
		{"unclosed brace at eof", "fnc f() { djq x = 1;", diag.SynUnclosedBrace},
		{"unclosed brace before item", "fnc f() { djq x = 1;\nfnc g() {}", diag.SynUnclosedBrace},
		{"nested unclosed", "fnc f() { ate x { wyo y {", diag.SynUnclosedBrace},
		{"missing colon", "des P { x i32, y: i32 }", diag.SynExpectColon},
		{"top level garbage", "123 + 4; fnc f() {}", diag.SynUnexpectedTopLevel},
		{"broken group", "fnc f() { x = (1 + ; ret x; }", diag.SynExpectExpression},
		{"unclosed call", "fnc f() { foo(1, 2; ret; }", diag.SynUnclosedParen},
		{"bad assign target", "fnc f() { 1 = 2; }", diag.SynBadAssignTarget},
		{"broken params", "fnc f(a, 1) { ret a; }", diag.SynExpectIdentifier},
		{"broken header then item", "fnc (a) { } fnc g() {}", diag.SynExpectIdentifier},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := parseSource(t, tt.src)
			if len(res.Diags) != 1 {
				t.Fatalf("got %d diagnostics, want 1: %s", len(res.Diags), diagnosticsSummary(res.Diags))
			}
			if res.Diags[0].Code != tt.code {
				t.Fatalf("code = %s, want %s", res.Diags[0].Code.ID(), tt.code.ID())
			}
		})
	}
}

func TestRecoveryKeepsLaterItems(t *testing.T) {
	res := parseSource(t, "fnc f() { djq = 1; }\nfnc g() { ret; }\ndes P { x: }\nfnc h() {}")
	if len(res.Diags) != 2 {
		t.Fatalf("got %s", diagnosticsSummary(res.Diags))
	}
	if got := len(res.AST.File.Items); got != 4 {
		t.Fatalf("items = %d, want 4", got)
	}
}

func TestStrayBraceAnywhereReportsOnce(t *testing.T) {
	lines := []string{
		"fnc add(a, b) { ret a + b; }\n",
		"fnc mul(x, y) { ate x > y { ret x * y; } ret 0; }\n",
		"fnc main() { djq s = add(1, mul(2, 3)); prnt(s); }\n",
	}
	src := strings.Join(lines, "")
	if res := parseSource(t, src); len(res.Diags) != 0 {
		t.Fatalf("valid document: %s", diagnosticsSummary(res.Diags))
	}
	for off := 0; off <= len(src); off++ {
		edited := src[:off] + "{" + src[off:]
		res := parseSource(t, edited)
		if len(res.Diags) != 1 || res.Diags[0].Code.Category() != diag.CategorySyntax {
			t.Fatalf("%q: want one syntax diagnostic, got %s", edited, diagnosticsSummary(res.Diags))
		}

		// declarations fully before the brace are untouched
		names := make(map[string]bool)
		for _, id := range res.AST.File.Items {
			names[source.Name(res.AST.Items.Get(id).Name)] = true
		}
		end := 0
		for i, want := range []string{"add", "mul", "main"} {
			end += len(lines[i])
			if end <= off && !names[want] {
				t.Fatalf("%q: %s is missing from the items", edited, want)
			}
		}
	}
}

func TestUnclosedBraceReportedAtOpening(t *testing.T) {
	src := "fnc add(a, b) { ret a + b; }\nfnc main() {\n\tdjq x = add(1, 2);\n"
	res := parseSource(t, src)
	if len(res.Diags) != 1 {
		t.Fatalf("got %s", diagnosticsSummary(res.Diags))
	}
	open := uint32(len("fnc add(a, b) { ret a + b; }\nfnc main() "))
	if res.Diags[0].Primary != (source.Span{Start: open, End: open + 1}) {
		t.Fatalf("primary = %v, want the opening brace at %d", res.Diags[0].Primary, open)
	}
	main, _ := res.AST.Items.Fn(res.AST.File.Items[1])
	block, _ := res.AST.Stmts.Block(main.Body)
	if len(block.Stmts) != 1 {
		t.Fatal("statements before the missing brace must be kept")
	}
}

func TestLexicalProblemsReportedOnce(t *testing.T) {
	res := parseSource(t, "fnc f() { @ djq x = 1; }\nfnc g() { djq s = \"a\\q\"; }")
	var codes []diag.Code
	for _, d := range res.Diags {
		codes = append(codes, d.Code)
	}
	want := []diag.Code{diag.LexUnknownChar, diag.LexBadEscape, diag.SynExpectExpression}
	if diff := cmp.Diff(want, codes); diff != "" {
		t.Fatalf("codes mismatch (-want +got):\n%s", diff)
	}
}

func TestLexicalProblemDuringRecovery(t *testing.T) {
	res := parseSource(t, "fnc f() { djq x = ) # $ ; }")
	if len(res.Diags) != 3 {
		t.Fatalf("got %s", diagnosticsSummary(res.Diags))
	}
	if res.Diags[0].Code != diag.SynExpectExpression {
		t.Fatalf("first = %s", res.Diags[0].Code.ID())
	}
}

func TestReparseIsIdempotent(t *testing.T) {
	srcs := []string{
		"fnc add(a, b) { ret a + b; } fnc main() { djq x = add(1, 2); }",
		"des P { x: i32 } imp P { fnc get() -> i32 { ret soy.x; } }",
		"fnc f() { ate { ", // broken on purpose
	}
	all := cmp.Exporter(func(reflect.Type) bool { return true })
	for _, src := range srcs {
		a := parseSource(t, src)
		b := parseSource(t, src)
		if diff := cmp.Diff(a.AST, b.AST, all); diff != "" {
			t.Fatalf("%q: AST differs between parses:\n%s", src, diff)
		}
		if diff := cmp.Diff(a.Diags, b.Diags); diff != "" {
			t.Fatalf("%q: diagnostics differ between parses:\n%s", src, diff)
		}
	}
}

func TestMaxErrors(t *testing.T) {
	file := source.NewFile("t.ky", []byte("1; fnc a() {} 2; fnc b() {} 3; fnc c() {}"), source.FileVirtual)
	res := Parse(file, Options{MaxErrors: 2})
	if len(res.Diags) != 2 {
		t.Fatalf("got %d diagnostics, want 2", len(res.Diags))
	}
}

func TestReporterReceivesDiagnostics(t *testing.T) {
	bag := diag.NewBag(0)
	file := source.NewFile("t.ky", []byte("fnc f( {"), source.FileVirtual)
	res := Parse(file, Options{Reporter: diag.BagReporter{Bag: bag}})
	if bag.Len() != len(res.Diags) || bag.Len() == 0 {
		t.Fatalf("bag has %d, result has %d", bag.Len(), len(res.Diags))
	}
}
