package diagfmt

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"kymera/internal/parser"
	"kymera/internal/source"
)

func TestMain(m *testing.M) {
	source.InitNames()
	code := m.Run()
	source.ShutdownNames()
	os.Exit(code)
}

func TestFormatASTPretty(t *testing.T) {
	file := source.NewFile("t.ky", []byte("fnc add(a, b: i32) -> i32 { ret a + b; }\n"), source.FileVirtual)
	res := parser.Parse(file, parser.Options{})

	var buf bytes.Buffer
	if err := FormatASTPretty(&buf, res.AST, file); err != nil {
		t.Fatal(err)
	}
	want := []string{
		"File (1:1-2:1)",
		"└─ Item:fn add (1:1-1:41)",
		"   ├─ Param a (1:9-1:10)",
		"   ├─ Param b (1:12-1:18)",
		"   │  └─ Type i32 (1:15-1:18)",
		"   ├─ Result (1:23-1:26)",
		"   │  └─ Type i32 (1:23-1:26)",
		"   └─ Stmt:block (1:27-1:41)",
		"      └─ Stmt:return (1:29-1:39)",
		"         └─ Expr:binary + (1:33-1:38)",
		"            ├─ Expr:ident a (1:33-1:34)",
		"            └─ Expr:ident b (1:37-1:38)",
	}
	if got := strings.TrimRight(buf.String(), "\n"); got != strings.Join(want, "\n") {
		t.Fatalf("unexpected tree:\n%s", got)
	}
}

func TestFormatASTJSONAndTokens(t *testing.T) {
	file := source.NewFile("t.ky", []byte("/// doc\ndjq x = \"a\\q\";\n"), source.FileVirtual)
	res := parser.Parse(file, parser.Options{})

	var buf bytes.Buffer
	if err := FormatASTJSON(&buf, res.AST); err != nil {
		t.Fatal(err)
	}
	var root ASTNodeOutput
	if err := json.Unmarshal(buf.Bytes(), &root); err != nil {
		t.Fatalf("bad JSON: %v", err)
	}
	if len(root.Children) != 1 || root.Children[0].Kind != "let" || root.Children[0].Text != "x" {
		t.Fatalf("root = %+v", root)
	}

	buf.Reset()
	if err := FormatTokensJSON(&buf, res.Tokens); err != nil {
		t.Fatal(err)
	}
	var toks []TokenOutput
	if err := json.Unmarshal(buf.Bytes(), &toks); err != nil {
		t.Fatalf("bad JSON: %v", err)
	}
	if len(toks) == 0 || toks[0].Kind != "djq" || toks[0].Leading[0] != "doc_line" {
		t.Fatalf("first token = %+v", toks[0])
	}
	if toks[3].Problem != "bad escape" {
		t.Fatalf("string token = %+v, want a bad escape", toks[3])
	}

	buf.Reset()
	if err := FormatTokensPretty(&buf, res.Tokens, file); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "at 2:1-2:4 (leading: doc_line, newline)") {
		t.Fatalf("unexpected token dump:\n%s", buf.String())
	}
}
