package index

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"kymera/internal/docstore"
	"kymera/internal/query"
	"kymera/internal/source"
)

const testURI = "file:///work/shapes.ky"

const shapes = `/// A point.
des Point { x: i32, y: i32 }
fnc keep(p: Point) -> Point { ret p; }
fnc main(q: Point) { djq p = keep(q); prnt(p.x); }
`

func TestMain(m *testing.M) {
	source.InitNames()
	code := m.Run()
	source.ShutdownNames()
	os.Exit(code)
}

func analyze(t *testing.T, src string) Document {
	t.Helper()
	ctx := context.Background()
	store := docstore.New(docstore.Options{})
	if err := store.Open(ctx, testURI, src, 3); err != nil {
		t.Fatalf("Open: %v", err)
	}
	eng := query.NewEngine(store, query.Options{})
	a, err := eng.Analyze(ctx, testURI)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	outline, err := eng.DocumentSymbols(ctx, testURI)
	if err != nil {
		t.Fatalf("DocumentSymbols: %v", err)
	}
	return Build(a, outline)
}

func TestBuildDocument(t *testing.T) {
	doc := analyze(t, shapes)
	if doc.URI != testURI || doc.Version != 3 || len(doc.Hash) != 64 {
		t.Fatalf("header = %q v%d %q", doc.URI, doc.Version, doc.Hash)
	}

	var point *Symbol
	for i := range doc.Symbols {
		if doc.Symbols[i].Name == "Point" {
			point = &doc.Symbols[i]
		}
	}
	if point == nil {
		t.Fatal("Point is not indexed")
	}
	if point.Doc != "A point." || point.Span.From != (Pos{Line: 2, Col: 5}) {
		t.Fatalf("Point = %+v", point)
	}

	uses := 0
	for _, r := range doc.References {
		if r.Symbol == point.ID {
			uses++
		}
	}
	if uses != 3 {
		t.Fatalf("Point has %d references, want every annotation", uses)
	}

	var names []string
	for _, e := range doc.Outline {
		names = append(names, e.Name)
	}
	if diff := cmp.Diff([]string{"Point", "keep", "main"}, names); diff != "" {
		t.Fatalf("outline (-want +got):\n%s", diff)
	}
	if len(doc.Outline[0].Children) != 2 {
		t.Fatalf("Point fields = %+v", doc.Outline[0].Children)
	}
}

func TestWriteAndReadBack(t *testing.T) {
	snap := NewSnapshot("kymera test")
	snap.Documents = append(snap.Documents, analyze(t, shapes))

	for _, f := range []Format{FormatMsgpack, FormatJSON} {
		t.Run(f.String(), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "out", "shapes.kyidx")
			if err := WriteFile(path, snap, f); err != nil {
				t.Fatalf("WriteFile: %v", err)
			}
			got, err := ReadFile(path, f)
			if err != nil {
				t.Fatalf("ReadFile: %v", err)
			}
			if diff := cmp.Diff(snap, got); diff != "" {
				t.Fatalf("snapshot changed (-want +got):\n%s", diff)
			}
			if _, ok := got.Lookup(testURI); !ok {
				t.Fatal("document lookup failed")
			}
			leftovers, _ := filepath.Glob(filepath.Join(filepath.Dir(path), ".kyidx-*"))
			if len(leftovers) != 0 {
				t.Fatalf("temp files left behind: %v", leftovers)
			}
		})
	}
}

func TestDecodeRejectsOtherSchema(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, &Snapshot{Schema: Schema + 1}, FormatMsgpack); err != nil {
		t.Fatal(err)
	}
	if _, err := Decode(&buf, FormatMsgpack); !errors.Is(err, ErrSchema) {
		t.Fatalf("err = %v, want ErrSchema", err)
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Fatal("ParseFormat accepted xml")
	}
}
