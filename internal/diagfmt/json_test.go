package diagfmt

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	"kymera/internal/diag"
	"kymera/internal/source"
)

func TestJSONBasic(t *testing.T) {
	file := source.NewFile("dir/test.ky", []byte("fnc main() {\n\tdjq x = \"unterminated\n}"), source.FileVirtual)
	bag := diag.NewBag(10)
	bag.Add(diag.New(diag.SevError, diag.LexUnterminatedString, source.Span{Start: 22, End: 35}, "unterminated string literal").
		WithNote(source.Span{Start: 0, End: 3}, "in this function"))

	var buf bytes.Buffer
	opts := JSONOpts{IncludePositions: true, PathMode: PathModeBasename, IncludeNotes: true}
	if err := JSON(&buf, bag, file, opts); err != nil {
		t.Fatalf("JSON: %v", err)
	}

	var output DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &output); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, buf.String())
	}
	want := DiagnosticsOutput{
		Count: 1,
		Diagnostics: []DiagnosticJSON{{
			Severity: "ERROR",
			Code:     "LEX1002",
			Category: "syntax",
			Message:  "unterminated string literal",
			Location: LocationJSON{File: "test.ky", StartByte: 22, EndByte: 35, StartLine: 2, StartCol: 10, EndLine: 2, EndCol: 23},
			Notes: []NoteJSON{{
				Message:  "in this function",
				Location: LocationJSON{File: "test.ky", StartByte: 0, EndByte: 3, StartLine: 1, StartCol: 1, EndLine: 1, EndCol: 4},
			}},
		}},
	}
	if diff := cmp.Diff(want, output); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestJSONMaxTrimsOutput(t *testing.T) {
	file := source.NewFile("t.ky", []byte("abc"), source.FileVirtual)
	bag := diag.NewBag(0)
	for i := range uint32(3) {
		bag.Add(diag.NewError(diag.SemaUnresolvedSymbol, source.Span{Start: i, End: i + 1}, "undefined"))
	}
	out := BuildDiagnosticsOutput(bag, file, JSONOpts{Max: 2})
	if out.Count != 2 || bag.Len() != 3 {
		t.Fatalf("count = %d (bag %d), want 2 (bag untouched)", out.Count, bag.Len())
	}
	if out.Diagnostics[0].Location.StartLine != 0 {
		t.Fatal("positions must be omitted unless requested")
	}
}
