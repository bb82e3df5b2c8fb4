package diagfmt

import (
	"bytes"
	"strings"
	"testing"

	"kymera/internal/diag"
	"kymera/internal/source"
)

func unterminatedBag(file *source.File) *diag.Bag {
	bag := diag.NewBag(10)
	bag.Add(diag.New(diag.SevError, diag.LexUnterminatedString, source.Span{Start: 8, End: 28}, "unterminated string literal"))
	_ = file
	return bag
}

func TestPathModes(t *testing.T) {
	file := source.NewFile("/home/user/project/src/test.ky", []byte("djq x = \"unterminated string\n"), source.FileVirtual)
	bag := unterminatedBag(file)

	tests := []struct {
		name     string
		mode     PathMode
		contains string
	}{
		{"absolute", PathModeAbsolute, "/home/user/project/src/test.ky:1:9"},
		{"relative", PathModeRelative, "src/test.ky:1:9"},
		{"basename", PathModeBasename, "test.ky:1:9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			Pretty(&buf, bag, file, PrettyOpts{PathMode: tt.mode, BaseDir: "/home/user/project"})
			output := buf.String()
			if !strings.Contains(output, tt.contains) {
				t.Errorf("expected output to contain %q, got:\n%s", tt.contains, output)
			}
			for _, want := range []string{"ERROR", "LEX1002", "unterminated string literal"} {
				if !strings.Contains(output, want) {
					t.Errorf("expected %q in output:\n%s", want, output)
				}
			}
		})
	}
}

func TestPathModeAuto(t *testing.T) {
	tests := []struct {
		path     string
		expected string
	}{
		{"test.ky", "test.ky:1:9"},
		{"/very/long/absolute/path/to/some/nested/directory/file.ky", "\nfile.ky:1:9"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			file := source.NewFile(tt.path, []byte("djq x = 42\n"), source.FileVirtual)
			bag := diag.NewBag(10)
			bag.Add(diag.New(diag.SevWarning, diag.LexUnknownChar, source.Span{Start: 8, End: 10}, "test warning"))

			var buf bytes.Buffer
			buf.WriteByte('\n')
			Pretty(&buf, bag, file, PrettyOpts{})
			if !strings.Contains(buf.String(), tt.expected) {
				t.Errorf("expected output to contain %q, got:\n%s", tt.expected, buf.String())
			}
		})
	}
}

func TestPrettyCaretsAndNotes(t *testing.T) {
	src := "fnc add() {}\n\tfnc add() {}\n"
	file := source.NewFile("dup.ky", []byte(src), source.FileVirtual)
	second := uint32(strings.LastIndex(src, "add"))
	d := diag.NewError(diag.SemaDuplicateSymbol, source.Span{Start: second, End: second + 3}, "duplicate declaration of 'add'").
		WithNote(source.Span{Start: 4, End: 7}, "previous declaration here")
	bag := diag.NewBag(0)
	bag.Add(d)

	var buf bytes.Buffer
	Pretty(&buf, bag, file, PrettyOpts{Context: 1, ShowNotes: true})
	want := strings.Join([]string{
		"dup.ky:2:6: ERROR SEM3002: duplicate declaration of 'add'",
		"1 | fnc add() {}",
		"2 |     fnc add() {}",
		"  |         ^~~",
		"3 | ",
		"  note: dup.ky:1:5: previous declaration here",
		"",
	}, "\n")
	if diff := buf.String(); diff != want {
		t.Fatalf("unexpected output:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestPrettyTruncatesMessages(t *testing.T) {
	file := source.NewFile("w.ky", []byte("x"), source.FileVirtual)
	bag := diag.NewBag(0)
	bag.Add(diag.NewError(diag.SemaUnresolvedSymbol, source.Span{Start: 0, End: 1}, "undefined name 'extraordinarily_long_identifier'"))

	var buf bytes.Buffer
	Pretty(&buf, bag, file, PrettyOpts{Width: 12})
	first := strings.SplitN(buf.String(), "\n", 2)[0]
	if !strings.HasSuffix(first, ": undefined n…") {
		t.Fatalf("message not truncated: %q", first)
	}
}
