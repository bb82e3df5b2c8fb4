package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFilePositionRoundTrip(t *testing.T) {
	f := NewFile("mem.ky", []byte("fnc a() {}\n\nfnc b() {\n  ret 1;\n}"), FileVirtual)

	tests := []struct {
		off  uint32
		want LineCol
	}{
		{0, LineCol{1, 1}},
		{10, LineCol{1, 11}}, // the '\n' itself
		{11, LineCol{2, 1}},
		{12, LineCol{3, 1}},
		{24, LineCol{4, 3}},
	}
	for _, tt := range tests {
		got := f.Position(tt.off)
		if got != tt.want {
			t.Fatalf("Position(%d) = %v, want %v", tt.off, got, tt.want)
		}
		back, ok := f.Offset(got)
		if !ok || back != tt.off {
			t.Fatalf("Offset(%v) = %d,%v, want %d", got, back, ok, tt.off)
		}
	}
}

func TestFileOffsetClamp(t *testing.T) {
	f := NewFile("mem.ky", []byte("ab\r\ncd"), FileVirtual)
	if off, ok := f.Offset(LineCol{Line: 1, Col: 40}); !ok || off != 2 {
		t.Fatalf("clamped offset = %d,%v, want 2", off, ok)
	}
	if _, ok := f.Offset(LineCol{Line: 3, Col: 1}); ok {
		t.Fatal("line past EOF must fail")
	}
	if f.Line(2) != "cd" || f.Line(1) != "ab" {
		t.Fatalf("Line mismatch: %q %q", f.Line(1), f.Line(2))
	}
}

func TestLoadFileStripsBOM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bom.ky")
	if err := os.WriteFile(path, []byte("\xEF\xBB\xBFfnc a() {}"), 0o600); err != nil {
		t.Fatal(err)
	}
	f, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if f.Flags&FileHadBOM == 0 || string(f.Content) != "fnc a() {}" {
		t.Fatalf("BOM not stripped: flags=%v content=%q", f.Flags, f.Content)
	}
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.ky")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
