package source

import (
	"crypto/sha256"
	"fmt"
	"os"

	"fortio.org/safecast"
)

// FileFlags encodes metadata about a source text.
type FileFlags uint8

const (
	// FileVirtual marks text that did not come from disk (editor buffer, test).
	FileVirtual FileFlags = 1 << iota
	FileHadBOM
)

// File is an immutable snapshot of one document's text together with
// its line index. Every revision of a document gets its own File.
type File struct {
	Path    string
	Content []byte
	LineIdx []uint32 // offsets of '\n'
	Hash    [32]byte
	Flags   FileFlags
}

// LineCol is a human-readable position. Columns count bytes.
type LineCol struct {
	Line uint32 // 1-based
	Col  uint32 // 1-based
}

func (p LineCol) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// NewFile builds a File from in-memory text. The content is used as is.
func NewFile(path string, content []byte, flags FileFlags) *File {
	if _, err := safecast.Conv[uint32](len(content)); err != nil {
		panic(fmt.Errorf("file %s too large: %w", path, err))
	}
	return &File{
		Path:    normalizePath(path),
		Content: content,
		LineIdx: buildLineIndex(content),
		Hash:    sha256.Sum256(content),
		Flags:   flags,
	}
}

// LoadFile reads path from disk and strips a UTF-8 BOM.
func LoadFile(path string) (*File, error) {
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	content, hadBOM := removeBOM(content)
	flags := FileFlags(0)
	if hadBOM {
		flags |= FileHadBOM
	}
	return NewFile(path, content, flags), nil
}

// Len returns the content length in bytes.
func (f *File) Len() uint32 {
	n, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		panic(fmt.Errorf("content length overflow: %w", err))
	}
	return n
}

// Position converts a byte offset to a line/column pair.
func (f *File) Position(off uint32) LineCol {
	return toLineCol(f.LineIdx, off)
}

// Resolve converts a span into start and end positions.
func (f *File) Resolve(span Span) (start, end LineCol) {
	return toLineCol(f.LineIdx, span.Start), toLineCol(f.LineIdx, span.End)
}

// Offset converts a line/column pair back to a byte offset. Columns past
// the end of the line clamp to the line end; lines past the end of the
// file report false.
func (f *File) Offset(pos LineCol) (uint32, bool) {
	if pos.Line == 0 || pos.Col == 0 {
		return 0, false
	}
	start, ok := f.lineStart(pos.Line)
	if !ok {
		return 0, false
	}
	end := f.lineEnd(pos.Line)
	off := start + pos.Col - 1
	if off > end || off < start {
		off = end
	}
	return off, true
}

// Line returns the text of the 1-based line without its terminator.
func (f *File) Line(line uint32) string {
	start, ok := f.lineStart(line)
	if !ok {
		return ""
	}
	return string(f.Content[start:f.lineEnd(line)])
}

// LineCount returns the number of lines, counting a trailing partial line.
func (f *File) LineCount() uint32 {
	n, err := safecast.Conv[uint32](len(f.LineIdx))
	if err != nil {
		panic(fmt.Errorf("line index length overflow: %w", err))
	}
	return n + 1
}

func (f *File) lineStart(line uint32) (uint32, bool) {
	switch {
	case line == 0 || line > f.LineCount():
		return 0, false
	case line == 1:
		return 0, true
	default:
		return f.LineIdx[line-2] + 1, true
	}
}

func (f *File) lineEnd(line uint32) uint32 {
	if int(line-1) < len(f.LineIdx) {
		end := f.LineIdx[line-1]
		if end > 0 && f.Content[end-1] == '\r' {
			end--
		}
		return end
	}
	return f.Len()
}
