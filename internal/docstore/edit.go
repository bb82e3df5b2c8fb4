package docstore

import (
	"bytes"
	"fmt"

	"kymera/internal/source"
)

// Range is a half-open range of 1-based positions.
type Range struct {
	Start source.LineCol
	End   source.LineCol
}

// Edit replaces Range with Text. A nil Range replaces the whole document.
type Edit struct {
	Range *Range
	Text  string
}

// applyEdits applies edits in order; each range refers to the text
// produced by the previous edit.
func applyEdits(uri string, file *source.File, edits []Edit) (*source.File, error) {
	for i, e := range edits {
		if e.Range == nil {
			file = source.NewFile(uri, []byte(e.Text), source.FileVirtual)
			continue
		}
		start, ok := file.Offset(e.Range.Start)
		if !ok {
			return nil, fmt.Errorf("edit %d: start %s: %w", i, e.Range.Start, ErrBadRange)
		}
		end, ok := file.Offset(e.Range.End)
		if !ok {
			return nil, fmt.Errorf("edit %d: end %s: %w", i, e.Range.End, ErrBadRange)
		}
		if end < start {
			return nil, fmt.Errorf("edit %d: end %s before start %s: %w", i, e.Range.End, e.Range.Start, ErrBadRange)
		}
		var buf bytes.Buffer
		buf.Grow(len(file.Content) - int(end-start) + len(e.Text))
		buf.Write(file.Content[:start])
		buf.WriteString(e.Text)
		buf.Write(file.Content[end:])
		file = source.NewFile(uri, buf.Bytes(), source.FileVirtual)
	}
	return file, nil
}
