package diag

import (
	"kymera/internal/source"
)

type Note struct {
	Span source.Span
	Msg  string
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	Notes    []Note
}

func New(sev Severity, code Code, primary source.Span, msg string) Diagnostic {
	return Diagnostic{Severity: sev, Code: code, Primary: primary, Message: msg}
}

func NewError(code Code, primary source.Span, msg string) Diagnostic {
	return New(SevError, code, primary, msg)
}

func (d Diagnostic) WithNote(sp source.Span, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Span: sp, Msg: msg})
	return d
}

// Shift moves the primary span and every note right by n bytes.
// Per-declaration results are stored relative to the declaration start
// and rebased with Shift when assembled into a document.
func (d Diagnostic) Shift(n uint32) Diagnostic {
	d.Primary = d.Primary.ShiftRight(n)
	if len(d.Notes) > 0 {
		notes := make([]Note, len(d.Notes))
		for i, note := range d.Notes {
			notes[i] = Note{Span: note.Span.ShiftRight(n), Msg: note.Msg}
		}
		d.Notes = notes
	}
	return d
}
