package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"kymera/internal/diag"
	"kymera/internal/source"
)

const tabWidth = 4

type palette struct {
	err, warn, info, code, gutter, caret, note *color.Color
}

func newPalette(enabled bool) palette {
	mk := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	return palette{
		err:    mk(color.FgRed, color.Bold),
		warn:   mk(color.FgYellow, color.Bold),
		info:   mk(color.FgCyan, color.Bold),
		code:   mk(color.Bold),
		gutter: mk(color.FgBlue),
		caret:  mk(color.FgGreen, color.Bold),
		note:   mk(color.FgCyan),
	}
}

func (p palette) severity(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty prints diagnostics of one file in a human-readable form:
//
//	<path>:<line>:<col>: <SEV> <CODE>: <message>
//
// followed by the source line with the span underlined ^~~~ and, when
// enabled, the notes in the same format. The bag is printed in its current
// order; sort it first.
func Pretty(w io.Writer, bag *diag.Bag, file *source.File, opts PrettyOpts) {
	pal := newPalette(opts.Color)
	path := formatPath(file, opts.PathMode, opts.BaseDir)
	for _, d := range bag.Items() {
		start, _ := file.Resolve(d.Primary)
		msg := d.Message
		if opts.Width > 0 {
			msg = runewidth.Truncate(msg, opts.Width, "…")
		}
		fmt.Fprintf(w, "%s:%d:%d: %s %s: %s\n",
			path, start.Line, start.Col,
			pal.severity(d.Severity).Sprint(d.Severity.String()),
			pal.code.Sprint(d.Code.ID()),
			msg)
		writeSnippet(w, pal, file, d.Primary, opts.Context)

		if !opts.ShowNotes {
			continue
		}
		for _, n := range d.Notes {
			pos, _ := file.Resolve(n.Span)
			fmt.Fprintf(w, "  %s %s:%d:%d: %s\n", pal.note.Sprint("note:"), path, pos.Line, pos.Col, n.Msg)
		}
	}
}

// writeSnippet prints the primary line with context lines around it and a
// caret line under the span. Columns are display cells, so wide runes and
// tabs line up.
func writeSnippet(w io.Writer, pal palette, file *source.File, span source.Span, context int) {
	start, end := file.Resolve(span)
	first := int(start.Line) - context
	if first < 1 {
		first = 1
	}
	last := int(start.Line) + context
	if total := int(file.LineCount()); last > total {
		last = total
	}
	gutterWidth := len(fmt.Sprint(last))

	for ln := first; ln <= last; ln++ {
		text := expandTabs(file.Line(uint32(ln))) // #nosec G115 -- bounded by LineCount
		fmt.Fprintf(w, "%s %s\n", pal.gutter.Sprintf("%*d |", gutterWidth, ln), text)
		if ln != int(start.Line) {
			continue
		}
		raw := file.Line(start.Line)
		startCol := clampCol(raw, start.Col)
		endCol := len(raw) + 1
		if end.Line == start.Line {
			endCol = clampCol(raw, end.Col)
		}
		pad := runewidth.StringWidth(expandTabs(raw[:startCol-1]))
		width := runewidth.StringWidth(expandTabs(raw[startCol-1 : endCol-1]))
		if width < 1 {
			width = 1
		}
		marker := "^" + strings.Repeat("~", width-1)
		fmt.Fprintf(w, "%s %s%s\n", pal.gutter.Sprintf("%*s |", gutterWidth, ""), strings.Repeat(" ", pad), pal.caret.Sprint(marker))
	}
}

func clampCol(line string, col uint32) int {
	c := int(col)
	if c < 1 {
		return 1
	}
	if c > len(line)+1 {
		return len(line) + 1
	}
	return c
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))
}
