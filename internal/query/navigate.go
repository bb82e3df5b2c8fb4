package query

import (
	"context"
	"sort"

	"kymera/internal/docstore"
	"kymera/internal/source"
	"kymera/internal/symbols"
)

// Hover describes the symbol under the cursor. Span and Range cover the
// occurrence that was hovered, not the declaration.
type Hover struct {
	Name      string
	Kind      symbols.SymbolKind
	Signature string
	Doc       string
	Span      source.Span
	Range     docstore.Range
}

// symbolAt resolves the reference or declaration name under pos.
func (e *Engine) symbolAt(ctx context.Context, op, uri string, pos source.LineCol, fn func(a *analysis, occ symbols.Ref)) (err error) {
	snap, done, err := e.begin(ctx, op, uri)
	if err != nil {
		return err
	}
	defer func() { done(err) }()

	a, err := e.analyze(snap)
	if err != nil {
		return err
	}
	off, ok := a.offset(pos)
	if !ok {
		return nil
	}
	occ, ok := a.res.Table.OccurrenceAt(off)
	if !ok {
		return nil
	}
	fn(a, occ)
	// the answer is only valid if the revision it was computed for is
	// still current
	return snap.Q.Err()
}

// Hover returns the signature and doc comment of the symbol at pos, or nil.
func (e *Engine) Hover(ctx context.Context, uri string, pos source.LineCol) (*Hover, error) {
	var out *Hover
	err := e.symbolAt(ctx, "hover", uri, pos, func(a *analysis, occ symbols.Ref) {
		sym := a.res.Table.Symbols.Get(occ.Symbol)
		loc := location(a.snap, occ.Span)
		out = &Hover{
			Name:      source.Name(sym.Name),
			Kind:      sym.Kind,
			Signature: sym.Signature,
			Doc:       sym.Doc,
			Span:      loc.Span,
			Range:     loc.Range,
		}
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Definition returns the declared name of the symbol at pos, or nil.
func (e *Engine) Definition(ctx context.Context, uri string, pos source.LineCol) (*Location, error) {
	var out *Location
	err := e.symbolAt(ctx, "definition", uri, pos, func(a *analysis, occ symbols.Ref) {
		sym := a.res.Table.Symbols.Get(occ.Symbol)
		loc := location(a.snap, sym.Span)
		loc.Decl = sym.Decl
		loc.DeclRange.Start, loc.DeclRange.End = a.snap.File.Resolve(sym.Decl)
		out = &loc
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// References lists every use of the symbol at pos together with its
// declaration, in source order. It is empty when nothing is under pos.
func (e *Engine) References(ctx context.Context, uri string, pos source.LineCol) ([]Location, error) {
	var out []Location
	err := e.symbolAt(ctx, "references", uri, pos, func(a *analysis, occ symbols.Ref) {
		tab := a.res.Table
		spans := []source.Span{tab.Symbols.Get(occ.Symbol).Span}
		for _, r := range tab.RefsTo(occ.Symbol) {
			spans = append(spans, r.Span)
		}
		sort.SliceStable(spans, func(i, j int) bool { return spans[i].Start < spans[j].Start })
		out = make([]Location, 0, len(spans))
		for _, sp := range spans {
			out = append(out, location(a.snap, sp))
		}
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
