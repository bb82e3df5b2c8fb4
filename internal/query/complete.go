package query

import (
	"context"
	"sort"
	"strings"

	"kymera/internal/source"
	"kymera/internal/token"
)

// Completion is one candidate. Kind is the symbol kind, or "keyword".
type Completion struct {
	Label  string
	Kind   string
	Detail string
	Doc    string
	Depth  int // scope distance, -1 for keywords
}

// Complete lists the symbols visible at pos whose name starts with the
// identifier fragment before the cursor, case-insensitively. Candidates
// whose case matches the fragment come first, then nearer scopes, then
// names in order. Matching keywords follow the symbols.
func (e *Engine) Complete(ctx context.Context, uri string, pos source.LineCol) (_ []Completion, err error) {
	snap, done, err := e.begin(ctx, "complete", uri)
	if err != nil {
		return nil, err
	}
	defer func() { done(err) }()

	a, err := e.analyze(snap)
	if err != nil {
		return nil, err
	}
	off, ok := a.offset(pos)
	if !ok {
		return nil, nil
	}
	prefix := fragmentAt(a.parsed.Tokens, off)
	folded := strings.ToLower(prefix)

	type ranked struct {
		Completion
		exact bool
	}
	var cands []ranked
	tab := a.res.Table
	for _, v := range tab.VisibleAt(off) {
		sym := tab.Symbols.Get(v.Symbol)
		// the name being typed is not a candidate for itself
		if sym.Span.Contains(off) && !sym.Span.Empty() {
			continue
		}
		name := source.Name(sym.Name)
		if !strings.HasPrefix(strings.ToLower(name), folded) {
			continue
		}
		cands = append(cands, ranked{
			Completion: Completion{
				Label:  name,
				Kind:   sym.Kind.String(),
				Detail: sym.Signature,
				Doc:    sym.Doc,
				Depth:  v.Depth,
			},
			exact: strings.HasPrefix(name, prefix),
		})
	}
	sort.SliceStable(cands, func(i, j int) bool {
		x, y := cands[i], cands[j]
		if x.exact != y.exact {
			return x.exact
		}
		if x.Depth != y.Depth {
			return x.Depth < y.Depth
		}
		return x.Label < y.Label
	})

	out := make([]Completion, 0, len(cands))
	for _, c := range cands {
		out = append(out, c.Completion)
	}
	if e.opts.Keywords {
		out = append(out, keywordsWithPrefix(folded)...)
	}
	if e.opts.MaxCompletions > 0 && len(out) > e.opts.MaxCompletions {
		out = out[:e.opts.MaxCompletions]
	}
	if err := snap.Q.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// fragmentAt returns the part of the identifier or keyword that ends at or
// contains off, up to off.
func fragmentAt(toks []token.Token, off uint32) string {
	i := sort.Search(len(toks), func(i int) bool { return toks[i].Span.End >= off })
	for ; i < len(toks) && toks[i].Span.Start < off; i++ {
		tok := &toks[i]
		if !tok.IsIdent() && !tok.IsKeyword() {
			continue
		}
		if n := int(off - tok.Span.Start); off <= tok.Span.End && n <= len(tok.Text) {
			return tok.Text[:n]
		}
	}
	return ""
}

func keywordsWithPrefix(folded string) []Completion {
	kws := token.Keywords()
	sort.Strings(kws)
	var out []Completion
	for _, kw := range kws {
		if strings.HasPrefix(kw, folded) {
			out = append(out, Completion{Label: kw, Kind: "keyword", Depth: -1})
		}
	}
	return out
}
