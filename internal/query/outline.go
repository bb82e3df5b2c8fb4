package query

import (
	"context"

	"kymera/internal/ast"
	"kymera/internal/docstore"
	"kymera/internal/source"
	"kymera/internal/symbols"
)

// Outline is one declaration of a document. Impl blocks are listed under
// their target type name with the methods as children.
type Outline struct {
	Name      string
	Kind      string
	Signature string
	Span      source.Span // the declared name
	Decl      source.Span
	Range     docstore.Range
	Children  []Outline
}

// DocumentSymbols returns the declarations of uri in source order.
func (e *Engine) DocumentSymbols(ctx context.Context, uri string) (_ []Outline, err error) {
	snap, done, err := e.begin(ctx, "outline", uri)
	if err != nil {
		return nil, err
	}
	defer func() { done(err) }()

	a, err := e.analyze(snap)
	if err != nil {
		return nil, err
	}
	out := Outlines(a.parsed.AST, func(sp source.Span) docstore.Range {
		return location(snap, sp).Range
	})
	if err := snap.Q.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Outlines builds the outline of a parse. resolve maps spans to ranges and
// may be nil.
func Outlines(b *ast.Builder, resolve func(source.Span) docstore.Range) []Outline {
	node := func(name source.StringID, kind string, sig string, nameSpan, decl source.Span) Outline {
		o := Outline{Name: source.Name(name), Kind: kind, Signature: sig, Span: nameSpan, Decl: decl}
		if resolve != nil {
			o.Range = resolve(nameSpan)
		}
		return o
	}
	methods := func(owner source.StringID, ids []ast.ItemID) []Outline {
		var out []Outline
		for _, m := range ids {
			mi := b.Items.Get(m)
			out = append(out, node(mi.Name, symbols.SymbolMethod.String(),
				symbols.FnSignature(b, m, source.Name(owner)), mi.NameSpan, mi.Span))
		}
		return out
	}

	out := make([]Outline, 0, len(b.File.Items))
	for _, id := range b.File.Items {
		item := b.Items.Get(id)
		kind := item.Kind.String()
		if k := symbols.SymbolKindOf(item.Kind); k != symbols.SymbolInvalid {
			kind = k.String()
		}
		o := node(item.Name, kind, symbols.ItemSignature(b, id), item.NameSpan, item.Span)
		switch item.Kind {
		case ast.ItemStruct:
			st, _ := b.Items.Struct(id)
			for _, f := range st.Fields {
				o.Children = append(o.Children, node(f.Name, symbols.SymbolField.String(),
					symbols.FieldSignature(b, f), f.NameSpan, f.Span))
			}
		case ast.ItemEnum:
			en, _ := b.Items.Enum(id)
			for _, v := range en.Variants {
				o.Children = append(o.Children, node(v.Name, symbols.SymbolVariant.String(),
					source.Name(item.Name)+"::"+source.Name(v.Name), v.NameSpan, v.NameSpan))
			}
		case ast.ItemImpl:
			im, _ := b.Items.Impl(id)
			o.Children = methods(item.Name, im.Methods)
		case ast.ItemInterface:
			ifz, _ := b.Items.Interface(id)
			o.Children = methods(item.Name, ifz.Methods)
		}
		out = append(out, o)
	}
	return out
}
