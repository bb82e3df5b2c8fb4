package symbols

import (
	"strings"

	"kymera/internal/ast"
	"kymera/internal/source"
)

// FnSignature renders fnc name(params) -> T. Methods are qualified with
// their owner type.
func FnSignature(b *ast.Builder, id ast.ItemID, owner string) string {
	item := b.Items.Get(id)
	fn, _ := b.Items.Fn(id)
	var sb strings.Builder
	sb.WriteString("fnc ")
	if owner != "" {
		sb.WriteString(owner)
		sb.WriteString("::")
	}
	sb.WriteString(source.Name(item.Name))
	sb.WriteByte('(')
	for i, p := range fn.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(ParamSignature(b, p))
	}
	sb.WriteByte(')')
	if fn.Result.IsValid() {
		sb.WriteString(" -> ")
		sb.WriteString(b.Types.Format(fn.Result))
	}
	return sb.String()
}

func ParamSignature(b *ast.Builder, p ast.FnParam) string {
	s := source.Name(p.Name)
	if p.Mutable {
		s = "muta " + s
	}
	if p.Type.IsValid() {
		s += ": " + b.Types.Format(p.Type)
	}
	return s
}

func FieldSignature(b *ast.Builder, f ast.StructField) string {
	return source.Name(f.Name) + ": " + b.Types.Format(f.Type)
}

func LetSignature(b *ast.Builder, let *ast.LetDecl) string {
	kw := "djq "
	if let.Mutable {
		kw = "idit "
	}
	s := kw + source.Name(let.Name)
	if let.Type.IsValid() {
		s += ": " + b.Types.Format(let.Type)
	}
	return s
}

// ItemSignature renders the hover line of a top-level declaration.
func ItemSignature(b *ast.Builder, id ast.ItemID) string {
	item := b.Items.Get(id)
	name := source.Name(item.Name)
	switch item.Kind {
	case ast.ItemFn:
		return FnSignature(b, id, "")
	case ast.ItemStruct:
		if st, _ := b.Items.Struct(id); st.Forma {
			return "forma " + name
		}
		return "des " + name
	case ast.ItemEnum:
		return "enum " + name
	case ast.ItemInterface:
		return "ifz " + name
	case ast.ItemImpl:
		return "imp " + name
	case ast.ItemLet:
		let, _ := b.Items.Let(id)
		return LetSignature(b, let)
	case ast.ItemImport:
		imp, _ := b.Items.Import(id)
		kw := "pydes "
		if imp.Rust {
			kw = "rudes "
		}
		segs := make([]string, len(imp.Path))
		for i, s := range imp.Path {
			segs[i] = source.Name(s)
		}
		out := kw + strings.Join(segs, "::")
		if imp.Alias != source.NoStringID {
			out += " as " + source.Name(imp.Alias)
		}
		return out
	}
	return name
}
