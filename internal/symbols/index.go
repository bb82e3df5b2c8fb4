package symbols

import (
	"slices"

	"kymera/internal/ast"
	"kymera/internal/source"
)

// Entry is the position independent summary of one top-level declaration.
type Entry struct {
	Kind    ast.ItemKind
	Name    source.StringID
	Mutable bool
	Members []source.StringID // fields, variants or methods in declaration order
	Arity   int               // parameter count of a function
	Arities []int             // parameter counts of impl or interface methods, parallel to Members
}

// Index lists every top-level declaration in source order. It changes only
// when names, kinds, members or parameter counts change, so body edits leave
// it equal.
type Index struct {
	Entries []Entry
}

// BuildIndex summarizes the top-level declarations of b.
func BuildIndex(b *ast.Builder) Index {
	ix := Index{Entries: make([]Entry, 0, len(b.File.Items))}
	for _, id := range b.File.Items {
		item := b.Items.Get(id)
		e := Entry{Kind: item.Kind, Name: item.Name}
		switch item.Kind {
		case ast.ItemFn:
			fn, _ := b.Items.Fn(id)
			e.Arity = len(fn.Params)
		case ast.ItemStruct:
			st, _ := b.Items.Struct(id)
			for _, f := range st.Fields {
				e.Members = append(e.Members, f.Name)
			}
		case ast.ItemEnum:
			en, _ := b.Items.Enum(id)
			for _, v := range en.Variants {
				e.Members = append(e.Members, v.Name)
			}
		case ast.ItemImpl:
			im, _ := b.Items.Impl(id)
			e.Members, e.Arities = methodNames(b, im.Methods)
		case ast.ItemInterface:
			ifz, _ := b.Items.Interface(id)
			e.Members, e.Arities = methodNames(b, ifz.Methods)
		case ast.ItemLet:
			let, _ := b.Items.Let(id)
			e.Mutable = let.Mutable
		}
		ix.Entries = append(ix.Entries, e)
	}
	return ix
}

func methodNames(b *ast.Builder, methods []ast.ItemID) (names []source.StringID, arities []int) {
	names = make([]source.StringID, 0, len(methods))
	arities = make([]int, 0, len(methods))
	for _, m := range methods {
		names = append(names, b.Items.Get(m).Name)
		n := 0
		if fn, ok := b.Items.Fn(m); ok {
			n = len(fn.Params)
		}
		arities = append(arities, n)
	}
	return names, arities
}

// Equal reports whether two indexes describe the same declarations.
func (ix Index) Equal(other Index) bool {
	return slices.EqualFunc(ix.Entries, other.Entries, func(a, b Entry) bool {
		return a.Kind == b.Kind && a.Name == b.Name && a.Mutable == b.Mutable &&
			a.Arity == b.Arity && slices.Equal(a.Members, b.Members) && slices.Equal(a.Arities, b.Arities)
	})
}

// SymbolKindOf maps a declaration kind to the kind of its module symbol;
// impl blocks declare no module symbol.
func SymbolKindOf(k ast.ItemKind) SymbolKind {
	switch k {
	case ast.ItemImport:
		return SymbolImport
	case ast.ItemFn:
		return SymbolFunction
	case ast.ItemStruct:
		return SymbolStruct
	case ast.ItemEnum:
		return SymbolEnum
	case ast.ItemInterface:
		return SymbolInterface
	case ast.ItemLet:
		return SymbolVariable
	default:
		return SymbolInvalid
	}
}

// lookup returns the first declaration named name in any namespace.
func (ix Index) lookup(name source.StringID) (int, bool) {
	for i, e := range ix.Entries {
		if e.Name == name && e.Kind != ast.ItemImpl {
			return i, true
		}
	}
	return -1, false
}

// lookupType returns the first type (or import) named name. When only a
// value carries the name, found is true and ok is false.
func (ix Index) lookupType(name source.StringID) (entry int, found, ok bool) {
	entry = -1
	for i, e := range ix.Entries {
		if e.Name != name || e.Kind == ast.ItemImpl {
			continue
		}
		found = true
		if kind := SymbolKindOf(e.Kind); kind.IsType() || kind == SymbolImport {
			return i, true, true
		}
	}
	return entry, found, false
}

// member finds name among the members of the type typeName: fields,
// variants and interface methods first, then methods of any impl for that
// type. index is 0-based.
func (ix Index) member(typeName, name source.StringID) (decl, index int, ok bool) {
	for i, e := range ix.Entries {
		if e.Name != typeName || (e.Kind != ast.ItemStruct && e.Kind != ast.ItemEnum && e.Kind != ast.ItemInterface) {
			continue
		}
		if k := slices.Index(e.Members, name); k >= 0 {
			return i, k, true
		}
	}
	for i, e := range ix.Entries {
		if e.Name != typeName || e.Kind != ast.ItemImpl {
			continue
		}
		if k := slices.Index(e.Members, name); k >= 0 {
			return i, k, true
		}
	}
	return -1, -1, false
}
