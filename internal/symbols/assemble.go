package symbols

import (
	"fmt"
	"sort"

	"kymera/internal/ast"
	"kymera/internal/diag"
	"kymera/internal/source"
)

// Resolution is the symbol table of one revision plus the semantic
// diagnostics found while building it.
type Resolution struct {
	Table *Table
	Diags []diag.Diagnostic
}

// ResolveFile resolves a whole parse in one go. The incremental engine
// produces the same result from cached per-declaration pieces.
func ResolveFile(b *ast.Builder) Resolution {
	ix := BuildIndex(b)
	decls := make([]DeclResult, len(b.File.Items))
	for i := range decls {
		decls[i] = ResolveDecl(b, ix, i)
	}
	return Assemble(b, ix, decls)
}

// Assemble builds the table: the module scope with one symbol per named
// declaration, then every declaration's local scopes and symbols, rebased
// to absolute spans. decls[i] must be the resolution of b.File.Items[i].
func Assemble(b *ast.Builder, ix Index, decls []DeclResult) Resolution {
	var nScopes, nSyms int
	for _, d := range decls {
		nScopes += len(d.Scopes)
		nSyms += len(d.Symbols)
	}
	t := NewTable(Hints{Scopes: uint(nScopes + 1), Symbols: uint(nSyms + len(decls))})
	t.Module = t.Scopes.New(ScopeModule, NoScopeID, b.File.Span)

	var diags []diag.Diagnostic
	reporter := diag.SliceReporter{Items: &diags}

	type key struct {
		kind SymbolKind
		name source.StringID
	}
	first := make(map[key]SymbolID, len(ix.Entries))
	moduleSym := make([]SymbolID, len(ix.Entries))
	for i, e := range ix.Entries {
		kind := SymbolKindOf(e.Kind)
		if kind == SymbolInvalid {
			continue
		}
		id := b.File.Items[i]
		item := b.Items.Get(id)
		sym := Symbol{
			Name:      item.Name,
			Kind:      kind,
			Scope:     t.Module,
			Span:      item.NameSpan,
			Decl:      item.Span,
			Signature: ItemSignature(b, id),
			Doc:       item.Doc,
		}
		if let, ok := b.Items.Let(id); ok {
			sym.Type = b.Types.Format(let.Type)
			if let.Mutable {
				sym.Flags |= SymbolFlagMutable
			}
		}
		k := key{kind: kind, name: item.Name}
		if prev, dup := first[k]; dup {
			sym.Flags |= SymbolFlagDuplicate
			diag.ReportError(reporter, diag.SemaDuplicateSymbol, item.NameSpan,
				fmt.Sprintf("duplicate declaration of '%s'", source.Name(item.Name))).
				WithNote(t.Symbols.Get(prev).Span, "previous declaration here").
				Emit()
		}
		moduleSym[i] = t.Declare(&sym)
		if _, dup := first[k]; !dup {
			first[k] = moduleSym[i]
		}
	}

	declBase := make([]SymbolID, len(decls))
	for i, d := range decls {
		shift := b.Items.Get(b.File.Items[i]).Span.Start
		scopeBase := ScopeID(t.Scopes.Len()) // #nosec G115 -- bounded by the arena
		for _, ls := range d.Scopes {
			parent := t.Module
			if ls.Parent != 0 {
				parent = scopeBase + ScopeID(ls.Parent)
			}
			t.Scopes.New(ls.Kind, parent, ls.Span.ShiftRight(shift))
		}
		declBase[i] = SymbolID(t.Symbols.Len() + 1) // #nosec G115 -- bounded by the arena
		for _, sym := range d.Symbols {
			sym.Scope = scopeBase + sym.Scope
			sym.Span = sym.Span.ShiftRight(shift)
			sym.Decl = sym.Decl.ShiftRight(shift)
			t.Declare(&sym)
		}
		for _, dg := range d.Diags {
			diags = append(diags, dg.Shift(shift))
		}
	}

	for i, d := range decls {
		shift := b.Items.Get(b.File.Items[i]).Span.Start
		for _, ref := range d.Refs {
			var target SymbolID
			switch ref.Target.Kind {
			case TargetLocal:
				target = declBase[i] + SymbolID(ref.Target.Index) - 1
			case TargetModule:
				target = moduleSym[ref.Target.Decl]
			case TargetMember:
				target = declBase[ref.Target.Decl] + SymbolID(ref.Target.Index) - 1
			}
			if !target.IsValid() {
				continue
			}
			t.Refs = append(t.Refs, Ref{Span: ref.Span.ShiftRight(shift), Symbol: target})
		}
	}
	sort.SliceStable(t.Refs, func(i, j int) bool { return t.Refs[i].Span.Start < t.Refs[j].Span.Start })

	return Resolution{Table: t, Diags: diags}
}
