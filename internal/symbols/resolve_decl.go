package symbols

import (
	"fmt"

	"fortio.org/safecast"

	"kymera/internal/ast"
	"kymera/internal/diag"
	"kymera/internal/source"
)

// ResolveDecl resolves the top-level declaration with position decl in
// b.File.Items against the module index ix.
func ResolveDecl(b *ast.Builder, ix Index, decl int) DeclResult {
	id := b.File.Items[decl]
	item := b.Items.Get(id)
	r := &declResolver{
		b:    b,
		ix:   ix,
		decl: u32(decl),
		base: item.Span.Start,
	}
	r.reporter = diag.SliceReporter{Items: &r.out.Diags}

	switch item.Kind {
	case ast.ItemFn:
		r.walkFn(id)
	case ast.ItemStruct:
		r.walkStruct(id)
	case ast.ItemEnum:
		r.walkEnum(id)
	case ast.ItemImpl:
		r.walkImpl(id)
	case ast.ItemInterface:
		r.walkInterface(id)
	case ast.ItemLet:
		let, _ := b.Items.Let(id)
		r.resolveType(let.Type)
		r.walkExpr(let.Value)
		r.checkLiteral(let.Type, let.Value)
	case ast.ItemImport:
		// external modules are not resolved
	}
	return r.out
}

type declResolver struct {
	b        *ast.Builder
	ix       Index
	decl     uint32
	base     uint32
	out      DeclResult
	reporter diag.Reporter
	stack    []uint32                       // open local scopes
	names    []map[source.StringID][]uint32 // per local scope, by name
	self     source.StringID                // impl target while inside an impl
	result   ast.TypeID                     // declared result of the enclosing function
}

func u32(n int) uint32 {
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		panic(fmt.Errorf("index overflow: %w", err))
	}
	return v
}

func (r *declResolver) rel(sp source.Span) source.Span {
	return sp.ShiftLeft(r.base)
}

func (r *declResolver) enter(kind ScopeKind, sp source.Span) {
	var parent uint32
	if len(r.stack) > 0 {
		parent = r.stack[len(r.stack)-1]
	}
	r.out.Scopes = append(r.out.Scopes, LocalScope{Kind: kind, Parent: parent, Span: r.rel(sp)})
	r.names = append(r.names, make(map[source.StringID][]uint32))
	r.stack = append(r.stack, u32(len(r.out.Scopes)))
}

func (r *declResolver) leave() {
	r.stack = r.stack[:len(r.stack)-1]
}

// declare adds a symbol to the innermost local scope. A second declaration
// of the same kind and name in one scope is reported and kept unindexed.
func (r *declResolver) declare(sym Symbol) uint32 {
	scope := r.stack[len(r.stack)-1]
	sym.Scope = ScopeID(scope)
	sym.Span = r.rel(sym.Span)
	sym.Decl = r.rel(sym.Decl)
	names := r.names[scope-1]
	for _, prev := range names[sym.Name] {
		if p := r.out.Symbols[prev-1]; p.Kind == sym.Kind {
			sym.Flags |= SymbolFlagDuplicate
			diag.ReportError(r.reporter, diag.SemaDuplicateSymbol, sym.Span,
				fmt.Sprintf("duplicate declaration of '%s'", source.Name(sym.Name))).
				WithNote(p.Span, "previous declaration here").
				Emit()
			break
		}
	}
	r.out.Symbols = append(r.out.Symbols, sym)
	id := u32(len(r.out.Symbols))
	if sym.Flags&SymbolFlagDuplicate == 0 {
		names[sym.Name] = append(names[sym.Name], id)
	}
	return id
}

func (r *declResolver) ref(sp source.Span, t Target) {
	r.out.Refs = append(r.out.Refs, LocalRef{Span: r.rel(sp), Target: t})
}

// lookup resolves a value name: local scopes innermost first, then the
// module index.
func (r *declResolver) lookup(name source.StringID) (Target, bool) {
	for i := len(r.stack) - 1; i >= 0; i-- {
		if ids := r.names[r.stack[i]-1][name]; len(ids) > 0 {
			return Target{Kind: TargetLocal, Index: ids[len(ids)-1]}, true
		}
	}
	if e, ok := r.ix.lookup(name); ok {
		return Target{Kind: TargetModule, Decl: u32(e)}, true
	}
	return Target{}, false
}

func (r *declResolver) resolveName(name source.StringID, sp source.Span) Target {
	t, ok := r.lookup(name)
	if !ok {
		diag.ReportError(r.reporter, diag.SemaUnresolvedSymbol, r.rel(sp),
			fmt.Sprintf("undefined name '%s'", source.Name(name))).Emit()
		return Target{}
	}
	r.ref(sp, t)
	return t
}

func (r *declResolver) resolveType(id ast.TypeID) {
	ty := r.b.Types.Get(id)
	if ty == nil {
		return
	}
	switch ty.Kind {
	case ast.TypeBuiltin:
	case ast.TypeNamed:
		entry, found, ok := r.ix.lookupType(ty.Name)
		switch {
		case ok:
			r.ref(ty.Span, Target{Kind: TargetModule, Decl: u32(entry)})
		case found:
			diag.ReportError(r.reporter, diag.SemaNotAType, r.rel(ty.Span),
				fmt.Sprintf("'%s' is not a type", source.Name(ty.Name))).Emit()
		default:
			diag.ReportError(r.reporter, diag.SemaUnresolvedType, r.rel(ty.Span),
				fmt.Sprintf("undefined type '%s'", source.Name(ty.Name))).Emit()
		}
	case ast.TypeArray, ast.TypeOptional:
		r.resolveType(ty.Elem)
	}
}

func (r *declResolver) walkFn(id ast.ItemID) {
	item := r.b.Items.Get(id)
	fn, _ := r.b.Items.Fn(id)
	r.enter(ScopeFunction, item.Span)
	for _, p := range fn.Params {
		r.resolveType(p.Type)
		var flags SymbolFlags
		if p.Mutable {
			flags |= SymbolFlagMutable
		}
		r.declare(Symbol{
			Name:      p.Name,
			Kind:      SymbolParam,
			Span:      p.NameSpan,
			Decl:      p.Span,
			Flags:     flags,
			Type:      r.b.Types.Format(p.Type),
			Signature: ParamSignature(r.b, p),
		})
	}
	r.resolveType(fn.Result)
	prev := r.result
	r.result = fn.Result
	if fn.Body.IsValid() {
		r.walkBlock(fn.Body)
	}
	r.result = prev
	r.leave()
}

func (r *declResolver) walkStruct(id ast.ItemID) {
	item := r.b.Items.Get(id)
	st, _ := r.b.Items.Struct(id)
	r.enter(ScopeStruct, item.Span)
	for _, f := range st.Fields {
		r.declare(Symbol{
			Name:      f.Name,
			Kind:      SymbolField,
			Span:      f.NameSpan,
			Decl:      f.Span,
			Type:      r.b.Types.Format(f.Type),
			Signature: FieldSignature(r.b, f),
			Doc:       f.Doc,
		})
	}
	for _, f := range st.Fields {
		r.resolveType(f.Type)
	}
	r.leave()
}

func (r *declResolver) walkEnum(id ast.ItemID) {
	item := r.b.Items.Get(id)
	en, _ := r.b.Items.Enum(id)
	r.enter(ScopeEnum, item.Span)
	for _, v := range en.Variants {
		r.declare(Symbol{
			Name:      v.Name,
			Kind:      SymbolVariant,
			Span:      v.NameSpan,
			Decl:      v.NameSpan,
			Signature: source.Name(item.Name) + "::" + source.Name(v.Name),
			Doc:       v.Doc,
		})
	}
	r.leave()
}

func (r *declResolver) walkImpl(id ast.ItemID) {
	item := r.b.Items.Get(id)
	im, _ := r.b.Items.Impl(id)
	entry, found, ok := r.ix.lookupType(item.Name)
	switch {
	case ok:
		r.ref(item.NameSpan, Target{Kind: TargetModule, Decl: u32(entry)})
	case found:
		diag.ReportError(r.reporter, diag.SemaNotAType, r.rel(item.NameSpan),
			fmt.Sprintf("'%s' is not a type", source.Name(item.Name))).Emit()
	default:
		diag.ReportError(r.reporter, diag.SemaUnresolvedType, r.rel(item.NameSpan),
			fmt.Sprintf("undefined type '%s'", source.Name(item.Name))).Emit()
	}

	r.enter(ScopeImpl, item.Span)
	r.declareMethods(item.Name, im.Methods)
	prev := r.self
	r.self = item.Name
	for _, m := range im.Methods {
		r.walkFn(m)
	}
	r.self = prev
	r.leave()
}

func (r *declResolver) walkInterface(id ast.ItemID) {
	item := r.b.Items.Get(id)
	ifz, _ := r.b.Items.Interface(id)
	r.enter(ScopeInterface, item.Span)
	r.declareMethods(item.Name, ifz.Methods)
	for _, m := range ifz.Methods {
		r.walkFn(m)
	}
	r.leave()
}

func (r *declResolver) declareMethods(owner source.StringID, methods []ast.ItemID) {
	for _, m := range methods {
		mi := r.b.Items.Get(m)
		r.declare(Symbol{
			Name:      mi.Name,
			Kind:      SymbolMethod,
			Span:      mi.NameSpan,
			Decl:      mi.Span,
			Signature: FnSignature(r.b, m, source.Name(owner)),
			Doc:       mi.Doc,
		})
	}
}
