package symbols

import (
	"fmt"

	"kymera/internal/ast"
	"kymera/internal/diag"
	"kymera/internal/source"
	"kymera/internal/token"
)

// checkArity reports a call whose argument count differs from the parameter
// count of the function or method it resolved to. Calls through locals,
// imports or unknown receivers are not checked.
func (r *declResolver) checkArity(t Target, args int, sp source.Span) {
	var (
		want int
		what string
	)
	switch t.Kind {
	case TargetModule:
		e := r.ix.Entries[t.Decl]
		if e.Kind != ast.ItemFn {
			return
		}
		want = e.Arity
		what = fmt.Sprintf("function '%s'", source.Name(e.Name))
	case TargetMember:
		e := r.ix.Entries[t.Decl]
		k := int(t.Index) - 1
		if k < 0 || k >= len(e.Arities) {
			return
		}
		want = e.Arities[k]
		what = fmt.Sprintf("method '%s::%s'", source.Name(e.Name), source.Name(e.Members[k]))
	default:
		return
	}
	if args == want {
		return
	}
	diag.ReportError(r.reporter, diag.SemaArityMismatch, r.rel(sp),
		fmt.Sprintf("%s expects %s but got %d", what, plural(want, "argument"), args)).Emit()
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return fmt.Sprintf("%d %ss", n, word)
}

// checkLiteral reports a literal value that can never have the annotated
// type ty. Only literals are checked; any other expression is accepted.
func (r *declResolver) checkLiteral(ty ast.TypeID, value ast.ExprID) {
	lit, sp, ok := r.literalOf(value)
	if !ok {
		return
	}
	if r.accepts(ty, lit) {
		return
	}
	diag.ReportError(r.reporter, diag.SemaTypeMismatch, r.rel(sp),
		fmt.Sprintf("mismatched types: expected %s, found %s", r.b.Types.Format(ty), litName(lit))).Emit()
}

// literalOf looks through parentheses and numeric negation.
func (r *declResolver) literalOf(id ast.ExprID) (ast.ExprLitKind, source.Span, bool) {
	e := r.b.Exprs.Get(id)
	if e == nil {
		return 0, source.Span{}, false
	}
	switch e.Kind {
	case ast.ExprLit:
		data, _ := r.b.Exprs.Literal(id)
		return data.Kind, e.Span, true
	case ast.ExprGroup:
		data, _ := r.b.Exprs.Group(id)
		lit, _, ok := r.literalOf(data.Inner)
		return lit, e.Span, ok
	case ast.ExprUnary:
		data, _ := r.b.Exprs.Unary(id)
		if data.Op != token.Minus {
			return 0, source.Span{}, false
		}
		lit, _, ok := r.literalOf(data.Operand)
		if !ok || (lit != ast.LitInt && lit != ast.LitFloat) {
			return 0, source.Span{}, false
		}
		return lit, e.Span, true
	}
	return 0, source.Span{}, false
}

// accepts reports whether a literal of kind lit may initialize ty. Integer
// literals widen to floats. Unknown or external types accept anything.
func (r *declResolver) accepts(id ast.TypeID, lit ast.ExprLitKind) bool {
	ty := r.b.Types.Get(id)
	if ty == nil {
		return true
	}
	switch ty.Kind {
	case ast.TypeOptional:
		return lit == ast.LitNil || r.accepts(ty.Elem, lit)
	case ast.TypeArray:
		return false
	case ast.TypeNamed:
		entry, _, ok := r.ix.lookupType(ty.Name)
		return !ok || SymbolKindOf(r.ix.Entries[entry].Kind) == SymbolImport
	}
	switch ty.Builtin {
	case token.KwI8, token.KwI16, token.KwI32, token.KwI64, token.KwI128, token.KwIsz,
		token.KwU8, token.KwU16, token.KwU32, token.KwU64, token.KwU128, token.KwUsz:
		return lit == ast.LitInt
	case token.KwF32, token.KwF64:
		return lit == ast.LitInt || lit == ast.LitFloat
	case token.KwStrng, token.KwStilo:
		return lit == ast.LitString
	}
	return true
}

func litName(k ast.ExprLitKind) string {
	switch k {
	case ast.LitInt:
		return "integer literal"
	case ast.LitFloat:
		return "float literal"
	case ast.LitString:
		return "string literal"
	case ast.LitBool:
		return "bool literal"
	case ast.LitNil:
		return "nil"
	}
	return "literal"
}
