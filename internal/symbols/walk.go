package symbols

import (
	"fmt"

	"kymera/internal/ast"
	"kymera/internal/diag"
	"kymera/internal/source"
)

func (r *declResolver) walkBlock(id ast.StmtID) {
	st := r.b.Stmts.Get(id)
	block, ok := r.b.Stmts.Block(id)
	if !ok {
		return
	}
	r.enter(ScopeBlock, st.Span)
	for _, s := range block.Stmts {
		r.walkStmt(s)
	}
	r.leave()
}

func (r *declResolver) walkStmt(id ast.StmtID) {
	st := r.b.Stmts.Get(id)
	if st == nil {
		return
	}
	switch st.Kind {
	case ast.StmtBlock:
		r.walkBlock(id)
	case ast.StmtLet:
		let, _ := r.b.Stmts.Let(id)
		r.resolveType(let.Type)
		// the initializer cannot see the binding it initializes
		r.walkExpr(let.Value)
		r.checkLiteral(let.Type, let.Value)
		var flags SymbolFlags
		if let.Mutable {
			flags |= SymbolFlagMutable
		}
		r.declare(Symbol{
			Name:      let.Name,
			Kind:      SymbolVariable,
			Span:      let.NameSpan,
			Decl:      st.Span,
			Flags:     flags,
			Type:      r.b.Types.Format(let.Type),
			Signature: LetSignature(r.b, let),
		})
	case ast.StmtReturn:
		ret, _ := r.b.Stmts.Return(id)
		r.walkExpr(ret.Value)
		r.checkLiteral(r.result, ret.Value)
	case ast.StmtIf:
		ifs, _ := r.b.Stmts.If(id)
		r.walkExpr(ifs.Cond)
		r.walkStmt(ifs.Then)
		r.walkStmt(ifs.Else)
	case ast.StmtWhile:
		w, _ := r.b.Stmts.While(id)
		r.walkExpr(w.Cond)
		r.walkStmt(w.Body)
	case ast.StmtFor:
		f, _ := r.b.Stmts.For(id)
		r.walkExpr(f.Iter)
		r.enter(ScopeBlock, st.Span)
		r.declare(Symbol{
			Name:      f.Var,
			Kind:      SymbolVariable,
			Span:      f.VarSpan,
			Decl:      st.Span,
			Signature: "spa " + source.Name(f.Var),
		})
		r.walkStmt(f.Body)
		r.leave()
	case ast.StmtMatch:
		m, _ := r.b.Stmts.Match(id)
		r.walkExpr(m.Subject)
		for _, arm := range m.Arms {
			r.walkExpr(arm.Pattern)
			r.walkExpr(arm.Value)
			r.walkStmt(arm.Block)
		}
	case ast.StmtPrint:
		p, _ := r.b.Stmts.Print(id)
		for _, a := range p.Args {
			r.walkExpr(a)
		}
	case ast.StmtExpr:
		e, _ := r.b.Stmts.Expr(id)
		r.walkExpr(e.Expr)
	}
}

// walkExpr resolves every name in the expression. For identifiers, paths
// and soy members it returns what the name resolved to.
func (r *declResolver) walkExpr(id ast.ExprID) Target {
	e := r.b.Exprs.Get(id)
	if e == nil {
		return Target{}
	}
	switch e.Kind {
	case ast.ExprIdent:
		data, _ := r.b.Exprs.Ident(id)
		return r.resolveName(data.Name, e.Span)
	case ast.ExprSelf:
		if r.self == source.NoStringID {
			diag.ReportError(r.reporter, diag.SemaSelfOutsideImpl, r.rel(e.Span),
				"'soy' used outside an impl block").Emit()
		}
	case ast.ExprBinary:
		data, _ := r.b.Exprs.Binary(id)
		r.walkExpr(data.Left)
		r.walkExpr(data.Right)
	case ast.ExprAssign:
		data, _ := r.b.Exprs.Assign(id)
		target := r.walkExpr(data.Target)
		r.walkExpr(data.Value)
		r.checkAssign(target, r.b.Exprs.Get(data.Target).Span)
	case ast.ExprUnary:
		data, _ := r.b.Exprs.Unary(id)
		r.walkExpr(data.Operand)
	case ast.ExprCast:
		data, _ := r.b.Exprs.Cast(id)
		r.walkExpr(data.Value)
		r.resolveType(data.Type)
	case ast.ExprCall:
		data, _ := r.b.Exprs.Call(id)
		callee := r.walkExpr(data.Callee)
		for _, a := range data.Args {
			r.walkExpr(a)
		}
		r.checkArity(callee, len(data.Args), e.Span)
	case ast.ExprMember:
		data, _ := r.b.Exprs.Member(id)
		r.walkExpr(data.Target)
		if target := r.b.Exprs.Get(data.Target); target.Kind == ast.ExprSelf && r.self != source.NoStringID {
			return r.resolveMember(r.self, data.Name, data.NameSpan)
		}
	case ast.ExprIndex:
		data, _ := r.b.Exprs.Index(id)
		r.walkExpr(data.Target)
		r.walkExpr(data.Index)
	case ast.ExprPath:
		data, _ := r.b.Exprs.Path(id)
		return r.walkPath(data)
	case ast.ExprGroup:
		data, _ := r.b.Exprs.Group(id)
		r.walkExpr(data.Inner)
	case ast.ExprArray:
		data, _ := r.b.Exprs.Array(id)
		for _, el := range data.Elems {
			r.walkExpr(el)
		}
	}
	return Target{}
}

func (r *declResolver) resolveMember(typeName, name source.StringID, sp source.Span) Target {
	decl, k, ok := r.ix.member(typeName, name)
	if !ok {
		diag.ReportError(r.reporter, diag.SemaUnknownMember, r.rel(sp),
			fmt.Sprintf("'%s' has no member '%s'", source.Name(typeName), source.Name(name))).Emit()
		return Target{}
	}
	t := Target{Kind: TargetMember, Decl: u32(decl), Index: u32(k + 1)}
	r.ref(sp, t)
	return t
}

// walkPath resolves A::B. A is looked up in the module; B is resolved as a
// member when A is a type. Paths through imports are external.
func (r *declResolver) walkPath(data *ast.ExprPathData) Target {
	head := r.resolveName(data.Segments[0], data.Spans[0])
	if len(data.Segments) < 2 {
		return head
	}
	if head.Kind != TargetModule {
		return Target{}
	}
	entry := r.ix.Entries[head.Decl]
	if !SymbolKindOf(entry.Kind).IsType() {
		return Target{}
	}
	return r.resolveMember(entry.Name, data.Segments[1], data.Spans[1])
}

// checkAssign warns when the assigned name is an immutable binding.
func (r *declResolver) checkAssign(t Target, sp source.Span) {
	var (
		immutable bool
		name      source.StringID
	)
	switch t.Kind {
	case TargetLocal:
		sym := r.out.Symbols[t.Index-1]
		immutable = (sym.Kind == SymbolVariable || sym.Kind == SymbolParam) && sym.Flags&SymbolFlagMutable == 0
		name = sym.Name
	case TargetModule:
		e := r.ix.Entries[t.Decl]
		immutable = e.Kind == ast.ItemLet && !e.Mutable
		name = e.Name
	default:
		return
	}
	if immutable {
		diag.ReportWarning(r.reporter, diag.SemaAssignImmutable, r.rel(sp),
			fmt.Sprintf("cannot assign to immutable binding '%s'", source.Name(name))).Emit()
	}
}
