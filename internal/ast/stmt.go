package ast

import (
	"kymera/internal/source"
)

type StmtKind uint8

const (
	StmtBlock StmtKind = iota
	StmtLet
	StmtReturn
	StmtIf
	StmtWhile
	StmtFor
	StmtMatch
	StmtPrint
	StmtExpr
)

type Stmt struct {
	Kind    StmtKind
	Span    source.Span
	Payload PayloadID
}

type BlockStmt struct {
	Stmts []StmtID
}

type ReturnStmt struct {
	Value ExprID
}

// IfStmt is ate/rev. Else is a block, another IfStmt, or NoStmtID.
type IfStmt struct {
	Cond ExprID
	Then StmtID
	Else StmtID
}

type WhileStmt struct {
	Cond ExprID
	Body StmtID
}

// ForStmt is spa name : iter { ... }; Var is bound inside Body.
type ForStmt struct {
	Var     source.StringID
	VarSpan source.Span
	Iter    ExprID
	Body    StmtID
}

// MatchArm: Pattern is NoExprID for the _ wildcard. Exactly one of Value
// and Block is set.
type MatchArm struct {
	Pattern ExprID
	Span    source.Span
	Value   ExprID
	Block   StmtID
}

type MatchStmt struct {
	Subject ExprID
	Arms    []MatchArm
}

type PrintStmt struct {
	Args []ExprID
}

type ExprStmt struct {
	Expr ExprID
}

type Stmts struct {
	Arena   *Arena[Stmt]
	Blocks  *Arena[BlockStmt]
	Lets    *Arena[LetDecl]
	Returns *Arena[ReturnStmt]
	Ifs     *Arena[IfStmt]
	Whiles  *Arena[WhileStmt]
	Fors    *Arena[ForStmt]
	Matches *Arena[MatchStmt]
	Prints  *Arena[PrintStmt]
	Exprs   *Arena[ExprStmt]
}

func NewStmts(capHint uint) *Stmts {
	if capHint == 0 {
		capHint = 1 << 7
	}
	small := capHint/4 + 1
	return &Stmts{
		Arena:   NewArena[Stmt](capHint),
		Blocks:  NewArena[BlockStmt](small),
		Lets:    NewArena[LetDecl](small),
		Returns: NewArena[ReturnStmt](small),
		Ifs:     NewArena[IfStmt](small),
		Whiles:  NewArena[WhileStmt](small),
		Fors:    NewArena[ForStmt](small),
		Matches: NewArena[MatchStmt](small),
		Prints:  NewArena[PrintStmt](small),
		Exprs:   NewArena[ExprStmt](small),
	}
}

func (s *Stmts) new(kind StmtKind, span source.Span, payload uint32) StmtID {
	return StmtID(s.Arena.Allocate(Stmt{
		Kind:    kind,
		Span:    span,
		Payload: PayloadID(payload),
	}))
}

func (s *Stmts) Get(id StmtID) *Stmt {
	return s.Arena.Get(uint32(id))
}

func (s *Stmts) NewBlock(span source.Span, stmts []StmtID) StmtID {
	return s.new(StmtBlock, span, s.Blocks.Allocate(BlockStmt{Stmts: stmts}))
}

func (s *Stmts) NewLet(span source.Span, data LetDecl) StmtID {
	return s.new(StmtLet, span, s.Lets.Allocate(data))
}

func (s *Stmts) NewReturn(span source.Span, value ExprID) StmtID {
	return s.new(StmtReturn, span, s.Returns.Allocate(ReturnStmt{Value: value}))
}

func (s *Stmts) NewIf(span source.Span, cond ExprID, then, els StmtID) StmtID {
	return s.new(StmtIf, span, s.Ifs.Allocate(IfStmt{Cond: cond, Then: then, Else: els}))
}

func (s *Stmts) NewWhile(span source.Span, cond ExprID, body StmtID) StmtID {
	return s.new(StmtWhile, span, s.Whiles.Allocate(WhileStmt{Cond: cond, Body: body}))
}

func (s *Stmts) NewFor(span source.Span, data ForStmt) StmtID {
	return s.new(StmtFor, span, s.Fors.Allocate(data))
}

func (s *Stmts) NewMatch(span source.Span, subject ExprID, arms []MatchArm) StmtID {
	return s.new(StmtMatch, span, s.Matches.Allocate(MatchStmt{Subject: subject, Arms: arms}))
}

func (s *Stmts) NewPrint(span source.Span, args []ExprID) StmtID {
	return s.new(StmtPrint, span, s.Prints.Allocate(PrintStmt{Args: args}))
}

func (s *Stmts) NewExpr(span source.Span, expr ExprID) StmtID {
	return s.new(StmtExpr, span, s.Exprs.Allocate(ExprStmt{Expr: expr}))
}

func (s *Stmts) Block(id StmtID) (*BlockStmt, bool) {
	st := s.Get(id)
	if st == nil || st.Kind != StmtBlock {
		return nil, false
	}
	return s.Blocks.Get(uint32(st.Payload)), true
}

func (s *Stmts) Let(id StmtID) (*LetDecl, bool) {
	st := s.Get(id)
	if st == nil || st.Kind != StmtLet {
		return nil, false
	}
	return s.Lets.Get(uint32(st.Payload)), true
}

func (s *Stmts) Return(id StmtID) (*ReturnStmt, bool) {
	st := s.Get(id)
	if st == nil || st.Kind != StmtReturn {
		return nil, false
	}
	return s.Returns.Get(uint32(st.Payload)), true
}

func (s *Stmts) If(id StmtID) (*IfStmt, bool) {
	st := s.Get(id)
	if st == nil || st.Kind != StmtIf {
		return nil, false
	}
	return s.Ifs.Get(uint32(st.Payload)), true
}

func (s *Stmts) While(id StmtID) (*WhileStmt, bool) {
	st := s.Get(id)
	if st == nil || st.Kind != StmtWhile {
		return nil, false
	}
	return s.Whiles.Get(uint32(st.Payload)), true
}

func (s *Stmts) For(id StmtID) (*ForStmt, bool) {
	st := s.Get(id)
	if st == nil || st.Kind != StmtFor {
		return nil, false
	}
	return s.Fors.Get(uint32(st.Payload)), true
}

func (s *Stmts) Match(id StmtID) (*MatchStmt, bool) {
	st := s.Get(id)
	if st == nil || st.Kind != StmtMatch {
		return nil, false
	}
	return s.Matches.Get(uint32(st.Payload)), true
}

func (s *Stmts) Print(id StmtID) (*PrintStmt, bool) {
	st := s.Get(id)
	if st == nil || st.Kind != StmtPrint {
		return nil, false
	}
	return s.Prints.Get(uint32(st.Payload)), true
}

func (s *Stmts) Expr(id StmtID) (*ExprStmt, bool) {
	st := s.Get(id)
	if st == nil || st.Kind != StmtExpr {
		return nil, false
	}
	return s.Exprs.Get(uint32(st.Payload)), true
}
