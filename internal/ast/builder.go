package ast

import (
	"kymera/internal/source"
)

type Hints struct{ Items, Stmts, Exprs, Types uint }

// Builder owns every arena of one parse. A reparse builds a new Builder;
// nodes of different builders never reference each other.
type Builder struct {
	File  File
	Items *Items
	Stmts *Stmts
	Exprs *Exprs
	Types *Types
}

func NewBuilder(hints Hints) *Builder {
	if hints.Items == 0 {
		hints.Items = 1 << 5
	}
	if hints.Stmts == 0 {
		hints.Stmts = 1 << 7
	}
	if hints.Exprs == 0 {
		hints.Exprs = 1 << 8
	}
	if hints.Types == 0 {
		hints.Types = 1 << 5
	}
	return &Builder{
		Items: NewItems(hints.Items),
		Stmts: NewStmts(hints.Stmts),
		Exprs: NewExprs(hints.Exprs),
		Types: NewTypes(hints.Types),
	}
}

// HintsFor sizes arenas from the token count of a document.
func HintsFor(tokens int) Hints {
	if tokens < 0 {
		tokens = 0
	}
	n := uint(tokens)
	return Hints{Items: n/32 + 1, Stmts: n/6 + 1, Exprs: n/2 + 1, Types: n/16 + 1}
}

func (b *Builder) PushItem(item ItemID) {
	b.File.Items = append(b.File.Items, item)
}

// SetSpan records the span of the whole document.
func (b *Builder) SetSpan(sp source.Span) {
	b.File.Span = sp
}
