package ast

import (
	"strings"

	"kymera/internal/source"
	"kymera/internal/token"
)

type TypeKind uint8

const (
	TypeBuiltin  TypeKind = iota // i32, strng, ...
	TypeNamed                    // user type, resolved in the type namespace
	TypeArray                    // [T]
	TypeOptional                 // optn T
)

type TypeExpr struct {
	Kind    TypeKind
	Span    source.Span
	Builtin token.Kind
	Name    source.StringID
	Elem    TypeID
}

type Types struct {
	Arena *Arena[TypeExpr]
}

func NewTypes(capHint uint) *Types {
	return &Types{Arena: NewArena[TypeExpr](capHint)}
}

func (t *Types) Get(id TypeID) *TypeExpr {
	return t.Arena.Get(uint32(id))
}

func (t *Types) NewBuiltin(span source.Span, kw token.Kind) TypeID {
	return TypeID(t.Arena.Allocate(TypeExpr{Kind: TypeBuiltin, Span: span, Builtin: kw}))
}

func (t *Types) NewNamed(span source.Span, name source.StringID) TypeID {
	return TypeID(t.Arena.Allocate(TypeExpr{Kind: TypeNamed, Span: span, Name: name}))
}

func (t *Types) NewArray(span source.Span, elem TypeID) TypeID {
	return TypeID(t.Arena.Allocate(TypeExpr{Kind: TypeArray, Span: span, Elem: elem}))
}

func (t *Types) NewOptional(span source.Span, elem TypeID) TypeID {
	return TypeID(t.Arena.Allocate(TypeExpr{Kind: TypeOptional, Span: span, Elem: elem}))
}

// Format renders a type back to source form; "" for NoTypeID.
func (t *Types) Format(id TypeID) string {
	var sb strings.Builder
	t.format(&sb, id)
	return sb.String()
}

func (t *Types) format(sb *strings.Builder, id TypeID) {
	ty := t.Get(id)
	if ty == nil {
		return
	}
	switch ty.Kind {
	case TypeBuiltin:
		sb.WriteString(ty.Builtin.String())
	case TypeNamed:
		sb.WriteString(source.Name(ty.Name))
	case TypeArray:
		sb.WriteByte('[')
		t.format(sb, ty.Elem)
		sb.WriteByte(']')
	case TypeOptional:
		sb.WriteString("optn ")
		t.format(sb, ty.Elem)
	}
}
