package ast

import (
	"kymera/internal/source"
)

type ItemKind uint8

const (
	ItemImport ItemKind = iota
	ItemFn
	ItemStruct
	ItemEnum
	ItemImpl
	ItemInterface
	ItemLet
)

func (k ItemKind) String() string {
	switch k {
	case ItemImport:
		return "import"
	case ItemFn:
		return "fn"
	case ItemStruct:
		return "struct"
	case ItemEnum:
		return "enum"
	case ItemImpl:
		return "impl"
	case ItemInterface:
		return "interface"
	case ItemLet:
		return "let"
	}
	return "unknown"
}

// Item is a declaration. Name is the declared name; for impl blocks it is
// the target type name, for imports the alias or the last path segment.
type Item struct {
	Kind     ItemKind
	Span     source.Span
	Name     source.StringID
	NameSpan source.Span
	Doc      string
	Payload  PayloadID
}

type ImportItem struct {
	Rust      bool // rudes rather than pydes
	Path      []source.StringID
	PathSpans []source.Span
	Alias     source.StringID
	AliasSpan source.Span
}

type FnParam struct {
	Name     source.StringID
	NameSpan source.Span
	Type     TypeID // NoTypeID when omitted
	Mutable  bool
	Span     source.Span
}

// FnItem is a function or method. Interface signatures have no Body.
type FnItem struct {
	Params []FnParam
	Result TypeID
	Body   StmtID
}

type StructField struct {
	Name     source.StringID
	NameSpan source.Span
	Type     TypeID
	Doc      string
	Span     source.Span
}

type StructItem struct {
	Forma  bool // declared with forma rather than des
	Fields []StructField
}

type EnumVariant struct {
	Name     source.StringID
	NameSpan source.Span
	Doc      string
}

type EnumItem struct {
	Variants []EnumVariant
}

// ImplItem holds methods for the type named by the owning Item.
type ImplItem struct {
	Methods []ItemID
}

type InterfaceItem struct {
	Methods []ItemID
}

// LetDecl is a djq/idit binding, used both at top level and in blocks.
type LetDecl struct {
	Mutable  bool // idit, or an explicit muta modifier
	Name     source.StringID
	NameSpan source.Span
	Type     TypeID
	Value    ExprID
}

type Items struct {
	Arena      *Arena[Item]
	Imports    *Arena[ImportItem]
	Fns        *Arena[FnItem]
	Structs    *Arena[StructItem]
	Enums      *Arena[EnumItem]
	Impls      *Arena[ImplItem]
	Interfaces *Arena[InterfaceItem]
	Lets       *Arena[LetDecl]
}

func NewItems(capHint uint) *Items {
	if capHint == 0 {
		capHint = 1 << 5
	}
	return &Items{
		Arena:      NewArena[Item](capHint),
		Imports:    NewArena[ImportItem](capHint / 4),
		Fns:        NewArena[FnItem](capHint),
		Structs:    NewArena[StructItem](capHint / 4),
		Enums:      NewArena[EnumItem](capHint / 4),
		Impls:      NewArena[ImplItem](capHint / 4),
		Interfaces: NewArena[InterfaceItem](capHint / 4),
		Lets:       NewArena[LetDecl](capHint / 4),
	}
}

func (i *Items) New(kind ItemKind, span source.Span, name source.StringID, nameSpan source.Span, doc string, payload PayloadID) ItemID {
	return ItemID(i.Arena.Allocate(Item{
		Kind:     kind,
		Span:     span,
		Name:     name,
		NameSpan: nameSpan,
		Doc:      doc,
		Payload:  payload,
	}))
}

func (i *Items) Get(id ItemID) *Item {
	return i.Arena.Get(uint32(id))
}

func (i *Items) NewImport(span source.Span, name source.StringID, nameSpan source.Span, doc string, data ImportItem) ItemID {
	return i.New(ItemImport, span, name, nameSpan, doc, PayloadID(i.Imports.Allocate(data)))
}

func (i *Items) NewFn(span source.Span, name source.StringID, nameSpan source.Span, doc string, data FnItem) ItemID {
	return i.New(ItemFn, span, name, nameSpan, doc, PayloadID(i.Fns.Allocate(data)))
}

func (i *Items) NewStruct(span source.Span, name source.StringID, nameSpan source.Span, doc string, data StructItem) ItemID {
	return i.New(ItemStruct, span, name, nameSpan, doc, PayloadID(i.Structs.Allocate(data)))
}

func (i *Items) NewEnum(span source.Span, name source.StringID, nameSpan source.Span, doc string, data EnumItem) ItemID {
	return i.New(ItemEnum, span, name, nameSpan, doc, PayloadID(i.Enums.Allocate(data)))
}

func (i *Items) NewImpl(span source.Span, target source.StringID, targetSpan source.Span, doc string, data ImplItem) ItemID {
	return i.New(ItemImpl, span, target, targetSpan, doc, PayloadID(i.Impls.Allocate(data)))
}

func (i *Items) NewInterface(span source.Span, name source.StringID, nameSpan source.Span, doc string, data InterfaceItem) ItemID {
	return i.New(ItemInterface, span, name, nameSpan, doc, PayloadID(i.Interfaces.Allocate(data)))
}

func (i *Items) NewLet(span source.Span, doc string, data LetDecl) ItemID {
	return i.New(ItemLet, span, data.Name, data.NameSpan, doc, PayloadID(i.Lets.Allocate(data)))
}

func (i *Items) Import(id ItemID) (*ImportItem, bool) {
	item := i.Get(id)
	if item == nil || item.Kind != ItemImport {
		return nil, false
	}
	return i.Imports.Get(uint32(item.Payload)), true
}

func (i *Items) Fn(id ItemID) (*FnItem, bool) {
	item := i.Get(id)
	if item == nil || item.Kind != ItemFn {
		return nil, false
	}
	return i.Fns.Get(uint32(item.Payload)), true
}

func (i *Items) Struct(id ItemID) (*StructItem, bool) {
	item := i.Get(id)
	if item == nil || item.Kind != ItemStruct {
		return nil, false
	}
	return i.Structs.Get(uint32(item.Payload)), true
}

func (i *Items) Enum(id ItemID) (*EnumItem, bool) {
	item := i.Get(id)
	if item == nil || item.Kind != ItemEnum {
		return nil, false
	}
	return i.Enums.Get(uint32(item.Payload)), true
}

func (i *Items) Impl(id ItemID) (*ImplItem, bool) {
	item := i.Get(id)
	if item == nil || item.Kind != ItemImpl {
		return nil, false
	}
	return i.Impls.Get(uint32(item.Payload)), true
}

func (i *Items) Interface(id ItemID) (*InterfaceItem, bool) {
	item := i.Get(id)
	if item == nil || item.Kind != ItemInterface {
		return nil, false
	}
	return i.Interfaces.Get(uint32(item.Payload)), true
}

func (i *Items) Let(id ItemID) (*LetDecl, bool) {
	item := i.Get(id)
	if item == nil || item.Kind != ItemLet {
		return nil, false
	}
	return i.Lets.Get(uint32(item.Payload)), true
}
