package symbols

import (
	"kymera/internal/source"
)

// SymbolKind classifies the semantic meaning of a symbol.
type SymbolKind uint8

const (
	SymbolInvalid SymbolKind = iota
	SymbolFunction
	SymbolStruct
	SymbolEnum
	SymbolVariant
	SymbolInterface
	SymbolField
	SymbolMethod
	SymbolParam
	SymbolVariable
	SymbolImport
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolFunction:
		return "function"
	case SymbolStruct:
		return "struct"
	case SymbolEnum:
		return "enum"
	case SymbolVariant:
		return "variant"
	case SymbolInterface:
		return "interface"
	case SymbolField:
		return "field"
	case SymbolMethod:
		return "method"
	case SymbolParam:
		return "param"
	case SymbolVariable:
		return "variable"
	case SymbolImport:
		return "import"
	default:
		return "invalid"
	}
}

// IsType reports whether the symbol lives in the type namespace.
func (k SymbolKind) IsType() bool {
	return k == SymbolStruct || k == SymbolEnum || k == SymbolInterface
}

// SymbolFlags encode misc attributes for quick checks.
type SymbolFlags uint8

const (
	SymbolFlagMutable SymbolFlags = 1 << iota
	// SymbolFlagDuplicate marks a redeclaration; it is kept in its scope
	// for navigation but is never found by name lookup.
	SymbolFlagDuplicate
)

// Strings returns a slice of textual flag labels.
func (f SymbolFlags) Strings() []string {
	if f == 0 {
		return nil
	}
	labels := make([]string, 0, 2)
	if f&SymbolFlagMutable != 0 {
		labels = append(labels, "mutable")
	}
	if f&SymbolFlagDuplicate != 0 {
		labels = append(labels, "duplicate")
	}
	return labels
}

// Symbol describes a named entity available in a scope.
type Symbol struct {
	Name      source.StringID
	Kind      SymbolKind
	Scope     ScopeID
	Span      source.Span // the declared name
	Decl      source.Span // the whole declaration
	Flags     SymbolFlags
	Type      string // annotation as written, "" when absent
	Signature string
	Doc       string
}

// Ref is one resolved use of a symbol.
type Ref struct {
	Span   source.Span
	Symbol SymbolID
}
