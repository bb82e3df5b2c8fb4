package symbols

import (
	"kymera/internal/source"
)

// ScopeKind enumerates supported scope categories.
type ScopeKind uint8

const (
	ScopeInvalid   ScopeKind = iota
	ScopeModule              // top-level declarations of one document
	ScopeStruct              // fields
	ScopeEnum                // variants
	ScopeImpl                // methods of an imp block
	ScopeInterface           // method signatures of an ifz block
	ScopeFunction            // parameters
	ScopeBlock               // block locals
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeModule:
		return "module"
	case ScopeStruct:
		return "struct"
	case ScopeEnum:
		return "enum"
	case ScopeImpl:
		return "impl"
	case ScopeInterface:
		return "interface"
	case ScopeFunction:
		return "function"
	case ScopeBlock:
		return "block"
	default:
		return "invalid"
	}
}

// Sequential reports whether names in the scope are visible only after
// their declaration. Member scopes allow forward references.
func (k ScopeKind) Sequential() bool {
	return k == ScopeFunction || k == ScopeBlock
}

// Scope models a lexical scope with a parent-child hierarchy.
type Scope struct {
	Kind      ScopeKind
	Parent    ScopeID
	Span      source.Span
	NameIndex map[source.StringID][]SymbolID
	Symbols   []SymbolID
	Children  []ScopeID
}
