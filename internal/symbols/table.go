package symbols

import (
	"fmt"
	"sort"

	"fortio.org/safecast"

	"kymera/internal/source"
)

// Hints provide optional capacity suggestions for the symbol table arenas.
type Hints struct{ Scopes, Symbols uint }

// Table is the resolved view of one document revision. It is immutable
// once published.
type Table struct {
	Scopes  *Scopes
	Symbols *Symbols
	Refs    []Ref // sorted by span start
	Module  ScopeID
}

// NewTable builds a fresh table with optional capacity hints.
func NewTable(h Hints) *Table {
	scopeCap, err := safecast.Conv[uint32](h.Scopes)
	if err != nil {
		panic(fmt.Errorf("scope capacity overflow: %w", err))
	}
	symCap, err := safecast.Conv[uint32](h.Symbols)
	if err != nil {
		panic(fmt.Errorf("symbol capacity overflow: %w", err))
	}
	return &Table{
		Scopes:  NewScopes(scopeCap),
		Symbols: NewSymbols(symCap),
	}
}

// Declare installs sym into its scope. Duplicates are listed in the scope
// but left out of the name index.
func (t *Table) Declare(sym *Symbol) SymbolID {
	id := t.Symbols.New(sym)
	if scope := t.Scopes.Get(sym.Scope); scope != nil {
		scope.Symbols = append(scope.Symbols, id)
		if sym.Flags&SymbolFlagDuplicate == 0 {
			scope.NameIndex[sym.Name] = append(scope.NameIndex[sym.Name], id)
		}
	}
	return id
}

// Lookup walks the scope chain from scope outward and returns the first
// symbol named name; within a scope the latest declaration wins.
func (t *Table) Lookup(scope ScopeID, name source.StringID) (SymbolID, bool) {
	for scope.IsValid() {
		s := t.Scopes.Get(scope)
		if s == nil {
			break
		}
		if ids := s.NameIndex[name]; len(ids) > 0 {
			return ids[len(ids)-1], true
		}
		scope = s.Parent
	}
	return NoSymbolID, false
}

// ScopeAt returns the innermost scope whose span contains off.
func (t *Table) ScopeAt(off uint32) ScopeID {
	best := t.Module
	for idx := 1; idx < len(t.Scopes.data); idx++ {
		s := &t.Scopes.data[idx]
		if s.Kind == ScopeModule || !s.Span.Contains(off) {
			continue
		}
		// children are allocated after their parents, so the last match is the innermost
		best = ScopeID(idx) // #nosec G115 -- bounded by the arena
	}
	return best
}

// SymbolAt returns the symbol referenced or declared at off.
func (t *Table) SymbolAt(off uint32) (SymbolID, bool) {
	occ, ok := t.OccurrenceAt(off)
	return occ.Symbol, ok
}

// OccurrenceAt returns the reference or declaration name under off.
// References win over declarations.
func (t *Table) OccurrenceAt(off uint32) (Ref, bool) {
	i := sort.Search(len(t.Refs), func(i int) bool { return t.Refs[i].Span.End >= off })
	for ; i < len(t.Refs) && t.Refs[i].Span.Start <= off; i++ {
		if t.Refs[i].Span.Contains(off) {
			return t.Refs[i], true
		}
	}
	for idx := 1; idx < len(t.Symbols.data); idx++ {
		sym := &t.Symbols.data[idx]
		if !sym.Span.Empty() && sym.Span.Contains(off) {
			return Ref{Span: sym.Span, Symbol: SymbolID(idx)}, true // #nosec G115 -- bounded by the arena
		}
	}
	return Ref{}, false
}

// RefsTo returns every use of id in source order.
func (t *Table) RefsTo(id SymbolID) []Ref {
	var out []Ref
	for _, r := range t.Refs {
		if r.Symbol == id {
			out = append(out, r)
		}
	}
	return out
}

// Visible is a symbol visible from some position with its scope distance
// (0 = innermost scope).
type Visible struct {
	Symbol SymbolID
	Depth  int
}

// VisibleAt lists symbols visible at off, innermost first. Shadowed names
// are skipped, and locals of sequential scopes declared after off are
// hidden.
func (t *Table) VisibleAt(off uint32) []Visible {
	seen := make(map[source.StringID]struct{})
	var out []Visible
	depth := 0
	for scope := t.ScopeAt(off); scope.IsValid(); depth++ {
		s := t.Scopes.Get(scope)
		if s == nil {
			break
		}
		for i := len(s.Symbols) - 1; i >= 0; i-- {
			id := s.Symbols[i]
			sym := t.Symbols.Get(id)
			if sym.Flags&SymbolFlagDuplicate != 0 {
				continue
			}
			if s.Kind.Sequential() && sym.Span.Start > off {
				continue
			}
			if _, ok := seen[sym.Name]; ok {
				continue
			}
			seen[sym.Name] = struct{}{}
			out = append(out, Visible{Symbol: id, Depth: depth})
		}
		scope = s.Parent
	}
	return out
}
