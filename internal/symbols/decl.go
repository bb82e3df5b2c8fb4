package symbols

import (
	"kymera/internal/diag"
	"kymera/internal/source"
)

// TargetKind says how a reference inside a declaration finds its symbol.
type TargetKind uint8

const (
	TargetNone   TargetKind = iota
	TargetLocal             // Index is a local symbol of the same declaration
	TargetModule            // Decl is the index entry of a top-level declaration
	TargetMember            // Index is member Index of declaration Decl
)

// Target is a position independent symbol reference.
type Target struct {
	Kind  TargetKind
	Decl  uint32
	Index uint32 // 1-based local symbol
}

// LocalScope is a scope created by one declaration. Parent 0 is the module
// scope; other parents are 1-based local scope indices.
type LocalScope struct {
	Kind   ScopeKind
	Parent uint32
	Span   source.Span
}

// LocalRef is a resolved use inside one declaration.
type LocalRef struct {
	Span   source.Span
	Target Target
}

// DeclResult is the resolution of one top-level declaration. Every span is
// relative to the start of the declaration, so the result stays equal when
// the declaration only moves. Symbol.Scope holds a 1-based local scope
// index. Members (fields, variants, methods) are always the first symbols.
type DeclResult struct {
	Scopes  []LocalScope
	Symbols []Symbol
	Refs    []LocalRef
	Diags   []diag.Diagnostic
}
