package ast

import (
	"kymera/internal/source"
)

// File is the root of one parse: the top-level declarations in source
// order. Impl and interface methods are reachable through their owner
// item, not through Items.
type File struct {
	Span  source.Span
	Items []ItemID
}
