package diag

import (
	"slices"
)

// Bag collects diagnostics up to a limit. A limit of 0 means unlimited.
type Bag struct {
	items []Diagnostic
	max   int
}

func NewBag(max int) *Bag {
	if max < 0 {
		max = 0
	}
	return &Bag{max: max}
}

// Add appends d unless the limit is reached; it reports whether d was kept.
func (b *Bag) Add(d Diagnostic) bool {
	if b.max > 0 && len(b.items) >= b.max {
		return false
	}
	b.items = append(b.items, d)
	return true
}

// AddAll adds every diagnostic until the limit is hit.
func (b *Bag) AddAll(ds []Diagnostic) {
	for _, d := range ds {
		if !b.Add(d) {
			return
		}
	}
}

func (b *Bag) Cap() int {
	return b.max
}

// HasErrors reports whether any diagnostic is an error.
func (b *Bag) HasErrors() bool {
	for i := range b.items {
		if b.items[i].Severity >= SevError {
			return true
		}
	}
	return false
}

// HasWarnings reports whether any diagnostic is at least a warning.
func (b *Bag) HasWarnings() bool {
	for i := range b.items {
		if b.items[i].Severity >= SevWarning {
			return true
		}
	}
	return false
}

func (b *Bag) Len() int {
	return len(b.items)
}

// Items returns the backing slice. Callers must not modify it.
func (b *Bag) Items() []Diagnostic {
	return b.items
}

// Merge appends other's items, raising the limit if needed.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	if b.max > 0 && len(b.items)+len(other.items) > b.max {
		b.max = len(b.items) + len(other.items)
	}
	b.items = append(b.items, other.items...)
}

// Sort orders by start, end, severity (desc), code.
func (b *Bag) Sort() {
	SortDiagnostics(b.items)
}

// Dedup drops diagnostics with the same code, span and message.
func (b *Bag) Dedup() {
	b.items = Dedup(b.items)
}

// SortDiagnostics sorts ds in place in the canonical order.
func SortDiagnostics(ds []Diagnostic) {
	slices.SortStableFunc(ds, func(di, dj Diagnostic) int {
		switch {
		case di.Primary.Start != dj.Primary.Start:
			return cmpU32(di.Primary.Start, dj.Primary.Start)
		case di.Primary.End != dj.Primary.End:
			return cmpU32(di.Primary.End, dj.Primary.End)
		case di.Severity != dj.Severity:
			return int(dj.Severity) - int(di.Severity)
		default:
			return int(di.Code) - int(dj.Code)
		}
	})
}

type dedupKey struct {
	code       Code
	start, end uint32
	msg        string
}

// Dedup returns ds without repeated (code, span, message) entries,
// keeping the first occurrence.
func Dedup(ds []Diagnostic) []Diagnostic {
	seen := make(map[dedupKey]struct{}, len(ds))
	out := ds[:0:0]
	for _, d := range ds {
		key := dedupKey{code: d.Code, start: d.Primary.Start, end: d.Primary.End, msg: d.Message}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, d)
	}
	return out
}

func cmpU32(a, b uint32) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
