package source

import (
	"sync"

	"golang.org/x/text/unicode/norm"
)

// The name table is the process-wide interner for identifiers. It must be
// set up with InitNames before any document is analyzed and released with
// ShutdownNames when the host exits. Using it uninitialized is a bug and
// panics rather than silently creating a table.
var names struct {
	mu  sync.RWMutex
	tab *Interner
}

// InitNames creates the process-wide name table. Calling it again while a
// table is live keeps the existing table.
func InitNames() {
	names.mu.Lock()
	defer names.mu.Unlock()
	if names.tab == nil {
		names.tab = NewInterner()
	}
}

// ShutdownNames drops the process-wide name table.
func ShutdownNames() {
	names.mu.Lock()
	names.tab = nil
	names.mu.Unlock()
}

// NamesReady reports whether InitNames has been called.
func NamesReady() bool {
	names.mu.RLock()
	defer names.mu.RUnlock()
	return names.tab != nil
}

// InternName interns an identifier after NFC normalization, so that
// canonically equivalent spellings share one id.
func InternName(s string) StringID {
	if !norm.NFC.IsNormalString(s) {
		s = norm.NFC.String(s)
	}

	names.mu.RLock()
	tab := names.tab
	if tab == nil {
		names.mu.RUnlock()
		panic("source: name table used before InitNames")
	}
	id, ok := tab.index[s]
	names.mu.RUnlock()
	if ok {
		return id
	}

	names.mu.Lock()
	defer names.mu.Unlock()
	if names.tab == nil {
		panic("source: name table used before InitNames")
	}
	return names.tab.Intern(s)
}

// Name returns the identifier for id, or "" for unknown ids.
func Name(id StringID) string {
	names.mu.RLock()
	defer names.mu.RUnlock()
	if names.tab == nil {
		panic("source: name table used before InitNames")
	}
	s, _ := names.tab.Lookup(id)
	return s
}
