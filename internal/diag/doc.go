// Package diag defines the diagnostic model shared by the lexer, parser and
// resolver.
//
// Diagnostic is the central record:
//
//   - Severity: Info, Warning or Error.
//   - Code: compact numeric id (codes.go) with a stable string form (LEX1001,
//     SYN2001, SEM3002). The thousands digit is the category: 1 and 2 are
//     syntax, 3 is semantic.
//   - Message: short, actionable text.
//   - Primary: the byte span the problem is attached to.
//   - Notes: secondary spans, e.g. "previous declaration here".
//
// Producers emit through a Reporter so they stay decoupled from storage;
// ReportError(...).WithNote(...).Emit() covers the common case. Bag is the
// sorted, deduplicated, optionally limited collection that the query layer
// hands out. Rendering lives in internal/diagfmt.
//
// Diagnostics carry no document identity. Each one belongs to the document
// revision whose analysis produced it, and the document store hands them out
// only together with that revision.
package diag
