package incr

import (
	"errors"
	"strings"
)

var (
	// ErrCancelled is returned by Get when the query's context is done or
	// its revision was superseded by an edit.
	ErrCancelled = errors.New("incr: query cancelled")
	// ErrNoInput is returned when an input is read before it was set.
	ErrNoInput = errors.New("incr: input not set")
)

// InvariantError is a logic defect in the engine or in a query definition.
// It is raised with panic and carries the key path that led to it.
type InvariantError struct {
	Path []Key
	Msg  string
}

func (e *InvariantError) Error() string {
	parts := make([]string, len(e.Path))
	for i, k := range e.Path {
		parts[i] = k.String()
	}
	return "incr: invariant violated: " + e.Msg + " [" + strings.Join(parts, " -> ") + "]"
}

// Invariant panics with an InvariantError rooted at q's current key path.
func Invariant(q *Ctx, msg string) {
	panic(&InvariantError{Path: append([]Key(nil), q.stack...), Msg: msg})
}
