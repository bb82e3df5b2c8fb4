package incr

import "fmt"

// Query is a typed derived computation. Compute receives the argument of
// the key; every Get it issues through q is recorded as a dependency.
type Query[T any] struct {
	Name    string
	Compute func(q *Ctx, arg uint32) (T, error)
	// Equal enables early cutoff: a recomputed value equal to the previous
	// one keeps its stamp, so dependents stay valid.
	Equal func(a, b T) bool
}

// Key returns the cache key of the query applied to arg.
func (d *Query[T]) Key(arg uint32) Key {
	return Key{Query: d.Name, Arg: arg}
}

func (d *Query[T]) entry(g *Graph, arg uint32) *entry {
	return g.entryFor(d.Key(arg), func(e *entry) {
		e.compute = func(q *Ctx, arg uint32) (any, error) {
			return d.Compute(q, arg)
		}
		if d.Equal != nil {
			e.equal = func(a, b any) bool { return d.Equal(a.(T), b.(T)) }
		}
	})
}

// Get returns the value of d(arg) at q's revision and records it as a
// dependency of the computation running in q.
func Get[T any](q *Ctx, d *Query[T], arg uint32) (T, error) {
	e := d.entry(q.graph, arg)
	if e.input {
		panic(&InvariantError{Path: append(append([]Key(nil), q.stack...), e.key), Msg: "derived query reads a key registered as input"})
	}
	v, stamp, err := q.graph.fetch(q, e)
	if err != nil {
		var zero T
		return zero, err
	}
	q.record(e, stamp)
	return v.(T), nil
}

// Untracked returns d(arg) without recording a dependency. A computation
// may use it only for data whose relevant part it already depends on
// through a finer query.
func Untracked[T any](q *Ctx, d *Query[T], arg uint32) (T, error) {
	e := d.entry(q.graph, arg)
	v, _, err := q.graph.fetch(q, e)
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// Input is a typed input slot.
type Input[T any] struct {
	Name  string
	Equal func(a, b T) bool
}

func (in *Input[T]) Key(arg uint32) Key {
	return Key{Query: in.Name, Arg: arg}
}

// Set stores value and returns the revision it was stored at.
func (in *Input[T]) Set(g *Graph, arg uint32, value T) Revision {
	return SetInput(g, in.Key(arg), value, in.Equal)
}

// Read returns the input at q's revision and records the dependency.
func (in *Input[T]) Read(q *Ctx, arg uint32) (T, error) {
	var zero T
	e := q.graph.lookup(in.Key(arg))
	if e == nil {
		return zero, fmt.Errorf("%w: %s", ErrNoInput, in.Key(arg))
	}
	v, stamp, err := q.graph.fetch(q, e)
	if err != nil {
		return zero, err
	}
	q.record(e, stamp)
	return v.(T), nil
}
