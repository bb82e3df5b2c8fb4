// Package incr implements the incremental computation graph behind the
// analysis engine.
//
// A Graph holds inputs (set from outside with SetInput) and derived
// queries (computed on demand by Get). While a derived query runs, every
// Get it issues is recorded as a dependency together with the stamp
// (changedAt revision) of the value it saw. A later Get at a newer
// revision first verifies those dependencies, deepest first, and reruns
// the query only when one of them changed. A query with an Equal function
// gets early cutoff: when its new value equals the old one, its stamp
// stays put and its dependents remain valid without running.
//
// Setting an input only advances the revision; nothing is recomputed until
// somebody asks. A Ctx is bound to the revision it was created at and
// returns ErrCancelled from the next Get once that revision is superseded
// or its context is done.
//
// Dependency cycles and other misuse panic with *InvariantError.
package incr
