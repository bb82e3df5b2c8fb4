package trace

import "time"

// Kind represents the type of trace event.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindPoint
	KindHeartbeat
)

func (k Kind) String() string {
	switch k {
	case KindSpanBegin:
		return "begin"
	case KindSpanEnd:
		return "end"
	case KindPoint:
		return "point"
	case KindHeartbeat:
		return "heartbeat"
	default:
		return "unknown"
	}
}

// Scope indicates the granularity of an event. Lower values are coarser.
type Scope uint8

const (
	ScopeEngine   Scope = iota + 1 // store and CLI operations
	ScopeDocument                  // one document: lex, parse, resolve
	ScopeQuery                     // graph recomputations and editor queries
	ScopeNode                      // per-declaration work
)

func (s Scope) String() string {
	switch s {
	case ScopeEngine:
		return "engine"
	case ScopeDocument:
		return "document"
	case ScopeQuery:
		return "query"
	case ScopeNode:
		return "node"
	default:
		return "unknown"
	}
}

// Where ties an event to the document work it belongs to. The zero value
// means engine-wide.
type Where struct {
	URI      string
	Revision uint64 // graph revision the work is bound to
	Key      string // incremental query key, e.g. "ResolveDecl#3"
}

// merge fills the unset fields of w from outer.
func (w Where) merge(outer Where) Where {
	if w.URI == "" {
		w.URI = outer.URI
	}
	if w.Revision == 0 {
		w.Revision = outer.Revision
	}
	if w.Key == "" {
		w.Key = outer.Key
	}
	return w
}

type Event struct {
	Time     time.Time
	Seq      uint64 // assigned by the sink that records the event
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64 // 0 for roots
	Name     string // e.g. "parse", "incr:ResolveDecl#3"
	Detail   string
	Where    Where
	Elapsed  time.Duration // span ends only
	Extra    map[string]string
}
