package docstore

import "errors"

var (
	ErrNotOpen          = errors.New("document is not open")
	ErrAlreadyOpen      = errors.New("document is already open")
	ErrStaleVersion     = errors.New("stale document version")
	ErrTooManyDocuments = errors.New("too many open documents")
	ErrBadRange         = errors.New("edit range out of bounds")
)
