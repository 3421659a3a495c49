package store

import (
	"github.com/tarantool/go-option"
)

// Result is a record read back from the store.
type Result[T any] struct {
	// Name is the record name, without the store prefix.
	Name string
	// Value is set when the record decoded, even if verification failed.
	Value option.Generic[T]
	// Revision is the revision the record was written with, when the
	// marshaller writes a revision header.
	Revision option.Generic[uint16]
	// ModRevision is the store revision of the last write of the record.
	ModRevision int64
	// Error holds the verification failures, a *ValidationError.
	Error error
}
