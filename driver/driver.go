// Package driver defines the interface of durable key-value stores
// that records are written to.
package driver

import (
	"context"

	"github.com/tarantool/go-revision/operation"
	"github.com/tarantool/go-revision/predicate"
	"github.com/tarantool/go-revision/tx"
)

// Driver is the interface that storage drivers must implement.
type Driver interface {
	// Execute atomically evaluates predicates and runs thenOps if every
	// predicate holds, elseOps otherwise.
	Execute(
		ctx context.Context,
		predicates []predicate.Predicate,
		thenOps []operation.Operation,
		elseOps []operation.Operation,
	) (tx.Response, error)
}
