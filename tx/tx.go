// Package tx describes conditional transactions over a key-value store.
package tx

import (
	"github.com/tarantool/go-revision/operation"
	"github.com/tarantool/go-revision/predicate"
)

// Tx is a transaction builder: If guards, Then and Else branches, Commit.
type Tx interface {
	// If sets the predicates; an empty list always holds.
	If(predicates ...predicate.Predicate) Tx
	// Then sets the operations run when every predicate holds.
	Then(operations ...operation.Operation) Tx
	// Else sets the operations run otherwise.
	Else(operations ...operation.Operation) Tx
	// Commit atomically evaluates the predicates and runs one branch.
	Commit() (Response, error)
}
