// Package store puts revisioned records into a transactional key-value
// driver. Storage wraps a driver with a transaction builder and range
// queries; Typed adds typed values protected by digests and signatures.
package store

import (
	"context"
	"fmt"

	"github.com/tarantool/go-option"

	"github.com/tarantool/go-revision/driver"
	"github.com/tarantool/go-revision/internal/options"
	"github.com/tarantool/go-revision/kv"
	"github.com/tarantool/go-revision/operation"
	"github.com/tarantool/go-revision/predicate"
	txPkg "github.com/tarantool/go-revision/tx"
)

// rangeOptions contains configuration options for range operations.
type rangeOptions struct {
	prefix string
	limit  int
}

// RangeOption configures Storage.Range.
type RangeOption = options.Callback[rangeOptions]

// WithPrefix limits a range to keys starting with prefix.
func WithPrefix(prefix string) RangeOption {
	return func(opts *rangeOptions) {
		opts.prefix = prefix
	}
}

// WithLimit returns at most limit pairs. Zero means no limit.
func WithLimit(limit int) RangeOption {
	return func(opts *rangeOptions) {
		opts.limit = limit
	}
}

// Storage is the main interface for key-value storage operations.
type Storage interface {
	// Tx creates a new transaction.
	// The context manages timeouts and cancellation for the transaction.
	Tx(ctx context.Context) txPkg.Tx

	// Range returns the pairs under a prefix in key order.
	// Options:
	//   - WithPrefix: filter keys by prefix
	//   - WithLimit: limit the number of results returned
	Range(ctx context.Context, opts ...RangeOption) ([]kv.KeyValue, error)
}

// storage is the concrete implementation of the Storage interface.
type storage struct {
	driver driver.Driver
}

// New creates a Storage over the driver.
func New(driver driver.Driver) Storage {
	return &storage{
		driver: driver,
	}
}

// Tx implements the Storage interface for transaction creation.
func (s storage) Tx(ctx context.Context) txPkg.Tx {
	return newTx(ctx, s.driver)
}

// Range implements the Storage interface for range queries.
func (s storage) Range(ctx context.Context, opts ...RangeOption) ([]kv.KeyValue, error) {
	cfg := options.Apply(nil, opts)

	resp, err := s.Tx(ctx).
		Then(operation.Get([]byte(cfg.prefix), operation.WithPrefix())).
		Commit()
	if err != nil {
		return nil, fmt.Errorf("range %q failed: %w", cfg.prefix, err)
	}

	pairs := flatten(resp)
	if cfg.limit > 0 && len(pairs) > cfg.limit {
		pairs = pairs[:cfg.limit]
	}

	return pairs, nil
}

func flatten(response txPkg.Response) []kv.KeyValue {
	kvs := make([]kv.KeyValue, 0, len(response.Results))
	for _, r := range response.Results {
		kvs = append(kvs, r.Values...)
	}

	return kvs
}

// tx is the internal implementation of the Tx interface.
type tx struct {
	driver driver.Driver
	ctx    context.Context //nolint:containedctx // Context is stored for transaction execution

	predicates option.Generic[[]predicate.Predicate]
	thenOps    option.Generic[[]operation.Operation]
	elseOps    option.Generic[[]operation.Operation]
}

// newTx creates a new transaction builder with the given driver and context.
func newTx(ctx context.Context, driver driver.Driver) txPkg.Tx {
	return &tx{
		driver:     driver,
		ctx:        ctx,
		predicates: option.None[[]predicate.Predicate](),
		thenOps:    option.None[[]operation.Operation](),
		elseOps:    option.None[[]operation.Operation](),
	}
}

// If sets the transaction condition. An empty list always holds.
// It panics when called twice or after Then or Else.
func (tb *tx) If(predicates ...predicate.Predicate) txPkg.Tx {
	if tb.predicates.IsSome() {
		panic("predicates are already set")
	} else if tb.thenOps.IsSome() || tb.elseOps.IsSome() {
		panic("If can only be called before Then/Else")
	}

	tb.predicates = option.Some(predicates)

	return tb
}

// Then sets the operations run when the predicates hold.
// It panics when called twice or after Else.
func (tb *tx) Then(operations ...operation.Operation) txPkg.Tx {
	if tb.thenOps.IsSome() {
		panic("then operations are already set")
	} else if tb.elseOps.IsSome() {
		panic("Then can only be called before Else")
	}

	tb.thenOps = option.Some(operations)

	return tb
}

// Else sets the operations run when a predicate fails.
func (tb *tx) Else(operations ...operation.Operation) txPkg.Tx {
	if tb.elseOps.IsSome() {
		panic("else operations are already set")
	}

	tb.elseOps = option.Some(operations)

	return tb
}

// Commit atomically executes the transaction by delegating to the driver.
func (tb *tx) Commit() (txPkg.Response, error) {
	resp, err := tb.driver.Execute(
		tb.ctx,
		tb.predicates.UnwrapOr(nil),
		tb.thenOps.UnwrapOr(nil),
		tb.elseOps.UnwrapOr(nil),
	)
	if err != nil {
		return txPkg.Response{}, fmt.Errorf("tx execute failed: %w", err)
	}

	return resp, nil
}
