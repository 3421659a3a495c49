// Package tcs provides a Tarantool config storage driver implementation.
// Transactions are sent as a single call of the storage transaction function
// (config.storage.txn by default) through any tarantool.Doer.
package tcs

import (
	"context"
	"errors"
	"fmt"

	"github.com/tarantool/go-tarantool/v2"
	"github.com/tarantool/go-tarantool/v2/pool"
	"go.uber.org/zap"

	"github.com/tarantool/go-revision/driver"
	goOperation "github.com/tarantool/go-revision/operation"
	goPredicate "github.com/tarantool/go-revision/predicate"
	"github.com/tarantool/go-revision/tx"
)

// Driver is a Tarantool implementation of the storage driver interface.
type Driver struct {
	doer     tarantool.Doer
	closer   func() error
	logger   *zap.Logger
	function string
}

var (
	_ driver.Driver = &Driver{} //nolint:exhaustruct

	// ErrUnexpectedResponse is returned when the response from tarantool has unexpected format.
	ErrUnexpectedResponse = errors.New("unexpected response from tarantool")
)

// New creates a driver over an established connection, pool adapter or mock.
// The doer stays owned by the caller.
func New(doer tarantool.Doer, opts ...Option) *Driver {
	cfg := applyOptions(opts)

	return &Driver{
		doer:     doer,
		closer:   func() error { return nil },
		logger:   cfg.logger,
		function: cfg.function,
	}
}

// Connect opens a pool over addrs and routes every transaction to a
// writable instance. The pool is closed by Close.
func Connect(ctx context.Context, addrs []string, opts ...Option) (*Driver, error) {
	cfg := applyOptions(opts)

	connPool, err := pool.Connect(ctx, cfg.instances(addrs))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to tarantool pool: %w", err)
	}

	adapter := pool.NewConnectorAdapter(connPool, pool.RW)

	return &Driver{
		doer:     adapter,
		closer:   adapter.Close,
		logger:   cfg.logger,
		function: cfg.function,
	}, nil
}

// Close releases the pool opened by Connect.
func (d *Driver) Close() error {
	if err := d.closer(); err != nil {
		return fmt.Errorf("failed to close tarantool pool: %w", err)
	}

	return nil
}

// Execute executes a transactional operation with conditional logic.
// It processes predicates to determine whether to execute thenOps or elseOps.
func (d *Driver) Execute(
	ctx context.Context,
	predicates []goPredicate.Predicate,
	thenOps []goOperation.Operation,
	elseOps []goOperation.Operation,
) (tx.Response, error) {
	txnArg, err := newTxnRequest(predicates, thenOps, elseOps)
	if err != nil {
		return tx.Response{}, err
	}

	req := tarantool.NewCallRequest(d.function).
		Args([]any{txnArg}).Context(ctx)

	var result []txnReply

	switch err := d.doer.Do(req).GetTyped(&result); {
	case err != nil:
		return tx.Response{}, fmt.Errorf("failed to execute transaction: %w", err)
	case len(result) != 1:
		return tx.Response{}, fmt.Errorf("%w: expected 1 response, got %d", ErrUnexpectedResponse, len(result))
	}

	d.logger.Debug("tarantool transaction committed",
		zap.String("function", d.function),
		zap.Bool("succeeded", result[0].succeeded),
		zap.Int64("revision", result[0].revision))

	return result[0].response(), nil
}
