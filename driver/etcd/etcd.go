// Package etcd runs store transactions as etcd Txn requests. Predicates
// become comparisons and key versions map to etcd mod revisions.
package etcd

import (
	"context"
	"errors"
	"fmt"

	etcd "go.etcd.io/etcd/client/v3"
	"go.uber.org/zap"

	"github.com/tarantool/go-revision/driver"
	"github.com/tarantool/go-revision/operation"
	"github.com/tarantool/go-revision/predicate"
	"github.com/tarantool/go-revision/tx"
)

// Client defines the minimal interface needed for etcd operations.
// *etcd.Client satisfies it.
type Client interface {
	// Txn creates a new transaction.
	Txn(ctx context.Context) etcd.Txn
}

// Driver is an etcd implementation of the storage driver interface.
type Driver struct {
	client Client
	closer func() error
	logger *zap.Logger
}

var (
	_ driver.Driver = &Driver{} //nolint:exhaustruct

	errUnsupportedOperationType = errors.New("unsupported operation type")
	errPrefixedPut              = errors.New("put does not accept a prefix")
)

// New creates a new etcd driver instance using an existing etcd client.
// The client stays owned by the caller and is not closed by Close.
func New(client *etcd.Client, opts ...Option) *Driver {
	return NewWithClient(client, opts...)
}

// NewWithClient creates a driver over any Client implementation.
func NewWithClient(client Client, opts ...Option) *Driver {
	cfg := applyOptions(opts)

	return &Driver{
		client: client,
		closer: func() error { return nil },
		logger: cfg.logger,
	}
}

// Connect dials the cluster at endpoints and returns a driver that owns the
// connection. The driver logger is passed to the etcd client as well.
func Connect(endpoints []string, opts ...Option) (*Driver, error) {
	cfg := applyOptions(opts)

	client, err := etcd.New(cfg.clientConfig(endpoints))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to etcd %v: %w", endpoints, err)
	}

	return &Driver{
		client: client,
		closer: client.Close,
		logger: cfg.logger,
	}, nil
}

// Close releases the connection opened by Connect.
func (d *Driver) Close() error {
	if err := d.closer(); err != nil {
		return fmt.Errorf("failed to close etcd client: %w", err)
	}

	return nil
}

// Execute executes a transactional operation with conditional logic.
// It processes predicates to determine whether to execute thenOps or elseOps.
func (d *Driver) Execute(
	ctx context.Context,
	predicates []predicate.Predicate,
	thenOps []operation.Operation,
	elseOps []operation.Operation,
) (tx.Response, error) {
	cmps, err := convertAll(predicates, toCmp)
	if err != nil {
		return tx.Response{}, fmt.Errorf("failed to convert predicates: %w", err)
	}

	thenReqs, err := convertAll(thenOps, toOp)
	if err != nil {
		return tx.Response{}, fmt.Errorf("failed to convert then operations: %w", err)
	}

	elseReqs, err := convertAll(elseOps, toOp)
	if err != nil {
		return tx.Response{}, fmt.Errorf("failed to convert else operations: %w", err)
	}

	resp, err := d.client.Txn(ctx).If(cmps...).Then(thenReqs...).Else(elseReqs...).Commit()
	if err != nil {
		return tx.Response{}, fmt.Errorf("transaction failed: %w", err)
	}

	d.logger.Debug("etcd transaction committed",
		zap.Bool("succeeded", resp.Succeeded),
		zap.Int64("revision", resp.Header.GetRevision()),
		zap.Int("results", len(resp.Responses)))

	return fromTxnResponse(resp), nil
}
