// Package memory provides an in-memory implementation of the storage driver
// interface for tests and for tools that do not need durability.
package memory

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/tarantool/go-option"

	"github.com/tarantool/go-revision/driver"
	"github.com/tarantool/go-revision/kv"
	"github.com/tarantool/go-revision/operation"
	"github.com/tarantool/go-revision/predicate"
	"github.com/tarantool/go-revision/tx"
)

// Driver keeps pairs in a map. Every transaction that changes something
// bumps the store revision by one.
type Driver struct {
	mu       sync.Mutex
	pairs    map[string]kv.KeyValue
	revision int64
}

var _ driver.Driver = &Driver{} //nolint:exhaustruct

// New creates an empty store at revision 1.
func New() *Driver {
	return &Driver{
		mu:       sync.Mutex{},
		pairs:    make(map[string]kv.KeyValue),
		revision: 1,
	}
}

// Revision returns the revision the next write will be stored with.
func (d *Driver) Revision() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.revision
}

// Execute implements driver.Driver.
func (d *Driver) Execute(
	ctx context.Context,
	predicates []predicate.Predicate,
	thenOps []operation.Operation,
	elseOps []operation.Operation,
) (tx.Response, error) {
	if err := ctx.Err(); err != nil {
		return tx.Response{}, fmt.Errorf("transaction failed: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	success, err := d.check(predicates)
	if err != nil {
		return tx.Response{}, fmt.Errorf("failed to evaluate predicates: %w", err)
	}

	ops := elseOps
	if success {
		ops = thenOps
	}

	return tx.Response{
		Succeeded: success,
		Results:   d.apply(ops),
	}, nil
}

func (d *Driver) check(predicates []predicate.Predicate) (bool, error) {
	for _, pred := range predicates {
		current := option.None[kv.KeyValue]()
		if pair, ok := d.pairs[string(pred.Key())]; ok {
			current = option.Some(pair)
		}

		ok, err := predicate.Evaluate(pred, current)
		if err != nil || !ok {
			return false, err
		}
	}

	return true, nil
}

func (d *Driver) matching(op operation.Operation) []kv.KeyValue {
	if !op.IsPrefix() {
		if pair, ok := d.pairs[string(op.Key())]; ok {
			return []kv.KeyValue{clone(pair)}
		}

		return nil
	}

	var out []kv.KeyValue

	for key, pair := range d.pairs {
		if strings.HasPrefix(key, string(op.Key())) {
			out = append(out, clone(pair))
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i].Key, out[j].Key) < 0
	})

	return out
}

// clone detaches a returned pair from the stored one.
func clone(pair kv.KeyValue) kv.KeyValue {
	return kv.KeyValue{
		Key:         bytes.Clone(pair.Key),
		Value:       bytes.Clone(pair.Value),
		ModRevision: pair.ModRevision,
	}
}

func (d *Driver) apply(ops []operation.Operation) []tx.RequestResponse {
	results := make([]tx.RequestResponse, 0, len(ops))
	changed := false

	for _, op := range ops {
		var values []kv.KeyValue

		switch op.Type() {
		case operation.TypeGet:
			values = d.matching(op)
		case operation.TypePut:
			d.pairs[string(op.Key())] = kv.KeyValue{
				Key:         bytes.Clone(op.Key()),
				Value:       bytes.Clone(op.Value()),
				ModRevision: d.revision,
			}
			changed = true
		case operation.TypeDelete:
			values = d.matching(op)
			for _, pair := range values {
				delete(d.pairs, string(pair.Key))
			}

			changed = changed || len(values) > 0
		}

		results = append(results, tx.RequestResponse{Values: values})
	}

	if changed {
		d.revision++
	}

	return results
}
