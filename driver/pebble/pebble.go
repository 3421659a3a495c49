// Package pebble provides an embedded, durable implementation of the storage
// driver interface on top of a Pebble database.
package pebble

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/cockroachdb/pebble"
	"github.com/tarantool/go-option"

	"github.com/tarantool/go-revision/driver"
	"github.com/tarantool/go-revision/kv"
	"github.com/tarantool/go-revision/operation"
	"github.com/tarantool/go-revision/predicate"
	"github.com/tarantool/go-revision/tx"
)

// Layout of the database:
//
//	0x00 "revision" -> [u64 LE next store revision]
//	0x01 <key>      -> [u64 LE mod revision][value]
var (
	revisionKey = []byte("\x00revision")
	dataPrefix  = []byte{0x01}
)

const revisionSize = 8

// ErrCorruptValue is returned when a stored pair is shorter than its header.
var ErrCorruptValue = errors.New("stored value is shorter than its revision header")

// Driver executes transactions as indexed Pebble batches. Transactions are
// serialized by a mutex, so predicates observe every committed write.
type Driver struct {
	db       *pebble.DB
	mu       sync.Mutex
	revision int64
}

var _ driver.Driver = &Driver{} //nolint:exhaustruct

// Open opens or creates a database in dir.
func Open(dir string, opts ...Option) (*Driver, error) {
	cfg := applyOptions(opts)

	db, err := pebble.Open(dir, cfg.pebbleOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open pebble database %q: %w", dir, err)
	}

	revision, err := loadRevision(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Driver{db: db, mu: sync.Mutex{}, revision: revision}, nil
}

func loadRevision(db *pebble.DB) (int64, error) {
	raw, closer, err := db.Get(revisionKey)
	switch {
	case errors.Is(err, pebble.ErrNotFound):
		return 1, nil
	case err != nil:
		return 0, fmt.Errorf("failed to read store revision: %w", err)
	}
	defer closer.Close()

	if len(raw) != revisionSize {
		return 0, fmt.Errorf("%w: revision key has %d bytes", ErrCorruptValue, len(raw))
	}

	return int64(binary.LittleEndian.Uint64(raw)), nil //nolint:gosec
}

// Close flushes and closes the database.
func (d *Driver) Close() error {
	if err := d.db.Close(); err != nil {
		return fmt.Errorf("failed to close pebble database: %w", err)
	}

	return nil
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

	batch := d.db.NewIndexedBatch()
	defer batch.Close()

	success, err := d.check(batch, predicates)
	if err != nil {
		return tx.Response{}, err
	}

	ops := elseOps
	if success {
		ops = thenOps
	}

	results := make([]tx.RequestResponse, 0, len(ops))
	changed := false

	for _, op := range ops {
		values, mutated, err := d.apply(batch, op)
		if err != nil {
			return tx.Response{}, fmt.Errorf("failed to execute %s %q: %w", op.Type(), op.Key(), err)
		}

		changed = changed || mutated

		results = append(results, tx.RequestResponse{Values: values})
	}

	if changed {
		var next [revisionSize]byte
		binary.LittleEndian.PutUint64(next[:], uint64(d.revision+1)) //nolint:gosec

		if err := batch.Set(revisionKey, next[:], nil); err != nil {
			return tx.Response{}, fmt.Errorf("failed to bump store revision: %w", err)
		}

		if err := batch.Commit(pebble.Sync); err != nil {
			return tx.Response{}, fmt.Errorf("failed to commit transaction: %w", err)
		}

		d.revision++
	}

	return tx.Response{Succeeded: success, Results: results}, nil
}

func (d *Driver) check(batch *pebble.Batch, predicates []predicate.Predicate) (bool, error) {
	for _, pred := range predicates {
		current, err := get(batch, pred.Key())
		if err != nil {
			return false, err
		}

		ok, err := predicate.Evaluate(pred, current)
		if err != nil {
			return false, fmt.Errorf("failed to evaluate predicates: %w", err)
		}

		if !ok {
			return false, nil
		}
	}

	return true, nil
}

func (d *Driver) apply(batch *pebble.Batch, op operation.Operation) ([]kv.KeyValue, bool, error) {
	switch op.Type() {
	case operation.TypeGet:
		values, err := matching(batch, op)
		return values, false, err
	case operation.TypePut:
		stored := make([]byte, revisionSize+len(op.Value()))
		binary.LittleEndian.PutUint64(stored, uint64(d.revision)) //nolint:gosec
		copy(stored[revisionSize:], op.Value())

		return nil, true, batch.Set(dataKey(op.Key()), stored, nil)
	case operation.TypeDelete:
		values, err := matching(batch, op)
		if err != nil {
			return nil, false, err
		}

		for _, pair := range values {
			if err := batch.Delete(dataKey(pair.Key), nil); err != nil {
				return nil, false, err
			}
		}

		return values, len(values) > 0, nil
	default:
		return nil, false, fmt.Errorf("unsupported operation type %d", int(op.Type()))
	}
}

func dataKey(key []byte) []byte {
	return append(bytes.Clone(dataPrefix), key...)
}

func decode(key, stored []byte) (kv.KeyValue, error) {
	if len(stored) < revisionSize {
		return kv.KeyValue{}, fmt.Errorf("%w: %q", ErrCorruptValue, key)
	}

	return kv.KeyValue{
		Key:         bytes.Clone(key),
		Value:       bytes.Clone(stored[revisionSize:]),
		ModRevision: int64(binary.LittleEndian.Uint64(stored)), //nolint:gosec
	}, nil
}

type reader interface {
	Get(key []byte) ([]byte, io.Closer, error)
	NewIter(o *pebble.IterOptions) (*pebble.Iterator, error)
}

func get(r reader, key []byte) (option.Generic[kv.KeyValue], error) {
	stored, closer, err := r.Get(dataKey(key))
	switch {
	case errors.Is(err, pebble.ErrNotFound):
		return option.None[kv.KeyValue](), nil
	case err != nil:
		return option.None[kv.KeyValue](), fmt.Errorf("failed to read %q: %w", key, err)
	}
	defer closer.Close()

	pair, err := decode(key, stored)
	if err != nil {
		return option.None[kv.KeyValue](), err
	}

	return option.Some(pair), nil
}

func matching(r reader, op operation.Operation) ([]kv.KeyValue, error) {
	if !op.IsPrefix() {
		pair, err := get(r, op.Key())
		if err != nil {
			return nil, err
		}

		if value, ok := pair.Get(); ok {
			return []kv.KeyValue{value}, nil
		}

		return nil, nil
	}

	lower := dataKey(op.Key())

	iter, err := r.NewIter(&pebble.IterOptions{
		LowerBound: lower,
		UpperBound: upperBound(lower),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate %q: %w", op.Key(), err)
	}
	defer iter.Close()

	var out []kv.KeyValue

	for valid := iter.First(); valid; valid = iter.Next() {
		pair, err := decode(iter.Key()[len(dataPrefix):], iter.Value())
		if err != nil {
			return nil, err
		}

		out = append(out, pair)
	}

	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("failed to iterate %q: %w", op.Key(), err)
	}

	return out, nil
}

// upperBound returns the smallest key greater than every key with the prefix.
func upperBound(prefix []byte) []byte {
	end := bytes.Clone(prefix)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}

	return nil
}
