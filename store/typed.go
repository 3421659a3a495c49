package store

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/tarantool/go-revision/internal/options"
	"github.com/tarantool/go-revision/operation"
	"github.com/tarantool/go-revision/predicate"
)

// Typed stores named values of type T with integrity protection.
// See Builder for configuration.
type Typed[T any] struct {
	base      Storage
	logger    *zap.Logger
	integrity integrity[T]
}

// Predicate guards a Put or Delete. It is bound to the record's value key
// when the transaction is built.
type Predicate func(key []byte) predicate.Predicate

// ValueEqual holds when the stored record encodes to the same bytes as value.
func (t *Typed[T]) ValueEqual(value T) (Predicate, error) {
	data, err := t.integrity.marshaller.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal predicate value: %w", err)
	}

	return func(key []byte) predicate.Predicate { return predicate.ValueEqual(key, data) }, nil
}

// VersionEqual holds when the record was last written at revision.
// Zero matches a missing record.
func (t *Typed[T]) VersionEqual(revision int64) Predicate {
	return func(key []byte) predicate.Predicate { return predicate.VersionEqual(key, revision) }
}

// VersionNotEqual holds when the record was not last written at revision.
func (t *Typed[T]) VersionNotEqual(revision int64) Predicate {
	return func(key []byte) predicate.Predicate { return predicate.VersionNotEqual(key, revision) }
}

// VersionGreater holds when the record was last written after revision.
func (t *Typed[T]) VersionGreater(revision int64) Predicate {
	return func(key []byte) predicate.Predicate { return predicate.VersionGreater(key, revision) }
}

// VersionLess holds when the record was last written before revision.
func (t *Typed[T]) VersionLess(revision int64) Predicate {
	return func(key []byte) predicate.Predicate { return predicate.VersionLess(key, revision) }
}

type getOptions struct {
	ignoreVerificationError bool
}

// GetOption configures Get and Range.
type GetOption = options.Callback[getOptions]

// IgnoreVerificationError returns records that decoded but failed a digest
// or signature check instead of failing. Result.Error still describes the
// failure.
func IgnoreVerificationError() GetOption {
	return func(opts *getOptions) {
		opts.ignoreVerificationError = true
	}
}

type writeOptions struct {
	predicates []Predicate
}

// PutOption configures Put.
type PutOption = options.Callback[writeOptions]

// DeleteOption configures Delete.
type DeleteOption = options.Callback[writeOptions]

// WithPutPredicates makes Put conditional. If a predicate fails,
// ErrPredicateFailed is returned and nothing is written.
func WithPutPredicates(predicates ...Predicate) PutOption {
	return func(opts *writeOptions) {
		opts.predicates = append(opts.predicates, predicates...)
	}
}

// WithExpectedRevision makes Put succeed only if the record was last written
// at revision, zero meaning that it does not exist yet.
func WithExpectedRevision(revision int64) PutOption {
	return func(opts *writeOptions) {
		opts.predicates = append(opts.predicates, func(key []byte) predicate.Predicate {
			return predicate.VersionEqual(key, revision)
		})
	}
}

// WithDeletePredicates makes Delete conditional. If a predicate fails,
// ErrPredicateFailed is returned and nothing is removed.
func WithDeletePredicates(predicates ...Predicate) DeleteOption {
	return func(opts *writeOptions) {
		opts.predicates = append(opts.predicates, predicates...)
	}
}

func (t *Typed[T]) bind(name string, preds []Predicate) []predicate.Predicate {
	if len(preds) == 0 {
		return nil
	}

	key := t.integrity.namer.valueKey(name)

	out := make([]predicate.Predicate, 0, len(preds))
	for _, p := range preds {
		out = append(out, p(key))
	}

	return out
}

// Get reads and verifies the record stored under name.
func (t *Typed[T]) Get(ctx context.Context, name string, opts ...GetOption) (Result[T], error) {
	if err := checkName(name); err != nil {
		return Result[T]{}, err
	}

	cfg := options.Apply(nil, opts)

	keys := t.integrity.namer.keys(name)

	ops := make([]operation.Operation, 0, len(keys))
	for _, k := range keys {
		ops = append(ops, operation.Get([]byte(k.build(t.integrity.namer.prefix))))
	}

	resp, err := t.base.Tx(ctx).Then(ops...).Commit()
	if err != nil {
		return Result[T]{}, fmt.Errorf("failed to get %q: %w", name, err)
	}

	_, groups := t.integrity.group(flatten(resp), t.logger)

	result, ok := t.integrity.validate(name, groups[name], t.logger)
	switch {
	case !ok:
		return Result[T]{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	case result.Error != nil && (result.Value.IsZero() || !cfg.ignoreVerificationError):
		return Result[T]{}, result.Error
	}

	return result, nil
}

// Put encodes val and stores it under name with its digests and signatures
// in one transaction.
func (t *Typed[T]) Put(ctx context.Context, name string, val T, opts ...PutOption) error {
	if err := checkName(name); err != nil {
		return err
	}

	cfg := options.Apply(nil, opts)

	kvs, err := t.integrity.generate(name, val)
	if err != nil {
		return err
	}

	ops := make([]operation.Operation, 0, len(kvs))
	for _, pair := range kvs {
		ops = append(ops, operation.Put(pair.Key, pair.Value))
	}

	return t.commit(ctx, name, "put", t.bind(name, cfg.predicates), ops)
}

// Delete removes the record stored under name with its digests and
// signatures.
func (t *Typed[T]) Delete(ctx context.Context, name string, opts ...DeleteOption) error {
	if err := checkName(name); err != nil {
		return err
	}

	cfg := options.Apply(nil, opts)

	keys := t.integrity.namer.keys(name)

	ops := make([]operation.Operation, 0, len(keys))
	for _, k := range keys {
		ops = append(ops, operation.Delete([]byte(k.build(t.integrity.namer.prefix))))
	}

	return t.commit(ctx, name, "delete", t.bind(name, cfg.predicates), ops)
}

func (t *Typed[T]) commit(
	ctx context.Context,
	name, action string,
	predicates []predicate.Predicate,
	ops []operation.Operation,
) error {
	txn := t.base.Tx(ctx)
	if len(predicates) > 0 {
		txn = txn.If(predicates...)
	}

	resp, err := txn.Then(ops...).Commit()
	if err != nil {
		return fmt.Errorf("failed to %s %q: %w", action, name, err)
	}

	if !resp.Succeeded {
		return fmt.Errorf("%w: %s %q", ErrPredicateFailed, action, name)
	}

	t.logger.Debug("record written", zap.String("action", action), zap.String("name", name))

	return nil
}

// Range reads every record whose name starts with namePrefix, in name
// order. Records that fail to decode are skipped, and so are records that
// fail verification unless IgnoreVerificationError is given.
func (t *Typed[T]) Range(ctx context.Context, namePrefix string, opts ...GetOption) ([]Result[T], error) {
	if strings.HasPrefix(namePrefix, "/") {
		return nil, fmt.Errorf("%w: %q starts with /", ErrInvalidName, namePrefix)
	}

	cfg := options.Apply(nil, opts)

	kvs, err := t.base.Range(ctx, WithPrefix(t.integrity.namer.prefix))
	if err != nil {
		return nil, err
	}

	names, groups := t.integrity.group(kvs, t.logger)

	out := make([]Result[T], 0, len(names))

	for _, name := range names {
		if !strings.HasPrefix(name, namePrefix) {
			continue
		}

		result, ok := t.integrity.validate(name, groups[name], t.logger)
		switch {
		case !ok:
			t.logger.Debug("skipping orphaned integrity keys", zap.String("name", name))
		case result.Error == nil:
			out = append(out, result)
		case !result.Value.IsZero() && cfg.ignoreVerificationError:
			out = append(out, result)
		default:
			t.logger.Warn("skipping record", zap.String("name", name), zap.Error(result.Error))
		}
	}

	return out, nil
}
