package store

import (
	"bytes"
	"fmt"
	"slices"

	"github.com/tarantool/go-option"
	"go.uber.org/zap"

	"github.com/tarantool/go-revision"
	"github.com/tarantool/go-revision/crypto"
	"github.com/tarantool/go-revision/hasher"
	"github.com/tarantool/go-revision/kv"
	"github.com/tarantool/go-revision/marshaller"
)

// integrity writes a record together with its digests and signatures and
// checks them on the way back.
type integrity[T any] struct {
	namer      namer
	marshaller marshaller.TypedMarshaller[T]
	hashers    []hasher.Hasher
	signers    []crypto.Signer
	verifiers  []crypto.Verifier
}

func findByName[A interface{ Name() string }](algs []A, name string) (A, bool) {
	idx := slices.IndexFunc(algs, func(a A) bool { return a.Name() == name })
	if idx < 0 {
		var zero A
		return zero, false
	}

	return algs[idx], true
}

// generate returns the pairs to put for value. Signature keys of
// verify-only algorithms are skipped.
func (in integrity[T]) generate(name string, value T) ([]kv.KeyValue, error) {
	body, err := in.marshaller.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %q: %w", name, err)
	}

	out := make([]kv.KeyValue, 0, len(in.namer.keys(name)))

	for _, k := range in.namer.keys(name) {
		var data []byte

		switch k.typ {
		case keyTypeValue:
			data = body
		case keyTypeHash:
			h, _ := findByName(in.hashers, k.property)

			data, err = h.Hash(body)
			if err != nil {
				return nil, errHashCompute(k.property, err)
			}
		case keyTypeSignature:
			signer, ok := findByName(in.signers, k.property)
			if !ok {
				continue
			}

			data, err = signer.Sign(body)
			if err != nil {
				return nil, fmt.Errorf("failed to sign %q with %q: %w", name, k.property, err)
			}
		}

		out = append(out, kv.KeyValue{
			Key:         []byte(k.build(in.namer.prefix)),
			Value:       data,
			ModRevision: 0,
		})
	}

	return out, nil
}

type storedPair struct {
	key  key
	pair kv.KeyValue
}

// group parses kvs and groups them by record name, in name order. Keys
// outside the layout are logged and skipped.
func (in integrity[T]) group(kvs []kv.KeyValue, logger *zap.Logger) ([]string, map[string][]storedPair) {
	groups := make(map[string][]storedPair)
	names := make([]string, 0)

	for _, pair := range kvs {
		k, err := in.namer.parse(pair.Key)
		if err != nil {
			logger.Debug("skipping foreign key", zap.ByteString("key", pair.Key), zap.Error(err))
			continue
		}

		if _, ok := groups[k.name]; !ok {
			names = append(names, k.name)
		}

		groups[k.name] = append(groups[k.name], storedPair{key: k, pair: pair})
	}

	slices.Sort(names)

	return names, groups
}

// schemaMarshaller is implemented by marshallers that know the current
// revision of what they write.
type schemaMarshaller[T any] interface {
	Schema() *revision.Schema[T]
}

// validate decodes the record of one group and checks every configured
// digest and signature. ok is false when the group has no record.
func (in integrity[T]) validate(name string, pairs []storedPair, logger *zap.Logger) (Result[T], bool) {
	result := Result[T]{
		Name:        name,
		Value:       option.None[T](),
		Revision:    option.None[uint16](),
		ModRevision: 0,
		Error:       nil,
	}

	idx := slices.IndexFunc(pairs, func(p storedPair) bool { return p.key.typ == keyTypeValue })
	if idx < 0 {
		return result, false
	}

	body := pairs[idx].pair.Value
	result.ModRevision = pairs[idx].pair.ModRevision

	in.inspectRevision(&result, body, logger)

	value, err := in.marshaller.Unmarshal(body)
	if err != nil {
		result.Error = errUnmarshal(name, err)
		return result, true
	}

	result.Value = option.Some(value)

	stored := func(typ keyType, alg string) option.Generic[[]byte] {
		for _, p := range pairs {
			if p.key.typ == typ && p.key.property == alg {
				return option.Some(p.pair.Value)
			}
		}

		return option.None[[]byte]()
	}

	failures := &ValidationError{Name: name, parent: nil}

	for _, h := range in.hashers {
		expected, ok := stored(keyTypeHash, h.Name()).Get()
		if !ok {
			failures.append(errHashMissing(h.Name()))
			continue
		}

		got, err := h.Hash(body)
		switch {
		case err != nil:
			failures.append(errHashCompute(h.Name(), err))
		case !bytes.Equal(expected, got):
			failures.append(errHashMismatch(h.Name(), expected, got))
		}
	}

	for _, v := range in.verifiers {
		signature, ok := stored(keyTypeSignature, v.Name()).Get()
		if !ok {
			failures.append(errSignatureMissing(v.Name()))
			continue
		}

		if err := v.Verify(body, signature); err != nil {
			failures.append(errSignatureFailed(v.Name(), err))
		}
	}

	result.Error = failures.finalize()
	if result.Error != nil {
		logger.Warn("record failed verification", zap.String("name", name), zap.Error(result.Error))
	}

	return result, true
}

// inspectRevision records the revision header of body and logs records
// that will be migrated on decode.
func (in integrity[T]) inspectRevision(result *Result[T], body []byte, logger *zap.Logger) {
	revisioned, ok := in.marshaller.(marshaller.RevisionedMarshaller[T])
	if !ok {
		return
	}

	rev, err := revisioned.Revision(body)
	if err != nil {
		return
	}

	result.Revision = option.Some(rev)

	withSchema, ok := in.marshaller.(schemaMarshaller[T])
	if !ok {
		return
	}

	if current := withSchema.Schema().Revision(); rev < current {
		logger.Info("migrating record from an older revision",
			zap.String("name", result.Name),
			zap.String("type", withSchema.Schema().Name()),
			zap.Uint16("stored", rev),
			zap.Uint16("current", current))
	}
}
