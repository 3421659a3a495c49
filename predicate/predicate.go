// Package predicate describes the conditions a transaction is guarded by.
package predicate

import (
	"bytes"

	"github.com/tarantool/go-option"

	"github.com/tarantool/go-revision/kv"
)

// Predicate represents a condition on a single key.
type Predicate interface {
	// Key returns the key that this predicate applies to.
	Key() []byte
	// Operation returns the comparison operation (Equal, NotEqual, Greater, Less).
	Operation() Op
	// Target returns what aspect of the key to compare (Version, Value).
	Target() Target
	// Value returns the comparison value: []byte for TargetValue,
	// int64 for TargetVersion.
	Value() any
}

type predicate struct {
	key    []byte
	op     Op
	target Target
	value  any
}

func (p predicate) Key() []byte    { return p.key }
func (p predicate) Operation() Op  { return p.op }
func (p predicate) Target() Target { return p.target }
func (p predicate) Value() any     { return p.value }

// ValueEqual holds when the key exists and stores value.
func ValueEqual(key, value []byte) Predicate {
	return predicate{key: key, op: OpEqual, target: TargetValue, value: value}
}

// ValueNotEqual holds when the key exists and stores something else.
func ValueNotEqual(key, value []byte) Predicate {
	return predicate{key: key, op: OpNotEqual, target: TargetValue, value: value}
}

// VersionEqual holds when the key's modification revision equals version.
// A missing key has version 0.
func VersionEqual(key []byte, version int64) Predicate {
	return predicate{key: key, op: OpEqual, target: TargetVersion, value: version}
}

// VersionNotEqual holds when the key's modification revision differs from version.
func VersionNotEqual(key []byte, version int64) Predicate {
	return predicate{key: key, op: OpNotEqual, target: TargetVersion, value: version}
}

// VersionGreater holds when the key's modification revision is above version.
func VersionGreater(key []byte, version int64) Predicate {
	return predicate{key: key, op: OpGreater, target: TargetVersion, value: version}
}

// VersionLess holds when the key's modification revision is below version.
func VersionLess(key []byte, version int64) Predicate {
	return predicate{key: key, op: OpLess, target: TargetVersion, value: version}
}

// Evaluate checks p against the current state of its key, for drivers that
// evaluate predicates themselves. Value predicates never hold for a missing
// key, as in etcd.
func Evaluate(p Predicate, current option.Generic[kv.KeyValue]) (bool, error) {
	switch p.Target() {
	case TargetVersion:
		version, ok := p.Value().(int64)
		if !ok {
			return false, errInvalidValue(p, "int64")
		}

		revision := int64(0)
		if pair, exists := current.Get(); exists {
			revision = pair.ModRevision
		}

		switch p.Operation() {
		case OpEqual:
			return revision == version, nil
		case OpNotEqual:
			return revision != version, nil
		case OpGreater:
			return revision > version, nil
		case OpLess:
			return revision < version, nil
		default:
			return false, errUnsupported(p)
		}
	case TargetValue:
		value, ok := p.Value().([]byte)
		if !ok {
			return false, errInvalidValue(p, "[]byte")
		}

		pair, exists := current.Get()
		if !exists {
			return false, nil
		}

		switch p.Operation() { //nolint:exhaustive
		case OpEqual:
			return bytes.Equal(pair.Value, value), nil
		case OpNotEqual:
			return !bytes.Equal(pair.Value, value), nil
		default:
			return false, errUnsupported(p)
		}
	default:
		return false, errUnsupported(p)
	}
}
