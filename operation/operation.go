// Package operation describes the reads and writes executed by a transaction.
package operation

import (
	"github.com/tarantool/go-revision/internal/options"
)

// Type is the kind of an operation.
type Type int

const (
	// TypeGet reads keys.
	TypeGet Type = iota
	// TypePut writes a key.
	TypePut
	// TypeDelete removes keys.
	TypeDelete
)

func (t Type) String() string {
	switch t {
	case TypeGet:
		return "Get"
	case TypePut:
		return "Put"
	case TypeDelete:
		return "Delete"
	default:
		return "Unknown"
	}
}

// Operation represents a storage operation to be executed.
type Operation struct {
	typ    Type
	key    []byte
	value  []byte
	prefix bool
}

// Option adjusts an operation.
type Option = options.Callback[Operation]

// WithPrefix makes the operation apply to every key starting with key.
func WithPrefix() Option {
	return func(o *Operation) {
		o.prefix = true
	}
}

func build(typ Type, key, value []byte, opts []Option) Operation {
	return options.Apply(options.Value(Operation{
		typ:    typ,
		key:    key,
		value:  value,
		prefix: false,
	}), opts)
}

// Get reads a key, or every key under a prefix with WithPrefix.
func Get(key []byte, opts ...Option) Operation {
	return build(TypeGet, key, nil, opts)
}

// Put writes value under key.
func Put(key, value []byte, opts ...Option) Operation {
	return build(TypePut, key, value, opts)
}

// Delete removes a key, or every key under a prefix with WithPrefix.
// The removed pairs are returned in the response.
func Delete(key []byte, opts ...Option) Operation {
	return build(TypeDelete, key, nil, opts)
}

// Type returns the operation type.
func (o Operation) Type() Type {
	return o.typ
}

// Key returns the target key or prefix.
func (o Operation) Key() []byte {
	return o.key
}

// Value returns the data to put, nil for get and delete.
func (o Operation) Value() []byte {
	return o.value
}

// IsPrefix reports whether the operation applies to a key prefix.
func (o Operation) IsPrefix() bool {
	return o.prefix
}
