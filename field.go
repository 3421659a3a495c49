package revision

import (
	"github.com/tarantool/go-revision/codec"
)

// ConvertFunc receives the value of a retired field read from a record
// written at the given revision. It may fold the value into dst or ignore it.
type ConvertFunc[T, V any] func(dst *T, revision uint16, value V) error

// Ignore is a ConvertFunc that discards the retired value.
func Ignore[T, V any](*T, uint16, V) error {
	return nil
}

// Field is one entry of a Schema's field table.
type Field[T any] struct {
	name string
	desc Descriptor

	// read decodes the field value into a scratch value.
	read func(r codec.Reader) (any, error)
	// write and assign are set for live fields only.
	write  func(w codec.Writer, src *T) error
	assign func(dst *T, value any)
	// convert is set for retired fields only.
	convert func(dst *T, revision uint16, value any) error
}

// NewField declares a field stored in the struct. ref returns the address
// of the field inside a value of T.
func NewField[T, V any](name string, desc Descriptor, scalar Scalar[V], ref func(*T) *V) Field[T] {
	field := Field[T]{
		name:    name,
		desc:    desc,
		read:    readAny(scalar),
		write:   nil,
		assign:  nil,
		convert: nil,
	}

	if scalar.Write != nil && ref != nil {
		field.write = func(w codec.Writer, src *T) error {
			return scalar.Write(w, *ref(src))
		}
		field.assign = func(dst *T, value any) {
			*ref(dst) = value.(V) //nolint:forcetypeassert
		}
	}

	return field
}

// NewRetiredField declares a field that is no longer part of the struct but
// is still present in records written before desc.End.
func NewRetiredField[T, V any](name string, desc Descriptor, scalar Scalar[V], convert ConvertFunc[T, V]) Field[T] {
	field := Field[T]{
		name:    name,
		desc:    desc,
		read:    readAny(scalar),
		write:   nil,
		assign:  nil,
		convert: nil,
	}

	if convert != nil {
		field.convert = func(dst *T, revision uint16, value any) error {
			return convert(dst, revision, value.(V)) //nolint:forcetypeassert
		}
	}

	return field
}

func readAny[V any](scalar Scalar[V]) func(codec.Reader) (any, error) {
	if scalar.Read == nil {
		return nil
	}

	return func(r codec.Reader) (any, error) {
		return scalar.Read(r)
	}
}

// Name returns the field name.
func (f Field[T]) Name() string {
	return f.name
}

// Descriptor returns the revisions the field is written in.
func (f Field[T]) Descriptor() Descriptor {
	return f.desc
}

// Retired reports whether the field is no longer part of the struct.
func (f Field[T]) Retired() bool {
	return f.convert != nil || f.desc.Retired()
}

// check returns a description of what is wrong with the field, or "".
func (f Field[T]) check(current uint16) string {
	if reason := f.desc.check(current); reason != "" {
		return reason
	}

	switch {
	case f.read == nil:
		return "scalar has no reader"
	case f.desc.Retired() && f.convert == nil:
		return "retired field requires a conversion function"
	case f.desc.Retired() && f.write != nil:
		return "field with an end revision must be declared with NewRetiredField"
	case !f.desc.Retired() && f.write == nil && f.convert == nil:
		return "live field requires a scalar writer and a reference"
	case !f.desc.Retired() && f.convert != nil:
		return "retired field requires an end revision"
	default:
		return ""
	}
}
