package revision

import (
	"github.com/tarantool/go-revision/codec"
)

// Scalar writes and reads a single field value of type V.
type Scalar[V any] struct {
	Write func(w codec.Writer, v V) error
	Read  func(r codec.Reader) (V, error)
}

// Uint8 is a one-byte unsigned integer.
func Uint8() Scalar[uint8] {
	return Scalar[uint8]{
		Write: func(w codec.Writer, v uint8) error { return w.WriteUint8(v) },
		Read:  func(r codec.Reader) (uint8, error) { return r.ReadUint8() },
	}
}

// Uint16 is a fixed-width 16-bit unsigned integer.
func Uint16() Scalar[uint16] {
	return Scalar[uint16]{
		Write: func(w codec.Writer, v uint16) error { return w.WriteUint16(v) },
		Read:  func(r codec.Reader) (uint16, error) { return r.ReadUint16() },
	}
}

// Uint32 is a fixed-width 32-bit unsigned integer.
func Uint32() Scalar[uint32] {
	return Scalar[uint32]{
		Write: func(w codec.Writer, v uint32) error { return w.WriteUint32(v) },
		Read:  func(r codec.Reader) (uint32, error) { return r.ReadUint32() },
	}
}

// Uint64 is a fixed-width 64-bit unsigned integer.
func Uint64() Scalar[uint64] {
	return Scalar[uint64]{
		Write: func(w codec.Writer, v uint64) error { return w.WriteUint64(v) },
		Read:  func(r codec.Reader) (uint64, error) { return r.ReadUint64() },
	}
}

// Int is a machine-sized integer, written as 64 bits.
func Int() Scalar[int] {
	return Scalar[int]{
		Write: func(w codec.Writer, v int) error {
			return w.WriteUint64(uint64(int64(v))) //nolint:gosec
		},
		Read: func(r codec.Reader) (int, error) {
			v, err := r.ReadUint64()

			return int(int64(v)), err //nolint:gosec
		},
	}
}

// Bool is a single byte, 0 or 1.
func Bool() Scalar[bool] {
	return Scalar[bool]{
		Write: func(w codec.Writer, v bool) error { return w.WriteBool(v) },
		Read:  func(r codec.Reader) (bool, error) { return r.ReadBool() },
	}
}

// Bytes is a length-prefixed byte slice.
func Bytes() Scalar[[]byte] {
	return Scalar[[]byte]{
		Write: func(w codec.Writer, v []byte) error { return w.WriteBytes(v) },
		Read:  func(r codec.Reader) ([]byte, error) { return r.ReadBytes() },
	}
}

// String is a length-prefixed string.
func String() Scalar[string] {
	return Scalar[string]{
		Write: func(w codec.Writer, v string) error { return w.WriteString(v) },
		Read:  func(r codec.Reader) (string, error) { return r.ReadString() },
	}
}

// Record nests another revisioned struct. The nested value carries its own
// revision header and is decoded against the nested schema's current revision.
func Record[V any](schema *Schema[V]) Scalar[V] {
	return Scalar[V]{
		Write: func(w codec.Writer, v V) error { return schema.Encode(w, &v) },
		Read:  schema.Decode,
	}
}

// Variant nests a revisioned enum, written as its own header and a tag byte.
func Variant[E comparable](enum *Enum[E]) Scalar[E] {
	return Scalar[E]{
		Write: enum.Encode,
		Read:  enum.Decode,
	}
}
