// Package codec provides the primitive readers and writers that revisioned
// records are built from.
//
// A [Writer] appends fixed-width integers, booleans and length-prefixed byte
// strings to a stream; a [Reader] reads them back in the same order. Two
// formats are available: [FormatBinary] (little-endian, fixed width) and
// [FormatMsgpack] (msgpack primitives).
package codec

import (
	"fmt"
	"io"
	"strings"
)

// Writer writes primitive values to an underlying stream.
type Writer interface {
	WriteUint8(v uint8) error
	WriteUint16(v uint16) error
	WriteUint32(v uint32) error
	WriteUint64(v uint64) error
	WriteBool(v bool) error
	// WriteBytes writes a length-prefixed byte string.
	WriteBytes(v []byte) error
	// WriteString writes a length-prefixed string.
	WriteString(v string) error
}

// Reader reads primitive values from an underlying stream.
type Reader interface {
	ReadUint8() (uint8, error)
	ReadUint16() (uint16, error)
	ReadUint32() (uint32, error)
	ReadUint64() (uint64, error)
	ReadBool() (bool, error)
	ReadBytes() ([]byte, error)
	ReadString() (string, error)
}

// Format identifies a primitive encoding.
type Format int

const (
	// FormatBinary is the little-endian fixed-width format.
	FormatBinary Format = iota + 1
	// FormatMsgpack encodes primitives with msgpack.
	FormatMsgpack
)

// String implements fmt.Stringer.
func (f Format) String() string {
	switch f {
	case FormatBinary:
		return "binary"
	case FormatMsgpack:
		return "msgpack"
	default:
		return "unknown"
	}
}

// ParseFormat returns the format with the given name.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "binary", "bin":
		return FormatBinary, nil
	case "msgpack", "mp":
		return FormatMsgpack, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// NewWriter returns a writer of the given format.
func NewWriter(format Format, w io.Writer) (Writer, error) {
	switch format {
	case FormatBinary:
		return NewBinaryWriter(w), nil
	case FormatMsgpack:
		return NewMsgpackWriter(w), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownFormat, int(format))
	}
}

// NewReader returns a reader of the given format.
func NewReader(format Format, r io.Reader, opts ...ReaderOption) (Reader, error) {
	switch format {
	case FormatBinary:
		return NewBinaryReader(r, opts...), nil
	case FormatMsgpack:
		return NewMsgpackReader(r, opts...), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownFormat, int(format))
	}
}
