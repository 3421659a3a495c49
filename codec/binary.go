package codec

import (
	"encoding/binary"
	"fmt"
	"io"
)

// BinaryWriter writes little-endian fixed-width primitives.
// Byte strings are prefixed with their length as uint64.
type BinaryWriter struct {
	w   io.Writer
	buf [8]byte
}

var (
	_ Writer = &BinaryWriter{} //nolint:exhaustruct
	_ Reader = &BinaryReader{} //nolint:exhaustruct
)

// NewBinaryWriter creates a BinaryWriter on top of w.
func NewBinaryWriter(w io.Writer) *BinaryWriter {
	return &BinaryWriter{w: w, buf: [8]byte{}}
}

func (b *BinaryWriter) write(kind string, data []byte) error {
	n, err := b.w.Write(data)
	switch {
	case err != nil:
		return errWrite(kind, err)
	case n < len(data):
		return errWrite(kind, io.ErrShortWrite)
	}

	return nil
}

// WriteUint8 implements Writer.
func (b *BinaryWriter) WriteUint8(v uint8) error {
	b.buf[0] = v
	return b.write("uint8", b.buf[:1])
}

// WriteUint16 implements Writer.
func (b *BinaryWriter) WriteUint16(v uint16) error {
	binary.LittleEndian.PutUint16(b.buf[:2], v)
	return b.write("uint16", b.buf[:2])
}

// WriteUint32 implements Writer.
func (b *BinaryWriter) WriteUint32(v uint32) error {
	binary.LittleEndian.PutUint32(b.buf[:4], v)
	return b.write("uint32", b.buf[:4])
}

// WriteUint64 implements Writer.
func (b *BinaryWriter) WriteUint64(v uint64) error {
	binary.LittleEndian.PutUint64(b.buf[:8], v)
	return b.write("uint64", b.buf[:8])
}

// WriteBool implements Writer.
func (b *BinaryWriter) WriteBool(v bool) error {
	b.buf[0] = 0
	if v {
		b.buf[0] = 1
	}

	return b.write("bool", b.buf[:1])
}

// WriteBytes implements Writer.
func (b *BinaryWriter) WriteBytes(v []byte) error {
	if err := b.WriteUint64(uint64(len(v))); err != nil {
		return err
	}

	return b.write("bytes", v)
}

// WriteString implements Writer.
func (b *BinaryWriter) WriteString(v string) error {
	return b.WriteBytes([]byte(v))
}

// BinaryReader reads primitives written by BinaryWriter.
type BinaryReader struct {
	r         io.Reader
	buf       [8]byte
	maxLength uint64
}

// NewBinaryReader creates a BinaryReader on top of r.
func NewBinaryReader(r io.Reader, opts ...ReaderOption) *BinaryReader {
	cfg := applyReaderOptions(opts)

	return &BinaryReader{
		r:         r,
		buf:       [8]byte{},
		maxLength: cfg.maxLength,
	}
}

func (b *BinaryReader) fill(kind string, n int) ([]byte, error) {
	if _, err := io.ReadFull(b.r, b.buf[:n]); err != nil {
		return nil, errRead(kind, err)
	}

	return b.buf[:n], nil
}

// ReadUint8 implements Reader.
func (b *BinaryReader) ReadUint8() (uint8, error) {
	data, err := b.fill("uint8", 1)
	if err != nil {
		return 0, err
	}

	return data[0], nil
}

// ReadUint16 implements Reader.
func (b *BinaryReader) ReadUint16() (uint16, error) {
	data, err := b.fill("uint16", 2)
	if err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint16(data), nil
}

// ReadUint32 implements Reader.
func (b *BinaryReader) ReadUint32() (uint32, error) {
	data, err := b.fill("uint32", 4)
	if err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint32(data), nil
}

// ReadUint64 implements Reader.
func (b *BinaryReader) ReadUint64() (uint64, error) {
	data, err := b.fill("uint64", 8)
	if err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint64(data), nil
}

// ReadBool implements Reader.
func (b *BinaryReader) ReadBool() (bool, error) {
	data, err := b.fill("bool", 1)
	if err != nil {
		return false, err
	}

	switch data[0] {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, errRead("bool", fmt.Errorf("%w: %d", ErrInvalidBool, data[0]))
	}
}

// ReadBytes implements Reader.
func (b *BinaryReader) ReadBytes() ([]byte, error) {
	length, err := b.ReadUint64()
	if err != nil {
		return nil, err
	}

	if length > b.maxLength {
		return nil, errRead("bytes", fmt.Errorf("%w: %d > %d", ErrLengthExceeded, length, b.maxLength))
	}

	out := make([]byte, length)
	if _, err := io.ReadFull(b.r, out); err != nil {
		return nil, errRead("bytes", err)
	}

	return out, nil
}

// ReadString implements Reader.
func (b *BinaryReader) ReadString() (string, error) {
	data, err := b.ReadBytes()
	if err != nil {
		return "", err
	}

	return string(data), nil
}
