package codec

import (
	"fmt"
	"io"
	"math"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"
)

// MsgpackWriter writes primitives as msgpack values.
// Integers always use the fixed-size msgpack formats.
type MsgpackWriter struct {
	enc *msgpack.Encoder
}

var (
	_ Writer = &MsgpackWriter{} //nolint:exhaustruct
	_ Reader = &MsgpackReader{} //nolint:exhaustruct
)

// NewMsgpackWriter creates a MsgpackWriter on top of w.
func NewMsgpackWriter(w io.Writer) *MsgpackWriter {
	return &MsgpackWriter{enc: msgpack.NewEncoder(w)}
}

// WriteUint8 implements Writer.
func (m *MsgpackWriter) WriteUint8(v uint8) error {
	return errWrite("uint8", m.enc.EncodeUint8(v))
}

// WriteUint16 implements Writer.
func (m *MsgpackWriter) WriteUint16(v uint16) error {
	return errWrite("uint16", m.enc.EncodeUint16(v))
}

// WriteUint32 implements Writer.
func (m *MsgpackWriter) WriteUint32(v uint32) error {
	return errWrite("uint32", m.enc.EncodeUint32(v))
}

// WriteUint64 implements Writer.
func (m *MsgpackWriter) WriteUint64(v uint64) error {
	return errWrite("uint64", m.enc.EncodeUint64(v))
}

// WriteBool implements Writer.
func (m *MsgpackWriter) WriteBool(v bool) error {
	return errWrite("bool", m.enc.EncodeBool(v))
}

// WriteBytes implements Writer.
func (m *MsgpackWriter) WriteBytes(v []byte) error {
	if v == nil {
		// Keep nil and empty indistinguishable, as in the binary format.
		v = []byte{}
	}

	return errWrite("bytes", m.enc.EncodeBytes(v))
}

// WriteString implements Writer.
func (m *MsgpackWriter) WriteString(v string) error {
	return errWrite("string", m.enc.EncodeString(v))
}

// MsgpackReader reads primitives written by MsgpackWriter.
type MsgpackReader struct {
	dec       *msgpack.Decoder
	maxLength uint64
}

// NewMsgpackReader creates a MsgpackReader on top of r.
func NewMsgpackReader(r io.Reader, opts ...ReaderOption) *MsgpackReader {
	cfg := applyReaderOptions(opts)

	return &MsgpackReader{
		dec:       msgpack.NewDecoder(r),
		maxLength: cfg.maxLength,
	}
}

// notNil fails on a msgpack nil, which MsgpackWriter never writes.
func (m *MsgpackReader) notNil(kind string) error {
	code, err := m.dec.PeekCode()
	if err != nil {
		return errRead(kind, err)
	}

	if code == msgpcode.Nil {
		return errRead(kind, ErrNil)
	}

	return nil
}

func isSigned(code byte) bool {
	switch code {
	case msgpcode.Int8, msgpcode.Int16, msgpcode.Int32, msgpcode.Int64:
		return true
	default:
		return code >= msgpcode.NegFixedNumLow
	}
}

// readUint reads an integer of any msgpack width and fails unless it fits
// into [0, limit].
func (m *MsgpackReader) readUint(kind string, limit uint64) (uint64, error) {
	if err := m.notNil(kind); err != nil {
		return 0, err
	}

	code, err := m.dec.PeekCode()
	if err != nil {
		return 0, errRead(kind, err)
	}

	var value uint64

	if isSigned(code) {
		signed, err := m.dec.DecodeInt64()
		if err != nil {
			return 0, errRead(kind, err)
		}

		if signed < 0 {
			return 0, errRead(kind, fmt.Errorf("%w: %d", ErrOutOfRange, signed))
		}

		value = uint64(signed)
	} else {
		value, err = m.dec.DecodeUint64()
		if err != nil {
			return 0, errRead(kind, err)
		}
	}

	if value > limit {
		return 0, errRead(kind, fmt.Errorf("%w: %d > %d", ErrOutOfRange, value, limit))
	}

	return value, nil
}

// ReadUint8 implements Reader.
func (m *MsgpackReader) ReadUint8() (uint8, error) {
	v, err := m.readUint("uint8", math.MaxUint8)
	return uint8(v), err
}

// ReadUint16 implements Reader.
func (m *MsgpackReader) ReadUint16() (uint16, error) {
	v, err := m.readUint("uint16", math.MaxUint16)
	return uint16(v), err
}

// ReadUint32 implements Reader.
func (m *MsgpackReader) ReadUint32() (uint32, error) {
	v, err := m.readUint("uint32", math.MaxUint32)
	return uint32(v), err
}

// ReadUint64 implements Reader.
func (m *MsgpackReader) ReadUint64() (uint64, error) {
	return m.readUint("uint64", math.MaxUint64)
}

// ReadBool implements Reader.
func (m *MsgpackReader) ReadBool() (bool, error) {
	if err := m.notNil("bool"); err != nil {
		return false, err
	}

	v, err := m.dec.DecodeBool()

	return v, errRead("bool", err)
}

// ReadBytes implements Reader.
func (m *MsgpackReader) ReadBytes() ([]byte, error) {
	if err := m.notNil("bytes"); err != nil {
		return nil, err
	}

	v, err := m.dec.DecodeBytes()
	if err != nil {
		return nil, errRead("bytes", err)
	}

	if uint64(len(v)) > m.maxLength {
		return nil, errRead("bytes", fmt.Errorf("%w: %d > %d", ErrLengthExceeded, len(v), m.maxLength))
	}

	if v == nil {
		v = []byte{}
	}

	return v, nil
}

// ReadString implements Reader.
func (m *MsgpackReader) ReadString() (string, error) {
	if err := m.notNil("string"); err != nil {
		return "", err
	}

	v, err := m.dec.DecodeString()
	if err != nil {
		return "", errRead("string", err)
	}

	if uint64(len(v)) > m.maxLength {
		return "", errRead("string", fmt.Errorf("%w: %d > %d", ErrLengthExceeded, len(v), m.maxLength))
	}

	return v, nil
}
