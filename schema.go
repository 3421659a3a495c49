package revision

import (
	"bytes"
	"fmt"

	"github.com/tarantool/go-revision/codec"
)

// Schema is the field table of a revisioned struct T.
// A Schema is immutable after construction and safe for concurrent use.
type Schema[T any] struct {
	name     string
	revision uint16
	defaults func() T
	fields   []Field[T]
}

// NewSchema creates a schema for the struct T at the given current revision.
// defaults must return a complete value: every field that a historical
// record lacks keeps the value returned by defaults. Fields are listed in
// wire order, retired ones included.
func NewSchema[T any](name string, revision uint16, defaults func() T, fields ...Field[T]) (*Schema[T], error) {
	schema := &Schema[T]{
		name:     name,
		revision: revision,
		defaults: defaults,
		fields:   append([]Field[T](nil), fields...),
	}

	if err := schema.check(); err != nil {
		return nil, err
	}

	return schema, nil
}

// MustSchema is like NewSchema but panics on an invalid schema.
// It is meant for package-level schema variables.
func MustSchema[T any](name string, revision uint16, defaults func() T, fields ...Field[T]) *Schema[T] {
	schema, err := NewSchema(name, revision, defaults, fields...)
	if err != nil {
		panic(err)
	}

	return schema
}

func (s *Schema[T]) check() error {
	switch {
	case s.name == "":
		return errSchema("<unnamed>", "", "type name is empty")
	case s.revision == 0:
		return errSchema(s.name, "", "current revision must be at least 1")
	case s.defaults == nil:
		return errSchema(s.name, "", "default constructor is required")
	}

	seen := make(map[string]struct{}, len(s.fields))

	for _, field := range s.fields {
		if field.name == "" {
			return errSchema(s.name, "", "field name is empty")
		}

		if _, ok := seen[field.name]; ok {
			return errSchema(s.name, field.name, "duplicate field")
		}

		seen[field.name] = struct{}{}

		if reason := field.check(s.revision); reason != "" {
			return errSchema(s.name, field.name, reason)
		}
	}

	return nil
}

// Name returns the type name used in errors.
func (s *Schema[T]) Name() string {
	return s.name
}

// Revision returns the current revision of the type.
func (s *Schema[T]) Revision() uint16 {
	return s.revision
}

// Default returns a fresh default value.
func (s *Schema[T]) Default() T {
	return s.defaults()
}

// Fields describes the whole field table in wire order.
func (s *Schema[T]) Fields() []FieldInfo {
	out := make([]FieldInfo, 0, len(s.fields))
	for _, field := range s.fields {
		out = append(out, FieldInfo{
			Name:       field.name,
			Descriptor: field.desc,
			Retired:    field.Retired(),
		})
	}

	return out
}

// LiveFields returns the names of the fields written at the given revision,
// in wire order.
func (s *Schema[T]) LiveFields(revision uint16) []string {
	var out []string

	for _, field := range s.fields {
		if field.desc.LiveAt(revision) {
			out = append(out, field.name)
		}
	}

	return out
}

// Encode writes the current revision followed by every field live at it.
func (s *Schema[T]) Encode(w codec.Writer, v *T) error {
	if err := w.WriteUint16(s.revision); err != nil {
		return errEncode(s.name, headerField, err)
	}

	for _, field := range s.fields {
		if !field.desc.LiveAt(s.revision) {
			continue
		}

		if err := field.write(w, v); err != nil {
			return errEncode(s.name, field.name, err)
		}
	}

	return nil
}

// Decode reads a record written at any revision up to the current one.
func (s *Schema[T]) Decode(r codec.Reader) (T, error) {
	return s.DecodeRevision(r, s.revision)
}

// DecodeRevision reads a record as code that knows revisions up to known
// would. known must be in [1, Revision()].
func (s *Schema[T]) DecodeRevision(r codec.Reader, known uint16) (T, error) {
	var zero T

	if known == 0 || known > s.revision {
		return zero, errInvalidRevision(s.name, known, s.revision)
	}

	revision, err := readHeader(s.name, r, known)
	if err != nil {
		return zero, err
	}

	out := s.defaults()

	for _, field := range s.fields {
		if !field.desc.LiveAt(revision) {
			continue
		}

		value, err := field.read(r)
		if err != nil {
			return zero, errFormat(s.name, field.name, err)
		}

		switch {
		case field.convert != nil:
			err = field.convert(&out, revision, value)
			if err != nil {
				return zero, errConversion(s.name, field.name, revision, err)
			}
		case field.desc.LiveAt(known):
			field.assign(&out, value)
		default:
			// Introduced after known: the value is read and dropped.
		}
	}

	return out, nil
}

// Marshal encodes v with the binary codec.
func (s *Schema[T]) Marshal(v T) ([]byte, error) {
	var buf bytes.Buffer

	if err := s.Encode(codec.NewBinaryWriter(&buf), &v); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Unmarshal decodes a complete binary record. Bytes left after the record
// are a FormatError.
func (s *Schema[T]) Unmarshal(data []byte) (T, error) {
	var zero T

	reader := bytes.NewReader(data)

	out, err := s.Decode(codec.NewBinaryReader(reader))
	if err != nil {
		return zero, err
	}

	if reader.Len() != 0 {
		return zero, errFormat(s.name, "", fmt.Errorf("%w: %d bytes", ErrTrailingData, reader.Len()))
	}

	return out, nil
}

// Header returns the revision a binary record was written with.
func (s *Schema[T]) Header(data []byte) (uint16, error) {
	return ReadHeader(s.name, codec.NewBinaryReader(bytes.NewReader(data)))
}

// ReadHeader reads a revision header without checking it against a known
// revision. typ names the record in errors.
func ReadHeader(typ string, r codec.Reader) (uint16, error) {
	revision, err := r.ReadUint16()
	if err != nil {
		return 0, errFormat(typ, headerField, err)
	}

	if revision == 0 {
		return 0, errFormat(typ, headerField, ErrZeroRevision)
	}

	return revision, nil
}

func readHeader(typ string, r codec.Reader, known uint16) (uint16, error) {
	revision, err := ReadHeader(typ, r)
	if err != nil {
		return 0, err
	}

	if revision > known {
		return 0, errFutureRevision(typ, revision, known)
	}

	return revision, nil
}

// FieldInfo describes a field or variant for inspection.
type FieldInfo struct {
	Name       string
	Descriptor Descriptor
	Retired    bool
}
