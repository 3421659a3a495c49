package marshaller

import (
	"bytes"
	"fmt"

	"github.com/tarantool/go-revision"
	"github.com/tarantool/go-revision/codec"
)

// TypedRevisionMarshaller writes values with a revision schema and decodes
// records written by any earlier revision of it.
type TypedRevisionMarshaller[T any] struct {
	schema *revision.Schema[T]
	format codec.Format
}

var _ RevisionedMarshaller[struct{}] = TypedRevisionMarshaller[struct{}]{} //nolint:exhaustruct

// NewTypedRevisionMarshaller creates a marshaller for the schema in the given
// primitive format.
func NewTypedRevisionMarshaller[T any](schema *revision.Schema[T], format codec.Format) TypedRevisionMarshaller[T] {
	return TypedRevisionMarshaller[T]{schema: schema, format: format}
}

// Schema returns the schema the marshaller encodes with.
func (m TypedRevisionMarshaller[T]) Schema() *revision.Schema[T] {
	return m.schema
}

// Marshal implements TypedMarshaller.
func (m TypedRevisionMarshaller[T]) Marshal(data T) ([]byte, error) {
	var buf bytes.Buffer

	writer, err := codec.NewWriter(m.format, &buf)
	if err != nil {
		return []byte{}, errMarshal(m.format.String(), err)
	}

	if err := m.schema.Encode(writer, &data); err != nil {
		return []byte{}, errMarshal(m.format.String(), err)
	}

	return buf.Bytes(), nil
}

// Unmarshal implements TypedMarshaller. Bytes left after the record are an
// error.
func (m TypedRevisionMarshaller[T]) Unmarshal(data []byte) (T, error) {
	return m.UnmarshalRevision(data, m.schema.Revision())
}

// UnmarshalRevision decodes data as a reader that knows revisions up to
// known. Bytes left after the record are an error.
func (m TypedRevisionMarshaller[T]) UnmarshalRevision(data []byte, known uint16) (T, error) {
	input := bytes.NewReader(data)

	reader, err := codec.NewReader(m.format, input)
	if err != nil {
		return zero[T](), errUnmarshal(m.format.String(), err)
	}

	out, err := m.schema.DecodeRevision(reader, known)
	if err != nil {
		return zero[T](), errUnmarshal(m.format.String(), err)
	}

	if input.Len() != 0 {
		return zero[T](), errUnmarshal(m.format.String(),
			fmt.Errorf("%w: %d bytes", revision.ErrTrailingData, input.Len()))
	}

	return out, nil
}

// Revision implements RevisionedMarshaller.
func (m TypedRevisionMarshaller[T]) Revision(data []byte) (uint16, error) {
	reader, err := codec.NewReader(m.format, bytes.NewReader(data))
	if err != nil {
		return 0, errUnmarshal(m.format.String(), err)
	}

	rev, err := revision.ReadHeader(m.schema.Name(), reader)
	if err != nil {
		return 0, errUnmarshal(m.format.String(), err)
	}

	return rev, nil
}
