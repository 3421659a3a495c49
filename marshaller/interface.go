// Package marshaller converts typed values to and from stored bytes.
package marshaller

// TypedMarshaller is a generic interface for typed marshalling operations.
type TypedMarshaller[T any] interface {
	Marshal(data T) ([]byte, error)
	Unmarshal(data []byte) (T, error)
}

// RevisionedMarshaller is a TypedMarshaller whose output starts with a
// revision header that can be read without decoding the whole value.
type RevisionedMarshaller[T any] interface {
	TypedMarshaller[T]

	// Revision returns the revision the data was written with.
	Revision(data []byte) (uint16, error)
}

func zero[T any]() T {
	var out T
	return out
}
