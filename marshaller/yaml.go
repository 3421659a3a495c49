package marshaller

import (
	"bytes"
	"errors"
	"io"

	"gopkg.in/yaml.v3"
)

const formatYAML = "yaml"

// TypedYamlMarshaller is a generic YAML marshaller for typed objects.
// Unknown keys are rejected so that a misspelled option is not silently
// replaced by its default.
type TypedYamlMarshaller[T any] struct {
	defaults func() T
}

// NewTypedYamlMarshaller creates a new TypedYamlMarshaller for the specified type.
// Keys missing from a document keep the zero value.
func NewTypedYamlMarshaller[T any]() TypedYamlMarshaller[T] {
	return TypedYamlMarshaller[T]{defaults: zero[T]}
}

// NewTypedYamlMarshallerWithDefaults is like NewTypedYamlMarshaller, but keys
// missing from a document keep the values returned by defaults.
func NewTypedYamlMarshallerWithDefaults[T any](defaults func() T) TypedYamlMarshaller[T] {
	return TypedYamlMarshaller[T]{defaults: defaults}
}

// Marshal serializes the typed data to YAML format.
func (m TypedYamlMarshaller[T]) Marshal(data T) ([]byte, error) {
	marshalled, err := yaml.Marshal(data)
	if err != nil {
		return []byte{}, errMarshal(formatYAML, err)
	}

	return marshalled, nil
}

// Unmarshal deserializes YAML data into a typed object.
func (m TypedYamlMarshaller[T]) Unmarshal(data []byte) (T, error) {
	out := zero[T]()
	if m.defaults != nil {
		out = m.defaults()
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	err := decoder.Decode(&out)
	switch {
	case errors.Is(err, io.EOF):
		// An empty document leaves the defaults untouched.
	case err != nil:
		return zero[T](), errUnmarshal(formatYAML, err)
	}

	return out, nil
}
