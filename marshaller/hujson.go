package marshaller

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/tailscale/hujson"
)

const formatHuJSON = "hujson"

// ErrTrailingDocument is returned when a HuJSON input holds more than one value.
var ErrTrailingDocument = errors.New("unexpected data after the document")

// TypedHuJSONMarshaller reads JSON with comments and trailing commas and
// writes indented standard JSON. Unknown keys are rejected.
type TypedHuJSONMarshaller[T any] struct {
	defaults func() T
}

// NewTypedHuJSONMarshaller creates a HuJSON marshaller; keys missing from a
// document keep the values returned by defaults, or the zero value when
// defaults is nil.
func NewTypedHuJSONMarshaller[T any](defaults func() T) TypedHuJSONMarshaller[T] {
	return TypedHuJSONMarshaller[T]{defaults: defaults}
}

// Marshal implements TypedMarshaller.
func (m TypedHuJSONMarshaller[T]) Marshal(data T) ([]byte, error) {
	marshalled, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return []byte{}, errMarshal(formatHuJSON, err)
	}

	return append(marshalled, '\n'), nil
}

// Unmarshal implements TypedMarshaller.
func (m TypedHuJSONMarshaller[T]) Unmarshal(data []byte) (T, error) {
	out := zero[T]()
	if m.defaults != nil {
		out = m.defaults()
	}

	standardized, err := hujson.Standardize(data)
	if err != nil {
		return zero[T](), errUnmarshal(formatHuJSON, err)
	}

	decoder := json.NewDecoder(bytes.NewReader(standardized))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&out); err != nil {
		return zero[T](), errUnmarshal(formatHuJSON, err)
	}

	if decoder.More() {
		return zero[T](), errUnmarshal(formatHuJSON, ErrTrailingDocument)
	}

	return out, nil
}
