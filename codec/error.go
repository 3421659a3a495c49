package codec

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidBool is returned when a boolean byte is neither 0 nor 1.
	ErrInvalidBool = errors.New("invalid boolean value")
	// ErrLengthExceeded is returned when a byte string is longer than the reader allows.
	ErrLengthExceeded = errors.New("length exceeds limit")
	// ErrNil is returned when a msgpack nil stands where a value is expected.
	ErrNil = errors.New("unexpected nil")
	// ErrOutOfRange is returned when an integer does not fit the requested width.
	ErrOutOfRange = errors.New("integer out of range")
	// ErrUnknownFormat is returned for an unsupported codec format.
	ErrUnknownFormat = errors.New("unknown codec format")
)

// ReadError represents a failure to read a primitive value.
type ReadError struct {
	Kind   string
	parent error
}

func errRead(kind string, parent error) error {
	if parent == nil {
		return nil
	}

	return ReadError{Kind: kind, parent: parent}
}

// Unwrap returns the underlying error.
func (e ReadError) Unwrap() error {
	return e.parent
}

// Error returns a string representation of the read error.
func (e ReadError) Error() string {
	return fmt.Sprintf("failed to read %s: %s", e.Kind, e.parent)
}

// WriteError represents a failure to write a primitive value.
type WriteError struct {
	Kind   string
	parent error
}

func errWrite(kind string, parent error) error {
	if parent == nil {
		return nil
	}

	return WriteError{Kind: kind, parent: parent}
}

// Unwrap returns the underlying error.
func (e WriteError) Unwrap() error {
	return e.parent
}

// Error returns a string representation of the write error.
func (e WriteError) Error() string {
	return fmt.Sprintf("failed to write %s: %s", e.Kind, e.parent)
}
