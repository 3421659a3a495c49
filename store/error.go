package store

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned by Get when no record is stored under the name.
	ErrNotFound = errors.New("not found")
	// ErrPredicateFailed is returned by Put or Delete when their predicates
	// do not hold.
	ErrPredicateFailed = errors.New("predicate check failed")
	// ErrInvalidName is returned for names that cannot be laid out as keys.
	ErrInvalidName = errors.New("invalid name")
	// ErrInvalidPrefix is returned by Build for a malformed key prefix.
	ErrInvalidPrefix = errors.New("invalid prefix")
	// ErrInvalidKey is returned for a stored key the layout cannot parse.
	ErrInvalidKey = errors.New("invalid key")
	// ErrNoMarshaller is returned by Build without a marshaller.
	ErrNoMarshaller = errors.New("no marshaller configured")
	// ErrNoStorage is returned by Build without a storage.
	ErrNoStorage = errors.New("no storage configured")
	// ErrDuplicateAlgorithm is returned by Build when two hashers or two
	// signers share a name.
	ErrDuplicateAlgorithm = errors.New("duplicate algorithm")

	// ErrHashMismatch marks a stored digest that differs from the record's.
	ErrHashMismatch = errors.New("hash mismatch")
	// ErrHashMissing marks a configured digest that is not stored.
	ErrHashMissing = errors.New("hash missing")
	// ErrSignatureMissing marks a configured signature that is not stored.
	ErrSignatureMissing = errors.New("signature missing")
	// ErrSignatureFailed marks a signature the verifier rejected.
	ErrSignatureFailed = errors.New("signature verification failed")
)

// ValidationError collects every integrity check a record failed.
type ValidationError struct {
	Name   string
	parent []error
}

func (e *ValidationError) append(err error) {
	e.parent = append(e.parent, err)
}

// finalize returns nil when every check passed.
func (e *ValidationError) finalize() error {
	if len(e.parent) == 0 {
		return nil
	}

	return e
}

// Error returns a string representation of the validation error.
func (e *ValidationError) Error() string {
	texts := make([]string, 0, len(e.parent))
	for _, p := range e.parent {
		texts = append(texts, p.Error())
	}

	return fmt.Sprintf("record %q failed validation: %s", e.Name, strings.Join(texts, "; "))
}

// Unwrap returns the individual failures.
func (e *ValidationError) Unwrap() []error {
	return e.parent
}

// UnmarshalError is returned when a stored record cannot be decoded.
type UnmarshalError struct {
	Name   string
	parent error
}

func errUnmarshal(name string, parent error) error {
	return UnmarshalError{Name: name, parent: parent}
}

// Error returns a string representation of the unmarshal error.
func (e UnmarshalError) Error() string {
	return fmt.Sprintf("failed to unmarshal record %q: %s", e.Name, e.parent)
}

// Unwrap returns the decoding failure.
func (e UnmarshalError) Unwrap() error {
	return e.parent
}

func errHashMismatch(alg string, expected, got []byte) error {
	return fmt.Errorf("%w for %q: stored %x, computed %x", ErrHashMismatch, alg, expected, got)
}

func errHashMissing(alg string) error {
	return fmt.Errorf("%w: %q", ErrHashMissing, alg)
}

func errSignatureMissing(alg string) error {
	return fmt.Errorf("%w: %q", ErrSignatureMissing, alg)
}

func errSignatureFailed(alg string, parent error) error {
	return fmt.Errorf("%w for %q: %w", ErrSignatureFailed, alg, parent)
}

func errHashCompute(alg string, parent error) error {
	return fmt.Errorf("failed to compute hash %q: %w", alg, parent)
}
