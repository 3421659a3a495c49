package revision

import (
	"errors"
	"fmt"
)

// headerField names the revision header in errors.
const headerField = "revision"

var (
	// ErrFormat is matched by every FormatError.
	ErrFormat = errors.New("malformed record")
	// ErrFutureRevision is matched by every FutureRevisionError.
	ErrFutureRevision = errors.New("record revision is newer than known revision")
	// ErrInvalidTag is matched by every InvalidTagError.
	ErrInvalidTag = errors.New("invalid variant tag")
	// ErrConversion is matched by every ConversionError.
	ErrConversion = errors.New("failed to convert retired field")
	// ErrEncode is matched by every EncodeError.
	ErrEncode = errors.New("failed to encode record")
	// ErrSchema is matched by every SchemaError.
	ErrSchema = errors.New("invalid schema")
	// ErrInvalidRevision is matched by every InvalidRevisionError.
	ErrInvalidRevision = errors.New("invalid known revision")

	// ErrZeroRevision is returned (wrapped into FormatError) for a header of 0.
	ErrZeroRevision = errors.New("revision 0 does not exist")
	// ErrTrailingData is returned (wrapped into FormatError) when bytes remain
	// after a complete record.
	ErrTrailingData = errors.New("trailing data after record")
	// ErrUnknownVariant is returned (wrapped into EncodeError) when a value
	// outside of the enum's closed set is encoded.
	ErrUnknownVariant = errors.New("unknown variant")
)

// classified is implemented by every error type of this package.
type classified interface {
	error
	classified()
}

// isClassified reports whether err already carries one of this package's
// error types, so that nested records keep their own classification.
func isClassified(err error) bool {
	var target classified

	return errors.As(err, &target)
}

// FormatError is returned when the byte stream is malformed: it is truncated,
// the codec fails to read a value, the header is zero or bytes are left over.
type FormatError struct {
	// Type is the name of the record type being decoded.
	Type string
	// Field is the name of the field being read, "revision" for the header.
	Field string

	parent error
}

func errFormat(typ, field string, parent error) error {
	if parent == nil {
		return nil
	}

	if isClassified(parent) {
		return parent
	}

	return FormatError{Type: typ, Field: field, parent: parent}
}

func (FormatError) classified() {}

// Is implements errors.Is interface.
func (FormatError) Is(target error) bool {
	return target == ErrFormat //nolint:errorlint
}

// Unwrap returns the underlying codec error.
func (e FormatError) Unwrap() error {
	return e.parent
}

// Error returns a string representation of the format error.
func (e FormatError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("malformed %s record: %s", e.Type, e.parent)
	}

	return fmt.Sprintf("malformed %s record: field %q: %s", e.Type, e.Field, e.parent)
}

// FutureRevisionError is returned when a record was written by a newer
// revision of its type than the running code knows about.
type FutureRevisionError struct {
	Type     string
	Revision uint16
	Known    uint16
}

func errFutureRevision(typ string, revision, known uint16) error {
	return FutureRevisionError{Type: typ, Revision: revision, Known: known}
}

func (FutureRevisionError) classified() {}

// Is implements errors.Is interface.
func (FutureRevisionError) Is(target error) bool {
	return target == ErrFutureRevision //nolint:errorlint
}

// Error returns a string representation of the future revision error.
func (e FutureRevisionError) Error() string {
	return fmt.Sprintf("%s record has revision %d, newer than known revision %d",
		e.Type, e.Revision, e.Known)
}

// InvalidTagError is returned when an enum tag is outside of its closed set
// or names a variant that did not exist at the record's revision.
type InvalidTagError struct {
	Type     string
	Tag      uint8
	Revision uint16
}

func errInvalidTag(typ string, tag uint8, revision uint16) error {
	return InvalidTagError{Type: typ, Tag: tag, Revision: revision}
}

func (InvalidTagError) classified() {}

// Is implements errors.Is interface.
func (InvalidTagError) Is(target error) bool {
	return target == ErrInvalidTag //nolint:errorlint
}

// Error returns a string representation of the invalid tag error.
func (e InvalidTagError) Error() string {
	return fmt.Sprintf("invalid %s tag %d at revision %d", e.Type, e.Tag, e.Revision)
}

// ConversionError is returned when the conversion function of a retired
// field or variant fails.
type ConversionError struct {
	Type  string
	Field string
	// Revision is the revision the record was written with.
	Revision uint16

	parent error
}

func errConversion(typ, field string, revision uint16, parent error) error {
	if parent == nil {
		return nil
	}

	return ConversionError{Type: typ, Field: field, Revision: revision, parent: parent}
}

func (ConversionError) classified() {}

// Is implements errors.Is interface.
func (ConversionError) Is(target error) bool {
	return target == ErrConversion //nolint:errorlint
}

// Unwrap returns the error returned by the conversion function.
func (e ConversionError) Unwrap() error {
	return e.parent
}

// Error returns a string representation of the conversion error.
func (e ConversionError) Error() string {
	return fmt.Sprintf("failed to convert %s field %q from revision %d: %s",
		e.Type, e.Field, e.Revision, e.parent)
}

// EncodeError is returned when the writer fails while encoding a record.
type EncodeError struct {
	Type  string
	Field string

	parent error
}

func errEncode(typ, field string, parent error) error {
	if parent == nil {
		return nil
	}

	if isClassified(parent) {
		return parent
	}

	return EncodeError{Type: typ, Field: field, parent: parent}
}

func (EncodeError) classified() {}

// Is implements errors.Is interface.
func (EncodeError) Is(target error) bool {
	return target == ErrEncode //nolint:errorlint
}

// Unwrap returns the underlying writer error.
func (e EncodeError) Unwrap() error {
	return e.parent
}

// Error returns a string representation of the encode error.
func (e EncodeError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("failed to encode %s: %s", e.Type, e.parent)
	}

	return fmt.Sprintf("failed to encode %s field %q: %s", e.Type, e.Field, e.parent)
}

// SchemaError is returned by NewSchema and NewEnum when the declared fields
// or variants are inconsistent.
type SchemaError struct {
	Type string
	// Field is the offending field or variant, empty for type-level problems.
	Field  string
	Reason string
}

func errSchema(typ, field, reason string) error {
	return SchemaError{Type: typ, Field: field, Reason: reason}
}

func (SchemaError) classified() {}

// Is implements errors.Is interface.
func (SchemaError) Is(target error) bool {
	return target == ErrSchema //nolint:errorlint
}

// Error returns a string representation of the schema error.
func (e SchemaError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid schema %s: %s", e.Type, e.Reason)
	}

	return fmt.Sprintf("invalid schema %s: %q: %s", e.Type, e.Field, e.Reason)
}

// InvalidRevisionError is returned when a decode is asked to treat a revision
// outside of [1, current] as the known one.
type InvalidRevisionError struct {
	Type    string
	Known   uint16
	Current uint16
}

func errInvalidRevision(typ string, known, current uint16) error {
	return InvalidRevisionError{Type: typ, Known: known, Current: current}
}

func (InvalidRevisionError) classified() {}

// Is implements errors.Is interface.
func (InvalidRevisionError) Is(target error) bool {
	return target == ErrInvalidRevision //nolint:errorlint
}

// Error returns a string representation of the invalid revision error.
func (e InvalidRevisionError) Error() string {
	return fmt.Sprintf("revision %d is not known to %s (current revision %d)",
		e.Known, e.Type, e.Current)
}
