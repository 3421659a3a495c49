package tcs

import (
	"fmt"
)

func describe(verb, objectType, text string, err error) string {
	if text == "" {
		return fmt.Sprintf("failed to %s %s: %s", verb, objectType, err)
	}

	return fmt.Sprintf("failed to %s %s, %s: %s", verb, objectType, text, err)
}

// DecodingError is returned when a transaction response cannot be decoded.
type DecodingError struct {
	ObjectType string
	Text       string
	Err        error
}

// Error returns the error message.
func (e DecodingError) Error() string {
	return describe("decode", e.ObjectType, e.Text, e.Err)
}

func (e DecodingError) Unwrap() error {
	return e.Err
}

// NewTxnReplyDecodingError wraps err, or returns nil for a nil err.
func NewTxnReplyDecodingError(err error) error {
	if err == nil {
		return nil
	}

	return DecodingError{ObjectType: "txnReply", Text: "", Err: err}
}

// EncodingError is returned when a transaction request cannot be encoded.
type EncodingError struct {
	ObjectType string
	Text       string
	Err        error
}

// Error returns the error message.
func (e EncodingError) Error() string {
	return describe("encode", e.ObjectType, e.Text, e.Err)
}

func (e EncodingError) Unwrap() error {
	return e.Err
}

// NewOperationEncodingError wraps err, or returns nil for a nil err.
func NewOperationEncodingError(text string, err error) error {
	if err == nil {
		return nil
	}

	return EncodingError{ObjectType: "operation", Text: text, Err: err}
}

// NewPredicateEncodingError wraps err, or returns nil for a nil err.
func NewPredicateEncodingError(text string, err error) error {
	if err == nil {
		return nil
	}

	return EncodingError{ObjectType: "predicate", Text: text, Err: err}
}
