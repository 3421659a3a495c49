package tcs

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	goOperation "github.com/tarantool/go-revision/operation"
	goPredicate "github.com/tarantool/go-revision/predicate"
)

var (
	// ErrUnknownOperation is returned when the operation is unknown.
	ErrUnknownOperation = errors.New("unknown operation")
	// ErrUnknownOperator is returned when the operator is unknown.
	ErrUnknownOperator = errors.New("unknown operator")
	// ErrUnknownTarget is returned when the target is unknown.
	ErrUnknownTarget = errors.New("unknown target")
	// ErrPrefixPath is returned when prefix semantics and the path disagree.
	// Config storage treats a path ending in "/" as a prefix and any other
	// path as a single key.
	ErrPrefixPath = errors.New("prefix operations need a path ending in /")

	_ msgpack.CustomEncoder = predicate{Predicate: nil}
	_ msgpack.CustomEncoder = operation{Operation: goOperation.Get(nil)}

	//nolint: gochecknoglobals
	operationNames = map[goOperation.Type]string{
		goOperation.TypeGet:    "get",
		goOperation.TypePut:    "put",
		goOperation.TypeDelete: "delete",
	}

	//nolint: gochecknoglobals
	operators = map[goPredicate.Op]string{
		goPredicate.OpEqual:    "==",
		goPredicate.OpNotEqual: "!=",
		goPredicate.OpGreater:  ">",
		goPredicate.OpLess:     "<",
	}

	//nolint: gochecknoglobals
	targets = map[goPredicate.Target]string{
		goPredicate.TargetValue:   "value",
		goPredicate.TargetVersion: "mod_revision",
	}
)

// Strings are written with EncodeString: the msgpack API has no way to
// write a byte slice as str, and config storage keys are Lua strings.

// operation is encoded as [name, path] or [name, path, value] for put.
type operation struct {
	goOperation.Operation
}

func checkPath(o goOperation.Operation) error {
	trailing := bytes.HasSuffix(o.Key(), []byte("/"))

	switch {
	case o.IsPrefix() && o.Type() == goOperation.TypePut:
		return fmt.Errorf("%w: put to %q", ErrPrefixPath, o.Key())
	case o.IsPrefix() != trailing:
		return fmt.Errorf("%w: %s %q with prefix=%t", ErrPrefixPath, o.Type(), o.Key(), o.IsPrefix())
	default:
		return nil
	}
}

func newOperations(in []goOperation.Operation) ([]operation, error) {
	out := make([]operation, 0, len(in))
	for _, o := range in {
		if err := checkPath(o); err != nil {
			return nil, err
		}

		out = append(out, operation{o})
	}

	return out, nil
}

func (o operation) EncodeMsgpack(encoder *msgpack.Encoder) error {
	name, ok := operationNames[o.Type()]
	if !ok {
		return NewOperationEncodingError(o.Type().String(), ErrUnknownOperation)
	}

	fields := []string{name, string(o.Key())}
	if o.Type() == goOperation.TypePut {
		fields = append(fields, string(o.Value()))
	}

	if err := encoder.EncodeArrayLen(len(fields)); err != nil {
		return NewOperationEncodingError("array length", err)
	}

	for _, field := range fields {
		if err := encoder.EncodeString(field); err != nil {
			return NewOperationEncodingError(name, err)
		}
	}

	return nil
}

// predicate is encoded as [target, operator, value, path].
type predicate struct {
	goPredicate.Predicate
}

func newPredicates(in []goPredicate.Predicate) []predicate {
	out := make([]predicate, 0, len(in))
	for _, p := range in {
		out = append(out, predicate{p})
	}

	return out
}

const predicateArrayLen = 4

func (p predicate) EncodeMsgpack(encoder *msgpack.Encoder) error {
	operator, ok := operators[p.Operation()]
	if !ok {
		return NewPredicateEncodingError("operator", ErrUnknownOperator)
	}

	target, ok := targets[p.Target()]
	if !ok {
		return NewPredicateEncodingError("target", ErrUnknownTarget)
	}

	if err := encoder.EncodeArrayLen(predicateArrayLen); err != nil {
		return NewPredicateEncodingError("array length", err)
	}

	if err := encoder.EncodeString(target); err != nil {
		return NewPredicateEncodingError("target", err)
	}

	if err := encoder.EncodeString(operator); err != nil {
		return NewPredicateEncodingError("operator", err)
	}

	if err := p.encodeValue(encoder); err != nil {
		return NewPredicateEncodingError("value", err)
	}

	if err := encoder.EncodeString(string(p.Key())); err != nil {
		return NewPredicateEncodingError("key", err)
	}

	return nil
}

func (p predicate) encodeValue(encoder *msgpack.Encoder) error {
	switch value := p.Value().(type) {
	case []byte:
		if p.Target() != goPredicate.TargetValue {
			break
		}

		return encoder.EncodeString(string(value)) //nolint:wrapcheck
	case int64:
		if p.Target() != goPredicate.TargetVersion {
			break
		}

		return encoder.EncodeInt(value) //nolint:wrapcheck
	}

	return fmt.Errorf("%w: %s predicate on %q got %T",
		goPredicate.ErrInvalidValue, p.Target(), p.Key(), p.Value())
}

// txnRequest is the single argument of the transaction function. Empty
// branches are left out.
type txnRequest struct {
	_msgpack struct{} `msgpack:",omitempty"`

	Predicates []predicate `msgpack:"predicates"`
	OnSuccess  []operation `msgpack:"on_success"`
	OnFailure  []operation `msgpack:"on_failure"`
}

func newTxnRequest(
	predicates []goPredicate.Predicate,
	onSuccess []goOperation.Operation,
	onFailure []goOperation.Operation,
) (txnRequest, error) {
	success, err := newOperations(onSuccess)
	if err != nil {
		return txnRequest{}, err
	}

	failure, err := newOperations(onFailure)
	if err != nil {
		return txnRequest{}, err
	}

	return txnRequest{
		_msgpack:   struct{}{},
		Predicates: newPredicates(predicates),
		OnSuccess:  success,
		OnFailure:  failure,
	}, nil
}
