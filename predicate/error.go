package predicate

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupported is returned for a target and operation pair no driver
	// can evaluate, such as a Greater comparison of values.
	ErrUnsupported = errors.New("unsupported predicate")
	// ErrInvalidValue is returned when the comparison value has the wrong type.
	ErrInvalidValue = errors.New("invalid predicate value")
)

func errUnsupported(p Predicate) error {
	return fmt.Errorf("%w: %s %s on %q", ErrUnsupported, p.Target(), p.Operation(), p.Key())
}

func errInvalidValue(p Predicate, expected string) error {
	return fmt.Errorf("%w: %s predicate on %q requires %s, got %T",
		ErrInvalidValue, p.Target(), p.Key(), expected, p.Value())
}
