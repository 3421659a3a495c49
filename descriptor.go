package revision

import (
	"fmt"

	"github.com/tarantool/go-option"
)

// Descriptor describes the revisions in which a field or variant exists.
type Descriptor struct {
	// Start is the first revision the field is written in.
	Start uint16
	// End is the first revision the field is no longer written in.
	// None means the field exists in the current revision.
	End option.Generic[uint16]
}

// Always describes a field that has existed since the first revision.
func Always() Descriptor {
	return Since(1)
}

// Since describes a field introduced in revision start.
func Since(start uint16) Descriptor {
	return Descriptor{Start: start, End: option.None[uint16]()}
}

// Between describes a field that existed in revisions [start, end).
func Between(start, end uint16) Descriptor {
	return Descriptor{Start: start, End: option.Some(end)}
}

// LiveAt reports whether the field is written in the given revision.
func (d Descriptor) LiveAt(revision uint16) bool {
	if revision < d.Start {
		return false
	}

	end, ok := d.End.Get()

	return !ok || revision < end
}

// Retired reports whether the field has an end revision.
func (d Descriptor) Retired() bool {
	return d.End.IsSome()
}

// String returns the descriptor as an interval, e.g. "[1, 2)" or "[3, -)".
func (d Descriptor) String() string {
	if end, ok := d.End.Get(); ok {
		return fmt.Sprintf("[%d, %d)", d.Start, end)
	}

	return fmt.Sprintf("[%d, -)", d.Start)
}

// check returns a description of what is wrong with the descriptor
// for a type at the given current revision, or an empty string.
func (d Descriptor) check(current uint16) string {
	switch {
	case d.Start == 0:
		return "start revision must be at least 1"
	case d.Start > current:
		return fmt.Sprintf("start revision %d is after current revision %d", d.Start, current)
	}

	end, ok := d.End.Get()
	switch {
	case !ok:
		return ""
	case end <= d.Start:
		return fmt.Sprintf("end revision %d must be after start revision %d", end, d.Start)
	case end > current:
		return fmt.Sprintf("end revision %d is after current revision %d", end, current)
	default:
		return ""
	}
}
