package options

import (
	"fmt"

	"github.com/tarantool/go-option"

	"github.com/tarantool/go-revision"
)

// IsolationLevel is the concurrency-control mode of engine transactions.
type IsolationLevel uint8

const (
	// SnapshotIsolation reads a consistent point-in-time snapshot and detects
	// write-write conflicts at commit.
	SnapshotIsolation IsolationLevel = iota
	// SerializableSnapshotIsolation additionally detects the read-write
	// conflicts needed for full serializability.
	SerializableSnapshotIsolation
)

// IsolationLevelRevision is the current revision of IsolationLevel.
const IsolationLevelRevision = 1

// IsolationLevelSchema is the variant table of IsolationLevel.
var IsolationLevelSchema = revision.MustEnum("IsolationLevel", IsolationLevelRevision,
	revision.EnumVariant[IsolationLevel]{
		Name:       "snapshot",
		Tag:        0,
		Value:      SnapshotIsolation,
		Descriptor: revision.Always(),
		Convert:    nil,
	},
	revision.EnumVariant[IsolationLevel]{
		Name:       "serializable-snapshot",
		Tag:        1,
		Value:      SerializableSnapshotIsolation,
		Descriptor: revision.Always(),
		Convert:    nil,
	},
)

// IsolationLevelFromTag returns the isolation level with the given tag,
// or None for any tag outside of the closed set.
func IsolationLevelFromTag(tag uint64) option.Generic[IsolationLevel] {
	level, ok := IsolationLevelSchema.FromTag(tag)
	if !ok {
		return option.None[IsolationLevel]()
	}

	return option.Some(level)
}

// String implements fmt.Stringer.
func (l IsolationLevel) String() string {
	switch l {
	case SnapshotIsolation:
		return "snapshot"
	case SerializableSnapshotIsolation:
		return "serializable-snapshot"
	default:
		return fmt.Sprintf("IsolationLevel(%d)", uint8(l))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (l IsolationLevel) MarshalText() ([]byte, error) {
	name, ok := IsolationLevelSchema.VariantName(l)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownIsolationLevel, uint8(l))
	}

	return []byte(name), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *IsolationLevel) UnmarshalText(text []byte) error {
	level, ok := IsolationLevelSchema.FromName(string(text))
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownIsolationLevel, text)
	}

	*l = level

	return nil
}
