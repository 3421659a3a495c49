package options

import (
	"errors"
)

var (
	// ErrUnknownIsolationLevel is returned for an isolation level name or
	// value outside of the closed set.
	ErrUnknownIsolationLevel = errors.New("unknown isolation level")
	// ErrDirRequired is returned by Validate when Dir is empty.
	ErrDirRequired = errors.New("dir is required")
	// ErrNegativeThreshold is returned by Validate when MaxValueThreshold is
	// negative.
	ErrNegativeThreshold = errors.New("max value threshold must not be negative")
)
