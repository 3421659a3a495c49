// Package options defines the revisioned configuration record of the storage
// engine and its isolation level enum.
package options

import (
	"errors"
	"fmt"

	"github.com/tarantool/go-revision"
	"github.com/tarantool/go-revision/codec"
)

// Revision is the current revision of Options.
//
//	1: initial shape.
//	2: max_key_size and max_value_size removed.
//	3: enable_versions added.
//	4: cache_on_write added.
const Revision = 4

const (
	defaultMaxValueThreshold        = 64
	defaultMaxSegmentSize           = 1 << 29
	defaultMaxValueCacheSize        = 100000
	defaultMaxCompactionSegmentSize = 1 << 30
)

// Options configures a storage engine instance. It is read-only once the
// engine has been opened with it.
type Options struct {
	// Dir is the directory with database files. It has no default.
	Dir string `json:"dir" yaml:"dir"`
	// IsolationLevel of engine transactions.
	IsolationLevel IsolationLevel `json:"isolation_level" yaml:"isolation_level"`
	// MaxValueThreshold is the largest value size kept next to its key;
	// larger values are stored out of line.
	MaxValueThreshold int `json:"max_value_threshold" yaml:"max_value_threshold"`
	// MaxSegmentSize bounds a single storage segment.
	MaxSegmentSize uint64 `json:"max_segment_size" yaml:"max_segment_size"`
	// MaxValueCacheSize bounds the in-memory value cache.
	MaxValueCacheSize uint64 `json:"max_value_cache_size" yaml:"max_value_cache_size"`
	// MaxCompactionSegmentSize bounds a single compaction unit.
	MaxCompactionSegmentSize uint64 `json:"max_compaction_segment_size" yaml:"max_compaction_segment_size"`
	// DiskPersistence keeps data on disk; when false data lives in memory only.
	DiskPersistence bool `json:"disk_persistence" yaml:"disk_persistence"`
	// EnableVersions turns on multi-version value storage.
	EnableVersions bool `json:"enable_versions" yaml:"enable_versions"`
	// CacheOnWrite populates the value cache on writes instead of reads.
	CacheOnWrite bool `json:"cache_on_write" yaml:"cache_on_write"`
}

// Default returns options with every field set to its default value.
// Dir is left empty and must be set before the engine is opened.
func Default() Options {
	return Options{
		Dir:                      "",
		IsolationLevel:           SnapshotIsolation,
		MaxValueThreshold:        defaultMaxValueThreshold,
		MaxSegmentSize:           defaultMaxSegmentSize,
		MaxValueCacheSize:        defaultMaxValueCacheSize,
		MaxCompactionSegmentSize: defaultMaxCompactionSegmentSize,
		DiskPersistence:          true,
		EnableVersions:           true,
		CacheOnWrite:             false,
	}
}

// New returns Default().
func New() Options {
	return Default()
}

// ShouldPersistData reports whether the data should be persisted on disk.
func (o Options) ShouldPersistData() bool {
	return o.DiskPersistence
}

// Validate checks the options that have no usable default.
func (o Options) Validate() error {
	var errs []error

	if o.Dir == "" {
		errs = append(errs, ErrDirRequired)
	}

	if o.MaxValueThreshold < 0 {
		errs = append(errs, fmt.Errorf("%w: %d", ErrNegativeThreshold, o.MaxValueThreshold))
	}

	if _, ok := IsolationLevelSchema.Tag(o.IsolationLevel); !ok {
		errs = append(errs, fmt.Errorf("%w: %d", ErrUnknownIsolationLevel, uint8(o.IsolationLevel)))
	}

	return errors.Join(errs...)
}

// The retired size limits carry nothing the engine still uses.
func ignoreMaxKeySize(*Options, uint16, uint64) error   { return nil }
func ignoreMaxValueSize(*Options, uint16, uint64) error { return nil }

// Schema is the field table of Options. Field order is the wire order.
var Schema = revision.MustSchema("Options", Revision, Default,
	revision.NewField("dir", revision.Always(), revision.String(),
		func(o *Options) *string { return &o.Dir }),
	revision.NewField("isolation_level", revision.Always(), revision.Variant(IsolationLevelSchema),
		func(o *Options) *IsolationLevel { return &o.IsolationLevel }),
	revision.NewRetiredField("max_key_size", revision.Between(1, 2), revision.Uint64(), ignoreMaxKeySize),
	revision.NewRetiredField("max_value_size", revision.Between(1, 2), revision.Uint64(), ignoreMaxValueSize),
	revision.NewField("max_value_threshold", revision.Always(), revision.Int(),
		func(o *Options) *int { return &o.MaxValueThreshold }),
	revision.NewField("max_segment_size", revision.Always(), revision.Uint64(),
		func(o *Options) *uint64 { return &o.MaxSegmentSize }),
	revision.NewField("max_value_cache_size", revision.Always(), revision.Uint64(),
		func(o *Options) *uint64 { return &o.MaxValueCacheSize }),
	revision.NewField("max_compaction_segment_size", revision.Always(), revision.Uint64(),
		func(o *Options) *uint64 { return &o.MaxCompactionSegmentSize }),
	revision.NewField("disk_persistence", revision.Always(), revision.Bool(),
		func(o *Options) *bool { return &o.DiskPersistence }),
	revision.NewField("enable_versions", revision.Since(3), revision.Bool(),
		func(o *Options) *bool { return &o.EnableVersions }),
	revision.NewField("cache_on_write", revision.Since(4), revision.Bool(),
		func(o *Options) *bool { return &o.CacheOnWrite }),
)

// Encode writes o at the current revision.
func Encode(w codec.Writer, o Options) error {
	return Schema.Encode(w, &o)
}

// Decode reads options written at any revision up to known.
func Decode(r codec.Reader, known uint16) (Options, error) {
	return Schema.DecodeRevision(r, known)
}

// Marshal encodes o with the binary codec.
func Marshal(o Options) ([]byte, error) {
	return Schema.Marshal(o)
}

// Unmarshal decodes a complete binary options record.
func Unmarshal(data []byte) (Options, error) {
	return Schema.Unmarshal(data)
}
