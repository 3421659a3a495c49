package pebble

import (
	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"go.uber.org/zap"

	"github.com/tarantool/go-revision/internal/options"
)

type config struct {
	fs     vfs.FS
	logger *zap.Logger
}

// Option configures Open.
type Option = options.Callback[config]

// WithFS makes the database use fs instead of the operating system's
// filesystem, e.g. vfs.NewMem() in tests.
func WithFS(fs vfs.FS) Option {
	return func(c *config) {
		c.fs = fs
	}
}

// WithLogger routes Pebble's own log output to logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

func applyOptions(opts []Option) config {
	return options.Apply(func() config {
		return config{fs: vfs.Default, logger: zap.NewNop()}
	}, opts)
}

func (c config) pebbleOptions() *pebble.Options {
	return &pebble.Options{ //nolint:exhaustruct
		FS:     c.fs,
		Logger: c.logger.Named("pebble").Sugar(),
	}
}
