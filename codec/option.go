package codec

import (
	"github.com/tarantool/go-revision/internal/options"
)

// DefaultMaxLength is the default upper bound for a single byte string.
const DefaultMaxLength = 64 << 20

type readerOptions struct {
	maxLength uint64
}

func defaultReaderOptions() readerOptions {
	return readerOptions{maxLength: DefaultMaxLength}
}

// ReaderOption configures a Reader.
type ReaderOption = options.Callback[readerOptions]

// WithMaxLength limits the length of byte strings a Reader accepts.
// Longer strings fail with ErrLengthExceeded.
func WithMaxLength(n uint64) ReaderOption {
	return func(opts *readerOptions) {
		opts.maxLength = n
	}
}

func applyReaderOptions(opts []ReaderOption) readerOptions {
	return options.Apply(defaultReaderOptions, opts)
}
