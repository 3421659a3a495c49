package store

import (
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/tarantool/go-revision/crypto"
	"github.com/tarantool/go-revision/hasher"
	"github.com/tarantool/go-revision/marshaller"
)

const defaultPrefix = "/"

// Builder configures a Typed store. Every With method returns a copy, so a
// partially configured builder can be shared.
type Builder[T any] struct {
	storage    Storage
	hashers    []hasher.Hasher
	signers    []crypto.Signer
	verifiers  []crypto.Verifier
	marshaller marshaller.TypedMarshaller[T]
	prefix     string
	logger     *zap.Logger
}

// NewBuilder creates a builder that stores values encoded by m.
func NewBuilder[T any](storage Storage, m marshaller.TypedMarshaller[T]) Builder[T] {
	return Builder[T]{
		storage:    storage,
		hashers:    []hasher.Hasher{},
		signers:    []crypto.Signer{},
		verifiers:  []crypto.Verifier{},
		marshaller: m,
		prefix:     defaultPrefix,
		logger:     zap.NewNop(),
	}
}

func (b Builder[T]) copy() Builder[T] {
	return Builder[T]{
		storage:    b.storage,
		hashers:    slices.Clone(b.hashers),
		signers:    slices.Clone(b.signers),
		verifiers:  slices.Clone(b.verifiers),
		marshaller: b.marshaller,
		prefix:     b.prefix,
		logger:     b.logger,
	}
}

// WithStorage replaces the storage records are kept in.
func (b Builder[T]) WithStorage(storage Storage) Builder[T] {
	out := b.copy()
	out.storage = storage

	return out
}

// WithHasher stores and checks a digest of every record.
func (b Builder[T]) WithHasher(h hasher.Hasher) Builder[T] {
	out := b.copy()
	out.hashers = append(out.hashers, h)

	return out
}

// WithSigner signs every record written.
func (b Builder[T]) WithSigner(signer crypto.Signer) Builder[T] {
	out := b.copy()
	out.signers = append(out.signers, signer)

	return out
}

// WithVerifier requires a valid signature on every record read.
func (b Builder[T]) WithVerifier(verifier crypto.Verifier) Builder[T] {
	out := b.copy()
	out.verifiers = append(out.verifiers, verifier)

	return out
}

// WithSignerVerifier signs records on write and verifies them on read.
func (b Builder[T]) WithSignerVerifier(sv crypto.SignerVerifier) Builder[T] {
	return b.WithSigner(sv).WithVerifier(sv)
}

// WithMarshaller replaces the record encoding.
func (b Builder[T]) WithMarshaller(m marshaller.TypedMarshaller[T]) Builder[T] {
	out := b.copy()
	out.marshaller = m

	return out
}

// WithPrefix sets the key prefix. It must start and end with "/".
func (b Builder[T]) WithPrefix(prefix string) Builder[T] {
	out := b.copy()
	out.prefix = prefix

	return out
}

// WithLogger logs record migrations and integrity failures to logger.
func (b Builder[T]) WithLogger(logger *zap.Logger) Builder[T] {
	out := b.copy()
	out.logger = logger

	return out
}

func algorithmNames[A interface{ Name() string }](kind string, algs []A) ([]string, error) {
	names := make([]string, 0, len(algs))
	for _, alg := range algs {
		if slices.Contains(names, alg.Name()) {
			return nil, fmt.Errorf("%w: %s %q", ErrDuplicateAlgorithm, kind, alg.Name())
		}

		names = append(names, alg.Name())
	}

	return names, nil
}

// Build validates the configuration and creates the store.
func (b Builder[T]) Build() (*Typed[T], error) {
	if b.storage == nil {
		return nil, ErrNoStorage
	}

	if b.marshaller == nil {
		return nil, ErrNoMarshaller
	}

	if err := checkPrefix(b.prefix); err != nil {
		return nil, err
	}

	hashers, err := algorithmNames("hasher", b.hashers)
	if err != nil {
		return nil, err
	}

	signers, err := algorithmNames("signer", b.signers)
	if err != nil {
		return nil, err
	}

	verifiers, err := algorithmNames("verifier", b.verifiers)
	if err != nil {
		return nil, err
	}

	signatures := slices.Clone(signers)
	for _, name := range verifiers {
		if !slices.Contains(signatures, name) {
			signatures = append(signatures, name)
		}
	}

	return &Typed[T]{
		base:   b.storage,
		logger: b.logger.With(zap.String("prefix", b.prefix)),
		integrity: integrity[T]{
			namer: namer{
				prefix:     b.prefix,
				hashers:    hashers,
				signatures: signatures,
			},
			marshaller: b.marshaller,
			hashers:    slices.Clone(b.hashers),
			signers:    slices.Clone(b.signers),
			verifiers:  slices.Clone(b.verifiers),
		},
	}, nil
}
