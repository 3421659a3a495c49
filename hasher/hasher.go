// Package hasher computes digests of stored records.
package hasher

import (
	"crypto/sha1" //nolint:gosec
	"crypto/sha256"
	"errors"
	"fmt"
	"hash"
	"hash/crc32"
)

var (
	// ErrDataIsNil is returned if the passed data is nil.
	ErrDataIsNil = errors.New("data is nil")
	// ErrUnknownAlgorithm is returned by ByName for an unsupported name.
	ErrUnknownAlgorithm = errors.New("unknown hash algorithm")
)

// Hasher is the interface that storage hashers must implement.
type Hasher interface {
	// Name is used as a part of the key the digest is stored under.
	Name() string
	Hash(data []byte) ([]byte, error)
}

// digestHasher creates a fresh hash.Hash for every call, so it is safe for
// concurrent use.
type digestHasher struct {
	name    string
	newHash func() hash.Hash
}

// NewSHA256Hasher creates a SHA-256 hasher.
func NewSHA256Hasher() Hasher {
	return digestHasher{name: "sha256", newHash: sha256.New}
}

// NewSHA1Hasher creates a SHA-1 hasher.
func NewSHA1Hasher() Hasher {
	return digestHasher{name: "sha1", newHash: sha1.New} //nolint:gosec
}

// NewCRC32Hasher creates an IEEE CRC-32 hasher. The checksum is written
// big-endian, as hash.Hash32.Sum does.
func NewCRC32Hasher() Hasher {
	return digestHasher{name: "crc32", newHash: func() hash.Hash { return crc32.NewIEEE() }}
}

// ByName returns the hasher with the given Name.
func ByName(name string) (Hasher, error) {
	switch name {
	case "sha256":
		return NewSHA256Hasher(), nil
	case "sha1":
		return NewSHA1Hasher(), nil
	case "crc32":
		return NewCRC32Hasher(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
	}
}

// Name implements Hasher interface.
func (h digestHasher) Name() string {
	return h.name
}

// Hash implements Hasher interface.
func (h digestHasher) Hash(data []byte) ([]byte, error) {
	if data == nil {
		return nil, ErrDataIsNil
	}

	digest := h.newHash()

	n, err := digest.Write(data)
	if n < len(data) || err != nil {
		return nil, fmt.Errorf("failed to write data: %w", err)
	}

	return digest.Sum(nil), nil
}
