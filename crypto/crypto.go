// Package crypto signs stored records and verifies their signatures.
//
// A store keeps one signature per algorithm next to each record, under a key
// derived from Algorithm.Name, so names must be stable across releases.
package crypto

// Algorithm names a signature scheme.
type Algorithm interface {
	Name() string
}

// Signer produces detached signatures of record bytes.
type Signer interface {
	Algorithm
	Sign(data []byte) ([]byte, error)
}

// Verifier checks a detached signature against record bytes and returns
// an error when they do not match.
type Verifier interface {
	Algorithm
	Verify(data, signature []byte) error
}

// SignerVerifier both signs and verifies with one key pair.
type SignerVerifier interface {
	Signer
	Verifier
}
