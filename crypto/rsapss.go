package crypto

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"

	"github.com/tarantool/go-revision/hasher"
)

var (
	// ErrNoPrivateKey is returned by Sign when only a public key was given.
	ErrNoPrivateKey = errors.New("private key is not set")
	// ErrNoPublicKey is returned by Verify when no public key is known.
	ErrNoPublicKey = errors.New("public key is not set")
	// ErrInvalidPEM is returned when a PEM block holds no RSA key.
	ErrInvalidPEM = errors.New("no RSA key in PEM data")
)

// RSAPSS signs with RSASSA-PSS over a SHA-256 digest.
type RSAPSS struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	hash       crypto.Hash
	hasher     hasher.Hasher
}

var _ SignerVerifier = RSAPSS{} //nolint:exhaustruct

// NewRSAPSS creates a signer and verifier. The public key is taken from
// the private key when pubKey is nil; either may be nil for a verify-only
// or sign-only instance.
func NewRSAPSS(privKey *rsa.PrivateKey, pubKey *rsa.PublicKey) RSAPSS {
	if pubKey == nil && privKey != nil {
		pubKey = &privKey.PublicKey
	}

	return RSAPSS{
		privateKey: privKey,
		publicKey:  pubKey,
		hash:       crypto.SHA256,
		hasher:     hasher.NewSHA256Hasher(),
	}
}

// Name implements SignerVerifier interface.
func (r RSAPSS) Name() string {
	return "rsapss"
}

func (r RSAPSS) options() *rsa.PSSOptions {
	return &rsa.PSSOptions{
		SaltLength: rsa.PSSSaltLengthEqualsHash,
		Hash:       r.hash,
	}
}

// Sign generates SHA-256 digest and signs it using RSASSA-PSS.
func (r RSAPSS) Sign(data []byte) ([]byte, error) {
	if r.privateKey == nil {
		return nil, ErrNoPrivateKey
	}

	digest, err := r.hasher.Hash(data)
	if err != nil {
		return nil, fmt.Errorf("failed to get hash: %w", err)
	}

	signature, err := rsa.SignPSS(rand.Reader, r.privateKey, r.hash, digest, r.options())
	if err != nil {
		return nil, fmt.Errorf("failed to sign: %w", err)
	}

	return signature, nil
}

// Verify checks that signature was made over data by the private key
// matching the public one.
func (r RSAPSS) Verify(data []byte, signature []byte) error {
	if r.publicKey == nil {
		return ErrNoPublicKey
	}

	digest, err := r.hasher.Hash(data)
	if err != nil {
		return fmt.Errorf("failed to get hash: %w", err)
	}

	err = rsa.VerifyPSS(r.publicKey, r.hash, digest, signature, r.options())
	if err != nil {
		return fmt.Errorf("failed to verify: %w", err)
	}

	return nil
}

// ParsePrivateKeyPEM reads a PKCS#1 or PKCS#8 RSA private key.
func ParsePrivateKeyPEM(data []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, ErrInvalidPEM
	}

	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}

	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, ErrInvalidPEM
	}

	return key, nil
}

// ParsePublicKeyPEM reads a PKIX or PKCS#1 RSA public key.
func ParsePublicKeyPEM(data []byte) (*rsa.PublicKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, ErrInvalidPEM
	}

	if key, err := x509.ParsePKCS1PublicKey(block.Bytes); err == nil {
		return key, nil
	}

	parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}

	key, ok := parsed.(*rsa.PublicKey)
	if !ok {
		return nil, ErrInvalidPEM
	}

	return key, nil
}
