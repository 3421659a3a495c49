package store

import (
	"fmt"
	"strings"
)

// keyType tells what a stored key holds.
type keyType int

const (
	keyTypeValue keyType = iota + 1
	keyTypeHash
	keyTypeSignature
)

const (
	hashSegment = "hash"
	sigSegment  = "sig"
)

func (k keyType) String() string {
	switch k {
	case keyTypeValue:
		return "value"
	case keyTypeHash:
		return hashSegment
	case keyTypeSignature:
		return sigSegment
	default:
		return "unknown"
	}
}

// key is a parsed storage key. For a record "db" under "/options/":
//
//	/options/db              the encoded record
//	/options/hash/sha256/db  its digest
//	/options/sig/rsapss/db   its signature
type key struct {
	name     string
	typ      keyType
	property string
}

func (k key) build(prefix string) string {
	switch k.typ {
	case keyTypeHash, keyTypeSignature:
		return prefix + k.typ.String() + "/" + k.property + "/" + k.name
	default:
		return prefix + k.name
	}
}

// namer lays records out under a prefix ending in "/".
type namer struct {
	prefix     string
	hashers    []string
	signatures []string
}

func checkPrefix(prefix string) error {
	if !strings.HasPrefix(prefix, "/") || !strings.HasSuffix(prefix, "/") {
		return fmt.Errorf("%w: %q must start and end with /", ErrInvalidPrefix, prefix)
	}

	return nil
}

// checkName rejects names that are empty, start or end with "/", or would
// collide with the digest and signature subtrees.
func checkName(name string) error {
	first, _, _ := strings.Cut(name, "/")

	switch {
	case name == "":
		return fmt.Errorf("%w: empty", ErrInvalidName)
	case strings.HasPrefix(name, "/") || strings.HasSuffix(name, "/"):
		return fmt.Errorf("%w: %q starts or ends with /", ErrInvalidName, name)
	case first == hashSegment || first == sigSegment:
		return fmt.Errorf("%w: %q is reserved", ErrInvalidName, name)
	default:
		return nil
	}
}

// keys returns the value key first, then one key per digest and signature.
func (n namer) keys(name string) []key {
	out := make([]key, 0, 1+len(n.hashers)+len(n.signatures))
	out = append(out, key{name: name, typ: keyTypeValue, property: ""})

	for _, alg := range n.hashers {
		out = append(out, key{name: name, typ: keyTypeHash, property: alg})
	}

	for _, alg := range n.signatures {
		out = append(out, key{name: name, typ: keyTypeSignature, property: alg})
	}

	return out
}

func (n namer) valueKey(name string) []byte {
	return []byte(key{name: name, typ: keyTypeValue, property: ""}.build(n.prefix))
}

func (n namer) parse(raw []byte) (key, error) {
	rest, ok := strings.CutPrefix(string(raw), n.prefix)
	if !ok || rest == "" {
		return key{}, fmt.Errorf("%w: %q is outside %q", ErrInvalidKey, raw, n.prefix)
	}

	segment, tail, _ := strings.Cut(rest, "/")

	var typ keyType

	switch segment {
	case hashSegment:
		typ = keyTypeHash
	case sigSegment:
		typ = keyTypeSignature
	default:
		return key{name: rest, typ: keyTypeValue, property: ""}, nil
	}

	property, name, ok := strings.Cut(tail, "/")
	if !ok || property == "" || name == "" {
		return key{}, fmt.Errorf("%w: %q has no algorithm or name", ErrInvalidKey, raw)
	}

	return key{name: name, typ: typ, property: property}, nil
}
