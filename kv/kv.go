// Package kv defines the key-value pair returned by storage drivers.
package kv

// KeyValue represents a key-value pair with revision metadata.
type KeyValue struct {
	// Key is the full key, including any prefix.
	Key []byte
	// Value is the stored bytes.
	Value []byte

	// ModRevision is the store revision of the last modification to this key.
	ModRevision int64
}
