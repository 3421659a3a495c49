// Package options implements the functional options pattern shared by the
// codec readers, the drivers and the record store.
package options

// Constructor builds the initial value that callbacks are applied to.
type Constructor[T any] func() T

// Callback mutates a value under construction.
type Callback[T any] func(*T)

// Apply builds a value with constructor (or the zero value of T when
// constructor is nil) and then runs callbacks in order. Nil callbacks are skipped.
func Apply[T any](constructor Constructor[T], callbacks []Callback[T]) T {
	var out T

	if constructor != nil {
		out = constructor()
	}

	for _, cb := range callbacks {
		if cb == nil {
			continue
		}

		cb(&out)
	}

	return out
}

// Value returns a constructor that always yields v.
func Value[T any](v T) Constructor[T] {
	return func() T { return v }
}
