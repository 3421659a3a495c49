package predicate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tarantool/go-option"

	"github.com/tarantool/go-revision/kv"
	"github.com/tarantool/go-revision/predicate"
)

func TestConstructors(t *testing.T) {
	t.Parallel()

	key := []byte("test-key")
	value := []byte("test-value")

	tests := []struct {
		name   string
		pred   predicate.Predicate
		op     predicate.Op
		target predicate.Target
		value  any
	}{
		{"ValueEqual", predicate.ValueEqual(key, value), predicate.OpEqual, predicate.TargetValue, value},
		{"ValueNotEqual", predicate.ValueNotEqual(key, value), predicate.OpNotEqual, predicate.TargetValue, value},
		{"VersionEqual", predicate.VersionEqual(key, 1), predicate.OpEqual, predicate.TargetVersion, int64(1)},
		{"VersionNotEqual", predicate.VersionNotEqual(key, 2), predicate.OpNotEqual, predicate.TargetVersion, int64(2)},
		{"VersionGreater", predicate.VersionGreater(key, 3), predicate.OpGreater, predicate.TargetVersion, int64(3)},
		{"VersionLess", predicate.VersionLess(key, 4), predicate.OpLess, predicate.TargetVersion, int64(4)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, key, tt.pred.Key())
			assert.Equal(t, tt.op, tt.pred.Operation())
			assert.Equal(t, tt.target, tt.pred.Target())
			assert.Equal(t, tt.value, tt.pred.Value())
		})
	}
}

func TestEvaluate(t *testing.T) {
	t.Parallel()

	key := []byte("k")
	stored := option.Some(kv.KeyValue{Key: key, Value: []byte("v"), ModRevision: 5})
	missing := option.None[kv.KeyValue]()

	tests := []struct {
		name     string
		pred     predicate.Predicate
		current  option.Generic[kv.KeyValue]
		expected bool
	}{
		{"version equal", predicate.VersionEqual(key, 5), stored, true},
		{"version equal other", predicate.VersionEqual(key, 4), stored, false},
		{"version equal zero on missing", predicate.VersionEqual(key, 0), missing, true},
		{"version not equal", predicate.VersionNotEqual(key, 4), stored, true},
		{"version greater", predicate.VersionGreater(key, 4), stored, true},
		{"version greater missing", predicate.VersionGreater(key, 0), missing, false},
		{"version less", predicate.VersionLess(key, 6), stored, true},
		{"version less equal", predicate.VersionLess(key, 5), stored, false},
		{"value equal", predicate.ValueEqual(key, []byte("v")), stored, true},
		{"value equal other", predicate.ValueEqual(key, []byte("w")), stored, false},
		{"value not equal", predicate.ValueNotEqual(key, []byte("w")), stored, true},
		{"value equal missing", predicate.ValueEqual(key, nil), missing, false},
		{"value not equal missing", predicate.ValueNotEqual(key, []byte("w")), missing, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result, err := predicate.Evaluate(tt.pred, tt.current)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

type rawPredicate struct {
	op     predicate.Op
	target predicate.Target
	value  any
}

func (p rawPredicate) Key() []byte              { return []byte("k") }
func (p rawPredicate) Operation() predicate.Op  { return p.op }
func (p rawPredicate) Target() predicate.Target { return p.target }
func (p rawPredicate) Value() any               { return p.value }

func TestEvaluate_Errors(t *testing.T) {
	t.Parallel()

	current := option.Some(kv.KeyValue{Key: []byte("k"), Value: []byte("v"), ModRevision: 1})

	_, err := predicate.Evaluate(rawPredicate{predicate.OpGreater, predicate.TargetValue, []byte("v")}, current)
	require.ErrorIs(t, err, predicate.ErrUnsupported)

	_, err = predicate.Evaluate(rawPredicate{predicate.OpEqual, predicate.TargetVersion, "1"}, current)
	require.ErrorIs(t, err, predicate.ErrInvalidValue)

	_, err = predicate.Evaluate(rawPredicate{predicate.OpEqual, predicate.TargetValue, 1}, current)
	require.ErrorIs(t, err, predicate.ErrInvalidValue)

	_, err = predicate.Evaluate(rawPredicate{predicate.OpEqual, predicate.Target(9), int64(1)}, current)
	require.ErrorIs(t, err, predicate.ErrUnsupported)
}
