//nolint:testpackage
package tcs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	goOperation "github.com/tarantool/go-revision/operation"
	goPredicate "github.com/tarantool/go-revision/predicate"
)

func TestOperation_EncodeMsgpack(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		operation goOperation.Operation
		expected  []byte
	}{
		{
			name:      "put",
			operation: goOperation.Put([]byte("test-key"), []byte("test-value")),
			expected: []byte{
				0x93, 0xa3, 'p', 'u', 't',
				0xa8, 't', 'e', 's', 't', '-', 'k', 'e', 'y',
				0xaa, 't', 'e', 's', 't', '-', 'v', 'a', 'l', 'u', 'e',
			},
		},
		{
			name:      "get",
			operation: goOperation.Get([]byte("test-key")),
			expected: []byte{
				0x92, 0xa3, 'g', 'e', 't',
				0xa8, 't', 'e', 's', 't', '-', 'k', 'e', 'y',
			},
		},
		{
			name:      "get prefix",
			operation: goOperation.Get([]byte("/cfg/"), goOperation.WithPrefix()),
			expected: []byte{
				0x92, 0xa3, 'g', 'e', 't',
				0xa5, '/', 'c', 'f', 'g', '/',
			},
		},
		{
			name:      "delete",
			operation: goOperation.Delete([]byte("k")),
			expected:  []byte{0x92, 0xa6, 'd', 'e', 'l', 'e', 't', 'e', 0xa1, 'k'},
		},
		{
			name:      "put empty",
			operation: goOperation.Put(nil, nil),
			expected:  []byte{0x93, 0xa3, 'p', 'u', 't', 0xa0, 0xa0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			data, err := msgpack.Marshal(operation{Operation: tt.operation})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, data)
		})
	}
}

func TestCheckPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		operation goOperation.Operation
		valid     bool
	}{
		{"plain key", goOperation.Get([]byte("/cfg/a")), true},
		{"prefix with slash", goOperation.Delete([]byte("/cfg/"), goOperation.WithPrefix()), true},
		{"prefix without slash", goOperation.Get([]byte("/cfg"), goOperation.WithPrefix()), false},
		{"plain key with slash", goOperation.Get([]byte("/cfg/")), false},
		{"prefixed put", goOperation.Put([]byte("/cfg/"), nil, goOperation.WithPrefix()), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := checkPath(tt.operation)
			if tt.valid {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, ErrPrefixPath)
			}
		})
	}
}

func TestPredicate_EncodeMsgpack(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		predicate goPredicate.Predicate
		expected  []byte
	}{
		{
			name:      "value equal",
			predicate: goPredicate.ValueEqual([]byte("k"), []byte("v")),
			expected: []byte{
				0x94, 0xa5, 'v', 'a', 'l', 'u', 'e',
				0xa2, '=', '=', 0xa1, 'v', 0xa1, 'k',
			},
		},
		{
			name:      "value not equal",
			predicate: goPredicate.ValueNotEqual([]byte("k"), []byte("v")),
			expected: []byte{
				0x94, 0xa5, 'v', 'a', 'l', 'u', 'e',
				0xa2, '!', '=', 0xa1, 'v', 0xa1, 'k',
			},
		},
		{
			name:      "version greater",
			predicate: goPredicate.VersionGreater([]byte("k"), 5),
			expected: []byte{
				0x94, 0xac, 'm', 'o', 'd', '_', 'r', 'e', 'v', 'i', 's', 'i', 'o', 'n',
				0xa1, '>', 0x05, 0xa1, 'k',
			},
		},
		{
			name:      "version less",
			predicate: goPredicate.VersionLess([]byte("k"), 300),
			expected: []byte{
				0x94, 0xac, 'm', 'o', 'd', '_', 'r', 'e', 'v', 'i', 's', 'i', 'o', 'n',
				0xa1, '<', 0xcd, 0x01, 0x2c, 0xa1, 'k',
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			data, err := msgpack.Marshal(predicate{Predicate: tt.predicate})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, data)
		})
	}
}

type mockPredicate struct {
	operation goPredicate.Op
	target    goPredicate.Target
	value     any
}

func (m mockPredicate) Key() []byte                { return []byte("k") }
func (m mockPredicate) Operation() goPredicate.Op  { return m.operation }
func (m mockPredicate) Target() goPredicate.Target { return m.target }
func (m mockPredicate) Value() any                 { return m.value }

func TestPredicate_EncodeMsgpack_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		predicate mockPredicate
		expected  error
	}{
		{
			name:      "unknown operator",
			predicate: mockPredicate{operation: goPredicate.Op(999), target: goPredicate.TargetValue, value: []byte("v")},
			expected:  ErrUnknownOperator,
		},
		{
			name:      "unknown target",
			predicate: mockPredicate{operation: goPredicate.OpEqual, target: goPredicate.Target(999), value: []byte("v")},
			expected:  ErrUnknownTarget,
		},
		{
			name:      "string version",
			predicate: mockPredicate{operation: goPredicate.OpEqual, target: goPredicate.TargetVersion, value: "1"},
			expected:  goPredicate.ErrInvalidValue,
		},
		{
			name:      "int value",
			predicate: mockPredicate{operation: goPredicate.OpEqual, target: goPredicate.TargetValue, value: int64(1)},
			expected:  goPredicate.ErrInvalidValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := msgpack.Marshal(predicate{Predicate: tt.predicate})
			require.ErrorIs(t, err, tt.expected)

			var encErr EncodingError
			require.ErrorAs(t, err, &encErr)
			assert.Equal(t, "predicate", encErr.ObjectType)
		})
	}
}
