package etcd //nolint:testpackage

import (
	"testing"

	pb "go.etcd.io/etcd/api/v3/etcdserverpb"
	etcd "go.etcd.io/etcd/client/v3"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tarantool/go-revision/operation"
	"github.com/tarantool/go-revision/predicate"
)

func TestToCmp(t *testing.T) {
	t.Parallel()

	key := []byte("/options/engine")

	tests := []struct {
		name   string
		pred   predicate.Predicate
		target pb.Compare_CompareTarget
		result pb.Compare_CompareResult
		union  any
	}{
		{
			"value equal", predicate.ValueEqual(key, []byte("rec")),
			pb.Compare_VALUE, pb.Compare_EQUAL, &pb.Compare_Value{Value: []byte("rec")},
		},
		{
			"value not equal", predicate.ValueNotEqual(key, []byte("rec")),
			pb.Compare_VALUE, pb.Compare_NOT_EQUAL, &pb.Compare_Value{Value: []byte("rec")},
		},
		{
			"empty value", predicate.ValueEqual(key, []byte{}),
			pb.Compare_VALUE, pb.Compare_EQUAL, &pb.Compare_Value{Value: []byte{}},
		},
		{
			"version equal", predicate.VersionEqual(key, 7),
			pb.Compare_MOD, pb.Compare_EQUAL, &pb.Compare_ModRevision{ModRevision: 7},
		},
		{
			"version not equal", predicate.VersionNotEqual(key, 7),
			pb.Compare_MOD, pb.Compare_NOT_EQUAL, &pb.Compare_ModRevision{ModRevision: 7},
		},
		{
			"version greater", predicate.VersionGreater(key, 7),
			pb.Compare_MOD, pb.Compare_GREATER, &pb.Compare_ModRevision{ModRevision: 7},
		},
		{
			"version less", predicate.VersionLess(key, 0),
			pb.Compare_MOD, pb.Compare_LESS, &pb.Compare_ModRevision{ModRevision: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cmp, err := toCmp(tt.pred)
			require.NoError(t, err)

			assert.Equal(t, key, cmp.KeyBytes())
			assert.Equal(t, tt.target, cmp.Target)
			assert.Equal(t, tt.result, cmp.Result)
			assert.Equal(t, tt.union, cmp.TargetUnion)
		})
	}
}

type customPredicate struct {
	target predicate.Target
	op     predicate.Op
	value  any
}

func (p customPredicate) Key() []byte              { return []byte("k") }
func (p customPredicate) Operation() predicate.Op  { return p.op }
func (p customPredicate) Target() predicate.Target { return p.target }
func (p customPredicate) Value() any               { return p.value }

func TestToCmp_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		pred     predicate.Predicate
		expected error
	}{
		{
			"value greater",
			customPredicate{target: predicate.TargetValue, op: predicate.OpGreater, value: []byte("v")},
			predicate.ErrUnsupported,
		},
		{
			"value less",
			customPredicate{target: predicate.TargetValue, op: predicate.OpLess, value: []byte("v")},
			predicate.ErrUnsupported,
		},
		{
			"unknown operator",
			customPredicate{target: predicate.TargetVersion, op: predicate.Op(42), value: int64(1)},
			predicate.ErrUnsupported,
		},
		{
			"unknown target",
			customPredicate{target: predicate.Target(42), op: predicate.OpEqual, value: int64(1)},
			predicate.ErrUnsupported,
		},
		{
			"version with bytes",
			customPredicate{target: predicate.TargetVersion, op: predicate.OpEqual, value: []byte("1")},
			predicate.ErrInvalidValue,
		},
		{
			"value with int",
			customPredicate{target: predicate.TargetValue, op: predicate.OpEqual, value: int64(1)},
			predicate.ErrInvalidValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := toCmp(tt.pred)
			require.ErrorIs(t, err, tt.expected)

			_, err = convertAll([]predicate.Predicate{predicate.VersionEqual([]byte("a"), 1), tt.pred}, toCmp)
			require.ErrorIs(t, err, tt.expected)
		})
	}
}

func TestToOp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		op    operation.Operation
		check func(op etcd.Op) bool
		key   string
		end   string
		value string
	}{
		{"get", operation.Get([]byte("/options/a")), etcd.Op.IsGet, "/options/a", "", ""},
		{"get prefix", operation.Get([]byte("/options/"), operation.WithPrefix()), etcd.Op.IsGet, "/options/", "/options0", ""},
		{"put", operation.Put([]byte("/options/a"), []byte("rec")), etcd.Op.IsPut, "/options/a", "", "rec"},
		{"delete", operation.Delete([]byte("/options/a")), etcd.Op.IsDelete, "/options/a", "", ""},
		{
			"delete prefix", operation.Delete([]byte("/options/"), operation.WithPrefix()),
			etcd.Op.IsDelete, "/options/", "/options0", "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			op, err := toOp(tt.op)
			require.NoError(t, err)

			assert.True(t, tt.check(op))
			assert.Equal(t, tt.key, string(op.KeyBytes()))
			assert.Equal(t, tt.end, string(op.RangeBytes()))
			assert.Equal(t, tt.value, string(op.ValueBytes()))
		})
	}

	ops, err := convertAll([]operation.Operation{}, toOp)
	require.NoError(t, err)
	assert.Empty(t, ops)
}

func TestToOp_PrefixedPut(t *testing.T) {
	t.Parallel()

	_, err := toOp(operation.Put([]byte("a/"), []byte("v"), operation.WithPrefix()))
	require.ErrorIs(t, err, errPrefixedPut)

	_, err = convertAll([]operation.Operation{
		operation.Get([]byte("a")),
		operation.Put([]byte("a/"), []byte("v"), operation.WithPrefix()),
	}, toOp)
	require.ErrorIs(t, err, errPrefixedPut)
}
