// Package drivertest checks that a driver.Driver implements the
// transaction semantics the store relies on.
package drivertest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tarantool/go-revision/driver"
	"github.com/tarantool/go-revision/kv"
	"github.com/tarantool/go-revision/operation"
	"github.com/tarantool/go-revision/predicate"
	"github.com/tarantool/go-revision/tx"
)

// Factory creates an empty driver for a single test.
type Factory func(t *testing.T) driver.Driver

// Run runs the whole suite against drivers created by factory.
func Run(t *testing.T, factory Factory) {
	t.Helper()

	tests := []struct {
		name string
		fn   func(t *testing.T, d driver.Driver)
	}{
		{"PutGet", testPutGet},
		{"GetMissing", testGetMissing},
		{"ResultsDetached", testResultsDetached},
		{"GetPrefix", testGetPrefix},
		{"Delete", testDelete},
		{"DeletePrefix", testDeletePrefix},
		{"Revisions", testRevisions},
		{"VersionPredicates", testVersionPredicates},
		{"ValuePredicates", testValuePredicates},
		{"UnsupportedPredicate", testUnsupportedPredicate},
		{"CanceledContext", testCanceledContext},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tt.fn(t, factory(t))
		})
	}
}

func execute(t *testing.T, d driver.Driver, preds []predicate.Predicate, thenOps, elseOps []operation.Operation) tx.Response {
	t.Helper()

	resp, err := d.Execute(context.Background(), preds, thenOps, elseOps)
	require.NoError(t, err)

	return resp
}

func put(t *testing.T, d driver.Driver, key, value string) {
	t.Helper()

	resp := execute(t, d, nil, []operation.Operation{operation.Put([]byte(key), []byte(value))}, nil)
	require.True(t, resp.Succeeded)
}

func get(t *testing.T, d driver.Driver, key string) []kv.KeyValue {
	t.Helper()

	resp := execute(t, d, nil, []operation.Operation{operation.Get([]byte(key))}, nil)
	require.Len(t, resp.Results, 1)

	return resp.Results[0].Values
}

func keys(pairs []kv.KeyValue) []string {
	out := make([]string, 0, len(pairs))
	for _, pair := range pairs {
		out = append(out, string(pair.Key))
	}

	return out
}

func testPutGet(t *testing.T, d driver.Driver) {
	resp := execute(t, d, nil, []operation.Operation{
		operation.Put([]byte("/a"), []byte("1")),
		operation.Get([]byte("/a")),
	}, nil)
	require.True(t, resp.Succeeded)
	require.Len(t, resp.Results, 2)
	assert.Empty(t, resp.Results[0].Values)
	require.Len(t, resp.Results[1].Values, 1)
	assert.Equal(t, []byte("1"), resp.Results[1].Values[0].Value)

	put(t, d, "/a", "2")

	values := get(t, d, "/a")
	require.Len(t, values, 1)
	assert.Equal(t, []byte("/a"), values[0].Key)
	assert.Equal(t, []byte("2"), values[0].Value)
	assert.Positive(t, values[0].ModRevision)
}

func testGetMissing(t *testing.T, d driver.Driver) {
	assert.Empty(t, get(t, d, "/missing"))
}

func testResultsDetached(t *testing.T, d driver.Driver) {
	put(t, d, "/p/a", "value")

	single := get(t, d, "/p/a")
	require.Len(t, single, 1)
	single[0].Key[1] = 'x'
	single[0].Value[0] = 'X'

	resp := execute(t, d, nil, []operation.Operation{
		operation.Get([]byte("/p/"), operation.WithPrefix()),
	}, nil)
	require.Len(t, resp.Results, 1)
	require.Len(t, resp.Results[0].Values, 1)
	resp.Results[0].Values[0].Value[1] = 'Y'

	values := get(t, d, "/p/a")
	require.Len(t, values, 1)
	assert.Equal(t, []byte("/p/a"), values[0].Key)
	assert.Equal(t, []byte("value"), values[0].Value)
}

func testGetPrefix(t *testing.T, d driver.Driver) {
	put(t, d, "/p/b", "2")
	put(t, d, "/p/a", "1")
	put(t, d, "/p/c/d", "3")
	put(t, d, "/q/a", "4")

	resp := execute(t, d, nil, []operation.Operation{
		operation.Get([]byte("/p/"), operation.WithPrefix()),
	}, nil)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, []string{"/p/a", "/p/b", "/p/c/d"}, keys(resp.Results[0].Values))
}

func testDelete(t *testing.T, d driver.Driver) {
	put(t, d, "/a", "1")

	resp := execute(t, d, nil, []operation.Operation{operation.Delete([]byte("/a"))}, nil)
	require.Len(t, resp.Results, 1)
	require.Len(t, resp.Results[0].Values, 1)
	assert.Equal(t, []byte("1"), resp.Results[0].Values[0].Value)

	assert.Empty(t, get(t, d, "/a"))

	resp = execute(t, d, nil, []operation.Operation{operation.Delete([]byte("/a"))}, nil)
	require.Len(t, resp.Results, 1)
	assert.Empty(t, resp.Results[0].Values)
}

func testDeletePrefix(t *testing.T, d driver.Driver) {
	put(t, d, "/p/a", "1")
	put(t, d, "/p/b", "2")
	put(t, d, "/q/a", "3")

	resp := execute(t, d, nil, []operation.Operation{
		operation.Delete([]byte("/p/"), operation.WithPrefix()),
	}, nil)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, []string{"/p/a", "/p/b"}, keys(resp.Results[0].Values))

	assert.Empty(t, get(t, d, "/p/a"))
	assert.Len(t, get(t, d, "/q/a"), 1)
}

func testRevisions(t *testing.T, d driver.Driver) {
	execute(t, d, nil, []operation.Operation{
		operation.Put([]byte("/a"), []byte("1")),
		operation.Put([]byte("/b"), []byte("1")),
	}, nil)

	first := get(t, d, "/a")[0].ModRevision
	assert.Equal(t, first, get(t, d, "/b")[0].ModRevision)

	put(t, d, "/a", "2")

	second := get(t, d, "/a")[0].ModRevision
	assert.Greater(t, second, first)
	assert.Equal(t, first, get(t, d, "/b")[0].ModRevision)
}

func testVersionPredicates(t *testing.T, d driver.Driver) {
	key := []byte("/cas")

	resp := execute(t, d,
		[]predicate.Predicate{predicate.VersionEqual(key, 0)},
		[]operation.Operation{operation.Put(key, []byte("created"))},
		[]operation.Operation{operation.Get(key)},
	)
	require.True(t, resp.Succeeded)

	revision := get(t, d, "/cas")[0].ModRevision

	resp = execute(t, d,
		[]predicate.Predicate{predicate.VersionEqual(key, 0)},
		[]operation.Operation{operation.Put(key, []byte("overwritten"))},
		[]operation.Operation{operation.Get(key)},
	)
	require.False(t, resp.Succeeded)
	require.Len(t, resp.Results, 1)
	require.Len(t, resp.Results[0].Values, 1)
	assert.Equal(t, []byte("created"), resp.Results[0].Values[0].Value)

	resp = execute(t, d,
		[]predicate.Predicate{
			predicate.VersionEqual(key, revision),
			predicate.VersionGreater(key, revision-1),
			predicate.VersionLess(key, revision+1),
			predicate.VersionNotEqual(key, revision+1),
		},
		[]operation.Operation{operation.Put(key, []byte("updated"))},
		nil,
	)
	require.True(t, resp.Succeeded)
	assert.Equal(t, []byte("updated"), get(t, d, "/cas")[0].Value)
}

func testValuePredicates(t *testing.T, d driver.Driver) {
	key := []byte("/v")
	put(t, d, "/v", "one")

	resp := execute(t, d,
		[]predicate.Predicate{predicate.ValueEqual(key, []byte("one"))},
		[]operation.Operation{operation.Put(key, []byte("two"))},
		nil,
	)
	require.True(t, resp.Succeeded)

	resp = execute(t, d,
		[]predicate.Predicate{predicate.ValueNotEqual(key, []byte("two"))},
		[]operation.Operation{operation.Put(key, []byte("three"))},
		nil,
	)
	require.False(t, resp.Succeeded)
	assert.Empty(t, resp.Results)
	assert.Equal(t, []byte("two"), get(t, d, "/v")[0].Value)

	resp = execute(t, d,
		[]predicate.Predicate{predicate.ValueEqual([]byte("/none"), []byte(""))},
		nil,
		nil,
	)
	assert.False(t, resp.Succeeded)
}

type greaterValue struct{}

func (greaterValue) Key() []byte              { return []byte("/v") }
func (greaterValue) Operation() predicate.Op  { return predicate.OpGreater }
func (greaterValue) Target() predicate.Target { return predicate.TargetValue }
func (greaterValue) Value() any               { return []byte("x") }

func testUnsupportedPredicate(t *testing.T, d driver.Driver) {
	put(t, d, "/v", "one")

	_, err := d.Execute(context.Background(), []predicate.Predicate{greaterValue{}},
		[]operation.Operation{operation.Put([]byte("/v"), []byte("two"))}, nil)
	require.ErrorIs(t, err, predicate.ErrUnsupported)

	assert.Equal(t, []byte("one"), get(t, d, "/v")[0].Value)
}

func testCanceledContext(t *testing.T, d driver.Driver) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := d.Execute(ctx, nil, []operation.Operation{operation.Put([]byte("/a"), []byte("1"))}, nil)
	require.ErrorIs(t, err, context.Canceled)
}
