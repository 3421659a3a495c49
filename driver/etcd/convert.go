package etcd

import (
	"fmt"

	etcd "go.etcd.io/etcd/client/v3"

	"github.com/tarantool/go-revision/kv"
	"github.com/tarantool/go-revision/operation"
	"github.com/tarantool/go-revision/predicate"
	"github.com/tarantool/go-revision/tx"
)

var compareResults = map[predicate.Op]string{
	predicate.OpEqual:    "=",
	predicate.OpNotEqual: "!=",
	predicate.OpGreater:  ">",
	predicate.OpLess:     "<",
}

// convertAll converts every element of in, stopping at the first failure.
func convertAll[In, Out any](in []In, convert func(In) (Out, error)) ([]Out, error) {
	out := make([]Out, 0, len(in))

	for _, item := range in {
		converted, err := convert(item)
		if err != nil {
			return nil, err
		}

		out = append(out, converted)
	}

	return out, nil
}

func unsupported(pred predicate.Predicate) error {
	return fmt.Errorf("%w: %s %s on %q",
		predicate.ErrUnsupported, pred.Target(), pred.Operation(), pred.Key())
}

func invalidValue(pred predicate.Predicate, expected string) error {
	return fmt.Errorf("%w: %s predicate on %q requires %s, got %T",
		predicate.ErrInvalidValue, pred.Target(), pred.Key(), expected, pred.Value())
}

// toCmp builds the etcd comparison for pred. Values only compare for
// equality; revisions compare with every operator.
func toCmp(pred predicate.Predicate) (etcd.Cmp, error) {
	result, known := compareResults[pred.Operation()]
	if !known {
		return etcd.Cmp{}, unsupported(pred)
	}

	key := string(pred.Key())

	switch pred.Target() {
	case predicate.TargetValue:
		value, ok := pred.Value().([]byte)
		if !ok {
			return etcd.Cmp{}, invalidValue(pred, "[]byte")
		}

		if pred.Operation() != predicate.OpEqual && pred.Operation() != predicate.OpNotEqual {
			return etcd.Cmp{}, unsupported(pred)
		}

		return etcd.Compare(etcd.Value(key), result, string(value)), nil
	case predicate.TargetVersion:
		revision, ok := pred.Value().(int64)
		if !ok {
			return etcd.Cmp{}, invalidValue(pred, "int64")
		}

		return etcd.Compare(etcd.ModRevision(key), result, revision), nil
	default:
		return etcd.Cmp{}, unsupported(pred)
	}
}

// toOp builds the etcd request for op. Deletes return the removed pairs.
func toOp(op operation.Operation) (etcd.Op, error) {
	key := string(op.Key())

	var opts []etcd.OpOption
	if op.IsPrefix() {
		opts = append(opts, etcd.WithPrefix())
	}

	switch op.Type() {
	case operation.TypeGet:
		return etcd.OpGet(key, opts...), nil
	case operation.TypeDelete:
		return etcd.OpDelete(key, append(opts, etcd.WithPrevKV())...), nil
	case operation.TypePut:
		// The client panics on a ranged put.
		if op.IsPrefix() {
			return etcd.Op{}, fmt.Errorf("%w: %q", errPrefixedPut, key)
		}

		return etcd.OpPut(key, string(op.Value())), nil
	default:
		return etcd.Op{}, fmt.Errorf("%w: %v", errUnsupportedOperationType, op.Type())
	}
}

type etcdPair interface {
	GetKey() []byte
	GetValue() []byte
	GetModRevision() int64
}

func pairs[P etcdPair](in []P) []kv.KeyValue {
	var out []kv.KeyValue

	for _, pair := range in {
		out = append(out, kv.KeyValue{
			Key:         pair.GetKey(),
			Value:       pair.GetValue(),
			ModRevision: pair.GetModRevision(),
		})
	}

	return out
}

// fromTxnResponse maps every etcd response to the pairs it carries. Puts
// carry none.
func fromTxnResponse(resp *etcd.TxnResponse) tx.Response {
	results := make([]tx.RequestResponse, 0, len(resp.Responses))

	for _, op := range resp.Responses {
		var values []kv.KeyValue

		if rng := op.GetResponseRange(); rng != nil {
			values = pairs(rng.GetKvs())
		} else if del := op.GetResponseDeleteRange(); del != nil {
			values = pairs(del.GetPrevKvs())
		}

		results = append(results, tx.RequestResponse{Values: values})
	}

	return tx.Response{
		Succeeded: resp.Succeeded,
		Results:   results,
	}
}
