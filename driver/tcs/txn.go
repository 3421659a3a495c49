package tcs

import (
	"github.com/vmihailenco/msgpack/v5"

	"github.com/tarantool/go-revision/kv"
	"github.com/tarantool/go-revision/tx"
)

// txnPair is one key reported by a transaction operation.
type txnPair struct {
	Path        []byte `msgpack:"path"`
	Value       []byte `msgpack:"value"`
	ModRevision int64  `msgpack:"mod_revision"`
}

// keyValue falls back to the transaction revision for pairs reported
// without their own, which is what deletes do.
func (p txnPair) keyValue(txnRevision int64) kv.KeyValue {
	revision := p.ModRevision
	if revision == 0 {
		revision = txnRevision
	}

	return kv.KeyValue{
		Key:         p.Path,
		Value:       p.Value,
		ModRevision: revision,
	}
}

// txnReply is the tuple returned by the transaction function:
//
//	{data = {is_success = ..., responses = {{pair, ...}, ...}}, revision = ...}
type txnReply struct {
	succeeded bool
	revision  int64
	results   [][]txnPair
}

// DecodeMsgpack implements msgpack.CustomDecoder.
func (r *txnReply) DecodeMsgpack(decoder *msgpack.Decoder) error {
	var wire struct {
		Data struct {
			IsSuccess bool        `msgpack:"is_success"`
			Responses [][]txnPair `msgpack:"responses"`
		} `msgpack:"data"`
		Revision int64 `msgpack:"revision"`
	}

	if err := decoder.Decode(&wire); err != nil {
		return NewTxnReplyDecodingError(err)
	}

	*r = txnReply{
		succeeded: wire.Data.IsSuccess,
		revision:  wire.Revision,
		results:   wire.Data.Responses,
	}

	return nil
}

func (r txnReply) response() tx.Response {
	results := make([]tx.RequestResponse, 0, len(r.results))

	for _, pairs := range r.results {
		values := make([]kv.KeyValue, 0, len(pairs))
		for _, pair := range pairs {
			values = append(values, pair.keyValue(r.revision))
		}

		results = append(results, tx.RequestResponse{Values: values})
	}

	return tx.Response{
		Succeeded: r.succeeded,
		Results:   results,
	}
}
