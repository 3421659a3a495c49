package tx

import (
	"github.com/tarantool/go-revision/kv"
)

// Response contains the result of a transaction execution.
type Response struct {
	// Succeeded reports whether the predicates held and Then was run.
	Succeeded bool
	// Results has one entry per operation of the branch that was run.
	Results []RequestResponse
}

// RequestResponse is the result of a single operation.
type RequestResponse struct {
	// Values are the pairs read by a get or removed by a delete.
	Values []kv.KeyValue
}
