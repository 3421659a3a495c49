package predicate_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tarantool/go-revision/predicate"
)

func TestStrings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value    fmt.Stringer
		expected string
	}{
		{predicate.OpEqual, "Equal"},
		{predicate.OpNotEqual, "NotEqual"},
		{predicate.OpGreater, "Greater"},
		{predicate.OpLess, "Less"},
		{predicate.Op(99), "Unknown"},
		{predicate.TargetVersion, "Version"},
		{predicate.TargetValue, "Value"},
		{predicate.Target(99), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, tt.value.String())
		})
	}
}
