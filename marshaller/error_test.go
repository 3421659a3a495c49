package marshaller //nolint:testpackage

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalError(t *testing.T) {
	t.Parallel()

	parentErr := errors.New("yaml marshal error")

	t.Run("with parent error", func(t *testing.T) {
		t.Parallel()

		err := errMarshal("yaml", parentErr)
		require.Error(t, err)
		assert.Equal(t, "failed to marshal yaml: yaml marshal error", err.Error())

		var marshalErr MarshalError
		require.ErrorAs(t, err, &marshalErr)
		assert.Equal(t, "yaml", marshalErr.Format)
		require.ErrorIs(t, err, parentErr)
	})

	t.Run("with nil parent error", func(t *testing.T) {
		t.Parallel()

		require.NoError(t, errMarshal("yaml", nil))
	})
}

func TestUnmarshalError(t *testing.T) {
	t.Parallel()

	parentErr := errors.New("unexpected end of input")

	t.Run("with parent error", func(t *testing.T) {
		t.Parallel()

		err := errUnmarshal("binary", parentErr)
		require.Error(t, err)
		assert.Equal(t, "failed to unmarshal binary: unexpected end of input", err.Error())

		var unmarshalErr UnmarshalError
		require.ErrorAs(t, err, &unmarshalErr)
		assert.Equal(t, "binary", unmarshalErr.Format)
		assert.Equal(t, parentErr, unmarshalErr.Unwrap())
	})

	t.Run("with nil parent error", func(t *testing.T) {
		t.Parallel()

		require.NoError(t, errUnmarshal("binary", nil))
	})
}
