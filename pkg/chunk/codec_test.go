package chunk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodecRoundTripDouble(t *testing.T) {
	src := []complex128{complex(1.5, -2.5), complex(0, 3), complex(-0.25, 0)}

	payload := Encode(src)
	require.Len(t, payload, len(src)*16)

	dst := make([]complex128, len(src))
	require.NoError(t, Decode(dst, payload))
	assert.Equal(t, src, dst)
}

func TestCodecRoundTripSingle(t *testing.T) {
	src := []complex64{complex(0.5, -0.5), complex(1, 2)}

	payload := Encode(src)
	require.Len(t, payload, len(src)*8)

	dst := make([]complex64, len(src))
	require.NoError(t, Decode(dst, payload))
	assert.Equal(t, src, dst)
}

func TestCodecLengthMismatch(t *testing.T) {
	payload := Encode([]complex128{1, 2})

	dst := make([]complex128, 3)
	assert.ErrorIs(t, Decode(dst, payload), ErrBadPayload)

	assert.ErrorIs(t, Decode(dst, payload[:7]), ErrBadPayload)
}
