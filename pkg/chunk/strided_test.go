package chunk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStridedLen(t *testing.T) {
	tests := []struct {
		name   string
		size   int
		stride int
		want   int
	}{
		{"stride one", 8, 1, 8},
		{"even split", 8, 2, 4},
		{"ragged tail", 7, 2, 4},
		{"stride past end", 3, 8, 1},
		{"empty", 0, 2, 0},
		{"stride clamped to one", 5, 0, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewStrided(make([]complex128, tt.size), tt.stride)
			assert.Equal(t, tt.want, v.Len())
		})
	}
}

func TestStridedAccess(t *testing.T) {
	data := []complex128{0, 10, 20, 30, 40, 50}
	v := NewStrided(data, 3)

	assert.Equal(t, 2, v.Len())
	assert.Equal(t, complex128(0), v.At(0))
	assert.Equal(t, complex128(30), v.At(1))

	v.Set(1, 99)
	assert.Equal(t, complex128(99), data[3])
	assert.Equal(t, complex128(10), data[1]) // untouched
}
