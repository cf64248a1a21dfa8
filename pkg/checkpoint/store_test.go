package checkpoint

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orneryd/statevec/pkg/chunk"
)

func newTestStore(t *testing.T, key []byte) *Store {
	t.Helper()
	s, err := Open(Options{InMemory: true, EncryptionKey: key})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStorePutGetDelete(t *testing.T) {
	s := newTestStore(t, nil)
	id := uuid.New()
	payload := []byte("amplitudes")

	require.NoError(t, s.Put(id, 0, payload))

	got, err := s.Get(id, 0)
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	// Unknown slot and unknown container both miss.
	_, err = s.Get(id, 1)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Get(uuid.New(), 0)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Delete(id, 0))
	_, err = s.Get(id, 0)
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting a missing snapshot is not an error.
	assert.NoError(t, s.Delete(id, 0))
}

func TestStorePutReplaces(t *testing.T) {
	s := newTestStore(t, nil)
	id := uuid.New()

	require.NoError(t, s.Put(id, 3, []byte("old")))
	require.NoError(t, s.Put(id, 3, []byte("new")))

	got, err := s.Get(id, 3)
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), got)
}

func TestStoreKeysIsolateContainers(t *testing.T) {
	s := newTestStore(t, nil)
	a, b := uuid.New(), uuid.New()

	require.NoError(t, s.Put(a, 0, []byte("a0")))
	require.NoError(t, s.Put(a, 1, []byte("a1")))
	require.NoError(t, s.Put(b, 0, []byte("b0")))

	require.NoError(t, s.DeleteContainer(a))

	_, err := s.Get(a, 0)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Get(a, 1)
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := s.Get(b, 0)
	require.NoError(t, err)
	assert.Equal(t, []byte("b0"), got)
}

func TestStoreEncryptionRoundTrip(t *testing.T) {
	key := bytes.Repeat([]byte{0x42}, 32)
	s := newTestStore(t, key)
	require.True(t, s.Sealed())

	id := uuid.New()
	payload := []byte("secret amplitudes")
	require.NoError(t, s.Put(id, 0, payload))

	got, err := s.Get(id, 0)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestStoreRejectsBadKey(t *testing.T) {
	_, err := Open(Options{InMemory: true, EncryptionKey: []byte("short")})
	assert.ErrorIs(t, err, ErrBadKey)
}

func TestStoreClosed(t *testing.T) {
	s := newTestStore(t, nil)
	require.NoError(t, s.Close())

	id := uuid.New()
	assert.ErrorIs(t, s.Put(id, 0, nil), ErrClosed)
	_, err := s.Get(id, 0)
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, s.Delete(id, 0), ErrClosed)

	// Close is idempotent.
	assert.NoError(t, s.Close())
}

func TestSaveRestoreChunk(t *testing.T) {
	s := newTestStore(t, bytes.Repeat([]byte{7}, 32))

	c := chunk.NewHostContainer[complex128](nil)
	_, err := c.Allocate(chunk.SpaceHost, 3, 2, 0, 0)
	require.NoError(t, err)
	defer c.Deallocate()

	want := make([]complex128, c.ChunkSize())
	for i := range want {
		want[i] = complex(float64(i), -float64(i))
	}
	c.CopyInRaw(want, 1)

	require.NoError(t, Save[complex128](s, c, 1, 0))

	c.Zero(1, c.ChunkSize())
	require.NoError(t, Restore[complex128](s, c, 1, 0))
	assert.Equal(t, want, c.ChunkSlice(1))
}

func TestRestoreGeometryMismatch(t *testing.T) {
	s := newTestStore(t, nil)

	c := chunk.NewHostContainer[complex128](nil)
	_, err := c.Allocate(chunk.SpaceHost, 2, 1, 0, 0)
	require.NoError(t, err)
	defer c.Deallocate()

	// A payload shorter than the chunk must be rejected.
	require.NoError(t, s.Put(c.ID(), 0, []byte{1, 2, 3}))
	assert.ErrorIs(t, Restore[complex128](s, c, 0, 0), chunk.ErrBadPayload)
}
