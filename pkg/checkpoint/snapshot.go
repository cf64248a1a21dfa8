package checkpoint

import (
	"github.com/orneryd/statevec/pkg/chunk"
)

// Save spills one chunk of a container into the store under the given
// snapshot slot. The payload is the chunk codec's little-endian encoding
// in the container's storage precision.
func Save[T chunk.Amplitude](s *Store, c chunk.Container[T], iChunk, slot int) error {
	return s.Put(c.ID(), slot, chunk.Encode(c.ChunkSlice(iChunk)))
}

// Restore loads a spilled snapshot back into one chunk of the container.
// The snapshot must have been saved from a container with the same chunk
// geometry and storage precision; a size mismatch reports
// chunk.ErrBadPayload.
func Restore[T chunk.Amplitude](s *Store, c chunk.Container[T], iChunk, slot int) error {
	payload, err := s.Get(c.ID(), slot)
	if err != nil {
		return err
	}
	return chunk.Decode(c.ChunkSlice(iChunk), payload)
}
