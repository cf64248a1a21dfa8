package chunk

import (
	"unsafe"

	"github.com/google/uuid"
)

// elementBytes returns the storage size of one amplitude.
func elementBytes[T Amplitude]() uint64 {
	var zero T
	return uint64(unsafe.Sizeof(zero))
}

// containerState carries the bookkeeping shared by the host and device
// containers: the flat amplitude buffer, the slot arithmetic, and the
// borrowed matrix/parameter tables.
type containerState[T Amplitude] struct {
	id             uuid.UUID
	chunkBits      int
	numChunks      int
	numBuffers     int
	numCheckpoints int

	data []T

	// Borrowed views of externally owned storage, indexed by chunk.
	// Lifetime and refresh-on-reallocation are caller responsibilities.
	matrix [][]complex128
	params [][]uint64
}

// ID returns the identifier assigned at Allocate (zero before then).
func (s *containerState[T]) ID() uuid.UUID { return s.id }

// Size returns the backing buffer length in amplitudes.
func (s *containerState[T]) Size() int { return len(s.data) }

// ChunkBits returns log2 of amplitudes per chunk.
func (s *containerState[T]) ChunkBits() int { return s.chunkBits }

// ChunkSize returns the amplitudes per chunk.
func (s *containerState[T]) ChunkSize() int { return 1 << s.chunkBits }

func (s *containerState[T]) NumChunks() int      { return s.numChunks }
func (s *containerState[T]) NumBuffers() int     { return s.numBuffers }
func (s *containerState[T]) NumCheckpoints() int { return s.numCheckpoints }

// BufferIndex maps scratch-buffer ordinal i to its slot index.
func (s *containerState[T]) BufferIndex(i int) int {
	return s.numChunks + i
}

// CheckpointIndex maps checkpoint ordinal i to its slot index.
func (s *containerState[T]) CheckpointIndex(i int) int {
	return s.numChunks + s.numBuffers + i
}

func (s *containerState[T]) Get(i int) T    { return s.data[i] }
func (s *containerState[T]) Set(i int, v T) { s.data[i] = v }
func (s *containerState[T]) Vector() []T    { return s.data }

// ChunkSlice returns the borrowed view of one slot.
func (s *containerState[T]) ChunkSlice(slot int) []T {
	off := slot << s.chunkBits
	return s.data[off : off+(1<<s.chunkBits)]
}

// StoreMatrix records a borrowed view; no copy is made.
func (s *containerState[T]) StoreMatrix(mat []complex128, iChunk int) {
	s.matrix[iChunk] = mat
}

// StoreUintParams records a borrowed view; no copy is made.
func (s *containerState[T]) StoreUintParams(prm []uint64, iChunk int) {
	s.params[iChunk] = prm
}

func (s *containerState[T]) Matrix(iChunk int) []complex128 { return s.matrix[iChunk] }
func (s *containerState[T]) UintParams(iChunk int) []uint64 { return s.params[iChunk] }

// bytesFor computes the buffer footprint of a slot count.
func (s *containerState[T]) bytesFor(chunkBits, slots int) uint64 {
	return (uint64(slots) << chunkBits) * elementBytes[T]()
}

// allocate sizes the buffer and pointer tables from scratch.
func (s *containerState[T]) allocate(chunkBits, chunks, buffers, checkpoints int) {
	s.id = uuid.New()
	s.chunkBits = chunkBits
	s.numChunks = chunks
	s.numBuffers = buffers
	s.numCheckpoints = checkpoints
	s.data = make([]T, (chunks+buffers+checkpoints)<<chunkBits)
	s.matrix = make([][]complex128, chunks+buffers)
	s.params = make([][]uint64, chunks+buffers)
}

// resize grows the buffer only when the new slot total exceeds the current
// allocation, preserving existing contents; shrinking just updates the
// logical counts. Repeated chunk-count adjustments within a run must not
// reallocate.
func (s *containerState[T]) resize(chunks, buffers, checkpoints int) int {
	if chunks+buffers+checkpoints > s.numChunks+s.numBuffers+s.numCheckpoints {
		grown := make([]T, (chunks+buffers+checkpoints)<<s.chunkBits)
		copy(grown, s.data)
		s.data = grown

		mat := make([][]complex128, chunks+buffers)
		copy(mat, s.matrix)
		s.matrix = mat

		prm := make([][]uint64, chunks+buffers)
		copy(prm, s.params)
		s.params = prm
	}

	s.numChunks = chunks
	s.numBuffers = buffers
	s.numCheckpoints = checkpoints
	return chunks + buffers + checkpoints
}

// release drops the buffer and tables. Idempotent.
func (s *containerState[T]) release() {
	s.data = nil
	s.matrix = nil
	s.params = nil
	s.numChunks = 0
	s.numBuffers = 0
	s.numCheckpoints = 0
}
