// Package chunk manages the memory backing a large statevector that is too
// big to treat as one allocation, or that must be spread across host memory
// and accelerator devices.
//
// The state is partitioned into fixed-size chunks of 2^chunkBits complex
// amplitudes. A container owns one flat buffer holding live chunks, scratch
// buffer slots and checkpoint slots packed back to back:
//
//	slot layout:  [0, chunks)                     live amplitude data
//	              [chunks, chunks+buffers)        scratch for multi-chunk ops
//	              [chunks+buffers, total slots)   checkpoint snapshots
//	slot offset:  slot << chunkBits
//
// Containers come in two flavors behind one contract: HostContainer over
// ordinary host memory and DeviceContainer over an accelerator memory space.
// Copy and swap operations accept a Handle that may point into either, so
// the execution driver moves chunks between spaces without knowing which is
// which.
//
// Concurrency model: all operations are synchronous and blocking. Copy,
// swap and zero against different chunk indices of the same container touch
// disjoint ranges and are safe to run concurrently; calls against the same
// index are not synchronized here and must be serialized by the caller.
// Matrix and parameter tables are not locked either; writers must make
// sure no reader is mid-operation.
package chunk

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Errors
var (
	// ErrOutOfMemory reports that an Allocate or Resize request exceeds
	// the memory space's capacity. The caller is expected to retry with a
	// smaller chunk count.
	ErrOutOfMemory = errors.New("chunk: requested allocation exceeds memory space capacity")

	// ErrBadSpace reports an Allocate against a memory space the
	// container cannot serve (e.g. a device ordinal the accelerator
	// manager does not know about).
	ErrBadSpace = errors.New("chunk: invalid memory space for this container")

	// ErrBadPayload reports a checkpoint payload whose length does not
	// match the destination chunk.
	ErrBadPayload = errors.New("chunk: payload length does not match chunk geometry")
)

// Amplitude is the storage precision of a container: single or double
// precision complex. Reductions always accumulate in complex128 regardless
// of T, bounding rounding error independent of the working precision.
type Amplitude interface {
	~complex64 | ~complex128
}

// Space identifies a memory space: SpaceHost for ordinary host memory,
// ordinals >= 0 for accelerator devices.
type Space int

// SpaceHost is the host memory space.
const SpaceHost Space = -1

// IsDevice reports whether the space is device-resident.
func (s Space) IsDevice() bool {
	return s >= 0
}

func (s Space) String() string {
	if s.IsDevice() {
		return fmt.Sprintf("device:%d", int(s))
	}
	return "host"
}

// Container is the contract every chunk container realizes, over host or
// device memory.
//
// Lifecycle: a container is constructed empty, Allocate sizes the buffer
// and pointer tables, zero or more Resize calls grow it (monotonic
// capacity: shrinking only updates the logical counts, it never
// reallocates), Deallocate releases everything and is idempotent.
//
// chunkBits is fixed for the container's lifetime once allocated; the two
// sides of a cross-space copy are assumed to share chunk geometry and this
// is deliberately not validated (caller invariant).
type Container[T Amplitude] interface {
	// ID is a unique identifier assigned at Allocate, used as the
	// checkpoint-store key prefix and in diagnostics.
	ID() uuid.UUID

	// Space returns the memory space holding the buffer.
	Space() Space

	// Size returns the backing buffer length in amplitudes.
	Size() int
	// ChunkBits returns log2 of amplitudes per chunk.
	ChunkBits() int
	// ChunkSize returns 1 << ChunkBits().
	ChunkSize() int
	NumChunks() int
	NumBuffers() int
	NumCheckpoints() int

	// BufferIndex maps scratch-buffer ordinal i to its slot index.
	BufferIndex(i int) int
	// CheckpointIndex maps checkpoint ordinal i to its slot index.
	CheckpointIndex(i int) int

	// Allocate reserves (chunks+buffers+checkpoints) << chunkBits
	// amplitudes plus pointer tables sized chunks+buffers, and returns
	// the number of live chunks actually allocated. Fails with
	// ErrOutOfMemory when the request exceeds the space's capacity.
	Allocate(space Space, chunkBits, chunks, buffers, checkpoints int) (int, error)

	// Resize grows the buffer only if the new total exceeds the current
	// allocation; otherwise it merely updates the logical counts in
	// place (data past the new boundaries becomes undefined). Returns
	// the new total slot count.
	Resize(chunks, buffers, checkpoints int) (int, error)

	// Deallocate releases the buffer and pointer tables. Idempotent.
	Deallocate()

	Get(i int) T
	Set(i int, v T)

	// Vector returns the raw backing buffer. Borrowed view: must not be
	// retained past the next Allocate/Resize/Deallocate.
	Vector() []T

	// ChunkSlice returns the borrowed view of one slot's amplitudes.
	// Same retention rule as Vector.
	ChunkSlice(slot int) []T

	// StoreMatrix records a borrowed view of externally owned gate
	// matrix storage for a chunk index. No copy is made; the caller
	// keeps the storage alive as long as the view may be used, and
	// refreshes it whenever the backing buffer is reallocated.
	StoreMatrix(mat []complex128, iChunk int)
	// StoreUintParams records a borrowed view of externally owned
	// auxiliary parameters. Same discipline as StoreMatrix.
	StoreUintParams(prm []uint64, iChunk int)
	Matrix(iChunk int) []complex128
	UintParams(iChunk int) []uint64

	// PeerAccess reports whether a direct (no host staging) transfer
	// path exists to another memory space.
	PeerAccess(other Space) bool

	// CopyIn copies one chunk from the handle's slot into slot iChunk
	// of this container. CopyOut is the mirror direction.
	CopyIn(src *Handle[T], iChunk int)
	CopyOut(dst *Handle[T], iChunk int)

	// CopyInRaw and CopyOutRaw are the raw-slice overloads: a plain
	// single-chunk block copy used for small-grain interop staging.
	CopyInRaw(src []T, iChunk int)
	CopyOutRaw(dst []T, iChunk int)

	// Swap exchanges one chunk's contents with the handle's slot in
	// place. Cross-space swaps stage through a scratch buffer (three
	// block transfers); same-space swaps exchange elementwise.
	Swap(src *Handle[T], iChunk int)

	// Zero writes count zero amplitudes starting at slot iChunk's
	// offset.
	Zero(iChunk, count int)

	// Norm sums the chunk's strided view, mapping elements through
	// squared magnitude when dot is set, and accumulates in complex128.
	Norm(iChunk, stride int, dot bool) complex128

	// SampleMeasure converts the chunk's strided view into an inclusive
	// prefix sum in place (squared-magnitude transform first when dot
	// is set) and locates each threshold's position by real-part lower
	// bound. Returned indices are local to the chunk, in input order.
	// Destructive: the chunk's amplitudes are replaced by the running
	// sum.
	SampleMeasure(iChunk int, rnds []float64, stride int, dot bool) []uint64
}

// Handle is a lightweight reference to one slot of some container, used to
// request copy/swap operations without knowing memory-space details. It is
// transient, valid for a single operation, and has no lifecycle of its own.
type Handle[T Amplitude] struct {
	container Container[T]
	pos       int
}

// NewHandle wraps a container slot.
func NewHandle[T Amplitude](c Container[T], pos int) *Handle[T] {
	return &Handle[T]{container: c, pos: pos}
}

// Container returns the owning container (non-owning reference).
func (h *Handle[T]) Container() Container[T] {
	return h.container
}

// Pos returns the slot index inside the owning container.
func (h *Handle[T]) Pos() int {
	return h.pos
}

// Device returns the owning memory space ordinal: >= 0 for device-resident,
// negative for host-resident.
func (h *Handle[T]) Device() int {
	return int(h.container.Space())
}

// transferRecorder is implemented by containers that account cross-space
// traffic (the device container reports into its gpu.Manager).
type transferRecorder interface {
	recordToDevice(bytes int64)
	recordFromDevice(bytes int64)
	recordStagedSwap(bytes int64)
}
