package chunk

import (
	"github.com/orneryd/statevec/pkg/parallel"
)

// HostConfig configures a HostContainer.
type HostConfig struct {
	// Engine is the scheduling policy for internally parallel
	// operations. Nil selects parallel.Default().
	Engine *parallel.Engine

	// MaxBytes caps the backing buffer size (0 = unlimited). Allocate
	// and growing Resize calls report ErrOutOfMemory past the cap so
	// the driver can retry with fewer chunks.
	MaxBytes uint64

	// CoherentInterconnect reports peer access to device spaces. False
	// for ordinary host/device pairs; true only on architectures whose
	// interconnect gives the device coherent access to host memory.
	CoherentInterconnect bool
}

// HostContainer realizes the chunk container contract over host-resident
// memory. All internally parallel operations go through the configured
// parallel.Engine, which collapses to inline execution when the caller is
// already inside a parallel region.
//
// Example:
//
//	c := chunk.NewHostContainer[complex128](nil)
//	if _, err := c.Allocate(chunk.SpaceHost, 10, 4, 1, 0); err != nil {
//		return err
//	}
//	defer c.Deallocate()
//
//	c.Zero(0, c.ChunkSize())
//	total := c.Norm(0, 1, true) // complex(0, 0)
type HostContainer[T Amplitude] struct {
	containerState[T]

	engine   *parallel.Engine
	maxBytes uint64
	coherent bool
}

var _ Container[complex128] = (*HostContainer[complex128])(nil)

// NewHostContainer creates an empty host container. A nil config selects
// the default engine, no memory cap, and no coherent interconnect.
func NewHostContainer[T Amplitude](cfg *HostConfig) *HostContainer[T] {
	if cfg == nil {
		cfg = &HostConfig{}
	}
	eng := cfg.Engine
	if eng == nil {
		eng = parallel.Default()
	}
	return &HostContainer[T]{
		engine:   eng,
		maxBytes: cfg.MaxBytes,
		coherent: cfg.CoherentInterconnect,
	}
}

// Space returns SpaceHost.
func (c *HostContainer[T]) Space() Space {
	return SpaceHost
}

// Allocate reserves the flat buffer and pointer tables. The space argument
// is accepted for contract symmetry and ignored: a host container always
// allocates host memory.
func (c *HostContainer[T]) Allocate(_ Space, chunkBits, chunks, buffers, checkpoints int) (int, error) {
	if c.maxBytes > 0 && c.bytesFor(chunkBits, chunks+buffers+checkpoints) > c.maxBytes {
		return 0, ErrOutOfMemory
	}
	c.allocate(chunkBits, chunks, buffers, checkpoints)
	return chunks, nil
}

// Resize grows the buffer when the new slot total exceeds the current
// allocation and otherwise only updates the logical counts. Never shrinks
// the allocation.
func (c *HostContainer[T]) Resize(chunks, buffers, checkpoints int) (int, error) {
	if chunks+buffers+checkpoints > c.numChunks+c.numBuffers+c.numCheckpoints {
		if c.maxBytes > 0 && c.bytesFor(c.chunkBits, chunks+buffers+checkpoints) > c.maxBytes {
			return 0, ErrOutOfMemory
		}
	}
	return c.resize(chunks, buffers, checkpoints), nil
}

// Deallocate releases the buffer and pointer tables. Idempotent.
func (c *HostContainer[T]) Deallocate() {
	c.release()
}

// PeerAccess reports whether device spaces can address this container's
// memory directly.
func (c *HostContainer[T]) PeerAccess(other Space) bool {
	if !other.IsDevice() {
		return true
	}
	return c.coherent
}

// CopyIn copies one chunk from the handle's slot into slot iChunk.
//
// A device source is a single block transfer: the cross-space primitive is
// internally parallel. A host source is partitioned across the engine's
// workers unless the caller is already inside a parallel region, in which
// case the copy runs inline on the calling goroutine.
func (c *HostContainer[T]) CopyIn(src *Handle[T], iChunk int) {
	size := c.ChunkSize()
	dst := c.ChunkSlice(iChunk)
	from := src.Container().ChunkSlice(src.Pos())

	if src.Device() >= 0 {
		copy(dst, from[:size])
		if rec, ok := src.Container().(transferRecorder); ok {
			rec.recordFromDevice(int64(c.bytesFor(c.chunkBits, 1)))
		}
		return
	}
	c.engine.For(size, func(lo, hi int) {
		copy(dst[lo:hi], from[lo:hi])
	})
}

// CopyOut copies slot iChunk of this container into the handle's slot.
// Mirrors CopyIn's execution policy.
func (c *HostContainer[T]) CopyOut(dst *Handle[T], iChunk int) {
	size := c.ChunkSize()
	from := c.ChunkSlice(iChunk)
	to := dst.Container().ChunkSlice(dst.Pos())

	if dst.Device() >= 0 {
		copy(to, from[:size])
		if rec, ok := dst.Container().(transferRecorder); ok {
			rec.recordToDevice(int64(c.bytesFor(c.chunkBits, 1)))
		}
		return
	}
	c.engine.For(size, func(lo, hi int) {
		copy(to[lo:hi], from[lo:hi])
	})
}

// CopyInRaw performs a plain single-chunk block copy from a raw slice.
func (c *HostContainer[T]) CopyInRaw(src []T, iChunk int) {
	copy(c.ChunkSlice(iChunk), src[:c.ChunkSize()])
}

// CopyOutRaw performs a plain single-chunk block copy into a raw slice.
func (c *HostContainer[T]) CopyOutRaw(dst []T, iChunk int) {
	copy(dst[:c.ChunkSize()], c.ChunkSlice(iChunk))
}

// Swap exchanges slot iChunk's contents with the handle's slot in place.
//
// A device peer stages through a chunk-sized scratch buffer, three block
// transfers, since host and device memory cannot be exchanged atomically.
// A host peer swaps elementwise under the engine's execution policy.
func (c *HostContainer[T]) Swap(src *Handle[T], iChunk int) {
	size := c.ChunkSize()
	local := c.ChunkSlice(iChunk)
	peer := src.Container().ChunkSlice(src.Pos())

	if src.Device() >= 0 {
		tmp := make([]T, size)
		copy(tmp, local)
		copy(local, peer[:size])
		copy(peer, tmp)
		if rec, ok := src.Container().(transferRecorder); ok {
			rec.recordStagedSwap(3 * int64(c.bytesFor(c.chunkBits, 1)))
		}
		return
	}
	c.engine.For(size, func(lo, hi int) {
		for k := lo; k < hi; k++ {
			local[k], peer[k] = peer[k], local[k]
		}
	})
}

// Zero writes count zero amplitudes starting at slot iChunk's offset,
// under the engine's execution policy.
func (c *HostContainer[T]) Zero(iChunk, count int) {
	off := iChunk << c.chunkBits
	seg := c.data[off : off+count]
	c.engine.For(count, func(lo, hi int) {
		clear(seg[lo:hi])
	})
}

// Norm sums slot iChunk's strided view, through squared magnitude when dot
// is set, accumulating in complex128 regardless of storage precision.
func (c *HostContainer[T]) Norm(iChunk, stride int, dot bool) complex128 {
	return normKernel(c.ChunkSlice(iChunk), stride, dot, c.engine)
}

// SampleMeasure builds the chunk's cumulative distribution in place and
// returns, in input order, the first position at or above each threshold.
// See Container.SampleMeasure for the destructive-scan caveat.
func (c *HostContainer[T]) SampleMeasure(iChunk int, rnds []float64, stride int, dot bool) []uint64 {
	return sampleKernel(c.ChunkSlice(iChunk), rnds, stride, dot, c.engine)
}
