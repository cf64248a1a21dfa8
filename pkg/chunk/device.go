package chunk

import (
	"github.com/orneryd/statevec/pkg/gpu"
	"github.com/orneryd/statevec/pkg/parallel"
)

// DeviceConfig configures a DeviceContainer.
type DeviceConfig struct {
	// Manager resolves device ordinals, capacities and peer paths. Nil
	// lazily constructs a default manager (emulated fallback enabled).
	Manager *gpu.Manager

	// Engine is the scheduling policy for same-space operations on the
	// host-backed mirror. Nil selects parallel.Default().
	Engine *parallel.Engine

	// MaxBytes overrides the device's reported capacity when non-zero.
	MaxBytes uint64

	// CoherentInterconnect reports peer access to the host space. False
	// on ordinary PCIe systems; true only on architectures whose
	// interconnect gives the device coherent access to host memory.
	CoherentInterconnect bool
}

// DeviceContainer realizes the chunk container contract over a device
// memory space. The buffer itself lives in host memory mirroring the
// device allocation, which keeps the container usable on machines without
// an accelerator; what makes it a device container is the transfer
// accounting, the capacity negotiation against the device's reported
// memory, and the peer-path rules applied to copies and swaps.
//
// Cross-space operations against a host peer are single block transfers
// and are recorded into the gpu.Manager. Device-to-device operations
// between ordinals without a peer path stage through the host.
type DeviceContainer[T Amplitude] struct {
	containerState[T]

	manager  *gpu.Manager
	engine   *parallel.Engine
	space    Space
	maxBytes uint64
	coherent bool
}

var (
	_ Container[complex64] = (*DeviceContainer[complex64])(nil)
	_ transferRecorder     = (*DeviceContainer[complex128])(nil)
)

// NewDeviceContainer creates an empty device container. A nil config (or
// nil fields) selects a default manager and engine.
func NewDeviceContainer[T Amplitude](cfg *DeviceConfig) (*DeviceContainer[T], error) {
	if cfg == nil {
		cfg = &DeviceConfig{}
	}
	mgr := cfg.Manager
	if mgr == nil {
		var err error
		mgr, err = gpu.NewManager(nil)
		if err != nil {
			return nil, err
		}
	}
	eng := cfg.Engine
	if eng == nil {
		eng = parallel.Default()
	}
	return &DeviceContainer[T]{
		manager:  mgr,
		engine:   eng,
		space:    SpaceHost, // unset until Allocate
		maxBytes: cfg.MaxBytes,
		coherent: cfg.CoherentInterconnect,
	}, nil
}

// Manager returns the accelerator manager accounting this container's
// transfers.
func (c *DeviceContainer[T]) Manager() *gpu.Manager {
	return c.manager
}

// Space returns the device ordinal bound at Allocate (SpaceHost before
// then).
func (c *DeviceContainer[T]) Space() Space {
	return c.space
}

// Allocate binds the container to a device ordinal and reserves the
// buffer. The space must be a device ordinal the manager knows about;
// requests past the device's capacity (or MaxBytes, when set) fail with
// ErrOutOfMemory so the driver can retry with fewer chunks.
func (c *DeviceContainer[T]) Allocate(space Space, chunkBits, chunks, buffers, checkpoints int) (int, error) {
	if !space.IsDevice() {
		return 0, ErrBadSpace
	}
	if _, err := c.manager.Device(int(space)); err != nil {
		return 0, ErrBadSpace
	}
	if budget := c.budget(space); budget > 0 && c.bytesFor(chunkBits, chunks+buffers+checkpoints) > budget {
		return 0, ErrOutOfMemory
	}
	c.space = space
	c.allocate(chunkBits, chunks, buffers, checkpoints)
	return chunks, nil
}

// Resize grows the buffer when the new slot total exceeds the current
// allocation and otherwise only updates the logical counts. Never shrinks
// the allocation.
func (c *DeviceContainer[T]) Resize(chunks, buffers, checkpoints int) (int, error) {
	if chunks+buffers+checkpoints > c.numChunks+c.numBuffers+c.numCheckpoints {
		if budget := c.budget(c.space); budget > 0 && c.bytesFor(c.chunkBits, chunks+buffers+checkpoints) > budget {
			return 0, ErrOutOfMemory
		}
	}
	return c.resize(chunks, buffers, checkpoints), nil
}

// Deallocate releases the buffer and unbinds the device ordinal.
// Idempotent.
func (c *DeviceContainer[T]) Deallocate() {
	c.release()
	c.space = SpaceHost
}

// budget returns the byte capacity for a device ordinal: MaxBytes when
// configured, else the device's reported memory (0 = unlimited).
func (c *DeviceContainer[T]) budget(space Space) uint64 {
	if c.maxBytes > 0 {
		return c.maxBytes
	}
	if mb := c.manager.MemoryMB(int(space)); mb > 0 {
		return uint64(mb) << 20
	}
	return 0
}

// PeerAccess reports whether a direct transfer path exists to another
// memory space. Host memory is reachable directly only over a coherent
// interconnect; device peers go through the manager's peer-path query.
func (c *DeviceContainer[T]) PeerAccess(other Space) bool {
	if !other.IsDevice() {
		return c.coherent
	}
	return c.manager.PeerAccess(int(c.space), int(other))
}

// CopyIn copies one chunk from the handle's slot into slot iChunk.
//
// A host source is a single recorded host→device block transfer. A device
// source with a peer path copies directly; without one it stages through
// the host (device→host then host→device, both recorded).
func (c *DeviceContainer[T]) CopyIn(src *Handle[T], iChunk int) {
	size := c.ChunkSize()
	dst := c.ChunkSlice(iChunk)
	from := src.Container().ChunkSlice(src.Pos())
	bytes := int64(c.bytesFor(c.chunkBits, 1))

	if src.Device() < 0 {
		copy(dst, from[:size])
		c.manager.RecordTransferToDevice(bytes)
		return
	}
	if c.PeerAccess(src.Container().Space()) {
		copy(dst, from[:size])
		return
	}
	tmp := make([]T, size)
	copy(tmp, from[:size])
	c.manager.RecordTransferFromDevice(bytes)
	copy(dst, tmp)
	c.manager.RecordTransferToDevice(bytes)
}

// CopyOut copies slot iChunk of this container into the handle's slot.
// Mirrors CopyIn's path selection.
func (c *DeviceContainer[T]) CopyOut(dst *Handle[T], iChunk int) {
	size := c.ChunkSize()
	from := c.ChunkSlice(iChunk)
	to := dst.Container().ChunkSlice(dst.Pos())
	bytes := int64(c.bytesFor(c.chunkBits, 1))

	if dst.Device() < 0 {
		copy(to, from[:size])
		c.manager.RecordTransferFromDevice(bytes)
		return
	}
	if c.PeerAccess(dst.Container().Space()) {
		copy(to, from[:size])
		return
	}
	tmp := make([]T, size)
	copy(tmp, from[:size])
	c.manager.RecordTransferFromDevice(bytes)
	copy(to, tmp)
	c.manager.RecordTransferToDevice(bytes)
}

// CopyInRaw performs a plain single-chunk block copy from a raw host
// slice, recorded as a host→device transfer.
func (c *DeviceContainer[T]) CopyInRaw(src []T, iChunk int) {
	copy(c.ChunkSlice(iChunk), src[:c.ChunkSize()])
	c.manager.RecordTransferToDevice(int64(c.bytesFor(c.chunkBits, 1)))
}

// CopyOutRaw performs a plain single-chunk block copy into a raw host
// slice, recorded as a device→host transfer.
func (c *DeviceContainer[T]) CopyOutRaw(dst []T, iChunk int) {
	copy(dst[:c.ChunkSize()], c.ChunkSlice(iChunk))
	c.manager.RecordTransferFromDevice(int64(c.bytesFor(c.chunkBits, 1)))
}

// Swap exchanges slot iChunk's contents with the handle's slot in place.
//
// A cross-space peer stages through a chunk-sized scratch buffer, three
// block transfers, recorded as a staged swap. A same-ordinal peer swaps
// elementwise under the engine's execution policy.
func (c *DeviceContainer[T]) Swap(src *Handle[T], iChunk int) {
	size := c.ChunkSize()
	local := c.ChunkSlice(iChunk)
	peer := src.Container().ChunkSlice(src.Pos())

	if Space(src.Device()) == c.space {
		c.engine.For(size, func(lo, hi int) {
			for k := lo; k < hi; k++ {
				local[k], peer[k] = peer[k], local[k]
			}
		})
		return
	}
	tmp := make([]T, size)
	copy(tmp, local)
	copy(local, peer[:size])
	copy(peer, tmp)
	c.manager.RecordStagedSwap(3 * int64(c.bytesFor(c.chunkBits, 1)))
}

// Zero writes count zero amplitudes starting at slot iChunk's offset.
func (c *DeviceContainer[T]) Zero(iChunk, count int) {
	off := iChunk << c.chunkBits
	seg := c.data[off : off+count]
	c.engine.For(count, func(lo, hi int) {
		clear(seg[lo:hi])
	})
}

// Norm sums slot iChunk's strided view, through squared magnitude when dot
// is set, accumulating in complex128 regardless of storage precision.
func (c *DeviceContainer[T]) Norm(iChunk, stride int, dot bool) complex128 {
	return normKernel(c.ChunkSlice(iChunk), stride, dot, c.engine)
}

// SampleMeasure builds the chunk's cumulative distribution in place and
// returns, in input order, the first position at or above each threshold.
// See Container.SampleMeasure for the destructive-scan caveat.
func (c *DeviceContainer[T]) SampleMeasure(iChunk int, rnds []float64, stride int, dot bool) []uint64 {
	return sampleKernel(c.ChunkSlice(iChunk), rnds, stride, dot, c.engine)
}

// recordToDevice, recordFromDevice and recordStagedSwap let a host-side
// peer account transfers it initiates against this container.
func (c *DeviceContainer[T]) recordToDevice(bytes int64) { c.manager.RecordTransferToDevice(bytes) }

func (c *DeviceContainer[T]) recordFromDevice(bytes int64) {
	c.manager.RecordTransferFromDevice(bytes)
}

func (c *DeviceContainer[T]) recordStagedSwap(bytes int64) { c.manager.RecordStagedSwap(bytes) }
