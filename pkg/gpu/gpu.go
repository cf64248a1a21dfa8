// Package gpu probes accelerator memory spaces and tracks cross-space
// transfer statistics for the chunk containers.
//
// The chunk layer is agnostic about what actually backs a device memory
// space. This package answers the three questions it asks:
//
//  1. Does a device with this ordinal exist, and how much memory does it
//     have? (capacity negotiation during Allocate)
//  2. Is there a direct peer path between two memory spaces, or must a
//     transfer stage through the host? (copy/swap path selection)
//  3. How much data has moved across space boundaries? (Stats)
//
// CUDA devices are probed through a purego bridge to the CUDA runtime on
// Linux; no CGO is required and the binary runs unchanged on machines
// without a GPU. When no runtime is found the manager still hands out
// emulated device spaces backed by host memory, so device-container code
// paths stay exercised everywhere.
//
// Example:
//
//	manager, err := gpu.NewManager(gpu.DefaultConfig())
//	if err != nil {
//		log.Printf("GPU not available: %v", err)
//	}
//	if manager.Emulated() {
//		log.Println("device spaces are host-backed")
//	}
package gpu

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

// Errors
var (
	ErrGPUNotAvailable = errors.New("gpu: no compatible GPU found")
	ErrGPUDisabled     = errors.New("gpu: acceleration disabled")
	ErrBadDevice       = errors.New("gpu: device ordinal out of range")
)

// Backend represents the accelerator runtime backing device memory spaces.
type Backend string

const (
	BackendEmulated Backend = "emulated" // host-backed device spaces
	BackendCUDA     Backend = "cuda"     // NVIDIA CUDA runtime
)

// Config holds accelerator probing configuration.
//
// All settings have sensible defaults; DefaultConfig() returns a manager
// configuration that probes for a real runtime and falls back to emulated
// device spaces when none is found.
type Config struct {
	// Enabled toggles probing for a real accelerator runtime. When false
	// the manager serves emulated device spaces only.
	Enabled bool

	// Devices is the number of emulated device spaces to expose when no
	// real runtime is found (minimum 1).
	Devices int

	// MaxMemoryMB caps the reported per-device memory for emulated
	// spaces (0 = unlimited).
	MaxMemoryMB int

	// FallbackOnError falls back to emulated spaces instead of failing
	// when probing errors out.
	FallbackOnError bool
}

// DefaultConfig returns conservative defaults: probing enabled, graceful
// fallback to emulated device spaces.
func DefaultConfig() *Config {
	return &Config{
		Enabled:         true,
		Devices:         1,
		MaxMemoryMB:     0,
		FallbackOnError: true,
	}
}

// DeviceInfo describes one device memory space.
type DeviceInfo struct {
	ID       int
	Name     string
	Backend  Backend
	MemoryMB int
	// Available reports whether the space can hold data right now.
	// Emulated spaces are always available.
	Available bool
}

// Stats tracks cross-space transfer activity. Counters are updated with
// atomics by the chunk containers; read a consistent snapshot via
// Manager.Stats().
type Stats struct {
	TransfersToDevice   int64
	TransfersFromDevice int64
	StagedSwaps         int64
	BytesTransferred    int64
}

// Manager answers device-space capacity and peer-access queries.
//
// Thread safety: all methods are safe for concurrent use.
type Manager struct {
	config  *Config
	devices []DeviceInfo
	backend Backend
	mu      sync.RWMutex

	transfersToDevice   atomic.Int64
	transfersFromDevice atomic.Int64
	stagedSwaps         atomic.Int64
	bytesTransferred    atomic.Int64
}

// NewManager probes for an accelerator runtime and returns a manager.
//
// With FallbackOnError set (the default) NewManager always succeeds: if no
// CUDA runtime is present, device spaces are emulated in host memory and
// Emulated() reports true.
func NewManager(config *Config) (*Manager, error) {
	if config == nil {
		config = DefaultConfig()
	}

	m := &Manager{config: config, backend: BackendEmulated}

	if config.Enabled && cudaAvailable() {
		n := cudaDeviceCount()
		if n > 0 {
			m.backend = BackendCUDA
			for i := 0; i < n; i++ {
				m.devices = append(m.devices, DeviceInfo{
					ID:        i,
					Name:      fmt.Sprintf("CUDA device %d", i),
					Backend:   BackendCUDA,
					MemoryMB:  cudaTotalMemMB(i),
					Available: true,
				})
			}
			return m, nil
		}
		if !config.FallbackOnError {
			return nil, ErrGPUNotAvailable
		}
	}

	// Emulated device spaces, backed by host memory.
	n := config.Devices
	if n < 1 {
		n = 1
	}
	for i := 0; i < n; i++ {
		m.devices = append(m.devices, DeviceInfo{
			ID:        i,
			Name:      fmt.Sprintf("emulated device %d", i),
			Backend:   BackendEmulated,
			MemoryMB:  config.MaxMemoryMB,
			Available: true,
		})
	}
	return m, nil
}

// Emulated reports whether device spaces are host-backed emulations.
func (m *Manager) Emulated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.backend == BackendEmulated
}

// Backend returns the active accelerator backend.
func (m *Manager) Backend() Backend {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.backend
}

// DeviceCount returns the number of device memory spaces.
func (m *Manager) DeviceCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.devices)
}

// Device returns info for one device ordinal.
func (m *Manager) Device(id int) (DeviceInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if id < 0 || id >= len(m.devices) {
		return DeviceInfo{}, ErrBadDevice
	}
	return m.devices[id], nil
}

// MemoryMB returns the memory capacity of a device ordinal in MB
// (0 = unlimited/unknown).
func (m *Manager) MemoryMB(id int) int {
	info, err := m.Device(id)
	if err != nil {
		return 0
	}
	return info.MemoryMB
}

// PeerAccess reports whether a direct (no host staging) transfer path exists
// between two device ordinals.
//
// On CUDA this queries cudaDeviceCanAccessPeer. Emulated spaces share the
// host address space, so every pair is a peer. A space is trivially its own
// peer.
func (m *Manager) PeerAccess(dev, peer int) bool {
	m.mu.RLock()
	backend := m.backend
	n := len(m.devices)
	m.mu.RUnlock()

	if dev < 0 || peer < 0 || dev >= n || peer >= n {
		return false
	}
	if dev == peer {
		return true
	}
	if backend == BackendCUDA {
		return cudaPeerAccess(dev, peer)
	}
	return true
}

// RecordTransferToDevice counts one host→device chunk transfer.
func (m *Manager) RecordTransferToDevice(bytes int64) {
	m.transfersToDevice.Add(1)
	m.bytesTransferred.Add(bytes)
}

// RecordTransferFromDevice counts one device→host chunk transfer.
func (m *Manager) RecordTransferFromDevice(bytes int64) {
	m.transfersFromDevice.Add(1)
	m.bytesTransferred.Add(bytes)
}

// RecordStagedSwap counts one swap that had to stage through a scratch
// buffer (three block transfers).
func (m *Manager) RecordStagedSwap(bytes int64) {
	m.stagedSwaps.Add(1)
	m.bytesTransferred.Add(bytes)
}

// Stats returns a snapshot of transfer statistics.
func (m *Manager) Stats() Stats {
	return Stats{
		TransfersToDevice:   m.transfersToDevice.Load(),
		TransfersFromDevice: m.transfersFromDevice.Load(),
		StagedSwaps:         m.stagedSwaps.Load(),
		BytesTransferred:    m.bytesTransferred.Load(),
	}
}
