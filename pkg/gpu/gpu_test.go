package gpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManagerDefaultsToEmulated(t *testing.T) {
	// With probing disabled the manager must always serve emulated spaces.
	m, err := NewManager(&Config{Enabled: false, Devices: 2})
	require.NoError(t, err)

	assert.True(t, m.Emulated())
	assert.Equal(t, BackendEmulated, m.Backend())
	assert.Equal(t, 2, m.DeviceCount())

	info, err := m.Device(0)
	require.NoError(t, err)
	assert.True(t, info.Available)
	assert.Equal(t, BackendEmulated, info.Backend)
}

func TestNewManagerNilConfig(t *testing.T) {
	m, err := NewManager(nil)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, m.DeviceCount(), 1)
}

func TestDeviceOrdinalValidation(t *testing.T) {
	m, err := NewManager(&Config{Enabled: false, Devices: 1})
	require.NoError(t, err)

	_, err = m.Device(-1)
	assert.ErrorIs(t, err, ErrBadDevice)
	_, err = m.Device(99)
	assert.ErrorIs(t, err, ErrBadDevice)
	assert.Equal(t, 0, m.MemoryMB(99))
}

func TestPeerAccess(t *testing.T) {
	m, err := NewManager(&Config{Enabled: false, Devices: 2})
	require.NoError(t, err)

	// A space is its own peer; emulated spaces share the host address
	// space so every valid pair is a peer.
	assert.True(t, m.PeerAccess(0, 0))
	assert.True(t, m.PeerAccess(0, 1))
	assert.True(t, m.PeerAccess(1, 0))

	// Out-of-range ordinals never report a peer path.
	assert.False(t, m.PeerAccess(0, 5))
	assert.False(t, m.PeerAccess(-1, 0))
}

func TestStatsCounters(t *testing.T) {
	m, err := NewManager(&Config{Enabled: false, Devices: 1})
	require.NoError(t, err)

	m.RecordTransferToDevice(1024)
	m.RecordTransferToDevice(1024)
	m.RecordTransferFromDevice(512)
	m.RecordStagedSwap(4096)

	s := m.Stats()
	assert.Equal(t, int64(2), s.TransfersToDevice)
	assert.Equal(t, int64(1), s.TransfersFromDevice)
	assert.Equal(t, int64(1), s.StagedSwaps)
	assert.Equal(t, int64(1024+1024+512+4096), s.BytesTransferred)
}

func TestEmulatedMemoryCap(t *testing.T) {
	m, err := NewManager(&Config{Enabled: false, Devices: 1, MaxMemoryMB: 256})
	require.NoError(t, err)
	assert.Equal(t, 256, m.MemoryMB(0))
}
