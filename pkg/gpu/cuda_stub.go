//go:build !linux || nocuda

package gpu

// CUDA probing is only wired up on Linux. Other platforms always use
// emulated device spaces.

func cudaAvailable() bool { return false }

func cudaDeviceCount() int { return 0 }

func cudaTotalMemMB(device int) int { return 0 }

func cudaPeerAccess(device, peer int) bool { return false }
