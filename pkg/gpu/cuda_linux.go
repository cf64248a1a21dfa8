//go:build linux && !nocuda

package gpu

// CUDA runtime bridge via purego. The runtime library is loaded dynamically,
// so binaries built with this file still run on machines without CUDA; the
// probe simply reports unavailable. No CGO involved.

import (
	"sync"

	"github.com/ebitengine/purego"
)

var (
	cudartLib  uintptr
	cudartMu   sync.Mutex
	cudartErr  error
	cudartOnce bool

	// Runtime API function pointers, registered after dlopen. Return
	// values are cudaError_t; 0 means cudaSuccess.
	cudaGetDeviceCount      func(count *int32) int32
	cudaSetDevice           func(device int32) int32
	cudaMemGetInfo          func(free, total *uint64) int32
	cudaDeviceCanAccessPeer func(canAccess *int32, device, peerDevice int32) int32
)

// candidate sonames, newest first
var cudartNames = []string{
	"libcudart.so",
	"libcudart.so.13",
	"libcudart.so.12",
	"libcudart.so.11.0",
}

func initCUDART() error {
	cudartMu.Lock()
	defer cudartMu.Unlock()

	if cudartOnce {
		return cudartErr
	}
	cudartOnce = true

	for _, name := range cudartNames {
		lib, err := purego.Dlopen(name, purego.RTLD_NOW|purego.RTLD_GLOBAL)
		if err == nil {
			cudartLib = lib
			break
		}
	}
	if cudartLib == 0 {
		cudartErr = ErrGPUNotAvailable
		return cudartErr
	}

	purego.RegisterLibFunc(&cudaGetDeviceCount, cudartLib, "cudaGetDeviceCount")
	purego.RegisterLibFunc(&cudaSetDevice, cudartLib, "cudaSetDevice")
	purego.RegisterLibFunc(&cudaMemGetInfo, cudartLib, "cudaMemGetInfo")
	purego.RegisterLibFunc(&cudaDeviceCanAccessPeer, cudartLib, "cudaDeviceCanAccessPeer")
	return nil
}

func cudaAvailable() bool {
	if initCUDART() != nil {
		return false
	}
	var n int32
	return cudaGetDeviceCount(&n) == 0 && n > 0
}

func cudaDeviceCount() int {
	if initCUDART() != nil {
		return 0
	}
	var n int32
	if cudaGetDeviceCount(&n) != 0 {
		return 0
	}
	return int(n)
}

func cudaTotalMemMB(device int) int {
	if initCUDART() != nil {
		return 0
	}
	if cudaSetDevice(int32(device)) != 0 {
		return 0
	}
	var free, total uint64
	if cudaMemGetInfo(&free, &total) != 0 {
		return 0
	}
	return int(total / (1024 * 1024))
}

func cudaPeerAccess(device, peer int) bool {
	if initCUDART() != nil {
		return false
	}
	var can int32
	if cudaDeviceCanAccessPeer(&can, int32(device), int32(peer)) != 0 {
		return false
	}
	return can != 0
}
