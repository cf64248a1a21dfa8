//go:build (!amd64 && !arm64) || nosimd

package simd

import (
	"github.com/viterin/vek"
	"github.com/viterin/vek/vek32"
)

// Generic fallback implementations using viterin/vek library.
// On platforms without AVX2/NEON, vek uses optimized pure Go implementations
// that are still faster than naive loops due to better memory access patterns.

func sum64(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	return vek.Sum(v)
}

func sum32(v []float32) float32 {
	if len(v) == 0 {
		return 0
	}
	return vek32.Sum(v)
}

func sumSquares64(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	return vek.Dot(v, v)
}

func sumSquares32(v []float32) float32 {
	if len(v) == 0 {
		return 0
	}
	return vek32.Dot(v, v)
}

func dot64(a, b []float64) float64 {
	if len(a) == 0 {
		return 0
	}
	return vek.Dot(a, b)
}

func runtimeInfo() RuntimeInfo {
	info := vek32.Info()
	return RuntimeInfo{
		Implementation: ImplGeneric,
		Features:       info.CPUFeatures,
		Accelerated:    info.Acceleration,
	}
}
