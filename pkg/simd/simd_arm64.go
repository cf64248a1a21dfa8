//go:build arm64 && !nosimd

package simd

import (
	"github.com/viterin/vek"
	"github.com/viterin/vek/vek32"
)

// ARM64 NEON-optimized implementations using viterin/vek SIMD library.
// vek carries NEON SIMD assembly for float64 and float32 reductions.
//
// Performance (from vek benchmarks on ARM64):
//   - vek.Sum: ~6-10x faster than pure Go
//   - vek.Dot: ~4-8x faster than pure Go

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
	if info.Acceleration {
		return RuntimeInfo{
			Implementation: ImplNEON,
			Features:       info.CPUFeatures,
			Accelerated:    true,
		}
	}
	return RuntimeInfo{
		Implementation: ImplGeneric,
		Features:       info.CPUFeatures,
		Accelerated:    false,
	}
}
