// Package simd provides SIMD-accelerated floating-point reductions for the
// amplitude kernels in pkg/chunk.
//
// Complex amplitudes are stored as interleaved real/imaginary components, so
// the squared-magnitude sum over a chunk is exactly the dot product of the
// reinterpreted float slice with itself. The chunk reductions exploit that:
// the stride-1 norm path reinterprets the amplitude buffer and calls
// SumSquares64 (or SumSquares32 for single precision).
//
// Implementation selection happens at build time:
//
//   - amd64: 8-way unrolled loops the compiler auto-vectorizes with
//     AVX2/SSE; golang.org/x/sys/cpu reports the active feature set
//   - arm64: viterin/vek, which carries NEON assembly for these reductions
//   - other platforms (or the nosimd build tag): viterin/vek's portable
//     implementations
//
// Use Info to inspect which implementation is active:
//
//	info := simd.Info()
//	if info.Accelerated {
//	    fmt.Printf("Using %s SIMD\n", info.Implementation)
//	}
package simd
