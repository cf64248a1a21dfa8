package simd

// Implementation represents the active SIMD implementation
type Implementation string

const (
	// ImplGeneric indicates pure Go fallback (no SIMD)
	ImplGeneric Implementation = "generic"
	// ImplAVX2 indicates x86 AVX2+FMA SIMD
	ImplAVX2 Implementation = "avx2"
	// ImplNEON indicates ARM NEON SIMD
	ImplNEON Implementation = "neon"
)

// RuntimeInfo contains information about the active SIMD implementation
type RuntimeInfo struct {
	// Implementation is the active SIMD backend
	Implementation Implementation
	// Features lists specific CPU features being used
	Features []string
	// Accelerated indicates whether SIMD acceleration is active
	Accelerated bool
}

// Sum64 computes the sum of a float64 slice.
//
// Returns 0 for an empty slice.
func Sum64(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	return sum64(v)
}

// Sum32 computes the sum of a float32 slice.
//
// Returns 0 for an empty slice.
func Sum32(v []float32) float32 {
	if len(v) == 0 {
		return 0
	}
	return sum32(v)
}

// SumSquares64 computes sum(v[i]^2) over a float64 slice.
//
// Over an interleaved complex buffer this is the total squared magnitude:
// for z = a+bi laid out as [a, b], a^2 + b^2 contributes exactly the two
// squared components.
//
// Example:
//
//	v := []float64{3, 4}
//	result := simd.SumSquares64(v) // 25
func SumSquares64(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	return sumSquares64(v)
}

// SumSquares32 computes sum(v[i]^2) over a float32 slice.
func SumSquares32(v []float32) float32 {
	if len(v) == 0 {
		return 0
	}
	return sumSquares32(v)
}

// Dot64 computes the dot product of two float64 vectors.
//
// Requirements:
//   - Both vectors must have the same length
//   - Returns 0 if vectors are empty or have different lengths
func Dot64(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	return dot64(a, b)
}

// Info returns information about the active SIMD implementation.
func Info() RuntimeInfo {
	return runtimeInfo()
}
