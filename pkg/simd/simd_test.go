package simd

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func approxEqual64(a, b, eps float64) bool {
	return math.Abs(a-b) < eps
}

func approxEqual32(a, b, eps float32) bool {
	return math.Abs(float64(a-b)) < float64(eps)
}

func TestSum64(t *testing.T) {
	tests := []struct {
		name     string
		v        []float64
		expected float64
	}{
		{"simple", []float64{1, 2, 3}, 6},
		{"zeros", []float64{0, 0, 0}, 0},
		{"empty", []float64{}, 0},
		{"negative", []float64{-1, -2, 3}, 0},
		{"single", []float64{42}, 42},
		{"unaligned tail", []float64{1, 1, 1, 1, 1}, 5},
		{"large vector (for SIMD)", make([]float64, 256), 256},
	}

	// Initialize large vector test
	for i := range tests[len(tests)-1].v {
		tests[len(tests)-1].v[i] = 1
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Sum64(tt.v)
			if !approxEqual64(result, tt.expected, epsilon) {
				t.Errorf("Sum64() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestSumSquares64(t *testing.T) {
	tests := []struct {
		name     string
		v        []float64
		expected float64
	}{
		{"pythagorean", []float64{3, 4}, 25},
		{"zeros", []float64{0, 0, 0}, 0},
		{"empty", []float64{}, 0},
		{"sign is squared away", []float64{-3, 4}, 25},
		{"interleaved complex components", []float64{0.5, 0, 0.5, 0, 0.5, 0, 0.5, 0}, 1},
		{"unaligned tail", []float64{1, 1, 1, 1, 1, 1, 1}, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SumSquares64(tt.v)
			if !approxEqual64(result, tt.expected, epsilon) {
				t.Errorf("SumSquares64() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestSumSquares32(t *testing.T) {
	tests := []struct {
		name     string
		v        []float32
		expected float32
	}{
		{"pythagorean", []float32{3, 4}, 25},
		{"empty", []float32{}, 0},
		{"unaligned tail", make([]float32, 17), 17},
	}
	for i := range tests[len(tests)-1].v {
		tests[len(tests)-1].v[i] = 1
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SumSquares32(tt.v)
			if !approxEqual32(result, tt.expected, 1e-5) {
				t.Errorf("SumSquares32() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestSum32(t *testing.T) {
	v := []float32{1.5, 2.5, -1, 0, 3}
	if got := Sum32(v); !approxEqual32(got, 6, 1e-5) {
		t.Errorf("Sum32() = %v, want 6", got)
	}
	if got := Sum32(nil); got != 0 {
		t.Errorf("Sum32(nil) = %v, want 0", got)
	}
}

func TestDot64(t *testing.T) {
	tests := []struct {
		name     string
		a        []float64
		b        []float64
		expected float64
	}{
		{"simple", []float64{1, 2, 3}, []float64{4, 5, 6}, 32},
		{"mismatched lengths", []float64{1, 2}, []float64{1}, 0},
		{"empty", []float64{}, []float64{}, 0},
		{"self dot equals sum of squares", []float64{3, 4}, []float64{3, 4}, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Dot64(tt.a, tt.b)
			if !approxEqual64(result, tt.expected, epsilon) {
				t.Errorf("Dot64() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestSumMatchesNaiveOnRandomData(t *testing.T) {
	// Deterministic pseudo-random fill; compares the unrolled/SIMD paths
	// against a naive loop.
	v := make([]float64, 1023)
	x := 1.0
	for i := range v {
		x = math.Mod(x*997.0+1.0, 13.0)
		v[i] = x - 6.5
	}

	var naiveSum, naiveSq float64
	for _, f := range v {
		naiveSum += f
		naiveSq += f * f
	}

	if got := Sum64(v); !approxEqual64(got, naiveSum, 1e-6) {
		t.Errorf("Sum64 = %v, naive = %v", got, naiveSum)
	}
	if got := SumSquares64(v); !approxEqual64(got, naiveSq, 1e-6) {
		t.Errorf("SumSquares64 = %v, naive = %v", got, naiveSq)
	}
}

func TestInfo(t *testing.T) {
	info := Info()
	switch info.Implementation {
	case ImplGeneric, ImplAVX2, ImplNEON:
	default:
		t.Errorf("unexpected implementation %q", info.Implementation)
	}
}

func BenchmarkSumSquares64(b *testing.B) {
	v := make([]float64, 1<<16)
	for i := range v {
		v[i] = float64(i%7) * 0.25
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = SumSquares64(v)
	}
}
