package chunk

import (
	"sort"
	"sync"
	"unsafe"

	"github.com/orneryd/statevec/pkg/parallel"
	"github.com/orneryd/statevec/pkg/simd"
)

// Reduction and scan kernels shared by the host and device containers.
//
// Ordering over complex values is defined, not natural: a value's ordering
// key is its real part. The prefix sums built here carry the cumulative
// probability (or amplitude) mass in the real component, so the lower-bound
// searches below compare real parts only.

// probability returns |z|^2 as a value of the storage precision, real part
// carrying the mass.
func probability[T Amplitude](v T) T {
	z := complex128(v)
	re, im := real(z), imag(z)
	return T(complex(re*re+im*im, 0))
}

// reduceRange sums view[lo:hi) into a complex128 accumulator.
func reduceRange[T Amplitude](view Strided[T], lo, hi int, dot bool) complex128 {
	var sum complex128
	if dot {
		for i := lo; i < hi; i++ {
			z := complex128(view.At(i))
			re, im := real(z), imag(z)
			sum += complex(re*re+im*im, 0)
		}
		return sum
	}
	for i := lo; i < hi; i++ {
		sum += complex128(view.At(i))
	}
	return sum
}

// scanRange replaces view[lo:hi) by its inclusive prefix sum seeded with
// carry, accumulating in storage precision, and returns the running total.
func scanRange[T Amplitude](view Strided[T], lo, hi int, dot bool, carry T) T {
	sum := carry
	for i := lo; i < hi; i++ {
		v := view.At(i)
		if dot {
			v = probability(v)
		}
		sum += v
		view.Set(i, sum)
	}
	return sum
}

// normKernel computes the strided reduction for Norm.
//
// Fast path: a stride-1 squared-magnitude sum over complex128 storage is
// exactly the self dot product of the buffer reinterpreted as float64
// components, which simd dispatches to AVX2/NEON. Single-precision storage
// skips the fast path so the accumulation stays in double precision.
func normKernel[T Amplitude](data []T, stride int, dot bool, eng *parallel.Engine) complex128 {
	if stride <= 1 && dot && len(data) > 0 {
		if d, ok := any(data).([]complex128); ok {
			f := unsafe.Slice((*float64)(unsafe.Pointer(&d[0])), len(d)*2)
			return complex(simd.SumSquares64(f), 0)
		}
	}

	view := NewStrided(data, stride)
	n := view.Len()
	partial := make([]complex128, eng.Workers())
	eng.ForShard(n, func(shard, lo, hi int) {
		partial[shard] = reduceRange(view, lo, hi, dot)
	})
	var sum complex128
	for _, p := range partial {
		sum += p
	}
	return sum
}

// minParallelScan is the element count below which the two-phase block scan
// is not worth its extra pass.
const minParallelScan = 1 << 12

// inclusiveScan converts view into its inclusive prefix sum in place.
//
// Outside a parallel region it runs a two-phase block scan: each partition
// is scanned locally, block totals are prefix-summed, then each block is
// shifted by its offset. Inside an already-parallel caller the scan runs
// strictly sequentially: a prefix sum cannot be split across an existing
// partition without the combine step.
func inclusiveScan[T Amplitude](view Strided[T], dot bool, eng *parallel.Engine) {
	n := view.Len()
	var zero T
	if n < minParallelScan || eng.Workers() <= 1 || eng.InParallel() {
		scanRange(view, 0, n, dot, zero)
		return
	}

	type span struct{ lo, hi int }
	bounds := make([]span, eng.Workers())
	totals := make([]T, eng.Workers())
	eng.ForShard(n, func(shard, lo, hi int) {
		bounds[shard] = span{lo, hi}
		totals[shard] = scanRange(view, lo, hi, dot, zero)
	})

	// Shift each block by the running total of the blocks before it.
	// The recorded bounds are reused so the pass stays correct even if
	// the engine's parallelism state changed between calls.
	var wg sync.WaitGroup
	carry := zero
	for s := 0; s < len(bounds); s++ {
		b := bounds[s]
		if b.hi <= b.lo {
			continue
		}
		if carry != zero {
			wg.Add(1)
			go func(b span, offset T) {
				defer wg.Done()
				for i := b.lo; i < b.hi; i++ {
					view.Set(i, view.At(i)+offset)
				}
			}(b, carry)
		}
		carry += totals[s]
	}
	wg.Wait()
}

// sampleKernel implements SampleMeasure over one chunk's data: in-place
// inclusive prefix sum, then per-threshold lower bound by real part.
func sampleKernel[T Amplitude](data []T, rnds []float64, stride int, dot bool, eng *parallel.Engine) []uint64 {
	view := NewStrided(data, stride)
	inclusiveScan(view, dot, eng)

	n := view.Len()
	samples := make([]uint64, len(rnds))
	eng.For(len(rnds), func(lo, hi int) {
		for k := lo; k < hi; k++ {
			r := rnds[k]
			idx := sort.Search(n, func(j int) bool {
				return real(complex128(view.At(j))) >= r
			})
			samples[k] = uint64(idx)
		}
	})
	return samples
}
