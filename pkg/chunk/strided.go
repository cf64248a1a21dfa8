package chunk

// Strided is a logical view over every stride-th element of a buffer.
// Reductions use it to subsample a chunk when amplitude storage interleaves
// duplicate copies (e.g. bit-packed layouts store each amplitude twice, so
// stride 2 visits each once).
type Strided[T Amplitude] struct {
	data   []T
	stride int
}

// NewStrided wraps data. A stride below 1 is treated as 1.
func NewStrided[T Amplitude](data []T, stride int) Strided[T] {
	if stride < 1 {
		stride = 1
	}
	return Strided[T]{data: data, stride: stride}
}

// Len returns the number of logical elements: ceil(len(data) / stride).
func (s Strided[T]) Len() int {
	if len(s.data) == 0 {
		return 0
	}
	return (len(s.data) + s.stride - 1) / s.stride
}

// Stride returns the subsampling factor.
func (s Strided[T]) Stride() int {
	return s.stride
}

// At returns logical element i.
func (s Strided[T]) At(i int) T {
	return s.data[i*s.stride]
}

// Set stores v at logical element i.
func (s Strided[T]) Set(i int, v T) {
	s.data[i*s.stride] = v
}
