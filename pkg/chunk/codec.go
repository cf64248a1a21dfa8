package chunk

import (
	"encoding/binary"
	"math"
)

// Encode serializes amplitudes as little-endian (real, imag) float pairs in
// the storage precision. The format is self-describing only in combination
// with the chunk geometry; Decode validates length against it.
func Encode[T Amplitude](src []T) []byte {
	if elementBytes[T]() == 16 {
		out := make([]byte, len(src)*16)
		for i, v := range src {
			z := complex128(v)
			binary.LittleEndian.PutUint64(out[i*16:], math.Float64bits(real(z)))
			binary.LittleEndian.PutUint64(out[i*16+8:], math.Float64bits(imag(z)))
		}
		return out
	}
	out := make([]byte, len(src)*8)
	for i, v := range src {
		z := complex128(v)
		binary.LittleEndian.PutUint32(out[i*8:], math.Float32bits(float32(real(z))))
		binary.LittleEndian.PutUint32(out[i*8+4:], math.Float32bits(float32(imag(z))))
	}
	return out
}

// Decode deserializes an Encode payload into dst. The payload length must
// match dst exactly; a mismatch reports ErrBadPayload.
func Decode[T Amplitude](dst []T, payload []byte) error {
	size := int(elementBytes[T]())
	if len(payload) != len(dst)*size {
		return ErrBadPayload
	}
	if size == 16 {
		for i := range dst {
			re := math.Float64frombits(binary.LittleEndian.Uint64(payload[i*16:]))
			im := math.Float64frombits(binary.LittleEndian.Uint64(payload[i*16+8:]))
			dst[i] = T(complex(re, im))
		}
		return nil
	}
	for i := range dst {
		re := math.Float32frombits(binary.LittleEndian.Uint32(payload[i*8:]))
		im := math.Float32frombits(binary.LittleEndian.Uint32(payload[i*8+4:]))
		dst[i] = T(complex(float64(re), float64(im)))
	}
	return nil
}
