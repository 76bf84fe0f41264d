package checkpoint

import (
	"encoding/binary"
	"math"
)

// upcastHalf decodes little-endian 16-bit floats from src into dst.
func upcastHalf(dst []float32, src []byte, dtype DType) {
	for i := range dst {
		h := binary.LittleEndian.Uint16(src[i*2:])
		if dtype == BF16 {
			dst[i] = bfloat16ToFloat32(h)
		} else {
			dst[i] = float16ToFloat32(h)
		}
	}
}

// bfloat16ToFloat32 widens a bfloat16: it is the top half of a float32.
func bfloat16ToFloat32(h uint16) float32 {
	return math.Float32frombits(uint32(h) << 16)
}

// float16ToFloat32 converts an IEEE 754 half-precision value.
func float16ToFloat32(h uint16) float32 {
	sign := uint32(h>>15) << 31
	exp := int32((h >> 10) & 0x1F)
	mant := uint32(h & 0x3FF)

	switch {
	case exp == 0 && mant == 0:
		return math.Float32frombits(sign)
	case exp == 0:
		// Subnormal: shift until the implicit bit appears.
		e := int32(1)
		for mant&0x400 == 0 {
			mant <<= 1
			e--
		}
		mant &= 0x3FF
		return math.Float32frombits(sign | uint32(e+127-15)<<23 | mant<<13)
	case exp == 0x1F:
		// Inf or NaN.
		return math.Float32frombits(sign | 0x7F800000 | mant<<13)
	default:
		return math.Float32frombits(sign | uint32(exp+127-15)<<23 | mant<<13)
	}
}
