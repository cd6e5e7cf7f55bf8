// Package encoding provides the fixed-width bit packing and bounds-checked
// byte views used to serialize keys, ciphertexts and signatures.
//
// All formats in this module are little-endian bit streams: coefficient i
// occupies bits [i*w, (i+1)*w) of the output, least significant bit first.
package encoding

// Coeff is the set of coefficient word types the packers accept.
type Coeff interface {
	~uint8 | ~uint16 | ~uint32
}

// PackedLen returns the number of bytes needed for n coefficients of the
// given bit width.
func PackedLen(n, bits int) int {
	return (n*bits + 7) / 8
}

// PackBits writes the low bits of every coefficient into dst. dst must be
// exactly PackedLen(len(cs), bits) bytes; bits must be in [1, 24].
func PackBits[T Coeff](dst []byte, cs []T, bits int) {
	if len(dst) != PackedLen(len(cs), bits) {
		panic("encoding: destination size mismatch")
	}
	mask := uint64(1)<<bits - 1
	var acc uint64
	nacc := 0
	j := 0
	for _, c := range cs {
		acc |= (uint64(c) & mask) << nacc
		nacc += bits
		for nacc >= 8 {
			dst[j] = byte(acc)
			j++
			acc >>= 8
			nacc -= 8
		}
	}
	if nacc > 0 {
		dst[j] = byte(acc)
	}
}

// UnpackBits is the inverse of PackBits: it reads len(cs) coefficients of the
// given bit width from src, which must be PackedLen(len(cs), bits) bytes.
func UnpackBits[T Coeff](cs []T, src []byte, bits int) {
	if len(src) != PackedLen(len(cs), bits) {
		panic("encoding: source size mismatch")
	}
	mask := uint64(1)<<bits - 1
	var acc uint64
	nacc := 0
	j := 0
	for i := range cs {
		for nacc < bits {
			acc |= uint64(src[j]) << nacc
			j++
			nacc += 8
		}
		cs[i] = T(acc & mask)
		acc >>= bits
		nacc -= bits
	}
}

// Wipe zeroes every buffer passed to it.
func Wipe[T any](bufs ...[]T) {
	for _, b := range bufs {
		clear(b)
	}
}
