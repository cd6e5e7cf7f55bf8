package kyber

type polyVec []poly

type matrix []polyVec

func newPolyVec(k int) polyVec {
	return make(polyVec, k)
}

func newMatrix(k int) matrix {
	m := make(matrix, k)
	for i := range m {
		m[i] = newPolyVec(k)
	}
	return m
}

func (v polyVec) ntt() {
	for i := range v {
		v[i].ntt()
	}
}

func (v polyVec) invNTT() {
	for i := range v {
		v[i].invNTT()
	}
}

func (v polyVec) add(a, b polyVec) {
	for i := range v {
		v[i].add(&a[i], &b[i])
	}
}

// pointwiseAcc sets r to the inner product of a and b in the NTT domain.
// b is lifted by R^2 first so that the two Montgomery reductions cancel.
func pointwiseAcc(r *poly, a, b polyVec) {
	for j := 0; j < N; j++ {
		t := montgomeryReduce(rsqr * uint32(b[0][j]))
		r[j] = montgomeryReduce(uint32(a[0][j]) * uint32(t))
		for i := 1; i < len(a); i++ {
			t = montgomeryReduce(rsqr * uint32(b[i][j]))
			r[j] += montgomeryReduce(uint32(a[i][j]) * uint32(t))
		}
		r[j] = barrettReduce(r[j])
	}
}

func (v polyVec) toBytes(r []byte) {
	for i := range v {
		v[i].toBytes(r[i*polyBytes:])
	}
}

func (v polyVec) fromBytes(a []byte) {
	for i := range v {
		v[i].fromBytes(a[i*polyBytes:])
	}
}

// compress rounds every coefficient to 11 bits and packs the vector into
// r[:len(v)*polyvecCompressedPerPoly].
func (v polyVec) compress(r []byte) {
	var t [8]uint32
	for i := range v {
		out := r[i*polyvecCompressedPerPoly : (i+1)*polyvecCompressedPerPoly]
		for j := 0; j < N/8; j++ {
			for k := 0; k < 8; k++ {
				t[k] = ((uint32(freeze(v[i][8*j+k]))<<11 + Q/2) / Q) & 0x7ff
			}
			b := out[11*j : 11*j+11]
			b[0] = byte(t[0])
			b[1] = byte(t[0]>>8) | byte(t[1]<<3)
			b[2] = byte(t[1]>>5) | byte(t[2]<<6)
			b[3] = byte(t[2] >> 2)
			b[4] = byte(t[2]>>10) | byte(t[3]<<1)
			b[5] = byte(t[3]>>7) | byte(t[4]<<4)
			b[6] = byte(t[4]>>4) | byte(t[5]<<7)
			b[7] = byte(t[5] >> 1)
			b[8] = byte(t[5]>>9) | byte(t[6]<<2)
			b[9] = byte(t[6]>>6) | byte(t[7]<<5)
			b[10] = byte(t[7] >> 3)
		}
	}
}

// decompress maps each 11-bit value back to the nearest multiple of Q/2^11.
func (v polyVec) decompress(a []byte) {
	for i := range v {
		in := a[i*polyvecCompressedPerPoly : (i+1)*polyvecCompressedPerPoly]
		for j := 0; j < N/8; j++ {
			b := in[11*j : 11*j+11]
			c := v[i][8*j : 8*j+8]
			c[0] = decompress11(uint32(b[0]) | uint32(b[1]&0x07)<<8)
			c[1] = decompress11(uint32(b[1]>>3) | uint32(b[2]&0x3f)<<5)
			c[2] = decompress11(uint32(b[2]>>6) | uint32(b[3])<<2 | uint32(b[4]&0x01)<<10)
			c[3] = decompress11(uint32(b[4]>>1) | uint32(b[5]&0x0f)<<7)
			c[4] = decompress11(uint32(b[5]>>4) | uint32(b[6]&0x7f)<<4)
			c[5] = decompress11(uint32(b[6]>>7) | uint32(b[7])<<1 | uint32(b[8]&0x03)<<9)
			c[6] = decompress11(uint32(b[8]>>2) | uint32(b[9]&0x1f)<<6)
			c[7] = decompress11(uint32(b[9]>>5) | uint32(b[10])<<3)
		}
	}
}

func decompress11(t uint32) uint16 {
	return uint16((t*Q + 1024) >> 11)
}
