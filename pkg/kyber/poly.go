package kyber

import (
	"pqgo/pkg/hash"
)

// poly is an element of Z_Q[X]/(X^N+1). Coefficients are kept lazily
// reduced below 2^16 and only frozen to [0, Q) when serialized.
type poly [N]uint16

func (p *poly) ntt() {
	ntt((*[N]uint16)(p))
}

func (p *poly) invNTT() {
	invNTT((*[N]uint16)(p))
}

// add sets p = a + b with Barrett reduction.
func (p *poly) add(a, b *poly) {
	for i := 0; i < N; i++ {
		p[i] = barrettReduce(a[i] + b[i])
	}
}

// sub sets p = a - b with Barrett reduction.
func (p *poly) sub(a, b *poly) {
	for i := 0; i < N; i++ {
		p[i] = barrettReduce(a[i] + 3*Q - b[i])
	}
}

// toBytes serializes p with 13 bits per coefficient into r[:polyBytes].
func (p *poly) toBytes(r []byte) {
	_ = r[polyBytes-1]
	var t [8]uint16
	for i := 0; i < N/8; i++ {
		for j := 0; j < 8; j++ {
			t[j] = freeze(p[8*i+j])
		}
		b := r[13*i : 13*i+13]
		b[0] = byte(t[0])
		b[1] = byte(t[0]>>8) | byte(t[1]<<5)
		b[2] = byte(t[1] >> 3)
		b[3] = byte(t[1]>>11) | byte(t[2]<<2)
		b[4] = byte(t[2]>>6) | byte(t[3]<<7)
		b[5] = byte(t[3] >> 1)
		b[6] = byte(t[3]>>9) | byte(t[4]<<4)
		b[7] = byte(t[4] >> 4)
		b[8] = byte(t[4]>>12) | byte(t[5]<<1)
		b[9] = byte(t[5]>>7) | byte(t[6]<<6)
		b[10] = byte(t[6] >> 2)
		b[11] = byte(t[6]>>10) | byte(t[7]<<3)
		b[12] = byte(t[7] >> 5)
	}
}

// fromBytes is the inverse of toBytes.
func (p *poly) fromBytes(a []byte) {
	_ = a[polyBytes-1]
	for i := 0; i < N/8; i++ {
		b := a[13*i : 13*i+13]
		c := p[8*i : 8*i+8]
		c[0] = uint16(b[0]) | uint16(b[1]&0x1f)<<8
		c[1] = uint16(b[1]>>5) | uint16(b[2])<<3 | uint16(b[3]&0x03)<<11
		c[2] = uint16(b[3]>>2) | uint16(b[4]&0x7f)<<6
		c[3] = uint16(b[4]>>7) | uint16(b[5])<<1 | uint16(b[6]&0x0f)<<9
		c[4] = uint16(b[6]>>4) | uint16(b[7])<<4 | uint16(b[8]&0x01)<<12
		c[5] = uint16(b[8]>>1) | uint16(b[9]&0x3f)<<7
		c[6] = uint16(b[9]>>6) | uint16(b[10])<<2 | uint16(b[11]&0x07)<<10
		c[7] = uint16(b[11]>>3) | uint16(b[12])<<5
	}
}

// compress rounds every coefficient to 3 bits and packs them into
// r[:polyCompressedBytes].
func (p *poly) compress(r []byte) {
	_ = r[polyCompressedBytes-1]
	var t [8]uint32
	k := 0
	for i := 0; i < N; i += 8 {
		for j := 0; j < 8; j++ {
			t[j] = ((uint32(freeze(p[i+j]))<<3 + Q/2) / Q) & 7
		}
		r[k] = byte(t[0] | t[1]<<3 | t[2]<<6)
		r[k+1] = byte(t[2]>>2 | t[3]<<1 | t[4]<<4 | t[5]<<7)
		r[k+2] = byte(t[5]>>1 | t[6]<<2 | t[7]<<5)
		k += 3
	}
}

// decompress maps each 3-bit value back to the nearest multiple of Q/8.
func (p *poly) decompress(a []byte) {
	_ = a[polyCompressedBytes-1]
	for i := 0; i < N; i += 8 {
		b := a[3*i/8 : 3*i/8+3]
		p[i+0] = decompress3(b[0] & 7)
		p[i+1] = decompress3((b[0] >> 3) & 7)
		p[i+2] = decompress3(b[0]>>6 | (b[1]<<2)&4)
		p[i+3] = decompress3((b[1] >> 1) & 7)
		p[i+4] = decompress3((b[1] >> 4) & 7)
		p[i+5] = decompress3(b[1]>>7 | (b[2]<<1)&6)
		p[i+6] = decompress3((b[2] >> 2) & 7)
		p[i+7] = decompress3(b[2] >> 5)
	}
}

func decompress3(t byte) uint16 {
	return uint16((uint32(t)*Q + 4) >> 3)
}

// fromMsg encodes each message bit as 0 or (Q+1)/2 without branching.
func (p *poly) fromMsg(msg []byte) {
	_ = msg[SymBytes-1]
	for i := 0; i < SymBytes; i++ {
		for j := 0; j < 8; j++ {
			mask := -uint16((msg[i] >> j) & 1)
			p[8*i+j] = mask & ((Q + 1) / 2)
		}
	}
}

// toMsg decodes each coefficient to the nearer of 0 and Q/2.
func (p *poly) toMsg(msg []byte) {
	_ = msg[SymBytes-1]
	for i := 0; i < SymBytes; i++ {
		msg[i] = 0
		for j := 0; j < 8; j++ {
			t := ((uint32(freeze(p[8*i+j]))<<1 + Q/2) / Q) & 1
			msg[i] |= byte(t << j)
		}
	}
}

// getNoise samples p from the centered binomial distribution with
// parameter eta, keyed by seed and nonce.
func (p *poly) getNoise(seed []byte, nonce byte, eta int) {
	buf := make([]byte, eta*N/4)
	hash.Shake256(buf, seed[:SymBytes], []byte{nonce})
	cbd(p, buf, eta)
	clear(buf)
}
