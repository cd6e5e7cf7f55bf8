package dilithium

const (
	root = 1753  // primitive 512th root of unity mod Q
	f    = 41978 // mont^2 / N mod Q
)

var (
	// zetas[k] = root^brv8(k) * 2^32 mod Q.
	zetas [N]uint32
	// zetasInv[k] = -zetas[255-k] mod Q.
	zetasInv [N]uint32
)

func init() {
	for k := 0; k < N; k++ {
		zetas[k] = uint32(expQ(root, brv8(k)) * mont % Q)
	}
	for k := 0; k < N; k++ {
		zetasInv[k] = (Q - zetas[N-1-k]) % Q
	}
}

// expQ returns a^e mod Q.
func expQ(a, e uint64) uint64 {
	result := uint64(1)
	a %= Q
	for e > 0 {
		if e&1 == 1 {
			result = result * a % Q
		}
		a = a * a % Q
		e >>= 1
	}
	return result
}

// brv8 reverses an 8-bit number.
func brv8(x int) uint64 {
	b := uint8(x)
	b = (b&0xF0)>>4 | (b&0x0F)<<4
	b = (b&0xCC)>>2 | (b&0x33)<<2
	b = (b&0xAA)>>1 | (b&0x55)<<1
	return uint64(b)
}

// ntt computes the forward transform in place. Output coefficients are
// bounded by 18Q and in bit-reversed order.
func ntt(p *[N]uint32) {
	k := 1
	for l := 128; l > 0; l >>= 1 {
		for start := 0; start < N; start += 2 * l {
			zeta := uint64(zetas[k])
			k++
			for j := start; j < start+l; j++ {
				t := montgomeryReduce(zeta * uint64(p[j+l]))
				p[j+l] = p[j] + 2*Q - t
				p[j] = p[j] + t
			}
		}
	}
}

// invNTTFromInvMont computes the inverse transform and multiplies by 2^32,
// undoing the 2^-32 factor left by a pointwise Montgomery product.
func invNTTFromInvMont(p *[N]uint32) {
	k := 0
	for l := 1; l < N; l <<= 1 {
		for start := 0; start < N; start += 2 * l {
			zeta := uint64(zetasInv[k])
			k++
			for j := start; j < start+l; j++ {
				t := p[j]
				p[j] = t + p[j+l]
				p[j+l] = t + 256*Q - p[j+l]
				p[j+l] = montgomeryReduce(zeta * uint64(p[j+l]))
			}
		}
	}
	for j := 0; j < N; j++ {
		p[j] = montgomeryReduce(f * uint64(p[j]))
	}
}
