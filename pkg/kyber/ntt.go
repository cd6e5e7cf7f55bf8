package kyber

const (
	psi   = 62   // primitive 512th root of unity mod Q
	mont  = 990  // 2^18 mod Q
	rsqr  = 4613 // 2^36 mod Q
	nInv  = 7651 // 256^-1 mod Q
	psiIn = 1115 // psi^-1 mod Q
)

var (
	// zetas[k] = psi^brv8(k) * R, used by the forward transform.
	zetas [N]uint16
	// omegasInvBitrevMontgomery[i] = psi^(-2*brv7(i)) * R.
	omegasInvBitrevMontgomery [N / 2]uint16
	// psisInvMontgomery[j] = psi^-j * N^-1 * R.
	psisInvMontgomery [N]uint16
)

func init() {
	for k := 0; k < N; k++ {
		zetas[k] = uint16(expQ(psi, brv(k, 8)) * mont % Q)
	}
	omegaInv := uint32(psiIn * psiIn % Q)
	for i := 0; i < N/2; i++ {
		omegasInvBitrevMontgomery[i] = uint16(expQ(omegaInv, brv(i, 7)) * mont % Q)
	}
	for j := 0; j < N; j++ {
		psisInvMontgomery[j] = uint16(expQ(psiIn, uint32(j)) * nInv % Q * mont % Q)
	}
}

// expQ returns a^e mod Q.
func expQ(a, e uint32) uint32 {
	result := uint32(1)
	base := a % Q
	for e > 0 {
		if e&1 == 1 {
			result = result * base % Q
		}
		base = base * base % Q
		e >>= 1
	}
	return result
}

// brv reverses the low bits of x.
func brv(x, bits int) uint32 {
	var r uint32
	for i := 0; i < bits; i++ {
		r = r<<1 | uint32(x>>i)&1
	}
	return r
}

// ntt computes the forward transform in place. Input coefficients must be
// below 2^14; output is in bit-reversed order.
func ntt(p *[N]uint16) {
	k := 1
	for level := 7; level >= 0; level-- {
		l := 1 << level
		for start := 0; start < N; start += 2 * l {
			zeta := uint32(zetas[k])
			k++
			for j := start; j < start+l; j++ {
				t := montgomeryReduce(zeta * uint32(p[j+l]))
				p[j+l] = barrettReduce(p[j] + 4*Q - t)
				if level&1 == 1 {
					// odd level: leave p[j] lazy
					p[j] = p[j] + t
				} else {
					p[j] = barrettReduce(p[j] + t)
				}
			}
		}
	}
}

// invNTT computes the inverse transform in place, taking bit-reversed input
// to natural order and folding in the N^-1 scaling.
func invNTT(a *[N]uint16) {
	for level := 0; level < 8; level++ {
		d := 1 << level
		for start := 0; start < d; start++ {
			jTwiddle := 0
			for j := start; j < N-1; j += 2 * d {
				w := uint32(omegasInvBitrevMontgomery[jTwiddle])
				jTwiddle++
				temp := a[j]
				if level&1 == 1 {
					a[j] = barrettReduce(temp + a[j+d])
				} else {
					// even level: leave a[j] lazy
					a[j] = temp + a[j+d]
				}
				t := w * (uint32(temp) + 4*Q - uint32(a[j+d]))
				a[j+d] = montgomeryReduce(t)
			}
		}
	}
	for j := 0; j < N; j++ {
		a[j] = montgomeryReduce(uint32(a[j]) * uint32(psisInvMontgomery[j]))
	}
}
