package dilithium

// Poly is an element of Z_Q[X]/(X^256+1).
type Poly [N]uint32

func (p *Poly) reduce() {
	for i := range p {
		p[i] = reduce32(p[i])
	}
}

func (p *Poly) csubq() {
	for i := range p {
		p[i] = csubq(p[i])
	}
}

func (p *Poly) freeze() {
	for i := range p {
		p[i] = freeze(p[i])
	}
}

// add sets p = a + b without reduction.
func (p *Poly) add(a, b *Poly) {
	for i := range p {
		p[i] = a[i] + b[i]
	}
}

// sub sets p = a + 2Q - b without reduction; b must be below 2Q.
func (p *Poly) sub(a, b *Poly) {
	for i := range p {
		p[i] = a[i] + 2*Q - b[i]
	}
}

// shiftl multiplies every coefficient by 2^k.
func (p *Poly) shiftl(k uint) {
	for i := range p {
		p[i] <<= k
	}
}

func (p *Poly) ntt() {
	ntt((*[N]uint32)(p))
}

func (p *Poly) invNTTMontgomery() {
	invNTTFromInvMont((*[N]uint32)(p))
}

// pointwiseInvMontgomery sets p = a * b * 2^-32 coefficientwise.
func (p *Poly) pointwiseInvMontgomery(a, b *Poly) {
	for i := range p {
		p[i] = montgomeryReduce(uint64(a[i]) * uint64(b[i]))
	}
}

// exceeds reports whether the infinity norm of p is at least bound. p must
// be frozen. The loop runs over every coefficient regardless of where the
// bound is first exceeded.
func (p *Poly) exceeds(bound uint32) bool {
	var over uint32
	for i := range p {
		// centered |a| without branching on a
		t := int32((Q-1)/2) - int32(p[i])
		t ^= t >> 31
		t = int32((Q-1)/2) - t
		over |= uint32(int32(bound-1)-t) >> 31
	}
	return over != 0
}

type polyVec []Poly

func newPolyVec(n int) polyVec {
	return make(polyVec, n)
}

func (v polyVec) ntt() {
	for i := range v {
		v[i].ntt()
	}
}

func (v polyVec) invNTTMontgomery() {
	for i := range v {
		v[i].invNTTMontgomery()
	}
}

func (v polyVec) reduce() {
	for i := range v {
		v[i].reduce()
	}
}

func (v polyVec) csubq() {
	for i := range v {
		v[i].csubq()
	}
}

func (v polyVec) freeze() {
	for i := range v {
		v[i].freeze()
	}
}

func (v polyVec) add(a, b polyVec) {
	for i := range v {
		v[i].add(&a[i], &b[i])
	}
}

func (v polyVec) sub(a, b polyVec) {
	for i := range v {
		v[i].sub(&a[i], &b[i])
	}
}

func (v polyVec) shiftl(k uint) {
	for i := range v {
		v[i].shiftl(k)
	}
}

func (v polyVec) exceeds(bound uint32) bool {
	over := false
	for i := range v {
		if v[i].exceeds(bound) {
			over = true
		}
	}
	return over
}

// pointwiseAccInvMontgomery sets w to the inner product of u and v in the
// NTT domain, accumulating 64-bit products before a single reduction.
func pointwiseAccInvMontgomery(w *Poly, u, v polyVec) {
	for i := 0; i < N; i++ {
		var t uint64
		for j := range u {
			t += uint64(u[j][i]) * uint64(v[j][i])
		}
		w[i] = montgomeryReduce(t)
	}
}
