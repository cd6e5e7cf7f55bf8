package dilithium

import (
	"math/rand"
	"testing"

	"github.com/tuneinsight/lattigo/v4/ring"
)

func TestTableHeads(t *testing.T) {
	wantZetas := []uint32{4193792, 25847, 5771523, 7861508}
	wantInv := []uint32{6403635, 846154, 6979993, 4442679}
	for i := range wantZetas {
		if zetas[i] != wantZetas[i] {
			t.Errorf("zetas[%d] = %d, want %d", i, zetas[i], wantZetas[i])
		}
		if zetasInv[i] != wantInv[i] {
			t.Errorf("zetasInv[%d] = %d, want %d", i, zetasInv[i], wantInv[i])
		}
	}
	if expQ(root, 256) != Q-1 {
		t.Errorf("root^256 = %d, want -1", expQ(root, 256))
	}
}

func TestReductions(t *testing.T) {
	rnd := rand.New(rand.NewSource(3))
	for i := 0; i < 100000; i++ {
		a := rnd.Uint32()
		if r := reduce32(a); r >= 2*Q || r%Q != a%Q {
			t.Fatalf("reduce32(%d) = %d", a, r)
		}
		if r := freeze(a); r != a%Q {
			t.Fatalf("freeze(%d) = %d, want %d", a, r, a%Q)
		}
		x := uint64(rnd.Int63n(Q))
		if r := montgomeryReduce(x * mont); r%Q != uint32(x) {
			t.Fatalf("montgomeryReduce(%d*R) = %d", x, r)
		}
	}
	for _, a := range []uint32{0, Q - 1, Q, 2*Q - 1} {
		if got := csubq(a); got != a%Q {
			t.Errorf("csubq(%d) = %d", a, got)
		}
	}
}

// lattigoMul computes a*b in Z_Q[X]/(X^N+1) with lattigo as an independent
// reference.
func lattigoMul(t *testing.T, a, b *Poly) Poly {
	t.Helper()
	r, err := ring.NewRing(N, []uint64{Q})
	if err != nil {
		t.Fatalf("ring.NewRing: %v", err)
	}
	pa, pb, out := r.NewPoly(), r.NewPoly(), r.NewPoly()
	for i := 0; i < N; i++ {
		pa.Coeffs[0][i] = uint64(a[i] % Q)
		pb.Coeffs[0][i] = uint64(b[i] % Q)
	}
	r.MForm(pa, pa)
	r.MForm(pb, pb)
	r.NTT(pa, pa)
	r.NTT(pb, pb)
	r.MulCoeffsMontgomery(pa, pb, out)
	r.InvNTT(out, out)
	r.InvMForm(out, out)
	var res Poly
	for i := range res {
		res[i] = uint32(out.Coeffs[0][i])
	}
	return res
}

func randomPoly(rnd *rand.Rand) Poly {
	var p Poly
	for i := range p {
		p[i] = uint32(rnd.Int63n(Q))
	}
	return p
}

func TestProductMatchesLattigo(t *testing.T) {
	rnd := rand.New(rand.NewSource(4))
	for trial := 0; trial < 4; trial++ {
		a, b := randomPoly(rnd), randomPoly(rnd)
		want := lattigoMul(t, &a, &b)

		ah, bh := a, b
		ah.ntt()
		bh.ntt()
		var c Poly
		c.pointwiseInvMontgomery(&ah, &bh)
		c.invNTTMontgomery()
		c.freeze()
		if c != want {
			t.Fatalf("trial %d: ntt product differs from lattigo", trial)
		}
	}
}

func TestPointwiseAccMatchesLattigo(t *testing.T) {
	rnd := rand.New(rand.NewSource(5))
	u, v := newPolyVec(4), newPolyVec(4)
	var want Poly
	for i := range u {
		u[i], v[i] = randomPoly(rnd), randomPoly(rnd)
		prod := lattigoMul(t, &u[i], &v[i])
		for j := range want {
			want[j] = (want[j] + prod[j]) % Q
		}
	}
	u.ntt()
	v.ntt()
	var w Poly
	pointwiseAccInvMontgomery(&w, u, v)
	w.reduce()
	w.invNTTMontgomery()
	w.freeze()
	if w != want {
		t.Fatal("accumulated product differs from lattigo")
	}
}

func TestNTTRoundTrip(t *testing.T) {
	rnd := rand.New(rand.NewSource(6))
	var one Poly
	one[0] = 1
	one.ntt()
	for trial := 0; trial < 10; trial++ {
		a := randomPoly(rnd)
		orig := a
		a.ntt()
		// multiply by 1 in the NTT domain to land back in normal form
		var b Poly
		b.pointwiseInvMontgomery(&a, &one)
		b.invNTTMontgomery()
		b.freeze()
		if b != orig {
			t.Fatalf("trial %d: round trip differs", trial)
		}
	}
}

func BenchmarkNTT(b *testing.B) {
	var p Poly
	for i := range p {
		p[i] = uint32(i)
	}
	for i := 0; i < b.N; i++ {
		p.ntt()
		p.reduce()
		p.invNTTMontgomery()
		p.reduce()
	}
}
