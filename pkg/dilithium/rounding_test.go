package dilithium

import (
	"math/rand"
	"testing"
)

// center maps a canonical value to (-(Q-1)/2, (Q-1)/2].
func center(a uint32) int64 {
	x := int64(a)
	if x > (Q-1)/2 {
		x -= Q
	}
	return x
}

func naiveDecompose(a uint32) (uint32, int64) {
	a0 := int64(a) % Alpha
	if a0 > Alpha/2 {
		a0 -= Alpha
	}
	if int64(a)-a0 == Q-1 {
		return 0, a0 - 1
	}
	return uint32((int64(a) - a0) / Alpha), a0
}

func TestDecompose(t *testing.T) {
	check := func(a uint32) {
		a1, a0 := decompose(a)
		w1, w0 := naiveDecompose(a)
		if a1 != w1 || int64(a0)-Q != w0 {
			t.Fatalf("decompose(%d) = (%d, %d), want (%d, %d)", a, a1, int64(a0)-Q, w1, w0)
		}
	}
	for a := uint32(0); a < Q; a += 97 {
		check(a)
	}
	for a := uint32(Q - 2*Alpha); a < Q; a++ {
		check(a)
	}
	for _, a := range []uint32{0, 1, Alpha/2 - 1, Alpha / 2, Alpha/2 + 1, Alpha, Q - Alpha/2 - 1, Q - 1} {
		check(a)
	}
}

func TestPower2Round(t *testing.T) {
	for a := uint32(0); a < Q; a += 13 {
		a1, a0 := power2round(a)
		t0 := int64(a0) - Q
		if t0 <= -(1<<(D-1)) || t0 > 1<<(D-1) {
			t.Fatalf("power2round(%d): a0 = %d out of range", a, t0)
		}
		if int64(a1)<<D+t0 != int64(a) {
			t.Fatalf("power2round(%d) = (%d, %d)", a, a1, t0)
		}
	}
}

// useHint recovers the high bits of r+z from r whenever |z| <= Gamma2.
func TestHints(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	for i := 0; i < 200000; i++ {
		r := uint32(rnd.Int63n(Q))
		z := rnd.Int63n(2*Gamma2+1) - Gamma2
		rz := uint32((int64(r) + z + Q) % Q)
		h := makeHint(r, rz)
		if got, want := useHint(r, h), highBits(rz); got != want {
			t.Fatalf("r=%d z=%d: useHint = %d, want %d (h=%d)", r, z, got, want, h)
		}
		if (highBits(r) != highBits(rz)) != (h == 1) {
			t.Fatalf("makeHint(%d, %d) = %d", r, rz, h)
		}
	}
}

func TestExceeds(t *testing.T) {
	var p Poly
	if p.exceeds(1) {
		t.Error("zero polynomial exceeds 1")
	}
	p[17] = 5
	if p.exceeds(6) || !p.exceeds(5) {
		t.Error("wrong result for coefficient 5")
	}
	p[17] = Q - 5
	if p.exceeds(6) || !p.exceeds(5) {
		t.Error("wrong result for coefficient -5")
	}
}

func TestPackingRoundTrips(t *testing.T) {
	rnd := rand.New(rand.NewSource(8))
	var a, b Poly
	buf := make([]byte, polyZBytes)

	for i := range a {
		a[i] = uint32(rnd.Intn(1 << 9))
	}
	a.packT1(buf)
	b.unpackT1(buf)
	if a != b {
		t.Error("t1 round trip")
	}

	for i := range a {
		a[i] = uint32(Q + rnd.Intn(1<<D) - (1<<(D-1) - 1))
	}
	a.packT0(buf)
	b.unpackT0(buf)
	if a != b {
		t.Error("t0 round trip")
	}

	for i := range a {
		a[i] = uint32((int64(rnd.Intn(2*Gamma1-1)) - (Gamma1 - 1) + Q) % Q)
	}
	a.packZ(buf)
	b.unpackZ(buf)
	if a != b {
		t.Error("z round trip")
	}

	for _, m := range []*Mode{Mode1, Mode3} {
		for i := range a {
			a[i] = Q + m.Eta - uint32(rnd.Intn(int(2*m.Eta+1)))
		}
		a.packEta(buf, m)
		b.unpackEta(buf, m)
		if a != b {
			t.Errorf("%s: eta round trip", m.Name)
		}
	}
}

// The challenge has exactly 60 coefficients in {-1, 1}
func TestChallengeWeight(t *testing.T) {
	w1 := newPolyVec(Mode2.K)
	for i := range w1 {
		for j := range w1[i] {
			w1[i][j] = uint32(j % 16)
		}
	}
	var c Poly
	challenge(&c, make([]byte, CRHBytes), w1)
	n := 0
	for _, v := range c {
		switch v {
		case 0:
		case 1, Q - 1:
			n++
		default:
			t.Fatalf("coefficient %d not in {-1, 0, 1}", v)
		}
	}
	if n != challengeWeight {
		t.Errorf("weight = %d, want %d", n, challengeWeight)
	}
}

func TestSamplerBounds(t *testing.T) {
	seed := make([]byte, SeedBytes+CRHBytes)
	for _, m := range []*Mode{Mode1, Mode2, Mode3} {
		var p Poly
		polyUniformEta(&p, seed, 3, m.Eta)
		for i, v := range p {
			if d := int64(v) - Q; d < -int64(m.Eta) || d > int64(m.Eta) {
				t.Fatalf("%s: eta sample %d = %d", m.Name, i, d)
			}
		}
	}
	var y Poly
	polyUniformGamma1m1(&y, seed, 0)
	for i, v := range y {
		if d := int64(v) - Q; d < -(Gamma1-1) || d > Gamma1-1 {
			t.Fatalf("gamma1 sample %d = %d", i, d)
		}
	}
	mat := expandMat(2, 2, seed)
	for i := range mat {
		for j := range mat[i] {
			for _, v := range mat[i][j] {
				if v >= Q {
					t.Fatalf("matrix entry %d >= Q", v)
				}
			}
		}
	}
}
