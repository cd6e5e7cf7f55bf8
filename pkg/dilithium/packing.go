package dilithium

import (
	"pqgo/pkg/encoding"
)

// packW1 packs the high bits of w (values < 16) two per byte.
func (p *Poly) packW1(r []byte) {
	for i := 0; i < N/2; i++ {
		r[i] = byte(p[2*i] | p[2*i+1]<<4)
	}
}

func (p *Poly) packT1(r []byte) {
	encoding.PackBits(r[:polyT1Bytes], p[:], 9)
}

func (p *Poly) unpackT1(a []byte) {
	encoding.UnpackBits(p[:], a[:polyT1Bytes], 9)
}

// packT0 stores 2^(D-1) - t0 in 14 bits, t0 given as Q + t0.
func (p *Poly) packT0(r []byte) {
	var t [N]uint32
	for i := range t {
		t[i] = Q + (1 << (D - 1)) - p[i]
	}
	encoding.PackBits(r[:polyT0Bytes], t[:], 14)
}

func (p *Poly) unpackT0(a []byte) {
	encoding.UnpackBits(p[:], a[:polyT0Bytes], 14)
	for i := range p {
		p[i] = Q + (1 << (D - 1)) - p[i]
	}
}

// packEta stores eta - s for s given as Q + s.
func (p *Poly) packEta(r []byte, m *Mode) {
	var t [N]uint32
	for i := range t {
		t[i] = Q + m.Eta - p[i]
	}
	encoding.PackBits(r[:m.polyEtaBytes()], t[:], m.polyEtaBits())
	clear(t[:])
}

func (p *Poly) unpackEta(a []byte, m *Mode) {
	encoding.UnpackBits(p[:], a[:m.polyEtaBytes()], m.polyEtaBits())
	for i := range p {
		p[i] = Q + m.Eta - p[i]
	}
}

// packZ maps a canonical z with |z| < Gamma1 to Gamma1 - 1 - z in 20 bits.
func (p *Poly) packZ(r []byte) {
	var t [N]uint32
	for i := range t {
		t[i] = Gamma1 - 1 - p[i]
		t[i] += uint32(int32(t[i])>>31) & Q
	}
	encoding.PackBits(r[:polyZBytes], t[:], 20)
}

// unpackZ is the inverse of packZ and yields canonical coefficients.
func (p *Poly) unpackZ(a []byte) {
	encoding.UnpackBits(p[:], a[:polyZBytes], 20)
	for i := range p {
		p[i] = Gamma1 - 1 - p[i]
		p[i] += uint32(int32(p[i])>>31) & Q
	}
}

// packPublicKey writes rho || t1.
func (m *Mode) packPublicKey(pk, rho []byte, t1 polyVec) {
	w := encoding.NewWriter(pk)
	w.Put(rho[:SeedBytes])
	for i := range t1 {
		t1[i].packT1(w.Next(polyT1Bytes))
	}
}

func (m *Mode) unpackPublicKey(pk []byte) (rho []byte, t1 polyVec) {
	r := encoding.NewReader(pk)
	rho = r.Next(SeedBytes)
	t1 = newPolyVec(m.K)
	for i := range t1 {
		t1[i].unpackT1(r.Next(polyT1Bytes))
	}
	return rho, t1
}

// packSecretKey writes rho || key || tr || s1 || s2 || t0.
func (m *Mode) packSecretKey(sk, rho, key, tr []byte, s1, s2, t0 polyVec) {
	w := encoding.NewWriter(sk)
	w.Put(rho[:SeedBytes])
	w.Put(key[:SeedBytes])
	w.Put(tr[:CRHBytes])
	for i := range s1 {
		s1[i].packEta(w.Next(m.polyEtaBytes()), m)
	}
	for i := range s2 {
		s2[i].packEta(w.Next(m.polyEtaBytes()), m)
	}
	for i := range t0 {
		t0[i].packT0(w.Next(polyT0Bytes))
	}
}

type secretKey struct {
	rho, key, tr []byte
	s1, s2, t0   polyVec
}

func (sk *secretKey) wipe() {
	encoding.Wipe(sk.s1, sk.s2, sk.t0)
}

func (m *Mode) unpackSecretKey(b []byte) *secretKey {
	r := encoding.NewReader(b)
	sk := &secretKey{
		rho: r.Next(SeedBytes),
		key: r.Next(SeedBytes),
		tr:  r.Next(CRHBytes),
		s1:  newPolyVec(m.L),
		s2:  newPolyVec(m.K),
		t0:  newPolyVec(m.K),
	}
	for i := range sk.s1 {
		sk.s1[i].unpackEta(r.Next(m.polyEtaBytes()), m)
	}
	for i := range sk.s2 {
		sk.s2[i].unpackEta(r.Next(m.polyEtaBytes()), m)
	}
	for i := range sk.t0 {
		sk.t0[i].unpackT0(r.Next(polyT0Bytes))
	}
	return sk
}

// packSignature writes z || h || c. Hints are encoded as the sorted indices
// of the set coefficients followed by a running count per polynomial. c is a
// bitmap of its nonzero positions followed by their signs.
func (m *Mode) packSignature(sig []byte, z, h polyVec, c *Poly) {
	w := encoding.NewWriter(sig)
	for i := range z {
		z[i].packZ(w.Next(polyZBytes))
	}

	hb := w.Next(m.Omega + m.K)
	k := 0
	for i := range h {
		for j := 0; j < N; j++ {
			if h[i][j] != 0 {
				hb[k] = byte(j)
				k++
			}
		}
		hb[m.Omega+i] = byte(k)
	}
	for ; k < m.Omega; k++ {
		hb[k] = 0
	}

	cb := w.Next(N / 8)
	var signs, mask uint64 = 0, 1
	for i := 0; i < N/8; i++ {
		cb[i] = 0
		for j := 0; j < 8; j++ {
			if c[8*i+j] != 0 {
				cb[i] |= 1 << j
				if c[8*i+j] == Q-1 {
					signs |= mask
				}
				mask <<= 1
			}
		}
	}
	sb := w.Next(8)
	for i := range sb {
		sb[i] = byte(signs >> (8 * i))
	}
}

// unpackSignature parses sig and reports false for any encoding that a
// signer could not have produced, so every valid signature has exactly one
// byte representation.
func (m *Mode) unpackSignature(sig []byte) (z, h polyVec, c *Poly, ok bool) {
	r := encoding.NewReader(sig)
	z = newPolyVec(m.L)
	for i := range z {
		z[i].unpackZ(r.Next(polyZBytes))
	}

	h = newPolyVec(m.K)
	hb := r.Next(m.Omega + m.K)
	k := 0
	for i := range h {
		end := int(hb[m.Omega+i])
		if end < k || end > m.Omega {
			return nil, nil, nil, false
		}
		for j := k; j < end; j++ {
			// strictly increasing within one polynomial
			if j > k && hb[j] <= hb[j-1] {
				return nil, nil, nil, false
			}
			h[i][hb[j]] = 1
		}
		k = end
	}
	for j := k; j < m.Omega; j++ {
		if hb[j] != 0 {
			return nil, nil, nil, false
		}
	}

	cb := r.Next(N / 8)
	sb := r.Next(8)
	var signs uint64
	for i := range sb {
		signs |= uint64(sb[i]) << (8 * i)
	}
	if signs>>challengeWeight != 0 {
		return nil, nil, nil, false
	}
	c = new(Poly)
	var mask uint64 = 1
	for i := 0; i < N/8; i++ {
		for j := 0; j < 8; j++ {
			if (cb[i]>>j)&1 == 1 {
				if signs&mask != 0 {
					c[8*i+j] = Q - 1
				} else {
					c[8*i+j] = 1
				}
				mask <<= 1
			}
		}
	}
	return z, h, c, true
}
