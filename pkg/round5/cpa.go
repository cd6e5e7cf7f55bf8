package round5

import (
	"io"

	"golang.org/x/xerrors"

	"pqgo/pkg/encoding"
	"pqgo/pkg/hash"
	"pqgo/pkg/rng"
)

// createA expands sigma into the public ring element A, n little-endian
// 16-bit words of SHAKE-256(sigma).
func createA(a []uint16, sigma []byte) {
	buf := make([]byte, 2*len(a))
	hash.Shake256(buf, sigma)
	for i := range a {
		a[i] = uint16(buf[2*i]) | uint16(buf[2*i+1])<<8
	}
}

// roundTo maps x from a 2^from modulus to 2^to, adding h before the shift.
func roundTo(x uint16, from, to uint, h uint16) uint16 {
	return ((x + h) >> (from - to)) & (1<<to - 1)
}

// cpaKeyPair writes pk = sigma || B and the secret seed sk.
func (s *Scheme) cpaKeyPair(pk, sk []byte, rand io.Reader) error {
	p := s.params
	w := encoding.NewWriter(pk)
	sigma := w.Next(p.SS)
	if err := rng.Read(rand, sigma); err != nil {
		return xerrors.Errorf("round5 keypair: %w", err)
	}
	if err := rng.Read(rand, sk); err != nil {
		return xerrors.Errorf("round5 keypair: %w", err)
	}

	a := s.publicA(sigma)
	idx := make(indexPairs, p.H/2)
	defer clearIndices(idx)
	s.mult.Indices(idx, p.N, sk)

	b := make([]uint16, p.N)
	s.mult.MulQ(b, a, idx)
	for i := range b {
		b[i] = roundTo(b[i], p.QBits, p.PBits, p.h1())
	}
	encoding.PackBits(w.Next(p.ndpSize()), b, int(p.PBits))
	return nil
}

// encrypt writes the encryption of the SS-byte message m under pk with
// randomness seed rho into ct.
func (s *Scheme) encrypt(ct, m, rho, pk []byte) {
	p := s.params
	r := encoding.NewReader(pk)
	sigma := r.Next(p.SS)
	bp := make([]uint16, p.N)
	encoding.UnpackBits(bp, r.Next(p.ndpSize()), int(p.PBits))

	a := s.publicA(sigma)
	idx := make(indexPairs, p.H/2)
	defer clearIndices(idx)
	s.mult.Indices(idx, p.N, rho)

	// U = round_p(A*r)
	u := make([]uint16, p.N)
	s.mult.MulQ(u, a, idx)
	for i := range u {
		u[i] = roundTo(u[i], p.QBits, p.PBits, p.h1())
	}

	// V = B*r, first MU coefficients mod p
	mu := p.MU()
	v := make([]uint16, mu)
	s.mult.MulP(v, bp, idx)

	cw := make([]uint8, mu)
	defer clear(cw)
	bitsFromBytes(cw[:8*p.SS], m)
	code := newXECode(p)
	code.encode(cw)

	for i := range v {
		v[i] = roundTo(v[i]+uint16(cw[i])<<(p.PBits-1), p.PBits, p.TBits, p.h2())
	}

	w := encoding.NewWriter(ct)
	encoding.PackBits(w.Next(p.ndpSize()), u, int(p.PBits))
	encoding.PackBits(w.Next(p.mutSize()), v, int(p.TBits))
	clear(v)
}

// decrypt recovers the SS-byte message from ct into m.
func (s *Scheme) decrypt(m, ct, sk []byte) {
	p := s.params
	mu := p.MU()
	r := encoding.NewReader(ct)
	u := make([]uint16, p.N)
	encoding.UnpackBits(u, r.Next(p.ndpSize()), int(p.PBits))
	v := make([]uint16, mu)
	encoding.UnpackBits(v, r.Next(p.mutSize()), int(p.TBits))

	idx := make(indexPairs, p.H/2)
	defer clearIndices(idx)
	s.mult.Indices(idx, p.N, sk)

	x := make([]uint16, mu)
	defer clear(x)
	s.mult.MulP(x, u, idx)

	cw := make([]uint8, mu)
	defer clear(cw)
	for i := range cw {
		t := v[i]<<(p.PBits-p.TBits) - x[i] + p.h3()
		cw[i] = uint8(t>>(p.PBits-1)) & 1
	}
	code := newXECode(p)
	code.correct(cw)
	bytesFromBits(m, cw[:8*p.SS])
}

// publicA returns A for sigma, consulting the cache when one is configured.
// Cached elements are shared and must not be mutated.
func (s *Scheme) publicA(sigma []byte) []uint16 {
	if s.cache == nil {
		a := make([]uint16, s.params.N)
		createA(a, sigma)
		return a
	}
	key := s.params.Name + string(sigma)
	if v, ok := s.cache.Get(key); ok {
		if a, ok := v.([]uint16); ok {
			return a
		}
	}
	a := make([]uint16, s.params.N)
	createA(a, sigma)
	s.cache.Add(key, a)
	return a
}

func bitsFromBytes(bits []uint8, b []byte) {
	for i := range bits {
		bits[i] = (b[i>>3] >> (i & 7)) & 1
	}
}

func bytesFromBits(b []byte, bits []uint8) {
	clear(b)
	for i, x := range bits {
		b[i>>3] |= x << (i & 7)
	}
}

func clearIndices(idx indexPairs) {
	for i := range idx {
		idx[i] = [2]uint16{}
	}
}
