package dilithium

import (
	"pqgo/pkg/hash"
)

// MatrixCache stores expanded public matrices keyed by rho. Implementations
// must be safe for concurrent use; *lru.ARCCache satisfies it.
type MatrixCache interface {
	Get(key interface{}) (interface{}, bool)
	Add(key, value interface{})
}

type matrixKey struct {
	mode string
	rho  [SeedBytes]byte
}

// expandMat derives the K x L matrix A in the NTT domain. Entry (i, j) is
// read from SHAKE-128(rho || i + 16j) as 23-bit little-endian candidates
// below Q.
func expandMat(k, l int, rho []byte) []polyVec {
	mat := make([]polyVec, k)
	inbuf := make([]byte, SeedBytes+1)
	copy(inbuf, rho[:SeedBytes])
	xof := hash.NewStream128()
	for i := 0; i < k; i++ {
		mat[i] = newPolyVec(l)
		for j := 0; j < l; j++ {
			inbuf[SeedBytes] = byte(i + (j << 4))
			xof.Reset(inbuf)
			polyUniform(&mat[i][j], xof)
		}
	}
	return mat
}

func polyUniform(a *Poly, xof *hash.Stream) {
	for ctr := 0; ctr < N; {
		b0, b1, b2 := xof.Read3()
		t := (uint32(b0) | uint32(b1)<<8 | uint32(b2)<<16) & 0x7FFFFF
		if t < Q {
			a[ctr] = t
			ctr++
		}
	}
}

// matrix returns A for rho, consulting the cache when one is configured.
// Cached matrices are shared and must not be mutated.
func (s *Scheme) matrix(rho []byte) []polyVec {
	if s.cache == nil {
		return expandMat(s.mode.K, s.mode.L, rho)
	}
	key := matrixKey{mode: s.mode.Name}
	copy(key.rho[:], rho)
	if v, ok := s.cache.Get(key); ok {
		if m, ok := v.([]polyVec); ok {
			return m
		}
	}
	m := expandMat(s.mode.K, s.mode.L, rho)
	s.cache.Add(key, m)
	return m
}

// polyUniformEta samples coefficients in [-eta, eta], stored as Q + eta - t,
// from SHAKE-256(seed || nonce) by rejection on nibbles (3-bit fields when
// eta <= 3).
func polyUniformEta(a *Poly, seed []byte, nonce byte, eta uint32) {
	xof := hash.NewStream256(seed[:SeedBytes], []byte{nonce})
	for ctr := 0; ctr < N; {
		b, _ := xof.ReadByte()
		var t0, t1 uint32
		if eta <= 3 {
			t0 = uint32(b & 0x07)
			t1 = uint32(b >> 5)
		} else {
			t0 = uint32(b & 0x0F)
			t1 = uint32(b >> 4)
		}
		if t0 <= 2*eta {
			a[ctr] = Q + eta - t0
			ctr++
		}
		if t1 <= 2*eta && ctr < N {
			a[ctr] = Q + eta - t1
			ctr++
		}
	}
}

// polyUniformGamma1m1 samples the masking polynomial with coefficients in
// [-(Gamma1-1), Gamma1-1] from SHAKE-256(key || mu || nonce), two 20-bit
// candidates per 5 bytes.
func polyUniformGamma1m1(a *Poly, seed []byte, nonce uint16) {
	xof := hash.NewStream256(seed[:SeedBytes+CRHBytes], []byte{byte(nonce), byte(nonce >> 8)})
	var buf [5]byte
	for ctr := 0; ctr < N; {
		xof.Read(buf[:])
		t0 := (uint32(buf[0]) | uint32(buf[1])<<8 | uint32(buf[2])<<16) & 0xFFFFF
		t1 := uint32(buf[2])>>4 | uint32(buf[3])<<4 | uint32(buf[4])<<12
		if t0 <= 2*Gamma1-2 {
			a[ctr] = Q + Gamma1 - 1 - t0
			ctr++
		}
		if t1 <= 2*Gamma1-2 && ctr < N {
			a[ctr] = Q + Gamma1 - 1 - t1
			ctr++
		}
	}
}

// challenge derives the sparse polynomial c with 60 coefficients of +-1
// from SHAKE-256(mu || pack(w1)).
func challenge(c *Poly, mu []byte, w1 polyVec) {
	inbuf := make([]byte, CRHBytes+len(w1)*polyW1Bytes)
	copy(inbuf, mu[:CRHBytes])
	for i := range w1 {
		w1[i].packW1(inbuf[CRHBytes+i*polyW1Bytes:])
	}
	xof := hash.NewStream256(inbuf)

	var sb [8]byte
	xof.Read(sb[:])
	var signs uint64
	for i := 0; i < 8; i++ {
		signs |= uint64(sb[i]) << (8 * i)
	}

	*c = Poly{}
	for i := N - challengeWeight; i < N; i++ {
		var b int
		for {
			x, _ := xof.ReadByte()
			b = int(x)
			if b <= i {
				break
			}
		}
		c[i] = c[b]
		c[b] = 1 + uint32(signs&1)*(Q-2)
		signs >>= 1
	}
}
