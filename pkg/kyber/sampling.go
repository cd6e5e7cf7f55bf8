package kyber

import (
	"pqgo/pkg/hash"
)

// MatrixCache stores expanded public matrices keyed by seed and
// orientation. Implementations must be safe for concurrent use.
// *lru.ARCCache from github.com/hashicorp/golang-lru satisfies it.
type MatrixCache interface {
	Get(key interface{}) (interface{}, bool)
	Add(key, value interface{})
}

type matrixKey struct {
	params     string
	seed       [SymBytes]byte
	transposed bool
}

// genMatrix deterministically expands seed into the K x K public matrix in
// the NTT domain. Entry (i, j) is drawn from SHAKE-128(seed || j || i), or
// SHAKE-128(seed || i || j) when transposed, by rejection sampling 13-bit
// little-endian values below Q.
func genMatrix(k int, seed []byte, transposed bool) matrix {
	a := newMatrix(k)
	extseed := make([]byte, SymBytes+2)
	copy(extseed, seed[:SymBytes])
	xof := hash.NewStream128()
	for i := 0; i < k; i++ {
		for j := 0; j < k; j++ {
			if transposed {
				extseed[SymBytes] = byte(i)
				extseed[SymBytes+1] = byte(j)
			} else {
				extseed[SymBytes] = byte(j)
				extseed[SymBytes+1] = byte(i)
			}
			xof.Reset(extseed)
			rejUniform(&a[i][j], xof)
		}
	}
	return a
}

func rejUniform(p *poly, xof *hash.Stream) {
	for ctr := 0; ctr < N; {
		b0, b1 := xof.Read2()
		val := (uint16(b0) | uint16(b1)<<8) & 0x1fff
		if val < Q {
			p[ctr] = val
			ctr++
		}
	}
}

// matrix returns the expanded matrix for seed, consulting the cache when
// one is configured. Cached matrices are shared and must not be mutated.
func (s *Scheme) matrix(seed []byte, transposed bool) matrix {
	if s.cache == nil {
		return genMatrix(s.params.K, seed, transposed)
	}
	key := matrixKey{params: s.params.Name, transposed: transposed}
	copy(key.seed[:], seed)
	if v, ok := s.cache.Get(key); ok {
		if m, ok := v.(matrix); ok {
			return m
		}
	}
	m := genMatrix(s.params.K, seed, transposed)
	s.cache.Add(key, m)
	return m
}
