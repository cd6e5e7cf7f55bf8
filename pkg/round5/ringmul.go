package round5

import (
	"crypto/subtle"

	"golang.org/x/xerrors"

	"pqgo/pkg/hash"
)

// A secret is a sparse ternary vector stored as index pairs: position
// idx[i][0] holds +1 and idx[i][1] holds -1.
type indexPairs [][2]uint16

// RingMultiplier generates sparse ternary secrets and multiplies them with
// ring elements. Every implementation produces identical output for
// identical input; they differ only in their memory access pattern.
type RingMultiplier interface {
	// Name identifies the implementation in configuration files.
	Name() string
	// Indices fills idx with 2*len(idx) distinct positions below n derived
	// from SHAKE-256(seed).
	Indices(idx [][2]uint16, n int, seed []byte)
	// MulQ sets d to a*s in Z_(2^16)[x]/(Phi_(n+1)), n = len(a) = len(d).
	MulQ(d, a []uint16, idx [][2]uint16)
	// MulP sets d to the first len(d) coefficients of a*s in
	// Z_(2^16)[x]/(x^(n+1) - 1).
	MulP(d, a []uint16, idx [][2]uint16)
}

const (
	// FastName selects the multiplier whose timing and memory access
	// depend on the secret indices.
	FastName = "fast"
	// ConstantTimeName selects the cache-timing resistant multiplier.
	ConstantTimeName = "constant-time"
)

var (
	// Fast indexes directly by secret positions. Only use it where the
	// caller already tolerates timing leakage of the secret.
	Fast RingMultiplier = fastMultiplier{}
	// ConstantTime touches the same memory for every secret.
	ConstantTime RingMultiplier = ctMultiplier{}

	ErrUnknownMultiplier = xerrors.New("round5: unknown ring multiplier")
)

// MultiplierByName returns the implementation registered under name.
func MultiplierByName(name string) (RingMultiplier, error) {
	switch name {
	case FastName:
		return Fast, nil
	case ConstantTimeName:
		return ConstantTime, nil
	}
	return nil, xerrors.Errorf("%q: %w", name, ErrUnknownMultiplier)
}

// indexSource yields uniform positions below n from a SHAKE-256 stream of
// little-endian 16-bit words.
type indexSource struct {
	xof   *hash.Stream
	div   uint16
	limit uint32
}

func newIndexSource(n int, seed []byte) *indexSource {
	div := 0x10000 / n
	return &indexSource{
		xof:   hash.NewStream256(seed),
		div:   uint16(div),
		limit: uint32(n * div),
	}
}

func (s *indexSource) next() uint16 {
	for {
		b0, b1 := s.xof.Read2()
		x := uint16(b0) | uint16(b1)<<8
		if uint32(x) < s.limit {
			return x / s.div
		}
	}
}

type fastMultiplier struct{}

func (fastMultiplier) Name() string { return FastName }

func (fastMultiplier) Indices(idx [][2]uint16, n int, seed []byte) {
	src := newIndexSource(n, seed)
	used := make([]bool, n)
	for i := 0; i < 2*len(idx); i++ {
		x := src.next()
		for used[x] {
			x = src.next()
		}
		used[x] = true
		idx[i>>1][i&1] = x
	}
}

func (fastMultiplier) MulQ(d, a []uint16, idx [][2]uint16) {
	n := len(a)
	// a || 0 twice, so every rotation is a contiguous window
	pp := make([]uint16, 2*(n+1))
	copy(pp, a)
	copy(pp[n+1:], pp[:n+1])

	acc := make([]uint16, n+1)
	for _, ix := range idx {
		qt := pp[ix[0] : int(ix[0])+n+1]
		rt := pp[ix[1] : int(ix[1])+n+1]
		for j := range acc {
			acc[j] += qt[j] - rt[j]
		}
	}
	// reduce mod Phi_(n+1)
	t := acc[n]
	for j := 0; j < n; j++ {
		d[j] = acc[j] - t
	}
}

func (fastMultiplier) MulP(d, a []uint16, idx [][2]uint16) {
	n, mu := len(a), len(d)
	pp := make([]uint16, n+1+mu)
	copy(pp, a)
	copy(pp[n+1:], a[:mu])

	clear(d)
	for _, ix := range idx {
		qt := pp[ix[0] : int(ix[0])+mu]
		rt := pp[ix[1] : int(ix[1])+mu]
		for j := range d {
			d[j] += qt[j] - rt[j]
		}
	}
}

type ctMultiplier struct{}

func (ctMultiplier) Name() string { return ConstantTimeName }

// testAndSet marks bit x of the occupancy vector v and reports whether it was
// already set. Every word of v is read and written whatever x is.
func testAndSet(v []uint64, x uint16) bool {
	y := uint64(1) << (x & 0x3F)
	hi := int32(x >> 6)
	var c uint64
	for i := range v {
		sel := -uint64(subtle.ConstantTimeEq(int32(i), hi))
		a := v[i]
		b := a | (y & sel)
		c |= a ^ b
		v[i] = b
	}
	return c == 0
}

func (ctMultiplier) Indices(idx [][2]uint16, n int, seed []byte) {
	src := newIndexSource(n, seed)
	v := make([]uint64, (n+63)/64)
	for i := 0; i < 2*len(idx); i++ {
		x := src.next()
		for testAndSet(v, x) {
			x = src.next()
		}
		idx[i>>1][i&1] = x
	}
	clear(v)
}

// rotateAdd adds x^-k * p to acc, where p and acc have n+1 coefficients.
// Both halves together cover every coefficient of acc exactly once.
func rotateAdd(acc, p []uint16, k int) {
	m := len(p) - k
	lo, hi := acc[:m], acc[m:]
	for j := range lo {
		lo[j] += p[k+j]
	}
	for j := range hi {
		hi[j] += p[j]
	}
}

func rotateSub(acc, p []uint16, k int) {
	m := len(p) - k
	lo, hi := acc[:m], acc[m:]
	for j := range lo {
		lo[j] -= p[k+j]
	}
	for j := range hi {
		hi[j] -= p[j]
	}
}

func (ctMultiplier) mul(a []uint16, idx [][2]uint16) []uint16 {
	n := len(a)
	p := make([]uint16, n+1)
	copy(p, a)
	acc := make([]uint16, n+1)
	for _, ix := range idx {
		rotateAdd(acc, p, int(ix[0]))
		rotateSub(acc, p, int(ix[1]))
	}
	return acc
}

func (m ctMultiplier) MulQ(d, a []uint16, idx [][2]uint16) {
	acc := m.mul(a, idx)
	t := acc[len(a)]
	for j := range d {
		d[j] = acc[j] - t
	}
}

func (m ctMultiplier) MulP(d, a []uint16, idx [][2]uint16) {
	acc := m.mul(a, idx)
	copy(d, acc[:len(d)])
}
