package dilithium

const (
	mont = 4193792    // 2^32 mod Q
	qinv = 4236238847 // -Q^-1 mod 2^32
)

// montgomeryReduce returns a*2^-32 mod Q in [0, 2Q) for a < Q*2^32.
func montgomeryReduce(a uint64) uint32 {
	t := a * qinv
	t &= (1 << 32) - 1
	t *= Q
	t = a + t
	return uint32(t >> 32)
}

// reduce32 returns a representative of a in [0, 2Q).
func reduce32(a uint32) uint32 {
	t := a & 0x7FFFFF
	a >>= 23
	t += (a << 13) - a
	return t
}

// csubq subtracts Q if a >= Q.
func csubq(a uint32) uint32 {
	a -= Q
	a += uint32(int32(a)>>31) & Q
	return a
}

// freeze returns the canonical representative of a in [0, Q).
func freeze(a uint32) uint32 {
	return csubq(reduce32(a))
}
