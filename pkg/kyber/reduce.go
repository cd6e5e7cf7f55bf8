package kyber

const (
	qinv = 7679 // -Q^-1 mod 2^18
	rlog = 18
)

// montgomeryReduce computes a * 2^-18 mod Q for 0 <= a < Q*2^18. The result
// is in [0, 2Q).
func montgomeryReduce(a uint32) uint16 {
	u := a * qinv
	u &= (1 << rlog) - 1
	u *= Q
	a += u
	return uint16(a >> rlog)
}

// barrettReduce maps any uint16 to a representative in [0, 2Q).
func barrettReduce(a uint16) uint16 {
	u := a >> 13
	u *= Q
	return a - u
}

// freeze maps any uint16 to its canonical representative in [0, Q).
func freeze(x uint16) uint16 {
	r := barrettReduce(x)
	m := r - Q
	c := uint16(int16(m) >> 15)
	return m ^ ((r ^ m) & c)
}
