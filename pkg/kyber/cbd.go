package kyber

// cbd maps eta*N/4 uniform bytes to a polynomial whose coefficients follow
// the centered binomial distribution with parameter eta, stored as a+Q-b.
// Each group of eta bytes yields four coefficients.
func cbd(r *poly, buf []byte, eta int) {
	var mask uint64
	for i := 0; i < 8; i++ {
		mask |= 1 << (i * eta)
	}
	emask := uint64(1)<<eta - 1
	for i := 0; i < N/4; i++ {
		t := loadLittleEndian(buf[eta*i : eta*i+eta])
		var d uint64
		for j := 0; j < eta; j++ {
			d += (t >> j) & mask
		}
		for k := 0; k < 4; k++ {
			a := (d >> (2 * k * eta)) & emask
			b := (d >> ((2*k + 1) * eta)) & emask
			r[4*i+k] = uint16(a + Q - b)
		}
	}
}

func loadLittleEndian(x []byte) uint64 {
	var r uint64
	for i := len(x) - 1; i >= 0; i-- {
		r = r<<8 | uint64(x[i])
	}
	return r
}
