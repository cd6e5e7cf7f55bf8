package dilithium

// power2round splits a canonical a into a1*2^D + a0 with a0 centered in
// (-2^(D-1), 2^(D-1)]. a0 is returned as Q + a0.
func power2round(a uint32) (a1, a0 uint32) {
	t := int32(a & (1<<D - 1))
	t -= 1<<(D-1) + 1
	t += (t >> 31) & (1 << D)
	t -= 1<<(D-1) - 1
	return (a - uint32(t)) >> D, uint32(Q + t)
}

// decompose splits a canonical a into a1*Alpha + a0 with a0 centered in
// (-Alpha/2, Alpha/2], except that a - a0 = Q - 1 is mapped to a1 = 0 and
// a0 - 1. a0 is returned as Q + a0. Alpha = 2^19 - 2^9, so the reduction
// mod Alpha is a shift and add.
func decompose(a uint32) (a1, a0 uint32) {
	t := int32(a&0x7FFFF) + int32((a>>19)<<9)
	t -= Alpha/2 + 1
	t += (t >> 31) & Alpha
	t -= Alpha/2 - 1
	a1 = (a - uint32(t)) / Alpha
	// a1 == 16 exactly when a - t == Q - 1
	m := a1 >> 4
	t -= int32(m)
	a1 &= 0xF
	return a1, uint32(Q + t)
}

func highBits(a uint32) uint32 {
	a1, _ := decompose(a)
	return a1
}

// makeHint reports whether the high bits of a and b differ.
func makeHint(a, b uint32) uint32 {
	x := highBits(a) ^ highBits(b)
	return (x | -x) >> 31
}

// useHint corrects the high bits of a with hint bit h.
func useHint(a, h uint32) uint32 {
	a1, a0 := decompose(a)
	if h == 0 {
		return a1
	}
	if a0 > Q {
		return (a1 + 1) & 0xF
	}
	return (a1 - 1) & 0xF
}

func (v polyVec) power2round(v1, v0 polyVec) {
	for i := range v {
		for j := 0; j < N; j++ {
			v1[i][j], v0[i][j] = power2round(v[i][j])
		}
	}
}

func (v polyVec) decompose(v1, v0 polyVec) {
	for i := range v {
		for j := 0; j < N; j++ {
			v1[i][j], v0[i][j] = decompose(v[i][j])
		}
	}
}

// makeHintVec sets h and returns the number of set hint bits.
func makeHintVec(h, a, b polyVec) int {
	n := 0
	for i := range h {
		for j := 0; j < N; j++ {
			h[i][j] = makeHint(a[i][j], b[i][j])
			n += int(h[i][j])
		}
	}
	return n
}

func useHintVec(w1, u, h polyVec) {
	for i := range w1 {
		for j := 0; j < N; j++ {
			w1[i][j] = useHint(u[i][j], h[i][j])
		}
	}
}
