package round5

// xeCode is a parity code over the message bits. Register r has length
// lens[r] and its bit j is the XOR of every message bit k with
// k mod lens[r] == j. The register lengths are pairwise coprime and every
// pairwise product exceeds the message length, so two distinct message bits
// share at most one register position and any two bit errors in a codeword
// are corrected.
type xeCode struct {
	msgBits int
	lens    [4]int
	offs    [4]int
}

func newXECode(p *ParamSet) xeCode {
	c := xeCode{msgBits: 8 * p.SS, lens: p.xeLens}
	off := c.msgBits
	for r, l := range c.lens {
		c.offs[r] = off
		off += l
	}
	return c
}

// parity recomputes the registers from the message part of cw and XORs them
// into regs.
func (c *xeCode) parity(regs []uint8, cw []uint8) {
	for r, l := range c.lens {
		reg := regs[c.offs[r]-c.msgBits : c.offs[r]-c.msgBits+l]
		j := 0
		for k := 0; k < c.msgBits; k++ {
			reg[j] ^= cw[k]
			j++
			if j == l {
				j = 0
			}
		}
	}
}

// encode fills the parity bits of the codeword cw, one bit per byte, from
// its first msgBits bits.
func (c *xeCode) encode(cw []uint8) {
	regs := cw[c.msgBits:]
	clear(regs)
	c.parity(regs, cw)
}

// correct flips every message bit of cw for which at least three of its
// four register syndromes are set. It runs in time independent of cw.
func (c *xeCode) correct(cw []uint8) {
	syn := make([]uint8, len(cw)-c.msgBits)
	copy(syn, cw[c.msgBits:])
	c.parity(syn, cw)

	var pos [4]int
	for k := 0; k < c.msgBits; k++ {
		var cnt uint8
		for r := range c.lens {
			cnt += syn[c.offs[r]-c.msgBits+pos[r]]
		}
		// 1 for cnt >= 3, 0 for cnt <= 2
		cw[k] ^= (cnt + 1) >> 2
		for r, l := range c.lens {
			pos[r]++
			if pos[r] == l {
				pos[r] = 0
			}
		}
	}
	clear(syn)
}
