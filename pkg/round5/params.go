package round5

import (
	"pqgo/pkg/encoding"
)

// ParamSet is a Round5 ND parameter set with a ternary secret of weight H
// in the ring Z_q[x]/(Phi_(N+1)).
type ParamSet struct {
	Name  string
	N     int
	H     int
	QBits uint
	PBits uint
	TBits uint
	// SS is the size of seeds, secret keys and shared secrets in bytes.
	SS int
	// XE is the number of parity bits appended to the message.
	XE int
	// xeLens are the lengths of the four parity registers.
	xeLens [4]int
}

var (
	R5ND1KEMb = &ParamSet{Name: "R5ND_1KEMb", N: 490, H: 162, QBits: 10, PBits: 7, TBits: 4, SS: 16, XE: 91,
		xeLens: [4]int{19, 23, 24, 25}}
	R5ND3KEMb = &ParamSet{Name: "R5ND_3KEMb", N: 756, H: 242, QBits: 12, PBits: 8, TBits: 2, SS: 24, XE: 103,
		xeLens: [4]int{23, 25, 27, 28}}
	R5ND5KEMb = &ParamSet{Name: "R5ND_5KEMb", N: 940, H: 414, QBits: 12, PBits: 8, TBits: 3, SS: 32, XE: 121,
		xeLens: [4]int{27, 29, 31, 34}}
)

// ParamSets lists the supported parameter sets by name.
var ParamSets = map[string]*ParamSet{
	R5ND1KEMb.Name: R5ND1KEMb,
	R5ND3KEMb.Name: R5ND3KEMb,
	R5ND5KEMb.Name: R5ND5KEMb,
}

// MU is the number of ciphertext coefficients carrying the codeword.
func (p *ParamSet) MU() int {
	return 8*p.SS + p.XE
}

func (p *ParamSet) ndpSize() int {
	return encoding.PackedLen(p.N, int(p.PBits))
}

func (p *ParamSet) mutSize() int {
	return encoding.PackedLen(p.MU(), int(p.TBits))
}

// PublicKeySize is the length of sigma || B.
func (p *ParamSet) PublicKeySize() int {
	return p.SS + p.ndpSize()
}

// SecretKeySize is the length of the secret seed.
func (p *ParamSet) SecretKeySize() int {
	return p.SS
}

// CiphertextSize is the length of U || v.
func (p *ParamSet) CiphertextSize() int {
	return p.ndpSize() + p.mutSize()
}

// SharedKeySize is the length of the encapsulated secret.
func (p *ParamSet) SharedKeySize() int {
	return p.SS
}

// rounding constants
func (p *ParamSet) h1() uint16 {
	return 1 << (p.QBits - p.PBits - 1)
}

func (p *ParamSet) zBits() uint {
	z := p.QBits - p.PBits + p.TBits
	if z < p.PBits {
		z = p.PBits
	}
	return z
}

func (p *ParamSet) h2() uint16 {
	return 1 << (p.QBits - p.zBits() - 1)
}

func (p *ParamSet) h3() uint16 {
	return 1<<(p.PBits-p.TBits-1) + 1<<(p.PBits-2) - 1<<(p.QBits-p.zBits()-1)
}

func (p *ParamSet) valid() bool {
	if p == nil || p.N < 2 || p.N >= 1<<11 || p.H < 2 || p.H%2 != 0 || p.H > p.N {
		return false
	}
	if p.QBits > 16 || p.PBits >= p.QBits || p.TBits >= p.PBits || p.PBits < 2 || p.TBits < 1 {
		return false
	}
	if p.MU() > p.N {
		return false
	}
	sum := 0
	for _, l := range p.xeLens {
		if l < 1 {
			return false
		}
		sum += l
	}
	return sum == p.XE
}
