package round5

import (
	"math/rand"
	"testing"
)

func randomCodeword(rnd *rand.Rand, p *ParamSet, code *xeCode) []uint8 {
	cw := make([]uint8, p.MU())
	for i := 0; i < code.msgBits; i++ {
		cw[i] = uint8(rnd.Intn(2))
	}
	code.encode(cw)
	return cw
}

func TestXEParityLayout(t *testing.T) {
	code := newXECode(R5ND3KEMb)
	cw := make([]uint8, R5ND3KEMb.MU())
	cw[0] = 1
	code.encode(cw)
	// bit 0 lands at position 0 of every register
	want := map[int]bool{192: true, 192 + 23: true, 192 + 23 + 25: true, 192 + 23 + 25 + 27: true}
	for i := code.msgBits; i < len(cw); i++ {
		if (cw[i] == 1) != want[i] {
			t.Errorf("parity bit %d = %d", i, cw[i])
		}
	}
}

func TestXECorrectsSingleErrors(t *testing.T) {
	rnd := rand.New(rand.NewSource(12))
	for _, p := range allSets {
		code := newXECode(p)
		orig := randomCodeword(rnd, p, &code)
		for i := range orig {
			cw := append([]uint8(nil), orig...)
			cw[i] ^= 1
			code.correct(cw)
			for k := 0; k < code.msgBits; k++ {
				if cw[k] != orig[k] {
					t.Fatalf("%s: error at %d not corrected (bit %d)", p.Name, i, k)
				}
			}
		}
	}
}

// Every pair of bit errors in an R5ND_1KEMb codeword is corrected.
func TestXECorrectsAllDoubleErrors(t *testing.T) {
	p := R5ND1KEMb
	rnd := rand.New(rand.NewSource(13))
	code := newXECode(p)
	orig := randomCodeword(rnd, p, &code)
	cw := make([]uint8, len(orig))
	for i := 0; i < len(orig); i++ {
		for j := i + 1; j < len(orig); j++ {
			copy(cw, orig)
			cw[i] ^= 1
			cw[j] ^= 1
			code.correct(cw)
			for k := 0; k < code.msgBits; k++ {
				if cw[k] != orig[k] {
					t.Fatalf("errors at %d,%d: message bit %d wrong", i, j, k)
				}
			}
		}
	}
}

func TestXECorrectsRandomDoubleErrors(t *testing.T) {
	rnd := rand.New(rand.NewSource(14))
	for _, p := range []*ParamSet{R5ND3KEMb, R5ND5KEMb} {
		code := newXECode(p)
		for trial := 0; trial < 2000; trial++ {
			orig := randomCodeword(rnd, p, &code)
			cw := append([]uint8(nil), orig...)
			i := rnd.Intn(len(cw))
			j := rnd.Intn(len(cw) - 1)
			if j >= i {
				j++
			}
			cw[i] ^= 1
			cw[j] ^= 1
			code.correct(cw)
			for k := 0; k < code.msgBits; k++ {
				if cw[k] != orig[k] {
					t.Fatalf("%s: errors at %d,%d: message bit %d wrong", p.Name, i, j, k)
				}
			}
		}
	}
}

func TestBitConversion(t *testing.T) {
	b := []byte{0x01, 0x80, 0xa5}
	bits := make([]uint8, 24)
	bitsFromBytes(bits, b)
	if bits[0] != 1 || bits[15] != 1 || bits[1] != 0 {
		t.Errorf("bits = %v", bits)
	}
	out := make([]byte, 3)
	bytesFromBits(out, bits)
	if string(out) != string(b) {
		t.Errorf("round trip = %x", out)
	}
}
