package dilithium

import (
	"bytes"
	"testing"

	"pqgo/pkg/rng"
)

// TestStress runs random keys and messages of random length through every
// mode: each signature must verify, survive Open, and fail after a single
// flipped bit in the signature or the message.
func TestStress(t *testing.T) {
	rounds := 200
	if testing.Short() {
		rounds = 20
	}
	src := rng.MustNew([]byte("dilithium stress"))

	for _, m := range []*Mode{Mode1, Mode2, Mode3} {
		s := New(m)
		seed := make([]byte, SeedBytes)
		var lens [2]byte
		for i := 0; i < rounds; i++ {
			src.Read(seed)
			src.Read(lens[:])
			msg := make([]byte, int(lens[0])|int(lens[1]&1)<<8)
			src.Read(msg)

			pk, sk, err := s.Gen(seed)
			if err != nil {
				t.Fatalf("%s round %d: %v", m.Name, i, err)
			}
			if got, err := s.PublicKey(sk); err != nil || !bytes.Equal(got, pk) {
				t.Fatalf("%s round %d: public key not recomputed from sk", m.Name, i)
			}
			sig, err := s.Sign(sk, msg)
			if err != nil {
				t.Fatalf("%s round %d: %v", m.Name, i, err)
			}
			if !s.Verify(pk, msg, sig) {
				t.Fatalf("%s round %d: signature rejected", m.Name, i)
			}

			sm := append(append([]byte(nil), sig...), msg...)
			if got, err := s.Open(pk, sm); err != nil || !bytes.Equal(got, msg) {
				t.Fatalf("%s round %d: open failed: %v", m.Name, i, err)
			}

			bit := int(seed[0])<<8 | int(seed[1])
			sig[bit%len(sig)] ^= 1 << (bit % 8)
			if s.Verify(pk, msg, sig) {
				t.Fatalf("%s round %d: tampered signature accepted (byte %d)", m.Name, i, bit%len(sig))
			}
			sig[bit%len(sig)] ^= 1 << (bit % 8)
			if len(msg) > 0 {
				msg[bit%len(msg)] ^= 1
				if s.Verify(pk, msg, sig) {
					t.Fatalf("%s round %d: signature accepted for modified message", m.Name, i)
				}
			}

			if (i+1)%100 == 0 {
				t.Logf("%s: %d/%d rounds", m.Name, i+1, rounds)
			}
		}
	}
}
