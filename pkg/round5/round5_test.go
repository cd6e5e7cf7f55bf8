package round5

import (
	"bytes"
	"encoding/hex"
	"testing"

	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/xerrors"

	"pqgo/pkg/hash"
	"pqgo/pkg/rng"
)

var allSets = []*ParamSet{R5ND1KEMb, R5ND3KEMb, R5ND5KEMb}

func digest(b []byte) string {
	d := hash.Sum256(b)
	return hex.EncodeToString(d[:])
}

func TestSizes(t *testing.T) {
	want := map[*ParamSet][4]int{
		R5ND1KEMb: {445, 16, 539, 219},
		R5ND3KEMb: {780, 24, 830, 295},
		R5ND5KEMb: {972, 32, 1082, 377},
	}
	for p, w := range want {
		got := [4]int{p.PublicKeySize(), p.SecretKeySize(), p.CiphertextSize(), p.MU()}
		if got != w {
			t.Errorf("%s: sizes = %v, want %v", p.Name, got, w)
		}
		if p.SharedKeySize() != p.SS {
			t.Errorf("%s: shared key size %d", p.Name, p.SharedKeySize())
		}
	}
}

func TestRoundingConstants(t *testing.T) {
	tests := []struct {
		p          *ParamSet
		h1, h2, h3 uint16
	}{
		{R5ND1KEMb, 4, 4, 32},
		{R5ND3KEMb, 8, 8, 88},
		{R5ND5KEMb, 8, 8, 72},
	}
	for _, tt := range tests {
		if tt.p.h1() != tt.h1 || tt.p.h2() != tt.h2 || tt.p.h3() != tt.h3 {
			t.Errorf("%s: h1,h2,h3 = %d,%d,%d, want %d,%d,%d", tt.p.Name,
				tt.p.h1(), tt.p.h2(), tt.p.h3(), tt.h1, tt.h2, tt.h3)
		}
	}
}

// Known answers for a DRBG over zero entropy, with a fresh DRBG for the
// encapsulation as the golden files use.
func TestKnownAnswers(t *testing.T) {
	tests := []struct {
		p          *ParamSet
		pk, ct, ss string
	}{
		{
			R5ND1KEMb,
			"70b353d6b9d9006ca74496bc5f825e33ef8b38bb0e00fc80d95d560082385341",
			"b18b60fa6b3fc8c389cc48ad6ab418b58617448f0fbe0028b50e5bef30da7b49",
			"17fe42e6849a291563f6aec05e0f0805",
		},
		{
			R5ND3KEMb,
			"a6fcd592a741551279bf4c3e2463e0e4137ebbf339ac99da25bdf564861f0326",
			"5db06f5f636f0d933c8d28b652257dac723d76499f826c3f8c32332091cf2b74",
			"a7e7cf59e0e2418dd800acc9dcfddeb33eb2cce3a3ae7626",
		},
		{
			R5ND5KEMb,
			"2fe686179ffc8e1ae0e613c79510a8126c84e792a8c90a0b3253de52eeb95c3f",
			"1d070059f68222bd939295906794bbf8e07777dbc9c58e0611b0d63473673486",
			"48302ecb50df5c0dc437c4fdfebc98a10aecb9a2398c41567b74bf8efb4d2936",
		},
	}
	for _, tt := range tests {
		for _, m := range []RingMultiplier{ConstantTime, Fast} {
			s := New(tt.p, WithRingMultiplier(m))
			pk, sk, err := s.KeyPair(rng.MustNew(nil))
			if err != nil {
				t.Fatalf("%s/%s: KeyPair: %v", tt.p.Name, m.Name(), err)
			}
			if got := digest(pk); got != tt.pk {
				t.Errorf("%s/%s: H(pk) = %s, want %s", tt.p.Name, m.Name(), got, tt.pk)
			}
			ct, ss, err := s.Encapsulate(rng.MustNew(nil), pk)
			if err != nil {
				t.Fatalf("%s/%s: Encapsulate: %v", tt.p.Name, m.Name(), err)
			}
			if got := digest(ct); got != tt.ct {
				t.Errorf("%s/%s: H(ct) = %s, want %s", tt.p.Name, m.Name(), got, tt.ct)
			}
			if got := hex.EncodeToString(ss); got != tt.ss {
				t.Errorf("%s/%s: ss = %s, want %s", tt.p.Name, m.Name(), got, tt.ss)
			}
			ss2, err := s.Decapsulate(ct, sk)
			if err != nil || !bytes.Equal(ss, ss2) {
				t.Errorf("%s/%s: Decapsulate = %x, %v", tt.p.Name, m.Name(), ss2, err)
			}
		}
	}
}

func TestKEMRoundTrip(t *testing.T) {
	for _, p := range allSets {
		s := New(p)
		for i := 0; i < 10; i++ {
			drbg := rng.MustNew([]byte{byte(i), 0x5a})
			pk, sk, err := s.KeyPair(drbg)
			if err != nil {
				t.Fatal(err)
			}
			ct, ss, err := s.Encapsulate(drbg, pk)
			if err != nil {
				t.Fatal(err)
			}
			ss2, err := s.Decapsulate(ct, sk)
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(ss, ss2) {
				t.Fatalf("%s trial %d: shared secrets differ", p.Name, i)
			}
		}
	}
}

func TestCPARoundTrip(t *testing.T) {
	s := New(R5ND5KEMb, WithRingMultiplier(Fast))
	pk, sk, err := s.KeyPair(rng.MustNew([]byte("cpa")))
	if err != nil {
		t.Fatal(err)
	}
	msg := bytes.Repeat([]byte{0xa5}, R5ND5KEMb.SS)
	rho := make([]byte, R5ND5KEMb.SS)
	ct, err := s.Encrypt(pk, msg, rho)
	if err != nil {
		t.Fatal(err)
	}
	got, err := s.Decrypt(sk, ct)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, msg) {
		t.Errorf("Decrypt = %x, want %x", got, msg)
	}
}

// A modified ciphertext or a wrong key changes the secret without an error.
func TestNoRejectPath(t *testing.T) {
	s := New(R5ND3KEMb)
	drbg := rng.MustNew([]byte("reject"))
	pk, sk, _ := s.KeyPair(drbg)
	_, sk2, _ := s.KeyPair(drbg)
	ct, ss, _ := s.Encapsulate(drbg, pk)

	bad := append([]byte(nil), ct...)
	bad[len(bad)-1] ^= 0x01
	got, err := s.Decapsulate(bad, sk)
	if err != nil {
		t.Fatalf("Decapsulate(tampered) err = %v", err)
	}
	if bytes.Equal(got, ss) {
		t.Error("tampered ciphertext gave the original secret")
	}
	got, err = s.Decapsulate(ct, sk2)
	if err != nil {
		t.Fatalf("Decapsulate(wrong key) err = %v", err)
	}
	if bytes.Equal(got, ss) {
		t.Error("wrong key gave the original secret")
	}
}

func TestDeterministicEncapsulation(t *testing.T) {
	s := New(R5ND1KEMb)
	pk, sk, _ := s.KeyPair(rng.MustNew(nil))
	seed := make([]byte, 2*R5ND1KEMb.SS)
	seed[3] = 7
	ct1, ss1, err := s.EncapsulateDeterministically(pk, seed)
	if err != nil {
		t.Fatal(err)
	}
	ct2, ss2, _ := s.EncapsulateDeterministically(pk, seed)
	if !bytes.Equal(ct1, ct2) || !bytes.Equal(ss1, ss2) {
		t.Error("deterministic encapsulation differs between calls")
	}
	ss3, _ := s.Decapsulate(ct1, sk)
	if !bytes.Equal(ss1, ss3) {
		t.Error("Decapsulate differs")
	}
	if _, _, err := s.EncapsulateDeterministically(pk, seed[1:]); !xerrors.Is(err, ErrSeedSize) {
		t.Errorf("short seed err = %v", err)
	}
}

type failingReader struct{}

func (failingReader) Read(p []byte) (int, error) { return 0, xerrors.New("no entropy") }

func TestInputValidation(t *testing.T) {
	s := New(R5ND3KEMb)
	pk, sk, _ := s.KeyPair(rng.MustNew(nil))
	ct, _, _ := s.Encapsulate(rng.MustNew(nil), pk)

	if _, _, err := s.Encapsulate(rng.MustNew(nil), pk[1:]); !xerrors.Is(err, ErrPublicKeySize) {
		t.Errorf("Encapsulate(short pk) err = %v", err)
	}
	if _, err := s.Decapsulate(ct[1:], sk); !xerrors.Is(err, ErrCiphertextSize) {
		t.Errorf("Decapsulate(short ct) err = %v", err)
	}
	if _, err := s.Decapsulate(ct, sk[1:]); !xerrors.Is(err, ErrSecretKeySize) {
		t.Errorf("Decapsulate(short sk) err = %v", err)
	}
	if _, err := s.Encrypt(pk, sk[1:], sk); !xerrors.Is(err, ErrMessageSize) {
		t.Errorf("Encrypt(short msg) err = %v", err)
	}
	if _, _, err := s.KeyPair(failingReader{}); !xerrors.Is(err, rng.ErrEntropy) {
		t.Errorf("KeyPair(failing) err = %v", err)
	}
	if _, _, err := s.Encapsulate(failingReader{}, pk); !xerrors.Is(err, rng.ErrEntropy) {
		t.Errorf("Encapsulate(failing) err = %v", err)
	}
}

func TestDefaultMultiplier(t *testing.T) {
	if got := New(R5ND3KEMb).Multiplier(); got != ConstantTime {
		t.Errorf("default multiplier = %s", got.Name())
	}
	if got := New(R5ND3KEMb, WithRingMultiplier(Fast)).Multiplier(); got != Fast {
		t.Errorf("explicit multiplier = %s", got.Name())
	}
	for _, name := range []string{FastName, ConstantTimeName} {
		m, err := MultiplierByName(name)
		if err != nil || m.Name() != name {
			t.Errorf("MultiplierByName(%q) = %v, %v", name, m, err)
		}
	}
	if _, err := MultiplierByName("leaky"); !xerrors.Is(err, ErrUnknownMultiplier) {
		t.Errorf("unknown name err = %v", err)
	}
}

func TestCache(t *testing.T) {
	cache, err := lru.NewARC(2)
	if err != nil {
		t.Fatal(err)
	}
	s := New(R5ND1KEMb, WithCache(cache))
	plain := New(R5ND1KEMb)
	pk, sk, _ := s.KeyPair(rng.MustNew(nil))
	pk2, _, _ := plain.KeyPair(rng.MustNew(nil))
	if !bytes.Equal(pk, pk2) {
		t.Fatal("cached scheme generated a different key")
	}
	ct, ss, _ := s.Encapsulate(rng.MustNew([]byte{1}), pk)
	ss2, _ := s.Decapsulate(ct, sk)
	if !bytes.Equal(ss, ss2) {
		t.Fatal("cached round trip failed")
	}
	if cache.Len() != 1 {
		t.Errorf("cache holds %d elements, want 1", cache.Len())
	}
}

func TestUnsupportedParams(t *testing.T) {
	bad := *R5ND3KEMb
	bad.XE = 100
	defer func() {
		if recover() == nil {
			t.Error("New accepted inconsistent XE lengths")
		}
	}()
	New(&bad)
}

func BenchmarkKeyPair(b *testing.B) {
	for _, m := range []RingMultiplier{ConstantTime, Fast} {
		b.Run(m.Name(), func(b *testing.B) {
			s := New(R5ND3KEMb, WithRingMultiplier(m))
			drbg := rng.MustNew(nil)
			for i := 0; i < b.N; i++ {
				s.KeyPair(drbg)
			}
		})
	}
}

func BenchmarkEncapsulate(b *testing.B) {
	for _, m := range []RingMultiplier{ConstantTime, Fast} {
		b.Run(m.Name(), func(b *testing.B) {
			s := New(R5ND3KEMb, WithRingMultiplier(m))
			drbg := rng.MustNew(nil)
			pk, _, _ := s.KeyPair(drbg)
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				s.Encapsulate(drbg, pk)
			}
		})
	}
}

func BenchmarkDecapsulate(b *testing.B) {
	s := New(R5ND3KEMb)
	drbg := rng.MustNew(nil)
	pk, sk, _ := s.KeyPair(drbg)
	ct, _, _ := s.Encapsulate(drbg, pk)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Decapsulate(ct, sk)
	}
}
