package dilithium

import (
	"crypto/rand"
	"testing"

	lru "github.com/hashicorp/golang-lru"
)

// BenchmarkGen benchmarks key generation.
func BenchmarkGen(b *testing.B) {
	seed := make([]byte, SeedBytes)
	rand.Read(seed)
	s := New(Mode2)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Gen(seed)
	}
}

// BenchmarkSign benchmarks signing with a 64-byte message.
func BenchmarkSign(b *testing.B) {
	seed := make([]byte, SeedBytes)
	rand.Read(seed)
	s := New(Mode2)
	_, sk, _ := s.Gen(seed)

	msg := make([]byte, 64)
	rand.Read(msg)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Sign(sk, msg)
	}
}

// BenchmarkVerify benchmarks signature verification with a 64-byte message.
func BenchmarkVerify(b *testing.B) {
	seed := make([]byte, SeedBytes)
	rand.Read(seed)
	s := New(Mode2)
	pk, sk, _ := s.Gen(seed)

	msg := make([]byte, 64)
	rand.Read(msg)
	sig, _ := s.Sign(sk, msg)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Verify(pk, msg, sig)
	}
}

// BenchmarkVerifyCached benchmarks verification with the matrix cache warm.
func BenchmarkVerifyCached(b *testing.B) {
	seed := make([]byte, SeedBytes)
	rand.Read(seed)
	cache, _ := lru.NewARC(8)
	s := New(Mode2, WithMatrixCache(cache))
	pk, sk, _ := s.Gen(seed)

	msg := make([]byte, 64)
	rand.Read(msg)
	sig, _ := s.Sign(sk, msg)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Verify(pk, msg, sig)
	}
}

// BenchmarkSignVerify benchmarks the full sign+verify cycle.
func BenchmarkSignVerify(b *testing.B) {
	seed := make([]byte, SeedBytes)
	rand.Read(seed)
	s := New(Mode2)
	pk, sk, _ := s.Gen(seed)

	msg := make([]byte, 64)
	rand.Read(msg)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		sig, _ := s.Sign(sk, msg)
		s.Verify(pk, msg, sig)
	}
}
