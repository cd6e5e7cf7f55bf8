// Package hash provides the SHAKE and SHA3 functions shared by the schemes.
//
// Every sampler in this module consumes XOF output as one continuous byte
// stream, so reading through a Stream is bit-identical to squeezing fixed
// blocks up front and squeezing more on exhaustion.
package hash

import (
	"golang.org/x/crypto/sha3"
)

const (
	// Shake128Rate is the SHAKE-128 block size in bytes.
	Shake128Rate = 168
	// Shake256Rate is the SHAKE-256 block size in bytes.
	Shake256Rate = 136
)

// Shake128 fills out with SHAKE-128 output over the concatenation of in.
func Shake128(out []byte, in ...[]byte) {
	h := sha3.NewShake128()
	for _, b := range in {
		h.Write(b)
	}
	h.Read(out)
}

// Shake256 fills out with SHAKE-256 output over the concatenation of in.
func Shake256(out []byte, in ...[]byte) {
	h := sha3.NewShake256()
	for _, b := range in {
		h.Write(b)
	}
	h.Read(out)
}

// H returns SHAKE-256 output of specified length.
func H(msg []byte, length int) []byte {
	out := make([]byte, length)
	Shake256(out, msg)
	return out
}

// Sum256 returns SHA3-256 over the concatenation of in.
func Sum256(in ...[]byte) [32]byte {
	h := sha3.New256()
	for _, b := range in {
		h.Write(b)
	}
	var out [32]byte
	h.Sum(out[:0])
	return out
}

// Sum512 returns SHA3-512 over the concatenation of in.
func Sum512(in ...[]byte) [64]byte {
	h := sha3.New512()
	for _, b := range in {
		h.Write(b)
	}
	var out [64]byte
	h.Sum(out[:0])
	return out
}

// Stream provides incremental SHAKE output refilled one rate-sized block at a
// time.
type Stream struct {
	h    sha3.ShakeHash
	buf  [Shake128Rate]byte // large enough for either rate
	rate int
	pos  int
	end  int
}

// NewStream128 creates a SHAKE-128 stream over the concatenation of in.
func NewStream128(in ...[]byte) *Stream {
	s := &Stream{h: sha3.NewShake128(), rate: Shake128Rate}
	s.absorb(in)
	return s
}

// NewStream256 creates a SHAKE-256 stream over the concatenation of in.
func NewStream256(in ...[]byte) *Stream {
	s := &Stream{h: sha3.NewShake256(), rate: Shake256Rate}
	s.absorb(in)
	return s
}

// Reset reinitializes the stream for new input, keeping the SHAKE variant.
func (s *Stream) Reset(in ...[]byte) {
	s.h.Reset()
	s.absorb(in)
}

func (s *Stream) absorb(in [][]byte) {
	for _, b := range in {
		s.h.Write(b)
	}
	s.pos = 0
	s.end = 0
}

// Rate returns the block size of the underlying SHAKE instance.
func (s *Stream) Rate() int {
	return s.rate
}

// fill guarantees at least n unread bytes in buf (n <= rate).
func (s *Stream) fill(n int) {
	if s.pos+n <= s.end {
		return
	}
	// Copy leftover bytes to beginning
	leftover := s.end - s.pos
	if leftover > 0 {
		copy(s.buf[:leftover], s.buf[s.pos:s.end])
	}
	// Refill the rest of the block
	s.h.Read(s.buf[leftover:s.rate])
	s.pos = 0
	s.end = s.rate
}

// ReadByte returns the next byte. It never fails.
func (s *Stream) ReadByte() (byte, error) {
	s.fill(1)
	b := s.buf[s.pos]
	s.pos++
	return b, nil
}

// Read2 returns the next 2 bytes from the XOF.
func (s *Stream) Read2() (b0, b1 byte) {
	s.fill(2)
	b0, b1 = s.buf[s.pos], s.buf[s.pos+1]
	s.pos += 2
	return
}

// Read3 returns the next 3 bytes from the XOF.
func (s *Stream) Read3() (b0, b1, b2 byte) {
	s.fill(3)
	b0, b1, b2 = s.buf[s.pos], s.buf[s.pos+1], s.buf[s.pos+2]
	s.pos += 3
	return
}

// Read fills p with the next len(p) bytes. It implements io.Reader and never
// fails.
func (s *Stream) Read(p []byte) (int, error) {
	n := copy(p, s.buf[s.pos:s.end])
	s.pos += n
	if n < len(p) {
		s.h.Read(p[n:])
	}
	return len(p), nil
}
