// Package round5 implements the Round5 ND CPA key encapsulation mechanisms
// with sparse ternary secrets.
//
// The ring multiplication that touches secret indices is pluggable through
// RingMultiplier. Schemes use ConstantTime unless Fast is requested
// explicitly with WithRingMultiplier.
package round5

import (
	"io"

	"golang.org/x/xerrors"

	"pqgo/pkg/encoding"
	"pqgo/pkg/hash"
	"pqgo/pkg/rng"
)

var (
	ErrPublicKeySize  = xerrors.New("round5: invalid public key size")
	ErrSecretKeySize  = xerrors.New("round5: invalid secret key size")
	ErrCiphertextSize = xerrors.New("round5: invalid ciphertext size")
	ErrMessageSize    = xerrors.New("round5: invalid message size")
	ErrSeedSize       = xerrors.New("round5: invalid seed size")
)

// Cache stores expanded public ring elements keyed by sigma.
// *lru.ARCCache satisfies it.
type Cache interface {
	Get(key interface{}) (interface{}, bool)
	Add(key, value interface{})
}

// Scheme is a Round5 instance bound to one parameter set and one ring
// multiplier.
type Scheme struct {
	params *ParamSet
	mult   RingMultiplier
	cache  Cache
}

// Option configures a Scheme.
type Option func(*Scheme)

// WithRingMultiplier selects the ring multiplication backend.
func WithRingMultiplier(m RingMultiplier) Option {
	return func(s *Scheme) {
		if m != nil {
			s.mult = m
		}
	}
}

// WithCache makes the scheme reuse expanded public elements.
func WithCache(c Cache) Option {
	return func(s *Scheme) {
		s.cache = c
	}
}

// New returns a Scheme for p using the constant-time multiplier by default.
func New(p *ParamSet, opts ...Option) *Scheme {
	if !p.valid() {
		panic("round5: unsupported parameter set")
	}
	s := &Scheme{params: p, mult: ConstantTime}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Params returns the parameter set of s.
func (s *Scheme) Params() *ParamSet {
	return s.params
}

// Multiplier returns the ring multiplier in use.
func (s *Scheme) Multiplier() RingMultiplier {
	return s.mult
}

// KeyPair generates a key pair, reading 2*SS bytes from rand: sigma first,
// then the secret seed.
func (s *Scheme) KeyPair(rand io.Reader) (pk, sk []byte, err error) {
	pk = make([]byte, s.params.PublicKeySize())
	sk = make([]byte, s.params.SecretKeySize())
	if err := s.cpaKeyPair(pk, sk, rand); err != nil {
		encoding.Wipe(sk)
		return nil, nil, err
	}
	return pk, sk, nil
}

// Encapsulate reads the message m and the encryption seed rho, SS bytes
// each, from rand and returns the ciphertext and SHAKE-256(m || ct).
func (s *Scheme) Encapsulate(rand io.Reader, pk []byte) (ct, ss []byte, err error) {
	p := s.params
	if len(pk) != p.PublicKeySize() {
		return nil, nil, xerrors.Errorf("%s: got %d bytes: %w", p.Name, len(pk), ErrPublicKeySize)
	}
	buf := make([]byte, 2*p.SS)
	defer clear(buf)
	if err := rng.Read(rand, buf); err != nil {
		return nil, nil, xerrors.Errorf("round5 encapsulate: %w", err)
	}
	ct, ss = s.encapsulate(pk, buf[:p.SS], buf[p.SS:])
	return ct, ss, nil
}

// EncapsulateDeterministically is Encapsulate with m || rho given as a
// 2*SS-byte seed.
func (s *Scheme) EncapsulateDeterministically(pk, seed []byte) (ct, ss []byte, err error) {
	p := s.params
	if len(pk) != p.PublicKeySize() {
		return nil, nil, xerrors.Errorf("%s: got %d bytes: %w", p.Name, len(pk), ErrPublicKeySize)
	}
	if len(seed) != 2*p.SS {
		return nil, nil, xerrors.Errorf("%s: got %d bytes: %w", p.Name, len(seed), ErrSeedSize)
	}
	ct, ss = s.encapsulate(pk, seed[:p.SS], seed[p.SS:])
	return ct, ss, nil
}

func (s *Scheme) encapsulate(pk, m, rho []byte) (ct, ss []byte) {
	ct = make([]byte, s.params.CiphertextSize())
	s.encrypt(ct, m, rho, pk)
	ss = make([]byte, s.params.SS)
	hash.Shake256(ss, m, ct)
	return ct, ss
}

// Decapsulate decrypts ct and returns SHAKE-256(m' || ct). There is no
// reject path: a wrong key or a modified ciphertext gives a different
// secret.
func (s *Scheme) Decapsulate(ct, sk []byte) ([]byte, error) {
	p := s.params
	if len(ct) != p.CiphertextSize() {
		return nil, xerrors.Errorf("%s: got %d bytes: %w", p.Name, len(ct), ErrCiphertextSize)
	}
	if len(sk) != p.SecretKeySize() {
		return nil, xerrors.Errorf("%s: got %d bytes: %w", p.Name, len(sk), ErrSecretKeySize)
	}
	m := make([]byte, p.SS)
	defer clear(m)
	s.decrypt(m, ct, sk)
	ss := make([]byte, p.SS)
	hash.Shake256(ss, m, ct)
	return ss, nil
}

// Encrypt is the CPA public-key encryption of an SS-byte message with the
// SS-byte randomness seed rho.
func (s *Scheme) Encrypt(pk, msg, rho []byte) ([]byte, error) {
	p := s.params
	switch {
	case len(pk) != p.PublicKeySize():
		return nil, xerrors.Errorf("%s: got %d bytes: %w", p.Name, len(pk), ErrPublicKeySize)
	case len(msg) != p.SS:
		return nil, xerrors.Errorf("%s: got %d bytes: %w", p.Name, len(msg), ErrMessageSize)
	case len(rho) != p.SS:
		return nil, xerrors.Errorf("%s: rho of %d bytes: %w", p.Name, len(rho), ErrSeedSize)
	}
	ct := make([]byte, p.CiphertextSize())
	s.encrypt(ct, msg, rho, pk)
	return ct, nil
}

// Decrypt inverts Encrypt.
func (s *Scheme) Decrypt(sk, ct []byte) ([]byte, error) {
	p := s.params
	if len(ct) != p.CiphertextSize() {
		return nil, xerrors.Errorf("%s: got %d bytes: %w", p.Name, len(ct), ErrCiphertextSize)
	}
	if len(sk) != p.SecretKeySize() {
		return nil, xerrors.Errorf("%s: got %d bytes: %w", p.Name, len(sk), ErrSecretKeySize)
	}
	m := make([]byte, p.SS)
	s.decrypt(m, ct, sk)
	return m, nil
}
