package schemes

import (
	"bytes"
	"crypto/subtle"
	"io"

	"github.com/cloudflare/circl/kem"

	"pqgo/pkg/kyber"
	"pqgo/pkg/rng"
	"pqgo/pkg/round5"
)

// kemBackend is the byte-slice API shared by kyber.Scheme and
// round5.Scheme.
type kemBackend interface {
	KeyPair(rand io.Reader) (pk, sk []byte, err error)
	Encapsulate(rand io.Reader, pk []byte) (ct, ss []byte, err error)
	Decapsulate(ct, sk []byte) ([]byte, error)
}

type kemScheme struct {
	name    string
	backend kemBackend

	pkSize, skSize, ctSize, ssSize int

	// embedsPublic is set when the backend secret key already carries the
	// public key at pkOffset. Otherwise private keys are sk || pk.
	embedsPublic bool
	pkOffset     int
	rawSKSize    int
}

// Kyber exposes a round-1 Kyber parameter set as a circl KEM.
func Kyber(p *kyber.ParamSet, opts ...kyber.Option) kem.Scheme {
	return &kemScheme{
		name:         p.Name,
		backend:      kyber.New(p, opts...),
		pkSize:       p.PublicKeySize(),
		skSize:       p.SecretKeySize(),
		ctSize:       p.CiphertextSize(),
		ssSize:       p.SharedKeySize(),
		embedsPublic: true,
		pkOffset:     p.CPASecretKeySize(),
		rawSKSize:    p.SecretKeySize(),
	}
}

// Round5 exposes a Round5 parameter set as a circl KEM. Its private keys
// are the secret seed followed by the public key.
func Round5(p *round5.ParamSet, opts ...round5.Option) kem.Scheme {
	return &kemScheme{
		name:      p.Name,
		backend:   round5.New(p, opts...),
		pkSize:    p.PublicKeySize(),
		skSize:    p.SecretKeySize() + p.PublicKeySize(),
		ctSize:    p.CiphertextSize(),
		ssSize:    p.SharedKeySize(),
		pkOffset:  p.SecretKeySize(),
		rawSKSize: p.SecretKeySize(),
	}
}

type kemPublicKey struct {
	scheme *kemScheme
	raw    []byte
}

type kemPrivateKey struct {
	scheme *kemScheme
	raw    []byte
}

func (pk *kemPublicKey) Scheme() kem.Scheme { return pk.scheme }

func (pk *kemPublicKey) MarshalBinary() ([]byte, error) {
	return append([]byte(nil), pk.raw...), nil
}

func (pk *kemPublicKey) Equal(other kem.PublicKey) bool {
	o, ok := other.(*kemPublicKey)
	return ok && o.scheme == pk.scheme && bytes.Equal(o.raw, pk.raw)
}

func (sk *kemPrivateKey) Scheme() kem.Scheme { return sk.scheme }

func (sk *kemPrivateKey) MarshalBinary() ([]byte, error) {
	return append([]byte(nil), sk.raw...), nil
}

func (sk *kemPrivateKey) Equal(other kem.PrivateKey) bool {
	o, ok := other.(*kemPrivateKey)
	return ok && o.scheme == sk.scheme && subtle.ConstantTimeCompare(o.raw, sk.raw) == 1
}

func (sk *kemPrivateKey) Public() kem.PublicKey {
	pk := sk.raw[sk.scheme.pkOffset : sk.scheme.pkOffset+sk.scheme.pkSize]
	return &kemPublicKey{scheme: sk.scheme, raw: append([]byte(nil), pk...)}
}

func (s *kemScheme) Name() string               { return s.name }
func (s *kemScheme) PublicKeySize() int         { return s.pkSize }
func (s *kemScheme) PrivateKeySize() int        { return s.skSize }
func (s *kemScheme) CiphertextSize() int        { return s.ctSize }
func (s *kemScheme) SharedKeySize() int         { return s.ssSize }
func (s *kemScheme) SeedSize() int              { return rng.EntropyLen }
func (s *kemScheme) EncapsulationSeedSize() int { return rng.EntropyLen }

func (s *kemScheme) keyPair(rand io.Reader) (kem.PublicKey, kem.PrivateKey, error) {
	pk, sk, err := s.backend.KeyPair(rand)
	if err != nil {
		return nil, nil, err
	}
	if !s.embedsPublic {
		sk = append(sk, pk...)
	}
	return &kemPublicKey{scheme: s, raw: pk}, &kemPrivateKey{scheme: s, raw: sk}, nil
}

func (s *kemScheme) GenerateKeyPair() (kem.PublicKey, kem.PrivateKey, error) {
	return s.keyPair(rng.System)
}

// DeriveKeyPair seeds a DRBG with the 48-byte seed and generates a key
// pair from its output.
func (s *kemScheme) DeriveKeyPair(seed []byte) (kem.PublicKey, kem.PrivateKey) {
	if len(seed) != s.SeedSize() {
		panic(kem.ErrSeedSize)
	}
	pk, sk, err := s.keyPair(rng.MustNew(seed))
	if err != nil {
		panic(err)
	}
	return pk, sk
}

func (s *kemScheme) Encapsulate(pk kem.PublicKey) (ct, ss []byte, err error) {
	return s.encapsulate(rng.System, pk)
}

// EncapsulateDeterministically seeds a DRBG with the 48-byte seed and
// encapsulates with its output.
func (s *kemScheme) EncapsulateDeterministically(pk kem.PublicKey, seed []byte) (ct, ss []byte, err error) {
	if len(seed) != s.EncapsulationSeedSize() {
		return nil, nil, kem.ErrSeedSize
	}
	return s.encapsulate(rng.MustNew(seed), pk)
}

func (s *kemScheme) encapsulate(rand io.Reader, pk kem.PublicKey) (ct, ss []byte, err error) {
	pub, ok := pk.(*kemPublicKey)
	if !ok || pub.scheme != s {
		return nil, nil, kem.ErrTypeMismatch
	}
	return s.backend.Encapsulate(rand, pub.raw)
}

func (s *kemScheme) Decapsulate(sk kem.PrivateKey, ct []byte) ([]byte, error) {
	priv, ok := sk.(*kemPrivateKey)
	if !ok || priv.scheme != s {
		return nil, kem.ErrTypeMismatch
	}
	if len(ct) != s.ctSize {
		return nil, kem.ErrCiphertextSize
	}
	return s.backend.Decapsulate(ct, priv.raw[:s.rawSKSize])
}

func (s *kemScheme) UnmarshalBinaryPublicKey(buf []byte) (kem.PublicKey, error) {
	if len(buf) != s.pkSize {
		return nil, kem.ErrPubKeySize
	}
	return &kemPublicKey{scheme: s, raw: append([]byte(nil), buf...)}, nil
}

func (s *kemScheme) UnmarshalBinaryPrivateKey(buf []byte) (kem.PrivateKey, error) {
	if len(buf) != s.skSize {
		return nil, kem.ErrPrivKeySize
	}
	return &kemPrivateKey{scheme: s, raw: append([]byte(nil), buf...)}, nil
}
