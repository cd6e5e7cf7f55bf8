package schemes

import (
	"bytes"
	"crypto"
	"crypto/subtle"
	"io"

	"github.com/cloudflare/circl/sign"
	"golang.org/x/xerrors"

	"pqgo/pkg/dilithium"
	"pqgo/pkg/rng"
)

var errHashedMessage = xerrors.New("dilithium: cannot sign hashed message")

type signScheme struct {
	mode   *dilithium.Mode
	scheme *dilithium.Scheme
}

// Dilithium exposes a round-1 Dilithium mode as a circl signature scheme.
// Signatures are detached and contexts are not supported.
func Dilithium(m *dilithium.Mode, opts ...dilithium.Option) sign.Scheme {
	return &signScheme{mode: m, scheme: dilithium.New(m, opts...)}
}

type signPublicKey struct {
	scheme *signScheme
	raw    []byte
}

type signPrivateKey struct {
	scheme *signScheme
	raw    []byte
	pub    []byte
}

func (pk *signPublicKey) Scheme() sign.Scheme { return pk.scheme }

func (pk *signPublicKey) MarshalBinary() ([]byte, error) {
	return append([]byte(nil), pk.raw...), nil
}

func (pk *signPublicKey) Equal(other crypto.PublicKey) bool {
	o, ok := other.(*signPublicKey)
	return ok && o.scheme == pk.scheme && bytes.Equal(o.raw, pk.raw)
}

func (sk *signPrivateKey) Scheme() sign.Scheme { return sk.scheme }

func (sk *signPrivateKey) MarshalBinary() ([]byte, error) {
	return append([]byte(nil), sk.raw...), nil
}

func (sk *signPrivateKey) Equal(other crypto.PrivateKey) bool {
	o, ok := other.(*signPrivateKey)
	return ok && o.scheme == sk.scheme && subtle.ConstantTimeCompare(o.raw, sk.raw) == 1
}

func (sk *signPrivateKey) Public() crypto.PublicKey {
	return &signPublicKey{scheme: sk.scheme, raw: append([]byte(nil), sk.pub...)}
}

// Sign implements crypto.Signer. Only unhashed messages can be signed.
func (sk *signPrivateKey) Sign(_ io.Reader, msg []byte, opts crypto.SignerOpts) ([]byte, error) {
	if opts.HashFunc() != crypto.Hash(0) {
		return nil, errHashedMessage
	}
	return sk.scheme.scheme.Sign(sk.raw, msg)
}

func (s *signScheme) Name() string          { return s.mode.Name }
func (s *signScheme) PublicKeySize() int    { return s.mode.PublicKeySize() }
func (s *signScheme) PrivateKeySize() int   { return s.mode.SecretKeySize() }
func (s *signScheme) SignatureSize() int    { return s.mode.SignatureSize() }
func (s *signScheme) SeedSize() int         { return dilithium.SeedBytes }
func (s *signScheme) SupportsContext() bool { return false }

func (s *signScheme) derive(seed []byte) (sign.PublicKey, sign.PrivateKey, error) {
	pk, sk, err := s.scheme.Gen(seed)
	if err != nil {
		return nil, nil, err
	}
	return &signPublicKey{scheme: s, raw: pk}, &signPrivateKey{scheme: s, raw: sk, pub: pk}, nil
}

func (s *signScheme) GenerateKey() (sign.PublicKey, sign.PrivateKey, error) {
	seed, err := rng.Bytes(rng.System, dilithium.SeedBytes)
	if err != nil {
		return nil, nil, err
	}
	defer clear(seed)
	return s.derive(seed)
}

func (s *signScheme) DeriveKey(seed []byte) (sign.PublicKey, sign.PrivateKey) {
	if len(seed) != s.SeedSize() {
		panic(sign.ErrSeedSize)
	}
	pk, sk, err := s.derive(seed)
	if err != nil {
		panic(err)
	}
	return pk, sk
}

// Sign panics on a foreign key, on a non-empty context and when signing
// exceeds the rejection sampling limit.
func (s *signScheme) Sign(sk sign.PrivateKey, msg []byte, opts *sign.SignatureOpts) []byte {
	priv, ok := sk.(*signPrivateKey)
	if !ok || priv.scheme != s {
		panic(sign.ErrTypeMismatch)
	}
	if opts != nil && opts.Context != "" {
		panic(sign.ErrContextNotSupported)
	}
	sig, err := s.scheme.Sign(priv.raw, msg)
	if err != nil {
		panic(err)
	}
	return sig
}

func (s *signScheme) Verify(pk sign.PublicKey, msg, sig []byte, opts *sign.SignatureOpts) bool {
	pub, ok := pk.(*signPublicKey)
	if !ok || pub.scheme != s {
		panic(sign.ErrTypeMismatch)
	}
	if opts != nil && opts.Context != "" {
		return false
	}
	return s.scheme.Verify(pub.raw, msg, sig)
}

func (s *signScheme) UnmarshalBinaryPublicKey(buf []byte) (sign.PublicKey, error) {
	if len(buf) != s.PublicKeySize() {
		return nil, sign.ErrPubKeySize
	}
	return &signPublicKey{scheme: s, raw: append([]byte(nil), buf...)}, nil
}

// UnmarshalBinaryPrivateKey recomputes the public half from the secret
// key.
func (s *signScheme) UnmarshalBinaryPrivateKey(buf []byte) (sign.PrivateKey, error) {
	if len(buf) != s.PrivateKeySize() {
		return nil, sign.ErrPrivKeySize
	}
	raw := append([]byte(nil), buf...)
	pub, err := s.scheme.PublicKey(raw)
	if err != nil {
		return nil, err
	}
	return &signPrivateKey{scheme: s, raw: raw, pub: pub}, nil
}
