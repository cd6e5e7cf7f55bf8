package kyber

import (
	"crypto/subtle"
	"io"

	"golang.org/x/xerrors"

	"pqgo/pkg/encoding"
	"pqgo/pkg/hash"
	"pqgo/pkg/rng"
)

var (
	ErrPublicKeySize  = xerrors.New("kyber: invalid public key size")
	ErrSecretKeySize  = xerrors.New("kyber: invalid secret key size")
	ErrCiphertextSize = xerrors.New("kyber: invalid ciphertext size")
	ErrMessageSize    = xerrors.New("kyber: invalid message size")
	ErrCoinsSize      = xerrors.New("kyber: invalid coins size")
)

// Scheme is a Kyber instance bound to one parameter set. It holds no
// mutable state apart from the optional matrix cache and is safe for
// concurrent use when the cache is.
type Scheme struct {
	params *ParamSet
	cache  MatrixCache
}

// Option configures a Scheme.
type Option func(*Scheme)

// WithMatrixCache makes the scheme reuse expanded public matrices.
func WithMatrixCache(c MatrixCache) Option {
	return func(s *Scheme) {
		s.cache = c
	}
}

// New returns a Scheme for p.
func New(p *ParamSet, opts ...Option) *Scheme {
	if p == nil || p.K < 2 || p.K > 4 || p.Eta < 3 || p.Eta > 5 {
		panic("kyber: unsupported parameter set")
	}
	s := &Scheme{params: p}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Params returns the parameter set of s.
func (s *Scheme) Params() *ParamSet {
	return s.params
}

// KeyPair generates a KEM key pair, reading 64 bytes from rand.
func (s *Scheme) KeyPair(rand io.Reader) (pk, sk []byte, err error) {
	p := s.params
	pk = make([]byte, p.PublicKeySize())
	sk = make([]byte, p.SecretKeySize())

	w := encoding.NewWriter(sk)
	if err := s.cpaKeyPair(pk, w.Next(p.CPASecretKeySize()), rand); err != nil {
		return nil, nil, err
	}
	w.Put(pk)
	h := hash.Sum256(pk)
	w.Put(h[:])
	if err := rng.Read(rand, w.Next(SymBytes)); err != nil {
		encoding.Wipe(sk)
		return nil, nil, xerrors.Errorf("kyber keypair: %w", err)
	}
	return pk, sk, nil
}

// Encapsulate derives a fresh shared secret and its ciphertext for pk,
// reading 32 bytes from rand.
func (s *Scheme) Encapsulate(rand io.Reader, pk []byte) (ct, ss []byte, err error) {
	if len(pk) != s.params.PublicKeySize() {
		return nil, nil, xerrors.Errorf("%s: got %d bytes: %w", s.params.Name, len(pk), ErrPublicKeySize)
	}
	var m [SymBytes]byte
	if err := rng.Read(rand, m[:]); err != nil {
		return nil, nil, xerrors.Errorf("kyber encapsulate: %w", err)
	}
	ct, ss = s.encapsulate(pk, m[:])
	clear(m[:])
	return ct, ss, nil
}

// EncapsulateDeterministically is Encapsulate with the 32 random bytes given
// explicitly.
func (s *Scheme) EncapsulateDeterministically(pk, seed []byte) (ct, ss []byte, err error) {
	if len(pk) != s.params.PublicKeySize() {
		return nil, nil, xerrors.Errorf("%s: got %d bytes: %w", s.params.Name, len(pk), ErrPublicKeySize)
	}
	if len(seed) != SymBytes {
		return nil, nil, xerrors.Errorf("%s: got %d bytes: %w", s.params.Name, len(seed), ErrCoinsSize)
	}
	ct, ss = s.encapsulate(pk, seed)
	return ct, ss, nil
}

func (s *Scheme) encapsulate(pk, seed []byte) (ct, ss []byte) {
	// buf = H(seed) || H(pk); the raw RNG output is never used directly.
	var buf [2 * SymBytes]byte
	h := hash.Sum256(seed)
	copy(buf[:SymBytes], h[:])
	h = hash.Sum256(pk)
	copy(buf[SymBytes:], h[:])
	kr := hash.Sum512(buf[:])
	defer encoding.Wipe(buf[:], kr[:], h[:])

	ct = make([]byte, s.params.CiphertextSize())
	s.encrypt(ct, buf[:SymBytes], pk, kr[SymBytes:])

	h = hash.Sum256(ct)
	copy(kr[SymBytes:], h[:])
	out := hash.Sum256(kr[:])
	return ct, out[:]
}

// Decapsulate recovers the shared secret from ct. A ciphertext that does
// not re-encrypt identically yields a pseudorandom secret derived from the
// secret key instead of an error.
func (s *Scheme) Decapsulate(ct, sk []byte) ([]byte, error) {
	p := s.params
	if len(ct) != p.CiphertextSize() {
		return nil, xerrors.Errorf("%s: got %d bytes: %w", p.Name, len(ct), ErrCiphertextSize)
	}
	if len(sk) != p.SecretKeySize() {
		return nil, xerrors.Errorf("%s: got %d bytes: %w", p.Name, len(sk), ErrSecretKeySize)
	}
	r := encoding.NewReader(sk)
	cpaSK := r.Next(p.CPASecretKeySize())
	pk := r.Next(p.PublicKeySize())
	hpk := r.Next(SymBytes)
	z := r.Next(SymBytes)

	var buf [2 * SymBytes]byte
	s.decrypt(buf[:SymBytes], ct, cpaSK)
	copy(buf[SymBytes:], hpk)
	kr := hash.Sum512(buf[:])
	defer encoding.Wipe(buf[:], kr[:])

	cmp := make([]byte, p.CiphertextSize())
	s.encrypt(cmp, buf[:SymBytes], pk, kr[SymBytes:])
	fail := 1 - subtle.ConstantTimeCompare(ct, cmp)

	h := hash.Sum256(ct)
	copy(kr[SymBytes:], h[:])
	subtle.ConstantTimeCopy(fail, kr[:SymBytes], z)
	ss := hash.Sum256(kr[:])
	return ss[:], nil
}
