// Package dilithium implements the round-1 Dilithium signature scheme.
//
// Keys and signatures use the fixed byte layouts of the round-1 reference:
// pk = rho || t1, sk = rho || key || tr || s1 || s2 || t0 and
// sig = z || h || c. Signing is deterministic.
package dilithium

import (
	"crypto/subtle"

	"golang.org/x/xerrors"

	"pqgo/pkg/encoding"
	"pqgo/pkg/hash"
)

var (
	ErrSeedSize       = xerrors.New("dilithium: invalid seed size")
	ErrPublicKeySize  = xerrors.New("dilithium: invalid public key size")
	ErrSecretKeySize  = xerrors.New("dilithium: invalid secret key size")
	ErrSignatureSize  = xerrors.New("dilithium: invalid signature size")
	ErrOpen           = xerrors.New("dilithium: signed message does not verify")
	ErrRejectionLimit = xerrors.New("dilithium: signing exceeded the rejection sampling limit")
)

// Scheme is a Dilithium instance bound to one mode.
type Scheme struct {
	mode        *Mode
	cache       MatrixCache
	maxAttempts int
}

// Option configures a Scheme.
type Option func(*Scheme)

// WithMatrixCache makes the scheme reuse expanded public matrices.
func WithMatrixCache(c MatrixCache) Option {
	return func(s *Scheme) {
		s.cache = c
	}
}

// WithMaxAttempts overrides the signing retry ceiling.
func WithMaxAttempts(n int) Option {
	return func(s *Scheme) {
		s.maxAttempts = n
	}
}

// New returns a Scheme for mode m.
func New(m *Mode, opts ...Option) *Scheme {
	if m == nil || m.K < 1 || m.L < 1 || m.Eta > 7 || m.Omega > 255 {
		panic("dilithium: unsupported mode")
	}
	s := &Scheme{mode: m, maxAttempts: maxAttempts}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Mode returns the parameter set of s.
func (s *Scheme) Mode() *Mode {
	return s.mode
}

// Gen generates a keypair from a 32-byte seed.
func (s *Scheme) Gen(seed []byte) (pk, sk []byte, err error) {
	m := s.mode
	if len(seed) != SeedBytes {
		return nil, nil, xerrors.Errorf("%s: got %d bytes: %w", m.Name, len(seed), ErrSeedSize)
	}

	// Expand seed into rho, rho' and key
	var seedbuf [3 * SeedBytes]byte
	hash.Shake256(seedbuf[:], seed)
	defer clear(seedbuf[:])
	rho := seedbuf[:SeedBytes]
	rhoprime := seedbuf[SeedBytes : 2*SeedBytes]
	key := seedbuf[2*SeedBytes:]

	mat := s.matrix(rho)

	// Sample short vectors s1 and s2
	s1 := newPolyVec(m.L)
	s2 := newPolyVec(m.K)
	defer encoding.Wipe(s1, s2)
	var nonce byte
	for i := range s1 {
		polyUniformEta(&s1[i], rhoprime, nonce, m.Eta)
		nonce++
	}
	for i := range s2 {
		polyUniformEta(&s2[i], rhoprime, nonce, m.Eta)
		nonce++
	}

	t1, t0 := s.splitT(mat, s1, s2)
	defer encoding.Wipe(t0)

	pk = make([]byte, m.PublicKeySize())
	m.packPublicKey(pk, rho, t1)

	var tr [CRHBytes]byte
	hash.Shake256(tr[:], pk)

	sk = make([]byte, m.SecretKeySize())
	m.packSecretKey(sk, rho, key, tr[:], s1, s2, t0)
	return pk, sk, nil
}

// splitT computes t = A*s1 + s2 and splits it into its high bits t1 and
// low bits t0.
func (s *Scheme) splitT(mat []polyVec, s1, s2 polyVec) (t1, t0 polyVec) {
	m := s.mode
	s1hat := newPolyVec(m.L)
	copy(s1hat, s1)
	defer encoding.Wipe(s1hat)
	s1hat.ntt()
	t := newPolyVec(m.K)
	defer encoding.Wipe(t)
	for i := range t {
		pointwiseAccInvMontgomery(&t[i], mat[i], s1hat)
		t[i].reduce()
		t[i].invNTTMontgomery()
	}
	t.add(t, s2)

	t.freeze()
	t1 = newPolyVec(m.K)
	t0 = newPolyVec(m.K)
	t.power2round(t1, t0)
	return t1, t0
}

// PublicKey recomputes the public key belonging to sk.
func (s *Scheme) PublicKey(sk []byte) ([]byte, error) {
	m := s.mode
	if len(sk) != m.SecretKeySize() {
		return nil, xerrors.Errorf("%s: got %d bytes: %w", m.Name, len(sk), ErrSecretKeySize)
	}
	key := m.unpackSecretKey(sk)
	defer key.wipe()
	t1, t0 := s.splitT(s.matrix(key.rho), key.s1, key.s2)
	encoding.Wipe(t0)
	pk := make([]byte, m.PublicKeySize())
	m.packPublicKey(pk, key.rho, t1)
	return pk, nil
}

// Sign returns a detached signature of msg.
func (s *Scheme) Sign(sk, msg []byte) ([]byte, error) {
	sig := make([]byte, s.mode.SignatureSize())
	if _, err := s.SignTo(sig, sk, msg); err != nil {
		return nil, err
	}
	return sig, nil
}

// SignTo writes the signature of msg into sig, which must be
// SignatureSize bytes, and returns the number of rejection sampling
// attempts it took.
func (s *Scheme) SignTo(sig, sk, msg []byte) (attempts int, err error) {
	m := s.mode
	if len(sk) != m.SecretKeySize() {
		return 0, xerrors.Errorf("%s: got %d bytes: %w", m.Name, len(sk), ErrSecretKeySize)
	}
	if len(sig) != m.SignatureSize() {
		return 0, xerrors.Errorf("%s: got %d bytes: %w", m.Name, len(sig), ErrSignatureSize)
	}

	key := m.unpackSecretKey(sk)
	defer key.wipe()

	// mu = CRH(tr || msg)
	var seed [SeedBytes + CRHBytes]byte
	copy(seed[:], key.key)
	mu := seed[SeedBytes:]
	hash.Shake256(mu, key.tr, msg)
	defer clear(seed[:])

	mat := s.matrix(key.rho)
	key.s1.ntt()
	key.s2.ntt()
	key.t0.ntt()

	y := newPolyVec(m.L)
	yhat := newPolyVec(m.L)
	z := newPolyVec(m.L)
	w := newPolyVec(m.K)
	w1 := newPolyVec(m.K)
	tmp := newPolyVec(m.K)
	wcs2 := newPolyVec(m.K)
	wcs20 := newPolyVec(m.K)
	ct0 := newPolyVec(m.K)
	h := newPolyVec(m.K)
	var c, chat Poly
	defer encoding.Wipe(y, yhat, z, w, w1, tmp, wcs2, wcs20, ct0)

	var nonce uint16
	for attempts = 1; attempts <= s.maxAttempts; attempts++ {
		// Sample intermediate vector y
		for i := range y {
			polyUniformGamma1m1(&y[i], seed[:], nonce)
			nonce++
		}

		// w = A*y
		copy(yhat, y)
		yhat.ntt()
		for i := range w {
			pointwiseAccInvMontgomery(&w[i], mat[i], yhat)
			w[i].reduce()
			w[i].invNTTMontgomery()
		}

		// Decompose w and call the random oracle
		w.csubq()
		w.decompose(w1, tmp)
		challenge(&c, mu, w1)

		// z = y + c*s1, reject if it reveals the secret
		chat = c
		chat.ntt()
		for i := range z {
			z[i].pointwiseInvMontgomery(&chat, &key.s1[i])
			z[i].invNTTMontgomery()
		}
		z.add(z, y)
		z.freeze()
		if z.exceeds(Gamma1 - m.Beta) {
			continue
		}

		// w - c*s2, reject if w1 cannot be recovered from it
		for i := range wcs2 {
			wcs2[i].pointwiseInvMontgomery(&chat, &key.s2[i])
			wcs2[i].invNTTMontgomery()
		}
		wcs2.sub(w, wcs2)
		wcs2.freeze()
		wcs2.decompose(tmp, wcs20)
		wcs20.csubq()
		if wcs20.exceeds(Gamma2 - m.Beta) {
			continue
		}
		if !equalVec(tmp, w1) {
			continue
		}

		// Hints for w1
		for i := range ct0 {
			ct0[i].pointwiseInvMontgomery(&chat, &key.t0[i])
			ct0[i].invNTTMontgomery()
		}
		ct0.csubq()
		if ct0.exceeds(Gamma2) {
			continue
		}
		tmp.add(wcs2, ct0)
		tmp.csubq()
		if makeHintVec(h, wcs2, tmp) > m.Omega {
			continue
		}

		m.packSignature(sig, z, h, &c)
		return attempts, nil
	}
	return s.maxAttempts, xerrors.Errorf("%s: %d attempts: %w", m.Name, s.maxAttempts, ErrRejectionLimit)
}

// equalVec compares two vectors without an early exit.
func equalVec(a, b polyVec) bool {
	var diff uint32
	for i := range a {
		for j := 0; j < N; j++ {
			diff |= a[i][j] ^ b[i][j]
		}
	}
	return subtle.ConstantTimeEq(int32(diff), 0) == 1
}

// Verify reports whether sig is a valid signature of msg under pk.
func (s *Scheme) Verify(pk, msg, sig []byte) bool {
	m := s.mode
	if len(pk) != m.PublicKeySize() || len(sig) != m.SignatureSize() {
		return false
	}

	rho, t1 := m.unpackPublicKey(pk)
	z, h, c, ok := m.unpackSignature(sig)
	if !ok {
		return false
	}
	if z.exceeds(Gamma1 - m.Beta) {
		return false
	}

	// mu = CRH(CRH(pk) || msg)
	var tr [CRHBytes]byte
	hash.Shake256(tr[:], pk)
	mu := make([]byte, CRHBytes)
	hash.Shake256(mu, tr[:], msg)

	// A*z - c*2^D*t1
	mat := s.matrix(rho)
	z.ntt()
	tmp1 := newPolyVec(m.K)
	for i := range tmp1 {
		pointwiseAccInvMontgomery(&tmp1[i], mat[i], z)
	}
	chat := *c
	chat.ntt()
	t1.shiftl(D)
	t1.ntt()
	tmp2 := newPolyVec(m.K)
	for i := range tmp2 {
		tmp2[i].pointwiseInvMontgomery(&chat, &t1[i])
	}
	tmp1.sub(tmp1, tmp2)
	tmp1.reduce()
	tmp1.invNTTMontgomery()

	// Reconstruct w1 and recompute the challenge
	tmp1.csubq()
	w1 := newPolyVec(m.K)
	useHintVec(w1, tmp1, h)
	var cp Poly
	challenge(&cp, mu, w1)
	return cp == *c
}

// SignMessage returns the attached signed message sig || msg.
func (s *Scheme) SignMessage(sk, msg []byte) ([]byte, error) {
	sm := make([]byte, s.mode.SignatureSize()+len(msg))
	if _, err := s.SignTo(sm[:s.mode.SignatureSize()], sk, msg); err != nil {
		return nil, err
	}
	copy(sm[s.mode.SignatureSize():], msg)
	return sm, nil
}

// Open verifies an attached signed message and returns the message.
func (s *Scheme) Open(pk, sm []byte) ([]byte, error) {
	m := s.mode
	if len(pk) != m.PublicKeySize() {
		return nil, xerrors.Errorf("%s: got %d bytes: %w", m.Name, len(pk), ErrPublicKeySize)
	}
	if len(sm) < m.SignatureSize() {
		return nil, xerrors.Errorf("%s: signed message of %d bytes: %w", m.Name, len(sm), ErrOpen)
	}
	sig, msg := sm[:m.SignatureSize()], sm[m.SignatureSize():]
	if !s.Verify(pk, msg, sig) {
		return nil, ErrOpen
	}
	return append([]byte(nil), msg...), nil
}
