// Package pqgo is a byte-slice facade over the round-1 Kyber and Round5
// key encapsulation mechanisms and the round-1 Dilithium signature scheme.
//
// Key generation and encapsulation are deterministic functions of the
// entropy handed to them: Kyber and Round5 seed a fresh DRBG with 48 bytes
// of entropy, Dilithium uses its 32 bytes of entropy as the key generation
// seed. The Random variants draw that entropy from the operating system.
package pqgo

import (
	"io"
	"time"

	"golang.org/x/xerrors"

	"pqgo/pkg/dilithium"
	"pqgo/pkg/kyber"
	"pqgo/pkg/log"
	"pqgo/pkg/metrics"
	"pqgo/pkg/rng"
	"pqgo/pkg/round5"
)

const (
	// KEMEntropyLen is the entropy length of KEM key generation and
	// encapsulation.
	KEMEntropyLen = rng.EntropyLen
	// SignatureEntropyLen is the entropy length of signature key
	// generation.
	SignatureEntropyLen = dilithium.SeedBytes
)

var ErrEntropySize = xerrors.New("pqgo: invalid entropy size")

// KEM is a key encapsulation mechanism over byte slices.
type KEM interface {
	Name() string
	PublicKeySize() int
	SecretKeySize() int
	CiphertextSize() int
	SharedKeySize() int

	KeyGen(entropy []byte) (pk, sk []byte, err error)
	KeyGenRandom() (pk, sk []byte, err error)
	Encap(entropy, pk []byte) (ct, ss []byte, err error)
	EncapRandom(pk []byte) (ct, ss []byte, err error)
	// Decap never reports a mismatching ciphertext; it returns a secret
	// the encapsulating side does not share instead.
	Decap(ct, sk []byte) (ss []byte, err error)
}

// Signature is a signature scheme producing attached signed messages.
type Signature interface {
	Name() string
	PublicKeySize() int
	SecretKeySize() int
	SignatureSize() int

	KeyGen(entropy []byte) (pk, sk []byte, err error)
	KeyGenRandom() (pk, sk []byte, err error)
	// Sign returns sig || m.
	Sign(m, sk []byte) (sm []byte, err error)
	// Open verifies sm and returns the message it carries.
	Open(sm, pk []byte) (m []byte, err error)
}

var (
	Kyber     = NewKyber(kyber.New(kyber.Kyber768))
	Round5    = NewRound5(round5.New(round5.R5ND3KEMb))
	Dilithium = NewDilithium(dilithium.New(dilithium.Mode2))
)

type options struct {
	obs metrics.Observer
	log log.Logger
}

// Option configures a facade value.
type Option func(*options)

// WithObserver reports every operation to obs.
func WithObserver(obs metrics.Observer) Option {
	return func(o *options) {
		o.obs = obs
	}
}

// WithLogger logs operations on l at debug level.
func WithLogger(l log.Logger) Option {
	return func(o *options) {
		o.log = l
	}
}

func newOptions(opts []Option) options {
	o := options{obs: metrics.Nop}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = log.DefaultLogger().Named("pqgo")
	}
	return o
}

type kemBackend interface {
	KeyPair(rand io.Reader) (pk, sk []byte, err error)
	Encapsulate(rand io.Reader, pk []byte) (ct, ss []byte, err error)
	Decapsulate(ct, sk []byte) ([]byte, error)
}

type kemFacade struct {
	options
	name                           string
	backend                        kemBackend
	pkSize, skSize, ctSize, ssSize int
}

// NewKyber wraps a Kyber scheme.
func NewKyber(s *kyber.Scheme, opts ...Option) KEM {
	p := s.Params()
	return &kemFacade{
		options: newOptions(opts),
		name:    p.Name,
		backend: s,
		pkSize:  p.PublicKeySize(),
		skSize:  p.SecretKeySize(),
		ctSize:  p.CiphertextSize(),
		ssSize:  p.SharedKeySize(),
	}
}

// NewRound5 wraps a Round5 scheme.
func NewRound5(s *round5.Scheme, opts ...Option) KEM {
	p := s.Params()
	return &kemFacade{
		options: newOptions(opts),
		name:    p.Name,
		backend: s,
		pkSize:  p.PublicKeySize(),
		skSize:  p.SecretKeySize(),
		ctSize:  p.CiphertextSize(),
		ssSize:  p.SharedKeySize(),
	}
}

func (k *kemFacade) Name() string        { return k.name }
func (k *kemFacade) PublicKeySize() int  { return k.pkSize }
func (k *kemFacade) SecretKeySize() int  { return k.skSize }
func (k *kemFacade) CiphertextSize() int { return k.ctSize }
func (k *kemFacade) SharedKeySize() int  { return k.ssSize }

func (k *kemFacade) done(op string, start time.Time, kv ...interface{}) {
	k.obs.Operation(k.name, op, time.Since(start))
	k.log.Debugw(op, append([]interface{}{"scheme", k.name}, kv...)...)
}

func (k *kemFacade) drbg(entropy []byte) (*rng.DRBG, error) {
	if len(entropy) != KEMEntropyLen {
		return nil, xerrors.Errorf("%s: got %d bytes: %w", k.name, len(entropy), ErrEntropySize)
	}
	return rng.MustNew(entropy), nil
}

func (k *kemFacade) KeyGen(entropy []byte) (pk, sk []byte, err error) {
	d, err := k.drbg(entropy)
	if err != nil {
		return nil, nil, err
	}
	return k.keyGen(d)
}

func (k *kemFacade) KeyGenRandom() (pk, sk []byte, err error) {
	return k.keyGen(rng.System)
}

func (k *kemFacade) keyGen(rand io.Reader) (pk, sk []byte, err error) {
	start := time.Now()
	pk, sk, err = k.backend.KeyPair(rand)
	if err != nil {
		return nil, nil, err
	}
	k.done("keygen", start, "pk", len(pk))
	return pk, sk, nil
}

func (k *kemFacade) Encap(entropy, pk []byte) (ct, ss []byte, err error) {
	d, err := k.drbg(entropy)
	if err != nil {
		return nil, nil, err
	}
	return k.encap(d, pk)
}

func (k *kemFacade) EncapRandom(pk []byte) (ct, ss []byte, err error) {
	return k.encap(rng.System, pk)
}

func (k *kemFacade) encap(rand io.Reader, pk []byte) (ct, ss []byte, err error) {
	start := time.Now()
	ct, ss, err = k.backend.Encapsulate(rand, pk)
	if err != nil {
		return nil, nil, err
	}
	k.done("encap", start, "ct", len(ct))
	return ct, ss, nil
}

func (k *kemFacade) Decap(ct, sk []byte) ([]byte, error) {
	start := time.Now()
	ss, err := k.backend.Decapsulate(ct, sk)
	if err != nil {
		return nil, err
	}
	k.done("decap", start)
	return ss, nil
}

type signatureFacade struct {
	options
	scheme *dilithium.Scheme
	mode   *dilithium.Mode
}

// NewDilithium wraps a Dilithium scheme.
func NewDilithium(s *dilithium.Scheme, opts ...Option) Signature {
	return &signatureFacade{options: newOptions(opts), scheme: s, mode: s.Mode()}
}

func (d *signatureFacade) Name() string       { return d.mode.Name }
func (d *signatureFacade) PublicKeySize() int { return d.mode.PublicKeySize() }
func (d *signatureFacade) SecretKeySize() int { return d.mode.SecretKeySize() }
func (d *signatureFacade) SignatureSize() int { return d.mode.SignatureSize() }

func (d *signatureFacade) KeyGen(entropy []byte) (pk, sk []byte, err error) {
	if len(entropy) != SignatureEntropyLen {
		return nil, nil, xerrors.Errorf("%s: got %d bytes: %w", d.mode.Name, len(entropy), ErrEntropySize)
	}
	start := time.Now()
	pk, sk, err = d.scheme.Gen(entropy)
	if err != nil {
		return nil, nil, err
	}
	d.obs.Operation(d.mode.Name, "keygen", time.Since(start))
	d.log.Debugw("keygen", "scheme", d.mode.Name, "pk", len(pk))
	return pk, sk, nil
}

func (d *signatureFacade) KeyGenRandom() (pk, sk []byte, err error) {
	seed, err := rng.Bytes(rng.System, SignatureEntropyLen)
	if err != nil {
		return nil, nil, xerrors.Errorf("%s keygen: %w", d.mode.Name, err)
	}
	defer clear(seed)
	return d.KeyGen(seed)
}

func (d *signatureFacade) Sign(m, sk []byte) ([]byte, error) {
	start := time.Now()
	n := d.mode.SignatureSize()
	sm := make([]byte, n+len(m))
	attempts, err := d.scheme.SignTo(sm[:n], sk, m)
	if err != nil {
		return nil, err
	}
	copy(sm[n:], m)
	d.obs.Operation(d.mode.Name, "sign", time.Since(start))
	d.obs.SignAttempts(d.mode.Name, attempts)
	d.log.Debugw("sign", "scheme", d.mode.Name, "msg", len(m), "attempts", attempts)
	return sm, nil
}

func (d *signatureFacade) Open(sm, pk []byte) ([]byte, error) {
	start := time.Now()
	m, err := d.scheme.Open(pk, sm)
	d.obs.Operation(d.mode.Name, "open", time.Since(start))
	if err != nil {
		d.log.Debugw("open rejected", "scheme", d.mode.Name, "err", err)
		return nil, err
	}
	return m, nil
}
