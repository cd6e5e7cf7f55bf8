// Package rng provides the randomness sources handed to scheme operations.
//
// Nothing in this module keeps global random state: every operation that
// needs randomness takes an io.Reader owned by the caller. DRBG makes those
// readers reproducible for golden tests; System reads the operating system.
// A DRBG is not safe for concurrent use.
package rng

import (
	"crypto/rand"
	"io"

	"golang.org/x/xerrors"

	"pqgo/pkg/hash"
)

// EntropyLen is the number of entropy bytes a DRBG absorbs.
const EntropyLen = 48

var (
	// ErrEntropy reports a failing or exhausted entropy source.
	ErrEntropy = xerrors.New("rng: entropy source failure")
	// ErrEntropySize reports entropy input longer than EntropyLen.
	ErrEntropySize = xerrors.New("rng: entropy input too long")
)

// DRBG is a deterministic random-bit generator: SHAKE-256 over a 48-byte
// entropy block followed by the personalization string, squeezed on demand.
type DRBG struct {
	xof      *hash.Stream
	strength int
}

// New returns a DRBG seeded with entropy. Entropy shorter than EntropyLen is
// zero padded. The security strength is recorded for callers that report it
// and does not change the output stream.
//
// A non-empty personalization string is absorbed after the entropy block,
// so the stream matches the reference randombytes generator only when
// personalization is nil.
func New(entropy, personalization []byte, strength int) (*DRBG, error) {
	d := &DRBG{}
	if err := d.Reseed(entropy, personalization, strength); err != nil {
		return nil, err
	}
	return d, nil
}

// MustNew is New for fixed, known-good entropy such as test seeds.
func MustNew(entropy []byte) *DRBG {
	d, err := New(entropy, nil, 256)
	if err != nil {
		panic(err)
	}
	return d
}

// Reseed discards the current state and restarts from new entropy.
func (d *DRBG) Reseed(entropy, personalization []byte, strength int) error {
	if len(entropy) > EntropyLen {
		return xerrors.Errorf("%d bytes: %w", len(entropy), ErrEntropySize)
	}
	var block [EntropyLen]byte
	copy(block[:], entropy)
	if d.xof == nil {
		d.xof = hash.NewStream256(block[:], personalization)
	} else {
		d.xof.Reset(block[:], personalization)
	}
	d.strength = strength
	return nil
}

// Strength returns the security strength the DRBG was seeded for.
func (d *DRBG) Strength() int {
	return d.strength
}

// Read squeezes len(p) bytes. It never fails.
func (d *DRBG) Read(p []byte) (int, error) {
	return d.xof.Read(p)
}

type system struct{}

// System reads from the operating system's secure random source.
var System io.Reader = system{}

func (system) Read(p []byte) (int, error) {
	n, err := rand.Read(p)
	if err != nil {
		return n, xerrors.Errorf("system source: %v: %w", err, ErrEntropy)
	}
	return n, nil
}

// Read fills p from r. A short read or a reader error is reported as
// ErrEntropy and leaves the contents of p unspecified.
func Read(r io.Reader, p []byte) error {
	if r == nil {
		r = System
	}
	if _, err := io.ReadFull(r, p); err != nil {
		if xerrors.Is(err, ErrEntropy) {
			return err
		}
		return xerrors.Errorf("reading %d bytes: %v: %w", len(p), err, ErrEntropy)
	}
	return nil
}

// Bytes returns n bytes read from r, see Read.
func Bytes(r io.Reader, n int) ([]byte, error) {
	b := make([]byte, n)
	if err := Read(r, b); err != nil {
		return nil, err
	}
	return b, nil
}
