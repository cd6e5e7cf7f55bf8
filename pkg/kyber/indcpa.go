package kyber

import (
	"io"

	"golang.org/x/xerrors"

	"pqgo/pkg/encoding"
	"pqgo/pkg/hash"
	"pqgo/pkg/rng"
)

// packPublicKey writes compress(t) || seed.
func (s *Scheme) packPublicKey(r []byte, t polyVec, seed []byte) {
	w := encoding.NewWriter(r)
	t.compress(w.Next(s.params.K * polyvecCompressedPerPoly))
	w.Put(seed[:SymBytes])
}

func (s *Scheme) unpackPublicKey(t polyVec, pk []byte) (seed []byte) {
	rd := encoding.NewReader(pk)
	t.decompress(rd.Next(s.params.K * polyvecCompressedPerPoly))
	return rd.Next(SymBytes)
}

func (s *Scheme) packCiphertext(r []byte, b polyVec, v *poly) {
	w := encoding.NewWriter(r)
	b.compress(w.Next(s.params.K * polyvecCompressedPerPoly))
	v.compress(w.Next(polyCompressedBytes))
}

func (s *Scheme) unpackCiphertext(b polyVec, v *poly, ct []byte) {
	rd := encoding.NewReader(ct)
	b.decompress(rd.Next(s.params.K * polyvecCompressedPerPoly))
	v.decompress(rd.Next(polyCompressedBytes))
}

// CPAKeyPair generates an IND-CPA key pair. The secret key is the 13-bit
// packing of s in the NTT domain.
func (s *Scheme) CPAKeyPair(rand io.Reader) (pk, sk []byte, err error) {
	pk = make([]byte, s.params.PublicKeySize())
	sk = make([]byte, s.params.CPASecretKeySize())
	if err := s.cpaKeyPair(pk, sk, rand); err != nil {
		return nil, nil, err
	}
	return pk, sk, nil
}

func (s *Scheme) cpaKeyPair(pk, sk []byte, rand io.Reader) error {
	k := s.params.K
	var buf [SymBytes]byte
	if err := rng.Read(rand, buf[:]); err != nil {
		return xerrors.Errorf("kyber keypair: %w", err)
	}
	seeds := hash.Sum512(buf[:])
	publicSeed, noiseSeed := seeds[:SymBytes], seeds[SymBytes:]
	defer encoding.Wipe(buf[:], seeds[:])

	a := s.matrix(publicSeed, false)

	skpv := newPolyVec(k)
	e := newPolyVec(k)
	defer encoding.Wipe(skpv, e)
	var nonce byte
	for i := 0; i < k; i++ {
		skpv[i].getNoise(noiseSeed, nonce, s.params.Eta)
		nonce++
	}
	skpv.ntt()
	for i := 0; i < k; i++ {
		e[i].getNoise(noiseSeed, nonce, s.params.Eta)
		nonce++
	}

	pkpv := newPolyVec(k)
	for i := 0; i < k; i++ {
		pointwiseAcc(&pkpv[i], skpv, a[i])
	}
	pkpv.invNTT()
	pkpv.add(pkpv, e)

	skpv.toBytes(sk)
	s.packPublicKey(pk, pkpv, publicSeed)
	return nil
}

// Encrypt encrypts a 32-byte message under pk using 32 bytes of coins.
func (s *Scheme) Encrypt(pk, msg, coins []byte) ([]byte, error) {
	if len(pk) != s.params.PublicKeySize() {
		return nil, xerrors.Errorf("%s: got %d bytes: %w", s.params.Name, len(pk), ErrPublicKeySize)
	}
	if len(msg) != SymBytes {
		return nil, xerrors.Errorf("%s: got %d bytes: %w", s.params.Name, len(msg), ErrMessageSize)
	}
	if len(coins) != SymBytes {
		return nil, xerrors.Errorf("%s: got %d bytes: %w", s.params.Name, len(coins), ErrCoinsSize)
	}
	ct := make([]byte, s.params.CiphertextSize())
	s.encrypt(ct, msg, pk, coins)
	return ct, nil
}

func (s *Scheme) encrypt(ct, msg, pk, coins []byte) {
	k := s.params.K
	pkpv := newPolyVec(k)
	seed := s.unpackPublicKey(pkpv, pk)

	var m poly
	m.fromMsg(msg)
	pkpv.ntt()

	at := s.matrix(seed, true)

	sp := newPolyVec(k)
	ep := newPolyVec(k)
	var epp poly
	defer func() {
		encoding.Wipe(sp, ep)
		clear(epp[:])
		clear(m[:])
	}()

	var nonce byte
	for i := 0; i < k; i++ {
		sp[i].getNoise(coins, nonce, s.params.Eta)
		nonce++
	}
	sp.ntt()
	for i := 0; i < k; i++ {
		ep[i].getNoise(coins, nonce, s.params.Eta)
		nonce++
	}

	bp := newPolyVec(k)
	for i := 0; i < k; i++ {
		pointwiseAcc(&bp[i], sp, at[i])
	}
	bp.invNTT()
	bp.add(bp, ep)

	var v poly
	pointwiseAcc(&v, pkpv, sp)
	v.invNTT()
	epp.getNoise(coins, nonce, s.params.Eta)
	v.add(&v, &epp)
	v.add(&v, &m)

	s.packCiphertext(ct, bp, &v)
}

// Decrypt recovers the 32-byte message from ct with an IND-CPA secret key.
func (s *Scheme) Decrypt(sk, ct []byte) ([]byte, error) {
	if len(sk) != s.params.CPASecretKeySize() {
		return nil, xerrors.Errorf("%s: got %d bytes: %w", s.params.Name, len(sk), ErrSecretKeySize)
	}
	if len(ct) != s.params.CiphertextSize() {
		return nil, xerrors.Errorf("%s: got %d bytes: %w", s.params.Name, len(ct), ErrCiphertextSize)
	}
	msg := make([]byte, SymBytes)
	s.decrypt(msg, ct, sk)
	return msg, nil
}

func (s *Scheme) decrypt(msg, ct, sk []byte) {
	k := s.params.K
	bp := newPolyVec(k)
	var v, mp poly
	s.unpackCiphertext(bp, &v, ct)

	skpv := newPolyVec(k)
	skpv.fromBytes(sk)
	defer func() {
		encoding.Wipe(skpv)
		clear(mp[:])
	}()

	bp.ntt()
	pointwiseAcc(&mp, skpv, bp)
	mp.invNTT()
	mp.sub(&mp, &v)
	mp.toMsg(msg)
}
