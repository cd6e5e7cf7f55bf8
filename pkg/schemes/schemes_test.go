package schemes

import (
	"bytes"
	"crypto"
	"encoding/hex"
	"testing"

	"github.com/cloudflare/circl/kem"
	"github.com/cloudflare/circl/sign"
	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"

	"pqgo/pkg/kyber"
	"pqgo/pkg/round5"
)

func allKEMs(t *testing.T) []kem.Scheme {
	var out []kem.Scheme
	for _, name := range []string{"Kyber512", "Kyber768", "Kyber1024", "R5ND_1KEMb", "R5ND_3KEMb", "R5ND_5KEMb"} {
		s, err := KEMByName(name)
		require.NoError(t, err)
		out = append(out, s)
	}
	return out
}

func TestKEMRoundTrip(t *testing.T) {
	for _, s := range allKEMs(t) {
		t.Run(s.Name(), func(t *testing.T) {
			pk, sk, err := s.GenerateKeyPair()
			require.NoError(t, err)
			ct, ss, err := s.Encapsulate(pk)
			require.NoError(t, err)
			require.Len(t, ct, s.CiphertextSize())
			require.Len(t, ss, s.SharedKeySize())

			ss2, err := s.Decapsulate(sk, ct)
			require.NoError(t, err)
			require.Equal(t, ss, ss2)

			require.True(t, sk.Public().Equal(pk))
		})
	}
}

func TestKEMDeterministic(t *testing.T) {
	for _, s := range allKEMs(t) {
		t.Run(s.Name(), func(t *testing.T) {
			seed := bytes.Repeat([]byte{0x42}, s.SeedSize())
			pk1, sk1 := s.DeriveKeyPair(seed)
			pk2, sk2 := s.DeriveKeyPair(seed)
			require.True(t, pk1.Equal(pk2))
			require.True(t, sk1.Equal(sk2))

			eseed := make([]byte, s.EncapsulationSeedSize())
			ct1, ss1, err := s.EncapsulateDeterministically(pk1, eseed)
			require.NoError(t, err)
			ct2, ss2, err := s.EncapsulateDeterministically(pk1, eseed)
			require.NoError(t, err)
			require.Equal(t, ct1, ct2)
			require.Equal(t, ss1, ss2)

			_, _, err = s.EncapsulateDeterministically(pk1, eseed[1:])
			require.Equal(t, kem.ErrSeedSize, err)
			require.Panics(t, func() { s.DeriveKeyPair(seed[1:]) })
		})
	}
}

// A zero seed through the adapter reproduces the package known answers.
func TestKEMMatchesBackend(t *testing.T) {
	seed := make([]byte, 48)
	s := Round5(round5.R5ND1KEMb, round5.WithRingMultiplier(round5.Fast))
	_, sk := s.DeriveKeyPair(seed)
	pk := sk.Public()
	ct, ss, err := s.EncapsulateDeterministically(pk, seed)
	require.NoError(t, err)
	require.Equal(t, "17fe42e6849a291563f6aec05e0f0805", hex.EncodeToString(ss))

	back := round5.New(round5.R5ND1KEMb)
	raw, err := sk.MarshalBinary()
	require.NoError(t, err)
	ss2, err := back.Decapsulate(ct, raw[:round5.R5ND1KEMb.SecretKeySize()])
	require.NoError(t, err)
	require.Equal(t, ss, ss2)
}

func TestKEMMarshal(t *testing.T) {
	for _, s := range allKEMs(t) {
		t.Run(s.Name(), func(t *testing.T) {
			pk, sk, err := s.GenerateKeyPair()
			require.NoError(t, err)

			ppk, err := pk.MarshalBinary()
			require.NoError(t, err)
			require.Len(t, ppk, s.PublicKeySize())
			psk, err := sk.MarshalBinary()
			require.NoError(t, err)
			require.Len(t, psk, s.PrivateKeySize())

			pk2, err := s.UnmarshalBinaryPublicKey(ppk)
			require.NoError(t, err)
			require.True(t, pk.Equal(pk2))
			sk2, err := s.UnmarshalBinaryPrivateKey(psk)
			require.NoError(t, err)
			require.True(t, sk.Equal(sk2))
			require.True(t, sk2.Public().Equal(pk))

			_, err = s.UnmarshalBinaryPublicKey(ppk[1:])
			require.Equal(t, kem.ErrPubKeySize, err)
			_, err = s.UnmarshalBinaryPrivateKey(psk[1:])
			require.Equal(t, kem.ErrPrivKeySize, err)
		})
	}
}

func TestKEMTypeMismatch(t *testing.T) {
	a := Kyber(kyber.Kyber768)
	b, err := KEMByName("R5ND_3KEMb")
	require.NoError(t, err)
	pk, sk, err := b.GenerateKeyPair()
	require.NoError(t, err)

	_, _, err = a.Encapsulate(pk)
	require.Equal(t, kem.ErrTypeMismatch, err)
	_, err = a.Decapsulate(sk, make([]byte, a.CiphertextSize()))
	require.Equal(t, kem.ErrTypeMismatch, err)

	_, sk2, err := a.GenerateKeyPair()
	require.NoError(t, err)
	_, err = a.Decapsulate(sk2, make([]byte, 3))
	require.Equal(t, kem.ErrCiphertextSize, err)
}

func allSigs(t *testing.T) []sign.Scheme {
	var out []sign.Scheme
	for _, name := range []string{"Dilithium1", "Dilithium2", "Dilithium3"} {
		s, err := SignatureByName(name)
		require.NoError(t, err)
		out = append(out, s)
	}
	return out
}

func TestSignVerify(t *testing.T) {
	msg := []byte("post-quantum")
	for _, s := range allSigs(t) {
		t.Run(s.Name(), func(t *testing.T) {
			pk, sk, err := s.GenerateKey()
			require.NoError(t, err)
			sig := s.Sign(sk, msg, nil)
			require.Len(t, sig, s.SignatureSize())
			require.True(t, s.Verify(pk, msg, sig, nil))
			require.False(t, s.Verify(pk, []byte("post-classical"), sig, nil))
			require.False(t, s.Verify(pk, msg, sig, &sign.SignatureOpts{Context: "ctx"}))
			require.False(t, s.SupportsContext())
			require.Panics(t, func() { s.Sign(sk, msg, &sign.SignatureOpts{Context: "ctx"}) })

			// crypto.Signer
			sig2, err := sk.Sign(nil, msg, crypto.Hash(0))
			require.NoError(t, err)
			require.Equal(t, sig, sig2)
			_, err = sk.Sign(nil, msg, crypto.SHA256)
			require.Error(t, err)
		})
	}
}

func TestSignDeriveAndMarshal(t *testing.T) {
	for _, s := range allSigs(t) {
		t.Run(s.Name(), func(t *testing.T) {
			seed := make([]byte, s.SeedSize())
			pk, sk := s.DeriveKey(seed)
			pk2, sk2 := s.DeriveKey(seed)
			require.True(t, pk.Equal(pk2))
			require.True(t, sk.Equal(sk2))

			psk, err := sk.MarshalBinary()
			require.NoError(t, err)
			sk3, err := s.UnmarshalBinaryPrivateKey(psk)
			require.NoError(t, err)
			require.True(t, pk.Equal(sk3.Public()))

			ppk, err := pk.MarshalBinary()
			require.NoError(t, err)
			pk3, err := s.UnmarshalBinaryPublicKey(ppk)
			require.NoError(t, err)
			require.True(t, pk.Equal(pk3))

			_, err = s.UnmarshalBinaryPublicKey(ppk[2:])
			require.Equal(t, sign.ErrPubKeySize, err)
			_, err = s.UnmarshalBinaryPrivateKey(psk[2:])
			require.Equal(t, sign.ErrPrivKeySize, err)
			require.Panics(t, func() { s.DeriveKey(seed[1:]) })
		})
	}
}

func TestSignTypeMismatch(t *testing.T) {
	sigs := allSigs(t)
	pk, sk := sigs[0].DeriveKey(make([]byte, 32))
	require.Panics(t, func() { sigs[1].Sign(sk, nil, nil) })
	require.Panics(t, func() { sigs[1].Verify(pk, nil, nil, nil) })
}

func TestByName(t *testing.T) {
	_, err := KEMByName("Dilithium2")
	require.True(t, xerrors.Is(err, ErrUnknownScheme))
	_, err = SignatureByName("Kyber768")
	require.True(t, xerrors.Is(err, ErrUnknownScheme))
	require.Len(t, Names(), 9)
}
