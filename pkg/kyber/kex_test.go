package kyber

import (
	"bytes"
	"testing"

	"golang.org/x/xerrors"

	"pqgo/pkg/rng"
)

func TestUAKE(t *testing.T) {
	for _, p := range allParams {
		s := New(p)
		r := rng.MustNew([]byte("uake " + p.Name))
		pkb, skb, err := s.KeyPair(r)
		if err != nil {
			t.Fatal(err)
		}

		sendA, tk, eska, err := s.UAKEInitA(r, pkb)
		if err != nil {
			t.Fatal(err)
		}
		if len(sendA) != s.UAKEInitASize() {
			t.Fatalf("%s: init message is %d bytes", p.Name, len(sendA))
		}
		sendB, keyB, err := s.UAKESharedB(r, sendA, skb)
		if err != nil {
			t.Fatal(err)
		}
		if len(sendB) != p.CiphertextSize() {
			t.Fatalf("%s: response is %d bytes", p.Name, len(sendB))
		}
		keyA, err := s.UAKESharedA(sendB, tk, eska)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(keyA, keyB) || len(keyA) != SymBytes {
			t.Fatalf("%s: session keys differ", p.Name)
		}
	}
}

func TestAKE(t *testing.T) {
	s := New(Kyber768)
	r := rng.MustNew([]byte("ake"))
	pka, ska, _ := s.KeyPair(r)
	pkb, skb, _ := s.KeyPair(r)

	sendA, tk, eska, err := s.AKEInitA(r, pkb)
	if err != nil {
		t.Fatal(err)
	}
	sendB, keyB, err := s.AKESharedB(r, sendA, skb, pka)
	if err != nil {
		t.Fatal(err)
	}
	if len(sendB) != s.AKESharedBSize() {
		t.Fatalf("response is %d bytes", len(sendB))
	}
	keyA, err := s.AKESharedA(sendB, tk, eska, ska)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(keyA, keyB) {
		t.Fatal("session keys differ")
	}

	// An impostor without A's static key derives a different key.
	_, otherSK, _ := s.KeyPair(r)
	keyX, err := s.AKESharedA(sendB, tk, eska, otherSK)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(keyX, keyB) {
		t.Fatal("wrong static key produced the session key")
	}
}

func TestHandshakeSizes(t *testing.T) {
	s := New(Kyber768)
	_, skb, _ := s.KeyPair(rng.MustNew(nil))
	if _, _, err := s.UAKESharedB(rng.MustNew(nil), make([]byte, 10), skb); !xerrors.Is(err, ErrHandshakeSize) {
		t.Errorf("short init message: %v", err)
	}
	if _, err := s.AKESharedA(make([]byte, 10), make([]byte, SymBytes), skb, skb); !xerrors.Is(err, ErrHandshakeSize) {
		t.Errorf("short response: %v", err)
	}
}
