package kyber

import (
	"io"

	"golang.org/x/xerrors"

	"pqgo/pkg/encoding"
	"pqgo/pkg/hash"
)

// ErrHandshakeSize reports a handshake message of the wrong length.
var ErrHandshakeSize = xerrors.New("kyber: invalid handshake message size")

// UAKEInitASize is the length of the first handshake message, pk || ct.
func (s *Scheme) UAKEInitASize() int {
	return s.params.PublicKeySize() + s.params.CiphertextSize()
}

// AKESharedBSize is the length of the authenticated response, ct || ct.
func (s *Scheme) AKESharedBSize() int {
	return 2 * s.params.CiphertextSize()
}

// UAKEInitA starts a handshake towards B's static public key pkb. It returns
// the message for B together with the ephemeral state tk and sk that
// UAKESharedA needs. AKEInitA is identical.
func (s *Scheme) UAKEInitA(rand io.Reader, pkb []byte) (send, tk, sk []byte, err error) {
	pk, sk, err := s.KeyPair(rand)
	if err != nil {
		return nil, nil, nil, err
	}
	ct, tk, err := s.Encapsulate(rand, pkb)
	if err != nil {
		encoding.Wipe(sk)
		return nil, nil, nil, err
	}
	send = make([]byte, 0, len(pk)+len(ct))
	send = append(append(send, pk...), ct...)
	return send, tk, sk, nil
}

// UAKESharedB answers A's message with B's static secret key and derives the
// session key.
func (s *Scheme) UAKESharedB(rand io.Reader, recv, skb []byte) (send, key []byte, err error) {
	if len(recv) != s.UAKEInitASize() {
		return nil, nil, xerrors.Errorf("got %d bytes: %w", len(recv), ErrHandshakeSize)
	}
	pkLen := s.params.PublicKeySize()
	var buf [2 * SymBytes]byte
	defer clear(buf[:])

	send, ss, err := s.Encapsulate(rand, recv[:pkLen])
	if err != nil {
		return nil, nil, err
	}
	copy(buf[:], ss)
	ss, err = s.Decapsulate(recv[pkLen:], skb)
	if err != nil {
		return nil, nil, err
	}
	copy(buf[SymBytes:], ss)
	return send, sessionKey(buf[:]), nil
}

// UAKESharedA completes the handshake on A's side.
func (s *Scheme) UAKESharedA(recv, tk, sk []byte) ([]byte, error) {
	if len(tk) != SymBytes {
		return nil, xerrors.Errorf("tk: got %d bytes: %w", len(tk), ErrHandshakeSize)
	}
	var buf [2 * SymBytes]byte
	defer clear(buf[:])

	ss, err := s.Decapsulate(recv, sk)
	if err != nil {
		return nil, err
	}
	copy(buf[:], ss)
	copy(buf[SymBytes:], tk)
	return sessionKey(buf[:]), nil
}

// AKEInitA starts an authenticated handshake. The message layout equals
// UAKEInitA's.
func (s *Scheme) AKEInitA(rand io.Reader, pkb []byte) (send, tk, sk []byte, err error) {
	return s.UAKEInitA(rand, pkb)
}

// AKESharedB answers A's message, additionally encapsulating to A's static
// public key pka.
func (s *Scheme) AKESharedB(rand io.Reader, recv, skb, pka []byte) (send, key []byte, err error) {
	if len(recv) != s.UAKEInitASize() {
		return nil, nil, xerrors.Errorf("got %d bytes: %w", len(recv), ErrHandshakeSize)
	}
	pkLen := s.params.PublicKeySize()
	var buf [3 * SymBytes]byte
	defer clear(buf[:])

	ct1, ss, err := s.Encapsulate(rand, recv[:pkLen])
	if err != nil {
		return nil, nil, err
	}
	copy(buf[:], ss)
	ct2, ss, err := s.Encapsulate(rand, pka)
	if err != nil {
		return nil, nil, err
	}
	copy(buf[SymBytes:], ss)
	ss, err = s.Decapsulate(recv[pkLen:], skb)
	if err != nil {
		return nil, nil, err
	}
	copy(buf[2*SymBytes:], ss)

	send = make([]byte, 0, len(ct1)+len(ct2))
	send = append(append(send, ct1...), ct2...)
	return send, sessionKey(buf[:]), nil
}

// AKESharedA completes the authenticated handshake with A's ephemeral state
// and A's static secret key ska.
func (s *Scheme) AKESharedA(recv, tk, sk, ska []byte) ([]byte, error) {
	if len(recv) != s.AKESharedBSize() {
		return nil, xerrors.Errorf("got %d bytes: %w", len(recv), ErrHandshakeSize)
	}
	if len(tk) != SymBytes {
		return nil, xerrors.Errorf("tk: got %d bytes: %w", len(tk), ErrHandshakeSize)
	}
	ctLen := s.params.CiphertextSize()
	var buf [3 * SymBytes]byte
	defer clear(buf[:])

	ss, err := s.Decapsulate(recv[:ctLen], sk)
	if err != nil {
		return nil, err
	}
	copy(buf[:], ss)
	ss, err = s.Decapsulate(recv[ctLen:], ska)
	if err != nil {
		return nil, err
	}
	copy(buf[SymBytes:], ss)
	copy(buf[2*SymBytes:], tk)
	return sessionKey(buf[:]), nil
}

func sessionKey(secrets []byte) []byte {
	k := make([]byte, SymBytes)
	hash.Shake256(k, secrets)
	return k
}
