package pqgo

import (
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"golang.org/x/xerrors"

	"pqgo/pkg/encoding"
	"pqgo/pkg/keystore"
	"pqgo/pkg/rng"
	"pqgo/pkg/schemes"
)

type keyGenerator interface {
	Name() string
	KeyGen(entropy []byte) (pk, sk []byte, err error)
	KeyGenRandom() (pk, sk []byte, err error)
}

func keygenCmd(c *cli.Context) error {
	e, err := newEnv(c)
	if err != nil {
		return err
	}
	var gen keyGenerator
	if k, err := e.kem(c.String(schemeFlag.Name)); err == nil {
		gen = k
	} else if s, serr := e.signature(c.String(schemeFlag.Name)); serr == nil {
		gen = s
	} else {
		return xerrors.Errorf("%q: %w", c.String(schemeFlag.Name), errUnknownScheme)
	}

	ent, err := entropy(c)
	if err != nil {
		return err
	}
	var pk, sk []byte
	if ent != nil {
		pk, sk, err = gen.KeyGen(ent)
	} else {
		pk, sk, err = gen.KeyGenRandom()
	}
	if err != nil {
		return err
	}
	defer encoding.Wipe(sk)

	if out := c.String(outFlag.Name); out != "" {
		if err := writeKeyFile(out+".pk", pk); err != nil {
			return err
		}
		if err := writeKeyFile(out+".sk", sk); err != nil {
			return err
		}
		fmt.Fprintf(output, "%s key pair written to %s.pk and %s.sk\n", gen.Name(), out, out)
		return nil
	}

	name := c.String(nameFlag.Name)
	if name == "" {
		return xerrors.New("missing --name or --out")
	}
	store, err := e.openStore()
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.Put(&keystore.KeyPair{Scheme: gen.Name(), Name: name, PublicKey: pk, SecretKey: sk}); err != nil {
		return err
	}
	fmt.Fprintf(output, "%s key pair %q stored in %s\n", gen.Name(), name, e.conf.Store.Path)
	fmt.Fprintf(output, "public key: %x\n", pk)
	return nil
}

func writeKeyFile(path string, b []byte) error {
	if err := os.WriteFile(path, []byte(hex.EncodeToString(b)+"\n"), 0o600); err != nil {
		return xerrors.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func encapCmd(c *cli.Context) error {
	e, err := newEnv(c)
	if err != nil {
		return err
	}
	k, err := e.kem(c.String(schemeFlag.Name))
	if err != nil {
		return err
	}
	var pk []byte
	if c.Args().Present() {
		if pk, err = readHexInput(c); err != nil {
			return err
		}
	} else {
		key, err := e.loadKey(c, k.Name())
		if err != nil {
			return err
		}
		pk = key.PublicKey
	}

	ent, err := entropy(c)
	if err != nil {
		return err
	}
	var ct, ss []byte
	if ent != nil {
		ct, ss, err = k.Encap(ent, pk)
	} else {
		ct, ss, err = k.EncapRandom(pk)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(output, "ciphertext: %x\nshared secret: %x\n", ct, ss)
	return nil
}

func decapCmd(c *cli.Context) error {
	e, err := newEnv(c)
	if err != nil {
		return err
	}
	k, err := e.kem(c.String(schemeFlag.Name))
	if err != nil {
		return err
	}
	ct, err := readHexInput(c)
	if err != nil {
		return err
	}
	key, err := e.loadKey(c, k.Name())
	if err != nil {
		return err
	}
	defer encoding.Wipe(key.SecretKey)
	ss, err := k.Decap(ct, key.SecretKey)
	if err != nil {
		return err
	}
	fmt.Fprintf(output, "shared secret: %x\n", ss)
	return nil
}

func signCmd(c *cli.Context) error {
	e, err := newEnv(c)
	if err != nil {
		return err
	}
	s, err := e.signature(c.String(schemeFlag.Name))
	if err != nil {
		return err
	}
	msg, err := readInput(c)
	if err != nil {
		return err
	}
	key, err := e.loadKey(c, s.Name())
	if err != nil {
		return err
	}
	defer encoding.Wipe(key.SecretKey)
	sm, err := s.Sign(msg, key.SecretKey)
	if err != nil {
		return err
	}
	fmt.Fprintf(output, "%x\n", sm)
	return nil
}

func open(c *cli.Context) ([]byte, error) {
	e, err := newEnv(c)
	if err != nil {
		return nil, err
	}
	s, err := e.signature(c.String(schemeFlag.Name))
	if err != nil {
		return nil, err
	}
	sm, err := readHexInput(c)
	if err != nil {
		return nil, err
	}
	key, err := e.loadKey(c, s.Name())
	if err != nil {
		return nil, err
	}
	return s.Open(sm, key.PublicKey)
}

func verifyCmd(c *cli.Context) error {
	if _, err := open(c); err != nil {
		return err
	}
	fmt.Fprintln(output, "signature valid")
	return nil
}

func openCmd(c *cli.Context) error {
	m, err := open(c)
	if err != nil {
		return err
	}
	_, err = output.Write(m)
	return err
}

func kexCmd(c *cli.Context) error {
	e, err := newEnv(c)
	if err != nil {
		return err
	}
	name := c.String(schemeFlag.Name)
	if name == "" {
		name = e.conf.Kyber.Mode
	}
	s, ok := e.kyberScheme(name)
	if !ok {
		return xerrors.Errorf("%q: handshakes need a Kyber parameter set: %w", name, errUnknownScheme)
	}

	r := rng.System
	pkb, skb, err := s.KeyPair(r)
	if err != nil {
		return err
	}
	var keyA, keyB []byte
	if c.Bool(akeFlag.Name) {
		pka, ska, err := s.KeyPair(r)
		if err != nil {
			return err
		}
		sendA, tk, eska, err := s.AKEInitA(r, pkb)
		if err != nil {
			return err
		}
		var sendB []byte
		if sendB, keyB, err = s.AKESharedB(r, sendA, skb, pka); err != nil {
			return err
		}
		if keyA, err = s.AKESharedA(sendB, tk, eska, ska); err != nil {
			return err
		}
	} else {
		sendA, tk, eska, err := s.UAKEInitA(r, pkb)
		if err != nil {
			return err
		}
		var sendB []byte
		if sendB, keyB, err = s.UAKESharedB(r, sendA, skb); err != nil {
			return err
		}
		if keyA, err = s.UAKESharedA(sendB, tk, eska); err != nil {
			return err
		}
	}

	kind := "UAKE"
	if c.Bool(akeFlag.Name) {
		kind = "AKE"
	}
	e.log.Debugw("handshake", "scheme", s.Params().Name, "kind", kind)
	if subtle.ConstantTimeCompare(keyA, keyB) != 1 {
		return xerrors.Errorf("%s %s: session keys differ", s.Params().Name, kind)
	}
	fmt.Fprintf(output, "%s %s: session keys match (%d bytes)\n", s.Params().Name, kind, len(keyA))
	return nil
}

func listCmd(c *cli.Context) error {
	e, err := newEnv(c)
	if err != nil {
		return err
	}
	store, err := e.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	schemes := []string{e.resolve(c.String(schemeFlag.Name))}
	if !c.IsSet(schemeFlag.Name) {
		if schemes, err = store.Schemes(); err != nil {
			return err
		}
	}
	for _, scheme := range schemes {
		names, err := store.List(scheme)
		if err != nil {
			return err
		}
		for _, n := range names {
			fmt.Fprintf(output, "%s\t%s\n", scheme, n)
		}
	}
	return nil
}

func deleteCmd(c *cli.Context) error {
	e, err := newEnv(c)
	if err != nil {
		return err
	}
	scheme := e.resolve(c.String(schemeFlag.Name))
	if scheme == "" {
		return xerrors.New("missing --scheme")
	}
	store, err := e.openStore()
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.Delete(scheme, c.String(nameFlag.Name)); err != nil {
		return err
	}
	fmt.Fprintf(output, "deleted %s/%s\n", scheme, c.String(nameFlag.Name))
	return nil
}

func schemesCmd(c *cli.Context) error {
	for _, name := range schemes.Names() {
		if k, err := schemes.KEMByName(name); err == nil {
			fmt.Fprintf(output, "%s\tkem\tpk=%d ct=%d ss=%d\n", name,
				k.PublicKeySize(), k.CiphertextSize(), k.SharedKeySize())
			continue
		}
		s, err := schemes.SignatureByName(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(output, "%s\tsignature\tpk=%d sig=%d\n", name, s.PublicKeySize(), s.SignatureSize())
	}
	return nil
}

func metricsCmd(c *cli.Context) error {
	e, err := newEnv(c)
	if err != nil {
		return err
	}
	for _, name := range []string{e.conf.Kyber.Mode, e.conf.Round5.Set} {
		k, err := e.kem(name)
		if err != nil {
			return err
		}
		pk, sk, err := k.KeyGenRandom()
		if err != nil {
			return err
		}
		ct, _, err := k.EncapRandom(pk)
		if err != nil {
			return err
		}
		if _, err := k.Decap(ct, sk); err != nil {
			return err
		}
	}
	s, err := e.signature(e.conf.Dilithium.Mode)
	if err != nil {
		return err
	}
	pk, sk, err := s.KeyGenRandom()
	if err != nil {
		return err
	}
	sm, err := s.Sign([]byte("pqgo metrics"), sk)
	if err != nil {
		return err
	}
	if _, err := s.Open(sm, pk); err != nil {
		return err
	}
	return e.metrics.WriteText(output)
}
