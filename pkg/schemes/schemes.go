// Package schemes adapts the kyber, round5 and dilithium packages to the
// github.com/cloudflare/circl kem.Scheme and sign.Scheme interfaces.
//
// Seeds given to DeriveKeyPair and EncapsulateDeterministically are 48
// bytes of DRBG entropy; Dilithium DeriveKey takes its 32-byte key
// generation seed directly.
package schemes

import (
	"sort"

	"github.com/cloudflare/circl/kem"
	"github.com/cloudflare/circl/sign"
	"golang.org/x/xerrors"

	"pqgo/pkg/dilithium"
	"pqgo/pkg/kyber"
	"pqgo/pkg/round5"
)

var ErrUnknownScheme = xerrors.New("schemes: unknown scheme")

var (
	kems = map[string]kem.Scheme{}
	sigs = map[string]sign.Scheme{}
)

func init() {
	for _, p := range kyber.ParamSets {
		kems[p.Name] = Kyber(p)
	}
	for _, p := range round5.ParamSets {
		kems[p.Name] = Round5(p)
	}
	for _, m := range dilithium.Modes {
		sigs[m.Name] = Dilithium(m)
	}
}

// KEMByName returns the KEM with default options registered under name.
// Round5 schemes use the constant-time ring multiplier.
func KEMByName(name string) (kem.Scheme, error) {
	if s, ok := kems[name]; ok {
		return s, nil
	}
	return nil, xerrors.Errorf("%q: %w", name, ErrUnknownScheme)
}

// SignatureByName returns the signature scheme registered under name.
func SignatureByName(name string) (sign.Scheme, error) {
	if s, ok := sigs[name]; ok {
		return s, nil
	}
	return nil, xerrors.Errorf("%q: %w", name, ErrUnknownScheme)
}

// Names lists every registered scheme name in sorted order.
func Names() []string {
	names := make([]string, 0, len(kems)+len(sigs))
	for n := range kems {
		names = append(names, n)
	}
	for n := range sigs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
