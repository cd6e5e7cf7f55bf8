// Package kyber implements the round-1 Kyber IND-CCA2 key-encapsulation
// mechanism together with the unauthenticated and authenticated key-exchange
// handshakes built from it.
//
// Three parameter sets are provided. They share the ring Z_7681[X]/(X^256+1)
// and differ in the module rank K and the noise width Eta.
package kyber

const (
	// N is the polynomial degree.
	N = 256
	// Q is the prime modulus.
	Q = 7681
	// SymBytes is the size of seeds, messages and shared keys.
	SymBytes = 32

	polyBytes                = 416 // 13 bits per coefficient
	polyCompressedBytes      = 96  // 3 bits per coefficient
	polyvecCompressedPerPoly = 352 // 11 bits per coefficient
)

// ParamSet selects a Kyber security level.
type ParamSet struct {
	Name string
	K    int
	Eta  int
}

var (
	Kyber512  = &ParamSet{Name: "Kyber512", K: 2, Eta: 5}
	Kyber768  = &ParamSet{Name: "Kyber768", K: 3, Eta: 4}
	Kyber1024 = &ParamSet{Name: "Kyber1024", K: 4, Eta: 3}
)

// ParamSets lists the supported parameter sets by name.
var ParamSets = map[string]*ParamSet{
	Kyber512.Name:  Kyber512,
	Kyber768.Name:  Kyber768,
	Kyber1024.Name: Kyber1024,
}

// PublicKeySize is the length of an encoded public key.
func (p *ParamSet) PublicKeySize() int {
	return p.K*polyvecCompressedPerPoly + SymBytes
}

// CPASecretKeySize is the length of an IND-CPA secret key.
func (p *ParamSet) CPASecretKeySize() int {
	return p.K * polyBytes
}

// SecretKeySize is the length of a KEM secret key:
// cpa_sk || pk || H(pk) || z.
func (p *ParamSet) SecretKeySize() int {
	return p.CPASecretKeySize() + p.PublicKeySize() + 2*SymBytes
}

// CiphertextSize is the length of a ciphertext.
func (p *ParamSet) CiphertextSize() int {
	return p.K*polyvecCompressedPerPoly + polyCompressedBytes
}

// SharedKeySize is the length of the encapsulated shared secret.
func (p *ParamSet) SharedKeySize() int {
	return SymBytes
}

func (p *ParamSet) noiseBytes() int {
	return p.Eta * N / 4
}
