package dilithium

const (
	// Q is the prime modulus 2^23 - 2^13 + 1.
	Q = 8380417
	// N is the polynomial degree.
	N = 256
	// D is the number of low bits dropped from t.
	D = 14
	// Gamma1 bounds the masking vector y.
	Gamma1 = (Q - 1) / 16
	// Gamma2 is the low-order rounding range.
	Gamma2 = Gamma1 / 2
	// Alpha = 2*Gamma2 is the decomposition modulus.
	Alpha = 2 * Gamma2

	// SeedBytes is the size of rho, key and the key generation seed.
	SeedBytes = 32
	// CRHBytes is the size of tr and mu.
	CRHBytes = 48

	// challengeWeight is the number of nonzero coefficients of c.
	challengeWeight = 60

	polyT1Bytes = 288 // 9 bits per coefficient
	polyT0Bytes = 448 // 14 bits
	polyZBytes  = 640 // 20 bits
	polyW1Bytes = 128 // 4 bits

	// maxAttempts caps the signing rejection loop. The expected number of
	// attempts is below 10 for every mode.
	maxAttempts = 1000
)

// Mode is a Dilithium parameter set.
type Mode struct {
	Name  string
	K     int
	L     int
	Eta   uint32
	Beta  uint32
	Omega int
}

var (
	Mode1 = &Mode{Name: "Dilithium1", K: 4, L: 3, Eta: 6, Beta: 325, Omega: 80}
	Mode2 = &Mode{Name: "Dilithium2", K: 5, L: 4, Eta: 5, Beta: 275, Omega: 96}
	Mode3 = &Mode{Name: "Dilithium3", K: 6, L: 5, Eta: 3, Beta: 175, Omega: 120}
)

// Modes lists the supported parameter sets by name.
var Modes = map[string]*Mode{
	Mode1.Name: Mode1,
	Mode2.Name: Mode2,
	Mode3.Name: Mode3,
}

// polyEtaBits is 3 when Eta <= 3 and 4 otherwise.
func (m *Mode) polyEtaBits() int {
	if m.Eta <= 3 {
		return 3
	}
	return 4
}

func (m *Mode) polyEtaBytes() int {
	return m.polyEtaBits() * N / 8
}

// PublicKeySize is the length of rho || t1.
func (m *Mode) PublicKeySize() int {
	return SeedBytes + m.K*polyT1Bytes
}

// SecretKeySize is the length of rho || key || tr || s1 || s2 || t0.
func (m *Mode) SecretKeySize() int {
	return 2*SeedBytes + CRHBytes + (m.L+m.K)*m.polyEtaBytes() + m.K*polyT0Bytes
}

// SignatureSize is the length of z || h || c.
func (m *Mode) SignatureSize() int {
	return m.L*polyZBytes + m.Omega + m.K + N/8 + 8
}
