package identity

import "github.com/comflo/identity/internal/security"

// BcryptHasher is the default CredentialHasher.
type BcryptHasher struct{}

func (BcryptHasher) Hash(plain string) (string, error) { return security.HashSecret(plain) }

func (BcryptHasher) Check(hash, plain string) error { return security.CheckSecret(hash, plain) }

// NumericCodeGenerator draws fixed-length recovery codes from crypto/rand.
type NumericCodeGenerator struct {
	Length int
}

func (g NumericCodeGenerator) Generate() (string, error) {
	n := g.Length

	if n <= 0 {
		n = security.RecoveryCodeLength
	}

	return security.GenerateNumericCode(n)
}
