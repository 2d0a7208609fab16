package security

import "golang.org/x/crypto/bcrypt"

// HashSecret hashes a plaintext credential with bcrypt. Passwords and
// recovery codes go through the same path.
func HashSecret(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)

	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// helper that compares a bcrypt hash with a plaintext credential.

func CheckSecret(hash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}
