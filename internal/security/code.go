package security

import (
	"crypto/rand"
	"math/big"
	"strconv"
	"strings"
)

// RecoveryCodeLength matches the 5-digit codes the reset flow expects.
const RecoveryCodeLength = 5

// GenerateNumericCode returns a random code of n decimal digits,
// zero-padded, drawn from crypto/rand.
func GenerateNumericCode(n int) (string, error) {
	if n <= 0 {
		n = RecoveryCodeLength
	}

	max := big.NewInt(1)

	for i := 0; i < n; i++ {
		max.Mul(max, big.NewInt(10))
	}

	v, err := rand.Int(rand.Reader, max)

	if err != nil {
		return "", err
	}

	code := v.String()

	if len(code) < n {
		code = strings.Repeat("0", n-len(code)) + code
	}

	return code, nil
}

// IsNumericCode reports whether s looks like a code we could have issued.
func IsNumericCode(s string, n int) bool {
	if len(s) != n {
		return false
	}

	_, err := strconv.Atoi(s)

	return err == nil
}
