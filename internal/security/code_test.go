package security

import "testing"

func TestGenerateNumericCode(t *testing.T) {
	seen := make(map[string]bool)

	for i := 0; i < 200; i++ {
		code, err := GenerateNumericCode(RecoveryCodeLength)

		if err != nil {
			t.Fatalf("GenerateNumericCode: %v", err)
		}

		if len(code) != RecoveryCodeLength {
			t.Fatalf("code %q has length %d, want %d", code, len(code), RecoveryCodeLength)
		}

		for _, r := range code {
			if r < '0' || r > '9' {
				t.Fatalf("code %q has non-digit %q", code, r)
			}
		}

		seen[code] = true
	}

	// 200 draws from a space of 100000 should essentially never collapse
	// to a handful of values
	if len(seen) < 150 {
		t.Errorf("only %d distinct codes in 200 draws", len(seen))
	}
}

func TestGenerateNumericCodeDefaultsLength(t *testing.T) {
	code, err := GenerateNumericCode(0)

	if err != nil {
		t.Fatalf("GenerateNumericCode: %v", err)
	}

	if len(code) != RecoveryCodeLength {
		t.Errorf("default length = %d, want %d", len(code), RecoveryCodeLength)
	}
}

func TestIsNumericCode(t *testing.T) {
	tests := []struct {
		s    string
		n    int
		want bool
	}{
		{"54321", 5, true},
		{"00000", 5, true},
		{"5432", 5, false},
		{"543210", 5, false},
		{"5432x", 5, false},
		{"", 5, false},
	}

	for _, tc := range tests {
		if got := IsNumericCode(tc.s, tc.n); got != tc.want {
			t.Errorf("IsNumericCode(%q, %d) = %v, want %v", tc.s, tc.n, got, tc.want)
		}
	}
}

func TestHashAndCheckSecret(t *testing.T) {
	hash, err := HashSecret("hunter2")

	if err != nil {
		t.Fatalf("HashSecret: %v", err)
	}

	if hash == "hunter2" {
		t.Fatal("hash equals plaintext")
	}

	if err := CheckSecret(hash, "hunter2"); err != nil {
		t.Errorf("CheckSecret with correct secret: %v", err)
	}

	if err := CheckSecret(hash, "hunter3"); err == nil {
		t.Error("CheckSecret accepted the wrong secret")
	}
}
