package security

import (
	"strings"
	"testing"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "correct horse battery" {
		t.Fatal("hash must not equal the plaintext")
	}

	ok, err := VerifyPassword("correct horse battery", hash)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !ok {
		t.Error("correct password should verify")
	}

	ok, err = VerifyPassword("wrong password", hash)
	if err != nil {
		t.Fatalf("verify wrong: %v", err)
	}
	if ok {
		t.Error("wrong password should not verify")
	}
}

func TestGenerateVerificationCode(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := GenerateVerificationCode()
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("code %q, want 6 digits", code)
		}
		for _, r := range code {
			if r < '0' || r > '9' {
				t.Fatalf("code %q contains a non-digit", code)
			}
		}
	}
}

func TestGenerateShortID(t *testing.T) {
	const alphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

	seen := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		id, err := GenerateShortID(8)
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if len(id) != 8 {
			t.Fatalf("id %q, want length 8", id)
		}
		for _, r := range id {
			if !strings.ContainsRune(alphabet, r) {
				t.Fatalf("id %q contains %q outside the alphabet", id, r)
			}
		}
		seen[id] = struct{}{}
	}

	// 62^8 values make a repeat within 50 draws vanishingly unlikely.
	if len(seen) != 50 {
		t.Errorf("saw %d distinct ids out of 50 draws", len(seen))
	}
}

func TestGenerateJTI(t *testing.T) {
	a, err := GenerateJTI()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	b, err := GenerateJTI()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if a == b {
		t.Error("consecutive jtis should differ")
	}
	if len(a) != 64 {
		t.Errorf("jti length = %d, want 64 hex characters", len(a))
	}
}
