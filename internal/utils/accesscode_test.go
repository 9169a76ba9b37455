package utils

import (
	"strings"
	"testing"
)

func TestGenerateAccessCode(t *testing.T) {
	code, err := GenerateAccessCode(8)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if len(code) != 8 {
		t.Errorf("expected 8 chars, got %d", len(code))
	}
	for _, c := range code {
		if !strings.ContainsRune(accessCodeAlphabet, c) {
			t.Errorf("character %q outside alphabet", c)
		}
	}
}

// Ambiguous characters never appear; runners retype these from an email.
func TestGenerateAccessCodeAlphabet(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := GenerateAccessCode(8)
		if err != nil {
			t.Fatal(err)
		}
		if strings.ContainsAny(code, "0O1I") {
			t.Fatalf("code %q contains an ambiguous character", code)
		}
	}
}

func TestGenerateAccessCodeDefaultLength(t *testing.T) {
	code, err := GenerateAccessCode(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(code) != 8 {
		t.Errorf("expected default length 8, got %d", len(code))
	}
}

func TestGenerateClaimToken(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token := GenerateClaimToken()
		if len(token) != 32 {
			t.Fatalf("token %q is not 32 chars", token)
		}
		if strings.Contains(token, "-") {
			t.Fatalf("token %q contains a dash", token)
		}
		if seen[token] {
			t.Fatalf("duplicate token %q", token)
		}
		seen[token] = true
	}
}
