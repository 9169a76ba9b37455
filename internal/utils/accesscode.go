package utils

import (
	"crypto/rand"
	"fmt"
)

// Access codes skip ambiguous characters (0/O, 1/I) since runners type them in
// from a printed email.
const accessCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func GenerateAccessCode(length int) (string, error) {
	if length <= 0 {
		length = 8
	}

	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate access code: %w", err)
	}

	for i, b := range buf {
		buf[i] = accessCodeAlphabet[int(b)%len(accessCodeAlphabet)]
	}
	return string(buf), nil
}
