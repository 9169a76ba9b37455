package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
)

// GenerateClaimToken returns a 32-hex-char token used as the opaque claim key
// and the last path segment of the public claim URL.
func GenerateClaimToken() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

// GenerateQRCodeImage renders content into a PNG under dirPath and returns the
// generated filename.
func GenerateQRCodeImage(content, dirPath string) (string, error) {
	if err := os.MkdirAll(dirPath, 0755); err != nil {
		return "", fmt.Errorf("failed to create QR directory: %w", err)
	}

	filename := fmt.Sprintf("%s.png", uuid.New().String())
	fullPath := filepath.Join(dirPath, filename)

	if err := qrcode.WriteFile(content, qrcode.Medium, 256, fullPath); err != nil {
		return "", fmt.Errorf("failed to generate QR code: %w", err)
	}

	return filename, nil
}

// EncodeQRCodePNG renders content to PNG bytes for inlining into emails.
func EncodeQRCodePNG(content string) ([]byte, error) {
	png, err := qrcode.Encode(content, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR code: %w", err)
	}
	return png, nil
}
