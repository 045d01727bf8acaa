package security

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// GenerateToken returns a hex-encoded random token of byteLen bytes, used for
// password reset and email change confirmation links.
func GenerateToken(byteLen int) (string, error) {
	if byteLen <= 0 {
		return "", fmt.Errorf("byte length must be positive")
	}
	buf := make([]byte, byteLen)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
