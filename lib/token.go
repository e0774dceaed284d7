package lib

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

const randomTokenBytes = 32

// GenerateRandomToken draws 32 bytes from the CSPRNG and encodes them
// URL-safe, so the result can ride in a query parameter unescaped.
func GenerateRandomToken() (string, error) {
	buf := make([]byte, randomTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}

	return base64.URLEncoding.EncodeToString(buf), nil
}
