package lib

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateRandomToken(t *testing.T) {
	token, err := GenerateRandomToken()
	require.NoError(t, err)
	require.NotEmpty(t, token)

	// 32 bytes of entropy, URL-safe encoded
	raw, err := base64.URLEncoding.DecodeString(token)
	require.NoError(t, err)
	require.Len(t, raw, 32)
}

func TestGenerateRandomTokenIsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for range 100 {
		token, err := GenerateRandomToken()
		require.NoError(t, err)
		require.False(t, seen[token], "duplicate token generated")
		seen[token] = true
	}
}
