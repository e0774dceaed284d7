package lib

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeArgon2Hash(t *testing.T) {
	// $argon2id$v=19$m=65536,t=1,p=4$<salt>$<hash> with 16-byte salt, 32-byte key
	encoded := "$argon2id$v=19$m=65536,t=1,p=4$c29tZXNhbHRzb21lc2FsdA$aGFzaGhhc2hoYXNoaGFzaGhhc2hoYXNoaGFzaGhhc2g"

	parts, err := DecodeArgon2Hash(encoded)
	require.NoError(t, err)
	require.Equal(t, uint32(65536), parts.Memory)
	require.Equal(t, uint32(1), parts.Time)
	require.Equal(t, uint8(4), parts.Threads)
	require.Len(t, parts.Salt, 16)
	require.Equal(t, uint32(len(parts.Hash)), parts.KeyLen)
}

func TestDecodeArgon2HashRejectsMalformedInput(t *testing.T) {
	cases := []string{
		"",
		"plaintext",
		"$bcrypt$v=19$m=65536,t=1,p=4$salt$hash",
		"$argon2id$v=19$m=65536,t=1,p=4$only-four-parts",
	}

	for _, encoded := range cases {
		_, err := DecodeArgon2Hash(encoded)
		require.Error(t, err, "expected error for %q", encoded)
	}
}

func TestDecodeArgon2HashRejectsWrongVersion(t *testing.T) {
	encoded := "$argon2id$v=16$m=65536,t=1,p=4$c29tZXNhbHRzb21lc2FsdA$aGFzaGhhc2hoYXNoaGFzaA"
	_, err := DecodeArgon2Hash(encoded)
	require.ErrorIs(t, err, ErrIncompatibleVersion)
}

func TestSecureCompare(t *testing.T) {
	require.True(t, SecureCompare([]byte("same"), []byte("same")))
	require.False(t, SecureCompare([]byte("same"), []byte("diff")))
	require.False(t, SecureCompare([]byte("short"), []byte("longer input")))
}
