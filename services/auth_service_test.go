package services

import (
	"testing"
	"time"

	"atelier_server/lib"
	"atelier_server/structs"
	"atelier_server/structs/tables"

	"github.com/MonkyMars/gecho"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newTestAuthService() *AuthService {
	cfg := &structs.Config{
		Auth: &structs.AuthConfig{
			AccessTokenSecret:  "test_access_secret",
			AccessTokenExpiry:  15 * time.Minute,
			RefreshTokenSecret: "test_refresh_secret",
			RefreshTokenExpiry: 7 * 24 * time.Hour,
		},
	}
	return NewAuthService(gecho.NewDefaultLogger(), cfg, nil, nil)
}

func TestHashAndVerifyPassword(t *testing.T) {
	as := newTestAuthService()

	hash, err := as.HashPassword("correct horse battery staple", DefaultParams)
	require.NoError(t, err)
	require.Contains(t, hash, "$argon2id$v=19$")

	valid, err := as.VerifyPassword("correct horse battery staple", hash)
	require.NoError(t, err)
	require.True(t, valid)

	valid, err = as.VerifyPassword("wrong password", hash)
	require.NoError(t, err)
	require.False(t, valid)
}

func TestHashPasswordProducesUniqueSalts(t *testing.T) {
	as := newTestAuthService()

	first, err := as.HashPassword("same password", DefaultParams)
	require.NoError(t, err)
	second, err := as.HashPassword("same password", DefaultParams)
	require.NoError(t, err)

	require.NotEqual(t, first, second)
}

func TestVerifyPasswordRejectsMalformedHash(t *testing.T) {
	as := newTestAuthService()

	_, err := as.VerifyPassword("anything", "not-a-hash")
	require.Error(t, err)
}

func TestGenerateAndParseAccessToken(t *testing.T) {
	as := newTestAuthService()
	user := &tables.User{
		Id:    uuid.New(),
		Email: "anna@example.com",
		Role:  "user",
	}

	tokenStr, err := as.GenerateAccessToken(user)
	require.NoError(t, err)

	claims, err := lib.ParseToken(tokenStr, as.GetAccessTokenSecret())
	require.NoError(t, err)
	require.Equal(t, user.Id, claims.Sub)
	require.Equal(t, user.Email, claims.Email)
	require.Equal(t, "user", claims.Role)
	require.NotEqual(t, uuid.Nil, claims.Jti)
	require.True(t, claims.Exp.After(time.Now()))
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	as := newTestAuthService()
	user := &tables.User{Id: uuid.New(), Email: "anna@example.com", Role: "user"}

	tokenStr, err := as.GenerateAccessToken(user)
	require.NoError(t, err)

	_, err = lib.ParseToken(tokenStr, "some other secret")
	require.Error(t, err)
}

func TestAccessAndRefreshTokensUseDifferentSecrets(t *testing.T) {
	as := newTestAuthService()
	user := &tables.User{Id: uuid.New(), Email: "anna@example.com", Role: "user"}

	refreshStr, err := as.GenerateRefreshToken(user)
	require.NoError(t, err)

	// A refresh token must not validate against the access secret
	_, err = lib.ParseToken(refreshStr, as.GetAccessTokenSecret())
	require.Error(t, err)

	_, err = lib.ParseToken(refreshStr, as.GetRefreshTokenSecret())
	require.NoError(t, err)
}
