package services

import (
	"context"
	"testing"
	"time"

	"atelier_server/lib"
	"atelier_server/structs"
	"atelier_server/structs/tables"

	"github.com/MonkyMars/gecho"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// memTokenStore is an in-memory TokenStore with the same upsert semantics as
// the Postgres one: at most one token per (email, purpose).
type memTokenStore struct {
	tokens map[uuid.UUID]*tables.AuthToken
}

func newMemTokenStore() *memTokenStore {
	return &memTokenStore{tokens: make(map[uuid.UUID]*tables.AuthToken)}
}

func (s *memTokenStore) FindByEmail(_ context.Context, email string, purpose tables.TokenPurpose) (*tables.AuthToken, error) {
	for _, t := range s.tokens {
		if t.Email == email && t.Purpose == purpose {
			return t, nil
		}
	}
	return nil, nil
}

func (s *memTokenStore) FindByToken(_ context.Context, raw string) (*tables.AuthToken, error) {
	for _, t := range s.tokens {
		if t.Token == raw {
			return t, nil
		}
	}
	return nil, nil
}

func (s *memTokenStore) Upsert(_ context.Context, token *tables.AuthToken) (*tables.AuthToken, error) {
	for id, t := range s.tokens {
		if t.Email == token.Email && t.Purpose == token.Purpose {
			delete(s.tokens, id)
		}
	}
	s.tokens[token.Id] = token
	return token, nil
}

func (s *memTokenStore) Delete(_ context.Context, id uuid.UUID) (int, error) {
	if _, ok := s.tokens[id]; !ok {
		return 0, nil
	}
	delete(s.tokens, id)
	return 1, nil
}

func (s *memTokenStore) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	deleted := 0
	for id, t := range s.tokens {
		if t.Expired(now) {
			delete(s.tokens, id)
			deleted++
		}
	}
	return deleted, nil
}

func (s *memTokenStore) countFor(email string, purpose tables.TokenPurpose) int {
	count := 0
	for _, t := range s.tokens {
		if t.Email == email && t.Purpose == purpose {
			count++
		}
	}
	return count
}

// memAccountStore records the mutations a consumed token applies.
type memAccountStore struct {
	users    map[string]*tables.User
	verified map[string]bool
	hashes   map[string]string
}

func newMemAccountStore(emails ...string) *memAccountStore {
	s := &memAccountStore{
		users:    make(map[string]*tables.User),
		verified: make(map[string]bool),
		hashes:   make(map[string]string),
	}
	for _, email := range emails {
		s.users[email] = &tables.User{Id: uuid.New(), Email: email}
	}
	return s
}

func (s *memAccountStore) FindByEmail(_ context.Context, email string) (*tables.User, error) {
	return s.users[email], nil
}

func (s *memAccountStore) MarkEmailVerified(_ context.Context, email string) error {
	s.verified[email] = true
	return nil
}

func (s *memAccountStore) SetPasswordHash(_ context.Context, email, hash string) error {
	s.hashes[email] = hash
	return nil
}

func newTestTokenService(tokens TokenStore, accounts AccountStore) *TokenService {
	cfg := &structs.Config{
		Token: &structs.TokenConfig{
			TTL:            time.Hour,
			SweepInterval:  time.Minute,
			ResendCooldown: 2 * time.Minute,
		},
	}
	return NewTokenService(gecho.NewDefaultLogger(), cfg, tokens, accounts)
}

func TestIssueCreatesSingleActiveToken(t *testing.T) {
	ctx := context.Background()
	tokens := newMemTokenStore()
	accounts := newMemAccountStore("anna@example.com")
	ts := newTestTokenService(tokens, accounts)

	token, err := ts.Issue(ctx, "anna@example.com", tables.TokenPurposeVerify)
	require.NoError(t, err)
	require.NotEmpty(t, token.Token)
	require.Equal(t, "anna@example.com", token.Email)
	require.True(t, token.ExpiresAt.After(time.Now()))

	require.Equal(t, 1, tokens.countFor("anna@example.com", tables.TokenPurposeVerify))
}

func TestReissueInvalidatesPreviousToken(t *testing.T) {
	ctx := context.Background()
	tokens := newMemTokenStore()
	accounts := newMemAccountStore("anna@example.com")
	ts := newTestTokenService(tokens, accounts)

	first, err := ts.Issue(ctx, "anna@example.com", tables.TokenPurposeVerify)
	require.NoError(t, err)

	second, err := ts.Issue(ctx, "anna@example.com", tables.TokenPurposeVerify)
	require.NoError(t, err)
	require.NotEqual(t, first.Token, second.Token)

	// Only the newest token survives
	require.Equal(t, 1, tokens.countFor("anna@example.com", tables.TokenPurposeVerify))

	// The superseded raw string no longer resolves
	_, err = ts.ConsumeVerification(ctx, first.Token)
	require.ErrorIs(t, err, lib.ErrTokenInvalid)

	// The newest one does
	email, err := ts.ConsumeVerification(ctx, second.Token)
	require.NoError(t, err)
	require.Equal(t, "anna@example.com", email)
}

func TestIssueSeparatePurposesCoexist(t *testing.T) {
	ctx := context.Background()
	tokens := newMemTokenStore()
	accounts := newMemAccountStore("anna@example.com")
	ts := newTestTokenService(tokens, accounts)

	_, err := ts.Issue(ctx, "anna@example.com", tables.TokenPurposeVerify)
	require.NoError(t, err)
	_, err = ts.Issue(ctx, "anna@example.com", tables.TokenPurposeReset)
	require.NoError(t, err)

	require.Equal(t, 1, tokens.countFor("anna@example.com", tables.TokenPurposeVerify))
	require.Equal(t, 1, tokens.countFor("anna@example.com", tables.TokenPurposeReset))
}

func TestConsumeVerificationMarksAccount(t *testing.T) {
	ctx := context.Background()
	tokens := newMemTokenStore()
	accounts := newMemAccountStore("anna@example.com")
	ts := newTestTokenService(tokens, accounts)

	token, err := ts.Issue(ctx, "anna@example.com", tables.TokenPurposeVerify)
	require.NoError(t, err)

	email, err := ts.ConsumeVerification(ctx, token.Token)
	require.NoError(t, err)
	require.Equal(t, "anna@example.com", email)
	require.True(t, accounts.verified["anna@example.com"])

	// Single use: second attempt with the same raw string fails
	_, err = ts.ConsumeVerification(ctx, token.Token)
	require.ErrorIs(t, err, lib.ErrTokenInvalid)
}

func TestConsumeResetInstallsNewHash(t *testing.T) {
	ctx := context.Background()
	tokens := newMemTokenStore()
	accounts := newMemAccountStore("anna@example.com")
	ts := newTestTokenService(tokens, accounts)

	token, err := ts.Issue(ctx, "anna@example.com", tables.TokenPurposeReset)
	require.NoError(t, err)

	email, err := ts.ConsumeReset(ctx, token.Token, "$argon2id$new-hash")
	require.NoError(t, err)
	require.Equal(t, "anna@example.com", email)
	require.Equal(t, "$argon2id$new-hash", accounts.hashes["anna@example.com"])

	require.Equal(t, 0, tokens.countFor("anna@example.com", tables.TokenPurposeReset))
}

func TestConsumeExpiredTokenDeletesRecord(t *testing.T) {
	ctx := context.Background()
	tokens := newMemTokenStore()
	accounts := newMemAccountStore("anna@example.com")
	ts := newTestTokenService(tokens, accounts)

	token, err := ts.Issue(ctx, "anna@example.com", tables.TokenPurposeVerify)
	require.NoError(t, err)

	// Force the token past its deadline
	token.ExpiresAt = time.Now().Add(-time.Minute)

	_, err = ts.ConsumeVerification(ctx, token.Token)
	require.ErrorIs(t, err, lib.ErrTokenExpired)

	// The record is gone, so a retry of the same link is invalid, not expired
	_, err = ts.ConsumeVerification(ctx, token.Token)
	require.ErrorIs(t, err, lib.ErrTokenInvalid)

	require.False(t, accounts.verified["anna@example.com"])
}

func TestConsumeUnknownTokenIsInvalid(t *testing.T) {
	ctx := context.Background()
	ts := newTestTokenService(newMemTokenStore(), newMemAccountStore())

	_, err := ts.ConsumeVerification(ctx, "never-issued")
	require.ErrorIs(t, err, lib.ErrTokenInvalid)
}

func TestConsumeWrongPurposeIsInvalid(t *testing.T) {
	ctx := context.Background()
	tokens := newMemTokenStore()
	accounts := newMemAccountStore("anna@example.com")
	ts := newTestTokenService(tokens, accounts)

	token, err := ts.Issue(ctx, "anna@example.com", tables.TokenPurposeReset)
	require.NoError(t, err)

	// A reset token cannot verify an email
	_, err = ts.ConsumeVerification(ctx, token.Token)
	require.ErrorIs(t, err, lib.ErrTokenInvalid)

	// The token is still there for its real purpose
	require.Equal(t, 1, tokens.countFor("anna@example.com", tables.TokenPurposeReset))
}

func TestConsumeMissingTokenIsDistinct(t *testing.T) {
	ctx := context.Background()
	ts := newTestTokenService(newMemTokenStore(), newMemAccountStore())

	_, err := ts.ConsumeVerification(ctx, "")
	require.ErrorIs(t, err, lib.ErrMissingToken)
	require.NotErrorIs(t, err, lib.ErrTokenInvalid)
}

func TestConsumeWithoutAccountFails(t *testing.T) {
	ctx := context.Background()
	tokens := newMemTokenStore()
	accounts := newMemAccountStore() // no users at all
	ts := newTestTokenService(tokens, accounts)

	token, err := ts.Issue(ctx, "ghost@example.com", tables.TokenPurposeVerify)
	require.NoError(t, err)

	_, err = ts.ConsumeVerification(ctx, token.Token)
	require.ErrorIs(t, err, lib.ErrAccountNotFound)
}

func TestFindActiveToken(t *testing.T) {
	ctx := context.Background()
	tokens := newMemTokenStore()
	accounts := newMemAccountStore("anna@example.com")
	ts := newTestTokenService(tokens, accounts)

	found, err := ts.FindActiveToken(ctx, "anna@example.com", tables.TokenPurposeVerify)
	require.NoError(t, err)
	require.Nil(t, found)

	issued, err := ts.Issue(ctx, "anna@example.com", tables.TokenPurposeVerify)
	require.NoError(t, err)

	found, err = ts.FindActiveToken(ctx, "anna@example.com", tables.TokenPurposeVerify)
	require.NoError(t, err)
	require.NotNil(t, found)
	require.Equal(t, issued.Id, found.Id)
}

func TestDeleteExpiredSweepsOnlyStaleTokens(t *testing.T) {
	ctx := context.Background()
	tokens := newMemTokenStore()
	accounts := newMemAccountStore("anna@example.com", "ben@example.com")
	ts := newTestTokenService(tokens, accounts)

	stale, err := ts.Issue(ctx, "anna@example.com", tables.TokenPurposeVerify)
	require.NoError(t, err)
	stale.ExpiresAt = time.Now().Add(-time.Hour)

	fresh, err := ts.Issue(ctx, "ben@example.com", tables.TokenPurposeVerify)
	require.NoError(t, err)

	deleted, err := tokens.DeleteExpired(ctx, time.Now())
	require.NoError(t, err)
	require.Equal(t, 1, deleted)

	_, err = ts.ConsumeVerification(ctx, fresh.Token)
	require.NoError(t, err)
}
