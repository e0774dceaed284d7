package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"atelier_server/services"
	"atelier_server/structs"
	"atelier_server/structs/tables"

	"github.com/MonkyMars/gecho"
	"github.com/google/uuid"
	"github.com/resend/resend-go/v3"
	"github.com/stretchr/testify/require"
)

// memTokens is an in-memory token store tracking how often it was queried.
type memTokens struct {
	tokens  map[uuid.UUID]*tables.AuthToken
	lookups int
}

func newMemTokens() *memTokens {
	return &memTokens{tokens: make(map[uuid.UUID]*tables.AuthToken)}
}

func (s *memTokens) FindByEmail(_ context.Context, email string, purpose tables.TokenPurpose) (*tables.AuthToken, error) {
	for _, t := range s.tokens {
		if t.Email == email && t.Purpose == purpose {
			return t, nil
		}
	}
	return nil, nil
}

func (s *memTokens) FindByToken(_ context.Context, raw string) (*tables.AuthToken, error) {
	s.lookups++
	for _, t := range s.tokens {
		if t.Token == raw {
			return t, nil
		}
	}
	return nil, nil
}

func (s *memTokens) Upsert(_ context.Context, token *tables.AuthToken) (*tables.AuthToken, error) {
	for id, t := range s.tokens {
		if t.Email == token.Email && t.Purpose == token.Purpose {
			delete(s.tokens, id)
		}
	}
	s.tokens[token.Id] = token
	return token, nil
}

func (s *memTokens) Delete(_ context.Context, id uuid.UUID) (int, error) {
	if _, ok := s.tokens[id]; !ok {
		return 0, nil
	}
	delete(s.tokens, id)
	return 1, nil
}

func (s *memTokens) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	deleted := 0
	for id, t := range s.tokens {
		if t.Expired(now) {
			delete(s.tokens, id)
			deleted++
		}
	}
	return deleted, nil
}

func (s *memTokens) countFor(purpose tables.TokenPurpose) int {
	count := 0
	for _, t := range s.tokens {
		if t.Purpose == purpose {
			count++
		}
	}
	return count
}

// memAccounts is an in-memory account store.
type memAccounts struct {
	users map[string]*tables.User
}

func newMemAccounts(emails ...string) *memAccounts {
	s := &memAccounts{users: make(map[string]*tables.User)}
	for _, email := range emails {
		s.users[email] = &tables.User{Id: uuid.New(), Email: email, Role: "user"}
	}
	return s
}

func (s *memAccounts) FindByEmail(_ context.Context, email string) (*tables.User, error) {
	return s.users[email], nil
}

func (s *memAccounts) MarkEmailVerified(_ context.Context, email string) error {
	if user, ok := s.users[email]; ok {
		user.EmailVerified = true
	}
	return nil
}

func (s *memAccounts) SetPasswordHash(_ context.Context, email, hash string) error {
	if user, ok := s.users[email]; ok {
		user.PasswordHash = hash
	}
	return nil
}

// recordingSender captures outgoing mail instead of delivering it.
type recordingSender struct {
	sent []*resend.SendEmailRequest
	err  error
}

func (s *recordingSender) Send(params *resend.SendEmailRequest) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, params)
	return nil
}

type testHarness struct {
	manager  *AuthRoutesManager
	tokens   *memTokens
	accounts *memAccounts
	sender   *recordingSender
	service  *services.TokenService
}

func newTestHarness(emails ...string) *testHarness {
	cfg := &structs.Config{
		Server: &structs.ServerConfig{
			FrontendURL: "https://atelier-market.com",
		},
		Auth: &structs.AuthConfig{
			AccessTokenSecret:  "test_access_secret",
			AccessTokenExpiry:  15 * time.Minute,
			RefreshTokenSecret: "test_refresh_secret",
			RefreshTokenExpiry: 7 * 24 * time.Hour,
		},
		Email: &structs.EmailConfig{
			From:         "support@atelier-market.com",
			SupportEmail: "support@atelier-market.com",
		},
		Token: &structs.TokenConfig{
			TTL:            time.Hour,
			SweepInterval:  time.Minute,
			ResendCooldown: 2 * time.Minute,
		},
	}

	logger := gecho.NewDefaultLogger()
	tokens := newMemTokens()
	accounts := newMemAccounts(emails...)
	sender := &recordingSender{}

	tokenService := services.NewTokenService(logger, cfg, tokens, accounts)
	emailService := services.NewEmailService(logger, cfg, sender)
	authService := services.NewAuthService(logger, cfg, nil, nil)

	manager := NewAuthRoutesManager(logger, authService, tokenService, emailService, nil, accounts, cfg, nil)

	return &testHarness{
		manager:  manager,
		tokens:   tokens,
		accounts: accounts,
		sender:   sender,
		service:  tokenService,
	}
}

func postJSON(path, body string) *http.Request {
	r := httptest.NewRequest("POST", path, strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	return r
}

func TestHandleResetExistingAccount(t *testing.T) {
	h := newTestHarness("anna@example.com")

	rec := httptest.NewRecorder()
	h.manager.HandleReset(rec, postJSON("/auth/reset", `{"email":"anna@example.com"}`))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Reset email sent!")

	require.Equal(t, 1, h.tokens.countFor(tables.TokenPurposeReset))
	require.Len(t, h.sender.sent, 1)
	require.Contains(t, h.sender.sent[0].Html, "/auth/new-password?token=")
}

func TestHandleResetUnknownAccount(t *testing.T) {
	h := newTestHarness("anna@example.com")

	rec := httptest.NewRecorder()
	h.manager.HandleReset(rec, postJSON("/auth/reset", `{"email":"ghost@example.com"}`))

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "Email not found")

	// No token issued, nothing sent
	require.Equal(t, 0, h.tokens.countFor(tables.TokenPurposeReset))
	require.Empty(t, h.sender.sent)
}

func TestHandleResetInvalidEmail(t *testing.T) {
	h := newTestHarness("anna@example.com")

	rec := httptest.NewRecorder()
	h.manager.HandleReset(rec, postJSON("/auth/reset", `{"email":"not-an-email"}`))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Empty(t, h.sender.sent)
}

func TestHandleResetMailFailureKeepsToken(t *testing.T) {
	h := newTestHarness("anna@example.com")
	h.sender.err = errors.New("resend: 500 internal error")

	rec := httptest.NewRecorder()
	h.manager.HandleReset(rec, postJSON("/auth/reset", `{"email":"anna@example.com"}`))

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	// The issued token survives the delivery failure
	require.Equal(t, 1, h.tokens.countFor(tables.TokenPurposeReset))
}

func TestHandleNewVerificationMissingToken(t *testing.T) {
	h := newTestHarness("anna@example.com")

	rec := httptest.NewRecorder()
	h.manager.HandleNewVerification(rec, httptest.NewRequest("GET", "/auth/new-verification", nil))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "Missing token")

	// A missing parameter never reaches the token store
	require.Equal(t, 0, h.tokens.lookups)
}

func TestHandleNewVerificationSuccess(t *testing.T) {
	h := newTestHarness("anna@example.com")

	token, err := h.service.Issue(context.Background(), "anna@example.com", tables.TokenPurposeVerify)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.manager.HandleNewVerification(rec, httptest.NewRequest("GET", "/auth/new-verification?token="+token.Token, nil))

	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "https://atelier-market.com/email-verified?status=ok", rec.Header().Get("Location"))
	require.True(t, h.accounts.users["anna@example.com"].EmailVerified)

	// The link is single use
	rec = httptest.NewRecorder()
	h.manager.HandleNewVerification(rec, httptest.NewRequest("GET", "/auth/new-verification?token="+token.Token, nil))

	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "https://atelier-market.com/email-verified?status=invalid", rec.Header().Get("Location"))
}

func TestHandleNewVerificationExpiredToken(t *testing.T) {
	h := newTestHarness("anna@example.com")

	token, err := h.service.Issue(context.Background(), "anna@example.com", tables.TokenPurposeVerify)
	require.NoError(t, err)
	token.ExpiresAt = time.Now().Add(-time.Minute)

	rec := httptest.NewRecorder()
	h.manager.HandleNewVerification(rec, httptest.NewRequest("GET", "/auth/new-verification?token="+token.Token, nil))

	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "https://atelier-market.com/email-verified?status=expired", rec.Header().Get("Location"))
	require.False(t, h.accounts.users["anna@example.com"].EmailVerified)
}

func TestHandleNewPasswordSuccess(t *testing.T) {
	h := newTestHarness("anna@example.com")

	token, err := h.service.Issue(context.Background(), "anna@example.com", tables.TokenPurposeReset)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.manager.HandleNewPassword(rec, postJSON("/auth/new-password", `{"token":"`+token.Token+`","password":"new password 1234"}`))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Password updated!")
	require.Contains(t, h.accounts.users["anna@example.com"].PasswordHash, "$argon2id$")

	// Consumed, so replaying the same token fails
	rec = httptest.NewRecorder()
	h.manager.HandleNewPassword(rec, postJSON("/auth/new-password", `{"token":"`+token.Token+`","password":"another password"}`))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "Invalid token")
}

func TestHandleNewPasswordUnknownToken(t *testing.T) {
	h := newTestHarness("anna@example.com")

	rec := httptest.NewRecorder()
	h.manager.HandleNewPassword(rec, postJSON("/auth/new-password", `{"token":"never-issued","password":"new password 1234"}`))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "Invalid token")
}

func TestHandleNewPasswordExpiredToken(t *testing.T) {
	h := newTestHarness("anna@example.com")

	token, err := h.service.Issue(context.Background(), "anna@example.com", tables.TokenPurposeReset)
	require.NoError(t, err)
	token.ExpiresAt = time.Now().Add(-time.Minute)

	rec := httptest.NewRecorder()
	h.manager.HandleNewPassword(rec, postJSON("/auth/new-password", `{"token":"`+token.Token+`","password":"new password 1234"}`))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "Token has expired")
	require.Empty(t, h.accounts.users["anna@example.com"].PasswordHash)
}

func TestHandleNewPasswordValidation(t *testing.T) {
	h := newTestHarness("anna@example.com")

	// Missing token field entirely
	rec := httptest.NewRecorder()
	h.manager.HandleNewPassword(rec, postJSON("/auth/new-password", `{"password":"new password 1234"}`))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// Password too short
	rec = httptest.NewRecorder()
	h.manager.HandleNewPassword(rec, postJSON("/auth/new-password", `{"token":"x","password":"short"}`))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleResendVerificationUnknownEmail(t *testing.T) {
	h := newTestHarness("anna@example.com")

	rec := httptest.NewRecorder()
	h.manager.HandleResendVerification(rec, postJSON("/auth/resend-verification", `{"email":"ghost@example.com"}`))

	// Enumeration-safe: success either way, but nothing sent
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, h.sender.sent)
}

func TestHandleResendVerificationCooldown(t *testing.T) {
	h := newTestHarness("anna@example.com")

	_, err := h.service.Issue(context.Background(), "anna@example.com", tables.TokenPurposeVerify)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.manager.HandleResendVerification(rec, postJSON("/auth/resend-verification", `{"email":"anna@example.com"}`))

	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Empty(t, h.sender.sent)
}

func TestHandleResendVerificationReissues(t *testing.T) {
	h := newTestHarness("anna@example.com")

	old, err := h.service.Issue(context.Background(), "anna@example.com", tables.TokenPurposeVerify)
	require.NoError(t, err)
	old.CreatedAt = time.Now().Add(-10 * time.Minute)

	rec := httptest.NewRecorder()
	h.manager.HandleResendVerification(rec, postJSON("/auth/resend-verification", `{"email":"anna@example.com"}`))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, h.sender.sent, 1)

	// Only the fresh token survives, and the old link is dead
	require.Equal(t, 1, h.tokens.countFor(tables.TokenPurposeVerify))
	require.NotContains(t, h.sender.sent[0].Html, old.Token)

	_, err = h.service.ConsumeVerification(context.Background(), old.Token)
	require.Error(t, err)
}

func TestHandleResendVerificationAlreadyVerified(t *testing.T) {
	h := newTestHarness("anna@example.com")
	h.accounts.users["anna@example.com"].EmailVerified = true

	rec := httptest.NewRecorder()
	h.manager.HandleResendVerification(rec, postJSON("/auth/resend-verification", `{"email":"anna@example.com"}`))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "already verified")
	require.Empty(t, h.sender.sent)
}
