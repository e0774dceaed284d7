package services

import (
	"context"
	"time"

	"atelier_server/lib"
	"atelier_server/structs"
	"atelier_server/structs/tables"

	"github.com/MonkyMars/gecho"
	"github.com/google/uuid"
)

// TokenService implements the verification/reset token flow: issuing
// single-use expiring tokens bound to an email address, and consuming them
// exactly once. A token moves from pending to exactly one of consumed,
// expired or invalid; expired and consumed rows are deleted, so any later
// lookup of the same raw string fails as invalid.
type TokenService struct {
	logger   *gecho.Logger
	cfg      *structs.Config
	tokens   TokenStore
	accounts AccountStore
}

func NewTokenService(logger *gecho.Logger, cfg *structs.Config, tokens TokenStore, accounts AccountStore) *TokenService {
	return &TokenService{
		logger:   logger,
		cfg:      cfg,
		tokens:   tokens,
		accounts: accounts,
	}
}

// Issue creates a fresh token for (email, purpose), superseding any prior
// one. The old token is deleted in the same transaction the new one is
// inserted in, so at most one token per email and purpose is ever live.
// Store failures surface unmasked; there is no other error path.
func (ts *TokenService) Issue(ctx context.Context, email string, purpose tables.TokenPurpose) (*tables.AuthToken, error) {
	raw, err := lib.GenerateRandomToken()
	if err != nil {
		ts.logger.Error("Failed to generate token", gecho.Field("error", err), gecho.Field("purpose", purpose))
		return nil, err
	}

	token := &tables.AuthToken{
		Id:        uuid.New(),
		Email:     email,
		Purpose:   purpose,
		Token:     raw,
		ExpiresAt: time.Now().Add(ts.cfg.Token.TTL),
		CreatedAt: time.Now(),
	}

	token, err = ts.tokens.Upsert(ctx, token)
	if err != nil {
		ts.logger.Error("Failed to store token", gecho.Field("error", err), gecho.Field("purpose", purpose))
		return nil, err
	}

	ts.logger.Debug("Token issued",
		gecho.Field("token_id", token.Id),
		gecho.Field("purpose", purpose),
		gecho.Field("expires_at", token.ExpiresAt),
	)

	return token, nil
}

// FindActiveToken returns the outstanding token for (email, purpose), or
// nil when none exists. Used for resend cooldown checks.
func (ts *TokenService) FindActiveToken(ctx context.Context, email string, purpose tables.TokenPurpose) (*tables.AuthToken, error) {
	return ts.tokens.FindByEmail(ctx, email, purpose)
}

// ConsumeVerification consumes a verify-purpose token and marks the account
// as email-verified. Returns the email the token was bound to.
func (ts *TokenService) ConsumeVerification(ctx context.Context, raw string) (string, error) {
	return ts.consume(ctx, raw, tables.TokenPurposeVerify, func(ctx context.Context, user *tables.User) error {
		return ts.accounts.MarkEmailVerified(ctx, user.Email)
	})
}

// ConsumeReset consumes a reset-purpose token and installs the replacement
// password hash on the account. Returns the email the token was bound to.
func (ts *TokenService) ConsumeReset(ctx context.Context, raw string, passwordHash string) (string, error) {
	return ts.consume(ctx, raw, tables.TokenPurposeReset, func(ctx context.Context, user *tables.User) error {
		return ts.accounts.SetPasswordHash(ctx, user.Email, passwordHash)
	})
}

// consume runs the verifier state machine:
// lookup -> expiry check -> account lookup -> mutation -> delete.
// The delete at the end is what enforces single use.
func (ts *TokenService) consume(ctx context.Context, raw string, purpose tables.TokenPurpose, mutate func(context.Context, *tables.User) error) (string, error) {
	if raw == "" {
		return "", lib.ErrMissingToken
	}

	token, err := ts.tokens.FindByToken(ctx, raw)
	if err != nil {
		ts.logger.Error("Failed to look up token", gecho.Field("error", err))
		return "", err
	}
	if token == nil || token.Purpose != purpose {
		ts.logger.Warn("Unknown or mismatched token presented", gecho.Field("purpose", purpose))
		return "", lib.ErrTokenInvalid
	}

	if token.Expired(time.Now()) {
		// Lazy garbage collection: the row is gone, so a retry of the same
		// link now fails as invalid rather than expired.
		if _, err := ts.tokens.Delete(ctx, token.Id); err != nil {
			ts.logger.Warn("Failed to delete expired token", gecho.Field("error", err), gecho.Field("token_id", token.Id))
		}
		ts.logger.Warn("Expired token presented",
			gecho.Field("token_id", token.Id),
			gecho.Field("expired_at", token.ExpiresAt),
		)
		return "", lib.ErrTokenExpired
	}

	user, err := ts.accounts.FindByEmail(ctx, token.Email)
	if err != nil {
		ts.logger.Error("Failed to look up account for token", gecho.Field("error", err), gecho.Field("token_id", token.Id))
		return "", err
	}
	if user == nil {
		ts.logger.Warn("Token references a missing account", gecho.Field("token_id", token.Id))
		return "", lib.ErrAccountNotFound
	}

	if err := mutate(ctx, user); err != nil {
		ts.logger.Error("Failed to apply token mutation", gecho.Field("error", err), gecho.Field("token_id", token.Id))
		return "", err
	}

	if _, err := ts.tokens.Delete(ctx, token.Id); err != nil {
		ts.logger.Error("Failed to delete consumed token", gecho.Field("error", err), gecho.Field("token_id", token.Id))
		return "", err
	}

	ts.logger.Info("Token consumed", gecho.Field("token_id", token.Id), gecho.Field("purpose", purpose))

	return token.Email, nil
}

// StartSweeper garbage-collects expired tokens on an interval until the
// context is cancelled. Complements the lazy deletion in consume.
func (ts *TokenService) StartSweeper(ctx context.Context) {
	interval := ts.cfg.Token.SweepInterval

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				ts.logger.Info("Token sweeper stopped")
				return
			case <-ticker.C:
				deleted, err := ts.tokens.DeleteExpired(ctx, time.Now())
				if err != nil {
					ts.logger.Error("Token sweep failed", gecho.Field("error", err))
					continue
				}
				if deleted > 0 {
					ts.logger.Info("Swept expired tokens", gecho.Field("deleted", deleted))
				}
			}
		}
	}()
}
