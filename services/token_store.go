package services

import (
	"context"
	"fmt"
	"time"

	"atelier_server/database"
	"atelier_server/structs/tables"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// TokenStore persists outstanding verification/reset tokens. Lookups by raw
// token string are exact-match. Upsert must atomically replace any prior
// token for the same (email, purpose) so that two concurrent issuances can
// never both survive.
type TokenStore interface {
	FindByEmail(ctx context.Context, email string, purpose tables.TokenPurpose) (*tables.AuthToken, error)
	FindByToken(ctx context.Context, raw string) (*tables.AuthToken, error)
	Upsert(ctx context.Context, token *tables.AuthToken) (*tables.AuthToken, error)
	Delete(ctx context.Context, id uuid.UUID) (int, error)
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

type dbTokenStore struct {
	db *database.DB
}

// NewTokenStore returns the Postgres-backed token store.
func NewTokenStore(db *database.DB) TokenStore {
	return &dbTokenStore{db: db}
}

func (s *dbTokenStore) FindByEmail(ctx context.Context, email string, purpose tables.TokenPurpose) (*tables.AuthToken, error) {
	return database.Query[tables.AuthToken](s.db).
		Where("email", email).
		Where("purpose", purpose).
		First(ctx)
}

func (s *dbTokenStore) FindByToken(ctx context.Context, raw string) (*tables.AuthToken, error) {
	return database.Query[tables.AuthToken](s.db).
		Where("token", raw).
		First(ctx)
}

// Upsert deletes any prior token for (email, purpose) and inserts the new
// row inside one transaction. The unique constraint on (email, purpose)
// makes the losing side of a concurrent issuance fail instead of leaving a
// second live token behind.
func (s *dbTokenStore) Upsert(ctx context.Context, token *tables.AuthToken) (*tables.AuthToken, error) {
	err := database.Transaction(s.db, ctx, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewDelete().
			Model((*tables.AuthToken)(nil)).
			Where("email = ?", token.Email).
			Where("purpose = ?", token.Purpose).
			Exec(ctx)
		if err != nil {
			return err
		}

		_, err = tx.NewInsert().Model(token).Exec(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upsert token: %w", err)
	}

	return token, nil
}

func (s *dbTokenStore) Delete(ctx context.Context, id uuid.UUID) (int, error) {
	return database.Query[tables.AuthToken](s.db).
		Where("id", id).
		Delete(ctx)
}

func (s *dbTokenStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	return database.Query[tables.AuthToken](s.db).
		WhereOp("expires_at", "<", now).
		Delete(ctx)
}
