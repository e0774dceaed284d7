package services

import (
	"context"

	"atelier_server/database"
	"atelier_server/lib"
	"atelier_server/structs/tables"
)

// AccountStore is the slice of the user table the token flow needs: lookup
// by email plus the two purpose-specific mutations a consumed token applies.
type AccountStore interface {
	FindByEmail(ctx context.Context, email string) (*tables.User, error)
	MarkEmailVerified(ctx context.Context, email string) error
	SetPasswordHash(ctx context.Context, email, hash string) error
}

type dbAccountStore struct {
	db *database.DB
}

// NewAccountStore returns the Postgres-backed account store.
func NewAccountStore(db *database.DB) AccountStore {
	return &dbAccountStore{db: db}
}

func (s *dbAccountStore) FindByEmail(ctx context.Context, email string) (*tables.User, error) {
	user, err := database.Query[tables.User](s.db).
		Where("email", email).
		First(ctx)
	if err != nil {
		return nil, lib.MapPgError(err)
	}
	return user, nil
}

func (s *dbAccountStore) MarkEmailVerified(ctx context.Context, email string) error {
	_, err := database.Query[tables.User](s.db).
		Where("email", email).
		Update(ctx, map[string]any{
			"email_verified": true,
		})
	if err != nil {
		return lib.MapPgError(err)
	}
	return nil
}

func (s *dbAccountStore) SetPasswordHash(ctx context.Context, email, hash string) error {
	_, err := database.Query[tables.User](s.db).
		Where("email", email).
		Update(ctx, map[string]any{
			"password_hash": hash,
		})
	if err != nil {
		return lib.MapPgError(err)
	}
	return nil
}
