package tables

import (
	"time"

	"github.com/google/uuid"
)

// TokenPurpose discriminates what consuming a token is allowed to do.
// Uniqueness per email is independent per purpose.
type TokenPurpose string

const (
	TokenPurposeVerify TokenPurpose = "verify"
	TokenPurposeReset  TokenPurpose = "reset"
)

// AuthToken is a single-use, expiring credential proving control of an email
// address. The (email, purpose) pair is unique among live rows so concurrent
// issuance cannot leave two valid tokens behind; the raw token string is
// unique on its own.
type AuthToken struct {
	tableName struct{}     `bun:"table:auth_tokens,alias:at"`
	Id        uuid.UUID    `bun:"id,pk,type:uuid" json:"id"`
	Email     string       `bun:"email,notnull,unique:auth_tokens_email_purpose" json:"email"`
	Purpose   TokenPurpose `bun:"purpose,notnull,unique:auth_tokens_email_purpose" json:"purpose"`
	Token     string       `bun:"token,notnull,unique" json:"-"`
	ExpiresAt time.Time    `bun:"expires_at,notnull" json:"expires_at"`
	CreatedAt time.Time    `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}

// Expired reports whether the token is past its TTL at the given instant.
func (t *AuthToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
