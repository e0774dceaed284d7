package lib

import (
	"errors"

	"github.com/uptrace/bun/driver/pgdriver"
)

// Database errors
var (
	ErrConflict = errors.New("conflict")
	ErrNotFound = errors.New("not found")
)

// Auth and token-flow errors. ErrMissingToken is a client-input problem and
// is kept distinct from ErrTokenInvalid (lookup miss) even though both render
// as user-facing failures.
var (
	ErrMissingToken       = errors.New("missing token")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("expired token")
	ErrAccountNotFound    = errors.New("account not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// MapPgError converts driver-level Postgres failures into the sentinel
// errors handlers know how to present.
func MapPgError(err error) error {
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		switch pgErr.Field('C') { // SQLSTATE
		case "23505": // unique_violation
			return ErrConflict
		case "P0002": // no_data_found
			return ErrNotFound
		}
	}
	return err
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrAccountNotFound)
}

func IsUniqueViolation(err error) bool {
	return errors.Is(err, ErrConflict)
}

// GetUserMessage maps an internal error to text safe to show the client.
func GetUserMessage(err error) string {
	switch {
	case errors.Is(err, ErrConflict):
		return "An account with these details already exists"
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrAccountNotFound):
		return "Not found"
	case errors.Is(err, ErrMissingToken):
		return "Missing token"
	case errors.Is(err, ErrTokenInvalid):
		return "Invalid token"
	case errors.Is(err, ErrTokenExpired):
		return "Token has expired"
	case errors.Is(err, ErrInvalidCredentials):
		return "Invalid credentials"
	default:
		return "Something went wrong"
	}
}

// GetDetailForLogging returns the raw error text for log fields only.
func GetDetailForLogging(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
