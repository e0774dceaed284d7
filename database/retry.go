package database

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	retryAttempts   = 3
	retryBaseDelay  = 100 * time.Millisecond
	retryDelayLimit = 2 * time.Second
)

// transientMessages are substrings of driver errors that have no SQLSTATE
// attached but still indicate a connection-level hiccup worth retrying.
var transientMessages = []string{
	"connection refused",
	"connection reset",
	"connection closed",
	"bad connection",
	"broken pipe",
	"no such host",
	"network is unreachable",
	"i/o timeout",
	"eof",
	"too many clients",
	"server is not accepting",
	"connection pool exhausted",
	"temporary failure",
}

// isTransient reports whether retrying the statement can plausibly succeed.
// Constraint violations and syntax errors never clear up on their own;
// serialization failures, deadlocks and connection trouble can.
func isTransient(err error) bool {
	if err == nil ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, sql.ErrNoRows) {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "40001" || pgErr.Code == "40P01" || pgErr.Code == "57P03":
			return true
		case strings.HasPrefix(pgErr.Code, "08"), strings.HasPrefix(pgErr.Code, "53"):
			return true
		default:
			return false
		}
	}

	msg := strings.ToLower(err.Error())
	for _, fragment := range transientMessages {
		if strings.Contains(msg, fragment) {
			return true
		}
	}
	return false
}

// WithRetry runs op up to retryAttempts times with exponential backoff,
// stopping early on success, a non-transient error, or context cancellation.
func WithRetry(ctx context.Context, op func() error) error {
	delay := retryBaseDelay

	var err error
	for attempt := 0; attempt < retryAttempts; attempt++ {
		if err = op(); err == nil || !isTransient(err) {
			return err
		}
		if attempt == retryAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		if delay *= 2; delay > retryDelayLimit {
			delay = retryDelayLimit
		}
	}
	return err
}
