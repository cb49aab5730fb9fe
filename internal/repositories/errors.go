package repositories

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres error codes used for conflict classification. Duplicate handling
// keys off SQLSTATE, not error-message text.
const (
	uniqueViolationCode      = "23505"
	cardinalityViolationCode = "21000"
)

// IsUniqueViolation reports whether err is a duplicate-key violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

// IsBatchConflict reports whether err is a conflict-class failure of a bulk
// upsert: either a duplicate key, or the same conflict key appearing twice
// within one command.
func IsBatchConflict(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == uniqueViolationCode || pgErr.Code == cardinalityViolationCode
}
