package store

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/feral-file/ff-market-sync/internal/domain"
)

// PostgreSQL error codes of the transient contention class
const (
	pgCodeUniqueViolation      = "23505"
	pgCodeSerializationFailure = "40001"
	pgCodeDeadlockDetected     = "40P01"
)

// IsTransientContention reports whether err is caused by concurrent writers on the same rows:
// a deadlock, a unique constraint violation, a serialization failure or an aggregate version mismatch.
// Such errors are expected to succeed when the operation is retried against fresh state.
func IsTransientContention(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, domain.ErrVersionMismatch) || errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgCodeUniqueViolation, pgCodeSerializationFailure, pgCodeDeadlockDetected:
			return true
		}
	}
	return false
}
