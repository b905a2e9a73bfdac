package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	pgUniqueViolation      = "23505"
	pgCheckViolation       = "23514"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func IsUniqueViolation(err error) bool {
	return hasCode(err, pgUniqueViolation)
}

func IsCheckViolation(err error) bool {
	return hasCode(err, pgCheckViolation)
}

// IsRetryable reports contention errors that succeed when the transaction is run again.
func IsRetryable(err error) bool {
	return hasCode(err, pgSerializationFailure) || hasCode(err, pgDeadlockDetected)
}

func hasCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
