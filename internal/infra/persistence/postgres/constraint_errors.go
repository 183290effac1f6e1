package postgres

import (
	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// PostgreSQL SQLSTATE codes
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgNotNullViolation    = "23502"
	pgCheckViolation      = "23514"
	pgLockNotAvailable    = "55P03"
	pgQueryCanceled       = "57014"
)

func pgErrorCode(err error) string {
	if pgErr, ok := errors.AsType[*pgconn.PgError](err); ok {
		return pgErr.Code
	}

	return ""
}

func pgConstraintName(err error) string {
	if pgErr, ok := errors.AsType[*pgconn.PgError](err); ok {
		return pgErr.ConstraintName
	}

	return ""
}

// Helper functions for PostgreSQL error checking
func isUniqueConstraintViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) || pgErrorCode(err) == pgUniqueViolation
}

func isForeignKeyConstraintViolation(err error) bool {
	return errors.Is(err, gorm.ErrForeignKeyViolated) || pgErrorCode(err) == pgForeignKeyViolation
}

func isNotNullConstraintViolation(err error) bool {
	return pgErrorCode(err) == pgNotNullViolation
}

func isCheckConstraintViolation(err error) bool {
	return errors.Is(err, gorm.ErrCheckConstraintViolated) || pgErrorCode(err) == pgCheckViolation
}

// isTimeout reports whether the statement was cut short by a deadline.
func isTimeout(err error) bool {
	if errors.IsTimeout(err) {
		return true
	}
	code := pgErrorCode(err)

	return code == pgQueryCanceled || code == pgLockNotAvailable
}

// dbError converts an unexpected driver error into an AppError. Deadline and
// lock timeouts become retryable store timeouts.
func dbError(err error, details string) error {
	if isTimeout(err) {
		return domainerrors.ErrStoreTimeout.WrapMessage(details)
	}

	return domainerrors.NewDatabaseExecuteError(err, details)
}
