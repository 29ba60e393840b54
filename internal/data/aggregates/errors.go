package aggregates

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"

	domainagg "github.com/yungbote/learnqueue-backend/internal/domain/aggregates"
)

var (
	ErrValidation = errors.New("aggregate validation")
	ErrInvariant  = errors.New("aggregate invariant violation")
	// ErrConflict marks a lost race on a row or unique slot; the whole unit may be retried.
	ErrConflict  = errors.New("aggregate conflict")
	ErrRetryable = errors.New("aggregate retryable")
)

func tagged(sentinel error, msg string) error {
	return errors.Join(sentinel, errors.New(strings.TrimSpace(msg)))
}

func ValidationError(msg string) error { return tagged(ErrValidation, msg) }
func InvariantError(msg string) error  { return tagged(ErrInvariant, msg) }
func ConflictError(msg string) error   { return tagged(ErrConflict, msg) }
func RetryableError(msg string) error  { return tagged(ErrRetryable, msg) }

// classifier reports the aggregate code for err, or false when it has no opinion.
type classifier func(err error) (domainagg.ErrorCode, bool)

var classifiers = []classifier{
	sentinelCode,
	postgresCode,
	sqliteCode,
	messageCode,
}

// MapError converts store and domain failures into a *domainagg.Error tagged with op.
// Errors that already carry an aggregate code pass through unchanged.
func MapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var aggErr *domainagg.Error
	if errors.As(err, &aggErr) {
		return err
	}
	for _, classify := range classifiers {
		if code, ok := classify(err); ok {
			return domainagg.Wrap(code, op, err)
		}
	}
	return domainagg.Wrap(domainagg.CodeInternal, op, err)
}

func sentinelCode(err error) (domainagg.ErrorCode, bool) {
	switch {
	case errors.Is(err, ErrValidation):
		return domainagg.CodeValidation, true
	case errors.Is(err, ErrInvariant):
		return domainagg.CodeInvariantViolation, true
	case errors.Is(err, ErrConflict), errors.Is(err, gorm.ErrDuplicatedKey):
		return domainagg.CodeConflict, true
	case errors.Is(err, ErrRetryable),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return domainagg.CodeRetryable, true
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domainagg.CodeNotFound, true
	case errors.Is(err, domainagg.ErrQueueStateMissing):
		return domainagg.CodePreconditionFailed, true
	case errors.Is(err, domainagg.ErrTaskCatalogUnavailable):
		return domainagg.CodeUnavailable, true
	}
	return "", false
}

func postgresCode(err error) (domainagg.ErrorCode, bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return "", false
	}
	switch strings.TrimSpace(pgErr.Code) {
	case "23505": // unique_violation
		return domainagg.CodeConflict, true
	case "23503": // foreign_key_violation
		return domainagg.CodePreconditionFailed, true
	case "40001", "40P01", "55P03": // serialization_failure, deadlock_detected, lock_not_available
		return domainagg.CodeRetryable, true
	}
	return "", false
}

func sqliteCode(err error) (domainagg.ErrorCode, bool) {
	var sqErr sqlite3.Error
	if !errors.As(err, &sqErr) {
		return "", false
	}
	switch {
	case sqErr.Code == sqlite3.ErrBusy, sqErr.Code == sqlite3.ErrLocked:
		return domainagg.CodeRetryable, true
	case sqErr.ExtendedCode == sqlite3.ErrConstraintUnique,
		sqErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey:
		return domainagg.CodeConflict, true
	case sqErr.ExtendedCode == sqlite3.ErrConstraintForeignKey:
		return domainagg.CodePreconditionFailed, true
	}
	return "", false
}

// messageCode is the last resort for drivers that flatten errors into strings.
func messageCode(err error) (domainagg.ErrorCode, bool) {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "duplicate key"),
		strings.Contains(msg, "unique constraint failed"):
		return domainagg.CodeConflict, true
	case strings.Contains(msg, "deadlock"),
		strings.Contains(msg, "could not serialize"),
		strings.Contains(msg, "database is locked"),
		strings.Contains(msg, "database table is locked"):
		return domainagg.CodeRetryable, true
	}
	return "", false
}
