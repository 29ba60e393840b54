package aggregates

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"

	domainagg "github.com/yungbote/learnqueue-backend/internal/domain/aggregates"
)

func TestMapError_Validation(t *testing.T) {
	err := MapError("op", ValidationError("bad input"))
	if !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("expected validation code, got %q (%v)", domainagg.CodeOf(err), err)
	}
}

func TestMapError_Conflict(t *testing.T) {
	err := MapError("op", ConflictError("stale"))
	if !domainagg.IsCode(err, domainagg.CodeConflict) {
		t.Fatalf("expected conflict code, got %q (%v)", domainagg.CodeOf(err), err)
	}
}

func TestMapError_NotFound(t *testing.T) {
	err := MapError("op", gorm.ErrRecordNotFound)
	if !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("expected not_found code, got %q (%v)", domainagg.CodeOf(err), err)
	}
}

func TestMapError_PostgresCodes(t *testing.T) {
	cases := map[string]domainagg.ErrorCode{
		"23505": domainagg.CodeConflict,
		"23503": domainagg.CodePreconditionFailed,
		"40001": domainagg.CodeRetryable,
		"40P01": domainagg.CodeRetryable,
	}
	for sqlState, want := range cases {
		err := MapError("op", &pgconn.PgError{Code: sqlState, Message: "boom"})
		if got := domainagg.CodeOf(err); got != want {
			t.Fatalf("sqlstate %s: want=%s got=%s", sqlState, want, got)
		}
	}
}

func TestMapError_SQLiteMessages(t *testing.T) {
	err := MapError("op", errors.New("UNIQUE constraint failed: queue_item.user_id, queue_item.theme_id, queue_item.position"))
	if !domainagg.IsCode(err, domainagg.CodeConflict) {
		t.Fatalf("sqlite unique: want conflict got %q", domainagg.CodeOf(err))
	}
	err = MapError("op", errors.New("database is locked"))
	if !domainagg.IsCode(err, domainagg.CodeRetryable) {
		t.Fatalf("sqlite busy: want retryable got %q", domainagg.CodeOf(err))
	}
}

func TestMapError_SQLiteTypedErrors(t *testing.T) {
	cases := []struct {
		err  sqlite3.Error
		want domainagg.ErrorCode
	}{
		{sqlite3.Error{Code: sqlite3.ErrBusy}, domainagg.CodeRetryable},
		{sqlite3.Error{Code: sqlite3.ErrLocked}, domainagg.CodeRetryable},
		{sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}, domainagg.CodeConflict},
		{sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintForeignKey}, domainagg.CodePreconditionFailed},
	}
	for _, tc := range cases {
		if got := domainagg.CodeOf(MapError("op", tc.err)); got != tc.want {
			t.Fatalf("sqlite %v/%v: want=%s got=%s", tc.err.Code, tc.err.ExtendedCode, tc.want, got)
		}
	}
}

func TestMapError_QueueStateMissingIsPrecondition(t *testing.T) {
	err := MapError("op", errors.Join(domainagg.ErrQueueStateMissing, errors.New("no row")))
	if !domainagg.IsCode(err, domainagg.CodePreconditionFailed) {
		t.Fatalf("want precondition_failed got %q", domainagg.CodeOf(err))
	}
}

func TestMapError_UnknownIsInternal(t *testing.T) {
	if got := domainagg.CodeOf(MapError("op", errors.New("disk full"))); got != domainagg.CodeInternal {
		t.Fatalf("want internal got %q", got)
	}
}

func TestMapError_PassthroughAggregateError(t *testing.T) {
	in := domainagg.NewError(domainagg.CodeRetryable, "op", "retry", errors.New("boom"))
	out := MapError("other", in)
	if out != in {
		t.Fatalf("expected passthrough aggregate error")
	}
}

func TestMapError_CatalogUnavailable(t *testing.T) {
	err := MapError("op", domainagg.CatalogUnavailable("catalog.count", errors.New("connection refused")))
	if !domainagg.IsCode(err, domainagg.CodeUnavailable) {
		t.Fatalf("expected unavailable code, got %q", domainagg.CodeOf(err))
	}
	if !errors.Is(err, domainagg.ErrTaskCatalogUnavailable) {
		t.Fatalf("expected ErrTaskCatalogUnavailable in chain")
	}
}
