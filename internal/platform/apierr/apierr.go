package apierr

import (
	"errors"
	"fmt"
	"net/http"

	domainagg "github.com/yungbote/learnqueue-backend/internal/domain/aggregates"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// FromError maps an aggregate failure onto an HTTP status and a stable error code.
// Errors that are already *Error pass through.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	if errors.Is(err, domainagg.ErrQueueStateMissing) {
		return New(http.StatusConflict, "queue_state_missing", err)
	}
	if errors.Is(err, domainagg.ErrTaskCatalogUnavailable) {
		return New(http.StatusServiceUnavailable, "task_catalog_unavailable", err)
	}
	switch domainagg.CodeOf(err) {
	case domainagg.CodeValidation:
		return New(http.StatusBadRequest, "validation_failed", err)
	case domainagg.CodeNotFound:
		return New(http.StatusNotFound, "not_found", err)
	case domainagg.CodePreconditionFailed:
		return New(http.StatusConflict, "precondition_failed", err)
	case domainagg.CodeConflict:
		return New(http.StatusConflict, "store_conflict", err)
	case domainagg.CodeRetryable, domainagg.CodeUnavailable:
		return New(http.StatusServiceUnavailable, "temporarily_unavailable", err)
	default:
		return New(http.StatusInternalServerError, "internal_error", err)
	}
}
