package aggregates

import (
	"errors"
	"strings"
)

// ErrorCode classifies why a learning operation failed. Transport layers map codes to
// statuses; the write path maps them to retry decisions.
type ErrorCode string

const (
	CodeValidation         ErrorCode = "validation"
	CodeNotFound           ErrorCode = "not_found"
	CodeConflict           ErrorCode = "conflict"
	CodeInvariantViolation ErrorCode = "invariant_violation"
	CodePreconditionFailed ErrorCode = "precondition_failed"
	CodeRetryable          ErrorCode = "retryable"
	CodeUnavailable        ErrorCode = "unavailable"
	CodeInternal           ErrorCode = "internal"
)

// Transient reports whether repeating the same write may succeed. Unavailable is not
// transient here: catalog outages outlast a local backoff window.
func (c ErrorCode) Transient() bool {
	return c == CodeConflict || c == CodeRetryable
}

var (
	// ErrQueueStateMissing: a queue was mutated before the learner entered the theme.
	ErrQueueStateMissing = errors.New("queue state missing")
	// ErrTaskCatalogUnavailable: the task catalog could not be read.
	ErrTaskCatalogUnavailable = errors.New("task catalog unavailable")
)

// Error carries a code and the operation name ("Learning.Queue.MoveToEnd") that raised it.
type Error struct {
	Code    ErrorCode
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	if e.Message != "" {
		b.WriteString(e.Message)
		b.WriteString(" ")
	}
	b.WriteString("[")
	b.WriteString(string(e.Code))
	b.WriteString("]")
	return b.String()
}

func (e *Error) Unwrap() error { return e.Cause }

func NewError(code ErrorCode, op, message string, cause error) error {
	return &Error{
		Code:    code,
		Op:      strings.TrimSpace(op),
		Message: strings.TrimSpace(message),
		Cause:   cause,
	}
}

// Wrap returns nil for a nil err.
func Wrap(code ErrorCode, op string, err error) error {
	if err == nil {
		return nil
	}
	return NewError(code, op, err.Error(), err)
}

func QueueStateMissing(op string) error {
	return NewError(CodePreconditionFailed, op, "enter the theme before mutating its queue", ErrQueueStateMissing)
}

func CatalogUnavailable(op string, cause error) error {
	return NewError(CodeUnavailable, op, "task catalog read failed", errors.Join(ErrTaskCatalogUnavailable, cause))
}

// CodeOf returns "" for errors that never passed through NewError or Wrap.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

func IsCode(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}
