package aggregates

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	domainagg "github.com/yungbote/learnqueue-backend/internal/domain/aggregates"
	"github.com/yungbote/learnqueue-backend/internal/platform/dbctx"
	"github.com/yungbote/learnqueue-backend/internal/platform/logger"
)

const (
	tracerName    = "github.com/yungbote/learnqueue-backend/internal/data/aggregates"
	statusSuccess = "success"
)

// RetryPolicy bounds local retries of conflict and retryable store failures.
// MaxTries counts every attempt, so 1 disables retrying.
type RetryPolicy struct {
	MaxTries        uint
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxTries:        4,
		InitialInterval: 20 * time.Millisecond,
		MaxInterval:     500 * time.Millisecond,
	}
}

type BaseDeps struct {
	DB       *gorm.DB
	Log      *logger.Logger
	Runner   TxRunner
	Hooks    Hooks
	CASGuard CASGuard
	Retry    RetryPolicy
	Tracer   trace.Tracer
}

func (d BaseDeps) withDefaults() BaseDeps {
	if d.Runner == nil {
		d.Runner = NewGormTxRunner(d.DB)
	}
	if d.Hooks == nil {
		d.Hooks = noopHooks{}
	}
	if d.CASGuard.db == nil {
		d.CASGuard = NewCASGuard(d.DB)
	}
	if d.Retry.MaxTries == 0 {
		d.Retry = DefaultRetryPolicy()
	}
	if d.Tracer == nil {
		d.Tracer = otel.Tracer(tracerName)
	}
	return d
}

// executeWrite runs fn inside one transaction. Conflict and retryable failures are
// retried with exponential backoff, unless fn joined an enclosing transaction: a
// failed statement poisons the outer transaction, so only its owner may retry.
func executeWrite(ctx context.Context, deps BaseDeps, op string, fn func(dbc dbctx.Context) error) error {
	start := time.Now()
	deps = deps.withDefaults()
	op = strings.TrimSpace(op)
	if op == "" {
		op = "aggregate.write"
	}

	nested := dbctx.TxFromContext(ctx) != nil
	ctx, span := deps.Tracer.Start(ctx, op, trace.WithAttributes(
		attribute.Bool("aggregate.nested_tx", nested),
	))
	defer span.End()

	attempts := 0
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attempts++
		mapped := MapError(op, deps.Runner.InTx(ctx, fn))
		if mapped == nil {
			return struct{}{}, nil
		}
		if domainagg.IsCode(mapped, domainagg.CodeConflict) {
			deps.Hooks.IncConflict(op)
		}
		if nested || !isLocallyRetryable(mapped) {
			return struct{}{}, backoff.Permanent(mapped)
		}
		return struct{}{}, mapped
	},
		backoff.WithBackOff(&backoff.ExponentialBackOff{
			InitialInterval:     deps.Retry.InitialInterval,
			RandomizationFactor: backoff.DefaultRandomizationFactor,
			Multiplier:          2,
			MaxInterval:         deps.Retry.MaxInterval,
		}),
		backoff.WithMaxTries(deps.Retry.MaxTries),
		backoff.WithNotify(func(err error, wait time.Duration) {
			deps.Hooks.IncRetry(op)
			if deps.Log != nil {
				deps.Log.Debug("retrying aggregate write", "op", op, "attempt", attempts, "wait", wait, "error", err)
			}
		}),
	)
	var perm *backoff.PermanentError
	if errors.As(err, &perm) {
		err = perm.Err
	}
	err = MapError(op, err)

	status := statusSuccess
	span.SetAttributes(attribute.Int("aggregate.attempts", attempts))
	if err != nil {
		status = aggregateErrorStatus(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, status)
	}
	deps.Hooks.ObserveOperation(op, status, time.Since(start))
	return err
}

// RunWrite runs fn as one retried write transaction. Aggregate calls made with dbc.Ctx
// join it through savepoints, so a conflict anywhere retries the whole unit.
func RunWrite(ctx context.Context, deps BaseDeps, op string, fn func(dbc dbctx.Context) error) error {
	return executeWrite(ctx, deps, op, fn)
}

// executeRead runs fn against the enclosing transaction when ctx carries one.
func executeRead(ctx context.Context, deps BaseDeps, op string, fn func(dbc dbctx.Context) error) error {
	start := time.Now()
	deps = deps.withDefaults()
	err := MapError(op, fn(readContext(ctx)))
	status := statusSuccess
	if err != nil {
		status = aggregateErrorStatus(err)
	}
	deps.Hooks.ObserveOperation(op, status, time.Since(start))
	return err
}

func readContext(ctx context.Context) dbctx.Context {
	return dbctx.Context{Ctx: ctx, Tx: dbctx.TxFromContext(ctx)}
}

func isLocallyRetryable(err error) bool {
	return domainagg.CodeOf(err).Transient()
}

func aggregateErrorStatus(err error) string {
	if err == nil {
		return statusSuccess
	}
	code := strings.TrimSpace(string(domainagg.CodeOf(err)))
	if code == "" {
		code = strings.TrimSpace(string(domainagg.CodeOf(MapError("aggregate.status", err))))
	}
	if code == "" {
		return "failure"
	}
	return code
}
