package testutil

import (
	"context"
	"sync"

	"github.com/yungbote/learnqueue-backend/internal/platform/dbctx"
)

// InjectedTxRunner runs bodies without a database and fails attempts on demand, so
// retry and rollback paths can be driven deterministically.
type InjectedTxRunner struct {
	mu sync.Mutex

	// FailBegin fails every attempt before the body runs.
	FailBegin error
	// FailAttempts makes the first N attempts return FailAttemptErr after the body ran.
	FailAttempts   int
	FailAttemptErr error
	// FailCommit fails every attempt that would otherwise commit.
	FailCommit error

	BeginCalls    int
	CommitCalls   int
	RollbackCalls int
}

func (r *InjectedTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	attempt, failBegin := r.begin()
	if failBegin != nil {
		return failBegin
	}
	if fn != nil {
		if err := fn(dbctx.Context{Ctx: ctx}); err != nil {
			return r.finish(err)
		}
	}
	r.mu.Lock()
	injected := r.FailCommit
	if attempt <= r.FailAttempts {
		injected = r.FailAttemptErr
	}
	r.mu.Unlock()
	return r.finish(injected)
}

func (r *InjectedTxRunner) begin() (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.BeginCalls++
	return r.BeginCalls, r.FailBegin
}

// finish records a commit for a nil err and a rollback otherwise.
func (r *InjectedTxRunner) finish(err error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.RollbackCalls++
		return err
	}
	r.CommitCalls++
	return nil
}
