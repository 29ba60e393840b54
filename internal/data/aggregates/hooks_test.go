package aggregates

import (
	"testing"
	"time"

	aggtest "github.com/yungbote/learnqueue-backend/internal/data/aggregates/testutil"
	repotest "github.com/yungbote/learnqueue-backend/internal/data/repos/testutil"
)

var (
	_ Hooks    = (*aggtest.HooksRecorder)(nil)
	_ TxRunner = (*aggtest.InjectedTxRunner)(nil)
)

func TestMultiHooksFansOut(t *testing.T) {
	a, b := &aggtest.HooksRecorder{}, &aggtest.HooksRecorder{}
	h := MultiHooks(a, nil, b)
	h.ObserveOperation("Learning.Streak.RecordDailySolve", "success", time.Millisecond)
	h.IncConflict("Learning.Streak.RecordDailySolve")
	h.IncRetry("Learning.Streak.RecordDailySolve")

	for i, rec := range []*aggtest.HooksRecorder{a, b} {
		if len(rec.Calls()) != 1 || rec.Conflicts("Learning.Streak.RecordDailySolve") != 1 || rec.Retries("Learning.Streak.RecordDailySolve") != 1 {
			t.Fatalf("recorder %d missed signals: calls=%v", i, rec.Calls())
		}
	}
}

func TestMultiHooksCollapses(t *testing.T) {
	if _, ok := MultiHooks().(noopHooks); !ok {
		t.Fatalf("empty MultiHooks should be noop")
	}
	only := &aggtest.HooksRecorder{}
	if got := MultiHooks(nil, only); got != Hooks(only) {
		t.Fatalf("single hook should be returned as is")
	}
}

func TestNilBackedHooksAreNoop(t *testing.T) {
	if _, ok := NewObservabilityHooks(nil).(noopHooks); !ok {
		t.Fatalf("nil metrics should give noop hooks")
	}
	if _, ok := NewLoggingHooks(nil, time.Second).(noopHooks); !ok {
		t.Fatalf("nil logger should give noop hooks")
	}
	// Logging hooks with a real logger must not panic on any signal.
	h := NewLoggingHooks(repotest.Logger(t), time.Nanosecond)
	h.ObserveOperation("op", "conflict", time.Millisecond)
	h.ObserveOperation("op", "success", time.Millisecond)
	h.IncConflict("op")
	h.IncRetry("op")
}
