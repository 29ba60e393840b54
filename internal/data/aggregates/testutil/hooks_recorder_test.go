package testutil

import (
	"sync"
	"testing"
	"time"
)

func TestHooksRecorderCountsPerOperation(t *testing.T) {
	h := &HooksRecorder{}
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.IncRetry("Learning.Queue.MoveToEnd")
		}()
	}
	wg.Wait()
	h.IncConflict("Learning.Queue.Remove")
	h.ObserveOperation("Learning.Queue.Remove", "success", 3*time.Millisecond)

	if got := h.Retries("Learning.Queue.MoveToEnd"); got != 10 {
		t.Fatalf("retries: want=10 got=%d", got)
	}
	if got := h.Conflicts("Learning.Queue.Remove"); got != 1 {
		t.Fatalf("conflicts: want=1 got=%d", got)
	}
	if got := h.Conflicts("Learning.Queue.MoveToEnd"); got != 0 {
		t.Fatalf("conflicts on other op: want=0 got=%d", got)
	}
	calls := h.Calls()
	if len(calls) != 1 || calls[0].Op != "Learning.Queue.Remove" || calls[0].Took != 3*time.Millisecond {
		t.Fatalf("calls: %+v", calls)
	}
}
