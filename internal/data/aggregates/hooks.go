package aggregates

import (
	"time"

	"github.com/yungbote/learnqueue-backend/internal/observability"
	"github.com/yungbote/learnqueue-backend/internal/platform/logger"
)

// Hooks receives one ObserveOperation per aggregate call, plus an IncConflict and
// IncRetry for every failed attempt that is retried.
type Hooks interface {
	ObserveOperation(name, status string, dur time.Duration)
	IncConflict(name string)
	IncRetry(name string)
}

type noopHooks struct{}

func (noopHooks) ObserveOperation(string, string, time.Duration) {}
func (noopHooks) IncConflict(string)                             {}
func (noopHooks) IncRetry(string)                                {}

type metricsHooks struct {
	m *observability.Metrics
}

func (h metricsHooks) ObserveOperation(name, status string, dur time.Duration) {
	h.m.ObserveAggregateOperation(name, status, dur)
}
func (h metricsHooks) IncConflict(name string) { h.m.IncAggregateConflict(name) }
func (h metricsHooks) IncRetry(name string)    { h.m.IncAggregateRetry(name) }

// NewObservabilityHooks feeds aggregate signals into metrics. nil metrics yields no-op hooks.
func NewObservabilityHooks(metrics *observability.Metrics) Hooks {
	if metrics == nil {
		return noopHooks{}
	}
	return metricsHooks{m: metrics}
}

type logHooks struct {
	log  *logger.Logger
	slow time.Duration
}

// NewLoggingHooks logs failed and slow aggregate calls plus every retry.
func NewLoggingHooks(log *logger.Logger, slow time.Duration) Hooks {
	if log == nil {
		return noopHooks{}
	}
	return logHooks{log: log.With("component", "AggregateHooks"), slow: slow}
}

func (h logHooks) ObserveOperation(name, status string, dur time.Duration) {
	switch {
	case status != statusSuccess:
		h.log.Warn("aggregate operation failed", "op", name, "status", status, "duration_ms", dur.Milliseconds())
	case h.slow > 0 && dur >= h.slow:
		h.log.Info("aggregate operation slow", "op", name, "duration_ms", dur.Milliseconds())
	}
}
func (h logHooks) IncConflict(name string) { h.log.Debug("aggregate conflict", "op", name) }
func (h logHooks) IncRetry(name string)    { h.log.Debug("aggregate retry", "op", name) }

type multiHooks []Hooks

// MultiHooks fans every signal out to each non-nil hook in order.
func MultiHooks(hooks ...Hooks) Hooks {
	out := make(multiHooks, 0, len(hooks))
	for _, h := range hooks {
		if h != nil {
			out = append(out, h)
		}
	}
	switch len(out) {
	case 0:
		return noopHooks{}
	case 1:
		return out[0]
	}
	return out
}

func (m multiHooks) ObserveOperation(name, status string, dur time.Duration) {
	for _, h := range m {
		h.ObserveOperation(name, status, dur)
	}
}
func (m multiHooks) IncConflict(name string) {
	for _, h := range m {
		h.IncConflict(name)
	}
}
func (m multiHooks) IncRetry(name string) {
	for _, h := range m {
		h.IncRetry(name)
	}
}
