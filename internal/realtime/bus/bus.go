package bus

import (
	"context"

	"github.com/yungbote/learnqueue-backend/internal/realtime"
)

type Bus interface {
	Publish(ctx context.Context, evt realtime.LearningEvent) error
	StartForwarder(ctx context.Context, onMsg func(evt realtime.LearningEvent)) error
	Close() error
}

type noopBus struct{}

// NewNoopBus drops every event. Used when Redis is not configured.
func NewNoopBus() Bus { return noopBus{} }

func (noopBus) Publish(context.Context, realtime.LearningEvent) error { return nil }
func (noopBus) StartForwarder(context.Context, func(realtime.LearningEvent)) error {
	return nil
}
func (noopBus) Close() error { return nil }
