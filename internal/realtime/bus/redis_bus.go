package bus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/learnqueue-backend/internal/platform/logger"
	"github.com/yungbote/learnqueue-backend/internal/realtime"
)

const DefaultChannel = "learnqueue.events"

var errUntypedEvent = errors.New("learning event has no type")

// redisBus fans learning events out over one Redis pub/sub channel. The client is
// owned by the caller; Close only tears down subscriptions.
type redisBus struct {
	log     *logger.Logger
	rdb     goredis.UniversalClient
	channel string

	mu     sync.Mutex
	subs   map[*goredis.PubSub]struct{}
	closed bool
}

func NewRedisBus(log *logger.Logger, rdb goredis.UniversalClient, channel string) (Bus, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if rdb == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if channel = strings.TrimSpace(channel); channel == "" {
		channel = DefaultChannel
	}
	return &redisBus{
		log:     log.With("service", "RedisEventBus", "channel", channel),
		rdb:     rdb,
		channel: channel,
		subs:    map[*goredis.PubSub]struct{}{},
	}, nil
}

func (b *redisBus) Publish(ctx context.Context, evt realtime.LearningEvent) error {
	if evt.Type == "" {
		return errUntypedEvent
	}
	raw, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", evt.Type, err)
	}
	if err := b.rdb.Publish(ctx, b.channel, raw).Err(); err != nil {
		return fmt.Errorf("publish %s event: %w", evt.Type, err)
	}
	return nil
}

// StartForwarder returns once the subscription is confirmed; onMsg then runs on a
// single goroutine, in publish order, until ctx ends or the bus is closed.
func (b *redisBus) StartForwarder(ctx context.Context, onMsg func(evt realtime.LearningEvent)) error {
	if onMsg == nil {
		return fmt.Errorf("onMsg callback required")
	}
	sub := b.rdb.Subscribe(ctx, b.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}
	if !b.track(sub) {
		_ = sub.Close()
		return fmt.Errorf("event bus closed")
	}
	go b.forward(ctx, sub, onMsg)
	return nil
}

func (b *redisBus) forward(ctx context.Context, sub *goredis.PubSub, onMsg func(realtime.LearningEvent)) {
	defer b.untrack(sub)
	msgs := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-msgs:
			if !ok {
				return
			}
			evt, err := decodeEvent(m.Payload)
			if err != nil {
				b.log.Warn("dropping learning event", "error", err)
				continue
			}
			onMsg(evt)
		}
	}
}

func decodeEvent(payload string) (realtime.LearningEvent, error) {
	var evt realtime.LearningEvent
	if err := json.Unmarshal([]byte(payload), &evt); err != nil {
		return evt, fmt.Errorf("decode: %w", err)
	}
	if evt.Type == "" {
		return evt, errUntypedEvent
	}
	return evt, nil
}

func (b *redisBus) track(sub *goredis.PubSub) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return false
	}
	b.subs[sub] = struct{}{}
	return true
}

func (b *redisBus) untrack(sub *goredis.PubSub) {
	b.mu.Lock()
	delete(b.subs, sub)
	b.mu.Unlock()
	_ = sub.Close()
}

// Close is idempotent.
func (b *redisBus) Close() error {
	b.mu.Lock()
	b.closed = true
	subs := b.subs
	b.subs = map[*goredis.PubSub]struct{}{}
	b.mu.Unlock()
	for sub := range subs {
		_ = sub.Close()
	}
	return nil
}
