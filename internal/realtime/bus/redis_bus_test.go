package bus

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/learnqueue-backend/internal/platform/logger"
	"github.com/yungbote/learnqueue-backend/internal/realtime"
)

func mustTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

func recvEvent(t *testing.T, ch <-chan realtime.LearningEvent, timeout time.Duration) realtime.LearningEvent {
	t.Helper()
	select {
	case evt := <-ch:
		return evt
	case <-time.After(timeout):
		t.Fatalf("timed out waiting for learning event")
	}
	return realtime.LearningEvent{}
}

func TestRedisBusPublishForwardsInOrder(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	b, err := NewRedisBus(mustTestLogger(t), rdb, "")
	if err != nil {
		t.Fatalf("NewRedisBus: %v", err)
	}
	t.Cleanup(func() { _ = b.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	got := make(chan realtime.LearningEvent, 4)
	if err := b.StartForwarder(ctx, func(evt realtime.LearningEvent) { got <- evt }); err != nil {
		t.Fatalf("StartForwarder: %v", err)
	}

	userID := uuid.New()
	themeID := uuid.New()
	first := realtime.LearningEvent{
		Type:    realtime.EventBadgeAwarded,
		UserID:  userID,
		ThemeID: themeID,
		Data:    map[string]any{"badge_code": "streak_3"},
	}
	second := realtime.LearningEvent{Type: realtime.EventThemeExhausted, UserID: userID, ThemeID: themeID}
	if err := b.Publish(ctx, first); err != nil {
		t.Fatalf("Publish first: %v", err)
	}
	if err := b.Publish(ctx, second); err != nil {
		t.Fatalf("Publish second: %v", err)
	}

	one := recvEvent(t, got, time.Second)
	two := recvEvent(t, got, time.Second)
	if one.Type != realtime.EventBadgeAwarded || one.UserID != userID {
		t.Fatalf("first event: %+v", one)
	}
	if code, _ := one.Data["badge_code"].(string); code != "streak_3" {
		t.Fatalf("first event data: want=streak_3 got=%v", one.Data["badge_code"])
	}
	if two.Type != realtime.EventThemeExhausted || two.ThemeID != themeID {
		t.Fatalf("second event: %+v", two)
	}
}

func TestRedisBusRequiresClient(t *testing.T) {
	if _, err := NewRedisBus(mustTestLogger(t), nil, "x"); err == nil {
		t.Fatalf("NewRedisBus nil client: want error")
	}
}

func TestNoopBus(t *testing.T) {
	b := NewNoopBus()
	if err := b.Publish(context.Background(), realtime.LearningEvent{Type: realtime.EventThemeExhausted}); err != nil {
		t.Fatalf("noop Publish: %v", err)
	}
	if err := b.Close(); err != nil {
		t.Fatalf("noop Close: %v", err)
	}
}

func TestRedisBusDropsMalformedPayloads(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	b, err := NewRedisBus(mustTestLogger(t), rdb, "lq.test")
	if err != nil {
		t.Fatalf("NewRedisBus: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	got := make(chan realtime.LearningEvent, 4)
	if err := b.StartForwarder(ctx, func(evt realtime.LearningEvent) { got <- evt }); err != nil {
		t.Fatalf("StartForwarder: %v", err)
	}

	mr.Publish("lq.test", "not json")
	mr.Publish("lq.test", `{"user_id":"`+uuid.NewString()+`"}`)
	if err := b.Publish(ctx, realtime.LearningEvent{}); err == nil {
		t.Fatalf("Publish untyped: want error")
	}
	if err := b.Publish(ctx, realtime.LearningEvent{Type: realtime.EventThemeExhausted}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if evt := recvEvent(t, got, time.Second); evt.Type != realtime.EventThemeExhausted {
		t.Fatalf("forwarded event: want=%s got=%+v", realtime.EventThemeExhausted, evt)
	}
}

func TestRedisBusCloseRejectsNewForwarders(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	b, err := NewRedisBus(mustTestLogger(t), rdb, "")
	if err != nil {
		t.Fatalf("NewRedisBus: %v", err)
	}
	if err := b.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := b.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if err := b.StartForwarder(context.Background(), func(realtime.LearningEvent) {}); err == nil {
		t.Fatalf("StartForwarder after Close: want error")
	}
}
