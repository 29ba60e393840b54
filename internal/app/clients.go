package app

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/learnqueue-backend/internal/clients/redis"
	"github.com/yungbote/learnqueue-backend/internal/platform/logger"
	"github.com/yungbote/learnqueue-backend/internal/realtime/bus"
)

type Clients struct {
	// Redis stays a nil interface when REDIS_ADDR is unset.
	Redis  goredis.UniversalClient
	Events bus.Bus
}

// wireClients connects Redis when REDIS_ADDR is set. Without it the catalog is read
// uncached and learning events are dropped.
func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	rdb, err := redis.NewClient(ctx, log, redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		return Clients{}, fmt.Errorf("init redis client: %w", err)
	}
	if rdb == nil {
		return Clients{Events: bus.NewNoopBus()}, nil
	}

	events, err := bus.NewRedisBus(log, rdb, cfg.EventsChannel)
	if err != nil {
		_ = rdb.Close()
		return Clients{}, fmt.Errorf("init learning event bus: %w", err)
	}
	return Clients{Redis: rdb, Events: events}, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Events != nil {
		_ = c.Events.Close()
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}
