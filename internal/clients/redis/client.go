package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/learnqueue-backend/internal/platform/logger"
)

type Options struct {
	// Addr is host:port, or a comma-separated list for cluster or sentinel setups.
	Addr       string
	Password   string
	DB         int
	MasterName string
	Timeout    time.Duration
}

func (o Options) addrs() []string {
	var out []string
	for _, a := range strings.Split(o.Addr, ",") {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	return out
}

// NewClient dials and pings once. No address returns (nil, nil): the catalog is then
// read uncached and learning events are dropped.
func NewClient(ctx context.Context, log *logger.Logger, opts Options) (goredis.UniversalClient, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addrs := opts.addrs()
	if len(addrs) == 0 {
		log.Warn("REDIS_ADDR not set; catalog cache and learning events disabled")
		return nil, nil
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	rdb := goredis.NewUniversalClient(&goredis.UniversalOptions{
		Addrs:       addrs,
		Password:    opts.Password,
		DB:          opts.DB,
		MasterName:  opts.MasterName,
		DialTimeout: timeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", strings.Join(addrs, ","), err)
	}
	log.Info("Connected to redis", "addrs", addrs, "db", opts.DB)
	return rdb, nil
}
