package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const probeTimeout = 2 * time.Second

// Probe is one dependency the service cannot answer requests without.
type Probe struct {
	Name string
	Ping func(ctx context.Context) error
}

func DBProbe(db *gorm.DB) Probe {
	return Probe{Name: "db", Ping: func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}}
}

func RedisProbe(rdb goredis.UniversalClient) Probe {
	return Probe{Name: "redis", Ping: func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	}}
}

type HealthHandler struct {
	probes []Probe
}

// NewHealthHandler with no probes always reports ok.
func NewHealthHandler(probes ...Probe) *HealthHandler {
	return &HealthHandler{probes: probes}
}

// HealthCheck answers 503 naming the first failed probe.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), probeTimeout)
	defer cancel()
	for _, p := range h.probes {
		if err := p.Ping(ctx); err != nil {
			_ = c.Error(err)
			c.String(http.StatusServiceUnavailable, p.Name+" unavailable")
			return
		}
	}
	c.String(http.StatusOK, "ok")
}
