package app

import (
	"testing"
	"time"

	"github.com/yungbote/learnqueue-backend/internal/data/aggregates"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, k := range []string{"DB_DRIVER", "REDIS_ADDR", "STREAK_LOOKBACK_DAYS", "STORE_RETRY_MAX_TRIES", "CORS_ALLOWED_ORIGINS"} {
		t.Setenv(k, "")
	}
	cfg := LoadConfig(nil)
	if cfg.DBDriver != "postgres" {
		t.Fatalf("db driver: want=postgres got=%q", cfg.DBDriver)
	}
	if cfg.StreakLookbackDays != aggregates.DefaultStreakLookbackDays {
		t.Fatalf("lookback: want=%d got=%d", aggregates.DefaultStreakLookbackDays, cfg.StreakLookbackDays)
	}
	if cfg.Retry != aggregates.DefaultRetryPolicy() {
		t.Fatalf("retry: want=%+v got=%+v", aggregates.DefaultRetryPolicy(), cfg.Retry)
	}
	if len(cfg.CORSOrigins) != 0 {
		t.Fatalf("cors: want none got=%v", cfg.CORSOrigins)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("STREAK_LOOKBACK_DAYS", "0")
	t.Setenv("STORE_RETRY_MAX_TRIES", "0")
	t.Setenv("STORE_RETRY_MAX_INTERVAL", "2s")
	t.Setenv("CATALOG_CACHE_TTL", "90")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")

	cfg := LoadConfig(nil)
	if cfg.DBDriver != "sqlite" {
		t.Fatalf("db driver: want=sqlite got=%q", cfg.DBDriver)
	}
	if cfg.StreakLookbackDays != 0 {
		t.Fatalf("lookback: want=0 got=%d", cfg.StreakLookbackDays)
	}
	if cfg.Retry.MaxTries != 1 {
		t.Fatalf("retry tries clamp: want=1 got=%d", cfg.Retry.MaxTries)
	}
	if cfg.Retry.MaxInterval != 2*time.Second {
		t.Fatalf("retry max interval: want=2s got=%v", cfg.Retry.MaxInterval)
	}
	if cfg.CatalogTTL != 90*time.Second {
		t.Fatalf("catalog ttl: want=90s got=%v", cfg.CatalogTTL)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Fatalf("cors: got=%v", cfg.CORSOrigins)
	}
}
