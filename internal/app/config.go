package app

import (
	"strings"
	"time"

	"github.com/yungbote/learnqueue-backend/internal/data/aggregates"
	"github.com/yungbote/learnqueue-backend/internal/data/cache"
	"github.com/yungbote/learnqueue-backend/internal/platform/envutil"
	"github.com/yungbote/learnqueue-backend/internal/platform/logger"
	"github.com/yungbote/learnqueue-backend/internal/realtime/bus"
)

type Config struct {
	LogMode     string
	Environment string
	Version     string

	DBDriver string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	EventsChannel string
	CatalogTTL    time.Duration

	StreakLookbackDays int
	Retry              aggregates.RetryPolicy
	SlowAggregateOp    time.Duration
	BadgeRulesPath     string

	HTTPAddr    string
	CORSOrigins []string
	MetricsAddr string
}

func LoadConfig(log *logger.Logger) Config {
	retry := aggregates.DefaultRetryPolicy()
	retry.MaxTries = uint(max(1, envutil.Int("STORE_RETRY_MAX_TRIES", int(retry.MaxTries))))
	retry.InitialInterval = envutil.Duration("STORE_RETRY_INITIAL_INTERVAL", retry.InitialInterval)
	retry.MaxInterval = envutil.Duration("STORE_RETRY_MAX_INTERVAL", retry.MaxInterval)

	cfg := Config{
		LogMode:     envutil.String("LOG_MODE", "development"),
		Environment: envutil.String("APP_ENV", "development"),
		Version:     envutil.String("APP_VERSION", "dev"),

		DBDriver: strings.ToLower(envutil.String("DB_DRIVER", "postgres")),

		RedisAddr:     envutil.String("REDIS_ADDR", ""),
		RedisPassword: envutil.String("REDIS_PASSWORD", ""),
		RedisDB:       envutil.Int("REDIS_DB", 0),
		EventsChannel: envutil.String("REDIS_CHANNEL", bus.DefaultChannel),
		CatalogTTL:    envutil.Duration("CATALOG_CACHE_TTL", cache.DefaultCatalogTTL),

		StreakLookbackDays: envutil.Int("STREAK_LOOKBACK_DAYS", aggregates.DefaultStreakLookbackDays),
		Retry:              retry,
		SlowAggregateOp:    envutil.Duration("AGGREGATE_SLOW_THRESHOLD", 250*time.Millisecond),
		BadgeRulesPath:     envutil.String("BADGE_RULES_PATH", ""),

		HTTPAddr:    envutil.String("HTTP_ADDR", ":8080"),
		CORSOrigins: envutil.List("CORS_ALLOWED_ORIGINS"),
		MetricsAddr: envutil.String("METRICS_ADDR", ":9090"),
	}
	if log != nil {
		log.Info("Config loaded",
			"db_driver", cfg.DBDriver,
			"redis", cfg.RedisAddr != "",
			"streak_lookback_days", cfg.StreakLookbackDays,
			"retry_max_tries", cfg.Retry.MaxTries,
			"http_addr", cfg.HTTPAddr,
		)
		if bad := envutil.Malformed(); len(bad) > 0 {
			log.Warn("Ignored malformed env values; defaults used", "vars", bad)
		}
	}
	return cfg
}
