package app

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/learnqueue-backend/internal/data/db"
	lqhttp "github.com/yungbote/learnqueue-backend/internal/http"
	"github.com/yungbote/learnqueue-backend/internal/observability"
	"github.com/yungbote/learnqueue-backend/internal/platform/envutil"
	"github.com/yungbote/learnqueue-backend/internal/platform/logger"
	"github.com/yungbote/learnqueue-backend/internal/realtime"
	"github.com/yungbote/learnqueue-backend/internal/services"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Server   *lqhttp.Server
	Cfg      Config
	Repos    Repos
	Clients  Clients
	Services Services
	Metrics  *observability.Metrics

	store        db.Service
	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

func New(ctx context.Context) (*App, error) {
	log, err := logger.New(envutil.String("LOG_MODE", "development"))
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfigFromEnv(
		envutil.String("OTEL_SERVICE_NAME", "learnqueue"), cfg.Environment, cfg.Version,
	))
	metrics := observability.Init(log)

	st, err := openStore(log, cfg.DBDriver)
	if err != nil {
		log.Sync()
		return nil, err
	}
	if err := st.AutoMigrateAll(); err != nil {
		_ = st.Close()
		log.Sync()
		return nil, fmt.Errorf("automigrate: %w", err)
	}
	theDB := st.DB()
	if err := metrics.RegisterDBStats(theDB); err != nil {
		log.Warn("db pool metrics unavailable", "error", err)
	}

	clients, err := wireClients(ctx, log, cfg)
	if err != nil {
		_ = st.Close()
		log.Sync()
		return nil, err
	}
	if clients.Redis != nil {
		if err := metrics.RegisterRedis(clients.Redis); err != nil {
			log.Warn("redis metrics unavailable", "error", err)
		}
	}

	reposet := wireRepos(theDB, log)
	if _, err := services.SeedBadgeRules(ctx, log, reposet.BadgeRule, cfg.BadgeRulesPath); err != nil {
		clients.Close()
		_ = st.Close()
		log.Sync()
		return nil, fmt.Errorf("seed badge rules: %w", err)
	}

	serviceset := wireServices(theDB, log, cfg, reposet, clients, metrics)
	handlerset := wireHandlers(theDB, log, clients, serviceset)

	return &App{
		Log:          log,
		DB:           theDB,
		Server:       wireServer(log, cfg, handlerset, metrics),
		Cfg:          cfg,
		Repos:        reposet,
		Clients:      clients,
		Services:     serviceset,
		Metrics:      metrics,
		store:        st,
		otelShutdown: otelShutdown,
	}, nil
}

func openStore(log *logger.Logger, driver string) (db.Service, error) {
	switch driver {
	case "sqlite":
		s, err := db.NewSQLiteService(log)
		if err != nil {
			return nil, fmt.Errorf("init sqlite: %w", err)
		}
		return s, nil
	case "postgres", "":
		s, err := db.NewPostgresService(log)
		if err != nil {
			return nil, fmt.Errorf("init postgres: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", driver)
	}
}

// Start launches background work: the metrics endpoint and the learning event
// forwarder that logs every event published on the bus.
func (a *App) Start() error {
	if a == nil || a.cancel != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	if a.Metrics != nil {
		a.Metrics.StartServer(ctx, a.Log, a.Cfg.MetricsAddr)
	}

	eventLog := a.Log.With("component", "LearningEventForwarder")
	return a.Clients.Events.StartForwarder(ctx, func(evt realtime.LearningEvent) {
		eventLog.Info("learning event",
			"type", string(evt.Type),
			"user_id", evt.UserID.String(),
			"theme_id", evt.ThemeID.String(),
			"course_id", evt.CourseID.String(),
		)
	})
}

func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	return a.Server.Run(ctx, a.Cfg.HTTPAddr)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.Clients.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if a.Metrics != nil {
		_ = a.Metrics.Shutdown(ctx)
	}
	if a.otelShutdown != nil {
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
	}
	if a.store != nil {
		_ = a.store.Close()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
