package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/learnqueue-backend/internal/data/aggregates"
	"github.com/yungbote/learnqueue-backend/internal/data/cache"
	domainagg "github.com/yungbote/learnqueue-backend/internal/domain/aggregates"
	"github.com/yungbote/learnqueue-backend/internal/observability"
	"github.com/yungbote/learnqueue-backend/internal/platform/logger"
	"github.com/yungbote/learnqueue-backend/internal/services"
)

type Aggregates struct {
	Queue      domainagg.LearningQueueAggregate
	TaskStates domainagg.TaskStateAggregate
	Progress   domainagg.ProgressAggregate
	Streak     domainagg.StreakAggregate
	Badges     domainagg.BadgeAggregate
}

type Services struct {
	Catalog    *cache.CatalogCache
	Aggregates Aggregates
	Queue      services.QueueService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos, clients Clients, metrics *observability.Metrics) Services {
	log.Info("Wiring services...")

	base := aggregates.BaseDeps{
		DB:    db,
		Log:   log,
		Hooks: aggregates.MultiHooks(
			aggregates.NewObservabilityHooks(metrics),
			aggregates.NewLoggingHooks(log, cfg.SlowAggregateOp),
		),
		Retry: cfg.Retry,
	}

	catalog := cache.NewCatalogCache(r.Catalog, clients.Redis, cfg.CatalogTTL, log, metrics)

	aggs := Aggregates{
		Queue: aggregates.NewLearningQueueAggregate(aggregates.LearningQueueAggregateDeps{
			Base:    base,
			States:  r.QueueState,
			Items:   r.QueueItem,
			Catalog: catalog,
		}),
		TaskStates: aggregates.NewTaskStateAggregate(aggregates.TaskStateAggregateDeps{
			Base:   base,
			States: r.TaskState,
		}),
		Progress: aggregates.NewProgressAggregate(aggregates.ProgressAggregateDeps{
			Base:    base,
			Themes:  r.ThemeProgress,
			Courses: r.CourseProgress,
			// Totals are read uncached so catalog edits made elsewhere count at once.
			Catalog: r.Catalog,
		}),
		Streak: aggregates.NewStreakAggregate(aggregates.StreakAggregateDeps{
			Base:         base,
			Days:         r.DailySolve,
			LookbackDays: cfg.StreakLookbackDays,
		}),
		Badges: aggregates.NewBadgeAggregate(aggregates.BadgeAggregateDeps{
			Base:   base,
			Rules:  r.BadgeRule,
			Awards: r.UserBadge,
		}),
	}

	queue := services.NewQueueService(log, services.QueueServiceDeps{
		Base:        base,
		Catalog:     catalog,
		Invalidator: catalog,
		Queue:       aggs.Queue,
		TaskStates:  aggs.TaskStates,
		Progress:    aggs.Progress,
		Streak:      aggs.Streak,
		Badges:      aggs.Badges,
		Events:      clients.Events,
		Metrics:     metrics,
	})

	return Services{Catalog: catalog, Aggregates: aggs, Queue: queue}
}
