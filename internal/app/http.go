package app

import (
	"gorm.io/gorm"

	lqhttp "github.com/yungbote/learnqueue-backend/internal/http"
	httpH "github.com/yungbote/learnqueue-backend/internal/http/handlers"
	"github.com/yungbote/learnqueue-backend/internal/observability"
	"github.com/yungbote/learnqueue-backend/internal/platform/logger"
)

type Handlers struct {
	Health        *httpH.HealthHandler
	LearningQueue *httpH.LearningQueueHandler
}

func wireHandlers(db *gorm.DB, log *logger.Logger, clients Clients, svcs Services) Handlers {
	log.Info("Wiring handlers...")
	probes := []httpH.Probe{httpH.DBProbe(db)}
	if clients.Redis != nil {
		probes = append(probes, httpH.RedisProbe(clients.Redis))
	}
	return Handlers{
		Health: httpH.NewHealthHandler(probes...),
		LearningQueue: httpH.NewLearningQueueHandlerWithDeps(httpH.LearningQueueHandlerDeps{
			Log:   log,
			Queue: svcs.Queue,
		}),
	}
}

func wireServer(log *logger.Logger, cfg Config, handlers Handlers, metrics *observability.Metrics) *lqhttp.Server {
	return lqhttp.NewServer(lqhttp.RouterConfig{
		Log:                  log,
		Metrics:              metrics,
		CORSOrigins:          cfg.CORSOrigins,
		HealthHandler:        handlers.Health,
		LearningQueueHandler: handlers.LearningQueue,
	})
}
