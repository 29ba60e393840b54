package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/learnqueue-backend/internal/http/handlers"
	httpMW "github.com/yungbote/learnqueue-backend/internal/http/middleware"
	"github.com/yungbote/learnqueue-backend/internal/observability"
	"github.com/yungbote/learnqueue-backend/internal/platform/logger"
)

const healthPath = "/healthcheck"

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	ServiceName string
	CORSOrigins []string

	LearningQueueHandler *httpH.LearningQueueHandler
	HealthHandler        *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "learnqueue"
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(serviceName))
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics, healthPath))
	r.Use(httpMW.CORS(cfg.CORSOrigins...))

	// Health
	if cfg.HealthHandler != nil {
		r.GET(healthPath, cfg.HealthHandler.HealthCheck)
	}

	learners := r.Group("/api/learners/:user_id")
	if h := cfg.LearningQueueHandler; h != nil {
		learners.POST("/themes/:theme_id/enter", h.EnterTheme)
		learners.GET("/themes/:theme_id/next", h.NextTask)
		learners.POST("/themes/:theme_id/attempts", h.RecordAttempt)
		learners.POST("/themes/:theme_id/sync", h.SyncTheme)
		learners.GET("/themes/:theme_id/overview", h.Overview)

		learners.GET("/streak", h.Streak)
		learners.GET("/badges", h.Badges)
	}

	return r
}
