package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/learnqueue-backend/internal/platform/ctxutil"
	"github.com/yungbote/learnqueue-backend/internal/platform/logger"
)

// RequestLogger writes one line per request; the level follows the status class.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []interface{}{
			"method", c.Request.Method,
			"route", routeLabel(c),
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if scope, ok := ctxutil.RequestScopeFrom(c.Request.Context()); ok {
			fields = append(fields, scope.LogFields()...)
		}
		for _, p := range c.Params {
			if p.Key == "user_id" || p.Key == "theme_id" {
				fields = append(fields, p.Key, p.Value)
			}
		}
		if len(c.Errors) > 0 {
			fields = append(fields, "error", c.Errors.Last().Error())
		}

		switch {
		case status >= 500:
			log.Error("learner api request", fields...)
		case status >= 400:
			log.Warn("learner api request", fields...)
		default:
			log.Debug("learner api request", fields...)
		}
	}
}

// routeLabel keeps label cardinality bounded: unmatched paths share one value.
func routeLabel(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return "unmatched"
}
