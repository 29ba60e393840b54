package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/learnqueue-backend/internal/platform/ctxutil"
)

const (
	headerTraceID   = "X-Trace-Id"
	headerRequestID = "X-Request-Id"
)

// AttachTraceContext runs after otelgin. The active span wins over any X-Trace-Id the
// caller sent; a caller X-Request-Id is kept and tagged onto the span.
func AttachTraceContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		scope := ctxutil.RequestScope{RequestID: strings.TrimSpace(c.GetHeader(headerRequestID))}
		if scope.RequestID == "" {
			scope.RequestID = uuid.NewString()
		}

		span := trace.SpanFromContext(ctx)
		if sc := span.SpanContext(); sc.IsValid() {
			scope.TraceID = sc.TraceID().String()
			scope.SpanID = sc.SpanID().String()
			span.SetAttributes(attribute.String("http.request_id", scope.RequestID))
		} else if incoming := strings.TrimSpace(c.GetHeader(headerTraceID)); incoming != "" {
			scope.TraceID = incoming
		} else {
			scope.TraceID = strings.ReplaceAll(uuid.NewString(), "-", "")
		}

		c.Request = c.Request.WithContext(ctxutil.WithRequestScope(ctx, scope))
		c.Writer.Header().Set(headerTraceID, scope.TraceID)
		c.Writer.Header().Set(headerRequestID, scope.RequestID)
		c.Next()
	}
}
