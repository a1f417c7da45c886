package server

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/oyaguma3/fints-tan-bridge/internal/banking/bridge"
	"github.com/oyaguma3/fints-tan-bridge/internal/handler"
	"github.com/oyaguma3/fints-tan-bridge/pkg/httputil"
)

const traceIDHeader = "X-Trace-ID"

// TraceIDMiddleware はX-Trace-IDヘッダからトレースIDを取得する。
// ヘッダがない場合は新規に採番し、ブリッジ呼び出しへ伝播させる。
func TraceIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(traceIDHeader)
		if traceID == "" {
			traceID = uuid.NewString()
		}
		c.Set(handler.TraceIDKey, traceID)
		c.Request = c.Request.WithContext(bridge.WithTraceID(c.Request.Context(), traceID))
		c.Header(traceIDHeader, traceID)
		c.Next()
	}
}

// LoggingMiddleware はリクエストログを出力する。
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		latency := time.Since(start)
		traceID, _ := c.Get(handler.TraceIDKey)

		slog.Info("request completed",
			"trace_id", traceID,
			"event_id", "HTTP_REQ",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"http_status", c.Writer.Status(),
			"latency_ms", latency.Milliseconds(),
		)
	}
}

// RecoveryMiddleware はパニックからの復旧を行う。
func RecoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				traceID, _ := c.Get(handler.TraceIDKey)
				slog.Error("panic recovered",
					"trace_id", traceID,
					"event_id", "PANIC",
					"error", err,
				)
				httputil.AbortWithError(c, httputil.InternalServerError("An unexpected error occurred"))
			}
		}()
		c.Next()
	}
}
