package middleware

import (
	"time"

	"bookingbot/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestLogger attaches a request-scoped logger under the "logger" key and
// logs each request when it completes.
func RequestLogger(base *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		reqID := c.GetHeader(utils.RequestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Header(utils.RequestIDHeader, reqID)

		logger := base.With(zap.String("requestID", reqID))
		c.Set(utils.LoggerKey, logger)
		c.Next()

		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.String("ip", getClientIP(c)),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
