package handlers

import (
	"bookingbot/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// getLogger retrieves the request-scoped Zap logger.
func getLogger(c *gin.Context) *zap.Logger {
	return utils.ContextLogger(c)
}
