package handlers

import (
	"net/http"

	"bookingbot/utils"

	"github.com/gin-gonic/gin"
)

// QuotaReporter reports how many language model calls the current window
// still admits.
type QuotaReporter interface {
	Remaining() int
}

// SessionCounter reports how many sessions a store holds.
type SessionCounter interface {
	Len() int
}

// HealthReport lists the optional runtime figures /health exposes.
type HealthReport struct {
	LLMQuota QuotaReporter
	Sessions SessionCounter
}

// HealthHandler reports the last dependency health snapshot plus the runtime
// figures in report. A configured dependency that is down yields a 503.
func HealthHandler(report HealthReport) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := utils.GetHealthStatus()
		code := http.StatusOK
		if (status.Redis != nil && !*status.Redis) || (status.Mongo != nil && !*status.Mongo) {
			code = http.StatusServiceUnavailable
		}
		body := gin.H{"status": http.StatusText(code), "dependencies": status}
		if report.LLMQuota != nil {
			body["llm_calls_remaining"] = report.LLMQuota.Remaining()
		}
		if report.Sessions != nil {
			body["sessions"] = report.Sessions.Len()
		}
		c.JSON(code, body)
	}
}
