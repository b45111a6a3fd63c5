package routes

import (
	"net/http"
	"time"

	"bookingbot/handlers"
	"bookingbot/services/media"
	"bookingbot/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterConversationRoutes registers the text and voice turn endpoints.
func RegisterConversationRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api")
	{
		api.POST("/text", hb.TextHandler)
		api.POST("/voice", hb.VoiceHandler)
	}
}

// RegisterMediaRoutes serves generated QR images when they are kept in memory.
func RegisterMediaRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	if hb.QRImageHandler == nil {
		return
	}
	r.GET(media.QRRoutePrefix+":file", hb.QRImageHandler)
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	if hb.HealthHandler != nil {
		r.GET("/health", hb.HealthHandler)
		return
	}
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

// RegisterRoutes registers all routes.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", utils.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", utils.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	RegisterConversationRoutes(r, hb)
	RegisterMediaRoutes(r, hb)
	RegisterHealthRoute(r, hb)
}
