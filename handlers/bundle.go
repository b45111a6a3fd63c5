package handlers

import "github.com/gin-gonic/gin"

// HandlerBundle groups all route handlers.
type HandlerBundle struct {
	// Conversation endpoints
	TextHandler  gin.HandlerFunc
	VoiceHandler gin.HandlerFunc

	// Media endpoints
	QRImageHandler gin.HandlerFunc

	// Ops
	HealthHandler gin.HandlerFunc
}
