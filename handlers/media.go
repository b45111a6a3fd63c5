package handlers

import (
	"net/http"
	"path"

	"bookingbot/utils"

	"github.com/gin-gonic/gin"
)

// ImageSource returns stored images by file name.
type ImageSource interface {
	Get(file string) ([]byte, bool)
}

// QRImageHandler serves QR images generated in memory.
func QRImageHandler(src ImageSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		file := path.Base(c.Param("file"))
		png, ok := src.Get(file)
		if !ok {
			utils.JSONError(c, http.StatusNotFound, "image not found", file)
			return
		}
		c.Header("Cache-Control", "public, max-age=3600")
		c.Data(http.StatusOK, "image/png", png)
	}
}
