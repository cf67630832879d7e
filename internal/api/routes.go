package api

import "github.com/gin-gonic/gin"

func RegisterRoutes(r *gin.Engine, h *Handlers) {
	// Google redirects back to the bare host:port
	r.GET("/", h.oauth)

	api := r.Group("/api")
	{
		api.GET("/health", health)
		api.GET("/auth/qr", h.authQR)
		api.POST("/update", h.update)
		api.GET("/preview", h.preview)
	}
}
