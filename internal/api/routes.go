package api

import (
	"github.com/File-Sharing-BondBridg/Image-Service/cmd/middleware"
	"github.com/File-Sharing-BondBridg/Image-Service/internal/api/handlers"
	"github.com/File-Sharing-BondBridg/Image-Service/internal/api/handlers/file"
	"github.com/gin-gonic/gin"
)

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-CSRF-Token, X-Requested-With")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
			return
		}
		c.Next()
	}
}

func RegisterRoutes(r *gin.Engine, deps handlers.Deps) {
	// Enable CORS for preflight requests
	r.Use(corsMiddleware())

	r.GET("/", middleware.CSRFPage)

	h := file.NewHandler(deps)

	api := r.Group("/api")
	{
		api.GET("/health", file.HealthCheck)

		api.POST("/upload", middleware.RequireCSRF(deps.Config.Server.CSRFEnforce), h.Upload) // relay an upload to the store
		api.GET("/image/:fileId/:fileName", h.Image)                                          // re-serve a stored image

		api.GET("/scans/stats", file.GetScanStats)
		api.GET("/scans/:fileId", file.GetScan)
	}
}
