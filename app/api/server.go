package api

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
)

// NewServer creates a new HTTP server with all routes configured
func NewServer(handler *Handler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// Middleware
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
	}))

	r.Use(gin.Recovery())

	// CORS middleware for the dashboard
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	setupRoutes(r, handler)

	return r
}

// setupRoutes configures all the application routes
func setupRoutes(r *gin.Engine, handler *Handler) {
	r.GET("/health", handler.GetHealth)

	api := r.Group("/api")
	{
		api.POST("/channels", handler.RegisterChannel)
		api.GET("/channels", handler.ListChannels)
		api.PUT("/channels/:id", handler.UpdateChannel)
		api.DELETE("/channels/:id", handler.ArchiveChannel)
		api.POST("/channels/:id/restore", handler.RestoreChannel)

		api.GET("/videos", handler.GetVideos)
		api.GET("/groups", handler.GetGroups)
		api.POST("/pin", handler.SetPin)
		api.POST("/watched", handler.SetWatched)
		api.POST("/import-history", handler.ImportHistory)

		api.GET("/settings/exclude-keywords", handler.GetExcludeKeywords)
		api.PUT("/settings/exclude-keywords", handler.SetExcludeKeywords)
	}

	// Root endpoint with basic information
	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"service":     "ytsubs",
			"description": "YouTube subscription aggregator with local watched/pinned state",
			"endpoints": map[string]string{
				"channels": "/api/channels",
				"videos":   "/api/videos",
				"groups":   "/api/groups",
				"health":   "/health",
			},
		})
	})

	// Favicon handler (return 204 to avoid 404s)
	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(204)
	})
}
