// Package api wires the HTTP routes and middleware.
package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jonesrussell/docbridge/internal/config"
	"github.com/jonesrussell/docbridge/internal/handlers"
	"github.com/jonesrussell/docbridge/internal/logger"
)

// NewRouter builds the gin engine with CORS, request logging, health
// and metrics endpoints, and the API routes.
func NewRouter(cfg *config.Config, h *handlers.Handler, log logger.Logger) *gin.Engine {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(log))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "service": "docbridge"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.POST("/detect-url", h.DetectURL)

		imports := api.Group("/import")
		{
			imports.POST("/url", h.ImportURL)
			imports.POST("/file", h.ImportFile)
			imports.POST("/text", h.ImportText)
		}

		documents := api.Group("/documents")
		{
			documents.GET("", h.ListDocuments)
			documents.GET("/:id", h.GetDocument)
			documents.GET("/:id/download", h.DownloadDocument)
			documents.DELETE("/:id", h.DeleteDocument)
		}

		jiraGroup := api.Group("/jira")
		{
			jiraGroup.POST("/search", h.SearchImport)
			jiraGroup.POST("/projects/:key/import", h.ProjectImport)
			jiraGroup.GET("/issues/:key", h.GetIssueInfo)
			jiraGroup.POST("/issues/:key/done", h.MarkIssueDone)
		}

		api.POST("/confluence/pull", h.ConfluencePull)

		meetings := api.Group("/meetings")
		{
			meetings.POST("", h.CreateMeeting)
			meetings.GET("", h.ListMeetings)
			meetings.GET("/:id", h.GetMeeting)
			meetings.PUT("/:id", h.UpdateMeeting)
			meetings.DELETE("/:id", h.DeleteMeeting)
			meetings.GET("/:id/documents", h.MeetingDocuments)
			meetings.POST("/:id/documents/:docID", h.LinkMeetingDocument)
			meetings.DELETE("/:id/documents/:docID", h.UnlinkMeetingDocument)
			meetings.POST("/:id/narrate", h.NarrateMeeting)
		}

		projects := api.Group("/projects")
		{
			projects.POST("", h.CreateProject)
			projects.GET("", h.ListProjects)
			projects.GET("/:id", h.GetProject)
			projects.GET("/:id/documents", h.ProjectDocuments)
			projects.DELETE("/:id", h.DeleteProject)
		}
	}

	return router
}

func requestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Info("request",
			logger.String("method", c.Request.Method),
			logger.String("path", c.Request.URL.Path),
			logger.Int("status", c.Writer.Status()),
			logger.Duration("latency", time.Since(start)))
	}
}
