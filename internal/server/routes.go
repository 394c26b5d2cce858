package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-matcher/internal/shared/metrics"
	"resume-matcher/internal/shared/server/respond"
)

func registerRoutes(r *gin.Engine, deps Deps) {
	h := &handlers{
		orch:           deps.Orchestrator,
		users:          deps.Users,
		maxUploadBytes: deps.Config.MaxUploadBytes,
	}

	api := r.Group("/api/v1")

	api.GET("/health", func(c *gin.Context) {
		respond.OK(c, deps.Health.Status())
	})
	api.GET("/ready", func(c *gin.Context) {
		report := deps.Health.Ready(c.Request.Context())
		status := http.StatusOK
		if !report.OK {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(c, status, report)
	})
	api.GET("/metrics", metrics.Handler())

	api.POST("/users", h.createUser)
	api.GET("/users/:id", h.getUser)
	api.GET("/users/:id/resumes", h.listResumesByOwner)
	api.GET("/users/:id/analyses", h.listAnalysesByOwner)

	api.POST("/resumes", h.uploadResume)
	api.GET("/resumes/:id", h.getResume)
	api.DELETE("/resumes/:id", h.deleteResume)
	api.GET("/resumes/:id/file", h.downloadOriginal)
	api.GET("/resumes/:id/analyses", h.listAnalysesByResume)
	api.POST("/resumes/:id/analyze", h.analyzeResume)

	api.POST("/analyze", h.analyze)
	api.GET("/analyses/:id", h.getAnalysis)
}
