package http

import "github.com/gin-gonic/gin"

// Register mounts all project routes on the group. uploadGuards are
// applied to the PRD upload route only (rate limiting).
func (h *Handler) Register(rg *gin.RouterGroup, uploadGuards ...gin.HandlerFunc) {
	rg.POST("/projects", h.CreateProject)
	rg.GET("/projects", h.ListProjects)
	rg.GET("/projects/:projectId", h.GetProject)
	rg.PUT("/projects/:projectId", h.UpdateProject)
	rg.DELETE("/projects/:projectId", h.DeleteProject)

	rg.GET("/projects/:projectId/epics", h.ListEpics)
	rg.GET("/projects/:projectId/signals", h.ListSignals)
	rg.POST("/projects/:projectId/signals", h.CreateSignal)

	rg.POST("/projects/:projectId/prds", h.CreatePRD)
	rg.GET("/projects/:projectId/prds", h.ListPRDs)
	rg.POST("/projects/:projectId/prds/upload", append(uploadGuards, gin.HandlerFunc(h.UploadPRD))...)

	rg.GET("/projects/:projectId/prds/:prdId", h.GetPRD)
	rg.PUT("/projects/:projectId/prds/:prdId", h.UpdatePRD)
	rg.DELETE("/projects/:projectId/prds/:prdId", h.DeletePRD)
}
