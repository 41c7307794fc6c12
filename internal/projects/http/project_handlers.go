// Package http exposes the project planning API over gin: projects,
// PRDs, epics and signals, all scoped to the authenticated user.
package http

import (
	"github.com/gin-gonic/gin"

	api "github.com/tencoder/tencoder-api/internal/api/http"
	"github.com/tencoder/tencoder-api/internal/apperr"
	"github.com/tencoder/tencoder-api/internal/auth"
	"github.com/tencoder/tencoder-api/internal/projects/domain"
	"github.com/tencoder/tencoder-api/internal/projects/service"
)

// Handler serves all project-scoped routes.
type Handler struct {
	projects *service.ProjectService
	prds     *service.PRDService

	maxUploadBytes int64
}

func NewHandler(projects *service.ProjectService, prds *service.PRDService, maxUploadBytes int64) *Handler {
	return &Handler{projects: projects, prds: prds, maxUploadBytes: maxUploadBytes}
}

// CreateProject handles POST /projects.
func (h *Handler) CreateProject(c *gin.Context) {
	var req createProjectReq
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Fail(c, apperr.Validation("Invalid JSON body", nil), "")
		return
	}
	if e := req.validate(); e != nil {
		api.Fail(c, e, "")
		return
	}

	p, err := h.projects.Create(c.Request.Context(), auth.UserDBID(c), service.CreateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		RepoURL:     req.RepoURL,
	})
	if err != nil {
		api.Fail(c, err, "Failed to create project")
		return
	}
	api.Created(c, gin.H{"project": p})
}

// ListProjects handles GET /projects with pagination.
func (h *Handler) ListProjects(c *gin.Context) {
	page, e := parsePagination(c, projectSortColumns, "updatedAt")
	if e != nil {
		api.Fail(c, e, "")
		return
	}

	items, meta, err := h.projects.List(c.Request.Context(), auth.UserDBID(c), page)
	if err != nil {
		api.Fail(c, err, "Failed to list projects")
		return
	}
	if items == nil {
		items = []domain.Project{}
	}
	api.OKPage(c, gin.H{"projects": items}, meta)
}

// GetProject handles GET /projects/:projectId, returning the project
// with its active PRDs, epics, recent signals and digests.
func (h *Handler) GetProject(c *gin.Context) {
	detail, err := h.projects.Get(c.Request.Context(), c.Param("projectId"), auth.UserDBID(c))
	if err != nil {
		api.Fail(c, err, "Failed to fetch project")
		return
	}
	api.OK(c, gin.H{"project": detail})
}

// UpdateProject handles PUT /projects/:projectId.
func (h *Handler) UpdateProject(c *gin.Context) {
	var req updateProjectReq
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Fail(c, apperr.Validation("Invalid JSON body", nil), "")
		return
	}
	if e := req.validate(); e != nil {
		api.Fail(c, e, "")
		return
	}

	detail, err := h.projects.Update(c.Request.Context(), c.Param("projectId"), auth.UserDBID(c), service.UpdateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		RepoURL:     req.RepoURL,
		IsActive:    req.IsActive,
	})
	if err != nil {
		api.Fail(c, err, "Failed to update project")
		return
	}
	api.OK(c, gin.H{"project": detail})
}

// DeleteProject handles DELETE /projects/:projectId.
func (h *Handler) DeleteProject(c *gin.Context) {
	if err := h.projects.Delete(c.Request.Context(), c.Param("projectId"), auth.UserDBID(c)); err != nil {
		api.Fail(c, err, "Failed to delete project")
		return
	}
	api.OK(c, gin.H{"message": "Project deleted successfully"})
}

// ListEpics handles GET /projects/:projectId/epics.
func (h *Handler) ListEpics(c *gin.Context) {
	epics, err := h.projects.ListEpics(c.Request.Context(), c.Param("projectId"), auth.UserDBID(c))
	if err != nil {
		api.Fail(c, err, "Failed to list epics")
		return
	}
	if epics == nil {
		epics = []domain.Epic{}
	}
	api.OK(c, gin.H{"epics": epics})
}

// ListSignals handles GET /projects/:projectId/signals.
func (h *Handler) ListSignals(c *gin.Context) {
	signals, err := h.projects.ListSignals(c.Request.Context(), c.Param("projectId"), auth.UserDBID(c), 0)
	if err != nil {
		api.Fail(c, err, "Failed to list signals")
		return
	}
	if signals == nil {
		signals = []domain.Signal{}
	}
	api.OK(c, gin.H{"signals": signals})
}

// CreateSignal handles POST /projects/:projectId/signals.
func (h *Handler) CreateSignal(c *gin.Context) {
	var req createSignalReq
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Fail(c, apperr.Validation("Invalid JSON body", nil), "")
		return
	}
	if e := req.validate(); e != nil {
		api.Fail(c, e, "")
		return
	}

	sig, err := h.projects.RecordSignal(c.Request.Context(), c.Param("projectId"), auth.UserDBID(c), domain.NewSignal{
		Type:     req.Type,
		Value:    req.Value,
		Metadata: req.Metadata,
	})
	if err != nil {
		api.Fail(c, err, "Failed to record signal")
		return
	}
	api.Created(c, gin.H{"signal": sig})
}
