package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	api "github.com/tencoder/tencoder-api/internal/api/http"
	"github.com/tencoder/tencoder-api/internal/apperr"
	"github.com/tencoder/tencoder-api/internal/auth"
	"github.com/tencoder/tencoder-api/internal/projects/domain"
)

// CreatePRD handles POST /projects/:projectId/prds. New PRDs default
// to active, which deactivates the project's previous active PRD.
func (h *Handler) CreatePRD(c *gin.Context) {
	var req createPRDReq
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Fail(c, apperr.Validation("Invalid JSON body", nil), "")
		return
	}
	if e := req.validate(); e != nil {
		api.Fail(c, e, "")
		return
	}

	version := req.Version
	if version == "" {
		version = "1.0.0"
	}
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	prd, err := h.prds.Create(c.Request.Context(), c.Param("projectId"), auth.UserDBID(c), domain.NewPRD{
		Title:    req.Title,
		Content:  req.Content,
		Metadata: *req.Metadata,
		Version:  version,
		IsActive: isActive,
	})
	if err != nil {
		api.Fail(c, err, "Failed to create PRD")
		return
	}
	api.Created(c, gin.H{"prd": prd})
}

// ListPRDs handles GET /projects/:projectId/prds with pagination.
func (h *Handler) ListPRDs(c *gin.Context) {
	page, e := parsePagination(c, prdSortColumns, "createdAt")
	if e != nil {
		api.Fail(c, e, "")
		return
	}

	items, meta, err := h.prds.ListByProject(c.Request.Context(), c.Param("projectId"), auth.UserDBID(c), page)
	if err != nil {
		api.Fail(c, err, "Failed to list PRDs")
		return
	}
	if items == nil {
		items = []domain.PRD{}
	}
	api.OKPage(c, gin.H{"prds": items}, meta)
}

// GetPRD handles GET /projects/:projectId/prds/:prdId.
func (h *Handler) GetPRD(c *gin.Context) {
	prd, err := h.prds.Get(c.Request.Context(), c.Param("projectId"), c.Param("prdId"), auth.UserDBID(c))
	if err != nil {
		api.Fail(c, err, "Failed to fetch PRD")
		return
	}
	api.OK(c, gin.H{"prd": prd})
}

// UpdatePRD handles PUT /projects/:projectId/prds/:prdId.
func (h *Handler) UpdatePRD(c *gin.Context) {
	var req updatePRDReq
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Fail(c, apperr.Validation("Invalid JSON body", nil), "")
		return
	}
	if e := req.validate(); e != nil {
		api.Fail(c, e, "")
		return
	}

	prd, err := h.prds.Update(c.Request.Context(), c.Param("projectId"), c.Param("prdId"), auth.UserDBID(c), domain.PRDUpdate{
		Title:    req.Title,
		Content:  req.Content,
		Metadata: req.Metadata,
		Version:  req.Version,
		IsActive: req.IsActive,
	})
	if err != nil {
		api.Fail(c, err, "Failed to update PRD")
		return
	}
	api.OK(c, gin.H{"prd": prd})
}

// DeletePRD handles DELETE /projects/:projectId/prds/:prdId.
func (h *Handler) DeletePRD(c *gin.Context) {
	if err := h.prds.Delete(c.Request.Context(), c.Param("projectId"), c.Param("prdId"), auth.UserDBID(c)); err != nil {
		api.Fail(c, err, "Failed to delete PRD")
		return
	}
	api.OK(c, gin.H{"message": "PRD deleted successfully"})
}

// UploadPRD handles POST /projects/:projectId/prds/upload. Unlike the
// JSON endpoints, file validation failures are real HTTP 400s.
func (h *Handler) UploadPRD(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			api.FailStatus(c, http.StatusBadRequest, apperr.Validation("File too large", nil))
			return
		}
		api.FailStatus(c, http.StatusBadRequest, apperr.Validation("No file uploaded", nil))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			api.FailStatus(c, http.StatusBadRequest, apperr.Validation("File too large", nil))
			return
		}
		api.Fail(c, err, "Failed to read uploaded file")
		return
	}

	res, err := h.prds.CreateFromUpload(c.Request.Context(), c.Param("projectId"), auth.UserDBID(c), header.Filename, data)
	if err != nil {
		if e := apperr.As(err); e != nil && e.Code == apperr.CodeValidation {
			api.FailStatus(c, http.StatusBadRequest, e)
			return
		}
		api.Fail(c, err, "Failed to upload PRD")
		return
	}

	warnings := res.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	api.Created(c, gin.H{
		"prd": res.PRD,
		"validation": gin.H{
			"contentWarnings":    warnings,
			"hasYamlFrontMatter": res.HasFrontMatter,
		},
	})
}
