package http

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tencoder/tencoder-api/internal/apperr"
	"github.com/tencoder/tencoder-api/internal/projects/domain"
)

const (
	maxNameLength        = 255
	maxDescriptionLength = 1000

	defaultPageLimit = 20
	maxPageLimit     = 100
)

type fieldIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Sortable columns per entity, keyed by the API-facing name.
var (
	projectSortColumns = map[string]string{
		"createdAt": "created_at",
		"updatedAt": "updated_at",
		"name":      "name",
	}
	prdSortColumns = map[string]string{
		"createdAt": "created_at",
		"updatedAt": "updated_at",
		"title":     "title",
		"version":   "version",
	}
)

// parsePagination validates page/limit/sortBy/sortOrder query params.
// Out-of-range values are errors, not clamped.
func parsePagination(c *gin.Context, sortColumns map[string]string, defaultSort string) (domain.PageRequest, *apperr.Error) {
	var issues []fieldIssue

	page := 1
	if raw := c.Query("page"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			issues = append(issues, fieldIssue{"page", "must be an integer >= 1"})
		} else {
			page = v
		}
	}

	limit := defaultPageLimit
	if raw := c.Query("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > maxPageLimit {
			issues = append(issues, fieldIssue{"limit", "must be an integer between 1 and 100"})
		} else {
			limit = v
		}
	}

	sortColumn := sortColumns[defaultSort]
	if raw := c.Query("sortBy"); raw != "" {
		col, ok := sortColumns[raw]
		if !ok {
			issues = append(issues, fieldIssue{"sortBy", "unsupported sort field"})
		} else {
			sortColumn = col
		}
	}

	sortOrder := "desc"
	if raw := c.Query("sortOrder"); raw != "" {
		switch strings.ToLower(raw) {
		case "asc", "desc":
			sortOrder = strings.ToLower(raw)
		default:
			issues = append(issues, fieldIssue{"sortOrder", "must be asc or desc"})
		}
	}

	if len(issues) > 0 {
		return domain.PageRequest{}, apperr.Validation("Invalid pagination parameters", issues)
	}

	return domain.PageRequest{
		Page:       page,
		Limit:      limit,
		SortColumn: sortColumn,
		SortOrder:  sortOrder,
	}, nil
}

type createProjectReq struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	RepoURL     string `json:"repoUrl"`
}

func (r *createProjectReq) validate() *apperr.Error {
	var issues []fieldIssue

	name := strings.TrimSpace(r.Name)
	if name == "" || len(name) > maxNameLength {
		issues = append(issues, fieldIssue{"name", "must be between 1 and 255 characters"})
	}
	if len(r.Description) > maxDescriptionLength {
		issues = append(issues, fieldIssue{"description", "must be at most 1000 characters"})
	}
	if r.RepoURL != "" && !validURL(r.RepoURL) {
		issues = append(issues, fieldIssue{"repoUrl", "must be a valid URL"})
	}

	if len(issues) > 0 {
		return apperr.Validation("Invalid project data", issues)
	}
	r.Name = name
	return nil
}

type updateProjectReq struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	RepoURL     *string `json:"repoUrl"`
	IsActive    *bool   `json:"isActive"`
}

func (r *updateProjectReq) validate() *apperr.Error {
	var issues []fieldIssue

	if r.Name != nil {
		name := strings.TrimSpace(*r.Name)
		if name == "" || len(name) > maxNameLength {
			issues = append(issues, fieldIssue{"name", "must be between 1 and 255 characters"})
		} else {
			*r.Name = name
		}
	}
	if r.Description != nil && len(*r.Description) > maxDescriptionLength {
		issues = append(issues, fieldIssue{"description", "must be at most 1000 characters"})
	}
	if r.RepoURL != nil && *r.RepoURL != "" && !validURL(*r.RepoURL) {
		issues = append(issues, fieldIssue{"repoUrl", "must be a valid URL"})
	}

	if len(issues) > 0 {
		return apperr.Validation("Invalid project update data", issues)
	}
	return nil
}

type createPRDReq struct {
	Title    string              `json:"title"`
	Content  string              `json:"content"`
	Metadata *domain.PRDMetadata `json:"metadata"`
	Version  string              `json:"version"`
	IsActive *bool               `json:"isActive"`
}

func (r *createPRDReq) validate() *apperr.Error {
	var issues []fieldIssue

	title := strings.TrimSpace(r.Title)
	if title == "" || len(title) > maxNameLength {
		issues = append(issues, fieldIssue{"title", "must be between 1 and 255 characters"})
	}
	if r.Content == "" {
		issues = append(issues, fieldIssue{"content", "must not be empty"})
	}
	if r.Metadata == nil {
		issues = append(issues, fieldIssue{"metadata", "required field is missing"})
	} else {
		for _, f := range []struct {
			name string
			nil_ bool
		}{
			{"metadata.objectives", r.Metadata.Objectives == nil},
			{"metadata.milestones", r.Metadata.Milestones == nil},
			{"metadata.constraints", r.Metadata.Constraints == nil},
			{"metadata.definitionOfDone", r.Metadata.DefinitionOfDone == nil},
		} {
			if f.nil_ {
				issues = append(issues, fieldIssue{f.name, "required field is missing"})
			}
		}
	}

	if len(issues) > 0 {
		return apperr.Validation("Invalid PRD data", issues)
	}
	r.Title = title
	return nil
}

type updatePRDReq struct {
	Title    *string             `json:"title"`
	Content  *string             `json:"content"`
	Metadata *domain.PRDMetadata `json:"metadata"`
	Version  *string             `json:"version"`
	IsActive *bool               `json:"isActive"`
}

func (r *updatePRDReq) validate() *apperr.Error {
	var issues []fieldIssue

	if r.Title != nil {
		title := strings.TrimSpace(*r.Title)
		if title == "" || len(title) > maxNameLength {
			issues = append(issues, fieldIssue{"title", "must be between 1 and 255 characters"})
		} else {
			*r.Title = title
		}
	}
	if r.Content != nil && *r.Content == "" {
		issues = append(issues, fieldIssue{"content", "must not be empty"})
	}

	if len(issues) > 0 {
		return apperr.Validation("Invalid PRD update data", issues)
	}
	return nil
}

type createSignalReq struct {
	Type     string         `json:"type"`
	Value    any            `json:"value"`
	Metadata map[string]any `json:"metadata"`
}

func (r *createSignalReq) validate() *apperr.Error {
	var issues []fieldIssue

	if strings.TrimSpace(r.Type) == "" {
		issues = append(issues, fieldIssue{"type", "must not be empty"})
	}
	if r.Value == nil {
		issues = append(issues, fieldIssue{"value", "required field is missing"})
	}

	if len(issues) > 0 {
		return apperr.Validation("Invalid signal data", issues)
	}
	return nil
}

func validURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
