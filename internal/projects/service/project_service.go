// Package service implements the business rules over the repositories:
// ownership scoping, repo URL derivation, pagination and the nested
// project detail view.
package service

import (
	"context"
	"errors"
	"log"
	"regexp"
	"strings"

	"github.com/tencoder/tencoder-api/internal/apperr"
	"github.com/tencoder/tencoder-api/internal/events"
	"github.com/tencoder/tencoder-api/internal/projects/domain"
)

const (
	detailSignalLimit = 10
	detailDigestLimit = 5
)

// githubRepo matches github.com/{owner}/{name} anywhere in a URL.
// Non-GitHub URLs simply leave owner/name unset; no error is raised.
var githubRepo = regexp.MustCompile(`github\.com/([^/]+)/([^/]+)`)

type ProjectRepo interface {
	Create(ctx context.Context, userID string, in domain.NewProject) (*domain.Project, error)
	GetByID(ctx context.Context, id, userID string) (*domain.Project, error)
	List(ctx context.Context, userID string, page domain.PageRequest) ([]domain.Project, int, error)
	Update(ctx context.Context, id, userID string, upd domain.ProjectUpdate) (*domain.Project, error)
	Delete(ctx context.Context, id, userID string) (bool, error)
}

type EpicRepo interface {
	ListByProject(ctx context.Context, projectID string) ([]domain.Epic, error)
}

type SignalRepo interface {
	Insert(ctx context.Context, projectID string, in domain.NewSignal) (*domain.Signal, error)
	Recent(ctx context.Context, projectID string, limit int) ([]domain.Signal, error)
}

type DigestRepo interface {
	Recent(ctx context.Context, projectID string, limit int) ([]domain.Digest, error)
}

// ProjectService handles project-related business logic.
type ProjectService struct {
	projects ProjectRepo
	prds     PRDRepo
	epics    EpicRepo
	signals  SignalRepo
	digests  DigestRepo
	events   *events.Publisher
}

func NewProjectService(projects ProjectRepo, prds PRDRepo, epics EpicRepo, signals SignalRepo, digests DigestRepo, pub *events.Publisher) *ProjectService {
	return &ProjectService{
		projects: projects,
		prds:     prds,
		epics:    epics,
		signals:  signals,
		digests:  digests,
		events:   pub,
	}
}

type CreateProjectInput struct {
	Name        string
	Description string
	RepoURL     string
}

// Create derives repo owner/name from a GitHub-style URL, best-effort,
// and inserts the project.
func (s *ProjectService) Create(ctx context.Context, userID string, in CreateProjectInput) (*domain.Project, error) {
	owner, name := parseGitHubURL(in.RepoURL)
	return s.projects.Create(ctx, userID, domain.NewProject{
		Name:        in.Name,
		Description: in.Description,
		RepoURL:     in.RepoURL,
		RepoOwner:   owner,
		RepoName:    name,
	})
}

// Get returns the project with its nested records. A project owned by
// a different user is indistinguishable from a missing one.
func (s *ProjectService) Get(ctx context.Context, id, userID string) (*domain.ProjectDetail, error) {
	p, err := s.projects.GetByID(ctx, id, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperr.NotFound("Project")
		}
		return nil, err
	}

	detail := &domain.ProjectDetail{Project: *p}

	if detail.PRDs, err = s.prds.ListActiveByProject(ctx, id); err != nil {
		return nil, err
	}
	if detail.Epics, err = s.epics.ListByProject(ctx, id); err != nil {
		return nil, err
	}
	if detail.Signals, err = s.recentSignals(ctx, id, detailSignalLimit); err != nil {
		return nil, err
	}
	if detail.Digests, err = s.digests.Recent(ctx, id, detailDigestLimit); err != nil {
		return nil, err
	}
	return detail, nil
}

// List returns one page of the user's projects.
func (s *ProjectService) List(ctx context.Context, userID string, page domain.PageRequest) ([]domain.Project, domain.PageMeta, error) {
	items, total, err := s.projects.List(ctx, userID, page)
	if err != nil {
		return nil, domain.PageMeta{}, err
	}
	return items, domain.NewPageMeta(page, total), nil
}

type UpdateProjectInput struct {
	Name        *string
	Description *string
	RepoURL     *string
	IsActive    *bool
}

// Update applies the provided fields, re-deriving repo owner/name when
// the URL changes, and returns the fresh detail view.
func (s *ProjectService) Update(ctx context.Context, id, userID string, in UpdateProjectInput) (*domain.ProjectDetail, error) {
	upd := domain.ProjectUpdate{
		Name:        in.Name,
		Description: in.Description,
		RepoURL:     in.RepoURL,
		IsActive:    in.IsActive,
	}
	if in.RepoURL != nil {
		owner, name := parseGitHubURL(*in.RepoURL)
		if owner != "" {
			upd.RepoOwner = &owner
			upd.RepoName = &name
		}
	}

	if _, err := s.projects.Update(ctx, id, userID, upd); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperr.NotFound("Project")
		}
		return nil, err
	}
	return s.Get(ctx, id, userID)
}

// Delete removes the project and, via cascade, everything under it.
func (s *ProjectService) Delete(ctx context.Context, id, userID string) error {
	deleted, err := s.projects.Delete(ctx, id, userID)
	if err != nil {
		return err
	}
	if !deleted {
		return apperr.NotFound("Project")
	}
	return nil
}

// RecordSignal stores a signal after verifying project ownership and
// refreshes the recent-signal cache.
func (s *ProjectService) RecordSignal(ctx context.Context, projectID, userID string, in domain.NewSignal) (*domain.Signal, error) {
	if _, err := s.projects.GetByID(ctx, projectID, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperr.NotFound("Project")
		}
		return nil, err
	}

	sig, err := s.signals.Insert(ctx, projectID, in)
	if err != nil {
		return nil, err
	}

	if err := s.events.CacheSignal(ctx, sig); err != nil {
		log.Printf("[warn] operation=record_signal cache failed: %v", err)
	}
	return sig, nil
}

// ListSignals returns the newest signals for an owned project.
func (s *ProjectService) ListSignals(ctx context.Context, projectID, userID string, limit int) ([]domain.Signal, error) {
	if _, err := s.projects.GetByID(ctx, projectID, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperr.NotFound("Project")
		}
		return nil, err
	}
	if limit <= 0 {
		limit = detailSignalLimit
	}
	return s.recentSignals(ctx, projectID, limit)
}

// recentSignals serves reads from the Redis cache when it holds enough
// entries, falling back to the store on a cold or short cache. Cache
// errors degrade to the store, never to the caller.
func (s *ProjectService) recentSignals(ctx context.Context, projectID string, limit int) ([]domain.Signal, error) {
	cached, err := s.events.RecentSignals(ctx, projectID)
	if err != nil {
		log.Printf("[warn] operation=recent_signals cache read failed: %v", err)
	} else if len(cached) >= limit {
		return cached[:limit], nil
	}
	return s.signals.Recent(ctx, projectID, limit)
}

// ListEpics returns the project's epics with tasks for an owned project.
func (s *ProjectService) ListEpics(ctx context.Context, projectID, userID string) ([]domain.Epic, error) {
	if _, err := s.projects.GetByID(ctx, projectID, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperr.NotFound("Project")
		}
		return nil, err
	}
	return s.epics.ListByProject(ctx, projectID)
}

func parseGitHubURL(repoURL string) (owner, name string) {
	if repoURL == "" {
		return "", ""
	}
	m := githubRepo.FindStringSubmatch(repoURL)
	if m == nil {
		return "", ""
	}
	return m[1], strings.TrimSuffix(m[2], ".git")
}
