package service

import (
	"context"
	"errors"
	"log"

	"github.com/tencoder/tencoder-api/internal/apperr"
	"github.com/tencoder/tencoder-api/internal/events"
	"github.com/tencoder/tencoder-api/internal/prd/ingest"
	"github.com/tencoder/tencoder-api/internal/projects/domain"
)

type PRDRepo interface {
	Create(ctx context.Context, projectID string, in domain.NewPRD) (*domain.PRD, error)
	GetByID(ctx context.Context, projectID, id, userID string) (*domain.PRD, error)
	ListByProject(ctx context.Context, projectID string, page domain.PageRequest) ([]domain.PRD, int, error)
	ListActiveByProject(ctx context.Context, projectID string) ([]domain.PRD, error)
	Update(ctx context.Context, id string, upd domain.PRDUpdate) (*domain.PRD, error)
	Delete(ctx context.Context, projectID, id, userID string) (bool, error)
}

// PRDService handles PRD business logic. Every operation re-verifies
// that the caller owns the parent project before mutating.
type PRDService struct {
	projects ProjectRepo
	prds     PRDRepo
	events   *events.Publisher
}

func NewPRDService(projects ProjectRepo, prds PRDRepo, pub *events.Publisher) *PRDService {
	return &PRDService{projects: projects, prds: prds, events: pub}
}

// Create inserts a PRD under an owned project. When the record lands
// active (the default), the previous active PRD is deactivated in the
// same transaction by the repository.
func (s *PRDService) Create(ctx context.Context, projectID, userID string, in domain.NewPRD) (*domain.PRD, error) {
	if _, err := s.projects.GetByID(ctx, projectID, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperr.NotFound("Project")
		}
		return nil, err
	}

	prd, err := s.prds.Create(ctx, projectID, in)
	if err != nil {
		return nil, err
	}

	if prd.IsActive {
		s.publishActivated(ctx, prd)
	}
	return prd, nil
}

func (s *PRDService) Get(ctx context.Context, projectID, id, userID string) (*domain.PRD, error) {
	prd, err := s.prds.GetByID(ctx, projectID, id, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperr.NotFound("PRD")
		}
		return nil, err
	}
	return prd, nil
}

// ListByProject pages through a project's PRDs. A project the caller
// does not own yields an empty page, indistinguishable from a project
// without PRDs.
func (s *PRDService) ListByProject(ctx context.Context, projectID, userID string, page domain.PageRequest) ([]domain.PRD, domain.PageMeta, error) {
	if _, err := s.projects.GetByID(ctx, projectID, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return []domain.PRD{}, domain.NewPageMeta(page, 0), nil
		}
		return nil, domain.PageMeta{}, err
	}

	items, total, err := s.prds.ListByProject(ctx, projectID, page)
	if err != nil {
		return nil, domain.PageMeta{}, err
	}
	return items, domain.NewPageMeta(page, total), nil
}

// Update applies the provided fields after verifying ownership through
// the parent project. Activating a PRD deactivates its siblings
// atomically in the repository.
func (s *PRDService) Update(ctx context.Context, projectID, id, userID string, upd domain.PRDUpdate) (*domain.PRD, error) {
	if _, err := s.prds.GetByID(ctx, projectID, id, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperr.NotFound("PRD")
		}
		return nil, err
	}

	prd, err := s.prds.Update(ctx, id, upd)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperr.NotFound("PRD")
		}
		return nil, err
	}

	if upd.IsActive != nil && *upd.IsActive {
		s.publishActivated(ctx, prd)
	}
	return prd, nil
}

func (s *PRDService) Delete(ctx context.Context, projectID, id, userID string) error {
	deleted, err := s.prds.Delete(ctx, projectID, id, userID)
	if err != nil {
		return err
	}
	if !deleted {
		return apperr.NotFound("PRD")
	}
	return nil
}

// UploadResult pairs the created PRD with the advisory validation
// outcome surfaced to the client.
type UploadResult struct {
	PRD            *domain.PRD
	Warnings       []string
	HasFrontMatter bool
}

// CreateFromUpload runs the ingestion pipeline over an uploaded file
// and persists the result as a new active PRD.
func (s *PRDService) CreateFromUpload(ctx context.Context, projectID, userID, filename string, data []byte) (*UploadResult, error) {
	res, err := ingest.Ingest(filename, data)
	if err != nil {
		return nil, err
	}

	prd, err := s.Create(ctx, projectID, userID, domain.NewPRD{
		Title:    res.Title,
		Content:  res.Content,
		Metadata: res.Metadata,
		Version:  res.Version,
		IsActive: true,
	})
	if err != nil {
		return nil, err
	}

	return &UploadResult{
		PRD:            prd,
		Warnings:       res.Warnings,
		HasFrontMatter: res.HasFrontMatter,
	}, nil
}

func (s *PRDService) publishActivated(ctx context.Context, prd *domain.PRD) {
	if err := s.events.PRDActivated(ctx, prd); err != nil {
		log.Printf("[warn] operation=prd_activated publish failed: %v", err)
	}
}
