package service

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/tencoder/tencoder-api/internal/projects/domain"
)

// In-memory repository fakes. They keep just enough behavior for the
// service rules under test: ownership scoping, the single-active-PRD
// transition and pagination math.

type fakeProjectRepo struct {
	projects map[string]*domain.Project
	lastNew  domain.NewProject
	seq      int
}

func newFakeProjectRepo() *fakeProjectRepo {
	return &fakeProjectRepo{projects: map[string]*domain.Project{}}
}

func (f *fakeProjectRepo) add(id, userID, name string) *domain.Project {
	p := &domain.Project{
		ID: id, UserID: userID, Name: name, IsActive: true,
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	f.projects[id] = p
	return p
}

func (f *fakeProjectRepo) Create(_ context.Context, userID string, in domain.NewProject) (*domain.Project, error) {
	f.lastNew = in
	f.seq++
	p := &domain.Project{
		ID: "proj-" + strconv.Itoa(f.seq), UserID: userID,
		Name: in.Name, Description: in.Description,
		RepoURL: in.RepoURL, RepoOwner: in.RepoOwner, RepoName: in.RepoName,
		IsActive: true, CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	f.projects[p.ID] = p
	return p, nil
}

func (f *fakeProjectRepo) GetByID(_ context.Context, id, userID string) (*domain.Project, error) {
	p, ok := f.projects[id]
	if !ok || p.UserID != userID {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProjectRepo) List(_ context.Context, userID string, page domain.PageRequest) ([]domain.Project, int, error) {
	var owned []domain.Project
	for _, p := range f.projects {
		if p.UserID == userID {
			owned = append(owned, *p)
		}
	}
	sort.Slice(owned, func(i, j int) bool { return owned[i].ID < owned[j].ID })

	total := len(owned)
	start := page.Offset()
	if start > total {
		start = total
	}
	end := start + page.Limit
	if end > total {
		end = total
	}
	return owned[start:end], total, nil
}

func (f *fakeProjectRepo) Update(_ context.Context, id, userID string, upd domain.ProjectUpdate) (*domain.Project, error) {
	p, ok := f.projects[id]
	if !ok || p.UserID != userID {
		return nil, domain.ErrNotFound
	}
	if upd.Name != nil {
		p.Name = *upd.Name
	}
	if upd.Description != nil {
		p.Description = *upd.Description
	}
	if upd.RepoURL != nil {
		p.RepoURL = *upd.RepoURL
	}
	if upd.RepoOwner != nil {
		p.RepoOwner = *upd.RepoOwner
	}
	if upd.RepoName != nil {
		p.RepoName = *upd.RepoName
	}
	if upd.IsActive != nil {
		p.IsActive = *upd.IsActive
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProjectRepo) Delete(_ context.Context, id, userID string) (bool, error) {
	p, ok := f.projects[id]
	if !ok || p.UserID != userID {
		return false, nil
	}
	delete(f.projects, id)
	return true, nil
}

type fakePRDRepo struct {
	prds     map[string]*domain.PRD
	projects *fakeProjectRepo
	seq      int
}

func newFakePRDRepo(projects *fakeProjectRepo) *fakePRDRepo {
	return &fakePRDRepo{prds: map[string]*domain.PRD{}, projects: projects}
}

// ownerOf resolves PRD scoping without a join; both fakes share the
// same project table.
func (f *fakePRDRepo) ownerOf(projectID string) string {
	if p, ok := f.projects.projects[projectID]; ok {
		return p.UserID
	}
	return ""
}

func (f *fakePRDRepo) deactivateOthers(projectID, keepID string) {
	for _, p := range f.prds {
		if p.ProjectID == projectID && p.ID != keepID {
			p.IsActive = false
		}
	}
}

func (f *fakePRDRepo) Create(_ context.Context, projectID string, in domain.NewPRD) (*domain.PRD, error) {
	f.seq++
	p := &domain.PRD{
		ID: "prd-" + strconv.Itoa(f.seq), ProjectID: projectID,
		Title: in.Title, Content: in.Content, Metadata: in.Metadata,
		Version: in.Version, IsActive: in.IsActive,
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	if p.Version == "" {
		p.Version = "1.0.0"
	}
	if p.IsActive {
		f.deactivateOthers(projectID, p.ID)
	}
	f.prds[p.ID] = p
	return p, nil
}

func (f *fakePRDRepo) GetByID(_ context.Context, projectID, id, userID string) (*domain.PRD, error) {
	p, ok := f.prds[id]
	if !ok || p.ProjectID != projectID || f.ownerOf(p.ProjectID) != userID {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePRDRepo) ListByProject(_ context.Context, projectID string, page domain.PageRequest) ([]domain.PRD, int, error) {
	var all []domain.PRD
	for _, p := range f.prds {
		if p.ProjectID == projectID {
			all = append(all, *p)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	total := len(all)
	start := page.Offset()
	if start > total {
		start = total
	}
	end := start + page.Limit
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

func (f *fakePRDRepo) ListActiveByProject(_ context.Context, projectID string) ([]domain.PRD, error) {
	out := []domain.PRD{}
	for _, p := range f.prds {
		if p.ProjectID == projectID && p.IsActive {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePRDRepo) Update(_ context.Context, id string, upd domain.PRDUpdate) (*domain.PRD, error) {
	p, ok := f.prds[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if upd.IsActive != nil && *upd.IsActive {
		f.deactivateOthers(p.ProjectID, id)
	}
	if upd.Title != nil {
		p.Title = *upd.Title
	}
	if upd.Content != nil {
		p.Content = *upd.Content
	}
	if upd.Metadata != nil {
		p.Metadata = *upd.Metadata
	}
	if upd.Version != nil {
		p.Version = *upd.Version
	}
	if upd.IsActive != nil {
		p.IsActive = *upd.IsActive
	}
	cp := *p
	return &cp, nil
}

func (f *fakePRDRepo) Delete(_ context.Context, projectID, id, userID string) (bool, error) {
	p, ok := f.prds[id]
	if !ok || p.ProjectID != projectID || f.ownerOf(p.ProjectID) != userID {
		return false, nil
	}
	delete(f.prds, id)
	return true, nil
}

type fakeEpicRepo struct {
	epics map[string][]domain.Epic
}

func (f *fakeEpicRepo) ListByProject(_ context.Context, projectID string) ([]domain.Epic, error) {
	// Like the real repository, an empty result is a non-nil slice.
	if f.epics[projectID] == nil {
		return []domain.Epic{}, nil
	}
	return f.epics[projectID], nil
}

type fakeSignalRepo struct {
	signals map[string][]domain.Signal
	seq     int
}

func newFakeSignalRepo() *fakeSignalRepo {
	return &fakeSignalRepo{signals: map[string][]domain.Signal{}}
}

func (f *fakeSignalRepo) Insert(_ context.Context, projectID string, in domain.NewSignal) (*domain.Signal, error) {
	f.seq++
	s := domain.Signal{
		ID: "sig-" + strconv.Itoa(f.seq), ProjectID: projectID,
		Type: in.Type, Value: in.Value, Metadata: in.Metadata,
		Timestamp: time.Now(),
	}
	f.signals[projectID] = append([]domain.Signal{s}, f.signals[projectID]...)
	return &s, nil
}

func (f *fakeSignalRepo) Recent(_ context.Context, projectID string, limit int) ([]domain.Signal, error) {
	sigs := f.signals[projectID]
	if len(sigs) > limit {
		sigs = sigs[:limit]
	}
	return sigs, nil
}

type fakeDigestRepo struct {
	digests map[string][]domain.Digest
}

func (f *fakeDigestRepo) Recent(_ context.Context, projectID string, limit int) ([]domain.Digest, error) {
	d := f.digests[projectID]
	if len(d) > limit {
		d = d[:limit]
	}
	return d, nil
}
