package service

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tencoder/tencoder-api/internal/apperr"
	"github.com/tencoder/tencoder-api/internal/events"
	"github.com/tencoder/tencoder-api/internal/projects/domain"
)

func newTestServices() (*ProjectService, *PRDService, *fakeProjectRepo, *fakePRDRepo) {
	projects := newFakeProjectRepo()
	prds := newFakePRDRepo(projects)
	epics := &fakeEpicRepo{epics: map[string][]domain.Epic{}}
	signals := newFakeSignalRepo()
	digests := &fakeDigestRepo{digests: map[string][]domain.Digest{}}

	projectSvc := NewProjectService(projects, prds, epics, signals, digests, nil)
	prdSvc := NewPRDService(projects, prds, nil)
	return projectSvc, prdSvc, projects, prds
}

func TestProjectService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("derives repo owner and name from a GitHub URL", func(t *testing.T) {
		svc, _, repo, _ := newTestServices()

		p, err := svc.Create(ctx, "user-1", CreateProjectInput{
			Name:    "Todo App",
			RepoURL: "https://github.com/demo/todo-app.git",
		})
		require.NoError(t, err)

		assert.Equal(t, "demo", p.RepoOwner)
		assert.Equal(t, "todo-app", p.RepoName)
		assert.Equal(t, "todo-app", repo.lastNew.RepoName)
	})

	t.Run("non-GitHub URLs leave owner and name unset", func(t *testing.T) {
		svc, _, _, _ := newTestServices()

		p, err := svc.Create(ctx, "user-1", CreateProjectInput{
			Name:    "Internal",
			RepoURL: "https://gitlab.example.com/team/internal",
		})
		require.NoError(t, err)

		assert.Empty(t, p.RepoOwner)
		assert.Empty(t, p.RepoName)
	})
}

func TestProjectService_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("assembles the nested detail view", func(t *testing.T) {
		svc, prdSvc, repo, _ := newTestServices()
		repo.add("proj-1", "user-1", "Todo App")

		_, err := prdSvc.Create(ctx, "proj-1", "user-1", domain.NewPRD{
			Title: "Spec", Content: "# Spec", IsActive: true,
		})
		require.NoError(t, err)
		_, err = svc.RecordSignal(ctx, "proj-1", "user-1", domain.NewSignal{Type: "ci_status", Value: "passing"})
		require.NoError(t, err)

		detail, err := svc.Get(ctx, "proj-1", "user-1")
		require.NoError(t, err)

		require.Len(t, detail.PRDs, 1)
		assert.True(t, detail.PRDs[0].IsActive)
		require.Len(t, detail.Signals, 1)
		assert.NotNil(t, detail.Epics)
		assert.Empty(t, detail.Digests)
	})

	t.Run("another user's project is indistinguishable from a missing one", func(t *testing.T) {
		svc, _, repo, _ := newTestServices()
		repo.add("proj-1", "user-1", "Todo App")

		_, errOther := svc.Get(ctx, "proj-1", "user-2")
		_, errMissing := svc.Get(ctx, "no-such-project", "user-2")

		eOther := apperr.As(errOther)
		eMissing := apperr.As(errMissing)
		require.NotNil(t, eOther)
		require.NotNil(t, eMissing)
		assert.Equal(t, eMissing.Code, eOther.Code)
		assert.Equal(t, eMissing.Message, eOther.Message)
	})
}

func TestProjectService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("pagination math over 25 projects", func(t *testing.T) {
		svc, _, repo, _ := newTestServices()
		for i := 0; i < 25; i++ {
			repo.add("proj-"+string(rune('a'+i)), "user-1", "P")
		}

		items, meta, err := svc.List(ctx, "user-1", domain.PageRequest{
			Page: 2, Limit: 10, SortColumn: "updated_at", SortOrder: "desc",
		})
		require.NoError(t, err)

		assert.Len(t, items, 10)
		assert.Equal(t, 25, meta.Total)
		assert.Equal(t, 3, meta.TotalPages)
		assert.Equal(t, 2, meta.Page)
	})

	t.Run("only the caller's projects are counted", func(t *testing.T) {
		svc, _, repo, _ := newTestServices()
		repo.add("proj-1", "user-1", "Mine")
		repo.add("proj-2", "user-2", "Theirs")

		items, meta, err := svc.List(ctx, "user-1", domain.PageRequest{Page: 1, Limit: 20})
		require.NoError(t, err)
		assert.Len(t, items, 1)
		assert.Equal(t, 1, meta.Total)
	})
}

func TestProjectService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("re-derives repo coordinates when the URL changes", func(t *testing.T) {
		svc, _, repo, _ := newTestServices()
		repo.add("proj-1", "user-1", "Todo App")
		url := "https://github.com/acme/rewrite"

		detail, err := svc.Update(ctx, "proj-1", "user-1", UpdateProjectInput{RepoURL: &url})
		require.NoError(t, err)

		assert.Equal(t, "acme", detail.RepoOwner)
		assert.Equal(t, "rewrite", detail.RepoName)
	})

	t.Run("unowned project maps to not found", func(t *testing.T) {
		svc, _, repo, _ := newTestServices()
		repo.add("proj-1", "user-1", "Todo App")
		name := "Hijack"

		_, err := svc.Update(ctx, "proj-1", "user-2", UpdateProjectInput{Name: &name})
		e := apperr.As(err)
		require.NotNil(t, e)
		assert.Equal(t, apperr.CodeNotFound, e.Code)
	})
}

func TestProjectService_Signals(t *testing.T) {
	ctx := context.Background()

	t.Run("recording requires ownership", func(t *testing.T) {
		svc, _, repo, _ := newTestServices()
		repo.add("proj-1", "user-1", "Todo App")

		_, err := svc.RecordSignal(ctx, "proj-1", "user-2", domain.NewSignal{Type: "ci_status", Value: "failing"})
		e := apperr.As(err)
		require.NotNil(t, e)
		assert.Equal(t, apperr.CodeNotFound, e.Code)
	})

	t.Run("listing defaults the limit", func(t *testing.T) {
		svc, _, repo, _ := newTestServices()
		repo.add("proj-1", "user-1", "Todo App")
		for i := 0; i < 15; i++ {
			_, err := svc.RecordSignal(ctx, "proj-1", "user-1", domain.NewSignal{Type: "ping", Value: i})
			require.NoError(t, err)
		}

		sigs, err := svc.ListSignals(ctx, "proj-1", "user-1", 0)
		require.NoError(t, err)
		assert.Len(t, sigs, detailSignalLimit)
	})
}

func newCachedServices(t *testing.T) (*ProjectService, *fakeProjectRepo, *fakeSignalRepo) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	projects := newFakeProjectRepo()
	signals := newFakeSignalRepo()
	svc := NewProjectService(projects, newFakePRDRepo(projects),
		&fakeEpicRepo{epics: map[string][]domain.Epic{}}, signals,
		&fakeDigestRepo{digests: map[string][]domain.Digest{}},
		events.NewPublisher(client))
	return svc, projects, signals
}

func TestProjectService_SignalCache(t *testing.T) {
	ctx := context.Background()

	t.Run("warm cache serves reads without the store", func(t *testing.T) {
		svc, repo, signals := newCachedServices(t)
		repo.add("proj-1", "user-1", "Todo App")

		for i := 0; i < 3; i++ {
			_, err := svc.RecordSignal(ctx, "proj-1", "user-1", domain.NewSignal{Type: "ping", Value: i})
			require.NoError(t, err)
		}

		// Empty the store so only the cache can answer.
		signals.signals = map[string][]domain.Signal{}

		sigs, err := svc.ListSignals(ctx, "proj-1", "user-1", 2)
		require.NoError(t, err)
		require.Len(t, sigs, 2)
		assert.Equal(t, "sig-3", sigs[0].ID)
	})

	t.Run("short cache falls back to the store", func(t *testing.T) {
		svc, repo, signals := newCachedServices(t)
		repo.add("proj-1", "user-1", "Todo App")

		_, err := svc.RecordSignal(ctx, "proj-1", "user-1", domain.NewSignal{Type: "ping", Value: 1})
		require.NoError(t, err)

		// A row written outside the service exists only in the store.
		_, err = signals.Insert(ctx, "proj-1", domain.NewSignal{Type: "ping", Value: 2})
		require.NoError(t, err)

		sigs, err := svc.ListSignals(ctx, "proj-1", "user-1", 2)
		require.NoError(t, err)
		assert.Len(t, sigs, 2)
	})

	t.Run("detail view reads through the cache", func(t *testing.T) {
		svc, repo, signals := newCachedServices(t)
		repo.add("proj-1", "user-1", "Todo App")

		for i := 0; i < detailSignalLimit; i++ {
			_, err := svc.RecordSignal(ctx, "proj-1", "user-1", domain.NewSignal{Type: "ping", Value: i})
			require.NoError(t, err)
		}
		signals.signals = map[string][]domain.Signal{}

		detail, err := svc.Get(ctx, "proj-1", "user-1")
		require.NoError(t, err)
		assert.Len(t, detail.Signals, detailSignalLimit)
	})
}

func TestProjectService_Delete(t *testing.T) {
	ctx := context.Background()

	svc, _, repo, _ := newTestServices()
	repo.add("proj-1", "user-1", "Todo App")

	require.NoError(t, svc.Delete(ctx, "proj-1", "user-1"))

	err := svc.Delete(ctx, "proj-1", "user-1")
	e := apperr.As(err)
	require.NotNil(t, e)
	assert.Equal(t, apperr.CodeNotFound, e.Code)
}
