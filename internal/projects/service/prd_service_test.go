package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tencoder/tencoder-api/internal/apperr"
	"github.com/tencoder/tencoder-api/internal/projects/domain"
)

func TestPRDService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("activating a new PRD deactivates the previous active one", func(t *testing.T) {
		_, svc, repo, prds := newTestServices()
		repo.add("proj-1", "user-1", "Todo App")

		first, err := svc.Create(ctx, "proj-1", "user-1", domain.NewPRD{
			Title: "v1", Content: "# v1", IsActive: true,
		})
		require.NoError(t, err)

		second, err := svc.Create(ctx, "proj-1", "user-1", domain.NewPRD{
			Title: "v2", Content: "# v2", IsActive: true,
		})
		require.NoError(t, err)
		assert.True(t, second.IsActive)

		assert.False(t, prds.prds[first.ID].IsActive)

		active, err := prds.ListActiveByProject(ctx, "proj-1")
		require.NoError(t, err)
		require.Len(t, active, 1)
		assert.Equal(t, second.ID, active[0].ID)
	})

	t.Run("inactive create leaves the active PRD alone", func(t *testing.T) {
		_, svc, repo, prds := newTestServices()
		repo.add("proj-1", "user-1", "Todo App")

		active, err := svc.Create(ctx, "proj-1", "user-1", domain.NewPRD{
			Title: "v1", Content: "# v1", IsActive: true,
		})
		require.NoError(t, err)

		_, err = svc.Create(ctx, "proj-1", "user-1", domain.NewPRD{
			Title: "draft", Content: "# draft",
		})
		require.NoError(t, err)

		assert.True(t, prds.prds[active.ID].IsActive)
	})

	t.Run("creating under an unowned project is not found", func(t *testing.T) {
		_, svc, repo, _ := newTestServices()
		repo.add("proj-1", "user-1", "Todo App")

		_, err := svc.Create(ctx, "proj-1", "user-2", domain.NewPRD{Title: "x", Content: "y"})
		e := apperr.As(err)
		require.NotNil(t, e)
		assert.Equal(t, apperr.CodeNotFound, e.Code)
		assert.Equal(t, "Project not found", e.Message)
	})
}

func TestPRDService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("activation flips the single active PRD", func(t *testing.T) {
		_, svc, repo, prds := newTestServices()
		repo.add("proj-1", "user-1", "Todo App")

		a, err := svc.Create(ctx, "proj-1", "user-1", domain.NewPRD{Title: "A", Content: "a", IsActive: true})
		require.NoError(t, err)
		b, err := svc.Create(ctx, "proj-1", "user-1", domain.NewPRD{Title: "B", Content: "b"})
		require.NoError(t, err)

		active := true
		updated, err := svc.Update(ctx, "proj-1", b.ID, "user-1", domain.PRDUpdate{IsActive: &active})
		require.NoError(t, err)

		assert.True(t, updated.IsActive)
		assert.False(t, prds.prds[a.ID].IsActive)
	})

	t.Run("ownership is checked before the write", func(t *testing.T) {
		_, svc, repo, _ := newTestServices()
		repo.add("proj-1", "user-1", "Todo App")
		prd, err := svc.Create(ctx, "proj-1", "user-1", domain.NewPRD{Title: "A", Content: "a"})
		require.NoError(t, err)

		title := "stolen"
		_, err = svc.Update(ctx, "proj-1", prd.ID, "user-2", domain.PRDUpdate{Title: &title})
		e := apperr.As(err)
		require.NotNil(t, e)
		assert.Equal(t, apperr.CodeNotFound, e.Code)
	})
}

func TestPRDService_ListByProject(t *testing.T) {
	ctx := context.Background()

	t.Run("unowned project yields an empty page, not an error", func(t *testing.T) {
		_, svc, repo, _ := newTestServices()
		repo.add("proj-1", "user-1", "Todo App")
		_, err := svc.Create(ctx, "proj-1", "user-1", domain.NewPRD{Title: "A", Content: "a"})
		require.NoError(t, err)

		items, meta, err := svc.ListByProject(ctx, "proj-1", "user-2", domain.PageRequest{Page: 1, Limit: 20})
		require.NoError(t, err)
		assert.Empty(t, items)
		assert.Equal(t, 0, meta.Total)
		assert.Equal(t, 0, meta.TotalPages)
	})

	t.Run("owner sees the totals", func(t *testing.T) {
		_, svc, repo, _ := newTestServices()
		repo.add("proj-1", "user-1", "Todo App")
		for i := 0; i < 3; i++ {
			_, err := svc.Create(ctx, "proj-1", "user-1", domain.NewPRD{Title: "A", Content: "a"})
			require.NoError(t, err)
		}

		items, meta, err := svc.ListByProject(ctx, "proj-1", "user-1", domain.PageRequest{Page: 1, Limit: 2})
		require.NoError(t, err)
		assert.Len(t, items, 2)
		assert.Equal(t, 3, meta.Total)
		assert.Equal(t, 2, meta.TotalPages)
	})
}

func TestPRDService_CreateFromUpload(t *testing.T) {
	ctx := context.Background()

	const doc = `---
objectives:
  - Ship the planning MVP
milestones:
  - name: MVP
    description: First usable release
constraints: []
definitionOfDone:
  - Tests green
---
# My Spec

## Problem
Plans drift away from the PRD.

## Solution
Keep them in one place with structured metadata.
`

	t.Run("ingests and persists as the active PRD", func(t *testing.T) {
		_, svc, repo, _ := newTestServices()
		repo.add("proj-1", "user-1", "Todo App")

		res, err := svc.CreateFromUpload(ctx, "proj-1", "user-1", "spec.md", []byte(doc))
		require.NoError(t, err)

		assert.Equal(t, "My Spec", res.PRD.Title)
		assert.True(t, res.PRD.IsActive)
		assert.True(t, res.HasFrontMatter)
		assert.Equal(t, []string{"Ship the planning MVP"}, res.PRD.Metadata.Objectives)
	})

	t.Run("upload replaces the previous active PRD", func(t *testing.T) {
		_, svc, repo, prds := newTestServices()
		repo.add("proj-1", "user-1", "Todo App")

		old, err := svc.Create(ctx, "proj-1", "user-1", domain.NewPRD{Title: "old", Content: "x", IsActive: true})
		require.NoError(t, err)

		_, err = svc.CreateFromUpload(ctx, "proj-1", "user-1", "spec.md", []byte(doc))
		require.NoError(t, err)

		assert.False(t, prds.prds[old.ID].IsActive)
	})

	t.Run("validation failures never touch the repository", func(t *testing.T) {
		_, svc, repo, prds := newTestServices()
		repo.add("proj-1", "user-1", "Todo App")

		_, err := svc.CreateFromUpload(ctx, "proj-1", "user-1", "spec.txt", []byte(doc))
		e := apperr.As(err)
		require.NotNil(t, e)
		assert.Equal(t, apperr.CodeValidation, e.Code)
		assert.Empty(t, prds.prds)
	})
}
