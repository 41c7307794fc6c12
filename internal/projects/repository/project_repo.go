package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/errgroup"

	"github.com/tencoder/tencoder-api/internal/projects/domain"
)

const projectColumns = `id, user_id, name,
coalesce(description, ''), coalesce(repo_url, ''), coalesce(repo_owner, ''), coalesce(repo_name, ''),
is_active, created_at, updated_at`

// ProjectRepository provides persistence operations for projects.
type ProjectRepository struct {
	db DB
}

func NewProjectRepository(db DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func scanProject(row pgx.Row) (*domain.Project, error) {
	var p domain.Project
	err := row.Scan(&p.ID, &p.UserID, &p.Name,
		&p.Description, &p.RepoURL, &p.RepoOwner, &p.RepoName,
		&p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Create inserts a new project for the given user.
func (r *ProjectRepository) Create(ctx context.Context, userID string, in domain.NewProject) (*domain.Project, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("name required")
	}
	if userID == "" {
		return nil, fmt.Errorf("user id required")
	}

	q := `
INSERT INTO projects (id, user_id, name, description, repo_url, repo_owner, repo_name)
VALUES ($1, $2, $3, nullif($4, ''), nullif($5, ''), nullif($6, ''), nullif($7, ''))
RETURNING ` + projectColumns + `;`

	row := r.db.QueryRow(ctx, q, uuid.NewString(), userID,
		in.Name, in.Description, in.RepoURL, in.RepoOwner, in.RepoName)
	return scanProject(row)
}

// GetByID returns the project only when it belongs to the given user.
// A project owned by someone else scans as ErrNotFound.
func (r *ProjectRepository) GetByID(ctx context.Context, id, userID string) (*domain.Project, error) {
	q := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1 AND user_id = $2;`
	return scanProject(r.db.QueryRow(ctx, q, id, userID))
}

// List returns one page of the user's projects together with the total
// count. Page and count queries run concurrently; the pool is safe for
// concurrent use.
func (r *ProjectRepository) List(ctx context.Context, userID string, page domain.PageRequest) ([]domain.Project, int, error) {
	g, gctx := errgroup.WithContext(ctx)

	var items []domain.Project
	g.Go(func() error {
		q := fmt.Sprintf(`SELECT %s FROM projects WHERE user_id = $1 ORDER BY %s %s LIMIT $2 OFFSET $3;`,
			projectColumns, page.SortColumn, strings.ToUpper(page.SortOrder))

		rows, err := r.db.Query(gctx, q, userID, page.Limit, page.Offset())
		if err != nil {
			return err
		}
		defer rows.Close()

		items = make([]domain.Project, 0, page.Limit)
		for rows.Next() {
			p, err := scanProject(rows)
			if err != nil {
				return err
			}
			items = append(items, *p)
		}
		return rows.Err()
	})

	var total int
	g.Go(func() error {
		const q = `SELECT count(*) FROM projects WHERE user_id = $1;`
		return r.db.QueryRow(gctx, q, userID).Scan(&total)
	})

	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Update applies the non-nil fields of upd, scoped by (id, user_id).
func (r *ProjectRepository) Update(ctx context.Context, id, userID string, upd domain.ProjectUpdate) (*domain.Project, error) {
	set := []string{"updated_at = now()"}
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if upd.Name != nil {
		set = append(set, "name = "+arg(*upd.Name))
	}
	if upd.Description != nil {
		set = append(set, "description = nullif("+arg(*upd.Description)+", '')")
	}
	if upd.RepoURL != nil {
		set = append(set, "repo_url = nullif("+arg(*upd.RepoURL)+", '')")
	}
	if upd.RepoOwner != nil {
		set = append(set, "repo_owner = nullif("+arg(*upd.RepoOwner)+", '')")
	}
	if upd.RepoName != nil {
		set = append(set, "repo_name = nullif("+arg(*upd.RepoName)+", '')")
	}
	if upd.IsActive != nil {
		set = append(set, "is_active = "+arg(*upd.IsActive))
	}

	q := fmt.Sprintf(`UPDATE projects SET %s WHERE id = %s AND user_id = %s RETURNING %s;`,
		strings.Join(set, ", "), arg(id), arg(userID), projectColumns)

	return scanProject(r.db.QueryRow(ctx, q, args...))
}

// Delete removes the project when owned by the user. Child rows go via
// ON DELETE CASCADE. A zero-row result means not found.
func (r *ProjectRepository) Delete(ctx context.Context, id, userID string) (bool, error) {
	const q = `DELETE FROM projects WHERE id = $1 AND user_id = $2;`
	ct, err := r.db.Exec(ctx, q, id, userID)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}
