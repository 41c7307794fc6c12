package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/tencoder/tencoder-api/internal/projects/domain"
)

// DigestRepository persists run digests and answers the queries the
// nightly digest job needs.
type DigestRepository struct {
	db DB
}

func NewDigestRepository(db DB) *DigestRepository {
	return &DigestRepository{db: db}
}

func (r *DigestRepository) Insert(ctx context.Context, d *domain.Digest) (*domain.Digest, error) {
	encode := func(v []string) ([]byte, error) {
		if v == nil {
			v = []string{}
		}
		return json.Marshal(v)
	}

	completed, err := encode(d.CompletedTasks)
	if err != nil {
		return nil, err
	}
	newTasks, err := encode(d.NewTasks)
	if err != nil {
		return nil, err
	}
	blockers, err := encode(d.Blockers)
	if err != nil {
		return nil, err
	}
	insights, err := encode(d.Insights)
	if err != nil {
		return nil, err
	}

	const q = `
INSERT INTO run_digests (id, project_id, digest_type, completed_tasks, new_tasks, blockers, insights)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, created_at;`

	out := *d
	out.ID = uuid.NewString()
	err = r.db.QueryRow(ctx, q, out.ID, d.ProjectID, d.DigestType, completed, newTasks, blockers, insights).
		Scan(&out.ID, &out.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Recent returns the newest digests for a project.
func (r *DigestRepository) Recent(ctx context.Context, projectID string, limit int) ([]domain.Digest, error) {
	const q = `
SELECT id, project_id, digest_type, completed_tasks, new_tasks, blockers, insights, created_at
FROM run_digests WHERE project_id = $1 ORDER BY created_at DESC LIMIT $2;`

	rows, err := r.db.Query(ctx, q, projectID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Digest{}
	for rows.Next() {
		var d domain.Digest
		var completed, newTasks, blockers, insights []byte
		if err := rows.Scan(&d.ID, &d.ProjectID, &d.DigestType,
			&completed, &newTasks, &blockers, &insights, &d.CreatedAt); err != nil {
			return nil, err
		}
		for _, f := range []struct {
			raw []byte
			dst *[]string
		}{
			{completed, &d.CompletedTasks},
			{newTasks, &d.NewTasks},
			{blockers, &d.Blockers},
			{insights, &d.Insights},
		} {
			if len(f.raw) == 0 {
				*f.dst = []string{}
				continue
			}
			if err := json.Unmarshal(f.raw, f.dst); err != nil {
				return nil, fmt.Errorf("decode digest field: %w", err)
			}
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// ActiveProjectIDs lists projects the nightly job should digest.
func (r *DigestRepository) ActiveProjectIDs(ctx context.Context) ([]string, error) {
	const q = `SELECT id FROM projects WHERE is_active = true;`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// TaskTitlesByStatus groups a project's task titles by status, the raw
// material for a daily digest.
func (r *DigestRepository) TaskTitlesByStatus(ctx context.Context, projectID string) (map[string][]string, error) {
	const q = `
SELECT t.status, t.title
FROM tasks t
JOIN epics e ON e.id = t.epic_id
WHERE e.project_id = $1
ORDER BY t.updated_at DESC;`

	rows, err := r.db.Query(ctx, q, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string][]string{}
	for rows.Next() {
		var status, title string
		if err := rows.Scan(&status, &title); err != nil {
			return nil, err
		}
		out[status] = append(out[status], title)
	}
	return out, rows.Err()
}
