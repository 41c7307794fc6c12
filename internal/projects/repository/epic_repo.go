package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tencoder/tencoder-api/internal/projects/domain"
)

// EpicRepository reads epics and their tasks for project detail views.
type EpicRepository struct {
	db DB
}

func NewEpicRepository(db DB) *EpicRepository {
	return &EpicRepository{db: db}
}

// ListByProject returns the project's epics ordered by priority, each
// with its tasks attached in priority order. Two queries, stitched in
// memory.
func (r *EpicRepository) ListByProject(ctx context.Context, projectID string) ([]domain.Epic, error) {
	const epicQ = `
SELECT id, project_id, title, description, status, priority, created_at, updated_at
FROM epics WHERE project_id = $1 ORDER BY priority ASC, created_at ASC;`

	rows, err := r.db.Query(ctx, epicQ, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	epics := []domain.Epic{}
	index := map[string]int{}
	for rows.Next() {
		var e domain.Epic
		if err := rows.Scan(&e.ID, &e.ProjectID, &e.Title, &e.Description,
			&e.Status, &e.Priority, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		e.Tasks = []domain.Task{}
		index[e.ID] = len(epics)
		epics = append(epics, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(epics) == 0 {
		return epics, nil
	}

	const taskQ = `
SELECT t.id, t.epic_id, t.title, t.acceptance, t.checkers, t.trace, t.status, t.priority, t.created_at, t.updated_at
FROM tasks t
JOIN epics e ON e.id = t.epic_id
WHERE e.project_id = $1
ORDER BY t.priority ASC, t.created_at ASC;`

	taskRows, err := r.db.Query(ctx, taskQ, projectID)
	if err != nil {
		return nil, err
	}
	defer taskRows.Close()

	for taskRows.Next() {
		var t domain.Task
		var acceptance, checkers, trace []byte
		if err := taskRows.Scan(&t.ID, &t.EpicID, &t.Title, &acceptance, &checkers, &trace,
			&t.Status, &t.Priority, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		if err := decodeTaskJSON(&t, acceptance, checkers, trace); err != nil {
			return nil, err
		}
		if i, ok := index[t.EpicID]; ok {
			epics[i].Tasks = append(epics[i].Tasks, t)
		}
	}
	return epics, taskRows.Err()
}

func decodeTaskJSON(t *domain.Task, acceptance, checkers, trace []byte) error {
	if len(acceptance) > 0 {
		if err := json.Unmarshal(acceptance, &t.Acceptance); err != nil {
			return fmt.Errorf("decode task acceptance: %w", err)
		}
	}
	if len(checkers) > 0 {
		if err := json.Unmarshal(checkers, &t.Checkers); err != nil {
			return fmt.Errorf("decode task checkers: %w", err)
		}
	}
	if len(trace) > 0 {
		if err := json.Unmarshal(trace, &t.Trace); err != nil {
			return fmt.Errorf("decode task trace: %w", err)
		}
	}
	return nil
}
