package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/sync/errgroup"

	"github.com/tencoder/tencoder-api/internal/projects/domain"
)

const prdColumns = `id, project_id, title, content, metadata, version, is_active, created_at, updated_at`

// deactivateOthers clears the active flag on every other PRD of the
// project. It always runs inside the same transaction as the write
// that activates a PRD, so readers never observe two active rows.
const deactivateOthers = `
UPDATE prds SET is_active = false, updated_at = now()
WHERE project_id = $1 AND is_active = true AND id <> $2;`

// activeIndex backs the at-most-one-active invariant. Two writers can
// race past deactivateOthers when the project has no active row yet;
// the loser trips this index and the transaction is retried.
const activeIndex = "uq_prds_active_per_project"

const activationAttempts = 3

func isActiveIndexViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == activeIndex
}

// PRDRepository provides persistence operations for PRDs. All reads
// and deletes are transitively scoped through the parent project's
// owning user.
type PRDRepository struct {
	db DB
}

func NewPRDRepository(db DB) *PRDRepository {
	return &PRDRepository{db: db}
}

func scanPRD(row pgx.Row) (*domain.PRD, error) {
	var p domain.PRD
	var metaJSON []byte
	err := row.Scan(&p.ID, &p.ProjectID, &p.Title, &p.Content, &metaJSON,
		&p.Version, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if len(metaJSON) > 0 {
		if err := json.Unmarshal(metaJSON, &p.Metadata); err != nil {
			return nil, fmt.Errorf("decode prd metadata: %w", err)
		}
	}
	return &p, nil
}

// Create inserts a PRD. When the new record is active the deactivation
// of the previous active PRD and the insert commit atomically: the
// transaction serializes concurrent transitions on the same project
// through the row locks taken by the UPDATE.
func (r *PRDRepository) Create(ctx context.Context, projectID string, in domain.NewPRD) (*domain.PRD, error) {
	metaJSON, err := json.Marshal(in.Metadata)
	if err != nil {
		return nil, fmt.Errorf("encode prd metadata: %w", err)
	}

	version := in.Version
	if version == "" {
		version = "1.0.0"
	}

	for attempt := 0; attempt < activationAttempts; attempt++ {
		p, err := r.create(ctx, projectID, in, metaJSON, version)
		if err == nil {
			return p, nil
		}
		// concurrent activation → the retry's deactivateOthers now
		// sees the winner's committed row
		if in.IsActive && isActiveIndexViolation(err) {
			continue
		}
		return nil, err
	}
	return nil, fmt.Errorf("activate prd: too many concurrent activations on project %s", projectID)
}

func (r *PRDRepository) create(ctx context.Context, projectID string, in domain.NewPRD, metaJSON []byte, version string) (*domain.PRD, error) {
	id := uuid.NewString()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if in.IsActive {
		if _, err := tx.Exec(ctx, deactivateOthers, projectID, id); err != nil {
			return nil, err
		}
	}

	const q = `
INSERT INTO prds (id, project_id, title, content, metadata, version, is_active)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + prdColumns + `;`

	p, err := scanPRD(tx.QueryRow(ctx, q, id, projectID, in.Title, in.Content, metaJSON, version, in.IsActive))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

// GetByID returns the PRD only when it belongs to the given project and
// that project belongs to the given user.
func (r *PRDRepository) GetByID(ctx context.Context, projectID, id, userID string) (*domain.PRD, error) {
	const q = `
SELECT p.id, p.project_id, p.title, p.content, p.metadata, p.version, p.is_active, p.created_at, p.updated_at
FROM prds p
JOIN projects pr ON pr.id = p.project_id
WHERE p.id = $1 AND p.project_id = $2 AND pr.user_id = $3;`
	return scanPRD(r.db.QueryRow(ctx, q, id, projectID, userID))
}

// ListByProject returns one page of a project's PRDs plus the total
// count. The caller verifies project ownership first.
func (r *PRDRepository) ListByProject(ctx context.Context, projectID string, page domain.PageRequest) ([]domain.PRD, int, error) {
	g, gctx := errgroup.WithContext(ctx)

	var items []domain.PRD
	g.Go(func() error {
		q := fmt.Sprintf(`SELECT %s FROM prds WHERE project_id = $1 ORDER BY %s %s LIMIT $2 OFFSET $3;`,
			prdColumns, page.SortColumn, strings.ToUpper(page.SortOrder))

		rows, err := r.db.Query(gctx, q, projectID, page.Limit, page.Offset())
		if err != nil {
			return err
		}
		defer rows.Close()

		items = make([]domain.PRD, 0, page.Limit)
		for rows.Next() {
			p, err := scanPRD(rows)
			if err != nil {
				return err
			}
			items = append(items, *p)
		}
		return rows.Err()
	})

	var total int
	g.Go(func() error {
		const q = `SELECT count(*) FROM prds WHERE project_id = $1;`
		return r.db.QueryRow(gctx, q, projectID).Scan(&total)
	})

	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// ListActiveByProject returns the project's active PRDs, newest first.
// The partial unique index means at most one row, but the query does
// not assume it.
func (r *PRDRepository) ListActiveByProject(ctx context.Context, projectID string) ([]domain.PRD, error) {
	const q = `SELECT ` + prdColumns + ` FROM prds
WHERE project_id = $1 AND is_active = true ORDER BY created_at DESC;`

	rows, err := r.db.Query(ctx, q, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.PRD{}
	for rows.Next() {
		p, err := scanPRD(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// Update applies the non-nil fields of upd. The row is locked first so
// an activation and the deactivation of its siblings commit as one
// unit. Ownership is verified by the service before this call.
func (r *PRDRepository) Update(ctx context.Context, id string, upd domain.PRDUpdate) (*domain.PRD, error) {
	activating := upd.IsActive != nil && *upd.IsActive

	for attempt := 0; attempt < activationAttempts; attempt++ {
		p, err := r.update(ctx, id, upd)
		if err == nil {
			return p, nil
		}
		if activating && isActiveIndexViolation(err) {
			continue
		}
		return nil, err
	}
	return nil, fmt.Errorf("activate prd: too many concurrent activations on prd %s", id)
}

func (r *PRDRepository) update(ctx context.Context, id string, upd domain.PRDUpdate) (*domain.PRD, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var projectID string
	err = tx.QueryRow(ctx, `SELECT project_id FROM prds WHERE id = $1 FOR UPDATE;`, id).Scan(&projectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	if upd.IsActive != nil && *upd.IsActive {
		if _, err := tx.Exec(ctx, deactivateOthers, projectID, id); err != nil {
			return nil, err
		}
	}

	set := []string{"updated_at = now()"}
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if upd.Title != nil {
		set = append(set, "title = "+arg(*upd.Title))
	}
	if upd.Content != nil {
		set = append(set, "content = "+arg(*upd.Content))
	}
	if upd.Metadata != nil {
		metaJSON, err := json.Marshal(upd.Metadata)
		if err != nil {
			return nil, fmt.Errorf("encode prd metadata: %w", err)
		}
		set = append(set, "metadata = "+arg(metaJSON))
	}
	if upd.Version != nil {
		set = append(set, "version = "+arg(*upd.Version))
	}
	if upd.IsActive != nil {
		set = append(set, "is_active = "+arg(*upd.IsActive))
	}

	q := fmt.Sprintf(`UPDATE prds SET %s WHERE id = %s RETURNING %s;`,
		strings.Join(set, ", "), arg(id), prdColumns)

	p, err := scanPRD(tx.QueryRow(ctx, q, args...))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes the PRD when its parent project is owned by the user.
func (r *PRDRepository) Delete(ctx context.Context, projectID, id, userID string) (bool, error) {
	const q = `
DELETE FROM prds p
USING projects pr
WHERE p.id = $1 AND p.project_id = $2 AND pr.id = p.project_id AND pr.user_id = $3;`
	ct, err := r.db.Exec(ctx, q, id, projectID, userID)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}
