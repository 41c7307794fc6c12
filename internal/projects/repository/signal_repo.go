package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/tencoder/tencoder-api/internal/projects/domain"
)

// SignalRepository persists observed repository/CI facts per project.
type SignalRepository struct {
	db DB
}

func NewSignalRepository(db DB) *SignalRepository {
	return &SignalRepository{db: db}
}

func (r *SignalRepository) Insert(ctx context.Context, projectID string, in domain.NewSignal) (*domain.Signal, error) {
	valueJSON, err := json.Marshal(in.Value)
	if err != nil {
		return nil, fmt.Errorf("encode signal value: %w", err)
	}
	var metaJSON []byte
	if in.Metadata != nil {
		if metaJSON, err = json.Marshal(in.Metadata); err != nil {
			return nil, fmt.Errorf("encode signal metadata: %w", err)
		}
	}

	const q = `
INSERT INTO signals (id, project_id, type, value, metadata)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, project_id, type, value, metadata, timestamp;`

	return scanSignal(r.db.QueryRow(ctx, q, uuid.NewString(), projectID, in.Type, valueJSON, metaJSON))
}

// Recent returns the newest signals for a project.
func (r *SignalRepository) Recent(ctx context.Context, projectID string, limit int) ([]domain.Signal, error) {
	const q = `
SELECT id, project_id, type, value, metadata, timestamp
FROM signals WHERE project_id = $1 ORDER BY timestamp DESC LIMIT $2;`

	rows, err := r.db.Query(ctx, q, projectID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Signal{}
	for rows.Next() {
		s, err := scanSignal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSignal(row rowScanner) (*domain.Signal, error) {
	var s domain.Signal
	var valueJSON, metaJSON []byte
	if err := row.Scan(&s.ID, &s.ProjectID, &s.Type, &valueJSON, &metaJSON, &s.Timestamp); err != nil {
		return nil, err
	}
	if len(valueJSON) > 0 {
		if err := json.Unmarshal(valueJSON, &s.Value); err != nil {
			return nil, fmt.Errorf("decode signal value: %w", err)
		}
	}
	if len(metaJSON) > 0 {
		if err := json.Unmarshal(metaJSON, &s.Metadata); err != nil {
			return nil, fmt.Errorf("decode signal metadata: %w", err)
		}
	}
	return &s, nil
}
