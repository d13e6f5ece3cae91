package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/cuongbtq/quantum-tracker/internal/api/model"
	"github.com/cuongbtq/quantum-tracker/shared/postgresql"
	"github.com/jmoiron/sqlx"
)

type Storage struct {
	db *sqlx.DB
}

func NewStorage(pg *postgresql.Client) *Storage {
	return &Storage{
		db: pg.GetDB(),
	}
}

type TransitionFilter struct {
	JobID    string
	PageSize int
	Cursor   *TransitionCursor
}

type TransitionCursor struct {
	ObservedAt time.Time
	EventID    string
}

// ListTransitions returns up to PageSize+1 transitions of one job, newest
// first. The extra row tells the caller whether another page exists.
func (s *Storage) ListTransitions(ctx context.Context, filter TransitionFilter) ([]model.StatusTransition, error) {
	query := `
        SELECT
            event_id, job_id, status, backend, user_label, observed_at
        FROM job_status_history
        WHERE job_id = $1
    `
	args := []interface{}{filter.JobID}
	argIdx := 2

	if filter.Cursor != nil {
		query += fmt.Sprintf(" AND (observed_at, event_id) < ($%d, $%d)", argIdx, argIdx+1)
		args = append(args, filter.Cursor.ObservedAt, filter.Cursor.EventID)
		argIdx += 2
	}

	query += " ORDER BY observed_at DESC, event_id DESC"

	query += fmt.Sprintf(" LIMIT $%d", argIdx)
	args = append(args, filter.PageSize+1)

	var transitions []model.StatusTransition
	err := s.db.SelectContext(ctx, &transitions, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transitions: %w", err)
	}

	return transitions, nil
}
