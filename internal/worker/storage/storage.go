package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/cuongbtq/quantum-tracker/internal/worker/domain"
)

//go:embed schema.sql
var schema string

// Storage handles all database operations for the worker
type Storage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStorage creates a new Storage instance
func NewStorage(db *sqlx.DB, logger *slog.Logger) *Storage {
	return &Storage{
		db:     db,
		logger: logger,
	}
}

// EnsureSchema creates the history table and its index when missing
func (s *Storage) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// latestRow is the newest stored observation for a job. Stale is set when
// that row is not older than the incoming observation.
type latestRow struct {
	Status string `db:"status"`
	Stale  bool   `db:"stale"`
}

// RecordTransition stores t unless the job's latest recorded status already
// equals t.Status, a newer observation is already stored, or the event was
// stored before. It reports whether a row was written. Writers for the same
// job are serialized by an advisory lock.
func (s *Storage) RecordTransition(ctx context.Context, t domain.Transition) (bool, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, t.JobID); err != nil {
		return false, fmt.Errorf("failed to lock job history: %w", err)
	}

	var latest latestRow
	err = tx.GetContext(ctx, &latest, `
		SELECT status, (observed_at, event_id) >= ($2, $3) AS stale
		FROM job_status_history
		WHERE job_id = $1
		ORDER BY observed_at DESC, event_id DESC
		LIMIT 1
	`, t.JobID, t.ObservedAt, t.EventID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return false, fmt.Errorf("failed to read latest status: %w", err)
	case latest.Stale:
		// history only moves forward; late deliveries are dropped
		s.logger.Debug("Observation older than latest, skipping",
			slog.String("job_id", t.JobID),
			slog.String("event_id", t.EventID),
			slog.Time("observed_at", t.ObservedAt),
		)
		return false, nil
	case latest.Status == t.Status:
		s.logger.Debug("Status unchanged, skipping",
			slog.String("job_id", t.JobID),
			slog.String("status", t.Status),
		)
		return false, nil
	}

	res, err := tx.NamedExecContext(ctx, `
		INSERT INTO job_status_history (
			event_id, job_id, status, backend, user_label, observed_at
		) VALUES (
			:event_id, :job_id, :status, :backend, :user_label, :observed_at
		)
		ON CONFLICT (event_id) DO NOTHING
	`, t)
	if err != nil {
		return false, fmt.Errorf("failed to insert transition: %w", err)
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read insert result: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transition: %w", err)
	}

	if inserted > 0 {
		s.logger.Info("Status transition recorded",
			slog.String("job_id", t.JobID),
			slog.String("from", latest.Status),
			slog.String("to", t.Status),
		)
	}

	return inserted > 0, nil
}
