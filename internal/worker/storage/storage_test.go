package storage

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuongbtq/quantum-tracker/internal/worker/domain"
)

const (
	lockQuery   = `SELECT pg_advisory_xact_lock(hashtext($1))`
	insertQuery = `INSERT INTO job_status_history`
)

func newTestStorage(t *testing.T) (*Storage, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewStorage(sqlx.NewDb(db, "postgres"), logger), mock
}

func transition() domain.Transition {
	backend := "ibm_kyiv"
	return domain.Transition{
		EventID:    "5f0c6c1e-3b7a-4f3e-9d55-0a8f2d0b7c11",
		JobID:      "job-1",
		Status:     "RUNNING",
		Backend:    &backend,
		UserLabel:  "user_abcdef",
		ObservedAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}
}

var latestColumns = []string{"status", "stale"}

func expectLatest(mock sqlmock.Sqlmock, tr domain.Transition) *sqlmock.ExpectedQuery {
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(lockQuery)).WithArgs(tr.JobID).WillReturnResult(sqlmock.NewResult(0, 0))
	return mock.ExpectQuery(`SELECT status, \(observed_at, event_id\) >= \(\$2, \$3\) AS stale\s+FROM job_status_history\s+WHERE job_id = \$1`).
		WithArgs(tr.JobID, tr.ObservedAt, tr.EventID)
}

func TestStorage_EnsureSchema(t *testing.T) {
	s, mock := newTestStorage(t)
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS job_status_history`).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStorage_RecordTransition(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(mock sqlmock.Sqlmock, tr domain.Transition)
		status    string
		want      bool
		errString string
	}{
		{
			name: "first observation",
			setup: func(mock sqlmock.Sqlmock, tr domain.Transition) {
				expectLatest(mock, tr).WillReturnRows(sqlmock.NewRows(latestColumns))
				mock.ExpectExec(insertQuery).
					WithArgs(tr.EventID, tr.JobID, tr.Status, *tr.Backend, tr.UserLabel, tr.ObservedAt).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
			want: true,
		},
		{
			name: "status changed",
			setup: func(mock sqlmock.Sqlmock, tr domain.Transition) {
				expectLatest(mock, tr).WillReturnRows(sqlmock.NewRows(latestColumns).AddRow("QUEUED", false))
				mock.ExpectExec(insertQuery).WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
			want: true,
		},
		{
			name: "status unchanged",
			setup: func(mock sqlmock.Sqlmock, tr domain.Transition) {
				expectLatest(mock, tr).WillReturnRows(sqlmock.NewRows(latestColumns).AddRow("RUNNING", false))
				mock.ExpectRollback()
			},
			want: false,
		},
		{
			name: "older than latest observation",
			setup: func(mock sqlmock.Sqlmock, tr domain.Transition) {
				// a later RUNNING row is already stored; this QUEUED poll arrived late
				expectLatest(mock, tr).WillReturnRows(sqlmock.NewRows(latestColumns).AddRow("RUNNING", true))
				mock.ExpectRollback()
			},
			status: "QUEUED",
			want:   false,
		},
		{
			name: "duplicate event",
			setup: func(mock sqlmock.Sqlmock, tr domain.Transition) {
				expectLatest(mock, tr).WillReturnRows(sqlmock.NewRows(latestColumns).AddRow("QUEUED", false))
				mock.ExpectExec(insertQuery).WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectCommit()
			},
			want: false,
		},
		{
			name: "begin fails",
			setup: func(mock sqlmock.Sqlmock, tr domain.Transition) {
				mock.ExpectBegin().WillReturnError(errors.New("too many connections"))
			},
			errString: "failed to begin transaction",
		},
		{
			name: "read fails",
			setup: func(mock sqlmock.Sqlmock, tr domain.Transition) {
				expectLatest(mock, tr).WillReturnError(errors.New("connection reset"))
				mock.ExpectRollback()
			},
			errString: "failed to read latest status",
		},
		{
			name: "insert fails",
			setup: func(mock sqlmock.Sqlmock, tr domain.Transition) {
				expectLatest(mock, tr).WillReturnRows(sqlmock.NewRows(latestColumns))
				mock.ExpectExec(insertQuery).WillReturnError(errors.New("disk full"))
				mock.ExpectRollback()
			},
			errString: "failed to insert transition",
		},
		{
			name: "commit fails",
			setup: func(mock sqlmock.Sqlmock, tr domain.Transition) {
				expectLatest(mock, tr).WillReturnRows(sqlmock.NewRows(latestColumns))
				mock.ExpectExec(insertQuery).WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit().WillReturnError(errors.New("serialization failure"))
			},
			errString: "failed to commit transition",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := newTestStorage(t)
			tr := transition()
			if tt.status != "" {
				tr.Status = tt.status
			}
			tt.setup(mock, tr)

			got, err := s.RecordTransition(context.Background(), tr)

			if tt.errString != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errString)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
