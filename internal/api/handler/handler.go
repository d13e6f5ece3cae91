package handler

import (
	"context"
	"log/slog"
	"time"

	"github.com/cuongbtq/quantum-tracker/internal/api/model"
	"github.com/cuongbtq/quantum-tracker/internal/api/storage"
	"github.com/cuongbtq/quantum-tracker/internal/provider"
)

// Provider is the upstream the handlers read jobs and backends from
type Provider interface {
	Jobs(ctx context.Context, query provider.JobQuery) ([]*provider.Job, error)
	Job(ctx context.Context, jobID string) (*provider.Job, error)
	Backends(ctx context.Context) ([]*provider.Backend, error)
	Ping(ctx context.Context) error
}

// HistoryReader lists recorded status transitions
type HistoryReader interface {
	ListTransitions(ctx context.Context, filter storage.TransitionFilter) ([]model.StatusTransition, error)
}

// HealthChecker is satisfied by the postgres client
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Dependencies holds all dependencies needed by handlers.
// History and DB are nil when status history is disabled.
type Dependencies struct {
	Logger   *slog.Logger
	Provider Provider
	History  HistoryReader
	DB       HealthChecker
	Now      func() time.Time
}

func (d *Dependencies) now() time.Time {
	if d.Now == nil {
		return time.Now()
	}
	return d.Now()
}

// JobHandler handles job-related HTTP requests
type JobHandler struct {
	logger   *slog.Logger
	provider Provider
	history  HistoryReader
	now      func() time.Time
}

// NewJobHandler creates a new JobHandler instance
func NewJobHandler(deps *Dependencies) *JobHandler {
	return &JobHandler{
		logger:   deps.Logger,
		provider: deps.Provider,
		history:  deps.History,
		now:      deps.now,
	}
}

// BackendHandler handles backend listing
type BackendHandler struct {
	logger   *slog.Logger
	provider Provider
}

func NewBackendHandler(deps *Dependencies) *BackendHandler {
	return &BackendHandler{
		logger:   deps.Logger,
		provider: deps.Provider,
	}
}

// HealthHandler reports readiness of the service's dependencies
type HealthHandler struct {
	logger   *slog.Logger
	provider Provider
	db       HealthChecker
	timeout  time.Duration
}

func NewHealthHandler(deps *Dependencies) *HealthHandler {
	return &HealthHandler{
		logger:   deps.Logger,
		provider: deps.Provider,
		db:       deps.DB,
		timeout:  5 * time.Second,
	}
}
