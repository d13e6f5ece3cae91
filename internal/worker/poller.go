package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/cuongbtq/quantum-tracker/internal/normalizer"
	"github.com/cuongbtq/quantum-tracker/internal/provider"
	"github.com/cuongbtq/quantum-tracker/internal/worker/domain"
)

// runPoller polls once immediately, then every poll interval
func (w *Worker) runPoller(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		if _, err := w.pollOnce(ctx); err != nil && ctx.Err() == nil {
			w.logger.Error("Status poll failed",
				slog.String("error", err.Error()),
			)
		}

		select {
		case <-ctx.Done():
			w.logger.Info("Poller stopped - context canceled")
			return
		case <-w.stopChan:
			w.logger.Info("Poller stopped - stopChan closed")
			return
		case <-ticker.C:
		}
	}
}

// pollOnce lists the latest jobs, normalizes them and publishes one status
// event per job that has an id. It returns the number of events published.
func (w *Worker) pollOnce(ctx context.Context) (int, error) {
	jobs, err := w.jobs.Jobs(ctx, provider.JobQuery{Limit: w.pollLimit})
	if err != nil {
		return 0, fmt.Errorf("failed to list jobs: %w", err)
	}

	observedAt := w.now()
	published := 0
	for _, job := range jobs {
		rec := normalizer.NormalizeJob(job)
		event, ok := domain.NewStatusEvent(rec, observedAt)
		if !ok {
			w.logger.Warn("Skipping job without id")
			continue
		}

		body, err := json.Marshal(event)
		if err != nil {
			return published, fmt.Errorf("failed to encode status event: %w", err)
		}

		if err := w.broker.PublishWithRetry(ctx, event.EventID, body, domain.EventContentType); err != nil {
			return published, fmt.Errorf("failed to publish status event for job %s: %w", event.JobID, err)
		}

		published++
		if w.metrics != nil {
			w.metrics.EventPublished()
		}
	}

	w.logger.Info("Status poll finished",
		slog.Int("jobs", len(jobs)),
		slog.Int("published", published),
	)

	return published, nil
}
