package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cuongbtq/quantum-tracker/internal/worker/domain"
)

// processEvent records the event as a transition. Store failures are
// retryable; the event itself was validated by the dispatcher.
func (w *Worker) processEvent(ctx context.Context, event *domain.StatusEvent) error {
	if err := event.Validate(); err != nil {
		return err
	}

	eventCtx, cancel := context.WithTimeout(ctx, w.eventTimeout)
	defer cancel()

	stored, err := w.store.RecordTransition(eventCtx, event.Transition())
	if err != nil {
		return domain.NewRetryableError(fmt.Errorf("failed to record transition: %w", err))
	}

	if stored {
		if w.metrics != nil {
			w.metrics.TransitionStored()
		}
		w.logger.Info("Transition stored",
			slog.String("event_id", event.EventID),
			slog.String("job_id", event.JobID),
			slog.String("status", event.Status),
		)
	}

	return nil
}
