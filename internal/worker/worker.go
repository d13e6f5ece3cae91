package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"golang.org/x/sync/errgroup"

	"github.com/cuongbtq/quantum-tracker/internal/provider"
	"github.com/cuongbtq/quantum-tracker/internal/worker/domain"
)

const defaultEventTimeout = 10 * time.Second

// JobLister lists the latest provider jobs
type JobLister interface {
	Jobs(ctx context.Context, query provider.JobQuery) ([]*provider.Job, error)
}

// Broker publishes and consumes status events
type Broker interface {
	PublishWithRetry(ctx context.Context, messageID string, body []byte, contentType string) error
	Consume(consumerTag string, prefetchCount int) (<-chan amqp.Delivery, error)
	CancelConsumer(consumerTag string) error
}

// HistoryStore records status transitions
type HistoryStore interface {
	EnsureSchema(ctx context.Context) error
	RecordTransition(ctx context.Context, t domain.Transition) (bool, error)
}

// Recorder receives worker counters; nil disables them
type Recorder interface {
	EventPublished()
	EventProcessed(outcome string)
	TransitionStored()
}

// Config holds worker configuration
type Config struct {
	Logger        *slog.Logger
	Jobs          JobLister
	Broker        Broker
	Store         HistoryStore
	Metrics       Recorder
	Concurrency   int
	PrefetchCount int
	PollInterval  time.Duration
	PollLimit     int
	EventTimeout  time.Duration
	Now           func() time.Time
}

// Worker polls the provider for job statuses, publishes what it sees and
// records status transitions consumed back from the queue.
type Worker struct {
	logger        *slog.Logger
	jobs          JobLister
	broker        Broker
	store         HistoryStore
	metrics       Recorder
	workerID      string
	concurrency   int
	prefetchCount int
	pollInterval  time.Duration
	pollLimit     int
	eventTimeout  time.Duration
	now           func() time.Time

	eventsChan chan *eventMessage
	wg         sync.WaitGroup
	stopOnce   sync.Once
	stopChan   chan struct{}
}

// NewWorker creates a new worker instance
func NewWorker(cfg *Config) *Worker {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	prefetch := cfg.PrefetchCount
	if prefetch <= 0 {
		prefetch = cfg.Concurrency
	}
	eventTimeout := cfg.EventTimeout
	if eventTimeout <= 0 {
		eventTimeout = defaultEventTimeout
	}

	return &Worker{
		logger:        cfg.Logger,
		jobs:          cfg.Jobs,
		broker:        cfg.Broker,
		store:         cfg.Store,
		metrics:       cfg.Metrics,
		workerID:      "status-watcher-" + uuid.NewString()[:8],
		concurrency:   cfg.Concurrency,
		prefetchCount: prefetch,
		pollInterval:  cfg.PollInterval,
		pollLimit:     cfg.PollLimit,
		eventTimeout:  eventTimeout,
		now:           now,
		eventsChan:    make(chan *eventMessage, cfg.Concurrency),
		stopChan:      make(chan struct{}),
	}
}

// Start ensures the schema, then runs the poller, the dispatcher and the
// pool until ctx is canceled or one of them fails.
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info("Starting worker",
		slog.String("worker_id", w.workerID),
		slog.Int("concurrency", w.concurrency),
		slog.Duration("poll_interval", w.pollInterval),
		slog.Int("poll_limit", w.pollLimit),
	)

	if err := w.store.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("failed to prepare history storage: %w", err)
	}

	deliveries, err := w.setupConsumer()
	if err != nil {
		return err
	}

	w.spawnWorkerPool(ctx)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		w.runPoller(gctx)
		return nil
	})
	g.Go(func() error {
		return w.startMessageDispatcher(gctx, deliveries)
	})

	err = g.Wait()
	w.logger.Info("Worker context canceled, stopping...")
	return err
}

// Stop cancels the consumer and waits for in-flight events
func (w *Worker) Stop() {
	w.stopOnce.Do(func() {
		w.logger.Info("Stopping worker...")
		if err := w.broker.CancelConsumer(w.workerID); err != nil {
			w.logger.Warn("Failed to cancel consumer",
				slog.Any("error", err),
			)
		}
		close(w.stopChan)
		w.wg.Wait()
		w.logger.Info("Worker stopped")
	})
}
