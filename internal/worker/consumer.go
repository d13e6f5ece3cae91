package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/cuongbtq/quantum-tracker/internal/worker/domain"
)

// eventMessage pairs a decoded event with the delivery to settle
type eventMessage struct {
	event    *domain.StatusEvent
	delivery amqp.Delivery
}

// errDeliveriesClosed is returned when the broker closes the delivery channel
var errDeliveriesClosed = errors.New("rabbitmq delivery channel closed")

// setupConsumer starts consuming with QoS and returns the delivery channel
func (w *Worker) setupConsumer() (<-chan amqp.Delivery, error) {
	deliveries, err := w.broker.Consume(w.workerID, w.prefetchCount)
	if err != nil {
		return nil, fmt.Errorf("failed to start consuming: %w", err)
	}

	w.logger.Info("RabbitMQ consumer started",
		slog.String("consumer_tag", w.workerID),
		slog.Int("prefetch_count", w.prefetchCount),
	)

	return deliveries, nil
}

// startMessageDispatcher decodes deliveries and hands them to the worker pool.
// Invalid events are dropped without requeue.
func (w *Worker) startMessageDispatcher(ctx context.Context, deliveries <-chan amqp.Delivery) error {
	w.logger.Info("Message dispatcher started",
		slog.String("worker_id", w.workerID),
	)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Message dispatcher stopped - context canceled")
			return nil

		case delivery, ok := <-deliveries:
			if !ok {
				select {
				case <-w.stopChan:
					return nil
				default:
				}
				w.logger.Warn("RabbitMQ delivery channel closed")
				return errDeliveriesClosed
			}

			event, err := domain.DecodeStatusEvent(delivery.Body)
			if err != nil {
				w.logger.Error("Dropping invalid status event",
					slog.String("error", err.Error()),
					slog.String("message_id", delivery.MessageId),
				)
				w.settle(delivery, domain.OutcomeDrop)
				continue
			}

			select {
			case w.eventsChan <- &eventMessage{event: event, delivery: delivery}:
				w.logger.Debug("Event dispatched to worker pool",
					slog.String("event_id", event.EventID),
					slog.String("job_id", event.JobID),
					slog.Uint64("delivery_tag", delivery.DeliveryTag),
				)
			case <-ctx.Done():
				w.logger.Info("Message dispatcher stopped while dispatching event")
				w.settle(delivery, domain.OutcomeRequeue)
				return nil
			}
		}
	}
}

// settle acks or nacks a delivery according to outcome
func (w *Worker) settle(delivery amqp.Delivery, outcome string) {
	var err error
	switch outcome {
	case domain.OutcomeAck:
		err = delivery.Ack(false)
	case domain.OutcomeRequeue:
		err = delivery.Nack(false, true)
	default:
		err = delivery.Nack(false, false)
	}

	if err != nil {
		w.logger.Error("Failed to settle message",
			slog.String("outcome", outcome),
			slog.Uint64("delivery_tag", delivery.DeliveryTag),
			slog.String("error", err.Error()),
		)
		return
	}

	if w.metrics != nil {
		w.metrics.EventProcessed(outcome)
	}
}
