package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cuongbtq/quantum-tracker/internal/normalizer"
)

// StatusEvent is one observation of a job's normalized status, as published
// by the poller. User is already masked.
type StatusEvent struct {
	EventID    string    `json:"event_id"`
	JobID      string    `json:"job_id"`
	Status     string    `json:"status"`
	Backend    *string   `json:"backend"`
	User       string    `json:"user"`
	ObservedAt time.Time `json:"observed_at"`
}

// NewStatusEvent builds an event from a normalized record. Records without
// an id cannot be tracked and yield ok == false.
func NewStatusEvent(rec normalizer.JobRecord, observedAt time.Time) (*StatusEvent, bool) {
	if rec.ID == nil || *rec.ID == "" {
		return nil, false
	}
	return &StatusEvent{
		EventID:    uuid.NewString(),
		JobID:      *rec.ID,
		Status:     rec.Status.String(),
		Backend:    rec.Backend,
		User:       rec.User,
		ObservedAt: observedAt.UTC(),
	}, true
}

// DecodeStatusEvent parses and validates a message body
func DecodeStatusEvent(body []byte) (*StatusEvent, error) {
	var ev StatusEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	if err := ev.Validate(); err != nil {
		return nil, err
	}
	return &ev, nil
}

// Validate checks the fields a transition row needs
func (e *StatusEvent) Validate() error {
	if _, err := uuid.Parse(e.EventID); err != nil {
		return fmt.Errorf("%w: event_id %q is not a UUID", ErrInvalidEvent, e.EventID)
	}
	if e.JobID == "" {
		return fmt.Errorf("%w: job_id is empty", ErrInvalidEvent)
	}
	if e.Status == "" {
		return fmt.Errorf("%w: status is empty", ErrInvalidEvent)
	}
	if e.ObservedAt.IsZero() {
		return fmt.Errorf("%w: observed_at is missing", ErrInvalidEvent)
	}
	return nil
}

// Transition is one row of job status history
type Transition struct {
	EventID    string    `db:"event_id"`
	JobID      string    `db:"job_id"`
	Status     string    `db:"status"`
	Backend    *string   `db:"backend"`
	UserLabel  string    `db:"user_label"`
	ObservedAt time.Time `db:"observed_at"`
}

// Transition converts the event into the row it would record
func (e *StatusEvent) Transition() Transition {
	return Transition{
		EventID:    e.EventID,
		JobID:      e.JobID,
		Status:     e.Status,
		Backend:    e.Backend,
		UserLabel:  e.User,
		ObservedAt: e.ObservedAt.UTC(),
	}
}
