package model

import "time"

type StatusTransition struct {
	EventID    string    `db:"event_id"`
	JobID      string    `db:"job_id"`
	Status     string    `db:"status"`
	Backend    *string   `db:"backend"`
	UserLabel  string    `db:"user_label"`
	ObservedAt time.Time `db:"observed_at"`
}
