package domain

// EventContentType is the content type of published status events
const EventContentType = "application/json"

// Delivery outcomes, as reported to metrics
const (
	OutcomeAck     = "ack"
	OutcomeRequeue = "requeue"
	OutcomeDrop    = "drop"
)
