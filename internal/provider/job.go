package provider

import (
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// JobStatus is the provider's raw status string. Name reports the enum-style
// name client SDKs use for the same state, e.g. "Completed" is "DONE".
type JobStatus string

var sdkStatusNames = map[string]string{
	"initializing": "INITIALIZING",
	"queued":       "QUEUED",
	"validating":   "VALIDATING",
	"running":      "RUNNING",
	"completed":    "DONE",
	"failed":       "ERROR",
	"cancelled":    "CANCELLED",
	"canceled":     "CANCELLED",
}

func (s JobStatus) Name() string {
	raw := strings.TrimSpace(string(s))
	// "Cancelled - Ran too long" and friends carry a reason after the dash
	key, _, _ := strings.Cut(raw, " - ")
	if name, ok := sdkStatusNames[strings.ToLower(strings.TrimSpace(key))]; ok {
		return name
	}
	return raw
}

// Job is one job document as returned by the provider. Each accessor reads
// its field independently and fails on its own when the field is unusable.
type Job struct {
	doc        gjson.Result
	instance   string
	metrics    any
	metricsErr error
}

func newJob(doc gjson.Result, instance string) *Job {
	return &Job{
		doc:        doc,
		instance:   instance,
		metricsErr: ErrNotLoaded,
	}
}

func (j *Job) JobID() (string, error) {
	return stringField(j.doc, "id", "job_id")
}

func (j *Job) Status() (any, error) {
	s, err := stringField(j.doc, "state.status", "status")
	if err != nil {
		return nil, err
	}
	return JobStatus(s), nil
}

// Backend returns a handle that only knows its name; status and configuration
// of a job's backend are not fetched.
func (j *Job) Backend() (any, error) {
	name, err := stringField(j.doc, "backend", "backend_name")
	if err != nil {
		return nil, err
	}
	return newBackend(name), nil
}

func (j *Job) CreationDate() (time.Time, error) {
	return timeField(j.doc, "created", "creation_date")
}

func (j *Job) EndDate() (time.Time, error) {
	return timeField(j.doc, "end_time", "ended", "state.end_time")
}

func (j *Job) Usage() (float64, error) {
	return numberField(j.doc, "usage.quantum_seconds", "usage.seconds", "usage")
}

func (j *Job) Metrics() (any, error) {
	if j.metricsErr != nil {
		return nil, j.metricsErr
	}
	return j.metrics, nil
}

func (j *Job) ErrorMessage() (string, error) {
	return stringField(j.doc, "state.reason", "error_message")
}

func (j *Job) Tags() ([]string, error) {
	return stringsField(j.doc, "tags")
}

// Instance is the service instance that owns the job, falling back to the
// instance the client is configured for.
func (j *Job) Instance() (string, error) {
	s, err := stringField(j.doc, "instance", "instance_crn")
	if err == nil && s != "" {
		return s, nil
	}
	if j.instance != "" {
		return j.instance, nil
	}
	if err == nil {
		err = missing([]string{"instance"})
	}
	return "", err
}

func (j *Job) setMetrics(doc gjson.Result, err error) {
	if err != nil {
		j.metrics, j.metricsErr = nil, err
		return
	}
	j.metrics, j.metricsErr = doc.Value(), nil
}
