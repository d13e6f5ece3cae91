package dto

import (
	"github.com/cuongbtq/quantum-tracker/internal/normalizer"
)

type ListJobsRequest struct {
	Limit   int    `form:"limit"`
	Status  string `form:"status"`
	Backend string `form:"backend"`
}

type ListJobsResponse struct {
	Jobs  []normalizer.JobRecord `json:"jobs"`
	Count int                    `json:"count"`
}

type ListBackendsResponse struct {
	Backends []normalizer.BackendRecord `json:"backends"`
	Count    int                        `json:"count"`
}

type SummaryRequest struct {
	Limit int `form:"limit"`
}

type JobHistoryRequest struct {
	PageSize int    `form:"page_size"`
	Cursor   string `form:"cursor"`
}

type JobHistoryResponse struct {
	JobID       string          `json:"job_id"`
	Transitions []TransitionDTO `json:"transitions"`
	NextCursor  string          `json:"next_cursor,omitempty"`
}

type TransitionDTO struct {
	EventID    string  `json:"event_id"`
	Status     string  `json:"status"`
	Backend    *string `json:"backend"`
	User       string  `json:"user"`
	ObservedAt string  `json:"observed_at"`
}
