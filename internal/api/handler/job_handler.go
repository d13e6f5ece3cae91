package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cuongbtq/quantum-tracker/internal/api/domain"
	"github.com/cuongbtq/quantum-tracker/internal/api/dto"
	"github.com/cuongbtq/quantum-tracker/internal/api/storage"
	"github.com/cuongbtq/quantum-tracker/internal/normalizer"
	"github.com/cuongbtq/quantum-tracker/internal/provider"
	"github.com/cuongbtq/quantum-tracker/internal/stats"
	"github.com/gin-gonic/gin"
)

// ListJobs handles GET /api/jobs
// Lists the latest jobs, normalized, with optional status and backend filters
func (h *JobHandler) ListJobs(c *gin.Context) {
	h.logger.Info("ListJobs called",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("query", c.Request.URL.RawQuery),
	)

	var req dto.ListJobsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.logger.Error("Invalid query parameters", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid query parameters",
		})
		return
	}

	limit := domain.ClampLimit(req.Limit, domain.DefaultJobLimit, domain.MaxJobLimit)
	query := provider.JobQuery{
		Limit:   limit,
		Backend: req.Backend,
	}

	// Filter values go through the same normalization as the records,
	// so "done" and "Completed" both match COMPLETED.
	var statusFilter string
	if req.Status != "" {
		status := normalizer.NormalizeStatus(req.Status)
		statusFilter = status.String()
		query.Pending = domain.PendingHint(status)
		// The upstream only narrows by pending, so fetch a full page and
		// cut back to limit after filtering.
		query.Limit = domain.MaxJobLimit
	}

	jobs, err := h.provider.Jobs(c.Request.Context(), query)
	if err != nil {
		h.logger.Error("Failed to list jobs", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list jobs",
		})
		return
	}

	records := make([]normalizer.JobRecord, 0, min(len(jobs), limit))
	for _, job := range jobs {
		if len(records) == limit {
			break
		}
		rec := normalizer.NormalizeJob(job)
		if statusFilter != "" && rec.Status.String() != statusFilter {
			continue
		}
		if req.Backend != "" && (rec.Backend == nil || *rec.Backend != req.Backend) {
			continue
		}
		records = append(records, rec)
	}

	c.JSON(http.StatusOK, dto.ListJobsResponse{
		Jobs:  records,
		Count: len(records),
	})
}

// GetJob handles GET /api/jobs/:job_id
// Retrieves one normalized job, including its metrics
func (h *JobHandler) GetJob(c *gin.Context) {
	jobID := c.Param("job_id")
	if jobID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "job_id is required",
		})
		return
	}

	h.logger.Info("GetJob called",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("job_id", jobID),
	)

	job, err := h.provider.Job(c.Request.Context(), jobID)
	if err != nil {
		if errors.Is(err, provider.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Job not found",
			})
			return
		}
		h.logger.Error("Failed to get job", slog.String("job_id", jobID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to get job",
		})
		return
	}

	c.JSON(http.StatusOK, normalizer.NormalizeJob(job))
}

// GetJobHistory handles GET /api/jobs/:job_id/history
// Lists recorded status transitions of a job, newest first
func (h *JobHandler) GetJobHistory(c *gin.Context) {
	jobID := c.Param("job_id")

	h.logger.Info("GetJobHistory called",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("job_id", jobID),
	)

	if h.history == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": domain.ErrHistoryDisabled.Error(),
		})
		return
	}

	var req dto.JobHistoryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.logger.Error("Invalid query parameters", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid query parameters",
		})
		return
	}

	pageSize := domain.ClampLimit(req.PageSize, domain.DefaultHistoryPageSize, domain.MaxHistoryPageSize)

	cursor, err := DecodeTransitionCursor(req.Cursor)
	if err != nil {
		h.logger.Error("Invalid cursor", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid cursor",
		})
		return
	}

	transitions, err := h.history.ListTransitions(c.Request.Context(), storage.TransitionFilter{
		JobID:    jobID,
		PageSize: pageSize,
		Cursor:   cursor,
	})
	if err != nil {
		h.logger.Error("Failed to list transitions", slog.String("job_id", jobID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list job history",
		})
		return
	}

	hasMore := len(transitions) > pageSize
	if hasMore {
		transitions = transitions[:pageSize]
	}

	items := make([]dto.TransitionDTO, len(transitions))
	for i, t := range transitions {
		items[i] = dto.TransitionDTO{
			EventID:    t.EventID,
			Status:     t.Status,
			Backend:    t.Backend,
			User:       t.UserLabel,
			ObservedAt: normalizer.FormatTimestamp(t.ObservedAt).OrElse(""),
		}
	}

	var nextCursor string
	if hasMore {
		last := transitions[len(transitions)-1]
		nextCursor = EncodeTransitionCursor(&storage.TransitionCursor{
			ObservedAt: last.ObservedAt,
			EventID:    last.EventID,
		})
	}

	c.JSON(http.StatusOK, dto.JobHistoryResponse{
		JobID:       jobID,
		Transitions: items,
		NextCursor:  nextCursor,
	})
}

// Summary handles GET /api/summary
// Aggregates dashboard KPIs over the latest jobs
func (h *JobHandler) Summary(c *gin.Context) {
	h.logger.Info("Summary called",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
	)

	var req dto.SummaryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid query parameters",
		})
		return
	}

	jobs, err := h.provider.Jobs(c.Request.Context(), provider.JobQuery{
		Limit: domain.ClampLimit(req.Limit, domain.DefaultSummaryLimit, domain.MaxJobLimit),
	})
	if err != nil {
		h.logger.Error("Failed to list jobs for summary", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to build summary",
		})
		return
	}

	records := make([]normalizer.JobRecord, len(jobs))
	for i, job := range jobs {
		records[i] = normalizer.NormalizeJob(job)
	}

	c.JSON(http.StatusOK, stats.Summarize(records, h.now()))
}
