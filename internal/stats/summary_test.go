package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/cuongbtq/quantum-tracker/internal/normalizer"
)

func ptr[T any](v T) *T { return &v }

func record(status normalizer.StatusKind, backend *string, user string) normalizer.JobRecord {
	return normalizer.JobRecord{
		Status:  normalizer.StatusOf(status),
		Backend: backend,
		User:    user,
		Tags:    []string{},
	}
}

func TestSummarize(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	done := record(normalizer.StatusCompleted, ptr("ibm_kyiv"), "user_aaaaaa")
	done.Created = ptr("2024-05-01T10:00:00+00:00")
	done.Completed = ptr("2024-05-01T10:00:10+00:00")
	done.UsageSeconds = ptr(4.25)

	slow := record(normalizer.StatusCompleted, ptr("ibm_kyiv"), "user_bbbbbb")
	slow.Created = ptr("2024-05-01T10:00:00+00:00")
	slow.Completed = ptr("2024-05-01T10:00:21+00:00")
	slow.UsageSeconds = ptr(2.0)

	failed := record(normalizer.StatusError, ptr("ibm_sherbrooke"), "user_aaaaaa")
	queued := record(normalizer.StatusQueued, nil, normalizer.FallbackUser)
	running := record(normalizer.StatusRunning, ptr(""), "user_aaaaaa")
	odd := normalizer.JobRecord{Status: normalizer.PassThrough("Validating"), User: "user_cccccc"}

	got := Summarize([]normalizer.JobRecord{done, slow, failed, queued, running, odd}, now)

	assert.Equal(t, 6, got.TotalJobs)
	assert.Equal(t, 2, got.LiveJobs)
	assert.Equal(t, 66.7, got.SuccessRate)
	assert.Equal(t, 15.5, got.AvgRunSeconds)
	assert.Equal(t, 6.3, got.TotalUsageSeconds)
	assert.Equal(t, 4, got.ActiveUsers)
	assert.Equal(t, map[string]int{
		"COMPLETED":  2,
		"ERROR":      1,
		"QUEUED":     1,
		"RUNNING":    1,
		"Validating": 1,
	}, got.ByStatus)
	assert.Equal(t, map[string]int{
		"ibm_kyiv":       2,
		"ibm_sherbrooke": 1,
		UnknownBackend:   3,
	}, got.ByBackend)
	assert.Equal(t, "2024-05-01T12:00:00+00:00", got.GeneratedAt)
}

func TestSummarize_Edges(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		records     []normalizer.JobRecord
		wantSuccess float64
		wantAvg     float64
	}{
		{
			name:        "empty",
			records:     nil,
			wantSuccess: 0,
			wantAvg:     0,
		},
		{
			name: "no terminal jobs",
			records: []normalizer.JobRecord{
				record(normalizer.StatusQueued, nil, "user_aaaaaa"),
			},
			wantSuccess: 0,
		},
		{
			name: "end before start is not timed",
			records: []normalizer.JobRecord{
				{
					Status:    normalizer.StatusOf(normalizer.StatusCompleted),
					Created:   ptr("2024-05-01T10:00:10+00:00"),
					Completed: ptr("2024-05-01T10:00:00+00:00"),
				},
			},
			wantSuccess: 100,
			wantAvg:     0,
		},
		{
			name: "unparseable timestamps are not timed",
			records: []normalizer.JobRecord{
				{
					Status:    normalizer.StatusOf(normalizer.StatusCancelled),
					Created:   ptr("yesterday"),
					Completed: ptr("2024-05-01T10:00:00+00:00"),
				},
			},
			wantSuccess: 0,
			wantAvg:     0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Summarize(tt.records, now)
			assert.Equal(t, len(tt.records), got.TotalJobs)
			assert.Equal(t, tt.wantSuccess, got.SuccessRate)
			assert.Equal(t, tt.wantAvg, got.AvgRunSeconds)
			assert.NotNil(t, got.ByStatus)
			assert.NotNil(t, got.ByBackend)
		})
	}
}
