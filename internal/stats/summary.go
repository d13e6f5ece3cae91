package stats

import (
	"math"
	"time"

	"github.com/cuongbtq/quantum-tracker/internal/normalizer"
)

// UnknownBackend buckets jobs whose backend could not be resolved
const UnknownBackend = "unknown"

// Summary holds the dashboard KPIs over a set of normalized jobs
type Summary struct {
	TotalJobs         int            `json:"total_jobs"`
	LiveJobs          int            `json:"live_jobs"`
	SuccessRate       float64        `json:"success_rate"`
	AvgRunSeconds     float64        `json:"avg_run_seconds"`
	TotalUsageSeconds float64        `json:"total_usage_seconds"`
	ActiveUsers       int            `json:"active_users"`
	ByStatus          map[string]int `json:"by_status"`
	ByBackend         map[string]int `json:"by_backend"`
	GeneratedAt       string         `json:"generated_at"`
}

// Summarize aggregates records into KPIs. Success rate is the share of
// COMPLETED among terminal jobs, as a percentage rounded to one decimal.
func Summarize(records []normalizer.JobRecord, now time.Time) Summary {
	s := Summary{
		TotalJobs:   len(records),
		ByStatus:    map[string]int{},
		ByBackend:   map[string]int{},
		GeneratedAt: normalizer.FormatTimestamp(now).OrElse(""),
	}

	users := map[string]struct{}{}
	var terminal, completed, timed int
	var runSeconds float64

	for _, rec := range records {
		s.ByStatus[rec.Status.String()]++

		backend := UnknownBackend
		if rec.Backend != nil && *rec.Backend != "" {
			backend = *rec.Backend
		}
		s.ByBackend[backend]++

		users[rec.User] = struct{}{}

		if rec.Status.IsLive() {
			s.LiveJobs++
		}
		if rec.Status.IsTerminal() {
			terminal++
			if rec.Status.Kind() == normalizer.StatusCompleted {
				completed++
			}
		}

		if rec.UsageSeconds != nil {
			s.TotalUsageSeconds += *rec.UsageSeconds
		}

		if d, ok := runDuration(rec); ok {
			runSeconds += d.Seconds()
			timed++
		}
	}

	s.ActiveUsers = len(users)
	if terminal > 0 {
		s.SuccessRate = round1(float64(completed) / float64(terminal) * 100)
	}
	if timed > 0 {
		s.AvgRunSeconds = round1(runSeconds / float64(timed))
	}
	s.TotalUsageSeconds = round1(s.TotalUsageSeconds)

	return s
}

func runDuration(rec normalizer.JobRecord) (time.Duration, bool) {
	if rec.Created == nil || rec.Completed == nil {
		return 0, false
	}
	created, err := normalizer.ParseTimestamp(*rec.Created)
	if err != nil {
		return 0, false
	}
	ended, err := normalizer.ParseTimestamp(*rec.Completed)
	if err != nil || ended.Before(created) {
		return 0, false
	}
	return ended.Sub(created), true
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
