package domain

import (
	"errors"

	"github.com/cuongbtq/quantum-tracker/internal/normalizer"
)

const (
	DefaultJobLimit        = 20
	DefaultSummaryLimit    = 100
	MaxJobLimit            = 100
	DefaultHistoryPageSize = 20
	MaxHistoryPageSize     = 100
)

var (
	ErrHistoryDisabled = errors.New("status history is disabled")
)

// ClampLimit applies the default for an unset limit and keeps it in 1..upper
func ClampLimit(limit, def, upper int) int {
	switch {
	case limit == 0:
		return def
	case limit < 1:
		return 1
	case limit > upper:
		return upper
	}
	return limit
}

// PendingHint maps a normalized status filter to the provider's pending
// flag. Live statuses are pending, terminal ones are not, anything else
// gets no hint.
func PendingHint(status normalizer.Status) *bool {
	var pending bool
	switch {
	case status.IsLive():
		pending = true
	case status.IsTerminal():
		pending = false
	default:
		return nil
	}
	return &pending
}
