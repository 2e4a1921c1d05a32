package monitor

import (
	"strconv"
	"time"

	"fmd/internal/models"
)

// WarningStats summarizes the resolution state of a device's warnings.
// ResolutionRate is rendered with one decimal ("66.7") because that is the
// exact shape the dashboard widgets consume; "0" when there are no warnings.
type WarningStats struct {
	Total          int    `json:"total"`
	Resolved       int    `json:"resolved"`
	Unresolved     int    `json:"unresolved"`
	ResolutionRate string `json:"resolutionRate"`
}

// AggregateWarnings counts resolved vs unresolved warnings. Nil input is an
// empty collection, not an error.
func AggregateWarnings(warnings []*models.Warning) WarningStats {
	stats := WarningStats{ResolutionRate: "0"}
	for _, w := range warnings {
		if w == nil {
			continue
		}
		stats.Total++
		if w.Resolved {
			stats.Resolved++
		}
	}
	stats.Unresolved = stats.Total - stats.Resolved
	if stats.Total > 0 {
		rate := float64(stats.Resolved) / float64(stats.Total) * 100
		stats.ResolutionRate = strconv.FormatFloat(rate, 'f', 1, 64)
	}
	return stats
}

// CountUnresolvedToday counts warnings that are not resolved and whose
// timestamp falls on the current calendar day, local midnight to midnight.
func CountUnresolvedToday(warnings []*models.Warning, now time.Time) int {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	count := 0
	for _, w := range warnings {
		if w == nil || w.Resolved {
			continue
		}
		at := w.Time()
		if !at.Before(dayStart) && at.Before(dayEnd) {
			count++
		}
	}
	return count
}
