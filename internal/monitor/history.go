package monitor

import (
	"sort"
	"strings"
	"time"

	"fmd/internal/models"
)

// Range is a closed numeric interval. The zero Range places no constraint.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

func (r Range) contains(v float64) bool {
	if r == (Range{}) {
		return true
	}
	return v >= r.Min && v <= r.Max
}

// HistoryCriteria is the compound filter applied to a device's sample
// history. All populated criteria must hold (logical AND); the predicates
// commute, so application order does not matter.
type HistoryCriteria struct {
	// From/To bound the sample timestamp. From is widened to the start of
	// its day and To to the end of its day, both inclusive.
	From *time.Time
	To   *time.Time

	Sensor1Range Range
	Sensor2Range Range

	// SensorDifference keeps samples with |sensor1-sensor2| >= the value.
	SensorDifference *float64

	// RelayState, when non-empty, must match case-insensitively.
	RelayState string
}

// UnboundedRange accepts every sensor value.
var UnboundedRange = Range{Min: -1 << 53, Max: 1 << 53}

func (c *HistoryCriteria) matches(s *models.SensorSample) bool {
	if s == nil {
		return false
	}
	if c.From != nil && c.To != nil {
		at, ok := s.Time()
		if !ok {
			return false
		}
		from := startOfDay(*c.From)
		to := endOfDay(*c.To)
		if at.Before(from) || at.After(to) {
			return false
		}
	}
	if !c.Sensor1Range.contains(s.Sensor1) || !c.Sensor2Range.contains(s.Sensor2) {
		return false
	}
	if c.SensorDifference != nil {
		diff := s.Sensor1 - s.Sensor2
		if diff < 0 {
			diff = -diff
		}
		if diff < *c.SensorDifference {
			return false
		}
	}
	if c.RelayState != "" && !strings.EqualFold(c.RelayState, s.RelayState) {
		return false
	}
	return true
}

// FilterHistory applies the criteria and returns the surviving samples
// sorted most recent first. The sort happens once, after filtering.
// Samples with unparseable timestamps sort after all valid ones.
func FilterHistory(samples []*models.SensorSample, criteria HistoryCriteria) []*models.SensorSample {
	filtered := make([]*models.SensorSample, 0, len(samples))
	for _, s := range samples {
		if criteria.matches(s) {
			filtered = append(filtered, s)
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		ti, okI := filtered[i].Time()
		tj, okJ := filtered[j].Time()
		if okI != okJ {
			return okI
		}
		return ti.After(tj)
	})
	return filtered
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return startOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}
