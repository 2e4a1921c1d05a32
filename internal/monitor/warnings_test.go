package monitor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"fmd/internal/models"
)

func TestAggregateWarnings_Empty(t *testing.T) {
	stats := AggregateWarnings(nil)
	assert.Equal(t, 0, stats.Total)
	assert.Equal(t, 0, stats.Resolved)
	assert.Equal(t, 0, stats.Unresolved)
	assert.Equal(t, "0", stats.ResolutionRate)
}

func TestAggregateWarnings_Mixed(t *testing.T) {
	stats := AggregateWarnings([]*models.Warning{
		{Resolved: true},
		{Resolved: false},
		{Resolved: true},
	})
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.Resolved)
	assert.Equal(t, 1, stats.Unresolved)
	assert.Equal(t, "66.7", stats.ResolutionRate)
}

func TestAggregateWarnings_AllResolved(t *testing.T) {
	stats := AggregateWarnings([]*models.Warning{{Resolved: true}, {Resolved: true}})
	assert.Equal(t, "100.0", stats.ResolutionRate)
	assert.Equal(t, 0, stats.Unresolved)
}

func TestAggregateWarnings_CountsAlwaysBalance(t *testing.T) {
	warnings := []*models.Warning{
		{Resolved: true}, {Resolved: false}, nil, {Resolved: false}, {Resolved: true},
	}
	stats := AggregateWarnings(warnings)
	assert.Equal(t, stats.Total, stats.Resolved+stats.Unresolved)
}

func TestCountUnresolvedToday(t *testing.T) {
	now := time.Date(2024, 3, 15, 14, 30, 0, 0, time.Local)
	today := now.Add(-2 * time.Hour).UnixMilli()
	yesterday := now.AddDate(0, 0, -1).UnixMilli()
	tomorrow := now.AddDate(0, 0, 1).UnixMilli()

	warnings := []*models.Warning{
		{Timestamp: today, Resolved: false},
		{Timestamp: today, Resolved: true},
		{Timestamp: yesterday, Resolved: false},
		{Timestamp: tomorrow, Resolved: false},
	}
	assert.Equal(t, 1, CountUnresolvedToday(warnings, now))
}

func TestCountUnresolvedToday_MidnightBoundaries(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.Local)
	dayStart := time.Date(2024, 3, 15, 0, 0, 0, 0, time.Local)
	nextDay := dayStart.AddDate(0, 0, 1)

	warnings := []*models.Warning{
		{Timestamp: dayStart.UnixMilli(), Resolved: false},
		{Timestamp: nextDay.UnixMilli() - 1, Resolved: false},
		{Timestamp: nextDay.UnixMilli(), Resolved: false},
	}
	assert.Equal(t, 2, CountUnresolvedToday(warnings, now))
}

func TestCountUnresolvedToday_Empty(t *testing.T) {
	assert.Equal(t, 0, CountUnresolvedToday(nil, time.Now()))
}
