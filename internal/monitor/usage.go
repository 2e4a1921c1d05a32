package monitor

import (
	"math"
	"time"

	"fmd/internal/models"
)

// DefaultSampleInterval is the firmware push cadence. Volume math assumes
// this constant gap between samples instead of measuring real deltas; the
// measured-delta variant exists but the constant is the documented behavior.
const DefaultSampleInterval = 5 * time.Second

const (
	dayKeyLayout   = "2006-01-02"
	monthKeyLayout = "2006-01"
)

// UsageReport aggregates a sample stream into dashboard statistics. Flow
// values are L/min, volumes are liters. An empty input yields the zero
// report; no field is ever NaN or Inf.
type UsageReport struct {
	SampleCount int `json:"sampleCount"`

	DailyUsage   map[string]float64 `json:"dailyUsage"`
	MonthlyUsage map[string]float64 `json:"monthlyUsage"`
	HourlyUsage  [24]float64        `json:"hourlyUsage"`

	TotalVolume float64 `json:"totalVolume"`
	AverageFlow float64 `json:"averageFlow"`
	PeakFlow    float64 `json:"peakFlow"`
	MinFlow     float64 `json:"minFlow"`
	MeanFlow    float64 `json:"meanFlow"`
	StdDev      float64 `json:"stdDev"`

	OperatingMinutes float64 `json:"operatingMinutes"`
	ActiveHours      int     `json:"activeHours"`
	UnusualFlows     int     `json:"unusualFlows"`
	PeakHour         int     `json:"peakHour"`
	MaxHourlyUsage   float64 `json:"maxHourlyUsage"`

	PotentialLeak bool `json:"potentialLeak"`
}

// UsageOptions tunes the statistics engine. Zero values fall back to the
// dashboard's constants.
type UsageOptions struct {
	From           *time.Time
	To             *time.Time
	SampleInterval time.Duration
	LeakThreshold  float64
	LeakRunLength  int
}

// ComputeUsage runs the statistics pipeline over a sample stream. Samples
// outside the optional [From,To] range, and samples with unparseable
// timestamps, are excluded before any aggregation.
func ComputeUsage(samples []*models.SensorSample, opts UsageOptions) UsageReport {
	interval := opts.SampleInterval
	if interval <= 0 {
		interval = DefaultSampleInterval
	}
	intervalMinutes := interval.Seconds() / 60

	report := UsageReport{
		DailyUsage:   make(map[string]float64),
		MonthlyUsage: make(map[string]float64),
	}

	points := make([]point, 0, len(samples))
	for _, s := range samples {
		if s == nil {
			continue
		}
		at, ok := s.Time()
		if !ok {
			continue
		}
		if opts.From != nil && at.Before(*opts.From) {
			continue
		}
		if opts.To != nil && at.After(*opts.To) {
			continue
		}
		points = append(points, point{at: at, flow: s.InstantFlow()})
	}

	report.SampleCount = len(points)
	if len(points) == 0 {
		return report
	}

	var sum float64
	report.MinFlow = points[0].flow
	report.PeakFlow = points[0].flow
	for _, p := range points {
		volume := p.flow * intervalMinutes
		report.TotalVolume += volume
		report.DailyUsage[p.at.Format(dayKeyLayout)] += volume
		report.MonthlyUsage[p.at.Format(monthKeyLayout)] += volume
		report.HourlyUsage[p.at.Hour()] += volume

		sum += p.flow
		if p.flow > report.PeakFlow {
			report.PeakFlow = p.flow
		}
		if p.flow < report.MinFlow {
			report.MinFlow = p.flow
		}
		if p.flow > 0 {
			report.OperatingMinutes += intervalMinutes
		}
	}

	report.MeanFlow = sum / float64(len(points))

	var varSum float64
	for _, p := range points {
		d := p.flow - report.MeanFlow
		varSum += d * d
	}
	report.StdDev = math.Sqrt(varSum / float64(len(points)))

	outlier := report.MeanFlow + 2*report.StdDev
	for _, p := range points {
		if p.flow > outlier {
			report.UnusualFlows++
		}
	}

	// averageFlow is total volume over total sampled time; with a constant
	// interval this collapses to the mean, kept as the explicit quotient to
	// match the published formula.
	report.AverageFlow = report.TotalVolume / (float64(len(points)) * intervalMinutes)

	for hour := 0; hour < 24; hour++ {
		usage := report.HourlyUsage[hour]
		if usage > 0 {
			report.ActiveHours++
		}
		// Strict comparison keeps the first hour on ties.
		if usage > report.MaxHourlyUsage {
			report.MaxHourlyUsage = usage
			report.PeakHour = hour
		}
	}

	report.PotentialLeak = detectLeakRun(points, opts.LeakThreshold, opts.LeakRunLength)
	return report
}

type point struct {
	at   time.Time
	flow float64
}

// detectLeakRun flags a run of consecutive samples all flowing above the
// threshold, the dashboard's continuous-flow leak heuristic.
func detectLeakRun(points []point, threshold float64, runLength int) bool {
	if threshold <= 0 {
		threshold = 0.1
	}
	if runLength <= 0 {
		runLength = 10
	}
	run := 0
	for _, p := range points {
		if p.flow > threshold {
			run++
			if run >= runLength {
				return true
			}
		} else {
			run = 0
		}
	}
	return false
}
